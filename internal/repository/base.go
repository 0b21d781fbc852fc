// Package repository provides data access layer implementations for the application.
package repository

import (
	"context"
	"time"

	"blogcms/internal/database"
	"blogcms/internal/observability"

	"gorm.io/gorm"
)

// base carries what every repository needs: the connection, the per-call
// query timeout and the table name used for latency metrics.
type base struct {
	db      *gorm.DB
	timeout time.Duration
	table   string
}

// conn returns a session bound to ctx with the query timeout applied. The
// returned func must be called when the call completes.
func (b base) conn(ctx context.Context, operation string) (*gorm.DB, func()) {
	ctx, cancel := database.WithTimeout(ctx, b.timeout)
	done := observability.TrackQuery(operation, b.table)
	return b.db.WithContext(ctx), func() {
		done()
		cancel()
	}
}

// affectedOrNotFound turns a write that matched no row into gorm.ErrRecordNotFound.
func affectedOrNotFound(tx *gorm.DB) error {
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
