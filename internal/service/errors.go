// Package service holds the business rules of the blog: post lifecycle,
// messaging, admin accounts and stats. Services return *models.AppError for
// every failure a caller can act on.
package service

import (
	"blogcms/internal/database"
	"blogcms/internal/models"
)

// mapRepoError translates a repository error into the application taxonomy.
func mapRepoError(err error, resource string, id interface{}) error {
	switch {
	case err == nil:
		return nil
	case database.IsNotFound(err):
		return models.NewNotFoundError(resource, id)
	case database.IsUniqueViolation(err):
		return models.NewValidationError(resource + " already exists")
	default:
		return models.NewStorageError(err)
	}
}
