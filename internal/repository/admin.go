package repository

import (
	"context"
	"time"

	"blogcms/internal/models"

	"gorm.io/gorm"
)

// AdminRepository defines the interface for admin account data operations
type AdminRepository interface {
	Create(ctx context.Context, admin *models.Admin) error
	GetByID(ctx context.Context, id uint) (*models.Admin, error)
	GetByUsername(ctx context.Context, username string) (*models.Admin, error)
	List(ctx context.Context) ([]models.Admin, error)
	Update(ctx context.Context, id uint, changes *models.Admin, columns []string) error
	UpdateRole(ctx context.Context, id uint, role models.Role) error
	UpdatePassword(ctx context.Context, id uint, hash string) error
	Delete(ctx context.Context, id uint) error
}

type adminRepository struct {
	base
}

// NewAdminRepository creates a new admin repository. A positive timeout bounds every call.
func NewAdminRepository(db *gorm.DB, timeout time.Duration) AdminRepository {
	return &adminRepository{base{db: db, timeout: timeout, table: "admins"}}
}

func (r *adminRepository) Create(ctx context.Context, admin *models.Admin) error {
	db, done := r.conn(ctx, "create")
	defer done()
	return db.Create(admin).Error
}

func (r *adminRepository) GetByID(ctx context.Context, id uint) (*models.Admin, error) {
	db, done := r.conn(ctx, "get_by_id")
	defer done()

	var admin models.Admin
	if err := db.First(&admin, id).Error; err != nil {
		return nil, err
	}
	return &admin, nil
}

func (r *adminRepository) GetByUsername(ctx context.Context, username string) (*models.Admin, error) {
	db, done := r.conn(ctx, "get_by_username")
	defer done()

	var admin models.Admin
	if err := db.Where("username = ?", username).First(&admin).Error; err != nil {
		return nil, err
	}
	return &admin, nil
}

func (r *adminRepository) List(ctx context.Context) ([]models.Admin, error) {
	db, done := r.conn(ctx, "list")
	defer done()

	admins := []models.Admin{}
	err := db.Order("id ASC").Find(&admins).Error
	return admins, err
}

// Update writes the named profile columns of changes to admin id.
func (r *adminRepository) Update(ctx context.Context, id uint, changes *models.Admin, columns []string) error {
	db, done := r.conn(ctx, "update")
	defer done()

	selected := append([]string{"updated_at"}, columns...)
	return affectedOrNotFound(db.Model(&models.Admin{}).
		Where("id = ?", id).
		Select(selected).
		Updates(changes))
}

func (r *adminRepository) UpdateRole(ctx context.Context, id uint, role models.Role) error {
	db, done := r.conn(ctx, "update_role")
	defer done()
	return affectedOrNotFound(db.Model(&models.Admin{}).Where("id = ?", id).Update("role", role))
}

func (r *adminRepository) UpdatePassword(ctx context.Context, id uint, hash string) error {
	db, done := r.conn(ctx, "update_password")
	defer done()
	return affectedOrNotFound(db.Model(&models.Admin{}).Where("id = ?", id).Update("password", hash))
}

func (r *adminRepository) Delete(ctx context.Context, id uint) error {
	db, done := r.conn(ctx, "delete")
	defer done()
	return affectedOrNotFound(db.Delete(&models.Admin{}, id))
}
