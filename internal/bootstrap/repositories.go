package bootstrap

import (
	"blogcms/internal/config"
	"blogcms/internal/repository"

	"gorm.io/gorm"
)

func repositoryAdmins(db *gorm.DB, cfg *config.Config) repository.AdminRepository {
	return repository.NewAdminRepository(db, cfg.DBQueryTimeout)
}
