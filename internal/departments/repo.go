package departments

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/merchlane/merchportal-backend/pkg/db/models"
)

// Repository exposes department persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a departments repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new department.
func (r *Repository) Create(ctx context.Context, dept *models.Department) (*models.Department, error) {
	if err := r.db.WithContext(ctx).Create(dept).Error; err != nil {
		return nil, err
	}
	return dept, nil
}

// FindByID loads a department by its UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Department, error) {
	var dept models.Department
	if err := r.db.WithContext(ctx).First(&dept, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &dept, nil
}

// FindByName retrieves the department with the exact name.
func (r *Repository) FindByName(ctx context.Context, name string) (*models.Department, error) {
	var dept models.Department
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&dept).Error; err != nil {
		return nil, err
	}
	return &dept, nil
}

// List returns all departments ordered by name.
func (r *Repository) List(ctx context.Context) ([]models.Department, error) {
	var depts []models.Department
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&depts).Error; err != nil {
		return nil, err
	}
	return depts, nil
}
