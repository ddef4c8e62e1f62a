package branches

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/brewlinehq/brewline-backend/pkg/db/models"
)

// Repository exposes branch persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a branches repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new branch and returns the persisted model.
func (r *Repository) Create(ctx context.Context, dto CreateBranchDTO) (*models.Branch, error) {
	branch := dto.ToModel()
	if err := r.db.WithContext(ctx).Create(branch).Error; err != nil {
		return nil, err
	}
	return branch, nil
}

// FindByID loads a branch by its UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Branch, error) {
	var branch models.Branch
	if err := r.db.WithContext(ctx).First(&branch, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &branch, nil
}

// List returns branches, optionally restricted to active ones.
func (r *Repository) List(ctx context.Context, activeOnly bool) ([]models.Branch, error) {
	query := r.db.WithContext(ctx).Order("name ASC")
	if activeOnly {
		query = query.Where("is_active = true")
	}
	var rows []models.Branch
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Update applies a partial update and returns the refreshed row.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, dto UpdateBranchDTO) (*models.Branch, error) {
	updates := dto.Updates()
	if len(updates) > 0 {
		res := r.db.WithContext(ctx).
			Model(&models.Branch{}).
			Where("id = ?", id).
			Updates(updates)
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected == 0 {
			return nil, gorm.ErrRecordNotFound
		}
	}
	return r.FindByID(ctx, id)
}
