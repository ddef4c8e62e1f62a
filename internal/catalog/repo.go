package catalog

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/brewlinehq/brewline-backend/pkg/db/models"
)

// Repository exposes coffee persistence operations. The order engine treats
// this data as read-only; writes come from admin endpoints only.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a catalog repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx rebinds the repository to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// Create inserts a new coffee and returns the persisted model.
func (r *Repository) Create(ctx context.Context, dto CreateCoffeeDTO) (*models.Coffee, error) {
	coffee := dto.ToModel()
	if err := r.db.WithContext(ctx).Create(coffee).Error; err != nil {
		return nil, err
	}
	return coffee, nil
}

// FindByID loads a coffee by its UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Coffee, error) {
	var coffee models.Coffee
	if err := r.db.WithContext(ctx).First(&coffee, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &coffee, nil
}

// FindByIDs loads the coffees matching the provided ids, keyed by id.
func (r *Repository) FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Coffee, error) {
	result := make(map[uuid.UUID]models.Coffee, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	var rows []models.Coffee
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		result[row.ID] = row
	}
	return result, nil
}

// List returns coffees matching the filters, name-ordered.
func (r *Repository) List(ctx context.Context, filters ListFilters) ([]models.Coffee, error) {
	query := r.db.WithContext(ctx).Order("name ASC")
	if filters.Category != nil {
		query = query.Where("category = ?", *filters.Category)
	}
	if filters.AvailableOnly {
		query = query.Where("available = true")
	}
	var rows []models.Coffee
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Update applies a partial update and returns the refreshed row.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, dto UpdateCoffeeDTO) (*models.Coffee, error) {
	updates := dto.Updates()
	if len(updates) > 0 {
		res := r.db.WithContext(ctx).
			Model(&models.Coffee{}).
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
