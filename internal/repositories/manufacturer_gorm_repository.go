package repositories

import (
	"context"
	"fmt"

	"inventory/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GORMManufacturerRepository is a GORM implementation of ManufacturerRepository.
type GORMManufacturerRepository struct {
	db *gorm.DB
}

func NewGORMManufacturerRepository(db *gorm.DB) *GORMManufacturerRepository {
	return &GORMManufacturerRepository{db: db}
}

// FindByID retrieves a manufacturer with its contact loaded.
func (r *GORMManufacturerRepository) FindByID(ctx context.Context, id string) (*models.Manufacturer, error) {
	var manufacturer models.Manufacturer
	err := r.db.WithContext(ctx).Preload("Contact").First(&manufacturer, "id = ?", id).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get manufacturer by ID %s: %w", id, translate(err))
	}
	return &manufacturer, nil
}

// DistinctNames returns every manufacturer name once, sorted.
func (r *GORMManufacturerRepository) DistinctNames(ctx context.Context) ([]string, error) {
	var names []string
	err := r.db.WithContext(ctx).Model(&models.Manufacturer{}).
		Distinct("name").
		Order("name").
		Pluck("name", &names).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list manufacturer names: %w", translate(err))
	}
	return names, nil
}

func (r *GORMManufacturerRepository) CountByContact(ctx context.Context, contactID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Manufacturer{}).
		Where("contact_id = ?", contactID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count manufacturers of contact %s: %w", contactID, translate(err))
	}
	return count, nil
}

func (r *GORMManufacturerRepository) Insert(ctx context.Context, manufacturer *models.Manufacturer) error {
	if manufacturer.ID == "" {
		manufacturer.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(manufacturer).Error; err != nil {
		return fmt.Errorf("failed to create manufacturer: %w", translate(err))
	}
	return nil
}

func (r *GORMManufacturerRepository) UpdateFields(ctx context.Context, id string, fields map[string]interface{}) error {
	res := r.db.WithContext(ctx).Model(&models.Manufacturer{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return fmt.Errorf("failed to update manufacturer: %w", translate(res.Error))
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("manufacturer with ID %s not found for update: %w", id, ErrNotFound)
	}
	return nil
}

func (r *GORMManufacturerRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&models.Manufacturer{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete manufacturer: %w", translate(res.Error))
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("manufacturer with ID %s not found for deletion: %w", id, ErrNotFound)
	}
	return nil
}
