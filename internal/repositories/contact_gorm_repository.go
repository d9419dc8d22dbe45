package repositories

import (
	"context"
	"fmt"

	"inventory/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMContactRepository is a GORM implementation of ContactRepository.
type GORMContactRepository struct {
	db *gorm.DB
}

func NewGORMContactRepository(db *gorm.DB) *GORMContactRepository {
	return &GORMContactRepository{db: db}
}

func (r *GORMContactRepository) FindByID(ctx context.Context, id string) (*models.Contact, error) {
	var contact models.Contact
	if err := r.db.WithContext(ctx).First(&contact, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("failed to get contact by ID %s: %w", id, translate(err))
	}
	return &contact, nil
}

func (r *GORMContactRepository) Insert(ctx context.Context, contact *models.Contact) error {
	if contact.ID == "" {
		contact.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Create(contact).Error; err != nil {
		return fmt.Errorf("failed to create contact: %w", translate(err))
	}
	return nil
}

func (r *GORMContactRepository) UpdateFields(ctx context.Context, id string, fields map[string]interface{}) error {
	res := r.db.WithContext(ctx).Model(&models.Contact{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return fmt.Errorf("failed to update contact: %w", translate(res.Error))
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("contact with ID %s not found for update: %w", id, ErrNotFound)
	}
	return nil
}

func (r *GORMContactRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&models.Contact{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete contact: %w", translate(res.Error))
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("contact with ID %s not found for deletion: %w", id, ErrNotFound)
	}
	return nil
}
