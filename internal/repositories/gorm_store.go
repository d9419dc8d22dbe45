package repositories

import (
	"context"

	"gorm.io/gorm"
)

// GORMStore is a GORM implementation of Store.
type GORMStore struct {
	db            *gorm.DB
	products      *GORMProductRepository
	manufacturers *GORMManufacturerRepository
	contacts      *GORMContactRepository
}

// NewGORMStore creates a Store whose repositories share db.
func NewGORMStore(db *gorm.DB) *GORMStore {
	return &GORMStore{
		db:            db,
		products:      NewGORMProductRepository(db),
		manufacturers: NewGORMManufacturerRepository(db),
		contacts:      NewGORMContactRepository(db),
	}
}

func (s *GORMStore) Products() ProductRepository           { return s.products }
func (s *GORMStore) Manufacturers() ManufacturerRepository { return s.manufacturers }
func (s *GORMStore) Contacts() ContactRepository           { return s.contacts }

// Transaction runs fn inside a database transaction.
func (s *GORMStore) Transaction(ctx context.Context, fn func(tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewGORMStore(tx))
	})
}
