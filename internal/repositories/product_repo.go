package repositories

import (
	"context"
	"errors"

	"inventory/internal/models"
	"inventory/internal/query"
)

var (
	// ErrNotFound is returned when no row matches the given id.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicate is returned when a write violates a unique constraint.
	ErrDuplicate = errors.New("duplicate value for unique field")
)

// StockValueRow is one group of the stock valuation aggregate.
type StockValueRow struct {
	ManufacturerName string
	TotalStockValue  float64
}

// ProductRepository defines the interface for product data access. Reads
// return products with Manufacturer and Manufacturer.Contact loaded.
type ProductRepository interface {
	Find(ctx context.Context, q query.Query) ([]models.Product, error)
	Count(ctx context.Context, q query.Query) (int64, error)
	FindByID(ctx context.Context, id string) (*models.Product, error)
	SKUTaken(ctx context.Context, sku, exceptID string) (bool, error)
	CountByManufacturer(ctx context.Context, manufacturerID string) (int64, error)

	Insert(ctx context.Context, product *models.Product) error
	Replace(ctx context.Context, product *models.Product) error
	UpdateFields(ctx context.Context, id string, fields map[string]interface{}) error
	Delete(ctx context.Context, id string) error

	TotalStockValue(ctx context.Context) (float64, error)
	StockValueByManufacturer(ctx context.Context) ([]StockValueRow, error)
}

// ManufacturerRepository defines the interface for manufacturer data access.
type ManufacturerRepository interface {
	FindByID(ctx context.Context, id string) (*models.Manufacturer, error)
	DistinctNames(ctx context.Context) ([]string, error)
	CountByContact(ctx context.Context, contactID string) (int64, error)
	Insert(ctx context.Context, manufacturer *models.Manufacturer) error
	UpdateFields(ctx context.Context, id string, fields map[string]interface{}) error
	Delete(ctx context.Context, id string) error
}

// ContactRepository defines the interface for contact data access.
type ContactRepository interface {
	FindByID(ctx context.Context, id string) (*models.Contact, error)
	Insert(ctx context.Context, contact *models.Contact) error
	UpdateFields(ctx context.Context, id string, fields map[string]interface{}) error
	Delete(ctx context.Context, id string) error
}

// Store groups the entity repositories and runs multi-step writes atomically.
type Store interface {
	Products() ProductRepository
	Manufacturers() ManufacturerRepository
	Contacts() ContactRepository

	// Transaction runs fn against a Store bound to one transaction. The
	// transaction commits if fn returns nil and rolls back otherwise.
	Transaction(ctx context.Context, fn func(tx Store) error) error
}
