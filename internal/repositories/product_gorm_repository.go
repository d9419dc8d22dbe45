package repositories

import (
	"context"
	"errors"
	"fmt"

	"inventory/internal/models"
	"inventory/internal/query"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// replaceColumns are written by Replace. Everything but id and created_at.
var replaceColumns = []string{
	"name", "sku", "description", "price", "category", "amount_in_stock", "manufacturer_id", "updated_at",
}

// GORMProductRepository is a GORM implementation of ProductRepository.
type GORMProductRepository struct {
	db *gorm.DB
}

// NewGORMProductRepository creates a new instance of GORMProductRepository.
func NewGORMProductRepository(db *gorm.DB) *GORMProductRepository {
	return &GORMProductRepository{
		db: db,
	}
}

func (r *GORMProductRepository) scoped(ctx context.Context, q query.Query) (*gorm.DB, error) {
	return compileProductQuery(r.db.WithContext(ctx).Model(&models.Product{}), q)
}

// Find returns the products matching q in q's order.
func (r *GORMProductRepository) Find(ctx context.Context, q query.Query) ([]models.Product, error) {
	tx, err := r.scoped(ctx, q)
	if err != nil {
		return nil, err
	}
	if tx, err = orderProductQuery(tx, q); err != nil {
		return nil, err
	}
	if q.Offset < 0 || q.Limit < 0 {
		return nil, fmt.Errorf("invalid product page: offset %d, limit %d", q.Offset, q.Limit)
	}
	if q.Offset > 0 {
		tx = tx.Offset(q.Offset)
	}
	if q.Limit > 0 {
		tx = tx.Limit(q.Limit)
	}

	var products []models.Product
	if err := tx.Preload("Manufacturer.Contact").Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to find products: %w", translate(err))
	}
	return products, nil
}

// Count returns how many products match q, ignoring its offset and limit.
func (r *GORMProductRepository) Count(ctx context.Context, q query.Query) (int64, error) {
	tx, err := r.scoped(ctx, q)
	if err != nil {
		return 0, err
	}
	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return 0, fmt.Errorf("failed to count products: %w", translate(err))
	}
	return total, nil
}

// FindByID retrieves a single product by its ID from the database.
func (r *GORMProductRepository) FindByID(ctx context.Context, id string) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).Preload("Manufacturer.Contact").First(&product, "id = ?", id).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get product by ID %s: %w", id, translate(err))
	}
	return &product, nil
}

// SKUTaken reports whether another product than exceptID already uses sku.
func (r *GORMProductRepository) SKUTaken(ctx context.Context, sku, exceptID string) (bool, error) {
	tx := r.db.WithContext(ctx).Model(&models.Product{}).Where("sku = ?", sku)
	if exceptID != "" {
		tx = tx.Where("id <> ?", exceptID)
	}
	var count int64
	if err := tx.Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check sku %s: %w", sku, translate(err))
	}
	return count > 0, nil
}

func (r *GORMProductRepository) CountByManufacturer(ctx context.Context, manufacturerID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Product{}).
		Where("manufacturer_id = ?", manufacturerID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count products of manufacturer %s: %w", manufacturerID, translate(err))
	}
	return count, nil
}

// Insert creates a new product. A duplicate sku fails with ErrDuplicate.
func (r *GORMProductRepository) Insert(ctx context.Context, product *models.Product) error {
	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(product).Error; err != nil {
		return fmt.Errorf("failed to create product: %w", translate(err))
	}
	return nil
}

// Replace overwrites every mutable column of the product with product.ID,
// zero values included.
func (r *GORMProductRepository) Replace(ctx context.Context, product *models.Product) error {
	res := r.db.WithContext(ctx).Model(&models.Product{}).
		Where("id = ?", product.ID).
		Select(replaceColumns).
		Omit(clause.Associations).
		Updates(product)
	if res.Error != nil {
		return fmt.Errorf("failed to replace product: %w", translate(res.Error))
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("product with ID %s not found for replace: %w", product.ID, ErrNotFound)
	}
	return nil
}

// UpdateFields writes only the given columns.
func (r *GORMProductRepository) UpdateFields(ctx context.Context, id string, fields map[string]interface{}) error {
	res := r.db.WithContext(ctx).Model(&models.Product{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return fmt.Errorf("failed to update product: %w", translate(res.Error))
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("product with ID %s not found for update: %w", id, ErrNotFound)
	}
	return nil
}

// Delete deletes a product by its ID from the database.
func (r *GORMProductRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&models.Product{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete product: %w", translate(res.Error))
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("product with ID %s not found for deletion: %w", id, ErrNotFound)
	}
	return nil
}

// ErrEmptyAggregate is returned when an ungrouped aggregate yields no row.
var ErrEmptyAggregate = errors.New("aggregate returned no rows")

// TotalStockValue sums price * amount_in_stock over all products.
func (r *GORMProductRepository) TotalStockValue(ctx context.Context) (float64, error) {
	var rows []struct {
		Total float64
	}
	err := r.db.WithContext(ctx).Model(&models.Product{}).
		Select("COALESCE(SUM(products.price * products.amount_in_stock), 0) AS total").
		Scan(&rows).Error
	if err != nil {
		return 0, fmt.Errorf("failed to sum stock value: %w", translate(err))
	}
	if len(rows) == 0 {
		return 0, ErrEmptyAggregate
	}
	return rows[0].Total, nil
}

// StockValueByManufacturer sums price * amount_in_stock per joined
// manufacturer name, ordered by name.
func (r *GORMProductRepository) StockValueByManufacturer(ctx context.Context) ([]StockValueRow, error) {
	var rows []StockValueRow
	err := r.db.WithContext(ctx).Model(&models.Product{}).
		Select("manufacturers.name AS manufacturer_name, SUM(products.price * products.amount_in_stock) AS total_stock_value").
		Joins("JOIN manufacturers ON manufacturers.id = products.manufacturer_id").
		Group("manufacturers.name").
		Order("manufacturers.name").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to sum stock value by manufacturer: %w", translate(err))
	}
	return rows, nil
}

// translate maps gorm errors onto this package's sentinels. Other errors,
// context errors included, pass through unchanged.
func translate(err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate
	default:
		return err
	}
}
