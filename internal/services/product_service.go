package services

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"inventory/internal/apperr"
	"inventory/internal/logger"
	"inventory/internal/merge"
	"inventory/internal/models"
	"inventory/internal/query"
	"inventory/internal/repositories"
	"inventory/internal/validation"
)

// Exchange and routing keys of product change events.
const (
	EventsExchange       = "inventory"
	EventProductCreated  = "product.created"
	EventProductReplaced = "product.replaced"
	EventProductPatched  = "product.patched"
	EventProductDeleted  = "product.deleted"
)

// EventPublisher sends a message to a broker exchange.
type EventPublisher interface {
	Publish(exchange, routingKey string, body []byte) error
}

// ProductEvent is the body of a product change event.
type ProductEvent struct {
	Type       string              `json:"type"`
	ProductID  string              `json:"productId"`
	Product    *models.ProductView `json:"product,omitempty"`
	OccurredAt time.Time           `json:"occurredAt"`
}

// ProductService handles business logic related to products: filtered
// listings, stock reports and validated create/replace/patch/delete.
type ProductService struct {
	store     repositories.Store
	validator *validation.Validator
	publisher EventPublisher
	log       *logger.Logger
	opts      Options
}

// NewProductService creates a new ProductService. publisher may be nil.
func NewProductService(store repositories.Store, validator *validation.Validator, publisher EventPublisher, log *logger.Logger, opts Options) *ProductService {
	return &ProductService{
		store:     store,
		validator: validator,
		publisher: publisher,
		log:       log.With("service", "ProductService"),
		opts:      opts,
	}
}

func (s *ProductService) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.opts.timeout())
}

// ListProducts returns one page of products matching filter, each with its
// manufacturer and contact resolved.
func (s *ProductService) ListProducts(ctx context.Context, filter query.ProductFilter, page query.Pagination) (*models.Page[models.ProductView], error) {
	if err := page.Validate(s.opts.MaxPageLimit); err != nil {
		return nil, err
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	q := query.ProductList(filter, page)
	total, err := s.store.Products().Count(ctx, q)
	if err != nil {
		return nil, storeFault(s.log, "list products", err)
	}
	products, err := s.store.Products().Find(ctx, q)
	if err != nil {
		return nil, storeFault(s.log, "list products", err)
	}
	views, err := s.views(products)
	if err != nil {
		return nil, err
	}
	result := models.NewPage(views, page.Page, page.Limit, total)
	return &result, nil
}

// GetProduct returns the product with the given id. Malformed and unknown
// ids both yield NotFound.
func (s *ProductService) GetProduct(ctx context.Context, id string) (*models.ProductView, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	p, err := s.find(ctx, s.store, id)
	if err != nil {
		return nil, err
	}
	if err := checkResolved(p); err != nil {
		s.log.Error("dangling reference", "productId", p.ID, "error", err)
		return nil, err
	}
	view := models.NewProductView(*p)
	return &view, nil
}

// TotalStockValue is the sum of price * amountInStock over all products.
func (s *ProductService) TotalStockValue(ctx context.Context) (models.Money, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	total, err := s.store.Products().TotalStockValue(ctx)
	if errors.Is(err, repositories.ErrEmptyAggregate) {
		s.log.Error("stock value aggregate returned no rows")
		return models.Money{}, apperr.Internal("total stock value", err)
	}
	if err != nil {
		return models.Money{}, storeFault(s.log, "total stock value", err)
	}
	return models.NewMoney(total), nil
}

// StockValueByManufacturer reports the stock value per manufacturer name.
func (s *ProductService) StockValueByManufacturer(ctx context.Context) ([]models.ManufacturerStockValue, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	rows, err := s.store.Products().StockValueByManufacturer(ctx)
	if err != nil {
		return nil, storeFault(s.log, "stock value by manufacturer", err)
	}
	if len(rows) == 0 {
		n, err := s.store.Products().Count(ctx, query.Query{})
		if err != nil {
			return nil, storeFault(s.log, "stock value by manufacturer", err)
		}
		if n > 0 {
			s.log.Error("stock value by manufacturer returned no rows", "products", n)
			return nil, apperr.Internal("stock value by manufacturer returned no rows for existing products", nil)
		}
	}

	out := make([]models.ManufacturerStockValue, 0, len(rows))
	for _, r := range rows {
		out = append(out, models.ManufacturerStockValue{
			ManufacturerName: r.ManufacturerName,
			TotalStockValue:  models.NewMoney(r.TotalStockValue),
		})
	}
	return out, nil
}

// LowStock returns the products with fewer than threshold items in stock.
func (s *ProductService) LowStock(ctx context.Context, threshold int) ([]models.ProductView, error) {
	products, err := s.stockBelow(ctx, threshold)
	if err != nil {
		return nil, err
	}
	return s.views(products)
}

// CriticalStock is LowStock with the reduced critical-stock shape.
func (s *ProductService) CriticalStock(ctx context.Context, threshold int) ([]models.CriticalStockView, error) {
	products, err := s.stockBelow(ctx, threshold)
	if err != nil {
		return nil, err
	}
	out := make([]models.CriticalStockView, 0, len(products))
	for i := range products {
		if err := checkResolved(&products[i]); err != nil {
			s.log.Error("dangling reference", "productId", products[i].ID, "error", err)
			return nil, err
		}
		out = append(out, models.NewCriticalStockView(products[i]))
	}
	return out, nil
}

func (s *ProductService) stockBelow(ctx context.Context, threshold int) ([]models.Product, error) {
	if threshold < 0 {
		return nil, apperr.Validation([]apperr.FieldError{{Path: "threshold", Message: "must be greater than or equal to 0"}})
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	products, err := s.store.Products().Find(ctx, query.StockBelow(threshold))
	if err != nil {
		return nil, storeFault(s.log, "stock below threshold", err)
	}
	return products, nil
}

// CreateProduct validates in and inserts the product. An inline
// manufacturer (and its contact) is created in the same transaction, so a
// failed product insert leaves nothing behind.
func (s *ProductService) CreateProduct(ctx context.Context, in models.ProductInput) (*models.ProductView, error) {
	in.Normalize()
	if err := s.validator.ValidateCreate(validation.KindProduct, &in); err != nil {
		return nil, err
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var created *models.Product
	err := s.store.Transaction(ctx, func(tx repositories.Store) error {
		if err := ensureSKUFree(ctx, tx, in.SKU, ""); err != nil {
			return err
		}
		manufacturerID, err := resolveManufacturer(ctx, tx, in)
		if err != nil {
			return err
		}
		p := in.NewProduct(manufacturerID)
		if err := tx.Products().Insert(ctx, &p); err != nil {
			return err
		}
		created, err = tx.Products().FindByID(ctx, p.ID)
		return err
	})
	if err != nil {
		return nil, storeFault(s.log, "create product", err)
	}

	view := models.NewProductView(*created)
	s.publish(EventProductCreated, view.ID, &view)
	return &view, nil
}

// ReplaceProduct overwrites the product with id by in. Optional fields
// absent from in are cleared. An inline manufacturer overwrites the one the
// product already references, so repeating a replace changes nothing.
func (s *ProductService) ReplaceProduct(ctx context.Context, id string, in models.ProductInput) (*models.ProductView, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var updated *models.Product
	err := s.store.Transaction(ctx, func(tx repositories.Store) error {
		existing, err := s.find(ctx, tx, id)
		if err != nil {
			return err
		}
		in.Normalize()
		if err := s.validator.ValidateCreate(validation.KindProduct, &in); err != nil {
			return err
		}
		if err := ensureSKUFree(ctx, tx, in.SKU, existing.ID); err != nil {
			return err
		}
		var manufacturerID string
		if in.ManufacturerID != "" {
			manufacturerID, err = resolveManufacturer(ctx, tx, in)
		} else {
			manufacturerID, err = replaceManufacturer(ctx, tx, existing.Manufacturer, *in.Manufacturer)
		}
		if err != nil {
			return err
		}

		p := in.NewProduct(manufacturerID)
		p.ID = existing.ID
		if err := tx.Products().Replace(ctx, &p); err != nil {
			return err
		}
		updated, err = tx.Products().FindByID(ctx, p.ID)
		return err
	})
	if err != nil {
		return nil, storeFault(s.log, "replace product", err)
	}

	view := models.NewProductView(*updated)
	s.publish(EventProductReplaced, view.ID, &view)
	return &view, nil
}

// PatchProduct applies a partial update. Fields absent from patch keep their
// stored values. A manufacturerId (or a manufacturer id string) rewires the
// product to another manufacturer; a nested manufacturer object updates the
// referenced manufacturer and contact instead.
func (s *ProductService) PatchProduct(ctx context.Context, id string, patch map[string]interface{}) (*models.ProductView, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	patch = merge.NormalizeRefs(patch, merge.ProductRelations)

	var updated *models.Product
	err := s.store.Transaction(ctx, func(tx repositories.Store) error {
		existing, err := s.find(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := s.validator.ValidatePatch(validation.KindProduct, patch); err != nil {
			return err
		}
		if _, rewired := patch["manufacturerId"]; !rewired {
			if err := checkResolved(existing); err != nil {
				return err
			}
		}

		merged, err := mergeProduct(*existing, patch)
		if err != nil {
			return err
		}
		if err := s.validator.ValidateCreate(validation.KindProduct, &merged); err != nil {
			return err
		}

		manufacturerID, err := applyManufacturerPatch(ctx, tx, existing, merged)
		if err != nil {
			return err
		}
		changes := productChanges(*existing, merged, manufacturerID)
		if _, ok := changes["sku"]; ok {
			if err := ensureSKUFree(ctx, tx, merged.SKU, existing.ID); err != nil {
				return err
			}
		}
		if len(changes) > 0 {
			if err := tx.Products().UpdateFields(ctx, existing.ID, changes); err != nil {
				return err
			}
		}
		updated, err = tx.Products().FindByID(ctx, existing.ID)
		return err
	})
	if err != nil {
		return nil, storeFault(s.log, "patch product", err)
	}

	view := models.NewProductView(*updated)
	s.publish(EventProductPatched, view.ID, &view)
	return &view, nil
}

// DeleteProduct removes the product and returns its last state.
func (s *ProductService) DeleteProduct(ctx context.Context, id string) (*models.ProductView, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var snapshot models.ProductView
	err := s.store.Transaction(ctx, func(tx repositories.Store) error {
		existing, err := s.find(ctx, tx, id)
		if err != nil {
			return err
		}
		snapshot = models.NewProductView(*existing)
		if err := tx.Products().Delete(ctx, existing.ID); err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return apperr.NotFound("product %s not found", id)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, storeFault(s.log, "delete product", err)
	}

	s.publish(EventProductDeleted, snapshot.ID, &snapshot)
	return &snapshot, nil
}

// find loads a product through tx, mapping malformed and unknown ids to NotFound.
func (s *ProductService) find(ctx context.Context, tx repositories.Store, id string) (*models.Product, error) {
	pid, ok := parseID(id)
	if !ok {
		s.log.Debug("malformed product id", "id", id)
		return nil, apperr.NotFound("product %s not found", id)
	}
	p, err := tx.Products().FindByID(ctx, pid)
	if errors.Is(err, repositories.ErrNotFound) {
		s.log.Debug("product not found", "id", pid)
		return nil, apperr.NotFound("product %s not found", id)
	}
	if err != nil {
		return nil, storeFault(s.log, "get product", err)
	}
	return p, nil
}

func (s *ProductService) views(products []models.Product) ([]models.ProductView, error) {
	views := make([]models.ProductView, 0, len(products))
	for i := range products {
		if err := checkResolved(&products[i]); err != nil {
			s.log.Error("dangling reference", "productId", products[i].ID, "error", err)
			return nil, err
		}
		views = append(views, models.NewProductView(products[i]))
	}
	return views, nil
}

// publish sends a change event after commit. Failures are logged only.
func (s *ProductService) publish(routingKey, productID string, view *models.ProductView) {
	if s.publisher == nil {
		return
	}
	body, err := json.Marshal(ProductEvent{
		Type:       routingKey,
		ProductID:  productID,
		Product:    view,
		OccurredAt: time.Now().UTC(),
	})
	if err != nil {
		s.log.Warn("failed to marshal product event", "event", routingKey, "error", err)
		return
	}
	if err := s.publisher.Publish(EventsExchange, routingKey, body); err != nil {
		s.log.Warn("failed to publish product event", "event", routingKey, "productId", productID, "error", err)
	}
}

// mergeProduct applies patch to the stored product and returns the merged payload.
func mergeProduct(existing models.Product, patch map[string]interface{}) (models.ProductInput, error) {
	var merged models.ProductInput
	base, err := merge.ToDocument(models.ProductInputFrom(existing))
	if err != nil {
		return merged, apperr.Internal("encode product", err)
	}
	doc := merge.ApplyWithRelations(base, patch, merge.ProductRelations)
	if err := merge.Decode(doc, &merged); err != nil {
		return merged, apperr.Internal("decode merged product", err)
	}
	merged.Normalize()
	return merged, nil
}

// applyManufacturerPatch writes the manufacturer side of a merged patch and
// returns the manufacturer id the product should reference.
func applyManufacturerPatch(ctx context.Context, tx repositories.Store, existing *models.Product, merged models.ProductInput) (string, error) {
	if merged.Manufacturer == nil {
		m, err := findManufacturerRef(ctx, tx, merged.ManufacturerID)
		if err != nil {
			return "", err
		}
		return m.ID, nil
	}

	current := existing.Manufacturer
	next := *merged.Manufacturer
	contactID := current.ContactID
	if next.Contact == nil {
		c, err := findContactRef(ctx, tx, next.ContactID)
		if err != nil {
			return "", err
		}
		contactID = c.ID
	} else if changes := contactChanges(current.Contact, *next.Contact); len(changes) > 0 {
		if err := tx.Contacts().UpdateFields(ctx, current.ContactID, changes); err != nil {
			return "", err
		}
	}
	if changes := manufacturerChanges(current, next, contactID); len(changes) > 0 {
		if err := tx.Manufacturers().UpdateFields(ctx, current.ID, changes); err != nil {
			return "", err
		}
	}
	return current.ID, nil
}

// resolveManufacturer returns the manufacturer id for a create/replace
// payload, creating an inline manufacturer when no id is given.
func resolveManufacturer(ctx context.Context, tx repositories.Store, in models.ProductInput) (string, error) {
	if in.ManufacturerID != "" {
		m, err := findManufacturerRef(ctx, tx, in.ManufacturerID)
		if err != nil {
			return "", err
		}
		return m.ID, nil
	}
	m, err := insertManufacturer(ctx, tx, *in.Manufacturer)
	if err != nil {
		return "", err
	}
	return m.ID, nil
}

func ensureSKUFree(ctx context.Context, tx repositories.Store, sku, exceptID string) error {
	taken, err := tx.Products().SKUTaken(ctx, sku, exceptID)
	if err != nil {
		return err
	}
	if taken {
		return apperr.Conflict("a product with sku %q already exists", sku)
	}
	return nil
}
