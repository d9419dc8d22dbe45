package services

import (
	"context"
	"errors"

	"inventory/internal/apperr"
	"inventory/internal/logger"
	"inventory/internal/models"
	"inventory/internal/repositories"
	"inventory/internal/validation"
)

// ManufacturerService handles manufacturer lookups and lifecycle.
type ManufacturerService struct {
	store     repositories.Store
	validator *validation.Validator
	log       *logger.Logger
	opts      Options
}

// NewManufacturerService creates a new ManufacturerService.
func NewManufacturerService(store repositories.Store, validator *validation.Validator, log *logger.Logger, opts Options) *ManufacturerService {
	return &ManufacturerService{
		store:     store,
		validator: validator,
		log:       log.With("service", "ManufacturerService"),
		opts:      opts,
	}
}

// ListManufacturerNames returns each manufacturer name once, sorted.
func (s *ManufacturerService) ListManufacturerNames(ctx context.Context) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opts.timeout())
	defer cancel()

	names, err := s.store.Manufacturers().DistinctNames(ctx)
	if err != nil {
		return nil, storeFault(s.log, "list manufacturer names", err)
	}
	if names == nil {
		names = []string{}
	}
	return names, nil
}

// GetManufacturer returns the manufacturer with id and its contact.
func (s *ManufacturerService) GetManufacturer(ctx context.Context, id string) (*models.ManufacturerView, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opts.timeout())
	defer cancel()

	m, err := s.find(ctx, s.store, id)
	if err != nil {
		return nil, err
	}
	view := models.NewManufacturerView(*m)
	return &view, nil
}

// CreateManufacturer validates in and inserts it, creating an inline contact
// in the same transaction.
func (s *ManufacturerService) CreateManufacturer(ctx context.Context, in models.ManufacturerInput) (*models.ManufacturerView, error) {
	in.Normalize()
	if err := s.validator.ValidateCreate(validation.KindManufacturer, &in); err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, s.opts.timeout())
	defer cancel()

	var created *models.Manufacturer
	err := s.store.Transaction(ctx, func(tx repositories.Store) error {
		m, err := insertManufacturer(ctx, tx, in)
		if err != nil {
			return err
		}
		created, err = tx.Manufacturers().FindByID(ctx, m.ID)
		return err
	})
	if err != nil {
		return nil, storeFault(s.log, "create manufacturer", err)
	}
	view := models.NewManufacturerView(*created)
	return &view, nil
}

// DeleteManufacturer removes a manufacturer no product references. Its
// contact is removed too unless another manufacturer still uses it.
func (s *ManufacturerService) DeleteManufacturer(ctx context.Context, id string) (*models.ManufacturerView, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opts.timeout())
	defer cancel()

	var snapshot models.ManufacturerView
	err := s.store.Transaction(ctx, func(tx repositories.Store) error {
		m, err := s.find(ctx, tx, id)
		if err != nil {
			return err
		}
		inUse, err := tx.Products().CountByManufacturer(ctx, m.ID)
		if err != nil {
			return err
		}
		if inUse > 0 {
			return apperr.Conflict("manufacturer %s is referenced by %d product(s)", m.ID, inUse)
		}
		snapshot = models.NewManufacturerView(*m)

		if err := tx.Manufacturers().Delete(ctx, m.ID); err != nil {
			return err
		}
		return deleteUnusedContact(ctx, tx, m.ContactID)
	})
	if err != nil {
		return nil, storeFault(s.log, "delete manufacturer", err)
	}
	s.log.Info("manufacturer deleted", "manufacturerId", snapshot.ID)
	return &snapshot, nil
}

func (s *ManufacturerService) find(ctx context.Context, tx repositories.Store, id string) (*models.Manufacturer, error) {
	mid, ok := parseID(id)
	if !ok {
		s.log.Debug("malformed manufacturer id", "id", id)
		return nil, apperr.NotFound("manufacturer %s not found", id)
	}
	m, err := tx.Manufacturers().FindByID(ctx, mid)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, apperr.NotFound("manufacturer %s not found", id)
	}
	if err != nil {
		return nil, storeFault(s.log, "get manufacturer", err)
	}
	return m, nil
}
