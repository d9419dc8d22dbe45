package services

import (
	"context"
	"database/sql/driver"
	"errors"
	"time"

	"inventory/internal/apperr"
	"inventory/internal/logger"
	"inventory/internal/models"
	"inventory/internal/repositories"

	"github.com/google/uuid"
)

const (
	DefaultStoreTimeout           = 5 * time.Second
	DefaultLowStockThreshold      = 10
	DefaultCriticalStockThreshold = 5
)

// Options tunes a service. Zero values select the defaults.
type Options struct {
	// StoreTimeout bounds every operation's store work.
	StoreTimeout time.Duration
	// MaxPageLimit caps the page size of listings; 0 means no cap.
	MaxPageLimit int
}

func (o Options) timeout() time.Duration {
	if o.StoreTimeout <= 0 {
		return DefaultStoreTimeout
	}
	return o.StoreTimeout
}

// parseID returns the canonical form of a syntactically valid entity id.
func parseID(id string) (string, bool) {
	u, err := uuid.Parse(id)
	if err != nil {
		return "", false
	}
	return u.String(), true
}

// storeFault turns an error from the store into the error taxonomy. Errors
// that already carry a kind pass through.
func storeFault(log *logger.Logger, op string, err error) error {
	var appErr *apperr.Error
	switch {
	case err == nil:
		return nil
	case errors.As(err, &appErr):
		return err
	case errors.Is(err, repositories.ErrDuplicate):
		return apperr.Conflict("%s: a product with this sku already exists", op)
	case errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled),
		errors.Is(err, driver.ErrBadConn):
		log.Warn("store unavailable", "op", op, "error", err)
		return apperr.Unavailable(op+": store unavailable", err)
	default:
		log.Error("store failure", "op", op, "error", err)
		return apperr.Internal(op+" failed", err)
	}
}

// checkResolved reports a dangling manufacturer or contact reference.
func checkResolved(p *models.Product) error {
	if p.Manufacturer.ID == "" {
		return apperr.Internal("product "+p.ID+" references missing manufacturer "+p.ManufacturerID, nil)
	}
	if p.Manufacturer.Contact.ID == "" {
		return apperr.Internal("manufacturer "+p.Manufacturer.ID+" references missing contact "+p.Manufacturer.ContactID, nil)
	}
	return nil
}

// findManufacturerRef resolves a manufacturer id given in a payload.
func findManufacturerRef(ctx context.Context, tx repositories.Store, id string) (*models.Manufacturer, error) {
	mid, ok := parseID(id)
	if !ok {
		return nil, apperr.ReferenceNotFound("manufacturer %s does not exist", id)
	}
	m, err := tx.Manufacturers().FindByID(ctx, mid)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, apperr.ReferenceNotFound("manufacturer %s does not exist", id)
	}
	return m, err
}

// findContactRef resolves a contact id given in a payload.
func findContactRef(ctx context.Context, tx repositories.Store, id string) (*models.Contact, error) {
	cid, ok := parseID(id)
	if !ok {
		return nil, apperr.ReferenceNotFound("contact %s does not exist", id)
	}
	c, err := tx.Contacts().FindByID(ctx, cid)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, apperr.ReferenceNotFound("contact %s does not exist", id)
	}
	return c, err
}

// insertManufacturer creates a manufacturer and, unless it references an
// existing contact, its contact. Callers run it inside a transaction.
func insertManufacturer(ctx context.Context, tx repositories.Store, in models.ManufacturerInput) (*models.Manufacturer, error) {
	var contact models.Contact
	if in.ContactID != "" {
		c, err := findContactRef(ctx, tx, in.ContactID)
		if err != nil {
			return nil, err
		}
		contact = *c
	} else {
		contact = in.Contact.NewContact()
		if err := tx.Contacts().Insert(ctx, &contact); err != nil {
			return nil, err
		}
	}

	m := in.NewManufacturer(contact.ID)
	if err := tx.Manufacturers().Insert(ctx, &m); err != nil {
		return nil, err
	}
	m.Contact = contact
	return &m, nil
}

// replaceManufacturer overwrites the manufacturer current with the inline
// payload in and returns the id the product should reference. A manufacturer
// or contact still used elsewhere is left untouched and a new one is created
// in its place. A contact released by the overwrite is removed when no
// manufacturer references it any more.
func replaceManufacturer(ctx context.Context, tx repositories.Store, current models.Manufacturer, in models.ManufacturerInput) (string, error) {
	if current.ID == "" {
		m, err := insertManufacturer(ctx, tx, in)
		if err != nil {
			return "", err
		}
		return m.ID, nil
	}
	users, err := tx.Products().CountByManufacturer(ctx, current.ID)
	if err != nil {
		return "", err
	}
	if users > 1 {
		m, err := insertManufacturer(ctx, tx, in)
		if err != nil {
			return "", err
		}
		return m.ID, nil
	}

	contactID, err := replaceContact(ctx, tx, current, in)
	if err != nil {
		return "", err
	}
	if changes := manufacturerChanges(current, in, contactID); len(changes) > 0 {
		if err := tx.Manufacturers().UpdateFields(ctx, current.ID, changes); err != nil {
			return "", err
		}
	}
	if current.ContactID != "" && current.ContactID != contactID {
		if err := deleteUnusedContact(ctx, tx, current.ContactID); err != nil {
			return "", err
		}
	}
	return current.ID, nil
}

func replaceContact(ctx context.Context, tx repositories.Store, current models.Manufacturer, in models.ManufacturerInput) (string, error) {
	if in.ContactID != "" {
		c, err := findContactRef(ctx, tx, in.ContactID)
		if err != nil {
			return "", err
		}
		return c.ID, nil
	}

	next := *in.Contact
	if current.Contact.ID != "" {
		shared, err := tx.Manufacturers().CountByContact(ctx, current.Contact.ID)
		if err != nil {
			return "", err
		}
		if shared <= 1 {
			if changes := contactChanges(current.Contact, next); len(changes) > 0 {
				if err := tx.Contacts().UpdateFields(ctx, current.Contact.ID, changes); err != nil {
					return "", err
				}
			}
			return current.Contact.ID, nil
		}
	}

	contact := next.NewContact()
	if err := tx.Contacts().Insert(ctx, &contact); err != nil {
		return "", err
	}
	return contact.ID, nil
}

func deleteUnusedContact(ctx context.Context, tx repositories.Store, contactID string) error {
	users, err := tx.Manufacturers().CountByContact(ctx, contactID)
	if err != nil {
		return err
	}
	if users > 0 {
		return nil
	}
	if err := tx.Contacts().Delete(ctx, contactID); err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return err
	}
	return nil
}
