package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ContactView is the caller-facing shape of a Contact. ContactID repeats ID
// for clients of the older API.
type ContactView struct {
	ID        string `json:"id"`
	ContactID string `json:"contactId"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

type ManufacturerView struct {
	ID             string      `json:"id"`
	ManufacturerID string      `json:"manufacturerId"`
	Name           string      `json:"name"`
	Country        string      `json:"country"`
	Website        string      `json:"website,omitempty"`
	Description    string      `json:"description,omitempty"`
	Address        string      `json:"address"`
	Contact        ContactView `json:"contact"`
}

// ProductView is a product with its manufacturer and contact resolved.
type ProductView struct {
	ID             string           `json:"id"`
	ProductID      string           `json:"productId"`
	Name           string           `json:"name"`
	SKU            string           `json:"sku"`
	Description    string           `json:"description,omitempty"`
	Price          float64          `json:"price"`
	Category       string           `json:"category,omitempty"`
	AmountInStock  int              `json:"amountInStock"`
	ManufacturerID string           `json:"manufacturerId"`
	Manufacturer   ManufacturerView `json:"manufacturer"`
	CreatedAt      time.Time        `json:"createdAt"`
	UpdatedAt      time.Time        `json:"updatedAt"`
}

// CriticalStockView is the reduced shape returned for critically low stock.
type CriticalStockView struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	SKU           string `json:"sku"`
	AmountInStock int    `json:"amountInStock"`
	Manufacturer  struct {
		Name    string      `json:"name"`
		Contact ContactView `json:"contact"`
	} `json:"manufacturer"`
}

// ManufacturerStockValue is one row of the stock valuation report.
type ManufacturerStockValue struct {
	ManufacturerName string `json:"manufacturerName"`
	TotalStockValue  Money  `json:"totalStockValue"`
}

// Page is one page of a paginated listing.
type Page[T any] struct {
	Items      []T   `json:"items"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

// NewPage fills in the page count from total and limit.
func NewPage[T any](items []T, page, limit int, total int64) Page[T] {
	if items == nil {
		items = []T{}
	}
	pages := 0
	if limit > 0 {
		pages = int((total + int64(limit) - 1) / int64(limit))
	}
	return Page[T]{Items: items, Page: page, Limit: limit, Total: total, TotalPages: pages}
}

// Money is a currency amount rounded to two decimal places. It encodes as a
// JSON number with exactly two fractional digits.
type Money struct {
	decimal.Decimal
}

// NewMoney rounds f half away from zero to cents.
func NewMoney(f float64) Money {
	return Money{decimal.NewFromFloat(f).Round(2)}
}

func (m Money) String() string {
	return m.Decimal.StringFixed(2)
}

func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.Decimal.StringFixed(2)), nil
}

func (m *Money) UnmarshalJSON(data []byte) error {
	var d decimal.Decimal
	if err := d.UnmarshalJSON(data); err != nil {
		return err
	}
	m.Decimal = d.Round(2)
	return nil
}

func NewContactView(c Contact) ContactView {
	return ContactView{ID: c.ID, ContactID: c.ID, Name: c.Name, Email: c.Email, Phone: c.Phone}
}

func NewManufacturerView(m Manufacturer) ManufacturerView {
	return ManufacturerView{
		ID:             m.ID,
		ManufacturerID: m.ID,
		Name:           m.Name,
		Country:        m.Country,
		Website:        m.Website,
		Description:    m.Description,
		Address:        m.Address,
		Contact:        NewContactView(m.Contact),
	}
}

// NewProductView shapes p. The manufacturer and its contact must already be loaded.
func NewProductView(p Product) ProductView {
	return ProductView{
		ID:             p.ID,
		ProductID:      p.ID,
		Name:           p.Name,
		SKU:            p.SKU,
		Description:    p.Description,
		Price:          p.Price,
		Category:       p.Category,
		AmountInStock:  p.AmountInStock,
		ManufacturerID: p.ManufacturerID,
		Manufacturer:   NewManufacturerView(p.Manufacturer),
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}

func NewCriticalStockView(p Product) CriticalStockView {
	v := CriticalStockView{ID: p.ID, Name: p.Name, SKU: p.SKU, AmountInStock: p.AmountInStock}
	v.Manufacturer.Name = p.Manufacturer.Name
	v.Manufacturer.Contact = NewContactView(p.Manufacturer.Contact)
	return v
}
