package models

import "strings"

// The create payloads below carry the full validation schema for each entity
// in their `validate` tags. Patch rules are derived from the same tags.

// ContactInput is the create/replace payload for a Contact.
type ContactInput struct {
	Name  string `json:"name" validate:"required,min=2,max=100"`
	Email string `json:"email" validate:"required,email"`
	Phone string `json:"phone" validate:"required,phone"`
}

// ManufacturerInput is the create/replace payload for a Manufacturer. The
// contact is given either by ContactID or inline.
type ManufacturerInput struct {
	Name        string        `json:"name" validate:"required,min=2,max=255"`
	Country     string        `json:"country" validate:"required,min=2,max=100"`
	Website     string        `json:"website,omitempty" validate:"omitempty,website"`
	Description string        `json:"description,omitempty" validate:"omitempty,max=1000"`
	Address     string        `json:"address" validate:"required,max=500"`
	ContactID   string        `json:"contactId,omitempty" validate:"required_without=Contact"`
	Contact     *ContactInput `json:"contact,omitempty" validate:"required_without=ContactID"`
}

// ProductInput is the create/replace payload for a Product. The manufacturer
// is given either by ManufacturerID or inline; the id wins when both are set.
type ProductInput struct {
	Name           string             `json:"name" validate:"required,min=1,max=255"`
	SKU            string             `json:"sku" validate:"required,min=1,max=100"`
	Description    string             `json:"description,omitempty" validate:"omitempty,max=1000"`
	Price          *float64           `json:"price" validate:"required,gte=0"`
	Category       string             `json:"category,omitempty" validate:"omitempty,max=100"`
	AmountInStock  *int               `json:"amountInStock" validate:"required,gte=0"`
	ManufacturerID string             `json:"manufacturerId,omitempty" validate:"required_without=Manufacturer"`
	Manufacturer   *ManufacturerInput `json:"manufacturer,omitempty" validate:"required_without=ManufacturerID"`
}

// Normalize trims string fields and lowercases the email.
func (in *ContactInput) Normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Phone = strings.TrimSpace(in.Phone)
}

func (in *ManufacturerInput) Normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.Country = strings.TrimSpace(in.Country)
	in.Website = strings.TrimSpace(in.Website)
	in.Description = strings.TrimSpace(in.Description)
	in.Address = strings.TrimSpace(in.Address)
	in.ContactID = strings.TrimSpace(in.ContactID)
	if in.Contact != nil {
		in.Contact.Normalize()
	}
}

func (in *ProductInput) Normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.SKU = strings.TrimSpace(in.SKU)
	in.Description = strings.TrimSpace(in.Description)
	in.Category = strings.TrimSpace(in.Category)
	in.ManufacturerID = strings.TrimSpace(in.ManufacturerID)
	if in.Manufacturer != nil {
		in.Manufacturer.Normalize()
	}
}

// NewContact builds the entity for in. ID and timestamps are assigned by the store.
func (in ContactInput) NewContact() Contact {
	return Contact{Name: in.Name, Email: in.Email, Phone: in.Phone}
}

func (in ManufacturerInput) NewManufacturer(contactID string) Manufacturer {
	return Manufacturer{
		Name:        in.Name,
		Country:     in.Country,
		Website:     in.Website,
		Description: in.Description,
		Address:     in.Address,
		ContactID:   contactID,
	}
}

func (in ProductInput) NewProduct(manufacturerID string) Product {
	p := Product{
		Name:           in.Name,
		SKU:            in.SKU,
		Description:    in.Description,
		Category:       in.Category,
		ManufacturerID: manufacturerID,
	}
	if in.Price != nil {
		p.Price = *in.Price
	}
	if in.AmountInStock != nil {
		p.AmountInStock = *in.AmountInStock
	}
	return p
}

// ContactInputFrom is the inverse of NewContact.
func ContactInputFrom(c Contact) ContactInput {
	return ContactInput{Name: c.Name, Email: c.Email, Phone: c.Phone}
}

// ManufacturerInputFrom returns m as a payload with its contact both referenced and embedded.
func ManufacturerInputFrom(m Manufacturer) ManufacturerInput {
	contact := ContactInputFrom(m.Contact)
	return ManufacturerInput{
		Name:        m.Name,
		Country:     m.Country,
		Website:     m.Website,
		Description: m.Description,
		Address:     m.Address,
		ContactID:   m.ContactID,
		Contact:     &contact,
	}
}

// ProductInputFrom returns p as a payload with its manufacturer both referenced and embedded.
func ProductInputFrom(p Product) ProductInput {
	price := p.Price
	stock := p.AmountInStock
	manufacturer := ManufacturerInputFrom(p.Manufacturer)
	return ProductInput{
		Name:           p.Name,
		SKU:            p.SKU,
		Description:    p.Description,
		Price:          &price,
		Category:       p.Category,
		AmountInStock:  &stock,
		ManufacturerID: p.ManufacturerID,
		Manufacturer:   &manufacturer,
	}
}
