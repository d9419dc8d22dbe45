package services

import "inventory/internal/models"

// The helpers below compute the column updates that turn a stored entity
// into the merged payload. Unchanged columns are left out.

func productChanges(p models.Product, in models.ProductInput, manufacturerID string) map[string]interface{} {
	next := in.NewProduct(manufacturerID)
	changes := map[string]interface{}{}
	setIfChanged(changes, "name", p.Name, next.Name)
	setIfChanged(changes, "sku", p.SKU, next.SKU)
	setIfChanged(changes, "description", p.Description, next.Description)
	setIfChanged(changes, "category", p.Category, next.Category)
	setIfChanged(changes, "manufacturer_id", p.ManufacturerID, next.ManufacturerID)
	if p.Price != next.Price {
		changes["price"] = next.Price
	}
	if p.AmountInStock != next.AmountInStock {
		changes["amount_in_stock"] = next.AmountInStock
	}
	return changes
}

func manufacturerChanges(m models.Manufacturer, in models.ManufacturerInput, contactID string) map[string]interface{} {
	changes := map[string]interface{}{}
	setIfChanged(changes, "name", m.Name, in.Name)
	setIfChanged(changes, "country", m.Country, in.Country)
	setIfChanged(changes, "website", m.Website, in.Website)
	setIfChanged(changes, "description", m.Description, in.Description)
	setIfChanged(changes, "address", m.Address, in.Address)
	setIfChanged(changes, "contact_id", m.ContactID, contactID)
	return changes
}

func contactChanges(c models.Contact, in models.ContactInput) map[string]interface{} {
	changes := map[string]interface{}{}
	setIfChanged(changes, "name", c.Name, in.Name)
	setIfChanged(changes, "email", c.Email, in.Email)
	setIfChanged(changes, "phone", c.Phone, in.Phone)
	return changes
}

func setIfChanged(changes map[string]interface{}, column, old, next string) {
	if old != next {
		changes[column] = next
	}
}
