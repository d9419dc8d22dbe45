package models

import "time"

// Product is a stocked item. It references its Manufacturer by id; the
// manufacturer is never copied into the product row.
type Product struct {
	ID             string       `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name           string       `json:"name" gorm:"type:varchar(255);not null"`
	SKU            string       `json:"sku" gorm:"uniqueIndex;type:varchar(100);not null"`
	Description    string       `json:"description" gorm:"type:varchar(1000)"`
	Price          float64      `json:"price" gorm:"not null"`
	Category       string       `json:"category" gorm:"type:varchar(100)"`
	AmountInStock  int          `json:"amountInStock" gorm:"not null"`
	ManufacturerID string       `json:"manufacturerId" gorm:"type:varchar(36);not null;index"`
	Manufacturer   Manufacturer `json:"manufacturer" gorm:"foreignKey:ManufacturerID"`
	CreatedAt      time.Time    `json:"createdAt" gorm:"index"`
	UpdatedAt      time.Time    `json:"updatedAt"`
}
