package models

import "time"

// Manufacturer owns products and references exactly one Contact.
type Manufacturer struct {
	ID          string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name        string    `json:"name" gorm:"type:varchar(255);not null;index"`
	Country     string    `json:"country" gorm:"type:varchar(100);not null"`
	Website     string    `json:"website"`
	Description string    `json:"description" gorm:"type:varchar(1000)"`
	Address     string    `json:"address" gorm:"type:varchar(500);not null"`
	ContactID   string    `json:"contactId" gorm:"type:varchar(36);not null;index"`
	Contact     Contact   `json:"contact" gorm:"foreignKey:ContactID"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
