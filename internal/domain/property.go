package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PropertyStatus is the moderation state of a listing.
type PropertyStatus string

const (
	StatusPending  PropertyStatus = "pending"
	StatusApproved PropertyStatus = "approved"
	StatusRejected PropertyStatus = "rejected"
)

// Valid reports whether s is one of the known moderation states.
func (s PropertyStatus) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

const (
	TransactionForSale = "For Sale"
	TransactionForRent = "For Rent"
)

// Property is a real-estate listing (properties table).
// Only approved properties are visible on public read paths.
type Property struct {
	ID              uuid.UUID       `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	UserID          uuid.UUID       `gorm:"column:user_id;type:uuid;not null;index" json:"user_id"`
	Title           string          `gorm:"column:title;not null" json:"title"`
	Description     string          `gorm:"column:description;type:text;not null" json:"description"`
	Price           string          `gorm:"column:price;not null" json:"price"`
	District        string          `gorm:"column:district;not null;index" json:"district"`
	Locality        string          `gorm:"column:locality;not null" json:"locality"`
	PropertyType    string          `gorm:"column:property_type;not null" json:"property_type"`
	TransactionType string          `gorm:"column:transaction_type;not null" json:"transaction_type"`
	Status          PropertyStatus  `gorm:"column:status;type:varchar(20);not null;default:'pending';index" json:"status"`
	Images          []PropertyImage `gorm:"foreignKey:PropertyID;constraint:OnDelete:CASCADE" json:"property_images"`
	CreatedAt       time.Time       `gorm:"column:created_at;index" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"column:updated_at" json:"updated_at"`
}

func (Property) TableName() string {
	return "properties"
}

// BeforeCreate assigns an id and forces new listings into pending, whatever the caller set.
func (p *Property) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	p.Status = StatusPending
	return nil
}

// IsPublic reports whether the property may be shown to anonymous visitors.
func (p *Property) IsPublic() bool {
	return p.Status == StatusApproved
}

// ImageURLs returns the image urls in display order.
func (p *Property) ImageURLs() []string {
	imgs := SortedImages(p.Images)
	urls := make([]string, 0, len(imgs))
	for _, img := range imgs {
		urls = append(urls, img.ImageURL)
	}
	return urls
}
