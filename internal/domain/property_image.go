package domain

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PropertyImage is an ordered image reference owned by a Property.
type PropertyImage struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;primaryKey" json:"-"`
	PropertyID uuid.UUID `gorm:"column:property_id;type:uuid;not null;index" json:"-"`
	ImageURL   string    `gorm:"column:image_url;type:text;not null" json:"image_url"`
	PublicID   string    `gorm:"column:public_id" json:"-"`
	OrderIndex int       `gorm:"column:order_index;not null;default:0" json:"order_index"`
	CreatedAt  time.Time `gorm:"column:created_at" json:"-"`
}

func (PropertyImage) TableName() string {
	return "property_images"
}

func (i *PropertyImage) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// SortedImages returns a copy of imgs ordered by OrderIndex.
func SortedImages(imgs []PropertyImage) []PropertyImage {
	out := make([]PropertyImage, len(imgs))
	copy(out, imgs)
	sort.SliceStable(out, func(a, b int) bool { return out[a].OrderIndex < out[b].OrderIndex })
	return out
}
