package properties

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"homelinks-backend/internal/application/uploads"
	"homelinks-backend/internal/domain"
	"homelinks-backend/internal/pkg/format"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrNotFound    = errors.New("Property not found or not approved.")
	ErrFetchFailed = errors.New("Failed to fetch properties")
)

// Service serves listing reads and submissions.
type Service struct {
	DB      *gorm.DB
	Uploads *uploads.Service
	Now     func() time.Time
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Filter narrows the public search. Empty fields do not filter.
type Filter struct {
	TransactionType string
	District        string
	Query           string
	PropertyType    string
	Limit           int
}

// PublicProperty is the listing shape served to visitors and owners.
type PublicProperty struct {
	ID              uuid.UUID              `json:"id"`
	Title           string                 `json:"title"`
	Description     string                 `json:"description"`
	Price           string                 `json:"price"`
	PriceFormatted  string                 `json:"price_formatted"`
	District        string                 `json:"district"`
	Locality        string                 `json:"locality"`
	PropertyType    string                 `json:"property_type"`
	TransactionType string                 `json:"transaction_type"`
	Status          domain.PropertyStatus  `json:"status,omitempty"`
	CreatedAt       time.Time              `json:"created_at"`
	Images          []domain.PropertyImage `json:"property_images"`
}

func toPublic(p domain.Property, withStatus bool) PublicProperty {
	out := PublicProperty{
		ID:              p.ID,
		Title:           p.Title,
		Description:     p.Description,
		Price:           p.Price,
		PriceFormatted:  format.INR(p.Price),
		District:        p.District,
		Locality:        p.Locality,
		PropertyType:    p.PropertyType,
		TransactionType: p.TransactionType,
		CreatedAt:       p.CreatedAt,
		Images:          domain.SortedImages(p.Images),
	}
	if withStatus {
		out.Status = p.Status
	}
	return out
}

func toPublicList(props []domain.Property, withStatus bool) []PublicProperty {
	out := make([]PublicProperty, 0, len(props))
	for _, p := range props {
		out = append(out, toPublic(p, withStatus))
	}
	return out
}

func preloadImages(db *gorm.DB) *gorm.DB {
	return db.Order("order_index ASC")
}

// likePattern escapes LIKE wildcards in q and wraps it for a contains match.
func likePattern(q string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + strings.ToLower(r.Replace(q)) + "%"
}

// Search returns approved listings matching f, newest first.
func (s *Service) Search(ctx context.Context, f Filter) ([]PublicProperty, error) {
	q := s.DB.WithContext(ctx).Model(&domain.Property{}).
		Where("status = ?", domain.StatusApproved)
	if f.TransactionType != "" {
		q = q.Where("transaction_type = ?", f.TransactionType)
	}
	if f.District != "" {
		q = q.Where("district = ?", f.District)
	}
	if f.PropertyType != "" {
		q = q.Where("LOWER(property_type) = ?", strings.ToLower(f.PropertyType))
	}
	if text := strings.TrimSpace(f.Query); text != "" {
		p := likePattern(text)
		q = q.Where(`(LOWER(title) LIKE ? ESCAPE '\' OR LOWER(locality) LIKE ? ESCAPE '\' OR LOWER(description) LIKE ? ESCAPE '\')`, p, p, p)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	var props []domain.Property
	if err := q.Preload("Images", preloadImages).Order("created_at DESC").Find(&props).Error; err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	return toPublicList(props, false), nil
}

// GetPublic returns one approved listing; any other state is ErrNotFound.
func (s *Service) GetPublic(ctx context.Context, id uuid.UUID) (*PublicProperty, error) {
	var p domain.Property
	err := s.DB.WithContext(ctx).Preload("Images", preloadImages).
		Where("id = ? AND status = ?", id, domain.StatusApproved).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	out := toPublic(p, false)
	return &out, nil
}

// ListByOwner returns every listing of userID with its status, newest first.
func (s *Service) ListByOwner(ctx context.Context, userID uuid.UUID) ([]PublicProperty, error) {
	var props []domain.Property
	err := s.DB.WithContext(ctx).Preload("Images", preloadImages).
		Where("user_id = ?", userID).Order("created_at DESC").Find(&props).Error
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	return toPublicList(props, true), nil
}
