package properties

import (
	"context"
	"fmt"
	"strings"

	"homelinks-backend/internal/domain"
	"homelinks-backend/internal/pkg/format"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// AdminListParams selects one page of the moderation queue.
type AdminListParams struct {
	Page   int
	Limit  int
	Status domain.PropertyStatus
}

// Normalize applies defaults and bounds to the paging values.
func (p AdminListParams) Normalize() AdminListParams {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = DefaultPageSize
	}
	if p.Limit > MaxPageSize {
		p.Limit = MaxPageSize
	}
	return p
}

// AdminProperty is one row of the admin listing table.
type AdminProperty struct {
	ID                uuid.UUID             `json:"id"`
	Title             string                `json:"title"`
	Description       string                `json:"description"`
	Price             string                `json:"price"`
	District          string                `json:"district"`
	Locality          string                `json:"locality"`
	PropertyType      string                `json:"propertyType"`
	TransactionType   string                `json:"transactionType"`
	CreatedAt         string                `json:"createdAt"`
	Status            domain.PropertyStatus `json:"status"`
	Images            []string              `json:"images"`
	SubmittedByEmail  string                `json:"submittedByEmail"`
	SubmittedByName   string                `json:"submittedByName"`
	SubmittedByMobile string                `json:"submittedByMobile"`
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return "N/A"
	}
	return s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// AdminList returns a page of listings in any state, newest first, with submitter details
// and the exact total count.
func (s *Service) AdminList(ctx context.Context, params AdminListParams) ([]AdminProperty, int64, error) {
	params = params.Normalize()
	db := s.DB.WithContext(ctx)

	base := func() *gorm.DB {
		q := db.Model(&domain.Property{})
		if params.Status != "" {
			q = q.Where("status = ?", params.Status)
		}
		return q
	}
	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}

	var props []domain.Property
	err := base().Preload("Images", preloadImages).
		Order("created_at DESC").
		Offset((params.Page - 1) * params.Limit).
		Limit(params.Limit).
		Find(&props).Error
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}

	ownerIDs := make([]uuid.UUID, 0, len(props))
	seen := make(map[uuid.UUID]bool, len(props))
	for _, p := range props {
		if !seen[p.UserID] {
			seen[p.UserID] = true
			ownerIDs = append(ownerIDs, p.UserID)
		}
	}

	emails := make(map[uuid.UUID]string, len(ownerIDs))
	profiles := make(map[uuid.UUID]domain.UserProfile, len(ownerIDs))
	if len(ownerIDs) > 0 {
		var users []domain.User
		if err := db.Select("id", "email").Where("id IN ?", ownerIDs).Find(&users).Error; err != nil {
			return nil, 0, fmt.Errorf("%w: %v", ErrFetchFailed, err)
		}
		for _, u := range users {
			emails[u.ID] = u.Email
		}
		// Profile details are decoration: a failure here degrades to N/A.
		var rows []domain.UserProfile
		if err := db.Where("id IN ?", ownerIDs).Find(&rows).Error; err != nil {
			log.Error().Err(err).Msg("admin properties: fetching user profiles failed")
		} else {
			for _, r := range rows {
				profiles[r.ID] = r
			}
		}
	}

	out := make([]AdminProperty, 0, len(props))
	for _, p := range props {
		prof := profiles[p.UserID]
		out = append(out, AdminProperty{
			ID:                p.ID,
			Title:             p.Title,
			Description:       p.Description,
			Price:             p.Price,
			District:          p.District,
			Locality:          p.Locality,
			PropertyType:      p.PropertyType,
			TransactionType:   p.TransactionType,
			CreatedAt:         format.Date(p.CreatedAt),
			Status:            p.Status,
			Images:            p.ImageURLs(),
			SubmittedByEmail:  orNA(emails[p.UserID]),
			SubmittedByName:   orNA(deref(prof.FirstName)),
			SubmittedByMobile: orNA(deref(prof.MobileNumber)),
		})
	}
	return out, total, nil
}

// Events returns the audit trail of a listing, oldest first.
func (s *Service) Events(ctx context.Context, propertyID uuid.UUID) ([]domain.PropertyEvent, error) {
	var events []domain.PropertyEvent
	err := s.DB.WithContext(ctx).Where("property_id = ?", propertyID).
		Order("created_at ASC").Find(&events).Error
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	return events, nil
}
