package properties

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"homelinks-backend/internal/application/auth"
	"homelinks-backend/internal/application/uploads"
	"homelinks-backend/internal/domain"
	"homelinks-backend/internal/pkg/constants"
	"homelinks-backend/internal/pkg/validation"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrSessionRequired = errors.New("You must be logged in to submit a property.")
	ErrSubmitFailed    = errors.New("An unexpected error occurred during property submission.")
)

// SubmitInput is the listing form.
type SubmitInput struct {
	Title           string `json:"title" form:"title"`
	Description     string `json:"description" form:"description"`
	Price           string `json:"price" form:"price"`
	District        string `json:"district" form:"district"`
	Locality        string `json:"locality" form:"locality"`
	PropertyType    string `json:"propertyType" form:"propertyType"`
	TransactionType string `json:"transactionType" form:"transactionType"`
}

// ValidateInput checks the listing form and returns the normalized price.
func ValidateInput(in SubmitInput) (string, error) {
	errs := validation.Errors{}
	if !validation.LengthBetween(in.Title, 5, 100) {
		errs.Add("title", "Title must be between 5 and 100 characters.")
	}
	if !validation.LengthBetween(in.Description, 20, 1000) {
		errs.Add("description", "Description must be between 20 and 1000 characters.")
	}
	price, ok := validation.ParsePrice(in.Price)
	if !ok {
		errs.Add("price", "Price must be a valid number.")
	}
	if !constants.IsValidDistrict(strings.TrimSpace(in.District)) {
		errs.Add("district", "Please select a district.")
	}
	if !validation.LengthBetween(in.Locality, 3, 100) {
		errs.Add("locality", "Locality must be between 3 and 100 characters.")
	}
	if !constants.IsValidPropertyType(strings.TrimSpace(in.PropertyType)) {
		errs.Add("propertyType", "Please select a property type.")
	}
	if !constants.IsValidTransactionType(strings.TrimSpace(in.TransactionType)) {
		errs.Add("transactionType", "Please select a transaction type.")
	}
	if err := errs.Err(); err != nil {
		return "", err
	}
	return price.String(), nil
}

// Submit runs the submission saga: validate, upload images, then write the listing, its images
// and a SUBMITTED event in one transaction. Uploaded images are deleted if the write fails.
// The listing always starts as pending.
func (s *Service) Submit(ctx context.Context, sess *auth.Session, in SubmitInput, files []uploads.ImageFile) (*PublicProperty, error) {
	if sess == nil {
		return nil, ErrSessionRequired
	}
	price, err := ValidateInput(in)
	if err != nil {
		return nil, err
	}
	if err := uploads.Validate(files); err != nil {
		return nil, err
	}

	stored, err := s.Uploads.UploadAll(ctx, files)
	if err != nil {
		return nil, err
	}

	prop := &domain.Property{
		UserID:          sess.UserID,
		Title:           strings.TrimSpace(in.Title),
		Description:     strings.TrimSpace(in.Description),
		Price:           price,
		District:        strings.TrimSpace(in.District),
		Locality:        strings.TrimSpace(in.Locality),
		PropertyType:    strings.TrimSpace(in.PropertyType),
		TransactionType: strings.TrimSpace(in.TransactionType),
	}
	for i, img := range stored {
		prop.Images = append(prop.Images, domain.PropertyImage{
			ImageURL:   img.URL,
			PublicID:   img.PublicID,
			OrderIndex: i,
		})
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(prop).Error; err != nil {
			return fmt.Errorf("create property: %w", err)
		}
		data, _ := json.Marshal(map[string]interface{}{
			"title":       prop.Title,
			"price":       prop.Price,
			"image_count": len(prop.Images),
		})
		ev := &domain.PropertyEvent{
			PropertyID: prop.ID,
			EventType:  domain.EventSubmitted,
			ActorID:    sess.UserID,
			EventData:  datatypes.JSON(data),
		}
		if err := tx.Create(ev).Error; err != nil {
			return fmt.Errorf("create property event: %w", err)
		}
		return nil
	})
	if err != nil {
		s.Uploads.Compensate(ctx, stored)
		return nil, fmt.Errorf("%w: %v", ErrSubmitFailed, err)
	}

	out := toPublic(*prop, true)
	return &out, nil
}
