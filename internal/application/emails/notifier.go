package emails

import (
	"context"
	"fmt"

	"homelinks-backend/internal/application/moderation"
	"homelinks-backend/internal/domain"

	"gorm.io/gorm"
)

// ModerationNotifier emails the owner when an admin approves or disapproves their listing.
// It is a moderation.Publisher; changes back to pending are not mailed.
type ModerationNotifier struct {
	DB     *gorm.DB
	Sender Sender
}

func (n *ModerationNotifier) Publish(ctx context.Context, ev moderation.StatusChanged) error {
	if n.Sender == nil || ev.From == ev.To {
		return nil
	}
	var approved bool
	switch domain.PropertyStatus(ev.To) {
	case domain.StatusApproved:
		approved = true
	case domain.StatusRejected:
	default:
		return nil
	}

	db := n.DB.WithContext(ctx)
	var prop domain.Property
	if err := db.Select("id", "title").Where("id = ?", ev.PropertyID).First(&prop).Error; err != nil {
		return fmt.Errorf("load property for notification: %w", err)
	}
	var owner domain.User
	if err := db.Select("id", "email").Where("id = ?", ev.OwnerID).First(&owner).Error; err != nil {
		return fmt.Errorf("load owner for notification: %w", err)
	}
	if owner.Email == "" {
		return nil
	}
	var profile domain.UserProfile
	if err := db.Where("id = ?", ev.OwnerID).Limit(1).Find(&profile).Error; err != nil {
		return fmt.Errorf("load owner profile for notification: %w", err)
	}
	firstName := ""
	if profile.FirstName != nil {
		firstName = *profile.FirstName
	}
	return n.Sender.SendListingDecision(ctx, owner.Email, firstName, prop.Title, approved)
}
