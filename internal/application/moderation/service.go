package moderation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"homelinks-backend/internal/application/auth"
	"homelinks-backend/internal/domain"
	"homelinks-backend/internal/infrastructure/supabase"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrPropertyIDRequired   = errors.New("Property ID is required.")
	ErrUserIDRequired       = errors.New("User ID is required.")
	ErrInvalidAction        = errors.New("Invalid action.")
	ErrPropertyNotFound     = errors.New("Property not found.")
	ErrUserNotFound         = errors.New("User not found.")
	ErrTransitionNotAllowed = errors.New("This status change is not allowed.")
)

// AuthAdmin mirrors user changes to the external auth platform. An unknown user is reported
// as supabase.ErrNotFound.
type AuthAdmin interface {
	DeleteUser(ctx context.Context, id uuid.UUID) error
	SetBannedUntil(ctx context.Context, id uuid.UUID, until *time.Time) error
}

// Service applies admin decisions to listings and users.
type Service struct {
	DB        *gorm.DB
	Policy    TransitionPolicy
	Publisher Publisher // optional
	AuthAdmin AuthAdmin // optional
	Now       func() time.Time
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Service) policy() TransitionPolicy {
	if s.Policy == nil {
		return PermissivePolicy{}
	}
	return s.Policy
}

// ApproveProperty moves a listing to approved.
func (s *Service) ApproveProperty(ctx context.Context, actor *auth.Session, id uuid.UUID) error {
	return s.setStatus(ctx, actor, id, domain.StatusApproved)
}

// RejectProperty moves a listing to rejected.
func (s *Service) RejectProperty(ctx context.Context, actor *auth.Session, id uuid.UUID) error {
	return s.setStatus(ctx, actor, id, domain.StatusRejected)
}

func (s *Service) setStatus(ctx context.Context, actor *auth.Session, id uuid.UUID, to domain.PropertyStatus) error {
	if id == uuid.Nil {
		return ErrPropertyIDRequired
	}
	eventType := domain.EventApproved
	if to == domain.StatusRejected {
		eventType = domain.EventRejected
	}

	var prop domain.Property
	var from domain.PropertyStatus
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&prop).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPropertyNotFound
			}
			return err
		}
		from = prop.Status
		if !s.policy().Allowed(from, to) {
			return ErrTransitionNotAllowed
		}
		if err := tx.Model(&domain.Property{}).Where("id = ?", id).
			Updates(map[string]interface{}{"status": to, "updated_at": s.now()}).Error; err != nil {
			return err
		}
		data, _ := json.Marshal(map[string]string{"from": string(from), "to": string(to)})
		return tx.Create(&domain.PropertyEvent{
			PropertyID: id,
			EventType:  eventType,
			ActorID:    actor.UserID,
			EventData:  datatypes.JSON(data),
		}).Error
	})
	if err != nil {
		if errors.Is(err, ErrPropertyNotFound) || errors.Is(err, ErrTransitionNotAllowed) {
			return err
		}
		return fmt.Errorf("update property status: %w", err)
	}

	log.Info().Str("property_id", id.String()).Str("from", string(from)).Str("to", string(to)).
		Str("actor_id", actor.UserID.String()).Msg("moderation: property status changed")
	if s.Publisher != nil {
		ev := StatusChanged{PropertyID: id, OwnerID: prop.UserID, From: string(from), To: string(to), ActorID: actor.UserID, At: s.now()}
		if err := s.Publisher.Publish(ctx, ev); err != nil {
			log.Error().Err(err).Str("property_id", id.String()).Msg("moderation: publish failed")
		}
	}
	return nil
}

// DeleteUser removes a user with their profile and listings.
func (s *Service) DeleteUser(ctx context.Context, actor *auth.Session, id uuid.UUID) error {
	if id == uuid.Nil {
		return ErrUserIDRequired
	}
	if err := s.RemoveUser(ctx, id); err != nil {
		return err
	}
	log.Info().Str("user_id", id.String()).Str("actor_id", actor.UserID.String()).Msg("moderation: user deleted")
	return nil
}

// RemoveUser deletes a user with their profile, subscriptions and listings, then mirrors the
// deletion to the auth platform when one is configured. With a platform configured, a user
// without a local row is still removed there.
func (s *Service) RemoveUser(ctx context.Context, id uuid.UUID) error {
	var local bool
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var u domain.User
		res := tx.Where("id = ?", id).Limit(1).Find(&u)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		local = true
		owned := tx.Model(&domain.Property{}).Select("id").Where("user_id = ?", id)
		if err := tx.Where("property_id IN (?)", owned).Delete(&domain.PropertyImage{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&domain.Property{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&domain.UserSubscription{}).Error; err != nil {
			return err
		}
		if err := tx.Where("id = ?", id).Delete(&domain.UserProfile{}).Error; err != nil {
			return err
		}
		if err := tx.Where("id = ?", id).Delete(&domain.AdminProfile{}).Error; err != nil {
			return err
		}
		return tx.Delete(&u).Error
	})
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if s.AuthAdmin == nil {
		if !local {
			return ErrUserNotFound
		}
		return nil
	}

	if err := s.AuthAdmin.DeleteUser(ctx, id); err != nil {
		if errors.Is(err, supabase.ErrNotFound) {
			if !local {
				return ErrUserNotFound
			}
			return nil
		}
		if local {
			log.Error().Err(err).Str("user_id", id.String()).
				Msg("moderation: local user removed but auth platform delete failed")
		}
		return fmt.Errorf("delete user on auth platform: %w", err)
	}
	return nil
}

// BlockUser bans a user permanently.
func (s *Service) BlockUser(ctx context.Context, actor *auth.Session, id uuid.UUID) error {
	until := domain.PermanentBanUntil
	return s.setBan(ctx, actor, id, &until)
}

// UnblockUser lifts any ban.
func (s *Service) UnblockUser(ctx context.Context, actor *auth.Session, id uuid.UUID) error {
	return s.setBan(ctx, actor, id, nil)
}

func (s *Service) setBan(ctx context.Context, actor *auth.Session, id uuid.UUID, until *time.Time) error {
	if id == uuid.Nil {
		return ErrUserIDRequired
	}
	res := s.DB.WithContext(ctx).Model(&domain.User{}).Where("id = ?", id).
		Updates(map[string]interface{}{"banned_until": until, "updated_at": s.now()})
	if res.Error != nil {
		return fmt.Errorf("update user ban: %w", res.Error)
	}
	if res.RowsAffected == 0 && s.AuthAdmin == nil {
		return ErrUserNotFound
	}
	if s.AuthAdmin != nil {
		if err := s.AuthAdmin.SetBannedUntil(ctx, id, until); err != nil {
			if errors.Is(err, supabase.ErrNotFound) && res.RowsAffected == 0 {
				return ErrUserNotFound
			}
			return fmt.Errorf("update ban on auth platform: %w", err)
		}
	}
	log.Info().Str("user_id", id.String()).Bool("blocked", until != nil).
		Str("actor_id", actor.UserID.String()).Msg("moderation: user ban updated")
	return nil
}
