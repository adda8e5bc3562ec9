package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"homelinks-backend/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Authenticator resolves bearer tokens into sessions and answers admin membership.
type Authenticator struct {
	DB       *gorm.DB
	Verifier TokenVerifier
	// Provision mirrors users seen for the first time (tokens issued by the external auth platform).
	Provision bool
	Now       func() time.Time
}

func (a *Authenticator) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now()
}

// Authenticate verifies token and loads the user it names. Blocked and unknown users are rejected.
func (a *Authenticator) Authenticate(ctx context.Context, token string) (*Session, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrTokenMissing
	}
	claims, err := a.Verifier.Verify(ctx, token)
	if err != nil {
		if errors.Is(err, ErrInvalidToken) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}

	now := a.now()
	var u domain.User
	err = a.DB.WithContext(ctx).Where("id = ?", claims.Subject).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		if !a.Provision {
			return nil, ErrInvalidToken
		}
		u = domain.User{ID: claims.Subject, Email: claims.Email}
		if err := a.DB.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&u).Error; err != nil {
			return nil, fmt.Errorf("provision user: %w", err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if u.IsBlocked(now) {
		return nil, ErrInvalidToken
	}

	email := u.Email
	if email == "" {
		email = claims.Email
	}
	return &Session{UserID: u.ID, Email: email, ResolvedAt: now}, nil
}

// IsAdmin reports whether userID belongs to the admin identity set. Never cached.
func (a *Authenticator) IsAdmin(ctx context.Context, userID uuid.UUID) (bool, error) {
	var n int64
	if err := a.DB.WithContext(ctx).Model(&domain.AdminProfile{}).Where("id = ?", userID).Count(&n).Error; err != nil {
		return false, fmt.Errorf("check admin: %w", err)
	}
	return n > 0, nil
}

// Reauthenticate resolves a fresh session including the admin flag.
func (a *Authenticator) Reauthenticate(ctx context.Context, token string) (*Session, error) {
	s, err := a.Authenticate(ctx, token)
	if err != nil {
		return nil, err
	}
	s.IsAdmin, err = a.IsAdmin(ctx, s.UserID)
	if err != nil {
		return nil, err
	}
	return s, nil
}
