package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"homelinks-backend/internal/domain"
	"homelinks-backend/internal/pkg/validation"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// SignupInput is the registration form.
type SignupInput struct {
	Email        string `json:"email"`
	Password     string `json:"password"`
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	MobileNumber string `json:"mobileNumber"`
}

// TokenResult is returned by a successful login.
type TokenResult struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	ExpiresAt   int64        `json:"expires_at"`
	User        *domain.User `json:"user"`
}

// LocalAccounts serves signup and password login when this service is its own identity provider.
type LocalAccounts struct {
	DB     *gorm.DB
	Issuer *Issuer
	Now    func() time.Time
}

func (l *LocalAccounts) now() time.Time {
	if l.Now != nil {
		return l.Now()
	}
	return time.Now()
}

// ValidateSignup checks the registration form.
func ValidateSignup(in SignupInput) error {
	errs := validation.Errors{}
	if strings.TrimSpace(in.FirstName) == "" {
		errs.Add("firstName", "First name is required.")
	}
	if !validation.IsValidMobileNumber(strings.TrimSpace(in.MobileNumber)) {
		errs.Add("mobileNumber", "Please enter a valid 10-digit Indian mobile number.")
	}
	if !validation.IsValidEmail(strings.TrimSpace(in.Email)) {
		errs.Add("email", "Invalid email address.")
	}
	if !validation.IsValidPassword(in.Password) {
		errs.Add("password", "Password must be at least 6 characters.")
	}
	return errs.Err()
}

// Signup creates the user and profile in one transaction.
func (l *LocalAccounts) Signup(ctx context.Context, in SignupInput) (*domain.User, error) {
	if err := ValidateSignup(in); err != nil {
		return nil, err
	}
	email := strings.ToLower(strings.TrimSpace(in.Email))
	mobile := strings.TrimSpace(in.MobileNumber)

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{Email: email, PasswordHash: string(hash)}
	err = l.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&domain.User{}).Where("email = ?", email).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return ErrEmailTaken
		}
		if err := tx.Model(&domain.UserProfile{}).Where("mobile_number = ?", mobile).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return ErrMobileTaken
		}
		if err := tx.Create(user).Error; err != nil {
			return err
		}
		first := strings.TrimSpace(in.FirstName)
		profile := &domain.UserProfile{ID: user.ID, FirstName: &first, MobileNumber: &mobile}
		if last := strings.TrimSpace(in.LastName); last != "" {
			profile.LastName = &last
		}
		return tx.Create(profile).Error
	})
	if err != nil {
		if errors.Is(err, ErrEmailTaken) || errors.Is(err, ErrMobileTaken) {
			return nil, err
		}
		return nil, fmt.Errorf("signup: %w", err)
	}
	return user, nil
}

// Login checks the password and issues an access token.
func (l *LocalAccounts) Login(ctx context.Context, email, password string) (*TokenResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, ErrEmailPasswordRequired
	}
	var u domain.User
	if err := l.DB.WithContext(ctx).Where("email = ?", email).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("load user: %w", err)
	}
	if u.PasswordHash == "" {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	now := l.now()
	if u.IsBlocked(now) {
		return nil, ErrAccountBlocked
	}
	token, exp, err := l.Issuer.Issue(u.ID, u.Email, now)
	if err != nil {
		return nil, err
	}
	return &TokenResult{AccessToken: token, TokenType: "bearer", ExpiresAt: exp.Unix(), User: &u}, nil
}
