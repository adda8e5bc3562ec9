package user

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"homelinks-backend/internal/application/auth"
	"homelinks-backend/internal/domain"
	"homelinks-backend/internal/pkg/format"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 1000
	DefaultPlan     = "Free"
)

var (
	ErrUserIDRequired = errors.New("User ID is required.")
	ErrNotSelf        = errors.New("Forbidden: You can only delete your own account.")
	ErrNotFound       = errors.New("User not found.")
	ErrFetchFailed    = errors.New("Failed to fetch users")
)

// UserRemover deletes a user and everything they own.
type UserRemover interface {
	RemoveUser(ctx context.Context, id uuid.UUID) error
}

// Service serves the admin user table and the account page.
type Service struct {
	DB      *gorm.DB
	Remover UserRemover
	Now     func() time.Time

	// ExportBatch is the page size used by ExportCSV; defaults to MaxPageSize.
	ExportBatch int
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// AdminUser is one row of the admin user table.
type AdminUser struct {
	SlNo           int       `json:"slNo"`
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	MobileNumber   string    `json:"mobileNumber"`
	Email          string    `json:"email"`
	AccountCreated string    `json:"accountCreated"`
	Plan           string    `json:"plan"`
	DaysLeft       string    `json:"daysLeft"`
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

// DaysLeft renders the remaining subscription time: whole days rounded up, "Expired" when
// nothing remains, "N/A" without an expiry.
func DaysLeft(expiresAt *time.Time, now time.Time) string {
	if expiresAt == nil {
		return "N/A"
	}
	days := int(math.Ceil(expiresAt.Sub(now).Hours() / 24))
	if days <= 0 {
		return "Expired"
	}
	return strconv.Itoa(days)
}

func nonAdmins(db *gorm.DB) *gorm.DB {
	return db.Model(&domain.User{}).Where("id NOT IN (?)", db.Model(&domain.AdminProfile{}).Select("id"))
}

// AdminList returns a page of non-admin users, oldest account first, and the total count.
// Serial numbers continue across pages.
func (s *Service) AdminList(ctx context.Context, page, limit int) ([]AdminUser, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	db := s.DB.WithContext(ctx)

	var total int64
	if err := nonAdmins(db).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	offset := (page - 1) * limit
	var users []domain.User
	if err := nonAdmins(db).Order("created_at ASC").Order("id ASC").Offset(offset).Limit(limit).Find(&users).Error; err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}

	ids := make([]uuid.UUID, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}
	profiles := map[uuid.UUID]domain.UserProfile{}
	subs := map[uuid.UUID]domain.UserSubscription{}
	if len(ids) > 0 {
		var ps []domain.UserProfile
		if err := db.Where("id IN ?", ids).Find(&ps).Error; err != nil {
			return nil, 0, fmt.Errorf("%w: %v", ErrFetchFailed, err)
		}
		for _, p := range ps {
			profiles[p.ID] = p
		}
		var ss []domain.UserSubscription
		if err := db.Where("user_id IN ?", ids).Order("created_at ASC").Find(&ss).Error; err != nil {
			return nil, 0, fmt.Errorf("%w: %v", ErrFetchFailed, err)
		}
		// Latest subscription wins.
		for _, sub := range ss {
			subs[sub.UserID] = sub
		}
	}

	now := s.now()
	out := make([]AdminUser, 0, len(users))
	for i, u := range users {
		p := profiles[u.ID]
		row := AdminUser{
			SlNo:           offset + i + 1,
			ID:             u.ID,
			Name:           orNA(strings.TrimSpace(deref(p.FirstName) + " " + deref(p.LastName))),
			MobileNumber:   orNA(deref(p.MobileNumber)),
			Email:          orNA(u.Email),
			AccountCreated: format.Date(u.CreatedAt),
			Plan:           DefaultPlan,
			DaysLeft:       "N/A",
		}
		if sub, ok := subs[u.ID]; ok {
			if sub.PlanName != "" {
				row.Plan = sub.PlanName
			}
			row.DaysLeft = DaysLeft(sub.ExpiresAt, now)
		}
		out = append(out, row)
	}
	return out, total, nil
}

// CSVHeader is the column order of the exported user table.
var CSVHeader = []string{"slNo", "id", "name", "mobileNumber", "email", "accountCreated", "plan", "daysLeft"}

// WriteCSV writes a header line and one line per row.
func WriteCSV(w io.Writer, rows []AdminUser) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return err
	}
	if err := writeRows(cw, rows); err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}

func writeRows(cw *csv.Writer, rows []AdminUser) error {
	for _, r := range rows {
		rec := []string{
			strconv.Itoa(r.SlNo), r.ID.String(), r.Name, r.MobileNumber,
			r.Email, r.AccountCreated, r.Plan, r.DaysLeft,
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	return nil
}

// ExportCSV writes every non-admin user, fetched in batches, and returns the number of rows.
func (s *Service) ExportCSV(ctx context.Context, w io.Writer) (int, error) {
	batch := s.ExportBatch
	if batch < 1 || batch > MaxPageSize {
		batch = MaxPageSize
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return 0, err
	}
	written := 0
	for page := 1; ; page++ {
		rows, total, err := s.AdminList(ctx, page, batch)
		if err != nil {
			return written, err
		}
		if err := writeRows(cw, rows); err != nil {
			return written, err
		}
		written += len(rows)
		if len(rows) < batch || int64(written) >= total {
			break
		}
	}
	cw.Flush()
	return written, cw.Error()
}

// Profile is the account page view of the signed-in user.
type Profile struct {
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	MobileNumber string `json:"mobileNumber"`
	Email        string `json:"email"`
}

// GetProfile returns the profile of userID. A missing profile row yields empty names.
func (s *Service) GetProfile(ctx context.Context, userID uuid.UUID) (*Profile, error) {
	db := s.DB.WithContext(ctx)
	var u domain.User
	if err := db.Where("id = ?", userID).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load user: %w", err)
	}
	var p domain.UserProfile
	if err := db.Where("id = ?", userID).Limit(1).Find(&p).Error; err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}
	return &Profile{
		FirstName:    deref(p.FirstName),
		LastName:     deref(p.LastName),
		MobileNumber: deref(p.MobileNumber),
		Email:        u.Email,
	}, nil
}

// DeleteSelf removes the caller's own account. Any other target is refused.
func (s *Service) DeleteSelf(ctx context.Context, sess *auth.Session, userID uuid.UUID) error {
	if userID == uuid.Nil {
		return ErrUserIDRequired
	}
	if sess == nil || sess.UserID != userID {
		return ErrNotSelf
	}
	return s.Remover.RemoveUser(ctx, userID)
}
