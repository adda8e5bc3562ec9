package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is an authenticated principal (mirror of the auth platform's users table).
type User struct {
	ID           uuid.UUID  `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Email        string     `gorm:"column:email;uniqueIndex" json:"email"`
	PasswordHash string     `gorm:"column:password_hash" json:"-"`
	BannedUntil  *time.Time `gorm:"column:banned_until" json:"banned_until"`
	CreatedAt    time.Time  `gorm:"column:created_at;index" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"column:updated_at" json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// UserProfile holds signup details. Id equals the user id.
type UserProfile struct {
	ID           uuid.UUID `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	FirstName    *string   `gorm:"column:first_name" json:"first_name"`
	LastName     *string   `gorm:"column:last_name" json:"last_name"`
	MobileNumber *string   `gorm:"column:mobile_number;uniqueIndex" json:"mobile_number"`
	CreatedAt    time.Time `gorm:"column:created_at" json:"created_at"`
}

func (UserProfile) TableName() string {
	return "user_profiles"
}

// AdminProfile marks membership in the admin identity set.
type AdminProfile struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
}

func (AdminProfile) TableName() string {
	return "admin_profiles"
}

// UserSubscription is a paid plan held by a user.
type UserSubscription struct {
	ID        uuid.UUID  `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID  `gorm:"column:user_id;type:uuid;not null;index" json:"user_id"`
	PlanName  string     `gorm:"column:plan_name" json:"plan_name"`
	ExpiresAt *time.Time `gorm:"column:expires_at" json:"expires_at"`
	CreatedAt time.Time  `gorm:"column:created_at" json:"created_at"`
}

func (UserSubscription) TableName() string {
	return "user_subscriptions"
}

func (s *UserSubscription) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
