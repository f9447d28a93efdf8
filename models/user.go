package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// DefaultSubscriptionTier is assigned to every newly registered user.
const DefaultSubscriptionTier = "free"

// User represents an account. Passwords are stored as bcrypt hashes only.
type User struct {
	ID                  uint            `gorm:"primaryKey" json:"id"`
	Email               string          `gorm:"size:255;not null;uniqueIndex" json:"email"`
	PasswordHash        string          `gorm:"size:255;not null" json:"-"`
	FirstName           string          `gorm:"size:100" json:"firstName"`
	LastName            string          `gorm:"size:100" json:"lastName"`
	SubscriptionTier    string          `gorm:"size:32;not null;default:'free'" json:"subscriptionTier"`
	OnboardingCompleted bool            `gorm:"not null;default:false" json:"onboardingCompleted"`
	CreatedAt           time.Time       `json:"createdAt"`
	UpdatedAt           time.Time       `json:"updatedAt"`
	Checkins            []CheckinRecord `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
}

// FullName joins first and last name, skipping empty parts.
func (u User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// BeforeCreate normalizes the email and stamps UTC timestamps.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	u.Email = NormalizeEmail(u.Email)
	now := time.Now().UTC()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now
	if u.SubscriptionTier == "" {
		u.SubscriptionTier = DefaultSubscriptionTier
	}
	return nil
}

// BeforeUpdate ensures the UpdatedAt timestamp is refreshed.
func (u *User) BeforeUpdate(tx *gorm.DB) error {
	u.UpdatedAt = time.Now().UTC()
	return nil
}

// NormalizeEmail is the canonical form used for storage and lookups.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// UserProfile is the public subset of User returned to its owner.
type UserProfile struct {
	ID                  uint      `json:"id"`
	Email               string    `json:"email"`
	FirstName           string    `json:"firstName"`
	LastName            string    `json:"lastName"`
	SubscriptionTier    string    `json:"subscriptionTier"`
	OnboardingCompleted bool      `json:"onboardingCompleted"`
	CreatedAt           time.Time `json:"createdAt"`
}

// Profile converts u into its public representation.
func (u User) Profile() UserProfile {
	return UserProfile{
		ID:                  u.ID,
		Email:               u.Email,
		FirstName:           u.FirstName,
		LastName:            u.LastName,
		SubscriptionTier:    u.SubscriptionTier,
		OnboardingCompleted: u.OnboardingCompleted,
		CreatedAt:           u.CreatedAt,
	}
}
