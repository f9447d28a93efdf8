package store

import (
	"context"

	"gorm.io/gorm"

	"github.com/cppla/vitalog/models"
)

// UserStore handles persistence for users.
type UserStore struct {
	db *gorm.DB
}

func NewUserStore(db *gorm.DB) *UserStore {
	return &UserStore{db: db}
}

func (s *UserStore) GetByID(ctx context.Context, id uint) (models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return models.User{}, translate(err)
	}
	return user, nil
}

// GetByEmail looks up a user by normalized (lower-cased) email.
func (s *UserStore) GetByEmail(ctx context.Context, email string) (models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).
		Where("email = ?", models.NormalizeEmail(email)).
		First(&user).Error
	if err != nil {
		return models.User{}, translate(err)
	}
	return user, nil
}

func (s *UserStore) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&models.User{}).
		Where("email = ?", models.NormalizeEmail(email)).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Create inserts user and fills its ID. A taken email yields ErrDuplicate.
func (s *UserStore) Create(ctx context.Context, user *models.User) error {
	return translate(s.db.WithContext(ctx).Create(user).Error)
}

// Update writes back every mutable profile column.
func (s *UserStore) Update(ctx context.Context, user *models.User) error {
	result := s.db.WithContext(ctx).
		Model(user).
		Select("first_name", "last_name", "onboarding_completed", "subscription_tier", "updated_at").
		Updates(user)
	return translate(result.Error)
}
