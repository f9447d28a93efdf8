package store

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/cppla/vitalog/models"
)

// CheckinStore persists daily check-ins. Every query is scoped by user_id.
type CheckinStore struct {
	db *gorm.DB
}

func NewCheckinStore(db *gorm.DB) *CheckinStore {
	return &CheckinStore{db: db}
}

// Create inserts rec. A second row for the same (user, date) yields ErrDuplicate.
func (s *CheckinStore) Create(ctx context.Context, rec *models.CheckinRecord) error {
	return translate(s.db.WithContext(ctx).Create(rec).Error)
}

// Update overwrites all metric columns of an existing row owned by rec.UserID.
func (s *CheckinStore) Update(ctx context.Context, rec *models.CheckinRecord) error {
	result := s.db.WithContext(ctx).
		Model(rec).
		Where("user_id = ?", rec.UserID).
		Select("*").
		Omit("id", "user_id", "created_at").
		Updates(rec)
	return translate(result.Error)
}

func (s *CheckinStore) GetByDate(ctx context.Context, userID uint, date time.Time) (models.CheckinRecord, error) {
	var rec models.CheckinRecord
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND date = ?", userID, date).
		First(&rec).Error
	if err != nil {
		return models.CheckinRecord{}, translate(err)
	}
	return rec, nil
}

// GetByID returns the record only when it belongs to userID.
func (s *CheckinStore) GetByID(ctx context.Context, userID, id uint) (models.CheckinRecord, error) {
	var rec models.CheckinRecord
	err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&rec).Error
	if err != nil {
		return models.CheckinRecord{}, translate(err)
	}
	return rec, nil
}

// ListSince returns records dated on or after since, newest first.
func (s *CheckinStore) ListSince(ctx context.Context, userID uint, since time.Time) ([]models.CheckinRecord, error) {
	var records []models.CheckinRecord
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND date >= ?", userID, since).
		Order("date DESC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

// Delete removes the record if it exists and belongs to userID.
func (s *CheckinStore) Delete(ctx context.Context, userID, id uint) (bool, error) {
	result := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&models.CheckinRecord{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
