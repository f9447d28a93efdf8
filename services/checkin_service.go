package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/cppla/vitalog/models"
	"github.com/cppla/vitalog/store"
)

const (
	MinRecentDays = 1
	MaxRecentDays = 90
)

// CheckinRepository defines persistence operations for check-ins. Every
// method is scoped to a single user.
type CheckinRepository interface {
	Create(ctx context.Context, rec *models.CheckinRecord) error
	Update(ctx context.Context, rec *models.CheckinRecord) error
	GetByDate(ctx context.Context, userID uint, date time.Time) (models.CheckinRecord, error)
	GetByID(ctx context.Context, userID, id uint) (models.CheckinRecord, error)
	ListSince(ctx context.Context, userID uint, since time.Time) ([]models.CheckinRecord, error)
	Delete(ctx context.Context, userID, id uint) (bool, error)
}

// CacheInvalidator drops cached entries by key prefix.
type CacheInvalidator interface {
	InvalidatePrefix(ctx context.Context, prefix string)
}

// AnalyticsCachePrefix is the key prefix of every cached aggregate for userID.
func AnalyticsCachePrefix(userID uint) string {
	return fmt.Sprintf("cache:analytics:%d:", userID)
}

// CheckinService encapsulates daily check-in use-cases.
type CheckinService struct {
	repo     CheckinRepository
	cache    CacheInvalidator
	loc      *time.Location
	now      func() time.Time
	validate *validator.Validate
}

// NewCheckinService builds the service. "Today" is computed in loc; now and
// cache may be nil.
func NewCheckinService(repo CheckinRepository, loc *time.Location, now func() time.Time, cache CacheInvalidator) *CheckinService {
	if loc == nil {
		loc = time.UTC
	}
	if now == nil {
		now = time.Now
	}
	return &CheckinService{
		repo:     repo,
		cache:    cache,
		loc:      loc,
		now:      now,
		validate: newValidator(),
	}
}

// Today is the current calendar date in the service time zone, as UTC midnight.
func (s *CheckinService) Today() time.Time {
	y, m, d := s.now().In(s.loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Create inserts a new check-in and fails with ErrDuplicateCheckin if the date is taken.
func (s *CheckinService) Create(ctx context.Context, userID uint, in models.CheckinInput) (models.CheckinRecord, error) {
	if userID == 0 {
		return models.CheckinRecord{}, ErrUnauthorized
	}
	date, metrics, err := s.prepare(in, time.Time{})
	if err != nil {
		return models.CheckinRecord{}, err
	}

	rec := models.CheckinRecord{UserID: userID, Date: date, CheckinMetrics: metrics}
	if err := s.repo.Create(ctx, &rec); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return models.CheckinRecord{}, ErrDuplicateCheckin
		}
		return models.CheckinRecord{}, err
	}
	s.invalidate(ctx, userID)
	return rec, nil
}

// CreateOrUpdate writes the check-in for the input date, replacing every
// metric of an existing record. created reports whether a row was inserted.
func (s *CheckinService) CreateOrUpdate(ctx context.Context, userID uint, in models.CheckinInput) (models.CheckinRecord, bool, error) {
	if userID == 0 {
		return models.CheckinRecord{}, false, ErrUnauthorized
	}
	date, metrics, err := s.prepare(in, time.Time{})
	if err != nil {
		return models.CheckinRecord{}, false, err
	}

	existing, err := s.repo.GetByDate(ctx, userID, date)
	switch {
	case err == nil:
		rec, err := s.overwrite(ctx, existing, metrics)
		return rec, false, err
	case !errors.Is(err, store.ErrNotFound):
		return models.CheckinRecord{}, false, err
	}

	rec := models.CheckinRecord{UserID: userID, Date: date, CheckinMetrics: metrics}
	err = s.repo.Create(ctx, &rec)
	if err == nil {
		s.invalidate(ctx, userID)
		return rec, true, nil
	}
	if !errors.Is(err, store.ErrDuplicate) {
		return models.CheckinRecord{}, false, err
	}

	// Lost an insert race for the same date: last writer wins.
	existing, err = s.repo.GetByDate(ctx, userID, date)
	if err != nil {
		return models.CheckinRecord{}, false, err
	}
	rec, err = s.overwrite(ctx, existing, metrics)
	return rec, false, err
}

func (s *CheckinService) overwrite(ctx context.Context, rec models.CheckinRecord, metrics models.CheckinMetrics) (models.CheckinRecord, error) {
	rec.CheckinMetrics = metrics
	rec.UpdatedAt = s.now().UTC()
	if err := s.repo.Update(ctx, &rec); err != nil {
		return models.CheckinRecord{}, s.mapErr(err)
	}
	s.invalidate(ctx, rec.UserID)
	return rec, nil
}

// GetByDate returns the caller's check-in for a YYYY-MM-DD date.
func (s *CheckinService) GetByDate(ctx context.Context, userID uint, date string) (models.CheckinRecord, error) {
	if userID == 0 {
		return models.CheckinRecord{}, ErrUnauthorized
	}
	d, err := ParseDate(date)
	if err != nil {
		return models.CheckinRecord{}, err
	}
	rec, err := s.repo.GetByDate(ctx, userID, d)
	if err != nil {
		return models.CheckinRecord{}, s.mapErr(err)
	}
	if rec.UserID != userID {
		return models.CheckinRecord{}, ErrCheckinNotFound
	}
	return rec, nil
}

// GetAllByDate returns zero or one records, since a date holds at most one check-in.
func (s *CheckinService) GetAllByDate(ctx context.Context, userID uint, date string) ([]models.CheckinRecord, error) {
	rec, err := s.GetByDate(ctx, userID, date)
	if errors.Is(err, ErrCheckinNotFound) {
		return []models.CheckinRecord{}, nil
	}
	if err != nil {
		return nil, err
	}
	return []models.CheckinRecord{rec}, nil
}

// GetLatestByDate returns the most recent check-in for date.
func (s *CheckinService) GetLatestByDate(ctx context.Context, userID uint, date string) (models.CheckinRecord, error) {
	return s.GetByDate(ctx, userID, date)
}

// GetByID returns a check-in owned by userID.
func (s *CheckinService) GetByID(ctx context.Context, userID, id uint) (models.CheckinRecord, error) {
	if userID == 0 {
		return models.CheckinRecord{}, ErrUnauthorized
	}
	rec, err := s.repo.GetByID(ctx, userID, id)
	if err != nil {
		return models.CheckinRecord{}, s.mapErr(err)
	}
	if rec.UserID != userID {
		return models.CheckinRecord{}, ErrCheckinNotFound
	}
	return rec, nil
}

// ListRecent returns check-ins dated within the last days days, newest first.
func (s *CheckinService) ListRecent(ctx context.Context, userID uint, days int) ([]models.CheckinRecord, error) {
	if userID == 0 {
		return nil, ErrUnauthorized
	}
	if days < MinRecentDays || days > MaxRecentDays {
		return nil, newValidationError(fmt.Sprintf("days must be between %d and %d", MinRecentDays, MaxRecentDays))
	}
	since := s.Today().AddDate(0, 0, -days)
	records, err := s.repo.ListSince(ctx, userID, since)
	if err != nil {
		return nil, err
	}
	out := make([]models.CheckinRecord, 0, len(records))
	for _, r := range records {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return out, nil
}

// Update replaces every metric of the check-in id. An empty date keeps the stored one.
func (s *CheckinService) Update(ctx context.Context, userID, id uint, in models.CheckinInput) (models.CheckinRecord, error) {
	existing, err := s.GetByID(ctx, userID, id)
	if err != nil {
		return models.CheckinRecord{}, err
	}
	date, metrics, err := s.prepare(in, existing.Date)
	if err != nil {
		return models.CheckinRecord{}, err
	}
	existing.Date = date
	return s.overwrite(ctx, existing, metrics)
}

// Delete removes the check-in id. It reports false when nothing owned by userID matched.
func (s *CheckinService) Delete(ctx context.Context, userID, id uint) (bool, error) {
	if userID == 0 {
		return false, ErrUnauthorized
	}
	deleted, err := s.repo.Delete(ctx, userID, id)
	if err != nil {
		return false, err
	}
	if deleted {
		s.invalidate(ctx, userID)
	}
	return deleted, nil
}

func (s *CheckinService) invalidate(ctx context.Context, userID uint) {
	if s.cache != nil {
		s.cache.InvalidatePrefix(ctx, AnalyticsCachePrefix(userID))
	}
}

func (s *CheckinService) mapErr(err error) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return ErrCheckinNotFound
	case errors.Is(err, store.ErrDuplicate):
		return ErrDuplicateCheckin
	}
	return err
}
