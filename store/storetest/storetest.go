// Package storetest provides in-memory stores for service and handler tests.
package storetest

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/cppla/vitalog/models"
	"github.com/cppla/vitalog/store"
)

// UserStore is an in-memory stand-in for store.UserStore.
type UserStore struct {
	mu     sync.RWMutex
	users  map[uint]models.User
	nextID uint
}

// NewUserStore creates an empty in-memory user store.
func NewUserStore() *UserStore {
	return &UserStore{users: make(map[uint]models.User), nextID: 1}
}

func (m *UserStore) GetByID(ctx context.Context, id uint) (models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	user, ok := m.users[id]
	if !ok {
		return models.User{}, store.ErrNotFound
	}
	return user, nil
}

func (m *UserStore) GetByEmail(ctx context.Context, email string) (models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	email = models.NormalizeEmail(email)
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return models.User{}, store.ErrNotFound
}

func (m *UserStore) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := m.GetByEmail(ctx, email)
	if err == store.ErrNotFound {
		return false, nil
	}
	return err == nil, err
}

func (m *UserStore) Create(ctx context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	user.Email = models.NormalizeEmail(user.Email)
	for _, u := range m.users {
		if u.Email == user.Email {
			return store.ErrDuplicate
		}
	}
	now := time.Now().UTC()
	user.ID = m.nextID
	user.CreatedAt = now
	user.UpdatedAt = now
	if user.SubscriptionTier == "" {
		user.SubscriptionTier = models.DefaultSubscriptionTier
	}
	m.users[user.ID] = *user
	m.nextID++
	return nil
}

func (m *UserStore) Update(ctx context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[user.ID]; !ok {
		return store.ErrNotFound
	}
	user.UpdatedAt = time.Now().UTC()
	m.users[user.ID] = *user
	return nil
}

// CheckinStore is an in-memory stand-in for store.CheckinStore. It enforces the
// (user_id, date) unique index like the real table.
type CheckinStore struct {
	mu      sync.RWMutex
	records map[uint]models.CheckinRecord
	nextID  uint
}

// NewCheckinStore creates an empty in-memory check-in store.
func NewCheckinStore() *CheckinStore {
	return &CheckinStore{records: make(map[uint]models.CheckinRecord), nextID: 1}
}

func sameDate(a, b time.Time) bool {
	return a.Format(models.DateLayout) == b.Format(models.DateLayout)
}

func (m *CheckinStore) Create(ctx context.Context, rec *models.CheckinRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.records {
		if r.UserID == rec.UserID && sameDate(r.Date, rec.Date) {
			return store.ErrDuplicate
		}
	}
	now := time.Now().UTC()
	rec.ID = m.nextID
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	rec.UpdatedAt = now
	m.records[rec.ID] = *rec
	m.nextID++
	return nil
}

func (m *CheckinStore) Update(ctx context.Context, rec *models.CheckinRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.records[rec.ID]
	if !ok || existing.UserID != rec.UserID {
		return store.ErrNotFound
	}
	for id, r := range m.records {
		if id != rec.ID && r.UserID == rec.UserID && sameDate(r.Date, rec.Date) {
			return store.ErrDuplicate
		}
	}
	rec.CreatedAt = existing.CreatedAt
	rec.UpdatedAt = time.Now().UTC()
	m.records[rec.ID] = *rec
	return nil
}

func (m *CheckinStore) GetByDate(ctx context.Context, userID uint, date time.Time) (models.CheckinRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, r := range m.records {
		if r.UserID == userID && sameDate(r.Date, date) {
			return r, nil
		}
	}
	return models.CheckinRecord{}, store.ErrNotFound
}

func (m *CheckinStore) GetByID(ctx context.Context, userID, id uint) (models.CheckinRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.records[id]
	if !ok || r.UserID != userID {
		return models.CheckinRecord{}, store.ErrNotFound
	}
	return r, nil
}

func (m *CheckinStore) ListSince(ctx context.Context, userID uint, since time.Time) ([]models.CheckinRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	cutoff := since.Format(models.DateLayout)
	var out []models.CheckinRecord
	for _, r := range m.records {
		if r.UserID == userID && r.Date.Format(models.DateLayout) >= cutoff {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, nil
}

func (m *CheckinStore) Delete(ctx context.Context, userID, id uint) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.records[id]
	if !ok || r.UserID != userID {
		return false, nil
	}
	delete(m.records, id)
	return true, nil
}

// Len reports how many records are stored across all users.
func (m *CheckinStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records)
}
