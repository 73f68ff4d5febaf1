package users

import (
	"context"
	"sync"
	"time"

	"github.com/newspulse/newspulse/backend/go-services/internal/models"
)

// MemoryUserRepository is an in-memory UserRepository used for unit tests and
// as a fallback when no MongoDB is configured. It enforces the same
// email/username uniqueness the Mongo indexes provide.
type MemoryUserRepository struct {
	mu         sync.RWMutex
	byEmail    map[string]*models.User
	byUsername map[string]*models.User
}

func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{
		byEmail:    map[string]*models.User{},
		byUsername: map[string]*models.User{},
	}
}

func (m *MemoryUserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if u, ok := m.byEmail[email]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

func (m *MemoryUserRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if u, ok := m.byUsername[username]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

func (m *MemoryUserRepository) Insert(ctx context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byEmail[u.Email]; ok {
		return ErrDuplicate
	}
	if _, ok := m.byUsername[u.Username]; ok {
		return ErrDuplicate
	}
	now := time.Now().UTC()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now
	cp := *u
	m.byEmail[u.Email] = &cp
	m.byUsername[u.Username] = &cp
	return nil
}

// Count reports the number of stored users. Test helper.
func (m *MemoryUserRepository) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.byEmail)
}
