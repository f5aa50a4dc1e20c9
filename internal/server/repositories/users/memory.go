package users

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/dmitrijs2005/finauth/internal/common"
	"github.com/dmitrijs2005/finauth/internal/server/models"
)

// MemoryRepository is a process-local user directory for tests and local runs.
type MemoryRepository struct {
	mu     sync.RWMutex
	byID   map[string]*models.User
	nextID int
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{byID: make(map[string]*models.User)}
}

// Add stores a copy of u, assigning an id when u has none, and returns it.
func (r *MemoryRepository) Add(u models.User) *models.User {
	r.mu.Lock()
	defer r.mu.Unlock()

	if u.ID == "" {
		r.nextID++
		u.ID = "user-" + strconv.Itoa(r.nextID)
	}
	now := time.Now()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now

	stored := u
	r.byID[u.ID] = &stored
	return &u
}

// Delete removes the user with id, if any.
func (r *MemoryRepository) Delete(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byID, id)
}

func (r *MemoryRepository) FindByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.byID {
		if u.Email == email {
			c := *u
			return &c, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *MemoryRepository) FindByID(_ context.Context, id string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	c := *u
	return &c, nil
}
