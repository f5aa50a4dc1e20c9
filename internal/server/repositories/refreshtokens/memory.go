package refreshtokens

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/dmitrijs2005/finauth/internal/common"
	"github.com/dmitrijs2005/finauth/internal/server/models"
)

var errDuplicateToken = errors.New("duplicate refresh token")

type journalKey struct{}

// Journal records the writes made under a context so they can be undone
// when the surrounding unit of work fails.
type Journal struct {
	mu      sync.Mutex
	revoked []string
	created []string
}

// WithJournal returns a context whose writes to a MemoryRepository are
// recorded in j.
func WithJournal(ctx context.Context, j *Journal) context.Context {
	return context.WithValue(ctx, journalKey{}, j)
}

func journalFrom(ctx context.Context) *Journal {
	j, _ := ctx.Value(journalKey{}).(*Journal)
	return j
}

// UserFinder resolves the owner of a record.
type UserFinder interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

// MemoryRepository keeps records in process memory. Revoke holds the lock
// across check and write, giving the same compare-and-swap guarantee as the
// conditional UPDATE of the PostgreSQL implementation.
type MemoryRepository struct {
	mu      sync.Mutex
	users   UserFinder
	byToken map[string]*models.RefreshToken
	byID    map[string]*models.RefreshToken
	nextID  int
}

func NewMemoryRepository(users UserFinder) *MemoryRepository {
	return &MemoryRepository{
		users:   users,
		byToken: make(map[string]*models.RefreshToken),
		byID:    make(map[string]*models.RefreshToken),
	}
}

func (r *MemoryRepository) Create(ctx context.Context, userID string, token string, expiresAt time.Time) (*models.RefreshToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byToken[token]; exists {
		return nil, errDuplicateToken
	}

	r.nextID++
	rt := &models.RefreshToken{
		ID:        "rt-" + strconv.Itoa(r.nextID),
		Token:     token,
		UserID:    userID,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now(),
	}
	r.byToken[token] = rt
	r.byID[rt.ID] = rt

	if j := journalFrom(ctx); j != nil {
		j.mu.Lock()
		j.created = append(j.created, rt.ID)
		j.mu.Unlock()
	}

	c := *rt
	return &c, nil
}

func (r *MemoryRepository) FindByToken(ctx context.Context, token string) (*models.RefreshToken, *models.User, error) {
	r.mu.Lock()
	rt, ok := r.byToken[token]
	var c models.RefreshToken
	if ok {
		c = *rt
	}
	r.mu.Unlock()

	if !ok {
		return nil, nil, common.ErrorNotFound
	}

	u, err := r.users.FindByID(ctx, c.UserID)
	if err != nil {
		return nil, nil, err
	}
	return &c, u, nil
}

func (r *MemoryRepository) Revoke(ctx context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rt, ok := r.byID[id]
	if !ok || rt.IsRevoked {
		return false, nil
	}
	rt.IsRevoked = true

	if j := journalFrom(ctx); j != nil {
		j.mu.Lock()
		j.revoked = append(j.revoked, id)
		j.mu.Unlock()
	}
	return true, nil
}

// Rollback undoes the uncommitted writes recorded in j: revokes are cleared
// and created records removed. It is the in-memory counterpart of a
// transaction rollback.
func (r *MemoryRepository) Rollback(j *Journal) {
	j.mu.Lock()
	revoked, created := j.revoked, j.created
	j.revoked, j.created = nil, nil
	j.mu.Unlock()

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, id := range revoked {
		if rt, ok := r.byID[id]; ok {
			rt.IsRevoked = false
		}
	}
	for _, id := range created {
		if rt, ok := r.byID[id]; ok {
			delete(r.byToken, rt.Token)
			delete(r.byID, id)
		}
	}
}

func (r *MemoryRepository) RevokeAllActiveForUser(_ context.Context, userID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for _, rt := range r.byID {
		if rt.UserID == userID && !rt.IsRevoked {
			rt.IsRevoked = true
			n++
		}
	}
	return n, nil
}

// ForUser returns copies of every record owned by userID.
func (r *MemoryRepository) ForUser(userID string) []models.RefreshToken {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []models.RefreshToken
	for _, rt := range r.byID {
		if rt.UserID == userID {
			out = append(out, *rt)
		}
	}
	return out
}

// SetExpiry overrides the stored expiry of the record holding token.
func (r *MemoryRepository) SetExpiry(token string, expiresAt time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if rt, ok := r.byToken[token]; ok {
		rt.ExpiresAt = expiresAt
	}
}
