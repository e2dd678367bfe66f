package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"shopapi/internal/model"
	"shopapi/internal/repository"
)

// Users keeps user records in process memory for the lifetime of the process.
// It is safe for concurrent use: mutations of one user are serialized by a per-user
// lock while different users proceed in parallel.
type Users struct {
	mu         sync.RWMutex
	users      map[string]*model.User
	byUsername map[string]string

	locks sync.Map // user id -> *sync.Mutex
}

// NewUsers creates an empty user store.
func NewUsers() *Users {
	return &Users{
		users:      make(map[string]*model.User),
		byUsername: make(map[string]string),
	}
}

var _ repository.UserRepository = (*Users)(nil)

// Create stores a copy of u under a fresh UUID.
func (s *Users) Create(_ context.Context, u *model.User) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.byUsername[u.Username]; taken {
		return nil, repository.ErrDuplicate
	}

	stored := u.Clone()
	stored.ID = uuid.NewString()
	s.users[stored.ID] = stored
	s.byUsername[stored.Username] = stored.ID
	s.locks.Store(stored.ID, &sync.Mutex{})

	return stored.Clone(), nil
}

// FindByID returns a copy of the user.
func (s *Users) FindByID(_ context.Context, id string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return u.Clone(), nil
}

// Update runs fn on a working copy under the user's lock and swaps the copy in on success.
func (s *Users) Update(ctx context.Context, id string, fn repository.UpdateFunc) (*model.User, error) {
	lock, ok := s.userLock(id)
	if !ok {
		return nil, repository.ErrNotFound
	}
	lock.Lock()
	defer lock.Unlock()

	current, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := fn(current); err != nil {
		return nil, err
	}

	// id and username are immutable
	s.mu.Lock()
	prev := s.users[id]
	current.ID = prev.ID
	current.Username = prev.Username
	s.users[id] = current.Clone()
	s.mu.Unlock()

	return current, nil
}

// Ping always succeeds.
func (s *Users) Ping(context.Context) error { return nil }

// userLock returns the lock Create registered for id. Users are never removed,
// so the lock set only grows with registrations.
func (s *Users) userLock(id string) (*sync.Mutex, bool) {
	l, ok := s.locks.Load(id)
	if !ok {
		return nil, false
	}
	return l.(*sync.Mutex), true
}
