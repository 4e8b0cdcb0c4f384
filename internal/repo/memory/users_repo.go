package memory

import (
	"context"
	"sync"

	"github.com/fitstack/fitlog/internal/domain/user"
)

// UsersRepo keeps users in a mutex-guarded map. Reads hand out copies of the
// log slice so callers always see a consistent snapshot, even while another
// goroutine appends. Used in tests and when no database is configured.
type UsersRepo struct {
	mu    sync.RWMutex
	items map[string]user.User
}

func NewUsersRepo() *UsersRepo {
	return &UsersRepo{
		items: make(map[string]user.User),
	}
}

func (r *UsersRepo) Create(_ context.Context, req user.CreateUserRequest) (user.User, error) {
	u := user.NewFromCreateRequest(req)

	r.mu.Lock()
	r.items[u.ID] = u
	r.mu.Unlock()

	return u, nil
}

func (r *UsersRepo) GetByID(_ context.Context, id string) (user.User, error) {
	r.mu.RLock()
	u, ok := r.items[id]
	r.mu.RUnlock()

	if !ok {
		return user.User{}, user.ErrNotFound
	}

	return snapshot(u), nil
}

func (r *UsersRepo) ListAll(_ context.Context) ([]user.User, error) {
	r.mu.RLock()
	out := make([]user.User, 0, len(r.items))
	for _, u := range r.items {
		out = append(out, snapshot(u))
	}
	r.mu.RUnlock()

	return out, nil
}

func (r *UsersRepo) AppendExercise(_ context.Context, id string, entry user.LogEntry) (user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.items[id]
	if !ok {
		return user.User{}, user.ErrNotFound
	}

	// copy-on-write keeps previously handed-out snapshots stable
	log := make([]user.LogEntry, len(u.Log), len(u.Log)+1)
	copy(log, u.Log)
	u.Log = append(log, entry)

	r.items[id] = u

	return snapshot(u), nil
}

func snapshot(u user.User) user.User {
	log := make([]user.LogEntry, len(u.Log))
	copy(log, u.Log)
	u.Log = log
	return u
}
