package memory

import (
	"context"
	"errors"
	"sort"
	"strings"

	"mediflow/internal/domain/users"
)

type UsersRepo struct {
	s *Store
}

func (r *UsersRepo) Create(ctx context.Context, u users.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if strings.TrimSpace(u.ID) == "" {
		return errors.New("user id required")
	}
	if _, exists := r.s.users[u.ID]; exists {
		return errors.New("user already exists")
	}
	r.s.users[u.ID] = u
	return nil
}

func (r *UsersRepo) GetByID(ctx context.Context, id string) (users.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.users[id]
	if !ok {
		return users.User{}, users.ErrNotFound
	}
	return u, nil
}

func (r *UsersRepo) GetByUsername(ctx context.Context, username string) (users.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, u := range r.s.users {
		if u.Username == username {
			return u, nil
		}
	}
	return users.User{}, users.ErrNotFound
}

func (r *UsersRepo) GetByEmail(ctx context.Context, email string) (users.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, u := range r.s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return users.User{}, users.ErrNotFound
}

func (r *UsersRepo) ListByRole(ctx context.Context, role users.Role) ([]users.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]users.User, 0)
	for _, u := range r.s.users {
		if u.Role == role {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

type SessionsRepo struct {
	s *Store
}

func (r *SessionsRepo) Create(ctx context.Context, s users.Session) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if strings.TrimSpace(s.Token) == "" {
		return errors.New("session token required")
	}
	r.s.sessions[s.Token] = s
	return nil
}

func (r *SessionsRepo) GetByToken(ctx context.Context, token string) (users.Session, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	s, ok := r.s.sessions[token]
	if !ok {
		return users.Session{}, users.ErrSessionNotFound
	}
	return s, nil
}

func (r *SessionsRepo) Delete(ctx context.Context, token string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	delete(r.s.sessions, token)
	return nil
}
