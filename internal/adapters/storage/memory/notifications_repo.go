package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"mediflow/internal/domain/notifications"
)

type NotificationsRepo struct {
	s *Store
}

func (r *NotificationsRepo) Create(ctx context.Context, n notifications.Notification) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if strings.TrimSpace(n.ID) == "" {
		return errors.New("notification id required")
	}
	if _, exists := r.s.notifications[n.ID]; exists {
		return errors.New("notification already exists")
	}
	r.s.notifications[n.ID] = n
	return nil
}

func (r *NotificationsRepo) GetByID(ctx context.Context, id string) (notifications.Notification, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	n, ok := r.s.notifications[id]
	if !ok {
		return notifications.Notification{}, notifications.ErrNotFound
	}
	return n, nil
}

func (r *NotificationsRepo) ListByUser(ctx context.Context, userID string, limit int) ([]notifications.Notification, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]notifications.Notification, 0)
	for _, n := range r.s.notifications {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *NotificationsRepo) MarkRead(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	n, ok := r.s.notifications[id]
	if !ok {
		return notifications.ErrNotFound
	}
	n.Read = true
	r.s.notifications[id] = n
	return nil
}

func (r *NotificationsRepo) DeleteReadBefore(ctx context.Context, cutoff time.Time) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	deleted := 0
	for id, n := range r.s.notifications {
		if n.Read && n.CreatedAt.Before(cutoff) {
			delete(r.s.notifications, id)
			deleted++
		}
	}
	return deleted, nil
}
