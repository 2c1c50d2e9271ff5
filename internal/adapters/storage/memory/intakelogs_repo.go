package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"mediflow/internal/domain/intakelogs"
)

type IntakeLogsRepo struct {
	s *Store
}

// Create hace el check de duplicado y el insert bajo el mismo lock de
// escritura, el equivalente in-memory del insert guardado de Postgres.
func (r *IntakeLogsRepo) Create(ctx context.Context, l intakelogs.IntakeLog) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if strings.TrimSpace(l.ID) == "" {
		return errors.New("intake log id required")
	}
	if _, exists := r.s.intakeLogs[l.ID]; exists {
		return errors.New("intake log already exists")
	}

	if l.Status == intakelogs.StatusTaken {
		for _, other := range r.s.intakeLogs {
			if other.MedicineID == l.MedicineID &&
				other.Status == intakelogs.StatusTaken &&
				sameDay(other.ScheduledTime, l.ScheduledTime) {
				return intakelogs.ErrAlreadyTakenToday
			}
		}
	}

	r.s.intakeLogs[l.ID] = l
	return nil
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func (r *IntakeLogsRepo) GetByID(ctx context.Context, id string) (intakelogs.IntakeLog, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	l, ok := r.s.intakeLogs[id]
	if !ok {
		return intakelogs.IntakeLog{}, intakelogs.ErrNotFound
	}
	return l, nil
}

func (r *IntakeLogsRepo) ListByMedicine(ctx context.Context, medicineID string) ([]intakelogs.IntakeLog, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]intakelogs.IntakeLog, 0)
	for _, l := range r.s.intakeLogs {
		if l.MedicineID == medicineID {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ScheduledTime.After(out[j].ScheduledTime)
	})
	return out, nil
}

func (r *IntakeLogsRepo) GetRecent(ctx context.Context, medicineID string) (intakelogs.IntakeLog, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var best intakelogs.IntakeLog
	found := false
	for _, l := range r.s.intakeLogs {
		if l.MedicineID != medicineID {
			continue
		}
		if !found || l.CreatedAt.After(best.CreatedAt) {
			best = l
			found = true
		}
	}
	if !found {
		return intakelogs.IntakeLog{}, intakelogs.ErrNotFound
	}
	return best, nil
}

func (r *IntakeLogsRepo) GetTakenOn(ctx context.Context, medicineID string, day time.Time) (intakelogs.IntakeLog, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, l := range r.s.intakeLogs {
		if l.MedicineID == medicineID &&
			l.Status == intakelogs.StatusTaken &&
			sameDay(l.ScheduledTime, day) {
			return l, nil
		}
	}
	return intakelogs.IntakeLog{}, intakelogs.ErrNotFound
}
