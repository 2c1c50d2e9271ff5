package memory

import (
	"context"
	"errors"
	"sort"
	"strings"

	"mediflow/internal/domain/treatments"
)

type TreatmentsRepo struct {
	s *Store
}

func (r *TreatmentsRepo) Create(ctx context.Context, t treatments.Treatment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if strings.TrimSpace(t.ID) == "" {
		return errors.New("treatment id required")
	}
	if _, exists := r.s.treatments[t.ID]; exists {
		return errors.New("treatment already exists")
	}
	r.s.treatments[t.ID] = t
	return nil
}

func (r *TreatmentsRepo) GetByID(ctx context.Context, id string) (treatments.Treatment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	t, ok := r.s.treatments[id]
	if !ok {
		return treatments.Treatment{}, treatments.ErrNotFound
	}
	return t, nil
}

func (r *TreatmentsRepo) ListByPatient(ctx context.Context, patientID string) ([]treatments.Treatment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]treatments.Treatment, 0)
	for _, t := range r.s.treatments {
		if t.PatientID == patientID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r *TreatmentsRepo) Update(ctx context.Context, t treatments.Treatment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, exists := r.s.treatments[t.ID]; !exists {
		return treatments.ErrNotFound
	}
	r.s.treatments[t.ID] = t
	return nil
}

func (r *TreatmentsRepo) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, exists := r.s.treatments[id]; !exists {
		return treatments.ErrNotFound
	}
	delete(r.s.treatments, id)

	// cascada: medicinas del tratamiento, con sus logs y notificaciones
	for mid, m := range r.s.medicines {
		if m.TreatmentID == id {
			r.s.deleteMedicineLocked(mid)
		}
	}
	return nil
}
