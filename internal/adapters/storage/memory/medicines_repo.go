package memory

import (
	"context"
	"errors"
	"sort"
	"strings"

	"mediflow/internal/domain/medicines"
)

type MedicinesRepo struct {
	s *Store
}

func (r *MedicinesRepo) Create(ctx context.Context, m medicines.Medicine) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if strings.TrimSpace(m.ID) == "" {
		return errors.New("medicine id required")
	}
	if _, exists := r.s.medicines[m.ID]; exists {
		return errors.New("medicine already exists")
	}
	r.s.medicines[m.ID] = m
	return nil
}

func (r *MedicinesRepo) GetByID(ctx context.Context, id string) (medicines.Medicine, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	m, ok := r.s.medicines[id]
	if !ok {
		return medicines.Medicine{}, medicines.ErrNotFound
	}
	return m, nil
}

func (r *MedicinesRepo) ListByTreatment(ctx context.Context, treatmentID string) ([]medicines.Medicine, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]medicines.Medicine, 0)
	for _, m := range r.s.medicines {
		if m.TreatmentID == treatmentID {
			out = append(out, m)
		}
	}
	sortBySchedule(out)
	return out, nil
}

func (r *MedicinesRepo) ListByPatient(ctx context.Context, patientID string) ([]medicines.Medicine, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]medicines.Medicine, 0)
	for _, m := range r.s.medicines {
		t, ok := r.s.treatments[m.TreatmentID]
		if ok && t.PatientID == patientID {
			out = append(out, m)
		}
	}
	sortBySchedule(out)
	return out, nil
}

// sortBySchedule ordena por hora "HH:MM"; el orden lexicográfico coincide
// con el cronológico por el zero-padding.
func sortBySchedule(ms []medicines.Medicine) {
	sort.Slice(ms, func(i, j int) bool {
		if ms[i].ScheduleTime != ms[j].ScheduleTime {
			return ms[i].ScheduleTime < ms[j].ScheduleTime
		}
		return ms[i].CreatedAt.Before(ms[j].CreatedAt)
	})
}

func (r *MedicinesRepo) Update(ctx context.Context, m medicines.Medicine) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, exists := r.s.medicines[m.ID]; !exists {
		return medicines.ErrNotFound
	}
	r.s.medicines[m.ID] = m
	return nil
}

func (r *MedicinesRepo) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, exists := r.s.medicines[id]; !exists {
		return medicines.ErrNotFound
	}
	r.s.deleteMedicineLocked(id)
	return nil
}
