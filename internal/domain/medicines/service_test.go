package medicines

import (
	"context"
	"errors"
	"testing"
)

type fakeRepo struct {
	byID map[string]Medicine
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{byID: make(map[string]Medicine)}
}

func (f *fakeRepo) Create(ctx context.Context, m Medicine) error {
	f.byID[m.ID] = m
	return nil
}

func (f *fakeRepo) GetByID(ctx context.Context, id string) (Medicine, error) {
	m, ok := f.byID[id]
	if !ok {
		return Medicine{}, ErrNotFound
	}
	return m, nil
}

func (f *fakeRepo) ListByTreatment(ctx context.Context, treatmentID string) ([]Medicine, error) {
	out := make([]Medicine, 0)
	for _, m := range f.byID {
		if m.TreatmentID == treatmentID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeRepo) ListByPatient(ctx context.Context, patientID string) ([]Medicine, error) {
	return nil, nil
}

func (f *fakeRepo) Update(ctx context.Context, m Medicine) error {
	if _, ok := f.byID[m.ID]; !ok {
		return ErrNotFound
	}
	f.byID[m.ID] = m
	return nil
}

func (f *fakeRepo) Delete(ctx context.Context, id string) error {
	if _, ok := f.byID[id]; !ok {
		return ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

func TestCreate_NormalizesScheduleTime(t *testing.T) {
	svc := NewService(newFakeRepo())

	m, err := svc.Create(context.Background(), CreateInput{
		TreatmentID:  "t1",
		Name:         "Aspirina",
		Dosage:       "100mg",
		ScheduleTime: "9:5",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if m.ScheduleTime != "09:05" {
		t.Fatalf("scheduleTime = %q, want 09:05", m.ScheduleTime)
	}
}

func TestCreate_RejectsBadScheduleTime(t *testing.T) {
	svc := NewService(newFakeRepo())

	for _, bad := range []string{"25:00", "12:75", "noon", "12", ""} {
		_, err := svc.Create(context.Background(), CreateInput{
			TreatmentID:  "t1",
			Name:         "Aspirina",
			Dosage:       "100mg",
			ScheduleTime: bad,
		})
		if !errors.Is(err, ErrBadScheduleTime) {
			t.Fatalf("scheduleTime %q: err = %v, want ErrBadScheduleTime", bad, err)
		}
	}
}

func TestUpdate_PatchesOnlyGivenFields(t *testing.T) {
	svc := NewService(newFakeRepo())
	ctx := context.Background()

	m, err := svc.Create(ctx, CreateInput{
		TreatmentID:  "t1",
		Name:         "Aspirina",
		Dosage:       "100mg",
		ScheduleTime: "09:00",
		Stock:        5,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	newSched := "21:30"
	updated, err := svc.Update(ctx, m.ID, UpdateInput{ScheduleTime: &newSched})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.ScheduleTime != "21:30" {
		t.Fatalf("scheduleTime = %q", updated.ScheduleTime)
	}
	if updated.Name != "Aspirina" || updated.Stock != 5 {
		t.Fatalf("untouched fields changed: %+v", updated)
	}
}

func TestDecrementStock_FloorsAtZero(t *testing.T) {
	svc := NewService(newFakeRepo())
	ctx := context.Background()

	m, err := svc.Create(ctx, CreateInput{
		TreatmentID:  "t1",
		Name:         "Aspirina",
		Dosage:       "100mg",
		ScheduleTime: "09:00",
		Stock:        1,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := svc.DecrementStock(ctx, m.ID); err != nil {
		t.Fatalf("DecrementStock: %v", err)
	}
	got, _ := svc.GetByID(ctx, m.ID)
	if got.Stock != 0 {
		t.Fatalf("stock = %d, want 0", got.Stock)
	}

	// En cero se queda en cero.
	if err := svc.DecrementStock(ctx, m.ID); err != nil {
		t.Fatalf("DecrementStock at zero: %v", err)
	}
	got, _ = svc.GetByID(ctx, m.ID)
	if got.Stock != 0 {
		t.Fatalf("stock = %d, want 0 after floor", got.Stock)
	}
}
