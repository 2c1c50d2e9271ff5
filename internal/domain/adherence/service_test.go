package adherence

import (
	"context"
	"testing"
	"time"
)

type fakeRepo struct {
	taken, total int
	days         []DayCount
	months       []MonthCount
}

func (f *fakeRepo) TreatmentCounts(ctx context.Context, treatmentID string) (int, int, error) {
	return f.taken, f.total, nil
}

func (f *fakeRepo) DailyCounts(ctx context.Context, patientID string, from, to time.Time) ([]DayCount, error) {
	return f.days, nil
}

func (f *fakeRepo) MonthlyCounts(ctx context.Context, patientID string, from, to time.Time) ([]MonthCount, error) {
	return f.months, nil
}

func TestForTreatment_Percentage(t *testing.T) {
	svc := NewService(&fakeRepo{taken: 7, total: 10})

	got, err := svc.ForTreatment(context.Background(), "t1")
	if err != nil {
		t.Fatalf("ForTreatment: %v", err)
	}
	if got.Percentage != 70.0 {
		t.Fatalf("percentage = %v, want 70", got.Percentage)
	}
	if got.Taken != 7 || got.Total != 10 {
		t.Fatalf("counts = %d/%d", got.Taken, got.Total)
	}
}

func TestForTreatment_EmptyIsZeroNotNaN(t *testing.T) {
	svc := NewService(&fakeRepo{})

	got, err := svc.ForTreatment(context.Background(), "t1")
	if err != nil {
		t.Fatalf("ForTreatment: %v", err)
	}
	if got.Percentage != 0 || got.Taken != 0 || got.Total != 0 {
		t.Fatalf("expected all-zero summary, got %+v", got)
	}
}

func TestForTreatment_RejectsEmptyID(t *testing.T) {
	svc := NewService(&fakeRepo{})

	if _, err := svc.ForTreatment(context.Background(), "  "); err != ErrInvalidInput {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
}

func TestDaily_FormatsAscending(t *testing.T) {
	day1 := time.Date(2025, 3, 9, 0, 0, 0, 0, time.Local)
	day2 := time.Date(2025, 3, 10, 0, 0, 0, 0, time.Local)

	svc := NewService(&fakeRepo{days: []DayCount{
		{Day: day1, Taken: 1, Total: 2},
		{Day: day2, Taken: 3, Total: 3},
	}})

	got, err := svc.Daily(context.Background(), "p1", 7)
	if err != nil {
		t.Fatalf("Daily: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].Date != "2025-03-09" || got[1].Date != "2025-03-10" {
		t.Fatalf("dates = %q, %q", got[0].Date, got[1].Date)
	}
	if got[0].Percentage != 50.0 || got[1].Percentage != 100.0 {
		t.Fatalf("percentages = %v, %v", got[0].Percentage, got[1].Percentage)
	}
}

func TestMonthly_FormatsYearMonth(t *testing.T) {
	svc := NewService(&fakeRepo{months: []MonthCount{
		{Year: 2025, Month: time.February, Taken: 10, Total: 20},
		{Year: 2025, Month: time.March, Taken: 5, Total: 5},
	}})

	got, err := svc.Monthly(context.Background(), "p1", 6)
	if err != nil {
		t.Fatalf("Monthly: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].Month != "2025-02" || got[1].Month != "2025-03" {
		t.Fatalf("months = %q, %q", got[0].Month, got[1].Month)
	}
	if got[0].Percentage != 50.0 {
		t.Fatalf("percentage = %v, want 50", got[0].Percentage)
	}
}
