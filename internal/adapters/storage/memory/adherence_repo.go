package memory

import (
	"context"
	"sort"
	"time"

	"mediflow/internal/domain/adherence"
	"mediflow/internal/domain/intakelogs"
)

type AdherenceRepo struct {
	s *Store
}

func (r *AdherenceRepo) TreatmentCounts(ctx context.Context, treatmentID string) (int, int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	taken, total := 0, 0
	for _, l := range r.s.intakeLogs {
		m, ok := r.s.medicines[l.MedicineID]
		if !ok || m.TreatmentID != treatmentID {
			continue
		}
		total++
		if l.Status == intakelogs.StatusTaken {
			taken++
		}
	}
	return taken, total, nil
}

// patientLogsLocked filtra los logs del paciente dentro de [from, to).
// Requiere s.mu tomado en lectura.
func (r *AdherenceRepo) patientLogsLocked(patientID string, from, to time.Time) []intakelogs.IntakeLog {
	out := make([]intakelogs.IntakeLog, 0)
	for _, l := range r.s.intakeLogs {
		if l.ScheduledTime.Before(from) || !l.ScheduledTime.Before(to) {
			continue
		}
		m, ok := r.s.medicines[l.MedicineID]
		if !ok {
			continue
		}
		t, ok := r.s.treatments[m.TreatmentID]
		if !ok || t.PatientID != patientID {
			continue
		}
		out = append(out, l)
	}
	return out
}

func (r *AdherenceRepo) DailyCounts(ctx context.Context, patientID string, from, to time.Time) ([]adherence.DayCount, error) {
	r.s.mu.RLock()
	logs := r.patientLogsLocked(patientID, from, to)
	r.s.mu.RUnlock()

	buckets := make(map[time.Time]*adherence.DayCount)
	for _, l := range logs {
		y, m, d := l.ScheduledTime.Date()
		day := time.Date(y, m, d, 0, 0, 0, 0, l.ScheduledTime.Location())
		b, ok := buckets[day]
		if !ok {
			b = &adherence.DayCount{Day: day}
			buckets[day] = b
		}
		b.Total++
		if l.Status == intakelogs.StatusTaken {
			b.Taken++
		}
	}

	out := make([]adherence.DayCount, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Day.Before(out[j].Day)
	})
	return out, nil
}

func (r *AdherenceRepo) MonthlyCounts(ctx context.Context, patientID string, from, to time.Time) ([]adherence.MonthCount, error) {
	r.s.mu.RLock()
	logs := r.patientLogsLocked(patientID, from, to)
	r.s.mu.RUnlock()

	type ym struct {
		year  int
		month time.Month
	}
	buckets := make(map[ym]*adherence.MonthCount)
	for _, l := range logs {
		k := ym{year: l.ScheduledTime.Year(), month: l.ScheduledTime.Month()}
		b, ok := buckets[k]
		if !ok {
			b = &adherence.MonthCount{Year: k.year, Month: k.month}
			buckets[k] = b
		}
		b.Total++
		if l.Status == intakelogs.StatusTaken {
			b.Taken++
		}
	}

	out := make([]adherence.MonthCount, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year < out[j].Year
		}
		return out[i].Month < out[j].Month
	})
	return out, nil
}

var _ adherence.Repository = (*AdherenceRepo)(nil)
