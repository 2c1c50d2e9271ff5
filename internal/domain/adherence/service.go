package adherence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrInvalidInput = errors.New("invalid input")

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
		now:  time.Now,
	}
}

// ForTreatment calcula adherencia lifetime del tratamiento.
// Sin logs: {0, 0, 0}, nunca división por cero.
func (s *Service) ForTreatment(ctx context.Context, treatmentID string) (TreatmentSummary, error) {
	treatmentID = strings.TrimSpace(treatmentID)
	if treatmentID == "" {
		return TreatmentSummary{}, ErrInvalidInput
	}

	taken, total, err := s.repo.TreatmentCounts(ctx, treatmentID)
	if err != nil {
		return TreatmentSummary{}, err
	}

	return TreatmentSummary{
		Percentage: percentage(taken, total),
		Taken:      taken,
		Total:      total,
	}, nil
}

// Daily devuelve un punto por día con datos en [now-days, now), ascendente.
func (s *Service) Daily(ctx context.Context, patientID string, days int) ([]DailyPoint, error) {
	if strings.TrimSpace(patientID) == "" {
		return nil, ErrInvalidInput
	}
	if days <= 0 {
		days = 7
	}

	to := s.now()
	from := to.AddDate(0, 0, -days)

	counts, err := s.repo.DailyCounts(ctx, patientID, from, to)
	if err != nil {
		return nil, err
	}

	out := make([]DailyPoint, 0, len(counts))
	for _, c := range counts {
		out = append(out, DailyPoint{
			Date:           c.Day.Format("2006-01-02"),
			TotalScheduled: c.Total,
			TotalTaken:     c.Taken,
			Percentage:     percentage(c.Taken, c.Total),
		})
	}
	return out, nil
}

// Monthly devuelve un punto por año-mes con datos en [now-months, now), ascendente.
func (s *Service) Monthly(ctx context.Context, patientID string, months int) ([]MonthlyPoint, error) {
	if strings.TrimSpace(patientID) == "" {
		return nil, ErrInvalidInput
	}
	if months <= 0 {
		months = 6
	}

	to := s.now()
	from := to.AddDate(0, -months, 0)

	counts, err := s.repo.MonthlyCounts(ctx, patientID, from, to)
	if err != nil {
		return nil, err
	}

	out := make([]MonthlyPoint, 0, len(counts))
	for _, c := range counts {
		out = append(out, MonthlyPoint{
			Month:          fmt.Sprintf("%04d-%02d", c.Year, int(c.Month)),
			TotalScheduled: c.Total,
			TotalTaken:     c.Taken,
			Percentage:     percentage(c.Taken, c.Total),
		})
	}
	return out, nil
}

// percentage aplica la convención "0 cuando total es 0" en todo el módulo.
func percentage(taken, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(taken) / float64(total) * 100
}
