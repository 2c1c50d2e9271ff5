package admin

import (
	"context"
	"time"

	"mediflow/internal/domain/adherence"
	"mediflow/internal/domain/treatments"
	"mediflow/internal/domain/users"
)

// lowAdherenceThreshold marca tratamientos problemáticos en el dashboard admin.
const lowAdherenceThreshold = 70.0

// Stats son los agregados del dashboard de administración.
type Stats struct {
	TotalPatients     int
	ActiveTreatments  int
	AverageAdherence  float64
	LowAdherenceCount int
}

// PatientStats resume un paciente para el listado admin.
type PatientStats struct {
	UserID         string
	FullName       string
	Email          string
	TreatmentCount int
	AdherenceRate  float64
	LastActivity   time.Time
}

// Service compone users + treatments + adherence; no tiene repo propio.
type Service struct {
	users      *users.Service
	treatments *treatments.Service
	adherence  *adherence.Service
}

func NewService(usersSvc *users.Service, treatmentsSvc *treatments.Service, adherenceSvc *adherence.Service) *Service {
	return &Service{
		users:      usersSvc,
		treatments: treatmentsSvc,
		adherence:  adherenceSvc,
	}
}

func (s *Service) Stats(ctx context.Context) (Stats, error) {
	patients, err := s.users.ListPatients(ctx)
	if err != nil {
		return Stats{}, err
	}

	out := Stats{TotalPatients: len(patients)}

	var totalAdherence float64
	var countedTreatments int

	for _, p := range patients {
		ts, err := s.treatments.ListByPatient(ctx, p.ID)
		if err != nil {
			return Stats{}, err
		}

		for _, t := range ts {
			if t.Status == treatments.StatusActive {
				out.ActiveTreatments++
			}

			sum, err := s.adherence.ForTreatment(ctx, t.ID)
			if err != nil {
				return Stats{}, err
			}
			totalAdherence += sum.Percentage
			countedTreatments++
			if sum.Percentage < lowAdherenceThreshold {
				out.LowAdherenceCount++
			}
		}
	}

	if countedTreatments > 0 {
		out.AverageAdherence = totalAdherence / float64(countedTreatments)
	}
	return out, nil
}

func (s *Service) PatientStats(ctx context.Context) ([]PatientStats, error) {
	patients, err := s.users.ListPatients(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]PatientStats, 0, len(patients))
	for _, p := range patients {
		ts, err := s.treatments.ListByPatient(ctx, p.ID)
		if err != nil {
			return nil, err
		}

		var taken, total int
		for _, t := range ts {
			sum, err := s.adherence.ForTreatment(ctx, t.ID)
			if err != nil {
				return nil, err
			}
			taken += sum.Taken
			total += sum.Total
		}

		rate := 0.0
		if total > 0 {
			rate = float64(taken) / float64(total) * 100
		}

		out = append(out, PatientStats{
			UserID:         p.ID,
			FullName:       p.FullName,
			Email:          p.Email,
			TreatmentCount: len(ts),
			AdherenceRate:  rate,
			LastActivity:   p.CreatedAt,
		})
	}
	return out, nil
}
