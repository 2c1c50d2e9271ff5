package medicines

import "time"

// Medicine es una medicina con horario diario fijo, parte de un tratamiento.
// ScheduleTime es "HH:MM" de 24h en hora local del paciente; no se modela
// timezone ni DST (limitación documentada del sistema).
type Medicine struct {
	ID          string
	TreatmentID string

	Name         string
	Dosage       string // "500mg", "2 tablets"
	Frequency    string // texto por ahora: "daily", "every 12h"
	ScheduleTime string // "HH:MM"
	Instructions string

	Stock int

	CreatedAt time.Time
}
