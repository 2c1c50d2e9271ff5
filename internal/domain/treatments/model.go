package treatments

import "time"

// Status define los estados de un tratamiento.
// @Enum active, completed, paused
type Status string

const (
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusPaused    Status = "paused"
)

// Treatment es un plan de cuidado de un paciente; agrupa medicinas.
type Treatment struct {
	ID        string
	PatientID string

	Name        string
	Description string
	Status      Status

	StartDate time.Time
	EndDate   *time.Time

	CreatedAt time.Time
}
