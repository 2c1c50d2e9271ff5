package intakelogs

import "time"

// Status define el resultado de una dosis programada.
// @Enum taken, missed, pending
type Status string

const (
	StatusTaken   Status = "taken"
	StatusMissed  Status = "missed"
	StatusPending Status = "pending"
)

// IntakeLog registra una dosis programada y si/cuándo se tomó.
// Inmutable después de crearse: status y takenTime se fijan al crear.
type IntakeLog struct {
	ID         string
	MedicineID string

	ScheduledTime time.Time
	TakenTime     *time.Time
	Status        Status
	Notes         string

	CreatedAt time.Time
}
