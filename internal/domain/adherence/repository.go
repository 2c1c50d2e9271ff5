package adherence

import (
	"context"
	"time"
)

// Repository agrega sobre intake_logs -> medicines -> treatments.
type Repository interface {
	// TreatmentCounts cuenta logs y logs `taken` del tratamiento (lifetime).
	TreatmentCounts(ctx context.Context, treatmentID string) (taken, total int, err error)

	// DailyCounts agrupa por día calendario de scheduledTime dentro de
	// [from, to), solo días con datos, ascendente.
	DailyCounts(ctx context.Context, patientID string, from, to time.Time) ([]DayCount, error)

	// MonthlyCounts agrupa por año-mes dentro de [from, to), ascendente.
	MonthlyCounts(ctx context.Context, patientID string, from, to time.Time) ([]MonthCount, error)
}
