package medicines

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("medicine not found")

type Repository interface {
	Create(ctx context.Context, m Medicine) error
	GetByID(ctx context.Context, id string) (Medicine, error)
	ListByTreatment(ctx context.Context, treatmentID string) ([]Medicine, error)

	// ListByPatient devuelve todas las medicinas de los tratamientos del
	// paciente; alimenta al matcher de alarmas.
	ListByPatient(ctx context.Context, patientID string) ([]Medicine, error)

	Update(ctx context.Context, m Medicine) error
	Delete(ctx context.Context, id string) error
}
