package treatments

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("treatment not found")

type Repository interface {
	Create(ctx context.Context, t Treatment) error
	GetByID(ctx context.Context, id string) (Treatment, error)
	ListByPatient(ctx context.Context, patientID string) ([]Treatment, error)
	Update(ctx context.Context, t Treatment) error

	// Delete borra el tratamiento y cascadea sus medicinas
	// (con sus intake logs y notificaciones asociadas).
	Delete(ctx context.Context, id string) error
}
