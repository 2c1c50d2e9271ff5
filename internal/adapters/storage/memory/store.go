// Package memory implementa los repositorios sobre maps en memoria, para
// desarrollo y tests. Un Store compartido mantiene todas las tablas bajo un
// solo mutex: las cascadas y los joins entre dominios se resuelven acá.
package memory

import (
	"sync"

	"mediflow/internal/domain/intakelogs"
	"mediflow/internal/domain/medicines"
	"mediflow/internal/domain/notifications"
	"mediflow/internal/domain/treatments"
	"mediflow/internal/domain/users"
)

type Store struct {
	mu sync.RWMutex

	users         map[string]users.User
	sessions      map[string]users.Session
	treatments    map[string]treatments.Treatment
	medicines     map[string]medicines.Medicine
	intakeLogs    map[string]intakelogs.IntakeLog
	notifications map[string]notifications.Notification
}

func NewStore() *Store {
	return &Store{
		users:         make(map[string]users.User),
		sessions:      make(map[string]users.Session),
		treatments:    make(map[string]treatments.Treatment),
		medicines:     make(map[string]medicines.Medicine),
		intakeLogs:    make(map[string]intakelogs.IntakeLog),
		notifications: make(map[string]notifications.Notification),
	}
}

func (s *Store) Users() *UsersRepo                 { return &UsersRepo{s: s} }
func (s *Store) Sessions() *SessionsRepo           { return &SessionsRepo{s: s} }
func (s *Store) Treatments() *TreatmentsRepo       { return &TreatmentsRepo{s: s} }
func (s *Store) Medicines() *MedicinesRepo         { return &MedicinesRepo{s: s} }
func (s *Store) IntakeLogs() *IntakeLogsRepo       { return &IntakeLogsRepo{s: s} }
func (s *Store) Notifications() *NotificationsRepo { return &NotificationsRepo{s: s} }
func (s *Store) Adherence() *AdherenceRepo         { return &AdherenceRepo{s: s} }

// deleteMedicineLocked borra la medicina con sus logs y notificaciones.
// Requiere s.mu tomado en escritura.
func (s *Store) deleteMedicineLocked(medicineID string) {
	delete(s.medicines, medicineID)
	for id, l := range s.intakeLogs {
		if l.MedicineID == medicineID {
			delete(s.intakeLogs, id)
		}
	}
	for id, n := range s.notifications {
		if n.MedicineID != nil && *n.MedicineID == medicineID {
			delete(s.notifications, id)
		}
	}
}
