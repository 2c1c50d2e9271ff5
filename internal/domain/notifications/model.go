package notifications

import "time"

// Type define las clases de notificación persistida.
// @Enum reminder, alert, info
type Type string

const (
	TypeReminder Type = "reminder"
	TypeAlert    Type = "alert"
	TypeInfo     Type = "info"
)

// Notification es un recordatorio persistido para un usuario.
// Solo muta el flag Read después de creada.
type Notification struct {
	ID         string
	UserID     string
	MedicineID *string

	Title   string
	Message string
	Type    Type
	Read    bool

	ScheduledFor *time.Time
	CreatedAt    time.Time
}
