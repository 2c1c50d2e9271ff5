package postgres

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"mediflow/internal/domain/notifications"
)

type NotificationsRepo struct {
	db *sql.DB
}

func NewNotificationsRepo(db *sql.DB) *NotificationsRepo {
	return &NotificationsRepo{db: db}
}

func (r *NotificationsRepo) Create(ctx context.Context, n notifications.Notification) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO notifications (
			id, user_id, medicine_id, title, message, type,
			read, scheduled_for, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`,
		n.ID,
		n.UserID,
		toNullString(n.MedicineID),
		n.Title,
		n.Message,
		string(n.Type),
		n.Read,
		toNullTime(n.ScheduledFor),
		n.CreatedAt,
	)
	return err
}

const notificationColumns = `id, user_id, medicine_id, title, message, type, read, scheduled_for, created_at`

func scanNotification(row interface{ Scan(...any) error }) (notifications.Notification, error) {
	var n notifications.Notification
	var typ string
	var medID sql.NullString
	var sched sql.NullTime
	err := row.Scan(
		&n.ID,
		&n.UserID,
		&medID,
		&n.Title,
		&n.Message,
		&typ,
		&n.Read,
		&sched,
		&n.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return notifications.Notification{}, notifications.ErrNotFound
		}
		return notifications.Notification{}, err
	}
	n.Type = notifications.Type(typ)
	if medID.Valid {
		v := medID.String
		n.MedicineID = &v
	}
	if sched.Valid {
		t := sched.Time
		n.ScheduledFor = &t
	}
	return n, nil
}

func (r *NotificationsRepo) GetByID(ctx context.Context, id string) (notifications.Notification, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return notifications.Notification{}, notifications.ErrNotFound
	}
	row := r.db.QueryRowContext(ctx,
		`SELECT `+notificationColumns+` FROM notifications WHERE id = $1`, id)
	return scanNotification(row)
}

func (r *NotificationsRepo) ListByUser(ctx context.Context, userID string, limit int) ([]notifications.Notification, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+notificationColumns+`
		FROM notifications
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]notifications.Notification, 0)
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (r *NotificationsRepo) MarkRead(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE notifications SET read = TRUE WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return notifications.ErrNotFound
	}
	return nil
}

func (r *NotificationsRepo) DeleteReadBefore(ctx context.Context, cutoff time.Time) (int, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM notifications WHERE read = TRUE AND created_at < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}
