package postgres

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"mediflow/internal/domain/intakelogs"
)

type IntakeLogsRepo struct {
	db *sql.DB
}

func NewIntakeLogsRepo(db *sql.DB) *IntakeLogsRepo {
	return &IntakeLogsRepo{db: db}
}

// Create inserta el log. Para status=taken el check de duplicado del día y
// el insert van en un solo statement: la serialización la da la base, no el
// proceso (el paciente puede tener varias sesiones abiertas).
func (r *IntakeLogsRepo) Create(ctx context.Context, l intakelogs.IntakeLog) error {
	if l.Status != intakelogs.StatusTaken {
		_, err := r.db.ExecContext(ctx, `
			INSERT INTO intake_logs (
				id, medicine_id, scheduled_time, taken_time, status, notes, created_at
			) VALUES ($1,$2,$3,$4,$5,$6,$7)
		`,
			l.ID, l.MedicineID, l.ScheduledTime, toNullTime(l.TakenTime),
			string(l.Status), l.Notes, l.CreatedAt,
		)
		return err
	}

	res, err := r.db.ExecContext(ctx, `
		INSERT INTO intake_logs (
			id, medicine_id, scheduled_time, taken_time, status, notes, created_at
		)
		SELECT $1, $2, $3, $4, 'taken', $5, $6
		WHERE NOT EXISTS (
			SELECT 1 FROM intake_logs
			WHERE medicine_id = $2
			  AND status = 'taken'
			  AND scheduled_time::date = ($3::timestamptz)::date
		)
	`,
		l.ID, l.MedicineID, l.ScheduledTime, toNullTime(l.TakenTime),
		l.Notes, l.CreatedAt,
	)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return intakelogs.ErrAlreadyTakenToday
	}
	return nil
}

const intakeLogColumns = `id, medicine_id, scheduled_time, taken_time, status, notes, created_at`

func scanIntakeLog(row interface{ Scan(...any) error }) (intakelogs.IntakeLog, error) {
	var l intakelogs.IntakeLog
	var status string
	var taken sql.NullTime
	err := row.Scan(
		&l.ID,
		&l.MedicineID,
		&l.ScheduledTime,
		&taken,
		&status,
		&l.Notes,
		&l.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return intakelogs.IntakeLog{}, intakelogs.ErrNotFound
		}
		return intakelogs.IntakeLog{}, err
	}
	l.Status = intakelogs.Status(status)
	if taken.Valid {
		t := taken.Time
		l.TakenTime = &t
	}
	return l, nil
}

func (r *IntakeLogsRepo) GetByID(ctx context.Context, id string) (intakelogs.IntakeLog, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return intakelogs.IntakeLog{}, intakelogs.ErrNotFound
	}
	row := r.db.QueryRowContext(ctx,
		`SELECT `+intakeLogColumns+` FROM intake_logs WHERE id = $1`, id)
	return scanIntakeLog(row)
}

func (r *IntakeLogsRepo) ListByMedicine(ctx context.Context, medicineID string) ([]intakelogs.IntakeLog, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+intakeLogColumns+` FROM intake_logs WHERE medicine_id = $1 ORDER BY scheduled_time DESC`,
		medicineID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]intakelogs.IntakeLog, 0)
	for rows.Next() {
		l, err := scanIntakeLog(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (r *IntakeLogsRepo) GetRecent(ctx context.Context, medicineID string) (intakelogs.IntakeLog, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+intakeLogColumns+`
		FROM intake_logs
		WHERE medicine_id = $1
		ORDER BY created_at DESC
		LIMIT 1
	`, medicineID)
	return scanIntakeLog(row)
}

func (r *IntakeLogsRepo) GetTakenOn(ctx context.Context, medicineID string, day time.Time) (intakelogs.IntakeLog, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+intakeLogColumns+`
		FROM intake_logs
		WHERE medicine_id = $1
		  AND status = 'taken'
		  AND scheduled_time::date = ($2::timestamptz)::date
		LIMIT 1
	`, medicineID, day)
	return scanIntakeLog(row)
}
