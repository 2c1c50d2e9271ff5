package postgres

import (
	"context"
	"database/sql"
	"strings"

	"mediflow/internal/domain/treatments"
)

type TreatmentsRepo struct {
	db *sql.DB
}

func NewTreatmentsRepo(db *sql.DB) *TreatmentsRepo {
	return &TreatmentsRepo{db: db}
}

func (r *TreatmentsRepo) Create(ctx context.Context, t treatments.Treatment) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO treatments (
			id, patient_id, name, description, status,
			start_date, end_date, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`,
		t.ID,
		t.PatientID,
		t.Name,
		t.Description,
		string(t.Status),
		t.StartDate,
		toNullTime(t.EndDate),
		t.CreatedAt,
	)
	return err
}

const treatmentColumns = `id, patient_id, name, description, status, start_date, end_date, created_at`

func scanTreatment(row interface{ Scan(...any) error }) (treatments.Treatment, error) {
	var t treatments.Treatment
	var status string
	var end sql.NullTime
	err := row.Scan(
		&t.ID,
		&t.PatientID,
		&t.Name,
		&t.Description,
		&status,
		&t.StartDate,
		&end,
		&t.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return treatments.Treatment{}, treatments.ErrNotFound
		}
		return treatments.Treatment{}, err
	}
	t.Status = treatments.Status(status)
	if end.Valid {
		e := end.Time
		t.EndDate = &e
	}
	return t, nil
}

func (r *TreatmentsRepo) GetByID(ctx context.Context, id string) (treatments.Treatment, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return treatments.Treatment{}, treatments.ErrNotFound
	}
	row := r.db.QueryRowContext(ctx,
		`SELECT `+treatmentColumns+` FROM treatments WHERE id = $1`, id)
	return scanTreatment(row)
}

func (r *TreatmentsRepo) ListByPatient(ctx context.Context, patientID string) ([]treatments.Treatment, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+treatmentColumns+` FROM treatments WHERE patient_id = $1 ORDER BY created_at ASC`,
		patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]treatments.Treatment, 0)
	for rows.Next() {
		t, err := scanTreatment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *TreatmentsRepo) Update(ctx context.Context, t treatments.Treatment) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE treatments
		SET name = $2, description = $3, status = $4,
		    start_date = $5, end_date = $6
		WHERE id = $1
	`,
		t.ID,
		t.Name,
		t.Description,
		string(t.Status),
		t.StartDate,
		toNullTime(t.EndDate),
	)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return treatments.ErrNotFound
	}
	return nil
}

// Delete cascadea medicinas, intake logs y notificaciones vía FK ON DELETE CASCADE.
func (r *TreatmentsRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM treatments WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return treatments.ErrNotFound
	}
	return nil
}
