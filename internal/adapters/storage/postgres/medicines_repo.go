package postgres

import (
	"context"
	"database/sql"
	"strings"

	"mediflow/internal/domain/medicines"
)

type MedicinesRepo struct {
	db *sql.DB
}

func NewMedicinesRepo(db *sql.DB) *MedicinesRepo {
	return &MedicinesRepo{db: db}
}

func (r *MedicinesRepo) Create(ctx context.Context, m medicines.Medicine) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO medicines (
			id, treatment_id, name, dosage, frequency,
			schedule_time, instructions, stock, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`,
		m.ID,
		m.TreatmentID,
		m.Name,
		m.Dosage,
		m.Frequency,
		m.ScheduleTime,
		m.Instructions,
		m.Stock,
		m.CreatedAt,
	)
	return err
}

const medicineColumns = `id, treatment_id, name, dosage, frequency, schedule_time, instructions, stock, created_at`

func scanMedicine(row interface{ Scan(...any) error }) (medicines.Medicine, error) {
	var m medicines.Medicine
	err := row.Scan(
		&m.ID,
		&m.TreatmentID,
		&m.Name,
		&m.Dosage,
		&m.Frequency,
		&m.ScheduleTime,
		&m.Instructions,
		&m.Stock,
		&m.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return medicines.Medicine{}, medicines.ErrNotFound
		}
		return medicines.Medicine{}, err
	}
	return m, nil
}

func (r *MedicinesRepo) GetByID(ctx context.Context, id string) (medicines.Medicine, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return medicines.Medicine{}, medicines.ErrNotFound
	}
	row := r.db.QueryRowContext(ctx,
		`SELECT `+medicineColumns+` FROM medicines WHERE id = $1`, id)
	return scanMedicine(row)
}

func (r *MedicinesRepo) ListByTreatment(ctx context.Context, treatmentID string) ([]medicines.Medicine, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+medicineColumns+` FROM medicines WHERE treatment_id = $1 ORDER BY schedule_time ASC`,
		treatmentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectMedicines(rows)
}

func (r *MedicinesRepo) ListByPatient(ctx context.Context, patientID string) ([]medicines.Medicine, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT m.id, m.treatment_id, m.name, m.dosage, m.frequency,
		       m.schedule_time, m.instructions, m.stock, m.created_at
		FROM medicines m
		JOIN treatments t ON t.id = m.treatment_id
		WHERE t.patient_id = $1
		ORDER BY m.schedule_time ASC
	`, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectMedicines(rows)
}

func collectMedicines(rows *sql.Rows) ([]medicines.Medicine, error) {
	out := make([]medicines.Medicine, 0)
	for rows.Next() {
		m, err := scanMedicine(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *MedicinesRepo) Update(ctx context.Context, m medicines.Medicine) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE medicines
		SET name = $2, dosage = $3, frequency = $4,
		    schedule_time = $5, instructions = $6, stock = $7
		WHERE id = $1
	`,
		m.ID,
		m.Name,
		m.Dosage,
		m.Frequency,
		m.ScheduleTime,
		m.Instructions,
		m.Stock,
	)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return medicines.ErrNotFound
	}
	return nil
}

func (r *MedicinesRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM medicines WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return medicines.ErrNotFound
	}
	return nil
}
