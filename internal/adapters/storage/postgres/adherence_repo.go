package postgres

import (
	"context"
	"database/sql"
	"time"

	"mediflow/internal/domain/adherence"
)

// AdherenceRepo agrega sobre intake_logs; no tiene tabla propia.
type AdherenceRepo struct {
	db *sql.DB
}

func NewAdherenceRepo(db *sql.DB) *AdherenceRepo {
	return &AdherenceRepo{db: db}
}

func (r *AdherenceRepo) TreatmentCounts(ctx context.Context, treatmentID string) (int, int, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*) FILTER (WHERE l.status = 'taken'),
			COUNT(*)
		FROM intake_logs l
		JOIN medicines m ON m.id = l.medicine_id
		WHERE m.treatment_id = $1
	`, treatmentID)

	var taken, total int
	if err := row.Scan(&taken, &total); err != nil {
		return 0, 0, err
	}
	return taken, total, nil
}

func (r *AdherenceRepo) DailyCounts(ctx context.Context, patientID string, from, to time.Time) ([]adherence.DayCount, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT
			l.scheduled_time::date AS day,
			COUNT(*) FILTER (WHERE l.status = 'taken'),
			COUNT(*)
		FROM intake_logs l
		JOIN medicines m ON m.id = l.medicine_id
		JOIN treatments t ON t.id = m.treatment_id
		WHERE t.patient_id = $1
		  AND l.scheduled_time >= $2
		  AND l.scheduled_time < $3
		GROUP BY day
		ORDER BY day ASC
	`, patientID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]adherence.DayCount, 0)
	for rows.Next() {
		var c adherence.DayCount
		if err := rows.Scan(&c.Day, &c.Taken, &c.Total); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *AdherenceRepo) MonthlyCounts(ctx context.Context, patientID string, from, to time.Time) ([]adherence.MonthCount, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT
			EXTRACT(YEAR FROM l.scheduled_time)::int,
			EXTRACT(MONTH FROM l.scheduled_time)::int,
			COUNT(*) FILTER (WHERE l.status = 'taken'),
			COUNT(*)
		FROM intake_logs l
		JOIN medicines m ON m.id = l.medicine_id
		JOIN treatments t ON t.id = m.treatment_id
		WHERE t.patient_id = $1
		  AND l.scheduled_time >= $2
		  AND l.scheduled_time < $3
		GROUP BY 1, 2
		ORDER BY 1 ASC, 2 ASC
	`, patientID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]adherence.MonthCount, 0)
	for rows.Next() {
		var year, month, taken, total int
		if err := rows.Scan(&year, &month, &taken, &total); err != nil {
			return nil, err
		}
		out = append(out, adherence.MonthCount{
			Year:  year,
			Month: time.Month(month),
			Taken: taken,
			Total: total,
		})
	}
	return out, rows.Err()
}

var _ adherence.Repository = (*AdherenceRepo)(nil)
