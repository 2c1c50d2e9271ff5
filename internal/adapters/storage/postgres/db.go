package postgres

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// Open abre una conexión pool a Postgres usando pgx (database/sql).
func Open(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}

	// defaults razonables para MVP (ajustable luego)
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxIdleTime(5 * time.Minute)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id            TEXT PRIMARY KEY,
	username      TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	email         TEXT NOT NULL UNIQUE,
	role          TEXT NOT NULL DEFAULT 'patient',
	full_name     TEXT NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS user_sessions (
	token      TEXT PRIMARY KEY,
	user_id    TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	expires_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS treatments (
	id          TEXT PRIMARY KEY,
	patient_id  TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	name        TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	status      TEXT NOT NULL DEFAULT 'active',
	start_date  TIMESTAMPTZ NOT NULL,
	end_date    TIMESTAMPTZ,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS medicines (
	id            TEXT PRIMARY KEY,
	treatment_id  TEXT NOT NULL REFERENCES treatments(id) ON DELETE CASCADE,
	name          TEXT NOT NULL,
	dosage        TEXT NOT NULL,
	frequency     TEXT NOT NULL DEFAULT 'daily',
	schedule_time TEXT NOT NULL,
	instructions  TEXT NOT NULL DEFAULT '',
	stock         INTEGER NOT NULL DEFAULT 0,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS intake_logs (
	id             TEXT PRIMARY KEY,
	medicine_id    TEXT NOT NULL REFERENCES medicines(id) ON DELETE CASCADE,
	scheduled_time TIMESTAMPTZ NOT NULL,
	taken_time     TIMESTAMPTZ,
	status         TEXT NOT NULL,
	notes          TEXT NOT NULL DEFAULT '',
	created_at     TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS intake_logs_medicine_day
	ON intake_logs (medicine_id, (scheduled_time::date));

CREATE TABLE IF NOT EXISTS notifications (
	id            TEXT PRIMARY KEY,
	user_id       TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	medicine_id   TEXT REFERENCES medicines(id) ON DELETE CASCADE,
	title         TEXT NOT NULL,
	message       TEXT NOT NULL,
	type          TEXT NOT NULL DEFAULT 'reminder',
	read          BOOLEAN NOT NULL DEFAULT FALSE,
	scheduled_for TIMESTAMPTZ,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

// EnsureSchema crea las tablas si no existen. Idempotente; corre al boot.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, schema)
	return err
}
