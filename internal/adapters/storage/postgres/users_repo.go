package postgres

import (
	"context"
	"database/sql"
	"strings"

	"mediflow/internal/domain/users"
)

type UsersRepo struct {
	db *sql.DB
}

func NewUsersRepo(db *sql.DB) *UsersRepo {
	return &UsersRepo{db: db}
}

func (r *UsersRepo) Create(ctx context.Context, u users.User) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (
			id, username, password_hash, email, role, full_name, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7)
	`,
		u.ID,
		u.Username,
		u.PasswordHash,
		u.Email,
		string(u.Role),
		u.FullName,
		u.CreatedAt,
	)
	return err
}

const userColumns = `id, username, password_hash, email, role, full_name, created_at`

func scanUser(row interface{ Scan(...any) error }) (users.User, error) {
	var u users.User
	var role string
	err := row.Scan(
		&u.ID,
		&u.Username,
		&u.PasswordHash,
		&u.Email,
		&role,
		&u.FullName,
		&u.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return users.User{}, users.ErrNotFound
		}
		return users.User{}, err
	}
	u.Role = users.Role(role)
	return u, nil
}

func (r *UsersRepo) GetByID(ctx context.Context, id string) (users.User, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return users.User{}, users.ErrNotFound
	}
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

func (r *UsersRepo) GetByUsername(ctx context.Context, username string) (users.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = $1`, username)
	return scanUser(row)
}

func (r *UsersRepo) GetByEmail(ctx context.Context, email string) (users.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	return scanUser(row)
}

func (r *UsersRepo) ListByRole(ctx context.Context, role users.Role) ([]users.User, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE role = $1 ORDER BY created_at ASC`,
		string(role))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]users.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

type SessionsRepo struct {
	db *sql.DB
}

func NewSessionsRepo(db *sql.DB) *SessionsRepo {
	return &SessionsRepo{db: db}
}

func (r *SessionsRepo) Create(ctx context.Context, s users.Session) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO user_sessions (token, user_id, created_at, expires_at)
		VALUES ($1,$2,$3,$4)
	`, s.Token, s.UserID, s.CreatedAt, s.ExpiresAt)
	return err
}

func (r *SessionsRepo) GetByToken(ctx context.Context, token string) (users.Session, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT token, user_id, created_at, expires_at
		FROM user_sessions
		WHERE token = $1
	`, token)

	var s users.Session
	if err := row.Scan(&s.Token, &s.UserID, &s.CreatedAt, &s.ExpiresAt); err != nil {
		if err == sql.ErrNoRows {
			return users.Session{}, users.ErrSessionNotFound
		}
		return users.Session{}, err
	}
	return s, nil
}

func (r *SessionsRepo) Delete(ctx context.Context, token string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM user_sessions WHERE token = $1`, token)
	return err
}
