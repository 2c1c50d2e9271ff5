package users

import (
	"context"
	"errors"
	"strings"
	"time"

	"mediflow/internal/ports/auth"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrUsernameTaken      = errors.New("username already exists")
	ErrEmailTaken         = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrSessionExpired     = errors.New("session expired")
)

const bcryptCost = 10

type Service struct {
	repo     Repository
	sessions SessionRepository
	ttl      time.Duration
	now      func() time.Time
}

func NewService(repo Repository, sessions SessionRepository, sessionTTL time.Duration) *Service {
	if sessionTTL <= 0 {
		sessionTTL = 7 * 24 * time.Hour
	}
	return &Service{
		repo:     repo,
		sessions: sessions,
		ttl:      sessionTTL,
		now:      time.Now,
	}
}

type SignupInput struct {
	Username string
	Password string
	Email    string
	FullName string
	Role     string
}

func (s *Service) Signup(ctx context.Context, in SignupInput) (User, error) {
	username := strings.TrimSpace(in.Username)
	email := strings.TrimSpace(in.Email)

	if username == "" || email == "" {
		return User{}, ErrInvalidInput
	}
	if strings.TrimSpace(in.FullName) == "" {
		return User{}, ErrInvalidInput
	}
	if len(in.Password) < 6 {
		return User{}, ErrInvalidInput
	}

	role := Role(strings.TrimSpace(in.Role))
	if role == "" {
		role = RolePatient
	}
	if role != RolePatient && role != RoleAdmin {
		return User{}, ErrInvalidInput
	}

	if _, err := s.repo.GetByUsername(ctx, username); err == nil {
		return User{}, ErrUsernameTaken
	} else if !errors.Is(err, ErrNotFound) {
		return User{}, err
	}
	if _, err := s.repo.GetByEmail(ctx, email); err == nil {
		return User{}, ErrEmailTaken
	} else if !errors.Is(err, ErrNotFound) {
		return User{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcryptCost)
	if err != nil {
		return User{}, err
	}

	u := User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: string(hash),
		Email:        email,
		Role:         role,
		FullName:     strings.TrimSpace(in.FullName),
		CreatedAt:    s.now(),
	}

	if err := s.repo.Create(ctx, u); err != nil {
		return User{}, err
	}
	return u, nil
}

func (s *Service) Login(ctx context.Context, username, password string) (User, Session, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return User{}, Session{}, ErrInvalidCredentials
	}

	u, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return User{}, Session{}, ErrInvalidCredentials
		}
		return User{}, Session{}, err
	}

	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return User{}, Session{}, ErrInvalidCredentials
	}

	now := s.now()
	sess := Session{
		Token:     uuid.NewString(),
		UserID:    u.ID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}
	if err := s.sessions.Create(ctx, sess); err != nil {
		return User{}, Session{}, err
	}

	return u, sess, nil
}

func (s *Service) Logout(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil
	}
	err := s.sessions.Delete(ctx, token)
	if errors.Is(err, ErrSessionNotFound) {
		return nil
	}
	return err
}

func (s *Service) GetByID(ctx context.Context, id string) (User, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return User{}, ErrInvalidInput
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListPatients(ctx context.Context) ([]User, error) {
	return s.repo.ListByRole(ctx, RolePatient)
}

// Verify implementa ports/auth.SessionVerifier sobre el store de sesiones.
func (s *Service) Verify(ctx context.Context, token string) (auth.Claims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return auth.Claims{}, ErrSessionNotFound
	}

	sess, err := s.sessions.GetByToken(ctx, token)
	if err != nil {
		return auth.Claims{}, err
	}
	if s.now().After(sess.ExpiresAt) {
		// Sesión vencida: se limpia best-effort.
		_ = s.sessions.Delete(ctx, token)
		return auth.Claims{}, ErrSessionExpired
	}

	u, err := s.repo.GetByID(ctx, sess.UserID)
	if err != nil {
		return auth.Claims{}, err
	}

	return auth.Claims{UserID: u.ID, Role: string(u.Role), Email: u.Email}, nil
}

// EnsureAdmin crea (si no existe) el usuario admin seed.
// Username vacío => no-op.
func (s *Service) EnsureAdmin(ctx context.Context, username, password, email string) (User, bool, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return User{}, false, nil
	}

	if u, err := s.repo.GetByUsername(ctx, username); err == nil {
		return u, false, nil
	} else if !errors.Is(err, ErrNotFound) {
		return User{}, false, err
	}

	u, err := s.Signup(ctx, SignupInput{
		Username: username,
		Password: password,
		Email:    email,
		FullName: "Administrator",
		Role:     string(RoleAdmin),
	})
	if err != nil {
		return User{}, false, err
	}
	return u, true, nil
}
