package router

import (
	"database/sql"
	"net/http"
	"os"
	"time"

	mem "mediflow/internal/adapters/storage/memory"
	pg "mediflow/internal/adapters/storage/postgres"
	"mediflow/internal/domain/adherence"
	"mediflow/internal/domain/admin"
	"mediflow/internal/domain/intakelogs"
	"mediflow/internal/domain/medicines"
	"mediflow/internal/domain/notifications"
	"mediflow/internal/domain/treatments"
	"mediflow/internal/domain/users"
	"mediflow/internal/middleware"
	"mediflow/internal/platform/logger"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

type Options struct {
	// DevAuth habilita el modo X-Debug-User-ID en vez de sesiones reales.
	// Solo para desarrollo y tests de dominio.
	DevAuth bool

	SessionTTL time.Duration

	Log logger.Logger

	// Opcional: si viene, usa Postgres. Si no, in-memory.
	DB *sql.DB
}

// App expone el handler y los services que los jobs de cmd/api necesitan
// (seed del admin, limpieza de notificaciones).
type App struct {
	Handler http.Handler

	Users         *users.Service
	Notifications *notifications.Service
}

func New(opts Options) *App {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	log := opts.Log
	if log == nil {
		log = logger.Noop{}
	}

	sessionTTL := opts.SessionTTL
	if sessionTTL <= 0 {
		sessionTTL = 7 * 24 * time.Hour
	}

	var (
		usersRepo         users.Repository
		sessionsRepo      users.SessionRepository
		treatmentsRepo    treatments.Repository
		medicinesRepo     medicines.Repository
		intakeLogsRepo    intakelogs.Repository
		notificationsRepo notifications.Repository
		adherenceRepo     adherence.Repository
	)

	// Si no te pasan DB explícita, intenta por env (para dev/handoff)
	db := opts.DB
	if db == nil {
		if dsn := os.Getenv("DB_DSN"); dsn != "" {
			opened, err := pg.Open(dsn)
			if err == nil {
				db = opened
			}
		}
	}

	if db != nil {
		usersRepo = pg.NewUsersRepo(db)
		sessionsRepo = pg.NewSessionsRepo(db)
		treatmentsRepo = pg.NewTreatmentsRepo(db)
		medicinesRepo = pg.NewMedicinesRepo(db)
		intakeLogsRepo = pg.NewIntakeLogsRepo(db)
		notificationsRepo = pg.NewNotificationsRepo(db)
		adherenceRepo = pg.NewAdherenceRepo(db)
	} else {
		store := mem.NewStore()
		usersRepo = store.Users()
		sessionsRepo = store.Sessions()
		treatmentsRepo = store.Treatments()
		medicinesRepo = store.Medicines()
		intakeLogsRepo = store.IntakeLogs()
		notificationsRepo = store.Notifications()
		adherenceRepo = store.Adherence()
	}

	// Services por módulo
	usersSvc := users.NewService(usersRepo, sessionsRepo, sessionTTL)
	treatmentsSvc := treatments.NewService(treatmentsRepo)
	medicinesSvc := medicines.NewService(medicinesRepo)
	intakeLogsSvc := intakelogs.NewService(intakeLogsRepo, medicinesSvc, log)
	notificationsSvc := notifications.NewService(notificationsRepo)
	adherenceSvc := adherence.NewService(adherenceRepo)
	adminSvc := admin.NewService(usersSvc, treatmentsSvc, adherenceSvc)

	if opts.DevAuth {
		r.Use(middleware.AuthContext(nil))
	} else {
		r.Use(middleware.AuthContext(usersSvc))
	}

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	// Rutas por módulo
	users.RegisterRoutes(r, usersSvc)
	treatments.RegisterRoutes(r, treatmentsSvc)
	medicines.RegisterRoutes(r, medicinesSvc, treatmentsSvc)
	intakelogs.RegisterRoutes(r, intakeLogsSvc, medicinesSvc, treatmentsSvc)
	notifications.RegisterRoutes(r, notificationsSvc)
	adherence.RegisterRoutes(r, adherenceSvc, treatmentsSvc)
	admin.RegisterRoutes(r, adminSvc)

	return &App{
		Handler:       r,
		Users:         usersSvc,
		Notifications: notificationsSvc,
	}
}
