// alarmd es el daemon de alarmas del paciente: se loguea contra el API,
// refresca la lista de medicinas y dispara alarmas locales (tono + worker
// de notificaciones) a la hora programada de cada una.
package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"mediflow/internal/adapters/api"
	"mediflow/internal/alarm"
	"mediflow/internal/alarm/worker"
	"mediflow/internal/config"
	"mediflow/internal/platform/logger"
)

func main() {
	cfg, err := config.LoadAlarmd()
	if err != nil {
		logger.NewFromEnv().Error("invalid config", map[string]any{"err": err.Error()})
		os.Exit(1)
	}

	log := logger.New(logger.Options{
		Level:  logger.ParseLevel(cfg.LogLevel),
		Format: logger.ParseFormat(cfg.LogFormat),
		App:    "mediflow-alarmd",
	})

	client, err := api.New(cfg.APIBaseURL)
	if err != nil {
		log.Error("api client setup failed", map[string]any{"err": err.Error()})
		os.Exit(1)
	}

	loginCtx, cancelLogin := context.WithTimeout(context.Background(), 15*time.Second)
	err = client.Login(loginCtx, cfg.Username, cfg.Password)
	cancelLogin()
	if err != nil {
		log.Error("login failed", map[string]any{
			"api": cfg.APIBaseURL,
			"err": err.Error(),
		})
		os.Exit(1)
	}
	log.Info("logged in", map[string]any{"username": cfg.Username})

	var sink io.Writer
	if cfg.AudioPath != "" {
		f, err := os.OpenFile(cfg.AudioPath, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
		if err != nil {
			log.Warn("audio sink unavailable, alarms will be silent", map[string]any{
				"path": cfg.AudioPath,
				"err":  err.Error(),
			})
		} else {
			defer f.Close()
			sink = f
		}
	}
	tone := alarm.NewTone(sink, log)
	defer tone.Stop()

	w := worker.New(&logNotifier{log: log}, nil, log, worker.Options{})
	w.Start()
	defer w.Stop()

	disp := alarm.NewDispatcher(tone, w, client, log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go disp.ConsumeEvents(ctx)

	var (
		mu      sync.Mutex
		matcher *alarm.Matcher
		current []alarm.Medicine
	)

	refresh := func() {
		opCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
		meds, err := client.Medicines(opCtx)
		cancel()
		if err != nil {
			log.Warn("medicine refresh failed", map[string]any{"err": err.Error()})
			return
		}

		mu.Lock()
		defer mu.Unlock()

		if matcher != nil && sameMedicines(current, meds) {
			return
		}

		// Lista nueva: matcher nuevo con estado de dedup propio.
		if matcher != nil {
			matcher.Stop()
		}
		current = meds
		matcher = alarm.NewMatcher(meds, alarm.MatcherOptions{
			Log:           log,
			OnAlarm:       disp.HandleAlarm,
			OnPreReminder: disp.HandlePreReminder,
		})
		matcher.Start()
		log.Info("medicine schedules loaded", map[string]any{"count": len(meds)})

		// Pre-arma en el worker la notificación del próximo horario de cada
		// medicina; si el proceso sigue vivo al disparar la alarma, el Send
		// de delay 0 la reemplaza (mismo tag).
		now := time.Now()
		for _, med := range meds {
			delay, err := alarm.DelayUntil(med.ScheduleTime, now)
			if err != nil {
				continue
			}
			w.Send(worker.Message{
				Type:       worker.MessageSchedule,
				Title:      "💊 Time to take your medicine!",
				Body:       "It's time to take " + med.Name,
				Delay:      delay,
				MedicineID: med.ID,
			})
		}
	}

	refresh()

	jobs := cron.New()
	if _, err := jobs.AddFunc(cfg.RefreshSpec, refresh); err != nil {
		log.Error("invalid refresh spec", map[string]any{
			"spec": cfg.RefreshSpec,
			"err":  err.Error(),
		})
		os.Exit(1)
	}
	jobs.Start()

	<-ctx.Done()
	log.Info("shutting down", nil)

	jobs.Stop()
	mu.Lock()
	if matcher != nil {
		matcher.Stop()
	}
	mu.Unlock()
}

func sameMedicines(a, b []alarm.Medicine) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// logNotifier muestra las notificaciones por el log del daemon; en un equipo
// con notificaciones nativas acá iría el binding al sistema.
type logNotifier struct {
	log logger.Logger
}

func (n *logNotifier) Show(notif worker.Notification) error {
	n.log.Info("notification", map[string]any{
		"tag":   notif.Tag,
		"title": notif.Title,
		"body":  notif.Body,
	})
	return nil
}

func (n *logNotifier) CloseByTag(tag string) {
	n.log.Debug("notification closed", map[string]any{"tag": tag})
}
