package alarm

import (
	"sync"
	"sync/atomic"
	"time"

	"mediflow/internal/platform/logger"
)

// Medicine es la vista mínima que necesita el matcher; alarmd la arma desde
// la respuesta del API.
type Medicine struct {
	ID           string
	Name         string
	Dosage       string
	ScheduleTime string // "HH:MM"
	Instructions string
}

const (
	// DefaultInterval: se re-chequea cada 500ms en vez de armar un timer por
	// medicina; tolera drift del reloj y suspend/resume del equipo.
	DefaultInterval = 500 * time.Millisecond

	// PreWindowMinutes: minutos de anticipación del pre-aviso.
	PreWindowMinutes = 30
)

type MatcherOptions struct {
	Interval time.Duration
	Session  *Session // opcional; default NewSession(defaults)
	Now      func() time.Time
	Log      logger.Logger

	// OnAlarm / OnPreReminder: fire-and-forget hacia el dispatcher. Se
	// invocan desde la goroutine del matcher; deben retornar rápido.
	OnAlarm       func(Medicine)
	OnPreReminder func(Medicine)
}

// Matcher recorre la lista de medicinas en cada tick y decide qué alarma o
// pre-aviso corresponde al minuto actual. Una instancia por snapshot de la
// lista: al refrescar medicinas se hace Stop() y se crea otro con Session nueva.
type Matcher struct {
	meds     []Medicine
	session  *Session
	interval time.Duration
	now      func() time.Time
	log      logger.Logger

	onAlarm func(Medicine)
	onPre   func(Medicine)

	lastMinute string

	startOnce sync.Once
	stopOnce  sync.Once
	started   atomic.Bool
	stop      chan struct{}
	done      chan struct{}
}

func NewMatcher(meds []Medicine, opts MatcherOptions) *Matcher {
	interval := opts.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	session := opts.Session
	if session == nil {
		session = NewSession(0, 0)
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	log := opts.Log
	if log == nil {
		log = logger.Noop{}
	}

	snapshot := make([]Medicine, len(meds))
	copy(snapshot, meds)

	return &Matcher{
		meds:     snapshot,
		session:  session,
		interval: interval,
		now:      now,
		log:      log,
		onAlarm:  opts.OnAlarm,
		onPre:    opts.OnPreReminder,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start lanza el loop de polling: chequeo inmediato y luego cada tick.
func (m *Matcher) Start() {
	m.startOnce.Do(func() {
		m.started.Store(true)
		go func() {
			defer close(m.done)

			m.check()

			ticker := time.NewTicker(m.interval)
			defer ticker.Stop()

			for {
				select {
				case <-m.stop:
					return
				case <-ticker.C:
					m.check()
				}
			}
		}()
	})
}

// Stop es el único camino de cancelación; idempotente. Espera a que el loop
// termine para que no queden callbacks en vuelo tras retornar.
func (m *Matcher) Stop() {
	m.stopOnce.Do(func() { close(m.stop) })
	if m.started.Load() {
		<-m.done
	}
}

func (m *Matcher) check() {
	now := m.now()
	current := Clock(now)

	if current != m.lastMinute {
		m.log.Debug("checking schedules", map[string]any{"at": current})
		m.lastMinute = current
		m.session.Prune(now)
	}

	for _, med := range m.meds {
		scheduled, err := At(med.ScheduleTime, now)
		if err != nil {
			// Un schedule roto no aborta el loop: se salta esa medicina.
			m.log.Warn("unparseable schedule time", map[string]any{
				"medicine_id": med.ID,
				"schedule":    med.ScheduleTime,
			})
			continue
		}

		// Re-formateado por si la medicina vino con "9:00" en vez de "09:00".
		sched := Clock(scheduled)
		pre := Clock(scheduled.Add(-PreWindowMinutes * time.Minute))

		if pre == current && m.session.PreNotifyOnce(med.ID, now) {
			m.log.Info("pre-reminder due", map[string]any{
				"medicine_id": med.ID,
				"medicine":    med.Name,
				"scheduled":   sched,
			})
			if m.onPre != nil {
				m.onPre(med)
			}
		}

		if sched == current && m.session.FireOnce(med.ID, now) {
			m.log.Info("alarm triggered", map[string]any{
				"medicine_id": med.ID,
				"medicine":    med.Name,
				"at":          current,
			})
			if m.onAlarm != nil {
				m.onAlarm(med)
			}
		}
	}
}
