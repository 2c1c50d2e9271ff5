// Package worker implementa el contexto de ejecución independiente que arma
// notificaciones diferidas y reacciona a la interacción del usuario, espejo
// del service worker del cliente original: mensajería asíncrona, sin memoria
// compartida con el foreground.
package worker

import (
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"mediflow/internal/platform/logger"
)

type MessageType string

const (
	MessageSchedule MessageType = "SCHEDULE_NOTIFICATION"
	MessageCancel   MessageType = "CANCEL_NOTIFICATION"
)

// Message es el protocolo foreground -> worker.
type Message struct {
	Type       MessageType
	Title      string
	Body       string
	Delay      time.Duration
	MedicineID string
}

type EventType string

const EventMedicineTaken EventType = "MEDICINE_TAKEN"

// Event es el protocolo worker -> foreground.
type Event struct {
	Type       EventType
	MedicineID string
	TakenAt    time.Time
}

type Action string

const (
	ActionTaken   Action = "taken"
	ActionSnooze  Action = "snooze"
	ActionDefault Action = "" // click sin acción: abrir la app
)

// Notification es lo que el Notifier muestra al usuario. El tag dedup
// (medicine-{id} / medicine-{id}-snooze) reemplaza pendientes y permite
// cerrar por cancelación.
type Notification struct {
	Tag        string
	Title      string
	Body       string
	MedicineID string
	Actions    []Action
}

// Notifier renderiza notificaciones nativas. CloseByTag cierra SOLO las del
// tag exacto.
type Notifier interface {
	Show(n Notification) error
	CloseByTag(tag string)
}

func Tag(medicineID string) string       { return "medicine-" + medicineID }
func SnoozeTag(medicineID string) string { return Tag(medicineID) + "-snooze" }

const (
	defaultSnoozeDelay = 10 * time.Minute
	inboxSize          = 16
)

// Worker corre en su propia goroutine con su propia cola de mensajes.
type Worker struct {
	in     chan Message
	events chan Event

	notifier Notifier
	openApp  func(url string) // fallback cuando no hay foreground escuchando
	log      logger.Logger
	now      func() time.Time

	snoozeDelay time.Duration

	mu     sync.Mutex
	timers map[string]*time.Timer

	startOnce sync.Once
	stopOnce  sync.Once
	started   atomic.Bool
	stop      chan struct{}
	done      chan struct{}
}

type Options struct {
	SnoozeDelay time.Duration
	Now         func() time.Time
}

func New(notifier Notifier, openApp func(string), log logger.Logger, opts Options) *Worker {
	if log == nil {
		log = logger.Noop{}
	}
	if openApp == nil {
		openApp = func(string) {}
	}
	snooze := opts.SnoozeDelay
	if snooze <= 0 {
		snooze = defaultSnoozeDelay
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	return &Worker{
		in:          make(chan Message, inboxSize),
		events:      make(chan Event, inboxSize),
		notifier:    notifier,
		openApp:     openApp,
		log:         log,
		now:         now,
		snoozeDelay: snooze,
		timers:      make(map[string]*time.Timer),
		stop:        make(chan struct{}),
		done:        make(chan struct{}),
	}
}

func (w *Worker) Start() {
	w.startOnce.Do(func() {
		w.started.Store(true)
		go w.run()
	})
}

// Stop apaga el loop y desarma todos los timers pendientes.
func (w *Worker) Stop() {
	w.stopOnce.Do(func() { close(w.stop) })
	if w.started.Load() {
		<-w.done
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	for tag, t := range w.timers {
		t.Stop()
		delete(w.timers, tag)
	}
}

// Send encola un mensaje sin bloquear. false = worker saturado o apagado;
// el caller lo trata como best-effort (log y seguir).
func (w *Worker) Send(msg Message) bool {
	select {
	case <-w.stop:
		return false
	default:
	}

	select {
	case w.in <- msg:
		return true
	default:
		return false
	}
}

// Events expone el canal worker -> foreground.
func (w *Worker) Events() <-chan Event {
	return w.events
}

func (w *Worker) run() {
	defer close(w.done)

	for {
		select {
		case <-w.stop:
			return
		case msg := <-w.in:
			switch msg.Type {
			case MessageSchedule:
				w.schedule(msg)
			case MessageCancel:
				w.cancel(msg.MedicineID)
			default:
				w.log.Warn("unknown worker message", map[string]any{"type": string(msg.Type)})
			}
		}
	}
}

// schedule arma un one-shot; un segundo schedule para la misma medicina
// reemplaza al pendiente (mismo tag) en vez de duplicarlo.
func (w *Worker) schedule(msg Message) {
	tag := Tag(msg.MedicineID)

	n := Notification{
		Tag:        tag,
		Title:      msg.Title,
		Body:       msg.Body,
		MedicineID: msg.MedicineID,
		Actions:    []Action{ActionTaken, ActionSnooze},
	}

	w.armTimer(tag, msg.Delay, n)
}

func (w *Worker) cancel(medicineID string) {
	tag := Tag(medicineID)

	w.mu.Lock()
	if t, ok := w.timers[tag]; ok {
		t.Stop()
		delete(w.timers, tag)
	}
	w.mu.Unlock()

	// Solo el tag exacto: las snoozed sobreviven salvo cancelación propia.
	w.notifier.CloseByTag(tag)
}

func (w *Worker) armTimer(tag string, delay time.Duration, n Notification) {
	if delay < 0 {
		delay = 0
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if t, ok := w.timers[tag]; ok {
		t.Stop()
	}
	w.timers[tag] = time.AfterFunc(delay, func() {
		w.mu.Lock()
		delete(w.timers, tag)
		w.mu.Unlock()

		if err := w.notifier.Show(n); err != nil {
			w.log.Warn("notification show failed", map[string]any{
				"tag": tag,
				"err": err.Error(),
			})
		}
	})
}

// HandleAction la invoca el Notifier cuando el usuario interactúa con una
// notificación visible. Corre en el contexto del worker, independiente de si
// hay foreground.
func (w *Worker) HandleAction(n Notification, action Action) {
	switch action {
	case ActionTaken:
		w.notifier.CloseByTag(n.Tag)

		ev := Event{
			Type:       EventMedicineTaken,
			MedicineID: n.MedicineID,
			TakenAt:    w.now(),
		}
		select {
		case w.events <- ev:
		default:
			// Sin foreground escuchando: deep link "taken".
			w.openApp("/patient/dashboard?taken=" + n.MedicineID)
		}

	case ActionSnooze:
		w.notifier.CloseByTag(n.Tag)

		snoozed := Notification{
			Tag:        SnoozeTag(n.MedicineID),
			Title:      "🔔 Medicine Reminder - Snoozed",
			Body:       snoozeBody(n.Body),
			MedicineID: n.MedicineID,
			Actions:    []Action{ActionTaken, ActionSnooze},
		}
		w.armTimer(snoozed.Tag, w.snoozeDelay, snoozed)

	default:
		w.openApp("/patient/dashboard")
	}
}

func snoozeBody(body string) string {
	if strings.HasSuffix(body, " (Snoozed)") {
		return body
	}
	return body + " (Snoozed)"
}
