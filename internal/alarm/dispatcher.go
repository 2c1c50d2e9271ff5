package alarm

import (
	"context"
	"time"

	"mediflow/internal/alarm/worker"
	"mediflow/internal/platform/logger"
)

// Recorder persiste los efectos de una alarma contra el servidor. Cada
// método es best-effort desde el punto de vista del dispatcher: un fallo se
// loguea y la alarma local sigue sonando.
type Recorder interface {
	// CreateNotification registra el pre-aviso de 30 minutos en el historial.
	CreateNotification(ctx context.Context, title, message string) error
	// CreateTakenIntake marca la medicina como tomada hoy.
	CreateTakenIntake(ctx context.Context, medicineID string) error
	// TodayTaken indica si ya existe un log "taken" de hoy para la medicina.
	TodayTaken(ctx context.Context, medicineID string) (bool, error)
}

const recorderTimeout = 10 * time.Second

// Dispatcher reacciona a los matches del Matcher: arranca el tono, agenda la
// notificación en el worker y registra los efectos vía Recorder.
type Dispatcher struct {
	tone     *Tone
	worker   *worker.Worker
	recorder Recorder
	log      logger.Logger
	now      func() time.Time

	// OnForeground, si está seteado, se invoca con la medicina al disparar
	// la alarma (el equivalente del diálogo modal del cliente).
	OnForeground func(med Medicine)
}

func NewDispatcher(tone *Tone, w *worker.Worker, rec Recorder, log logger.Logger) *Dispatcher {
	if log == nil {
		log = logger.Noop{}
	}
	return &Dispatcher{
		tone:     tone,
		worker:   w,
		recorder: rec,
		log:      log,
		now:      time.Now,
	}
}

// HandleAlarm corre en el tick del matcher: tiene que volver rápido, todo lo
// lento se despacha aparte.
func (d *Dispatcher) HandleAlarm(med Medicine) {
	d.log.Info("alarm fired", map[string]any{
		"medicine": med.Name,
		"schedule": med.ScheduleTime,
	})

	d.tone.StartLoop()

	ok := d.worker.Send(worker.Message{
		Type:       worker.MessageSchedule,
		Title:      "💊 Time to take your medicine!",
		Body:       "It's time to take " + med.Name,
		Delay:      0,
		MedicineID: med.ID,
	})
	if !ok {
		d.log.Warn("worker unavailable, notification skipped", map[string]any{
			"medicine": med.Name,
		})
	}

	if d.OnForeground != nil {
		d.OnForeground(med)
	}
}

// HandlePreReminder registra el aviso anticipado en el historial del
// servidor y emite un cue corto, sin loop.
func (d *Dispatcher) HandlePreReminder(med Medicine) {
	d.log.Info("pre-reminder", map[string]any{
		"medicine": med.Name,
		"schedule": med.ScheduleTime,
	})

	d.tone.Cue()

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), recorderTimeout)
		defer cancel()

		title := "⏰ Medication Reminder"
		msg := med.Name + " will be due in 30 minutes at " + med.ScheduleTime
		if err := d.recorder.CreateNotification(ctx, title, msg); err != nil {
			d.log.Warn("pre-reminder record failed", map[string]any{
				"medicine": med.Name,
				"err":      err.Error(),
			})
		}
	}()
}

// ConfirmTaken resuelve la alarma activa: corta el tono, registra la toma y
// cancela la notificación pendiente del worker. El guard TodayTaken evita el
// doble registro cuando otro proceso ya confirmó.
func (d *Dispatcher) ConfirmTaken(ctx context.Context, medicineID string) error {
	d.tone.Stop()

	taken, err := d.recorder.TodayTaken(ctx, medicineID)
	if err != nil {
		d.log.Warn("taken check failed", map[string]any{
			"medicineId": medicineID,
			"err":        err.Error(),
		})
	}
	if !taken {
		if err := d.recorder.CreateTakenIntake(ctx, medicineID); err != nil {
			return err
		}
	}

	d.worker.Send(worker.Message{
		Type:       worker.MessageCancel,
		MedicineID: medicineID,
	})
	return nil
}

// Dismiss apaga el tono sin registrar nada; la toma queda pendiente.
func (d *Dispatcher) Dismiss() {
	d.tone.Stop()
}

// ConsumeEvents drena los eventos MEDICINE_TAKEN del worker hasta que ctx
// termine. Es el puente notificación nativa -> registro en el servidor.
func (d *Dispatcher) ConsumeEvents(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-d.worker.Events():
			if !ok {
				return
			}
			if ev.Type != worker.EventMedicineTaken {
				continue
			}
			opCtx, cancel := context.WithTimeout(ctx, recorderTimeout)
			err := d.ConfirmTaken(opCtx, ev.MedicineID)
			cancel()
			if err != nil {
				d.log.Error("intake record failed", map[string]any{
					"medicineId": ev.MedicineID,
					"err":        err.Error(),
				})
			}
		}
	}
}
