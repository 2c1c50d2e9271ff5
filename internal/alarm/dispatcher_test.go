package alarm

import (
	"context"
	"sync"
	"testing"
	"time"

	"mediflow/internal/alarm/worker"
)

type fakeRecorder struct {
	mu            sync.Mutex
	notifications []string
	intakes       []string
	takenToday    bool
}

func (f *fakeRecorder) CreateNotification(ctx context.Context, title, message string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.notifications = append(f.notifications, title)
	return nil
}

func (f *fakeRecorder) CreateTakenIntake(ctx context.Context, medicineID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.intakes = append(f.intakes, medicineID)
	return nil
}

func (f *fakeRecorder) TodayTaken(ctx context.Context, medicineID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.takenToday, nil
}

func (f *fakeRecorder) intakeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.intakes)
}

type noopNotifier struct{}

func (noopNotifier) Show(worker.Notification) error { return nil }
func (noopNotifier) CloseByTag(string)              {}

func newTestDispatcher(rec Recorder) (*Dispatcher, *Tone, *worker.Worker) {
	tone := NewTone(nil, nil)
	w := worker.New(noopNotifier{}, nil, nil, worker.Options{})
	w.Start()
	return NewDispatcher(tone, w, rec, nil), tone, w
}

func TestDispatcher_HandleAlarmStartsTone(t *testing.T) {
	rec := &fakeRecorder{}
	d, tone, w := newTestDispatcher(rec)
	defer w.Stop()
	defer tone.Stop()

	var fired []string
	d.OnForeground = func(med Medicine) { fired = append(fired, med.ID) }

	d.HandleAlarm(Medicine{ID: "m1", Name: "Aspirina", ScheduleTime: "09:00"})

	if !tone.Running() {
		t.Fatal("tone should be looping after an alarm")
	}
	if len(fired) != 1 || fired[0] != "m1" {
		t.Fatalf("foreground callback = %v", fired)
	}
}

func TestDispatcher_ConfirmTakenRecordsOnce(t *testing.T) {
	rec := &fakeRecorder{}
	d, tone, w := newTestDispatcher(rec)
	defer w.Stop()

	d.HandleAlarm(Medicine{ID: "m1", Name: "Aspirina", ScheduleTime: "09:00"})

	if err := d.ConfirmTaken(context.Background(), "m1"); err != nil {
		t.Fatalf("ConfirmTaken: %v", err)
	}
	if tone.Running() {
		t.Fatal("tone should stop on confirm")
	}
	if rec.intakeCount() != 1 {
		t.Fatalf("intakes = %d, want 1", rec.intakeCount())
	}

	// Si el servidor ya registró la toma, no se duplica.
	rec.mu.Lock()
	rec.takenToday = true
	rec.mu.Unlock()
	if err := d.ConfirmTaken(context.Background(), "m1"); err != nil {
		t.Fatalf("ConfirmTaken: %v", err)
	}
	if rec.intakeCount() != 1 {
		t.Fatalf("intakes = %d after guarded confirm, want 1", rec.intakeCount())
	}
}

func TestDispatcher_DismissStopsToneOnly(t *testing.T) {
	rec := &fakeRecorder{}
	d, tone, w := newTestDispatcher(rec)
	defer w.Stop()

	d.HandleAlarm(Medicine{ID: "m1", Name: "Aspirina", ScheduleTime: "09:00"})
	d.Dismiss()

	if tone.Running() {
		t.Fatal("tone should stop on dismiss")
	}
	if rec.intakeCount() != 0 {
		t.Fatal("dismiss must not record an intake")
	}
}

func TestDispatcher_PreReminderRecordsNotification(t *testing.T) {
	rec := &fakeRecorder{}
	d, tone, w := newTestDispatcher(rec)
	defer w.Stop()
	defer tone.Stop()

	d.HandlePreReminder(Medicine{ID: "m1", Name: "Aspirina", ScheduleTime: "09:00"})

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		rec.mu.Lock()
		n := len(rec.notifications)
		rec.mu.Unlock()
		if n == 1 {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("pre-reminder was not recorded")
}

func TestDispatcher_ConsumeEventsConfirms(t *testing.T) {
	rec := &fakeRecorder{}
	d, tone, w := newTestDispatcher(rec)
	defer w.Stop()
	defer tone.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go d.ConsumeEvents(ctx)

	w.HandleAction(worker.Notification{
		Tag:        worker.Tag("m1"),
		MedicineID: "m1",
	}, worker.ActionTaken)

	deadline := time.Now().Add(2 * time.Second)
	for rec.intakeCount() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if rec.intakeCount() != 1 {
		t.Fatalf("intakes = %d, want 1", rec.intakeCount())
	}
}
