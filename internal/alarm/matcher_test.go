package alarm

import (
	"testing"
	"time"
)

// newTestMatcher arma un matcher sin arrancar la goroutine; los tests llaman
// check() directo con un reloj inyectado, así el escenario es determinista.
func newTestMatcher(meds []Medicine, now *time.Time) (*Matcher, *[]string, *[]string) {
	var alarms, pres []string

	m := NewMatcher(meds, MatcherOptions{
		Now: func() time.Time { return *now },
		OnAlarm: func(med Medicine) {
			alarms = append(alarms, med.ID)
		},
		OnPreReminder: func(med Medicine) {
			pres = append(pres, med.ID)
		},
	})
	return m, &alarms, &pres
}

func TestMatcher_FiresOncePerMinute(t *testing.T) {
	meds := []Medicine{{ID: "m1", Name: "Aspirina", ScheduleTime: "09:00"}}

	now := time.Date(2025, 3, 10, 8, 59, 0, 0, time.Local)
	m, alarms, _ := newTestMatcher(meds, &now)

	m.check()
	if len(*alarms) != 0 {
		t.Fatalf("no alarm expected before schedule, got %v", *alarms)
	}

	// 09:00: dispara una sola vez aunque el tick corra varias veces.
	now = time.Date(2025, 3, 10, 9, 0, 0, 0, time.Local)
	m.check()
	now = now.Add(500 * time.Millisecond)
	m.check()
	now = now.Add(30 * time.Second)
	m.check()

	if len(*alarms) != 1 || (*alarms)[0] != "m1" {
		t.Fatalf("expected exactly one alarm for m1, got %v", *alarms)
	}

	// 09:01: fuera del minuto, no re-dispara.
	now = time.Date(2025, 3, 10, 9, 1, 0, 0, time.Local)
	m.check()
	if len(*alarms) != 1 {
		t.Fatalf("no alarm expected at 09:01, got %v", *alarms)
	}
}

func TestMatcher_FiresAgainNextDay(t *testing.T) {
	meds := []Medicine{{ID: "m1", Name: "Aspirina", ScheduleTime: "09:00"}}

	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.Local)
	m, alarms, _ := newTestMatcher(meds, &now)

	m.check()
	now = time.Date(2025, 3, 11, 9, 0, 0, 0, time.Local)
	m.check()

	if len(*alarms) != 2 {
		t.Fatalf("expected alarms on both days, got %v", *alarms)
	}
}

func TestMatcher_PreReminderThirtyMinutesBefore(t *testing.T) {
	meds := []Medicine{{ID: "m1", Name: "Aspirina", ScheduleTime: "09:00"}}

	now := time.Date(2025, 3, 10, 8, 30, 0, 0, time.Local)
	m, alarms, pres := newTestMatcher(meds, &now)

	m.check()
	now = now.Add(time.Second)
	m.check()

	if len(*pres) != 1 || (*pres)[0] != "m1" {
		t.Fatalf("expected exactly one pre-reminder, got %v", *pres)
	}
	if len(*alarms) != 0 {
		t.Fatalf("no alarm expected at pre window, got %v", *alarms)
	}
}

func TestMatcher_PreReminderWrapsMidnight(t *testing.T) {
	// 00:10 - 30min = 23:40 del día anterior.
	meds := []Medicine{{ID: "m1", Name: "Nocturna", ScheduleTime: "00:10"}}

	now := time.Date(2025, 3, 10, 23, 40, 0, 0, time.Local)
	m, _, pres := newTestMatcher(meds, &now)

	m.check()
	if len(*pres) != 1 {
		t.Fatalf("expected pre-reminder at 23:40, got %v", *pres)
	}
}

func TestMatcher_SkipsUnparseableSchedule(t *testing.T) {
	meds := []Medicine{
		{ID: "bad", Name: "Rota", ScheduleTime: "25:99"},
		{ID: "ok", Name: "Sana", ScheduleTime: "10:00"},
	}

	now := time.Date(2025, 3, 10, 10, 0, 0, 0, time.Local)
	m, alarms, _ := newTestMatcher(meds, &now)

	m.check()
	if len(*alarms) != 1 || (*alarms)[0] != "ok" {
		t.Fatalf("expected only the valid medicine to fire, got %v", *alarms)
	}
}

func TestMatcher_StartStop(t *testing.T) {
	now := time.Now()
	m, _, _ := newTestMatcher(nil, &now)

	m.Start()
	m.Stop()
	// Stop es idempotente.
	m.Stop()
}
