package alarm

import (
	"testing"
	"time"
)

func TestSession_FireOnce_Cooldown(t *testing.T) {
	s := NewSession(0, 0) // defaults
	base := time.Date(2025, 3, 10, 9, 0, 0, 0, time.Local)

	if !s.FireOnce("m1", base) {
		t.Fatal("first fire should pass")
	}
	if s.FireOnce("m1", base.Add(30*time.Second)) {
		t.Fatal("re-fire within cooldown should be blocked")
	}
	if s.FireOnce("m1", base.Add(89*time.Second)) {
		t.Fatal("re-fire at 89s should still be blocked")
	}
	if !s.FireOnce("m1", base.Add(90*time.Second)) {
		t.Fatal("fire after cooldown should pass")
	}

	// Otra medicina no comparte estado.
	if !s.FireOnce("m2", base) {
		t.Fatal("different medicine should fire independently")
	}
}

func TestSession_PreNotifyOnce_IndependentOfFire(t *testing.T) {
	s := NewSession(0, 0)
	base := time.Date(2025, 3, 10, 8, 30, 0, 0, time.Local)

	if !s.PreNotifyOnce("m1", base) {
		t.Fatal("first pre-notify should pass")
	}
	if s.PreNotifyOnce("m1", base.Add(time.Minute)) {
		t.Fatal("pre-notify within cooldown should be blocked")
	}

	// El pre-aviso no bloquea la alarma.
	if !s.FireOnce("m1", base) {
		t.Fatal("fire should not be blocked by pre-notify")
	}
}

func TestSession_Prune(t *testing.T) {
	s := NewSession(0, 0)
	base := time.Date(2025, 3, 10, 9, 0, 0, 0, time.Local)

	s.FireOnce("m1", base)
	s.PreNotifyOnce("m1", base)

	s.Prune(base.Add(5 * time.Minute))

	// Después del prune las entradas vencidas dejan de bloquear.
	if !s.FireOnce("m1", base.Add(5*time.Minute)) {
		t.Fatal("fire after prune should pass")
	}
}
