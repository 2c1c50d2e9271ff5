package alarm

import (
	"sync"
	"time"
)

const (
	// DefaultFireCooldown evita re-disparar la misma medicina mientras el
	// reloj siga leyendo el mismo minuto (con margen por drift).
	DefaultFireCooldown = 90 * time.Second

	// DefaultPreCooldown es el cool-down del pre-aviso de 30 minutos.
	DefaultPreCooldown = 120 * time.Second
)

// Session es el estado de dedup de UNA instancia del matcher: medicineID ->
// timestamp del último disparo. Se descarta y reconstruye cuando la lista de
// medicinas se refresca; nunca se comparte entre instancias.
type Session struct {
	mu sync.Mutex

	fired       map[string]time.Time
	preNotified map[string]time.Time

	fireCooldown time.Duration
	preCooldown  time.Duration
}

func NewSession(fireCooldown, preCooldown time.Duration) *Session {
	if fireCooldown <= 0 {
		fireCooldown = DefaultFireCooldown
	}
	if preCooldown <= 0 {
		preCooldown = DefaultPreCooldown
	}
	return &Session{
		fired:        make(map[string]time.Time),
		preNotified:  make(map[string]time.Time),
		fireCooldown: fireCooldown,
		preCooldown:  preCooldown,
	}
}

// FireOnce reporta si la medicina puede disparar ahora y, de ser así, la marca.
// Retorna false mientras el último disparo esté dentro del cool-down.
func (s *Session) FireOnce(medicineID string, now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if last, ok := s.fired[medicineID]; ok && now.Sub(last) < s.fireCooldown {
		return false
	}
	s.fired[medicineID] = now
	return true
}

// PreNotifyOnce es FireOnce para el pre-aviso de 30 minutos; dedup independiente.
func (s *Session) PreNotifyOnce(medicineID string, now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if last, ok := s.preNotified[medicineID]; ok && now.Sub(last) < s.preCooldown {
		return false
	}
	s.preNotified[medicineID] = now
	return true
}

// Prune descarta entradas ya vencidas para que el arena no crezca sin límite.
func (s *Session) Prune(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, last := range s.fired {
		if now.Sub(last) >= s.fireCooldown {
			delete(s.fired, id)
		}
	}
	for id, last := range s.preNotified {
		if now.Sub(last) >= s.preCooldown {
			delete(s.preNotified, id)
		}
	}
}
