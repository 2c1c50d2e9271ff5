package alarm

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrBadClock: el schedule time no es "HH:MM" de 24h.
var ErrBadClock = errors.New("bad clock string, want HH:MM (24h)")

// ParseClock valida y descompone "HH:MM".
func ParseClock(s string) (hour, minute int, err error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 {
		return 0, 0, ErrBadClock
	}

	hour, err = strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, ErrBadClock
	}
	minute, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, ErrBadClock
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, 0, ErrBadClock
	}

	return hour, minute, nil
}

// Clock formatea t como "HH:MM". La comparación del matcher es a granularidad
// de minuto entero; los segundos no importan.
func Clock(t time.Time) string {
	return fmt.Sprintf("%02d:%02d", t.Hour(), t.Minute())
}

// At ancla el clock "HH:MM" al día calendario de ref (hora local de ref).
func At(clock string, ref time.Time) (time.Time, error) {
	h, m, err := ParseClock(clock)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(ref.Year(), ref.Month(), ref.Day(), h, m, 0, 0, ref.Location()), nil
}

// MinusMinutes corre el clock hacia atrás n minutos, con wrap sobre medianoche.
func MinusMinutes(clock string, n int) (string, error) {
	// Se ancla a una fecha cualquiera; solo interesa la hora resultante.
	ref := time.Date(2000, 1, 2, 0, 0, 0, 0, time.UTC)
	t, err := At(clock, ref)
	if err != nil {
		return "", err
	}
	return Clock(t.Add(-time.Duration(n) * time.Minute)), nil
}

// DelayUntil calcula cuánto falta para el próximo "HH:MM" en la pared local:
// hoy si todavía no pasó, mañana si ya pasó. Un horario exactamente igual a
// now cuenta como pasado (la alarma de ese minuto es del matcher), así que el
// resultado queda siempre en (0, 24h].
func DelayUntil(clock string, now time.Time) (time.Duration, error) {
	target, err := At(clock, now)
	if err != nil {
		return 0, err
	}
	if !target.After(now) {
		target = target.AddDate(0, 0, 1)
	}
	return target.Sub(now), nil
}
