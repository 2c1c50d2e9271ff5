package alarm

import (
	"encoding/binary"
	"io"
	"math"
	"sync"
	"time"

	"mediflow/internal/platform/logger"
)

// Parámetros del tono de alarma: pulso de 800Hz cada 500ms con envolvente
// exponencial 0.4 -> 0.01 en 0.3s. El pre-aviso usa un beep suave de 600Hz.
const (
	toneSampleRate = 8000

	alarmFreq  = 800.0
	cueFreq    = 600.0
	pulseEvery = 500 * time.Millisecond
	pulseLen   = 300 * time.Millisecond

	alarmGain = 0.4
	cueGain   = 0.2
	endGain   = 0.01
)

// Tone sintetiza la señal de alarma como PCM mono 16-bit LE hacia un sink
// (dispositivo de audio, pipe, o io.Discard). Garantiza "una sola alarma
// sonando a la vez": Start y Stop son idempotentes.
type Tone struct {
	mu      sync.Mutex
	running bool
	stop    chan struct{}

	out io.Writer
	log logger.Logger
}

func NewTone(out io.Writer, log logger.Logger) *Tone {
	if out == nil {
		out = io.Discard
	}
	if log == nil {
		log = logger.Noop{}
	}
	return &Tone{
		out: out,
		log: log,
	}
}

func (t *Tone) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.running
}

// StartLoop arranca el pulso repetido. Si ya está sonando, no hace nada.
func (t *Tone) StartLoop() {
	t.mu.Lock()
	if t.running {
		t.mu.Unlock()
		return
	}
	t.running = true
	stop := make(chan struct{})
	t.stop = stop
	t.mu.Unlock()

	go func() {
		// Primer pulso inmediato, después cada 500ms.
		if !t.emit(alarmFreq, alarmGain) {
			return
		}

		ticker := time.NewTicker(pulseEvery)
		defer ticker.Stop()

		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				if !t.emit(alarmFreq, alarmGain) {
					return
				}
			}
		}
	}()
}

// Stop corta el loop; idempotente.
func (t *Tone) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.running {
		return
	}
	t.running = false
	close(t.stop)
}

// Cue emite un único beep corto (pre-aviso); no toca el loop de alarma.
func (t *Tone) Cue() {
	if _, err := t.out.Write(synthPulse(cueFreq, cueGain)); err != nil {
		t.log.Warn("cue tone write failed", map[string]any{"err": err.Error()})
	}
}

// emit escribe un pulso; si el sink falla, la alarma queda marcada como no
// corriendo en vez de tumbar nada (el resto del pipeline sigue usable).
func (t *Tone) emit(freq, gain float64) bool {
	if _, err := t.out.Write(synthPulse(freq, gain)); err != nil {
		t.log.Error("alarm tone write failed, muting alarm", map[string]any{"err": err.Error()})
		t.Stop()
		return false
	}
	return true
}

// synthPulse genera un seno con decaimiento exponencial startGain -> endGain.
func synthPulse(freq, startGain float64) []byte {
	n := int(float64(toneSampleRate) * pulseLen.Seconds())
	buf := make([]byte, 0, n*2)

	// gain(t) = startGain * (endGain/startGain)^(t/dur)
	ratio := endGain / startGain

	for i := 0; i < n; i++ {
		pos := float64(i) / float64(n)
		gain := startGain * math.Pow(ratio, pos)
		sample := gain * math.Sin(2*math.Pi*freq*float64(i)/toneSampleRate)

		v := int16(sample * math.MaxInt16)
		buf = binary.LittleEndian.AppendUint16(buf, uint16(v))
	}
	return buf
}
