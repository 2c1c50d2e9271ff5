package alarm

import (
	"bytes"
	"errors"
	"sync"
	"testing"
	"time"
)

// syncBuffer serializa las escrituras del loop de tono.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Len()
}

func TestTone_CueWritesPCM(t *testing.T) {
	var buf syncBuffer
	tone := NewTone(&buf, nil)

	tone.Cue()

	// 0.3s a 8kHz, 2 bytes por sample.
	want := int(float64(toneSampleRate)*pulseLen.Seconds()) * 2
	if buf.Len() != want {
		t.Fatalf("cue wrote %d bytes, want %d", buf.Len(), want)
	}
}

func TestTone_StartLoopIdempotent(t *testing.T) {
	var buf syncBuffer
	tone := NewTone(&buf, nil)

	tone.StartLoop()
	tone.StartLoop() // segundo start no duplica el loop
	if !tone.Running() {
		t.Fatal("tone should be running after StartLoop")
	}

	// El primer pulso es inmediato.
	deadline := time.Now().Add(2 * time.Second)
	for buf.Len() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if buf.Len() == 0 {
		t.Fatal("expected at least one pulse written")
	}

	tone.Stop()
	tone.Stop() // idempotente
	if tone.Running() {
		t.Fatal("tone should not be running after Stop")
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("device gone")
}

func TestTone_WriteFailureStopsLoop(t *testing.T) {
	tone := NewTone(failingWriter{}, nil)

	tone.StartLoop()

	deadline := time.Now().Add(2 * time.Second)
	for tone.Running() && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if tone.Running() {
		t.Fatal("tone should stop itself when the sink fails")
	}
}
