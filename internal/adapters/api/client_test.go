package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"mediflow/internal/platform/httpclient"
)

// newFakeAPI levanta un servidor que habla el contrato mínimo que el daemon usa.
func newFakeAPI(t *testing.T) (*httptest.Server, *Client) {
	t.Helper()

	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Username string `json:"username"`
			Password string `json:"password"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Username != "ana" || req.Password != "secret1" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"invalid credentials"}`))
			return
		}
		_, _ = w.Write([]byte(`{"token":"tok-1","user":{"id":"u1","username":"ana","role":"patient"}}`))
	})

	mux.HandleFunc("GET /api/medicines", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok-1" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`[{"id":"m1","treatmentId":"t1","name":"Aspirina","dosage":"100mg","scheduleTime":"09:00","instructions":"con comida","stock":10}]`))
	})

	// Misma validación que el handler real: scheduledTime RFC3339 obligatorio.
	mux.HandleFunc("POST /api/intake-logs", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			MedicineID    string `json:"medicineId"`
			Status        string `json:"status"`
			ScheduledTime string `json:"scheduledTime"`
			TakenTime     string `json:"takenTime"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)

		if _, err := time.Parse(time.RFC3339, req.ScheduledTime); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"scheduledTime must be RFC3339"}`))
			return
		}
		switch req.MedicineID {
		case "m-dup":
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"medicine already marked as taken today"}`))
		case "m-bad":
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"invalid input"}`))
		default:
			_, _ = w.Write([]byte(`{"id":"l1","medicineId":"` + req.MedicineID + `","status":"taken"}`))
		}
	})

	mux.HandleFunc("GET /api/intake-logs/today/m1", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`null`))
	})
	mux.HandleFunc("GET /api/intake-logs/today/m2", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":"l1","status":"taken"}`))
	})

	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)

	c, err := New(ts.URL)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return ts, c
}

func TestClient_LoginStoresToken(t *testing.T) {
	_, c := newFakeAPI(t)
	ctx := context.Background()

	if err := c.Login(ctx, "ana", "wrong"); err != ErrLoginFailed {
		t.Fatalf("err = %v, want ErrLoginFailed", err)
	}

	if err := c.Login(ctx, "ana", "secret1"); err != nil {
		t.Fatalf("Login: %v", err)
	}

	meds, err := c.Medicines(ctx)
	if err != nil {
		t.Fatalf("Medicines: %v", err)
	}
	if len(meds) != 1 || meds[0].ID != "m1" || meds[0].ScheduleTime != "09:00" {
		t.Fatalf("unexpected medicines %+v", meds)
	}
}

func TestClient_CreateTakenIntake(t *testing.T) {
	_, c := newFakeAPI(t)
	ctx := context.Background()

	if err := c.Login(ctx, "ana", "secret1"); err != nil {
		t.Fatalf("Login: %v", err)
	}

	// Camino feliz: el body lleva scheduledTime/takenTime y el servidor acepta.
	if err := c.CreateTakenIntake(ctx, "m1"); err != nil {
		t.Fatalf("CreateTakenIntake: %v", err)
	}

	// Conflicto "ya tomada hoy": idempotente para el daemon.
	if err := c.CreateTakenIntake(ctx, "m-dup"); err != nil {
		t.Fatalf("CreateTakenIntake dup: %v", err)
	}

	// Cualquier otro 400 es un error real y se propaga.
	err := c.CreateTakenIntake(ctx, "m-bad")
	if err == nil {
		t.Fatal("expected validation error to surface")
	}
	if !httpclient.IsStatus(err, http.StatusBadRequest) {
		t.Fatalf("err = %v, want 400 HTTPError", err)
	}
}

func TestClient_TodayTaken(t *testing.T) {
	_, c := newFakeAPI(t)
	ctx := context.Background()

	if err := c.Login(ctx, "ana", "secret1"); err != nil {
		t.Fatalf("Login: %v", err)
	}

	taken, err := c.TodayTaken(ctx, "m1")
	if err != nil {
		t.Fatalf("TodayTaken: %v", err)
	}
	if taken {
		t.Fatal("m1 should not be taken (null body)")
	}

	taken, err = c.TodayTaken(ctx, "m2")
	if err != nil {
		t.Fatalf("TodayTaken: %v", err)
	}
	if !taken {
		t.Fatal("m2 should be taken")
	}
}
