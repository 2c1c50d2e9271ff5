package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"mediflow/internal/router"
)

// Levanta el router real (storage in-memory) y da de alta un paciente con un
// tratamiento y una medicina, como haría el frontend. Devuelve el cliente ya
// logueado y el id de la medicina.
func newRealAPI(t *testing.T) (*Client, string) {
	t.Helper()

	app := router.New(router.Options{})
	ts := httptest.NewServer(app.Handler)
	t.Cleanup(ts.Close)

	token := serverPost(t, ts.URL, "/api/auth/signup", "", map[string]any{
		"username": "ana",
		"password": "secret1",
		"email":    "ana@example.com",
		"fullName": "Ana Paz",
	})["token"].(string)

	treatmentID := serverPost(t, ts.URL, "/api/treatments", token, map[string]any{
		"name": "Hipertensión",
	})["id"].(string)

	medicineID := serverPost(t, ts.URL, "/api/medicines", token, map[string]any{
		"treatmentId":  treatmentID,
		"name":         "Losartán",
		"dosage":       "50mg",
		"scheduleTime": "09:00",
		"stock":        10,
	})["id"].(string)

	c, err := New(ts.URL)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := c.Login(context.Background(), "ana", "secret1"); err != nil {
		t.Fatalf("Login: %v", err)
	}
	return c, medicineID
}

// El flujo de confirmación del daemon tiene que dejar un log real en el
// servidor, no solo reportar éxito.
func TestClient_ConfirmFlowAgainstRealServer(t *testing.T) {
	c, medicineID := newRealAPI(t)
	ctx := context.Background()

	taken, err := c.TodayTaken(ctx, medicineID)
	if err != nil {
		t.Fatalf("TodayTaken: %v", err)
	}
	if taken {
		t.Fatal("no intake recorded yet, TodayTaken should be false")
	}

	if err := c.CreateTakenIntake(ctx, medicineID); err != nil {
		t.Fatalf("CreateTakenIntake: %v", err)
	}

	taken, err = c.TodayTaken(ctx, medicineID)
	if err != nil {
		t.Fatalf("TodayTaken: %v", err)
	}
	if !taken {
		t.Fatal("server has no taken log for today after CreateTakenIntake")
	}

	// Repetir el mismo día es el conflicto de dominio: éxito idempotente.
	if err := c.CreateTakenIntake(ctx, medicineID); err != nil {
		t.Fatalf("CreateTakenIntake repeat: %v", err)
	}
}

func serverPost(t *testing.T, baseURL, path, token string, payload map[string]any) map[string]any {
	t.Helper()

	b, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("json marshal: %v", err)
	}

	req, err := http.NewRequest(http.MethodPost, baseURL+path, bytes.NewReader(b))
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer res.Body.Close()

	body, _ := io.ReadAll(res.Body)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("POST %s: status %d body=%s", path, res.StatusCode, string(body))
	}

	var out map[string]any
	if err := json.Unmarshal(body, &out); err != nil {
		t.Fatalf("POST %s: decode: %v", path, err)
	}
	return out
}
