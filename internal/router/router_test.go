package router_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"mediflow/internal/router"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	app := router.New(router.Options{})
	ts := httptest.NewServer(app.Handler)
	t.Cleanup(ts.Close)
	return ts
}

func TestHTTP_EndToEnd_PatientFlow(t *testing.T) {
	ts := newTestServer(t)

	token := signup(t, ts.URL, "ana", "secret1", "ana@example.com", "Ana Paz", "")

	// 1) /me con el token de la sesión
	{
		st, body := doReq(t, ts.URL, "GET", "/api/auth/me", token, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 me, got %d body=%s", st, string(body))
		}
		var me struct {
			Username string `json:"username"`
			Role     string `json:"role"`
		}
		_ = json.Unmarshal(body, &me)
		if me.Username != "ana" || me.Role != "patient" {
			t.Fatalf("unexpected me response %s", string(body))
		}
	}

	// 2) Crear tratamiento
	treatmentID := createJSON(t, ts.URL, "/api/treatments", token, map[string]any{
		"name":        "Hipertensión",
		"description": "control diario",
	})

	// 3) Crear medicina; "9:00" se normaliza a "09:00"
	var medicineID string
	{
		st, body := doReq(t, ts.URL, "POST", "/api/medicines", token, map[string]any{
			"treatmentId":  treatmentID,
			"name":         "Losartán",
			"dosage":       "50mg",
			"scheduleTime": "9:00",
			"stock":        10,
		})
		if st != http.StatusOK {
			t.Fatalf("expected 200 create medicine, got %d body=%s", st, string(body))
		}
		var resp struct {
			ID           string `json:"id"`
			ScheduleTime string `json:"scheduleTime"`
		}
		_ = json.Unmarshal(body, &resp)
		if resp.ID == "" {
			t.Fatalf("create medicine: missing id body=%s", string(body))
		}
		if resp.ScheduleTime != "09:00" {
			t.Fatalf("scheduleTime = %q, want 09:00", resp.ScheduleTime)
		}
		medicineID = resp.ID
	}

	// 4) Lista completa del paciente (la que consume el daemon de alarmas)
	{
		st, body := doReq(t, ts.URL, "GET", "/api/medicines", token, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 list medicines, got %d body=%s", st, string(body))
		}
		var meds []map[string]any
		_ = json.Unmarshal(body, &meds)
		if len(meds) != 1 {
			t.Fatalf("expected 1 medicine, got %d", len(meds))
		}
	}

	// 5) Hoy todavía no hay toma registrada => null
	{
		st, body := doReq(t, ts.URL, "GET", "/api/intake-logs/today/"+medicineID, token, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 today, got %d body=%s", st, string(body))
		}
		if string(bytes.TrimSpace(body)) != "null" {
			t.Fatalf("expected null body before intake, got %s", string(body))
		}
	}

	// 6) Registrar toma
	{
		st, body := doReq(t, ts.URL, "POST", "/api/intake-logs", token, map[string]any{
			"medicineId":    medicineID,
			"scheduledTime": time.Now().Format(time.RFC3339),
			"status":        "taken",
		})
		if st != http.StatusOK {
			t.Fatalf("expected 200 create intake, got %d body=%s", st, string(body))
		}
	}

	// 7) Segunda toma del mismo día => 400
	{
		st, body := doReq(t, ts.URL, "POST", "/api/intake-logs", token, map[string]any{
			"medicineId":    medicineID,
			"scheduledTime": time.Now().Format(time.RFC3339),
			"status":        "taken",
		})
		if st != http.StatusBadRequest {
			t.Fatalf("expected 400 duplicate intake, got %d body=%s", st, string(body))
		}
	}

	// 8) La toma descontó stock
	{
		st, body := doReq(t, ts.URL, "GET", "/api/medicines/detail/"+medicineID, token, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 medicine detail, got %d body=%s", st, string(body))
		}
		var resp struct {
			Stock int `json:"stock"`
		}
		_ = json.Unmarshal(body, &resp)
		if resp.Stock != 9 {
			t.Fatalf("stock = %d, want 9", resp.Stock)
		}
	}

	// 9) Adherencia del tratamiento: 1/1 => 100%
	{
		st, body := doReq(t, ts.URL, "GET", "/api/adherence/"+treatmentID, token, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 adherence, got %d body=%s", st, string(body))
		}
		var resp struct {
			Percentage float64 `json:"percentage"`
			Taken      int     `json:"taken"`
			Total      int     `json:"total"`
		}
		_ = json.Unmarshal(body, &resp)
		if resp.Percentage != 100.0 || resp.Taken != 1 || resp.Total != 1 {
			t.Fatalf("unexpected adherence %s", string(body))
		}
	}

	// 10) Serie diaria: exactamente un punto con datos
	{
		st, body := doReq(t, ts.URL, "GET", "/api/health/daily-adherence?days=7", token, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 daily adherence, got %d body=%s", st, string(body))
		}
		var points []struct {
			Date       string  `json:"date"`
			Percentage float64 `json:"percentage"`
		}
		_ = json.Unmarshal(body, &points)
		if len(points) != 1 || points[0].Percentage != 100.0 {
			t.Fatalf("unexpected daily points %s", string(body))
		}
	}

	// 11) Notificaciones: crear, listar, marcar leída
	{
		st, body := doReq(t, ts.URL, "POST", "/api/notifications", token, map[string]any{
			"title":   "Upcoming medication",
			"message": "Losartán is due at 09:00",
			"type":    "reminder",
		})
		if st != http.StatusOK {
			t.Fatalf("expected 200 create notification, got %d body=%s", st, string(body))
		}
		var created struct {
			ID   string `json:"id"`
			Read bool   `json:"read"`
		}
		_ = json.Unmarshal(body, &created)
		if created.ID == "" || created.Read {
			t.Fatalf("unexpected notification %s", string(body))
		}

		st, body = doReq(t, ts.URL, "PATCH", "/api/notifications/"+created.ID+"/read", token, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 mark read, got %d body=%s", st, string(body))
		}

		st, body = doReq(t, ts.URL, "GET", "/api/notifications", token, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 list notifications, got %d body=%s", st, string(body))
		}
		var list []struct {
			Read bool `json:"read"`
		}
		_ = json.Unmarshal(body, &list)
		if len(list) != 1 || !list[0].Read {
			t.Fatalf("unexpected notification list %s", string(body))
		}
	}

	// 12) Logout invalida la sesión
	{
		st, _ := doReq(t, ts.URL, "POST", "/api/auth/logout", token, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 logout, got %d", st)
		}
		st, _ = doReq(t, ts.URL, "GET", "/api/auth/me", token, nil)
		if st != http.StatusUnauthorized {
			t.Fatalf("expected 401 after logout, got %d", st)
		}
	}
}

func TestHTTP_OwnershipEnforced(t *testing.T) {
	ts := newTestServer(t)

	tokenA := signup(t, ts.URL, "ana", "secret1", "ana@example.com", "Ana Paz", "")
	tokenB := signup(t, ts.URL, "beto", "secret2", "beto@example.com", "Beto Ruiz", "")

	treatmentID := createJSON(t, ts.URL, "/api/treatments", tokenA, map[string]any{
		"name": "Privado",
	})

	st, _ := doReq(t, ts.URL, "GET", "/api/treatments/"+treatmentID, tokenB, nil)
	if st != http.StatusForbidden {
		t.Fatalf("expected 403 for another patient's treatment, got %d", st)
	}

	st, _ = doReq(t, ts.URL, "GET", "/api/treatments/"+treatmentID, tokenA, nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200 for owner, got %d", st)
	}
}

func TestHTTP_AdminGating(t *testing.T) {
	ts := newTestServer(t)

	patient := signup(t, ts.URL, "ana", "secret1", "ana@example.com", "Ana Paz", "")
	admin := signup(t, ts.URL, "root", "secret9", "root@example.com", "Root", "admin")

	st, _ := doReq(t, ts.URL, "GET", "/api/admin/stats", patient, nil)
	if st != http.StatusForbidden {
		t.Fatalf("expected 403 admin stats as patient, got %d", st)
	}

	st, body := doReq(t, ts.URL, "GET", "/api/admin/stats", admin, nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200 admin stats, got %d body=%s", st, string(body))
	}
	var stats struct {
		TotalPatients int `json:"totalPatients"`
	}
	_ = json.Unmarshal(body, &stats)
	if stats.TotalPatients != 1 {
		t.Fatalf("totalPatients = %d, want 1", stats.TotalPatients)
	}

	st, _ = doReq(t, ts.URL, "GET", "/api/admin/patients", admin, nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200 admin patients, got %d", st)
	}
}

func TestHTTP_RequiresAuth(t *testing.T) {
	ts := newTestServer(t)

	st, _ := doReq(t, ts.URL, "GET", "/api/treatments", "", nil)
	if st != http.StatusUnauthorized {
		t.Fatalf("expected 401 without session, got %d", st)
	}

	st, _ = doReq(t, ts.URL, "GET", "/api/treatments", "not-a-real-token", nil)
	if st != http.StatusUnauthorized {
		t.Fatalf("expected 401 with bogus token, got %d", st)
	}
}

func TestHTTP_LoginRejectsBadPassword(t *testing.T) {
	ts := newTestServer(t)

	signup(t, ts.URL, "ana", "secret1", "ana@example.com", "Ana Paz", "")

	st, _ := doReq(t, ts.URL, "POST", "/api/auth/login", "", map[string]any{
		"username": "ana",
		"password": "wrong",
	})
	if st != http.StatusUnauthorized {
		t.Fatalf("expected 401 bad password, got %d", st)
	}
}

func TestHTTP_DeleteTreatmentCascades(t *testing.T) {
	ts := newTestServer(t)

	token := signup(t, ts.URL, "ana", "secret1", "ana@example.com", "Ana Paz", "")

	treatmentID := createJSON(t, ts.URL, "/api/treatments", token, map[string]any{
		"name": "Temporal",
	})
	st, body := doReq(t, ts.URL, "POST", "/api/medicines", token, map[string]any{
		"treatmentId":  treatmentID,
		"name":         "Ibuprofeno",
		"dosage":       "400mg",
		"scheduleTime": "12:00",
	})
	if st != http.StatusOK {
		t.Fatalf("expected 200 create medicine, got %d body=%s", st, string(body))
	}
	var med struct {
		ID string `json:"id"`
	}
	_ = json.Unmarshal(body, &med)

	st, _ = doReq(t, ts.URL, "DELETE", "/api/treatments/"+treatmentID, token, nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200 delete treatment, got %d", st)
	}

	st, _ = doReq(t, ts.URL, "GET", "/api/medicines/detail/"+med.ID, token, nil)
	if st != http.StatusNotFound {
		t.Fatalf("expected 404 medicine after cascade, got %d", st)
	}
}

func signup(t *testing.T, baseURL, username, password, email, fullName, role string) string {
	t.Helper()

	payload := map[string]any{
		"username": username,
		"password": password,
		"email":    email,
		"fullName": fullName,
	}
	if role != "" {
		payload["role"] = role
	}

	st, body := doReq(t, baseURL, "POST", "/api/auth/signup", "", payload)
	if st != http.StatusOK {
		t.Fatalf("expected 200 signup, got %d body=%s", st, string(body))
	}

	var resp struct {
		Token string `json:"token"`
	}
	_ = json.Unmarshal(body, &resp)
	if resp.Token == "" {
		t.Fatalf("signup: missing token body=%s", string(body))
	}
	return resp.Token
}

func createJSON(t *testing.T, baseURL, path, token string, payload map[string]any) string {
	t.Helper()

	st, body := doReq(t, baseURL, "POST", path, token, payload)
	if st != http.StatusOK {
		t.Fatalf("expected 200 create %s, got %d body=%s", path, st, string(body))
	}

	var resp struct {
		ID string `json:"id"`
	}
	_ = json.Unmarshal(body, &resp)
	if resp.ID == "" {
		t.Fatalf("create %s: missing id body=%s", path, string(body))
	}
	return resp.ID
}

func doReq(t *testing.T, baseURL, method, path, token string, body any) (int, []byte) {
	t.Helper()

	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("json marshal: %v", err)
		}
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, baseURL+path, rdr)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer res.Body.Close()

	respBody, _ := io.ReadAll(res.Body)
	return res.StatusCode, respBody
}
