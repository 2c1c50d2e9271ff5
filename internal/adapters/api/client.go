// Package api es el cliente HTTP del daemon de alarmas contra el servidor
// mediflow. Habla los mismos endpoints JSON que el frontend.
package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"mediflow/internal/alarm"
	"mediflow/internal/domain/intakelogs"
	"mediflow/internal/platform/httpclient"
)

const requestTimeout = 15 * time.Second

// Client mantiene la sesión del paciente (token Bearer) y expone las
// operaciones que el daemon necesita. Implementa alarm.Recorder.
type Client struct {
	http  *httpclient.Client
	token string
}

func New(baseURL string) (*Client, error) {
	hc, err := httpclient.NewWithBaseURL(baseURL, requestTimeout)
	if err != nil {
		return nil, err
	}
	if hc.BaseURL == "" {
		return nil, errors.New("api: base url is required")
	}
	return &Client{http: hc}, nil
}

func (c *Client) headers() map[string]string {
	if c.token == "" {
		return nil
	}
	return map[string]string{"Authorization": "Bearer " + c.token}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
	User  struct {
		ID       string `json:"id"`
		Username string `json:"username"`
		Role     string `json:"role"`
	} `json:"user"`
}

var ErrLoginFailed = errors.New("api: login failed")

// Login abre sesión y guarda el token para los requests siguientes.
func (c *Client) Login(ctx context.Context, username, password string) error {
	var resp loginResponse
	err := c.http.DoJSON(ctx, http.MethodPost, "/api/auth/login", nil,
		loginRequest{Username: username, Password: password}, &resp)
	if err != nil {
		if httpclient.IsStatus(err, http.StatusUnauthorized) {
			return ErrLoginFailed
		}
		return err
	}
	if resp.Token == "" {
		return ErrLoginFailed
	}
	c.token = resp.Token
	return nil
}

type medicineResponse struct {
	ID           string `json:"id"`
	TreatmentID  string `json:"treatmentId"`
	Name         string `json:"name"`
	Dosage       string `json:"dosage"`
	ScheduleTime string `json:"scheduleTime"`
	Instructions string `json:"instructions"`
	Stock        int    `json:"stock"`
}

// Medicines trae todas las medicinas del paciente logueado, ya como vista
// del dominio de alarmas.
func (c *Client) Medicines(ctx context.Context) ([]alarm.Medicine, error) {
	var raw []medicineResponse
	err := c.http.DoJSON(ctx, http.MethodGet, "/api/medicines", c.headers(), nil, &raw)
	if err != nil {
		return nil, err
	}

	meds := make([]alarm.Medicine, 0, len(raw))
	for _, m := range raw {
		meds = append(meds, alarm.Medicine{
			ID:           m.ID,
			Name:         m.Name,
			Dosage:       m.Dosage,
			ScheduleTime: m.ScheduleTime,
			Instructions: m.Instructions,
		})
	}
	return meds, nil
}

type createNotificationRequest struct {
	Title   string `json:"title"`
	Message string `json:"message"`
	Type    string `json:"type"`
}

func (c *Client) CreateNotification(ctx context.Context, title, message string) error {
	body := createNotificationRequest{Title: title, Message: message, Type: "reminder"}
	return c.http.DoJSON(ctx, http.MethodPost, "/api/notifications", c.headers(), body, nil)
}

type createIntakeRequest struct {
	MedicineID    string `json:"medicineId"`
	Status        string `json:"status"`
	ScheduledTime string `json:"scheduledTime"`
	TakenTime     string `json:"takenTime"`
}

// CreateTakenIntake registra la toma de ahora mismo, como lo hace el diálogo
// de confirmación del frontend. Un conflicto "ya tomada hoy" es éxito
// idempotente; cualquier otro 400 se propaga.
func (c *Client) CreateTakenIntake(ctx context.Context, medicineID string) error {
	now := time.Now().Format(time.RFC3339)
	body := createIntakeRequest{
		MedicineID:    medicineID,
		Status:        "taken",
		ScheduledTime: now,
		TakenTime:     now,
	}
	err := c.http.DoJSON(ctx, http.MethodPost, "/api/intake-logs", c.headers(), body, nil)
	if isAlreadyTaken(err) {
		return nil
	}
	return err
}

func isAlreadyTaken(err error) bool {
	var he *httpclient.HTTPError
	if !errors.As(err, &he) {
		return false
	}
	return he.StatusCode == http.StatusBadRequest &&
		strings.Contains(he.Body, intakelogs.ErrAlreadyTakenToday.Error())
}

type intakeLogResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

func (c *Client) TodayTaken(ctx context.Context, medicineID string) (bool, error) {
	var log *intakeLogResponse
	err := c.http.DoJSON(ctx, http.MethodGet, "/api/intake-logs/today/"+medicineID,
		c.headers(), nil, &log)
	if err != nil {
		return false, err
	}
	return log != nil && log.Status == "taken", nil
}
