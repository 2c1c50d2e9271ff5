package notifications

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"mediflow/internal/middleware"
	"mediflow/internal/ports/auth"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/api/notifications", func(nr chi.Router) {
		nr.Get("/", listNotificationsHandler(svc))
		nr.Post("/", createNotificationHandler(svc))
		nr.Patch("/{notificationID}/read", markReadHandler(svc))
	})
}

type createNotificationRequest struct {
	MedicineID   string `json:"medicineId"`
	Title        string `json:"title"`
	Message      string `json:"message"`
	Type         string `json:"type"`
	ScheduledFor string `json:"scheduledFor"` // RFC3339 opcional
}

type notificationResponse struct {
	ID           string     `json:"id"`
	UserID       string     `json:"userId"`
	MedicineID   *string    `json:"medicineId,omitempty"`
	Title        string     `json:"title"`
	Message      string     `json:"message"`
	Type         string     `json:"type"`
	Read         bool       `json:"read"`
	ScheduledFor *time.Time `json:"scheduledFor,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
}

func listNotificationsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := requireClaims(w, r)
		if !ok {
			return
		}

		items, err := svc.ListByUser(r.Context(), claims.UserID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		out := make([]notificationResponse, 0, len(items))
		for _, n := range items {
			out = append(out, toNotificationResponse(n))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func createNotificationHandler(svc *Service) http.HandlerFunc {
	// Lo usa el pipeline de pre-avisos (alarmd) y la UI.
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := requireClaims(w, r)
		if !ok {
			return
		}

		var req createNotificationRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid json")
			return
		}

		var medicineID *string
		if strings.TrimSpace(req.MedicineID) != "" {
			id := strings.TrimSpace(req.MedicineID)
			medicineID = &id
		}

		var scheduledFor *time.Time
		if strings.TrimSpace(req.ScheduledFor) != "" {
			t, err := time.Parse(time.RFC3339, strings.TrimSpace(req.ScheduledFor))
			if err != nil {
				writeError(w, http.StatusBadRequest, "scheduledFor must be RFC3339")
				return
			}
			scheduledFor = &t
		}

		n, err := svc.Create(r.Context(), claims.UserID, CreateInput{
			MedicineID:   medicineID,
			Title:        req.Title,
			Message:      req.Message,
			Type:         Type(strings.TrimSpace(req.Type)),
			ScheduledFor: scheduledFor,
		})
		if err != nil {
			if errors.Is(err, ErrInvalidInput) {
				writeError(w, http.StatusBadRequest, "invalid input")
				return
			}
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		writeJSON(w, http.StatusOK, toNotificationResponse(n))
	}
}

func markReadHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := requireClaims(w, r)
		if !ok {
			return
		}

		id := chi.URLParam(r, "notificationID")
		n, err := svc.MarkRead(r.Context(), id, claims.UserID)
		if err != nil {
			if errors.Is(err, ErrNotFound) || errors.Is(err, ErrInvalidInput) {
				writeError(w, http.StatusNotFound, "notification not found")
				return
			}
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		writeJSON(w, http.StatusOK, toNotificationResponse(n))
	}
}

func requireClaims(w http.ResponseWriter, r *http.Request) (auth.Claims, bool) {
	claims, ok := middleware.GetClaims(r.Context())
	if !ok || strings.TrimSpace(claims.UserID) == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return auth.Claims{}, false
	}
	return claims, true
}

func toNotificationResponse(n Notification) notificationResponse {
	return notificationResponse{
		ID:           n.ID,
		UserID:       n.UserID,
		MedicineID:   n.MedicineID,
		Title:        n.Title,
		Message:      n.Message,
		Type:         string(n.Type),
		Read:         n.Read,
		ScheduledFor: n.ScheduledFor,
		CreatedAt:    n.CreatedAt,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
