package intakelogs

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"mediflow/internal/domain/medicines"
	"mediflow/internal/domain/treatments"
	"mediflow/internal/middleware"
	"mediflow/internal/ports/auth"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service, medsSvc *medicines.Service, treatmentsSvc *treatments.Service) {
	r.Route("/api/intake-logs", func(ir chi.Router) {
		ir.Post("/", createIntakeLogHandler(svc, medsSvc, treatmentsSvc))
		ir.Get("/today/{medicineID}", todayIntakeLogHandler(svc, medsSvc, treatmentsSvc))
		ir.Get("/recent/{medicineID}", recentIntakeLogHandler(svc, medsSvc, treatmentsSvc))
		ir.Get("/medicine/{medicineID}", listIntakeLogsHandler(svc, medsSvc, treatmentsSvc))
	})
}

type createIntakeLogRequest struct {
	MedicineID    string `json:"medicineId"`
	ScheduledTime string `json:"scheduledTime"` // RFC3339
	TakenTime     string `json:"takenTime"`     // RFC3339 opcional
	Status        string `json:"status"`
	Notes         string `json:"notes"`
}

type intakeLogResponse struct {
	ID            string     `json:"id"`
	MedicineID    string     `json:"medicineId"`
	ScheduledTime time.Time  `json:"scheduledTime"`
	TakenTime     *time.Time `json:"takenTime,omitempty"`
	Status        string     `json:"status"`
	Notes         string     `json:"notes"`
	CreatedAt     time.Time  `json:"createdAt"`
}

func createIntakeLogHandler(svc *Service, medsSvc *medicines.Service, treatmentsSvc *treatments.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := requireClaims(w, r)
		if !ok {
			return
		}

		var req createIntakeLogRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid json")
			return
		}

		if !ownsMedicine(w, r, medsSvc, treatmentsSvc, claims, req.MedicineID) {
			return
		}

		scheduled, err := time.Parse(time.RFC3339, strings.TrimSpace(req.ScheduledTime))
		if err != nil {
			writeError(w, http.StatusBadRequest, "scheduledTime must be RFC3339")
			return
		}

		var taken *time.Time
		if strings.TrimSpace(req.TakenTime) != "" {
			t, err := time.Parse(time.RFC3339, strings.TrimSpace(req.TakenTime))
			if err != nil {
				writeError(w, http.StatusBadRequest, "takenTime must be RFC3339")
				return
			}
			taken = &t
		}

		l, err := svc.Create(r.Context(), CreateInput{
			MedicineID:    req.MedicineID,
			ScheduledTime: scheduled,
			TakenTime:     taken,
			Status:        Status(strings.TrimSpace(req.Status)),
			Notes:         req.Notes,
		})
		if err != nil {
			switch {
			case errors.Is(err, ErrAlreadyTakenToday):
				// Conflicto de dominio: texto distinto a un error de validación
				// para que la UI deshabilite la acción.
				writeError(w, http.StatusBadRequest, ErrAlreadyTakenToday.Error())
			case errors.Is(err, ErrInvalidInput):
				writeError(w, http.StatusBadRequest, "invalid input")
			default:
				writeError(w, http.StatusInternalServerError, "internal error")
			}
			return
		}

		writeJSON(w, http.StatusOK, toIntakeLogResponse(l))
	}
}

func todayIntakeLogHandler(svc *Service, medsSvc *medicines.Service, treatmentsSvc *treatments.Service) http.HandlerFunc {
	// Log `taken` de hoy, o null si no existe (contrato del cliente).
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := requireClaims(w, r)
		if !ok {
			return
		}

		medicineID := chi.URLParam(r, "medicineID")
		if !ownsMedicine(w, r, medsSvc, treatmentsSvc, claims, medicineID) {
			return
		}

		l, err := svc.GetToday(r.Context(), medicineID)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				writeJSON(w, http.StatusOK, nil)
				return
			}
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		writeJSON(w, http.StatusOK, toIntakeLogResponse(l))
	}
}

func recentIntakeLogHandler(svc *Service, medsSvc *medicines.Service, treatmentsSvc *treatments.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := requireClaims(w, r)
		if !ok {
			return
		}

		medicineID := chi.URLParam(r, "medicineID")
		if !ownsMedicine(w, r, medsSvc, treatmentsSvc, claims, medicineID) {
			return
		}

		l, err := svc.GetRecent(r.Context(), medicineID)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				writeJSON(w, http.StatusOK, nil)
				return
			}
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		writeJSON(w, http.StatusOK, toIntakeLogResponse(l))
	}
}

func listIntakeLogsHandler(svc *Service, medsSvc *medicines.Service, treatmentsSvc *treatments.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := requireClaims(w, r)
		if !ok {
			return
		}

		medicineID := chi.URLParam(r, "medicineID")
		if !ownsMedicine(w, r, medsSvc, treatmentsSvc, claims, medicineID) {
			return
		}

		items, err := svc.ListByMedicine(r.Context(), medicineID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		out := make([]intakeLogResponse, 0, len(items))
		for _, l := range items {
			out = append(out, toIntakeLogResponse(l))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func ownsMedicine(w http.ResponseWriter, r *http.Request, medsSvc *medicines.Service, treatmentsSvc *treatments.Service, claims auth.Claims, medicineID string) bool {
	m, err := medsSvc.GetByID(r.Context(), medicineID)
	if err != nil {
		if errors.Is(err, medicines.ErrNotFound) || errors.Is(err, medicines.ErrInvalidInput) {
			writeError(w, http.StatusNotFound, "medicine not found")
			return false
		}
		writeError(w, http.StatusInternalServerError, "internal error")
		return false
	}

	t, err := treatmentsSvc.GetByID(r.Context(), m.TreatmentID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return false
	}
	if t.PatientID != claims.UserID && claims.Role != auth.RoleAdmin {
		writeError(w, http.StatusForbidden, "forbidden")
		return false
	}
	return true
}

func requireClaims(w http.ResponseWriter, r *http.Request) (auth.Claims, bool) {
	claims, ok := middleware.GetClaims(r.Context())
	if !ok || strings.TrimSpace(claims.UserID) == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return auth.Claims{}, false
	}
	return claims, true
}

func toIntakeLogResponse(l IntakeLog) intakeLogResponse {
	return intakeLogResponse{
		ID:            l.ID,
		MedicineID:    l.MedicineID,
		ScheduledTime: l.ScheduledTime,
		TakenTime:     l.TakenTime,
		Status:        string(l.Status),
		Notes:         l.Notes,
		CreatedAt:     l.CreatedAt,
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
