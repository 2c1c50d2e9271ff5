package treatments

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
	r.Route("/api/treatments", func(tr chi.Router) {
		tr.Get("/", listTreatmentsHandler(svc))
		tr.Post("/", createTreatmentHandler(svc))
		tr.Get("/{treatmentID}", getTreatmentHandler(svc))
		tr.Patch("/{treatmentID}", updateTreatmentHandler(svc))
		tr.Delete("/{treatmentID}", deleteTreatmentHandler(svc))
	})
}

type createTreatmentRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	StartDate   string `json:"startDate"` // RFC3339 opcional
	EndDate     string `json:"endDate"`   // RFC3339 opcional
}

type updateTreatmentRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
	EndDate     *string `json:"endDate"` // RFC3339
}

type treatmentResponse struct {
	ID          string     `json:"id"`
	PatientID   string     `json:"patientId"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	StartDate   time.Time  `json:"startDate"`
	EndDate     *time.Time `json:"endDate,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}

func listTreatmentsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := requireClaims(w, r)
		if !ok {
			return
		}

		items, err := svc.ListByPatient(r.Context(), claims.UserID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		out := make([]treatmentResponse, 0, len(items))
		for _, t := range items {
			out = append(out, toTreatmentResponse(t))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func createTreatmentHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := requireClaims(w, r)
		if !ok {
			return
		}

		var req createTreatmentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid json")
			return
		}

		start, err := parseOptionalTime(req.StartDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "startDate must be RFC3339")
			return
		}
		end, err := parseOptionalTime(req.EndDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "endDate must be RFC3339")
			return
		}

		t, err := svc.Create(r.Context(), claims.UserID, CreateInput{
			Name:        req.Name,
			Description: req.Description,
			StartDate:   start,
			EndDate:     end,
		})
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		writeJSON(w, http.StatusOK, toTreatmentResponse(t))
	}
}

func getTreatmentHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := requireClaims(w, r)
		if !ok {
			return
		}

		t, ok := ownedTreatment(w, r, svc, claims)
		if !ok {
			return
		}
		writeJSON(w, http.StatusOK, toTreatmentResponse(t))
	}
}

func updateTreatmentHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := requireClaims(w, r)
		if !ok {
			return
		}

		t, ok := ownedTreatment(w, r, svc, claims)
		if !ok {
			return
		}

		var req updateTreatmentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid json")
			return
		}

		var end *time.Time
		if req.EndDate != nil {
			parsed, err := parseOptionalTime(*req.EndDate)
			if err != nil {
				writeError(w, http.StatusBadRequest, "endDate must be RFC3339")
				return
			}
			end = parsed
		}

		updated, err := svc.Update(r.Context(), t.ID, UpdateInput{
			Name:        req.Name,
			Description: req.Description,
			Status:      req.Status,
			EndDate:     end,
		})
		if err != nil {
			if errors.Is(err, ErrInvalidInput) {
				writeError(w, http.StatusBadRequest, "invalid input")
				return
			}
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		writeJSON(w, http.StatusOK, toTreatmentResponse(updated))
	}
}

func deleteTreatmentHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := requireClaims(w, r)
		if !ok {
			return
		}

		t, ok := ownedTreatment(w, r, svc, claims)
		if !ok {
			return
		}

		if err := svc.Delete(r.Context(), t.ID); err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"success": true})
	}
}

// ownedTreatment resuelve el tratamiento del path y valida ownership.
// Admin puede leer cualquiera.
func ownedTreatment(w http.ResponseWriter, r *http.Request, svc *Service, claims auth.Claims) (Treatment, bool) {
	id := chi.URLParam(r, "treatmentID")
	t, err := svc.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) || errors.Is(err, ErrInvalidInput) {
			writeError(w, http.StatusNotFound, "treatment not found")
			return Treatment{}, false
		}
		writeError(w, http.StatusInternalServerError, "internal error")
		return Treatment{}, false
	}

	if t.PatientID != claims.UserID && claims.Role != auth.RoleAdmin {
		writeError(w, http.StatusForbidden, "forbidden")
		return Treatment{}, false
	}
	return t, true
}

func requireClaims(w http.ResponseWriter, r *http.Request) (auth.Claims, bool) {
	claims, ok := middleware.GetClaims(r.Context())
	if !ok || strings.TrimSpace(claims.UserID) == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return auth.Claims{}, false
	}
	return claims, true
}

func parseOptionalTime(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func toTreatmentResponse(t Treatment) treatmentResponse {
	return treatmentResponse{
		ID:          t.ID,
		PatientID:   t.PatientID,
		Name:        t.Name,
		Description: t.Description,
		Status:      string(t.Status),
		StartDate:   t.StartDate,
		EndDate:     t.EndDate,
		CreatedAt:   t.CreatedAt,
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
