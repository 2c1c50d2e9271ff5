package adherence

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"mediflow/internal/domain/treatments"
	"mediflow/internal/middleware"
	"mediflow/internal/ports/auth"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service, treatmentsSvc *treatments.Service) {
	r.Get("/api/adherence/{treatmentID}", treatmentAdherenceHandler(svc, treatmentsSvc))
	r.Get("/api/health/daily-adherence", dailyAdherenceHandler(svc))
	r.Get("/api/health/monthly-adherence", monthlyAdherenceHandler(svc))
}

type treatmentAdherenceResponse struct {
	Percentage float64 `json:"percentage"`
	Taken      int     `json:"taken"`
	Total      int     `json:"total"`
}

type dailyPointResponse struct {
	Date           string  `json:"date"`
	TotalScheduled int     `json:"totalScheduled"`
	TotalTaken     int     `json:"totalTaken"`
	Percentage     float64 `json:"percentage"`
}

type monthlyPointResponse struct {
	Month          string  `json:"month"`
	TotalScheduled int     `json:"totalScheduled"`
	TotalTaken     int     `json:"totalTaken"`
	Percentage     float64 `json:"percentage"`
}

func treatmentAdherenceHandler(svc *Service, treatmentsSvc *treatments.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := requireClaims(w, r)
		if !ok {
			return
		}

		treatmentID := chi.URLParam(r, "treatmentID")
		t, err := treatmentsSvc.GetByID(r.Context(), treatmentID)
		if err != nil {
			if errors.Is(err, treatments.ErrNotFound) || errors.Is(err, treatments.ErrInvalidInput) {
				writeError(w, http.StatusNotFound, "treatment not found")
				return
			}
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		if t.PatientID != claims.UserID && claims.Role != auth.RoleAdmin {
			writeError(w, http.StatusForbidden, "forbidden")
			return
		}

		sum, err := svc.ForTreatment(r.Context(), treatmentID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		writeJSON(w, http.StatusOK, treatmentAdherenceResponse{
			Percentage: sum.Percentage,
			Taken:      sum.Taken,
			Total:      sum.Total,
		})
	}
}

func dailyAdherenceHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := requireClaims(w, r)
		if !ok {
			return
		}

		days := queryInt(r, "days", 7)
		points, err := svc.Daily(r.Context(), claims.UserID, days)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		out := make([]dailyPointResponse, 0, len(points))
		for _, p := range points {
			out = append(out, dailyPointResponse{
				Date:           p.Date,
				TotalScheduled: p.TotalScheduled,
				TotalTaken:     p.TotalTaken,
				Percentage:     p.Percentage,
			})
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func monthlyAdherenceHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := requireClaims(w, r)
		if !ok {
			return
		}

		months := queryInt(r, "months", 6)
		points, err := svc.Monthly(r.Context(), claims.UserID, months)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		out := make([]monthlyPointResponse, 0, len(points))
		for _, p := range points {
			out = append(out, monthlyPointResponse{
				Month:          p.Month,
				TotalScheduled: p.TotalScheduled,
				TotalTaken:     p.TotalTaken,
				Percentage:     p.Percentage,
			})
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func queryInt(r *http.Request, key string, fallback int) int {
	v := strings.TrimSpace(r.URL.Query().Get(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func requireClaims(w http.ResponseWriter, r *http.Request) (auth.Claims, bool) {
	claims, ok := middleware.GetClaims(r.Context())
	if !ok || strings.TrimSpace(claims.UserID) == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return auth.Claims{}, false
	}
	return claims, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
