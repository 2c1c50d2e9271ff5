package admin

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"mediflow/internal/middleware"
	"mediflow/internal/ports/auth"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/api/admin", func(ar chi.Router) {
		ar.Get("/stats", statsHandler(svc))
		ar.Get("/patients", patientsHandler(svc))
	})
}

type statsResponse struct {
	TotalPatients     int     `json:"totalPatients"`
	ActiveTreatments  int     `json:"activeTreatments"`
	AverageAdherence  float64 `json:"averageAdherence"`
	LowAdherenceCount int     `json:"lowAdherenceCount"`
}

type patientStatsResponse struct {
	UserID         string    `json:"userId"`
	FullName       string    `json:"fullName"`
	Email          string    `json:"email"`
	TreatmentCount int       `json:"treatmentCount"`
	AdherenceRate  float64   `json:"adherenceRate"`
	LastActivity   time.Time `json:"lastActivity"`
}

func statsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireAdmin(w, r) {
			return
		}

		stats, err := svc.Stats(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		writeJSON(w, http.StatusOK, statsResponse{
			TotalPatients:     stats.TotalPatients,
			ActiveTreatments:  stats.ActiveTreatments,
			AverageAdherence:  stats.AverageAdherence,
			LowAdherenceCount: stats.LowAdherenceCount,
		})
	}
}

func patientsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireAdmin(w, r) {
			return
		}

		items, err := svc.PatientStats(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		out := make([]patientStatsResponse, 0, len(items))
		for _, p := range items {
			out = append(out, patientStatsResponse{
				UserID:         p.UserID,
				FullName:       p.FullName,
				Email:          p.Email,
				TreatmentCount: p.TreatmentCount,
				AdherenceRate:  p.AdherenceRate,
				LastActivity:   p.LastActivity,
			})
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func requireAdmin(w http.ResponseWriter, r *http.Request) bool {
	claims, ok := middleware.GetClaims(r.Context())
	if !ok || strings.TrimSpace(claims.UserID) == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return false
	}
	if claims.Role != auth.RoleAdmin {
		writeError(w, http.StatusForbidden, "forbidden")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
