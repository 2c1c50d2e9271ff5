package medicines

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"mediflow/internal/domain/treatments"
	"mediflow/internal/middleware"
	"mediflow/internal/ports/auth"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registra las rutas de medicinas.
// El path scheme viene del cliente original:
// - /api/medicines/{treatmentID} lista por tratamiento
// - /api/medicines/detail/{medicineID} opera sobre una medicina
func RegisterRoutes(r chi.Router, svc *Service, treatmentsSvc *treatments.Service) {
	r.Route("/api/medicines", func(mr chi.Router) {
		mr.Get("/", listMyMedicinesHandler(svc))
		mr.Post("/", createMedicineHandler(svc, treatmentsSvc))
		mr.Get("/{treatmentID}", listByTreatmentHandler(svc, treatmentsSvc))
		mr.Get("/detail/{medicineID}", getMedicineHandler(svc, treatmentsSvc))
		mr.Patch("/detail/{medicineID}", updateMedicineHandler(svc, treatmentsSvc))
		mr.Delete("/detail/{medicineID}", deleteMedicineHandler(svc, treatmentsSvc))
	})
}

type createMedicineRequest struct {
	TreatmentID  string `json:"treatmentId"`
	Name         string `json:"name"`
	Dosage       string `json:"dosage"`
	Frequency    string `json:"frequency"`
	ScheduleTime string `json:"scheduleTime"`
	Instructions string `json:"instructions"`
	Stock        int    `json:"stock"`
}

type updateMedicineRequest struct {
	Name         *string `json:"name"`
	Dosage       *string `json:"dosage"`
	Frequency    *string `json:"frequency"`
	ScheduleTime *string `json:"scheduleTime"`
	Instructions *string `json:"instructions"`
	Stock        *int    `json:"stock"`
}

type medicineResponse struct {
	ID           string    `json:"id"`
	TreatmentID  string    `json:"treatmentId"`
	Name         string    `json:"name"`
	Dosage       string    `json:"dosage"`
	Frequency    string    `json:"frequency"`
	ScheduleTime string    `json:"scheduleTime"`
	Instructions string    `json:"instructions"`
	Stock        int       `json:"stock"`
	CreatedAt    time.Time `json:"createdAt"`
}

func listMyMedicinesHandler(svc *Service) http.HandlerFunc {
	// Todas las medicinas del paciente autenticado (lo consume alarmd).
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

		out := make([]medicineResponse, 0, len(items))
		for _, m := range items {
			out = append(out, toMedicineResponse(m))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func createMedicineHandler(svc *Service, treatmentsSvc *treatments.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := requireClaims(w, r)
		if !ok {
			return
		}

		var req createMedicineRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid json")
			return
		}

		if !ownsTreatment(w, r, treatmentsSvc, claims, req.TreatmentID) {
			return
		}

		m, err := svc.Create(r.Context(), CreateInput{
			TreatmentID:  req.TreatmentID,
			Name:         req.Name,
			Dosage:       req.Dosage,
			Frequency:    req.Frequency,
			ScheduleTime: req.ScheduleTime,
			Instructions: req.Instructions,
			Stock:        req.Stock,
		})
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		writeJSON(w, http.StatusOK, toMedicineResponse(m))
	}
}

func listByTreatmentHandler(svc *Service, treatmentsSvc *treatments.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := requireClaims(w, r)
		if !ok {
			return
		}

		treatmentID := chi.URLParam(r, "treatmentID")
		if !ownsTreatment(w, r, treatmentsSvc, claims, treatmentID) {
			return
		}

		items, err := svc.ListByTreatment(r.Context(), treatmentID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		out := make([]medicineResponse, 0, len(items))
		for _, m := range items {
			out = append(out, toMedicineResponse(m))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func getMedicineHandler(svc *Service, treatmentsSvc *treatments.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := requireClaims(w, r)
		if !ok {
			return
		}

		m, ok := ownedMedicine(w, r, svc, treatmentsSvc, claims)
		if !ok {
			return
		}
		writeJSON(w, http.StatusOK, toMedicineResponse(m))
	}
}

func updateMedicineHandler(svc *Service, treatmentsSvc *treatments.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := requireClaims(w, r)
		if !ok {
			return
		}

		m, ok := ownedMedicine(w, r, svc, treatmentsSvc, claims)
		if !ok {
			return
		}

		var req updateMedicineRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid json")
			return
		}

		updated, err := svc.Update(r.Context(), m.ID, UpdateInput{
			Name:         req.Name,
			Dosage:       req.Dosage,
			Frequency:    req.Frequency,
			ScheduleTime: req.ScheduleTime,
			Instructions: req.Instructions,
			Stock:        req.Stock,
		})
		if err != nil {
			if errors.Is(err, ErrInvalidInput) || errors.Is(err, ErrBadScheduleTime) {
				writeError(w, http.StatusBadRequest, err.Error())
				return
			}
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		writeJSON(w, http.StatusOK, toMedicineResponse(updated))
	}
}

func deleteMedicineHandler(svc *Service, treatmentsSvc *treatments.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := requireClaims(w, r)
		if !ok {
			return
		}

		m, ok := ownedMedicine(w, r, svc, treatmentsSvc, claims)
		if !ok {
			return
		}

		if err := svc.Delete(r.Context(), m.ID); err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"success": true})
	}
}

// ownedMedicine resuelve la medicina del path y valida ownership vía su tratamiento.
func ownedMedicine(w http.ResponseWriter, r *http.Request, svc *Service, treatmentsSvc *treatments.Service, claims auth.Claims) (Medicine, bool) {
	id := chi.URLParam(r, "medicineID")
	m, err := svc.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) || errors.Is(err, ErrInvalidInput) {
			writeError(w, http.StatusNotFound, "medicine not found")
			return Medicine{}, false
		}
		writeError(w, http.StatusInternalServerError, "internal error")
		return Medicine{}, false
	}

	if !ownsTreatment(w, r, treatmentsSvc, claims, m.TreatmentID) {
		return Medicine{}, false
	}
	return m, true
}

func ownsTreatment(w http.ResponseWriter, r *http.Request, treatmentsSvc *treatments.Service, claims auth.Claims, treatmentID string) bool {
	t, err := treatmentsSvc.GetByID(r.Context(), treatmentID)
	if err != nil {
		if errors.Is(err, treatments.ErrNotFound) || errors.Is(err, treatments.ErrInvalidInput) {
			writeError(w, http.StatusNotFound, "treatment not found")
			return false
		}
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

func toMedicineResponse(m Medicine) medicineResponse {
	return medicineResponse{
		ID:           m.ID,
		TreatmentID:  m.TreatmentID,
		Name:         m.Name,
		Dosage:       m.Dosage,
		Frequency:    m.Frequency,
		ScheduleTime: m.ScheduleTime,
		Instructions: m.Instructions,
		Stock:        m.Stock,
		CreatedAt:    m.CreatedAt,
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
