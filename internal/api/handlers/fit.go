package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/inferlab/epbox/internal/config"
	"github.com/inferlab/epbox/internal/numeric"
	"github.com/inferlab/epbox/internal/service"
	"github.com/inferlab/epbox/internal/store"
)

type FitHandler struct {
	svc *service.FitService
}

func NewFitHandler(svc *service.FitService) *FitHandler {
	return &FitHandler{svc: svc}
}

type createFitRequest struct {
	Label         string    `json:"label,omitempty"`
	Series        []float64 `json:"series"`
	PriorMean     float64   `json:"prior_mean,omitempty"`
	PriorVariance float64   `json:"prior_variance,omitempty"`
	MaxSweeps     int       `json:"max_sweeps,omitempty"`
	Tolerance     float64   `json:"tolerance,omitempty"`
}

func (h *FitHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createFitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	maxSweeps := req.MaxSweeps
	if maxSweeps <= 0 {
		maxSweeps = config.MaxSweeps()
	}

	run, err := h.svc.Fit(r.Context(), service.FitRequest{
		Label:         req.Label,
		Series:        req.Series,
		PriorMean:     req.PriorMean,
		PriorVariance: req.PriorVariance,
		MaxSweeps:     maxSweeps,
		Tolerance:     req.Tolerance,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSeriesEmpty),
			errors.Is(err, numeric.ErrNonPositiveObservation):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "failed to run fit")
		}
		return
	}

	writeJSON(w, http.StatusCreated, run)
}

func (h *FitHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid run id")
		return
	}

	run, err := h.svc.GetRun(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "run not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to get run")
		return
	}

	writeJSON(w, http.StatusOK, run)
}

func (h *FitHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	runs, err := h.svc.ListRuns(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list runs")
		return
	}

	writeJSON(w, http.StatusOK, runs)
}
