package server

import (
	"net/http"

	"github.com/jonathan/trial-reconciler/internal/types"
)

// StartResponse is the response for POST /reconciliation/start.
type StartResponse struct {
	InvestigationID string `json:"investigation_id"`
	Status          string `json:"status"`
	Message         string `json:"message"`
}

// ReportResponse is the response for GET /reconciliation/{id}/report.
type ReportResponse struct {
	InvestigationID string `json:"investigation_id"`
	Report          string `json:"report"`
}

// handleStart begins a new investigation and returns its identifier.
func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	id := s.orch.Start(r.Context())
	s.jsonResponse(w, http.StatusOK, StartResponse{
		InvestigationID: id,
		Status:          "started",
		Message:         "Payment reconciliation investigation started",
	})
}

// handleStatus returns the current investigation snapshot for polling.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	inv, ok := s.orch.Get(id)
	if !ok {
		s.errorResponse(w, http.StatusNotFound, "Investigation not found")
		return
	}
	s.jsonResponse(w, http.StatusOK, inv)
}

// handleReport returns the final report once the investigation completes.
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	inv, ok := s.orch.Get(id)
	if !ok {
		s.errorResponse(w, http.StatusNotFound, "Investigation not found")
		return
	}
	if inv.Status != types.StatusComplete {
		s.errorResponse(w, http.StatusBadRequest, "Investigation not yet complete")
		return
	}
	s.jsonResponse(w, http.StatusOK, ReportResponse{
		InvestigationID: id,
		Report:          inv.FinalReport,
	})
}

// handleHealth returns server health status.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "Clinical Trial Payment Reconciliation",
	})
}
