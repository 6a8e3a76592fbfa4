package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/MoKho/resume-api-backend/internal/gdoc"
	"github.com/MoKho/resume-api-backend/internal/store"
	"github.com/MoKho/resume-api-backend/internal/tailor"
)

// registerRoutes sets up all HTTP routes.
func (s *Server) registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /v1/applications/{id}/tailor", s.handleTailor)
	mux.HandleFunc("GET /v1/jobs/{id}", s.handleJobStatus)
	mux.HandleFunc("POST /v1/documents/{id}/patch", s.handlePatch)
	mux.HandleFunc("POST /v1/profiles/{id}/histories/extract", s.handleExtractHistories)
}

// HealthResponse is the response for the health check endpoint.
type HealthResponse struct {
	Status string `json:"status"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

// TailorResponse reports the job created for an application.
type TailorResponse struct {
	JobID  string `json:"job_id"`
	Status string `json:"status"`
}

func (s *Server) handleTailor(w http.ResponseWriter, r *http.Request) {
	appID := r.PathValue("id")

	app, err := s.records.GetApplication(r.Context(), appID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "application not found")
			return
		}
		s.logger.Error("load application failed", "application_id", appID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load application")
		return
	}

	payload, err := json.Marshal(tailor.Payload{ApplicationID: app.ID})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to encode job payload")
		return
	}
	rec, err := s.jobs.Enqueue(r.Context(), tailor.JobKind, payload)
	if err != nil {
		s.logger.Error("enqueue failed", "application_id", appID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to enqueue job")
		return
	}

	writeJSON(w, http.StatusAccepted, TailorResponse{JobID: rec.ID, Status: string(rec.Status)})
}

// JobStatusResponse is the public view of a job record.
type JobStatusResponse struct {
	ID        string          `json:"id"`
	Kind      string          `json:"kind"`
	Status    string          `json:"status"`
	Result    json.RawMessage `json:"result,omitempty"`
	Error     string          `json:"error,omitempty"`
	CreatedAt string          `json:"created_at"`
	UpdatedAt string          `json:"updated_at"`
}

func (s *Server) handleJobStatus(w http.ResponseWriter, r *http.Request) {
	rec, err := s.jobs.Status(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "job not found")
			return
		}
		s.logger.Error("job status failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load job")
		return
	}

	writeJSON(w, http.StatusOK, JobStatusResponse{
		ID:        rec.ID,
		Kind:      rec.Kind,
		Status:    string(rec.Status),
		Result:    rec.Result,
		Error:     rec.Error,
		CreatedAt: rec.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt: rec.UpdatedAt.UTC().Format(time.RFC3339),
	})
}

// PatchRequest asks for a direct in-place text replacement on a document.
type PatchRequest struct {
	Original    string `json:"original"`
	Replacement string `json:"replacement"`
	// Mode is "first" (default) or "all".
	Mode string `json:"mode,omitempty"`
}

func (s *Server) handlePatch(w http.ResponseWriter, r *http.Request) {
	docID := r.PathValue("id")

	var req PatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Original == "" {
		writeError(w, http.StatusBadRequest, "original is required")
		return
	}

	mode := gdoc.ModeFirst
	switch req.Mode {
	case "", "first":
	case "all":
		mode = gdoc.ModeAll
	default:
		writeError(w, http.StatusBadRequest, "mode must be \"first\" or \"all\"")
		return
	}

	result, err := s.patcher.ReplaceText(r.Context(), docID, req.Original, req.Replacement, mode)
	if err != nil {
		if errors.Is(err, gdoc.ErrNotFound) {
			writeError(w, http.StatusNotFound, "document not found")
			return
		}
		s.logger.Error("patch failed", "doc_id", docID, "error", err)
		writeError(w, http.StatusBadGateway, "failed to patch document")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// ExtractHistoriesRequest carries free-form resume or work-history text.
type ExtractHistoriesRequest struct {
	Text string `json:"text"`
}

// HistoryResponse is the public view of a stored job history.
type HistoryResponse struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	Company      string   `json:"company"`
	Achievements []string `json:"achievements"`
}

// ExtractHistoriesResponse lists the histories created for a profile.
type ExtractHistoriesResponse struct {
	Histories []HistoryResponse `json:"histories"`
}

func (s *Server) handleExtractHistories(w http.ResponseWriter, r *http.Request) {
	profileID := r.PathValue("id")

	var req ExtractHistoriesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeError(w, http.StatusBadRequest, "text is required")
		return
	}

	if _, err := s.records.GetProfile(r.Context(), profileID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "profile not found")
			return
		}
		s.logger.Error("load profile failed", "profile_id", profileID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load profile")
		return
	}

	entries, err := tailor.ExtractHistories(r.Context(), s.gen, req.Text)
	if err != nil {
		s.logger.Error("history extraction failed", "profile_id", profileID, "error", err)
		writeError(w, http.StatusBadGateway, "failed to extract job histories")
		return
	}

	resp := ExtractHistoriesResponse{Histories: make([]HistoryResponse, 0, len(entries))}
	for _, e := range entries {
		h := &store.JobHistory{
			ID:           uuid.NewString(),
			ProfileID:    profileID,
			Company:      e.Company,
			Title:        e.Title,
			Achievements: e.Achievements,
		}
		if err := s.records.UpsertJobHistory(r.Context(), h); err != nil {
			s.logger.Error("store history failed", "profile_id", profileID, "error", err)
			writeError(w, http.StatusInternalServerError, "failed to store job histories")
			return
		}
		resp.Histories = append(resp.Histories, HistoryResponse{
			ID:           h.ID,
			Title:        h.Title,
			Company:      h.Company,
			Achievements: h.Achievements,
		})
	}

	writeJSON(w, http.StatusCreated, resp)
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// ErrorResponse is a standard error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}
