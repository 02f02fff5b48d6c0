package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/voice-memo/backend/internal/pipeline"
	"github.com/voice-memo/backend/internal/recording"
)

type RecordingsHandler struct {
	store recording.Store
	pipe  *pipeline.Pipeline
}

func NewRecordingsHandler(store recording.Store, pipe *pipeline.Pipeline) *RecordingsHandler {
	return &RecordingsHandler{store: store, pipe: pipe}
}

// List returns all recordings, newest first
func (h *RecordingsHandler) List(w http.ResponseWriter, r *http.Request) {
	recs, err := h.store.List()
	if err != nil {
		jsonError(w, "failed to list recordings: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if recs == nil {
		recs = []*recording.Recording{}
	}
	jsonResponse(w, recs, http.StatusOK)
}

// Get returns a single recording by ID
func (h *RecordingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	rec, ok := h.load(w, r)
	if !ok {
		return
	}
	jsonResponse(w, rec, http.StatusOK)
}

type createRecordingRequest struct {
	Title    string  `json:"title"`
	Duration float64 `json:"duration"`
	Filename string  `json:"filename"`
}

// Create registers recording metadata captured by the client
func (h *RecordingsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createRecordingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Title == "" || req.Filename == "" {
		jsonError(w, "title and filename are required", http.StatusBadRequest)
		return
	}

	rec := &recording.Recording{
		ID:        uuid.New().String(),
		Title:     req.Title,
		CreatedAt: time.Now(),
		Duration:  req.Duration,
		Filename:  req.Filename,
		Phase:     recording.PhaseCaptured,
	}
	if err := h.store.Create(rec); err != nil {
		jsonError(w, "failed to create recording: "+err.Error(), http.StatusInternalServerError)
		return
	}
	jsonResponse(w, rec, http.StatusCreated)
}

// Delete removes a recording. A pipeline operation in flight for it will
// abort gracefully at its next store update.
func (h *RecordingsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.store.Delete(id); err != nil {
		if errors.Is(err, recording.ErrNotFound) {
			jsonError(w, "recording not found", http.StatusNotFound)
			return
		}
		jsonError(w, "failed to delete recording: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Transcribe starts the upload/poll/fetch pipeline for a recording. The call
// returns 202 immediately; the client observes progress on the record itself.
func (h *RecordingsHandler) Transcribe(w http.ResponseWriter, r *http.Request) {
	rec, ok := h.load(w, r)
	if !ok {
		return
	}

	go func() {
		if err := h.pipe.Transcribe(context.Background(), rec.ID); err != nil {
			log.Printf("[api] transcribe %s: %v", rec.ID, err)
		}
	}()

	jsonResponse(w, map[string]string{"status": "transcribing"}, http.StatusAccepted)
}

// Summarize starts summary generation from the persisted transcript.
func (h *RecordingsHandler) Summarize(w http.ResponseWriter, r *http.Request) {
	rec, ok := h.load(w, r)
	if !ok {
		return
	}
	if rec.Transcript == "" {
		jsonError(w, "recording has no transcript", http.StatusConflict)
		return
	}

	go func() {
		if err := h.pipe.Summarize(context.Background(), rec.ID, rec.Transcript); err != nil {
			log.Printf("[api] summarize %s: %v", rec.ID, err)
		}
	}()

	jsonResponse(w, map[string]string{"status": "summarizing"}, http.StatusAccepted)
}

type updateSummaryRequest struct {
	Summary string `json:"summary"`
}

// UpdateSummary overwrites the summary with a manual edit
func (h *RecordingsHandler) UpdateSummary(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req updateSummaryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.pipe.UpdateSummary(r.Context(), id, req.Summary); err != nil {
		if errors.Is(err, recording.ErrNotFound) {
			jsonError(w, "recording not found", http.StatusNotFound)
			return
		}
		jsonError(w, "failed to update summary: "+err.Error(), http.StatusInternalServerError)
		return
	}

	rec, err := h.store.Get(id)
	if err != nil {
		jsonError(w, "recording not found", http.StatusNotFound)
		return
	}
	jsonResponse(w, rec, http.StatusOK)
}

func (h *RecordingsHandler) load(w http.ResponseWriter, r *http.Request) (*recording.Recording, bool) {
	id := chi.URLParam(r, "id")
	if id == "" {
		jsonError(w, "missing recording ID", http.StatusBadRequest)
		return nil, false
	}
	rec, err := h.store.Get(id)
	if err != nil {
		if errors.Is(err, recording.ErrNotFound) {
			jsonError(w, "recording not found", http.StatusNotFound)
			return nil, false
		}
		jsonError(w, "failed to load recording: "+err.Error(), http.StatusInternalServerError)
		return nil, false
	}
	return rec, true
}
