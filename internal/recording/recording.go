package recording

import (
	"errors"
	"time"
)

// ErrNotFound is returned by Store implementations when the recording id is unknown.
// The pipeline treats it as a recoverable signal that the record was deleted.
var ErrNotFound = errors.New("recording not found")

// Phase tracks how far a recording has moved through the pipeline.
type Phase string

const (
	PhaseCaptured     Phase = "captured"
	PhaseUploading    Phase = "uploading"
	PhaseTranscribing Phase = "transcribing"
	PhaseTranscribed  Phase = "transcribed"
	PhaseSummarizing  Phase = "summarizing"
	PhaseSummarized   Phase = "summarized"
)

// Recording is one captured audio session and its derived text artifacts.
// Title, CreatedAt, Duration and Filename are set by the capture flow and never
// touched by the pipeline; Transcript, Summary, Progress, IsSummarizing and
// Phase are pipeline-owned except for manual summary edits.
type Recording struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	CreatedAt     time.Time `json:"created_at"`
	Duration      float64   `json:"duration"`
	Filename      string    `json:"filename"`
	Transcript    string    `json:"transcript,omitempty"`
	Summary       string    `json:"summary,omitempty"`
	Progress      string    `json:"progress,omitempty"`
	IsSummarizing bool      `json:"is_summarizing"`
	Phase         Phase     `json:"phase"`
}

// Store is the persistence contract the pipeline and API run against.
// Implementations must serialize writes per record.
type Store interface {
	List() ([]*Recording, error)
	Get(id string) (*Recording, error)
	Create(rec *Recording) error
	Update(rec *Recording) error
	Delete(id string) error
}
