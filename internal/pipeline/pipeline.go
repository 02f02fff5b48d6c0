package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/voice-memo/backend/internal/heph"
	"github.com/voice-memo/backend/internal/recording"
)

var (
	// ErrNotAuthenticated means no authenticated transcription client can be
	// obtained. Returned before any network I/O.
	ErrNotAuthenticated = errors.New("transcription client not authenticated")

	// ErrInFlight rejects a second transcribe or summarize call for a
	// recording that already has one running.
	ErrInFlight = errors.New("operation already in flight for this recording")

	// ErrPollDeadline means the remote job did not reach a terminal state
	// within the configured attempt budget.
	ErrPollDeadline = errors.New("transcription poll deadline exceeded")

	// ErrJobFailed means the remote job reported a terminal failure status.
	ErrJobFailed = errors.New("transcription job failed")

	// ErrSummarizerNotConfigured rejects a summarize call before any network
	// I/O when no summarizer endpoint has been set up.
	ErrSummarizerNotConfigured = errors.New("summarizer not configured")
)

// TranscriptionClient is the remote upload/poll/fetch contract.
type TranscriptionClient interface {
	Configured() bool
	UploadAudio(ctx context.Context, path, model string) (*heph.Job, error)
	CheckStatus(ctx context.Context, taskID string) (*heph.Job, error)
	GetResult(ctx context.Context, taskID string) (*heph.Result, error)
}

// Summarizer is the remote summary generation contract.
type Summarizer interface {
	Configured() bool
	GenerateSummary(ctx context.Context, text, model string) (string, error)
}

// Options controls pipeline behavior.
type Options struct {
	AudioPath       string        // directory holding the recorded audio files
	WhisperModel    string        // model hint sent with the upload
	SummaryModel    string        // model hint sent to the summarizer
	PollInterval    time.Duration // wait between status polls
	MaxPollAttempts int           // poll budget before ErrPollDeadline
	AutoSummarize   bool          // chain summarize after a successful transcribe
}

// Pipeline drives recordings through upload, transcription polling and
// summarization, persisting intermediate state to the store. Operations for
// distinct recordings run concurrently; operations for the same recording
// never overlap.
type Pipeline struct {
	store       recording.Store
	transcriber TranscriptionClient
	summarizer  Summarizer
	opts        Options

	mu           sync.Mutex
	transcribing map[string]struct{}
	summarizing  map[string]struct{}
}

func New(store recording.Store, transcriber TranscriptionClient, summarizer Summarizer, opts Options) *Pipeline {
	if opts.PollInterval <= 0 {
		opts.PollInterval = 2 * time.Second
	}
	if opts.MaxPollAttempts <= 0 {
		opts.MaxPollAttempts = 900
	}
	return &Pipeline{
		store:        store,
		transcriber:  transcriber,
		summarizer:   summarizer,
		opts:         opts,
		transcribing: make(map[string]struct{}),
		summarizing:  make(map[string]struct{}),
	}
}

// Transcribe uploads the recording's audio, polls the remote job to
// completion and persists the transcript. Each observed progress update is
// persisted in order; the transcript and the progress clear commit in a
// single store update.
func (p *Pipeline) Transcribe(ctx context.Context, id string) error {
	if p.transcriber == nil || !p.transcriber.Configured() {
		return ErrNotAuthenticated
	}
	if !p.acquire(p.transcribing, id) {
		return ErrInFlight
	}
	defer p.release(p.transcribing, id)

	rec, err := p.store.Get(id)
	if err != nil {
		return fmt.Errorf("load recording: %w", err)
	}

	log.Printf("[pipeline] transcribe start: id=%s title=%q", rec.ID, rec.Title)

	// Nothing is persisted until the upload has succeeded.
	audioPath := filepath.Join(p.opts.AudioPath, rec.Filename)
	job, err := p.transcriber.UploadAudio(ctx, audioPath, p.opts.WhisperModel)
	if err != nil {
		return fmt.Errorf("upload audio: %w", err)
	}

	err = p.persist(id, func(r *recording.Recording) {
		r.Phase = recording.PhaseUploading
	})
	if err != nil {
		return fmt.Errorf("persist upload state: %w", err)
	}

	if err := p.pollUntilComplete(ctx, id, job.TaskID); err != nil {
		return err
	}

	result, err := p.transcriber.GetResult(ctx, job.TaskID)
	if err != nil {
		return fmt.Errorf("fetch result: %w", err)
	}

	err = p.persist(id, func(r *recording.Recording) {
		r.Transcript = result.Text
		r.Progress = ""
		r.Phase = recording.PhaseTranscribed
	})
	if err != nil {
		return fmt.Errorf("persist transcript: %w", err)
	}

	log.Printf("[pipeline] transcribe done: id=%s segments=%d", id, len(result.Segments))

	if p.opts.AutoSummarize && p.summarizer != nil && p.summarizer.Configured() {
		// The transcribe itself succeeded once the transcript is persisted;
		// a chained summarize failure is logged, not propagated.
		if err := p.Summarize(ctx, id, result.Text); err != nil {
			log.Printf("[pipeline] chained summarize failed: id=%s err=%v", id, err)
		}
	}

	return nil
}

// persist re-reads the record and commits only the fields the mutation
// touches. Pipeline steps never write back a stale snapshot: a summary edited
// or a flag flipped by a concurrent actor mid-step must survive updates to
// unrelated fields.
func (p *Pipeline) persist(id string, mutate func(*recording.Recording)) error {
	rec, err := p.store.Get(id)
	if err != nil {
		return err
	}
	mutate(rec)
	return p.store.Update(rec)
}

// pollUntilComplete polls the job status at a fixed interval, persisting each
// non-terminal progress text, until the job completes, fails, or the attempt
// budget runs out.
func (p *Pipeline) pollUntilComplete(ctx context.Context, id, taskID string) error {
	for attempt := 0; attempt < p.opts.MaxPollAttempts; attempt++ {
		job, err := p.transcriber.CheckStatus(ctx, taskID)
		if err != nil {
			return fmt.Errorf("check status: %w", err)
		}

		if job.Status == heph.StatusCompleted {
			return nil
		}
		if isFailureStatus(job.Status) {
			// The job is no longer active, so stale progress must not stick
			// around. Best effort: the error below matters more.
			uerr := p.persist(id, func(r *recording.Recording) {
				r.Progress = ""
				r.Phase = recording.PhaseCaptured
			})
			if uerr != nil && !errors.Is(uerr, recording.ErrNotFound) {
				log.Printf("[pipeline] clear progress after failure: id=%s err=%v", id, uerr)
			}
			return fmt.Errorf("task %s reported status %q: %w", taskID, job.Status, ErrJobFailed)
		}

		err = p.persist(id, func(r *recording.Recording) {
			r.Progress = job.Progress
			r.Phase = recording.PhaseTranscribing
		})
		if err != nil {
			return fmt.Errorf("persist progress: %w", err)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(p.opts.PollInterval):
		}
	}
	return fmt.Errorf("task %s still running after %d polls: %w", taskID, p.opts.MaxPollAttempts, ErrPollDeadline)
}

// isFailureStatus decides whether a provider status is a terminal failure.
// The provider's vocabulary is not documented beyond "Completed", so anything
// carrying "fail" or "error" ends the poll loop instead of spinning forever.
func isFailureStatus(status string) bool {
	s := strings.ToLower(status)
	return strings.Contains(s, "fail") || strings.Contains(s, "error")
}

// Summarize generates a summary for the given transcript text and persists
// it. IsSummarizing is visible to concurrent observers while the call is in
// flight and is cleared on every exit path, success or failure.
func (p *Pipeline) Summarize(ctx context.Context, id, transcript string) error {
	if p.summarizer == nil || !p.summarizer.Configured() {
		return ErrSummarizerNotConfigured
	}
	if !p.acquire(p.summarizing, id) {
		return ErrInFlight
	}
	defer p.release(p.summarizing, id)

	log.Printf("[pipeline] summarize start: id=%s", id)

	var restorePhase recording.Phase
	err := p.persist(id, func(r *recording.Recording) {
		restorePhase = r.Phase
		r.IsSummarizing = true
		r.Phase = recording.PhaseSummarizing
	})
	if err != nil {
		return fmt.Errorf("persist summarizing state: %w", err)
	}

	committed := false
	defer func() {
		if committed {
			return
		}
		uerr := p.persist(id, func(r *recording.Recording) {
			r.IsSummarizing = false
			r.Phase = restorePhase
		})
		if uerr != nil && !errors.Is(uerr, recording.ErrNotFound) {
			log.Printf("[pipeline] clear summarizing flag: id=%s err=%v", id, uerr)
		}
	}()

	summary, err := p.summarizer.GenerateSummary(ctx, transcript, p.opts.SummaryModel)
	if err != nil {
		return fmt.Errorf("generate summary: %w", err)
	}

	err = p.persist(id, func(r *recording.Recording) {
		r.Summary = summary
		r.IsSummarizing = false
		r.Phase = recording.PhaseSummarized
	})
	if err != nil {
		return fmt.Errorf("persist summary: %w", err)
	}
	committed = true

	log.Printf("[pipeline] summarize done: id=%s", id)
	return nil
}

// UpdateSummary overwrites the summary directly, bypassing generation.
// Supports manual edits from the client.
func (p *Pipeline) UpdateSummary(ctx context.Context, id, text string) error {
	err := p.persist(id, func(r *recording.Recording) {
		r.Summary = text
	})
	if err != nil {
		return fmt.Errorf("persist summary: %w", err)
	}
	return nil
}

func (p *Pipeline) acquire(m map[string]struct{}, id string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, busy := m[id]; busy {
		return false
	}
	m[id] = struct{}{}
	return true
}

func (p *Pipeline) release(m map[string]struct{}, id string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(m, id)
}
