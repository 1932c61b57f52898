// Package job models the ingestion job state machine.
package job

import (
	"fmt"
	"time"

	"github.com/kailas-cloud/docrag/internal/domain"
	"github.com/kailas-cloud/docrag/internal/domain/format"
)

// Status is the ingestion job state.
type Status string

// Job statuses in forward order. Failed is terminal and reachable from any non-terminal status.
const (
	Queued     Status = "queued"
	Extracting Status = "extracting"
	Chunking   Status = "chunking"
	Embedding  Status = "embedding"
	Indexing   Status = "indexing"
	Completed  Status = "completed"
	Failed     Status = "failed"
)

var ordinals = map[Status]int{
	Queued:     0,
	Extracting: 1,
	Chunking:   2,
	Embedding:  3,
	Indexing:   4,
	Completed:  5,
}

// Progress percent reported when a stage starts.
var stageProgress = map[Status]int{
	Queued:     0,
	Extracting: 10,
	Chunking:   40,
	Embedding:  70,
	Indexing:   90,
	Completed:  100,
}

// IsValid checks if the status is one of the supported values.
func (s Status) IsValid() bool {
	if s == Failed {
		return true
	}
	_, ok := ordinals[s]
	return ok
}

// IsTerminal reports whether no further transition is allowed.
func (s Status) IsTerminal() bool { return s == Completed || s == Failed }

// Ordinal returns the position in the forward order; -1 for failed or unknown.
func (s Status) Ordinal() int {
	if o, ok := ordinals[s]; ok {
		return o
	}
	return -1
}

// Progress returns the progress percent associated with entering the status.
func (s Status) Progress() int { return stageProgress[s] }

// CanTransition reports whether from → to is a legal move.
// Same-status updates are allowed so a stage can refresh its message.
func CanTransition(from, to Status) bool {
	if !from.IsValid() || !to.IsValid() {
		return false
	}
	if from.IsTerminal() {
		return false
	}
	if to == Failed {
		return true
	}
	return to.Ordinal() >= from.Ordinal()
}

// Job is one document's ingestion from upload to indexed (or failed).
type Job struct {
	ID             string
	DocumentID     string
	Filename       string
	Status         Status
	Progress       int
	Message        string
	ChunksAdded    int
	WordCount      int
	DetectedFormat format.Format
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// New creates a queued job.
func New(id, documentID, filename string, now time.Time) Job {
	return Job{
		ID:         id,
		DocumentID: documentID,
		Filename:   filename,
		Status:     Queued,
		Progress:   Queued.Progress(),
		Message:    "Queued for processing",
		CreatedAt:  now.UTC(),
		UpdatedAt:  now.UTC(),
	}
}

// Patch is a partial job update. Nil fields are left unchanged.
type Patch struct {
	Status         *Status
	Progress       *int
	Message        *string
	ChunksAdded    *int
	WordCount      *int
	DetectedFormat *format.Format
}

// Apply validates the patch against the forward-only rules and returns the updated job.
// Progress may not decrease unless the job is failing.
func (j Job) Apply(p Patch, now time.Time) (Job, error) {
	next := j

	if p.Status != nil {
		if !CanTransition(j.Status, *p.Status) {
			return j, fmt.Errorf("%s -> %s: %w", j.Status, *p.Status, domain.ErrInvalidTransition)
		}
		next.Status = *p.Status
	} else if j.Status.IsTerminal() {
		return j, fmt.Errorf("job %s is %s: %w", j.ID, j.Status, domain.ErrInvalidTransition)
	}

	if p.Progress != nil {
		v := *p.Progress
		if v < 0 || v > 100 {
			return j, fmt.Errorf("progress %d out of range: %w", v, domain.ErrInvalidTransition)
		}
		if v < j.Progress && next.Status != Failed {
			return j, fmt.Errorf("progress %d -> %d: %w", j.Progress, v, domain.ErrInvalidTransition)
		}
		next.Progress = v
	}
	if p.Message != nil {
		next.Message = *p.Message
	}
	if p.ChunksAdded != nil {
		next.ChunksAdded = *p.ChunksAdded
	}
	if p.WordCount != nil {
		next.WordCount = *p.WordCount
	}
	if p.DetectedFormat != nil {
		next.DetectedFormat = *p.DetectedFormat
	}

	next.UpdatedAt = now.UTC()
	return next, nil
}

// Advance builds a patch entering the given stage with its default progress.
func Advance(s Status, message string) Patch {
	progress := s.Progress()
	return Patch{Status: &s, Progress: &progress, Message: &message}
}

// Fail builds a patch moving the job to failed with a reason.
func Fail(reason string) Patch {
	s := Failed
	return Patch{Status: &s, Message: &reason}
}
