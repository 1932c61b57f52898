// Package job tracks ingestion jobs in memory.
package job

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/kailas-cloud/docrag/internal/domain"
	domjob "github.com/kailas-cloud/docrag/internal/domain/job"
)

// Tracker implements usecase/ingest.JobTracker. Every read and update happens
// under one mutex, so a Get issued after an Update returns sees that update.
type Tracker struct {
	mu   sync.RWMutex
	jobs map[string]domjob.Job
	now  func() time.Time
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) { t.now = now }
}

// New creates an empty tracker.
func New(opts ...Option) *Tracker {
	t := &Tracker{
		jobs: make(map[string]domjob.Job),
		now:  time.Now,
	}
	for _, o := range opts {
		o(t)
	}
	return t
}

// Create registers a new job. Ids must be unique.
func (t *Tracker) Create(_ context.Context, j domjob.Job) error {
	if j.ID == "" {
		return fmt.Errorf("job id is required: %w", domain.ErrInvalidInput)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.jobs[j.ID]; ok {
		return fmt.Errorf("job %s: %w", j.ID, domain.ErrJobExists)
	}
	t.jobs[j.ID] = j
	return nil
}

// Get returns a snapshot of the job.
func (t *Tracker) Get(_ context.Context, id string) (domjob.Job, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	j, ok := t.jobs[id]
	if !ok {
		return domjob.Job{}, fmt.Errorf("job %s: %w", id, domain.ErrJobNotFound)
	}
	return j, nil
}

// Update applies a forward-only patch and returns the updated job.
func (t *Tracker) Update(_ context.Context, id string, p domjob.Patch) (domjob.Job, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	j, ok := t.jobs[id]
	if !ok {
		return domjob.Job{}, fmt.Errorf("job %s: %w", id, domain.ErrJobNotFound)
	}
	next, err := j.Apply(p, t.now())
	if err != nil {
		return j, fmt.Errorf("job %s: %w", id, err)
	}
	t.jobs[id] = next
	return next, nil
}

// List returns every job, oldest first.
func (t *Tracker) List(_ context.Context) ([]domjob.Job, error) {
	t.mu.RLock()
	out := make([]domjob.Job, 0, len(t.jobs))
	for _, j := range t.jobs {
		out = append(out, j)
	}
	t.mu.RUnlock()

	sort.Slice(out, func(a, b int) bool {
		if !out[a].CreatedAt.Equal(out[b].CreatedAt) {
			return out[a].CreatedAt.Before(out[b].CreatedAt)
		}
		return out[a].ID < out[b].ID
	})
	return out, nil
}
