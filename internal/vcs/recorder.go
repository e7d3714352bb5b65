package vcs

import (
	"context"
	"sync"

	"github.com/felixgeelhaar/taskflow/internal/commit"
)

// Recorder is an in-memory sink used for dry runs and tests. It keeps
// the commit records in emission order.
type Recorder struct {
	mu      sync.Mutex
	records []commit.Record
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Commit records the request without touching any repository.
func (r *Recorder) Commit(_ context.Context, rec commit.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, rec)
	return nil
}

// Records returns a copy of everything committed so far.
func (r *Recorder) Records() []commit.Record {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]commit.Record(nil), r.records...)
}

// Kinds returns the commit kinds in emission order.
func (r *Recorder) Kinds() []commit.Kind {
	r.mu.Lock()
	defer r.mu.Unlock()
	kinds := make([]commit.Kind, len(r.records))
	for i, rec := range r.records {
		kinds[i] = rec.Kind
	}
	return kinds
}
