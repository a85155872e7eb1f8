// Package sync runs the ingestion pipeline: dependency-ordered stages that
// fetch from the source API and upsert into Postgres. A failed stage never
// blocks unrelated stages; its transitive dependents are skipped so the
// database never gains rows whose parents were not refreshed first.
package sync

import (
	"context"

	"github.com/projectares/aresdata/internal/store"
)

// Status is the lifecycle state of a stage within one run.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
	// StatusSkipped means a dependency (direct or transitive) failed, so
	// the stage never ran.
	StatusSkipped Status = "skipped-due-to-dependency"
)

// Stage is one unit of the pipeline.
type Stage struct {
	Name string
	// DependsOn names stages that must succeed first.
	DependsOn []string
	// Priority breaks ties between stages that become runnable together;
	// lower runs first.
	Priority int
	// RequiresRows names tables that must be non-empty before the stage
	// touches its own entity. An empty required table is a structural
	// failure, not a validation skip.
	RequiresRows []string
	Run          StageFunc
}

// StageFunc does the work. It returns per-record counters; a non-nil error
// means the stage as a whole failed (the counters may still be partial).
type StageFunc func(ctx context.Context) (*store.Result, error)
