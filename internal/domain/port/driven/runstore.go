package driven

import (
	"context"

	"github.com/ericfisherdev/profilesync/internal/domain/model"
)

// RunStore defines the driven port for the synchronization history log.
// History is ancillary: callers log and continue when a store operation
// fails, so a sync result never depends on it.
type RunStore interface {
	// Record persists one run and its sources, returning the run ID.
	Record(ctx context.Context, run model.SyncRun) (int64, error)

	// List returns the most recent runs, newest first, including their
	// sources. limit <= 0 means no limit.
	List(ctx context.Context, limit int) ([]model.SyncRun, error)
}
