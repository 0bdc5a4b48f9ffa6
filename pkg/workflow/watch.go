package workflow

import (
	"context"
	"time"

	"github.com/ritzau/slnkit/pkg/logging"
	"github.com/ritzau/slnkit/pkg/watcher"
)

// maxWaitFactor bounds how long a steady stream of changes can postpone a batch
const maxWaitFactor = 10

// WatchBatch is the outcome of one debounced batch of changes
type WatchBatch struct {
	Changes *watcher.ChangeAnalysis
	Result  *AddResult // nil when the batch needed no solution change
	Err     error
}

// Watch adds project files that appear under dir to the solution until ctx
// is cancelled. Changed projects already in the solution have their closure
// recomputed so new references are pulled in. onBatch, if set, is called
// after every batch.
func (r *Runner) Watch(ctx context.Context, dir string, onBatch func(*WatchBatch)) error {
	if dir == "" {
		dir = r.cfg.Root
	}

	fw, err := watcher.NewFileWatcher(dir)
	if err != nil {
		return err
	}
	if err := fw.Start(ctx); err != nil {
		return err
	}

	debouncer := watcher.NewDebouncer(fw.Events(), r.cfg.Debounce, maxWaitFactor*r.cfg.Debounce)
	debouncer.Start(ctx)
	logging.InfoContext(ctx, "watching for project changes", "dir", dir, "debounce", r.cfg.Debounce.String())

	for event := range debouncer.Output() {
		changes := watcher.AnalyzeChanges(event)
		if changes.Empty() {
			continue
		}

		start := time.Now()
		batch := &WatchBatch{Changes: changes}
		batch.Result, batch.Err = r.applyChanges(ctx, changes)
		if batch.Err != nil {
			logging.ErrorContext(ctx, "failed to apply changes", "error", batch.Err)
		} else {
			logging.DebugContext(ctx, "applied changes",
				"new", len(changes.NewProjects), "changed", len(changes.ChangedProjects),
				"durationMs", time.Since(start).Milliseconds())
		}
		if onBatch != nil {
			onBatch(batch)
		}
	}

	logging.InfoContext(ctx, "stopped watching", "dir", dir)
	return nil
}

func (r *Runner) applyChanges(ctx context.Context, changes *watcher.ChangeAnalysis) (*AddResult, error) {
	seeds := append([]string(nil), changes.NewProjects...)

	if len(changes.ChangedProjects) > 0 {
		if s, err := r.loadSolution(); err == nil {
			for _, p := range changes.ChangedProjects {
				if _, ok := s.NodeByPath(p); ok {
					seeds = append(seeds, p)
				}
			}
		} else {
			logging.DebugContext(ctx, "ignoring changed projects", "error", err)
		}
	}

	if len(seeds) == 0 {
		return nil, nil
	}
	return r.add(ctx, seeds)
}
