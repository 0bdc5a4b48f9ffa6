package logging

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// StartRun tags ctx with a fresh run ID and logs the start of a command.
// The returned function logs completion or failure with the elapsed time.
func StartRun(ctx context.Context, command string) (context.Context, func(err error)) {
	runID := GetRunID(ctx)
	if runID == "" {
		runID = uuid.New().String()
		ctx = WithRunID(ctx, runID)
	}

	start := time.Now()
	DebugContext(ctx, "command started", "command", command)

	return ctx, func(err error) {
		duration := time.Since(start)
		if err != nil {
			ErrorContext(ctx, "command failed",
				"command", command,
				"durationMs", duration.Milliseconds(),
				"error", err,
			)
			return
		}
		DebugContext(ctx, "command completed",
			"command", command,
			"durationMs", duration.Milliseconds(),
		)
	}
}
