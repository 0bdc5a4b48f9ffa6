// Package dotnet drives the dotnet command-line tool for solution scaffolding.
package dotnet

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/ritzau/slnkit/pkg/logging"
)

// Executor handles the execution of dotnet commands
type Executor interface {
	Run(ctx context.Context, dir string, args ...string) ([]byte, error)
}

// DefaultExecutor is the default implementation of Executor that runs actual commands
type DefaultExecutor struct {
	Binary string
}

// NewExecutor creates an executor for the given dotnet binary
func NewExecutor(binary string) Executor {
	if binary == "" {
		binary = "dotnet"
	}
	return &DefaultExecutor{Binary: binary}
}

// Run executes dotnet with args in dir and returns the combined output.
// It respects the provided context for cancellation.
func (e *DefaultExecutor) Run(ctx context.Context, dir string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, e.Binary, args...)
	cmd.Dir = dir

	logging.DebugContext(ctx, "running dotnet", "dir", dir, "args", strings.Join(args, " "))
	output, err := cmd.CombinedOutput()
	if err != nil {
		return nil, fmt.Errorf("%s %s failed: %w\nOutput: %s", e.Binary, strings.Join(args, " "), err, string(output))
	}

	return output, nil
}
