package dotnet

import (
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/ritzau/slnkit/pkg/logging"
)

// Shell scaffolds solutions through the dotnet CLI
type Shell struct {
	Executor Executor
}

// NewShell creates a shell over the given executor
func NewShell(e Executor) *Shell {
	return &Shell{Executor: e}
}

var versionRegex = regexp.MustCompile(`(?m)^\s*(\d+)\.(\d+)\.(\d+)`)

// SDKVersion returns the installed SDK version and its major number
func (s *Shell) SDKVersion(ctx context.Context) (string, int, error) {
	out, err := s.Executor.Run(ctx, "", "--version")
	if err != nil {
		return "", 0, err
	}
	m := versionRegex.FindStringSubmatch(string(out))
	if m == nil {
		return "", 0, fmt.Errorf("unrecognised dotnet version output %q", strings.TrimSpace(string(out)))
	}
	major, _ := strconv.Atoi(m[1])
	return strings.TrimSpace(m[0]), major, nil
}

// CreateSolution creates an empty solution file at path. SDK 9 and later
// default to the XML container, so the classic format is requested
// explicitly.
func (s *Shell) CreateSolution(ctx context.Context, path string) error {
	version, major, err := s.SDKVersion(ctx)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	args := []string{"new", "sln", "--name", name, "--output", dir}
	if major >= 9 {
		args = append(args, "--format", "sln")
	}

	logging.InfoContext(ctx, "creating solution", "path", path, "sdk", version)
	if _, err := s.Executor.Run(ctx, dir, args...); err != nil {
		return fmt.Errorf("creating solution %s: %w", path, err)
	}
	return nil
}

// AddProjects adds project files to the root of a solution with
// `dotnet sln add`. Folder placement is left to the solution model.
func (s *Shell) AddProjects(ctx context.Context, solution string, projects ...string) error {
	if len(projects) == 0 {
		return nil
	}
	args := append([]string{"sln", solution, "add", "--in-root"}, projects...)
	if _, err := s.Executor.Run(ctx, filepath.Dir(solution), args...); err != nil {
		return fmt.Errorf("adding projects to %s: %w", solution, err)
	}
	logging.InfoContext(ctx, "added projects through dotnet", "solution", solution, "count", len(projects))
	return nil
}
