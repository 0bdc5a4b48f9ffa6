// Package workflow implements the slnkit commands on top of the solution
// model: each command loads or creates its solutions, mutates them in memory
// and persists them as the last step.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/ritzau/slnkit/pkg/closure"
	"github.com/ritzau/slnkit/pkg/config"
	"github.com/ritzau/slnkit/pkg/dotnet"
	"github.com/ritzau/slnkit/pkg/finder"
	"github.com/ritzau/slnkit/pkg/logging"
	"github.com/ritzau/slnkit/pkg/model"
	"github.com/ritzau/slnkit/pkg/solution"
)

// Runner orchestrates the commands
type Runner struct {
	cfg   *config.Config
	shell *dotnet.Shell
	mu    sync.Mutex // One command mutates solutions at a time
}

// NewRunner creates a runner. shell is only used to scaffold solutions that
// do not exist yet and may be nil when cfg.DotnetCLI is false.
func NewRunner(cfg *config.Config, shell *dotnet.Shell) *Runner {
	return &Runner{cfg: cfg, shell: shell}
}

// Placement records a node put into a solution folder
type Placement struct {
	Node   model.Node
	Folder string // Hierarchy name of the folder
}

// AddResult describes an add command
type AddResult struct {
	Solution string
	Created  bool // The solution did not exist before the command
	Closure  *closure.Result
	Placed   []Placement
	DryRun   bool
}

// AddFolder adds every project under dir, and everything they reference, to
// the solution.
func (r *Runner) AddFolder(ctx context.Context, dir string) (*AddResult, error) {
	if dir == "" {
		dir = r.cfg.Root
	}
	projects, err := finder.FindProjectFiles(dir)
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", dir, err)
	}
	if len(projects) == 0 {
		return nil, fmt.Errorf("no project files under %s", dir)
	}

	logging.InfoContext(ctx, "adding projects from folder", "dir", dir, "count", len(projects))
	return r.add(ctx, projects)
}

// AddProject adds one project and its reference closure to the solution.
// The argument is a project path, a project directory or a project name.
func (r *Runner) AddProject(ctx context.Context, arg string) (*AddResult, error) {
	path, err := finder.ResolveProject(r.cfg.Root, arg)
	if err != nil {
		return nil, err
	}
	return r.add(ctx, []string{path})
}

func (r *Runner) add(ctx context.Context, seeds []string) (*AddResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	path, err := r.solutionPath()
	if err != nil {
		return nil, err
	}
	s, created, err := r.openOrCreate(ctx, path, seeds)
	if err != nil {
		return nil, err
	}

	result := &AddResult{Solution: s.Path(), Created: created, DryRun: r.cfg.DryRun}
	result.Closure, err = closure.Discover(seeds, s, solution.NewRefCache())
	if err != nil {
		return nil, err
	}
	if len(result.Closure.Seeds) == 0 {
		errs := make([]error, 0, len(result.Closure.Missing))
		for _, m := range result.Closure.Missing {
			errs = append(errs, m)
		}
		return result, errors.Join(errs...)
	}

	if err := r.place(s, newSeeds(s, result), r.cfg.Folder, result); err != nil {
		return nil, err
	}
	if err := r.place(s, result.Closure.Discovered, r.cfg.DependenciesFolder, result); err != nil {
		return nil, err
	}

	if err := r.save(ctx, s); err != nil {
		return nil, err
	}
	return result, nil
}

// newSeeds returns the seeds this command put into the solution. Seeds that
// were already listed keep their folder.
func newSeeds(s *solution.Solution, result *AddResult) []model.Node {
	if result.Created {
		return result.Closure.Seeds
	}
	added := make(map[string]bool)
	for _, n := range s.Added() {
		added[n.ID] = true
	}
	var seeds []model.Node
	for _, n := range result.Closure.Seeds {
		if added[n.ID] {
			seeds = append(seeds, n)
		}
	}
	return seeds
}

// place puts nodes into the folder at folderPath. An empty path leaves them
// where they are.
func (r *Runner) place(s *solution.Solution, nodes []model.Node, folderPath string, result *AddResult) error {
	if folderPath == "" || len(nodes) == 0 {
		return nil
	}
	folder, err := s.GetOrCreateFolder(folderPath)
	if err != nil {
		return fmt.Errorf("folder %q: %w", folderPath, err)
	}

	name := s.HierarchyName(folder)
	for _, n := range nodes {
		if parent, ok := s.ParentOf(n); ok && parent.ID == folder.ID {
			continue
		}
		if err := s.AddToFolder(n, folder); err != nil {
			return err
		}
		result.Placed = append(result.Placed, Placement{Node: n, Folder: name})
	}
	return nil
}

// solutionPath returns the configured solution, or the only solution under
// the root when none is configured.
func (r *Runner) solutionPath() (string, error) {
	if r.cfg.Solution != "" {
		return filepath.Abs(r.cfg.Solution)
	}

	found, err := finder.FindSolutionFiles(r.cfg.Root)
	if err != nil {
		return "", err
	}
	switch len(found) {
	case 0:
		return "", fmt.Errorf("no solution file under %s, pass --solution", r.cfg.Root)
	case 1:
		return found[0], nil
	default:
		return "", fmt.Errorf("%d solution files under %s, pass --solution to pick one", len(found), r.cfg.Root)
	}
}

// openOrCreate loads the solution at path. A missing solution is scaffolded
// with the dotnet CLI, seeded with the given projects, or created in memory
// when the CLI is disabled or nothing may be written.
func (r *Runner) openOrCreate(ctx context.Context, path string, seeds []string) (*solution.Solution, bool, error) {
	if _, err := os.Stat(path); err == nil {
		s, err := solution.Load(path, solution.Deps{})
		return s, false, err
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, false, err
	}

	if !r.cfg.DotnetCLI || r.cfg.DryRun || r.shell == nil {
		logging.InfoContext(ctx, "creating solution", "path", path, "dryRun", r.cfg.DryRun)
		s, err := solution.New(path, solution.Deps{})
		return s, true, err
	}

	if err := r.shell.CreateSolution(ctx, path); err != nil {
		return nil, false, err
	}
	if err := r.shell.AddProjects(ctx, path, seeds...); err != nil {
		return nil, false, err
	}
	s, err := solution.Load(path, solution.Deps{})
	return s, true, err
}

func (r *Runner) loadSolution() (*solution.Solution, error) {
	path, err := r.solutionPath()
	if err != nil {
		return nil, err
	}
	return solution.Load(path, solution.Deps{})
}

func (r *Runner) save(ctx context.Context, s *solution.Solution) error {
	if r.cfg.DryRun {
		logging.InfoContext(ctx, "dry run, nothing written", "solution", s.Path())
		return nil
	}
	return s.Save()
}
