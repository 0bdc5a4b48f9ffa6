package workflow

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ritzau/slnkit/pkg/finder"
	"github.com/ritzau/slnkit/pkg/logging"
	"github.com/ritzau/slnkit/pkg/model"
	"github.com/ritzau/slnkit/pkg/move"
	"github.com/ritzau/slnkit/pkg/projtype"
	"github.com/ritzau/slnkit/pkg/solution"
)

// SolutionMove is the move report of one solution
type SolutionMove struct {
	Solution string
	Report   *move.Report
}

// MoveResult describes a move on disk across every affected solution
type MoveResult struct {
	Moves     []SolutionMove
	Relocated bool
	DryRun    bool
}

// MoveOnDisk moves a project to destination and repairs every solution that
// contains it. All solutions are repaired in memory, the files are moved
// once, and only then is anything written.
func (r *Runner) MoveOnDisk(ctx context.Context, projectArg, destination string) (*MoveResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	project, err := finder.ResolveProject(r.cfg.Root, projectArg)
	if err != nil {
		return nil, err
	}
	newPath, err := destinationPath(project, destination)
	if err != nil {
		return nil, err
	}

	solutions, err := r.solutionsContaining(ctx, project)
	if err != nil {
		return nil, err
	}
	if len(solutions) == 0 {
		return nil, fmt.Errorf("%s is not in any solution", project)
	}

	// A single solution lets the engine relocate and re-key its own documents
	var relocator move.Relocator
	if len(solutions) == 1 && !r.cfg.DryRun {
		relocator = move.DiskRelocator{}
	}

	result := &MoveResult{DryRun: r.cfg.DryRun}
	for _, s := range solutions {
		node, _ := s.NodeByPath(project)
		engine := &move.Engine{Solution: s, Cache: solution.NewRefCache(), Relocator: relocator}
		report, err := engine.Move(node, newPath)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", s.Path(), err)
		}
		result.Moves = append(result.Moves, SolutionMove{Solution: s.Path(), Report: report})
	}

	first := result.Moves[0].Report
	if first.NoOp() || r.cfg.DryRun {
		return result, nil
	}

	if relocator == nil {
		if err := (move.DiskRelocator{}).Relocate(first.OldPath, first.NewPath); err != nil {
			return nil, fmt.Errorf("relocating %s: %w", project, err)
		}
		for i, s := range solutions {
			move.RelocateDocuments(s.Evaluator(), first.OldPath, first.NewPath)
			if move.RelocateSolutionFile(s, first.OldPath, first.NewPath) {
				result.Moves[i].Solution = s.Path()
			}
			result.Moves[i].Report.Relocated = true
		}
	}
	result.Relocated = true

	for _, s := range solutions {
		if err := s.Save(); err != nil {
			return result, err
		}
	}
	logging.InfoContext(ctx, "project moved", "from", first.OldPath, "to", first.NewPath, "solutions", len(solutions))
	return result, nil
}

// destinationPath turns the destination argument into the new project file
// path. A project file path is taken as is. An existing non-empty directory
// receives the project's directory, like mv does. Any other directory
// becomes the project's new directory.
func destinationPath(project, destination string) (string, error) {
	abs, err := filepath.Abs(destination)
	if err != nil {
		return "", err
	}
	if projtype.IsProjectFile(abs) {
		return abs, nil
	}

	entries, err := os.ReadDir(abs)
	if err == nil && len(entries) > 0 {
		abs = filepath.Join(abs, filepath.Base(filepath.Dir(project)))
	}
	return filepath.Join(abs, filepath.Base(project)), nil
}

// solutionsContaining loads the solutions a move must repair: the configured
// one, or with find-solutions every solution under the root that lists the
// project.
func (r *Runner) solutionsContaining(ctx context.Context, project string) ([]*solution.Solution, error) {
	var paths []string
	if r.cfg.FindSolutions {
		found, err := finder.FindSolutionFiles(r.cfg.Root)
		if err != nil {
			return nil, err
		}
		paths = found
	} else {
		path, err := r.solutionPath()
		if err != nil {
			return nil, err
		}
		paths = []string{path}
	}

	var result []*solution.Solution
	for _, path := range paths {
		s, err := solution.Load(path, solution.Deps{})
		if err != nil {
			if r.cfg.FindSolutions {
				logging.WarnContext(ctx, "skipping unreadable solution", "path", path, "error", err)
				continue
			}
			return nil, err
		}
		if _, ok := s.NodeByPath(project); !ok {
			logging.DebugContext(ctx, "project not in solution", "solution", path)
			continue
		}
		result = append(result, s)
	}
	return result, nil
}

// FolderResult describes a move into a solution folder
type FolderResult struct {
	Solution string
	Node     model.Node
	Previous string // Hierarchy name of the former parent, empty at the root
	Folder   string
	DryRun   bool
}

// MoveToFolder places a project or folder of the solution into the folder at
// folderPath, creating missing folders on the way.
func (r *Runner) MoveToFolder(ctx context.Context, arg, folderPath string) (*FolderResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, err := r.loadSolution()
	if err != nil {
		return nil, err
	}
	node, err := r.findNode(s, arg)
	if err != nil {
		return nil, err
	}
	folder, err := s.GetOrCreateFolder(folderPath)
	if err != nil {
		return nil, fmt.Errorf("folder %q: %w", folderPath, err)
	}

	result := &FolderResult{Solution: s.Path(), Node: node, Folder: s.HierarchyName(folder), DryRun: r.cfg.DryRun}
	if parent, ok := s.ParentOf(node); ok {
		result.Previous = s.HierarchyName(parent)
	}
	if err := s.AddToFolder(node, folder); err != nil {
		return nil, err
	}

	if err := r.save(ctx, s); err != nil {
		return nil, err
	}
	return result, nil
}

// findNode looks arg up by entry name first, then as a project on disk
func (r *Runner) findNode(s *solution.Solution, arg string) (model.Node, error) {
	if !projtype.IsProjectFile(arg) {
		matches := s.NodesByName(arg)
		switch len(matches) {
		case 0:
		case 1:
			return matches[0], nil
		default:
			names := make([]string, 0, len(matches))
			for _, m := range matches {
				names = append(names, s.HierarchyName(m))
			}
			return model.Node{}, &model.AmbiguousProjectNameError{Name: arg, Matches: names}
		}
	}

	path, err := finder.ResolveProject(r.cfg.Root, arg)
	if err != nil {
		return model.Node{}, err
	}
	node, ok := s.NodeByPath(path)
	if !ok {
		return model.Node{}, fmt.Errorf("%s is not in %s: %w", path, s.Path(), model.ErrMissingProject)
	}
	return node, nil
}
