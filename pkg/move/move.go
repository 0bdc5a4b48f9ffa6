// Package move relocates a project and repairs every reference path that the
// move invalidates: the solution's entry, other projects' references to the
// moved project and the moved project's own references.
package move

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ritzau/slnkit/pkg/logging"
	"github.com/ritzau/slnkit/pkg/model"
	"github.com/ritzau/slnkit/pkg/msbuild"
	"github.com/ritzau/slnkit/pkg/solution"
)

// Relocator physically moves a project from oldPath to newPath
type Relocator interface {
	Relocate(oldPath, newPath string) error
}

// Rewrite records one repaired include
type Rewrite struct {
	Project string // Project file that was edited, at its pre-move path
	Old     string
	New     string
}

// Report describes what a move changed
type Report struct {
	Project   model.Node // The moved node, after the move
	OldPath   string
	NewPath   string
	Inbound   []Rewrite // Other projects' references to the moved project
	Outbound  []Rewrite // The moved project's own references
	Warnings  []model.UnresolvedReferenceWarning
	Relocated bool // Files were moved on disk
}

// NoOp reports whether the move changed nothing
func (r *Report) NoOp() bool {
	return r.OldPath == r.NewPath
}

// Engine moves projects of one solution
type Engine struct {
	Solution  *solution.Solution
	Evaluator msbuild.Evaluator  // Defaults to the solution's evaluator
	Cache     *solution.RefCache // Shared with other operations of the same command
	Relocator Relocator          // nil leaves the files where they are
}

func (e *Engine) evaluator() msbuild.Evaluator {
	if e.Evaluator != nil {
		return e.Evaluator
	}
	return e.Solution.Evaluator()
}

// Move relocates node to newPath. Inbound references are repaired against
// the old path first, then the model is updated, then the node's own
// references are recomputed from the new location, and only then are the
// files moved. An include that cannot be found is reported as a warning and
// the move continues.
func (e *Engine) Move(node model.Node, newPath string) (*Report, error) {
	current, ok := e.Solution.NodeByID(node.ID)
	if !ok {
		return nil, fmt.Errorf("unknown node %s", node.ID)
	}
	if !current.IsBuildable() {
		return nil, fmt.Errorf("%s: only projects can be moved on disk", current.Name)
	}

	newPath, err := filepath.Abs(newPath)
	if err != nil {
		return nil, err
	}
	oldPath := current.Path
	report := &Report{Project: current, OldPath: oldPath, NewPath: newPath}
	if filepath.Clean(oldPath) == newPath {
		logging.Debug("project already at destination", "project", current.Name, "path", newPath)
		return report, nil
	}
	if other, taken := e.Solution.NodeByPath(newPath); taken && other.ID != current.ID {
		return nil, &model.DuplicateProjectError{Path: newPath, Existing: other}
	}

	eval := e.evaluator()
	oldDir, newDir := filepath.Dir(oldPath), filepath.Dir(newPath)
	dirMoves := !solution.SamePath(oldDir, newDir)

	// Captured while the model still has the old path
	outbound, err := e.Solution.Includes(current, e.Cache)
	if err != nil {
		return nil, fmt.Errorf("reading references of %s: %w", current.Name, err)
	}

	// 1. Inbound
	referencing, err := e.Solution.FindReferencingProjects(current, e.Cache)
	if err != nil {
		return nil, err
	}
	for _, r := range referencing {
		includes, err := e.Solution.Includes(r, e.Cache)
		if err != nil {
			return nil, err
		}
		var pending []Rewrite
		for _, inc := range includes {
			if !solution.SamePath(inc.Path, oldPath) {
				continue
			}
			rewritten, err := solution.RelativeInclude(r.Path, newPath, inc.Raw)
			if err != nil {
				report.warn(r.Path, inc.Raw, err.Error())
				continue
			}
			pending = appendRewrite(pending, Rewrite{Project: r.Path, Old: inc.Raw, New: rewritten})
		}
		e.apply(eval, report, &report.Inbound, r.Path, pending)
		e.Cache.Invalidate(r.ID)
	}

	// 2. Model
	if err := e.Solution.SetProjectPath(current, newPath); err != nil {
		return nil, err
	}
	report.Project, _ = e.Solution.NodeByID(current.ID)

	// 3. Outbound, edited in the file at its pre-move location. Every new
	// include is computed before any is written.
	var pending []Rewrite
	for _, inc := range outbound {
		target := inc.Path
		if dirMoves && isBelow(target, oldDir) {
			target = filepath.Join(newDir, target[len(oldDir)+1:])
		}
		rewritten, err := solution.RelativeInclude(newPath, target, inc.Raw)
		if err != nil {
			report.warn(oldPath, inc.Raw, err.Error())
			continue
		}
		if rewritten == inc.Raw {
			continue
		}
		pending = appendRewrite(pending, Rewrite{Project: oldPath, Old: inc.Raw, New: rewritten})
	}
	e.apply(eval, report, &report.Outbound, oldPath, pending)
	e.Cache.Invalidate(current.ID)

	if dirMoves {
		for _, n := range e.Solution.Projects() {
			if n.ID != current.ID && isBelow(n.Path, oldDir) {
				report.warn(n.Path, "", "project shares the moved directory; its solution entry was not updated")
			}
		}
	}

	// 4. Disk
	if e.Relocator != nil {
		if err := e.Relocator.Relocate(oldPath, newPath); err != nil {
			return report, fmt.Errorf("relocating %s: %w", current.Name, err)
		}
		RelocateDocuments(eval, oldPath, newPath)
		RelocateSolutionFile(e.Solution, oldPath, newPath)
		report.Relocated = true
	}

	logging.Info("moved project",
		"project", current.Name, "from", oldPath, "to", newPath,
		"inbound", len(report.Inbound), "outbound", len(report.Outbound), "warnings", len(report.Warnings))
	return report, nil
}

// RelocateDocuments re-keys the evaluator's cached documents after the
// project at oldPath was moved to newPath by a Relocator.
func RelocateDocuments(eval msbuild.Evaluator, oldPath, newPath string) {
	oldDir, newDir := filepath.Dir(oldPath), filepath.Dir(newPath)
	if solution.SamePath(oldDir, newDir) {
		eval.Relocate(oldPath, newPath)
		return
	}
	eval.Relocate(oldDir, newDir)
	eval.Relocate(filepath.Join(newDir, filepath.Base(oldPath)), newPath)
}

// RelocateSolutionFile re-targets s when its file lived in the project
// directory that moved with oldPath. It reports whether s was re-targeted.
func RelocateSolutionFile(s *solution.Solution, oldPath, newPath string) bool {
	oldDir, newDir := filepath.Dir(oldPath), filepath.Dir(newPath)
	if solution.SamePath(oldDir, newDir) || !isBelow(s.Path(), oldDir) {
		return false
	}
	target := filepath.Join(newDir, s.Path()[len(oldDir)+1:])
	logging.Info("solution file moved with the project directory", "from", s.Path(), "to", target)
	s.SetPath(target)
	return true
}

// appendRewrite adds rw unless an include with the same old value is pending
func appendRewrite(pending []Rewrite, rw Rewrite) []Rewrite {
	for _, p := range pending {
		if p.Old == rw.Old {
			return pending
		}
	}
	return append(pending, rw)
}

// apply writes the pending rewrites of one project in a single pass
func (e *Engine) apply(eval msbuild.Evaluator, report *Report, into *[]Rewrite, project string, pending []Rewrite) {
	if len(pending) == 0 {
		return
	}
	rewrites := make(map[string]string, len(pending))
	for _, rw := range pending {
		rewrites[rw.Old] = rw.New
	}

	matched, err := eval.RewriteReferences(project, rewrites)
	for _, rw := range pending {
		switch {
		case err != nil:
			report.warn(project, rw.Old, err.Error())
		case !matched[rw.Old]:
			report.warn(project, rw.Old, "include not found in project file")
		default:
			*into = append(*into, rw)
		}
	}
}

func (r *Report) warn(project, include, reason string) {
	w := model.UnresolvedReferenceWarning{Project: project, Include: include, Reason: reason}
	logging.Warn("reference not repaired", "project", project, "include", include, "reason", reason)
	r.Warnings = append(r.Warnings, w)
}

// isBelow reports whether path is inside dir
func isBelow(path, dir string) bool {
	return len(path) > len(dir)+1 &&
		strings.EqualFold(path[:len(dir)], dir) &&
		path[len(dir)] == filepath.Separator
}
