// Package closure discovers every project a set of seed projects depends on,
// directly or transitively, and inserts the ones a solution is missing.
package closure

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/ritzau/slnkit/pkg/cycles"
	"github.com/ritzau/slnkit/pkg/graph"
	"github.com/ritzau/slnkit/pkg/logging"
	"github.com/ritzau/slnkit/pkg/model"
	"github.com/ritzau/slnkit/pkg/solution"
)

// Result of a closure discovery
type Result struct {
	Seeds      []model.Node                 // Seed projects, in argument order
	Discovered []model.Node                 // Dependencies inserted by this call
	All        []model.Node                 // Seeds and every project reachable from them
	Missing    []*model.MissingProjectError // Seeds or references whose file does not exist
	Cycles     []cycles.ReferenceCycle      // Reference cycles among All
}

// frontier is an insertion-ordered set of node ids
type frontier struct {
	ids    []string
	member map[string]bool
}

func (f *frontier) push(id string) {
	if f.member[id] {
		return
	}
	f.member[id] = true
	f.ids = append(f.ids, id)
}

func (f *frontier) pop() string {
	id := f.ids[0]
	f.ids = f.ids[1:]
	delete(f.member, id)
	return id
}

// Discover inserts the seeds and their transitive references into s.
// Projects already in s are traversed but not inserted again. A missing
// project is recorded and the rest of the batch continues.
func Discover(seedPaths []string, s *solution.Solution, cache *solution.RefCache) (*Result, error) {
	result := &Result{}
	visited := make(map[string]bool)
	next := &frontier{member: make(map[string]bool)}

	visit := func(n model.Node) {
		visited[n.ID] = true
		next.push(n.ID)
		result.All = append(result.All, n)
	}

	for _, path := range seedPaths {
		n, err := s.AddExistingProject(path)
		var dup *model.DuplicateProjectError
		var missing *model.MissingProjectError
		switch {
		case errors.As(err, &dup):
			n = dup.Existing
		case errors.As(err, &missing):
			logging.Warn("seed project not found", "path", path)
			result.Missing = append(result.Missing, missing)
			continue
		case err != nil:
			return nil, err
		}

		if visited[n.ID] {
			continue
		}
		result.Seeds = append(result.Seeds, n)
		visit(n)
	}

	for len(next.ids) > 0 {
		current, _ := s.NodeByID(next.pop())

		includes, err := s.Includes(current, cache)
		if errors.Is(err, os.ErrNotExist) {
			result.Missing = append(result.Missing, &model.MissingProjectError{Target: current.Path})
			continue
		}
		if err != nil {
			return nil, err
		}

		for _, inc := range includes {
			dep, known := s.NodeByPath(inc.Path)
			if known {
				if dep.IsBuildable() && !visited[dep.ID] {
					visit(dep)
				}
				continue
			}

			dep, err := s.AddExistingProject(inc.Path)
			var missing *model.MissingProjectError
			if errors.As(err, &missing) {
				missing.ReferencedBy = current.Path
				logging.Warn("referenced project not found",
					"project", current.Name, "include", inc.Raw, "resolved", filepath.Clean(inc.Path))
				result.Missing = append(result.Missing, missing)
				continue
			}
			if err != nil {
				return nil, err
			}

			logging.Debug("discovered dependency", "project", dep.Name, "referencedBy", current.Name)
			result.Discovered = append(result.Discovered, dep)
			visit(dep)
		}
	}

	rg, err := graph.Build(s, result.All, cache)
	if err != nil {
		return nil, err
	}
	result.Cycles = cycles.FindReferenceCycles(rg)
	for _, c := range result.Cycles {
		logging.Warn("circular project references", "projects", c.Names)
	}

	logging.Info("reference closure complete",
		"seeds", len(result.Seeds), "discovered", len(result.Discovered),
		"reachable", len(result.All), "missing", len(result.Missing))
	return result, nil
}
