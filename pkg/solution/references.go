package solution

import (
	"errors"
	"fmt"
	"os"

	"github.com/ritzau/slnkit/pkg/logging"
	"github.com/ritzau/slnkit/pkg/model"
)

// Include is one project reference as written in a project file, together
// with the absolute path it resolves to.
type Include struct {
	Raw  string
	Path string
}

// RefCache holds resolved includes per node for the duration of one command.
// A nil *RefCache disables caching.
type RefCache struct {
	entries map[string][]Include
}

// NewRefCache creates an empty cache
func NewRefCache() *RefCache {
	return &RefCache{entries: make(map[string][]Include)}
}

// Invalidate forgets the includes of a node whose file or path changed
func (c *RefCache) Invalidate(nodeID string) {
	if c != nil {
		delete(c.entries, nodeID)
	}
}

func (c *RefCache) get(nodeID string) ([]Include, bool) {
	if c == nil {
		return nil, false
	}
	includes, ok := c.entries[nodeID]
	return includes, ok
}

func (c *RefCache) put(nodeID string, includes []Include) {
	if c != nil {
		c.entries[nodeID] = includes
	}
}

// Includes returns the project references of node, resolved against the
// node's current path. Folders have none.
func (s *Solution) Includes(node model.Node, cache *RefCache) ([]Include, error) {
	n, ok := s.byID[node.ID]
	if !ok {
		return nil, fmt.Errorf("unknown node %s", node.ID)
	}
	if !n.IsBuildable() {
		return nil, nil
	}
	if cached, ok := cache.get(n.ID); ok {
		return cached, nil
	}

	raw, err := s.evaluator.ProjectReferences(n.Path)
	if err != nil {
		return nil, err
	}
	includes := make([]Include, 0, len(raw))
	for _, r := range raw {
		includes = append(includes, Include{Raw: r, Path: ResolveInclude(n.Path, r)})
	}
	cache.put(n.ID, includes)
	return includes, nil
}

// References returns the nodes of this solution that node references.
// Includes that resolve outside the solution yield no edge.
func (s *Solution) References(node model.Node, cache *RefCache) ([]model.Node, error) {
	includes, err := s.Includes(node, cache)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var result []model.Node
	for _, inc := range includes {
		dep, ok := s.NodeByPath(inc.Path)
		if !ok || !dep.IsBuildable() || seen[dep.ID] {
			continue
		}
		seen[dep.ID] = true
		result = append(result, dep)
	}
	return result, nil
}

// FindReferencingProjects returns every buildable node with a reference to
// target's current path. Projects whose file is missing are skipped.
func (s *Solution) FindReferencingProjects(target model.Node, cache *RefCache) ([]model.Node, error) {
	t, ok := s.byID[target.ID]
	if !ok {
		return nil, fmt.Errorf("unknown node %s", target.ID)
	}

	var result []model.Node
	for _, n := range s.nodes {
		if !n.IsBuildable() || n.ID == t.ID {
			continue
		}
		includes, err := s.Includes(*n, cache)
		if errors.Is(err, os.ErrNotExist) {
			logging.Warn("skipping project with missing file", "project", n.Path)
			continue
		}
		if err != nil {
			return nil, err
		}
		for _, inc := range includes {
			if SamePath(inc.Path, t.Path) {
				result = append(result, *n)
				break
			}
		}
	}
	return result, nil
}
