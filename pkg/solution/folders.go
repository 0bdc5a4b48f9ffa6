package solution

import (
	"fmt"
	"strings"

	"github.com/ritzau/slnkit/pkg/model"
)

// AddToFolder makes folder the parent of node, replacing any previous parent.
// The membership map is left untouched on error.
func (s *Solution) AddToFolder(node, folder model.Node) error {
	if node.ID == folder.ID {
		return fmt.Errorf("%s: %w", folder.Name, model.ErrSelfContainment)
	}
	if _, ok := s.byID[node.ID]; !ok {
		return fmt.Errorf("unknown node %s", node.ID)
	}
	f, ok := s.byID[folder.ID]
	if !ok {
		return fmt.Errorf("unknown folder %s", folder.ID)
	}
	if !f.IsFolder() {
		return fmt.Errorf("%s: %w", f.Name, model.ErrNotAFolder)
	}

	// folder must not be node or any of node's descendants
	for id := folder.ID; id != ""; id = s.parents[id] {
		if id == node.ID {
			return fmt.Errorf("%s inside %s: %w", node.Name, f.Name, model.ErrSelfContainment)
		}
	}

	s.parents[node.ID] = folder.ID
	return nil
}

// RemoveFromFolder moves node to the root level
func (s *Solution) RemoveFromFolder(node model.Node) {
	delete(s.parents, node.ID)
}

// ParentOf returns the folder containing node
func (s *Solution) ParentOf(node model.Node) (model.Node, bool) {
	parentID, ok := s.parents[node.ID]
	if !ok {
		return model.Node{}, false
	}
	return s.NodeByID(parentID)
}

// Children returns the direct members of folder, in insertion order
func (s *Solution) Children(folder model.Node) []model.Node {
	var result []model.Node
	for _, n := range s.nodes {
		if s.parents[n.ID] == folder.ID {
			result = append(result, *n)
		}
	}
	return result
}

// RootNodes returns the entries that are not inside any folder
func (s *Solution) RootNodes() []model.Node {
	var result []model.Node
	for _, n := range s.nodes {
		if _, nested := s.parents[n.ID]; !nested {
			result = append(result, *n)
		}
	}
	return result
}

// HierarchyName returns the backslash-separated folder path of node,
// ending with the node's own name.
func (s *Solution) HierarchyName(node model.Node) string {
	names := []string{node.Name}
	for id := s.parents[node.ID]; id != ""; id = s.parents[id] {
		names = append([]string{s.byID[id].Name}, names...)
	}
	return strings.Join(names, `\`)
}

// SplitFolderPath splits a folder path on either separator. Empty paths and
// empty segments are rejected.
func SplitFolderPath(path string) ([]string, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("empty folder path: %w", model.ErrInvalidFolderPath)
	}
	segments := strings.Split(strings.ReplaceAll(path, "/", `\`), `\`)
	for i, seg := range segments {
		segments[i] = strings.TrimSpace(seg)
		if segments[i] == "" {
			return nil, fmt.Errorf("%q has an empty segment: %w", path, model.ErrInvalidFolderPath)
		}
	}
	return segments, nil
}

// GetOrCreateFolder resolves a folder path such as `Libs\Core`, creating the
// folders that do not exist yet. Calling it again with the same path returns
// the same folder and creates nothing.
func (s *Solution) GetOrCreateFolder(path string) (model.Node, error) {
	segments, err := SplitFolderPath(path)
	if err != nil {
		return model.Node{}, err
	}

	var parent *model.Node
	for _, seg := range segments {
		var candidates []model.Node
		if parent == nil {
			candidates = s.RootNodes()
		} else {
			candidates = s.Children(*parent)
		}

		var found *model.Node
		for _, c := range candidates {
			if c.Name != seg {
				continue
			}
			if !c.IsFolder() {
				return model.Node{}, fmt.Errorf("%q: %q is a project: %w", path, seg, model.ErrInvalidFolderPath)
			}
			found = s.byID[c.ID]
			break
		}

		if found == nil {
			found = s.addFolder(seg)
			if parent != nil {
				if err := s.AddToFolder(*found, *parent); err != nil {
					return model.Node{}, err
				}
			}
		}
		parent = found
	}

	return *parent, nil
}
