// Package solution is the in-memory model of one solution: its projects,
// solution folders and folder membership.
//
// Nodes live in an arena owned by the Solution. Folder containment is a flat
// child -> parent map and a folder's children are computed from it, so nodes
// never point at each other.
package solution

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/ritzau/slnkit/pkg/logging"
	"github.com/ritzau/slnkit/pkg/model"
	"github.com/ritzau/slnkit/pkg/msbuild"
	"github.com/ritzau/slnkit/pkg/projtype"
	"github.com/ritzau/slnkit/pkg/sln"
)

// Deps are the collaborators a Solution reads project files through
type Deps struct {
	Classifier *projtype.Classifier
	Evaluator  msbuild.Evaluator
}

func (d Deps) withDefaults() Deps {
	if d.Evaluator == nil {
		d.Evaluator = msbuild.NewFileEvaluator()
	}
	if d.Classifier == nil {
		d.Classifier = projtype.NewClassifier(projtype.WithMarkerReader(d.Evaluator))
	}
	return d
}

// Solution is the graph model of one solution file
type Solution struct {
	path       string
	file       *sln.File
	classifier *projtype.Classifier
	evaluator  msbuild.Evaluator

	nodes   []*model.Node
	byID    map[string]*model.Node
	parents map[string]string // child id -> folder id

	entries map[string]*sln.Project // persisted entry per node id
	added   map[string]bool         // nodes inserted since load
}

// New creates an empty solution that will be saved at path
func New(path string, deps Deps) (*Solution, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	deps = deps.withDefaults()
	return &Solution{
		path:       abs,
		file:       sln.New(),
		classifier: deps.Classifier,
		evaluator:  deps.Evaluator,
		byID:       make(map[string]*model.Node),
		parents:    make(map[string]string),
		entries:    make(map[string]*sln.Project),
		added:      make(map[string]bool),
	}, nil
}

// Load reads the solution file at path. Membership entries that name
// unknown nodes or a non-folder parent are dropped with a warning.
func Load(path string, deps Deps) (*Solution, error) {
	s, err := New(path, deps)
	if err != nil {
		return nil, err
	}

	f, err := sln.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("loading solution: %w", err)
	}
	s.file = f

	dir := s.Dir()
	for _, p := range f.Projects {
		if _, dup := s.byID[p.ID]; dup {
			logging.Warn("duplicate solution entry id, keeping the first", "solution", s.path, "id", p.ID)
			continue
		}
		n := &model.Node{ID: p.ID, Name: p.Name, Type: s.classifier.Classify(p.TypeID)}
		if !n.IsFolder() {
			n.Path = filepath.Join(dir, toNative(p.Path))
		}
		s.insert(n)
		s.entries[n.ID] = p
	}

	if nested := f.Section(sln.SectionNestedProjects); nested != nil {
		for _, e := range nested.Entries {
			child, okChild := s.byID[e.Key]
			parent, okParent := s.byID[e.Value]
			if !okChild || !okParent {
				logging.Warn("dropping nesting entry for unknown id", "solution", s.path, "child", e.Key, "parent", e.Value)
				continue
			}
			if err := s.AddToFolder(*child, *parent); err != nil {
				logging.Warn("dropping invalid nesting entry", "solution", s.path, "child", e.Key, "parent", e.Value, "error", err)
			}
		}
	}

	logging.Debug("loaded solution", "path", s.path, "entries", len(s.nodes), "nested", len(s.parents))
	return s, nil
}

// Path returns the absolute path of the solution file
func (s *Solution) Path() string {
	return s.path
}

// Dir returns the directory of the solution file
func (s *Solution) Dir() string {
	return filepath.Dir(s.path)
}

// SetPath changes where the solution is saved. Entry paths are written
// relative to the new location.
func (s *Solution) SetPath(path string) {
	s.path = filepath.Clean(path)
}

// File returns the underlying container, as last loaded or saved
func (s *Solution) File() *sln.File {
	return s.file
}

// Evaluator returns the project file evaluator the solution reads through
func (s *Solution) Evaluator() msbuild.Evaluator {
	return s.evaluator
}

func (s *Solution) insert(n *model.Node) {
	s.nodes = append(s.nodes, n)
	s.byID[n.ID] = n
}

func newID() string {
	return "{" + strings.ToUpper(uuid.NewString()) + "}"
}

// AddExistingProject classifies the project file at path and inserts it as a
// new buildable node.
func (s *Solution) AddExistingProject(path string) (model.Node, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return model.Node{}, err
	}
	if existing, ok := s.NodeByPath(abs); ok {
		return model.Node{}, &model.DuplicateProjectError{Path: abs, Existing: existing}
	}

	t, err := s.classifier.ClassifyFile(abs)
	if errors.Is(err, os.ErrNotExist) {
		return model.Node{}, &model.MissingProjectError{Target: abs}
	}
	if err != nil {
		return model.Node{}, err
	}

	n := &model.Node{ID: newID(), Name: projectName(abs), Path: abs, Type: t}
	s.insert(n)
	s.added[n.ID] = true
	logging.Debug("added project", "name", n.Name, "path", abs, "language", t.Language, "framework", t.Framework)
	return *n, nil
}

func (s *Solution) addFolder(name string) *model.Node {
	n := &model.Node{ID: newID(), Name: name, Type: projtype.Folder}
	s.insert(n)
	s.added[n.ID] = true
	logging.Debug("created solution folder", "name", name, "id", n.ID)
	return n
}

// Added returns the nodes inserted since the solution was loaded or saved
func (s *Solution) Added() []model.Node {
	var result []model.Node
	for _, n := range s.nodes {
		if s.added[n.ID] {
			result = append(result, *n)
		}
	}
	return result
}

// NodeByPath returns the node whose file is path
func (s *Solution) NodeByPath(path string) (model.Node, bool) {
	for _, n := range s.nodes {
		if n.Path != "" && SamePath(n.Path, path) {
			return *n, true
		}
	}
	return model.Node{}, false
}

// NodeByID returns the node with the given id
func (s *Solution) NodeByID(id string) (model.Node, bool) {
	if n, ok := s.byID[id]; ok {
		return *n, true
	}
	return model.Node{}, false
}

// NodesByName returns every node whose display name matches, ignoring case
func (s *Solution) NodesByName(name string) []model.Node {
	var result []model.Node
	for _, n := range s.nodes {
		if strings.EqualFold(n.Name, name) {
			result = append(result, *n)
		}
	}
	return result
}

// Nodes returns all entries in insertion order
func (s *Solution) Nodes() []model.Node {
	result := make([]model.Node, 0, len(s.nodes))
	for _, n := range s.nodes {
		result = append(result, *n)
	}
	return result
}

// Projects returns the buildable entries
func (s *Solution) Projects() []model.Node {
	var result []model.Node
	for _, n := range s.nodes {
		if n.IsBuildable() {
			result = append(result, *n)
		}
	}
	return result
}

// Folders returns the solution folders
func (s *Solution) Folders() []model.Node {
	var result []model.Node
	for _, n := range s.nodes {
		if n.IsFolder() {
			result = append(result, *n)
		}
	}
	return result
}

// SetProjectPath changes the file path of a node. The id is unchanged.
func (s *Solution) SetProjectPath(node model.Node, path string) error {
	n, ok := s.byID[node.ID]
	if !ok {
		return fmt.Errorf("unknown node %s", node.ID)
	}
	if n.IsFolder() {
		return fmt.Errorf("%s: solution folders have no path", n.Name)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if other, taken := s.NodeByPath(abs); taken && other.ID != n.ID {
		return &model.DuplicateProjectError{Path: abs, Existing: other}
	}
	if n.Name == projectName(n.Path) {
		n.Name = projectName(abs)
	}
	n.Path = abs
	return nil
}
