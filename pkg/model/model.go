package model

import (
	"fmt"

	"github.com/ritzau/slnkit/pkg/projtype"
)

// Node is one entry of a solution: a buildable project or a solution folder.
// Nodes are plain values; the solution that created a node owns its state.
// Two nodes are the same entry iff their IDs match.
type Node struct {
	ID   string                // Solution-unique id (e.g., "{5A3F...}")
	Name string                // Display name
	Path string                // Absolute project file path; empty for folders
	Type projtype.ProjectType // Classification of the entry
}

// IsFolder returns true if the node is a solution folder
func (n Node) IsFolder() bool {
	return n.Type.IsFolder()
}

// IsBuildable returns true if the node is a project that builds
func (n Node) IsBuildable() bool {
	return n.Type.IsBuildable()
}

func (n Node) String() string {
	if n.IsFolder() {
		return fmt.Sprintf("folder %s", n.Name)
	}
	return fmt.Sprintf("%s (%s)", n.Name, n.Path)
}

// UnresolvedReferenceWarning reports a reference that could not be rewritten
// during a move. It never aborts the operation.
type UnresolvedReferenceWarning struct {
	Project string // Path of the project file whose reference was not repaired
	Include string // Include string that was looked for
	Reason  string // Human-readable cause
}

func (w UnresolvedReferenceWarning) String() string {
	return fmt.Sprintf("%s: reference %q not rewritten: %s", w.Project, w.Include, w.Reason)
}
