package model

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrDuplicateProject is returned when a path already has a node
	ErrDuplicateProject = errors.New("project already in solution")
	// ErrSelfContainment is returned when a folder would contain itself
	ErrSelfContainment = errors.New("solution folder cannot contain itself")
	// ErrNotAFolder is returned when a non-folder is used as a parent
	ErrNotAFolder = errors.New("only solution folders can contain entries")
	// ErrInvalidFolderPath is returned for empty or colliding folder paths
	ErrInvalidFolderPath = errors.New("invalid solution folder path")
	// ErrAmbiguousProjectName is returned when a name matches several projects
	ErrAmbiguousProjectName = errors.New("ambiguous project name")
	// ErrMissingProject is returned when a project file does not exist
	ErrMissingProject = errors.New("project not found")
)

// DuplicateProjectError carries the node that already owns the path
type DuplicateProjectError struct {
	Path     string
	Existing Node
}

func (e *DuplicateProjectError) Error() string {
	return fmt.Sprintf("%s: %v (id %s)", e.Path, ErrDuplicateProject, e.Existing.ID)
}

func (e *DuplicateProjectError) Unwrap() error {
	return ErrDuplicateProject
}

// AmbiguousProjectNameError lists every project file a name matched
type AmbiguousProjectNameError struct {
	Name    string
	Matches []string
}

func (e *AmbiguousProjectNameError) Error() string {
	return fmt.Sprintf("%v %q matches %d projects: %s",
		ErrAmbiguousProjectName, e.Name, len(e.Matches), strings.Join(e.Matches, ", "))
}

func (e *AmbiguousProjectNameError) Unwrap() error {
	return ErrAmbiguousProjectName
}

// MissingProjectError names a requested or referenced project that does not exist
type MissingProjectError struct {
	Target       string // Name or path that was asked for
	ReferencedBy string // Project that referenced it, if any
}

func (e *MissingProjectError) Error() string {
	if e.ReferencedBy != "" {
		return fmt.Sprintf("%v: %s (referenced by %s)", ErrMissingProject, e.Target, e.ReferencedBy)
	}
	return fmt.Sprintf("%v: %s", ErrMissingProject, e.Target)
}

func (e *MissingProjectError) Unwrap() error {
	return ErrMissingProject
}
