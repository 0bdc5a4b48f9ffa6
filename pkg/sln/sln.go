// Package sln reads and writes Visual Studio solution container files.
//
// The codec keeps what it does not interpret (project sections, unknown
// global sections, header comments) so a read/write cycle leaves unrelated
// content untouched.
package sln

// Well-known global section names
const (
	SectionNestedProjects                 = "NestedProjects"
	SectionSolutionConfigurationPlatforms = "SolutionConfigurationPlatforms"
	SectionProjectConfigurationPlatforms  = "ProjectConfigurationPlatforms"

	PhasePreSolution  = "preSolution"
	PhasePostSolution = "postSolution"
)

// Defaults for newly created solution files
const (
	DefaultFormatVersion              = "12.00"
	DefaultVisualStudioComment        = "# Visual Studio Version 17"
	DefaultVisualStudioVersion        = "17.0.31903.59"
	DefaultMinimumVisualStudioVersion = "10.0.40219.1"
)

// File is a parsed solution file
type File struct {
	BOM              bool // File starts with a UTF-8 byte order mark
	CRLF             bool // Lines end with \r\n
	LeadingBlankLine bool // Visual Studio writes an empty first line

	FormatVersion              string
	Comments                   []string // Header lines starting with '#'
	VisualStudioVersion        string
	MinimumVisualStudioVersion string

	Projects []*Project
	Sections []*Section
}

// Project is one Project(...) ... EndProject block
type Project struct {
	TypeID string   // Project type GUID
	Name   string   // Display name
	Path   string   // Path relative to the solution directory, as written
	ID     string   // Project GUID
	Body   []string // Raw lines between the header and EndProject
}

// Section is one GlobalSection(...) ... EndGlobalSection block
type Section struct {
	Name    string
	Phase   string
	Entries []Entry
}

// Entry is a "key = value" line of a global section
type Entry struct {
	Key   string
	Value string
}

// New returns an empty solution file with the default header
func New() *File {
	return &File{
		BOM:                        true,
		CRLF:                       true,
		LeadingBlankLine:           true,
		FormatVersion:              DefaultFormatVersion,
		Comments:                   []string{DefaultVisualStudioComment},
		VisualStudioVersion:        DefaultVisualStudioVersion,
		MinimumVisualStudioVersion: DefaultMinimumVisualStudioVersion,
	}
}

// Project returns the project block with the given id, or nil
func (f *File) Project(id string) *Project {
	for _, p := range f.Projects {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// Section returns the named global section, or nil
func (f *File) Section(name string) *Section {
	for _, s := range f.Sections {
		if s.Name == name {
			return s
		}
	}
	return nil
}

// EnsureSection returns the named global section, appending it if missing
func (f *File) EnsureSection(name, phase string) *Section {
	if s := f.Section(name); s != nil {
		return s
	}
	s := &Section{Name: name, Phase: phase}
	f.Sections = append(f.Sections, s)
	return s
}

// RemoveSection drops the named global section if present
func (f *File) RemoveSection(name string) {
	kept := f.Sections[:0]
	for _, s := range f.Sections {
		if s.Name != name {
			kept = append(kept, s)
		}
	}
	f.Sections = kept
}

// Get returns the value of the first entry with the given key
func (s *Section) Get(key string) (string, bool) {
	for _, e := range s.Entries {
		if e.Key == key {
			return e.Value, true
		}
	}
	return "", false
}

// Set overwrites the entry with the given key, or appends it
func (s *Section) Set(key, value string) {
	for i := range s.Entries {
		if s.Entries[i].Key == key {
			s.Entries[i].Value = value
			return
		}
	}
	s.Entries = append(s.Entries, Entry{Key: key, Value: value})
}

// Delete removes every entry with the given key
func (s *Section) Delete(key string) {
	kept := s.Entries[:0]
	for _, e := range s.Entries {
		if e.Key != key {
			kept = append(kept, e)
		}
	}
	s.Entries = kept
}

// HasKeyPrefix reports whether any entry key starts with prefix
func (s *Section) HasKeyPrefix(prefix string) bool {
	for _, e := range s.Entries {
		if len(e.Key) >= len(prefix) && e.Key[:len(prefix)] == prefix {
			return true
		}
	}
	return false
}
