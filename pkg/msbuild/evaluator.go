// Package msbuild reads and edits project-to-project references in MSBuild
// project files (.csproj, .fsproj, .vbproj).
//
// Files are scanned with a pattern rather than parsed as XML so that an edit
// changes exactly the include attribute it targets and nothing else.
package msbuild

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/ritzau/slnkit/pkg/logging"
	"github.com/ritzau/slnkit/pkg/projtype"
)

// Evaluator is the project file capability the solution engine consumes.
type Evaluator interface {
	// ProjectReferences returns the raw Include strings of every
	// ProjectReference in the file, in document order.
	ProjectReferences(path string) ([]string, error)

	// TargetFramework returns the target framework marker, or "" if the
	// file has none.
	TargetFramework(path string) (string, error)

	// RewriteReferences replaces the Include of every ProjectReference found
	// as a key of rewrites with its value, in a single pass over the file. It
	// returns the keys that matched.
	RewriteReferences(path string, rewrites map[string]string) (map[string]bool, error)

	// Relocate re-keys any pending edits for oldPath to newPath, so they
	// are saved where the file now lives. oldPath may be a directory.
	Relocate(oldPath, newPath string)

	// Save writes the file if it has unsaved edits.
	Save(path string) error

	// SaveAll writes every file with unsaved edits.
	SaveAll() error
}

var includeRegex = regexp.MustCompile(`<ProjectReference\b[^>]*?\bInclude\s*=\s*(?:"([^"]*)"|'([^']*)')`)

type document struct {
	content string
	mode    os.FileMode
	dirty   bool
}

// FileEvaluator is an Evaluator backed by the file system. Each file is read
// at most once; edits stay in memory until Save or SaveAll.
type FileEvaluator struct {
	docs map[string]*document
	// Reads and Writes count file system operations.
	Reads  int
	Writes int
}

var _ Evaluator = (*FileEvaluator)(nil)

// NewFileEvaluator creates an evaluator with an empty document cache
func NewFileEvaluator() *FileEvaluator {
	return &FileEvaluator{docs: make(map[string]*document)}
}

func key(path string) string {
	return filepath.Clean(path)
}

func (e *FileEvaluator) load(path string) (*document, error) {
	k := key(path)
	if doc, ok := e.docs[k]; ok {
		return doc, nil
	}

	info, err := os.Stat(k)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(k)
	if err != nil {
		return nil, err
	}
	e.Reads++
	logging.Trace("loaded project file", "path", k, "bytes", len(data))

	doc := &document{content: string(data), mode: info.Mode().Perm()}
	e.docs[k] = doc
	return doc, nil
}

// ProjectReferences returns the Include values of all ProjectReference items
func (e *FileEvaluator) ProjectReferences(path string) ([]string, error) {
	doc, err := e.load(path)
	if err != nil {
		return nil, fmt.Errorf("reading project references: %w", err)
	}

	var includes []string
	for _, m := range includeRegex.FindAllStringSubmatchIndex(doc.content, -1) {
		start, end := includeSpan(m)
		includes = append(includes, doc.content[start:end])
	}
	return includes, nil
}

// TargetFramework returns the first TargetFramework(s) marker in the file
func (e *FileEvaluator) TargetFramework(path string) (string, error) {
	doc, err := e.load(path)
	if err != nil {
		return "", fmt.Errorf("reading target framework: %w", err)
	}
	return projtype.ExtractTargetFramework(doc.content), nil
}

// RewriteReference replaces oldInclude with newInclude in the cached document
func (e *FileEvaluator) RewriteReference(path, oldInclude, newInclude string) (bool, error) {
	matched, err := e.RewriteReferences(path, map[string]string{oldInclude: newInclude})
	return matched[oldInclude], err
}

// RewriteReferences substitutes includes by match position. A value written
// for one include is never matched again as the key of another.
func (e *FileEvaluator) RewriteReferences(path string, rewrites map[string]string) (map[string]bool, error) {
	doc, err := e.load(path)
	if err != nil {
		return nil, fmt.Errorf("rewriting project references: %w", err)
	}

	matched := make(map[string]bool)
	var b strings.Builder
	last := 0
	changed := false
	for _, m := range includeRegex.FindAllStringSubmatchIndex(doc.content, -1) {
		start, end := includeSpan(m)
		oldInclude := doc.content[start:end]
		newInclude, ok := rewrites[oldInclude]
		if !ok {
			continue
		}
		matched[oldInclude] = true
		if newInclude == oldInclude {
			continue
		}
		b.WriteString(doc.content[last:start])
		b.WriteString(newInclude)
		last = end
		changed = true
		logging.Debug("rewrote project reference", "path", path, "from", oldInclude, "to", newInclude)
	}
	if !changed {
		return matched, nil
	}
	b.WriteString(doc.content[last:])

	doc.content = b.String()
	doc.dirty = true
	return matched, nil
}

// Relocate re-keys cached documents after a file or directory move. When
// oldPath is a directory every document below it follows.
func (e *FileEvaluator) Relocate(oldPath, newPath string) {
	ok, nk := key(oldPath), key(newPath)
	if ok == nk {
		return
	}
	prefix := ok + string(filepath.Separator)
	moved := make(map[string]*document)
	for path, doc := range e.docs {
		switch {
		case path == ok:
			moved[nk] = doc
		case strings.HasPrefix(path, prefix):
			moved[filepath.Join(nk, path[len(prefix):])] = doc
		default:
			continue
		}
		delete(e.docs, path)
	}
	for path, doc := range moved {
		e.docs[path] = doc
	}
}

// Save writes path if it has unsaved edits
func (e *FileEvaluator) Save(path string) error {
	k := key(path)
	doc, ok := e.docs[k]
	if !ok || !doc.dirty {
		return nil
	}
	if err := os.WriteFile(k, []byte(doc.content), doc.mode); err != nil {
		return fmt.Errorf("saving %s: %w", k, err)
	}
	doc.dirty = false
	e.Writes++
	logging.Debug("saved project file", "path", k)
	return nil
}

// SaveAll writes every document with unsaved edits, in path order
func (e *FileEvaluator) SaveAll() error {
	for _, path := range e.Dirty() {
		if err := e.Save(path); err != nil {
			return err
		}
	}
	return nil
}

// Dirty returns the sorted paths of documents with unsaved edits
func (e *FileEvaluator) Dirty() []string {
	var paths []string
	for path, doc := range e.docs {
		if doc.dirty {
			paths = append(paths, path)
		}
	}
	sort.Strings(paths)
	return paths
}

// includeSpan returns the byte range of whichever quote group matched
func includeSpan(m []int) (int, int) {
	if m[2] >= 0 {
		return m[2], m[3]
	}
	return m[4], m[5]
}
