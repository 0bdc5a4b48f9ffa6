// Package finder locates project and solution files on disk.
package finder

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"

	"github.com/ritzau/slnkit/pkg/logging"
	"github.com/ritzau/slnkit/pkg/model"
	"github.com/ritzau/slnkit/pkg/projtype"
)

// skippedDirs are build outputs and tool state that never hold sources
var skippedDirs = map[string]bool{
	"bin":          true,
	"obj":          true,
	".git":         true,
	".vs":          true,
	".idea":        true,
	"node_modules": true,
	"packages":     true,
}

// SkipDir reports whether a directory name is never scanned
func SkipDir(name string) bool {
	return skippedDirs[strings.ToLower(name)] || strings.HasPrefix(name, "bazel-")
}

type ignoreRule struct {
	dir     string
	matcher *ignore.GitIgnore
}

type ignoreStack []ignoreRule

func (s ignoreStack) ignored(path string, isDir bool) bool {
	for _, rule := range s {
		rel, err := filepath.Rel(rule.dir, path)
		if err != nil || strings.HasPrefix(rel, "..") {
			continue
		}
		rel = filepath.ToSlash(rel)
		if isDir {
			rel += "/"
		}
		if rule.matcher.MatchesPath(rel) {
			return true
		}
	}
	return false
}

// walk visits the files under root that pass the skip rules and every
// .gitignore found on the way.
func walk(root string, visit func(path string)) error {
	var rules ignoreStack

	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			if path != root && (SkipDir(d.Name()) || rules.ignored(path, true)) {
				return filepath.SkipDir
			}
			gitignore := filepath.Join(path, ".gitignore")
			if _, err := os.Stat(gitignore); err == nil {
				matcher, err := ignore.CompileIgnoreFile(gitignore)
				if err != nil {
					logging.Warn("ignoring unreadable .gitignore", "path", gitignore, "error", err)
				} else {
					rules = append(rules, ignoreRule{dir: path, matcher: matcher})
				}
			}
			return nil
		}

		if !rules.ignored(path, false) {
			visit(path)
		}
		return nil
	})
}

// FindProjectFiles returns every .csproj, .fsproj and .vbproj under root,
// sorted, skipping build output directories and .gitignore'd paths.
func FindProjectFiles(root string) ([]string, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}

	var projects []string
	err = walk(root, func(path string) {
		if projtype.IsProjectFile(path) {
			projects = append(projects, path)
		}
	})
	sort.Strings(projects)
	logging.Debug("found project files", "root", root, "count", len(projects))
	return projects, err
}

// FindSolutionFiles returns every .sln file under root, sorted
func FindSolutionFiles(root string) ([]string, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}

	var solutions []string
	err = walk(root, func(path string) {
		if strings.EqualFold(filepath.Ext(path), ".sln") {
			solutions = append(solutions, path)
		}
	})
	sort.Strings(solutions)
	return solutions, err
}

// ResolveProject turns a command-line argument into an absolute project
// file path. The argument may be a project file path, a directory holding
// exactly one project, or a bare project name searched for under root.
func ResolveProject(root, arg string) (string, error) {
	if projtype.IsProjectFile(arg) {
		abs, err := filepath.Abs(arg)
		if err != nil {
			return "", err
		}
		if _, err := os.Stat(abs); err == nil {
			return abs, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", err
		}
		if filepath.Base(arg) == arg {
			return findByName(root, projectName(arg), arg)
		}
		return "", &model.MissingProjectError{Target: arg}
	}

	if info, err := os.Stat(arg); err == nil && info.IsDir() {
		entries, err := os.ReadDir(arg)
		if err != nil {
			return "", err
		}
		var matches []string
		for _, e := range entries {
			if !e.IsDir() && projtype.IsProjectFile(e.Name()) {
				abs, err := filepath.Abs(filepath.Join(arg, e.Name()))
				if err != nil {
					return "", err
				}
				matches = append(matches, abs)
			}
		}
		return single(arg, matches)
	}

	return findByName(root, arg, arg)
}

func findByName(root, name, arg string) (string, error) {
	projects, err := FindProjectFiles(root)
	if err != nil {
		return "", err
	}
	var matches []string
	for _, p := range projects {
		if strings.EqualFold(projectName(p), name) {
			matches = append(matches, p)
		}
	}
	return single(arg, matches)
}

func single(arg string, matches []string) (string, error) {
	switch len(matches) {
	case 0:
		return "", &model.MissingProjectError{Target: arg}
	case 1:
		return matches[0], nil
	default:
		return "", &model.AmbiguousProjectNameError{Name: arg, Matches: matches}
	}
}

func projectName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
