package solution

import (
	"path/filepath"
	"strings"
)

// SamePath reports whether two absolute paths name the same file. Solution
// paths compare case-insensitively.
func SamePath(a, b string) bool {
	return strings.EqualFold(filepath.Clean(a), filepath.Clean(b))
}

// toNative converts a path as written in a solution or project file to the
// host separator.
func toNative(p string) string {
	return filepath.FromSlash(strings.ReplaceAll(p, `\`, "/"))
}

// isAbsInclude reports whether an include is absolute on either platform
func isAbsInclude(p string) bool {
	if filepath.IsAbs(toNative(p)) {
		return true
	}
	return len(p) >= 3 && p[1] == ':' && (p[2] == '\\' || p[2] == '/')
}

// ResolveInclude resolves a reference include string against the project
// file that contains it.
func ResolveInclude(projectPath, include string) string {
	if isAbsInclude(include) {
		return filepath.Clean(toNative(include))
	}
	return filepath.Join(filepath.Dir(projectPath), toNative(include))
}

// RelativeInclude returns the include string that points from projectPath to
// target. The separator follows style: forward slashes if style uses them
// exclusively, backslashes otherwise.
func RelativeInclude(projectPath, target, style string) (string, error) {
	rel, err := filepath.Rel(filepath.Dir(projectPath), target)
	if err != nil {
		return "", err
	}
	rel = filepath.ToSlash(rel)
	if strings.Contains(style, "/") && !strings.Contains(style, `\`) {
		return rel, nil
	}
	return strings.ReplaceAll(rel, "/", `\`), nil
}

// solutionRelative converts an absolute path to the backslash form a
// solution file stores.
func solutionRelative(solutionDir, path string) string {
	rel, err := filepath.Rel(solutionDir, path)
	if err != nil {
		rel = path
	}
	return strings.ReplaceAll(filepath.ToSlash(rel), "/", `\`)
}

// projectName is the display name of a project file
func projectName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
