package projtype

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
)

const defaultCacheSize = 1024

// MarkerReader returns the target-framework marker of a project file
type MarkerReader interface {
	TargetFramework(path string) (string, error)
}

// Classifier maps type identifiers and project files to a ProjectType.
// Each instance owns its lookup tables and result cache.
type Classifier struct {
	languages  map[string]Language
	frameworks map[string]Framework
	classes    map[string]Class
	cache      *lru.Cache[string, ProjectType]
	markers    MarkerReader
}

// Option configures a Classifier
type Option func(*Classifier)

// WithMarkerReader makes ClassifyFile read target-framework markers through r
// instead of reading the file directly.
func WithMarkerReader(r MarkerReader) Option {
	return func(c *Classifier) {
		c.markers = r
	}
}

// NewClassifier creates a classifier with the known project type tables
func NewClassifier(opts ...Option) *Classifier {
	cache, err := lru.New[string, ProjectType](defaultCacheSize)
	if err != nil {
		// Only fails for a non-positive size
		panic(err)
	}

	c := &Classifier{
		languages:  make(map[string]Language),
		frameworks: make(map[string]Framework),
		classes:    make(map[string]Class),
		cache:      cache,
		markers:    fileMarkerReader{},
	}

	for language, ids := range languageTable {
		for _, id := range ids {
			c.languages[NormalizeTypeID(id)] = language
		}
	}
	for framework, ids := range frameworkTable {
		for _, id := range ids {
			c.frameworks[NormalizeTypeID(id)] = framework
		}
	}
	for class, ids := range classTable {
		for _, id := range ids {
			c.classes[NormalizeTypeID(id)] = class
		}
	}

	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NormalizeTypeID returns the cache and table key for a type identifier.
// Braced, parenthesised, dashed and bare-hex forms of a GUID map to the same
// upper-case key; anything that is not a GUID is trimmed and upper-cased.
func NormalizeTypeID(typeID string) string {
	s := strings.TrimSpace(typeID)
	s = strings.TrimPrefix(s, "(")
	s = strings.TrimSuffix(s, ")")
	if u, err := uuid.Parse(s); err == nil {
		return strings.ToUpper(u.String())
	}
	return strings.ToUpper(strings.TrimSpace(typeID))
}

// Classify maps a type identifier to a ProjectType. Unknown identifiers give
// an unknown, non-buildable type.
func (c *Classifier) Classify(typeID string) ProjectType {
	key := NormalizeTypeID(typeID)
	if cached, ok := c.cache.Get(key); ok {
		return cached
	}

	t := ProjectType{
		Language:  c.languages[key],
		Framework: c.frameworks[key],
		Class:     c.classes[key],
	}
	c.cache.Add(key, t)
	return t
}

// ClassifyFile infers the type of a project that has no type identifier yet,
// from its extension and target-framework marker.
func (c *Classifier) ClassifyFile(path string) (ProjectType, error) {
	marker, err := c.markers.TargetFramework(path)
	if err != nil {
		return ProjectType{}, fmt.Errorf("classifying %s: %w", path, err)
	}

	return ProjectType{
		Language:  LanguageFromExtension(path),
		Framework: FrameworkFromMarker(marker),
		Class:     ClassBuildable,
	}, nil
}

// LanguageFromExtension maps a project file name to its language
func LanguageFromExtension(path string) Language {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csproj":
		return LanguageCSharp
	case ".fsproj":
		return LanguageFSharp
	case ".vbproj":
		return LanguageVisualBasic
	default:
		return LanguageUnknown
	}
}

// ProjectExtensions lists the project file extensions that are recognised
var ProjectExtensions = []string{".csproj", ".fsproj", ".vbproj"}

// IsProjectFile reports whether path has a recognised project extension
func IsProjectFile(path string) bool {
	return LanguageFromExtension(path) != LanguageUnknown
}

var (
	targetFrameworkRegex        = regexp.MustCompile(`(?s)<TargetFrameworks?>(.*?)</TargetFrameworks?>`)
	targetFrameworkVersionRegex = regexp.MustCompile(`<TargetFrameworkVersion>\s*([^<]*?)\s*</TargetFrameworkVersion>`)

	standardRegex = regexp.MustCompile(`netstandard\d+\.\d+`)
	netCoreRegex  = regexp.MustCompile(`netcoreapp\d+\.\d+|\bnet\d+\.\d+`)
	legacyRegex   = regexp.MustCompile(`\bnet\d{2,3}\b|^v\d+(\.\d+)*$`)
)

// ExtractTargetFramework returns the target-framework marker of a project
// file's content: the TargetFramework(s) element values, or the legacy
// TargetFrameworkVersion. Returns "" when the project declares neither.
func ExtractTargetFramework(content string) string {
	var values []string
	for _, m := range targetFrameworkRegex.FindAllStringSubmatch(content, -1) {
		if v := strings.TrimSpace(m[1]); v != "" {
			values = append(values, v)
		}
	}
	if len(values) > 0 {
		return strings.Join(values, ";")
	}

	if m := targetFrameworkVersionRegex.FindStringSubmatch(content); m != nil {
		return m[1]
	}
	return ""
}

// FrameworkFromMarker classifies a target-framework marker. The first match
// wins: .NET Standard, then .NET Core / .NET 5+, then .NET Framework.
func FrameworkFromMarker(marker string) Framework {
	marker = strings.ToLower(strings.TrimSpace(marker))
	switch {
	case marker == "":
		return FrameworkUnknown
	case standardRegex.MatchString(marker):
		return FrameworkNetStandard
	case netCoreRegex.MatchString(marker):
		return FrameworkNetCore
	case legacyRegex.MatchString(marker):
		return FrameworkNetFramework
	default:
		return FrameworkUnknown
	}
}

type fileMarkerReader struct{}

func (fileMarkerReader) TargetFramework(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return ExtractTargetFramework(string(data)), nil
}
