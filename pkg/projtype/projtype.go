// Package projtype classifies solution entries by language, target
// framework family and whether they build or only group other entries.
package projtype

// Language of a project
type Language int

const (
	LanguageUnknown Language = iota
	LanguageCSharp
	LanguageFSharp
	LanguageVisualBasic
)

func (l Language) String() string {
	switch l {
	case LanguageCSharp:
		return "C#"
	case LanguageFSharp:
		return "F#"
	case LanguageVisualBasic:
		return "VB"
	default:
		return "unknown"
	}
}

// Framework is the target-framework family of a project
type Framework int

const (
	FrameworkUnknown Framework = iota
	FrameworkNetFramework
	FrameworkNetStandard
	FrameworkNetCore
)

func (f Framework) String() string {
	switch f {
	case FrameworkNetFramework:
		return ".NET Framework"
	case FrameworkNetStandard:
		return ".NET Standard"
	case FrameworkNetCore:
		return ".NET Core"
	default:
		return "unknown"
	}
}

// Class separates buildable projects from solution folders
type Class int

const (
	ClassUnknown Class = iota
	ClassBuildable
	ClassSolutionFolder
)

func (c Class) String() string {
	switch c {
	case ClassBuildable:
		return "buildable"
	case ClassSolutionFolder:
		return "folder"
	default:
		return "unknown"
	}
}

// ProjectType is an immutable classification result
type ProjectType struct {
	Language  Language
	Framework Framework
	Class     Class
}

// IsBuildable reports whether the entry is a project file that builds
func (t ProjectType) IsBuildable() bool {
	return t.Class == ClassBuildable
}

// IsFolder reports whether the entry is a solution folder
func (t ProjectType) IsFolder() bool {
	return t.Class == ClassSolutionFolder
}

// Folder is the type of every solution folder
var Folder = ProjectType{Class: ClassSolutionFolder}
