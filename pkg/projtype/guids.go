package projtype

// Project type GUIDs as written in solution files
const (
	FullFrameworkCSharpProject = "{FAE04EC0-301F-11D3-BF4B-00C04F79EFBC}"
	NetStandardCSharpProject   = "{9A19103F-16F7-4668-BE54-9A1E7A4F7556}"
	SolutionFolderProject      = "{2150E333-8FDC-42A3-9474-1A3956D46DE8}"
	FSharpProject              = "{F2A71F9B-5D33-465A-A702-920D77279786}"
	SDKFSharpProject           = "{6EC3EE1D-3C4E-46DD-8F32-0CC8E7565705}"
	VisualBasicProject         = "{F184B08F-C81C-45F6-A57F-5ABD9991F28F}"
	SDKVisualBasicProject      = "{778DAE3C-4631-46EA-AA77-85C1314464D9}"
)

var languageTable = map[Language][]string{
	LanguageCSharp:      {FullFrameworkCSharpProject, NetStandardCSharpProject},
	LanguageFSharp:      {FSharpProject, SDKFSharpProject},
	LanguageVisualBasic: {VisualBasicProject, SDKVisualBasicProject},
}

var frameworkTable = map[Framework][]string{
	FrameworkNetStandard:  {NetStandardCSharpProject, SDKFSharpProject, SDKVisualBasicProject},
	FrameworkNetFramework: {FullFrameworkCSharpProject, FSharpProject, VisualBasicProject},
}

var classTable = map[Class][]string{
	ClassSolutionFolder: {SolutionFolderProject},
	ClassBuildable: {
		FullFrameworkCSharpProject,
		NetStandardCSharpProject,
		FSharpProject,
		SDKFSharpProject,
		VisualBasicProject,
		SDKVisualBasicProject,
	},
}

// TypeID returns the GUID a new solution entry of type t is written with.
// Classic (.NET Framework) projects get the legacy GUID of their language,
// everything else the SDK-style one.
func TypeID(t ProjectType) string {
	if t.IsFolder() {
		return SolutionFolderProject
	}

	classic := t.Framework == FrameworkNetFramework
	switch t.Language {
	case LanguageFSharp:
		if classic {
			return FSharpProject
		}
		return SDKFSharpProject
	case LanguageVisualBasic:
		if classic {
			return VisualBasicProject
		}
		return SDKVisualBasicProject
	default:
		if classic {
			return FullFrameworkCSharpProject
		}
		return NetStandardCSharpProject
	}
}
