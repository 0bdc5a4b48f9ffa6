package projtype

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify_KnownTypes(t *testing.T) {
	c := NewClassifier()

	tests := []struct {
		id   string
		want ProjectType
	}{
		{FullFrameworkCSharpProject, ProjectType{LanguageCSharp, FrameworkNetFramework, ClassBuildable}},
		{NetStandardCSharpProject, ProjectType{LanguageCSharp, FrameworkNetStandard, ClassBuildable}},
		{FSharpProject, ProjectType{LanguageFSharp, FrameworkNetFramework, ClassBuildable}},
		{VisualBasicProject, ProjectType{LanguageVisualBasic, FrameworkNetFramework, ClassBuildable}},
		{SDKFSharpProject, ProjectType{LanguageFSharp, FrameworkNetStandard, ClassBuildable}},
		{SolutionFolderProject, Folder},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, c.Classify(tt.id), tt.id)
	}
}

func TestClassify_Normalization(t *testing.T) {
	c := NewClassifier()
	want := c.Classify("{FAE04EC0-301F-11D3-BF4B-00C04F79EFBC}")

	variants := []string{
		"{fae04ec0-301f-11d3-bf4b-00c04f79efbc}",
		"FAE04EC0-301F-11D3-BF4B-00C04F79EFBC",
		"fae04ec0301f11d3bf4b00c04f79efbc",
		"FAE04EC0301F11D3BF4B00C04F79EFBC",
		"(FAE04EC0-301F-11D3-BF4B-00C04F79EFBC)",
		"  {FAE04EC0-301F-11D3-BF4B-00C04F79EFBC}  ",
	}
	for _, v := range variants {
		assert.Equal(t, want, c.Classify(v), v)
		assert.Equal(t, NormalizeTypeID(FullFrameworkCSharpProject), NormalizeTypeID(v), v)
	}
	// All variants share one cache entry
	assert.Equal(t, 1, c.cache.Len())
}

func TestClassify_UnknownDegrades(t *testing.T) {
	c := NewClassifier()

	got := c.Classify("{00000000-1111-2222-3333-444444444444}")
	assert.Equal(t, ProjectType{}, got)
	assert.False(t, got.IsBuildable())

	assert.Equal(t, ProjectType{}, c.Classify("not-a-guid"))
}

func TestClassifiersAreIsolated(t *testing.T) {
	a := NewClassifier()
	b := NewClassifier()

	a.Classify(FSharpProject)
	assert.Equal(t, 1, a.cache.Len())
	assert.Equal(t, 0, b.cache.Len())
}

func writeProject(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestClassifyFile(t *testing.T) {
	c := NewClassifier()

	tests := []struct {
		name      string
		file      string
		content   string
		language  Language
		framework Framework
	}{
		{
			name:      "netstandard",
			file:      "Lib.csproj",
			content:   `<Project Sdk="Microsoft.NET.Sdk"><PropertyGroup><TargetFramework>netstandard2.0</TargetFramework></PropertyGroup></Project>`,
			language:  LanguageCSharp,
			framework: FrameworkNetStandard,
		},
		{
			name:      "netcoreapp",
			file:      "App.fsproj",
			content:   `<Project><PropertyGroup><TargetFramework>netcoreapp3.1</TargetFramework></PropertyGroup></Project>`,
			language:  LanguageFSharp,
			framework: FrameworkNetCore,
		},
		{
			name:      "net8 is core",
			file:      "Api.csproj",
			content:   `<Project><PropertyGroup><TargetFramework>net8.0</TargetFramework></PropertyGroup></Project>`,
			language:  LanguageCSharp,
			framework: FrameworkNetCore,
		},
		{
			name:      "legacy moniker",
			file:      "Old.vbproj",
			content:   `<Project><PropertyGroup><TargetFramework>net472</TargetFramework></PropertyGroup></Project>`,
			language:  LanguageVisualBasic,
			framework: FrameworkNetFramework,
		},
		{
			name:      "standard wins over others",
			file:      "Multi.csproj",
			content:   `<Project><PropertyGroup><TargetFrameworks>net48;netcoreapp2.1;netstandard2.1</TargetFrameworks></PropertyGroup></Project>`,
			language:  LanguageCSharp,
			framework: FrameworkNetStandard,
		},
		{
			name:      "classic project format",
			file:      "Classic.csproj",
			content:   `<Project ToolsVersion="15.0"><PropertyGroup><TargetFrameworkVersion>v4.6.1</TargetFrameworkVersion></PropertyGroup></Project>`,
			language:  LanguageCSharp,
			framework: FrameworkNetFramework,
		},
		{
			name:      "no target framework",
			file:      "Bare.csproj",
			content:   `<Project Sdk="Microsoft.NET.Sdk"></Project>`,
			language:  LanguageCSharp,
			framework: FrameworkUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := c.ClassifyFile(writeProject(t, tt.file, tt.content))
			require.NoError(t, err)
			assert.Equal(t, tt.language, got.Language)
			assert.Equal(t, tt.framework, got.Framework)
			assert.Equal(t, ClassBuildable, got.Class)
		})
	}
}

func TestClassifyFile_Missing(t *testing.T) {
	_, err := NewClassifier().ClassifyFile(filepath.Join(t.TempDir(), "nope.csproj"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestClassifyFile_AgreesWithTypeID(t *testing.T) {
	c := NewClassifier()

	for _, name := range []string{"A.csproj", "B.fsproj", "C.vbproj"} {
		fromFile, err := c.ClassifyFile(writeProject(t, name, `<Project><PropertyGroup><TargetFramework>net48</TargetFramework></PropertyGroup></Project>`))
		require.NoError(t, err)

		fromID := c.Classify(TypeID(fromFile))
		assert.Equal(t, fromFile, fromID, name)
	}
}

type stubMarkers map[string]string

func (s stubMarkers) TargetFramework(path string) (string, error) {
	return s[path], nil
}

func TestClassifyFile_UsesMarkerReader(t *testing.T) {
	c := NewClassifier(WithMarkerReader(stubMarkers{"/virtual/Lib.csproj": "netstandard2.0"}))

	got, err := c.ClassifyFile("/virtual/Lib.csproj")
	require.NoError(t, err)
	assert.Equal(t, FrameworkNetStandard, got.Framework)
}

func TestTypeID(t *testing.T) {
	assert.Equal(t, SolutionFolderProject, TypeID(Folder))
	assert.Equal(t, NetStandardCSharpProject, TypeID(ProjectType{Language: LanguageCSharp, Framework: FrameworkNetCore, Class: ClassBuildable}))
	assert.Equal(t, FullFrameworkCSharpProject, TypeID(ProjectType{Language: LanguageCSharp, Framework: FrameworkNetFramework, Class: ClassBuildable}))
	assert.Equal(t, SDKVisualBasicProject, TypeID(ProjectType{Language: LanguageVisualBasic, Class: ClassBuildable}))
}
