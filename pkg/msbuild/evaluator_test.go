package msbuild

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const appProject = `<Project Sdk="Microsoft.NET.Sdk">
  <PropertyGroup>
    <TargetFramework>net8.0</TargetFramework>
  </PropertyGroup>
  <ItemGroup>
    <ProjectReference Include="..\Core\Core.csproj" />
    <ProjectReference Include='../Util/Util.csproj'>
      <Private>false</Private>
    </ProjectReference>
    <PackageReference Include="Newtonsoft.Json" Version="13.0.3" />
  </ItemGroup>
</Project>
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestProjectReferences(t *testing.T) {
	path := writeFile(t, t.TempDir(), "App/App.csproj", appProject)
	e := NewFileEvaluator()

	refs, err := e.ProjectReferences(path)
	require.NoError(t, err)
	assert.Equal(t, []string{`..\Core\Core.csproj`, `../Util/Util.csproj`}, refs)

	tf, err := e.TargetFramework(path)
	require.NoError(t, err)
	assert.Equal(t, "net8.0", tf)

	assert.Equal(t, 1, e.Reads, "file must be read once")
}

func TestProjectReferences_None(t *testing.T) {
	path := writeFile(t, t.TempDir(), "Lib.csproj", `<Project Sdk="Microsoft.NET.Sdk" />`)
	e := NewFileEvaluator()

	refs, err := e.ProjectReferences(path)
	require.NoError(t, err)
	assert.Empty(t, refs)

	tf, err := e.TargetFramework(path)
	require.NoError(t, err)
	assert.Empty(t, tf)
}

func TestProjectReferences_Missing(t *testing.T) {
	e := NewFileEvaluator()
	_, err := e.ProjectReferences(filepath.Join(t.TempDir(), "Nope.csproj"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestRewriteReference(t *testing.T) {
	path := writeFile(t, t.TempDir(), "App/App.csproj", appProject)
	e := NewFileEvaluator()

	ok, err := e.RewriteReference(path, `../Util/Util.csproj`, `../lib/Util/Util.csproj`)
	require.NoError(t, err)
	assert.True(t, ok)

	refs, err := e.ProjectReferences(path)
	require.NoError(t, err)
	assert.Equal(t, []string{`..\Core\Core.csproj`, `../lib/Util/Util.csproj`}, refs)

	// Nothing hits the disk before Save
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, appProject, string(raw))
	assert.Equal(t, []string{path}, e.Dirty())

	require.NoError(t, e.SaveAll())
	assert.Equal(t, 1, e.Writes)
	assert.Empty(t, e.Dirty())

	raw, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `<ProjectReference Include='../lib/Util/Util.csproj'>`)
	assert.Contains(t, string(raw), `<PackageReference Include="Newtonsoft.Json" Version="13.0.3" />`)

	// Clean documents are not written again
	require.NoError(t, e.SaveAll())
	assert.Equal(t, 1, e.Writes)
}

func TestRewriteReference_NoMatch(t *testing.T) {
	path := writeFile(t, t.TempDir(), "App.csproj", appProject)
	e := NewFileEvaluator()

	ok, err := e.RewriteReference(path, `..\Gone\Gone.csproj`, `x`)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, e.Dirty())

	// Package references are not project references
	ok, err = e.RewriteReference(path, "Newtonsoft.Json", "x")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRewriteReference_SameValueIsClean(t *testing.T) {
	path := writeFile(t, t.TempDir(), "App.csproj", appProject)
	e := NewFileEvaluator()

	ok, err := e.RewriteReference(path, `..\Core\Core.csproj`, `..\Core\Core.csproj`)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, e.Dirty())
}

func TestRewriteReferences_ChainedValues(t *testing.T) {
	content := "<Project>\n  <ItemGroup>\n" +
		"    <ProjectReference Include=\"..\\..\\y\\B\\B.csproj\" />\n" +
		"    <ProjectReference Include=\"..\\B\\B.csproj\" />\n" +
		"  </ItemGroup>\n</Project>\n"
	path := writeFile(t, t.TempDir(), "x/A/A.csproj", content)
	e := NewFileEvaluator()

	// The first value equals the second key
	matched, err := e.RewriteReferences(path, map[string]string{
		`..\..\y\B\B.csproj`: `..\B\B.csproj`,
		`..\B\B.csproj`:       `..\..\x\B\B.csproj`,
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{`..\..\y\B\B.csproj`: true, `..\B\B.csproj`: true}, matched)

	refs, err := e.ProjectReferences(path)
	require.NoError(t, err)
	assert.Equal(t, []string{`..\B\B.csproj`, `..\..\x\B\B.csproj`}, refs)
	assert.Equal(t, []string{path}, e.Dirty())
}

func TestRewriteReferences_ReportsOnlyMatches(t *testing.T) {
	path := writeFile(t, t.TempDir(), "App.csproj", appProject)
	e := NewFileEvaluator()

	matched, err := e.RewriteReferences(path, map[string]string{
		`..\Core\Core.csproj`: `..\Core\Core.csproj`,
		`..\Gone\Gone.csproj`: `x`,
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{`..\Core\Core.csproj`: true}, matched)
	assert.Empty(t, e.Dirty())
}

func TestRelocate(t *testing.T) {
	dir := t.TempDir()
	oldPath := writeFile(t, dir, "old/App.csproj", appProject)
	newPath := filepath.Join(dir, "new", "App.csproj")
	e := NewFileEvaluator()

	_, err := e.RewriteReference(oldPath, `..\Core\Core.csproj`, `..\..\Core\Core.csproj`)
	require.NoError(t, err)

	require.NoError(t, os.MkdirAll(filepath.Dir(newPath), 0o755))
	require.NoError(t, os.Rename(oldPath, newPath))
	e.Relocate(oldPath, newPath)

	require.NoError(t, e.SaveAll())
	_, err = os.Stat(oldPath)
	assert.ErrorIs(t, err, os.ErrNotExist)

	raw, err := os.ReadFile(newPath)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `Include="..\..\Core\Core.csproj"`)
}
