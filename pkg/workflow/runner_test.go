package workflow

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ritzau/slnkit/pkg/config"
	"github.com/ritzau/slnkit/pkg/dotnet"
	"github.com/ritzau/slnkit/pkg/model"
	"github.com/ritzau/slnkit/pkg/msbuild"
	"github.com/ritzau/slnkit/pkg/sln"
	"github.com/ritzau/slnkit/pkg/solution"
)

func writeProject(t *testing.T, path string, includes ...string) string {
	t.Helper()
	var b strings.Builder
	b.WriteString("<Project Sdk=\"Microsoft.NET.Sdk\">\n")
	b.WriteString("  <PropertyGroup>\n    <TargetFramework>net8.0</TargetFramework>\n  </PropertyGroup>\n")
	b.WriteString("  <ItemGroup>\n")
	for _, inc := range includes {
		b.WriteString("    <ProjectReference Include=\"" + inc + "\" />\n")
	}
	b.WriteString("  </ItemGroup>\n</Project>\n")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o644))
	return path
}

// workspace is App -> Lib -> Core
type workspace struct {
	root, app, lib, core string
}

func newWorkspace(t *testing.T) *workspace {
	t.Helper()
	root := t.TempDir()
	return &workspace{
		root: root,
		app:  writeProject(t, filepath.Join(root, "app", "App.csproj"), `..\lib\Lib.csproj`),
		lib:  writeProject(t, filepath.Join(root, "lib", "Lib.csproj"), `..\core\Core.csproj`),
		core: writeProject(t, filepath.Join(root, "core", "Core.csproj")),
	}
}

func (w *workspace) config() *config.Config {
	return &config.Config{
		Root:               w.root,
		Solution:           filepath.Join(w.root, "All.sln"),
		DependenciesFolder: "Dependencies",
		Debounce:           20 * time.Millisecond,
	}
}

func includesOf(t *testing.T, path string) []string {
	t.Helper()
	includes, err := msbuild.NewFileEvaluator().ProjectReferences(path)
	require.NoError(t, err)
	var resolved []string
	for _, inc := range includes {
		resolved = append(resolved, solution.ResolveInclude(path, inc))
	}
	return resolved
}

func names(nodes []model.Node) []string {
	var result []string
	for _, n := range nodes {
		result = append(result, n.Name)
	}
	return result
}

func TestAddProject_InMemorySolution(t *testing.T) {
	w := newWorkspace(t)
	cfg := w.config()
	runner := NewRunner(cfg, nil)

	result, err := runner.AddProject(context.Background(), "App")
	require.NoError(t, err)

	assert.True(t, result.Created)
	assert.Equal(t, []string{"App"}, names(result.Closure.Seeds))
	assert.ElementsMatch(t, []string{"Lib", "Core"}, names(result.Closure.Discovered))
	require.Len(t, result.Placed, 2)
	assert.Equal(t, "Dependencies", result.Placed[0].Folder)

	s, err := solution.Load(cfg.Solution, solution.Deps{})
	require.NoError(t, err)
	assert.Len(t, s.Projects(), 3)
	lib, ok := s.NodeByPath(w.lib)
	require.True(t, ok)
	assert.Equal(t, `Dependencies\Lib`, s.HierarchyName(lib))
	app, ok := s.NodeByPath(w.app)
	require.True(t, ok)
	_, nested := s.ParentOf(app)
	assert.False(t, nested, "seeds stay at the root without --folder")
}

func TestAddProject_DryRunWritesNothing(t *testing.T) {
	w := newWorkspace(t)
	cfg := w.config()
	cfg.DryRun = true

	result, err := NewRunner(cfg, nil).AddProject(context.Background(), w.app)
	require.NoError(t, err)
	assert.True(t, result.DryRun)
	assert.Len(t, result.Closure.All, 3)

	_, err = os.Stat(cfg.Solution)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestAddProject_ScaffoldsWithDotnet(t *testing.T) {
	w := newWorkspace(t)
	cfg := w.config()
	cfg.DotnetCLI = true

	mock := &dotnet.MockExecutor{
		Outputs: map[string][]byte{"--version": []byte("9.0.100\n")},
		OnRun: func(dir string, args []string) error {
			if args[0] == "new" {
				return sln.New().WriteFile(cfg.Solution)
			}
			return nil
		},
	}

	result, err := NewRunner(cfg, dotnet.NewShell(mock)).AddProject(context.Background(), w.app)
	require.NoError(t, err)
	assert.True(t, result.Created)

	require.Len(t, mock.Calls, 3)
	assert.Equal(t, "new", mock.Calls[1].Args[0])
	assert.Contains(t, mock.Calls[1].Args, "--format")
	assert.Equal(t, []string{"sln", cfg.Solution, "add", "--in-root", w.app}, mock.Calls[2].Args)

	s, err := solution.Load(cfg.Solution, solution.Deps{})
	require.NoError(t, err)
	assert.Len(t, s.Projects(), 3)
}

func TestAddFolder_PlacesSeedsAndDependencies(t *testing.T) {
	w := newWorkspace(t)
	cfg := w.config()
	cfg.Folder = "Apps/Web"

	result, err := NewRunner(cfg, nil).AddFolder(context.Background(), filepath.Join(w.root, "app"))
	require.NoError(t, err)

	folders := make(map[string]string)
	for _, p := range result.Placed {
		folders[p.Node.Name] = p.Folder
	}
	assert.Equal(t, map[string]string{
		"App":  `Apps\Web`,
		"Lib":  "Dependencies",
		"Core": "Dependencies",
	}, folders)
}

func TestAddFolder_ExistingSeedsKeepTheirFolder(t *testing.T) {
	w := newWorkspace(t)
	cfg := w.config()
	cfg.Folder = "Legacy"
	runner := NewRunner(cfg, nil)
	_, err := runner.AddProject(context.Background(), w.app)
	require.NoError(t, err)

	tool := writeProject(t, filepath.Join(w.root, "tools", "Tool.csproj"), `..\core\Core.csproj`)
	cfg.Folder = "Apps"
	result, err := runner.AddFolder(context.Background(), w.root)
	require.NoError(t, err)
	assert.False(t, result.Created)
	require.Len(t, result.Placed, 1)
	assert.Equal(t, "Tool", result.Placed[0].Node.Name)
	assert.Equal(t, "Apps", result.Placed[0].Folder)

	s, err := solution.Load(cfg.Solution, solution.Deps{})
	require.NoError(t, err)
	for path, want := range map[string]string{
		w.app:  `Legacy\App`,
		w.lib:  `Dependencies\Lib`,
		w.core: `Dependencies\Core`,
		tool:   `Apps\Tool`,
	} {
		n, ok := s.NodeByPath(path)
		require.True(t, ok, path)
		assert.Equal(t, want, s.HierarchyName(n))
	}
}

func TestAddProject_Missing(t *testing.T) {
	w := newWorkspace(t)
	_, err := NewRunner(w.config(), nil).AddProject(context.Background(), "Nope")
	assert.ErrorIs(t, err, model.ErrMissingProject)
}

func TestAddProject_AmbiguousName(t *testing.T) {
	w := newWorkspace(t)
	writeProject(t, filepath.Join(w.root, "legacy", "App.csproj"))

	_, err := NewRunner(w.config(), nil).AddProject(context.Background(), "App")
	var ambiguous *model.AmbiguousProjectNameError
	require.ErrorAs(t, err, &ambiguous)
	assert.Len(t, ambiguous.Matches, 2)
}

func TestMoveOnDisk_SingleSolution(t *testing.T) {
	w := newWorkspace(t)
	cfg := w.config()
	runner := NewRunner(cfg, nil)
	_, err := runner.AddProject(context.Background(), w.app)
	require.NoError(t, err)

	result, err := runner.MoveOnDisk(context.Background(), "Lib", filepath.Join(w.root, "libs", "Lib"))
	require.NoError(t, err)
	require.Len(t, result.Moves, 1)
	assert.True(t, result.Relocated)

	moved := filepath.Join(w.root, "libs", "Lib", "Lib.csproj")
	report := result.Moves[0].Report
	assert.Equal(t, moved, report.NewPath)
	require.Len(t, report.Inbound, 1)
	assert.Equal(t, `..\libs\Lib\Lib.csproj`, report.Inbound[0].New)
	require.Len(t, report.Outbound, 1)
	assert.Equal(t, `..\..\core\Core.csproj`, report.Outbound[0].New)

	assert.NoFileExists(t, w.lib)
	assert.Equal(t, []string{moved}, includesOf(t, w.app))
	assert.Equal(t, []string{w.core}, includesOf(t, moved))

	s, err := solution.Load(cfg.Solution, solution.Deps{})
	require.NoError(t, err)
	_, ok := s.NodeByPath(moved)
	assert.True(t, ok)
}

func TestMoveOnDisk_IntoExistingDirectory(t *testing.T) {
	w := newWorkspace(t)
	cfg := w.config()
	runner := NewRunner(cfg, nil)
	_, err := runner.AddProject(context.Background(), w.app)
	require.NoError(t, err)

	result, err := runner.MoveOnDisk(context.Background(), w.core, filepath.Join(w.root, "app"))
	require.NoError(t, err)

	moved := filepath.Join(w.root, "app", "core", "Core.csproj")
	assert.Equal(t, moved, result.Moves[0].Report.NewPath)
	assert.FileExists(t, moved)
	assert.Equal(t, []string{moved}, includesOf(t, w.lib))
}

func TestMoveOnDisk_FindSolutions(t *testing.T) {
	w := newWorkspace(t)
	for name, projects := range map[string][]string{
		"All.sln":  {w.app, w.lib, w.core},
		"Libs.sln": {w.lib, w.core},
	} {
		s, err := solution.New(filepath.Join(w.root, name), solution.Deps{})
		require.NoError(t, err)
		for _, p := range projects {
			_, err := s.AddExistingProject(p)
			require.NoError(t, err)
		}
		require.NoError(t, s.Save())
	}

	cfg := w.config()
	cfg.Solution = ""
	cfg.FindSolutions = true

	result, err := NewRunner(cfg, nil).MoveOnDisk(context.Background(), "Lib", filepath.Join(w.root, "src", "Lib"))
	require.NoError(t, err)
	require.Len(t, result.Moves, 2)
	assert.True(t, result.Relocated)
	for _, m := range result.Moves {
		assert.True(t, m.Report.Relocated)
	}

	moved := filepath.Join(w.root, "src", "Lib", "Lib.csproj")
	assert.Equal(t, []string{moved}, includesOf(t, w.app))
	assert.Equal(t, []string{w.core}, includesOf(t, moved))

	for _, name := range []string{"All.sln", "Libs.sln"} {
		s, err := solution.Load(filepath.Join(w.root, name), solution.Deps{})
		require.NoError(t, err)
		_, ok := s.NodeByPath(moved)
		assert.True(t, ok, name)
	}
}

func TestMoveOnDisk_SolutionInProjectDirectory(t *testing.T) {
	w := newWorkspace(t)
	cfg := w.config()
	cfg.Solution = filepath.Join(w.root, "app", "App.sln")
	runner := NewRunner(cfg, nil)
	_, err := runner.AddProject(context.Background(), w.app)
	require.NoError(t, err)

	result, err := runner.MoveOnDisk(context.Background(), "App", filepath.Join(w.root, "src", "App"))
	require.NoError(t, err)

	movedSln := filepath.Join(w.root, "src", "App", "App.sln")
	moved := filepath.Join(w.root, "src", "App", "App.csproj")
	assert.Equal(t, movedSln, result.Moves[0].Solution)
	assert.NoDirExists(t, filepath.Join(w.root, "app"))
	assert.Equal(t, []string{w.lib}, includesOf(t, moved))

	s, err := solution.Load(movedSln, solution.Deps{})
	require.NoError(t, err)
	for _, p := range []string{moved, w.lib, w.core} {
		_, ok := s.NodeByPath(p)
		assert.True(t, ok, p)
	}
}

func TestMoveOnDisk_DryRun(t *testing.T) {
	w := newWorkspace(t)
	cfg := w.config()
	_, err := NewRunner(cfg, nil).AddProject(context.Background(), w.app)
	require.NoError(t, err)
	before, err := os.ReadFile(w.app)
	require.NoError(t, err)

	cfg.DryRun = true
	result, err := NewRunner(cfg, nil).MoveOnDisk(context.Background(), "Lib", filepath.Join(w.root, "libs", "Lib"))
	require.NoError(t, err)
	assert.False(t, result.Relocated)
	assert.Len(t, result.Moves[0].Report.Inbound, 1)

	assert.FileExists(t, w.lib)
	after, err := os.ReadFile(w.app)
	require.NoError(t, err)
	assert.Equal(t, string(before), string(after))
}

func TestMoveOnDisk_NotInSolution(t *testing.T) {
	w := newWorkspace(t)
	cfg := w.config()
	require.NoError(t, sln.New().WriteFile(cfg.Solution))

	_, err := NewRunner(cfg, nil).MoveOnDisk(context.Background(), "Lib", filepath.Join(w.root, "libs", "Lib"))
	assert.ErrorContains(t, err, "is not in any solution")
}

func TestMoveToFolder(t *testing.T) {
	w := newWorkspace(t)
	cfg := w.config()
	runner := NewRunner(cfg, nil)
	_, err := runner.AddProject(context.Background(), w.app)
	require.NoError(t, err)

	result, err := runner.MoveToFolder(context.Background(), "App", "Apps/Web")
	require.NoError(t, err)
	assert.Equal(t, `Apps\Web`, result.Folder)
	assert.Empty(t, result.Previous)

	result, err = runner.MoveToFolder(context.Background(), w.lib, "Apps")
	require.NoError(t, err)
	assert.Equal(t, "Dependencies", result.Previous)

	s, err := solution.Load(cfg.Solution, solution.Deps{})
	require.NoError(t, err)
	app, _ := s.NodeByPath(w.app)
	lib, _ := s.NodeByPath(w.lib)
	assert.Equal(t, `Apps\Web\App`, s.HierarchyName(app))
	assert.Equal(t, `Apps\Lib`, s.HierarchyName(lib))
}

func TestMoveToFolder_RejectsFolderInsideItself(t *testing.T) {
	w := newWorkspace(t)
	cfg := w.config()
	runner := NewRunner(cfg, nil)
	cfg.Folder = "Apps"
	_, err := runner.AddProject(context.Background(), w.app)
	require.NoError(t, err)

	_, err = runner.MoveToFolder(context.Background(), "Apps", `Apps\Inner`)
	assert.ErrorIs(t, err, model.ErrSelfContainment)
}

func TestGraph(t *testing.T) {
	w := newWorkspace(t)
	cfg := w.config()
	runner := NewRunner(cfg, nil)
	_, err := runner.AddProject(context.Background(), w.app)
	require.NoError(t, err)

	result, err := runner.Graph(context.Background())
	require.NoError(t, err)
	assert.Len(t, result.References.Edges(), 2)
	assert.Empty(t, result.Cycles)

	export := result.Export()
	assert.Len(t, export.Nodes, 4)
	assert.Len(t, export.Edges, 2)

	lib, _ := result.Solution.NodeByPath(w.lib)
	deps := result.Solution.NodesByName("Dependencies")
	require.Len(t, deps, 1)
	assert.Equal(t, deps[0].ID, export.Nodes[lib.ID].Parent)
	assert.Equal(t, "folder", export.Nodes[deps[0].ID].Type)
	assert.Equal(t, ".NET Core", export.Nodes[lib.ID].Metadata["framework"])
}

func TestWatch_AddsNewProjects(t *testing.T) {
	w := newWorkspace(t)
	cfg := w.config()
	runner := NewRunner(cfg, nil)

	ctx, cancel := context.WithCancel(context.Background())
	batches := make(chan *WatchBatch, 10)
	done := make(chan error, 1)
	go func() {
		done <- runner.Watch(ctx, w.root, func(b *WatchBatch) { batches <- b })
	}()

	time.Sleep(200 * time.Millisecond)
	project := writeProject(t, filepath.Join(w.root, "tools", "Tool.csproj"), `..\core\Core.csproj`)

	select {
	case batch := <-batches:
		require.NoError(t, batch.Err)
		assert.Equal(t, []string{project}, batch.Changes.NewProjects)
		require.NotNil(t, batch.Result)
		assert.Equal(t, []string{"Tool"}, names(batch.Result.Closure.Seeds))
		assert.Equal(t, []string{"Core"}, names(batch.Result.Closure.Discovered))
	case <-time.After(5 * time.Second):
		t.Fatal("no batch for the new project")
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop")
	}
}
