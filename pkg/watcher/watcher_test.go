package watcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDebouncer_BatchesBurst(t *testing.T) {
	input := make(chan ChangeEvent)
	d := NewDebouncer(input, 50*time.Millisecond, time.Second)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)

	input <- ChangeEvent{Type: ChangeTypeProjectModified, Paths: []string{"/a/A.csproj"}}
	input <- ChangeEvent{Type: ChangeTypeProjectAdded, Paths: []string{"/b/B.csproj"}}
	input <- ChangeEvent{Type: ChangeTypeProjectAdded, Paths: []string{"/c/C.csproj"}}

	select {
	case first := <-d.Output():
		assert.Equal(t, ChangeTypeProjectAdded, first.Type)
		assert.Equal(t, []string{"/b/B.csproj", "/c/C.csproj"}, first.Paths)
	case <-time.After(2 * time.Second):
		t.Fatal("no debounced event")
	}

	second := <-d.Output()
	assert.Equal(t, ChangeTypeProjectModified, second.Type)
	assert.Equal(t, []string{"/a/A.csproj"}, second.Paths)
}

func TestDebouncer_FlushesOnClose(t *testing.T) {
	input := make(chan ChangeEvent, 1)
	d := NewDebouncer(input, time.Hour, time.Hour)
	d.Start(context.Background())

	input <- ChangeEvent{Type: ChangeTypeProjectAdded, Paths: []string{"/a/A.csproj"}}
	close(input)

	event, ok := <-d.Output()
	require.True(t, ok)
	assert.Equal(t, []string{"/a/A.csproj"}, event.Paths)

	_, ok = <-d.Output()
	assert.False(t, ok, "output closes after the input")
}

func TestAnalyzeChanges(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "A.csproj")
	b := filepath.Join(dir, "B.csproj")
	require.NoError(t, os.WriteFile(a, []byte("<Project />"), 0o644))
	require.NoError(t, os.WriteFile(b, []byte("<Project />"), 0o644))

	analysis := AnalyzeChanges(
		ChangeEvent{Type: ChangeTypeProjectAdded, Paths: []string{a, a, filepath.Join(dir, "Gone.csproj")}},
		ChangeEvent{Type: ChangeTypeProjectModified, Paths: []string{a, b}},
	)

	assert.Equal(t, []string{a}, analysis.NewProjects)
	assert.Equal(t, []string{b}, analysis.ChangedProjects)
	assert.False(t, analysis.Empty())
	assert.True(t, AnalyzeChanges().Empty())
}

func TestFileWatcher_ReportsNewProjects(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "src"), 0o755))

	fw, err := NewFileWatcher(root)
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, fw.Start(ctx))

	project := filepath.Join(root, "src", "App.csproj")
	require.NoError(t, os.WriteFile(project, []byte("<Project />"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "src", "Program.cs"), []byte("class P {}"), 0o644))

	deadline := time.After(5 * time.Second)
	for {
		select {
		case event := <-fw.Events():
			if event.Type == ChangeTypeProjectAdded {
				assert.Contains(t, event.Paths, project)
				for _, p := range event.Paths {
					assert.Equal(t, ".csproj", filepath.Ext(p))
				}
				return
			}
		case <-deadline:
			t.Fatal("no event for the new project file")
		}
	}
}
