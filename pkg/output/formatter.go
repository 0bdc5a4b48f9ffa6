// Package output prints command results for humans and as JSON.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/fatih/color"

	"github.com/ritzau/slnkit/pkg/cycles"
	"github.com/ritzau/slnkit/pkg/model"
	"github.com/ritzau/slnkit/pkg/workflow"
)

var (
	bold   = color.New(color.Bold)
	red    = color.New(color.FgRed)
	green  = color.New(color.FgGreen)
	yellow = color.New(color.FgYellow)
	cyan   = color.New(color.FgCyan)
)

// header prints a bold title with an underline of the same width
func header(w io.Writer, title string) {
	bold.Fprintln(w, title)
	bold.Fprintln(w, strings.Repeat("=", len(title)))
}

// relative shortens path for display when it lies below dir
func relative(dir, path string) string {
	rel, err := filepath.Rel(dir, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return rel
}

func dryRunNote(w io.Writer, dryRun bool) {
	if dryRun {
		yellow.Fprintln(w, "Dry run: nothing was written")
	}
}

func printCycles(w io.Writer, found []cycles.ReferenceCycle) {
	if len(found) == 0 {
		return
	}
	yellow.Fprintf(w, "Reference cycles: %d\n", len(found))
	for _, c := range found {
		yellow.Fprintf(w, "  %s -> %s\n", strings.Join(c.Names, " -> "), c.Names[0])
	}
	fmt.Fprintln(w)
}

// PrintAddReport prints the projects an add command put into the solution
func PrintAddReport(w io.Writer, r *workflow.AddResult) {
	dir := filepath.Dir(r.Solution)

	header(w, "slnkit - Add Projects")
	fmt.Fprintf(w, "Solution: %s", r.Solution)
	if r.Created {
		cyan.Fprint(w, " (new)")
	}
	fmt.Fprintln(w)

	folders := make(map[string]string)
	for _, p := range r.Placed {
		folders[p.Node.ID] = p.Folder
	}
	printNodes := func(nodes []model.Node) {
		for _, n := range nodes {
			green.Fprintf(w, "  + %s", n.Name)
			fmt.Fprintf(w, "  %s", relative(dir, n.Path))
			if f, ok := folders[n.ID]; ok {
				cyan.Fprintf(w, "  [%s]", f)
			}
			fmt.Fprintln(w)
		}
	}

	c := r.Closure
	fmt.Fprintf(w, "Requested: %d project(s)\n", len(c.Seeds))
	printNodes(c.Seeds)
	fmt.Fprintf(w, "Dependencies added: %d project(s)\n", len(c.Discovered))
	printNodes(c.Discovered)
	fmt.Fprintln(w)

	if len(c.Missing) > 0 {
		red.Fprintf(w, "Missing: %d project(s)\n", len(c.Missing))
		for _, m := range c.Missing {
			yellow.Fprintf(w, "  %s\n", m.Target)
			if m.ReferencedBy != "" {
				cyan.Fprintf(w, "    Referenced by: %s\n", relative(dir, m.ReferencedBy))
			}
		}
		fmt.Fprintln(w)
	}
	printCycles(w, c.Cycles)

	dryRunNote(w, r.DryRun)
	summary := green
	if len(c.Missing) > 0 {
		summary = yellow
	}
	summary.Fprintf(w, "Summary: %d project(s) reachable, %d new dependencies\n", len(c.All), len(c.Discovered))
	if len(c.Missing) == 0 && len(c.Cycles) == 0 {
		green.Fprintln(w, "✓ Every reference resolves inside the solution")
	}
}

// PrintMoveReport prints the rewrites of a move on disk
func PrintMoveReport(w io.Writer, r *workflow.MoveResult) {
	header(w, "slnkit - Move Project")
	if len(r.Moves) == 0 {
		return
	}

	first := r.Moves[0].Report
	fmt.Fprintf(w, "Project: %s\n", first.Project.Name)
	fmt.Fprintf(w, "From: %s\n", first.OldPath)
	fmt.Fprintf(w, "To:   %s\n", first.NewPath)
	fmt.Fprintln(w)

	if first.NoOp() {
		green.Fprintln(w, "✓ Project is already at the destination")
		return
	}

	warnings := 0
	for _, m := range r.Moves {
		bold.Fprintf(w, "Solution: %s\n", m.Solution)
		dir := filepath.Dir(m.Solution)
		for _, rw := range m.Report.Inbound {
			fmt.Fprintf(w, "  %s: ", relative(dir, rw.Project))
			red.Fprint(w, rw.Old)
			fmt.Fprint(w, " -> ")
			green.Fprintln(w, rw.New)
		}
		for _, rw := range m.Report.Outbound {
			fmt.Fprintf(w, "  %s: ", first.Project.Name)
			red.Fprint(w, rw.Old)
			fmt.Fprint(w, " -> ")
			green.Fprintln(w, rw.New)
		}
		for _, warn := range m.Report.Warnings {
			yellow.Fprintf(w, "  warning: %s\n", warn)
		}
		warnings += len(m.Report.Warnings)
	}
	fmt.Fprintln(w)

	dryRunNote(w, r.DryRun)
	if r.Relocated {
		fmt.Fprintf(w, "Moved on disk: %s\n", filepath.Dir(first.NewPath))
	}
	if warnings > 0 {
		yellow.Fprintf(w, "Summary: moved with %d unrepaired reference(s)\n", warnings)
		return
	}
	green.Fprintf(w, "✓ All references repaired in %d solution(s)\n", len(r.Moves))
}

// PrintFolderReport prints where a move into a solution folder put the entry
func PrintFolderReport(w io.Writer, r *workflow.FolderResult) {
	header(w, "slnkit - Move to Folder")
	fmt.Fprintf(w, "Solution: %s\n", r.Solution)
	previous := r.Previous
	if previous == "" {
		previous = "(root)"
	}
	fmt.Fprintf(w, "%s: %s -> ", r.Node.Name, previous)
	green.Fprintln(w, r.Folder)
	dryRunNote(w, r.DryRun)
}

// PrintWatchBatch prints one batch of the watch command
func PrintWatchBatch(w io.Writer, b *workflow.WatchBatch) {
	for _, p := range b.Changes.NewProjects {
		cyan.Fprintf(w, "new project: %s\n", p)
	}
	for _, p := range b.Changes.ChangedProjects {
		cyan.Fprintf(w, "changed project: %s\n", p)
	}
	switch {
	case b.Err != nil:
		red.Fprintf(w, "✗ %v\n", b.Err)
	case b.Result == nil:
		fmt.Fprintln(w, "nothing to update")
	default:
		c := b.Result.Closure
		green.Fprintf(w, "✓ %d project(s) checked, %d dependencies added\n", len(c.Seeds), len(c.Discovered))
		if len(c.Missing) > 0 {
			yellow.Fprintf(w, "  %d missing reference(s)\n", len(c.Missing))
		}
	}
}

// PrintGraph prints the folder tree with each project's references
func PrintGraph(w io.Writer, r *workflow.GraphResult) {
	s := r.Solution
	header(w, "slnkit - Solution Graph")
	fmt.Fprintf(w, "Solution: %s\n", s.Path())
	fmt.Fprintln(w)

	for _, n := range s.RootNodes() {
		printTree(w, r, n, 0)
	}
	fmt.Fprintln(w)

	printCycles(w, r.Cycles)
	fmt.Fprintf(w, "Summary: %d project(s), %d folder(s), %d reference(s)\n",
		len(s.Projects()), len(s.Folders()), len(r.References.Edges()))
}

func printTree(w io.Writer, r *workflow.GraphResult, n model.Node, depth int) {
	indent := strings.Repeat("  ", depth)
	if n.IsFolder() {
		bold.Fprintf(w, "%s%s\\\n", indent, n.Name)
		for _, child := range r.Solution.Children(n) {
			printTree(w, r, child, depth+1)
		}
		return
	}

	fmt.Fprintf(w, "%s%s", indent, n.Name)
	if !n.IsBuildable() {
		yellow.Fprint(w, " (unknown type)")
	}
	var refs []string
	for _, id := range r.References.GetReferences(n.ID) {
		if ref, ok := r.References.GetNode(id); ok {
			refs = append(refs, ref.Name)
		}
	}
	if len(refs) > 0 {
		cyan.Fprintf(w, " -> %s", strings.Join(refs, ", "))
	}
	fmt.Fprintln(w)
}

// WriteGraphJSON writes the exported graph as indented JSON
func WriteGraphJSON(w io.Writer, g *model.Graph) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(g); err != nil {
		return fmt.Errorf("encoding graph: %w", err)
	}
	return nil
}
