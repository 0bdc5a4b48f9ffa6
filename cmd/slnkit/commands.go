package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/ritzau/slnkit/pkg/config"
	"github.com/ritzau/slnkit/pkg/output"
	"github.com/ritzau/slnkit/pkg/workflow"
)

func newAddCmd() *cobra.Command {
	add := &cobra.Command{
		Use:   "add",
		Short: "Add projects and their references to a solution",
	}

	add.AddCommand(&cobra.Command{
		Use:   "folder [dir]",
		Short: "Add every project under a directory, plus everything they reference",
		Args:  cobra.MaximumNArgs(1),
		RunE: run("add folder", func(ctx context.Context, _ *config.Config, r *workflow.Runner, args []string) error {
			dir := ""
			if len(args) == 1 {
				dir = args[0]
			}
			result, err := r.AddFolder(ctx, dir)
			if result != nil {
				output.PrintAddReport(os.Stdout, result)
			}
			return err
		}),
	})

	add.AddCommand(&cobra.Command{
		Use:   "project <project>",
		Short: "Add a project and its reference closure",
		Long: `Add a project and every project it references, directly or transitively.
The project is a project file, a directory holding one project, or a project
name searched for under --root. Discovered dependencies are placed in the
--dependencies-folder solution folder.`,
		Args: cobra.ExactArgs(1),
		RunE: run("add project", func(ctx context.Context, _ *config.Config, r *workflow.Runner, args []string) error {
			result, err := r.AddProject(ctx, args[0])
			if result != nil {
				output.PrintAddReport(os.Stdout, result)
			}
			return err
		}),
	})
	return add
}

func newMoveCmd() *cobra.Command {
	move := &cobra.Command{
		Use:   "move",
		Short: "Move a project on disk or within the solution",
	}

	move.AddCommand(&cobra.Command{
		Use:   "disk <project> <destination>",
		Short: "Move a project on disk and repair every reference to and from it",
		Long: `Move a project on disk. The destination is the new project file path, or
the new project directory.

The project's directory is nested under the destination only when the
destination is an existing non-empty directory, like mv. A missing or empty
destination becomes the project directory itself: "move disk Lib libs" puts
Lib.csproj in libs/Lib when libs has content, and in libs otherwise.

A solution file inside the project directory moves with it. With
--find-solutions every solution under --root that lists the project is
updated.`,
		Args: cobra.ExactArgs(2),
		RunE: run("move disk", func(ctx context.Context, _ *config.Config, r *workflow.Runner, args []string) error {
			result, err := r.MoveOnDisk(ctx, args[0], args[1])
			if err != nil {
				return err
			}
			output.PrintMoveReport(os.Stdout, result)
			return nil
		}),
	})

	move.AddCommand(&cobra.Command{
		Use:   "solution <project> <folder-path>",
		Short: "Move a project or folder into a solution folder, creating it if needed",
		Args:  cobra.ExactArgs(2),
		RunE: run("move solution", func(ctx context.Context, _ *config.Config, r *workflow.Runner, args []string) error {
			result, err := r.MoveToFolder(ctx, args[0], args[1])
			if err != nil {
				return err
			}
			output.PrintFolderReport(os.Stdout, result)
			return nil
		}),
	})
	return move
}

func newGraphCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "graph",
		Short: "Print the solution's folders, project references and reference cycles",
		Args:  cobra.NoArgs,
		RunE: run("graph", func(ctx context.Context, cfg *config.Config, r *workflow.Runner, _ []string) error {
			result, err := r.Graph(ctx)
			if err != nil {
				return err
			}
			if cfg.JSON {
				return output.WriteGraphJSON(os.Stdout, result.Export())
			}
			output.PrintGraph(os.Stdout, result)
			return nil
		}),
	}
}

func newWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch [dir]",
		Short: "Add project files to the solution as they appear",
		Args:  cobra.MaximumNArgs(1),
		RunE: run("watch", func(ctx context.Context, _ *config.Config, r *workflow.Runner, args []string) error {
			dir := ""
			if len(args) == 1 {
				dir = args[0]
			}
			return r.Watch(ctx, dir, func(b *workflow.WatchBatch) {
				output.PrintWatchBatch(os.Stdout, b)
			})
		}),
	}
}
