package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ritzau/slnkit/pkg/config"
	"github.com/ritzau/slnkit/pkg/dotnet"
	"github.com/ritzau/slnkit/pkg/logging"
	"github.com/ritzau/slnkit/pkg/workflow"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "slnkit",
		Short:         "Keep .NET solutions, folders and project references consistent",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.StringP("solution", "s", "", "Solution file (default: the only .sln under --root)")
	flags.Bool("find-solutions", false, "Repair every solution under --root that contains the project")
	flags.String("root", ".", "Directory searched for projects and solutions")
	flags.String("dependencies-folder", "Dependencies", "Solution folder for discovered dependencies")
	flags.StringP("folder", "f", "", "Solution folder for the requested projects (e.g. Apps/Web)")
	flags.BoolP("dry-run", "n", false, "Report what would change without writing anything")
	flags.Bool("dotnet-cli", true, "Create missing solutions with the dotnet CLI")
	flags.String("dotnet", "dotnet", "dotnet binary")
	flags.Duration("debounce", 500*time.Millisecond, "Quiet period before a watch batch is applied")
	flags.Bool("json", false, "Print the graph as JSON")
	flags.String("verbosity", "", "Log level: trace, debug, info, warn or error")
	flags.CountP("verbose", "v", "Increase log verbosity (-v debug, -vv trace)")
	flags.Bool("log-json", false, "Write logs as JSON")

	root.AddCommand(newAddCmd(), newMoveCmd(), newGraphCmd(), newWatchCmd())
	return root
}

// setup loads the configuration for cmd and builds the runner
func setup(cmd *cobra.Command) (*config.Config, *workflow.Runner, error) {
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return nil, nil, err
	}

	level := logging.ParseLevel(cfg.Verbosity, cfg.VerboseCnt)
	if cfg.LogJSON {
		logging.SetJSONOutput(level)
	} else {
		logging.SetLevel(level)
	}

	shell := dotnet.NewShell(dotnet.NewExecutor(cfg.Dotnet))
	return cfg, workflow.NewRunner(cfg, shell), nil
}

// run wraps a command body with run tracking
func run(name string, body func(ctx context.Context, cfg *config.Config, r *workflow.Runner, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfg, runner, err := setup(cmd)
		if err != nil {
			return err
		}
		ctx, finish := logging.StartRun(cmd.Context(), name)
		err = body(ctx, cfg, runner, args)
		finish(err)
		return err
	}
}
