// Command vectraproj projects high-dimensional embeddings to 2D or 3D
// coordinates with UMAP.
//
// Without a subcommand it reads one JSON request on stdin and writes the
// projected points to stdout.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/rupamthxt/vectraproj/internal/config"
	"github.com/rupamthxt/vectraproj/internal/projection"
	"github.com/rupamthxt/vectraproj/internal/umap"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes the command line and returns the process exit code. Any
// failure is reported as a single "Error: ..." line on stderr.
func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	root := newRootCmd(stderr)
	if args == nil {
		// cobra reads os.Args when given nil.
		args = []string{}
	}
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

type app struct {
	opts   config.Options
	cfg    *config.Config
	logger *slog.Logger
}

func (a *app) load(stderr io.Writer) error {
	cfg, err := config.Load(a.opts)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = newLogger(stderr, cfg.Log.Level)
	return nil
}

func (a *app) runner(components int, opts ...projection.Option) *projection.Runner {
	return projection.NewRunner(components, a.logger, opts...)
}

// engineCheck is replaced in tests.
var engineCheck = umap.Available

// checkEngine fails fast when the projection engine cannot complete a
// trivial fit, before any input is consumed.
func checkEngine() error {
	if err := engineCheck(); err != nil {
		return fmt.Errorf("projection engine unavailable: %w", err)
	}
	return nil
}

func newRootCmd(stderr io.Writer) *cobra.Command {
	a := &app{}
	var twoD bool

	root := &cobra.Command{
		Use:           "vectraproj",
		Short:         "Project embeddings to 2D or 3D coordinates with UMAP",
		Long:          "Reads {\"embeddings\":[{\"id\":...,\"embedding\":[...]}]} on stdin and writes [{\"id\",\"x\",\"y\",\"z\"}] to stdout.",
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.load(stderr)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := checkEngine(); err != nil {
				return err
			}
			components := a.cfg.Projector.DefaultComponents
			if twoD {
				components = 2
			}
			return a.runner(components).Run(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	root.PersistentFlags().StringVar(&a.opts.ConfigFile, "config", "", "path to a config file (yaml, json or toml)")
	root.PersistentFlags().StringVar(&a.opts.EnvFile, "env-file", "", "path to a .env file")
	root.Flags().BoolVar(&twoD, "2d", false, "project to 2 components unless the request sets n_components")

	root.AddCommand(newServeCmd(a), newSyncCmd(a), newVersionCmd())
	return root
}
