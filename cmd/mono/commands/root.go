// Package commands provides the CLI commands for the mono checker.
package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"martianoff/mono/internal/driver"
	"martianoff/mono/monoerr"
)

var (
	traceFlag bool
	colorFlag string
)

// errFailed is returned once every diagnostic has already been printed.
var errFailed = errors.New("check failed")

var rootCmd = &cobra.Command{
	Use:   "mono",
	Short: "Whole-program type inference for tree documents",
	Long: `mono infers types for programs given as tree documents (YAML files
holding the source text and its syntax tree). Every method is checked
once per distinct argument signature it is called with.

Usage:
  mono check a.yaml b.yaml   Check files, report type errors
  mono dump a.yaml           Print the typed tree and the module table
  mono watch a.yaml          Re-check whenever the file changes
  mono version               Print version`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if !errors.Is(err, errFailed) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(dumpCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().BoolVar(&traceFlag, "trace", false, "Log instantiations and fixpoint passes to stderr")
	rootCmd.PersistentFlags().StringVar(&colorFlag, "color", "auto", "Color diagnostics: auto, always or never")
}

func newChecker(cmd *cobra.Command) *driver.Checker {
	var opts []driver.Option
	if traceFlag {
		opts = append(opts, driver.WithTrace(log.New(cmd.ErrOrStderr(), "trace: ", 0)))
	}
	return driver.NewChecker(opts...)
}

func renderOptions(cmd *cobra.Command) (monoerr.RenderOptions, error) {
	switch colorFlag {
	case "always":
		return monoerr.RenderOptions{Color: true}, nil
	case "never":
		return monoerr.RenderOptions{}, nil
	case "auto":
		return monoerr.RenderOptions{Color: isTerminal(cmd.ErrOrStderr())}, nil
	}
	return monoerr.RenderOptions{}, fmt.Errorf("invalid --color value %q (want auto, always or never)", colorFlag)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
