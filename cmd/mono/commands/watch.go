package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"martianoff/mono/internal/driver"
)

var watchCmd = &cobra.Command{
	Use:   "watch FILE...",
	Short: "Re-check tree documents whenever they change",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	opts, err := renderOptions(cmd)
	if err != nil {
		return err
	}
	checker := newChecker(cmd)
	check := func(path string) {
		res, err := checker.Check(path)
		if err == nil {
			fmt.Fprintf(cmd.OutOrStdout(), "%s: ok\n", path)
			return
		}
		if rerr := driver.Report(cmd.ErrOrStderr(), res, opts); rerr != nil {
			fmt.Fprintln(cmd.ErrOrStderr(), "Error:", rerr)
		}
	}

	w, err := driver.NewWatcher(args...)
	if err != nil {
		return fmt.Errorf("watching: %w", err)
	}
	defer w.Close()

	for _, path := range args {
		check(path)
	}
	return w.Run(cmd.Context(), check)
}
