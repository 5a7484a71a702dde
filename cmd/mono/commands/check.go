package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"martianoff/mono/internal/driver"
	"martianoff/mono/monoerr"
)

var checkCmd = &cobra.Command{
	Use:   "check FILE...",
	Short: "Type-check tree documents",
	Long: `Type-check one or more tree documents. Files are checked
concurrently and independently; a report is printed for each failure.

Examples:
  mono check fib.yaml
  mono check --color=never a.yaml b.yaml`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCheck,
}

func runCheck(cmd *cobra.Command, args []string) error {
	opts, err := renderOptions(cmd)
	if err != nil {
		return err
	}
	results, err := newChecker(cmd).CheckAll(cmd.Context(), args)
	var multi *monoerr.MultiError
	if err != nil && !errors.As(err, &multi) {
		return err
	}
	for _, res := range results {
		if res.Err == nil {
			fmt.Fprintf(cmd.OutOrStdout(), "%s: ok\n", res.Path)
			continue
		}
		if err := driver.Report(cmd.ErrOrStderr(), res, opts); err != nil {
			return err
		}
	}
	if multi != nil {
		return errFailed
	}
	return nil
}
