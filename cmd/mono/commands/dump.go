package commands

import (
	"fmt"

	"github.com/kr/pretty"
	"github.com/sanity-io/litter"
	"github.com/spf13/cobra"

	"martianoff/mono/internal/driver"
	"martianoff/mono/internal/infer"
)

var (
	dumpRaw     bool
	dumpLiteral bool
)

var dumpCmd = &cobra.Command{
	Use:   "dump FILE",
	Short: "Print the typed tree and the inferred module",
	Long: `Check a tree document and print every node with its inferred type,
followed by each method instantiation and a listing of classes, instance
variables and methods.

With --raw the module listing is printed as a Go value; --literal prints
it as a Go composite literal that can be pasted into a test.`,
	Args: cobra.ExactArgs(1),
	RunE: runDump,
}

func init() {
	dumpCmd.Flags().BoolVar(&dumpRaw, "raw", false, "Print the module listing as a Go value")
	dumpCmd.Flags().BoolVar(&dumpLiteral, "literal", false, "Print the module listing as a Go composite literal")
}

func runDump(cmd *cobra.Command, args []string) error {
	opts, err := renderOptions(cmd)
	if err != nil {
		return err
	}
	res, err := newChecker(cmd).Check(args[0])
	if err != nil {
		if rerr := driver.Report(cmd.ErrOrStderr(), res, opts); rerr != nil {
			return rerr
		}
		return errFailed
	}

	out := cmd.OutOrStdout()
	if err := infer.Print(out, res.Doc.Root); err != nil {
		return err
	}
	fmt.Fprintln(out)
	summary := infer.Summarize(res.Module)
	switch {
	case dumpRaw:
		_, err = pretty.Fprintf(out, "%# v\n", summary)
		return err
	case dumpLiteral:
		_, err = fmt.Fprintln(out, litter.Sdump(summary))
		return err
	}
	return infer.WriteSummary(out, summary)
}
