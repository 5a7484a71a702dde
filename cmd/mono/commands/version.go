package commands

import (
	"fmt"
	"runtime"
	"runtime/debug"

	"martianoff/mono/internal/treefile"

	"github.com/spf13/cobra"
)

// version is stamped by the release build with
// -ldflags "-X martianoff/mono/cmd/mono/commands.version=v1.2.3".
var version string

// buildVersion prefers the stamped version, then the module version recorded
// by go install, then "dev".
func buildVersion() string {
	if version != "" {
		return version
	}
	if info, ok := debug.ReadBuildInfo(); ok {
		if v := info.Main.Version; v != "" && v != "(devel)" {
			return v
		}
	}
	return "dev"
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the mono version and the tree formats it reads",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		_, err := fmt.Fprintf(cmd.OutOrStdout(), "mono %s\n  tree format: %s\n  built with: %s\n",
			buildVersion(), treefile.FormatConstraint, runtime.Version())
		return err
	},
}
