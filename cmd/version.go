package cmd

import (
	"fmt"

	"github.com/rnwolfe/rack/internal/hook"
	"github.com/rnwolfe/rack/internal/version"
	"github.com/spf13/cobra"
)

var (
	versionShort bool
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print rack version",
	RunE:  hook.Wrap("version", runVersion),
}

func runVersion(_ *cobra.Command, _ []string) error {
	if versionShort {
		fmt.Println(version.Short())
	} else {
		fmt.Println(version.Full())
	}
	return nil
}

func init() {
	versionCmd.Flags().BoolVar(&versionShort, "short", false, "Print only the version number")
}
