package cli

import (
	"github.com/spf13/cobra"

	"github.com/MacroPower/acctsim/pkg/version"
)

func GetVersionString() string {
	return version.Version
}

// NewVersionCmd returns the version command.
func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version of the acctsim CLI",
		Args:  cobra.NoArgs,
		Run: func(cc *cobra.Command, _ []string) {
			cc.Println(version.String())
		},
	}
}
