package cmd

import (
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/svlang/elaborate/pkg/elaborate/compilation"
)

var elaborateCmd = &cobra.Command{
	Use:   "elaborate",
	Short: "elaborate a design and print its diagnostic stream.",
	Long:  "Elaborate registers definitions, selects top modules, instantiates the design, and prints every diagnostic raised along the way.",
	Run: func(cmd *cobra.Command, args []string) {
		configureLogging(cmd)
		opts := buildOptions(cmd)
		//
		c := compilation.New(opts)
		if err := c.Elaborate(); err != nil {
			log.WithError(err).Warn("elaboration did not reach a fixed point")
		}
		//
		renderDiagnostics(c.Diagnostics)
	},
}

func init() {
	rootCmd.AddCommand(elaborateCmd)
}
