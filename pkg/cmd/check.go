package cmd

import (
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/svlang/elaborate/pkg/elaborate/compilation"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "elaborate with lintMode enabled and fail on any error diagnostic.",
	Long:  "check runs the same pipeline as elaborate but forces lintMode on and exits non-zero if any error-severity diagnostic was raised.",
	Run: func(cmd *cobra.Command, args []string) {
		configureLogging(cmd)
		opts := buildOptions(cmd)
		opts.LintMode = true
		//
		c := compilation.New(opts)
		if err := c.Elaborate(); err != nil {
			log.WithError(err).Warn("elaboration did not reach a fixed point")
		}
		//
		renderDiagnostics(c.Diagnostics)
		exitOnErrors(c.Diagnostics)
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
