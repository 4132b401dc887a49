// Package cmd implements the svlangc command-line tree: cobra wiring over
// the elaboration engine's programmatic API — a thin cobra shell (root.go
// plus one file per subcommand) with shared flag-access helpers in
// util.go, rather than a bespoke CLI framework.
package cmd

import (
	"fmt"
	"os"
	"runtime/debug"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// Version is filled in when building via `make`; left empty for `go install`.
var Version string

var rootCmd = &cobra.Command{
	Use:   "svlangc",
	Short: "A semantic elaboration engine for a SystemVerilog-family design language.",
	Long:  "svlangc elaborates a design's syntax trees into a fully bound symbol graph and reports diagnostics.",
	Run: func(cmd *cobra.Command, args []string) {
		if GetFlag(cmd, "version") {
			fmt.Print("svlangc ")
			if Version != "" {
				fmt.Printf("%s", Version)
			} else if info, ok := debug.ReadBuildInfo(); ok {
				fmt.Printf("%s", info.Main.Version)
			} else {
				fmt.Print("(unknown version)")
			}
			fmt.Println()
		}
	},
}

// Execute runs rootCmd, whose subcommands are added by the init functions of
// this package's command files, and exits with status 1 on error. Called
// once by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().Bool("version", false, "report the version of this executable")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "increase logging verbosity")
	rootCmd.PersistentFlags().Bool("lint", false, "enable lintMode (suppress some errors that are warnings during linting)")
	rootCmd.PersistentFlags().Bool("suppress-unused", false, "suppress unused-symbol/out-of-block diagnostics")
	rootCmd.PersistentFlags().Bool("allow-hierarchical-const", false, "permit hierarchical names in constant expressions")
	rootCmd.PersistentFlags().Bool("relax-enum-conversions", false, "relax implicit enum conversion checking")
	rootCmd.PersistentFlags().Bool("allow-dup-initial-drivers", false, "permit duplicate initial drivers on always_comb signals")
	rootCmd.PersistentFlags().Bool("strict-driver-checking", false, "disable for-loop-unrolled driver accounting")
	rootCmd.PersistentFlags().String("min-typ-max", "max", "branch of min:typ:max expressions to evaluate (min|typ|max)")
	rootCmd.PersistentFlags().Int("max-instance-depth", 128, "maximum module instantiation depth")
	rootCmd.PersistentFlags().Int("max-generate-steps", 131072, "maximum generate-block elaboration steps")
	rootCmd.PersistentFlags().Int("max-constexpr-depth", 128, "maximum constant-evaluation call depth")
	rootCmd.PersistentFlags().Int("max-constexpr-steps", 100000, "maximum constant-evaluation step budget")
	rootCmd.PersistentFlags().Int("max-constexpr-backtrace", 10, "maximum frames reported in a constant-evaluation backtrace")
	rootCmd.PersistentFlags().Int("max-defparam-steps", 128, "maximum defparam fixed-point iterations")
	rootCmd.PersistentFlags().Int("error-limit", 64, "stop elaboration after this many distinct errors (0 = unlimited)")
	rootCmd.PersistentFlags().Int("typo-correction-limit", 32, "global budget for typo-correction suggestion search")
	rootCmd.PersistentFlags().StringArrayP("top", "t", []string{}, "explicit top-module name (repeatable)")
	rootCmd.PersistentFlags().StringArrayP("define", "D", []string{}, "defparam/parameter override, e.g. top.WIDTH=32")
}

func configureLogging(cmd *cobra.Command) {
	if GetFlag(cmd, "verbose") {
		log.SetLevel(log.DebugLevel)
	}
}
