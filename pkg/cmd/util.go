package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/svlang/elaborate/pkg/elaborate/compilation"
)

// GetFlag reads a bool flag, exiting the process on a programming error
// (an unregistered flag name) rather than returning a zero value that
// would silently mask the mistake.
func GetFlag(cmd *cobra.Command, flag string) bool {
	r, err := cmd.Flags().GetBool(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}
	return r
}

// GetString reads a string flag.
func GetString(cmd *cobra.Command, flag string) string {
	r, err := cmd.Flags().GetString(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}
	return r
}

// GetStringArray reads a repeatable string flag.
func GetStringArray(cmd *cobra.Command, flag string) []string {
	r, err := cmd.Flags().GetStringArray(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}
	return r
}

// GetInt reads an int flag.
func GetInt(cmd *cobra.Command, flag string) int {
	r, err := cmd.Flags().GetInt(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}
	return r
}

// buildOptions assembles a compilation.Options directly from the persistent
// flag set, one field per flag.
func buildOptions(cmd *cobra.Command) compilation.Options {
	opts := compilation.DefaultOptions()
	opts.LintMode = GetFlag(cmd, "lint")
	opts.SuppressUnused = GetFlag(cmd, "suppress-unused")
	opts.AllowHierarchicalConst = GetFlag(cmd, "allow-hierarchical-const")
	opts.RelaxEnumConversions = GetFlag(cmd, "relax-enum-conversions")
	opts.AllowDupInitialDrivers = GetFlag(cmd, "allow-dup-initial-drivers")
	opts.StrictDriverChecking = GetFlag(cmd, "strict-driver-checking")
	opts.MinTypMax = GetString(cmd, "min-typ-max")
	opts.MaxInstanceDepth = GetInt(cmd, "max-instance-depth")
	opts.MaxGenerateSteps = GetInt(cmd, "max-generate-steps")
	opts.MaxConstexprDepth = GetInt(cmd, "max-constexpr-depth")
	opts.MaxConstexprSteps = GetInt(cmd, "max-constexpr-steps")
	opts.MaxConstexprBacktrace = GetInt(cmd, "max-constexpr-backtrace")
	opts.MaxDefParamSteps = GetInt(cmd, "max-defparam-steps")
	opts.ErrorLimit = GetInt(cmd, "error-limit")
	opts.TypoCorrectionLimit = GetInt(cmd, "typo-correction-limit")
	opts.TopModules = GetStringArray(cmd, "top")
	//
	opts.ParamOverrides = map[string]string{}
	for _, d := range GetStringArray(cmd, "define") {
		if path, value, ok := strings.Cut(d, "="); ok {
			opts.ParamOverrides[path] = value
		}
	}
	//
	return opts
}

// isColorTerminal reports whether stdout is an interactive terminal,
// gating colored diagnostic rendering the way a production front-end
// avoids emitting ANSI escapes into a redirected log file.
func isColorTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}
