package cmd

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
)

func newTestCommand() *cobra.Command {
	c := &cobra.Command{Use: "test"}
	c.Flags().Bool("lint", false, "")
	c.Flags().Bool("suppress-unused", false, "")
	c.Flags().Bool("allow-hierarchical-const", false, "")
	c.Flags().Bool("relax-enum-conversions", false, "")
	c.Flags().Bool("allow-dup-initial-drivers", false, "")
	c.Flags().Bool("strict-driver-checking", false, "")
	c.Flags().String("min-typ-max", "max", "")
	c.Flags().Int("max-instance-depth", 128, "")
	c.Flags().Int("max-generate-steps", 131072, "")
	c.Flags().Int("max-constexpr-depth", 128, "")
	c.Flags().Int("max-constexpr-steps", 100000, "")
	c.Flags().Int("max-constexpr-backtrace", 10, "")
	c.Flags().Int("max-defparam-steps", 128, "")
	c.Flags().Int("error-limit", 64, "")
	c.Flags().Int("typo-correction-limit", 32, "")
	c.Flags().StringArray("top", []string{}, "")
	c.Flags().StringArray("define", []string{}, "")
	return c
}

func TestGetFlagReadsBoolValue(t *testing.T) {
	c := newTestCommand()
	assert.NoError(t, c.Flags().Set("lint", "true"))
	assert.True(t, GetFlag(c, "lint"))
}

func TestGetStringReadsDefault(t *testing.T) {
	c := newTestCommand()
	assert.Equal(t, "max", GetString(c, "min-typ-max"))
}

func TestGetIntReadsOverride(t *testing.T) {
	c := newTestCommand()
	assert.NoError(t, c.Flags().Set("max-instance-depth", "7"))
	assert.Equal(t, 7, GetInt(c, "max-instance-depth"))
}

func TestGetStringArrayReadsRepeatedValues(t *testing.T) {
	c := newTestCommand()
	assert.NoError(t, c.Flags().Set("top", "foo"))
	assert.NoError(t, c.Flags().Set("top", "bar"))
	assert.Equal(t, []string{"foo", "bar"}, GetStringArray(c, "top"))
}

func TestBuildOptionsParsesDefineIntoParamOverrides(t *testing.T) {
	c := newTestCommand()
	assert.NoError(t, c.Flags().Set("define", "top.WIDTH=32"))
	//
	opts := buildOptions(c)
	assert.Equal(t, "32", opts.ParamOverrides["top.WIDTH"])
}

func TestBuildOptionsCarriesFlagsThroughToOptions(t *testing.T) {
	c := newTestCommand()
	assert.NoError(t, c.Flags().Set("lint", "true"))
	assert.NoError(t, c.Flags().Set("top", "cpu"))
	//
	opts := buildOptions(c)
	assert.True(t, opts.LintMode)
	assert.Equal(t, []string{"cpu"}, opts.TopModules)
}
