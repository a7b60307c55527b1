package cmd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestGetPublishCmd verifies publish and its schema subcommands.
func TestGetPublishCmd(t *testing.T) {
	cmd := getPublishCmd()
	assert.Equal(t, "publish [HUC8...]", cmd.Use)
	assert.NotNil(t, cmd.RunE)
	assert.Contains(t, cmd.Long, "hydro_tables")
	assert.Contains(t, cmd.Long, "publish_runs")

	names := make(map[string]bool)
	for _, c := range cmd.Commands() {
		names[c.Name()] = true
	}
	assert.True(t, names["schema"])
	assert.True(t, names["migrate"])
}

// TestGetSchemaCmd_ForceFlag verifies the --force flag.
func TestGetSchemaCmd_ForceFlag(t *testing.T) {
	cmd := getSchemaCmd()
	flag := cmd.Flags().Lookup("force")
	require.NotNil(t, flag, "Should have force flag")
	assert.Equal(t, "f", flag.Shorthand)
	assert.Equal(t, "false", flag.DefValue)
}

// TestGetMigrateCmd_HelpText verifies help text content.
func TestGetMigrateCmd_HelpText(t *testing.T) {
	cmd := getMigrateCmd()

	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--help"})

	err := cmd.Execute()
	require.NoError(t, err)

	helpText := buf.String()
	assert.Contains(t, helpText, "migrate")
	assert.Contains(t, helpText, "Data is kept")
	assert.Contains(t, helpText, "Examples:")
}

// TestGetMigrateCmd_IndependentInstances verifies each
// call returns independent instance.
func TestGetMigrateCmd_IndependentInstances(t *testing.T) {
	cmd1 := getMigrateCmd()
	cmd2 := getMigrateCmd()
	assert.NotSame(t, cmd1, cmd2,
		"Each call should return new instance")
}
