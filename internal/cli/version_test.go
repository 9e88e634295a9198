package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionCommand(t *testing.T) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"version"})
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(buf.String(), "orgmig version "))
}

func TestRootCommand_ListsSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, cmd := range rootCmd.Commands() {
		names[cmd.Name()] = true
	}

	for _, want := range []string{
		"map-users",
		"export-teams",
		"export-repos",
		"export-mannequins",
		"apply-teams",
		"apply-repos",
		"sync-visibility",
		"audit-secrets",
		"version",
	} {
		assert.True(t, names[want], "missing command %s", want)
	}
}
