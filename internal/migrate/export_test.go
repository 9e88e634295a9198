package migrate

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/orgmig-cli/internal/logger"
)

func TestExportTeamMappings(t *testing.T) {
	records := []TeamMembershipRecord{
		{Team: "Platform", Slug: "platform", Role: "MAINTAINER", SourceLogin: "alice"},
		{Team: "Platform", Slug: "platform", Role: "MEMBER", SourceLogin: "ghost"},
	}
	mapping := map[string]string{"alice": "alice2"}

	var warnings bytes.Buffer
	logger.SetOutput(&warnings)
	defer logger.SetOutput(os.Stderr)

	rows := ExportTeamMappings(records, mapping)

	require.Len(t, rows, 1)
	assert.Equal(t, TeamMappingRow{
		Team:        "Platform",
		Slug:        "platform",
		Role:        "MAINTAINER",
		Source:      "alice",
		Destination: "alice2",
	}, rows[0])
	assert.Contains(t, warnings.String(), "ghost")
}

func TestExportRepoMappings_FirstPermissionWins(t *testing.T) {
	records := []RepositoryAccessRecord{
		{Login: "alice", Repo: "api", Permission: "WRITE"},
		{Login: "alice", Repo: "api", Permission: "ADMIN"}, // later duplicate ignored
		{Login: "alice", Repo: "web", Permission: "READ"},
	}
	mapping := map[string]string{"alice": "alice2"}

	rows := ExportRepoMappings(records, mapping)

	require.Len(t, rows, 2)
	assert.Equal(t, "WRITE", rows[0].Permission)
	assert.Equal(t, "api", rows[0].Repository)
	assert.Equal(t, "web", rows[1].Repository)
}

func TestExportRepoMappings_DropsUnresolved(t *testing.T) {
	records := []RepositoryAccessRecord{
		{Login: "ghost", Repo: "api", Permission: "WRITE"},
	}

	rows := ExportRepoMappings(records, map[string]string{})

	assert.Empty(t, rows)
}

func TestExportMannequinMappings(t *testing.T) {
	mannequins := []Mannequin{
		{ID: "M_1", Login: "alice", Email: "alice@co"},
		{ID: "M_2", Login: "dependabot[bot]"},
		{ID: "M_3", Login: "bob", ClaimantLogin: "bob2"},
		{ID: "M_4", Login: "ghost"},
	}
	mapping := map[string]string{"alice": "alice2", "bob": "bob2"}

	rows := ExportMannequinMappings(mannequins, mapping)

	// Bots and claimed mannequins are excluded before lookup; unresolvable
	// mannequins are dropped.
	require.Len(t, rows, 1)
	assert.Equal(t, MannequinMappingRow{
		MannequinUser: "alice",
		MannequinID:   "M_1",
		TargetUser:    "alice2",
	}, rows[0])
}

func TestMannequinIsBot(t *testing.T) {
	assert.True(t, Mannequin{Login: "dependabot[bot]"}.IsBot())
	assert.False(t, Mannequin{Login: "alice"}.IsBot())
}
