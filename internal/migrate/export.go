package migrate

import (
	"strings"

	"github.com/custodia-labs/orgmig-cli/internal/logger"
)

// TeamMappingRow is one row of the team mapping export.
type TeamMappingRow struct {
	Team        string
	Slug        string
	Role        string
	Source      string
	Destination string
}

// RepoMappingRow is one row of the repository-access mapping export.
type RepoMappingRow struct {
	Repository  string
	Permission  string
	Source      string
	Destination string
}

// MannequinMappingRow is one row of the mannequin remap export.
type MannequinMappingRow struct {
	MannequinUser string
	MannequinID   string
	TargetUser    string
}

// ExportTeamMappings joins raw team membership rows against the login map,
// substituting the destination login. Rows whose source login has no
// resolution are dropped with a warning.
func ExportTeamMappings(records []TeamMembershipRecord, mapping map[string]string) []TeamMappingRow {
	rows := make([]TeamMappingRow, 0, len(records))
	for _, rec := range records {
		dest, ok := mapping[strings.ToLower(rec.SourceLogin)]
		if !ok {
			logger.Warn("no destination for team member %s (team %s), dropping", rec.SourceLogin, rec.Team)
			continue
		}
		rows = append(rows, TeamMappingRow{
			Team:        rec.Team,
			Slug:        rec.Slug,
			Role:        rec.Role,
			Source:      rec.SourceLogin,
			Destination: dest,
		})
	}
	return rows
}

// ExportRepoMappings joins repository-access rows against the login map.
// Only the first discovered permission per (user, repo) pair is kept; later
// duplicates are ignored so the export carries one row per collaborator per
// repository. Unresolvable rows are dropped with a warning.
func ExportRepoMappings(records []RepositoryAccessRecord, mapping map[string]string) []RepoMappingRow {
	rows := make([]RepoMappingRow, 0, len(records))
	seen := make(map[string]bool, len(records))

	for _, rec := range records {
		key := strings.ToLower(rec.Login) + "\x00" + rec.Repo
		if seen[key] {
			continue
		}
		seen[key] = true

		dest, ok := mapping[strings.ToLower(rec.Login)]
		if !ok {
			logger.Warn("no destination for collaborator %s (repo %s), dropping", rec.Login, rec.Repo)
			continue
		}
		rows = append(rows, RepoMappingRow{
			Repository:  rec.Repo,
			Permission:  rec.Permission,
			Source:      rec.Login,
			Destination: dest,
		})
	}
	return rows
}

// ExportMannequinMappings joins destination mannequins against the login map.
// Bot mannequins and mannequins already claimed by a real account are
// excluded before the lookup; unresolvable mannequins are dropped with a
// warning.
func ExportMannequinMappings(mannequins []Mannequin, mapping map[string]string) []MannequinMappingRow {
	rows := make([]MannequinMappingRow, 0, len(mannequins))
	for _, m := range mannequins {
		if m.IsBot() {
			logger.Debug("mannequin %s is a bot account, excluding", m.Login)
			continue
		}
		if m.ClaimantLogin != "" {
			logger.Debug("mannequin %s already claimed by %s, excluding", m.Login, m.ClaimantLogin)
			continue
		}

		target, ok := mapping[strings.ToLower(m.Login)]
		if !ok {
			logger.Warn("no destination for mannequin %s, dropping", m.Login)
			continue
		}
		rows = append(rows, MannequinMappingRow{
			MannequinUser: m.Login,
			MannequinID:   m.ID,
			TargetUser:    target,
		})
	}
	return rows
}
