// Package apply replays exported mapping files onto the destination
// organization: team memberships and repository collaborator permissions.
// Every write goes through the client's mutation throttle. Missing entities
// are warnings, not failures — a half-migrated organization is expected
// while repositories are still arriving.
package apply

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/orgmig-cli/internal/github"
	"github.com/custodia-labs/orgmig-cli/internal/logger"
	"github.com/custodia-labs/orgmig-cli/internal/migrate"
)

// Result counts the outcome of one apply run.
type Result struct {
	Applied int
	Skipped int
}

// TeamMemberships adds each mapped user to the destination team named by its
// row. Teams connected to an IdP external group are managed by the identity
// provider, so their rows are skipped. 404 responses (team or user not
// present yet) are warnings.
func TeamMemberships(ctx context.Context, c *github.Client, org string, rows []migrate.TeamMappingRow) (Result, error) {
	var res Result

	// Teams repeat across rows; resolve the external-group question once per
	// slug.
	externallyManaged := make(map[string]bool)

	for _, row := range rows {
		managed, known := externallyManaged[row.Slug]
		if !known {
			var err error
			managed, err = c.TeamHasExternalGroup(ctx, org, row.Slug)
			if err != nil {
				if github.IsNotFound(err) {
					logger.Warn("team %s not found in %s, skipping %s", row.Slug, org, row.Destination)
					res.Skipped++
					continue
				}
				return res, fmt.Errorf("check external group for %s: %w", row.Slug, err)
			}
			externallyManaged[row.Slug] = managed
		}
		if managed {
			logger.Warn("team %s is managed by an external group, skipping %s", row.Slug, row.Destination)
			res.Skipped++
			continue
		}

		role := teamRole(row.Role)
		if err := c.PutTeamMembership(ctx, org, row.Slug, row.Destination, role); err != nil {
			if github.IsNotFound(err) {
				logger.Warn("membership put failed for %s on %s (not found), skipping", row.Destination, row.Slug)
				res.Skipped++
				continue
			}
			return res, fmt.Errorf("add %s to %s: %w", row.Destination, row.Slug, err)
		}
		logger.Info("added %s to team %s as %s", row.Destination, row.Slug, role)
		res.Applied++
	}

	return res, nil
}

// RepoPermissions grants each mapped user their permission on the destination
// repository. 404 responses (repository not yet migrated, or user not yet a
// member) are warnings.
func RepoPermissions(ctx context.Context, c *github.Client, org string, rows []migrate.RepoMappingRow) (Result, error) {
	var res Result

	for _, row := range rows {
		permission := collaboratorPermission(row.Permission)
		if err := c.PutCollaborator(ctx, org, row.Repository, row.Destination, permission); err != nil {
			if github.IsNotFound(err) {
				logger.Warn("collaborator put failed for %s on %s (not found), skipping", row.Destination, row.Repository)
				res.Skipped++
				continue
			}
			return res, fmt.Errorf("grant %s on %s to %s: %w", permission, row.Repository, row.Destination, err)
		}
		logger.Info("granted %s on %s to %s", permission, row.Repository, row.Destination)
		res.Applied++
	}

	return res, nil
}

// teamRole converts a GraphQL team member role to the REST membership role.
func teamRole(role string) string {
	if strings.EqualFold(role, "MAINTAINER") {
		return "maintainer"
	}
	return "member"
}

// collaboratorPermission converts a GraphQL permission to the REST
// collaborator permission name.
func collaboratorPermission(permission string) string {
	switch strings.ToUpper(permission) {
	case "ADMIN":
		return "admin"
	case "MAINTAIN":
		return "maintain"
	case "WRITE":
		return "push"
	case "TRIAGE":
		return "triage"
	default:
		return "pull"
	}
}
