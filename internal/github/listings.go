package github

import (
	"context"

	"github.com/custodia-labs/orgmig-cli/internal/migrate"
)

// GraphQL documents for the organization listings the migration consumes.
// Every paginated query takes $org and $after and registers its connection
// path explicitly; DiscoverConnection stays as the fallback for shapes with
// no registered path.
const (
	queryExternalIdentities = `
query($org: String!, $after: String) {
  organization(login: $org) {
    samlIdentityProvider {
      externalIdentities(first: 100, after: $after) {
        pageInfo { hasNextPage endCursor }
        edges {
          node {
            samlIdentity {
              nameId
              username
              givenName
              emails { primary value }
            }
            user { login }
          }
        }
      }
    }
  }
}`

	queryMembersWithRole = `
query($org: String!, $after: String) {
  organization(login: $org) {
    membersWithRole(first: 100, after: $after) {
      pageInfo { hasNextPage endCursor }
      edges {
        role
        node {
          login
          name
          email
          organizationVerifiedDomainEmails(login: $org)
        }
      }
    }
  }
}`

	queryMannequins = `
query($org: String!, $after: String) {
  organization(login: $org) {
    mannequins(first: 100, after: $after) {
      pageInfo { hasNextPage endCursor }
      nodes {
        id
        databaseId
        email
        login
        claimant { login }
      }
    }
  }
}`

	queryTeams = `
query($org: String!, $after: String) {
  organization(login: $org) {
    teams(first: 100, after: $after) {
      pageInfo { hasNextPage endCursor }
      nodes {
        name
        slug
        parentTeam { name }
        members(first: 100) {
          edges {
            role
            node { login name }
          }
        }
      }
    }
  }
}`

	queryRepoCollaborators = `
query($org: String!, $after: String) {
  organization(login: $org) {
    repositories(first: 100, after: $after) {
      pageInfo { hasNextPage endCursor }
      nodes {
        name
        collaborators(affiliation: DIRECT, first: 100) {
          edges {
            permission
            node { login }
            permissionSources { permission }
          }
        }
      }
    }
  }
}`
)

// FetchSourceIdentities lists the source organization's SSO external
// identities.
func FetchSourceIdentities(ctx context.Context, c *Client, org string) ([]migrate.SourceIdentity, error) {
	data, err := c.Graph().QueryAllPages(ctx, PagedQuery{
		Query:     queryExternalIdentities,
		Variables: map[string]any{"org": org},
		Locate:    PathLocator("organization", "samlIdentityProvider", "externalIdentities"),
		Label:     "external-identities",
	})
	if err != nil {
		return nil, err
	}

	var decoded struct {
		Organization struct {
			SamlIdentityProvider struct {
				ExternalIdentities struct {
					Edges []struct {
						Node struct {
							SamlIdentity struct {
								NameID    string `json:"nameId"`
								Username  string `json:"username"`
								GivenName string `json:"givenName"`
								Emails    []struct {
									Primary bool   `json:"primary"`
									Value   string `json:"value"`
								} `json:"emails"`
							} `json:"samlIdentity"`
							User struct {
								Login string `json:"login"`
							} `json:"user"`
						} `json:"node"`
					} `json:"edges"`
				} `json:"externalIdentities"`
			} `json:"samlIdentityProvider"`
		} `json:"organization"`
	}
	if err := DecodeTree(data, &decoded); err != nil {
		return nil, err
	}

	edges := decoded.Organization.SamlIdentityProvider.ExternalIdentities.Edges
	identities := make([]migrate.SourceIdentity, 0, len(edges))
	for _, e := range edges {
		id := migrate.SourceIdentity{
			NameID:    e.Node.SamlIdentity.NameID,
			Username:  e.Node.SamlIdentity.Username,
			GivenName: e.Node.SamlIdentity.GivenName,
			Login:     e.Node.User.Login,
		}
		for _, email := range e.Node.SamlIdentity.Emails {
			if email.Primary {
				id.PrimaryEmail = email.Value
				break
			}
		}
		identities = append(identities, id)
	}
	return identities, nil
}

// FetchDestinationMembers lists the destination organization's members with
// their roles and domain-verified emails.
func FetchDestinationMembers(ctx context.Context, c *Client, org string) ([]migrate.DestinationIdentity, error) {
	data, err := c.Graph().QueryAllPages(ctx, PagedQuery{
		Query:     queryMembersWithRole,
		Variables: map[string]any{"org": org},
		Locate:    PathLocator("organization", "membersWithRole"),
		Label:     "members-with-role",
	})
	if err != nil {
		return nil, err
	}

	var decoded struct {
		Organization struct {
			MembersWithRole struct {
				Edges []struct {
					Role string `json:"role"`
					Node struct {
						Login                string   `json:"login"`
						Name                 string   `json:"name"`
						Email                string   `json:"email"`
						VerifiedDomainEmails []string `json:"organizationVerifiedDomainEmails"`
					} `json:"node"`
				} `json:"edges"`
			} `json:"membersWithRole"`
		} `json:"organization"`
	}
	if err := DecodeTree(data, &decoded); err != nil {
		return nil, err
	}

	edges := decoded.Organization.MembersWithRole.Edges
	members := make([]migrate.DestinationIdentity, 0, len(edges))
	for _, e := range edges {
		m := migrate.DestinationIdentity{
			Login: e.Node.Login,
			Name:  e.Node.Name,
			Email: e.Node.Email,
			Role:  e.Role,
		}
		if len(e.Node.VerifiedDomainEmails) > 0 {
			m.VerifiedDomainEmail = e.Node.VerifiedDomainEmails[0]
		}
		members = append(members, m)
	}
	return members, nil
}

// FetchMannequins lists the destination organization's mannequins.
func FetchMannequins(ctx context.Context, c *Client, org string) ([]migrate.Mannequin, error) {
	data, err := c.Graph().QueryAllPages(ctx, PagedQuery{
		Query:     queryMannequins,
		Variables: map[string]any{"org": org},
		Locate:    PathLocator("organization", "mannequins"),
		Label:     "mannequins",
	})
	if err != nil {
		return nil, err
	}

	var decoded struct {
		Organization struct {
			Mannequins struct {
				Nodes []struct {
					ID         string `json:"id"`
					DatabaseID int64  `json:"databaseId"`
					Email      string `json:"email"`
					Login      string `json:"login"`
					Claimant   *struct {
						Login string `json:"login"`
					} `json:"claimant"`
				} `json:"nodes"`
			} `json:"mannequins"`
		} `json:"organization"`
	}
	if err := DecodeTree(data, &decoded); err != nil {
		return nil, err
	}

	nodes := decoded.Organization.Mannequins.Nodes
	mannequins := make([]migrate.Mannequin, 0, len(nodes))
	for _, n := range nodes {
		m := migrate.Mannequin{
			ID:         n.ID,
			DatabaseID: n.DatabaseID,
			Email:      n.Email,
			Login:      n.Login,
		}
		if n.Claimant != nil {
			m.ClaimantLogin = n.Claimant.Login
		}
		mannequins = append(mannequins, m)
	}
	return mannequins, nil
}

// FetchTeamMemberships lists the source organization's teams flattened to one
// record per (team, member).
func FetchTeamMemberships(ctx context.Context, c *Client, org string) ([]migrate.TeamMembershipRecord, error) {
	data, err := c.Graph().QueryAllPages(ctx, PagedQuery{
		Query:     queryTeams,
		Variables: map[string]any{"org": org},
		Locate:    PathLocator("organization", "teams"),
		Label:     "teams",
	})
	if err != nil {
		return nil, err
	}

	var decoded struct {
		Organization struct {
			Teams struct {
				Nodes []struct {
					Name       string `json:"name"`
					Slug       string `json:"slug"`
					ParentTeam *struct {
						Name string `json:"name"`
					} `json:"parentTeam"`
					Members struct {
						Edges []struct {
							Role string `json:"role"`
							Node struct {
								Login string `json:"login"`
								Name  string `json:"name"`
							} `json:"node"`
						} `json:"edges"`
					} `json:"members"`
				} `json:"nodes"`
			} `json:"teams"`
		} `json:"organization"`
	}
	if err := DecodeTree(data, &decoded); err != nil {
		return nil, err
	}

	var records []migrate.TeamMembershipRecord
	for _, team := range decoded.Organization.Teams.Nodes {
		parent := ""
		if team.ParentTeam != nil {
			parent = team.ParentTeam.Name
		}
		for _, member := range team.Members.Edges {
			records = append(records, migrate.TeamMembershipRecord{
				Team:        team.Name,
				Slug:        team.Slug,
				ParentTeam:  parent,
				Role:        member.Role,
				SourceLogin: member.Node.Login,
				SourceName:  member.Node.Name,
			})
		}
	}
	return records, nil
}

// FetchRepositoryAccess lists the source organization's direct collaborators
// flattened to one record per (user, repo), keeping the first permission
// source per collaborator.
func FetchRepositoryAccess(ctx context.Context, c *Client, org string) ([]migrate.RepositoryAccessRecord, error) {
	data, err := c.Graph().QueryAllPages(ctx, PagedQuery{
		Query:     queryRepoCollaborators,
		Variables: map[string]any{"org": org},
		Locate:    PathLocator("organization", "repositories"),
		Label:     "repo-collaborators",
	})
	if err != nil {
		return nil, err
	}

	var decoded struct {
		Organization struct {
			Repositories struct {
				Nodes []struct {
					Name          string `json:"name"`
					Collaborators struct {
						Edges []struct {
							Permission string `json:"permission"`
							Node       struct {
								Login string `json:"login"`
							} `json:"node"`
							PermissionSources []struct {
								Permission string `json:"permission"`
							} `json:"permissionSources"`
						} `json:"edges"`
					} `json:"collaborators"`
				} `json:"nodes"`
			} `json:"repositories"`
		} `json:"organization"`
	}
	if err := DecodeTree(data, &decoded); err != nil {
		return nil, err
	}

	var records []migrate.RepositoryAccessRecord
	for _, repo := range decoded.Organization.Repositories.Nodes {
		for _, edge := range repo.Collaborators.Edges {
			permission := edge.Permission
			if len(edge.PermissionSources) > 0 {
				permission = edge.PermissionSources[0].Permission
			}
			records = append(records, migrate.RepositoryAccessRecord{
				Login:      edge.Node.Login,
				Repo:       repo.Name,
				Permission: permission,
			})
		}
	}
	return records, nil
}
