// Package secrets inventories Actions and Dependabot secrets across an
// organization so the operator can see which secret names must be recreated
// on the destination. Secret values are never readable through the API; the
// audit is name-level only.
package secrets

import (
	"context"
	"fmt"
	"sort"

	"github.com/custodia-labs/orgmig-cli/internal/github"
	"github.com/custodia-labs/orgmig-cli/internal/logger"
)

// Secret is one secret's metadata from a secrets listing.
type Secret struct {
	Name      string `json:"name"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// secretsPage is the counted page shape shared by every secrets endpoint.
type secretsPage struct {
	TotalCount int      `json:"total_count"`
	Secrets    []Secret `json:"secrets"`
}

func (p *secretsPage) MergePage(next *secretsPage) {
	p.TotalCount += next.TotalCount
	p.Secrets = append(p.Secrets, next.Secrets...)
}

// environmentsPage is the counted page shape of the environments listing.
type environmentsPage struct {
	TotalCount   int `json:"total_count"`
	Environments []struct {
		Name string `json:"name"`
	} `json:"environments"`
}

func (p *environmentsPage) MergePage(next *environmentsPage) {
	p.TotalCount += next.TotalCount
	p.Environments = append(p.Environments, next.Environments...)
}

// Inventory is the full secret-name inventory of one organization.
type Inventory struct {
	Org string

	// OrgActions and OrgDependabot are organization-level secret names.
	OrgActions    []string
	OrgDependabot []string

	// RepoActions and RepoDependabot map repository name to secret names.
	RepoActions    map[string][]string
	RepoDependabot map[string][]string

	// EnvSecrets maps "repo/environment" to secret names.
	EnvSecrets map[string][]string
}

// Collect walks the organization's repositories and gathers every secret
// name: org-level and per-repo Actions secrets, org-level and per-repo
// Dependabot secrets, and per-environment secrets.
func Collect(ctx context.Context, c *github.Client, org string, maxPages int) (*Inventory, error) {
	inv := &Inventory{
		Org:            org,
		RepoActions:    make(map[string][]string),
		RepoDependabot: make(map[string][]string),
		EnvSecrets:     make(map[string][]string),
	}

	orgActions, err := fetchSecrets(ctx, c, "orgs/"+org+"/actions/secrets", "org-actions-secrets", maxPages)
	if err != nil {
		return nil, fmt.Errorf("org actions secrets: %w", err)
	}
	inv.OrgActions = orgActions

	orgDependabot, err := fetchSecrets(ctx, c, "orgs/"+org+"/dependabot/secrets", "org-dependabot-secrets", maxPages)
	if err != nil {
		return nil, fmt.Errorf("org dependabot secrets: %w", err)
	}
	inv.OrgDependabot = orgDependabot

	repos, err := github.ListOrgRepos(ctx, c, org, maxPages)
	if err != nil {
		return nil, fmt.Errorf("list repos: %w", err)
	}

	for _, repo := range repos {
		base := "repos/" + org + "/" + repo.Name

		names, err := fetchSecrets(ctx, c, base+"/actions/secrets", "repo-actions-secrets", maxPages)
		if err != nil {
			return nil, fmt.Errorf("repo %s actions secrets: %w", repo.Name, err)
		}
		if len(names) > 0 {
			inv.RepoActions[repo.Name] = names
		}

		names, err = fetchSecrets(ctx, c, base+"/dependabot/secrets", "repo-dependabot-secrets", maxPages)
		if err != nil {
			return nil, fmt.Errorf("repo %s dependabot secrets: %w", repo.Name, err)
		}
		if len(names) > 0 {
			inv.RepoDependabot[repo.Name] = names
		}

		if err := collectEnvSecrets(ctx, c, inv, repo, maxPages); err != nil {
			return nil, err
		}
	}

	return inv, nil
}

func collectEnvSecrets(ctx context.Context, c *github.Client, inv *Inventory, repo github.Repo, maxPages int) error {
	envs, err := github.FetchAllPages[environmentsPage](
		ctx, c, "repos/"+inv.Org+"/"+repo.Name+"/environments?per_page=100", "repo-environments", maxPages)
	if err != nil {
		if github.IsNotFound(err) {
			// Environments are unavailable on some repo types.
			logger.Debug("no environments for %s", repo.Name)
			return nil
		}
		return fmt.Errorf("repo %s environments: %w", repo.Name, err)
	}

	for _, env := range envs.Environments {
		url := fmt.Sprintf("repositories/%d/environments/%s/secrets", repo.ID, env.Name)
		names, err := fetchSecrets(ctx, c, url, "environment-secrets", maxPages)
		if err != nil {
			return fmt.Errorf("repo %s environment %s secrets: %w", repo.Name, env.Name, err)
		}
		if len(names) > 0 {
			inv.EnvSecrets[repo.Name+"/"+env.Name] = names
		}
	}
	return nil
}

func fetchSecrets(ctx context.Context, c *github.Client, url, label string, maxPages int) ([]string, error) {
	page, err := github.FetchAllPages[secretsPage](ctx, c, url+"?per_page=100", label, maxPages)
	if err != nil {
		if github.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}

	names := make([]string, 0, len(page.Secrets))
	for _, s := range page.Secrets {
		names = append(names, s.Name)
	}
	return names, nil
}

// Finding is one secret present on the source but absent on the destination.
type Finding struct {
	Scope string // "org-actions", "org-dependabot", "repo-actions", "repo-dependabot", "environment"
	Where string // repo or repo/environment, empty for org scope
	Name  string
}

// Diff reports every source secret name missing from the destination
// inventory. Ordering is deterministic.
func Diff(src, dst *Inventory) []Finding {
	var findings []Finding

	findings = appendMissing(findings, "org-actions", "", src.OrgActions, dst.OrgActions)
	findings = appendMissing(findings, "org-dependabot", "", src.OrgDependabot, dst.OrgDependabot)

	for _, where := range sortedKeys(src.RepoActions) {
		findings = appendMissing(findings, "repo-actions", where, src.RepoActions[where], dst.RepoActions[where])
	}
	for _, where := range sortedKeys(src.RepoDependabot) {
		findings = appendMissing(findings, "repo-dependabot", where, src.RepoDependabot[where], dst.RepoDependabot[where])
	}
	for _, where := range sortedKeys(src.EnvSecrets) {
		findings = appendMissing(findings, "environment", where, src.EnvSecrets[where], dst.EnvSecrets[where])
	}

	return findings
}

func appendMissing(findings []Finding, scope, where string, src, dst []string) []Finding {
	have := make(map[string]bool, len(dst))
	for _, name := range dst {
		have[name] = true
	}
	for _, name := range src {
		if !have[name] {
			findings = append(findings, Finding{Scope: scope, Where: where, Name: name})
		}
	}
	return findings
}

func sortedKeys(m map[string][]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
