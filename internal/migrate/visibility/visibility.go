// Package visibility reconciles repository visibility between the source and
// destination organizations: repositories migrated as private are patched
// back to their source visibility.
package visibility

import (
	"context"
	"fmt"

	"github.com/custodia-labs/orgmig-cli/internal/github"
	"github.com/custodia-labs/orgmig-cli/internal/logger"
)

// Change is one repository whose destination visibility differs from the
// source.
type Change struct {
	Repo    string
	Current string
	Want    string
	Applied bool
}

// Sync compares every source repository's visibility with its destination
// counterpart. Repositories missing on the destination are skipped with a
// warning. When apply is true, differing repositories are patched (throttled);
// otherwise the changes are only reported.
func Sync(ctx context.Context, src, dst *github.Client, srcOrg, dstOrg string, apply bool) ([]Change, error) {
	repos, err := github.ListOrgRepos(ctx, src, srcOrg, github.DefaultMaxPages)
	if err != nil {
		return nil, fmt.Errorf("list source repos: %w", err)
	}

	var changes []Change
	for _, repo := range repos {
		destRepo, err := dst.GetRepository(ctx, dstOrg, repo.Name)
		if err != nil {
			if github.IsNotFound(err) {
				logger.Warn("repo %s not found in %s, skipping", repo.Name, dstOrg)
				continue
			}
			return changes, fmt.Errorf("get %s/%s: %w", dstOrg, repo.Name, err)
		}

		current := destRepo.GetVisibility()
		if current == repo.Visibility {
			continue
		}

		change := Change{Repo: repo.Name, Current: current, Want: repo.Visibility}
		if apply {
			if err := dst.SetRepositoryVisibility(ctx, dstOrg, repo.Name, repo.Visibility); err != nil {
				return changes, fmt.Errorf("set visibility on %s/%s: %w", dstOrg, repo.Name, err)
			}
			change.Applied = true
			logger.Info("set %s/%s visibility to %s", dstOrg, repo.Name, repo.Visibility)
		}
		changes = append(changes, change)
	}

	return changes, nil
}
