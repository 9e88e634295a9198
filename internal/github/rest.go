package github

import (
	"context"

	"github.com/custodia-labs/orgmig-cli/internal/logger"
)

// PageMerger is implemented by typed REST page shapes that know how to fold a
// subsequent page into themselves. Counted shapes (total_count plus an item
// array) sum their totals and concatenate items; plain list shapes
// concatenate. Declaring the merge per shape keeps pagination structural
// knowledge in one typed place instead of discovering array fields at
// runtime.
type PageMerger[P any] interface {
	MergePage(next P)
}

// FetchAllPages walks a Link-header-paginated REST listing starting at
// urlStr, merging every page into a single result. Pagination follows the
// rel="next" URL while a rel="last" URL distinct from the current page
// exists. maxPages is a hard ceiling: reaching it with pages still remaining
// fails with ErrPagingExhausted rather than returning a silently truncated
// listing.
func FetchAllPages[T any, P interface {
	*T
	PageMerger[P]
}](ctx context.Context, c *Client, urlStr, label string, maxPages int) (P, error) {
	var acc P
	current := urlStr

	for {
		if maxPages <= 0 {
			return nil, ErrPagingExhausted
		}
		maxPages--

		page := P(new(T))
		resp, err := c.GetJSON(ctx, current, label, page)
		if err != nil {
			return nil, err
		}

		if acc == nil {
			acc = page
		} else {
			acc.MergePage(page)
		}

		links := ParseAllLinks(resp.Header.Get("Link"))
		next, last := links["next"], links["last"]
		if last == "" || last == current || next == "" || next == current {
			return acc, nil
		}
		logger.Debug("following next page: %s", next)
		current = next
	}
}

// Repo is the slice of repository fields the migration needs from the
// org repository listing.
type Repo struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	Visibility string `json:"visibility"`
	Archived   bool   `json:"archived"`
}

// repoPage is a root-level-array page shape.
type repoPage []Repo

func (p *repoPage) MergePage(next *repoPage) {
	*p = append(*p, *next...)
}

// ListOrgRepos returns every repository in an organization.
func ListOrgRepos(ctx context.Context, c *Client, org string, maxPages int) ([]Repo, error) {
	url := "orgs/" + org + "/repos?per_page=100"
	page, err := FetchAllPages[repoPage](ctx, c, url, "org-repos", maxPages)
	if err != nil {
		return nil, err
	}
	return []Repo(*page), nil
}
