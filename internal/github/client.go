package github

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	gh "github.com/google/go-github/v80/github"
	"golang.org/x/oauth2"
)

const (
	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultMaxPages is the pagination ceiling applied to both REST and
	// GraphQL listings when the caller does not choose one.
	DefaultMaxPages = 100

	// defaultGraphURL is the GitHub GraphQL endpoint.
	defaultGraphURL = "https://api.github.com/graphql"
)

// Client wraps the go-github client with the helpers the migration pipeline
// needs. Each Client is scoped to exactly one organization credential and
// carries its own mutation throttle.
type Client struct {
	gh       *gh.Client
	graph    *GraphClient
	throttle *Throttle
	capture  *Capture
}

// Option configures a Client.
type Option func(*Client)

// WithCapture enables raw-response capture on all calls made by the client.
func WithCapture(capture *Capture) Option {
	return func(c *Client) {
		c.capture = capture
	}
}

// WithBaseURL points the REST client at a different endpoint. Used by tests
// and GitHub Enterprise installations.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if !strings.HasSuffix(baseURL, "/") {
			baseURL += "/"
		}
		if u, err := url.Parse(baseURL); err == nil {
			c.gh.BaseURL = u
		}
	}
}

// WithGraphURL points the GraphQL client at a different endpoint.
func WithGraphURL(graphURL string) Option {
	return func(c *Client) {
		c.graph.url = graphURL
	}
}

// NewClient creates a client authenticated with a static bearer token.
// Works for both PAT and OAuth access tokens.
func NewClient(ctx context.Context, token string, opts ...Option) *Client {
	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: token},
	)
	tc := oauth2.NewClient(ctx, ts)
	tc.Timeout = DefaultTimeout

	c := &Client{
		gh:       gh.NewClient(tc),
		throttle: NewThrottle(),
	}
	c.graph = &GraphClient{
		httpClient: tc,
		url:        defaultGraphURL,
	}

	for _, opt := range opts {
		opt(c)
	}
	c.graph.capture = c.capture

	return c
}

// Graph returns the GraphQL client sharing this client's credential.
func (c *Client) Graph() *GraphClient {
	return c.graph
}

// GetJSON issues a GET for urlStr and decodes the response body into v.
// urlStr may be relative to the API base or absolute (pagination follows the
// absolute next links from the Link header). The raw body is captured when
// capture is enabled.
func (c *Client) GetJSON(ctx context.Context, urlStr, label string, v any) (*gh.Response, error) {
	req, err := c.gh.NewRequest(http.MethodGet, urlStr, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.gh.BareDo(ctx, req)
	if err != nil {
		return resp, c.wrapError(err, "get "+urlStr)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp, fmt.Errorf("read response: %w", err)
	}
	c.capture.Write(label, body)

	if v != nil {
		if err := json.Unmarshal(body, v); err != nil {
			return resp, fmt.Errorf("decode response: %w", err)
		}
	}
	return resp, nil
}

// GetRepository fetches a single repository.
func (c *Client) GetRepository(ctx context.Context, org, repo string) (*gh.Repository, error) {
	repository, _, err := c.gh.Repositories.Get(ctx, org, repo)
	if err != nil {
		return nil, c.wrapError(err, "get repo")
	}
	return repository, nil
}

// SetRepositoryVisibility patches a repository's visibility. Throttled.
func (c *Client) SetRepositoryVisibility(ctx context.Context, org, repo, visibility string) error {
	if err := c.throttle.Wait(ctx); err != nil {
		return fmt.Errorf("throttle wait: %w", err)
	}

	_, _, err := c.gh.Repositories.Edit(ctx, org, repo, &gh.Repository{
		Visibility: gh.Ptr(visibility),
	})
	if err != nil {
		return c.wrapError(err, "edit repo visibility")
	}
	return nil
}

// PutTeamMembership adds or updates a user's membership on a team. Throttled.
func (c *Client) PutTeamMembership(ctx context.Context, org, slug, user, role string) error {
	if err := c.throttle.Wait(ctx); err != nil {
		return fmt.Errorf("throttle wait: %w", err)
	}

	opts := &gh.TeamAddTeamMembershipOptions{Role: role}
	_, _, err := c.gh.Teams.AddTeamMembershipBySlug(ctx, org, slug, user, opts)
	if err != nil {
		return c.wrapError(err, "put team membership")
	}
	return nil
}

// PutCollaborator grants a user a permission on a repository. Throttled.
func (c *Client) PutCollaborator(ctx context.Context, org, repo, user, permission string) error {
	if err := c.throttle.Wait(ctx); err != nil {
		return fmt.Errorf("throttle wait: %w", err)
	}

	opts := &gh.RepositoryAddCollaboratorOptions{Permission: permission}
	_, _, err := c.gh.Repositories.AddCollaborator(ctx, org, repo, user, opts)
	if err != nil {
		return c.wrapError(err, "put collaborator")
	}
	return nil
}

// TeamHasExternalGroup reports whether a team is connected to an IdP external
// group. The endpoint answers 400 for teams with no connection, which is a
// negative answer, not an error.
func (c *Client) TeamHasExternalGroup(ctx context.Context, org, slug string) (bool, error) {
	groups, _, err := c.gh.Teams.ListExternalGroupsForTeamBySlug(ctx, org, slug)
	if err != nil {
		wrapped := c.wrapError(err, "list external groups")
		if IsBadRequest(wrapped) {
			return false, nil
		}
		return false, wrapped
	}
	return groups != nil && len(groups.Groups) > 0, nil
}

// wrapError converts go-github errors to our error types.
func (c *Client) wrapError(err error, operation string) error {
	if err == nil {
		return nil
	}

	var ghErr *gh.ErrorResponse
	if errors.As(err, &ghErr) && ghErr.Response != nil {
		apiErr := &APIError{
			StatusCode: ghErr.Response.StatusCode,
			Message:    ghErr.Message,
		}
		if ghErr.Response.Request != nil && ghErr.Response.Request.URL != nil {
			apiErr.URL = ghErr.Response.Request.URL.String()
		}
		return apiErr
	}

	return fmt.Errorf("%s: %w", operation, err)
}

// ValidateCredentials checks if the token is valid by fetching the
// authenticated user.
func (c *Client) ValidateCredentials(ctx context.Context) error {
	_, _, err := c.gh.Users.Get(ctx, "")
	if err != nil {
		return c.wrapError(err, "validate credentials")
	}
	return nil
}
