package github

import (
	"errors"
	"fmt"
	"strings"
)

// Pagination and query errors.
var (
	// ErrPagingExhausted indicates the page ceiling was reached before the
	// listing was fully paginated. This is a hard stop: a truncated listing
	// must never be mistaken for a complete one.
	ErrPagingExhausted = errors.New("github: page limit exhausted before pagination completed")

	// ErrPageableFieldNotFound indicates a paginated connection was located
	// but no array field could be merged across pages.
	ErrPageableFieldNotFound = errors.New("github: no pageable array field found in paginated connection")

	// ErrNoToken indicates no credential could be resolved for an organization.
	ErrNoToken = errors.New("github: no access token available")
)

// APIError represents a GitHub API error response.
type APIError struct {
	StatusCode int
	Message    string
	URL        string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("github: API error %d: %s (URL: %s)", e.StatusCode, e.Message, e.URL)
}

// QueryErrorItem is one entry from a GraphQL response's top-level error list.
type QueryErrorItem struct {
	Type    string `json:"type,omitempty"`
	Message string `json:"message"`
	Path    []any  `json:"path,omitempty"`
}

// QueryError carries a GraphQL error payload verbatim.
type QueryError struct {
	Errors []QueryErrorItem
}

func (e *QueryError) Error() string {
	msgs := make([]string, len(e.Errors))
	for i, item := range e.Errors {
		msgs[i] = item.Message
	}
	return fmt.Sprintf("github: query returned errors: %s", strings.Join(msgs, "; "))
}

// IsNotFound checks if the error indicates a resource was not found.
func IsNotFound(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 404
	}
	return false
}

// IsBadRequest checks if the error is an HTTP 400 response. The external-group
// endpoint answers 400 for teams with no external group, which callers treat
// as an empty result rather than a failure.
func IsBadRequest(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 400
	}
	return false
}

// IsUnauthorized checks if the error indicates an authentication failure.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 401
	}
	return false
}
