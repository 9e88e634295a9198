package github

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"

	"github.com/custodia-labs/orgmig-cli/internal/logger"
)

// maxDiscoveryDepth bounds the depth-first search for a paginated connection
// in a query response tree.
const maxDiscoveryDepth = 6

// GraphClient executes GitHub GraphQL queries and chains cursor pagination
// across a response tree's first paginated connection.
type GraphClient struct {
	httpClient *http.Client
	url        string
	capture    *Capture
}

// PageInfo is the cursor state of a paginated connection.
type PageInfo struct {
	HasNextPage bool
	EndCursor   string
}

// ConnectionLocator returns the field path from the response data root to the
// object holding pageInfo, or ok=false when the response has no paginated
// connection.
type ConnectionLocator func(root map[string]any) (path []string, ok bool)

// PathLocator builds a locator for a known response shape. Queries register
// their own path so pagination does not depend on runtime discovery; the
// path is still validated against the actual response before use.
func PathLocator(path ...string) ConnectionLocator {
	return func(root map[string]any) ([]string, bool) {
		if connectionAt(root, path) == nil {
			return nil, false
		}
		return path, true
	}
}

// DiscoverConnection walks the response tree depth-first (max depth 6,
// sorted-key order for determinism) for the first node exposing a
// pageInfo {hasNextPage, endCursor} shape. It is the fallback locator for
// queries with no registered path.
func DiscoverConnection(root map[string]any) ([]string, bool) {
	return discover(root, nil, 0)
}

func discover(node map[string]any, path []string, depth int) ([]string, bool) {
	if depth > maxDiscoveryDepth {
		return nil, false
	}
	if pi, ok := node["pageInfo"].(map[string]any); ok {
		if _, ok := pi["hasNextPage"]; ok {
			return append([]string(nil), path...), true
		}
	}

	keys := make([]string, 0, len(node))
	for k := range node {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		child, ok := node[k].(map[string]any)
		if !ok {
			continue
		}
		if found, ok := discover(child, append(path, k), depth+1); ok {
			return found, true
		}
	}
	return nil, false
}

// connectionAt descends the field path and returns the connection node,
// or nil when any step is missing.
func connectionAt(root map[string]any, path []string) map[string]any {
	node := root
	for _, field := range path {
		child, ok := node[field].(map[string]any)
		if !ok {
			return nil
		}
		node = child
	}
	return node
}

// PagedQuery describes one paginated GraphQL call.
type PagedQuery struct {
	// Query is the GraphQL document. It must accept an $after: String
	// variable feeding the connection's cursor.
	Query string

	// Variables for the first call. Carried to every subsequent page with
	// only the cursor changing.
	Variables map[string]any

	// Locate resolves the connection path. Nil falls back to
	// DiscoverConnection.
	Locate ConnectionLocator

	// MaxPages caps cursor chaining. Zero means DefaultMaxPages.
	MaxPages int

	// Label names capture files for this query.
	Label string
}

// Query executes a GraphQL call with no pagination and decodes the data tree
// into out.
func (g *GraphClient) Query(ctx context.Context, query string, variables map[string]any, label string, out any) error {
	data, err := g.do(ctx, query, variables, label)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	return DecodeTree(data, out)
}

// QueryAllPages executes a paginated GraphQL call, following the located
// connection's cursor until hasNextPage is false and merging the connection's
// paged array field across pages (earlier pages first, newest pageInfo kept).
// Responses with no locatable connection are returned as-is: an unanticipated
// shape degrades to a single page rather than failing.
func (g *GraphClient) QueryAllPages(ctx context.Context, q PagedQuery) (map[string]any, error) {
	maxPages := q.MaxPages
	if maxPages <= 0 {
		maxPages = DefaultMaxPages
	}

	variables := make(map[string]any, len(q.Variables)+1)
	for k, v := range q.Variables {
		variables[k] = v
	}

	data, err := g.do(ctx, q.Query, variables, q.Label)
	if err != nil {
		return nil, err
	}
	maxPages--

	locate := q.Locate
	if locate == nil {
		locate = DiscoverConnection
	}
	path, ok := locate(data)
	if !ok {
		logger.Debug("no paginated connection located for %s; returning single page", q.Label)
		return data, nil
	}

	conn := connectionAt(data, path)
	info := parsePageInfo(conn)

	for info.HasNextPage {
		if maxPages <= 0 {
			return nil, ErrPagingExhausted
		}
		maxPages--

		variables["after"] = info.EndCursor
		nextData, err := g.do(ctx, q.Query, variables, q.Label)
		if err != nil {
			return nil, err
		}

		nextConn := connectionAt(nextData, path)
		if nextConn == nil {
			return nil, ErrPageableFieldNotFound
		}
		if err := mergeConnection(conn, nextConn); err != nil {
			return nil, err
		}
		info = parsePageInfo(conn)
	}

	return data, nil
}

// mergeConnection folds the next page's connection into the accumulated one:
// the first array-valued sibling of pageInfo (present in either page, checked
// in sorted-key order) is concatenated with earlier items first, and the
// newest pageInfo replaces the old.
func mergeConnection(conn, next map[string]any) error {
	field, ok := pageableField(conn)
	if !ok {
		field, ok = pageableField(next)
	}
	if !ok {
		return ErrPageableFieldNotFound
	}

	oldItems, _ := conn[field].([]any)
	newItems, _ := next[field].([]any)
	conn[field] = append(oldItems, newItems...)
	conn["pageInfo"] = next["pageInfo"]
	return nil
}

// pageableField returns the first array-valued field of a connection node.
func pageableField(conn map[string]any) (string, bool) {
	keys := make([]string, 0, len(conn))
	for k := range conn {
		if k == "pageInfo" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if _, ok := conn[k].([]any); ok {
			return k, true
		}
	}
	return "", false
}

func parsePageInfo(conn map[string]any) PageInfo {
	var info PageInfo
	pi, ok := conn["pageInfo"].(map[string]any)
	if !ok {
		return info
	}
	info.HasNextPage, _ = pi["hasNextPage"].(bool)
	info.EndCursor, _ = pi["endCursor"].(string)
	return info
}

// do posts one {query, variables} call and returns the decoded data tree.
// A non-empty top-level error list fails with QueryError carrying the payload
// verbatim.
func (g *GraphClient) do(ctx context.Context, query string, variables map[string]any, label string) (map[string]any, error) {
	payload, err := json.Marshal(map[string]any{
		"query":     query,
		"variables": variables,
	})
	if err != nil {
		return nil, fmt.Errorf("encode query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute query: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	g.capture.Write(label, body)

	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Message:    string(body),
			URL:        g.url,
		}
	}

	var envelope struct {
		Data   map[string]any   `json:"data"`
		Errors []QueryErrorItem `json:"errors"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if len(envelope.Errors) > 0 {
		return nil, &QueryError{Errors: envelope.Errors}
	}

	return envelope.Data, nil
}

// DecodeTree converts a decoded JSON tree into a typed struct via a JSON
// round trip. Listing decoders use it after pagination has merged pages.
func DecodeTree(tree map[string]any, out any) error {
	raw, err := json.Marshal(tree)
	if err != nil {
		return fmt.Errorf("encode tree: %w", err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode tree: %w", err)
	}
	return nil
}
