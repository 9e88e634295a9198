package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countedPage is the total_count shape used by the secrets-style endpoints.
type countedPage struct {
	TotalCount int      `json:"total_count"`
	Items      []string `json:"items"`
}

func (p *countedPage) MergePage(next *countedPage) {
	p.TotalCount += next.TotalCount
	p.Items = append(p.Items, next.Items...)
}

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client := NewClient(context.Background(), "test-token", WithBaseURL(srv.URL))
	return client, srv
}

func TestFetchAllPages_CountedMerge(t *testing.T) {
	var srv *httptest.Server
	mux := http.NewServeMux()
	mux.HandleFunc("/items", func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("page") {
		case "", "1":
			w.Header().Set("Link", fmt.Sprintf(`<%s/items?page=2>; rel="next", <%s/items?page=2>; rel="last"`, srv.URL, srv.URL))
			fmt.Fprint(w, `{"total_count":2,"items":["a","b"]}`)
		case "2":
			fmt.Fprint(w, `{"total_count":1,"items":["c"]}`)
		}
	})
	client, server := newTestClient(t, mux)
	srv = server

	page, err := FetchAllPages[countedPage](context.Background(), client, "items", "items", 10)
	require.NoError(t, err)

	// Totals sum, items concatenate in page order.
	assert.Equal(t, 3, page.TotalCount)
	assert.Equal(t, []string{"a", "b", "c"}, page.Items)
}

func TestFetchAllPages_SinglePage(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/items", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"total_count":1,"items":["only"]}`)
	})
	client, _ := newTestClient(t, mux)

	page, err := FetchAllPages[countedPage](context.Background(), client, "items", "items", 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"only"}, page.Items)
}

func TestFetchAllPages_Exhausted(t *testing.T) {
	var srv *httptest.Server
	calls := 0
	mux := http.NewServeMux()
	mux.HandleFunc("/items", func(w http.ResponseWriter, r *http.Request) {
		calls++
		// Always advertises a further page.
		next := calls + 1
		w.Header().Set("Link", fmt.Sprintf(`<%s/items?page=%d>; rel="next", <%s/items?page=99>; rel="last"`, srv.URL, next, srv.URL))
		fmt.Fprint(w, `{"total_count":1,"items":["x"]}`)
	})
	client, server := newTestClient(t, mux)
	srv = server

	_, err := FetchAllPages[countedPage](context.Background(), client, "items", "items", 2)

	assert.ErrorIs(t, err, ErrPagingExhausted)
	assert.Equal(t, 2, calls)
}

func TestFetchAllPages_ZeroBudget(t *testing.T) {
	client, _ := newTestClient(t, http.NewServeMux())

	_, err := FetchAllPages[countedPage](context.Background(), client, "items", "items", 0)

	assert.ErrorIs(t, err, ErrPagingExhausted)
}

func TestListOrgRepos_RootArrayMerge(t *testing.T) {
	var srv *httptest.Server
	mux := http.NewServeMux()
	mux.HandleFunc("/orgs/acme/repos", func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("page") {
		case "", "1":
			w.Header().Set("Link", fmt.Sprintf(`<%s/orgs/acme/repos?page=2>; rel="next", <%s/orgs/acme/repos?page=2>; rel="last"`, srv.URL, srv.URL))
			fmt.Fprint(w, `[{"id":1,"name":"api","visibility":"private"}]`)
		case "2":
			fmt.Fprint(w, `[{"id":2,"name":"web","visibility":"public"}]`)
		}
	})
	client, server := newTestClient(t, mux)
	srv = server

	repos, err := ListOrgRepos(context.Background(), client, "acme", 10)
	require.NoError(t, err)

	require.Len(t, repos, 2)
	assert.Equal(t, "api", repos[0].Name)
	assert.Equal(t, "web", repos[1].Name)
	assert.Equal(t, "public", repos[1].Visibility)
}

func TestGetJSON_ErrorStatus(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/missing", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"message":"Not Found"}`)
	})
	client, _ := newTestClient(t, mux)

	_, err := client.GetJSON(context.Background(), "missing", "missing", nil)

	require.Error(t, err)
	assert.True(t, IsNotFound(err))
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
}
