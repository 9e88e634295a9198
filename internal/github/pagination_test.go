package github

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseAllLinks(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   map[string]string
	}{
		{
			name:   "next and last",
			header: `<https://api.github.com/orgs/o/repos?page=2>; rel="next", <https://api.github.com/orgs/o/repos?page=5>; rel="last"`,
			want: map[string]string{
				"next": "https://api.github.com/orgs/o/repos?page=2",
				"last": "https://api.github.com/orgs/o/repos?page=5",
			},
		},
		{
			name:   "empty header",
			header: "",
			want:   map[string]string{},
		},
		{
			name:   "prev first and last on final page",
			header: `<https://api.github.com/orgs/o/repos?page=4>; rel="prev", <https://api.github.com/orgs/o/repos?page=1>; rel="first", <https://api.github.com/orgs/o/repos?page=5>; rel="last"`,
			want: map[string]string{
				"prev": "https://api.github.com/orgs/o/repos?page=4",
				"first": "https://api.github.com/orgs/o/repos?page=1",
				"last": "https://api.github.com/orgs/o/repos?page=5",
			},
		},
		{
			name:   "malformed entries ignored",
			header: `garbage, <u>; rel="next"`,
			want:   map[string]string{"next": "u"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseAllLinks(tt.header))
		})
	}
}

func TestParseNextLink(t *testing.T) {
	header := `<https://example.test/p2>; rel="next"`
	assert.Equal(t, "https://example.test/p2", ParseNextLink(header))
	assert.Empty(t, ParseNextLink(`<https://example.test/p5>; rel="last"`))
	assert.True(t, HasNextPage(header))
	assert.False(t, HasNextPage(""))
}
