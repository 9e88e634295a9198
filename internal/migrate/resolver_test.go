package migrate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve_EndToEnd(t *testing.T) {
	source := []SourceIdentity{
		{Login: "alice", Username: "alice@co"},
		{Username: "bob@co"}, // no login
	}
	dest := []DestinationIdentity{
		{Login: "alice2", Email: "alice@co"},
	}

	r := Resolve(source, dest)

	require.Len(t, r.Resolved, 1)
	assert.Equal(t, "alice", r.Resolved[0].SourceName)
	assert.Equal(t, "alice2", r.Resolved[0].DestName)
	assert.Empty(t, r.UnresolvedSource)
	assert.Empty(t, r.UnresolvedDest)
	require.Len(t, r.RemovedSource, 1)
	assert.Equal(t, "bob@co", r.RemovedSource[0].Username)
}

func TestResolve_Partition(t *testing.T) {
	// Every source identity lands in exactly one bucket, every destination
	// identity is either claimed or unresolved; nothing lost, nothing
	// duplicated.
	source := []SourceIdentity{
		{Login: "a", Username: "a@co"},
		{Login: "b", NameID: "b@co"},
		{Login: "c", Username: "missing@co"},
		{Username: "orphan@co"},
	}
	dest := []DestinationIdentity{
		{Login: "a2", Email: "a@co"},
		{Login: "b2", VerifiedDomainEmail: "b@co"},
		{Login: "idle", Email: "idle@co"},
	}

	r := Resolve(source, dest)

	assert.Equal(t, len(source), len(r.Resolved)+len(r.UnresolvedSource)+len(r.RemovedSource))
	assert.Equal(t, len(dest), len(r.Resolved)+len(r.UnresolvedDest))

	seenSource := make(map[string]int)
	for _, rm := range r.Resolved {
		seenSource[rm.SourceName]++
	}
	for _, s := range r.UnresolvedSource {
		seenSource[s.Login]++
	}
	for _, c := range seenSource {
		assert.Equal(t, 1, c)
	}

	require.Len(t, r.UnresolvedDest, 1)
	assert.Equal(t, "idle", r.UnresolvedDest[0].Login)
}

func TestResolve_CaseInsensitive(t *testing.T) {
	tests := []struct {
		name   string
		source SourceIdentity
		dest   DestinationIdentity
		want   bool
	}{
		{
			name:   "username matches resolved email ignoring case",
			source: SourceIdentity{Login: "u", Username: "Alice@CO"},
			dest:   DestinationIdentity{Login: "d", Email: "alice@co"},
			want:   true,
		},
		{
			name:   "nameId matches verified domain email ignoring case",
			source: SourceIdentity{Login: "u", NameID: "ALICE@CO"},
			dest:   DestinationIdentity{Login: "d", VerifiedDomainEmail: "alice@co"},
			want:   true,
		},
		{
			name:   "empty source keys never match empty email",
			source: SourceIdentity{Login: "u"},
			dest:   DestinationIdentity{Login: "d"},
			want:   false,
		},
		{
			name:   "empty username does not match empty resolved email",
			source: SourceIdentity{Login: "u", NameID: "x@co"},
			dest:   DestinationIdentity{Login: "d"},
			want:   false,
		},
		{
			name:   "verified domain email wins over profile email",
			source: SourceIdentity{Login: "u", Username: "profile@co"},
			dest:   DestinationIdentity{Login: "d", Email: "profile@co", VerifiedDomainEmail: "verified@co"},
			want:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Resolve([]SourceIdentity{tt.source}, []DestinationIdentity{tt.dest})
			if tt.want {
				assert.Len(t, r.Resolved, 1)
			} else {
				assert.Empty(t, r.Resolved)
			}
		})
	}
}

func TestResolve_FirstClaimWins(t *testing.T) {
	// Two source identities keying the same destination: only the first (in
	// input order) resolves, the second becomes unresolved.
	source := []SourceIdentity{
		{Login: "first", Username: "shared@co"},
		{Login: "second", Username: "shared@co"},
	}
	dest := []DestinationIdentity{
		{Login: "target", Email: "shared@co"},
	}

	r := Resolve(source, dest)

	require.Len(t, r.Resolved, 1)
	assert.Equal(t, "first", r.Resolved[0].SourceName)
	assert.Equal(t, "target", r.Resolved[0].DestName)
	require.Len(t, r.UnresolvedSource, 1)
	assert.Equal(t, "second", r.UnresolvedSource[0].Login)
}

func TestResolve_DestinationListingOrder(t *testing.T) {
	// Multiple destinations matching one source: the first in listing order
	// is claimed.
	source := []SourceIdentity{{Login: "u", Username: "dup@co"}}
	dest := []DestinationIdentity{
		{Login: "one", Email: "dup@co"},
		{Login: "two", Email: "dup@co"},
	}

	r := Resolve(source, dest)

	require.Len(t, r.Resolved, 1)
	assert.Equal(t, "one", r.Resolved[0].DestName)
	require.Len(t, r.UnresolvedDest, 1)
	assert.Equal(t, "two", r.UnresolvedDest[0].Login)
}

func TestResolve_UsernameCheckedBeforeNameID(t *testing.T) {
	source := []SourceIdentity{{Login: "u", Username: "a@co", NameID: "b@co"}}
	dest := []DestinationIdentity{
		{Login: "byNameID", Email: "b@co"},
		{Login: "byUsername", Email: "a@co"},
	}

	// Either key suffices; the first destination in listing order that
	// matches either key is claimed.
	r := Resolve(source, dest)

	require.Len(t, r.Resolved, 1)
	assert.Equal(t, "byNameID", r.Resolved[0].DestName)
}

func TestLoginMap(t *testing.T) {
	r := Resolution{
		Resolved: []ResolvedMapping{
			{SourceName: "Alice", DestName: "alice2"},
			{SourceName: "bob", DestName: "bob2"},
		},
	}

	m := r.LoginMap()

	assert.Equal(t, "alice2", m["alice"])
	assert.Equal(t, "bob2", m["bob"])
	assert.Len(t, m, 2)
}

func TestResolvedEmail(t *testing.T) {
	assert.Equal(t, "v@co", DestinationIdentity{Email: "e@co", VerifiedDomainEmail: "v@co"}.ResolvedEmail())
	assert.Equal(t, "e@co", DestinationIdentity{Email: "e@co"}.ResolvedEmail())
	assert.Empty(t, DestinationIdentity{}.ResolvedEmail())
}
