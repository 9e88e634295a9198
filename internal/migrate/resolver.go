package migrate

import "strings"

// Resolution is the four-way classification produced by one resolution pass.
// Every source identity lands in exactly one of Resolved, UnresolvedSource or
// RemovedSource; every destination identity is either claimed by a mapping in
// Resolved or listed in UnresolvedDest.
type Resolution struct {
	Resolved         []ResolvedMapping
	UnresolvedSource []SourceIdentity
	UnresolvedDest   []DestinationIdentity
	RemovedSource    []SourceIdentity
}

// Resolve cross-references source SSO identities with destination members.
//
// Source identities are processed in input order. An identity with no login
// lacks a usable key and is classified RemovedSource. Otherwise the first
// unclaimed destination (in the destination listing's original order) whose
// resolved email equals the source's username or nameId is claimed.
// Matching is case-insensitive and absent keys never match each other.
//
// The destination pool shrinks via an explicit claimed-index set; the input
// slices are not mutated.
func Resolve(source []SourceIdentity, dest []DestinationIdentity) Resolution {
	var r Resolution
	claimed := make([]bool, len(dest))

	for _, s := range source {
		if s.Login == "" {
			r.RemovedSource = append(r.RemovedSource, s)
			continue
		}

		matched := -1
		for i, d := range dest {
			if claimed[i] {
				continue
			}
			if identityKeysMatch(s, d) {
				matched = i
				break
			}
		}

		if matched < 0 {
			r.UnresolvedSource = append(r.UnresolvedSource, s)
			continue
		}

		claimed[matched] = true
		r.Resolved = append(r.Resolved, ResolvedMapping{
			SourceName: s.Login,
			DestName:   dest[matched].Login,
			Source:     s,
			Dest:       dest[matched],
		})
	}

	for i, d := range dest {
		if !claimed[i] {
			r.UnresolvedDest = append(r.UnresolvedDest, d)
		}
	}

	return r
}

// identityKeysMatch reports whether a destination's resolved email equals the
// source's username or nameId, lowercased. Empty keys never match.
func identityKeysMatch(s SourceIdentity, d DestinationIdentity) bool {
	email := strings.ToLower(d.ResolvedEmail())
	if email == "" {
		return false
	}
	if u := strings.ToLower(s.Username); u != "" && u == email {
		return true
	}
	if n := strings.ToLower(s.NameID); n != "" && n == email {
		return true
	}
	return false
}

// LoginMap projects the resolved mappings into a lookup table keyed by
// lowercased source login. Exporters join raw listings through it.
func (r Resolution) LoginMap() map[string]string {
	m := make(map[string]string, len(r.Resolved))
	for _, rm := range r.Resolved {
		key := strings.ToLower(rm.SourceName)
		if _, exists := m[key]; !exists {
			m[key] = rm.DestName
		}
	}
	return m
}
