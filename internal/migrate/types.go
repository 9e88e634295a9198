// Package migrate holds the identity-resolution domain: the identity records
// fetched from both organizations, the resolver that cross-references them,
// and the exporters that project resolved mappings onto team, repository and
// mannequin listings.
package migrate

import "strings"

// SourceIdentity is a single-sign-on-derived identity from the source
// organization. Login is empty for unlinked identities; Username,
// PrimaryEmail and NameID are candidate join keys.
type SourceIdentity struct {
	NameID       string
	Username     string
	GivenName    string
	PrimaryEmail string
	Login        string
}

// DestinationIdentity is a member of the destination organization.
type DestinationIdentity struct {
	Login               string
	Name                string
	Email               string
	VerifiedDomainEmail string
	Role                string
}

// ResolvedEmail is the canonical join key on the destination side: the
// domain-verified email when present, the profile email otherwise.
func (d DestinationIdentity) ResolvedEmail() string {
	if d.VerifiedDomainEmail != "" {
		return d.VerifiedDomainEmail
	}
	return d.Email
}

// ResolvedMapping is a confirmed source-login to destination-login
// correspondence. Each SourceName appears at most once across all mappings
// and each destination identity is claimed at most once.
type ResolvedMapping struct {
	SourceName string
	DestName   string
	Source     SourceIdentity
	Dest       DestinationIdentity
}

// Mannequin is a placeholder account the destination system creates for an
// unmigrated source user. A non-empty ClaimantLogin means the mannequin is
// already linked to a real account and must be excluded from remapping.
type Mannequin struct {
	ID            string
	DatabaseID    int64
	Email         string
	Login         string
	ClaimantLogin string
}

// botMarker appears in the login of machine accounts surfaced as mannequins.
const botMarker = "[bot]"

// IsBot reports whether the mannequin represents a machine account.
func (m Mannequin) IsBot() bool {
	return strings.Contains(m.Login, botMarker)
}

// TeamMembershipRecord is one (team, member) row from the source
// organization's team listing.
type TeamMembershipRecord struct {
	Team        string
	Slug        string
	ParentTeam  string
	Role        string
	SourceLogin string
	SourceName  string
}

// RepositoryAccessRecord is one (user, repo) row from the source
// organization's direct-collaborator listing. Only the first permission
// source discovered per collaborator is kept.
type RepositoryAccessRecord struct {
	Login      string
	Repo       string
	Permission string
}
