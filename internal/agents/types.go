// Package agents reconciles the people and organisations named across the
// legacy collections into one canonical agent set.
//
// Resolution runs in two passes per namespace. Link imports reviewed
// key→agent mappings as they are; Synthesize mints agents for every candidate
// left without one, or whose linked agent has the wrong type. The resulting
// Mapping is what the propagation step rewrites legacy keys with.
package agents

import "strings"

// Namespace is a source collection's local key space. Keys from different
// namespaces are never compared directly.
type Namespace string

const (
	NamespaceClient Namespace = "client"
	NamespaceAuthor Namespace = "author"
)

// SourceSynthesized labels the key links of agents minted from candidates.
const SourceSynthesized = "synthesized"

type Agent struct {
	Code        string
	Name        string
	OtherNames  string
	Sex         string
	Title       string
	Designation string
	Status      string
	StartDate   *string
	EndDate     *string
	Notes       string
	Corporate   bool
}

// CandidateRow is the uniform shape every agent-describing source is read into.
type CandidateRow struct {
	Key             string
	Name            string
	AltName         string
	ProfessionCodes string
	PlaceCodes      string
	Gender          string
	Notes           string
	Title           string
	CorporateHint   *bool
}

// Source is one collection of candidate rows. Label tags the notes it
// contributes to a key first seen in an earlier source.
type Source struct {
	Label string
	Rows  []CandidateRow
}

type Candidate struct {
	Key             string
	Name            string
	AltName         string
	ProfessionCodes string
	PlaceCodes      string
	Gender          string
	Notes           string
	Title           string
	CorporateHint   *bool
	Sources         []string
}

// Link is a reviewed mapping from a source key to an existing agent.
type Link struct {
	Key       string
	AgentCode string
}

// ReviewedAgent is a key a reviewer has marked as needing a brand new agent
// of a known type.
type ReviewedAgent struct {
	Key       string
	Name      string
	Corporate bool
	Notes     string
}

// NamedKey is a key known only by a display name.
type NamedKey struct {
	Key  string
	Name string
}

// PartnerLink is a legacy client→person link; for partnerships it records
// membership instead of identity.
type PartnerLink struct {
	ClientKey   string
	AgentCode   string
	Partnership bool
}

type Membership struct {
	Member    string
	Corporate string
}

type Address struct {
	AgentCode string
	PlaceCode string
	Address   string
}

type ProfessionAssignment struct {
	AgentCode      string
	ProfessionCode string
}

// PersonAgentCode converts a legacy person code ("pe0031") into the wider
// agent code frame ("id000031").
func PersonAgentCode(personCode string) string {
	personCode = strings.TrimSpace(personCode)
	if len(personCode) > 4 {
		personCode = personCode[len(personCode)-4:]
	}
	return "id00" + personCode
}
