// Package validate checks a migrated target schema for references and
// identities the migration could not settle.
package validate

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"

	"mpcereform/internal/agents"
	"mpcereform/internal/propagate"
	"mpcereform/internal/store"
)

type Severity string

const (
	SeverityError Severity = "error"
	SeverityWarn  Severity = "warning"
)

const (
	codeUnresolvedValue   = "unresolved_value"
	codeOrphanedAgent     = "orphaned_agent"
	codeMemberOfPerson    = "member_of_non_corporate"
	codeDanglingMember    = "dangling_membership"
	codeDuplicateName     = "duplicate_name"
	duplicateMessageLimit = 5
)

type Issue struct {
	Severity Severity
	Code     string
	Message  string
	Agent    string
	Column   string
}

type Report struct {
	Issues []Issue
}

// Errors counts the issues of error severity.
func (r *Report) Errors() int {
	n := 0
	for _, issue := range r.Issues {
		if issue.Severity == SeverityError {
			n++
		}
	}
	return n
}

// Store is what the checks read from the target schema.
type Store interface {
	ListAgents(ctx context.Context) ([]store.AgentRow, error)
	ListKeyLinks(ctx context.Context) ([]store.KeyLinkRow, error)
	ListMemberships(ctx context.Context) ([]store.MembershipRow, error)
	ReadColumn(ctx context.Context, col store.Column) ([]store.ColumnValue, error)
}

func Run(ctx context.Context, db Store) (*Report, error) {
	if db == nil {
		return nil, errors.New("store is required")
	}

	all, err := db.ListAgents(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list agents")
	}
	byCode := make(map[string]store.AgentRow, len(all))
	for _, a := range all {
		byCode[a.Code] = a
	}
	referenced := make(map[string]bool)

	issues := make([]Issue, 0)

	for _, target := range propagate.Targets() {
		values, err := db.ReadColumn(ctx, target.Column)
		if err != nil {
			return nil, errors.Wrapf(err, "read %s", target.Column)
		}
		for _, v := range values {
			code := strings.TrimSpace(store.Deref(v.Value))
			if code == "" {
				continue
			}
			if _, ok := byCode[code]; ok {
				referenced[code] = true
				continue
			}
			issues = append(issues, Issue{
				Severity: SeverityError,
				Code:     codeUnresolvedValue,
				Message:  fmt.Sprintf("row %d holds %q, which is not an agent code", v.ID, code),
				Column:   target.Column.String(),
			})
		}
	}

	links, err := db.ListKeyLinks(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list key links")
	}
	synthesized := make(map[string]bool)
	for _, link := range links {
		referenced[link.AgentCode] = true
		if link.Source == agents.SourceSynthesized {
			synthesized[link.AgentCode] = true
		}
	}

	memberships, err := db.ListMemberships(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list memberships")
	}
	for _, m := range memberships {
		referenced[m.Member] = true
		referenced[m.Corporate] = true
		issues = append(issues, checkMembership(m, byCode)...)
	}

	for _, a := range all {
		if referenced[a.Code] {
			continue
		}
		issues = append(issues, Issue{
			Severity: SeverityWarn,
			Code:     codeOrphanedAgent,
			Message:  "agent has no legacy key, membership or event reference",
			Agent:    a.Code,
		})
	}

	issues = append(issues, duplicateNames(all, synthesized)...)

	return &Report{Issues: issues}, nil
}

func checkMembership(m store.MembershipRow, byCode map[string]store.AgentRow) []Issue {
	var issues []Issue
	for _, code := range []string{m.Member, m.Corporate} {
		if _, ok := byCode[code]; !ok {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Code:     codeDanglingMember,
				Message:  fmt.Sprintf("membership %s -> %s names a missing agent", m.Member, m.Corporate),
				Agent:    code,
			})
		}
	}
	if corp, ok := byCode[m.Corporate]; ok && !corp.Corporate {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Code:     codeMemberOfPerson,
			Message:  fmt.Sprintf("%s is a member of %s, which is not a corporate entity", m.Member, m.Corporate),
			Agent:    m.Corporate,
		})
	}
	return issues
}

// duplicateNames warns about synthesized agents sharing a name. Reviewed
// and legacy agents are left out: homonyms there were checked by hand.
func duplicateNames(rows []store.AgentRow, synthesized map[string]bool) []Issue {
	byName := make(map[string][]string)
	for _, a := range rows {
		if !synthesized[a.Code] {
			continue
		}
		name := strings.ToLower(strings.TrimSpace(a.Name))
		if name == "" {
			continue
		}
		byName[name] = append(byName[name], a.Code)
	}

	names := make([]string, 0, len(byName))
	for name, codes := range byName {
		if len(codes) > 1 {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	issues := make([]Issue, 0, len(names))
	for _, name := range names {
		codes := byName[name]
		shown := codes
		if len(shown) > duplicateMessageLimit {
			shown = shown[:duplicateMessageLimit]
		}
		issues = append(issues, Issue{
			Severity: SeverityWarn,
			Code:     codeDuplicateName,
			Message:  fmt.Sprintf("%d synthesized agents named %q: %s", len(codes), name, strings.Join(shown, ", ")),
			Agent:    codes[0],
		})
	}
	return issues
}
