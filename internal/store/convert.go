package store

import (
	"strings"

	"mpcereform/internal/agents"
)

// NullString maps blank text to NULL.
func NullString(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// Deref reads a nullable column as plain text.
func Deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func NewAgentRow(a agents.Agent) AgentRow {
	return AgentRow{
		Code:        a.Code,
		Name:        a.Name,
		OtherNames:  NullString(a.OtherNames),
		Sex:         NullString(a.Sex),
		Title:       NullString(a.Title),
		Designation: NullString(a.Designation),
		Status:      NullString(a.Status),
		StartDate:   a.StartDate,
		EndDate:     a.EndDate,
		Notes:       NullString(a.Notes),
		Corporate:   a.Corporate,
	}
}

func AgentRows(list []agents.Agent) []AgentRow {
	rows := make([]AgentRow, len(list))
	for i, a := range list {
		rows[i] = NewAgentRow(a)
	}
	return rows
}

func KeyLinkRows(links []agents.KeyLink) []KeyLinkRow {
	rows := make([]KeyLinkRow, len(links))
	for i, l := range links {
		rows[i] = KeyLinkRow{Namespace: string(l.Namespace), Key: l.Key, AgentCode: l.AgentCode, Source: l.Source}
	}
	return rows
}

func MembershipRows(list []agents.Membership) []MembershipRow {
	rows := make([]MembershipRow, len(list))
	for i, m := range list {
		rows[i] = MembershipRow{Member: m.Member, Corporate: m.Corporate}
	}
	return rows
}

func AddressRows(list []agents.Address) []AddressRow {
	rows := make([]AddressRow, len(list))
	for i, a := range list {
		rows[i] = AddressRow{AgentCode: a.AgentCode, PlaceCode: a.PlaceCode, Address: NullString(a.Address)}
	}
	return rows
}

func AgentProfessionRows(list []agents.ProfessionAssignment) []AgentProfessionRow {
	rows := make([]AgentProfessionRow, len(list))
	for i, p := range list {
		rows[i] = AgentProfessionRow{AgentCode: p.AgentCode, ProfessionCode: p.ProfessionCode}
	}
	return rows
}
