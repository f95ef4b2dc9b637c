package sources

import (
	"mpcereform/internal/agents"
	"mpcereform/internal/parser"
)

// Candidate labels, in aggregation order. The STN clients come first and
// carry no label.
const (
	LabelStockSales    = "Stock Sales Notes"
	LabelEstampillage  = "Estampillage Notes"
	LabelConfiscations = "Confiscations notes"
	LabelPermission    = "Permission simple notes"
)

func (c Client) Candidate() agents.CandidateRow {
	partnership := c.Partnership
	return agents.CandidateRow{
		Key:           c.Code,
		Name:          c.Name,
		Gender:        c.Gender,
		Notes:         c.Notes,
		CorporateHint: &partnership,
	}
}

func (d Dealer) Candidate() agents.CandidateRow {
	return agents.CandidateRow{
		Key:             d.ClientCode,
		Name:            d.Name,
		AltName:         d.AltName,
		ProfessionCodes: d.ProfessionCode,
		PlaceCodes:      d.PlaceCode,
		Notes:           d.Notes,
	}
}

func (i Inspector) Candidate() agents.CandidateRow {
	return agents.CandidateRow{
		Key:        i.ClientCode,
		Name:       i.Name,
		PlaceCodes: i.PlaceCode,
		Notes:      i.Notes,
	}
}

func (p PermissionClient) Candidate() agents.CandidateRow {
	return agents.CandidateRow{
		Key:             p.Code,
		Name:            p.Name,
		AltName:         p.AltName,
		Gender:          p.Gender,
		ProfessionCodes: p.ProfessionCodes,
		PlaceCodes:      p.PlaceCodes,
		Notes:           p.Notes,
	}
}

// ConfiscationCandidates splits the multi-person cells of the "People final"
// rows. The first row to mention a code wins.
func ConfiscationCandidates(people []ConfiscationPerson) []agents.CandidateRow {
	var rows []agents.CandidateRow
	seen := make(map[string]struct{})
	for _, p := range people {
		for _, pair := range parser.SplitPairs(p.Names, p.Codes) {
			if pair.Code == "" {
				continue
			}
			if _, dup := seen[pair.Code]; dup {
				continue
			}
			seen[pair.Code] = struct{}{}
			rows = append(rows, agents.CandidateRow{
				Key:        pair.Code,
				Name:       pair.Text,
				Notes:      p.Notes,
				Title:      p.Title,
				PlaceCodes: p.Place,
			})
		}
	}
	return rows
}

// ClientSources assembles the client candidate sources in aggregation order.
func ClientSources(clients []Client, dealers []Dealer, inspectors []Inspector, confiscated []ConfiscationPerson, permission []PermissionClient) []agents.Source {
	stn := agents.Source{}
	for _, c := range clients {
		stn.Rows = append(stn.Rows, c.Candidate())
	}
	stock := agents.Source{Label: LabelStockSales}
	for _, d := range dealers {
		stock.Rows = append(stock.Rows, d.Candidate())
	}
	stamping := agents.Source{Label: LabelEstampillage}
	for _, i := range inspectors {
		stamping.Rows = append(stamping.Rows, i.Candidate())
	}
	licences := agents.Source{Label: LabelPermission}
	for _, p := range permission {
		licences.Rows = append(licences.Rows, p.Candidate())
	}
	return []agents.Source{
		stn,
		stock,
		stamping,
		{Label: LabelConfiscations, Rows: ConfiscationCandidates(confiscated)},
		licences,
	}
}

// ReviewedAgents keeps the reviewed clients with a decided type.
func ReviewedAgents(clients []ReviewedClient) []agents.ReviewedAgent {
	var out []agents.ReviewedAgent
	for _, c := range clients {
		var corporate bool
		switch {
		case c.Person:
			corporate = false
		case c.Corporate:
			corporate = true
		default:
			continue
		}
		out = append(out, agents.ReviewedAgent{Key: c.Code, Name: c.Name, Corporate: corporate, Notes: c.Notes})
	}
	return out
}

// ReviewedAuthorLinks keeps the author/person matches marked correct.
func ReviewedAuthorLinks(links []AuthorLink) []agents.Link {
	var out []agents.Link
	for _, l := range links {
		if !l.Reviewed {
			continue
		}
		out = append(out, agents.Link{Key: l.AuthorCode, AgentCode: l.AgentCode})
	}
	return out
}

// ClientPersonLinks turns the STN client/person table into reviewed links
// for non-partnership clients and into membership links for partnerships.
// Rows for unknown clients are dropped.
func ClientPersonLinks(rows []ClientPerson, clients []Client) ([]agents.Link, []agents.PartnerLink) {
	partnership := make(map[string]bool, len(clients))
	for _, c := range clients {
		partnership[c.Code] = c.Partnership
	}
	var links []agents.Link
	var partners []agents.PartnerLink
	for _, r := range rows {
		code := agents.PersonAgentCode(r.PersonCode)
		isPartnership, known := partnership[r.ClientCode]
		if !known {
			continue
		}
		if isPartnership {
			partners = append(partners, agents.PartnerLink{ClientKey: r.ClientCode, AgentCode: code, Partnership: true})
			continue
		}
		links = append(links, agents.Link{Key: r.ClientCode, AgentCode: code})
	}
	return links, partners
}
