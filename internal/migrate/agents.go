package migrate

import (
	"context"
	"strings"

	"mpcereform/internal/agents"
	"mpcereform/internal/parser"
	"mpcereform/internal/sources"
	"mpcereform/internal/store"
)

const (
	sourceClientsPeople = "clients_people"
	sourceReviewed      = "clients_without_person_codes"
	sourceAuthorPerson  = "author_person"
)

// importAgents registers the legacy people as agents and copies the
// reference tables the resolution depends on.
func (m *migration) importAgents(ctx context.Context) error {
	people, err := m.db.People(ctx)
	if err != nil {
		return err
	}
	registry := m.resolver.Registry()
	for _, p := range people {
		agent := agents.Agent{
			Code:        agents.PersonAgentCode(p.PersonCode),
			Name:        p.Name,
			OtherNames:  p.OtherNames,
			Sex:         p.Sex,
			Title:       p.Title,
			Designation: p.Designation,
			Status:      p.Status,
			StartDate:   parser.ParseDate(p.BirthDate),
			EndDate:     parser.ParseDate(p.DeathDate),
			Notes:       p.Notes,
		}
		if err := registry.Add(agent); err != nil {
			return err
		}
	}
	m.result.AgentsImported = len(people)

	professions, err := m.db.Professions(ctx)
	if err != nil {
		return err
	}
	if _, err := m.db.InsertProfessions(ctx, professionRows(professions), false); err != nil {
		return err
	}
	extra, err := m.books.NewProfessions()
	if err != nil {
		return err
	}
	added, err := m.db.InsertProfessions(ctx, professionRows(extra), true)
	if err != nil {
		return err
	}
	m.result.ProfessionsAdded = added

	assigned, err := m.db.PersonProfessions(ctx)
	if err != nil {
		return err
	}
	for _, pp := range assigned {
		m.resolver.AssignProfession(agents.PersonAgentCode(pp.PersonCode), pp.ProfessionCode)
	}

	clients, err := m.db.Clients(ctx)
	if err != nil {
		return err
	}
	if err := m.db.InsertStnClients(ctx, stnClientRows(clients)); err != nil {
		return err
	}

	places, err := m.db.Places(ctx)
	if err != nil {
		return err
	}
	placeRows := make([]store.PlaceRow, len(places))
	for i, p := range places {
		placeRows[i] = store.PlaceRow{Code: p.Code, Name: store.NullString(p.Name), Town: store.NullString(p.Town)}
	}
	if err := m.db.InsertPlaces(ctx, placeRows); err != nil {
		return err
	}

	m.log.Infow("legacy agents imported",
		"people", len(people),
		"professions", len(professions),
		"new_professions", added,
		"person_professions", len(assigned),
		"stn_clients", len(clients),
		"places", len(places),
	)
	return nil
}

// resolveAuthors links the reviewed author matches, gives every other author
// name a new agent, and imports edition authorship with the legacy author
// codes still in place.
func (m *migration) resolveAuthors(ctx context.Context) error {
	reviewed, err := m.books.AuthorLinks()
	if err != nil {
		return err
	}
	linked, err := m.resolver.Link(agents.NamespaceAuthor, sourceAuthorPerson, sources.ReviewedAuthorLinks(reviewed))
	if err != nil {
		return err
	}

	authors, err := m.db.Authors(ctx)
	if err != nil {
		return err
	}
	named := make([]agents.NamedKey, len(authors))
	for i, a := range authors {
		named[i] = agents.NamedKey{Key: a.Code, Name: a.Name}
	}
	created, err := m.resolver.SynthesizeByName(agents.NamespaceAuthor, named)
	if err != nil {
		return err
	}

	attributions, err := m.db.BookAuthors(ctx)
	if err != nil {
		return err
	}
	rows := make([]store.EditionAuthorRow, len(attributions))
	lookup := m.resolver.Mapping()
	for i, b := range attributions {
		row := store.EditionAuthorRow{
			ID:          int64(i + 1),
			EditionCode: b.BookCode,
			Author:      store.NullString(b.AuthorCode),
			Certain:     b.Certain,
		}
		if id, ok := lookupID(authorTypes, b.AuthorType); ok {
			row.AuthorType = &id
			if code, ok := lookup.Resolve(agents.NamespaceAuthor, b.AuthorCode); ok {
				m.resolver.AssignProfession(code, authorProfessions[id])
			}
		}
		rows[i] = row
	}
	if err := m.db.InsertEditionAuthors(ctx, rows); err != nil {
		return err
	}

	m.result.AuthorsLinked = linked
	m.result.AuthorsCreated = len(created)
	m.log.Infow("authors resolved",
		"linked", linked,
		"created", len(created),
		"attributions", len(rows),
	)
	return nil
}

// resolveClients merges every client-describing source into candidates,
// links the reviewed client/agent pairs and mints agents for the rest.
func (m *migration) resolveClients(ctx context.Context) error {
	clients, err := m.db.Clients(ctx)
	if err != nil {
		return err
	}
	dealers, err := m.db.Dealers(ctx)
	if err != nil {
		return err
	}
	inspectors, err := m.db.Inspectors(ctx)
	if err != nil {
		return err
	}
	confiscated, err := m.books.ConfiscationPeople()
	if err != nil {
		return err
	}
	permission, err := m.books.PermissionClients()
	if err != nil {
		return err
	}
	candidates := agents.Aggregate(sources.ClientSources(clients, dealers, inspectors, confiscated, permission))

	clientPeople, err := m.db.ClientPeople(ctx)
	if err != nil {
		return err
	}
	links, partners := sources.ClientPersonLinks(clientPeople, clients)
	linked, err := m.resolver.Link(agents.NamespaceClient, sourceClientsPeople, links)
	if err != nil {
		return err
	}
	m.partners = partners

	reviewedRows, err := m.books.ReviewedClients()
	if err != nil {
		return err
	}
	reviewed, err := m.resolver.CreateReviewed(agents.NamespaceClient, sourceReviewed, sources.ReviewedAgents(reviewedRows))
	if err != nil {
		return err
	}

	synthesis, err := m.resolver.Synthesize(agents.NamespaceClient, candidates)
	if err != nil {
		return err
	}

	addresses, err := m.db.ClientAddresses(ctx)
	if err != nil {
		return err
	}
	for _, a := range addresses {
		code, ok := m.resolver.Mapping().Resolve(agents.NamespaceClient, a.ClientCode)
		if !ok {
			ref := agents.UnresolvedReference{
				Table:     store.Target("agent_address"),
				Column:    "agent_code",
				Row:       a.ClientCode + "/" + a.PlaceCode,
				Namespace: agents.NamespaceClient,
				Key:       a.ClientCode,
			}
			m.warnUnresolved(ref)
			m.result.Unresolved = append(m.result.Unresolved, ref)
			continue
		}
		m.resolver.AddAddress(agents.Address{AgentCode: code, PlaceCode: a.PlaceCode, Address: a.Address})
	}

	m.clientLinks = clientAgentRows(clientPeople, reviewed, reviewedRows)

	m.result.ClientsLinked = linked
	m.result.ReviewedCreated = len(reviewed)
	m.result.ClientsCreated = len(synthesis.Created)
	m.log.Infow("clients resolved",
		"candidates", candidates.Len(),
		"linked", linked,
		"reviewed", len(reviewed),
		"created", len(synthesis.Created),
		"resolved", synthesis.Resolved,
	)
	return nil
}

// clientAgentRows lists the STN client/agent relation: every client/person
// row of the legacy database plus the reviewed clients given a new agent.
func clientAgentRows(clientPeople []sources.ClientPerson, reviewed []agents.Agent, reviewedRows []sources.ReviewedClient) []store.ClientAgentRow {
	var rows []store.ClientAgentRow
	seen := make(map[store.ClientAgentRow]struct{})
	add := func(row store.ClientAgentRow) {
		if row.ClientCode == "" || row.AgentCode == "" {
			return
		}
		if _, dup := seen[row]; dup {
			return
		}
		seen[row] = struct{}{}
		rows = append(rows, row)
	}

	for _, cp := range clientPeople {
		add(store.ClientAgentRow{ClientCode: cp.ClientCode, AgentCode: agents.PersonAgentCode(cp.PersonCode)})
	}
	var keys []string
	for _, r := range sources.ReviewedAgents(reviewedRows) {
		if key := strings.TrimSpace(r.Key); key != "" {
			keys = append(keys, key)
		}
	}
	for i, agent := range reviewed {
		if i < len(keys) {
			add(store.ClientAgentRow{ClientCode: keys[i], AgentCode: agent.Code})
		}
	}
	return rows
}

func professionRows(list []sources.Profession) []store.ProfessionRow {
	rows := make([]store.ProfessionRow, 0, len(list))
	for _, p := range list {
		if p.Code == "" {
			continue
		}
		rows = append(rows, store.ProfessionRow{
			Code:   p.Code,
			Type:   store.NullString(p.Type),
			Group:  store.NullString(p.Group),
			Sector: store.NullString(p.Sector),
		})
	}
	return rows
}

func stnClientRows(clients []sources.Client) []store.StnClientRow {
	rows := make([]store.StnClientRow, len(clients))
	for i, c := range clients {
		rows[i] = store.StnClientRow{
			Code:        c.Code,
			Name:        store.NullString(c.Name),
			Gender:      store.NullString(c.Gender),
			Partnership: c.Partnership,
			Documents:   c.Documents,
			FirstDate:   parser.ParseDate(c.FirstDate),
			LastDate:    parser.ParseDate(c.LastDate),
			Notes:       store.NullString(c.Notes),
		}
	}
	return rows
}
