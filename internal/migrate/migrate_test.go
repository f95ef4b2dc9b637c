package migrate

import (
	"context"
	"database/sql"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mpcereform/internal/agents"
	"mpcereform/internal/config"
	"mpcereform/internal/logging"
	"mpcereform/internal/sources"
	"mpcereform/internal/store"
	"mpcereform/internal/store/sqlite"
)

// fakeBooks serves fixed spreadsheet rows.
type fakeBooks struct {
	authorLinks   []sources.AuthorLink
	professions   []sources.Profession
	permission    []sources.PermissionClient
	licences      []sources.Licence
	confiscated   []sources.ConfiscationPerson
	confiscations []sources.Confiscation
	reviewed      []sources.ReviewedClient
}

func (f *fakeBooks) AuthorLinks() ([]sources.AuthorLink, error)             { return f.authorLinks, nil }
func (f *fakeBooks) NewProfessions() ([]sources.Profession, error)          { return f.professions, nil }
func (f *fakeBooks) PermissionClients() ([]sources.PermissionClient, error) { return f.permission, nil }
func (f *fakeBooks) Licences() ([]sources.Licence, error)                   { return f.licences, nil }
func (f *fakeBooks) ConfiscationPeople() ([]sources.ConfiscationPerson, error) {
	return f.confiscated, nil
}
func (f *fakeBooks) Confiscations() ([]sources.Confiscation, error)    { return f.confiscations, nil }
func (f *fakeBooks) ReviewedClients() ([]sources.ReviewedClient, error) { return f.reviewed, nil }

var testConfig = &config.ProjectConfig{Project: "mpce-test", Version: 1}

func newLegacyDB(t *testing.T, stmts ...string) *sqlite.Client {
	t.Helper()
	ctx := context.Background()
	c, err := sqlite.New(ctx, "sqlite://:memory:", sqlite.Attach{})
	require.NoError(t, err)
	t.Cleanup(func() { c.Close(ctx) })

	require.NoError(t, c.CreateSource(ctx))
	for _, stmt := range stmts {
		_, err := c.SQL().ExecContext(ctx, stmt)
		require.NoError(t, err, stmt)
	}
	return c
}

var legacyFixture = []string{
	`INSERT INTO manuscripts.people (person_code, person_name, sex) VALUES ('pe0045', 'Jean Dupont', 'Male')`,
	`INSERT INTO manuscripts.people (person_code, person_name, birth_date) VALUES ('pe0046', 'Marie Martin', '1741-03-00')`,
	`INSERT INTO manuscripts.clients (client_code, client_name, partnership) VALUES ('cl0001', 'Dupont', 0)`,
	`INSERT INTO manuscripts.clients (client_code, client_name, partnership) VALUES ('cl0002', 'Martin', 0)`,
	`INSERT INTO manuscripts.clients (client_code, client_name, partnership, notes) VALUES ('cl0335', 'Bergeret', 0, 'Libraire')`,
	`INSERT INTO manuscripts.clients (client_code, client_name, partnership) VALUES ('cl0400', 'Dupont et Cie', 1)`,
	`INSERT INTO manuscripts.clients_people (client_code, person_code) VALUES ('cl0001', 'pe0045')`,
	`INSERT INTO manuscripts.clients_people (client_code, person_code) VALUES ('cl0002', 'pe0046')`,
	`INSERT INTO manuscripts.clients_people (client_code, person_code) VALUES ('cl0400', 'pe0045')`,
	`INSERT INTO manuscripts.professions (profession_code, profession_type) VALUES ('pf014', 'Author')`,
	`INSERT INTO manuscripts.people_professions (person_code, profession_code) VALUES ('pe0046', 'pf014')`,
	`INSERT INTO manuscripts.places (place_code, name, town) VALUES ('pl0012', 'Neuchâtel', 'Neuchâtel')`,
	`INSERT INTO manuscripts.clients_addresses (client_code, place_code, address) VALUES ('cl0335', 'pl0012', 'Rue du Seyon')`,
	`INSERT INTO manuscripts.manuscript_dealers (client_code, dealer_name, place_code, notes) VALUES ('cl0335', 'Bergeret', 'pl0012', 'Bordeaux')`,
	`INSERT INTO manuscripts.manuscript_authors (author_code, author_name) VALUES ('au0001', 'Voltaire')`,
	`INSERT INTO manuscripts.manuscript_books_authors (book_code, author_code, author_type, certain) VALUES ('bk0001', 'au0001', 'Translator', 1)`,
	`INSERT INTO manuscripts.manuscript_events (id, id_edition, id_dealer, id_agent_a, event_copies, event_vols) VALUES (1, 'bk0001', 'cl0335', 'cl0002', '10', '')`,
	`INSERT INTO manuscripts.manuscript_sales_events (sales_number, ms_number, client_code, id_agent) VALUES ('sa01', 'ms21933', 'cl0001', 'cl0002 (syndic), Pierre Roux')`,
	`INSERT INTO manuscripts.manuscript_events_sales (id, id_sale_agent, id_dealer, event_copies, event_copies_type) VALUES (1, 'sa01', 'cl7777', '6', 'copies')`,
}

func fixtureBooks() *fakeBooks {
	return &fakeBooks{
		professions: []sources.Profession{{Code: "pf014"}, {Code: "pf310", Type: "Translator"}},
		confiscations: []sources.Confiscation{{
			ID:         1,
			Marque:     "LB",
			Collectors: sources.AgentCells{Names: "Dupont;Martin", Codes: "cl0001;cl0002"},
			Censors:    sources.AgentCells{Names: "Inconnu", Codes: "cl8888"},
		}},
		licences: []sources.Licence{{Date: "1778-04-12", Licensee: "cl0335"}},
	}
}

func queryText(t *testing.T, c *sqlite.Client, query string) sql.NullString {
	t.Helper()
	var s sql.NullString
	require.NoError(t, c.SQL().QueryRowContext(context.Background(), query).Scan(&s))
	return s
}

func resolved(t *testing.T, c *sqlite.Client, ns agents.Namespace, key string) string {
	t.Helper()
	link, err := c.ResolveKey(context.Background(), string(ns), key)
	require.NoError(t, err, key)
	return link.AgentCode
}

func TestRun_EndToEnd(t *testing.T) {
	ctx := context.Background()
	c := newLegacyDB(t, legacyFixture...)

	res, err := Run(ctx, testConfig, c, fixtureBooks(), logging.Nop(), Options{})
	require.NoError(t, err)

	assert.Equal(t, 2, res.AgentsImported)
	assert.Equal(t, 1, res.AuthorsCreated)
	assert.Equal(t, 2, res.ClientsLinked)
	assert.Equal(t, 2, res.ClientsCreated)
	assert.Equal(t, int64(1), res.ProfessionsAdded)
	assert.Equal(t, 1, res.Memberships)
	assert.Equal(t, 1, res.Events["consignment"])
	assert.Equal(t, 1, res.Events["stamping"])
	assert.Equal(t, 1, res.Events["parisian_stock_sale"])

	// Linked clients resolve to the person agents.
	assert.Equal(t, "id000045", resolved(t, c, agents.NamespaceClient, "cl0001"))
	assert.Equal(t, "id000046", resolved(t, c, agents.NamespaceClient, "cl0002"))

	// One candidate for cl0335 from two sources, one agent, one address.
	bergeret := resolved(t, c, agents.NamespaceClient, "cl0335")
	agent, err := c.GetAgent(ctx, bergeret)
	require.NoError(t, err)
	assert.Equal(t, "Bergeret", agent.Name)
	assert.False(t, agent.Corporate)
	assert.Contains(t, store.Deref(agent.Notes), "Libraire")
	assert.Contains(t, store.Deref(agent.Notes), "Bordeaux")
	n, err := c.Count(ctx, store.Target("agent_address"))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.Equal(t, "Rue du Seyon", queryText(t, c,
		`SELECT address FROM mpce.agent_address WHERE agent_code = '`+bergeret+`' AND place_code = 'pl0012'`).String)

	// The partnership becomes a corporate agent with a member.
	company := resolved(t, c, agents.NamespaceClient, "cl0400")
	corp, err := c.GetAgent(ctx, company)
	require.NoError(t, err)
	assert.True(t, corp.Corporate)
	memberships, err := c.ListMemberships(ctx)
	require.NoError(t, err)
	assert.Equal(t, []store.MembershipRow{{Member: "id000045", Corporate: company}}, memberships)

	// Authors get an agent and the translator profession.
	voltaire := resolved(t, c, agents.NamespaceAuthor, "au0001")
	assert.Equal(t, voltaire, queryText(t, c, `SELECT author FROM mpce.edition_author WHERE id = 1`).String)
	assert.Equal(t, "1", queryText(t, c,
		`SELECT COUNT(*) FROM mpce.agent_profession WHERE agent_code = '`+voltaire+`' AND profession_code = 'pf310'`).String)

	// Fan-in keeps source order.
	assert.Equal(t, "Dupont (id000045); Martin (id000046)",
		queryText(t, c, `SELECT all_collectors FROM mpce.consignment WHERE id = 1`).String)
	assert.False(t, queryText(t, c, `SELECT all_censors FROM mpce.consignment WHERE id = 1`).Valid)

	// Event references are rewritten.
	assert.Equal(t, bergeret, queryText(t, c, `SELECT permitted_dealer FROM mpce.stamping WHERE id = 1`).String)
	assert.Equal(t, "id000046", queryText(t, c, `SELECT attending_inspector FROM mpce.stamping WHERE id = 1`).String)
	assert.False(t, queryText(t, c, `SELECT volumes_stamped FROM mpce.stamping WHERE id = 1`).Valid)
	assert.Equal(t, "id000045", queryText(t, c, `SELECT previous_owner FROM mpce.parisian_stock_auction WHERE id = 1`).String)
	assert.Equal(t, "id000046", queryText(t, c, `SELECT administrator_id FROM mpce.auction_administrator WHERE id = 1`).String)
	assert.Equal(t, "1", queryText(t, c, `SELECT administrator_role FROM mpce.auction_administrator WHERE id = 1`).String)
	assert.Equal(t, "3", queryText(t, c, `SELECT units FROM mpce.parisian_stock_sale WHERE id = 1`).String)
	assert.Equal(t, bergeret, queryText(t, c, `SELECT licensee FROM mpce.permission_simple_grant WHERE id = 1`).String)
	assert.Equal(t, "1778-04-12", queryText(t, c, `SELECT date_granted FROM mpce.permission_simple_grant WHERE id = 1`).String)

	// An unknown purchaser is reported and nulled without failing the run.
	assert.False(t, queryText(t, c, `SELECT purchaser FROM mpce.parisian_stock_sale WHERE id = 1`).Valid)
	keys := make(map[string]bool)
	for _, ref := range res.Unresolved {
		keys[ref.Key] = true
	}
	assert.True(t, keys["cl7777"])
	assert.True(t, keys["cl8888"])
	assert.True(t, keys["Pierre Roux"])
	assert.Len(t, res.Errors, len(res.Unresolved))
	for _, e := range res.Errors {
		assert.True(t, errors.Is(e, agents.ErrUnresolvedReference))
	}
}

func TestRun_RepeatedLinkIsAccepted(t *testing.T) {
	ctx := context.Background()
	c := newLegacyDB(t, append(legacyFixture,
		`INSERT INTO manuscripts.clients_people (client_code, person_code) VALUES ('cl0001', 'pe0045')`,
	)...)

	_, err := Run(ctx, testConfig, c, fixtureBooks(), logging.Nop(), Options{})
	require.NoError(t, err)
	assert.Equal(t, "id000045", resolved(t, c, agents.NamespaceClient, "cl0001"))
}

func TestRun_ConflictingLinksAbort(t *testing.T) {
	ctx := context.Background()
	c := newLegacyDB(t, append(legacyFixture,
		`INSERT INTO manuscripts.clients_people (client_code, person_code) VALUES ('cl0001', 'pe0046')`,
	)...)

	res, err := Run(ctx, testConfig, c, fixtureBooks(), logging.Nop(), Options{})
	require.Error(t, err)
	assert.Nil(t, res)

	var ambiguous *agents.AmbiguousIdentityError
	require.True(t, errors.As(err, &ambiguous))
	assert.Equal(t, "cl0001", ambiguous.Key)
	assert.Equal(t, "id000045", ambiguous.Existing)
	assert.Equal(t, "id000046", ambiguous.Conflicting)
	assert.Contains(t, err.Error(), "resolve clients")
}

func TestRun_ReviewedConflictAborts(t *testing.T) {
	ctx := context.Background()
	c := newLegacyDB(t, legacyFixture...)
	books := fixtureBooks()
	books.reviewed = []sources.ReviewedClient{{Code: "cl0001", Name: "Dupont", Corporate: true}}

	_, err := Run(ctx, testConfig, c, books, logging.Nop(), Options{})
	var ambiguous *agents.AmbiguousIdentityError
	require.True(t, errors.As(err, &ambiguous))
}

func TestRun_TargetExists(t *testing.T) {
	ctx := context.Background()
	c := newLegacyDB(t, legacyFixture...)

	first, err := Run(ctx, testConfig, c, fixtureBooks(), logging.Nop(), Options{})
	require.NoError(t, err)

	_, err = Run(ctx, testConfig, c, fixtureBooks(), logging.Nop(), Options{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTargetExists))

	second, err := Run(ctx, testConfig, c, fixtureBooks(), logging.Nop(), Options{Force: true})
	require.NoError(t, err)
	assert.Equal(t, first.KeysMapped, second.KeysMapped)
	assert.Equal(t, first.Events, second.Events)

	n, err := c.Count(ctx, store.Target("agent"))
	require.NoError(t, err)
	assert.Equal(t, int64(5), n)
}

func TestRun_SourceMissing(t *testing.T) {
	ctx := context.Background()
	c, err := sqlite.New(ctx, "sqlite://:memory:", sqlite.Attach{})
	require.NoError(t, err)
	defer c.Close(ctx)

	_, err = Run(ctx, testConfig, c, fixtureBooks(), nil, Options{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSourceMissing))
	assert.True(t, errors.Is(err, sources.ErrSourceIO))
}

func TestRun_MalformedStampingCount(t *testing.T) {
	ctx := context.Background()
	c := newLegacyDB(t, append(legacyFixture,
		`INSERT INTO manuscripts.manuscript_events (id, event_copies) VALUES (2, 'douze')`,
	)...)

	_, err := Run(ctx, testConfig, c, fixtureBooks(), logging.Nop(), Options{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, sources.ErrSourceIO))
	assert.Contains(t, err.Error(), "stamping 2 copies")
}
