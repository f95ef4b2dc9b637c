// Package migrate runs the one-shot migration of the legacy manuscripts
// database and project spreadsheets into the mpce schema. Phases run in a
// fixed order against one store session; any structural failure aborts the
// run, while unresolved keys are logged and collected.
package migrate

import (
	"context"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"mpcereform/internal/agents"
	"mpcereform/internal/config"
	"mpcereform/internal/propagate"
	"mpcereform/internal/sources"
	"mpcereform/internal/store"
)

var (
	ErrTargetExists  = errors.New("target schema already exists; rerun with --force to replace it")
	ErrSourceMissing = errors.Mark(errors.New("source schema not found"), sources.ErrSourceIO)
)

// Store is the part of the store session the migration needs.
type Store interface {
	store.Schema
	store.Legacy
	store.Writer
	store.Columns
}

// Spreadsheets reads the project workbooks.
type Spreadsheets interface {
	AuthorLinks() ([]sources.AuthorLink, error)
	NewProfessions() ([]sources.Profession, error)
	PermissionClients() ([]sources.PermissionClient, error)
	Licences() ([]sources.Licence, error)
	ConfiscationPeople() ([]sources.ConfiscationPerson, error)
	Confiscations() ([]sources.Confiscation, error)
	ReviewedClients() ([]sources.ReviewedClient, error)
}

type Options struct {
	// Force drops an existing target schema instead of refusing to run.
	Force bool
}

type Result struct {
	AgentsImported   int
	AuthorsLinked    int
	AuthorsCreated   int
	ClientsLinked    int
	ReviewedCreated  int
	ClientsCreated   int
	KeysMapped       int
	Memberships      int
	Addresses        int
	Professions      int
	ProfessionsAdded int64
	Events           map[string]int
	Propagation      []propagate.Report
	Unresolved       []propagate.UnresolvedReference
	Errors           []error
}

// Run migrates everything in one pass. The returned Result is nil only when
// a fatal error stopped the run.
func Run(ctx context.Context, cfg *config.ProjectConfig, db Store, books Spreadsheets, log *zap.SugaredLogger, opts Options) (*Result, error) {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	if cfg != nil {
		log = log.With("project", cfg.Project)
	}

	m := &migration{
		db:       db,
		books:    books,
		log:      log,
		opts:     opts,
		resolver: agents.NewResolver(agents.NewRegistry()),
		result:   &Result{Events: make(map[string]int)},
	}

	phases := []struct {
		name string
		run  func(context.Context) error
	}{
		{"prepare target", m.prepare},
		{"import agents", m.importAgents},
		{"resolve authors", m.resolveAuthors},
		{"resolve clients", m.resolveClients},
		{"import events", m.importEvents},
		{"persist agents", m.persist},
		{"propagate", m.propagateKeys},
	}
	for _, phase := range phases {
		log.Infow("phase started", "phase", phase.name)
		if err := phase.run(ctx); err != nil {
			return nil, errors.Wrap(err, phase.name)
		}
	}

	for _, ref := range m.result.Unresolved {
		m.result.Errors = append(m.result.Errors, ref)
	}
	log.Infow("migration finished",
		"agents", m.resolver.Registry().Len(),
		"keys", m.result.KeysMapped,
		"unresolved", len(m.result.Unresolved),
	)
	return m.result, nil
}

// migration carries the state of one run between phases.
type migration struct {
	db       Store
	books    Spreadsheets
	log      *zap.SugaredLogger
	opts     Options
	resolver *agents.Resolver
	result   *Result

	clientLinks []store.ClientAgentRow
	partners    []agents.PartnerLink
	fanIns      []propagate.FanIn
}

func (m *migration) prepare(ctx context.Context) error {
	ok, err := m.db.SourceExists(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return ErrSourceMissing
	}

	exists, err := m.db.TargetExists(ctx)
	if err != nil {
		return err
	}
	if exists {
		if !m.opts.Force {
			return ErrTargetExists
		}
		m.log.Warnw("dropping existing target schema", "schema", store.TargetSchema)
		if err := m.db.DropTarget(ctx); err != nil {
			return err
		}
	}
	if err := m.db.CreateTarget(ctx); err != nil {
		return err
	}
	if err := m.db.InsertLookup(ctx, "author_type", authorTypes); err != nil {
		return err
	}
	return m.db.InsertLookup(ctx, "auction_role", auctionRoles)
}

func (m *migration) persist(ctx context.Context) error {
	r := m.resolver
	links := r.Mapping().Links()
	memberships, unresolved := r.Memberships(agents.NamespaceClient, m.partners)
	for _, ref := range unresolved {
		m.warnUnresolved(ref)
	}
	m.result.Unresolved = append(m.result.Unresolved, unresolved...)

	addresses := r.Addresses()
	professions := r.Professions()

	if err := m.db.InsertAgents(ctx, store.AgentRows(r.Registry().Agents())); err != nil {
		return err
	}
	if err := m.db.InsertKeyLinks(ctx, store.KeyLinkRows(links)); err != nil {
		return err
	}
	if err := m.db.InsertClientAgents(ctx, m.clientLinks); err != nil {
		return err
	}
	if err := m.db.InsertMemberships(ctx, store.MembershipRows(memberships)); err != nil {
		return err
	}
	if err := m.db.InsertAddresses(ctx, store.AddressRows(addresses)); err != nil {
		return err
	}
	if err := m.db.InsertAgentProfessions(ctx, store.AgentProfessionRows(professions)); err != nil {
		return err
	}

	m.result.KeysMapped = len(links)
	m.result.Memberships = len(memberships)
	m.result.Addresses = len(addresses)
	m.result.Professions = len(professions)
	m.log.Infow("agents persisted",
		"agents", r.Registry().Len(),
		"keys", len(links),
		"client_links", len(m.clientLinks),
		"memberships", len(memberships),
		"addresses", len(addresses),
		"professions", len(professions),
	)
	return nil
}

func (m *migration) propagateKeys(ctx context.Context) error {
	engine := propagate.New(m.resolver.Mapping().Freeze(), m.log)
	res, err := engine.Run(ctx, m.db, propagate.Targets(), m.fanIns)
	if err != nil {
		return err
	}
	m.result.Propagation = res.Reports
	m.result.Unresolved = append(m.result.Unresolved, res.Unresolved...)
	return nil
}

func (m *migration) warnUnresolved(ref agents.UnresolvedReference) {
	m.log.Warnw("unresolved reference",
		"table", ref.Table,
		"column", ref.Column,
		"row", ref.Row,
		"namespace", string(ref.Namespace),
		"key", ref.Key,
	)
}
