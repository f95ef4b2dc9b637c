package propagate

import (
	"context"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"mpcereform/internal/agents"
	"mpcereform/internal/store"
)

func strPtr(s string) *string { return &s }

func testLookup() agents.Frozen {
	return agents.Frozen{
		agents.NamespaceClient: {
			"cl0045": "id00045",
			"cl0046": "id00046",
			"cl0335": "id01001",
		},
		agents.NamespaceAuthor: {
			"au0001": "id00002",
		},
	}
}

func observedEngine(lookup agents.Lookup) (*Engine, *observer.ObservedLogs) {
	core, logs := observer.New(zap.InfoLevel)
	return New(lookup, zap.New(core).Sugar()), logs
}

var purchaser = Target{
	Column:    store.Column{Table: "mpce.parisian_stock_sale", IDColumn: "id", Name: "purchaser"},
	Namespace: agents.NamespaceClient,
}

func TestRewrite_UnknownKeyNulledAndLogged(t *testing.T) {
	engine, logs := observedEngine(testLookup())

	updates, unresolved := engine.Rewrite(purchaser, []store.ColumnValue{
		{ID: 1, Value: strPtr("cl0335")},
		{ID: 2, Value: strPtr("cl7777")},
		{ID: 3, Value: nil},
		{ID: 4, Value: strPtr("  ")},
	})

	require.Len(t, updates, 2)
	assert.Equal(t, int64(1), updates[0].ID)
	require.NotNil(t, updates[0].Value)
	assert.Equal(t, "id01001", *updates[0].Value)
	assert.Equal(t, int64(2), updates[1].ID)
	assert.Nil(t, updates[1].Value)

	require.Len(t, unresolved, 1)
	assert.Equal(t, "cl7777", unresolved[0].Key)
	assert.Equal(t, "2", unresolved[0].Row)
	assert.True(t, errors.Is(unresolved[0], agents.ErrUnresolvedReference))

	warned := logs.FilterMessage("unresolved reference").All()
	require.Len(t, warned, 1)
	fields := warned[0].ContextMap()
	assert.Equal(t, "mpce.parisian_stock_sale", fields["table"])
	assert.Equal(t, "purchaser", fields["column"])
	assert.Equal(t, "cl7777", fields["key"])
}

func TestRewrite_NamespacesDoNotMix(t *testing.T) {
	engine, _ := observedEngine(testLookup())
	authors := Target{Column: store.Column{Table: "mpce.edition_author", IDColumn: "id", Name: "author"}, Namespace: agents.NamespaceAuthor}

	updates, unresolved := engine.Rewrite(authors, []store.ColumnValue{
		{ID: 1, Value: strPtr("au0001")},
		{ID: 2, Value: strPtr("cl0045")},
	})

	require.Len(t, updates, 2)
	assert.Equal(t, "id00002", *updates[0].Value)
	assert.Nil(t, updates[1].Value)
	require.Len(t, unresolved, 1)
	assert.Equal(t, agents.NamespaceAuthor, unresolved[0].Namespace)
}

func TestCollect_FanIn(t *testing.T) {
	engine, logs := observedEngine(testLookup())

	updates, unresolved := engine.Collect(FanIn{
		Column:    AllCollectors,
		Namespace: agents.NamespaceClient,
		Entries: []Entry{
			{ParentID: 7, Text: "Dupont", Key: "cl0045"},
			{ParentID: 7, Text: "Martin", Key: "cl0046"},
			{ParentID: 8, Text: "Nobody", Key: "cl9999"},
			{ParentID: 7, Text: "Dupont again", Key: "cl0045"},
			{ParentID: 9, Text: "Gap", Key: ""},
		},
	})

	require.Len(t, updates, 2)
	assert.Equal(t, int64(7), updates[0].ID)
	require.NotNil(t, updates[0].Value)
	assert.Equal(t, "Dupont (id00045); Martin (id00046)", *updates[0].Value)
	assert.Equal(t, int64(8), updates[1].ID)
	assert.Nil(t, updates[1].Value)

	require.Len(t, unresolved, 1)
	assert.Equal(t, "all_collectors", unresolved[0].Column)
	assert.Equal(t, "8", unresolved[0].Row)
	assert.Equal(t, 1, logs.FilterMessage("unresolved reference").Len())
}

type memColumns struct {
	data    map[string][]store.ColumnValue
	written map[string][]store.ColumnValue
	order   []string
	failOn  string
}

func (m *memColumns) ReadColumn(ctx context.Context, col store.Column) ([]store.ColumnValue, error) {
	if col.String() == m.failOn {
		return nil, errors.New("forced read error")
	}
	return m.data[col.String()], nil
}

func (m *memColumns) UpdateColumn(ctx context.Context, col store.Column, values []store.ColumnValue) error {
	if m.written == nil {
		m.written = make(map[string][]store.ColumnValue)
	}
	m.order = append(m.order, col.String())
	m.written[col.String()] = values
	return nil
}

func TestRun_TargetsThenFanIns(t *testing.T) {
	engine, _ := observedEngine(testLookup())
	db := &memColumns{data: map[string][]store.ColumnValue{
		"mpce.parisian_stock_sale.purchaser": {
			{ID: 1, Value: strPtr("cl0045")},
			{ID: 2, Value: strPtr("cl0404")},
		},
	}}

	result, err := engine.Run(context.Background(), db, []Target{purchaser}, []FanIn{{
		Column:    AllCensors,
		Namespace: agents.NamespaceClient,
		Entries:   []Entry{{ParentID: 1, Text: "Martin", Key: "cl0046"}},
	}})
	require.NoError(t, err)

	assert.Equal(t, []string{"mpce.parisian_stock_sale.purchaser", "mpce.consignment.all_censors"}, db.order)
	require.Len(t, result.Reports, 2)
	assert.Equal(t, Report{Column: "mpce.parisian_stock_sale.purchaser", Updated: 2, Unresolved: 1}, result.Reports[0])
	require.Len(t, result.Unresolved, 1)
	assert.Equal(t, "cl0404", result.Unresolved[0].Key)
	assert.Equal(t, "Martin (id00046)", *db.written["mpce.consignment.all_censors"][0].Value)
}

func TestRun_ReadErrorStops(t *testing.T) {
	engine, _ := observedEngine(testLookup())
	db := &memColumns{failOn: "mpce.parisian_stock_sale.purchaser"}

	_, err := engine.Run(context.Background(), db, []Target{purchaser}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading mpce.parisian_stock_sale.purchaser")
	assert.Empty(t, db.order)
}

func TestRun_LookupIsNotMutated(t *testing.T) {
	lookup := testLookup()
	engine, _ := observedEngine(lookup)
	db := &memColumns{data: map[string][]store.ColumnValue{
		"mpce.parisian_stock_sale.purchaser": {{ID: 1, Value: strPtr("cl0404")}},
	}}

	_, err := engine.Run(context.Background(), db, []Target{purchaser}, nil)
	require.NoError(t, err)
	assert.Equal(t, testLookup(), lookup)
}

func TestTargets_Order(t *testing.T) {
	var names []string
	for _, target := range Targets() {
		names = append(names, target.Column.String())
	}
	assert.Equal(t, []string{
		"mpce.consignment.other_stakeholder",
		"mpce.consignment.returned_to_agent",
		"mpce.consignment_addressee.agent_code",
		"mpce.consignment_signatory.agent_code",
		"mpce.consignment_handling_agent.agent_code",
		"mpce.stamping.permitted_dealer",
		"mpce.stamping.attending_inspector",
		"mpce.stamping.attending_adjoint",
		"mpce.parisian_stock_auction.previous_owner",
		"mpce.auction_administrator.administrator_id",
		"mpce.parisian_stock_sale.purchaser",
		"mpce.permission_simple_grant.licensee",
		"mpce.edition_author.author",
	}, names)
	assert.Equal(t, agents.NamespaceAuthor, Targets()[12].Namespace)
}
