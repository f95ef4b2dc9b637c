package agents

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mpcereform/internal/codegen"
)

func seededResolver(t *testing.T, agents ...Agent) *Resolver {
	t.Helper()
	registry := NewRegistry()
	for _, a := range agents {
		require.NoError(t, registry.Add(a))
	}
	return NewResolver(registry)
}

func TestLink_AgreeingSourcesAccepted(t *testing.T) {
	r := seededResolver(t, Agent{Code: "id000031", Name: "Pierre Gosse"})

	n, err := r.Link(NamespaceClient, "sheet A", []Link{{Key: "cl9999", AgentCode: "id00031"}})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = r.Link(NamespaceClient, "sheet B", []Link{{Key: "cl9999", AgentCode: "id00031"}})
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	code, ok := r.Mapping().Resolve(NamespaceClient, "cl9999")
	require.True(t, ok)
	assert.Equal(t, "id00031", code)
}

func TestLink_ConflictingSourcesAmbiguous(t *testing.T) {
	r := seededResolver(t)

	_, err := r.Link(NamespaceClient, "sheet A", []Link{{Key: "cl9999", AgentCode: "id00031"}})
	require.NoError(t, err)

	_, err = r.Link(NamespaceClient, "sheet B", []Link{{Key: "cl9999", AgentCode: "id00099"}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrAmbiguousIdentity))

	var ambiguous *AmbiguousIdentityError
	require.True(t, errors.As(err, &ambiguous))
	assert.Equal(t, "cl9999", ambiguous.Key)
	assert.Equal(t, "id00031", ambiguous.Existing)
	assert.Equal(t, "id00099", ambiguous.Conflicting)
	assert.Contains(t, err.Error(), "sheet A")
	assert.Contains(t, err.Error(), "sheet B")
}

func TestLink_NamespacesAreSeparate(t *testing.T) {
	r := seededResolver(t)

	_, err := r.Link(NamespaceClient, "clients", []Link{{Key: "x1", AgentCode: "id000001"}})
	require.NoError(t, err)
	_, err = r.Link(NamespaceAuthor, "authors", []Link{{Key: "x1", AgentCode: "id000002"}})
	require.NoError(t, err)

	client, _ := r.Mapping().Resolve(NamespaceClient, "x1")
	author, _ := r.Mapping().Resolve(NamespaceAuthor, "x1")
	assert.Equal(t, "id000001", client)
	assert.Equal(t, "id000002", author)
}

func TestSynthesize_GenderClasses(t *testing.T) {
	r := seededResolver(t, Agent{Code: "id000044", Name: "Existing"})
	set := Aggregate([]Source{{Rows: []CandidateRow{
		{Key: "c1", Name: "Frères Périsse", Gender: "Mixed"},
		{Key: "c2", Name: "Dupont", Gender: "male"},
		{Key: "c3", Name: "Veuve Machuel", Gender: "Female"},
		{Key: "c4", Name: "Unknown", Gender: "?"},
		{Key: "c5", Name: "No gender"},
		{Key: "c6", Name: "Société typographique", CorporateHint: boolPtr(true)},
	}}})

	result, err := r.Synthesize(NamespaceClient, set)
	require.NoError(t, err)
	require.Len(t, result.Created, 6)

	expected := []struct {
		code      string
		sex       string
		corporate bool
	}{
		{"id000045", "", true},
		{"id000046", "M", false},
		{"id000047", "F", false},
		{"id000048", "", false},
		{"id000049", "", false},
		{"id000050", "", true},
	}
	for i, want := range expected {
		got := result.Created[i]
		assert.Equal(t, want.code, got.Code)
		assert.Equal(t, want.sex, got.Sex, got.Name)
		assert.Equal(t, want.corporate, got.Corporate, got.Name)
	}
}

func TestSynthesize_TypeConflictSplits(t *testing.T) {
	r := seededResolver(t,
		Agent{Code: "id000010", Name: "Jean Mossy"},
		Agent{Code: "id000011", Name: "Mossy et Cie", Corporate: true},
	)
	_, err := r.Link(NamespaceClient, "clients_people", []Link{
		{Key: "cl1210", AgentCode: "id000010"},
		{Key: "cl1211", AgentCode: "id000011"},
		{Key: "cl1212", AgentCode: "id000010"},
	})
	require.NoError(t, err)

	set := Aggregate([]Source{{Rows: []CandidateRow{
		{Key: "cl1210", Name: "Mossy", CorporateHint: boolPtr(false)},
		{Key: "cl1211", Name: "Mossy père", CorporateHint: boolPtr(false)},
		{Key: "cl1212", Name: "Mossy", Gender: "Mixed"},
	}}})

	result, err := r.Synthesize(NamespaceClient, set)
	require.NoError(t, err)
	require.Len(t, result.Created, 1, "only the hinted type conflict splits")
	assert.Equal(t, "id000012", result.Created[0].Code)
	assert.False(t, result.Created[0].Corporate)

	code, _ := r.Mapping().Resolve(NamespaceClient, "cl1211")
	assert.Equal(t, "id000012", code)
	code, _ = r.Mapping().Resolve(NamespaceClient, "cl1210")
	assert.Equal(t, "id000010", code)
	code, _ = r.Mapping().Resolve(NamespaceClient, "cl1212")
	assert.Equal(t, "id000010", code, "no hint means no split")
}

func TestSynthesize_NotesAppendedExistingFirst(t *testing.T) {
	r := seededResolver(t, Agent{Code: "id000001", Name: "Gosse", Notes: "From people."})
	_, err := r.Link(NamespaceClient, "clients_people", []Link{{Key: "cl0001", AgentCode: "id000001"}})
	require.NoError(t, err)

	set := Aggregate([]Source{
		{Rows: []CandidateRow{{Key: "cl0001", Name: "Gosse", Notes: "STN client."}}},
		{Label: "Estampillage Notes", Rows: []CandidateRow{{Key: "cl0001", Name: "Gosse", Notes: "Inspector."}}},
	})

	_, err = r.Synthesize(NamespaceClient, set)
	require.NoError(t, err)

	agent, ok := r.Registry().Get("id000001")
	require.True(t, ok)
	assert.Equal(t, "From people. STN client. Estampillage Notes: Inspector.", agent.Notes)
}

func TestSynthesize_BergeretScenario(t *testing.T) {
	r := seededResolver(t, Agent{Code: "id000100", Name: "Someone"})
	set := Aggregate([]Source{
		{Rows: []CandidateRow{{Key: "cl0335", Name: "Bergeret", Gender: "Male", CorporateHint: boolPtr(false)}}},
		{Label: "Permission simple notes", Rows: []CandidateRow{{Key: "cl0335", Name: "Bergeret", PlaceCodes: "pl0012"}}},
	})
	require.Equal(t, 1, set.Len())

	result, err := r.Synthesize(NamespaceClient, set)
	require.NoError(t, err)
	require.Len(t, result.Created, 1)
	assert.Equal(t, 1, result.Resolved)

	assert.Equal(t, []Address{{AgentCode: "id000101", PlaceCode: "pl0012"}}, r.Addresses())
}

func TestSynthesize_AssignmentsDeduplicated(t *testing.T) {
	r := seededResolver(t, Agent{Code: "id000001", Name: "A"})
	_, err := r.Link(NamespaceClient, "links", []Link{{Key: "cl1", AgentCode: "id000001"}})
	require.NoError(t, err)
	r.AddAddress(Address{AgentCode: "id000001", PlaceCode: "pl0001", Address: "rue Saint-Jacques"})
	r.AssignProfession("id000001", "pf014")

	set := Aggregate([]Source{{Rows: []CandidateRow{
		{Key: "cl1", Name: "A", PlaceCodes: "pl0001, pl0002;pl0002", ProfessionCodes: "pf014;pf100"},
	}}})
	_, err = r.Synthesize(NamespaceClient, set)
	require.NoError(t, err)

	assert.Equal(t, []Address{
		{AgentCode: "id000001", PlaceCode: "pl0001", Address: "rue Saint-Jacques"},
		{AgentCode: "id000001", PlaceCode: "pl0002"},
	}, r.Addresses())
	assert.Equal(t, []ProfessionAssignment{
		{AgentCode: "id000001", ProfessionCode: "pf014"},
		{AgentCode: "id000001", ProfessionCode: "pf100"},
	}, r.Professions())
}

func TestSynthesize_EmptyRegistryIsMalformed(t *testing.T) {
	r := seededResolver(t)
	set := Aggregate([]Source{{Rows: []CandidateRow{{Key: "cl1", Name: "A"}}}})

	_, err := r.Synthesize(NamespaceClient, set)
	require.Error(t, err)
	assert.True(t, errors.Is(err, codegen.ErrMalformedIdentifier))
}

func TestSynthesize_Reproducible(t *testing.T) {
	run := func() []Agent {
		r := seededResolver(t, Agent{Code: "id000001", Name: "Seed"})
		result, err := r.Synthesize(NamespaceClient, Aggregate(testSources()))
		require.NoError(t, err)
		return result.Created
	}
	assert.Equal(t, run(), run())
}

func TestCreateReviewed(t *testing.T) {
	r := seededResolver(t, Agent{Code: "id000005", Name: "Seed"})

	created, err := r.CreateReviewed(NamespaceClient, "clients_without_person_codes", []ReviewedAgent{
		{Key: "cl0500", Name: "Chez Pavie", Corporate: true, Notes: "Shop."},
		{Key: "cl0501", Name: "Pavie"},
	})
	require.NoError(t, err)
	require.Len(t, created, 2)
	assert.Equal(t, "id000006", created[0].Code)
	assert.True(t, created[0].Corporate)
	assert.Equal(t, "id000007", created[1].Code)

	set := Aggregate([]Source{{Rows: []CandidateRow{{Key: "cl0500", Name: "Pavie", CorporateHint: boolPtr(true)}}}})
	assert.False(t, r.NeedsAgent(NamespaceClient, mustGet(t, set, "cl0500")))
}

func TestSynthesizeByName_SharesAgentsForDuplicateNames(t *testing.T) {
	r := seededResolver(t, Agent{Code: "id000009", Name: "Voltaire"})
	_, err := r.Link(NamespaceAuthor, "author_person", []Link{{Key: "au0001", AgentCode: "id000009"}})
	require.NoError(t, err)

	created, err := r.SynthesizeByName(NamespaceAuthor, []NamedKey{
		{Key: "au0001", Name: "Voltaire"},
		{Key: "au0002", Name: "Rousseau"},
		{Key: "au0003", Name: "Diderot"},
		{Key: "au0004", Name: "Rousseau"},
		{Key: "au0005", Name: ""},
	})
	require.NoError(t, err)
	require.Len(t, created, 2)
	assert.Equal(t, Agent{Code: "id000010", Name: "Rousseau"}, created[0])
	assert.Equal(t, Agent{Code: "id000011", Name: "Diderot"}, created[1])

	a, _ := r.Mapping().Resolve(NamespaceAuthor, "au0002")
	b, _ := r.Mapping().Resolve(NamespaceAuthor, "au0004")
	assert.Equal(t, a, b)
	_, ok := r.Mapping().Resolve(NamespaceAuthor, "au0005")
	assert.False(t, ok)
}

func TestMemberships(t *testing.T) {
	r := seededResolver(t,
		Agent{Code: "id000001", Name: "Robert"},
		Agent{Code: "id000002", Name: "Gauthier"},
		Agent{Code: "id000003", Name: "A firm", Corporate: true},
		Agent{Code: "id000004", Name: "Robert & Gauthier", Corporate: true},
	)
	_, err := r.Link(NamespaceClient, "test", []Link{{Key: "cl0353", AgentCode: "id000004"}})
	require.NoError(t, err)

	memberships, unresolved := r.Memberships(NamespaceClient, []PartnerLink{
		{ClientKey: "cl0353", AgentCode: "id000001", Partnership: true},
		{ClientKey: "cl0353", AgentCode: "id000002", Partnership: true},
		{ClientKey: "cl0353", AgentCode: "id000002", Partnership: true},
		{ClientKey: "cl0353", AgentCode: "id000003", Partnership: true},
		{ClientKey: "cl0400", AgentCode: "id000001", Partnership: false},
		{ClientKey: "cl0401", AgentCode: "id000001", Partnership: true},
	})

	assert.Equal(t, []Membership{
		{Member: "id000001", Corporate: "id000004"},
		{Member: "id000002", Corporate: "id000004"},
	}, memberships)
	require.Len(t, unresolved, 1)
	assert.Equal(t, "cl0401", unresolved[0].Key)
	assert.True(t, errors.Is(unresolved[0], ErrUnresolvedReference))
}

func TestPersonAgentCode(t *testing.T) {
	assert.Equal(t, "id000031", PersonAgentCode("pe0031"))
	assert.Equal(t, "id001234", PersonAgentCode("1234"))
}

func mustGet(t *testing.T, set *CandidateSet, key string) Candidate {
	t.Helper()
	c, ok := set.Get(key)
	require.True(t, ok)
	return c
}

func TestAddAddress_FillsMissingStreet(t *testing.T) {
	r := NewResolver(NewRegistry())
	assert.True(t, r.AddAddress(Address{AgentCode: "id000001", PlaceCode: "pl0012"}))
	assert.False(t, r.AddAddress(Address{AgentCode: "id000001", PlaceCode: "pl0012", Address: "place Maubert"}))
	assert.False(t, r.AddAddress(Address{AgentCode: "id000001", PlaceCode: "pl0012", Address: "rue de la Harpe"}))

	assert.Equal(t, []Address{{AgentCode: "id000001", PlaceCode: "pl0012", Address: "place Maubert"}}, r.Addresses())
}
