package agents

import (
	"strings"

	"github.com/cockroachdb/errors"

	"mpcereform/internal/codegen"
	"mpcereform/internal/parser"
)

// Resolver builds the key mapping over a registry of agents and collects the
// address and profession rows derived along the way. It is used by one
// goroutine for one run.
type Resolver struct {
	registry    *Registry
	mapping     *Mapping
	addresses   []Address
	addressSeen map[[2]string]int
	professions []ProfessionAssignment
	profSeen    map[[2]string]struct{}
}

func NewResolver(registry *Registry) *Resolver {
	return &Resolver{
		registry:    registry,
		mapping:     NewMapping(),
		addressSeen: make(map[[2]string]int),
		profSeen:    make(map[[2]string]struct{}),
	}
}

func (r *Resolver) Registry() *Registry { return r.registry }

func (r *Resolver) Mapping() *Mapping { return r.mapping }

// Link imports reviewed mappings for ns. Repeating an identical mapping is
// fine; a different agent for an already linked key is an
// *AmbiguousIdentityError.
func (r *Resolver) Link(ns Namespace, source string, links []Link) (int, error) {
	added := 0
	for _, link := range links {
		key := strings.TrimSpace(link.Key)
		code := strings.TrimSpace(link.AgentCode)
		if key == "" || code == "" {
			continue
		}
		ok, err := r.setLink(KeyLink{Namespace: ns, Key: key, AgentCode: code, Source: source})
		if err != nil {
			return added, err
		}
		if ok {
			added++
		}
	}
	return added, nil
}

func (r *Resolver) setLink(link KeyLink) (bool, error) {
	existing, ok := r.mapping.get(link.Namespace, link.Key)
	if !ok {
		r.mapping.set(link)
		return true, nil
	}
	if existing.AgentCode == link.AgentCode {
		return false, nil
	}
	return false, &AmbiguousIdentityError{
		Namespace:         link.Namespace,
		Key:               link.Key,
		Existing:          existing.AgentCode,
		ExistingSource:    existing.Source,
		Conflicting:       link.AgentCode,
		ConflictingSource: link.Source,
	}
}

// CreateReviewed mints one agent per reviewed row, in row order, and links the
// row's key to it.
func (r *Resolver) CreateReviewed(ns Namespace, source string, rows []ReviewedAgent) ([]Agent, error) {
	var pending []ReviewedAgent
	for _, row := range rows {
		if strings.TrimSpace(row.Key) == "" {
			continue
		}
		pending = append(pending, row)
	}
	codes, err := r.nextCodes(len(pending))
	if err != nil {
		return nil, errors.Wrap(err, "allocating codes for reviewed agents")
	}

	created := make([]Agent, 0, len(pending))
	for i, row := range pending {
		agent := Agent{
			Code:      codes[i],
			Name:      strings.TrimSpace(row.Name),
			Corporate: row.Corporate,
			Notes:     strings.TrimSpace(row.Notes),
		}
		if _, err := r.setLink(KeyLink{Namespace: ns, Key: strings.TrimSpace(row.Key), AgentCode: agent.Code, Source: source}); err != nil {
			return created, err
		}
		if err := r.registry.Add(agent); err != nil {
			return created, err
		}
		created = append(created, agent)
	}
	return created, nil
}

// NeedsAgent reports whether a candidate must get a new agent: it has no
// mapping, or its type hint disagrees with the linked agent's type.
func (r *Resolver) NeedsAgent(ns Namespace, c Candidate) bool {
	code, linked := r.mapping.Resolve(ns, c.Key)
	if !linked {
		return true
	}
	if c.CorporateHint == nil {
		return false
	}
	agent, ok := r.registry.Get(code)
	if !ok {
		return false
	}
	return agent.Corporate != *c.CorporateHint
}

// Synthesis is the outcome of one Synthesize call.
type Synthesis struct {
	Created  []Agent
	Resolved int
}

// Synthesize mints agents for the candidates that need one, then merges every
// resolved candidate's notes into its agent and derives its address and
// profession rows. New codes are assigned in candidate order.
func (r *Resolver) Synthesize(ns Namespace, set *CandidateSet) (*Synthesis, error) {
	var pending []Candidate
	for _, key := range set.Keys() {
		c, _ := set.Get(key)
		if r.NeedsAgent(ns, c) {
			pending = append(pending, c)
		}
	}

	codes, err := r.nextCodes(len(pending))
	if err != nil {
		return nil, errors.Wrapf(err, "allocating codes for %d %s candidates", len(pending), ns)
	}

	result := &Synthesis{Created: make([]Agent, 0, len(pending))}
	for i, c := range pending {
		sex, mixed := parser.NormalizeGender(c.Gender)
		agent := Agent{
			Code:       codes[i],
			Name:       c.Name,
			OtherNames: c.AltName,
			Sex:        sex,
			Title:      c.Title,
			Corporate:  mixed || (c.CorporateHint != nil && *c.CorporateHint),
		}
		if err := r.registry.Add(agent); err != nil {
			return nil, err
		}
		// A type-conflicting reviewed link is superseded by the new agent.
		r.mapping.set(KeyLink{Namespace: ns, Key: c.Key, AgentCode: agent.Code, Source: SourceSynthesized})
		result.Created = append(result.Created, agent)
	}

	for _, key := range set.Keys() {
		c, _ := set.Get(key)
		code, ok := r.mapping.Resolve(ns, key)
		if !ok {
			continue
		}
		r.registry.AppendNotes(code, c.Notes)
		for _, place := range parser.SplitCodes(c.PlaceCodes) {
			r.AddAddress(Address{AgentCode: code, PlaceCode: place})
		}
		for _, prof := range parser.SplitCodes(c.ProfessionCodes) {
			r.AssignProfession(code, prof)
		}
		result.Resolved++
	}

	return result, nil
}

// SynthesizeByName mints agents for the unmapped keys of rows, one agent per
// distinct name in first-seen order; keys sharing a name share the agent.
func (r *Resolver) SynthesizeByName(ns Namespace, rows []NamedKey) ([]Agent, error) {
	var names []string
	keysByName := make(map[string][]string)
	seenKey := make(map[string]struct{})
	for _, row := range rows {
		key := strings.TrimSpace(row.Key)
		name := strings.TrimSpace(row.Name)
		if key == "" || !usableName(name) {
			continue
		}
		if _, dup := seenKey[key]; dup {
			continue
		}
		seenKey[key] = struct{}{}
		if _, linked := r.mapping.Resolve(ns, key); linked {
			continue
		}
		if _, known := keysByName[name]; !known {
			names = append(names, name)
		}
		keysByName[name] = append(keysByName[name], key)
	}

	codes, err := r.nextCodes(len(names))
	if err != nil {
		return nil, errors.Wrapf(err, "allocating codes for %d %s names", len(names), ns)
	}

	created := make([]Agent, 0, len(names))
	for i, name := range names {
		agent := Agent{Code: codes[i], Name: name}
		if err := r.registry.Add(agent); err != nil {
			return created, err
		}
		for _, key := range keysByName[name] {
			r.mapping.set(KeyLink{Namespace: ns, Key: key, AgentCode: agent.Code, Source: SourceSynthesized})
		}
		created = append(created, agent)
	}
	return created, nil
}

// Memberships turns the partnership links into member→corporate rows. Links
// whose person is itself corporate are skipped.
func (r *Resolver) Memberships(ns Namespace, links []PartnerLink) ([]Membership, []UnresolvedReference) {
	var memberships []Membership
	var unresolved []UnresolvedReference
	seen := make(map[Membership]struct{})

	for _, link := range links {
		if !link.Partnership {
			continue
		}
		if member, ok := r.registry.Get(link.AgentCode); ok && member.Corporate {
			continue
		}
		corporate, ok := r.mapping.Resolve(ns, link.ClientKey)
		if !ok {
			unresolved = append(unresolved, UnresolvedReference{
				Table:     "is_member_of",
				Column:    "corporate_entity",
				Row:       link.AgentCode,
				Namespace: ns,
				Key:       link.ClientKey,
			})
			continue
		}
		m := Membership{Member: link.AgentCode, Corporate: corporate}
		if _, dup := seen[m]; dup {
			continue
		}
		seen[m] = struct{}{}
		memberships = append(memberships, m)
	}

	return memberships, unresolved
}

// AddAddress records an address unless the agent already has that place.
// A repeated place only fills in a street address that was missing.
func (r *Resolver) AddAddress(a Address) bool {
	if a.AgentCode == "" || a.PlaceCode == "" {
		return false
	}
	key := [2]string{a.AgentCode, a.PlaceCode}
	if i, dup := r.addressSeen[key]; dup {
		if r.addresses[i].Address == "" {
			r.addresses[i].Address = a.Address
		}
		return false
	}
	r.addressSeen[key] = len(r.addresses)
	r.addresses = append(r.addresses, a)
	return true
}

// AssignProfession records a profession unless the agent already has it.
func (r *Resolver) AssignProfession(agentCode, professionCode string) bool {
	if agentCode == "" || professionCode == "" {
		return false
	}
	key := [2]string{agentCode, professionCode}
	if _, dup := r.profSeen[key]; dup {
		return false
	}
	r.profSeen[key] = struct{}{}
	r.professions = append(r.professions, ProfessionAssignment{AgentCode: agentCode, ProfessionCode: professionCode})
	return true
}

func (r *Resolver) Addresses() []Address {
	out := make([]Address, len(r.addresses))
	copy(out, r.addresses)
	return out
}

func (r *Resolver) Professions() []ProfessionAssignment {
	out := make([]ProfessionAssignment, len(r.professions))
	copy(out, r.professions)
	return out
}

func (r *Resolver) nextCodes(n int) ([]string, error) {
	if n == 0 {
		return nil, nil
	}
	return codegen.Next(r.registry.Codes(), n)
}
