package agents

import (
	"strings"

	"github.com/cockroachdb/errors"
)

// Registry holds every agent of the run in creation order. Its code list is
// the snapshot the code generator continues from.
type Registry struct {
	agents []*Agent
	index  map[string]int
}

func NewRegistry() *Registry {
	return &Registry{index: make(map[string]int)}
}

func (r *Registry) Add(a Agent) error {
	if strings.TrimSpace(a.Code) == "" {
		return errors.New("agent code is required")
	}
	if _, exists := r.index[a.Code]; exists {
		return errors.Wrapf(ErrDuplicateAgent, "%s", a.Code)
	}
	r.index[a.Code] = len(r.agents)
	agent := a
	r.agents = append(r.agents, &agent)
	return nil
}

func (r *Registry) Get(code string) (Agent, bool) {
	i, ok := r.index[code]
	if !ok {
		return Agent{}, false
	}
	return *r.agents[i], true
}

func (r *Registry) Len() int { return len(r.agents) }

func (r *Registry) Codes() []string {
	codes := make([]string, len(r.agents))
	for i, a := range r.agents {
		codes[i] = a.Code
	}
	return codes
}

func (r *Registry) Agents() []Agent {
	out := make([]Agent, len(r.agents))
	for i, a := range r.agents {
		out[i] = *a
	}
	return out
}

// AppendNotes adds notes after the agent's existing notes, separated by a
// single space. Notes are the only field changed after creation.
func (r *Registry) AppendNotes(code, notes string) bool {
	i, ok := r.index[code]
	if !ok {
		return false
	}
	r.agents[i].Notes = joinNotes(r.agents[i].Notes, notes)
	return true
}

func joinNotes(existing, extra string) string {
	existing = strings.TrimSpace(existing)
	extra = strings.TrimSpace(extra)
	switch {
	case extra == "":
		return existing
	case existing == "":
		return extra
	default:
		return existing + " " + extra
	}
}
