package agents

// Lookup resolves a legacy key to its canonical agent code.
type Lookup interface {
	Resolve(ns Namespace, key string) (string, bool)
}

// KeyLink is one persisted row of the key mapping.
type KeyLink struct {
	Namespace Namespace
	Key       string
	AgentCode string
	Source    string
}

// Mapping is the key→agent relation built during resolution, one total
// function per namespace. It keeps insertion order so that persisted rows
// come out the same on every run.
type Mapping struct {
	entries map[Namespace]map[string]int
	links   []KeyLink
}

func NewMapping() *Mapping {
	return &Mapping{entries: make(map[Namespace]map[string]int)}
}

func (m *Mapping) Resolve(ns Namespace, key string) (string, bool) {
	link, ok := m.get(ns, key)
	if !ok {
		return "", false
	}
	return link.AgentCode, true
}

func (m *Mapping) get(ns Namespace, key string) (KeyLink, bool) {
	keys, ok := m.entries[ns]
	if !ok {
		return KeyLink{}, false
	}
	i, ok := keys[key]
	if !ok {
		return KeyLink{}, false
	}
	return m.links[i], true
}

func (m *Mapping) set(link KeyLink) {
	keys, ok := m.entries[link.Namespace]
	if !ok {
		keys = make(map[string]int)
		m.entries[link.Namespace] = keys
	}
	if i, exists := keys[link.Key]; exists {
		m.links[i] = link
		return
	}
	keys[link.Key] = len(m.links)
	m.links = append(m.links, link)
}

// Len counts the keys mapped in ns.
func (m *Mapping) Len(ns Namespace) int {
	return len(m.entries[ns])
}

// Links returns every mapping row in insertion order.
func (m *Mapping) Links() []KeyLink {
	out := make([]KeyLink, len(m.links))
	copy(out, m.links)
	return out
}

// Freeze returns a read-only copy for the propagation phase.
func (m *Mapping) Freeze() Frozen {
	frozen := make(Frozen, len(m.entries))
	for _, link := range m.links {
		keys, ok := frozen[link.Namespace]
		if !ok {
			keys = make(map[string]string)
			frozen[link.Namespace] = keys
		}
		keys[link.Key] = link.AgentCode
	}
	return frozen
}

type Frozen map[Namespace]map[string]string

func (f Frozen) Resolve(ns Namespace, key string) (string, bool) {
	code, ok := f[ns][key]
	return code, ok
}
