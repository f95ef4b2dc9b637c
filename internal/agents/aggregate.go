package agents

import "strings"

// CandidateSet is the merged candidate list, one entry per source key, in
// first-seen order.
type CandidateSet struct {
	order []string
	byKey map[string]*Candidate
}

func (s *CandidateSet) Keys() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

func (s *CandidateSet) Get(key string) (Candidate, bool) {
	c, ok := s.byKey[key]
	if !ok {
		return Candidate{}, false
	}
	return *c, true
}

func (s *CandidateSet) Len() int { return len(s.order) }

// Aggregate merges the sources, in the order given, into one candidate per key.
// The first source to mention a key fills every field; later sources only fill
// fields still empty and append their notes tagged with their label. Rows with
// no usable name are dropped.
func Aggregate(sources []Source) *CandidateSet {
	set := &CandidateSet{byKey: make(map[string]*Candidate)}

	for _, source := range sources {
		for _, row := range source.Rows {
			key := strings.TrimSpace(row.Key)
			if key == "" || !usableName(row.Name) {
				continue
			}

			existing, seen := set.byKey[key]
			if !seen {
				set.byKey[key] = &Candidate{
					Key:             key,
					Name:            strings.TrimSpace(row.Name),
					AltName:         strings.TrimSpace(row.AltName),
					ProfessionCodes: strings.TrimSpace(row.ProfessionCodes),
					PlaceCodes:      strings.TrimSpace(row.PlaceCodes),
					Gender:          strings.TrimSpace(row.Gender),
					Notes:           strings.TrimSpace(row.Notes),
					Title:           strings.TrimSpace(row.Title),
					CorporateHint:   copyBool(row.CorporateHint),
					Sources:         []string{source.Label},
				}
				set.order = append(set.order, key)
				continue
			}

			fillEmpty(&existing.AltName, row.AltName)
			fillEmpty(&existing.ProfessionCodes, row.ProfessionCodes)
			fillEmpty(&existing.PlaceCodes, row.PlaceCodes)
			fillEmpty(&existing.Gender, row.Gender)
			fillEmpty(&existing.Title, row.Title)
			if existing.CorporateHint == nil {
				existing.CorporateHint = copyBool(row.CorporateHint)
			}
			existing.Notes = appendTagged(existing.Notes, source.Label, row.Notes)
			existing.Sources = append(existing.Sources, source.Label)
		}
	}

	return set
}

func usableName(name string) bool {
	name = strings.TrimSpace(name)
	return name != "" && !strings.EqualFold(name, "null")
}

func fillEmpty(field *string, value string) {
	if *field != "" {
		return
	}
	*field = strings.TrimSpace(value)
}

func appendTagged(existing, label, notes string) string {
	notes = strings.TrimSpace(notes)
	if notes == "" {
		return existing
	}
	if label != "" {
		notes = label + ": " + notes
	}
	return joinNotes(existing, notes)
}

func copyBool(b *bool) *bool {
	if b == nil {
		return nil
	}
	v := *b
	return &v
}
