// Package parser holds the small parsers for the delimited and free-text
// fields of the legacy data. Each returns a structured value or an error;
// nothing here touches storage.
package parser

import (
	"regexp"
	"strings"

	"github.com/cockroachdb/errors"
)

var (
	ErrNoRoleAnnotation = errors.New("no role annotation found")
)

var (
	codeListSeparator = regexp.MustCompile(`[,;]\s*`)
	roleAnnotation    = regexp.MustCompile(`(c[a-z][0-9]{3,4}) \((\w+)\)`)
)

// SplitCodes splits a code list such as "pl0012, pl0340;pl0001".
// Grammar: code ( ("," | ";") whitespace* code )*
func SplitCodes(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	parts := codeListSeparator.Split(value, -1)
	codes := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		codes = append(codes, part)
	}
	if len(codes) == 0 {
		return nil
	}
	return codes
}

// Pair is one entry of a multi-person spreadsheet cell: the text as written
// in the register and the code assigned to it.
type Pair struct {
	Text string
	Code string
}

// SplitPairs zips the semicolon lists of a names cell and a codes cell.
// Extra entries on the longer side are ignored.
func SplitPairs(names, codes string) []Pair {
	if strings.TrimSpace(names) == "" || strings.TrimSpace(codes) == "" {
		return nil
	}
	nameParts := strings.Split(names, ";")
	codeParts := strings.Split(codes, ";")
	n := min(len(nameParts), len(codeParts))

	pairs := make([]Pair, 0, n)
	for i := 0; i < n; i++ {
		pairs = append(pairs, Pair{
			Text: strings.TrimSpace(nameParts[i]),
			Code: strings.TrimSpace(codeParts[i]),
		})
	}
	return pairs
}

// RoleAnnotation is a client code with the role keyword that follows it in
// parentheses, e.g. "cl0456 (syndic)".
type RoleAnnotation struct {
	Code string
	Role string
}

// ParseRoleAnnotation extracts the first "c<letter><3-4 digits> (<word>)" in value.
func ParseRoleAnnotation(value string) (RoleAnnotation, error) {
	m := roleAnnotation.FindStringSubmatch(value)
	if m == nil {
		return RoleAnnotation{}, errors.Wrapf(ErrNoRoleAnnotation, "%q", value)
	}
	return RoleAnnotation{Code: m[1], Role: m[2]}, nil
}

// NormalizeGender maps the free-text gender column onto a sex code.
// Text starting with "mixed" marks a group of people: sex is empty and
// corporate is true. Otherwise "m…" gives "M", "f…" gives "F" and anything
// else leaves sex empty.
func NormalizeGender(text string) (sex string, corporate bool) {
	lower := strings.ToLower(strings.TrimSpace(text))
	switch {
	case strings.HasPrefix(lower, "mixed"):
		return "", true
	case strings.HasPrefix(lower, "m"):
		return "M", false
	case strings.HasPrefix(lower, "f"):
		return "F", false
	default:
		return "", false
	}
}
