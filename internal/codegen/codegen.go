// Package codegen continues identifier sequences of the form <letters><zero-padded digits>,
// such as agent codes ("id000123") or client codes ("cl0335").
package codegen

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/cockroachdb/errors"
)

// ErrMalformedIdentifier is returned when no value in a column follows the
// prefix+digits convention, so no numbering frame can be inferred.
var ErrMalformedIdentifier = errors.New("malformed identifier")

var codePattern = regexp.MustCompile(`^([A-Za-z]+)([0-9]+)$`)

// Frame is the alphabetic prefix and digit width of an identifier column.
type Frame struct {
	Prefix string
	Width  int
}

// Format renders n inside the frame. Numerals wider than the frame are
// written out in full after the prefix.
func (f Frame) Format(n int) string {
	return fmt.Sprintf("%s%0*d", f.Prefix, f.Width, n)
}

// Parse splits a code into prefix and numeral.
func Parse(code string) (prefix string, numeral int, ok bool) {
	m := codePattern.FindStringSubmatch(code)
	if m == nil {
		return "", 0, false
	}
	n, err := strconv.Atoi(m[2])
	if err != nil {
		return "", 0, false
	}
	return m[1], n, true
}

// InferFrame returns the frame of the first well-formed value in existing.
// Legacy columns mix widths; the first value wins.
func InferFrame(existing []string) (Frame, error) {
	for _, code := range existing {
		m := codePattern.FindStringSubmatch(code)
		if m == nil {
			continue
		}
		return Frame{Prefix: m[1], Width: len(m[2])}, nil
	}
	return Frame{}, errors.Wrapf(ErrMalformedIdentifier, "no value among %d matches <letters><digits>", len(existing))
}

// Next returns n unused codes continuing the sequence found in existing.
// existing is a snapshot of the column in storage order. Only values under
// the frame's prefix count towards the highest numeral.
func Next(existing []string, n int) ([]string, error) {
	frame, err := InferFrame(existing)
	if err != nil {
		return nil, err
	}
	if n <= 0 {
		return nil, nil
	}

	highest := 0
	for _, code := range existing {
		if prefix, numeral, ok := Parse(code); ok && prefix == frame.Prefix && numeral > highest {
			highest = numeral
		}
	}

	codes := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		codes = append(codes, frame.Format(highest+i))
	}
	return codes, nil
}
