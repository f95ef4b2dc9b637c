package parser

import (
	"regexp"
	"strings"
)

var (
	isoDate   = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})`)
	yearPart  = regexp.MustCompile(`\b\d{4}\b`)
	monthPart = regexp.MustCompile(`\b[A-Z][a-z]{2,8}\b`)
	dayPart   = regexp.MustCompile(`\b(\d{1,2})[a-z]{0,2}\b`)
)

var months = map[string]string{
	"Jan": "01",
	"Feb": "02",
	"Mar": "03",
	"Apr": "04",
	"May": "05",
	"Jun": "06",
	"Jul": "07",
	"Aug": "08",
	"Sep": "09",
	"Oct": "10",
	"Nov": "11",
	"Dec": "12",
}

// ParseDate turns the loosely written dates of the legacy tables ("12th Mar 1771",
// "1770", "Oct 1782") into YYYY-MM-DD, using 0000 and 00 for missing parts.
// Empty input gives nil.
func ParseDate(value string) *string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	if m := isoDate.FindStringSubmatch(value); m != nil {
		out := m[1] + "-" + m[2] + "-" + m[3]
		return &out
	}

	year, month, day := "0000", "00", "00"
	if m := yearPart.FindString(value); m != "" {
		year = m
	}
	for _, word := range monthPart.FindAllString(value, -1) {
		if code, ok := months[word[:3]]; ok {
			month = code
			break
		}
	}
	if m := dayPart.FindStringSubmatch(value); m != nil {
		day = day[:len(day)-len(m[1])] + m[1]
	}

	out := year + "-" + month + "-" + day
	return &out
}
