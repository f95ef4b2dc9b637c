package migrate

import (
	"strconv"
	"strings"

	"mpcereform/internal/store"
)

var authorTypes = []store.LookupRow{
	{ID: 1, Name: "Primary"},
	{ID: 2, Name: "Secondary"},
	{ID: 3, Name: "Translator"},
	{ID: 4, Name: "Editor"},
}

var auctionRoles = []store.LookupRow{
	{ID: 1, Name: "syndic"},
	{ID: 2, Name: "adjoint"},
	{ID: 3, Name: "commissaire"},
	{ID: 4, Name: "huissier"},
}

// authorProfessions assigns a profession to authors by author type id.
var authorProfessions = map[int64]string{
	1: "pf014",
	2: "pf014",
	3: "pf310",
	4: "pf227",
}

// saleUnits maps the legacy copies type of a stock sale to its unit id.
var saleUnits = map[string]int64{
	"crate":     2,
	"copies":    3,
	"basket":    4,
	"packet":    5,
	"plates":    6,
	"privilege": 8,
	"vols":      9,
}

// lookupID finds a seeded row by case-insensitive name or by its numeric id.
func lookupID(rows []store.LookupRow, value string) (int64, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, false
	}
	if n, err := strconv.ParseInt(value, 10, 64); err == nil {
		for _, row := range rows {
			if row.ID == n {
				return n, true
			}
		}
		return 0, false
	}
	for _, row := range rows {
		if strings.EqualFold(row.Name, value) {
			return row.ID, true
		}
	}
	return 0, false
}

func unitsOf(copiesType string) *int64 {
	id, ok := saleUnits[strings.TrimSpace(copiesType)]
	if !ok {
		return nil
	}
	return &id
}
