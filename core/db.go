package core

import "strings"

const orderingSep = ","

type DBOrdering struct {
	Field     string
	Ascending bool
}

func (ord DBOrdering) String() string {
	direction := "DESC"
	if ord.Ascending {
		direction = "ASC"
	}
	return ord.Field + " " + direction
}

// ParseOrdering parses "field,-other" into orderings, "-" meaning descending.
// Fields not listed in `allowed` are dropped, they would otherwise end up in raw SQL.
func ParseOrdering(raw string, allowed ...string) []DBOrdering {
	var orderings []DBOrdering
	for _, field := range strings.Split(raw, orderingSep) {
		field = strings.TrimSpace(field)
		descending := strings.HasPrefix(field, "-")
		if descending {
			field = field[1:] // drop "-"
		}
		if field == "" || !contains(allowed, field) {
			continue
		}
		orderings = append(orderings, DBOrdering{Field: field, Ascending: !descending})
	}
	return orderings
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
