package persistence

import (
	"strings"

	"gorm.io/gorm/clause"
)

// sortColumns whitelists the columns a list query may be ordered by
type sortColumns struct {
	allowed  map[string]struct{}
	fallback string
}

func newSortColumns(fallback string, columns ...string) sortColumns {
	allowed := make(map[string]struct{}, len(columns)+1)
	allowed[fallback] = struct{}{}
	for _, c := range columns {
		allowed[c] = struct{}{}
	}
	return sortColumns{allowed: allowed, fallback: fallback}
}

// orderBy turns client input into an ORDER BY column. Unknown columns fall
// back to the default and anything but "asc" sorts descending.
func (s sortColumns) orderBy(field, dir string) clause.OrderByColumn {
	column := strings.TrimSpace(field)
	if _, ok := s.allowed[column]; !ok {
		column = s.fallback
	}
	return clause.OrderByColumn{
		Column: clause.Column{Name: column},
		Desc:   !strings.EqualFold(strings.TrimSpace(dir), "asc"),
	}
}

var saleReturnSort = newSortColumns("created_at",
	"id", "updated_at", "return_number", "grand_total", "status", "approved_at",
)
