package investigation

import "strings"

// GlobalFilters are the ambient dashboard-wide filters (date range and
// category inclusion/exclusion) that a new investigation inherits.
type GlobalFilters struct {
	DateRange          *DateRange
	IncludedCategories []string
	ExcludedCategories []string
}

// Synthetic filter IDs used for projected global filters.
const (
	globalDateRangeFilterID       = "global-date-range"
	globalIncludeCategoryFilterID = "global-include-categories"
	globalExcludeCategoryFilterID = "global-exclude-categories"
)

// projectGlobalFilters merges ambient global filters into a new scope's
// filter set as synthetic predicate entries. The projection is one-shot and
// one-directional: it runs only when the scope carries no explicit filters,
// and starting an investigation never mutates the global filters.
func projectGlobalFilters(g GlobalFilters, scope Scope) Scope {
	if len(scope.Filters) > 0 {
		return scope
	}
	out := scope
	add := func(f Filter) {
		if out.Filters == nil {
			out.Filters = make(map[string]Filter)
		}
		out.Filters[f.ID] = f
	}
	if g.DateRange != nil && (g.DateRange.From != "" || g.DateRange.To != "") {
		add(Filter{
			ID:    globalDateRangeFilterID,
			Field: "date",
			Op:    "between",
			Value: g.DateRange.From + ".." + g.DateRange.To,
		})
	}
	if len(g.IncludedCategories) > 0 {
		add(Filter{
			ID:    globalIncludeCategoryFilterID,
			Field: "category",
			Op:    "in",
			Value: strings.Join(g.IncludedCategories, ","),
		})
	}
	if len(g.ExcludedCategories) > 0 {
		add(Filter{
			ID:    globalExcludeCategoryFilterID,
			Field: "category",
			Op:    "not-in",
			Value: strings.Join(g.ExcludedCategories, ","),
		})
	}
	return out
}
