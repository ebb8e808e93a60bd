package investigation

// dashboardCrumbID is the synthetic first trail entry pointing back to the
// dashboard root.
const dashboardCrumbID = "dashboard"

// HistoryLookup resolves an investigation ID against the session history.
type HistoryLookup func(id string) (Context, bool)

// BuildTrail derives the breadcrumb trail for a context: the dashboard root,
// the immediate parent when it resolves in history, and the context itself
// as the only active entry.
//
// Only one parent hop is materialized per build. Deeper lineage is produced
// incrementally: each drill-down appends a single crumb to the parent's
// existing trail, and landing on the parent re-runs the builder there. Do
// not extend this to walk the full ancestor chain; the displayed trail
// shape depends on the one-hop policy.
func BuildTrail(c Context, lookup HistoryLookup) []BreadcrumbItem {
	trail := []BreadcrumbItem{{
		ID:        dashboardCrumbID,
		Label:     "Dashboard",
		Active:    false,
		Clickable: true,
	}}

	if c.Meta.ParentID != "" && lookup != nil {
		if parent, ok := lookup(c.Meta.ParentID); ok {
			trail = append(trail, BreadcrumbItem{
				ID:        parent.ID,
				Label:     parent.Title,
				Kind:      parent.Kind,
				Scope:     parent.Scope.Clone(),
				Active:    false,
				Clickable: true,
			})
		}
	}

	trail = append(trail, selfCrumb(c))
	return trail
}

// extendTrail builds a child's trail by appending one crumb to the parent's
// trail. The parent's active leaf becomes a clickable ancestor.
func extendTrail(parent Context, child Context) []BreadcrumbItem {
	trail := make([]BreadcrumbItem, 0, len(parent.Breadcrumbs)+1)
	for _, b := range parent.Breadcrumbs {
		b.Scope = b.Scope.Clone()
		if b.Active {
			b.Active = false
			b.Clickable = true
		}
		trail = append(trail, b)
	}
	return append(trail, selfCrumb(child))
}

func selfCrumb(c Context) BreadcrumbItem {
	return BreadcrumbItem{
		ID:        c.ID,
		Label:     c.Title,
		Kind:      c.Kind,
		Scope:     c.Scope.Clone(),
		Active:    true,
		Clickable: false,
	}
}
