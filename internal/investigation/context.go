// Package investigation implements the drill-down session engine for the
// analytics dashboard: the investigation context model, the session store
// with its bounded history, breadcrumb trails, shareable locations, and the
// aggregation of collaborator data into a per-context result.
package investigation

import (
	"fmt"
	"time"

	"github.com/myrjola/finsight/internal/errors"
	"github.com/myrjola/finsight/internal/random"
)

// Kind classifies what an investigation focuses on.
type Kind string

const (
	KindMonthly     Kind = "monthly"
	KindCategory    Kind = "category"
	KindAnomaly     Kind = "anomaly"
	KindPattern     Kind = "pattern"
	KindTransaction Kind = "transaction"
	KindComparison  Kind = "comparison"
	KindTrend       Kind = "trend"
)

// Valid reports whether the kind belongs to the closed set.
func (k Kind) Valid() bool {
	switch k {
	case KindMonthly, KindCategory, KindAnomaly, KindPattern, KindTransaction, KindComparison, KindTrend:
		return true
	default:
		return false
	}
}

// TriggerSource records what started an investigation.
type TriggerSource string

const (
	SourceMetricClick   TriggerSource = "metric-click"
	SourceChartClick    TriggerSource = "chart-click"
	SourceInsightAction TriggerSource = "insight-action"
	SourceQuickAction   TriggerSource = "quick-action"
	SourceDeepLink      TriggerSource = "deep-link"
	SourceDrillDown     TriggerSource = "drill-down"
	SourceManual        TriggerSource = "manual"
)

var (
	// ErrInvalidConfig is returned when a start configuration names an unrecognized kind.
	ErrInvalidConfig = errors.NewSentinel("invalid investigation config")
	// ErrNoActiveInvestigation is returned when an operation requiring an
	// active investigation is called while none is active.
	ErrNoActiveInvestigation = errors.NewSentinel("no active investigation")
)

// DateRange bounds a scope by ISO dates (YYYY-MM-DD), inclusive.
type DateRange struct {
	From string
	To   string
}

// Filter is an ad hoc predicate attached to a scope, keyed by ID.
// Adding a filter with an existing ID replaces it.
type Filter struct {
	ID    string
	Field string
	Op    string
	Value string
}

// Scope holds the semantic coordinates of an investigation. All fields are
// optional; which fields are present selects the collaborators the result
// aggregator queries. An empty scope is a legal, unfiltered investigation.
type Scope struct {
	Category          string
	Month             string // YYYY-MM
	Year              int
	DateRange         *DateRange
	TransactionIDs    []string
	AnomalyType       string
	PatternType       string
	ComparisonPeriods []string
	Filters           map[string]Filter
}

// Clone returns a deep copy of the scope.
func (s Scope) Clone() Scope {
	out := s
	if s.DateRange != nil {
		dr := *s.DateRange
		out.DateRange = &dr
	}
	if s.TransactionIDs != nil {
		out.TransactionIDs = append([]string(nil), s.TransactionIDs...)
	}
	if s.ComparisonPeriods != nil {
		out.ComparisonPeriods = append([]string(nil), s.ComparisonPeriods...)
	}
	if s.Filters != nil {
		out.Filters = make(map[string]Filter, len(s.Filters))
		for id, f := range s.Filters {
			out.Filters[id] = f
		}
	}
	return out
}

// BreadcrumbItem is one entry in a context's navigation trail.
type BreadcrumbItem struct {
	ID        string
	Label     string
	Kind      Kind
	Scope     Scope
	Active    bool
	Clickable bool
}

// Metadata links a context into the investigation tree.
type Metadata struct {
	Source   TriggerSource
	Depth    int    // 0 for a root investigation
	ParentID string // empty for a root investigation
	ChildIDs []string
}

// Context identifies one analytic focus. Contexts are immutable by
// convention: the store hands out copies and applies changes through its
// own operations only.
type Context struct {
	ID          string
	Kind        Kind
	Scope       Scope
	Title       string
	Description string
	StartedAt   time.Time
	LastUpdated time.Time
	Breadcrumbs []BreadcrumbItem
	Meta        Metadata
	Tags        []string
}

// Clone returns a deep copy of the context.
func (c Context) Clone() Context {
	out := c
	out.Scope = c.Scope.Clone()
	if c.Breadcrumbs != nil {
		out.Breadcrumbs = make([]BreadcrumbItem, len(c.Breadcrumbs))
		for i, b := range c.Breadcrumbs {
			b.Scope = b.Scope.Clone()
			out.Breadcrumbs[i] = b
		}
	}
	if c.Meta.ChildIDs != nil {
		out.Meta.ChildIDs = append([]string(nil), c.Meta.ChildIDs...)
	}
	if c.Tags != nil {
		out.Tags = append([]string(nil), c.Tags...)
	}
	return out
}

// Config is a partial description of an investigation to start. Zero fields
// are filled with defaults: kind defaults to monthly, scope to empty, and
// the ID is generated unless supplied.
type Config struct {
	ID          string
	Kind        Kind
	Scope       Scope
	Title       string
	Description string
	Source      TriggerSource
	Tags        []string
}

// DrillDownOption describes a narrower child investigation offered from the
// current one.
type DrillDownOption struct {
	ID          string
	Label       string
	Description string
	Kind        Kind
	Scope       Scope
}

// Bookmark is a frozen snapshot of an investigation. It owns a deep copy of
// the context so later history mutations cannot corrupt it.
type Bookmark struct {
	ID            string
	Investigation Context
	CreatedAt     time.Time
	Notes         string
	CustomTitle   string
	Tags          []string
}

const idLetters = 8

// newID generates an opaque investigation token, e.g. "inv-1718813201123-kYxBwQzt".
func newID(now time.Time) (string, error) {
	letters, err := random.Letters(idLetters)
	if err != nil {
		return "", errors.Wrap(err, "generate id letters")
	}
	return fmt.Sprintf("inv-%d-%s", now.UnixMilli(), letters), nil
}

// newBookmarkID generates an opaque bookmark token.
func newBookmarkID(now time.Time) (string, error) {
	letters, err := random.Letters(idLetters)
	if err != nil {
		return "", errors.Wrap(err, "generate id letters")
	}
	return fmt.Sprintf("bmk-%d-%s", now.UnixMilli(), letters), nil
}

// defaultTitle derives a display title from kind and scope when the caller
// did not supply one.
func defaultTitle(kind Kind, scope Scope) string {
	switch kind {
	case KindMonthly:
		if scope.Month != "" {
			return fmt.Sprintf("Monthly spending %s", scope.Month)
		}
		return "Monthly spending"
	case KindCategory:
		if scope.Category != "" {
			return fmt.Sprintf("Category %s", scope.Category)
		}
		return "Category analysis"
	case KindAnomaly:
		if scope.AnomalyType != "" {
			return fmt.Sprintf("Anomaly: %s", scope.AnomalyType)
		}
		return "Anomaly analysis"
	case KindPattern:
		if scope.PatternType != "" {
			return fmt.Sprintf("Pattern: %s", scope.PatternType)
		}
		return "Spending patterns"
	case KindTransaction:
		return "Transaction details"
	case KindComparison:
		return "Period comparison"
	case KindTrend:
		return "Spending trend"
	default:
		return "Investigation"
	}
}
