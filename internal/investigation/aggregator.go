package investigation

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/myrjola/finsight/internal/models"
)

// Fixed heuristics for derived insights.
const (
	// DefaultConfidence is reported when no insights were generated.
	DefaultConfidence = 0.7
	// VolatilityThreshold flags a category whose coefficient of variation
	// exceeds it.
	VolatilityThreshold = 0.5
	// MonthlySpendThreshold flags a month whose spending (excluding
	// investments) exceeds it.
	MonthlySpendThreshold = 5000.0
)

// Insight is a derived observation about the investigated data.
type Insight struct {
	ID          string
	Title       string
	Description string
	Severity    string // "info" or "warning"
	Confidence  float64
	Action      *DrillDownOption
}

// AggregatedResult is the combined view-model for one investigation
// context: raw collaborator data plus derived insights, suggestions, and
// drill-down options.
type AggregatedResult struct {
	ContextID  string
	ComputedAt time.Time

	// Loading is true while the fan-out has not resolved yet.
	Loading bool
	// Err is the first collaborator error in stable order; collaborator
	// failures surface here instead of aborting the aggregation.
	Err error

	Transactions *TransactionPage
	Summary      *models.MonthlySummary
	Overview     *models.FinancialOverview
	Patterns     []models.SpendingPattern
	Budget       *models.BudgetAnalysis

	Insights    []Insight
	Suggestions []string
	DrillDowns  []DrillDownOption
	Confidence  float64
}

// Aggregator fans out to the collaborators relevant for a context's kind
// and scope and combines their results.
type Aggregator struct {
	src    Sources
	logger *slog.Logger
	now    func() time.Time
}

// NewAggregator creates an aggregator over the given collaborators.
func NewAggregator(src Sources, logger *slog.Logger) *Aggregator {
	return &Aggregator{
		src:    src,
		logger: logger.With("source", "investigation.Aggregator"),
		now:    time.Now,
	}
}

// Refresh computes the aggregation for the store's current investigation
// and commits it to the store's result cache. The commit is dropped when
// the current investigation changed while the fan-out was running; the
// returned bool reports whether the result was committed.
func (a *Aggregator) Refresh(ctx context.Context, store *Store) (AggregatedResult, bool) {
	current, ok := store.Current()
	if !ok {
		return AggregatedResult{}, false
	}
	res := a.Aggregate(ctx, current)
	if !store.CommitResult(res) {
		return res, false
	}
	return res, true
}

// Aggregate runs the kind-specific fan-out for a context and derives the
// combined result. Collaborator errors are captured into the result in
// stable order (kind-specific collaborators before the generic patterns
// and overview collaborators), never returned.
func (a *Aggregator) Aggregate(ctx context.Context, c Context) AggregatedResult {
	plan := planFanOut(c)
	res := AggregatedResult{
		ContextID: c.ID,
		Loading:   true,
	}

	var (
		txErr, summaryErr, budgetErr, patternsErr, overviewErr error
	)
	run := newFanOut()
	if plan.transactions && a.src.Transactions != nil {
		run.do(func() {
			page, err := a.src.Transactions.Transactions(ctx, plan.query)
			if err == nil {
				res.Transactions = &page
			}
			txErr = err
		})
	}
	if plan.summary && a.src.Summaries != nil {
		run.do(func() {
			summary, err := a.src.Summaries.MonthlySummary(ctx, c.Scope.Month)
			if err == nil {
				res.Summary = &summary
			}
			summaryErr = err
		})
	}
	if plan.budget && a.src.Budget != nil {
		run.do(func() {
			budget, err := a.src.Budget.BudgetAnalysis(ctx, c.Scope.Month)
			if err == nil {
				res.Budget = &budget
			}
			budgetErr = err
		})
	}
	if plan.patterns && a.src.Patterns != nil {
		run.do(func() {
			patterns, err := a.src.Patterns.Patterns(ctx)
			if err == nil {
				res.Patterns = patterns
			}
			patternsErr = err
		})
	}
	if plan.overview && a.src.Overview != nil {
		run.do(func() {
			overview, err := a.src.Overview.Overview(ctx)
			if err == nil {
				res.Overview = &overview
			}
			overviewErr = err
		})
	}
	run.wait()

	for _, err := range []error{txErr, summaryErr, budgetErr, patternsErr, overviewErr} {
		if err != nil {
			res.Err = err
			a.logger.Debug("collaborator error during aggregation",
				slog.String("context_id", c.ID), slog.Any("error", err))
			break
		}
	}

	res.Insights = deriveInsights(c, res)
	res.Suggestions = suggestionsFor(c)
	res.DrillDowns = drillDownOptionsFor(c, res.Overview)
	res.Confidence = combinedConfidence(res.Insights)
	res.Loading = false
	res.ComputedAt = a.now()
	return res
}

// fanOut runs collaborator fetches concurrently. Each callback writes to
// its own result slot, so no locking is needed beyond the final wait.
type fanOut struct {
	wg sync.WaitGroup
}

func newFanOut() *fanOut { return &fanOut{} }

func (f *fanOut) do(fn func()) {
	f.wg.Add(1)
	go func() {
		defer f.wg.Done()
		fn()
	}()
}

func (f *fanOut) wait() { f.wg.Wait() }

// fanOutPlan selects the collaborators for one aggregation. Presence of
// scope fields widens the kind-specific selection.
type fanOutPlan struct {
	transactions bool
	query        TransactionQuery
	summary      bool
	budget       bool
	patterns     bool
	overview     bool
}

func planFanOut(c Context) fanOutPlan {
	var plan fanOutPlan
	query := TransactionQuery{
		Category: c.Scope.Category,
		Month:    c.Scope.Month,
		IDs:      c.Scope.TransactionIDs,
	}
	if c.Scope.DateRange != nil {
		query.From = c.Scope.DateRange.From
		query.To = c.Scope.DateRange.To
	}
	plan.query = query

	switch c.Kind {
	case KindCategory:
		plan.transactions = true
		plan.overview = true
		plan.patterns = true
	case KindMonthly:
		plan.summary = c.Scope.Month != ""
		plan.transactions = true
		plan.budget = c.Scope.Month != ""
		plan.patterns = true
	case KindTransaction:
		plan.transactions = true
	case KindAnomaly:
		plan.transactions = c.Scope.Category != "" || c.Scope.Month != ""
		plan.overview = true
		plan.patterns = true
	case KindPattern, KindComparison, KindTrend:
		plan.overview = true
		plan.patterns = true
	}
	// Scope presence widens the selection regardless of kind.
	if c.Scope.Month != "" {
		plan.summary = plan.summary || c.Kind == KindMonthly || c.Kind == KindComparison
	}
	return plan
}

func deriveInsights(c Context, res AggregatedResult) []Insight {
	var insights []Insight

	if res.Overview != nil && c.Scope.Category != "" {
		for _, stat := range res.Overview.CategoryStats {
			if stat.Category != c.Scope.Category {
				continue
			}
			if stat.Volatility > VolatilityThreshold {
				insights = append(insights, Insight{
					ID:       "high-volatility",
					Title:    fmt.Sprintf("High volatility in %s", stat.Category),
					Severity: "warning",
					Description: fmt.Sprintf("%s spending varies strongly month to month (volatility %.2f).",
						stat.Category, stat.Volatility),
					Confidence: 0.85,
					Action: &DrillDownOption{
						ID:    "volatility-trend",
						Label: fmt.Sprintf("Trend for %s", stat.Category),
						Kind:  KindTrend,
						Scope: Scope{Category: stat.Category},
					},
				})
			}
			break
		}
	}

	if res.Summary != nil && res.Summary.TotalMinusInvest > MonthlySpendThreshold {
		insights = append(insights, Insight{
			ID:       "above-average-spending",
			Title:    fmt.Sprintf("Above average spending in %s", res.Summary.MonthYear),
			Severity: "warning",
			Description: fmt.Sprintf("Spending of %.2f exceeds the usual monthly level of %.0f.",
				res.Summary.TotalMinusInvest, MonthlySpendThreshold),
			Confidence: 0.75,
			Action: &DrillDownOption{
				ID:    "month-by-category",
				Label: "Break the month down by category",
				Kind:  KindCategory,
				Scope: Scope{Month: res.Summary.MonthYear},
			},
		})
	}

	if res.Budget != nil {
		for _, item := range res.Budget.Items {
			if item.Status != "over" {
				continue
			}
			insights = append(insights, Insight{
				ID:       "over-budget-" + item.Category,
				Title:    fmt.Sprintf("%s is over budget", item.Category),
				Severity: "warning",
				Description: fmt.Sprintf("%s spent %.2f against a budget of %.2f.",
					item.Category, item.Actual, item.Budget),
				Confidence: 0.8,
				Action: &DrillDownOption{
					ID:    "over-budget-category",
					Label: fmt.Sprintf("Investigate %s", item.Category),
					Kind:  KindCategory,
					Scope: Scope{Category: item.Category, Month: res.Budget.MonthYear},
				},
			})
		}
	}

	if c.Scope.Category != "" {
		for _, pattern := range res.Patterns {
			if pattern.Category != c.Scope.Category {
				continue
			}
			insights = append(insights, Insight{
				ID:          fmt.Sprintf("pattern-%d", pattern.ID),
				Title:       fmt.Sprintf("Pattern in %s: %s", pattern.Category, pattern.Type),
				Severity:    "info",
				Description: pattern.Description,
				Confidence:  pattern.Confidence,
			})
		}
	}

	return insights
}

// combinedConfidence is the minimum confidence across the generated
// insights, or DefaultConfidence when none were generated.
func combinedConfidence(insights []Insight) float64 {
	if len(insights) == 0 {
		return DefaultConfidence
	}
	minimum := insights[0].Confidence
	for _, insight := range insights[1:] {
		if insight.Confidence < minimum {
			minimum = insight.Confidence
		}
	}
	return minimum
}

// suggestionsFor returns the static per-kind suggestion templates
// parameterized by the current scope.
func suggestionsFor(c Context) []string {
	switch c.Kind {
	case KindMonthly:
		month := c.Scope.Month
		if month == "" {
			month = "this month"
		}
		return []string{
			fmt.Sprintf("Compare %s with the previous month", month),
			fmt.Sprintf("Break %s down by category", month),
			fmt.Sprintf("Check budget adherence for %s", month),
		}
	case KindCategory:
		category := c.Scope.Category
		if category == "" {
			category = "this category"
		}
		return []string{
			fmt.Sprintf("Review the largest %s transactions", category),
			fmt.Sprintf("Compare %s across recent months", category),
			fmt.Sprintf("Look for recurring %s merchants", category),
		}
	case KindAnomaly:
		return []string{
			"Inspect the transactions behind the anomaly",
			"Compare against the same period last year",
		}
	case KindPattern:
		return []string{
			"Check which categories drive the pattern",
			"See whether the pattern holds in recent months",
		}
	case KindTransaction:
		return []string{
			"Look for similar transactions",
			"Check the category assignment",
		}
	case KindComparison:
		return []string{
			"Break the difference down by category",
			"Extend the comparison by another period",
		}
	case KindTrend:
		return []string{
			"Check the months driving the trend",
			"Compare the trend against your budget",
		}
	default:
		return nil
	}
}

// drillDownOptionsFor returns the static per-kind drill-down templates
// parameterized by the current scope, enriched with the top category from
// the overview when available.
func drillDownOptionsFor(c Context, overview *models.FinancialOverview) []DrillDownOption {
	switch c.Kind {
	case KindMonthly:
		options := []DrillDownOption{{
			ID:    "by-category",
			Label: "Break down by category",
			Kind:  KindCategory,
			Scope: Scope{Month: c.Scope.Month},
		}}
		if overview != nil && len(overview.TopCategories) > 0 {
			top := overview.TopCategories[0]
			options[0].Label = fmt.Sprintf("Drill into %s", top)
			options[0].Scope.Category = top
		}
		if previous, ok := previousMonth(c.Scope.Month); ok {
			options = append(options, DrillDownOption{
				ID:    "previous-month",
				Label: fmt.Sprintf("Compare with %s", previous),
				Kind:  KindComparison,
				Scope: Scope{ComparisonPeriods: []string{c.Scope.Month, previous}},
			})
		}
		return options
	case KindCategory:
		return []DrillDownOption{
			{
				ID:    "transactions",
				Label: "Inspect transactions",
				Kind:  KindTransaction,
				Scope: Scope{Category: c.Scope.Category, Month: c.Scope.Month},
			},
			{
				ID:    "trend",
				Label: "Spending trend",
				Kind:  KindTrend,
				Scope: Scope{Category: c.Scope.Category},
			},
		}
	case KindAnomaly:
		return []DrillDownOption{{
			ID:    "transactions",
			Label: "Inspect transactions",
			Kind:  KindTransaction,
			Scope: Scope{Category: c.Scope.Category, Month: c.Scope.Month},
		}}
	case KindPattern:
		return []DrillDownOption{{
			ID:    "pattern-category",
			Label: "Drill into the category",
			Kind:  KindCategory,
			Scope: Scope{Category: c.Scope.Category},
		}}
	case KindTransaction, KindComparison, KindTrend:
		return nil
	default:
		return nil
	}
}

// previousMonth returns the YYYY-MM month before the given one.
func previousMonth(monthYear string) (string, bool) {
	t, err := time.Parse("2006-01", monthYear)
	if err != nil {
		return "", false
	}
	return t.AddDate(0, -1, 0).Format("2006-01"), true
}

// TopCategories derives the descending ranking used by the overview
// collaborator from per-category stats.
func TopCategories(stats []models.CategoryStat, n int) []string {
	sorted := make([]models.CategoryStat, len(stats))
	copy(sorted, stats)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Total > sorted[j].Total })
	out := make([]string, 0, n)
	for _, stat := range sorted {
		if len(out) == n {
			break
		}
		out = append(out, stat.Category)
	}
	return out
}
