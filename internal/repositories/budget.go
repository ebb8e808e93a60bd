package repositories

import (
	"context"
	"log/slog"

	"github.com/myrjola/finsight/internal/errors"
	"github.com/myrjola/finsight/internal/models"
	"github.com/myrjola/finsight/internal/sqlite"
)

// A category is "near" its budget at 90% spend and "over" past 100%.
const nearBudgetShare = 0.9

type BudgetRepository struct {
	dbs    *sqlite.Database
	logger *slog.Logger
}

func NewBudgetRepository(dbs *sqlite.Database, logger *slog.Logger) *BudgetRepository {
	return &BudgetRepository{
		dbs:    dbs,
		logger: logger.With("source", "BudgetRepository"),
	}
}

// BudgetAnalysis compares one month's spending against the configured
// budgets. Budgeted categories without spending that month count as fully
// under budget.
func (r *BudgetRepository) BudgetAnalysis(ctx context.Context, monthYear string) (models.BudgetAnalysis, error) {
	analysis := models.BudgetAnalysis{MonthYear: monthYear}

	type budgetRow struct {
		Category string  `db:"category"`
		Budget   float64 `db:"budget"`
		Actual   float64 `db:"actual"`
	}
	var rows []budgetRow
	stmt := `SELECT b.category AS category, b.amount AS budget, COALESCE(t.total, 0) AS actual
FROM budgets AS b
         LEFT JOIN monthly_category_totals AS t ON t.category = b.category AND t.month_year = ?
ORDER BY b.category`
	if err := r.dbs.ReadOnly.SelectContext(ctx, &rows, stmt, monthYear); err != nil {
		return analysis, errors.Wrap(err, "query budgets", slog.String("month_year", monthYear))
	}

	withinBudget := 0
	for _, row := range rows {
		item := models.BudgetItem{Category: row.Category, Budget: row.Budget, Actual: row.Actual}
		switch {
		case row.Actual > row.Budget:
			item.Status = "over"
		case row.Actual >= nearBudgetShare*row.Budget:
			item.Status = "near"
			withinBudget++
		default:
			item.Status = "under"
			withinBudget++
		}
		analysis.Items = append(analysis.Items, item)
	}
	if len(analysis.Items) > 0 {
		analysis.Adherence = float64(withinBudget) / float64(len(analysis.Items))
	} else {
		analysis.Adherence = 1
	}
	return analysis, nil
}
