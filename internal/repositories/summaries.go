package repositories

import (
	"context"
	"log/slog"

	"github.com/myrjola/finsight/internal/errors"
	"github.com/myrjola/finsight/internal/models"
	"github.com/myrjola/finsight/internal/sqlite"
)

type SummaryRepository struct {
	dbs    *sqlite.Database
	logger *slog.Logger
}

func NewSummaryRepository(dbs *sqlite.Database, logger *slog.Logger) *SummaryRepository {
	return &SummaryRepository{
		dbs:    dbs,
		logger: logger.With("source", "SummaryRepository"),
	}
}

// MonthlySummary reads one month's summary with its per-category totals.
func (r *SummaryRepository) MonthlySummary(ctx context.Context, monthYear string) (models.MonthlySummary, error) {
	var summary models.MonthlySummary

	stmt := `SELECT month_year, year, month, total_income, total_spending, total_minus_invest
FROM monthly_summaries
WHERE month_year = ?`
	if err := r.dbs.ReadOnly.GetContext(ctx, &summary, stmt, monthYear); err != nil {
		return summary, errors.Wrap(err, "read monthly summary", slog.String("month_year", monthYear))
	}

	type categoryTotal struct {
		Category string  `db:"category"`
		Total    float64 `db:"total"`
	}
	var totals []categoryTotal
	stmt = `SELECT category, total FROM monthly_category_totals WHERE month_year = ?`
	if err := r.dbs.ReadOnly.SelectContext(ctx, &totals, stmt, monthYear); err != nil {
		return summary, errors.Wrap(err, "query category totals", slog.String("month_year", monthYear))
	}
	summary.CategoryTotals = make(map[string]float64, len(totals))
	for _, total := range totals {
		summary.CategoryTotals[total.Category] = total.Total
	}
	return summary, nil
}

// List returns all monthly summaries, newest first, without category totals.
func (r *SummaryRepository) List(ctx context.Context) ([]models.MonthlySummary, error) {
	var summaries []models.MonthlySummary
	stmt := `SELECT month_year, year, month, total_income, total_spending, total_minus_invest
FROM monthly_summaries
ORDER BY month_year DESC`
	if err := r.dbs.ReadOnly.SelectContext(ctx, &summaries, stmt); err != nil {
		return nil, errors.Wrap(err, "query monthly summaries")
	}
	return summaries, nil
}
