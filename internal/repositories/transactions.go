// Package repositories implements the SQLite-backed data sources the
// investigation engine aggregates over.
package repositories

import (
	"context"
	"log/slog"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/myrjola/finsight/internal/errors"
	"github.com/myrjola/finsight/internal/investigation"
	"github.com/myrjola/finsight/internal/models"
	"github.com/myrjola/finsight/internal/sqlite"
)

type TransactionRepository struct {
	dbs    *sqlite.Database
	logger *slog.Logger
}

func NewTransactionRepository(dbs *sqlite.Database, logger *slog.Logger) *TransactionRepository {
	return &TransactionRepository{
		dbs:    dbs,
		logger: logger.With("source", "TransactionRepository"),
	}
}

// Transactions lists transactions matching the query, newest first. The
// total counts all matches regardless of the limit.
func (r *TransactionRepository) Transactions(
	ctx context.Context,
	q investigation.TransactionQuery,
) (investigation.TransactionPage, error) {
	var page investigation.TransactionPage

	where := []string{"1 = 1"}
	var args []any
	if q.Category != "" {
		where = append(where, "category = ?")
		args = append(args, q.Category)
	}
	if q.Month != "" {
		where = append(where, "month = ?")
		args = append(args, q.Month)
	}
	if q.From != "" {
		where = append(where, "date >= ?")
		args = append(args, q.From)
	}
	if q.To != "" {
		where = append(where, "date <= ?")
		args = append(args, q.To)
	}
	if len(q.IDs) > 0 {
		where = append(where, "id IN (?)")
		args = append(args, q.IDs)
	}
	condition := strings.Join(where, " AND ")

	countStmt, countArgs, err := sqlx.In("SELECT COUNT(*) FROM transactions WHERE "+condition, args...)
	if err != nil {
		return page, errors.Wrap(err, "expand count query")
	}
	if err = r.dbs.ReadOnly.GetContext(ctx, &page.Total, countStmt, countArgs...); err != nil {
		return page, errors.Wrap(err, "count transactions")
	}

	stmt := `SELECT id, date, description, amount, category, month
FROM transactions
WHERE ` + condition + `
ORDER BY date DESC, id DESC`
	if q.Limit > 0 {
		stmt += " LIMIT ?"
		args = append(args, q.Limit)
	}
	stmt, args, err = sqlx.In(stmt, args...)
	if err != nil {
		return page, errors.Wrap(err, "expand list query")
	}
	var items []models.Transaction
	if err = r.dbs.ReadOnly.SelectContext(ctx, &items, stmt, args...); err != nil {
		return page, errors.Wrap(err, "query transactions")
	}
	page.Items = items
	return page, nil
}
