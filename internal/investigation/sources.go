package investigation

import (
	"context"
	"sync"

	"github.com/myrjola/finsight/internal/models"
)

// Collaborator contracts the result aggregator fans out to. Each is an
// external data source; the aggregator composes them without assuming any
// caching policy beyond "Refetch forces a fresh fetch" on the wrappers
// below.

// TransactionQuery filters a transaction listing.
type TransactionQuery struct {
	Category string
	Month    string
	From     string
	To       string
	IDs      []string
	Limit    int
}

// TransactionPage is a filtered transaction listing with its total count.
type TransactionPage struct {
	Items []models.Transaction
	Total int
}

type TransactionSource interface {
	Transactions(ctx context.Context, q TransactionQuery) (TransactionPage, error)
}

type MonthlySummarySource interface {
	MonthlySummary(ctx context.Context, monthYear string) (models.MonthlySummary, error)
}

type OverviewSource interface {
	Overview(ctx context.Context) (models.FinancialOverview, error)
}

type PatternSource interface {
	Patterns(ctx context.Context) ([]models.SpendingPattern, error)
}

type BudgetSource interface {
	BudgetAnalysis(ctx context.Context, monthYear string) (models.BudgetAnalysis, error)
}

// Sources bundles the collaborators for one aggregator.
type Sources struct {
	Transactions TransactionSource
	Summaries    MonthlySummarySource
	Overview     OverviewSource
	Patterns     PatternSource
	Budget       BudgetSource
}

// CachedSource memoizes a single fetch and exposes the collaborator state
// triple (data, loading, error) alongside a Refetch that forces a fresh
// fetch.
type CachedSource[T any] struct {
	mu      sync.Mutex
	fetch   func(context.Context) (T, error)
	fetched bool
	loading bool
	data    T
	err     error
}

// NewCachedSource wraps a fetch function into a cached collaborator.
func NewCachedSource[T any](fetch func(context.Context) (T, error)) *CachedSource[T] {
	return &CachedSource[T]{fetch: fetch}
}

// Get returns the cached value, fetching it on first use.
func (c *CachedSource[T]) Get(ctx context.Context) (T, error) {
	c.mu.Lock()
	if c.fetched {
		data, err := c.data, c.err
		c.mu.Unlock()
		return data, err
	}
	c.mu.Unlock()
	return c.Refetch(ctx)
}

// Refetch forces a fresh fetch and replaces the cached value.
func (c *CachedSource[T]) Refetch(ctx context.Context) (T, error) {
	c.mu.Lock()
	c.loading = true
	c.mu.Unlock()

	data, err := c.fetch(ctx)

	c.mu.Lock()
	c.loading = false
	c.fetched = true
	c.data, c.err = data, err
	c.mu.Unlock()
	return data, err
}

// Loading reports whether a fetch is in flight.
func (c *CachedSource[T]) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

// Err returns the error of the latest fetch, if any.
func (c *CachedSource[T]) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}
