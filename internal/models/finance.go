// Package models holds the finance value types shared by the repositories
// and the investigation engine.
package models

// Transaction is one bank statement line after import and categorization.
type Transaction struct {
	ID          int64   `db:"id"`
	Date        string  `db:"date"` // YYYY-MM-DD
	Description string  `db:"description"`
	Amount      float64 `db:"amount"`
	Category    string  `db:"category"`
	Month       string  `db:"month"` // YYYY-MM, denormalized for month queries
}

// MonthlySummary aggregates one month of spending.
type MonthlySummary struct {
	MonthYear        string  `db:"month_year"` // YYYY-MM
	Year             int     `db:"year"`
	Month            int     `db:"month"`
	TotalIncome      float64 `db:"total_income"`
	TotalSpending    float64 `db:"total_spending"`
	TotalMinusInvest float64 `db:"total_minus_invest"`
	CategoryTotals   map[string]float64
}

// CategoryStat describes one category's behavior across the analyzed months.
type CategoryStat struct {
	Category string
	Total    float64
	Mean     float64
	StdDev   float64
	// Volatility is the coefficient of variation (StdDev / Mean), 0 when
	// the mean is 0.
	Volatility float64
	Months     int
}

// FinancialOverview is the cross-month statistics bundle: per-category
// stats sorted by total descending, plus convenience rankings.
type FinancialOverview struct {
	CategoryStats  []CategoryStat
	TopCategories  []string
	TotalSpending  float64
	MonthsAnalyzed int
}

// SpendingPattern is a recurring behavior detected in the transaction data.
type SpendingPattern struct {
	ID          int64   `db:"id"`
	Type        string  `db:"type"`
	Category    string  `db:"category"`
	Description string  `db:"description"`
	Confidence  float64 `db:"confidence"`
}

// BudgetItem compares one category's spend against its configured budget
// for a month.
type BudgetItem struct {
	Category string
	Budget   float64
	Actual   float64
	Status   string // "under", "near", "over"
}

// BudgetAnalysis reports budget adherence for one month.
type BudgetAnalysis struct {
	MonthYear string
	Items     []BudgetItem
	// Adherence is the share of budgeted categories not over budget, 0..1.
	Adherence float64
}
