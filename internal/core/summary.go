package core

import (
	"sort"

	"github.com/shopspring/decimal"
)

// CategoryAmount is an amount aggregated by category name.
type CategoryAmount struct {
	Name   string
	Amount decimal.Decimal
}

// MonthOverview is a compact summary for a specific year+month. Overdue
// expenses from earlier months are counted in, matching what the dashboard
// considers "relevant" for the month being viewed.
type MonthOverview struct {
	Year     int
	Month    int // 1-12
	Income   decimal.Decimal
	Expenses decimal.Decimal
	Unpaid   decimal.Decimal
	// ByCategory holds expense totals per category, largest first.
	ByCategory []CategoryAmount
	// NextDue is the earliest unpaid expense by date, nil when everything
	// for the month is settled.
	NextDue *Transaction
}

// BuildMonthOverview computes the month's aggregates as a pure function over
// the transaction list. It never mutates its input.
func BuildMonthOverview(transactions []Transaction, year, month int) MonthOverview {
	ov := MonthOverview{
		Year:     year,
		Month:    month,
		Income:   decimal.Zero,
		Expenses: decimal.Zero,
		Unpaid:   decimal.Zero,
	}

	ref := NewDate(year, month, 1)
	byCategory := make(map[string]decimal.Decimal)
	var nextDue *Transaction

	for i := range transactions {
		tx := transactions[i]
		if !tx.Date.SameMonth(ref) && tx.Status != StatusOverdue {
			continue
		}

		switch tx.Type {
		case Income:
			ov.Income = ov.Income.Add(tx.Amount)
		case Expense:
			ov.Expenses = ov.Expenses.Add(tx.Amount)
			byCategory[tx.Category] = byCategory[tx.Category].Add(tx.Amount)
			if tx.Status != StatusPaid {
				ov.Unpaid = ov.Unpaid.Add(tx.Amount)
				if nextDue == nil || tx.Date.Before(nextDue.Date.Time) {
					cp := tx
					nextDue = &cp
				}
			}
		}
	}

	for name, amount := range byCategory {
		ov.ByCategory = append(ov.ByCategory, CategoryAmount{Name: name, Amount: amount})
	}
	sort.Slice(ov.ByCategory, func(i, j int) bool {
		if !ov.ByCategory[i].Amount.Equal(ov.ByCategory[j].Amount) {
			return ov.ByCategory[i].Amount.GreaterThan(ov.ByCategory[j].Amount)
		}
		return ov.ByCategory[i].Name < ov.ByCategory[j].Name
	})

	ov.NextDue = nextDue
	return ov
}

// DailySavingsTarget returns how much must be set aside per remaining day to
// cover the unpaid total before the month ends.
func (ov MonthOverview) DailySavingsTarget(daysRemaining int) decimal.Decimal {
	if daysRemaining < 1 {
		daysRemaining = 1
	}
	return ov.Unpaid.Div(decimal.NewFromInt(int64(daysRemaining))).Round(2)
}
