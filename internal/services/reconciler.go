// Package services holds the business logic operating on the ledger: the
// monthly reconciler, the duplicate guard and the orchestrating service.
package services

import (
	"time"

	"quantofalta/internal/clock"
	"quantofalta/internal/core"
	"quantofalta/internal/ledger"
)

// ReconcileResult summarizes what one reconciliation pass did.
type ReconcileResult struct {
	Month     string // canonical YYYY-MM the pass ran for
	Promoted  int    // open expenses moved to overdue
	Generated int    // transactions materialized from templates
	Changed   bool   // false when the month was already reconciled
}

// InstanceID is the deterministic identity of a template's instance for one
// month. Regeneration is idempotent because the id repeats for the same
// template and month.
func InstanceID(templateID, monthKey string) string {
	return "rec-" + templateID + "-" + monthKey
}

// Reconcile brings the ledger up to date with the passage of calendar time:
// it promotes stale open expenses to overdue, materializes this month's
// instance of every recurring template, and advances the sync marker.
//
// The marker comparison is the single source of truth for "this month has
// been processed": when it matches now's month the ledger is returned
// untouched, which makes repeated invocation within a month a safe no-op.
func Reconcile(l *ledger.Ledger, now time.Time) ReconcileResult {
	monthKey := clock.MonthKey(now)
	result := ReconcileResult{Month: monthKey}

	if l.LastSync == monthKey {
		return result
	}

	result.Promoted = promoteOverdue(l, now)
	result.Generated = materializeTemplates(l, now, monthKey)
	l.LastSync = monthKey
	result.Changed = true
	return result
}

// promoteOverdue flags open expenses dated strictly before the first day of
// now's month. Overdue is a month-granularity concept: expenses due earlier
// in the current month stay open until next month's pass.
func promoteOverdue(l *ledger.Ledger, now time.Time) int {
	firstOfMonth := core.DateOf(clock.FirstOfMonth(now))
	promoted := 0
	for i := range l.Transactions {
		tx := &l.Transactions[i]
		if tx.Type != core.Expense || tx.Status != core.StatusOpen {
			continue
		}
		if tx.Date.Before(firstOfMonth.Time) {
			tx.Status = core.StatusOverdue
			promoted++
		}
	}
	return promoted
}

// materializeTemplates appends this month's instance of each template unless
// a transaction with the instance id already exists. Due days beyond the
// month's length are clamped to its last day.
func materializeTemplates(l *ledger.Ledger, now time.Time, monthKey string) int {
	year, month := now.Year(), int(now.Month())
	generated := 0
	for _, tpl := range l.Templates {
		id := InstanceID(tpl.ID, monthKey)
		if l.HasTransaction(id) {
			continue
		}
		day := clock.ClampDay(year, month, tpl.DueDay)
		l.Transactions = append(l.Transactions, core.Transaction{
			ID:         id,
			Name:       tpl.Name,
			Amount:     tpl.Amount,
			Type:       core.Expense,
			Date:       core.NewDate(year, month, day),
			Category:   tpl.Category,
			Status:     core.StatusOpen,
			TemplateID: tpl.ID,
		})
		generated++
	}
	return generated
}
