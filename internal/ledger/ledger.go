// Package ledger holds the in-memory ledger value and its mutation
// primitives. Every mutation is a total function: invalid calls are rejected
// with a sentinel error from core and the ledger is left untouched.
package ledger

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"quantofalta/internal/core"
)

// DefaultCategories seeds a fresh ledger.
var DefaultCategories = []string{
	"Alimentação", "Transporte", "Lazer", "Moradia", "Saúde", "Educação", "Outros",
}

// Ledger is the aggregate persisted as a single snapshot: transactions,
// categories, goals, recurring templates and the last reconciled month.
type Ledger struct {
	Transactions []core.Transaction       `json:"transactions"`
	Categories   []string                 `json:"categories"`
	Goals        []core.Goal              `json:"goals"`
	Templates    []core.RecurringTemplate `json:"recurringTemplates"`
	LastSync     string                   `json:"lastSyncMonth"`
}

// Default returns an empty ledger with the seed category set and no sync
// marker, so the first reconciliation processes the current month.
func Default() *Ledger {
	return &Ledger{
		Categories: append([]string(nil), DefaultCategories...),
	}
}

// Normalize repairs a ledger loaded from storage: restores the default
// category set when missing and drops records that fail validation. Returns
// the number of records dropped.
func (l *Ledger) Normalize() int {
	if len(l.Categories) == 0 {
		l.Categories = append([]string(nil), DefaultCategories...)
	}

	dropped := 0
	kept := l.Transactions[:0]
	for _, tx := range l.Transactions {
		if tx.ID == "" || tx.Validate() != nil {
			dropped++
			continue
		}
		kept = append(kept, tx)
	}
	l.Transactions = kept

	keptTpl := l.Templates[:0]
	for _, tpl := range l.Templates {
		if tpl.ID == "" || tpl.Validate() != nil {
			dropped++
			continue
		}
		keptTpl = append(keptTpl, tpl)
	}
	l.Templates = keptTpl

	keptGoals := l.Goals[:0]
	for _, g := range l.Goals {
		if g.ID == "" || g.Validate() != nil {
			dropped++
			continue
		}
		keptGoals = append(keptGoals, g)
	}
	l.Goals = keptGoals

	return dropped
}

// HasTransaction reports whether a transaction with the given id exists.
func (l *Ledger) HasTransaction(id string) bool {
	return l.findTransaction(id) >= 0
}

func (l *Ledger) findTransaction(id string) int {
	for i := range l.Transactions {
		if l.Transactions[i].ID == id {
			return i
		}
	}
	return -1
}

// AddTransaction validates and appends a transaction.
func (l *Ledger) AddTransaction(tx core.Transaction) error {
	if tx.ID == "" {
		return fmt.Errorf("%w: missing transaction id", core.ErrInvalidInput)
	}
	if err := tx.Validate(); err != nil {
		return err
	}
	if l.HasTransaction(tx.ID) {
		return fmt.Errorf("transaction %s: %w", tx.ID, core.ErrNameCollision)
	}
	l.Transactions = append(l.Transactions, tx)
	return nil
}

// MarkTransactionPaid moves an open or overdue transaction to paid. Paid is
// terminal: marking an already-paid transaction is a no-op.
func (l *Ledger) MarkTransactionPaid(id string) error {
	i := l.findTransaction(id)
	if i < 0 {
		return fmt.Errorf("transaction %s: %w", id, core.ErrNotFound)
	}
	l.Transactions[i].Status = core.StatusPaid
	return nil
}

// DeleteTransaction removes a transaction by id.
func (l *Ledger) DeleteTransaction(id string) error {
	i := l.findTransaction(id)
	if i < 0 {
		return fmt.Errorf("transaction %s: %w", id, core.ErrNotFound)
	}
	l.Transactions = append(l.Transactions[:i], l.Transactions[i+1:]...)
	return nil
}

// AddTemplate validates and appends a recurring template.
func (l *Ledger) AddTemplate(tpl core.RecurringTemplate) error {
	if tpl.ID == "" {
		return fmt.Errorf("%w: missing template id", core.ErrInvalidInput)
	}
	if err := tpl.Validate(); err != nil {
		return err
	}
	for i := range l.Templates {
		if l.Templates[i].ID == tpl.ID {
			return fmt.Errorf("template %s: %w", tpl.ID, core.ErrNameCollision)
		}
	}
	l.Templates = append(l.Templates, tpl)
	return nil
}

// DeleteTemplate removes a template. Transactions it already generated are
// kept as-is: deletion only stops future generation.
func (l *Ledger) DeleteTemplate(id string) error {
	for i := range l.Templates {
		if l.Templates[i].ID == id {
			l.Templates = append(l.Templates[:i], l.Templates[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("template %s: %w", id, core.ErrNotFound)
}

// AddGoal validates and appends a savings goal.
func (l *Ledger) AddGoal(g core.Goal) error {
	if g.ID == "" {
		return fmt.Errorf("%w: missing goal id", core.ErrInvalidInput)
	}
	if err := g.Validate(); err != nil {
		return err
	}
	for i := range l.Goals {
		if l.Goals[i].ID == g.ID {
			return fmt.Errorf("goal %s: %w", g.ID, core.ErrNameCollision)
		}
	}
	l.Goals = append(l.Goals, g)
	return nil
}

// UpdateGoalAmount sets a goal's saved amount. Deposits come through here as
// well; any non-negative value is accepted.
func (l *Ledger) UpdateGoalAmount(id string, amount decimal.Decimal) error {
	if amount.IsNegative() {
		return core.ErrNegativeAmount
	}
	for i := range l.Goals {
		if l.Goals[i].ID == id {
			l.Goals[i].CurrentAmount = amount
			return nil
		}
	}
	return fmt.Errorf("goal %s: %w", id, core.ErrNotFound)
}

// DeleteGoal removes a goal by id.
func (l *Ledger) DeleteGoal(id string) error {
	for i := range l.Goals {
		if l.Goals[i].ID == id {
			l.Goals = append(l.Goals[:i], l.Goals[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("goal %s: %w", id, core.ErrNotFound)
}

// HasCategory reports whether name is in the category set.
func (l *Ledger) HasCategory(name string) bool {
	for _, c := range l.Categories {
		if c == name {
			return true
		}
	}
	return false
}

// AddCategory appends a category, rejecting empty names and duplicates.
func (l *Ledger) AddCategory(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return core.ErrEmptyName
	}
	if l.HasCategory(name) {
		return fmt.Errorf("category %q: %w", name, core.ErrNameCollision)
	}
	l.Categories = append(l.Categories, name)
	return nil
}

// RenameCategory replaces oldName with newName in the category set and in
// every transaction and template referencing it. The whole update is
// all-or-nothing: validation happens before any field is touched.
//
// An empty or whitespace-only newName, or newName == oldName, is a no-op.
func (l *Ledger) RenameCategory(oldName, newName string) error {
	newName = strings.TrimSpace(newName)
	if newName == "" || newName == oldName {
		return nil
	}
	if !l.HasCategory(oldName) {
		return fmt.Errorf("category %q: %w", oldName, core.ErrNotFound)
	}
	if l.HasCategory(newName) {
		return fmt.Errorf("category %q: %w", newName, core.ErrNameCollision)
	}

	for i, c := range l.Categories {
		if c == oldName {
			l.Categories[i] = newName
		}
	}
	for i := range l.Transactions {
		if l.Transactions[i].Category == oldName {
			l.Transactions[i].Category = newName
		}
	}
	for i := range l.Templates {
		if l.Templates[i].Category == oldName {
			l.Templates[i].Category = newName
		}
	}
	return nil
}

// DeleteCategory removes name from the category set only. Transactions and
// templates referencing it keep the now-dangling category string.
func (l *Ledger) DeleteCategory(name string) error {
	for i, c := range l.Categories {
		if c == name {
			l.Categories = append(l.Categories[:i], l.Categories[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("category %q: %w", name, core.ErrNotFound)
}
