package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"quantofalta/internal/amqp"
	"quantofalta/internal/clock"
	"quantofalta/internal/core"
	"quantofalta/internal/ledger"
)

// Repository loads and persists the single ledger snapshot.
type Repository interface {
	LoadSnapshot(ctx context.Context) (*ledger.Ledger, error)
	SaveSnapshot(ctx context.Context, l *ledger.Ledger) error
}

// MonthClosedPublisher announces reconciled months. *amqp.Client satisfies it.
type MonthClosedPublisher interface {
	PublishMonthClosed(ctx context.Context, msg *amqp.MonthClosedMessage) error
}

// LedgerService owns the in-memory ledger and serializes every mutation
// behind a single lock. Each successful mutation is persisted before the call
// returns, so the stored snapshot never lags the process by more than one
// in-flight operation.
type LedgerService struct {
	mu     sync.Mutex
	ledger *ledger.Ledger
	repo   Repository
	events MonthClosedPublisher // nil when AMQP is not configured
	clock  clock.Clock
}

func NewLedgerService(repo Repository, events MonthClosedPublisher, clk clock.Clock) *LedgerService {
	if clk == nil {
		clk = clock.System{}
	}
	return &LedgerService{
		repo:   repo,
		events: events,
		clock:  clk,
	}
}

// Open loads the persisted snapshot and runs an initial reconciliation pass.
func (s *LedgerService) Open(ctx context.Context) error {
	l, err := s.repo.LoadSnapshot(ctx)
	if err != nil {
		return fmt.Errorf("load snapshot: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.ledger = l

	_, err = s.reconcileLocked(ctx)
	return err
}

// Reconcile runs a reconciliation pass for the current month. Safe to call
// repeatedly: within an already-reconciled month it is a no-op.
func (s *LedgerService) Reconcile(ctx context.Context) (ReconcileResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reconcileLocked(ctx)
}

// Refresh replaces the in-memory ledger with the persisted snapshot.
// A process sharing the database with another writer calls this before
// reading, so edits made by the other process are visible.
func (s *LedgerService) Refresh(ctx context.Context) error {
	l, err := s.repo.LoadSnapshot(ctx)
	if err != nil {
		return fmt.Errorf("refresh snapshot: %w", err)
	}
	s.mu.Lock()
	s.ledger = l
	s.mu.Unlock()
	return nil
}

// RefreshAndReconcile reloads the persisted snapshot and reconciles it under
// one lock acquisition. A periodic pass over a shared database must not save
// the copy it loaded at startup, or it would overwrite every edit another
// process persisted since then.
func (s *LedgerService) RefreshAndReconcile(ctx context.Context) (ReconcileResult, error) {
	l, err := s.repo.LoadSnapshot(ctx)
	if err != nil {
		return ReconcileResult{}, fmt.Errorf("refresh snapshot: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.ledger = l
	return s.reconcileLocked(ctx)
}

func (s *LedgerService) reconcileLocked(ctx context.Context) (ReconcileResult, error) {
	result := Reconcile(s.ledger, s.clock.Now())
	if !result.Changed {
		return result, nil
	}

	if err := s.repo.SaveSnapshot(ctx, s.ledger); err != nil {
		return result, fmt.Errorf("persist reconciled ledger: %w", err)
	}

	slog.InfoContext(ctx, "Ledger reconciled",
		"month", result.Month,
		"promoted", result.Promoted,
		"generated", result.Generated)

	if s.events != nil {
		msg := amqp.NewMonthClosedMessage(result.Month, result.Promoted, result.Generated)
		if err := s.events.PublishMonthClosed(ctx, msg); err != nil {
			// The ledger is already persisted; a lost event only delays exports.
			slog.ErrorContext(ctx, "Failed to publish month closed event",
				"month", result.Month, "error", err)
		}
	}

	return result, nil
}

// TransactionInput carries the user-editable fields for a new transaction.
type TransactionInput struct {
	Name     string
	Amount   decimal.Decimal
	Type     core.TransactionType
	Date     core.Date
	Category string
	Paid     bool // expense already settled at entry time
}

// AddTransaction inserts a new transaction. When the candidate matches an
// existing entry on name, amount and date and force is false, nothing is
// inserted and duplicate=true is returned so the caller can ask the user to
// confirm; retrying with force=true inserts regardless.
func (s *LedgerService) AddTransaction(ctx context.Context, in TransactionInput, force bool) (core.Transaction, bool, error) {
	status := core.StatusOpen
	if in.Type == core.Income || in.Paid {
		status = core.StatusPaid
	}
	tx := core.Transaction{
		ID:       uuid.NewString(),
		Name:     in.Name,
		Amount:   in.Amount,
		Type:     in.Type,
		Date:     in.Date,
		Category: in.Category,
		Status:   status,
	}
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !force && IsDuplicate(s.ledger.Transactions, tx) {
		return tx, true, nil
	}
	if err := s.ledger.AddTransaction(tx); err != nil {
		return core.Transaction{}, false, err
	}
	return tx, false, s.persistLocked(ctx)
}

// MarkPaid settles an open or overdue transaction.
func (s *LedgerService) MarkPaid(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ledger.MarkTransactionPaid(id); err != nil {
		return err
	}
	return s.persistLocked(ctx)
}

// DeleteTransaction removes a transaction permanently.
func (s *LedgerService) DeleteTransaction(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ledger.DeleteTransaction(id); err != nil {
		return err
	}
	return s.persistLocked(ctx)
}

// TemplateInput carries the user-editable fields for a recurring template.
type TemplateInput struct {
	Name     string
	Amount   decimal.Decimal
	Category string
	DueDay   int
}

// AddTemplate registers a recurring template and materializes its instance
// for the current month right away, under the same deterministic instance id
// the reconciler uses, so the next pass does not generate a second one.
func (s *LedgerService) AddTemplate(ctx context.Context, in TemplateInput) (core.RecurringTemplate, error) {
	tpl := core.RecurringTemplate{
		ID:       uuid.NewString(),
		Name:     in.Name,
		Amount:   in.Amount,
		Category: in.Category,
		DueDay:   in.DueDay,
	}
	if err := tpl.Validate(); err != nil {
		return core.RecurringTemplate{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ledger.AddTemplate(tpl); err != nil {
		return core.RecurringTemplate{}, err
	}

	now := s.clock.Now()
	monthKey := clock.MonthKey(now)
	id := InstanceID(tpl.ID, monthKey)
	if !s.ledger.HasTransaction(id) {
		day := clock.ClampDay(now.Year(), int(now.Month()), tpl.DueDay)
		instance := core.Transaction{
			ID:         id,
			Name:       tpl.Name,
			Amount:     tpl.Amount,
			Type:       core.Expense,
			Date:       core.NewDate(now.Year(), int(now.Month()), day),
			Category:   tpl.Category,
			Status:     core.StatusOpen,
			TemplateID: tpl.ID,
		}
		if err := s.ledger.AddTransaction(instance); err != nil {
			return core.RecurringTemplate{}, err
		}
	}

	return tpl, s.persistLocked(ctx)
}

// DeleteTemplate stops future generation; existing instances stay.
func (s *LedgerService) DeleteTemplate(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ledger.DeleteTemplate(id); err != nil {
		return err
	}
	return s.persistLocked(ctx)
}

// GoalInput carries the user-editable fields for a savings goal.
type GoalInput struct {
	Name         string
	TargetAmount decimal.Decimal
	Deadline     core.Date
}

// AddGoal registers a savings goal starting from zero.
func (s *LedgerService) AddGoal(ctx context.Context, in GoalInput) (core.Goal, error) {
	g := core.Goal{
		ID:            uuid.NewString(),
		Name:          in.Name,
		TargetAmount:  in.TargetAmount,
		CurrentAmount: decimal.Zero,
		Deadline:      in.Deadline,
	}
	if err := g.Validate(); err != nil {
		return core.Goal{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ledger.AddGoal(g); err != nil {
		return core.Goal{}, err
	}
	return g, s.persistLocked(ctx)
}

// UpdateGoalAmount sets a goal's saved amount.
func (s *LedgerService) UpdateGoalAmount(ctx context.Context, id string, amount decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ledger.UpdateGoalAmount(id, amount); err != nil {
		return err
	}
	return s.persistLocked(ctx)
}

// DeleteGoal removes a goal.
func (s *LedgerService) DeleteGoal(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ledger.DeleteGoal(id); err != nil {
		return err
	}
	return s.persistLocked(ctx)
}

// AddCategory appends a category name.
func (s *LedgerService) AddCategory(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ledger.AddCategory(name); err != nil {
		return err
	}
	return s.persistLocked(ctx)
}

// RenameCategory renames a category and cascades to every reference.
func (s *LedgerService) RenameCategory(ctx context.Context, oldName, newName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ledger.RenameCategory(oldName, newName); err != nil {
		return err
	}
	return s.persistLocked(ctx)
}

// DeleteCategory removes a category name; references are left dangling.
func (s *LedgerService) DeleteCategory(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ledger.DeleteCategory(name); err != nil {
		return err
	}
	return s.persistLocked(ctx)
}

func (s *LedgerService) persistLocked(ctx context.Context) error {
	if err := s.repo.SaveSnapshot(ctx, s.ledger); err != nil {
		return fmt.Errorf("persist ledger: %w", err)
	}
	return nil
}

// Snapshot returns a copy of the current ledger for read-only use.
func (s *LedgerService) Snapshot() ledger.Ledger {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := ledger.Ledger{
		Transactions: append([]core.Transaction(nil), s.ledger.Transactions...),
		Categories:   append([]string(nil), s.ledger.Categories...),
		Goals:        append([]core.Goal(nil), s.ledger.Goals...),
		Templates:    append([]core.RecurringTemplate(nil), s.ledger.Templates...),
		LastSync:     s.ledger.LastSync,
	}
	return cp
}

// Overview computes the month summary over the current ledger.
func (s *LedgerService) Overview(year, month int) core.MonthOverview {
	snap := s.Snapshot()
	return core.BuildMonthOverview(snap.Transactions, year, month)
}

// MonthTransactions returns the transactions dated in the given month.
func (s *LedgerService) MonthTransactions(year, month int) []core.Transaction {
	snap := s.Snapshot()
	ref := core.NewDate(year, month, 1)
	var out []core.Transaction
	for _, tx := range snap.Transactions {
		if tx.Date.SameMonth(ref) {
			out = append(out, tx)
		}
	}
	return out
}
