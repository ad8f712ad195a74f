package core

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

const (
	StatusOpen    TransactionStatus = "open"
	StatusOverdue TransactionStatus = "overdue"
	StatusPaid    TransactionStatus = "paid"
)

type (
	TransactionType   string
	TransactionStatus string

	// Transaction is a single income or expense entry. Recurring instances
	// carry a TemplateID back-reference to the template that generated them.
	Transaction struct {
		ID         string            `json:"id"`
		Name       string            `json:"name"`
		Amount     decimal.Decimal   `json:"amount"`
		Type       TransactionType   `json:"type"`
		Date       Date              `json:"date"`
		Category   string            `json:"category"`
		Status     TransactionStatus `json:"status"`
		TemplateID string            `json:"templateId,omitempty"`
	}

	// RecurringTemplate describes a monthly bill to be materialized once per
	// calendar month. A DueDay beyond the month's length is clamped at
	// materialization time, not here.
	RecurringTemplate struct {
		ID       string          `json:"id"`
		Name     string          `json:"name"`
		Amount   decimal.Decimal `json:"amount"`
		Category string          `json:"category"`
		DueDay   int             `json:"dueDay"`
	}

	// Goal tracks savings progress towards a target by a deadline.
	Goal struct {
		ID            string          `json:"id"`
		Name          string          `json:"name"`
		TargetAmount  decimal.Decimal `json:"targetAmount"`
		CurrentAmount decimal.Decimal `json:"currentAmount"`
		Deadline      Date            `json:"deadline"`
	}
)

// Sentinel errors. The fine-grained ones wrap ErrInvalidInput so callers can
// match either the broad class or the specific cause.
var (
	ErrInvalidInput  = errors.New("invalid input")
	ErrNameCollision = errors.New("name already in use")
	ErrNotFound      = errors.New("not found")

	ErrEmptyName      = fmt.Errorf("%w: empty name", ErrInvalidInput)
	ErrInvalidAmount  = fmt.Errorf("%w: amount must be positive", ErrInvalidInput)
	ErrInvalidDate    = fmt.Errorf("%w: invalid date", ErrInvalidInput)
	ErrInvalidDueDay  = fmt.Errorf("%w: due day must be between 1 and 31", ErrInvalidInput)
	ErrInvalidType    = fmt.Errorf("%w: unknown transaction type", ErrInvalidInput)
	ErrInvalidStatus  = fmt.Errorf("%w: unknown transaction status", ErrInvalidInput)
	ErrEmptyCategory  = fmt.Errorf("%w: empty category", ErrInvalidInput)
	ErrNegativeAmount = fmt.Errorf("%w: amount cannot be negative", ErrInvalidInput)
)

func (tt TransactionType) Validate() error {
	switch tt {
	case Income, Expense:
		return nil
	default:
		return ErrInvalidType
	}
}

func (ts TransactionStatus) Validate() error {
	switch ts {
	case StatusOpen, StatusOverdue, StatusPaid:
		return nil
	default:
		return ErrInvalidStatus
	}
}

func (t Transaction) Validate() error {
	if strings.TrimSpace(t.Name) == "" {
		return ErrEmptyName
	}
	if len(t.Name) > 200 {
		return fmt.Errorf("%w: name too long (max 200 characters)", ErrInvalidInput)
	}
	if !t.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	if err := t.Type.Validate(); err != nil {
		return err
	}
	if err := t.Date.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(t.Category) == "" {
		return ErrEmptyCategory
	}
	return t.Status.Validate()
}

func (rt RecurringTemplate) Validate() error {
	if strings.TrimSpace(rt.Name) == "" {
		return ErrEmptyName
	}
	if len(rt.Name) > 200 {
		return fmt.Errorf("%w: name too long (max 200 characters)", ErrInvalidInput)
	}
	if !rt.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	if strings.TrimSpace(rt.Category) == "" {
		return ErrEmptyCategory
	}
	if rt.DueDay < 1 || rt.DueDay > 31 {
		return ErrInvalidDueDay
	}
	return nil
}

func (g Goal) Validate() error {
	if strings.TrimSpace(g.Name) == "" {
		return ErrEmptyName
	}
	if !g.TargetAmount.IsPositive() {
		return ErrInvalidAmount
	}
	if g.CurrentAmount.IsNegative() {
		return ErrNegativeAmount
	}
	return g.Deadline.Validate()
}

// Progress returns completion towards the target as a fraction in [0, 1].
func (g Goal) Progress() float64 {
	if !g.TargetAmount.IsPositive() {
		return 0
	}
	p, _ := g.CurrentAmount.Div(g.TargetAmount).Float64()
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}
