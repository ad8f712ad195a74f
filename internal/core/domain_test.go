package core

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func validTransaction() Transaction {
	return Transaction{
		ID:       "t1",
		Name:     "Internet",
		Amount:   decimal.NewFromInt(100),
		Type:     Expense,
		Date:     NewDate(2025, 1, 15),
		Category: "Moradia",
		Status:   StatusOpen,
	}
}

func TestTransactionValidate(t *testing.T) {
	if err := validTransaction().Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	cases := []struct {
		mutate func(*Transaction)
		want   error
	}{
		{func(tx *Transaction) { tx.Name = "" }, ErrEmptyName},
		{func(tx *Transaction) { tx.Name = "   " }, ErrEmptyName},
		{func(tx *Transaction) { tx.Amount = decimal.Zero }, ErrInvalidAmount},
		{func(tx *Transaction) { tx.Amount = decimal.NewFromInt(-5) }, ErrInvalidAmount},
		{func(tx *Transaction) { tx.Type = "transfer" }, ErrInvalidType},
		{func(tx *Transaction) { tx.Date = Date{} }, ErrInvalidDate},
		{func(tx *Transaction) { tx.Category = "" }, ErrEmptyCategory},
		{func(tx *Transaction) { tx.Status = "pending" }, ErrInvalidStatus},
	}
	for i, tc := range cases {
		tx := validTransaction()
		tc.mutate(&tx)
		err := tx.Validate()
		if err == nil {
			t.Fatalf("case %d expected error", i)
		}
		if !errors.Is(err, tc.want) {
			t.Fatalf("case %d expected %v, got %v", i, tc.want, err)
		}
		if !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("case %d: %v must wrap ErrInvalidInput", i, err)
		}
	}
}

func TestRecurringTemplateValidate(t *testing.T) {
	good := RecurringTemplate{
		ID:       "tpl1",
		Name:     "Aluguel",
		Amount:   decimal.NewFromInt(1200),
		Category: "Moradia",
		DueDay:   5,
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	for i, dueDay := range []int{0, -1, 32} {
		tpl := good
		tpl.DueDay = dueDay
		if err := tpl.Validate(); !errors.Is(err, ErrInvalidDueDay) {
			t.Fatalf("case %d expected ErrInvalidDueDay, got %v", i, err)
		}
	}

	// day 31 is valid even though some months are shorter; clamping happens
	// at materialization
	tpl := good
	tpl.DueDay = 31
	if err := tpl.Validate(); err != nil {
		t.Fatalf("expected ok for dueDay 31, got %v", err)
	}
}

func TestGoalValidate(t *testing.T) {
	good := Goal{
		ID:            "g1",
		Name:          "Viagem",
		TargetAmount:  decimal.NewFromInt(5000),
		CurrentAmount: decimal.Zero,
		Deadline:      NewDate(2026, 12, 31),
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	g := good
	g.CurrentAmount = decimal.NewFromInt(-1)
	if err := g.Validate(); !errors.Is(err, ErrNegativeAmount) {
		t.Fatalf("expected ErrNegativeAmount, got %v", err)
	}

	g = good
	g.TargetAmount = decimal.Zero
	if err := g.Validate(); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
}

func TestGoalProgress(t *testing.T) {
	cases := []struct {
		current, target int64
		want            float64
	}{
		{0, 100, 0},
		{50, 100, 0.5},
		{100, 100, 1},
		{150, 100, 1}, // clamped
	}
	for i, tc := range cases {
		g := Goal{
			TargetAmount:  decimal.NewFromInt(tc.target),
			CurrentAmount: decimal.NewFromInt(tc.current),
		}
		if got := g.Progress(); got != tc.want {
			t.Fatalf("case %d expected %v, got %v", i, tc.want, got)
		}
	}
}
