package memory

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	"quantofalta/internal/core"
)

func TestWriteTransactionsReplacesMonth(t *testing.T) {
	s := New()
	ctx := context.Background()

	tx := core.Transaction{
		ID: "t1", Name: "Internet", Amount: decimal.NewFromInt(100),
		Type: core.Expense, Date: core.NewDate(2025, 3, 10),
		Category: "Moradia", Status: core.StatusOpen,
	}

	if err := s.WriteTransactions(ctx, "2025-03", []core.Transaction{tx}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := s.WriteTransactions(ctx, "2025-04", nil); err != nil {
		t.Fatalf("write: %v", err)
	}

	months := s.Months()
	if len(months) != 2 || months[0] != "2025-03" || months[1] != "2025-04" {
		t.Fatalf("months: %v", months)
	}

	// rewriting a month replaces, not appends
	if err := s.WriteTransactions(ctx, "2025-03", []core.Transaction{tx, tx}); err != nil {
		t.Fatalf("rewrite: %v", err)
	}
	if got := len(s.Transactions("2025-03")); got != 2 {
		t.Fatalf("expected 2 transactions, got %d", got)
	}

	if got := s.Transactions("2099-01"); len(got) != 0 {
		t.Fatalf("unknown month must be empty, got %v", got)
	}
}
