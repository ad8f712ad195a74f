package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"

	"quantofalta/internal/core"
	"quantofalta/internal/ledger"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("init repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestLoadSnapshotEmpty(t *testing.T) {
	repo := newTestRepo(t)

	l, err := repo.LoadSnapshot(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(l.Transactions) != 0 {
		t.Fatalf("expected empty ledger")
	}
	if len(l.Categories) == 0 {
		t.Fatalf("default categories missing")
	}
}

func TestSaveAndLoadSnapshot(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	l := ledger.Default()
	l.LastSync = "2025-03"
	l.Transactions = []core.Transaction{{
		ID: "t1", Name: "Internet", Amount: decimal.NewFromFloat(99.90),
		Type: core.Expense, Date: core.NewDate(2025, 3, 10),
		Category: "Moradia", Status: core.StatusOpen, TemplateID: "tpl1",
	}}
	l.Templates = []core.RecurringTemplate{{
		ID: "tpl1", Name: "Internet", Amount: decimal.NewFromFloat(99.90),
		Category: "Moradia", DueDay: 10,
	}}
	l.Goals = []core.Goal{{
		ID: "g1", Name: "Viagem", TargetAmount: decimal.NewFromInt(5000),
		CurrentAmount: decimal.NewFromInt(800), Deadline: core.NewDate(2026, 12, 31),
	}}

	if err := repo.SaveSnapshot(ctx, l); err != nil {
		t.Fatalf("save: %v", err)
	}

	back, err := repo.LoadSnapshot(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if back.LastSync != "2025-03" {
		t.Fatalf("marker: %q", back.LastSync)
	}
	if len(back.Transactions) != 1 || back.Transactions[0].TemplateID != "tpl1" {
		t.Fatalf("transactions: %+v", back.Transactions)
	}
	if !back.Transactions[0].Amount.Equal(decimal.NewFromFloat(99.90)) {
		t.Fatalf("amount drifted: %s", back.Transactions[0].Amount)
	}
	if len(back.Templates) != 1 || len(back.Goals) != 1 {
		t.Fatalf("templates/goals lost")
	}
}

func TestSaveSnapshotOverwritesSingleRow(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	first := ledger.Default()
	first.LastSync = "2025-02"
	if err := repo.SaveSnapshot(ctx, first); err != nil {
		t.Fatalf("save: %v", err)
	}

	second := ledger.Default()
	second.LastSync = "2025-03"
	if err := repo.SaveSnapshot(ctx, second); err != nil {
		t.Fatalf("save: %v", err)
	}

	back, err := repo.LoadSnapshot(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if back.LastSync != "2025-03" {
		t.Fatalf("expected latest snapshot, got %q", back.LastSync)
	}
}

func TestDecodeSnapshot(t *testing.T) {
	if _, _, err := DecodeSnapshot([]byte("not json")); err == nil {
		t.Fatalf("expected decode error")
	}

	// invalid records are dropped, not fatal
	payload := []byte(`{
		"transactions": [
			{"id": "t1", "name": "Ok", "amount": "10", "type": "expense",
			 "date": "2025-03-01", "category": "Moradia", "status": "open"},
			{"id": "t2", "name": "", "amount": "10", "type": "expense",
			 "date": "2025-03-01", "category": "Moradia", "status": "open"}
		],
		"categories": [],
		"goals": [],
		"recurringTemplates": [],
		"lastSyncMonth": "2025-03"
	}`)
	l, dropped, err := DecodeSnapshot(payload)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if dropped != 1 {
		t.Fatalf("dropped: %d", dropped)
	}
	if len(l.Transactions) != 1 || l.Transactions[0].ID != "t1" {
		t.Fatalf("transactions: %+v", l.Transactions)
	}
	if len(l.Categories) == 0 {
		t.Fatalf("empty category set must be restored")
	}
}

func TestLoadSnapshotMalformedPayload(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if _, err := repo.db.ExecContext(ctx, `
		INSERT INTO ledger_snapshots (id, payload, updated_at)
		VALUES (1, 'garbage', CURRENT_TIMESTAMP)`); err != nil {
		t.Fatalf("seed: %v", err)
	}

	// never crashes: a broken snapshot degrades to the default ledger
	l, err := repo.LoadSnapshot(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(l.Transactions) != 0 || len(l.Categories) == 0 {
		t.Fatalf("expected default ledger, got %+v", l)
	}
}
