package ledger

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"quantofalta/internal/core"
)

func expense(id, name, category string) core.Transaction {
	return core.Transaction{
		ID:       id,
		Name:     name,
		Amount:   decimal.NewFromInt(100),
		Type:     core.Expense,
		Date:     core.NewDate(2025, 3, 10),
		Category: category,
		Status:   core.StatusOpen,
	}
}

func TestDefaultSeedsCategories(t *testing.T) {
	l := Default()
	if len(l.Categories) != len(DefaultCategories) {
		t.Fatalf("got %d categories", len(l.Categories))
	}
	if l.LastSync != "" {
		t.Fatalf("fresh ledger must have no sync marker, got %q", l.LastSync)
	}
}

func TestAddTransaction(t *testing.T) {
	l := Default()
	if err := l.AddTransaction(expense("t1", "Internet", "Moradia")); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if !l.HasTransaction("t1") {
		t.Fatalf("transaction not stored")
	}

	// duplicate id
	if err := l.AddTransaction(expense("t1", "Other", "Moradia")); !errors.Is(err, core.ErrNameCollision) {
		t.Fatalf("expected ErrNameCollision, got %v", err)
	}

	// missing id
	if err := l.AddTransaction(expense("", "NoID", "Moradia")); !errors.Is(err, core.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}

	// invalid record leaves the ledger untouched
	bad := expense("t2", "", "Moradia")
	if err := l.AddTransaction(bad); err == nil {
		t.Fatalf("expected error")
	}
	if len(l.Transactions) != 1 {
		t.Fatalf("invalid insert must not grow the ledger")
	}
}

func TestMarkTransactionPaidIsTerminal(t *testing.T) {
	l := Default()
	if err := l.AddTransaction(expense("t1", "Internet", "Moradia")); err != nil {
		t.Fatalf("add: %v", err)
	}

	if err := l.MarkTransactionPaid("t1"); err != nil {
		t.Fatalf("pay: %v", err)
	}
	if l.Transactions[0].Status != core.StatusPaid {
		t.Fatalf("got %s", l.Transactions[0].Status)
	}

	// re-marking is a harmless no-op
	if err := l.MarkTransactionPaid("t1"); err != nil {
		t.Fatalf("re-pay: %v", err)
	}
	if l.Transactions[0].Status != core.StatusPaid {
		t.Fatalf("got %s", l.Transactions[0].Status)
	}

	if err := l.MarkTransactionPaid("missing"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteTemplateKeepsInstances(t *testing.T) {
	l := Default()
	tpl := core.RecurringTemplate{
		ID: "tpl1", Name: "Aluguel", Amount: decimal.NewFromInt(1200),
		Category: "Moradia", DueDay: 5,
	}
	if err := l.AddTemplate(tpl); err != nil {
		t.Fatalf("add template: %v", err)
	}
	instance := expense("rec-tpl1-2025-03", "Aluguel", "Moradia")
	instance.TemplateID = "tpl1"
	if err := l.AddTransaction(instance); err != nil {
		t.Fatalf("add instance: %v", err)
	}

	if err := l.DeleteTemplate("tpl1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(l.Templates) != 0 {
		t.Fatalf("template not removed")
	}
	if !l.HasTransaction("rec-tpl1-2025-03") {
		t.Fatalf("instance must survive template deletion")
	}
}

func TestRenameCategory(t *testing.T) {
	l := Default()
	if err := l.AddTransaction(expense("t1", "Mercado", "Alimentação")); err != nil {
		t.Fatalf("add: %v", err)
	}
	tpl := core.RecurringTemplate{
		ID: "tpl1", Name: "Feira", Amount: decimal.NewFromInt(80),
		Category: "Alimentação", DueDay: 7,
	}
	if err := l.AddTemplate(tpl); err != nil {
		t.Fatalf("add template: %v", err)
	}

	if err := l.RenameCategory("Alimentação", "Mercado"); err != nil {
		t.Fatalf("rename: %v", err)
	}
	if l.HasCategory("Alimentação") || !l.HasCategory("Mercado") {
		t.Fatalf("category set not updated: %v", l.Categories)
	}
	if l.Transactions[0].Category != "Mercado" {
		t.Fatalf("transaction not renamed: %s", l.Transactions[0].Category)
	}
	if l.Templates[0].Category != "Mercado" {
		t.Fatalf("template not renamed: %s", l.Templates[0].Category)
	}
}

func TestRenameCategoryCollisionLeavesLedgerUntouched(t *testing.T) {
	l := Default()
	if err := l.AddTransaction(expense("t1", "Mercado", "Alimentação")); err != nil {
		t.Fatalf("add: %v", err)
	}

	err := l.RenameCategory("Alimentação", "Transporte")
	if !errors.Is(err, core.ErrNameCollision) {
		t.Fatalf("expected ErrNameCollision, got %v", err)
	}
	if !l.HasCategory("Alimentação") {
		t.Fatalf("failed rename must not drop the old category")
	}
	if l.Transactions[0].Category != "Alimentação" {
		t.Fatalf("failed rename must not touch transactions")
	}
}

func TestRenameCategoryNoOps(t *testing.T) {
	l := Default()

	// empty and same-name renames succeed without changing anything
	if err := l.RenameCategory("Lazer", ""); err != nil {
		t.Fatalf("empty new name: %v", err)
	}
	if err := l.RenameCategory("Lazer", "Lazer"); err != nil {
		t.Fatalf("same name: %v", err)
	}
	if !l.HasCategory("Lazer") {
		t.Fatalf("no-op rename must keep the category")
	}

	if err := l.RenameCategory("Inexistente", "Nova"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteCategoryDoesNotCascade(t *testing.T) {
	l := Default()
	if err := l.AddTransaction(expense("t1", "Mercado", "Alimentação")); err != nil {
		t.Fatalf("add: %v", err)
	}

	if err := l.DeleteCategory("Alimentação"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if l.HasCategory("Alimentação") {
		t.Fatalf("category not removed")
	}
	// the transaction keeps its now-dangling category string
	if l.Transactions[0].Category != "Alimentação" {
		t.Fatalf("delete must not touch transactions, got %s", l.Transactions[0].Category)
	}
}

func TestAddCategory(t *testing.T) {
	l := Default()
	if err := l.AddCategory("Pets"); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := l.AddCategory("Pets"); !errors.Is(err, core.ErrNameCollision) {
		t.Fatalf("expected ErrNameCollision, got %v", err)
	}
	if err := l.AddCategory("   "); !errors.Is(err, core.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestGoalLifecycle(t *testing.T) {
	l := Default()
	g := core.Goal{
		ID: "g1", Name: "Viagem", TargetAmount: decimal.NewFromInt(5000),
		CurrentAmount: decimal.Zero, Deadline: core.NewDate(2026, 12, 31),
	}
	if err := l.AddGoal(g); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := l.AddGoal(g); !errors.Is(err, core.ErrNameCollision) {
		t.Fatalf("expected ErrNameCollision, got %v", err)
	}

	if err := l.UpdateGoalAmount("g1", decimal.NewFromInt(1500)); err != nil {
		t.Fatalf("update: %v", err)
	}
	if !l.Goals[0].CurrentAmount.Equal(decimal.NewFromInt(1500)) {
		t.Fatalf("got %s", l.Goals[0].CurrentAmount)
	}

	if err := l.UpdateGoalAmount("g1", decimal.NewFromInt(-1)); !errors.Is(err, core.ErrNegativeAmount) {
		t.Fatalf("expected ErrNegativeAmount, got %v", err)
	}

	if err := l.DeleteGoal("g1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := l.DeleteGoal("g1"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestNormalize(t *testing.T) {
	l := &Ledger{
		Transactions: []core.Transaction{
			expense("t1", "Valid", "Moradia"),
			expense("", "NoID", "Moradia"),
			expense("t3", "", "Moradia"), // empty name
		},
		Goals: []core.Goal{
			{ID: "g1", Name: "Ok", TargetAmount: decimal.NewFromInt(10), Deadline: core.NewDate(2026, 1, 1)},
			{ID: "g2", Name: "Bad", TargetAmount: decimal.Zero, Deadline: core.NewDate(2026, 1, 1)},
		},
	}

	dropped := l.Normalize()
	if dropped != 3 {
		t.Fatalf("expected 3 dropped, got %d", dropped)
	}
	if len(l.Transactions) != 1 || l.Transactions[0].ID != "t1" {
		t.Fatalf("unexpected transactions: %+v", l.Transactions)
	}
	if len(l.Goals) != 1 || l.Goals[0].ID != "g1" {
		t.Fatalf("unexpected goals: %+v", l.Goals)
	}
	if len(l.Categories) != len(DefaultCategories) {
		t.Fatalf("missing category set must be restored")
	}
}
