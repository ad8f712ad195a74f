// Package export defines the outbound ports for pushing reconciled ledger
// data to external destinations.
package export

import (
	"context"

	"quantofalta/internal/core"
)

// SnapshotWriter receives the transactions of a reconciled month. month is
// the canonical YYYY-MM identifier.
type SnapshotWriter interface {
	WriteTransactions(ctx context.Context, month string, transactions []core.Transaction) error
}
