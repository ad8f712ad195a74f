// Package memory provides an in-memory SnapshotWriter used as the default
// export backend and in tests.
package memory

import (
	"context"
	"sort"
	"sync"

	"quantofalta/internal/core"
)

type Store struct {
	mu     sync.Mutex
	months map[string][]core.Transaction
}

func New() *Store {
	return &Store{months: make(map[string][]core.Transaction)}
}

// WriteTransactions records the month's transactions, replacing any earlier
// write for the same month.
func (s *Store) WriteTransactions(_ context.Context, month string, transactions []core.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.months[month] = append([]core.Transaction(nil), transactions...)
	return nil
}

// Months returns the recorded month keys in order.
func (s *Store) Months() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.months))
	for m := range s.months {
		out = append(out, m)
	}
	sort.Strings(out)
	return out
}

// Transactions returns the last write for a month.
func (s *Store) Transactions(month string) []core.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Transaction(nil), s.months[month]...)
}
