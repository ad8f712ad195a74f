package services

import (
	"strings"

	"quantofalta/internal/core"
)

// IsDuplicate reports whether candidate looks like an accidental re-entry of
// an existing transaction: case-insensitive equal name, exactly equal amount
// and equal date. The check is advisory; callers surface it as a confirmation
// and may insert the duplicate anyway.
func IsDuplicate(existing []core.Transaction, candidate core.Transaction) bool {
	for i := range existing {
		tx := existing[i]
		if strings.EqualFold(tx.Name, candidate.Name) &&
			tx.Amount.Equal(candidate.Amount) &&
			tx.Date.Equal(candidate.Date) {
			return true
		}
	}
	return false
}
