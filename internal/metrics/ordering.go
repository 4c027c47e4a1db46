package metrics

import (
	"sort"

	"trade-journal/internal/domain"
)

// sortedByDate returns a copy of trades stable-sorted by TradeDate ASC.
// Equal dates keep their input order. The input slice is not modified.
func sortedByDate(trades []*domain.TradeRecord) []*domain.TradeRecord {
	sorted := make([]*domain.TradeRecord, len(trades))
	copy(sorted, trades)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].TradeDate.Before(sorted[j].TradeDate)
	})
	return sorted
}
