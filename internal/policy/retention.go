package policy

import (
	"fmt"
	"slices"
	"strings"
)

// DefaultHistory is the number of snapshots kept when no history is configured.
const DefaultHistory = 30

// SnapshotRetention implements count based retention for the snapshots of one disk.
//
// Behavior:
//   - Ordering: Snapshot names are ordered case-insensitively, ascending. Because names end
//     in a fixed width "YYYYMMDD-HHMM" suffix this is also chronological order, oldest first.
//   - Pruning: Everything before the newest Keep entries is due for deletion, oldest first.
type SnapshotRetention struct {
	// Keep is the maximum number of snapshots left after pruning. Zero removes all of them.
	Keep int
}

// RetentionPlan is the outcome of evaluating a retention policy against a snapshot list.
type RetentionPlan struct {
	// Delete holds the snapshots to remove, in deletion order.
	Delete []string
	// Keep holds the snapshots that survive, oldest first.
	Keep []string
}

// Normalize validates the policy.
func (r SnapshotRetention) Normalize() error {
	if r.Keep < 0 {
		return fmt.Errorf("invalid history %d; must be zero or greater", r.Keep)
	}
	return nil
}

// SortSnapshotNames sorts names in place, case-insensitively and ascending.
// Names equal apart from case keep their relative order.
func SortSnapshotNames(names []string) {
	slices.SortStableFunc(names, func(a, b string) int {
		return strings.Compare(strings.ToLower(a), strings.ToLower(b))
	})
}

// Plan sorts a copy of names and splits it into the snapshots to delete and those to keep.
// The input slice is left untouched.
func (r SnapshotRetention) Plan(names []string) RetentionPlan {
	sorted := slices.Clone(names)
	SortSnapshotNames(sorted)

	keep := max(r.Keep, 0)
	if len(sorted) <= keep {
		return RetentionPlan{Keep: sorted}
	}

	excess := len(sorted) - keep
	return RetentionPlan{
		Delete: sorted[:excess],
		Keep:   sorted[excess:],
	}
}
