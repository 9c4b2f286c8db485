// Package reconcile merges an anonymous device's local event list with an
// authenticated account's server-side list into one deduplicated view.
package reconcile

import (
	"sort"

	"github.com/google/uuid"

	"github.com/theinvitelink/rsvp-service/internal/models"
)

// MergeEventLists is a pure function of its two inputs: no writes, no side
// effects, safe to re-run at any time without accumulating duplicates.
//
// Dedup key is the event id. When an id appears in both lists the remote
// (authenticated) copy wins, since it reflects the latest organizer edits.
// Local-only entries are appended as-is: they are events created anonymously
// and not yet claimed. Output is ordered most-recently-created first.
//
// Callers must treat a failed server fetch as "fall back to local-only",
// never as an empty remote list — this function only reconciles the inputs
// it is given and cannot tell a deleted event from an unfetched one.
func MergeEventLists(local, remote []models.EventSummary) []models.EventSummary {
	merged := make([]models.EventSummary, 0, len(local)+len(remote))
	seen := make(map[uuid.UUID]struct{}, len(remote))

	for _, e := range remote {
		if _, dup := seen[e.ID]; dup {
			continue
		}
		seen[e.ID] = struct{}{}
		merged = append(merged, e)
	}
	for _, e := range local {
		if _, dup := seen[e.ID]; dup {
			continue
		}
		seen[e.ID] = struct{}{}
		merged = append(merged, e)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].CreatedAt.After(merged[j].CreatedAt)
	})
	return merged
}
