package models

import (
	"time"

	"github.com/google/uuid"
)

// Guest is one RSVP row. Within an event, DisplayName (exact string after
// trimming) identifies at most one row; resubmission updates in place.
type Guest struct {
	ID          uuid.UUID `json:"id"`
	EventID     uuid.UUID `json:"event_id"`
	DisplayName string    `json:"display_name"`
	AdultCount  int       `json:"adult_count"`
	KidCount    int       `json:"kid_count"`
	IsPaid      bool      `json:"is_paid"`
	CreatedAt   time.Time `json:"created_at"`
}

// Aggregates are derived per-event totals. They are always computed from the
// current roster rows, never stored, so they cannot drift after an update.
type Aggregates struct {
	Adults    int     `json:"adults"`
	Kids      int     `json:"kids"`
	Headcount int     `json:"headcount"`
	Revenue   float64 `json:"revenue"`
}

// EventSummary is the shape exchanged with clients for event lists: the
// server's owned-events view and the device-local roster a creator built up
// while anonymous. The local copy may carry the management key the creator
// was shown at creation time.
type EventSummary struct {
	ID            uuid.UUID `json:"id"`
	Title         string    `json:"title"`
	Date          time.Time `json:"date"`
	Location      string    `json:"location"`
	ManagementKey string    `json:"management_key,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// AdminStats is the moderation dashboard snapshot.
type AdminStats struct {
	TotalEvents int64 `json:"total_events"`
	TotalGuests int64 `json:"total_guests"`
	EventsToday int64 `json:"events_today"`
}
