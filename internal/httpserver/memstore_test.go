package httpserver

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/theinvitelink/rsvp-service/internal/models"
	"github.com/theinvitelink/rsvp-service/internal/store"
)

// memStore is an in-memory handlers.Store with the same semantics as the
// Postgres store: same validation, same sentinel errors, same upsert rules.
type memStore struct {
	mu          sync.Mutex
	events      map[uuid.UUID]*models.Event
	byCode      map[string]uuid.UUID
	guests      map[uuid.UUID]*models.Guest
	names       map[uuid.UUID]map[string]uuid.UUID // eventID -> trimmed name -> guestID
	clock       time.Time
	unavailable bool // when set, every call fails like an unreachable store
}

func newMemStore() *memStore {
	return &memStore{
		events: map[uuid.UUID]*models.Event{},
		byCode: map[string]uuid.UUID{},
		guests: map[uuid.UUID]*models.Guest{},
		names:  map[uuid.UUID]map[string]uuid.UUID{},
		clock:  time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC),
	}
}

// tick hands out strictly increasing timestamps so created_at ordering is
// deterministic in tests.
func (m *memStore) tick() time.Time {
	m.clock = m.clock.Add(time.Second)
	return m.clock
}

func (m *memStore) Ping(context.Context) error {
	if m.unavailable {
		return store.ErrUnavailable
	}
	return nil
}

func (m *memStore) CreateEvent(_ context.Context, p store.CreateEventParams) (*models.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.unavailable {
		return nil, store.ErrUnavailable
	}
	if strings.TrimSpace(p.Title) == "" || strings.TrimSpace(p.Location) == "" || p.Date.IsZero() {
		return nil, fmt.Errorf("%w: title, date and location required", store.ErrValidation)
	}
	if p.PricePerAdult < 0 || p.PricePerChild < 0 {
		return nil, fmt.Errorf("%w: prices must be non-negative", store.ErrValidation)
	}
	theme := p.Theme
	if theme == "" {
		theme = models.ThemeMinimal
	}
	if !models.ValidTheme(theme) {
		return nil, fmt.Errorf("%w: unknown theme %q", store.ErrValidation, theme)
	}

	evt := &models.Event{
		ID:                  uuid.New(),
		ShortCode:           models.NewShortCode(),
		ManagementKey:       uuid.NewString(),
		OwnerAccount:        p.OwnerAccount,
		Title:               p.Title,
		Date:                p.Date.UTC(),
		Location:            p.Location,
		Description:         p.Description,
		Theme:               theme,
		PricePerAdult:       p.PricePerAdult,
		PricePerChild:       p.PricePerChild,
		PaymentInstructions: p.PaymentInstructions,
		BannerReference:     p.BannerReference,
		CreatedAt:           m.tick(),
	}
	m.events[evt.ID] = evt
	m.byCode[evt.ShortCode] = evt.ID
	return copyEvent(evt), nil
}

func (m *memStore) ResolveEvent(_ context.Context, ref string) (*models.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.unavailable {
		return nil, store.ErrUnavailable
	}
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, fmt.Errorf("%w: empty event reference", store.ErrValidation)
	}
	if models.IsCanonicalID(ref) {
		id, err := uuid.Parse(ref)
		if err != nil {
			return nil, store.ErrNotFound
		}
		if evt, ok := m.events[id]; ok {
			return copyEvent(evt), nil
		}
		return nil, store.ErrNotFound
	}
	if id, ok := m.byCode[ref]; ok {
		return copyEvent(m.events[id]), nil
	}
	return nil, store.ErrNotFound
}

func (m *memStore) GetEvent(_ context.Context, id uuid.UUID) (*models.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if evt, ok := m.events[id]; ok {
		return copyEvent(evt), nil
	}
	return nil, store.ErrNotFound
}

func (m *memStore) UpdateEvent(_ context.Context, id uuid.UUID, p store.UpdateEventParams) (*models.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if strings.TrimSpace(p.Title) == "" || strings.TrimSpace(p.Location) == "" {
		return nil, fmt.Errorf("%w: title and location required", store.ErrValidation)
	}
	if p.PricePerAdult < 0 || p.PricePerChild < 0 {
		return nil, fmt.Errorf("%w: prices must be non-negative", store.ErrValidation)
	}
	if !models.ValidTheme(p.Theme) {
		return nil, fmt.Errorf("%w: unknown theme %q", store.ErrValidation, p.Theme)
	}
	evt, ok := m.events[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	evt.Title = p.Title
	evt.Date = p.Date.UTC()
	evt.Location = p.Location
	evt.Description = p.Description
	evt.Theme = p.Theme
	evt.PricePerAdult = p.PricePerAdult
	evt.PricePerChild = p.PricePerChild
	evt.PaymentInstructions = p.PaymentInstructions
	evt.BannerReference = p.BannerReference
	return copyEvent(evt), nil
}

func (m *memStore) DeleteEvent(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	evt, ok := m.events[id]
	if !ok {
		return store.ErrNotFound
	}
	delete(m.byCode, evt.ShortCode)
	delete(m.events, id)
	for name, guestID := range m.names[id] {
		delete(m.guests, guestID)
		delete(m.names[id], name)
	}
	delete(m.names, id)
	return nil
}

func (m *memStore) ClaimEvent(_ context.Context, id uuid.UUID, accountID string) (*models.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if strings.TrimSpace(accountID) == "" {
		return nil, fmt.Errorf("%w: account id required", store.ErrValidation)
	}
	evt, ok := m.events[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	if evt.OwnerAccount != "" && evt.OwnerAccount != accountID {
		return nil, fmt.Errorf("%w: event already claimed by another account", store.ErrConflict)
	}
	evt.OwnerAccount = accountID
	return copyEvent(evt), nil
}

func (m *memStore) ListEventsByOwner(_ context.Context, accountID string) ([]models.EventSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.unavailable {
		return nil, store.ErrUnavailable
	}
	var out []models.EventSummary
	for _, evt := range m.events {
		if evt.OwnerAccount == accountID {
			out = append(out, models.EventSummary{
				ID:        evt.ID,
				Title:     evt.Title,
				Date:      evt.Date,
				Location:  evt.Location,
				CreatedAt: evt.CreatedAt,
			})
		}
	}
	return out, nil
}

func (m *memStore) SubmitRSVP(_ context.Context, eventID uuid.UUID, displayName string, adults, kids int) (*models.Guest, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		return nil, false, fmt.Errorf("%w: display name required", store.ErrValidation)
	}
	if adults < 0 || kids < 0 {
		return nil, false, fmt.Errorf("%w: counts must be non-negative", store.ErrValidation)
	}
	evt, ok := m.events[eventID]
	if !ok || evt.IsSuspended {
		return nil, false, store.ErrNotFound
	}

	if m.names[eventID] == nil {
		m.names[eventID] = map[string]uuid.UUID{}
	}
	if guestID, exists := m.names[eventID][displayName]; exists {
		g := m.guests[guestID]
		g.AdultCount = adults
		g.KidCount = kids
		// payment state survives resubmission
		return copyGuest(g), false, nil
	}
	g := &models.Guest{
		ID:          uuid.New(),
		EventID:     eventID,
		DisplayName: displayName,
		AdultCount:  adults,
		KidCount:    kids,
		CreatedAt:   m.tick(),
	}
	m.guests[g.ID] = g
	m.names[eventID][displayName] = g.ID
	return copyGuest(g), true, nil
}

func (m *memStore) ConfirmPayment(_ context.Context, rsvpID uuid.UUID) (*models.Guest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.guests[rsvpID]
	if !ok {
		return nil, store.ErrNotFound
	}
	// Guest-facing writes on a suspended event read as not-found.
	evt, ok := m.events[g.EventID]
	if !ok || evt.IsSuspended {
		return nil, store.ErrNotFound
	}
	g.IsPaid = true
	return copyGuest(g), nil
}

func (m *memStore) ListGuests(_ context.Context, eventID uuid.UUID) ([]models.Guest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Guest
	for _, guestID := range m.names[eventID] {
		out = append(out, *m.guests[guestID])
	}
	return out, nil
}

func (m *memStore) ComputeAggregates(_ context.Context, eventID uuid.UUID) (models.Aggregates, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	evt, ok := m.events[eventID]
	if !ok {
		return models.Aggregates{}, store.ErrNotFound
	}
	var agg models.Aggregates
	for _, guestID := range m.names[eventID] {
		g := m.guests[guestID]
		agg.Adults += g.AdultCount
		agg.Kids += g.KidCount
		agg.Revenue += float64(g.AdultCount)*evt.PricePerAdult + float64(g.KidCount)*evt.PricePerChild
	}
	agg.Headcount = agg.Adults + agg.Kids
	return agg, nil
}

func (m *memStore) SetSuspended(_ context.Context, eventID uuid.UUID, suspended bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	evt, ok := m.events[eventID]
	if !ok {
		return store.ErrNotFound
	}
	evt.IsSuspended = suspended
	return nil
}

func (m *memStore) Stats(context.Context) (models.AdminStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	dayStart := m.clock.Truncate(24 * time.Hour)
	stats := models.AdminStats{
		TotalEvents: int64(len(m.events)),
		TotalGuests: int64(len(m.guests)),
	}
	for _, evt := range m.events {
		if !evt.CreatedAt.Before(dayStart) {
			stats.EventsToday++
		}
	}
	return stats, nil
}

func copyEvent(e *models.Event) *models.Event {
	c := *e
	return &c
}

func copyGuest(g *models.Guest) *models.Guest {
	c := *g
	return &c
}
