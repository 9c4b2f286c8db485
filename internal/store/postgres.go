package store

import (
	"context"
	_ "embed"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/theinvitelink/rsvp-service/internal/models"
)

// schemaSQL is embedded so the service can self-bootstrap its database schema.
//
//go:embed schema.sql
var schemaSQL string

// queryTimeout bounds every store call: no operation blocks indefinitely,
// and a timed-out call surfaces ErrUnavailable for the caller to retry.
const queryTimeout = 5 * time.Second

// PostgresStore is the durable persistence layer for events and guest
// rosters. All concurrency guarantees come from the database's constraints;
// the store holds no in-process state beyond the pool.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a connection pool and fails fast if DB is unreachable.
func NewPostgresStore(dbURL string) (*PostgresStore, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return &PostgresStore{pool: pool}, nil
}

// EnsureSchema applies schema.sql. Safe to run multiple times.
func (p *PostgresStore) EnsureSchema() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_, err := p.pool.Exec(ctx, schemaSQL)
	return err
}

// Ping is used by the readiness endpoint to validate DB connectivity.
func (p *PostgresStore) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

// Close shuts down the connection pool.
func (p *PostgresStore) Close() {
	p.pool.Close()
}

const eventColumns = `id, short_code, management_key, owner_account, title, date, location,
	description, theme, price_per_adult, price_per_child, payment_instructions,
	banner_reference, is_suspended, created_at`

// rowScanner is satisfied by pgx.Row and pgx.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanEvent reads one event row in eventColumns order. UUID columns are
// scanned as text and parsed, keeping the model on google/uuid types.
func scanEvent(row rowScanner) (*models.Event, error) {
	var (
		e         models.Event
		idStr     string
		shortCode *string
		mgmtKey   string
		owner     *string
	)
	err := row.Scan(
		&idStr, &shortCode, &mgmtKey, &owner, &e.Title, &e.Date, &e.Location,
		&e.Description, &e.Theme, &e.PricePerAdult, &e.PricePerChild,
		&e.PaymentInstructions, &e.BannerReference, &e.IsSuspended, &e.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	e.ID, err = uuid.Parse(idStr)
	if err != nil {
		return nil, err
	}
	e.ManagementKey = mgmtKey
	if shortCode != nil {
		e.ShortCode = *shortCode
	}
	if owner != nil {
		e.OwnerAccount = *owner
	}
	return &e, nil
}

func scanGuest(row rowScanner) (*models.Guest, error) {
	var (
		g          models.Guest
		idStr      string
		eventIDStr string
	)
	err := row.Scan(&idStr, &eventIDStr, &g.DisplayName, &g.AdultCount,
		&g.KidCount, &g.IsPaid, &g.CreatedAt)
	if err != nil {
		return nil, err
	}
	if g.ID, err = uuid.Parse(idStr); err != nil {
		return nil, err
	}
	if g.EventID, err = uuid.Parse(eventIDStr); err != nil {
		return nil, err
	}
	return &g, nil
}

// CreateEventParams are the creator-supplied fields of a new event. ID,
// management key and created_at are assigned by the database; the short code
// is generated here.
type CreateEventParams struct {
	Title               string
	Date                time.Time
	Location            string
	Description         string
	Theme               models.Theme
	PricePerAdult       float64
	PricePerChild       float64
	PaymentInstructions string
	BannerReference     string
	OwnerAccount        string // empty for anonymous creators
}

func (p CreateEventParams) validate() error {
	if strings.TrimSpace(p.Title) == "" {
		return fmt.Errorf("%w: title required", ErrValidation)
	}
	if p.Date.IsZero() {
		return fmt.Errorf("%w: date required", ErrValidation)
	}
	if strings.TrimSpace(p.Location) == "" {
		return fmt.Errorf("%w: location required", ErrValidation)
	}
	if p.PricePerAdult < 0 || p.PricePerChild < 0 {
		return fmt.Errorf("%w: prices must be non-negative", ErrValidation)
	}
	if p.Theme != "" && !models.ValidTheme(p.Theme) {
		return fmt.Errorf("%w: unknown theme %q", ErrValidation, p.Theme)
	}
	return nil
}

// CreateEvent inserts a new event and returns the full record, management
// key included: this is the one response that may carry the key.
//
// The short code is random; on the rare collision the insert is retried once
// with a fresh code.
func (p *PostgresStore) CreateEvent(ctx context.Context, params CreateEventParams) (*models.Event, error) {
	if err := params.validate(); err != nil {
		return nil, err
	}
	theme := params.Theme
	if theme == "" {
		theme = models.ThemeMinimal
	}
	var owner *string
	if params.OwnerAccount != "" {
		owner = &params.OwnerAccount
	}

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		row := p.pool.QueryRow(ctx, `
			INSERT INTO events (short_code, owner_account, title, date, location,
				description, theme, price_per_adult, price_per_child,
				payment_instructions, banner_reference)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
			RETURNING `+eventColumns,
			models.NewShortCode(), owner, params.Title, params.Date.UTC(),
			params.Location, params.Description, theme, params.PricePerAdult,
			params.PricePerChild, params.PaymentInstructions, params.BannerReference,
		)
		evt, err := scanEvent(row)
		if err == nil {
			return evt, nil
		}
		lastErr = mapPgError(err)
		if lastErr != ErrConflict {
			break
		}
	}
	return nil, lastErr
}

// ResolveEvent maps a public reference to exactly one event. Canonical-id
// shaped references are looked up by id only; everything else by short code.
// Suspension is not applied here: callers decide per privilege level.
func (p *PostgresStore) ResolveEvent(ctx context.Context, ref string) (*models.Event, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, fmt.Errorf("%w: empty event reference", ErrValidation)
	}

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	column := "short_code"
	if models.IsCanonicalID(ref) {
		column = "id"
	}
	row := p.pool.QueryRow(ctx,
		`SELECT `+eventColumns+` FROM events WHERE `+column+` = $1`, ref)
	evt, err := scanEvent(row)
	if err != nil {
		return nil, mapPgError(err)
	}
	return evt, nil
}

// GetEvent looks an event up by canonical id.
func (p *PostgresStore) GetEvent(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	row := p.pool.QueryRow(ctx,
		`SELECT `+eventColumns+` FROM events WHERE id = $1`, id.String())
	evt, err := scanEvent(row)
	if err != nil {
		return nil, mapPgError(err)
	}
	return evt, nil
}

// UpdateEventParams carries the full mutable field set; handlers load the
// current event and overlay the requested changes before calling UpdateEvent.
type UpdateEventParams struct {
	Title               string
	Date                time.Time
	Location            string
	Description         string
	Theme               models.Theme
	PricePerAdult       float64
	PricePerChild       float64
	PaymentInstructions string
	BannerReference     string
}

// UpdateEvent overwrites the mutable fields of an event.
func (p *PostgresStore) UpdateEvent(ctx context.Context, id uuid.UUID, params UpdateEventParams) (*models.Event, error) {
	if strings.TrimSpace(params.Title) == "" || strings.TrimSpace(params.Location) == "" {
		return nil, fmt.Errorf("%w: title and location required", ErrValidation)
	}
	if params.PricePerAdult < 0 || params.PricePerChild < 0 {
		return nil, fmt.Errorf("%w: prices must be non-negative", ErrValidation)
	}
	if !models.ValidTheme(params.Theme) {
		return nil, fmt.Errorf("%w: unknown theme %q", ErrValidation, params.Theme)
	}

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	row := p.pool.QueryRow(ctx, `
		UPDATE events
		SET title=$2, date=$3, location=$4, description=$5, theme=$6,
			price_per_adult=$7, price_per_child=$8, payment_instructions=$9,
			banner_reference=$10
		WHERE id = $1
		RETURNING `+eventColumns,
		id.String(), params.Title, params.Date.UTC(), params.Location,
		params.Description, params.Theme, params.PricePerAdult,
		params.PricePerChild, params.PaymentInstructions, params.BannerReference,
	)
	evt, err := scanEvent(row)
	if err != nil {
		return nil, mapPgError(err)
	}
	return evt, nil
}

// DeleteEvent removes an event; guests go with it via ON DELETE CASCADE.
func (p *PostgresStore) DeleteEvent(ctx context.Context, id uuid.UUID) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	tag, err := p.pool.Exec(ctx, `DELETE FROM events WHERE id = $1`, id.String())
	if err != nil {
		return mapPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ClaimEvent attaches an owner account to an event, upgrading key-only
// ownership to account ownership. Claiming is idempotent for the same
// account and refused once a different account owns the event.
func (p *PostgresStore) ClaimEvent(ctx context.Context, id uuid.UUID, accountID string) (*models.Event, error) {
	if strings.TrimSpace(accountID) == "" {
		return nil, fmt.Errorf("%w: account id required", ErrValidation)
	}

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	row := p.pool.QueryRow(ctx, `
		UPDATE events SET owner_account = $2
		WHERE id = $1 AND (owner_account IS NULL OR owner_account = $2)
		RETURNING `+eventColumns, id.String(), accountID)
	evt, err := scanEvent(row)
	if err == nil {
		return evt, nil
	}
	if mapped := mapPgError(err); mapped != ErrNotFound {
		return nil, mapped
	}

	// No row updated: missing event vs owned by someone else.
	var one int
	if err := p.pool.QueryRow(ctx, `SELECT 1 FROM events WHERE id = $1`, id.String()).Scan(&one); err != nil {
		return nil, mapPgError(err)
	}
	return nil, fmt.Errorf("%w: event already claimed by another account", ErrConflict)
}

// ListEventsByOwner returns summaries of the account's events, newest first.
// Management keys are never included: the account itself is the capability.
func (p *PostgresStore) ListEventsByOwner(ctx context.Context, accountID string) ([]models.EventSummary, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	rows, err := p.pool.Query(ctx, `
		SELECT id, title, date, location, created_at
		FROM events
		WHERE owner_account = $1
		ORDER BY created_at DESC`, accountID)
	if err != nil {
		return nil, mapPgError(err)
	}
	defer rows.Close()

	var out []models.EventSummary
	for rows.Next() {
		var (
			s     models.EventSummary
			idStr string
		)
		if err := rows.Scan(&idStr, &s.Title, &s.Date, &s.Location, &s.CreatedAt); err != nil {
			return nil, mapPgError(err)
		}
		if s.ID, err = uuid.Parse(idStr); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, mapPgError(err)
	}
	return out, nil
}

const guestColumns = `id, event_id, display_name, adult_count, kid_count, is_paid, created_at`

// SubmitRSVP upserts a guest's RSVP keyed by (event, trimmed display name).
//
// The find-or-create is a single conditional write: the unique index on
// (event_id, display_name) makes concurrent double-submission converge on one
// row. Counts are overwritten, payment state is preserved. The write is
// retried once should the constraint still surface a conflict.
func (p *PostgresStore) SubmitRSVP(ctx context.Context, eventID uuid.UUID, displayName string, adults, kids int) (*models.Guest, bool, error) {
	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		return nil, false, fmt.Errorf("%w: display name required", ErrValidation)
	}
	if adults < 0 || kids < 0 {
		return nil, false, fmt.Errorf("%w: counts must be non-negative", ErrValidation)
	}

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	// Suspended events refuse the whole roster surface; guests see NotFound.
	var suspended bool
	err := p.pool.QueryRow(ctx,
		`SELECT is_suspended FROM events WHERE id = $1`, eventID.String()).Scan(&suspended)
	if err != nil {
		return nil, false, mapPgError(err)
	}
	if suspended {
		return nil, false, ErrNotFound
	}

	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		row := p.pool.QueryRow(ctx, `
			INSERT INTO guests (event_id, display_name, adult_count, kid_count)
			VALUES ($1,$2,$3,$4)
			ON CONFLICT (event_id, display_name)
			DO UPDATE SET adult_count = EXCLUDED.adult_count,
			              kid_count  = EXCLUDED.kid_count
			RETURNING `+guestColumns+`, (xmax = 0) AS inserted`,
			eventID.String(), displayName, adults, kids)

		var (
			g          models.Guest
			idStr      string
			eventIDStr string
			inserted   bool
		)
		err := row.Scan(&idStr, &eventIDStr, &g.DisplayName, &g.AdultCount,
			&g.KidCount, &g.IsPaid, &g.CreatedAt, &inserted)
		if err == nil {
			if g.ID, err = uuid.Parse(idStr); err != nil {
				return nil, false, err
			}
			if g.EventID, err = uuid.Parse(eventIDStr); err != nil {
				return nil, false, err
			}
			return &g, inserted, nil
		}
		lastErr = mapPgError(err)
		if lastErr != ErrConflict {
			break
		}
	}
	return nil, false, lastErr
}

// ConfirmPayment marks an RSVP paid. There is no guest-facing unconfirm.
// Like every other guest-facing write, it is refused when the owning event
// is suspended; the missing-row case reads as not-found either way.
func (p *PostgresStore) ConfirmPayment(ctx context.Context, rsvpID uuid.UUID) (*models.Guest, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	row := p.pool.QueryRow(ctx, `
		UPDATE guests SET is_paid = TRUE
		FROM events
		WHERE guests.id = $1
		  AND events.id = guests.event_id
		  AND NOT events.is_suspended
		RETURNING guests.id, guests.event_id, guests.display_name,
		          guests.adult_count, guests.kid_count, guests.is_paid,
		          guests.created_at`, rsvpID.String())
	g, err := scanGuest(row)
	if err != nil {
		return nil, mapPgError(err)
	}
	return g, nil
}

// ListGuests returns an event's roster in RSVP order.
func (p *PostgresStore) ListGuests(ctx context.Context, eventID uuid.UUID) ([]models.Guest, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	rows, err := p.pool.Query(ctx, `
		SELECT `+guestColumns+` FROM guests
		WHERE event_id = $1
		ORDER BY created_at ASC`, eventID.String())
	if err != nil {
		return nil, mapPgError(err)
	}
	defer rows.Close()

	var out []models.Guest
	for rows.Next() {
		g, err := scanGuest(rows)
		if err != nil {
			return nil, mapPgError(err)
		}
		out = append(out, *g)
	}
	if err := rows.Err(); err != nil {
		return nil, mapPgError(err)
	}
	return out, nil
}

// ComputeAggregates derives headcount and expected revenue from the current
// roster rows in one query. Nothing is cached, so totals cannot drift after
// a resubmission changes a guest's counts.
func (p *PostgresStore) ComputeAggregates(ctx context.Context, eventID uuid.UUID) (models.Aggregates, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var agg models.Aggregates
	err := p.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(g.adult_count), 0),
		       COALESCE(SUM(g.kid_count), 0),
		       COALESCE(SUM(g.adult_count * e.price_per_adult
		                  + g.kid_count   * e.price_per_child), 0)
		FROM events e
		LEFT JOIN guests g ON g.event_id = e.id
		WHERE e.id = $1
		GROUP BY e.id`, eventID.String(),
	).Scan(&agg.Adults, &agg.Kids, &agg.Revenue)
	if err != nil {
		return models.Aggregates{}, mapPgError(err)
	}
	agg.Headcount = agg.Adults + agg.Kids
	return agg, nil
}

// SetSuspended flips the moderation flag. This sits outside the capability
// model: only the administrative surface calls it.
func (p *PostgresStore) SetSuspended(ctx context.Context, eventID uuid.UUID, suspended bool) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	tag, err := p.pool.Exec(ctx,
		`UPDATE events SET is_suspended = $2 WHERE id = $1`,
		eventID.String(), suspended)
	if err != nil {
		return mapPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Stats returns the moderation dashboard totals.
func (p *PostgresStore) Stats(ctx context.Context) (models.AdminStats, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var s models.AdminStats
	err := p.pool.QueryRow(ctx, `
		SELECT (SELECT COUNT(*) FROM events),
		       (SELECT COUNT(*) FROM guests),
		       (SELECT COUNT(*) FROM events WHERE created_at >= date_trunc('day', now()))
	`).Scan(&s.TotalEvents, &s.TotalGuests, &s.EventsToday)
	if err != nil {
		return models.AdminStats{}, mapPgError(err)
	}
	return s, nil
}

// DeleteExpired removes events whose date is before cutoff, cascading to
// their guests. Used by the retention sweeper.
func (p *PostgresStore) DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	tag, err := p.pool.Exec(ctx, `DELETE FROM events WHERE date < $1`, cutoff.UTC())
	if err != nil {
		return 0, mapPgError(err)
	}
	return tag.RowsAffected(), nil
}
