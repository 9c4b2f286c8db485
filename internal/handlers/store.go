package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/theinvitelink/rsvp-service/internal/models"
	"github.com/theinvitelink/rsvp-service/internal/store"
)

// Store is the persistence surface the handlers need. *store.PostgresStore
// satisfies it; tests substitute an in-memory fake.
type Store interface {
	Ping(ctx context.Context) error

	CreateEvent(ctx context.Context, params store.CreateEventParams) (*models.Event, error)
	ResolveEvent(ctx context.Context, ref string) (*models.Event, error)
	GetEvent(ctx context.Context, id uuid.UUID) (*models.Event, error)
	UpdateEvent(ctx context.Context, id uuid.UUID, params store.UpdateEventParams) (*models.Event, error)
	DeleteEvent(ctx context.Context, id uuid.UUID) error
	ClaimEvent(ctx context.Context, id uuid.UUID, accountID string) (*models.Event, error)
	ListEventsByOwner(ctx context.Context, accountID string) ([]models.EventSummary, error)

	SubmitRSVP(ctx context.Context, eventID uuid.UUID, displayName string, adults, kids int) (*models.Guest, bool, error)
	ConfirmPayment(ctx context.Context, rsvpID uuid.UUID) (*models.Guest, error)
	ListGuests(ctx context.Context, eventID uuid.UUID) ([]models.Guest, error)
	ComputeAggregates(ctx context.Context, eventID uuid.UUID) (models.Aggregates, error)

	SetSuspended(ctx context.Context, eventID uuid.UUID, suspended bool) error
	Stats(ctx context.Context) (models.AdminStats, error)
}

// respondError maps the store error taxonomy onto HTTP statuses. Validation
// messages are passed through (they are written for the caller); the rest
// get fixed texts so internals never leak.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, store.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, store.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "event or RSVP not found"})
	case errors.Is(err, store.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": "conflicting update, please retry"})
	case errors.Is(err, store.ErrUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "temporarily unavailable, please retry"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
