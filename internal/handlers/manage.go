package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/theinvitelink/rsvp-service/internal/auth"
	"github.com/theinvitelink/rsvp-service/internal/models"
	"github.com/theinvitelink/rsvp-service/internal/reconcile"
)

// retentionWindow mirrors the published data-retention promise: an event and
// its roster are deleted this long after the event date.
const retentionWindow = 30 * 24 * time.Hour

// myEventsRequest carries the device-local roster the client accumulated
// while its user was anonymous.
type myEventsRequest struct {
	LocalEvents []models.EventSummary `json:"local_events"`
}

// RegisterManageRoutes registers the organizer dashboard and the event-list
// reconciliation endpoint.
//
// GET  /events/:ref/manage  full dashboard: event, roster, aggregates
// POST /my-events           merge local roster with the account's events
func RegisterManageRoutes(r gin.IRoutes, st Store) {
	r.GET("/events/:ref/manage", func(c *gin.Context) {
		evt, ok := resolveOrganizer(c, st)
		if !ok {
			return
		}

		guests, err := st.ListGuests(c.Request.Context(), evt.ID)
		if err != nil {
			respondError(c, err)
			return
		}
		agg, err := st.ComputeAggregates(c.Request.Context(), evt.ID)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"event":      evt.Public(),
			"guests":     guests,
			"aggregates": agg,
			// The client surfaces this as the auto-delete warning.
			"retention_deadline": evt.Date.Add(retentionWindow).UTC(),
		})
	})

	r.POST("/my-events", func(c *gin.Context) {
		var req myEventsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON payload"})
			return
		}

		var remote []models.EventSummary
		if accountID := auth.AccountID(c); accountID != "" {
			var err error
			remote, err = st.ListEventsByOwner(c.Request.Context(), accountID)
			if err != nil {
				// A failed fetch must not read as "the account owns nothing":
				// merging against an empty remote list would hide owned
				// events. Tell the client to retry or fall back to its
				// local list.
				respondError(c, err)
				return
			}
		}

		merged := reconcile.MergeEventLists(req.LocalEvents, remote)
		c.JSON(http.StatusOK, gin.H{"events": merged})
	})
}
