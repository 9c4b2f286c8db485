package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/theinvitelink/rsvp-service/internal/models"
)

// rsvpRequest is the POST /events/:ref/rsvp payload. Counts are pointers so
// an explicit 0 is distinguishable from an omitted field.
type rsvpRequest struct {
	DisplayName string `json:"display_name"`
	AdultCount  *int   `json:"adult_count"`
	KidCount    *int   `json:"kid_count"`
}

// RegisterGuestRoutes registers the guest-facing roster endpoints.
//
// POST /events/:ref/rsvp           idempotent upsert keyed by trimmed name
// POST /rsvps/:id/confirm-payment  guest marks their transfer as sent
func RegisterGuestRoutes(r gin.IRoutes, st Store) {
	r.POST("/events/:ref/rsvp", func(c *gin.Context) {
		evt, err := st.ResolveEvent(c.Request.Context(), c.Param("ref"))
		if err != nil {
			respondError(c, err)
			return
		}

		// Suspended events refuse RSVPs outright, whoever is asking: the
		// roster surface is guest-facing and the gate reads as not-found.
		if evt.IsSuspended {
			c.JSON(http.StatusNotFound, gin.H{"error": "event or RSVP not found"})
			return
		}

		var req rsvpRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON payload"})
			return
		}
		if req.AdultCount == nil || req.KidCount == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "adult_count and kid_count required"})
			return
		}

		guest, created, err := st.SubmitRSVP(c.Request.Context(), evt.ID,
			req.DisplayName, *req.AdultCount, *req.KidCount)
		if err != nil {
			respondError(c, err)
			return
		}

		// 201 for a new RSVP, 200 for an update to an existing one, so the
		// client can branch its confirmation UI.
		status := http.StatusCreated
		if !created {
			status = http.StatusOK
		}
		c.JSON(status, rsvpResponse{RSVP: *guest, Created: created})
	})

	r.POST("/rsvps/:id/confirm-payment", func(c *gin.Context) {
		rsvpID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid RSVP id"})
			return
		}
		guest, err := st.ConfirmPayment(c.Request.Context(), rsvpID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"rsvp": guest})
	})
}

// rsvpResponse is returned by the RSVP upsert. Created distinguishes a first
// submission from an in-place update.
type rsvpResponse struct {
	RSVP    models.Guest `json:"rsvp"`
	Created bool         `json:"created"`
}
