package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/theinvitelink/rsvp-service/internal/auth"
	"github.com/theinvitelink/rsvp-service/internal/models"
	"github.com/theinvitelink/rsvp-service/internal/store"
)

// parseRFC3339 parses an RFC3339 timestamp and normalizes it to UTC.
func parseRFC3339(ts string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

// createEventRequest is the POST /events payload.
type createEventRequest struct {
	Title               string  `json:"title"`
	Date                string  `json:"date"`
	Location            string  `json:"location"`
	Description         string  `json:"description"`
	Theme               string  `json:"theme"`
	PricePerAdult       float64 `json:"price_per_adult"`
	PricePerChild       float64 `json:"price_per_child"`
	PaymentInstructions string  `json:"payment_instructions"`
	BannerReference     string  `json:"banner_reference"`
}

// updateEventRequest is the PATCH payload; nil fields are left unchanged.
type updateEventRequest struct {
	Title               *string  `json:"title"`
	Date                *string  `json:"date"`
	Location            *string  `json:"location"`
	Description         *string  `json:"description"`
	Theme               *string  `json:"theme"`
	PricePerAdult       *float64 `json:"price_per_adult"`
	PricePerChild       *float64 `json:"price_per_child"`
	PaymentInstructions *string  `json:"payment_instructions"`
	BannerReference     *string  `json:"banner_reference"`
}

// RegisterEventRoutes registers the event lifecycle endpoints.
//
// POST   /events            create; response carries the management key, once
// GET    /events/:ref       public view by id or short code
// PATCH  /events/:ref       organizer-only edit
// DELETE /events/:ref       organizer-only removal (roster goes with it)
// POST   /events/:ref/claim attach the caller's account as owner
func RegisterEventRoutes(r gin.IRoutes, st Store) {
	r.POST("/events", func(c *gin.Context) {
		var req createEventRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON payload"})
			return
		}
		if req.Date == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "date required"})
			return
		}
		date, err := parseRFC3339(req.Date)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "date must be RFC3339"})
			return
		}

		evt, err := st.CreateEvent(c.Request.Context(), store.CreateEventParams{
			Title:               req.Title,
			Date:                date,
			Location:            req.Location,
			Description:         req.Description,
			Theme:               models.Theme(req.Theme),
			PricePerAdult:       req.PricePerAdult,
			PricePerChild:       req.PricePerChild,
			PaymentInstructions: req.PaymentInstructions,
			BannerReference:     req.BannerReference,
			OwnerAccount:        auth.AccountID(c),
		})
		if err != nil {
			respondError(c, err)
			return
		}

		// The single place the management key is returned. The client shows
		// it to the creator and keeps it in the device-local roster.
		c.JSON(http.StatusCreated, gin.H{"event": evt})
	})

	r.GET("/events/:ref", func(c *gin.Context) {
		evt, err := st.ResolveEvent(c.Request.Context(), c.Param("ref"))
		if err != nil {
			respondError(c, err)
			return
		}

		role := auth.Authorize(evt, auth.ManagementKey(c), auth.AccountID(c))

		// Suspension reads as not-found to guests; capability holders still
		// see the page (and the flag) so they know what happened.
		if evt.IsSuspended && role != auth.RoleOrganizer {
			c.JSON(http.StatusNotFound, gin.H{"error": "event or RSVP not found"})
			return
		}

		resp := gin.H{"event": evt.Public(), "role": role}
		if role == auth.RoleOrganizer {
			guests, err := st.ListGuests(c.Request.Context(), evt.ID)
			if err != nil {
				respondError(c, err)
				return
			}
			resp["guests"] = guests
		}
		c.JSON(http.StatusOK, resp)
	})

	r.PATCH("/events/:ref", func(c *gin.Context) {
		evt, ok := resolveOrganizer(c, st)
		if !ok {
			return
		}

		var req updateEventRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON payload"})
			return
		}

		// Overlay requested changes on the current record.
		params := store.UpdateEventParams{
			Title:               evt.Title,
			Date:                evt.Date,
			Location:            evt.Location,
			Description:         evt.Description,
			Theme:               evt.Theme,
			PricePerAdult:       evt.PricePerAdult,
			PricePerChild:       evt.PricePerChild,
			PaymentInstructions: evt.PaymentInstructions,
			BannerReference:     evt.BannerReference,
		}
		if req.Title != nil {
			params.Title = *req.Title
		}
		if req.Date != nil {
			date, err := parseRFC3339(*req.Date)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "date must be RFC3339"})
				return
			}
			params.Date = date
		}
		if req.Location != nil {
			params.Location = *req.Location
		}
		if req.Description != nil {
			params.Description = *req.Description
		}
		if req.Theme != nil {
			params.Theme = models.Theme(*req.Theme)
		}
		if req.PricePerAdult != nil {
			params.PricePerAdult = *req.PricePerAdult
		}
		if req.PricePerChild != nil {
			params.PricePerChild = *req.PricePerChild
		}
		if req.PaymentInstructions != nil {
			params.PaymentInstructions = *req.PaymentInstructions
		}
		if req.BannerReference != nil {
			params.BannerReference = *req.BannerReference
		}

		updated, err := st.UpdateEvent(c.Request.Context(), evt.ID, params)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"event": updated.Public()})
	})

	r.DELETE("/events/:ref", func(c *gin.Context) {
		evt, ok := resolveOrganizer(c, st)
		if !ok {
			return
		}
		if err := st.DeleteEvent(c.Request.Context(), evt.ID); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"deleted": true})
	})

	// Claiming upgrades key-only ownership to account ownership: the caller
	// must prove both the capability (key) and an authenticated identity.
	r.POST("/events/:ref/claim", func(c *gin.Context) {
		accountID := auth.AccountID(c)
		if accountID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		evt, ok := resolveOrganizer(c, st)
		if !ok {
			return
		}
		claimed, err := st.ClaimEvent(c.Request.Context(), evt.ID, accountID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"event": claimed.Public()})
	})
}

// resolveOrganizer resolves the referenced event and requires organizer
// privilege. On failure it writes the response and returns ok=false.
func resolveOrganizer(c *gin.Context, st Store) (*models.Event, bool) {
	evt, err := st.ResolveEvent(c.Request.Context(), c.Param("ref"))
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	if auth.Authorize(evt, auth.ManagementKey(c), auth.AccountID(c)) != auth.RoleOrganizer {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return nil, false
	}
	return evt, true
}
