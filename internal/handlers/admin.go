package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RegisterAdminRoutes registers the moderation surface. The caller mounts it
// behind auth.AdminMiddleware; nothing here derives from the per-event
// capability model.
//
// POST   /admin/events/:id/suspend  gate an event off from guests
// DELETE /admin/events/:id/suspend  clear the flag
// GET    /admin/stats               service-wide totals
func RegisterAdminRoutes(r gin.IRoutes, st Store) {
	setSuspended := func(c *gin.Context, suspended bool) {
		id, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event id"})
			return
		}
		if err := st.SetSuspended(c.Request.Context(), id, suspended); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"id": id, "is_suspended": suspended})
	}

	r.POST("/admin/events/:id/suspend", func(c *gin.Context) {
		setSuspended(c, true)
	})
	r.DELETE("/admin/events/:id/suspend", func(c *gin.Context) {
		setSuspended(c, false)
	})

	r.GET("/admin/stats", func(c *gin.Context) {
		stats, err := st.Stats(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, stats)
	})
}
