package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"salamah-backend/internal/model"
)

// listLimit caps how many dispatch records a receiver gets per request.
const listLimit = 20

// GetNotifications handles GET /api/notifications/:receiver_role/:receiver_id
// and returns the newest dispatches addressed to the receiver, joined with
// their notification content.
func (h *Handler) GetNotifications(c *gin.Context) {
	role := model.ReceiverRole(c.Param("receiver_role"))
	if role != model.RoleAdmin && role != model.RoleParent {
		c.JSON(http.StatusBadRequest, gin.H{"error": "receiver_role must be admin or parent"})
		return
	}

	views, err := h.store.ListDispatches(c.Request.Context(), c.Param("receiver_id"), listLimit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch notifications"})
		return
	}
	c.JSON(http.StatusOK, views)
}

// MarkRead handles PUT /api/notifications/mark-read/:dispatch_id/:receiver_id.
// The operation is idempotent; a pair that matches nothing still succeeds.
func (h *Handler) MarkRead(c *gin.Context) {
	err := h.store.MarkRead(c.Request.Context(), c.Param("dispatch_id"), c.Param("receiver_id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to mark notification as read"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Notification marked as read"})
}
