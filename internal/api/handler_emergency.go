package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"salamah-backend/internal/model"
	"salamah-backend/internal/notify"
)

type emergencyRequest struct {
	BusID    string `json:"bus_id" binding:"required"`
	Category string `json:"category" binding:"required"`
	Message  string `json:"message" binding:"required"`
	Location string `json:"location"`
}

// PostEmergency handles POST /api/notifications/emergency from a driver
// reporting a delay, accident or breakdown.
func (h *Handler) PostEmergency(c *gin.Context) {
	var req emergencyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing fields (bus_id, category, message)"})
		return
	}

	err := h.notifications.ReportEmergency(c.Request.Context(),
		req.BusID, model.Category(req.Category), req.Message, req.Location)

	var rateErr *notify.RateLimitError
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "Emergency notification sent successfully",
		})
	case errors.As(err, &rateErr):
		c.JSON(http.StatusTooManyRequests, gin.H{
			"error":               rateErr.Error(),
			"retry_after_minutes": rateErr.RetryAfterMinutes,
		})
	case errors.Is(err, notify.ErrInvalidCategory):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid category"})
	case errors.Is(err, notify.ErrMessageLength):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Message must be 10-200 chars"})
	case errors.Is(err, notify.ErrBusNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Bus not found"})
	case errors.Is(err, notify.ErrDeliveryFailed):
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send notification. Please try again."})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
