package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"salamah-backend/internal/attendance"
)

type scanRequest struct {
	StudentID string `json:"student_id" binding:"required"`
	BusID     string `json:"bus_id" binding:"required"`
}

// PostScan handles the POST /api/scan request from a bus scanning device.
// The device always gets a definitive status back: boarded, dropped off,
// a suppression message, or a hard rejection.
func (h *Handler) PostScan(c *gin.Context) {
	var req scanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing fields (student_id, bus_id)"})
		return
	}

	res, err := h.scans.RecordScan(c.Request.Context(), req.StudentID, req.BusID)
	switch {
	case errors.Is(err, attendance.ErrStudentNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Student not found"})
		return
	case errors.Is(err, attendance.ErrBusNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Bus not found"})
		return
	case errors.Is(err, attendance.ErrNotAssigned):
		c.JSON(http.StatusForbidden, gin.H{"error": "Student not assigned to this bus"})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  res.Status,
		"message": res.Message,
	})
}
