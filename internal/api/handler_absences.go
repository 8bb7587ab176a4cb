package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"salamah-backend/internal/absence"
)

type absenceRequest struct {
	StudentID string `json:"student_id" binding:"required"`
	BusID     string `json:"bus_id" binding:"required"`
	ParentID  string `json:"parent_id" binding:"required"`
}

// PostAbsence handles POST /api/absences. A parent may only report their
// own child absent, and only once per day.
func (h *Handler) PostAbsence(c *gin.Context) {
	var req absenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing fields (student_id, bus_id, parent_id)"})
		return
	}

	student, err := h.store.FindStudent(c.Request.Context(), req.StudentID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Student not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	if student.Parent.ParentID != req.ParentID {
		c.JSON(http.StatusForbidden, gin.H{"error": "You can only report absences for your own children"})
		return
	}

	if err := h.absences.MarkAbsent(req.StudentID); errors.Is(err, absence.ErrAlreadyMarked) {
		c.JSON(http.StatusConflict, gin.H{"error": "This student is already marked absent for today"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": fmt.Sprintf("Absence reported for %s", student.Name)})
}

// GetTodayAbsences handles GET /api/absences/today, returning the student
// ids marked absent for the current local day.
func (h *Handler) GetTodayAbsences(c *gin.Context) {
	c.JSON(http.StatusOK, h.absences.Today())
}
