package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"salamah-backend/internal/model"
)

type putSubscriptionRequest struct {
	Endpoint     string `json:"endpoint" binding:"required"`
	P256DH       string `json:"p256dh" binding:"required"`
	Auth         string `json:"auth" binding:"required"`
	ReceiverID   string `json:"receiver_id" binding:"required"`
	ReceiverRole string `json:"receiver_role" binding:"required"`
}

// PutSubscription registers or replaces a browser push subscription for a
// dashboard user.
func (h *Handler) PutSubscription(c *gin.Context) {
	var req putSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	role := model.ReceiverRole(req.ReceiverRole)
	if role != model.RoleAdmin && role != model.RoleParent {
		c.JSON(http.StatusBadRequest, gin.H{"error": "receiver_role must be admin or parent"})
		return
	}

	subscription := model.PushSubscription{
		Endpoint:     req.Endpoint,
		P256DH:       req.P256DH,
		Auth:         req.Auth,
		ReceiverID:   req.ReceiverID,
		ReceiverRole: role,
	}

	err := h.store.DB().Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "endpoint"}},
		DoUpdates: clause.AssignmentColumns([]string{"p256dh", "auth", "receiver_id", "receiver_role"}),
	}).Create(&subscription).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Status(http.StatusCreated)
}

type deleteSubscriptionRequest struct {
	Endpoint string `json:"endpoint" binding:"required"`
}

// DeleteSubscription removes a browser push subscription.
func (h *Handler) DeleteSubscription(c *gin.Context) {
	var req deleteSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.store.DeleteSubscription(c.Request.Context(), req.Endpoint); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Status(http.StatusNoContent)
}

// GetSubscription returns the registration of a known endpoint.
func (h *Handler) GetSubscription(c *gin.Context) {
	endpoint := c.Query("endpoint")
	if endpoint == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "endpoint is required"})
		return
	}

	var subscription model.PushSubscription
	err := h.store.DB().First(&subscription, "endpoint = ?", endpoint).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "subscription not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"receiver_id":   subscription.ReceiverID,
		"receiver_role": subscription.ReceiverRole,
	})
}
