package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"salamah-backend/internal/mw"
)

// NewRouter creates and configures a new Gin router.
func NewRouter(h *Handler) *gin.Engine {
	r := gin.Default()

	// Rate limit: 10 requests per second with a burst of 5, per client IP.
	rateLimiter := mw.RateLimiter(rate.Limit(10), 5)

	// Short response cache for the read-mostly absence listing. Notification
	// listings are never cached so read status stays fresh.
	cacheStore := cache.New(30*time.Second, 5*time.Minute)
	caching := mw.Cache(cacheStore, 30*time.Second)

	api := r.Group("/api")
	api.Use(rateLimiter)
	{
		// Attendance scans from bus devices.
		api.POST("/scan", h.PostScan)

		// Notifications.
		api.POST("/notifications/emergency", h.PostEmergency)
		api.GET("/notifications/:receiver_role/:receiver_id", h.GetNotifications)
		api.PUT("/notifications/mark-read/:dispatch_id/:receiver_id", h.MarkRead)

		// Daily absence registry.
		api.POST("/absences", h.PostAbsence)
		api.GET("/absences/today", caching, h.GetTodayAbsences)

		// Web push subscriptions for the dashboard.
		api.GET("/subscriptions", h.GetSubscription)
		api.PUT("/subscriptions", h.PutSubscription)
		api.DELETE("/subscriptions", h.DeleteSubscription)
		api.GET("/vapid_public_key", h.GetVAPIDPublicKey)
	}

	return r
}
