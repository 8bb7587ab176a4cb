package api

import (
	"github.com/SherClockHolmes/webpush-go"

	"salamah-backend/internal/absence"
	"salamah-backend/internal/attendance"
	"salamah-backend/internal/notify"
	"salamah-backend/internal/store"
)

// Handler holds shared dependencies for API handlers.
type Handler struct {
	store         store.Store
	scans         *attendance.Service
	notifications *notify.Service
	absences      *absence.Registry
	webpush       *webpush.Options
}

// NewHandler creates a new API handler.
func NewHandler(s store.Store, scans *attendance.Service, notifications *notify.Service, absences *absence.Registry, webpushOptions *webpush.Options) *Handler {
	return &Handler{
		store:         s,
		scans:         scans,
		notifications: notifications,
		absences:      absences,
		webpush:       webpushOptions,
	}
}
