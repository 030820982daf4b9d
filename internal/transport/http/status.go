package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/nicqsizaccent/wonderfulkillers/internal/core"
	"github.com/nicqsizaccent/wonderfulkillers/internal/proto"
)

// StatusHandlers provides the read-only operational API that launcher
// deployments poll.
type StatusHandlers struct {
	hub     *core.Hub
	started time.Time
	log     *zerolog.Logger
}

// NewStatusHandlers creates a new status handlers instance.
func NewStatusHandlers(hub *core.Hub, logger *zerolog.Logger) *StatusHandlers {
	return &StatusHandlers{
		hub:     hub,
		started: time.Now(),
		log:     logger,
	}
}

// StatusResponse represents the status response body.
type StatusResponse struct {
	UptimeSeconds int64             `json:"uptimeSeconds"`
	Connections   int               `json:"connections"`
	Identified    int               `json:"identified"`
	VoiceUsers    []proto.VoiceUser `json:"voiceUsers"`
}

// ErrorResponse represents an error response body.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Status reports live hub state.
// GET /api/status
func (h *StatusHandlers) Status(c *gin.Context) {
	stats, err := h.hub.Stats(c.Request.Context())
	if err != nil {
		h.log.Warn().Err(err).Msg("failed to query hub stats")
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "relay unavailable"})
		return
	}

	users := make([]proto.VoiceUser, 0, len(stats.VoiceUsers))
	for _, participant := range stats.VoiceUsers {
		users = append(users, voiceUserFromParticipant(participant))
	}

	c.JSON(http.StatusOK, StatusResponse{
		UptimeSeconds: int64(time.Since(h.started).Seconds()),
		Connections:   stats.Clients,
		Identified:    stats.Identified,
		VoiceUsers:    users,
	})
}
