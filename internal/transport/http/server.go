package http

import (
	stdhttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/nicqsizaccent/wonderfulkillers/internal/config"
	"github.com/nicqsizaccent/wonderfulkillers/internal/core"
)

// NewServer builds the HTTP server carrying the websocket relay endpoint and
// the small operational API.
func NewServer(hub *core.Hub, cfg config.Config, logger *zerolog.Logger) *stdhttp.Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery(), LoggerMiddleware(logger))

	router.GET("/healthz", healthHandler)

	status := NewStatusHandlers(hub, logger)
	router.GET("/api/status", status.Status)

	ws := NewWSHandler(hub, cfg.ClientBuffer, cfg.MessageRateLimit, logger)
	router.GET("/ws", gin.WrapH(ws))

	return &stdhttp.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}

func healthHandler(c *gin.Context) {
	c.String(stdhttp.StatusOK, "ok")
}
