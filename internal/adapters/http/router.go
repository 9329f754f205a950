package http

import (
	"context"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/jsflux/encore/internal/adapters/janus"
	"github.com/jsflux/encore/internal/adapters/signal"
	"github.com/jsflux/encore/internal/app"
	"github.com/jsflux/encore/internal/config"
	"github.com/jsflux/encore/internal/monitoring"
	"github.com/jsflux/encore/internal/store"
)

// API groups the gateway's dependencies for the request/response handlers.
type API struct {
	Store    store.Store
	Relay    *app.Relay
	Playback *app.Playback
	Queue    *app.Queue
}

func SetupRouter(ctx context.Context, cfg *config.Config, api *API, sigCtl *signal.Controller, tunnel *janus.Tunnel) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	sessionStore := cookie.NewStore([]byte(cfg.Secret))
	r.Use(sessions.Sessions("EncoreSession", sessionStore))

	log.Info().Str("module", "adapters.http").Msg("router setup")

	r.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/metrics", monitoring.Handler())

	r.POST("/auth/register", api.register)
	r.POST("/auth/login", api.login)
	r.GET("/users/me", api.me)

	r.GET("/tracks/search", api.searchTracks)
	r.POST("/tracks", api.createTrack)

	rooms := r.Group("/rooms")
	{
		rooms.GET("", api.listRooms)
		rooms.POST("", api.createRoom)
		rooms.GET("/:roomID", api.getRoom)
		rooms.POST("/:roomID/join", api.joinRoom)
		rooms.POST("/:roomID/leave", api.leaveRoom)
		rooms.GET("/:roomID/members", api.listMembers)
		rooms.GET("/:roomID/presence", api.livePresence)

		rooms.GET("/:roomID/queue", api.listQueue)
		rooms.POST("/:roomID/queue", api.addQueueItem)
		rooms.PATCH("/:roomID/queue/:itemID", api.updateQueueItem)

		rooms.GET("/:roomID/playback", api.getPlayback)
		rooms.PATCH("/:roomID/playback", api.updatePlayback)
	}

	tunnel.Register(r)

	r.GET("/ws/rooms/:roomID", func(c *gin.Context) {
		sigCtl.HandleWS(ctx, c)
	})

	return r
}
