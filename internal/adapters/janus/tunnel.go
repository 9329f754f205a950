// Package janus proxies session-establishment traffic to the external media
// gateway. Bodies pass through verbatim in both directions; the tunnel adds
// no semantics of its own.
package janus

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/jsflux/encore/internal/monitoring"
)

// Long-poll GETs against the gateway hold for up to 30s, so the client
// timeout must sit comfortably above that.
const requestTimeout = 65 * time.Second

type Tunnel struct {
	base   string
	client *http.Client
}

func New(base string) *Tunnel {
	return &Tunnel{
		base:   strings.TrimRight(base, "/"),
		client: &http.Client{Timeout: requestTimeout},
	}
}

func (t *Tunnel) Register(r *gin.Engine) {
	r.POST("/janus", t.proxy)
	r.POST("/janus/:sessionID", t.proxy)
	r.POST("/janus/:sessionID/:handleID", t.proxy)
	r.GET("/janus/:sessionID", t.proxy)
	r.GET("/janus/:sessionID/:handleID", t.proxy)
}

func (t *Tunnel) targetURL(c *gin.Context) string {
	url := t.base
	if sessionID := c.Param("sessionID"); sessionID != "" {
		url += "/" + sessionID
		if handleID := c.Param("handleID"); handleID != "" {
			url += "/" + handleID
		}
	}
	if maxev := c.Query("maxev"); maxev != "" {
		url += "?maxev=" + maxev
	}
	return url
}

func (t *Tunnel) proxy(c *gin.Context) {
	url := t.targetURL(c)

	req, err := http.NewRequestWithContext(c.Request.Context(), c.Request.Method, url, c.Request.Body)
	if err != nil {
		t.fail(c, err)
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		t.fail(c, err)
		return
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.fail(c, err)
		return
	}
	monitoring.TunnelRequest(c.Request.Method, "ok")
	c.Data(resp.StatusCode, "application/json", body)
}

func (t *Tunnel) fail(c *gin.Context, err error) {
	log.Error().Err(err).Str("module", "adapters.janus").Str("path", c.Request.URL.Path).Msg("tunnel failure")
	monitoring.TunnelRequest(c.Request.Method, "error")
	c.JSON(http.StatusBadGateway, gin.H{
		"status": "error",
		"code":   http.StatusBadGateway,
		"reason": fmt.Sprintf("proxy error: %v", err),
	})
}
