package http

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jsflux/encore/internal/domain"
)

func (a *API) searchTracks(c *gin.Context) {
	query := c.Query("query")
	if query == "" {
		abortWithError(c, fmt.Errorf("query is required: %w", domain.ErrValidation))
		return
	}
	tracks, err := a.Store.Tracks().Search(c.Request.Context(), query)
	if err != nil {
		abortWithError(c, err)
		return
	}
	if tracks == nil {
		tracks = []domain.Track{}
	}
	c.JSON(http.StatusOK, tracks)
}

func (a *API) createTrack(c *gin.Context) {
	var req struct {
		SourceType      domain.TrackSourceType `json:"sourceType"`
		Title           string                 `json:"title"`
		Artist          string                 `json:"artist"`
		DurationSeconds int                    `json:"durationSeconds"`
		URL             string                 `json:"url"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, fmt.Errorf("bad body: %w", domain.ErrValidation))
		return
	}
	if req.Title == "" {
		abortWithError(c, fmt.Errorf("title is required: %w", domain.ErrValidation))
		return
	}
	if req.SourceType == "" {
		req.SourceType = domain.TrackSourceYoutube
	}
	track := domain.Track{
		SourceType:      req.SourceType,
		Title:           req.Title,
		Artist:          req.Artist,
		DurationSeconds: req.DurationSeconds,
		URL:             req.URL,
	}
	if err := a.Store.Tracks().Create(c.Request.Context(), &track); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, track)
}
