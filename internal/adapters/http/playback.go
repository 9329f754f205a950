package http

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jsflux/encore/internal/domain"
)

func (a *API) getPlayback(c *gin.Context) {
	roomID, ok := roomIDParam(c)
	if !ok {
		return
	}
	st, err := a.Playback.Get(c.Request.Context(), roomID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, a.playbackResponse(c, st))
}

func (a *API) updatePlayback(c *gin.Context) {
	roomID, ok := roomIDParam(c)
	if !ok {
		return
	}
	var req struct {
		TrackID    *domain.TrackID `json:"trackId"`
		PositionMs int64           `json:"positionMs"`
		Playing    bool            `json:"playing"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, fmt.Errorf("bad body: %w", domain.ErrValidation))
		return
	}
	st, err := a.Playback.Update(c.Request.Context(), roomID, req.TrackID, req.PositionMs, req.Playing)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, a.playbackResponse(c, st))
}

func (a *API) playbackResponse(c *gin.Context, st *domain.PlaybackState) playbackResponse {
	resp := playbackResponse{
		RoomID:     st.RoomID,
		TrackID:    st.TrackID,
		PositionMs: st.PositionMs,
		Playing:    st.Playing,
		UpdatedAt:  st.UpdatedAt,
	}
	if st.TrackID != nil {
		if track, err := a.Store.Tracks().ByID(c.Request.Context(), *st.TrackID); err == nil {
			resp.TrackTitle = &track.Title
		}
	}
	return resp
}
