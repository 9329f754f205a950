package http

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/jsflux/encore/internal/domain"
)

func (a *API) listQueue(c *gin.Context) {
	roomID, ok := roomIDParam(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	items, err := a.Queue.List(ctx, roomID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	out := make([]queueItemResponse, 0, len(items))
	for _, item := range items {
		resp, err := a.queueItemResponse(ctx, item)
		if err != nil {
			abortWithError(c, err)
			return
		}
		out = append(out, resp)
	}
	c.JSON(http.StatusOK, out)
}

func (a *API) addQueueItem(c *gin.Context) {
	roomID, ok := roomIDParam(c)
	if !ok {
		return
	}
	var req struct {
		TrackID     domain.TrackID      `json:"trackId"`
		RequestedBy domain.UserID       `json:"requestedBy"`
		Status      *domain.QueueStatus `json:"status"`
		SortOrder   *int                `json:"sortOrder"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, fmt.Errorf("bad body: %w", domain.ErrValidation))
		return
	}
	ctx := c.Request.Context()
	item, err := a.Queue.Add(ctx, roomID, req.TrackID, req.RequestedBy, req.Status, req.SortOrder)
	if err != nil {
		abortWithError(c, err)
		return
	}
	resp, err := a.queueItemResponse(ctx, *item)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (a *API) updateQueueItem(c *gin.Context) {
	roomID, ok := roomIDParam(c)
	if !ok {
		return
	}
	rawItem, err := strconv.ParseInt(c.Param("itemID"), 10, 64)
	if err != nil {
		abortWithError(c, fmt.Errorf("bad queue item id: %w", domain.ErrValidation))
		return
	}
	var req struct {
		Status    *domain.QueueStatus `json:"status"`
		SortOrder *int                `json:"sortOrder"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, fmt.Errorf("bad body: %w", domain.ErrValidation))
		return
	}
	ctx := c.Request.Context()
	item, err := a.Queue.Update(ctx, roomID, domain.QueueItemID(rawItem), req.Status, req.SortOrder)
	if err != nil {
		abortWithError(c, err)
		return
	}
	resp, err := a.queueItemResponse(ctx, *item)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (a *API) queueItemResponse(ctx context.Context, item domain.QueueItem) (queueItemResponse, error) {
	track, err := a.Store.Tracks().ByID(ctx, item.TrackID)
	if err != nil {
		return queueItemResponse{}, err
	}
	return queueItemResponse{
		ID:          item.ID,
		TrackID:     track.ID,
		TrackTitle:  track.Title,
		TrackArtist: track.Artist,
		RequestedBy: item.RequestedBy,
		Status:      item.Status,
		SortOrder:   item.SortOrder,
		CreatedAt:   item.CreatedAt,
	}, nil
}
