package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jsflux/encore/internal/domain"
)

func (a *API) listRooms(c *gin.Context) {
	ctx := c.Request.Context()
	rooms, err := a.Store.Rooms().All(ctx)
	if err != nil {
		abortWithError(c, err)
		return
	}
	out := make([]roomSummaryResponse, 0, len(rooms))
	for _, room := range rooms {
		summary, err := a.roomSummary(ctx, room)
		if err != nil {
			abortWithError(c, err)
			return
		}
		out = append(out, summary)
	}
	c.JSON(http.StatusOK, out)
}

func (a *API) createRoom(c *gin.Context) {
	var req struct {
		Title        string                `json:"title"`
		Mode         domain.RoomMode       `json:"mode"`
		Visibility   domain.RoomVisibility `json:"visibility"`
		PasswordHash string                `json:"passwordHash"`
		HostID       domain.UserID         `json:"hostId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, fmt.Errorf("bad body: %w", domain.ErrValidation))
		return
	}
	ctx := c.Request.Context()
	if _, err := a.Store.Users().ByID(ctx, req.HostID); err != nil {
		abortWithError(c, err)
		return
	}
	room, err := domain.NewRoom(req.Title, req.Mode, req.Visibility, req.PasswordHash, req.HostID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	if err := a.Store.Rooms().Create(ctx, room); err != nil {
		abortWithError(c, err)
		return
	}
	hostMember := domain.RoomMember{
		RoomID:     room.ID,
		UserID:     req.HostID,
		Role:       domain.RoleHost,
		DeviceInfo: "host device",
		JoinedAt:   time.Now(),
	}
	if err := a.Store.Members().Create(ctx, &hostMember); err != nil {
		abortWithError(c, err)
		return
	}
	summary, err := a.roomSummary(ctx, *room)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (a *API) getRoom(c *gin.Context) {
	roomID, ok := roomIDParam(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	room, err := a.Store.Rooms().ByID(ctx, roomID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	members, err := a.memberResponses(ctx, roomID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	host, err := a.Store.Users().ByID(ctx, room.HostID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, roomDetailResponse{
		ID:           room.ID,
		Title:        room.Title,
		Mode:         room.Mode,
		Visibility:   room.Visibility,
		HostNickname: host.Nickname,
		CreatedAt:    room.CreatedAt,
		Members:      members,
	})
}

func (a *API) joinRoom(c *gin.Context) {
	roomID, ok := roomIDParam(c)
	if !ok {
		return
	}
	var req struct {
		UserID     domain.UserID   `json:"userId"`
		Role       domain.RoomRole `json:"role"`
		Muted      bool            `json:"muted"`
		DeviceInfo string          `json:"deviceInfo"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, fmt.Errorf("bad body: %w", domain.ErrValidation))
		return
	}
	ctx := c.Request.Context()
	if _, err := a.Store.Rooms().ByID(ctx, roomID); err != nil {
		abortWithError(c, err)
		return
	}
	user, err := a.Store.Users().ByID(ctx, req.UserID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	role := req.Role
	if role == "" {
		role = domain.RolePerformer
	}
	member := domain.RoomMember{
		RoomID:     roomID,
		UserID:     req.UserID,
		Role:       role,
		Muted:      req.Muted,
		DeviceInfo: req.DeviceInfo,
		JoinedAt:   time.Now(),
	}
	if err := a.Store.Members().Create(ctx, &member); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, memberResponse{
		ID:         member.ID,
		UserID:     user.ID,
		Nickname:   user.Nickname,
		Role:       member.Role,
		Muted:      member.Muted,
		DeviceInfo: member.DeviceInfo,
		JoinedAt:   member.JoinedAt,
	})
}

func (a *API) leaveRoom(c *gin.Context) {
	roomID, ok := roomIDParam(c)
	if !ok {
		return
	}
	var req struct {
		UserID domain.UserID `json:"userId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.UserID == 0 {
		abortWithError(c, fmt.Errorf("userId is required: %w", domain.ErrValidation))
		return
	}
	if err := a.Store.Members().DeleteByRoomAndUser(c.Request.Context(), roomID, req.UserID); err != nil {
		abortWithError(c, err)
		return
	}
	c.Status(http.StatusOK)
}

func (a *API) listMembers(c *gin.Context) {
	roomID, ok := roomIDParam(c)
	if !ok {
		return
	}
	members, err := a.memberResponses(c.Request.Context(), roomID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, members)
}

// livePresence is the realtime roster, as opposed to the durable membership
// rows served by listMembers.
func (a *API) livePresence(c *gin.Context) {
	roomID, ok := roomIDParam(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, a.Relay.Roster(roomID))
}

func (a *API) roomSummary(ctx context.Context, room domain.Room) (roomSummaryResponse, error) {
	host, err := a.Store.Users().ByID(ctx, room.HostID)
	if err != nil {
		return roomSummaryResponse{}, err
	}
	count, err := a.Store.Members().CountByRoom(ctx, room.ID)
	if err != nil {
		return roomSummaryResponse{}, err
	}
	return roomSummaryResponse{
		ID:           room.ID,
		Title:        room.Title,
		Mode:         room.Mode,
		Visibility:   room.Visibility,
		HostNickname: host.Nickname,
		MemberCount:  count,
		CreatedAt:    room.CreatedAt,
	}, nil
}

func (a *API) memberResponses(ctx context.Context, roomID domain.RoomID) ([]memberResponse, error) {
	members, err := a.Store.Members().ByRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	out := make([]memberResponse, 0, len(members))
	for _, m := range members {
		user, err := a.Store.Users().ByID(ctx, m.UserID)
		if err != nil {
			return nil, err
		}
		out = append(out, memberResponse{
			ID:         m.ID,
			UserID:     m.UserID,
			Nickname:   user.Nickname,
			Role:       m.Role,
			Muted:      m.Muted,
			DeviceInfo: m.DeviceInfo,
			JoinedAt:   m.JoinedAt,
		})
	}
	return out, nil
}
