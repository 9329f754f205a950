package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/jsflux/encore/internal/domain"
)

// abortWithError maps domain failure kinds to response statuses.
func abortWithError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrConflict):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrRoomMismatch), errors.Is(err, domain.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrBadCredentials):
		status = http.StatusUnauthorized
	default:
		log.Error().Err(err).Str("module", "adapters.http").Msg("internal error")
	}
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}

func roomIDParam(c *gin.Context) (domain.RoomID, bool) {
	id, err := strconv.ParseInt(c.Param("roomID"), 10, 64)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "bad room id"})
		return 0, false
	}
	return domain.RoomID(id), true
}
