package recordings

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"love-space-backend/controllers/apierror"
	"love-space-backend/controllers/authentication"
	"love-space-backend/models/recording"
	"love-space-backend/services/metrics"
	"love-space-backend/services/provider"
)

type reactionRequest struct {
	RecordingID string `json:"recordingId" binding:"required"`
	Emoji       string `json:"emoji" binding:"required"`
}

// AddReaction: POST /api/reactions
func (h *Handlers) AddReaction(c *gin.Context) {
	userID, _, ok := authentication.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
		return
	}

	var req reactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "recordingId and emoji are required"})
		return
	}
	if len(req.Emoji) > recording.MaxEmojiBytes {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Emoji is too long"})
		return
	}

	reaction := recording.Reaction{
		RecordingID: req.RecordingID,
		UserID:      userID,
		Emoji:       req.Emoji,
	}
	err := h.Store.CreateReaction(c.Request.Context(), &reaction)
	if errors.Is(err, provider.ErrRecordingNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Recording not found"})
		return
	}
	if err != nil {
		apierror.Abort(c, err)
		return
	}

	metrics.Reactions.Inc()
	c.JSON(http.StatusCreated, reaction)
}
