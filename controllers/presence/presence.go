package presence

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"love-space-backend/controllers/apierror"
	"love-space-backend/controllers/authentication"
	"love-space-backend/models/status"
	"love-space-backend/services/metrics"
	"love-space-backend/services/provider"
)

type StatusStore interface {
	UpsertStatus(ctx context.Context, userID string, isOnline bool) (*status.UserStatus, error)
	PartnerStatus(ctx context.Context, userID string) (*status.UserStatus, error)
}

type Handlers struct {
	Store StatusStore
}

type statusRequest struct {
	UserID   string `json:"userId"`
	IsOnline bool   `json:"isOnline"`
}

// SetStatus: POST /api/user-status
func (h *Handlers) SetStatus(c *gin.Context) {
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if req.UserID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "userId is required"})
		return
	}

	// A signed in caller may only write its own row.
	if callerID, _, ok := authentication.CurrentUser(c); ok && callerID != req.UserID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Cannot set status for another user"})
		return
	}

	if _, err := h.Store.UpsertStatus(c.Request.Context(), req.UserID, req.IsOnline); err != nil {
		apierror.Abort(c, err)
		return
	}

	state := "offline"
	if req.IsOnline {
		state = "online"
	}
	metrics.PresenceWrites.WithLabelValues(state).Inc()
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// PartnerStatus: GET /api/partner-status/:userId
func (h *Handlers) PartnerStatus(c *gin.Context) {
	metrics.PartnerLookups.Inc()

	row, err := h.Store.PartnerStatus(c.Request.Context(), c.Param("userId"))
	if errors.Is(err, provider.ErrNoPartnerStatus) {
		c.JSON(http.StatusOK, gin.H{"is_online": false})
		return
	}
	if err != nil {
		apierror.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, row)
}
