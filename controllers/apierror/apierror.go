// Package apierror turns classified errors into JSON error responses.
package apierror

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"love-space-backend/services/apperrors"
)

// Status picks the HTTP status for err.
func Status(err error) int {
	switch {
	case apperrors.IsValidation(err):
		return http.StatusBadRequest
	case apperrors.IsDenied(err):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// Message is what the caller sees. Provider failures are passed through
// verbatim.
func Message(err error) string {
	var pe *apperrors.ProviderError
	if errors.As(err, &pe) {
		return pe.Error()
	}
	if apperrors.IsValidation(err) || apperrors.IsDenied(err) {
		return errors.Cause(err).Error()
	}
	return err.Error()
}

func Abort(c *gin.Context, err error) {
	AbortWithStatus(c, Status(err), err)
}

func AbortWithStatus(c *gin.Context, status int, err error) {
	if status >= http.StatusInternalServerError {
		logrus.WithFields(logrus.Fields{
			"path":  c.FullPath(),
			"error": err.Error(),
		}).Error("request failed")
	}
	c.AbortWithStatusJSON(status, gin.H{"error": Message(err)})
}
