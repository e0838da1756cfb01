package recordings

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"love-space-backend/controllers/apierror"
	"love-space-backend/controllers/authentication"
	"love-space-backend/models/recording"
	"love-space-backend/services/upload"
)

type Store interface {
	ListRecordings(ctx context.Context) ([]recording.Recording, error)
	CreateReaction(ctx context.Context, reaction *recording.Reaction) error
}

type Handlers struct {
	Store          Store
	Uploads        *upload.Flow
	MaxUploadBytes int64
}

// List: GET /api/recordings/:userId
//
// Every recording is returned regardless of userId.
func (h *Handlers) List(c *gin.Context) {
	logrus.WithField("user_id", c.Param("userId")).Debug("listing recordings")

	recordings, err := h.Store.ListRecordings(c.Request.Context())
	if err != nil {
		apierror.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, recordings)
}

// Upload: POST /api/recordings, multipart form with file, caption and mood.
func (h *Handlers) Upload(c *gin.Context) {
	userID, userEmail, ok := authentication.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
		return
	}

	if h.MaxUploadBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.MaxUploadBytes)
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "File is too large"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read file: " + err.Error()})
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = upload.ContentTypeFor(header.Filename)
	}
	if !upload.IsAudio(contentType) {
		c.JSON(http.StatusUnsupportedMediaType, gin.H{"error": "Please upload an audio file"})
		return
	}

	rec, err := h.Uploads.Upload(c.Request.Context(), upload.Submission{
		UserID:      userID,
		UserEmail:   userEmail,
		FileName:    header.Filename,
		ContentType: contentType,
		Body:        file,
		Caption:     c.Request.FormValue("caption"),
		Mood:        c.Request.FormValue("mood"),
	})
	if err != nil {
		apierror.Abort(c, err)
		return
	}
	c.JSON(http.StatusCreated, rec)
}
