// Package upload stores an audio clip and then records its metadata row.
// The two steps are not atomic: when the row insert fails the stored object
// is left behind.
package upload

import (
	"context"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"love-space-backend/models/recording"
	"love-space-backend/services/apperrors"
	"love-space-backend/services/clock"
	"love-space-backend/services/metrics"
	"love-space-backend/services/storage"
)

const keyPrefix = "recordings/"

type RecordingWriter interface {
	CreateRecording(ctx context.Context, rec *recording.Recording) error
}

type Submission struct {
	UserID      string
	UserEmail   string
	FileName    string
	ContentType string
	Body        io.Reader
	Caption     string
	Mood        string
}

type Flow struct {
	Store storage.ObjectStore
	Rows  RecordingWriter
	Clock clock.Clock
}

func NewFlow(store storage.ObjectStore, rows RecordingWriter, c clock.Clock) *Flow {
	if c == nil {
		c = clock.RealClock{}
	}
	return &Flow{Store: store, Rows: rows, Clock: c}
}

// IsAudio reports whether a declared media type is an audio type.
func IsAudio(contentType string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(contentType)), "audio/")
}

var audioTypes = map[string]string{
	".aac":  "audio/aac",
	".flac": "audio/flac",
	".m4a":  "audio/mp4",
	".mp3":  "audio/mpeg",
	".oga":  "audio/ogg",
	".ogg":  "audio/ogg",
	".opus": "audio/ogg",
	".wav":  "audio/wav",
	".weba": "audio/webm",
	".webm": "audio/webm",
}

// ContentTypeFor guesses a media type from a file name. Common audio
// extensions are known even where the system mime tables are missing.
func ContentTypeFor(fileName string) string {
	ext := strings.ToLower(filepath.Ext(fileName))
	if t, ok := audioTypes[ext]; ok {
		return t
	}
	return mime.TypeByExtension(ext)
}

// Validate checks everything that can be checked without touching the
// provider.
func Validate(contentType, caption string) error {
	if !IsAudio(contentType) {
		return apperrors.Invalid("Please upload an audio file")
	}
	if utf8.RuneCountInString(caption) > recording.MaxCaptionLength {
		return apperrors.Invalid(fmt.Sprintf("Caption must be at most %d characters",
			recording.MaxCaptionLength))
	}
	return nil
}

// StorageKey builds the object key from the uploader and the upload time.
func StorageKey(userID string, millis int64, fileName string) string {
	ext := fileName
	if i := strings.LastIndex(fileName, "."); i >= 0 {
		ext = fileName[i+1:]
	}
	return fmt.Sprintf("%s%s-%d.%s", keyPrefix, userID, millis, ext)
}

func (f *Flow) Upload(ctx context.Context, sub Submission) (*recording.Recording, error) {
	if err := Validate(sub.ContentType, sub.Caption); err != nil {
		metrics.Uploads.WithLabelValues("invalid").Inc()
		return nil, err
	}
	if sub.UserID == "" {
		return nil, apperrors.Denied("Not signed in")
	}

	now := f.Clock.Now().UTC()
	key := StorageKey(sub.UserID, now.UnixMilli(), sub.FileName)

	audioURL, err := f.Store.Put(ctx, key, sub.ContentType, sub.Body)
	if err != nil {
		metrics.Uploads.WithLabelValues("store_failed").Inc()
		return nil, errors.Wrap(apperrors.Provider("store object", err), "upload")
	}

	rec := &recording.Recording{
		UserID:    sub.UserID,
		UserEmail: sub.UserEmail,
		AudioURL:  audioURL,
		Mood:      moodLabel(sub.Mood),
		CreatedAt: now,
	}
	if sub.Caption != "" {
		caption := sub.Caption
		rec.Caption = &caption
	}

	if err := f.Rows.CreateRecording(ctx, rec); err != nil {
		metrics.Uploads.WithLabelValues("row_failed").Inc()
		logrus.WithFields(logrus.Fields{
			"key":     key,
			"user_id": sub.UserID,
		}).Warn("recording row insert failed after upload, object is orphaned")
		return nil, errors.Wrap(err, "save recording")
	}

	metrics.Uploads.WithLabelValues("stored").Inc()
	return rec, nil
}

func moodLabel(mood string) string {
	if mood == "" {
		return recording.DefaultMood().String()
	}
	if m, ok := recording.LookupMood(mood); ok {
		return m.String()
	}
	return mood
}
