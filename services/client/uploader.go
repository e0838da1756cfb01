package client

import (
	"context"
	"io"

	"love-space-backend/models/recording"
	"love-space-backend/services/upload"
)

type Uploader struct {
	Session *Session
}

// Send uploads one clip. Files that do not look like audio and captions
// over the limit are refused before anything is sent.
func (u *Uploader) Send(ctx context.Context, fileName string, body io.Reader,
	caption, mood string) (*recording.Recording, error) {
	if _, err := u.Session.User(); err != nil {
		return nil, err
	}

	contentType := upload.ContentTypeFor(fileName)
	if err := upload.Validate(contentType, caption); err != nil {
		return nil, err
	}

	if mood == "" {
		mood = recording.DefaultMood().String()
	} else if m, ok := recording.LookupMood(mood); ok {
		mood = m.String()
	}
	return u.Session.API().UploadRecording(ctx, fileName, contentType, body, caption, mood)
}
