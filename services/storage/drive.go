package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"

	"github.com/pkg/errors"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

// DriveStore keeps recordings in a Google Drive folder owned by a service
// account. Every uploaded file is shared with "anyone with the link".
type DriveStore struct {
	service  *drive.Service
	folderID string
}

func NewDriveStore(ctx context.Context, credentialsFile, folderID string) (*DriveStore, error) {
	b, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, errors.Wrap(err, "read service account file")
	}

	jwtConfig, err := google.JWTConfigFromJSON(b, drive.DriveFileScope)
	if err != nil {
		return nil, errors.Wrap(err, "create JWT config")
	}

	service, err := drive.NewService(ctx, option.WithTokenSource(jwtConfig.TokenSource(ctx)))
	if err != nil {
		return nil, errors.Wrap(err, "create Drive service")
	}
	return &DriveStore{service: service, folderID: folderID}, nil
}

func (s *DriveStore) Put(ctx context.Context, key, contentType string, r io.Reader) (string, error) {
	driveFile := &drive.File{
		Name:     path.Base(key),
		MimeType: contentType,
	}
	if s.folderID != "" {
		driveFile.Parents = []string{s.folderID}
	}

	uploaded, err := s.service.Files.Create(driveFile).
		Media(r).
		Fields("id").
		Context(ctx).
		Do()
	if err != nil {
		return "", errors.Wrap(err, "upload file to Drive")
	}

	_, err = s.service.Permissions.Create(uploaded.Id, &drive.Permission{
		Type: "anyone",
		Role: "reader",
	}).Context(ctx).Do()
	if err != nil {
		return "", errors.Wrapf(err, "share Drive file %s", uploaded.Id)
	}

	return fmt.Sprintf("https://drive.google.com/uc?export=download&id=%s", uploaded.Id), nil
}
