package client

import (
	"context"

	"github.com/pkg/errors"

	"love-space-backend/models/recording"
)

type Entry struct {
	recording.Recording
	// Own is set for the viewer's own recordings.
	Own bool
}

type Timeline struct {
	Session *Session
}

// Load returns every recording, newest first.
func (t *Timeline) Load(ctx context.Context) ([]Entry, error) {
	user, err := t.Session.User()
	if err != nil {
		return nil, err
	}

	recordings, err := t.Session.API().ListRecordings(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(recordings))
	for _, rec := range recordings {
		entries = append(entries, Entry{Recording: rec, Own: rec.UserID == user.ID})
	}
	return entries, nil
}

// React adds a reaction and reloads the whole timeline.
func (t *Timeline) React(ctx context.Context, recordingID, emoji string) ([]Entry, error) {
	if _, err := t.Session.User(); err != nil {
		return nil, err
	}
	if _, err := t.Session.API().AddReaction(ctx, recordingID, emoji); err != nil {
		return nil, errors.Wrap(err, "add reaction")
	}
	return t.Load(ctx)
}
