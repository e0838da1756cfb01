// Package provider is the data plane over the external provider's
// Postgres tables: recordings, reactions and user_status.
package provider

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"love-space-backend/models/recording"
	"love-space-backend/models/status"
	"love-space-backend/services/apperrors"
	"love-space-backend/services/clock"
	"love-space-backend/services/metrics"
)

var (
	ErrNoPartnerStatus   = errors.New("no partner status row")
	ErrRecordingNotFound = errors.New("recording not found")
)

type Store struct {
	db    *gorm.DB
	clock clock.Clock
}

func NewStore(db *gorm.DB, c clock.Clock) *Store {
	if c == nil {
		c = clock.RealClock{}
	}
	return &Store{db: db, clock: c}
}

// Migrate creates the provider tables. Production schemas are owned by the
// provider, so this only runs when asked for.
func (s *Store) Migrate() error {
	err := s.db.AutoMigrate(
		&recording.Recording{},
		&recording.Reaction{},
		&status.UserStatus{},
	)
	return errors.Wrap(err, "migrate provider tables")
}

func (s *Store) fail(op string, err error) error {
	metrics.ProviderErrors.WithLabelValues(op).Inc()
	return apperrors.Provider(op, err)
}

// UpsertStatus writes the caller's status row, stamping last_seen with the
// store clock.
func (s *Store) UpsertStatus(ctx context.Context, userID string, isOnline bool) (*status.UserStatus, error) {
	row := &status.UserStatus{
		UserID:   userID,
		IsOnline: isOnline,
		LastSeen: s.clock.Now().UTC(),
	}

	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"is_online", "last_seen"}),
	}).Create(row).Error
	if err != nil {
		return nil, s.fail("upsert user_status", err)
	}
	return row, nil
}

// PartnerStatus returns any status row not belonging to userID. With exactly
// two users that row is the partner's.
func (s *Store) PartnerStatus(ctx context.Context, userID string) (*status.UserStatus, error) {
	var rows []status.UserStatus
	err := s.db.WithContext(ctx).
		Where("user_id <> ?", userID).
		Order("last_seen DESC").
		Limit(1).
		Find(&rows).Error
	if err != nil {
		return nil, s.fail("select user_status", err)
	}
	if len(rows) == 0 {
		return nil, ErrNoPartnerStatus
	}
	return &rows[0], nil
}

// ListRecordings returns every recording, newest first.
func (s *Store) ListRecordings(ctx context.Context) ([]recording.Recording, error) {
	recordings := []recording.Recording{}
	err := s.db.WithContext(ctx).
		Order("created_at DESC").
		Order("id DESC").
		Find(&recordings).Error
	if err != nil {
		return nil, s.fail("select recordings", err)
	}
	return recordings, nil
}

func (s *Store) CreateRecording(ctx context.Context, rec *recording.Recording) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = s.clock.Now().UTC()
	}
	if err := s.db.WithContext(ctx).Create(rec).Error; err != nil {
		return s.fail("insert recording", err)
	}
	return nil
}

// CreateReaction inserts a reaction on an existing recording. Reactions on
// unknown recordings fail with ErrRecordingNotFound.
func (s *Store) CreateReaction(ctx context.Context, reaction *recording.Reaction) error {
	if reaction.CreatedAt.IsZero() {
		reaction.CreatedAt = s.clock.Now().UTC()
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var found int64
		err := tx.Model(&recording.Recording{}).
			Where("id = ?", reaction.RecordingID).
			Count(&found).Error
		if err != nil {
			return s.fail("select recording", err)
		}
		if found == 0 {
			return ErrRecordingNotFound
		}

		if err := tx.Create(reaction).Error; err != nil {
			return s.fail("insert reaction", err)
		}
		return nil
	})
}
