package provider_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"love-space-backend/models/recording"
	"love-space-backend/models/status"
	"love-space-backend/services/apperrors"
	"love-space-backend/services/clock"
	"love-space-backend/services/provider"
	"love-space-backend/services/provider/providertest"
)

type StoreTestSuite struct {
	suite.Suite

	ctx   context.Context
	clock *clock.ManualClock
	store *provider.Store
	db    *gorm.DB
}

func (self *StoreTestSuite) SetupTest() {
	self.ctx = context.Background()
	self.clock = clock.NewManualClock(time.Date(2024, 2, 14, 20, 0, 0, 0, time.UTC))
	self.store, self.db = providertest.NewStore(self.T(), self.clock)
}

func (self *StoreTestSuite) TestPartnerStatusMissing() {
	_, err := self.store.PartnerStatus(self.ctx, "me")
	self.True(errors.Is(err, provider.ErrNoPartnerStatus))

	// Our own row is not the partner's.
	_, err = self.store.UpsertStatus(self.ctx, "me", true)
	self.Require().NoError(err)

	_, err = self.store.PartnerStatus(self.ctx, "me")
	self.True(errors.Is(err, provider.ErrNoPartnerStatus))
}

func (self *StoreTestSuite) TestSetThenGetPartner() {
	_, err := self.store.UpsertStatus(self.ctx, "her", true)
	self.Require().NoError(err)

	partner, err := self.store.PartnerStatus(self.ctx, "me")
	self.Require().NoError(err)
	self.Equal("her", partner.UserID)
	self.True(partner.IsOnline)
}

func (self *StoreTestSuite) TestUpsertIsIdempotent() {
	first, err := self.store.UpsertStatus(self.ctx, "me", true)
	self.Require().NoError(err)

	self.clock.Advance(5 * time.Second)
	second, err := self.store.UpsertStatus(self.ctx, "me", true)
	self.Require().NoError(err)
	self.True(second.LastSeen.After(first.LastSeen))

	var rows []status.UserStatus
	self.Require().NoError(self.db.Where("user_id = ?", "me").Find(&rows).Error)
	self.Require().Len(rows, 1)
	self.True(rows[0].IsOnline)
	self.True(rows[0].LastSeen.Equal(second.LastSeen))
}

func (self *StoreTestSuite) TestUpsertFlipsOffline() {
	_, err := self.store.UpsertStatus(self.ctx, "her", true)
	self.Require().NoError(err)
	_, err = self.store.UpsertStatus(self.ctx, "her", false)
	self.Require().NoError(err)

	partner, err := self.store.PartnerStatus(self.ctx, "me")
	self.Require().NoError(err)
	self.False(partner.IsOnline)
}

func (self *StoreTestSuite) TestListRecordingsNewestFirst() {
	for _, user := range []string{"me", "her", "me"} {
		self.Require().NoError(self.store.CreateRecording(self.ctx, &recording.Recording{
			UserID:    user,
			UserEmail: user + "@example.com",
			AudioURL:  "https://cdn.example/" + user,
			Mood:      recording.DefaultMood().String(),
		}))
		self.clock.Advance(time.Minute)
	}

	recordings, err := self.store.ListRecordings(self.ctx)
	self.Require().NoError(err)
	self.Require().Len(recordings, 3)
	for i := 1; i < len(recordings); i++ {
		self.True(recordings[i-1].CreatedAt.After(recordings[i].CreatedAt))
	}
	self.NotEmpty(recordings[0].ID)
}

func (self *StoreTestSuite) TestListRecordingsEmptyIsNotNil() {
	recordings, err := self.store.ListRecordings(self.ctx)
	self.Require().NoError(err)
	self.NotNil(recordings)
	self.Empty(recordings)
}

func (self *StoreTestSuite) TestReactionLeavesRecordingsAlone() {
	rec := &recording.Recording{
		UserID: "me", UserEmail: "me@example.com",
		AudioURL: "https://cdn.example/a.m4a", Mood: "🎵 Musical",
	}
	self.Require().NoError(self.store.CreateRecording(self.ctx, rec))

	for _, emoji := range []string{"❤️", "🔥"} {
		self.Require().NoError(self.store.CreateReaction(self.ctx, &recording.Reaction{
			RecordingID: rec.ID, UserID: "her", Emoji: emoji,
		}))
	}

	var reactions []recording.Reaction
	self.Require().NoError(self.db.Find(&reactions).Error)
	self.Len(reactions, 2)

	recordings, err := self.store.ListRecordings(self.ctx)
	self.Require().NoError(err)
	self.Require().Len(recordings, 1)
	self.Equal(rec.ID, recordings[0].ID)
	self.Equal("https://cdn.example/a.m4a", recordings[0].AudioURL)
}

func (self *StoreTestSuite) TestReactionOnMissingRecording() {
	err := self.store.CreateReaction(self.ctx, &recording.Reaction{
		RecordingID: "no-such-recording", UserID: "her", Emoji: "❤️",
	})
	self.True(errors.Is(err, provider.ErrRecordingNotFound))

	var count int64
	self.Require().NoError(self.db.Model(&recording.Reaction{}).Count(&count).Error)
	self.Equal(int64(0), count)
}

func (self *StoreTestSuite) TestProviderFailure() {
	self.Require().NoError(self.db.Migrator().DropTable(&recording.Recording{}))

	_, err := self.store.ListRecordings(self.ctx)
	self.Require().Error(err)
	self.True(apperrors.IsProvider(err))
	self.Contains(err.Error(), "recordings")
}

func TestStoreTestSuite(t *testing.T) {
	suite.Run(t, &StoreTestSuite{})
}
