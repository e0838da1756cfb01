package recording

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MaxCaptionLength is counted in characters, not bytes.
const MaxCaptionLength = 100

type Recording struct {
	ID        string    `gorm:"primaryKey" json:"id"`
	UserID    string    `gorm:"index;not null" json:"user_id"`
	UserEmail string    `gorm:"not null" json:"user_email"`
	AudioURL  string    `gorm:"type:text;not null" json:"audio_url"`
	Caption   *string   `gorm:"size:100" json:"caption"`
	Mood      string    `gorm:"not null" json:"mood"`
	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}

func (Recording) TableName() string {
	return "recordings"
}

func (r *Recording) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

// Reaction references a recording; it is never updated or deleted.
type Reaction struct {
	ID          string    `gorm:"primaryKey" json:"id"`
	RecordingID string    `gorm:"index;not null" json:"recording_id"`
	UserID      string    `gorm:"index;not null" json:"user_id"`
	Emoji       string    `gorm:"type:varchar(20);not null" json:"emoji"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Reaction) TableName() string {
	return "reactions"
}

func (r *Reaction) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}
