package status

import "time"

// UserStatus is keyed by user id; a missing row means offline.
type UserStatus struct {
	UserID   string    `gorm:"primaryKey" json:"user_id"`
	IsOnline bool      `gorm:"not null;default:false" json:"is_online"`
	LastSeen time.Time `json:"last_seen"`
}

func (UserStatus) TableName() string {
	return "user_status"
}
