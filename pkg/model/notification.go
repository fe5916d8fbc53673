package model

import "time"

type NotificationType string

const (
	NotificationPracticeReminder  NotificationType = "PRACTICE_REMINDER"
	NotificationEventReminder     NotificationType = "EVENT_REMINDER"
	NotificationEventStarting     NotificationType = "EVENT_STARTING"
	NotificationEventPublished    NotificationType = "EVENT_PUBLISHED"
	NotificationSongAdded         NotificationType = "SONG_ADDED"
	NotificationPersonnelApproved NotificationType = "PERSONNEL_APPROVED"
)

// Notification is the persisted in-app feed entry. It is written regardless
// of push delivery outcome; the two channels are independent.
type Notification struct {
	ID        uint             `gorm:"primarykey" json:"id"`
	CreatedAt time.Time        `gorm:"index" json:"createdAt"`
	UserID    uint             `gorm:"index;not null" json:"userId"`
	Title     string           `json:"title"`
	Message   string           `json:"message"`
	Type      NotificationType `json:"type"`
	EventID   *uint            `json:"eventId"`
	ActionURL string           `json:"actionUrl"`
	IsRead    bool             `gorm:"index;default:false" json:"isRead"`
}
