package model

import "time"

type SubscriptionKind string

const (
	SubscriptionFCM     SubscriptionKind = "fcm"
	SubscriptionWebPush SubscriptionKind = "webpush"
)

// PushSubscription is one device or browser registration. A subscription is
// never deleted on delivery failure, only deactivated, so the cleanup
// endpoint can report what it removed.
type PushSubscription struct {
	ID            uint             `gorm:"primarykey" json:"id"`
	CreatedAt     time.Time        `json:"createdAt"`
	UpdatedAt     time.Time        `json:"updatedAt"`
	UserID        uint             `gorm:"index;not null" json:"userId"`
	Kind          SubscriptionKind `gorm:"default:fcm" json:"kind"`
	Token         string           `gorm:"index" json:"-"`
	Endpoint      string           `json:"-"`
	P256dh        string           `json:"-"`
	Auth          string           `json:"-"`
	DeviceInfo    string           `json:"deviceInfo"`
	IsActive      bool             `gorm:"index;default:true" json:"isActive"`
	FailureCount  uint             `json:"-"`
	LastFailureAt *time.Time       `json:"-"`
}
