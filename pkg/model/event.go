package model

import "time"

type EventStatus string

const (
	EventStatusDraft     EventStatus = "DRAFT"
	EventStatusSubmitted EventStatus = "SUBMITTED"
	EventStatusPublished EventStatus = "PUBLISHED"
	EventStatusFinished  EventStatus = "FINISHED"
	EventStatusRejected  EventStatus = "REJECTED"
)

// Event domain object defining a club event and its lineup
// swagger:model
type Event struct {
	ID          uint             `gorm:"primarykey" json:"id"`
	CreatedAt   time.Time        `json:"createdAt"`
	UpdatedAt   time.Time        `json:"updatedAt"`
	Title       string           `json:"title"`
	Slug        string           `gorm:"index" json:"slug"`
	Date        time.Time        `gorm:"index" json:"date"`
	Location    string           `json:"location"`
	Description string           `json:"description"`
	Status      EventStatus      `gorm:"index;default:DRAFT" json:"status"`
	PublishedAt *time.Time       `json:"publishedAt"`
	CreatedByID uint             `json:"createdById"`
	Personnel   []EventPersonnel `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"personnel"`
	Songs       []EventSong      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"songs"`
}

type PersonnelStatus string

const (
	PersonnelStatusPending  PersonnelStatus = "PENDING"
	PersonnelStatusApproved PersonnelStatus = "APPROVED"
	PersonnelStatusRejected PersonnelStatus = "REJECTED"
)

// EventPersonnel is a single seat in an event's lineup. UserID is nil while
// the seat is empty; registration fills it and moves the seat to PENDING.
type EventPersonnel struct {
	ID         uint            `gorm:"primarykey" json:"id"`
	CreatedAt  time.Time       `json:"createdAt"`
	UpdatedAt  time.Time       `json:"updatedAt"`
	EventID    uint            `gorm:"index" json:"eventId"`
	UserID     *uint           `gorm:"index" json:"userId"`
	User       *User           `json:"user,omitempty"`
	Role       string          `json:"role"`
	Status     PersonnelStatus `gorm:"default:PENDING" json:"status"`
	ApprovedAt *time.Time      `json:"approvedAt"`
}

// EventSong is an ordered setlist entry.
type EventSong struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	EventID   uint      `gorm:"index" json:"eventId"`
	Title     string    `json:"title"`
	Artist    string    `json:"artist"`
	Key       string    `json:"key"`
	Position  uint      `json:"order"`
	Notes     string    `json:"notes"`
}
