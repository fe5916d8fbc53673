package notification

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/suara-kampus/band-manager/internal/errdef"
	"github.com/suara-kampus/band-manager/pkg/model"
	"gorm.io/gorm"
)

//goland:noinspection GoExportedFuncWithUnexportedType
func NewRepository(db *gorm.DB) *repository {
	return &repository{db}
}

type repository struct {
	db *gorm.DB
}

func (r repository) create(ctx context.Context, notification *model.Notification) error {
	return r.db.WithContext(ctx).Create(&notification).Error
}

// findAudience resolves the recipients of a broadcast. An empty levels slice
// means every member; otherwise only users on one of the given levels.
func (r repository) findAudience(ctx context.Context, levels []model.OrganizationLevel) ([]uint, error) {
	query := r.db.WithContext(ctx).Model(&model.User{}).Where("validated = ?", true)
	if len(levels) > 0 {
		query = query.Where("organization_level IN ?", levels)
	}

	var userIds []uint
	err := query.Order("id").Pluck("id", &userIds).Error
	if err != nil {
		return nil, fmt.Errorf("failed to resolve audience: %v", err)
	}
	return userIds, nil
}

// Feed is a page of a user's notifications.
type Feed struct {
	Notifications []*model.Notification `json:"notifications"`
	UnreadCount   int64                 `json:"unreadCount"`
}

func (r repository) findByUser(ctx context.Context, userId uint, unreadOnly bool, limit, offset int) (*Feed, error) {
	query := r.db.WithContext(ctx).Model(&model.Notification{}).Where("user_id = ?", userId)
	if unreadOnly {
		query = query.Where("is_read = ?", false)
	}

	feed := &Feed{}
	err := query.
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&feed.Notifications).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find notifications for user %d: %v", userId, err)
	}

	err = r.db.
		WithContext(ctx).
		Model(&model.Notification{}).
		Where("user_id = ? AND is_read = ?", userId, false).
		Count(&feed.UnreadCount).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count unread notifications for user %d: %v", userId, err)
	}

	return feed, nil
}

func (r repository) markRead(ctx context.Context, userId, id uint) error {
	db := r.db.
		WithContext(ctx).
		Model(&model.Notification{}).
		Where("id = ? AND user_id = ?", id, userId).
		Update("is_read", true)
	if db.Error != nil {
		return db.Error
	}
	if db.RowsAffected < 1 {
		return errdef.NewNotFound("failed to find notification %d for user %d", id, userId)
	}
	return nil
}

func (r repository) markAllRead(ctx context.Context, userId uint) (int64, error) {
	db := r.db.
		WithContext(ctx).
		Model(&model.Notification{}).
		Where("user_id = ? AND is_read = ?", userId, false).
		Update("is_read", true)
	return db.RowsAffected, db.Error
}

func (r repository) findUpcomingPublished(ctx context.Context, from, to time.Time) ([]*model.Event, error) {
	var events []*model.Event
	err := r.db.
		WithContext(ctx).
		Preload("Personnel").
		Where("status = ? AND date >= ? AND date <= ?", model.EventStatusPublished, from, to).
		Order("date").
		Find(&events).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find upcoming events: %v", err)
	}
	return events, nil
}

// findLastSharedEvent returns the most recent past event that shares at
// least one approved member with the given event, or nil if there is none.
func (r repository) findLastSharedEvent(ctx context.Context, event *model.Event, before time.Time) (*model.Event, error) {
	userIds := approvedUserIds(event.Personnel)
	if len(userIds) == 0 {
		return nil, nil
	}

	var shared *model.Event
	err := r.db.
		WithContext(ctx).
		Joins("JOIN event_personnels ON event_personnels.event_id = events.id").
		Where("event_personnels.user_id IN ? AND event_personnels.status = ?", userIds, model.PersonnelStatusApproved).
		Where("events.id <> ? AND events.date < ?", event.ID, before).
		Order("events.date DESC").
		First(&shared).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find last shared event for event %d: %v", event.ID, err)
	}
	return shared, nil
}

func (r repository) findRecentlyPublished(ctx context.Context, since time.Time) ([]*model.Event, error) {
	var events []*model.Event
	err := r.db.
		WithContext(ctx).
		Where("status = ? AND published_at >= ?", model.EventStatusPublished, since).
		Find(&events).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find recently published events: %v", err)
	}
	return events, nil
}

func (r repository) findRecentSongs(ctx context.Context, since time.Time) ([]*model.EventSong, error) {
	var songs []*model.EventSong
	err := r.db.
		WithContext(ctx).
		Joins("JOIN events ON events.id = event_songs.event_id").
		Where("events.status = ? AND event_songs.created_at >= ?", model.EventStatusPublished, since).
		Find(&songs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find recent songs: %v", err)
	}
	return songs, nil
}

func (r repository) findRecentApprovals(ctx context.Context, since time.Time) ([]*model.EventPersonnel, error) {
	var approvals []*model.EventPersonnel
	err := r.db.
		WithContext(ctx).
		Joins("JOIN events ON events.id = event_personnels.event_id").
		Where("events.status = ?", model.EventStatusPublished).
		Where("event_personnels.status = ? AND event_personnels.approved_at >= ?", model.PersonnelStatusApproved, since).
		Where("event_personnels.user_id IS NOT NULL").
		Find(&approvals).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find recent approvals: %v", err)
	}
	return approvals, nil
}

func (r repository) findEventWithPersonnel(ctx context.Context, id uint) (*model.Event, error) {
	var event *model.Event
	err := r.db.
		WithContext(ctx).
		Preload("Personnel").
		First(&event, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errdef.NewNotFound("failed to find event with id %d", id)
	}
	return event, err
}

func approvedUserIds(personnel []model.EventPersonnel) []uint {
	var userIds []uint
	for _, seat := range personnel {
		if seat.Status == model.PersonnelStatusApproved && seat.UserID != nil {
			userIds = append(userIds, *seat.UserID)
		}
	}
	return userIds
}
