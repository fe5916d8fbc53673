package event

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

func (r repository) create(ctx context.Context, event *model.Event) error {
	return r.db.WithContext(ctx).Create(&event).Error
}

// Filter narrows event listings. Zero values mean "no constraint".
type Filter struct {
	Status model.EventStatus
	From   time.Time
	To     time.Time
}

func (r repository) findAll(ctx context.Context, filter Filter) ([]*model.Event, error) {
	query := r.db.WithContext(ctx).Model(&model.Event{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if !filter.From.IsZero() {
		query = query.Where("date >= ?", filter.From)
	}
	if !filter.To.IsZero() {
		query = query.Where("date <= ?", filter.To)
	}

	var events []*model.Event
	err := query.
		Preload("Personnel").
		Preload("Songs", func(db *gorm.DB) *gorm.DB { return db.Order("position") }).
		Order("date").
		Find(&events).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find events: %v", err)
	}

	return events, nil
}

func (r repository) findById(ctx context.Context, id uint) (*model.Event, error) {
	var event *model.Event
	err := r.db.
		WithContext(ctx).
		Preload("Personnel.User").
		Preload("Songs", func(db *gorm.DB) *gorm.DB { return db.Order("position") }).
		First(&event, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errdef.NewNotFound("failed to find event with id %d", id)
	}
	return event, err
}

func (r repository) save(ctx context.Context, event *model.Event) error {
	return r.db.WithContext(ctx).Save(&event).Error
}

func (r repository) delete(ctx context.Context, id uint) error {
	db := r.db.WithContext(ctx).Select("Personnel", "Songs").Delete(&model.Event{ID: id})
	if db.Error != nil {
		return fmt.Errorf("failed to delete event with id %d: %v", id, db.Error)
	} else if db.RowsAffected < 1 {
		return errdef.NewNotFound("failed to find event with id %d", id)
	}

	return nil
}

func (r repository) updateStatus(ctx context.Context, event *model.Event, status model.EventStatus, publishedAt *time.Time) error {
	updates := map[string]any{"status": status}
	if publishedAt != nil {
		updates["published_at"] = publishedAt
	}
	return r.db.WithContext(ctx).Model(&event).Updates(updates).Error
}

func (r repository) createPersonnel(ctx context.Context, personnel *model.EventPersonnel) error {
	return r.db.WithContext(ctx).Create(&personnel).Error
}

func (r repository) findPersonnel(ctx context.Context, eventId, personnelId uint) (*model.EventPersonnel, error) {
	var personnel *model.EventPersonnel
	err := r.db.
		WithContext(ctx).
		Where("event_id = ?", eventId).
		First(&personnel, personnelId).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errdef.NewNotFound("failed to find personnel slot %d on event %d", personnelId, eventId)
	}
	return personnel, err
}

func (r repository) countRegistrations(ctx context.Context, eventId, userId uint) (int64, error) {
	var count int64
	err := r.db.
		WithContext(ctx).
		Model(&model.EventPersonnel{}).
		Where("event_id = ? AND user_id = ?", eventId, userId).
		Count(&count).Error
	return count, err
}

// fillSlot claims an empty seat for a user. The user_id IS NULL guard makes
// concurrent registrations for the same seat lose cleanly.
func (r repository) fillSlot(ctx context.Context, personnelId, userId uint) error {
	db := r.db.
		WithContext(ctx).
		Model(&model.EventPersonnel{}).
		Where("id = ? AND user_id IS NULL", personnelId).
		Updates(map[string]any{"user_id": userId, "status": model.PersonnelStatusPending})
	if db.Error != nil {
		return db.Error
	}
	if db.RowsAffected < 1 {
		return errdef.NewConflict("personnel slot %d is already taken", personnelId)
	}
	return nil
}

func (r repository) savePersonnel(ctx context.Context, personnel *model.EventPersonnel) error {
	return r.db.WithContext(ctx).Save(&personnel).Error
}

// releaseSlot empties a seat so someone else can register for it.
func (r repository) releaseSlot(ctx context.Context, personnelId uint) error {
	return r.db.
		WithContext(ctx).
		Model(&model.EventPersonnel{}).
		Where("id = ?", personnelId).
		Updates(map[string]any{
			"user_id":     nil,
			"status":      model.PersonnelStatusPending,
			"approved_at": nil,
		}).Error
}

func (r repository) createSong(ctx context.Context, song *model.EventSong) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var maxPosition int64
		err := tx.
			Model(&model.EventSong{}).
			Where("event_id = ?", song.EventID).
			Select("COALESCE(MAX(position), 0)").
			Scan(&maxPosition).Error
		if err != nil {
			return err
		}

		song.Position = uint(maxPosition) + 1
		return tx.Create(&song).Error
	})
}

func (r repository) findSong(ctx context.Context, eventId, songId uint) (*model.EventSong, error) {
	var song *model.EventSong
	err := r.db.
		WithContext(ctx).
		Where("event_id = ?", eventId).
		First(&song, songId).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errdef.NewNotFound("failed to find song %d on event %d", songId, eventId)
	}
	return song, err
}

func (r repository) saveSong(ctx context.Context, song *model.EventSong) error {
	return r.db.WithContext(ctx).Save(&song).Error
}

func (r repository) deleteSong(ctx context.Context, eventId, songId uint) error {
	db := r.db.
		WithContext(ctx).
		Where("event_id = ?", eventId).
		Delete(&model.EventSong{}, songId)
	if db.Error != nil {
		return db.Error
	} else if db.RowsAffected < 1 {
		return errdef.NewNotFound("failed to find song %d on event %d", songId, eventId)
	}
	return nil
}

// reorderSongs rewrites the setlist positions to match the given id order.
func (r repository) reorderSongs(ctx context.Context, eventId uint, songIds []uint) error {
	seen := make(map[uint]struct{}, len(songIds))
	for _, songId := range songIds {
		if _, ok := seen[songId]; ok {
			return errdef.NewBadRequest("duplicate song id %d", songId)
		}
		seen[songId] = struct{}{}
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		err := tx.
			Model(&model.EventSong{}).
			Where("event_id = ?", eventId).
			Count(&count).Error
		if err != nil {
			return err
		}
		if count != int64(len(songIds)) {
			return errdef.NewBadRequest("expected %d song ids, got %d", count, len(songIds))
		}

		for position, songId := range songIds {
			db := tx.
				Model(&model.EventSong{}).
				Where("id = ? AND event_id = ?", songId, eventId).
				Update("position", position+1)
			if db.Error != nil {
				return db.Error
			}
			if db.RowsAffected < 1 {
				return errdef.NewNotFound("failed to find song %d on event %d", songId, eventId)
			}
		}
		return nil
	})
}
