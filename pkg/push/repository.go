package push

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

func (r repository) findActiveByUser(ctx context.Context, userId uint) ([]*model.PushSubscription, error) {
	var subscriptions []*model.PushSubscription
	err := r.db.
		WithContext(ctx).
		Where("user_id = ? AND is_active", userId).
		Find(&subscriptions).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find subscriptions for user %d: %v", userId, err)
	}
	return subscriptions, nil
}

func (r repository) findByUser(ctx context.Context, userId uint) ([]*model.PushSubscription, error) {
	var subscriptions []*model.PushSubscription
	err := r.db.
		WithContext(ctx).
		Where("user_id = ?", userId).
		Order("created_at DESC").
		Find(&subscriptions).Error
	return subscriptions, err
}

func (r repository) findById(ctx context.Context, id uint) (*model.PushSubscription, error) {
	var subscription *model.PushSubscription
	err := r.db.WithContext(ctx).First(&subscription, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errdef.NewNotFound("failed to find subscription with id %d", id)
	}
	return subscription, err
}

// upsert reactivates an existing registration for the same token or endpoint
// instead of inserting a duplicate row.
func (r repository) upsert(ctx context.Context, subscription *model.PushSubscription) error {
	var existing model.PushSubscription
	query := r.db.WithContext(ctx)
	if subscription.Kind == model.SubscriptionFCM {
		query = query.Where("token = ?", subscription.Token)
	} else {
		query = query.Where("endpoint = ?", subscription.Endpoint)
	}

	err := query.First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return r.db.WithContext(ctx).Create(&subscription).Error
	}
	if err != nil {
		return err
	}

	existing.UserID = subscription.UserID
	existing.DeviceInfo = subscription.DeviceInfo
	existing.P256dh = subscription.P256dh
	existing.Auth = subscription.Auth
	existing.IsActive = true
	existing.FailureCount = 0
	existing.LastFailureAt = nil

	if err := r.db.WithContext(ctx).Save(&existing).Error; err != nil {
		return err
	}
	*subscription = existing
	return nil
}

func (r repository) deactivate(ctx context.Context, id uint) error {
	db := r.db.
		WithContext(ctx).
		Model(&model.PushSubscription{}).
		Where("id = ?", id).
		Update("is_active", false)
	if db.Error != nil {
		return db.Error
	}
	if db.RowsAffected < 1 {
		return errdef.NewNotFound("failed to find subscription with id %d", id)
	}
	return nil
}

func (r repository) recordFailure(ctx context.Context, subscription *model.PushSubscription, deactivate bool) error {
	now := time.Now()
	updates := map[string]any{
		"failure_count":   gorm.Expr("failure_count + 1"),
		"last_failure_at": now,
	}
	if deactivate {
		updates["is_active"] = false
	}
	return r.db.
		WithContext(ctx).
		Model(&subscription).
		Updates(updates).Error
}

// deactivateStale turns off subscriptions that have kept failing and haven't
// succeeded since before the cutoff.
func (r repository) deactivateStale(ctx context.Context, failuresAtLeast uint, failedBefore time.Time) (int64, error) {
	db := r.db.
		WithContext(ctx).
		Model(&model.PushSubscription{}).
		Where("is_active AND failure_count >= ? AND last_failure_at < ?", failuresAtLeast, failedBefore).
		Update("is_active", false)
	return db.RowsAffected, db.Error
}
