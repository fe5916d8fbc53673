package push

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/suara-kampus/band-manager/internal/errdef"
	"github.com/suara-kampus/band-manager/pkg/model"
)

// ErrSubscriptionGone marks a delivery failure that will never succeed
// again, such as an unregistered FCM token or a dropped browser endpoint.
// Senders wrap it so the service can deactivate the subscription.
var ErrSubscriptionGone = errors.New("push subscription gone")

// Payload is the channel-independent push message.
type Payload struct {
	Title string            `json:"title"`
	Body  string            `json:"body"`
	Data  map[string]string `json:"data,omitempty"`
}

// Delivery aggregates per-token outcomes of one SendToUser call.
type Delivery struct {
	Sent   int `json:"sent"`
	Failed int `json:"failed"`
	Total  int `json:"total"`
}

// FCMSender delivers to one FCM token.
type FCMSender interface {
	Send(ctx context.Context, token string, payload Payload) error
}

// WebPushSender delivers to one web push endpoint.
type WebPushSender interface {
	Send(ctx context.Context, subscription *model.PushSubscription, payload Payload) error
}

type subscriptionRepository interface {
	findActiveByUser(ctx context.Context, userId uint) ([]*model.PushSubscription, error)
	findByUser(ctx context.Context, userId uint) ([]*model.PushSubscription, error)
	findById(ctx context.Context, id uint) (*model.PushSubscription, error)
	upsert(ctx context.Context, subscription *model.PushSubscription) error
	deactivate(ctx context.Context, id uint) error
	recordFailure(ctx context.Context, subscription *model.PushSubscription, deactivate bool) error
	deactivateStale(ctx context.Context, failuresAtLeast uint, failedBefore time.Time) (int64, error)
}

func NewService(logger *slog.Logger, repository subscriptionRepository, fcm FCMSender, webPush WebPushSender) *Service {
	return &Service{
		logger:     logger,
		repository: repository,
		fcm:        fcm,
		webPush:    webPush,
	}
}

type Service struct {
	logger     *slog.Logger
	repository subscriptionRepository
	fcm        FCMSender
	webPush    WebPushSender
}

// SendToUser delivers the payload to every active subscription of the user.
// Delivery is best effort; failures are recorded on the subscription and
// never abort the remaining tokens.
func (s *Service) SendToUser(ctx context.Context, userId uint, payload Payload) (Delivery, error) {
	subscriptions, err := s.repository.findActiveByUser(ctx, userId)
	if err != nil {
		return Delivery{}, err
	}

	delivery := Delivery{Total: len(subscriptions)}
	for _, subscription := range subscriptions {
		err := s.send(ctx, subscription, payload)
		if err == nil {
			delivery.Sent++
			continue
		}

		delivery.Failed++
		gone := errors.Is(err, ErrSubscriptionGone)
		s.logger.WarnContext(ctx, "Push delivery failed",
			"user", userId, "subscription", subscription.ID, "kind", subscription.Kind, "gone", gone, "error", err)
		if err := s.repository.recordFailure(ctx, subscription, gone); err != nil {
			s.logger.ErrorContext(ctx, "Failed to record push failure", "subscription", subscription.ID, "error", err)
		}
	}

	return delivery, nil
}

func (s *Service) send(ctx context.Context, subscription *model.PushSubscription, payload Payload) error {
	if subscription.Kind == model.SubscriptionWebPush {
		return s.webPush.Send(ctx, subscription, payload)
	}
	return s.fcm.Send(ctx, subscription.Token, payload)
}

type Subscribe struct {
	Kind       model.SubscriptionKind
	Token      string
	Endpoint   string
	P256dh     string
	Auth       string
	DeviceInfo string
}

func (s *Service) Subscribe(ctx context.Context, userId uint, subscribe Subscribe) (*model.PushSubscription, error) {
	subscription := &model.PushSubscription{
		UserID:     userId,
		Kind:       subscribe.Kind,
		Token:      subscribe.Token,
		Endpoint:   subscribe.Endpoint,
		P256dh:     subscribe.P256dh,
		Auth:       subscribe.Auth,
		DeviceInfo: subscribe.DeviceInfo,
		IsActive:   true,
	}

	if err := s.repository.upsert(ctx, subscription); err != nil {
		return nil, err
	}
	return subscription, nil
}

func (s *Service) Unsubscribe(ctx context.Context, userId, subscriptionId uint) error {
	subscription, err := s.repository.findById(ctx, subscriptionId)
	if err != nil {
		return err
	}
	if subscription.UserID != userId {
		return errdef.NewForbidden("subscription %d doesn't belong to user %d", subscriptionId, userId)
	}

	return s.repository.deactivate(ctx, subscriptionId)
}

func (s *Service) List(ctx context.Context, userId uint) ([]*model.PushSubscription, error) {
	return s.repository.findByUser(ctx, userId)
}

// DeactivateStale turns off subscriptions with at least three recorded
// failures that haven't been seen working for the given duration.
func (s *Service) DeactivateStale(ctx context.Context, failedFor time.Duration) (int64, error) {
	return s.repository.deactivateStale(ctx, 3, time.Now().Add(-failedFor))
}
