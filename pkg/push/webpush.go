package push

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	webpush "github.com/SherClockHolmes/webpush-go"
	"github.com/suara-kampus/band-manager/pkg/model"
)

func NewWebPushSender(publicKey, privateKey, subscriber string) *webPushSender {
	return &webPushSender{
		publicKey:  publicKey,
		privateKey: privateKey,
		subscriber: subscriber,
	}
}

type webPushSender struct {
	publicKey  string
	privateKey string
	subscriber string
}

func (w webPushSender) Send(ctx context.Context, subscription *model.PushSubscription, payload Payload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	target := &webpush.Subscription{
		Endpoint: subscription.Endpoint,
		Keys: webpush.Keys{
			P256dh: subscription.P256dh,
			Auth:   subscription.Auth,
		},
	}

	response, err := webpush.SendNotificationWithContext(ctx, body, target, &webpush.Options{
		Subscriber:      w.subscriber,
		VAPIDPublicKey:  w.publicKey,
		VAPIDPrivateKey: w.privateKey,
		TTL:             60,
	})
	if err != nil {
		return err
	}
	defer func() { _ = response.Body.Close() }()

	// 404 and 410 mean the browser dropped the subscription
	if response.StatusCode == http.StatusNotFound || response.StatusCode == http.StatusGone {
		return fmt.Errorf("%w: push service returned %d", ErrSubscriptionGone, response.StatusCode)
	}
	if response.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("push service returned %d", response.StatusCode)
	}
	return nil
}
