package push

import (
	"context"
	"errors"

	"github.com/suara-kampus/band-manager/pkg/model"
)

var errChannelDisabled = errors.New("push channel is not configured")

// NewDisabledFCMSender stands in when no FCM credentials are configured.
// Every send fails, which the service counts without deactivating the
// subscription.
func NewDisabledFCMSender() disabledFCMSender {
	return disabledFCMSender{}
}

type disabledFCMSender struct{}

func (disabledFCMSender) Send(context.Context, string, Payload) error {
	return errChannelDisabled
}

// NewDisabledWebPushSender stands in when no VAPID keys are configured.
func NewDisabledWebPushSender() disabledWebPushSender {
	return disabledWebPushSender{}
}

type disabledWebPushSender struct{}

func (disabledWebPushSender) Send(context.Context, *model.PushSubscription, Payload) error {
	return errChannelDisabled
}
