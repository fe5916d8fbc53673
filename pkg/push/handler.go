package push

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/suara-kampus/band-manager/internal/errdef"
	"github.com/suara-kampus/band-manager/internal/handler"
	"github.com/suara-kampus/band-manager/pkg/model"
)

type pushService interface {
	Subscribe(ctx context.Context, userId uint, subscribe Subscribe) (*model.PushSubscription, error)
	Unsubscribe(ctx context.Context, userId, subscriptionId uint) error
	List(ctx context.Context, userId uint) ([]*model.PushSubscription, error)
	DeactivateStale(ctx context.Context, failedFor time.Duration) (int64, error)
}

func NewHandler(pushService pushService) Handler {
	return Handler{pushService}
}

type Handler struct {
	pushService pushService
}

type SubscribeRequest struct {
	Kind       model.SubscriptionKind `json:"kind" binding:"required,oneof=fcm webpush"`
	Token      string                 `json:"token"`
	Endpoint   string                 `json:"endpoint"`
	P256dh     string                 `json:"p256dh"`
	Auth       string                 `json:"auth"`
	DeviceInfo string                 `json:"deviceInfo"`
}

// Subscribe push
// swagger:route POST /push/subscriptions subscribe
//
// Register a push subscription for the current user. An FCM subscription
// needs a token, a web push subscription needs an endpoint with its keys.
// Re-registering an existing token or endpoint reactivates it.
//
// responses:
//
//	201: PushSubscription
//	400: Error
//	401: Error
func (h Handler) Subscribe(c *gin.Context) {
	user, err := handler.GetUserFromContext(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	request := &SubscribeRequest{}
	if err := handler.DataBinder(c, request); err != nil {
		_ = c.Error(err)
		return
	}

	if request.Kind == model.SubscriptionFCM && request.Token == "" {
		_ = c.Error(errdef.NewBadRequest("fcm subscription requires a token"))
		return
	}
	if request.Kind == model.SubscriptionWebPush && (request.Endpoint == "" || request.P256dh == "" || request.Auth == "") {
		_ = c.Error(errdef.NewBadRequest("webpush subscription requires endpoint, p256dh and auth"))
		return
	}

	subscription, err := h.pushService.Subscribe(c.Request.Context(), user.ID, Subscribe{
		Kind:       request.Kind,
		Token:      request.Token,
		Endpoint:   request.Endpoint,
		P256dh:     request.P256dh,
		Auth:       request.Auth,
		DeviceInfo: request.DeviceInfo,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, subscription)
}

// List push subscriptions
// swagger:route GET /push/subscriptions listSubscriptions
//
// Return all push subscriptions of the current user, active and inactive.
//
// responses:
//
//	200: []PushSubscription
//	401: Error
func (h Handler) List(c *gin.Context) {
	user, err := handler.GetUserFromContext(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	subscriptions, err := h.pushService.List(c.Request.Context(), user.ID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, subscriptions)
}

// Unsubscribe push
// swagger:route DELETE /push/subscriptions/{id} unsubscribe
//
// Deactivate one of the current user's push subscriptions.
//
// responses:
//
//	204:
//	401: Error
//	403: Error
//	404: Error
func (h Handler) Unsubscribe(c *gin.Context) {
	user, err := handler.GetUserFromContext(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	id, ok := handler.GetPathParameter(c, "id")
	if !ok {
		return
	}

	if err := h.pushService.Unsubscribe(c.Request.Context(), user.ID, id); err != nil {
		_ = c.Error(err)
		return
	}

	c.Status(http.StatusNoContent)
}

type CleanupResponse struct {
	Deactivated int64 `json:"deactivated"`
}

// Cleanup stale subscriptions
// swagger:route POST /push/cleanup cleanup
//
// Deactivate subscriptions that keep failing. A subscription is stale once
// it has failed at least three times and the last failure is over a week old.
//
// responses:
//
//	200: CleanupResponse
//	401: Error
//	403: Error
func (h Handler) Cleanup(c *gin.Context) {
	deactivated, err := h.pushService.DeactivateStale(c.Request.Context(), 7*24*time.Hour)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, CleanupResponse{Deactivated: deactivated})
}
