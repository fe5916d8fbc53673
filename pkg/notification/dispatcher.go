package notification

import (
	"context"
	"log/slog"
	"sync"

	"github.com/suara-kampus/band-manager/pkg/model"
	"github.com/suara-kampus/band-manager/pkg/push"
	"golang.org/x/sync/errgroup"
)

// fanOutLimit bounds concurrent per-user deliveries of one Dispatch call.
const fanOutLimit = 8

type audienceScope string

const (
	scopeExplicit audienceScope = "explicit"
	scopeAll      audienceScope = "all"
	scopeTeam     audienceScope = "team"
)

// Audience names the recipients of a dispatch, either explicitly or as a
// scope resolved against the user table at dispatch time.
type Audience struct {
	userIds []uint
	scope   audienceScope
}

func ExplicitAudience(userIds ...uint) Audience {
	return Audience{userIds: userIds, scope: scopeExplicit}
}

// AllMembers targets every validated member regardless of level.
func AllMembers() Audience {
	return Audience{scope: scopeAll}
}

// TeamMembers targets the performing levels only, excluding managers.
func TeamMembers() Audience {
	return Audience{scope: scopeTeam}
}

// Report sums the per-user outcomes of one dispatch. Created counts feed
// rows, PushSent and PushFailed count individual device deliveries.
type Report struct {
	Created    int `json:"created"`
	PushSent   int `json:"pushSent"`
	PushFailed int `json:"pushFailed"`
	Total      int `json:"total"`
}

func (r *Report) add(other Report) {
	r.Created += other.Created
	r.PushSent += other.PushSent
	r.PushFailed += other.PushFailed
	r.Total += other.Total
}

type dispatcherRepository interface {
	create(ctx context.Context, notification *model.Notification) error
	findAudience(ctx context.Context, levels []model.OrganizationLevel) ([]uint, error)
}

type pusher interface {
	SendToUser(ctx context.Context, userId uint, payload push.Payload) (push.Delivery, error)
}

type streamer interface {
	Send(id uint, event StreamEvent) bool
}

func NewDispatcher(logger *slog.Logger, repository dispatcherRepository, broker streamer, push pusher) *Dispatcher {
	return &Dispatcher{
		logger:     logger,
		repository: repository,
		broker:     broker,
		push:       push,
	}
}

type Dispatcher struct {
	logger     *slog.Logger
	repository dispatcherRepository
	broker     streamer
	push       pusher
}

// Dispatch delivers one message to every user in the audience. Each user is
// handled independently: a failure for one user is logged and counted, never
// propagated to the others. The returned error covers only audience
// resolution; delivery outcomes live in the Report.
func (d *Dispatcher) Dispatch(ctx context.Context, audience Audience, message Message) (Report, error) {
	userIds, err := d.resolve(ctx, audience)
	if err != nil {
		return Report{}, err
	}

	var lock sync.Mutex
	report := Report{}

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(fanOutLimit)
	for _, userId := range userIds {
		userId := userId
		group.Go(func() error {
			outcome := d.deliver(groupCtx, userId, message)
			lock.Lock()
			report.add(outcome)
			lock.Unlock()
			return nil
		})
	}
	_ = group.Wait()

	return report, nil
}

func (d *Dispatcher) deliver(ctx context.Context, userId uint, message Message) Report {
	outcome := Report{Total: 1}

	notification := &model.Notification{
		UserID:    userId,
		Title:     message.Title,
		Message:   message.Body,
		Type:      message.Type,
		EventID:   message.EventID,
		ActionURL: message.ActionURL,
	}
	if err := d.repository.create(ctx, notification); err != nil {
		d.logger.ErrorContext(ctx, "Failed to create notification", "user", userId, "type", message.Type, "error", err)
		return outcome
	}
	outcome.Created = 1

	d.broker.Send(userId, StreamEvent{Type: message.Type, Message: message.Title})

	delivery, err := d.push.SendToUser(ctx, userId, push.Payload{
		Title: message.Title,
		Body:  message.Body,
		Data: map[string]string{
			"type": string(message.Type),
			"url":  message.ActionURL,
		},
	})
	if err != nil {
		d.logger.ErrorContext(ctx, "Failed to push notification", "user", userId, "type", message.Type, "error", err)
		return outcome
	}
	outcome.PushSent = delivery.Sent
	outcome.PushFailed = delivery.Failed

	return outcome
}

func (d *Dispatcher) resolve(ctx context.Context, audience Audience) ([]uint, error) {
	switch audience.scope {
	case scopeExplicit:
		return audience.userIds, nil
	case scopeTeam:
		return d.repository.findAudience(ctx, model.TeamLevels)
	default:
		return d.repository.findAudience(ctx, nil)
	}
}
