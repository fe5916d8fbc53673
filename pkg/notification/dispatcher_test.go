package notification

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/suara-kampus/band-manager/pkg/model"
	"github.com/suara-kampus/band-manager/pkg/push"
)

func TestDispatcher_Dispatch(t *testing.T) {
	message := Message{
		Title:     "Event Baru Dipublikasikan!",
		Body:      "Konser Amal pada 3 October 2026.",
		Type:      model.NotificationEventPublished,
		ActionURL: "/dashboard/events?eventId=42",
	}

	t.Run("creates a row and pushes per user", func(t *testing.T) {
		repository := &mockDispatcherRepository{}
		repository.On("create", mock.Anything, mock.Anything).Return(nil).Times(3)
		pushService := &mockPusher{}
		pushService.On("SendToUser", mock.Anything, mock.Anything, mock.Anything).
			Return(push.Delivery{Sent: 1, Total: 1}, nil).Times(3)
		dispatcher := NewDispatcher(slog.Default(), repository, NewBroker(), pushService)

		report, err := dispatcher.Dispatch(context.Background(), ExplicitAudience(1, 2, 3), message)

		require.NoError(t, err)
		assert.Equal(t, Report{Created: 3, PushSent: 3, PushFailed: 0, Total: 3}, report)
		repository.AssertExpectations(t)
		pushService.AssertExpectations(t)
	})

	t.Run("one failing user doesn't block the rest", func(t *testing.T) {
		repository := &mockDispatcherRepository{}
		repository.On("create", mock.Anything, mock.MatchedBy(func(n *model.Notification) bool { return n.UserID == 2 })).
			Return(errors.New("insert failed"))
		repository.On("create", mock.Anything, mock.Anything).Return(nil)
		pushService := &mockPusher{}
		pushService.On("SendToUser", mock.Anything, mock.Anything, mock.Anything).
			Return(push.Delivery{Sent: 1, Total: 1}, nil)
		dispatcher := NewDispatcher(slog.Default(), repository, NewBroker(), pushService)

		report, err := dispatcher.Dispatch(context.Background(), ExplicitAudience(1, 2, 3), message)

		require.NoError(t, err)
		assert.Equal(t, 2, report.Created)
		assert.Equal(t, 3, report.Total)
		pushService.AssertNumberOfCalls(t, "SendToUser", 2)
	})

	t.Run("push failure doesn't roll back the feed row", func(t *testing.T) {
		repository := &mockDispatcherRepository{}
		repository.On("create", mock.Anything, mock.Anything).Return(nil)
		pushService := &mockPusher{}
		pushService.On("SendToUser", mock.Anything, uint(1), mock.Anything).
			Return(push.Delivery{}, errors.New("push backend down"))
		dispatcher := NewDispatcher(slog.Default(), repository, NewBroker(), pushService)

		report, err := dispatcher.Dispatch(context.Background(), ExplicitAudience(1), message)

		require.NoError(t, err)
		assert.Equal(t, Report{Created: 1, PushSent: 0, PushFailed: 0, Total: 1}, report)
	})

	t.Run("team audience excludes managers", func(t *testing.T) {
		repository := &mockDispatcherRepository{}
		repository.On("findAudience", mock.Anything, model.TeamLevels).Return([]uint{7, 8}, nil)
		repository.On("create", mock.Anything, mock.Anything).Return(nil).Times(2)
		pushService := &mockPusher{}
		pushService.On("SendToUser", mock.Anything, mock.Anything, mock.Anything).
			Return(push.Delivery{}, nil)
		dispatcher := NewDispatcher(slog.Default(), repository, NewBroker(), pushService)

		report, err := dispatcher.Dispatch(context.Background(), TeamMembers(), message)

		require.NoError(t, err)
		assert.Equal(t, 2, report.Created)
		repository.AssertExpectations(t)
	})

	t.Run("connected subscriber gets a stream event", func(t *testing.T) {
		repository := &mockDispatcherRepository{}
		repository.On("create", mock.Anything, mock.Anything).Return(nil)
		pushService := &mockPusher{}
		pushService.On("SendToUser", mock.Anything, mock.Anything, mock.Anything).
			Return(push.Delivery{}, nil)
		broker := NewBroker()
		broker.Subscribe(model.User{ID: 1})
		dispatcher := NewDispatcher(slog.Default(), repository, broker, pushService)

		_, err := dispatcher.Dispatch(context.Background(), ExplicitAudience(1), message)
		require.NoError(t, err)

		select {
		case event := <-broker.subscribers[1].channel:
			assert.Equal(t, model.NotificationEventPublished, event.Type)
			assert.Equal(t, message.Title, event.Message)
		case <-time.After(time.Second):
			t.Fatal("expected a stream event")
		}
	})
}

type mockDispatcherRepository struct{ mock.Mock }

func (m *mockDispatcherRepository) create(ctx context.Context, notification *model.Notification) error {
	called := m.Called(ctx, notification)
	return called.Error(0)
}

func (m *mockDispatcherRepository) findAudience(ctx context.Context, levels []model.OrganizationLevel) ([]uint, error) {
	called := m.Called(ctx, levels)
	return called.Get(0).([]uint), called.Error(1)
}

type mockPusher struct{ mock.Mock }

func (m *mockPusher) SendToUser(ctx context.Context, userId uint, payload push.Payload) (push.Delivery, error) {
	called := m.Called(ctx, userId, payload)
	return called.Get(0).(push.Delivery), called.Error(1)
}
