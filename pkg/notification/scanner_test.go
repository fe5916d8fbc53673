package notification

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/suara-kampus/band-manager/pkg/model"
)

var now = time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

func upcomingEvent(id uint, date time.Time, userIds ...uint) *model.Event {
	event := &model.Event{
		ID:     id,
		Title:  "Konser Amal",
		Date:   date,
		Status: model.EventStatusPublished,
	}
	for _, userId := range userIds {
		userId := userId
		event.Personnel = append(event.Personnel, model.EventPersonnel{
			EventID: id,
			UserID:  &userId,
			Status:  model.PersonnelStatusApproved,
		})
	}
	return event
}

func TestScanner_Scan_OneDayWindow(t *testing.T) {
	recentPractice := &model.Event{ID: 99, Date: now.Add(-24 * time.Hour)}

	t.Run("fires just inside the window", func(t *testing.T) {
		event := upcomingEvent(1, now.Add(time.Duration(1.0999*24*float64(time.Hour))), 7)
		repository := &mockScannerRepository{}
		repository.On("findUpcomingPublished", mock.Anything, now, now.Add(scanHorizon)).Return([]*model.Event{event}, nil)
		repository.On("findLastSharedEvent", mock.Anything, event, now).Return(recentPractice, nil)
		dispatcher := &mockDispatcher{}
		dispatcher.On("Dispatch", mock.Anything, ExplicitAudience(7), mock.MatchedBy(kindIs(model.NotificationEventReminder))).
			Return(Report{Created: 1, Total: 1}, nil)
		scanner := NewScanner(slog.Default(), repository, dispatcher, NewOpenLedger())

		report, err := scanner.Scan(context.Background(), now)

		require.NoError(t, err)
		assert.Equal(t, 1, report.NotificationsCreated)
		assert.Equal(t, 1, report.EventsProcessed)
		dispatcher.AssertExpectations(t)
	})

	t.Run("stays silent just outside the window", func(t *testing.T) {
		event := upcomingEvent(1, now.Add(time.Duration(1.11*24*float64(time.Hour))), 7)
		repository := &mockScannerRepository{}
		repository.On("findUpcomingPublished", mock.Anything, mock.Anything, mock.Anything).Return([]*model.Event{event}, nil)
		repository.On("findLastSharedEvent", mock.Anything, event, now).Return(recentPractice, nil)
		dispatcher := &mockDispatcher{}
		scanner := NewScanner(slog.Default(), repository, dispatcher, NewOpenLedger())

		report, err := scanner.Scan(context.Background(), now)

		require.NoError(t, err)
		assert.Equal(t, 0, report.NotificationsCreated)
		dispatcher.AssertNotCalled(t, "Dispatch", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestScanner_Scan_TwoHourWindow(t *testing.T) {
	recentPractice := &model.Event{ID: 99, Date: now.Add(-24 * time.Hour)}

	t.Run("fires just inside the window", func(t *testing.T) {
		event := upcomingEvent(1, now.Add(time.Duration(2.49*float64(time.Hour))), 7)
		repository := &mockScannerRepository{}
		repository.On("findUpcomingPublished", mock.Anything, mock.Anything, mock.Anything).Return([]*model.Event{event}, nil)
		repository.On("findLastSharedEvent", mock.Anything, event, now).Return(recentPractice, nil)
		dispatcher := &mockDispatcher{}
		dispatcher.On("Dispatch", mock.Anything, ExplicitAudience(7), mock.MatchedBy(kindIs(model.NotificationEventStarting))).
			Return(Report{Created: 1, Total: 1}, nil)
		scanner := NewScanner(slog.Default(), repository, dispatcher, NewOpenLedger())

		report, err := scanner.Scan(context.Background(), now)

		require.NoError(t, err)
		assert.Equal(t, 1, report.NotificationsCreated)
		dispatcher.AssertExpectations(t)
	})

	t.Run("stays silent just outside the window", func(t *testing.T) {
		event := upcomingEvent(1, now.Add(151*time.Minute), 7)
		repository := &mockScannerRepository{}
		repository.On("findUpcomingPublished", mock.Anything, mock.Anything, mock.Anything).Return([]*model.Event{event}, nil)
		repository.On("findLastSharedEvent", mock.Anything, event, now).Return(recentPractice, nil)
		dispatcher := &mockDispatcher{}
		scanner := NewScanner(slog.Default(), repository, dispatcher, NewOpenLedger())

		report, err := scanner.Scan(context.Background(), now)

		require.NoError(t, err)
		assert.Equal(t, 0, report.NotificationsCreated)
		dispatcher.AssertNotCalled(t, "Dispatch", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestScanner_Scan_PracticeReminder(t *testing.T) {
	event := upcomingEvent(1, now.Add(48*time.Hour), 7, 8)

	t.Run("fires after three idle days", func(t *testing.T) {
		repository := &mockScannerRepository{}
		repository.On("findUpcomingPublished", mock.Anything, mock.Anything, mock.Anything).Return([]*model.Event{event}, nil)
		repository.On("findLastSharedEvent", mock.Anything, event, now).Return(&model.Event{ID: 99, Date: now.Add(-4 * 24 * time.Hour)}, nil)
		dispatcher := &mockDispatcher{}
		dispatcher.On("Dispatch", mock.Anything, ExplicitAudience(7, 8), mock.MatchedBy(func(message Message) bool {
			return message.Type == model.NotificationPracticeReminder && assert.ObjectsAreEqual(message.Body, Compose(model.NotificationPracticeReminder, Context{Event: event, DaysIdle: 4}).Body)
		})).Return(Report{Created: 2, Total: 2}, nil)
		scanner := NewScanner(slog.Default(), repository, dispatcher, NewOpenLedger())

		report, err := scanner.Scan(context.Background(), now)

		require.NoError(t, err)
		assert.Equal(t, 2, report.NotificationsCreated)
		dispatcher.AssertExpectations(t)
	})

	t.Run("stays silent after a recent shared event", func(t *testing.T) {
		repository := &mockScannerRepository{}
		repository.On("findUpcomingPublished", mock.Anything, mock.Anything, mock.Anything).Return([]*model.Event{event}, nil)
		repository.On("findLastSharedEvent", mock.Anything, event, now).Return(&model.Event{ID: 99, Date: now.Add(-2 * 24 * time.Hour)}, nil)
		dispatcher := &mockDispatcher{}
		scanner := NewScanner(slog.Default(), repository, dispatcher, NewOpenLedger())

		report, err := scanner.Scan(context.Background(), now)

		require.NoError(t, err)
		assert.Equal(t, 0, report.NotificationsCreated)
	})

	t.Run("fires when the lineup never played together", func(t *testing.T) {
		repository := &mockScannerRepository{}
		repository.On("findUpcomingPublished", mock.Anything, mock.Anything, mock.Anything).Return([]*model.Event{event}, nil)
		repository.On("findLastSharedEvent", mock.Anything, event, now).Return((*model.Event)(nil), nil)
		dispatcher := &mockDispatcher{}
		dispatcher.On("Dispatch", mock.Anything, ExplicitAudience(7, 8), mock.MatchedBy(func(message Message) bool {
			return message.Type == model.NotificationPracticeReminder
		})).Return(Report{Created: 2, Total: 2}, nil)
		scanner := NewScanner(slog.Default(), repository, dispatcher, NewOpenLedger())

		report, err := scanner.Scan(context.Background(), now)

		require.NoError(t, err)
		assert.Equal(t, 2, report.NotificationsCreated)
		dispatcher.AssertExpectations(t)
	})
}

func TestScanner_Scan_SkipsEventsWithoutApprovedPersonnel(t *testing.T) {
	event := upcomingEvent(1, now.Add(24*time.Hour))
	pending := uint(7)
	event.Personnel = []model.EventPersonnel{{EventID: 1, UserID: &pending, Status: model.PersonnelStatusPending}}
	repository := &mockScannerRepository{}
	repository.On("findUpcomingPublished", mock.Anything, mock.Anything, mock.Anything).Return([]*model.Event{event}, nil)
	dispatcher := &mockDispatcher{}
	scanner := NewScanner(slog.Default(), repository, dispatcher, NewOpenLedger())

	report, err := scanner.Scan(context.Background(), now)

	require.NoError(t, err)
	assert.Equal(t, 0, report.NotificationsCreated)
	repository.AssertNotCalled(t, "findLastSharedEvent", mock.Anything, mock.Anything, mock.Anything)
}

func TestScanner_Scan_ClaimedBatchIsNotResent(t *testing.T) {
	event := upcomingEvent(1, now.Add(24*time.Hour), 7)
	repository := &mockScannerRepository{}
	repository.On("findUpcomingPublished", mock.Anything, mock.Anything, mock.Anything).Return([]*model.Event{event}, nil)
	repository.On("findLastSharedEvent", mock.Anything, event, now).Return(&model.Event{ID: 99, Date: now.Add(-24 * time.Hour)}, nil)
	dispatcher := &mockDispatcher{}
	ledger := &mockLedger{}
	ledger.On("Claim", uint(1), model.NotificationEventReminder, event.Date.Format("2006-01-02")).Return(false, nil)
	scanner := NewScanner(slog.Default(), repository, dispatcher, ledger)

	report, err := scanner.Scan(context.Background(), now)

	require.NoError(t, err)
	assert.Equal(t, 0, report.NotificationsCreated)
	dispatcher.AssertNotCalled(t, "Dispatch", mock.Anything, mock.Anything, mock.Anything)
	ledger.AssertExpectations(t)
}

func TestScanner_ActivityScan(t *testing.T) {
	publishedAt := now.Add(-30 * time.Minute)
	member := uint(7)

	t.Run("announces fresh publishes to the team", func(t *testing.T) {
		event := &model.Event{ID: 1, Title: "Konser Amal", Status: model.EventStatusPublished, PublishedAt: &publishedAt}
		repository := &mockScannerRepository{}
		repository.On("findRecentlyPublished", mock.Anything, now.Add(-activityLookback)).Return([]*model.Event{event}, nil)
		repository.On("findRecentSongs", mock.Anything, mock.Anything).Return([]*model.EventSong{}, nil)
		repository.On("findRecentApprovals", mock.Anything, mock.Anything).Return([]*model.EventPersonnel{}, nil)
		dispatcher := &mockDispatcher{}
		dispatcher.On("Dispatch", mock.Anything, TeamMembers(), mock.MatchedBy(kindIs(model.NotificationEventPublished))).
			Return(Report{Created: 5, Total: 5}, nil)
		scanner := NewScanner(slog.Default(), repository, dispatcher, NewOpenLedger())

		report, err := scanner.ActivityScan(context.Background(), now)

		require.NoError(t, err)
		assert.Equal(t, 5, report.NotificationsCreated)
		assert.Equal(t, 1, report.EventsProcessed)
		dispatcher.AssertExpectations(t)
	})

	t.Run("announces new songs to the registered lineup", func(t *testing.T) {
		event := &model.Event{ID: 1, Title: "Konser Amal", Personnel: []model.EventPersonnel{{EventID: 1, UserID: &member, Status: model.PersonnelStatusPending}}}
		song := &model.EventSong{ID: 3, EventID: 1, Title: "Laskar Pelangi"}
		repository := &mockScannerRepository{}
		repository.On("findRecentlyPublished", mock.Anything, mock.Anything).Return([]*model.Event{}, nil)
		repository.On("findRecentSongs", mock.Anything, mock.Anything).Return([]*model.EventSong{song}, nil)
		repository.On("findRecentApprovals", mock.Anything, mock.Anything).Return([]*model.EventPersonnel{}, nil)
		repository.On("findEventWithPersonnel", mock.Anything, uint(1)).Return(event, nil)
		dispatcher := &mockDispatcher{}
		dispatcher.On("Dispatch", mock.Anything, ExplicitAudience(7), mock.MatchedBy(kindIs(model.NotificationSongAdded))).
			Return(Report{Created: 1, Total: 1}, nil)
		scanner := NewScanner(slog.Default(), repository, dispatcher, NewOpenLedger())

		report, err := scanner.ActivityScan(context.Background(), now)

		require.NoError(t, err)
		assert.Equal(t, 1, report.NotificationsCreated)
		dispatcher.AssertExpectations(t)
	})

	t.Run("announces approvals to the member", func(t *testing.T) {
		approvedAt := now.Add(-10 * time.Minute)
		event := &model.Event{ID: 1, Title: "Konser Amal"}
		approval := &model.EventPersonnel{ID: 5, EventID: 1, UserID: &member, Role: "Gitaris", Status: model.PersonnelStatusApproved, ApprovedAt: &approvedAt}
		repository := &mockScannerRepository{}
		repository.On("findRecentlyPublished", mock.Anything, mock.Anything).Return([]*model.Event{}, nil)
		repository.On("findRecentSongs", mock.Anything, mock.Anything).Return([]*model.EventSong{}, nil)
		repository.On("findRecentApprovals", mock.Anything, mock.Anything).Return([]*model.EventPersonnel{approval}, nil)
		repository.On("findEventWithPersonnel", mock.Anything, uint(1)).Return(event, nil)
		dispatcher := &mockDispatcher{}
		dispatcher.On("Dispatch", mock.Anything, ExplicitAudience(7), mock.MatchedBy(func(message Message) bool {
			return message.Type == model.NotificationPersonnelApproved
		})).Return(Report{Created: 1, Total: 1}, nil)
		scanner := NewScanner(slog.Default(), repository, dispatcher, NewOpenLedger())

		report, err := scanner.ActivityScan(context.Background(), now)

		require.NoError(t, err)
		assert.Equal(t, 1, report.NotificationsCreated)
		dispatcher.AssertExpectations(t)
	})
}

func kindIs(kind model.NotificationType) func(Message) bool {
	return func(message Message) bool {
		return message.Type == kind
	}
}

type mockScannerRepository struct{ mock.Mock }

func (m *mockScannerRepository) findUpcomingPublished(ctx context.Context, from, to time.Time) ([]*model.Event, error) {
	called := m.Called(ctx, from, to)
	return called.Get(0).([]*model.Event), called.Error(1)
}

func (m *mockScannerRepository) findLastSharedEvent(ctx context.Context, event *model.Event, before time.Time) (*model.Event, error) {
	called := m.Called(ctx, event, before)
	return called.Get(0).(*model.Event), called.Error(1)
}

func (m *mockScannerRepository) findRecentlyPublished(ctx context.Context, since time.Time) ([]*model.Event, error) {
	called := m.Called(ctx, since)
	return called.Get(0).([]*model.Event), called.Error(1)
}

func (m *mockScannerRepository) findRecentSongs(ctx context.Context, since time.Time) ([]*model.EventSong, error) {
	called := m.Called(ctx, since)
	return called.Get(0).([]*model.EventSong), called.Error(1)
}

func (m *mockScannerRepository) findRecentApprovals(ctx context.Context, since time.Time) ([]*model.EventPersonnel, error) {
	called := m.Called(ctx, since)
	return called.Get(0).([]*model.EventPersonnel), called.Error(1)
}

func (m *mockScannerRepository) findEventWithPersonnel(ctx context.Context, id uint) (*model.Event, error) {
	called := m.Called(ctx, id)
	return called.Get(0).(*model.Event), called.Error(1)
}

type mockDispatcher struct{ mock.Mock }

func (m *mockDispatcher) Dispatch(ctx context.Context, audience Audience, message Message) (Report, error) {
	called := m.Called(ctx, audience, message)
	return called.Get(0).(Report), called.Error(1)
}

type mockLedger struct{ mock.Mock }

func (m *mockLedger) Claim(eventId uint, kind model.NotificationType, stamp string) (bool, error) {
	called := m.Called(eventId, kind, stamp)
	return called.Bool(0), called.Error(1)
}
