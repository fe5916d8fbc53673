package notification

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/suara-kampus/band-manager/pkg/model"
)

func TestHandler_ScheduleReminders(t *testing.T) {
	scanner := &mockScanRunner{}
	scanner.On("Scan", mock.Anything, mock.Anything).Return(ScanReport{NotificationsCreated: 3, EventsProcessed: 2}, nil)
	scanner.On("ActivityScan", mock.Anything, mock.Anything).Return(ScanReport{NotificationsCreated: 1, EventsProcessed: 1}, nil)
	handler := NewHandler(&mockFeedRepository{}, scanner, NewBroker(), "http://localhost", "secret")

	recorder := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(recorder)
	c.Request = httptest.NewRequest(http.MethodPost, "/notifications/schedule-reminders", nil)

	handler.ScheduleReminders(c)

	require.Len(t, c.Errors.Errors(), 0)
	var got ScheduleRemindersResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &got))
	assert.True(t, got.Success)
	assert.Equal(t, 4, got.NotificationsCreated)
	assert.Equal(t, 3, got.EventsProcessed)
	assert.WithinDuration(t, time.Now(), got.Timestamp, time.Minute)
	scanner.AssertExpectations(t)
}

func TestHandler_TriggerReminders_ProxiesWithCronSecret(t *testing.T) {
	var gotAuthorization string
	cron := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuthorization = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"notificationsCreated":2,"eventsProcessed":1}`))
	}))
	defer cron.Close()
	handler := NewHandler(&mockFeedRepository{}, &mockScanRunner{}, NewBroker(), cron.URL, "secret")

	recorder := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(recorder)
	c.Request = httptest.NewRequest(http.MethodGet, "/notifications/schedule-reminders", nil)

	handler.TriggerReminders(c)

	require.Len(t, c.Errors.Errors(), 0)
	assert.Equal(t, "Bearer secret", gotAuthorization)
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), `"notificationsCreated":2`)
}

func TestHandler_List(t *testing.T) {
	feed := &Feed{
		Notifications: []*model.Notification{{ID: 1, UserID: 7, Title: "Waktunya Latihan!"}},
		UnreadCount:   1,
	}
	repository := &mockFeedRepository{}
	repository.On("findByUser", mock.Anything, uint(7), true, defaultFeedLimit, 0).Return(feed, nil)
	handler := NewHandler(repository, &mockScanRunner{}, NewBroker(), "http://localhost", "secret")

	recorder := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(recorder)
	c.Set("user", &model.User{ID: 7})
	c.Request = httptest.NewRequest(http.MethodGet, "/notifications?unread=true", nil)

	handler.List(c)

	require.Len(t, c.Errors.Errors(), 0)
	var got Feed
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &got))
	assert.Equal(t, int64(1), got.UnreadCount)
	require.Len(t, got.Notifications, 1)
	assert.Equal(t, "Waktunya Latihan!", got.Notifications[0].Title)
	repository.AssertExpectations(t)
}

func TestHandler_List_RejectsBadLimit(t *testing.T) {
	handler := NewHandler(&mockFeedRepository{}, &mockScanRunner{}, NewBroker(), "http://localhost", "secret")

	recorder := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(recorder)
	c.Set("user", &model.User{ID: 7})
	c.Request = httptest.NewRequest(http.MethodGet, "/notifications?limit=-1", nil)

	handler.List(c)

	require.Len(t, c.Errors.Errors(), 1)
}

func TestHandler_MarkRead(t *testing.T) {
	repository := &mockFeedRepository{}
	repository.On("markRead", mock.Anything, uint(7), uint(9)).Return(nil)
	handler := NewHandler(repository, &mockScanRunner{}, NewBroker(), "http://localhost", "secret")

	recorder := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(recorder)
	c.Set("user", &model.User{ID: 7})
	c.AddParam("id", "9")
	c.Request = httptest.NewRequest(http.MethodPut, "/notifications/9/read", nil)

	handler.MarkRead(c)

	require.Len(t, c.Errors.Errors(), 0)
	assert.Equal(t, http.StatusNoContent, c.Writer.Status())
	repository.AssertExpectations(t)
}

func TestHandler_MarkAllRead(t *testing.T) {
	repository := &mockFeedRepository{}
	repository.On("markAllRead", mock.Anything, uint(7)).Return(int64(4), nil)
	handler := NewHandler(repository, &mockScanRunner{}, NewBroker(), "http://localhost", "secret")

	recorder := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(recorder)
	c.Set("user", &model.User{ID: 7})
	c.Request = httptest.NewRequest(http.MethodPut, "/notifications/read-all", nil)

	handler.MarkAllRead(c)

	require.Len(t, c.Errors.Errors(), 0)
	assert.Contains(t, recorder.Body.String(), `"updated":4`)
	repository.AssertExpectations(t)
}

func TestHandler_Subscribe_UnsubscribesOnClientDisconnect(t *testing.T) {
	gin.SetMode(gin.TestMode)
	broker := NewBroker()
	handler := NewHandler(&mockFeedRepository{}, &mockScanRunner{}, broker, "http://localhost", "secret")

	engine := gin.New()
	engine.GET("/notifications/subscribe", func(c *gin.Context) {
		c.Set("user", &model.User{ID: 7})
		handler.Subscribe(c)
	})
	server := httptest.NewServer(engine)
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, server.URL+"/notifications/subscribe", nil)
	require.NoError(t, err)
	done := make(chan struct{})
	go func() {
		defer close(done)
		response, err := http.DefaultClient.Do(request)
		if err == nil {
			_ = response.Body.Close()
		}
	}()

	require.Eventually(t, func() bool {
		return len(broker.Subscribers()) == 1
	}, time.Second, 10*time.Millisecond)

	cancel()
	<-done

	assert.Eventually(t, func() bool {
		broker.Send(7, StreamEvent{Type: model.NotificationEventPublished, Message: "unblock"})
		return len(broker.Subscribers()) == 0
	}, 2*time.Second, 20*time.Millisecond)
}

type mockFeedRepository struct{ mock.Mock }

func (m *mockFeedRepository) findByUser(ctx context.Context, userId uint, unreadOnly bool, limit, offset int) (*Feed, error) {
	called := m.Called(ctx, userId, unreadOnly, limit, offset)
	return called.Get(0).(*Feed), called.Error(1)
}

func (m *mockFeedRepository) markRead(ctx context.Context, userId, id uint) error {
	return m.Called(ctx, userId, id).Error(0)
}

func (m *mockFeedRepository) markAllRead(ctx context.Context, userId uint) (int64, error) {
	called := m.Called(ctx, userId)
	return called.Get(0).(int64), called.Error(1)
}

type mockScanRunner struct{ mock.Mock }

func (m *mockScanRunner) Scan(ctx context.Context, now time.Time) (ScanReport, error) {
	called := m.Called(ctx, now)
	return called.Get(0).(ScanReport), called.Error(1)
}

func (m *mockScanRunner) ActivityScan(ctx context.Context, now time.Time) (ScanReport, error) {
	called := m.Called(ctx, now)
	return called.Get(0).(ScanReport), called.Error(1)
}
