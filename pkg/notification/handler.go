package notification

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/suara-kampus/band-manager/internal/errdef"
	"github.com/suara-kampus/band-manager/internal/handler"
	"github.com/suara-kampus/band-manager/pkg/model"
)

const (
	defaultFeedLimit = 20
	maxFeedLimit     = 100
)

type feedRepository interface {
	findByUser(ctx context.Context, userId uint, unreadOnly bool, limit, offset int) (*Feed, error)
	markRead(ctx context.Context, userId, id uint) error
	markAllRead(ctx context.Context, userId uint) (int64, error)
}

type broker interface {
	Subscribe(user model.User) chan StreamEvent
	Unsubscribe(id uint, channel chan StreamEvent)
}

func NewHandler(repository feedRepository, scanner scanRunner, broker broker, baseURL, cronSecret string) Handler {
	return Handler{
		repository: repository,
		scanner:    scanner,
		broker:     broker,
		client:     &http.Client{Timeout: 2 * time.Minute},
		baseURL:    baseURL,
		cronSecret: cronSecret,
	}
}

type Handler struct {
	repository feedRepository
	scanner    scanRunner
	broker     broker
	client     *http.Client
	baseURL    string
	cronSecret string
}

type ScheduleRemindersResponse struct {
	Success              bool      `json:"success"`
	NotificationsCreated int       `json:"notificationsCreated"`
	EventsProcessed      int       `json:"eventsProcessed"`
	Timestamp            time.Time `json:"timestamp"`
}

// ScheduleReminders cron entry point
// swagger:route POST /notifications/schedule-reminders scheduleReminders
//
// Run the reminder and activity scans once. Authenticated with the cron
// secret, not a user session.
//
// responses:
//
//	200: ScheduleRemindersResponse
//	401: Error
func (h Handler) ScheduleReminders(c *gin.Context) {
	ctx := c.Request.Context()
	now := time.Now()

	reminders, err := h.scanner.Scan(ctx, now)
	if err != nil {
		_ = c.Error(err)
		return
	}

	activity, err := h.scanner.ActivityScan(ctx, now)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, ScheduleRemindersResponse{
		Success:              true,
		NotificationsCreated: reminders.NotificationsCreated + activity.NotificationsCreated,
		EventsProcessed:      reminders.EventsProcessed + activity.EventsProcessed,
		Timestamp:            now,
	})
}

// TriggerReminders manual trigger
// swagger:route GET /notifications/schedule-reminders triggerReminders
//
// Let a signed-in manager fire the cron endpoint by hand. The call is
// proxied over HTTP with the cron secret so both paths stay identical.
//
// responses:
//
//	200: ScheduleRemindersResponse
//	401: Error
//	403: Error
func (h Handler) TriggerReminders(c *gin.Context) {
	url := fmt.Sprintf("%s/notifications/schedule-reminders", h.baseURL)
	request, err := http.NewRequestWithContext(c.Request.Context(), http.MethodPost, url, nil)
	if err != nil {
		_ = c.Error(err)
		return
	}
	request.Header.Set("Authorization", "Bearer "+h.cronSecret)

	response, err := h.client.Do(request)
	if err != nil {
		_ = c.Error(fmt.Errorf("failed to trigger reminder scan: %v", err))
		return
	}
	defer func() { _ = response.Body.Close() }()

	body, err := io.ReadAll(response.Body)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.Data(response.StatusCode, response.Header.Get("Content-Type"), body)
}

// List notifications
// swagger:route GET /notifications listNotifications
//
// Return the current user's feed, newest first, with the unread count.
// Supports ?unread=true, ?limit and ?offset.
//
// responses:
//
//	200: Feed
//	401: Error
func (h Handler) List(c *gin.Context) {
	user, err := handler.GetUserFromContext(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	unreadOnly := c.Query("unread") == "true"
	limit, err := positiveQueryInt(c, "limit", defaultFeedLimit)
	if err != nil {
		_ = c.Error(err)
		return
	}
	if limit > maxFeedLimit {
		limit = maxFeedLimit
	}
	offset, err := positiveQueryInt(c, "offset", 0)
	if err != nil {
		_ = c.Error(err)
		return
	}

	feed, err := h.repository.findByUser(c.Request.Context(), user.ID, unreadOnly, limit, offset)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, feed)
}

// MarkRead notification
// swagger:route PUT /notifications/{id}/read markRead
//
// Mark one of the current user's notifications as read.
//
// responses:
//
//	204:
//	401: Error
//	404: Error
func (h Handler) MarkRead(c *gin.Context) {
	user, err := handler.GetUserFromContext(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	id, ok := handler.GetPathParameter(c, "id")
	if !ok {
		return
	}

	if err := h.repository.markRead(c.Request.Context(), user.ID, id); err != nil {
		_ = c.Error(err)
		return
	}

	c.Status(http.StatusNoContent)
}

type MarkAllReadResponse struct {
	Updated int64 `json:"updated"`
}

// MarkAllRead notifications
// swagger:route PUT /notifications/read-all markAllRead
//
// Mark every unread notification of the current user as read.
//
// responses:
//
//	200: MarkAllReadResponse
//	401: Error
func (h Handler) MarkAllRead(c *gin.Context) {
	user, err := handler.GetUserFromContext(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	updated, err := h.repository.markAllRead(c.Request.Context(), user.ID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, MarkAllReadResponse{Updated: updated})
}

// Subscribe notification stream
// swagger:route GET /notifications/subscribe streamNotifications
//
// Stream live notifications for the current user over SSE.
//
// responses:
//
//	200: Stream
//	401: Error
func (h Handler) Subscribe(c *gin.Context) {
	user, err := handler.GetUserFromContext(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	channel := h.broker.Subscribe(*user)
	defer h.broker.Unsubscribe(user.ID, channel)

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("Transfer-Encoding", "chunked")

	c.Stream(func(w io.Writer) bool {
		if event, open := <-channel; open {
			c.SSEvent(string(event.Type), event.Message)
			return true
		}
		return false
	})
}

func positiveQueryInt(c *gin.Context, name string, fallback int) (int, error) {
	value := c.Query(name)
	if value == "" {
		return fallback, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed < 0 {
		return 0, errdef.NewBadRequest("query parameter %q must be a non-negative integer", name)
	}
	return parsed, nil
}
