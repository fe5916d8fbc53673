package notification

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/suara-kampus/band-manager/pkg/model"
)

const (
	// scanHorizon is how far ahead the reminder scan looks for events.
	scanHorizon = 72 * time.Hour

	// oneDayWindow accepts events whose distance to the one-day mark is
	// within ±0.1 days, matching a scan cadence of a few hours.
	oneDayWindow = 0.1

	// twoHourWindow accepts events within ±0.5 hours of the two-hour mark.
	twoHourWindow = 0.5

	// practiceIdleDays is the idle streak that triggers a practice nudge.
	practiceIdleDays = 3

	// noPriorEventDaysIdle stands in for "never practiced together". It is
	// far above any real streak so the nudge always fires.
	noPriorEventDaysIdle = 999

	// activityLookback is how far back the activity scan searches for
	// publishes, setlist changes and approvals it hasn't announced yet.
	activityLookback = time.Hour
)

type scannerRepository interface {
	findUpcomingPublished(ctx context.Context, from, to time.Time) ([]*model.Event, error)
	findLastSharedEvent(ctx context.Context, event *model.Event, before time.Time) (*model.Event, error)
	findRecentlyPublished(ctx context.Context, since time.Time) ([]*model.Event, error)
	findRecentSongs(ctx context.Context, since time.Time) ([]*model.EventSong, error)
	findRecentApprovals(ctx context.Context, since time.Time) ([]*model.EventPersonnel, error)
	findEventWithPersonnel(ctx context.Context, id uint) (*model.Event, error)
}

type dispatcher interface {
	Dispatch(ctx context.Context, audience Audience, message Message) (Report, error)
}

func NewScanner(logger *slog.Logger, repository scannerRepository, dispatcher dispatcher, ledger Ledger) *Scanner {
	return &Scanner{
		logger:     logger,
		repository: repository,
		dispatcher: dispatcher,
		ledger:     ledger,
	}
}

type Scanner struct {
	logger     *slog.Logger
	repository scannerRepository
	dispatcher dispatcher
	ledger     Ledger
}

// ScanReport sums what one scan produced.
type ScanReport struct {
	NotificationsCreated int
	EventsProcessed      int
}

// Scan walks published events inside the horizon and fires the reminder
// kinds whose window matches. The three kinds are independent; one event can
// trigger several in a single scan.
func (s *Scanner) Scan(ctx context.Context, now time.Time) (ScanReport, error) {
	events, err := s.repository.findUpcomingPublished(ctx, now, now.Add(scanHorizon))
	if err != nil {
		return ScanReport{}, err
	}

	report := ScanReport{EventsProcessed: len(events)}
	for _, event := range events {
		audience := approvedUserIds(event.Personnel)
		if len(audience) == 0 {
			continue
		}

		daysUntil := event.Date.Sub(now).Hours() / 24
		hoursUntil := event.Date.Sub(now).Hours()

		if abs(daysUntil-1) < oneDayWindow {
			stamp := event.Date.Format("2006-01-02")
			report.NotificationsCreated += s.remind(ctx, event, model.NotificationEventReminder, Context{Event: event}, audience, stamp)
		}

		if abs(hoursUntil-2) < twoHourWindow {
			stamp := event.Date.Format("2006-01-02T15")
			report.NotificationsCreated += s.remind(ctx, event, model.NotificationEventStarting, Context{Event: event}, audience, stamp)
		}

		daysIdle, err := s.daysSinceLastSharedEvent(ctx, event, now)
		if err != nil {
			s.logger.ErrorContext(ctx, "Failed to find last shared event", "event", event.ID, "error", err)
			continue
		}
		if daysIdle >= practiceIdleDays {
			stamp := now.Format("2006-01-02")
			report.NotificationsCreated += s.remind(ctx, event, model.NotificationPracticeReminder, Context{Event: event, DaysIdle: daysIdle}, audience, stamp)
		}
	}

	return report, nil
}

func (s *Scanner) remind(ctx context.Context, event *model.Event, kind model.NotificationType, composeContext Context, audience []uint, stamp string) int {
	claimed, err := s.ledger.Claim(event.ID, kind, stamp)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to claim reminder", "event", event.ID, "kind", kind, "error", err)
		return 0
	}
	if !claimed {
		return 0
	}

	report, err := s.dispatcher.Dispatch(ctx, ExplicitAudience(audience...), Compose(kind, composeContext))
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to dispatch reminder", "event", event.ID, "kind", kind, "error", err)
		return 0
	}

	s.logger.InfoContext(ctx, "Dispatched reminder",
		"event", event.ID, "kind", kind, "created", report.Created, "pushSent", report.PushSent, "pushFailed", report.PushFailed)
	return report.Created
}

func (s *Scanner) daysSinceLastSharedEvent(ctx context.Context, event *model.Event, now time.Time) (int, error) {
	last, err := s.repository.findLastSharedEvent(ctx, event, now)
	if err != nil {
		return 0, err
	}
	if last == nil {
		return noPriorEventDaysIdle, nil
	}
	return int(now.Sub(last.Date).Hours() / 24), nil
}

// ActivityScan announces what changed recently: fresh publishes go to the
// whole team, new setlist songs to the event's registered personnel, and
// approvals to the approved member. It is the only place these three kinds
// are emitted, so the event service stays free of notification concerns.
func (s *Scanner) ActivityScan(ctx context.Context, now time.Time) (ScanReport, error) {
	since := now.Add(-activityLookback)
	report := ScanReport{}

	published, err := s.repository.findRecentlyPublished(ctx, since)
	if err != nil {
		return report, err
	}
	for _, event := range published {
		report.EventsProcessed++
		stamp := event.PublishedAt.Format(time.RFC3339)
		report.NotificationsCreated += s.announce(ctx, TeamMembers(), model.NotificationEventPublished, Context{Event: event}, stamp)
	}

	songs, err := s.repository.findRecentSongs(ctx, since)
	if err != nil {
		return report, err
	}
	for _, song := range songs {
		event, err := s.repository.findEventWithPersonnel(ctx, song.EventID)
		if err != nil {
			s.logger.ErrorContext(ctx, "Failed to load event for song announcement", "event", song.EventID, "error", err)
			continue
		}
		audience := registeredUserIds(event.Personnel)
		if len(audience) == 0 {
			continue
		}
		report.NotificationsCreated += s.announce(ctx, ExplicitAudience(audience...), model.NotificationSongAdded, Context{Event: event, Song: song}, fmt.Sprintf("song-%d", song.ID))
	}

	approvals, err := s.repository.findRecentApprovals(ctx, since)
	if err != nil {
		return report, err
	}
	for _, approval := range approvals {
		event, err := s.repository.findEventWithPersonnel(ctx, approval.EventID)
		if err != nil {
			s.logger.ErrorContext(ctx, "Failed to load event for approval announcement", "event", approval.EventID, "error", err)
			continue
		}
		report.NotificationsCreated += s.announce(ctx, ExplicitAudience(*approval.UserID), model.NotificationPersonnelApproved, Context{Event: event, Role: approval.Role}, fmt.Sprintf("seat-%d", approval.ID))
	}

	return report, nil
}

func (s *Scanner) announce(ctx context.Context, audience Audience, kind model.NotificationType, composeContext Context, stamp string) int {
	claimed, err := s.ledger.Claim(composeContext.Event.ID, kind, stamp)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to claim announcement", "event", composeContext.Event.ID, "kind", kind, "error", err)
		return 0
	}
	if !claimed {
		return 0
	}

	report, err := s.dispatcher.Dispatch(ctx, audience, Compose(kind, composeContext))
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to dispatch announcement", "event", composeContext.Event.ID, "kind", kind, "error", err)
		return 0
	}
	return report.Created
}

func registeredUserIds(personnel []model.EventPersonnel) []uint {
	var userIds []uint
	for _, seat := range personnel {
		if seat.UserID != nil {
			userIds = append(userIds, *seat.UserID)
		}
	}
	return userIds
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
