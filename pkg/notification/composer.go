package notification

import (
	"fmt"

	"github.com/suara-kampus/band-manager/pkg/model"
)

// Priority hints the push channel; the in-app feed ignores it.
const (
	PriorityNormal = "normal"
	PriorityHigh   = "high"
)

// Context carries the facts a message is composed from. Event is required
// for every kind, the rest depends on the kind.
type Context struct {
	Event    *model.Event
	Role     string
	Song     *model.EventSong
	DaysIdle int
}

// Message is a composed notification, ready to be persisted and pushed.
type Message struct {
	Title     string
	Body      string
	Type      model.NotificationType
	EventID   *uint
	ActionURL string
	Priority  string
}

// Compose builds the user-facing copy for a notification kind. It is a pure
// function so the wording can be asserted in tests without any I/O.
func Compose(kind model.NotificationType, context Context) Message {
	event := context.Event
	message := Message{
		Type:      kind,
		EventID:   &event.ID,
		ActionURL: fmt.Sprintf("/dashboard/events?eventId=%d", event.ID),
		Priority:  PriorityNormal,
	}

	switch kind {
	case model.NotificationEventReminder:
		message.Title = "Pengingat: Event Besok!"
		message.Body = fmt.Sprintf("%s akan dilaksanakan besok di %s. Jangan lupa persiapkan dirimu!", event.Title, event.Location)
	case model.NotificationEventStarting:
		message.Title = "Event Dimulai 2 Jam Lagi!"
		message.Body = fmt.Sprintf("%s dimulai pukul %s di %s. Segera bersiap!", event.Title, event.Date.Format("15:04"), event.Location)
		message.Priority = PriorityHigh
	case model.NotificationPracticeReminder:
		message.Title = "Waktunya Latihan!"
		message.Body = fmt.Sprintf("Sudah %d hari sejak latihan terakhir untuk %s. Yuk atur jadwal latihan!", context.DaysIdle, event.Title)
		if context.DaysIdle >= noPriorEventDaysIdle {
			message.Body = fmt.Sprintf("Belum ada latihan untuk %s. Yuk atur jadwal latihan!", event.Title)
		}
	case model.NotificationEventPublished:
		message.Title = "Event Baru Dipublikasikan!"
		message.Body = fmt.Sprintf("%s pada %s di %s. Cek detail dan daftar sekarang!", event.Title, event.Date.Format("2 January 2006"), event.Location)
	case model.NotificationSongAdded:
		message.Title = "Lagu Baru Ditambahkan"
		message.Body = fmt.Sprintf("\"%s\" ditambahkan ke setlist %s.", context.Song.Title, event.Title)
	case model.NotificationPersonnelApproved:
		message.Title = "Pendaftaranmu Disetujui!"
		message.Body = fmt.Sprintf("Kamu disetujui sebagai %s untuk %s. Sampai jumpa di sana!", context.Role, event.Title)
	}

	return message
}
