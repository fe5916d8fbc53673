package notification

import (
	"sync"

	"github.com/suara-kampus/band-manager/pkg/model"
	"golang.org/x/exp/maps"
)

func NewBroker() *Broker {
	return &Broker{
		subscribers: make(map[uint]subscriber),
	}
}

// StreamEvent is what a connected client receives over SSE.
type StreamEvent struct {
	Type    model.NotificationType
	Message string
}

type subscriber struct {
	user    model.User
	channel chan StreamEvent
}

// Broker fans live notifications out to connected SSE clients. One channel
// per user; a user reconnecting replaces the previous channel.
type Broker struct {
	subscribers map[uint]subscriber
	lock        sync.Mutex
}

func (b *Broker) Subscribe(user model.User) chan StreamEvent {
	b.lock.Lock()
	defer b.lock.Unlock()
	if previous, ok := b.subscribers[user.ID]; ok {
		close(previous.channel)
	}
	channel := make(chan StreamEvent, 16)
	b.subscribers[user.ID] = subscriber{
		user:    user,
		channel: channel,
	}
	return channel
}

// Unsubscribe removes the subscription for id, but only while channel is still
// the registered one. A reconnect replaces the channel, and the teardown of
// the old stream must not close the fresh one.
func (b *Broker) Unsubscribe(id uint, channel chan StreamEvent) {
	b.lock.Lock()
	defer b.lock.Unlock()
	if subscriber, ok := b.subscribers[id]; ok && subscriber.channel == channel {
		close(subscriber.channel)
		delete(b.subscribers, id)
	}
}

func (b *Broker) Subscribers() []model.User {
	b.lock.Lock()
	defer b.lock.Unlock()
	keys := maps.Keys(b.subscribers)
	subscribers := make([]model.User, len(keys))
	for i, key := range keys {
		subscribers[i] = b.subscribers[key].user
	}
	return subscribers
}

// Send delivers to one connected user. A full channel or an unconnected user
// drops the event; the feed table is the source of truth, the stream only a
// hint to refresh it.
func (b *Broker) Send(id uint, event StreamEvent) bool {
	b.lock.Lock()
	defer b.lock.Unlock()
	if subscriber, ok := b.subscribers[id]; ok {
		select {
		case subscriber.channel <- event:
			return true
		default:
			return false
		}
	}
	return false
}

