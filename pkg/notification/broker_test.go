package notification

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/suara-kampus/band-manager/pkg/model"
)

func TestBroker_Subscribe(t *testing.T) {
	broker := NewBroker()

	broker.Subscribe(model.User{ID: 123})

	assert.Len(t, broker.subscribers, 1)
	assert.Equal(t, uint(123), broker.subscribers[123].user.ID)
}

func TestBroker_Subscribe_ReplacesAndClosesPreviousChannel(t *testing.T) {
	broker := NewBroker()
	first := broker.Subscribe(model.User{ID: 123})

	second := broker.Subscribe(model.User{ID: 123})

	_, open := <-first
	assert.False(t, open)
	assert.Len(t, broker.subscribers, 1)
	assert.Equal(t, second, broker.subscribers[123].channel)
}

func TestBroker_Unsubscribe(t *testing.T) {
	broker := NewBroker()
	channel := broker.Subscribe(model.User{ID: 123})

	broker.Unsubscribe(123, channel)

	assert.Len(t, broker.subscribers, 0)
}

func TestBroker_Unsubscribe_NotSubscribed(t *testing.T) {
	broker := NewBroker()

	broker.Unsubscribe(123, make(chan StreamEvent))

	assert.Len(t, broker.subscribers, 0)
}

func TestBroker_Unsubscribe_StaleChannelKeepsFreshSubscription(t *testing.T) {
	broker := NewBroker()
	stale := broker.Subscribe(model.User{ID: 123})
	fresh := broker.Subscribe(model.User{ID: 123})

	broker.Unsubscribe(123, stale)

	assert.Len(t, broker.subscribers, 1)
	ok := broker.Send(123, StreamEvent{Message: "still here"})
	assert.True(t, ok)
	event := <-fresh
	assert.Equal(t, "still here", event.Message)
}

func TestBroker_SendAndReceive(t *testing.T) {
	broker := NewBroker()
	channel := broker.Subscribe(model.User{ID: 123})

	ok := broker.Send(123, StreamEvent{Type: model.NotificationEventPublished, Message: "Konser Amal"})
	assert.True(t, ok)

	event := <-channel
	assert.Equal(t, model.NotificationEventPublished, event.Type)
	assert.Equal(t, "Konser Amal", event.Message)
}

func TestBroker_Send_NoSubscriber(t *testing.T) {
	broker := NewBroker()

	ok := broker.Send(123, StreamEvent{Type: model.NotificationEventPublished, Message: "Konser Amal"})

	assert.False(t, ok)
}

func TestBroker_Send_MultipleSubscribers(t *testing.T) {
	broker := NewBroker()
	first := broker.Subscribe(model.User{ID: 123})
	second := broker.Subscribe(model.User{ID: 321})

	broker.Send(123, StreamEvent{Type: model.NotificationEventPublished, Message: "first"})
	broker.Send(321, StreamEvent{Type: model.NotificationSongAdded, Message: "second"})

	event := <-first
	assert.Equal(t, "first", event.Message)

	event = <-second
	assert.Equal(t, "second", event.Message)
}

func TestBroker_Send_FullChannelDropsEvent(t *testing.T) {
	broker := NewBroker()
	broker.Subscribe(model.User{ID: 123})
	for i := 0; i < 16; i++ {
		assert.True(t, broker.Send(123, StreamEvent{Message: "fill"}))
	}

	ok := broker.Send(123, StreamEvent{Message: "overflow"})

	assert.False(t, ok)
}
