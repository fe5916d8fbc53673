package notification

import (
	"context"
	"log/slog"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestScanConsumer_Handle(t *testing.T) {
	t.Run("runs both scans and acks", func(t *testing.T) {
		at := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
		scanner := &mockScanRunner{}
		scanner.On("Scan", mock.Anything, at).Return(ScanReport{NotificationsCreated: 2}, nil)
		scanner.On("ActivityScan", mock.Anything, at).Return(ScanReport{NotificationsCreated: 1}, nil)
		consumer := NewScanConsumer(slog.Default(), nil, scanner)
		acknowledger := &fakeAcknowledger{}

		consumer.handle(context.Background(), amqp.Delivery{
			Acknowledger: acknowledger,
			Body:         []byte(`{"at":"2026-09-01T12:00:00Z"}`),
		})

		assert.True(t, acknowledger.acked)
		assert.False(t, acknowledger.nacked)
		scanner.AssertExpectations(t)
	})

	t.Run("empty body scans at the current time", func(t *testing.T) {
		scanner := &mockScanRunner{}
		scanner.On("Scan", mock.Anything, mock.MatchedBy(recent)).Return(ScanReport{}, nil)
		scanner.On("ActivityScan", mock.Anything, mock.MatchedBy(recent)).Return(ScanReport{}, nil)
		consumer := NewScanConsumer(slog.Default(), nil, scanner)
		acknowledger := &fakeAcknowledger{}

		consumer.handle(context.Background(), amqp.Delivery{Acknowledger: acknowledger})

		assert.True(t, acknowledger.acked)
		scanner.AssertExpectations(t)
	})

	t.Run("malformed body is nacked without requeue", func(t *testing.T) {
		scanner := &mockScanRunner{}
		consumer := NewScanConsumer(slog.Default(), nil, scanner)
		acknowledger := &fakeAcknowledger{}

		consumer.handle(context.Background(), amqp.Delivery{
			Acknowledger: acknowledger,
			Body:         []byte(`not json`),
		})

		require.True(t, acknowledger.nacked)
		assert.False(t, acknowledger.requeued)
		assert.False(t, acknowledger.acked)
		scanner.AssertNotCalled(t, "Scan", mock.Anything, mock.Anything)
	})
}

func recent(at time.Time) bool {
	return time.Since(at) < time.Minute
}

type fakeAcknowledger struct {
	acked    bool
	nacked   bool
	requeued bool
}

func (f *fakeAcknowledger) Ack(tag uint64, multiple bool) error {
	f.acked = true
	return nil
}

func (f *fakeAcknowledger) Nack(tag uint64, multiple bool, requeue bool) error {
	f.nacked = true
	f.requeued = requeue
	return nil
}

func (f *fakeAcknowledger) Reject(tag uint64, requeue bool) error {
	return nil
}
