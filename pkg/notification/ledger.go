package notification

import (
	"fmt"
	"time"

	"github.com/go-redis/redis"
	"github.com/suara-kampus/band-manager/pkg/model"
)

// ledgerTTL outlives every reminder window so an overlapping rerun within
// the same window always finds the claim.
const ledgerTTL = 6 * time.Hour

// Ledger records which reminder batches have already been sent so a scan
// running twice inside the same window doesn't notify twice.
type Ledger interface {
	Claim(eventId uint, kind model.NotificationType, stamp string) (bool, error)
}

func NewRedisLedger(client *redis.Client) *redisLedger {
	return &redisLedger{client}
}

type redisLedger struct {
	client *redis.Client
}

// Claim marks the batch as sent. It returns true exactly once per key; any
// later claim inside the TTL returns false.
func (l redisLedger) Claim(eventId uint, kind model.NotificationType, stamp string) (bool, error) {
	key := fmt.Sprintf("reminder:%d:%s:%s", eventId, kind, stamp)
	claimed, err := l.client.SetNX(key, 1, ledgerTTL).Result()
	if err != nil {
		return false, fmt.Errorf("failed to claim reminder key %q: %v", key, err)
	}
	return claimed, nil
}

// NewOpenLedger returns a ledger that always grants the claim. It is used
// when dedup is disabled, keeping the resend-on-overlap behavior.
func NewOpenLedger() openLedger {
	return openLedger{}
}

type openLedger struct{}

func (openLedger) Claim(uint, model.NotificationType, string) (bool, error) {
	return true, nil
}
