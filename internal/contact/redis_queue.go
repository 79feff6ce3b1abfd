package contact

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisQueueRelay appends messages as JSON to a Redis list so a separate
// mailer can drain it.
type RedisQueueRelay struct {
	client *redis.Client
	key    string
}

// NewRedisQueueRelay creates a relay pushing onto key (default "contact:messages").
func NewRedisQueueRelay(client *redis.Client, key string) *RedisQueueRelay {
	if key == "" {
		key = "contact:messages"
	}
	return &RedisQueueRelay{client: client, key: key}
}

func (r *RedisQueueRelay) Name() string { return "redis" }

// QueuedMessage is the JSON document pushed onto the list.
type QueuedMessage struct {
	Message
	Received time.Time `json:"received"`
}

func (r *RedisQueueRelay) Send(ctx context.Context, m Message) error {
	b, err := json.Marshal(QueuedMessage{Message: m, Received: m.Received})
	if err != nil {
		return err
	}
	return r.client.RPush(ctx, r.key, b).Err()
}
