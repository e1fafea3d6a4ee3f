package broadcast

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/AliceO2Group/detlockd/internal/lockservice"
)

const redisPublishTimeout = 2 * time.Second

var _ lockservice.Publisher = (*RedisPublisher)(nil)

// RedisPublisher mirrors every lock snapshot onto a Redis channel so
// sibling console processes can relay it to their own clients. It is
// a broadcast sink only; lock state itself never leaves the process.
type RedisPublisher struct {
	log     zerolog.Logger
	client  *redis.Client
	channel string
}

// NewRedisPublisher connects to the Redis server at addr and verifies
// the connection with a ping before returning.
func NewRedisPublisher(log zerolog.Logger, addr, channel string) (*RedisPublisher, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}

	return &RedisPublisher{
		log:     log,
		client:  client,
		channel: channel,
	}, nil
}

// Publish implements lockservice.Publisher. The publish happens on its
// own goroutine so a slow or unreachable Redis never delays the
// request that triggered the broadcast. Failures are logged, never
// surfaced.
func (p *RedisPublisher) Publish(snap lockservice.Snapshot) {
	payload, err := json.Marshal(Message{
		ID:    ulid.Make().String(),
		Time:  time.Now(),
		Locks: snap,
	})
	if err != nil {
		p.log.Error().Err(err).Msg("marshaling lock broadcast failed")
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), redisPublishTimeout)
		defer cancel()
		if err := p.client.Publish(ctx, p.channel, payload).Err(); err != nil {
			p.log.Warn().Err(err).Msg("lock broadcast to redis failed")
		}
	}()
}

// Close releases the underlying Redis connection.
func (p *RedisPublisher) Close() error {
	return p.client.Close()
}
