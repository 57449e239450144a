package eventsvc

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/ExtCrs/extcourses/core"
	"github.com/ExtCrs/extcourses/core/lesson"
)

// RedisNotifier publishes review events so that open dashboards refresh their lesson overviews.
type RedisNotifier struct {
	client  redis.Cmdable
	channel string
}

var _ lesson.Notifier = (*RedisNotifier)(nil)

func NewRedisNotifier(client redis.Cmdable, channel string) *RedisNotifier {
	return &RedisNotifier{client: client, channel: channel}
}

func (n *RedisNotifier) Notify(ctx context.Context, ev lesson.Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return errors.Wrap(err, "encoding event")
	}
	if err = n.client.Publish(ctx, n.channel, payload).Err(); err != nil {
		return errors.Wrap(err, "publishing event")
	}
	return nil
}

// NewRedisClient connects to the configured server. It returns nil when no address is configured.
func NewRedisClient(conf *core.Config) (*redis.Client, error) {
	if conf.Redis.Addr == "" {
		return nil, nil
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:        conf.Redis.Addr,
		Password:    conf.Redis.Password,
		DB:          conf.Redis.DB,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, errors.Wrap(err, "redis ping")
	}
	return rdb, nil
}

// Watch calls onEvent for every event published on channel until ctx is done.
// Undecodable payloads are passed to onError and skipped.
func Watch(ctx context.Context, rdb *redis.Client, channel string, onEvent func(lesson.Event), onError func(error)) error {
	sub := rdb.Subscribe(ctx, channel)
	defer sub.Close()

	// ensures subscription actually started
	if _, err := sub.Receive(ctx); err != nil {
		return errors.Wrap(err, "redis subscribe")
	}

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case m, ok := <-ch:
			if !ok {
				return nil
			}
			var ev lesson.Event
			if err := json.Unmarshal([]byte(m.Payload), &ev); err != nil {
				onError(errors.Wrap(err, "decoding event"))
				continue
			}
			onEvent(ev)
		}
	}
}
