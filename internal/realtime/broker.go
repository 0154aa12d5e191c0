// Package realtime fans task completions out to live feed subscribers over
// Redis pub/sub.
package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/phrazzld/dmo-api/internal/domain"
	"github.com/redis/go-redis/v9"
)

// DefaultChannel is the Redis channel completions are published on.
const DefaultChannel = "dmo:feed"

// Broker publishes activity items to a Redis channel and streams them back
// to subscribers. It is safe for concurrent use.
type Broker struct {
	client  redis.UniversalClient
	channel string
	logger  *slog.Logger
}

// NewClient connects to the Redis server at url and verifies the connection.
func NewClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	return client, nil
}

// NewBroker creates a Broker on channel.
func NewBroker(client redis.UniversalClient, channel string, logger *slog.Logger) *Broker {
	if client == nil {
		panic("redis client cannot be nil")
	}
	if channel == "" {
		channel = DefaultChannel
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Broker{
		client:  client,
		channel: channel,
		logger:  logger.With(slog.String("component", "realtime_broker")),
	}
}

// Publish sends item to every current subscriber.
func (b *Broker) Publish(ctx context.Context, item domain.ActivityItem) error {
	data, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("marshal activity: %w", err)
	}
	if err := b.client.Publish(ctx, b.channel, data).Err(); err != nil {
		return fmt.Errorf("publish to %s: %w", b.channel, err)
	}
	return nil
}

// Subscription is a live stream of activity items.
type Subscription struct {
	pubsub    *redis.PubSub
	items     chan domain.ActivityItem
	stop      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

// Items delivers decoded items until the subscription ends.
func (s *Subscription) Items() <-chan domain.ActivityItem {
	return s.items
}

// Close ends the subscription and releases its connection.
func (s *Subscription) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.stop)
		err = s.pubsub.Close()
	})
	<-s.done
	return err
}

// Subscribe opens a subscription. It ends when ctx is cancelled or Close is
// called; the Items channel is closed afterwards.
func (b *Broker) Subscribe(ctx context.Context) (*Subscription, error) {
	pubsub := b.client.Subscribe(ctx, b.channel)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("subscribe to %s: %w", b.channel, err)
	}

	sub := &Subscription{
		pubsub: pubsub,
		items:  make(chan domain.ActivityItem, 16),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	go b.forward(ctx, sub)
	return sub, nil
}

func (b *Broker) forward(ctx context.Context, sub *Subscription) {
	defer close(sub.done)
	defer close(sub.items)

	messages := sub.pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			_ = sub.pubsub.Close()
			return
		case <-sub.stop:
			return
		case msg, ok := <-messages:
			if !ok {
				return
			}
			var item domain.ActivityItem
			if err := json.Unmarshal([]byte(msg.Payload), &item); err != nil {
				b.logger.Warn("dropping malformed feed message", slog.String("error", err.Error()))
				continue
			}
			select {
			case sub.items <- item:
			case <-sub.stop:
				return
			case <-ctx.Done():
				_ = sub.pubsub.Close()
				return
			}
		}
	}
}
