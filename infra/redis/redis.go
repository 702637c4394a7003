// Package redis keeps alert suppression state in Redis and fans alerts out
// over Redis pub/sub, so several engine replicas share one dedup window.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/kilianp07/fleetcare/core/alerts"
	"github.com/kilianp07/fleetcare/core/factory"
)

// Config holds the connection settings.
type Config struct {
	Addr     string `json:"addr"`
	Password string `json:"password"`
	DB       int    `json:"db"`
	// Channel receives published alerts.
	Channel string `json:"channel"`
}

// SetDefaults targets a local server and the fleet:alerts channel.
func (c *Config) SetDefaults() {
	if c.Addr == "" {
		c.Addr = "localhost:6379"
	}
	if c.Channel == "" {
		c.Channel = "fleet:alerts"
	}
}

// NewClient connects and pings the server.
func NewClient(ctx context.Context, cfg Config) (*goredis.Client, error) {
	cfg.SetDefaults()
	client := goredis.NewClient(&goredis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     10,
		MinIdleConns: 2,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return client, nil
}

// setNXer is the part of the client the deduper needs.
type setNXer interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *goredis.BoolCmd
}

// Deduper claims alert keys with SET NX and a TTL.
type Deduper struct {
	client setNXer
}

// NewDeduper returns a Deduper over client.
func NewDeduper(client setNXer) *Deduper {
	return &Deduper{client: client}
}

func (d *Deduper) Claim(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := d.client.SetNX(ctx, key, "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("dedup claim %s failed: %w", key, err)
	}
	return ok, nil
}

type publisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *goredis.IntCmd
}

// Publisher sends alerts as JSON on a pub/sub channel.
type Publisher struct {
	client  publisher
	channel string
}

// NewPublisher returns a Publisher writing to channel.
func NewPublisher(client publisher, channel string) *Publisher {
	return &Publisher{client: client, channel: channel}
}

func (p *Publisher) Publish(ctx context.Context, a alerts.Alert) error {
	payload, err := json.Marshal(a)
	if err != nil {
		return err
	}
	if err := p.client.Publish(ctx, p.channel, payload).Err(); err != nil {
		return fmt.Errorf("redis publish on %s: %w", p.channel, err)
	}
	return nil
}

func init() {
	_ = alerts.RegisterPublisher("redis", func(conf map[string]any) (alerts.Publisher, error) {
		var c Config
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		c.SetDefaults()
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		client, err := NewClient(ctx, c)
		if err != nil {
			return nil, err
		}
		return NewPublisher(client, c.Channel), nil
	})
}
