package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/kilianp07/fleetcare/core/alerts"
	"github.com/kilianp07/fleetcare/core/factory"
	"github.com/kilianp07/fleetcare/core/monitoring"
	"github.com/kilianp07/fleetcare/infra/logger"
)

// AlertPublisher publishes alerts as JSON on <prefix>/<vehicle_id>/<kind>.
type AlertPublisher struct {
	cli     pahoClient
	cfg     Config
	backoff time.Duration
	logger  logger.Logger
}

// NewAlertPublisher connects to the broker. On every (re)connection the
// status topic, if any, is set to "online".
func NewAlertPublisher(cfg Config) (*AlertPublisher, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	opts, err := NewClientOptions(cfg)
	if err != nil {
		return nil, err
	}

	log := logger.New("mqtt_alerts")
	p := &AlertPublisher{
		cfg:     cfg,
		backoff: time.Duration(cfg.BackoffMS) * time.Millisecond,
		logger:  log,
	}
	opts.OnConnect = func(c paho.Client) {
		log.Infof("MQTT connected to %s", cfg.Broker)
		if cfg.StatusTopic == "" {
			return
		}
		if token := c.Publish(cfg.StatusTopic, 1, true, "online"); token.Wait() && token.Error() != nil {
			log.Errorf("status publish error: %v", token.Error())
		}
	}
	opts.OnConnectionLost = func(_ paho.Client, err error) {
		log.Errorf("connection lost: %v", err)
	}
	opts.OnReconnecting = func(_ paho.Client, _ *paho.ClientOptions) {
		log.Warnf("reconnecting to MQTT broker")
	}

	c := newMQTTClient(opts)
	if token := c.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("mqtt connect %s: %w", cfg.Broker, token.Error())
	}
	p.cli = c
	return p, nil
}

// Topic returns the topic an alert is published on.
func (p *AlertPublisher) Topic(a alerts.Alert) string {
	return fmt.Sprintf("%s/%s/%s", p.cfg.TopicPrefix, a.VehicleID, a.Kind)
}

// Publish sends a, retrying with exponential backoff until the retries are
// exhausted or ctx is done.
func (p *AlertPublisher) Publish(ctx context.Context, a alerts.Alert) error {
	payload, err := json.Marshal(a)
	if err != nil {
		return err
	}
	topic := p.Topic(a)
	var publishErr error
	for attempt := 0; attempt <= p.cfg.MaxRetries; attempt++ {
		token := p.cli.Publish(topic, p.cfg.QoS, p.cfg.Retain, payload)
		token.Wait()
		if publishErr = token.Error(); publishErr == nil {
			p.logger.Debugw("alert published", map[string]any{"topic": topic, "alert_id": a.ID})
			return nil
		}
		p.logger.Errorf("publish attempt %d failed: %v", attempt+1, publishErr)
		if attempt == p.cfg.MaxRetries {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(p.backoff * time.Duration(1<<attempt)):
		}
	}
	monitoring.CaptureException(publishErr, map[string]string{"module": "mqtt", "vehicle_id": a.VehicleID})
	return publishErr
}

// Disconnect gracefully closes the MQTT connection.
func (p *AlertPublisher) Disconnect() {
	if p.cli != nil && p.cli.IsConnected() {
		p.cli.Disconnect(250)
	}
}

func init() {
	_ = alerts.RegisterPublisher("mqtt", func(conf map[string]any) (alerts.Publisher, error) {
		var c Config
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		pub, err := NewAlertPublisher(c)
		if err != nil {
			return nil, err
		}
		return pub, nil
	})
}
