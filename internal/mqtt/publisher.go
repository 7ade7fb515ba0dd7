// Package mqtt publishes per-message emotion updates so chat-platform
// consumers can react without polling the HTTP API. Publishing is
// fire-and-forget: a broker outage degrades to a logged warning and never
// blocks or fails an analysis.
package mqtt

import (
	"context"
	"encoding/json"
	"log/slog"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/whisperengine-ai/whisperengine-v2-sub009/internal/domain"
)

type PublisherConfig struct {
	BrokerURL   string
	ClientID    string
	Username    string
	Password    string
	TopicPrefix string
}

type Publisher struct {
	cfg    PublisherConfig
	client paho.Client
	logger *slog.Logger
}

func NewPublisher(cfg PublisherConfig, logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{cfg: cfg, logger: logger}
}

func (p *Publisher) Enabled() bool {
	return p != nil && p.cfg.BrokerURL != ""
}

func (p *Publisher) Start(ctx context.Context) error {
	opts := paho.NewClientOptions().
		AddBroker(p.cfg.BrokerURL).
		SetClientID(p.cfg.ClientID).
		SetAutoReconnect(true).
		SetConnectRetry(true)

	if p.cfg.Username != "" {
		opts.SetUsername(p.cfg.Username)
		opts.SetPassword(p.cfg.Password)
	}

	opts.SetConnectionLostHandler(func(_ paho.Client, err error) {
		p.logger.Error("mqtt connection lost", "error", err)
	})

	p.client = paho.NewClient(opts)
	if token := p.client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}

	go func() {
		<-ctx.Done()
		p.client.Disconnect(100)
	}()

	return nil
}

func (p *Publisher) PublishEmotionUpdate(ctx context.Context, userID string, payload domain.EmotionUpdatePayload) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	topic := TopicUserEmotion(p.cfg.TopicPrefix, userID)
	if token := p.client.Publish(topic, 1, false, body); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	return nil
}
