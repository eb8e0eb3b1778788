// Package mqtt publishes frame loop data to an MQTT broker.
package mqtt

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/valerio/go-frameloop/frameloop/backend"
)

const (
	DefaultTopic    = "frameloop/data"
	DefaultClientID = "frameloop"

	publishTimeout = 2 * time.Second
)

// ErrNotConnected is returned by Update when the broker connection is down.
var ErrNotConnected = errors.New("mqtt: not connected")

// Settings describe how to reach the broker.
type Settings struct {
	URL      string
	Username string
	Password string
	Topic    string
	ClientID string
}

// Payload is the JSON body published for every animated frame.
type Payload struct {
	TimeMs  float64 `json:"time_ms"`
	DeltaMs float64 `json:"delta_ms"`
	Count   int     `json:"count"`
	FPS     float64 `json:"fps"`
}

// Backend publishes each animated frame to a topic.
type Backend struct {
	settings  Settings
	client    paho.Client
	published int
}

// New creates a backend that connects to the broker described by settings.
func New(settings Settings) *Backend {
	if settings.Topic == "" {
		settings.Topic = DefaultTopic
	}
	if settings.ClientID == "" {
		settings.ClientID = DefaultClientID
	}
	return &Backend{settings: settings}
}

// NewWithClient creates a backend around an existing client, mostly for tests.
func NewWithClient(settings Settings, client paho.Client) *Backend {
	b := New(settings)
	b.client = client
	return b
}

func (b *Backend) Init(config backend.Config) error {
	if b.client == nil {
		if b.settings.URL == "" {
			return errors.New("mqtt: broker url is required")
		}
		options := paho.NewClientOptions().
			AddBroker(b.settings.URL).
			SetClientID(b.settings.ClientID).
			SetUsername(b.settings.Username).
			SetPassword(b.settings.Password).
			SetKeepAlive(30 * time.Second).
			SetPingTimeout(5 * time.Second).
			SetAutoReconnect(true).
			SetOnConnectHandler(func(paho.Client) {
				slog.Info("Connected to broker", "url", b.settings.URL)
			}).
			SetConnectionLostHandler(func(_ paho.Client, err error) {
				slog.Warn("Broker connection lost", "error", err)
			})
		b.client = paho.NewClient(options)
	}

	if token := b.client.Connect(); token.Wait() && token.Error() != nil {
		return fmt.Errorf("mqtt: connect: %w", token.Error())
	}

	slog.Info("MQTT backend initialized", "title", config.Title, "topic", b.settings.Topic)
	return nil
}

// Update publishes the frame when an animate event fired since the last tick.
func (b *Backend) Update(frame backend.Frame) ([]backend.InputEvent, error) {
	if !frame.Animated {
		return nil, nil
	}
	if !b.client.IsConnected() {
		return nil, ErrNotConnected
	}

	body, err := json.Marshal(NewPayload(frame))
	if err != nil {
		return nil, err
	}

	token := b.client.Publish(b.settings.Topic, 0, false, body)
	if !token.WaitTimeout(publishTimeout) {
		return nil, fmt.Errorf("mqtt: publish to %s timed out", b.settings.Topic)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("mqtt: publish: %w", err)
	}

	b.published++
	return nil, nil
}

func (b *Backend) Cleanup() error {
	if b.client != nil && b.client.IsConnected() {
		b.client.Disconnect(250)
		slog.Info("Disconnected from broker", "published", b.published)
	}
	return nil
}

// Published returns the number of messages sent.
func (b *Backend) Published() int {
	return b.published
}

// NewPayload converts a frame to its wire form.
func NewPayload(frame backend.Frame) Payload {
	return Payload{
		TimeMs:  frame.Data.TimeMillis(),
		DeltaMs: frame.Data.DeltaMillis(),
		Count:   frame.Data.Count,
		FPS:     frame.Data.FPS,
	}
}
