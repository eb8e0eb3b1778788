package mqtt_test

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valerio/go-frameloop/frameloop"
	"github.com/valerio/go-frameloop/frameloop/backend"
	"github.com/valerio/go-frameloop/frameloop/backend/mqtt"
)

type fakeToken struct {
	paho.Token
	err error
}

func (t *fakeToken) Wait() bool                     { return true }
func (t *fakeToken) WaitTimeout(time.Duration) bool { return true }
func (t *fakeToken) Error() error                   { return t.err }

type message struct {
	topic   string
	qos     byte
	payload []byte
}

type fakeClient struct {
	paho.Client
	connected    bool
	connectErr   error
	publishErr   error
	messages     []message
	disconnected bool
}

func (c *fakeClient) Connect() paho.Token {
	if c.connectErr == nil {
		c.connected = true
	}
	return &fakeToken{err: c.connectErr}
}

func (c *fakeClient) IsConnected() bool { return c.connected }

func (c *fakeClient) Publish(topic string, qos byte, _ bool, payload interface{}) paho.Token {
	c.messages = append(c.messages, message{topic: topic, qos: qos, payload: payload.([]byte)})
	return &fakeToken{err: c.publishErr}
}

func (c *fakeClient) Disconnect(uint) {
	c.connected = false
	c.disconnected = true
}

func frame(count int, animated bool) backend.Frame {
	return backend.Frame{
		Data: frameloop.Data{
			Time:      time.Duration(count) * 16 * time.Millisecond,
			DeltaTime: 16 * time.Millisecond,
			Count:     count,
			FPS:       62.5,
		},
		Animating: true,
		Animated:  animated,
	}
}

func TestBackend_Publish(t *testing.T) {
	client := &fakeClient{}
	b := mqtt.NewWithClient(mqtt.Settings{Topic: "tree/data"}, client)
	require.NoError(t, b.Init(backend.Config{Title: "Test"}))

	events, err := b.Update(frame(3, true))
	require.NoError(t, err)
	assert.Empty(t, events)

	_, err = b.Update(frame(4, false))
	require.NoError(t, err)

	require.Len(t, client.messages, 1, "only animated frames are published")
	msg := client.messages[0]
	assert.Equal(t, "tree/data", msg.topic)
	assert.Equal(t, byte(0), msg.qos)

	var p mqtt.Payload
	require.NoError(t, json.Unmarshal(msg.payload, &p))
	assert.Equal(t, mqtt.Payload{TimeMs: 48, DeltaMs: 16, Count: 3, FPS: 62.5}, p)
	assert.Equal(t, 1, b.Published())

	require.NoError(t, b.Cleanup())
	assert.True(t, client.disconnected)
}

func TestBackend_Defaults(t *testing.T) {
	client := &fakeClient{}
	b := mqtt.NewWithClient(mqtt.Settings{}, client)
	require.NoError(t, b.Init(backend.Config{}))

	_, err := b.Update(frame(0, true))
	require.NoError(t, err)
	require.Len(t, client.messages, 1)
	assert.Equal(t, mqtt.DefaultTopic, client.messages[0].topic)
}

func TestBackend_Errors(t *testing.T) {
	t.Run("connect failure", func(t *testing.T) {
		client := &fakeClient{connectErr: errors.New("refused")}
		b := mqtt.NewWithClient(mqtt.Settings{}, client)
		err := b.Init(backend.Config{})
		assert.ErrorContains(t, err, "refused")
	})

	t.Run("missing url", func(t *testing.T) {
		b := mqtt.New(mqtt.Settings{})
		assert.Error(t, b.Init(backend.Config{}))
	})

	t.Run("not connected", func(t *testing.T) {
		client := &fakeClient{}
		b := mqtt.NewWithClient(mqtt.Settings{}, client)
		require.NoError(t, b.Init(backend.Config{}))
		client.connected = false

		_, err := b.Update(frame(1, true))
		assert.ErrorIs(t, err, mqtt.ErrNotConnected)
	})

	t.Run("publish failure", func(t *testing.T) {
		client := &fakeClient{publishErr: errors.New("broker gone")}
		b := mqtt.NewWithClient(mqtt.Settings{}, client)
		require.NoError(t, b.Init(backend.Config{}))

		_, err := b.Update(frame(1, true))
		assert.ErrorContains(t, err, "broker gone")
		assert.Equal(t, 0, b.Published())
	})
}

func TestMQTTImplementsBackend(t *testing.T) {
	var _ backend.Backend = (*mqtt.Backend)(nil)
}
