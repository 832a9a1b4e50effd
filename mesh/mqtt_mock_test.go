package mesh

import (
	"testing"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
)

var _ mqtt.Client = (*MockClient)(nil)
var _ mqtt.Token = (*MockToken)(nil)
var _ mqtt.Message = (*mockMessage)(nil)

func TestMockClient_PublishRequiresConnection(t *testing.T) {
	c := NewMockClient()
	token := c.Publish("a/b", 0, false, []byte("x"))
	assert.ErrorIs(t, token.Error(), mqtt.ErrNotConnected)

	c.Connect()
	assert.NoError(t, c.Publish("a/b", 1, true, "hello").Error())

	msgs := c.Published()
	if assert.Len(t, msgs, 1) {
		assert.Equal(t, MockMessage{Topic: "a/b", Payload: []byte("hello"), QoS: 1, Retain: true}, msgs[0])
	}
}

func TestMockClient_SubscribeAndDeliver(t *testing.T) {
	c := NewMockClient()
	assert.Error(t, c.Subscribe("in", 1, nil).Error(), "subscribe while disconnected")

	c.Connect()
	var got string
	c.Subscribe("in", 1, func(_ mqtt.Client, m mqtt.Message) { got = string(m.Payload()) })

	assert.True(t, c.Deliver("in", []byte("payload")))
	assert.Equal(t, "payload", got)
	assert.False(t, c.Deliver("other", []byte("x")))

	c.Unsubscribe("in")
	assert.False(t, c.Deliver("in", []byte("x")))
}

func TestMockClient_Disconnect(t *testing.T) {
	c := NewMockClient()
	c.Connect()
	assert.True(t, c.IsConnectionOpen())
	c.Disconnect(0)
	assert.False(t, c.IsConnected())
}

func TestMockToken(t *testing.T) {
	tok := NewMockToken(nil)
	assert.True(t, tok.Wait())
	select {
	case <-tok.Done():
	default:
		t.Error("Done() channel should be closed")
	}
}
