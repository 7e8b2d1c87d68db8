package kafka

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseBrokers(t *testing.T) {
	assert.Equal(t, []string{"a:9092", "b:9092"}, ParseBrokers(" a:9092, ,b:9092 "))
	assert.Nil(t, ParseBrokers(""))
}

func TestDisabledProducerIsNoop(t *testing.T) {
	p := NewProducer(nil, "tracker.events")
	assert.False(t, p.Enabled())
	p.Produce(context.Background(), EventTicketCreated, map[string]interface{}{"ticket_id": 1})
	assert.NoError(t, p.Close())

	assert.False(t, NewProducer([]string{"localhost:9092"}, "").Enabled())
}

func TestMessage(t *testing.T) {
	payload := map[string]interface{}{"ticket_id": int64(7), "event": "spoofed"}
	msg := Message(EventTicketCreated, payload)
	assert.Equal(t, EventTicketCreated, msg["event"])
	assert.Equal(t, int64(7), msg["ticket_id"])
	assert.Equal(t, "spoofed", payload["event"], "payload is not mutated")
}
