package kafka

import (
	"context"
	"encoding/json"
	"log"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
)

// Имена событий в топике трекера.
const (
	EventTicketCreated   = "tracker.ticket.created"
	EventTicketFailed    = "tracker.ticket.failed"
	EventSessionOpened   = "tracker.session.opened"
	EventInterfacePrefix = "tracker.interface."
)

// EventProducer: отправка событий трекера в Kafka.
type EventProducer interface {
	Produce(ctx context.Context, event string, payload map[string]interface{})
}

// Producer пишет события трекера в топик Kafka (best-effort, не блокирует API).
type Producer struct {
	writer *kafka.Writer
	topic  string
}

// NewProducer создаёт продюсер. Пустые brokers или topic дают no-op.
func NewProducer(brokers []string, topic string) *Producer {
	if len(brokers) == 0 || topic == "" {
		return &Producer{}
	}
	return &Producer{
		topic: topic,
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			BatchTimeout: 10 * time.Millisecond,
			Async:        true,
		},
	}
}

// Enabled: доходят ли события до брокера.
func (p *Producer) Enabled() bool {
	return p != nil && p.writer != nil
}

// Produce отправляет событие; ключ сообщения: template из payload.
func (p *Producer) Produce(ctx context.Context, event string, payload map[string]interface{}) {
	if !p.Enabled() {
		return
	}
	msg := Message(event, payload)
	body, err := json.Marshal(msg)
	if err != nil {
		log.Printf("kafka: marshal %s: %v", event, err)
		return
	}
	key, _ := payload["template"].(string)
	if err := p.writer.WriteMessages(ctx, kafka.Message{Key: []byte(key), Value: body}); err != nil {
		log.Printf("kafka: write %s: %v", event, err)
	}
}

// Message: payload с именем события, в том виде, как он пишется в топик.
func Message(event string, payload map[string]interface{}) map[string]interface{} {
	msg := make(map[string]interface{}, len(payload)+1)
	for k, v := range payload {
		msg[k] = v
	}
	msg["event"] = event
	return msg
}

// Close закрывает writer.
func (p *Producer) Close() error {
	if !p.Enabled() {
		return nil
	}
	return p.writer.Close()
}

// ParseBrokers разбивает строку брокеров "host1:9092,host2:9092" на слайс.
func ParseBrokers(s string) []string {
	var out []string
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// Nop отбрасывает события.
type Nop struct{}

func (Nop) Produce(context.Context, string, map[string]interface{}) {}
