// Package notify: события интерфейса SDK (showNotify, click) для
// серверного режима. Они пишутся в лог, хранятся для просмотра
// и уходят в Kafka.
package notify

import (
	"context"
	"log"
	"sync"

	"github.com/psds-microservice/tracker-service/internal/kafka"
)

const keep = 50

// Event: один вызов trigger.
type Event struct {
	Name    string                 `json:"name"`
	Payload map[string]interface{} `json:"payload"`
}

// Interface: sdk.Interface, которому не нужен браузер.
type Interface struct {
	events kafka.EventProducer

	mu     sync.Mutex
	recent []Event
}

func New(events kafka.EventProducer) *Interface {
	if events == nil {
		events = kafka.Nop{}
	}
	return &Interface{events: events}
}

func (i *Interface) Trigger(ctx context.Context, event string, payload map[string]interface{}) error {
	log.Printf("notify: %s %v", event, payload)
	i.mu.Lock()
	i.recent = append(i.recent, Event{Name: event, Payload: payload})
	if len(i.recent) > keep {
		i.recent = i.recent[len(i.recent)-keep:]
	}
	i.mu.Unlock()
	i.events.Produce(ctx, kafka.EventInterfacePrefix+event, payload)
	return nil
}

// Recent: последние события, старые первыми.
func (i *Interface) Recent() []Event {
	i.mu.Lock()
	defer i.mu.Unlock()
	return append([]Event(nil), i.recent...)
}
