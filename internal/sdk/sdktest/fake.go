// Package sdktest: SDK в памяти для тестов.
package sdktest

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/psds-microservice/tracker-service/internal/sdk"
)

// Call: один вызов InvokeTemplate.
type Call struct {
	Name string
	Opts sdk.Options
}

// Event: один вызов Interface.Trigger.
type Event struct {
	Name    string
	Payload map[string]interface{}
}

// Handler отвечает на вызов шаблона.
type Handler func(opts sdk.Options) (*sdk.Response, error)

// Fake реализует sdk.Requester и sdk.Interface.
type Fake struct {
	mu       sync.Mutex
	handlers map[string]Handler
	calls    []Call
	events   []Event
}

func New() *Fake {
	return &Fake{handlers: make(map[string]Handler)}
}

// Handle регистрирует обработчик для имени шаблона.
func (f *Fake) Handle(name string, h Handler) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handlers[name] = h
	return f
}

// RespondJSON: обработчик, который всегда отвечает v в JSON.
func (f *Fake) RespondJSON(name string, v interface{}) *Fake {
	body, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return f.Handle(name, func(sdk.Options) (*sdk.Response, error) {
		return &sdk.Response{Status: 200, Response: string(body)}, nil
	})
}

// Reject: обработчик, который падает с APIError и телом body.
func (f *Fake) Reject(name string, status int, body string) *Fake {
	return f.Handle(name, func(sdk.Options) (*sdk.Response, error) {
		return nil, &sdk.APIError{Status: status, Response: body}
	})
}

func (f *Fake) InvokeTemplate(_ context.Context, name string, opts sdk.Options) (*sdk.Response, error) {
	f.mu.Lock()
	f.calls = append(f.calls, Call{Name: name, Opts: opts})
	h, ok := f.handlers[name]
	f.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("sdktest: no handler for %s", name)
	}
	return h(opts)
}

func (f *Fake) Trigger(_ context.Context, event string, payload map[string]interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, Event{Name: event, Payload: payload})
	return nil
}

func (f *Fake) Calls(name string) []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Call
	for _, c := range f.calls {
		if c.Name == name {
			out = append(out, c)
		}
	}
	return out
}

func (f *Fake) Events() []Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Event(nil), f.events...)
}

// Client: fake в виде sdk.Client с заданными installation parameters.
func (f *Fake) Client(iparams sdk.StaticIParams) *sdk.Client {
	return &sdk.Client{Request: f, Interface: f, IParams: iparams}
}
