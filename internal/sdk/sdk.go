// Package sdk: часть SDK платформы, которой пользуется трекер:
// request templates, события интерфейса, installation parameters.
package sdk

import (
	"context"
	"encoding/json"
	"fmt"
)

// Имена request templates.
const (
	TemplateCreateTicket       = "createfdTicket"
	TemplateGetTicketDetails   = "getTicketDetails"
	TemplateGetTicketByID      = "getTicketById"
	TemplateGetCompanyDetails  = "getCompanyDetails"
	TemplateTicketAssociations = "getTicketAssociations"
)

// Ключи installation parameters.
const (
	IParamSubdomain = "freshdesk_subdomain"
	IParamAPIKey    = "freshdesk_api_key"
)

// События интерфейса.
const (
	EventShowNotify = "showNotify"
	EventClick      = "click"
)

// Options: аргументы invokeTemplate: context подставляется в путь, body уходит как есть.
type Options struct {
	Context map[string]interface{}
	Body    string
}

// Response: ответ SDK, сырое JSON-тело лежит в Response.
type Response struct {
	Status   int
	Response string
}

// Decode разбирает тело ответа в v.
func (r *Response) Decode(v interface{}) error {
	if r == nil {
		return fmt.Errorf("sdk: empty response")
	}
	return json.Unmarshal([]byte(r.Response), v)
}

// APIError: отклонённый запрос; Response хранит тело для разбора ошибки.
type APIError struct {
	Status   int
	Response string
	Message  string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("sdk: status %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("sdk: status %d", e.Status)
}

type Requester interface {
	InvokeTemplate(ctx context.Context, name string, opts Options) (*Response, error)
}

type Interface interface {
	Trigger(ctx context.Context, event string, payload map[string]interface{}) error
}

type IParams interface {
	Get(ctx context.Context, key string) (string, error)
}

// Client: набор зависимостей SDK для контроллера приложения.
type Client struct {
	Request   Requester
	Interface Interface
	IParams   IParams
}

// Notify: client.interface.trigger("showNotify", {type, message}).
func (c *Client) Notify(ctx context.Context, kind, message string) error {
	if c == nil || c.Interface == nil {
		return nil
	}
	return c.Interface.Trigger(ctx, EventShowNotify, map[string]interface{}{
		"type":    kind,
		"message": message,
	})
}
