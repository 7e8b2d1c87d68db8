package model

import (
	"strings"
	"time"
)

// Коды status, priority и source в терминах Freshdesk.
const (
	TicketStatusOpen    = 2
	TicketStatusPending = 3

	TicketPriorityLow    = 1
	TicketPriorityMedium = 2
	TicketPriorityHigh   = 3
	TicketPriorityUrgent = 4

	TicketSourceOutbound = 101
	TicketTypeIncident   = "Incident"
)

// Ticket: тикет Freshdesk в том объёме, который читает трекер.
type Ticket struct {
	ID           int64                  `json:"id"`
	Subject      string                 `json:"subject,omitempty"`
	Status       int                    `json:"status,omitempty"`
	Priority     int                    `json:"priority,omitempty"`
	CompanyID    int64                  `json:"company_id,omitempty"`
	RequesterID  int64                  `json:"requester_id,omitempty"`
	CreatedAt    string                 `json:"created_at,omitempty"`
	CustomFields map[string]interface{} `json:"custom_fields,omitempty"`
}

// CreatedTime разбирает created_at; ok=false для пустого или битого значения.
func (t Ticket) CreatedTime() (time.Time, bool) {
	if t.CreatedAt == "" {
		return time.Time{}, false
	}
	ts, err := time.Parse(time.RFC3339, t.CreatedAt)
	if err != nil {
		return time.Time{}, false
	}
	return ts, true
}

// CustomString: custom_fields[key] строкой ("", если поля нет или это не строка).
func (t Ticket) CustomString(key string) string {
	if t.CustomFields == nil {
		return ""
	}
	if v, ok := t.CustomFields[key].(string); ok {
		return v
	}
	return ""
}

type Company struct {
	ID           int64                  `json:"id"`
	Name         string                 `json:"name"`
	CustomFields map[string]interface{} `json:"custom_fields,omitempty"`
}

// State: custom_fields.state.
func (c Company) State() string {
	if c.CustomFields == nil {
		return ""
	}
	s, _ := c.CustomFields["state"].(string)
	return s
}

type Association struct {
	TicketID           int64 `json:"ticket_id"`
	AssociatedTicketID int64 `json:"associated_ticket_id"`
}

// TicketPayload: тело запроса createfdTicket.
type TicketPayload struct {
	Email            string                 `json:"email"`
	Subject          string                 `json:"subject"`
	Description      string                 `json:"description"`
	Status           int                    `json:"status"`
	Priority         int                    `json:"priority"`
	Source           int                    `json:"source"`
	Type             string                 `json:"type"`
	CustomFields     map[string]interface{} `json:"custom_fields"`
	Tags             []string               `json:"tags"`
	RelatedTicketIDs []int64                `json:"related_ticket_ids,omitempty"`
	GroupID          *int64                 `json:"group_id,omitempty"`
	ResponderID      *int64                 `json:"responder_id,omitempty"`
}

// TicketContext: данные исходного тикета, из которых заполняются поля формы.
type TicketContext struct {
	TicketID          int64  `json:"ticket_id,omitempty"`
	IsVIP             bool   `json:"is_vip"`
	ProductType       string `json:"product_type,omitempty"`
	Product           string `json:"product,omitempty"`
	ProductSubsection string `json:"product_subsection,omitempty"`
	CompanyID         int64  `json:"company_id,omitempty"`
	CompanyName       string `json:"company_name,omitempty"`
	DistrictState     string `json:"district_state,omitempty"`
}

// NewTicketContext собирает контекст заполнения из исходного тикета и, если есть, компании.
func NewTicketContext(t *Ticket, c *Company) *TicketContext {
	if t == nil {
		return nil
	}
	tc := &TicketContext{
		TicketID:          t.ID,
		ProductType:       t.CustomString("cf_product_type"),
		Product:           t.CustomString("cf_product"),
		ProductSubsection: t.CustomString("cf_product_subsection"),
		CompanyID:         t.CompanyID,
		DistrictState:     t.CustomString("cf_district_state"),
	}
	switch v := t.CustomFields["cf_vip"].(type) {
	case bool:
		tc.IsVIP = v
	case string:
		tc.IsVIP = strings.EqualFold(v, "yes") || strings.EqualFold(v, "true")
	}
	if c != nil {
		tc.CompanyName = c.Name
		if tc.DistrictState == "" {
			tc.DistrictState = c.State()
		}
	}
	return tc
}

// Attachment: файл, ожидающий загрузки; Content в base64.
type Attachment struct {
	Name        string `json:"name"`
	ContentType string `json:"contentType,omitempty"`
	Content     string `json:"content"`
}

// CreatedTicket: часть ответа createfdTicket, которую читает трекер.
type CreatedTicket struct {
	ID      int64  `json:"id"`
	Subject string `json:"subject,omitempty"`
}
