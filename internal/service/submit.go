package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/psds-microservice/tracker-service/internal/errs"
	"github.com/psds-microservice/tracker-service/internal/freshdesk"
	"github.com/psds-microservice/tracker-service/internal/kafka"
	"github.com/psds-microservice/tracker-service/internal/metrics"
	"github.com/psds-microservice/tracker-service/internal/model"
	"github.com/psds-microservice/tracker-service/internal/sdk"
	"github.com/psds-microservice/tracker-service/internal/tracker"
)

const (
	districtCustomField = "cf_district509811"
	parseFailure        = "Error parsing API response"
	unknownFailure      = "Unknown error"
)

// preservedCustomFields копируются из исходного тикета как есть.
var preservedCustomFields = []string{
	"cf_account_manager",
	"cf_rvp",
	"cf_categorization",
	"cf_subcategory",
	"cf_issue_detail",
	"cf_product_type",
	"cf_product",
	"cf_product_subsection",
	"cf_vip",
}

// TicketResult: результат успешного createfdTicket.
type TicketResult struct {
	Ticket      model.CreatedTicket `json:"ticket"`
	URL         string              `json:"url"`
	Warnings    []string            `json:"warnings"`
	Attachments int                 `json:"attachments"`
	Payload     model.TicketPayload `json:"payload"`
}

// ParseRelatedTickets разбивает "12345, 67890" на id, нечисловые отбрасываются.
func ParseRelatedTickets(s string) []int64 {
	var ids []int64
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			log.Printf("service: related tickets: skip %q", part)
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

func parseOptionalID(field, s string) *int64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		log.Printf("service: invalid %s (non-numeric): %q", field, s)
		return nil
	}
	return &id
}

func intOr(s string, def int) int {
	if n, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
		return n
	}
	return def
}

// BuildPayload собирает тело createfdTicket из значений сессии и
// исходного тикета, если он есть. Обязательные поля не проверяет.
func (a *TrackerApp) BuildPayload(sess *Session, src *model.Ticket) (model.TicketPayload, error) {
	tmpl := sess.Template()
	values := tracker.MapValues(sess.Tracker.Values())

	subject := strings.TrimSpace(values.Text(tracker.FieldFormattedSubject))
	if subject == "" {
		subject = strings.TrimSpace(values.Text("subject"))
	}
	if subject == "" {
		subject = tracker.FallbackSubject(tmpl.Title, a.now())
	}

	description, err := tmpl.GenerateDescription(values)
	if err != nil {
		return model.TicketPayload{}, &errs.SubmissionError{Message: err.Error(), Err: err}
	}

	p := model.TicketPayload{
		Email:        strings.TrimSpace(values.Text("email")),
		Subject:      subject,
		Description:  description,
		Status:       intOr(values.Text("status"), model.TicketStatusOpen),
		Priority:     intOr(values.Text("priority"), model.TicketPriorityMedium),
		Source:       model.TicketSourceOutbound,
		Type:         model.TicketTypeIncident,
		Tags:         []string{"tracker-" + tmpl.Name},
		CustomFields: map[string]interface{}{},
		GroupID:      parseOptionalID("group id", values.Text("groupField")),
		ResponderID:  parseOptionalID("agent id", values.Text("agentField")),
	}
	p.RelatedTicketIDs = ParseRelatedTickets(values.Text("relatedTickets"))

	if tmpl.Name == string(tracker.FormatSEDCUST) && strings.EqualFold(values.Text("isVIP"), "Yes") {
		p.Priority = model.TicketPriorityUrgent
	}

	if src != nil {
		for _, k := range preservedCustomFields {
			if v, ok := src.CustomFields[k]; ok {
				p.CustomFields[k] = v
			}
		}
	}
	if d := strings.TrimSpace(values.Text("districtField")); d != "" {
		p.CustomFields[districtCustomField] = d
	} else if d := strings.TrimSpace(values.Text("districtName")); d != "" {
		p.CustomFields[districtCustomField] = d
	}

	if tmpl.JiraFields {
		for k, v := range tracker.JiraFields(src) {
			if v != "" {
				p.CustomFields[k] = v
			}
		}
		for k, v := range tracker.SedcustFields(sess.Tracker.Base) {
			p.CustomFields[k] = v
		}
	}
	return p, nil
}

func checkRequired(p model.TicketPayload) error {
	switch {
	case p.Email == "":
		return &errs.MissingFieldError{Field: "email", Message: "Requester email is required to create a ticket"}
	case p.Subject == "":
		return &errs.MissingFieldError{Field: "subject", Message: "Subject is required to create a ticket"}
	case p.Description == "":
		return &errs.MissingFieldError{Field: "description", Message: "Description is required to create a ticket"}
	}
	return nil
}

type apiFieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

type apiErrorBody struct {
	Description string          `json:"description"`
	Errors      []apiFieldError `json:"errors"`
}

// ClassifyError сводит ошибку createfdTicket к одному сообщению:
// ошибка invalid_field, иначе description ответа, иначе список
// ошибок полей, иначе текст ошибки.
func ClassifyError(err error) string {
	var apiErr *sdk.APIError
	if !errors.As(err, &apiErr) {
		if err == nil {
			return unknownFailure
		}
		return err.Error()
	}
	if strings.TrimSpace(apiErr.Response) == "" {
		if apiErr.Message != "" {
			return apiErr.Message
		}
		return unknownFailure
	}
	var body apiErrorBody
	if err := json.Unmarshal([]byte(apiErr.Response), &body); err != nil {
		log.Printf("service: classify: %v", err)
		return parseFailure
	}
	for i, fe := range body.Errors {
		log.Printf("service: api error %d: %s %s %s", i+1, fe.Code, fe.Field, fe.Message)
	}
	if len(body.Errors) > 0 {
		for _, fe := range body.Errors {
			if fe.Code == "invalid_field" && fe.Field != "" {
				return "Invalid field: " + fe.Field
			}
		}
		if body.Description != "" {
			return body.Description
		}
		parts := make([]string, 0, len(body.Errors))
		for _, fe := range body.Errors {
			parts = append(parts, fmt.Sprintf("%s: %s", fe.Field, fe.Message))
		}
		return strings.Join(parts, "; ")
	}
	if body.Description != "" {
		return body.Description
	}
	if apiErr.Message != "" {
		return apiErr.Message
	}
	return unknownFailure
}

// CreateTicket отправляет сессию. Ошибки возвращаются с префиксом
// errs.SubmitPrefix после уведомления danger, повторов нет. Пока идёт
// отправка, и после успешной, повторный вызов получает ErrSubmitInProgress.
func (a *TrackerApp) CreateTicket(ctx context.Context, sess *Session) (*TicketResult, error) {
	if !sess.state.CompareAndSwap(sessionIdle, sessionSubmitting) {
		log.Printf("service: session %s: submission already in progress", sess.ID)
		return nil, errs.Submit(errs.ErrSubmitInProgress)
	}
	res, err := a.createTicket(ctx, sess)
	if err != nil {
		sess.state.Store(sessionIdle)
		return nil, err
	}
	sess.state.Store(sessionSubmitted)
	return res, nil
}

func (a *TrackerApp) createTicket(ctx context.Context, sess *Session) (*TicketResult, error) {
	tmpl := sess.Template()
	a.waitReady(ctx, sess)

	var src *model.Ticket
	if ids := ParseRelatedTickets(sess.Tracker.Form.Value("relatedTickets")); len(ids) > 0 {
		if sess.Source != nil && sess.Source.ID == ids[0] {
			src = sess.Source
		} else if t, err := a.fetchTicket(ctx, sdk.TemplateGetTicketDetails, ids[0]); err != nil {
			log.Printf("service: submit %s: %v", tmpl.Name, err)
		} else {
			src = t
		}
	} else {
		log.Printf("service: submit %s: no valid related tickets", tmpl.Name)
	}

	payload, err := a.BuildPayload(sess, src)
	if err == nil {
		err = checkRequired(payload)
	}
	if err != nil {
		reason := "render"
		var missing *errs.MissingFieldError
		if errors.As(err, &missing) {
			reason = "missing_field"
		}
		return nil, a.fail(ctx, tmpl.Name, reason, err)
	}

	var warnings []string
	if rules := tracker.ApplyTemplateRules(payload.Subject, tmpl.Name); !rules.IsValid {
		warnings = rules.Errors
		metrics.SubjectWarnings.WithLabelValues(tmpl.Name).Inc()
		log.Printf("service: submit %s: subject warnings: %s", tmpl.Name, strings.Join(warnings, "; "))
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, a.fail(ctx, tmpl.Name, "encode", err)
	}
	resp, err := a.sdk.Request.InvokeTemplate(ctx, sdk.TemplateCreateTicket, sdk.Options{Body: string(body)})
	if err != nil {
		status := 0
		var apiErr *sdk.APIError
		if errors.As(err, &apiErr) {
			status = apiErr.Status
		}
		return nil, a.fail(ctx, tmpl.Name, "api", &errs.SubmissionError{Message: ClassifyError(err), Status: status, Err: err})
	}

	var created model.CreatedTicket
	if err := resp.Decode(&created); err != nil {
		return nil, a.fail(ctx, tmpl.Name, "api", &errs.SubmissionError{Message: parseFailure, Status: resp.Status, Err: err})
	}

	res := &TicketResult{Ticket: created, Warnings: warnings, Payload: payload}
	if res.Warnings == nil {
		res.Warnings = []string{}
	}
	a.notify(ctx, "success", fmt.Sprintf("Ticket #%d created successfully", created.ID))
	if a.sdk.Interface != nil {
		if err := a.sdk.Interface.Trigger(ctx, sdk.EventClick, map[string]interface{}{"id": "openTicket", "value": created.ID}); err != nil {
			log.Printf("service: open ticket %d: %v", created.ID, err)
		}
	}
	res.URL = a.ticketURL(ctx, created.ID)
	res.Attachments = a.uploadQueued(ctx, sess, created.ID)

	metrics.TicketsCreated.WithLabelValues(tmpl.Name).Inc()
	a.events.Produce(ctx, kafka.EventTicketCreated, map[string]interface{}{
		"template":   tmpl.Name,
		"session_id": sess.ID,
		"ticket_id":  created.ID,
		"subject":    payload.Subject,
		"priority":   payload.Priority,
		"url":        res.URL,
	})
	log.Printf("service: ticket #%d created from %s", created.ID, tmpl.Name)
	return res, nil
}

func (a *TrackerApp) fail(ctx context.Context, template, reason string, err error) error {
	metrics.SubmitFailures.WithLabelValues(template, reason).Inc()
	err = errs.Submit(err)
	msg := err.Error()
	log.Printf("service: submit %s: %s", template, msg)
	a.notify(ctx, "danger", msg)
	a.events.Produce(ctx, kafka.EventTicketFailed, map[string]interface{}{
		"template": template,
		"reason":   reason,
		"message":  msg,
	})
	return err
}

func (a *TrackerApp) notify(ctx context.Context, kind, msg string) {
	if err := a.sdk.Notify(ctx, kind, msg); err != nil {
		log.Printf("service: notify: %v", err)
	}
}

func (a *TrackerApp) ticketURL(ctx context.Context, id int64) string {
	sub := ""
	if a.sdk.IParams != nil {
		v, err := a.sdk.IParams.Get(ctx, sdk.IParamSubdomain)
		if err != nil {
			log.Printf("service: ticket url: %v", err)
		}
		sub = v
	}
	return freshdesk.TicketURL(sub, id)
}

// uploadQueued отправляет файлы из очереди сессии заметками к тикету id
// и возвращает число загруженных. Ошибки дают только предупреждение.
func (a *TrackerApp) uploadQueued(ctx context.Context, sess *Session, id int64) int {
	files := sess.Attachments()
	if len(files) == 0 {
		return 0
	}
	if a.uploader == nil {
		log.Printf("service: ticket #%d: %d attachments queued but no uploader configured", id, len(files))
		a.notify(ctx, "warning", "Ticket created, but attachments could not be uploaded")
		return 0
	}
	n := 0
	for _, f := range files {
		_, err := a.uploader.UploadAttachment(ctx, freshdesk.NoteUpload{
			TicketID:    id,
			NoteBody:    "Attachment: " + f.Name,
			IsPrivate:   true,
			FileContent: f.Content,
			FileName:    f.Name,
			FileType:    f.ContentType,
		})
		if err != nil {
			log.Printf("service: ticket #%d: upload %s: %v", id, f.Name, err)
			continue
		}
		n++
		metrics.AttachmentsUploaded.Inc()
	}
	sess.clearAttachments()
	if n < len(files) {
		a.notify(ctx, "warning", fmt.Sprintf("Ticket created, but %d of %d attachments failed to upload", len(files)-n, len(files)))
	}
	return n
}
