package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/psds-microservice/tracker-service/internal/errs"
	"github.com/psds-microservice/tracker-service/internal/freshdesk"
	"github.com/psds-microservice/tracker-service/internal/kafka"
	"github.com/psds-microservice/tracker-service/internal/metrics"
	"github.com/psds-microservice/tracker-service/internal/model"
	"github.com/psds-microservice/tracker-service/internal/sdk"
	"github.com/psds-microservice/tracker-service/internal/tracker"
)

const (
	defaultReadyTimeout = 10 * time.Second
	maxJanitorInterval  = time.Minute
)

// Uploader: загрузка вложения заметкой к созданному тикету (freshdesk.Client).
type Uploader interface {
	UploadAttachment(ctx context.Context, up freshdesk.NoteUpload) (*freshdesk.UploadResult, error)
}

// Deps: зависимости TrackerApp.
type Deps struct {
	Registry *tracker.Registry
	SDK      *sdk.Client
	Uploader Uploader
	Events   kafka.EventProducer
	DemoData bool
	// ReadyTimeout ограничивает заполнение одной сессии.
	ReadyTimeout time.Duration
	// SessionTTL: простой, после которого сессия закрывается. 0 отключает.
	SessionTTL time.Duration
}

// TrackerApp: контроллер приложения. Открывает сессии по реестру шаблонов
// и отправляет их через SDK.
type TrackerApp struct {
	registry     *tracker.Registry
	sdk          *sdk.Client
	uploader     Uploader
	events       kafka.EventProducer
	sessions     *SessionStore
	demo         *tracker.DemoDataHelper
	now          func() time.Time
	readyTimeout time.Duration
	sessionTTL   time.Duration

	stop      chan struct{}
	stopOnce  sync.Once
	janitorWG sync.WaitGroup
}

func NewTrackerApp(d Deps) (*TrackerApp, error) {
	if d.Registry == nil {
		return nil, errors.New("service: template registry is required")
	}
	if d.SDK == nil || d.SDK.Request == nil {
		return nil, errors.New("service: sdk requester is required")
	}
	a := &TrackerApp{
		registry:     d.Registry,
		sdk:          d.SDK,
		uploader:     d.Uploader,
		events:       d.Events,
		sessions:     NewSessionStore(),
		now:          time.Now,
		readyTimeout: d.ReadyTimeout,
		sessionTTL:   d.SessionTTL,
		stop:         make(chan struct{}),
	}
	if a.events == nil {
		a.events = kafka.Nop{}
	}
	if a.readyTimeout <= 0 {
		a.readyTimeout = defaultReadyTimeout
	}
	if d.DemoData {
		a.demo = tracker.NewDemoDataHelper()
	}
	if a.sessionTTL > 0 {
		a.janitorWG.Add(1)
		go a.janitor(janitorInterval(a.sessionTTL))
	}
	return a, nil
}

func janitorInterval(ttl time.Duration) time.Duration {
	if iv := ttl / 2; iv < maxJanitorInterval {
		return iv
	}
	return maxJanitorInterval
}

// janitor закрывает простаивающие сессии до вызова Close.
func (a *TrackerApp) janitor(interval time.Duration) {
	defer a.janitorWG.Done()
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-t.C:
			a.ExpireSessions()
		case <-a.stop:
			return
		}
	}
}

// ExpireSessions закрывает сессии, простаивающие дольше SessionTTL.
func (a *TrackerApp) ExpireSessions() int {
	if a.sessionTTL <= 0 {
		return 0
	}
	n := a.sessions.Evict(a.now().Add(-a.sessionTTL))
	if n > 0 {
		metrics.SessionsExpired.Add(float64(n))
	}
	return n
}

func (a *TrackerApp) Registry() *tracker.Registry { return a.registry }

func (a *TrackerApp) Sessions() *SessionStore { return a.sessions }

// Close останавливает janitor и закрывает все сессии.
func (a *TrackerApp) Close() {
	a.stopOnce.Do(func() { close(a.stop) })
	a.janitorWG.Wait()
	a.sessions.CloseAll()
}

func (a *TrackerApp) fetchTicket(ctx context.Context, template string, id int64) (*model.Ticket, error) {
	resp, err := a.sdk.Request.InvokeTemplate(ctx, template, sdk.Options{
		Context: map[string]interface{}{"ticketId": id},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: ticket %d: %v", errs.ErrSourceTicket, id, err)
	}
	var t model.Ticket
	if err := resp.Decode(&t); err != nil {
		return nil, fmt.Errorf("%w: ticket %d: decode: %v", errs.ErrSourceTicket, id, err)
	}
	return &t, nil
}

// sdkCompanies ищет компании через getCompanyDetails.
type sdkCompanies struct {
	req sdk.Requester
}

func (c sdkCompanies) Company(ctx context.Context, id int64) (*model.Company, error) {
	resp, err := c.req.InvokeTemplate(ctx, sdk.TemplateGetCompanyDetails, sdk.Options{
		Context: map[string]interface{}{"companyId": id},
	})
	if err != nil {
		return nil, err
	}
	var company model.Company
	if err := resp.Decode(&company); err != nil {
		return nil, fmt.Errorf("company %d: decode: %w", id, err)
	}
	return &company, nil
}

// OpenSession отрисовывает шаблон и запускает заполнение. Если задан
// исходный тикет, он загружается первым; при ошибке загрузки форма
// остаётся со значениями по умолчанию, ошибка только в логе.
func (a *TrackerApp) OpenSession(ctx context.Context, templateName string, sourceTicketID int64) (*Session, error) {
	tmpl, err := a.registry.Get(templateName)
	if err != nil {
		return nil, err
	}
	sess := newSession(tracker.Mount(tmpl), a.now())

	if sourceTicketID > 0 {
		src, err := a.fetchTicket(ctx, sdk.TemplateGetTicketDetails, sourceTicketID)
		if err != nil {
			log.Printf("service: open %s: %v", templateName, err)
		} else {
			sess.Source = src
			sess.Context = model.NewTicketContext(src, nil)
			sess.Tracker.Form.Write("relatedTickets", fmt.Sprint(src.ID))
		}
	}

	popCtx, cancel := context.WithTimeout(context.Background(), a.readyTimeout)
	sess.cancel = cancel
	go func() {
		defer cancel()
		tracker.RunPopulators(popCtx, tmpl, sess.Tracker.Form, sess.Context, sdkCompanies{req: a.sdk.Request})
		sess.Tracker.Base.UpdateSubjectLine()
	}()

	a.sessions.Put(sess)
	metrics.SessionsOpened.WithLabelValues(tmpl.Name).Inc()
	a.events.Produce(ctx, kafka.EventSessionOpened, map[string]interface{}{
		"template":   tmpl.Name,
		"session_id": sess.ID,
		"source_id":  sourceTicketID,
	})
	log.Printf("service: session %s opened (%s)", sess.ID, tmpl.Name)
	return sess, nil
}

// Session находит сессию и отмечает обращение к ней.
func (a *TrackerApp) Session(id string) (*Session, error) {
	s, err := a.sessions.Get(id)
	if err != nil {
		return nil, err
	}
	s.touch(a.now())
	return s, nil
}

func (a *TrackerApp) CloseSession(id string) error {
	return a.sessions.Delete(id)
}

// SetFields применяет правки пользователя. Порядок карты случаен, правки
// с зависимыми обработчиками отправляются отдельными вызовами.
func (a *TrackerApp) SetFields(sess *Session, values map[string]string) error {
	for id, v := range values {
		if err := sess.Tracker.Form.Input(id, v); err != nil {
			return err
		}
	}
	return nil
}

// SetCustomValue переключает список версий на "Other" и вводит value
// в поле своего значения.
func (a *TrackerApp) SetCustomValue(sess *Session, field, value string) error {
	form := sess.Tracker.Form
	inputID := tracker.CustomInputID(field)
	if inputID == "" || !form.Has(field) {
		return fmt.Errorf("%w: %s", tracker.ErrUnknownField, field)
	}
	if form.Value(field) != tracker.OtherValue {
		form.Set(field, tracker.OtherValue)
	}
	return form.Input(inputID, value)
}

// FillDemo заполняет сессию демо-данными.
func (a *TrackerApp) FillDemo(sess *Session) (int, error) {
	if a.demo == nil {
		return 0, errs.ErrDemoDisabled
	}
	return a.demo.Fill(sess.Tracker.Form), nil
}

func (a *TrackerApp) Validate(sess *Session) tracker.FieldValidation {
	return sess.Tracker.Base.ValidateFields()
}

// SessionView: снимок сессии для API.
type SessionView struct {
	ID               string                    `json:"id"`
	Template         string                    `json:"template"`
	Title            string                    `json:"title"`
	CreatedAt        time.Time                 `json:"created_at"`
	Ready            bool                      `json:"ready"`
	SourceTicketID   int64                     `json:"source_ticket_id,omitempty"`
	FormattedSubject string                    `json:"formatted_subject"`
	Values           map[string]interface{}    `json:"values"`
	Validation       tracker.FieldValidation   `json:"validation"`
	Fields           []tracker.FieldDescriptor `json:"fields"`
	Attachments      int                       `json:"attachments"`
}

// View: снимок сессии. Заполнение из контекста не ждёт.
func (a *TrackerApp) View(sess *Session) SessionView {
	form := sess.Tracker.Form
	v := SessionView{
		ID:               sess.ID,
		Template:         sess.Template().Name,
		Title:            sess.Template().Title,
		CreatedAt:        sess.CreatedAt,
		FormattedSubject: form.Value(tracker.FieldFormattedSubject),
		Values:           sess.Tracker.Values(),
		Validation:       sess.Tracker.Base.ValidateFields(),
		Attachments:      len(sess.Attachments()),
	}
	select {
	case <-form.Ready():
		v.Ready = true
	default:
	}
	if sess.Source != nil {
		v.SourceTicketID = sess.Source.ID
	}
	for _, id := range form.IDs() {
		if d, ok := form.Descriptor(id); ok {
			v.Fields = append(v.Fields, d)
		}
	}
	return v
}

// SubjectPreview: тема, собранная вне сессии.
type SubjectPreview struct {
	Format     tracker.SubjectFormat    `json:"format"`
	Subject    string                   `json:"subject"`
	Parts      []string                 `json:"parts"`
	Validation tracker.ValidationResult `json:"validation"`
}

// FormatSubject собирает тему стратегией шаблона, без шаблона стратегией format,
// и проверяет результат правилами шаблона.
func (a *TrackerApp) FormatSubject(templateName string, format tracker.SubjectFormat, values map[string]interface{}) (SubjectPreview, error) {
	name := templateName
	if templateName != "" {
		tmpl, err := a.registry.Get(templateName)
		if err != nil {
			return SubjectPreview{}, err
		}
		format = tmpl.Subject.Format
	}
	if format == "" {
		format = tracker.FormatDefault
	}
	if !format.Valid() {
		return SubjectPreview{}, fmt.Errorf("%w %q", tracker.ErrUnknownFormat, format)
	}
	if name == "" {
		name = string(format)
	}
	mv := tracker.MapValues(values)
	subject := format.Format(mv)
	return SubjectPreview{
		Format:     format,
		Subject:    subject,
		Parts:      format.Parts(mv),
		Validation: tracker.ApplyTemplateRules(subject, name),
	}, nil
}

// waitReady ждёт заполнения, чтобы отправка увидела эти значения.
func (a *TrackerApp) waitReady(ctx context.Context, sess *Session) {
	ctx, cancel := context.WithTimeout(ctx, a.readyTimeout)
	defer cancel()
	if err := sess.WaitReady(ctx); err != nil {
		log.Printf("service: session %s: populators not finished: %v", sess.ID, err)
	}
}
