package tracker

import (
	"fmt"
	"log"
	"strings"
	"sync"
)

// commonFieldIDs: поля темы, которые может иметь любой шаблон.
var commonFieldIDs = []string{
	"isVIP", "districtName", "districtState", "application",
	"version", "versionState", "formattedSubject", "xcode",
	"specificIssue", "resource", "issue", "hasMultipleXcodes",
	"gradesImpacted", "path",
}

const (
	FieldFormattedSubject = "formattedSubject"
	benchmarkCompany      = "Benchmark Education Company"
	allUsersOption        = "allUsers"
)

// FieldError: одно незаполненное обязательное поле.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type FieldValidation struct {
	IsValid bool         `json:"isValid"`
	Errors  []FieldError `json:"errors"`
}

// TemplateBase держит formattedSubject в согласии с полями темы.
type TemplateBase struct {
	tmpl *TemplateConfig
	form *Form

	mu        sync.Mutex
	fields    []string
	groups    []string
	listeners []ListenerID
	done      chan struct{}
	closeOnce sync.Once
}

func NewTemplateBase(t *TemplateConfig, form *Form) *TemplateBase {
	return &TemplateBase{tmpl: t, form: form, done: make(chan struct{})}
}

func (b *TemplateBase) Format() SubjectFormat {
	if b.tmpl == nil || b.tmpl.Subject.Format == "" {
		return FormatDefault
	}
	return b.tmpl.Subject.Format
}

func (b *TemplateBase) templateName() string {
	if b.tmpl == nil {
		return "unknown"
	}
	return b.tmpl.Name
}

// Initialize собирает поля темы, которые есть в форме, вешает обработчики,
// обновляет тему и обновляет её ещё раз, когда форма готова.
func (b *TemplateBase) Initialize() {
	b.mu.Lock()
	b.collectFields()
	for _, id := range b.fields {
		d, _ := b.form.Descriptor(id)
		b.listeners = append(b.listeners, b.form.Listen(id, d.DefaultEvent(), b.onChange))
	}
	for _, g := range b.groups {
		b.listeners = append(b.listeners, b.form.Listen(g, EventChange, b.onChange))
	}
	b.mu.Unlock()

	b.UpdateSubjectLine()

	go func() {
		select {
		case <-b.form.Ready():
			b.UpdateSubjectLine()
		case <-b.done:
		}
	}()
}

func (b *TemplateBase) onChange(Event) { b.UpdateSubjectLine() }

func (b *TemplateBase) collectFields() {
	b.fields = b.fields[:0]
	b.groups = b.groups[:0]
	seen := make(map[string]bool)
	ids := append([]string(nil), commonFieldIDs...)
	if b.tmpl != nil {
		ids = append(ids, b.tmpl.Subject.AdditionalFields...)
	}
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		if !b.form.Has(id) {
			continue
		}
		if b.form.IsCheckboxGroup(id) {
			b.groups = append(b.groups, id)
			continue
		}
		b.fields = append(b.fields, id)
	}
	if b.tmpl == nil {
		return
	}
	for _, g := range b.tmpl.Subject.CheckboxGroups {
		if seen[g] {
			continue
		}
		seen[g] = true
		if b.form.IsCheckboxGroup(g) {
			b.groups = append(b.groups, g)
		} else {
			log.Printf("tracker: %s: checkbox group %s not found", b.templateName(), g)
		}
	}
}

func (b *TemplateBase) isCollected(name string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, id := range b.fields {
		if id == name {
			return true
		}
	}
	for _, g := range b.groups {
		if g == name {
			return true
		}
	}
	return false
}

// Text: текстовое значение поля. Список на "Other" даёт введённое
// значение, отсутствующее поле даёт "".
func (b *TemplateBase) Text(name string) string {
	if b.form.IsCheckboxGroup(name) {
		return strings.Join(b.List(name), ", ")
	}
	if _, ok := customInputs[name]; ok {
		return VersionValue(b.form, name)
	}
	return b.form.Value(name)
}

// List: отмеченные подписи группы чекбоксов.
func (b *TemplateBase) List(name string) []string {
	var out []string
	for _, o := range b.form.Checked(name) {
		switch {
		case o.ID == allUsersOption:
			out = append(out, "All Users")
		case strings.TrimSpace(o.Label) != "":
			out = append(out, strings.TrimSpace(o.Label))
		default:
			out = append(out, o.ID)
		}
	}
	return out
}

// FieldValue: []string для группы чекбоксов, иначе string.
func (b *TemplateBase) FieldValue(name string) interface{} {
	if b.form.IsCheckboxGroup(name) {
		return b.List(name)
	}
	return b.Text(name)
}

func (b *TemplateBase) FormatSubjectLine() string {
	return b.Format().Format(b)
}

// UpdateSubjectLine пишет текущую тему в formattedSubject.
func (b *TemplateBase) UpdateSubjectLine() {
	if !b.form.Has(FieldFormattedSubject) {
		log.Printf("tracker: %s: missing formatted subject field", b.templateName())
		return
	}
	b.form.Write(FieldFormattedSubject, b.FormatSubjectLine())
}

// RequiredFields: поля, которые проверяет ValidateFields, в порядке объявления.
func (b *TemplateBase) RequiredFields() []string {
	if b.tmpl == nil {
		return nil
	}
	if len(b.tmpl.Subject.RequiredFields) > 0 {
		return b.tmpl.Subject.RequiredFields
	}
	var out []string
	for _, d := range b.tmpl.Fields() {
		if d.Required {
			out = append(out, d.ID)
		}
	}
	return out
}

// DistrictStateRequired: false для внутреннего округа самой компании.
func (b *TemplateBase) DistrictStateRequired() bool {
	return strings.TrimSpace(b.form.Value("districtName")) != benchmarkCompany
}

// ValidateFields проверяет обязательные поля и сама никогда не падает.
func (b *TemplateBase) ValidateFields() FieldValidation {
	res := FieldValidation{Errors: []FieldError{}}
	for _, name := range b.RequiredFields() {
		if name == "districtState" && !b.DistrictStateRequired() {
			continue
		}
		var empty bool
		if b.form.IsCheckboxGroup(name) {
			empty = len(b.List(name)) == 0
		} else {
			empty = strings.TrimSpace(b.Text(name)) == ""
		}
		if empty {
			res.Errors = append(res.Errors, FieldError{Field: name, Message: fmt.Sprintf("%s is required", name)})
		}
	}
	res.IsValid = len(res.Errors) == 0
	return res
}

// SetFieldValue пишет поле темы и посылает его событие. Для группы
// чекбоксов value: id или подписи вариантов через запятую.
func (b *TemplateBase) SetFieldValue(name, value string) {
	if !b.isCollected(name) {
		return
	}
	if b.form.IsCheckboxGroup(name) {
		var vals []string
		for _, v := range strings.Split(value, ",") {
			if v = strings.TrimSpace(v); v != "" {
				vals = append(vals, v)
			}
		}
		b.form.SetChecked(name, vals)
		return
	}
	b.form.Set(name, value)
}

// Cleanup снимает обработчики и перестаёт ждать готовности.
func (b *TemplateBase) Cleanup() {
	b.mu.Lock()
	ids := b.listeners
	b.listeners = nil
	b.mu.Unlock()
	for _, id := range ids {
		b.form.Unlisten(id)
	}
	b.closeOnce.Do(func() { close(b.done) })
}
