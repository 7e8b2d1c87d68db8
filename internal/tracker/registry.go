package tracker

import (
	"embed"
	"fmt"
	"io/fs"
	"log"
	"path"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/psds-microservice/tracker-service/internal/errs"
)

//go:embed templates/*.yaml
var embedded embed.FS

// ticketSection: общие поля тикета, с которыми отправляется любой трекер.
var ticketSection = SectionDescriptor{
	ID:    "ticket",
	Title: "TICKET",
	Fields: []FieldDescriptor{
		{ID: "email", Type: FieldEmail, Label: "Requester Email", Required: true},
		{ID: "relatedTickets", Type: FieldText, Label: "Related Tickets", Placeholder: "Ex: 12345, 67890"},
		{ID: "subject", Type: FieldHidden},
		{ID: "priority", Type: FieldHidden},
		{ID: "status", Type: FieldHidden},
		{ID: "groupField", Type: FieldHidden},
		{ID: "agentField", Type: FieldHidden},
		{ID: "districtField", Type: FieldHidden},
	},
}

// Registry: шаблоны трекеров по имени. После загрузки только чтение.
type Registry struct {
	byName map[string]*TemplateConfig
	names  []string
}

// LoadRegistry загружает шаблоны, встроенные в бинарник.
func LoadRegistry() (*Registry, error) {
	return NewRegistry(embedded, "templates/*.yaml")
}

// NewRegistry разбирает файлы шаблонов из fsys по pattern.
func NewRegistry(fsys fs.FS, pattern string) (*Registry, error) {
	files, err := fs.Glob(fsys, pattern)
	if err != nil {
		return nil, fmt.Errorf("registry: glob %s: %w", pattern, err)
	}
	r := &Registry{byName: make(map[string]*TemplateConfig, len(files))}
	for _, f := range files {
		data, err := fs.ReadFile(fsys, f)
		if err != nil {
			return nil, fmt.Errorf("registry: read %s: %w", f, err)
		}
		t, err := ParseTemplate(data)
		if err != nil {
			return nil, fmt.Errorf("registry: %s: %w", path.Base(f), err)
		}
		if _, dup := r.byName[t.Name]; dup {
			return nil, fmt.Errorf("registry: duplicate template %q", t.Name)
		}
		r.byName[t.Name] = t
		r.names = append(r.names, t.Name)
	}
	sort.Strings(r.names)
	log.Printf("tracker: loaded %d templates", len(r.names))
	return r, nil
}

// ParseTemplate разбирает и готовит одно описание шаблона.
func ParseTemplate(data []byte) (*TemplateConfig, error) {
	var t TemplateConfig
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if t.Name == "" {
		return nil, fmt.Errorf("template name is empty")
	}
	if t.Subject.Format == "" {
		t.Subject.Format = FormatDefault
	}
	for _, s := range t.Sections {
		for _, f := range s.Fields {
			if f.ID == "" {
				return nil, fmt.Errorf("section %s: field without id", s.ID)
			}
		}
	}
	t.Sections = append(t.Sections, ticketSection)
	g, err := compileDescription(t.DescriptionTemplate)
	if err != nil {
		return nil, err
	}
	t.description = g
	return &t, nil
}

// Get: шаблон по имени.
func (r *Registry) Get(name string) (*TemplateConfig, error) {
	t, ok := r.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", errs.ErrTemplateNotFound, name)
	}
	return t, nil
}

// Names: имена шаблонов по алфавиту.
func (r *Registry) Names() []string {
	return append([]string(nil), r.names...)
}

// List: шаблоны по алфавиту.
func (r *Registry) List() []*TemplateConfig {
	out := make([]*TemplateConfig, 0, len(r.names))
	for _, n := range r.names {
		out = append(out, r.byName[n])
	}
	return out
}
