package tracker

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

type FieldType string

const (
	FieldText       FieldType = "text"
	FieldEmail      FieldType = "email"
	FieldSelect     FieldType = "select"
	FieldDate       FieldType = "date"
	FieldTextarea   FieldType = "textarea"
	FieldRichText   FieldType = "richtext"
	FieldCheckboxes FieldType = "checkboxes"
	FieldCheckbox   FieldType = "checkbox"
	FieldHidden     FieldType = "hidden"
)

// Option: вариант select (ID == Label) или чекбокс группы.
type Option struct {
	ID    string `yaml:"id" json:"id"`
	Label string `yaml:"label" json:"label"`
}

// UnmarshalYAML принимает строку или карту {id, label}.
func (o *Option) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind == yaml.ScalarNode {
		o.ID = n.Value
		o.Label = n.Value
		return nil
	}
	type plain Option
	var p plain
	if err := n.Decode(&p); err != nil {
		return fmt.Errorf("option: %w", err)
	}
	*o = Option(p)
	if o.Label == "" {
		o.Label = o.ID
	}
	return nil
}

type FieldDescriptor struct {
	ID           string    `yaml:"id" json:"id"`
	Type         FieldType `yaml:"type" json:"type"`
	Label        string    `yaml:"label" json:"label"`
	Required     bool      `yaml:"required" json:"required"`
	Options      []Option  `yaml:"options,omitempty" json:"options,omitempty"`
	Hint         string    `yaml:"hint,omitempty" json:"hint,omitempty"`
	Placeholder  string    `yaml:"placeholder,omitempty" json:"placeholder,omitempty"`
	ReadOnly     bool      `yaml:"readOnly,omitempty" json:"readOnly,omitempty"`
	DefaultValue string    `yaml:"defaultValue,omitempty" json:"defaultValue,omitempty"`
}

// DefaultEvent: событие, которое посылает запись в поле.
func (d FieldDescriptor) DefaultEvent() EventType {
	switch d.Type {
	case FieldSelect, FieldDate, FieldCheckboxes, FieldCheckbox:
		return EventChange
	}
	return EventInput
}

type SectionDescriptor struct {
	ID     string            `yaml:"id" json:"id"`
	Title  string            `yaml:"title" json:"title"`
	Icon   string            `yaml:"icon,omitempty" json:"icon,omitempty"`
	Fields []FieldDescriptor `yaml:"fields" json:"fields"`
}

// SubjectConfig: настройки TemplateBase для шаблона.
type SubjectConfig struct {
	Format           SubjectFormat `yaml:"format" json:"format"`
	RequiredFields   []string      `yaml:"requiredFields,omitempty" json:"requiredFields,omitempty"`
	AdditionalFields []string      `yaml:"additionalFields,omitempty" json:"additionalFields,omitempty"`
	CheckboxGroups   []string      `yaml:"checkboxGroups,omitempty" json:"checkboxGroups,omitempty"`
}

// TemplateConfig: один тип трекера. После загрузки в Registry не меняется.
type TemplateConfig struct {
	Name        string              `yaml:"name" json:"name"`
	Title       string              `yaml:"title" json:"title"`
	Icon        string              `yaml:"icon,omitempty" json:"icon,omitempty"`
	Description string              `yaml:"description" json:"description"`
	Sections    []SectionDescriptor `yaml:"sections" json:"sections"`
	Subject     SubjectConfig       `yaml:"subject" json:"subject"`
	// Populators запускаются при открытии сессии по порядку: applicationName, districtState,
	// districtName, vipStatus.
	Populators          []string `yaml:"populators,omitempty" json:"populators,omitempty"`
	JiraFields          bool     `yaml:"jiraFields,omitempty" json:"jiraFields,omitempty"`
	DescriptionTemplate string   `yaml:"descriptionTemplate" json:"-"`

	description *descriptionGenerator
}

// Fields: описания полей всех секций в порядке объявления.
// Поле из двух секций попадает один раз, с первым объявлением.
func (t *TemplateConfig) Fields() []FieldDescriptor {
	seen := make(map[string]bool)
	var out []FieldDescriptor
	for _, s := range t.Sections {
		for _, f := range s.Fields {
			if seen[f.ID] {
				continue
			}
			seen[f.ID] = true
			out = append(out, f)
		}
	}
	return out
}

// Field ищет описание поля по id.
func (t *TemplateConfig) Field(id string) (FieldDescriptor, bool) {
	for _, s := range t.Sections {
		for _, f := range s.Fields {
			if f.ID == id {
				return f, true
			}
		}
	}
	return FieldDescriptor{}, false
}
