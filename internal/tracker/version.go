package tracker

import "log"

const (
	// OtherValue: вариант, который переключает список на ввод своего значения.
	OtherValue      = "Other"
	AttrCustomValue = "data-custom-value"
)

type VersionState int

const (
	VersionNormal VersionState = iota
	VersionCustom
)

// customInputs: для каждого списка с "Other" его текстовое поле.
var customInputs = map[string]struct{ id, label string }{
	"version":      {"customVersionInput", "Custom Version"},
	"versionState": {"customVersionStateInput", "Custom Version State"},
}

// CustomInputID: id текстового поля, парного списку.
func CustomInputID(field string) string {
	return customInputs[field].id
}

// VersionHandler переключает один список между обычным выбором и своим значением.
// В режиме своего значения сразу после списка стоит текстовое поле; набранное
// копируется в атрибут data-custom-value списка и переживает
// выход из режима и повторный вход.
type VersionHandler struct {
	form     *Form
	field    string
	inputID  string
	label    string
	state    VersionState
	listener ListenerID
}

// AttachVersionHandler подключает обработчик к field. nil, если в форме
// нет такого списка или у поля нет своего значения.
func AttachVersionHandler(form *Form, field string) *VersionHandler {
	ci, ok := customInputs[field]
	if !ok || !form.Has(field) {
		return nil
	}
	h := &VersionHandler{form: form, field: field, inputID: ci.id, label: ci.label}
	h.listener = form.Listen(field, EventChange, func(Event) { h.sync() })
	h.sync()
	return h
}

// AttachVersionHandlers подключает обработчики ко всем спискам формы с "Other".
func AttachVersionHandlers(form *Form) []*VersionHandler {
	var out []*VersionHandler
	for _, field := range []string{"version", "versionState"} {
		if h := AttachVersionHandler(form, field); h != nil {
			out = append(out, h)
		}
	}
	return out
}

func (h *VersionHandler) State() VersionState {
	return h.state
}

func (h *VersionHandler) sync() {
	other := h.form.Value(h.field) == OtherValue
	switch {
	case other && h.state == VersionNormal:
		h.enterCustom()
	case !other && h.state == VersionCustom:
		h.exitCustom()
	}
}

func (h *VersionHandler) enterCustom() {
	stored, _ := h.form.Attr(h.field, AttrCustomValue)
	h.form.InsertAfter(h.field, FieldDescriptor{
		ID:           h.inputID,
		Type:         FieldText,
		Label:        h.label,
		Placeholder:  "Enter " + h.label,
		DefaultValue: stored,
	})
	h.form.Listen(h.inputID, EventInput, func(Event) { h.mirror() })
	h.state = VersionCustom
	log.Printf("tracker: %s switched to custom entry", h.field)
}

func (h *VersionHandler) exitCustom() {
	h.form.Remove(h.inputID)
	h.state = VersionNormal
}

func (h *VersionHandler) mirror() {
	h.form.SetAttr(h.field, AttrCustomValue, h.form.Value(h.inputID))
	h.form.Dispatch(h.field, EventChange)
	if h.field == "versionState" {
		h.form.Dispatch(h.field, EventInput)
	}
}

// Detach снимает обработчик списка и убирает текстовое поле.
func (h *VersionHandler) Detach() {
	h.form.Unlisten(h.listener)
	if h.state == VersionCustom {
		h.exitCustom()
	}
}

// VersionValue: значение списка. На "Other" это введённое значение,
// а если ничего не набрано, сам "Other".
func VersionValue(form *Form, field string) string {
	v := form.Value(field)
	if v != OtherValue {
		return v
	}
	if id := CustomInputID(field); id != "" && form.Has(id) {
		if s := form.Value(id); s != "" {
			return s
		}
	}
	if s, ok := form.Attr(field, AttrCustomValue); ok && s != "" {
		return s
	}
	return OtherValue
}
