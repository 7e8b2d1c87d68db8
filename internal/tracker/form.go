package tracker

import (
	"errors"
	"fmt"
	"strings"
	"sync"
)

type EventType string

const (
	EventInput  EventType = "input"
	EventChange EventType = "change"
)

var (
	ErrUnknownField  = errors.New("unknown form field")
	ErrReadOnlyField = errors.New("form field is read-only")
)

// Event доставляется обработчикам после изменения поля.
type Event struct {
	Field string
	Type  EventType
}

type Listener func(Event)

type ListenerID uint64

type listenerEntry struct {
	id    ListenerID
	field string
	typ   EventType
	fn    Listener
}

type fieldState struct {
	desc    FieldDescriptor
	value   string
	checked map[string]bool
	attrs   map[string]string
}

// Form: состояние одной формы трекера. У каждого id ровно одно значение,
// поэтому поле из двух секций связано с одним состоянием.
// Обработчики вызываются синхронно, вне блокировки, в порядке регистрации.
type Form struct {
	mu        sync.Mutex
	fields    map[string]*fieldState
	order     []string
	listeners []listenerEntry
	nextID    ListenerID

	readyOnce sync.Once
	ready     chan struct{}
}

// NewForm отрисовывает поля шаблона со значениями по умолчанию.
func NewForm(t *TemplateConfig) *Form {
	f := &Form{
		fields: make(map[string]*fieldState),
		ready:  make(chan struct{}),
	}
	if t != nil {
		for _, d := range t.Fields() {
			f.declareLocked(d, "")
		}
	}
	return f
}

func (f *Form) declareLocked(d FieldDescriptor, after string) {
	if _, ok := f.fields[d.ID]; ok {
		return
	}
	if d.Type == "" {
		d.Type = FieldText
	}
	st := &fieldState{desc: d, value: d.DefaultValue, attrs: make(map[string]string)}
	if d.Type == FieldCheckboxes {
		st.checked = make(map[string]bool)
	}
	f.fields[d.ID] = st
	if after != "" {
		for i, id := range f.order {
			if id == after {
				f.order = append(f.order[:i+1], append([]string{d.ID}, f.order[i+1:]...)...)
				return
			}
		}
	}
	f.order = append(f.order, d.ID)
}

// Declare добавляет поле; если id уже есть, ничего не делает.
func (f *Form) Declare(d FieldDescriptor) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.declareLocked(d, "")
}

// InsertAfter добавляет поле сразу после anchor.
func (f *Form) InsertAfter(anchor string, d FieldDescriptor) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.declareLocked(d, anchor)
}

// Remove удаляет поле и его обработчики.
func (f *Form) Remove(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.fields[id]; !ok {
		return
	}
	delete(f.fields, id)
	for i, o := range f.order {
		if o == id {
			f.order = append(f.order[:i], f.order[i+1:]...)
			break
		}
	}
	kept := f.listeners[:0]
	for _, l := range f.listeners {
		if l.field != id {
			kept = append(kept, l)
		}
	}
	f.listeners = kept
}

func (f *Form) Has(id string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.fields[id]
	return ok
}

func (f *Form) Descriptor(id string) (FieldDescriptor, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	st, ok := f.fields[id]
	if !ok {
		return FieldDescriptor{}, false
	}
	return st.desc, true
}

// IDs: id полей в порядке отрисовки.
func (f *Form) IDs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.order...)
}

// Value: сырое значение поля ("" для отсутствующих полей и групп чекбоксов).
func (f *Form) Value(id string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if st, ok := f.fields[id]; ok {
		return st.value
	}
	return ""
}

// Checked: отмеченные варианты группы в порядке объявления.
func (f *Form) Checked(id string) []Option {
	f.mu.Lock()
	defer f.mu.Unlock()
	st, ok := f.fields[id]
	if !ok || st.checked == nil {
		return nil
	}
	var out []Option
	for _, o := range st.desc.Options {
		if st.checked[o.ID] {
			out = append(out, o)
		}
	}
	return out
}

func (f *Form) IsCheckboxGroup(id string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	st, ok := f.fields[id]
	return ok && st.checked != nil
}

// Attr читает data-атрибут поля.
func (f *Form) Attr(id, name string) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	st, ok := f.fields[id]
	if !ok {
		return "", false
	}
	v, ok := st.attrs[name]
	return v, ok
}

func (f *Form) SetAttr(id, name, value string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if st, ok := f.fields[id]; ok {
		st.attrs[name] = value
	}
}

// Write пишет значение без событий. Для отсутствующего поля false.
func (f *Form) Write(id, value string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	st, ok := f.fields[id]
	if !ok {
		return false
	}
	st.value = value
	return true
}

// Set пишет значение и посылает событие поля по умолчанию.
func (f *Form) Set(id, value string) bool {
	f.mu.Lock()
	st, ok := f.fields[id]
	if !ok {
		f.mu.Unlock()
		return false
	}
	st.value = value
	evt := st.desc.DefaultEvent()
	f.mu.Unlock()
	f.Dispatch(id, evt)
	return true
}

// SetChecked отмечает варианты группы, чей id или подпись есть в values,
// и посылает change.
func (f *Form) SetChecked(id string, values []string) bool {
	f.mu.Lock()
	st, ok := f.fields[id]
	if !ok || st.checked == nil {
		f.mu.Unlock()
		return false
	}
	want := make(map[string]bool, len(values))
	for _, v := range values {
		want[v] = true
	}
	for _, o := range st.desc.Options {
		st.checked[o.ID] = want[o.ID] || want[o.Label]
	}
	f.mu.Unlock()
	f.Dispatch(id, EventChange)
	return true
}

// Input применяет правку пользователя; read-only и неизвестные поля отклоняются.
func (f *Form) Input(id, value string) error {
	d, ok := f.Descriptor(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownField, id)
	}
	if d.ReadOnly {
		return fmt.Errorf("%w: %s", ErrReadOnlyField, id)
	}
	if d.Type == FieldCheckboxes {
		var vals []string
		for _, v := range strings.Split(value, ",") {
			if v = strings.TrimSpace(v); v != "" {
				vals = append(vals, v)
			}
		}
		f.SetChecked(id, vals)
		return nil
	}
	f.Set(id, value)
	return nil
}

// Listen регистрирует fn на события typ поля id.
func (f *Form) Listen(id string, typ EventType, fn Listener) ListenerID {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	f.listeners = append(f.listeners, listenerEntry{id: f.nextID, field: id, typ: typ, fn: fn})
	return f.nextID
}

func (f *Form) Unlisten(id ListenerID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, l := range f.listeners {
		if l.id == id {
			f.listeners = append(f.listeners[:i], f.listeners[i+1:]...)
			return
		}
	}
}

// ListenerCount: число обработчиков.
func (f *Form) ListenerCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.listeners)
}

// Dispatch посылает событие полю.
func (f *Form) Dispatch(id string, typ EventType) {
	f.mu.Lock()
	var fns []Listener
	for _, l := range f.listeners {
		if l.field == id && l.typ == typ {
			fns = append(fns, l.fn)
		}
	}
	f.mu.Unlock()
	evt := Event{Field: id, Type: typ}
	for _, fn := range fns {
		fn(evt)
	}
}

// MarkReady подаёт сигнал готовности; повторные вызовы ничего не делают.
func (f *Form) MarkReady() {
	f.readyOnce.Do(func() { close(f.ready) })
}

// Ready закрывается, когда заполнение из контекста закончено.
func (f *Form) Ready() <-chan struct{} {
	return f.ready
}

// Values: снимок формы, группа чекбоксов даёт отмеченные подписи.
func (f *Form) Values() map[string]interface{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[string]interface{}, len(f.fields))
	for id, st := range f.fields {
		if st.checked != nil {
			var labels []string
			for _, o := range st.desc.Options {
				if st.checked[o.ID] {
					labels = append(labels, o.Label)
				}
			}
			out[id] = labels
			continue
		}
		out[id] = st.value
	}
	return out
}
