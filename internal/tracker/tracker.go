// Package tracker: формы тикетов по шаблонам. Состояние формы, стратегии
// темы, заполнение полей из контекста и контроллер шаблона.
package tracker

// Tracker: один отрисованный шаблон с формой, контроллером темы и
// обработчиками списков версий.
type Tracker struct {
	Template *TemplateConfig
	Form     *Form
	Base     *TemplateBase
	Versions []*VersionHandler
	Reports  *ReportNameSync
}

// Mount отрисовывает t и подключает обработчики. Заполнение из контекста
// запускается отдельно, ему нужен исходный тикет.
func Mount(t *TemplateConfig) *Tracker {
	form := NewForm(t)
	tr := &Tracker{
		Template: t,
		Form:     form,
		Versions: AttachVersionHandlers(form),
		Reports:  AttachReportNameSync(form),
		Base:     NewTemplateBase(t, form),
	}
	tr.Base.Initialize()
	return tr
}

// Values: снимок формы, списки "Other" заменены введённым значением.
func (tr *Tracker) Values() map[string]interface{} {
	v := tr.Form.Values()
	for field := range customInputs {
		if tr.Form.Has(field) {
			v[field] = VersionValue(tr.Form, field)
		}
	}
	return v
}

// Close отключает все обработчики. После Close трекер не используется.
func (tr *Tracker) Close() {
	tr.Base.Cleanup()
	for _, h := range tr.Versions {
		h.Detach()
	}
	if tr.Reports != nil {
		tr.Reports.Detach()
	}
	tr.Form.MarkReady()
}
