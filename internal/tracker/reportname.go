package tracker

import "strings"

// Префиксы ресурса, из которых выводится название отчёта.
var reportPrefixes = []string{"ORR:", "Reports:"}

// ReportName: текст после ": " для ресурсов ORR и Reports, иначе "".
func ReportName(resource string) string {
	for _, p := range reportPrefixes {
		if !strings.HasPrefix(resource, p) {
			continue
		}
		i := strings.Index(resource, ": ")
		if i == -1 || i >= len(resource)-2 {
			return ""
		}
		return resource[i+2:]
	}
	return ""
}

// ReportNameSync заполняет reportName при смене resource.
// Для прочих ресурсов поле остаётся как есть.
type ReportNameSync struct {
	form     *Form
	listener ListenerID
}

// AttachReportNameSync возвращает nil, если в форме нет resource или reportName.
func AttachReportNameSync(form *Form) *ReportNameSync {
	if !form.Has("resource") || !form.Has("reportName") {
		return nil
	}
	s := &ReportNameSync{form: form}
	s.listener = form.Listen("resource", EventChange, func(Event) { s.sync() })
	s.sync()
	return s
}

func (s *ReportNameSync) sync() {
	if name := ReportName(s.form.Value("resource")); name != "" {
		s.form.Write("reportName", name)
	}
}

func (s *ReportNameSync) Detach() {
	s.form.Unlisten(s.listener)
}
