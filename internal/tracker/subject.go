package tracker

import (
	"errors"
	"fmt"
	"strings"
)

var ErrUnknownFormat = errors.New("unknown subject format")

// SubjectFormat выбирает стратегию построения темы для шаблона.
type SubjectFormat string

const (
	FormatDefault          SubjectFormat = "default"
	FormatSIM              SubjectFormat = "sim"
	FormatSIMDashboard     SubjectFormat = "sim-dashboard"
	FormatSIMAchievement   SubjectFormat = "sim-achievement-levels"
	FormatSEDCUST          SubjectFormat = "sedcust"
	FormatAssembly         SubjectFormat = "assembly"
	FormatAssemblyRollover SubjectFormat = "assembly-rollover"
	FormatDPT              SubjectFormat = "dpt"
	FormatTimeoutExtension SubjectFormat = "timeout-extension"
	FormatHelpArticle      SubjectFormat = "help-article"
	FormatFeatureRequest   SubjectFormat = "feature-request"
)

const (
	yes                 = "Yes"
	placeholderResource = "Placeholder"
	xcodeUnknown        = "Xcode Unknown"
	dptSubject          = "DPT • Customized eAssessments - District Admin"
	helpArticleSubject  = "BU Help Article Update"
	rolloverIssue       = "Assembly Rollover"
	timeoutIssue        = "Timeout Extension"
	achievementSubject  = "Custom Achievement Levels"
)

// FieldValues: то, что читает стратегия (текстовые значения и подписи чекбоксов).
type FieldValues interface {
	Text(name string) string
	List(name string) []string
}

type subjectStrategy func(FieldValues) []string

var strategies = map[SubjectFormat]subjectStrategy{
	FormatDefault:          defaultParts,
	FormatSIM:              simParts,
	FormatSIMDashboard:     simDashboardParts,
	FormatSIMAchievement:   simAchievementParts,
	FormatFeatureRequest:   featureRequestParts,
	FormatSEDCUST:          sedcustParts,
	FormatAssembly:         assemblyParts,
	FormatAssemblyRollover: assemblyRolloverParts,
	FormatDPT:              dptParts,
	FormatTimeoutExtension: timeoutExtensionParts,
	FormatHelpArticle:      helpArticleParts,
}

// Valid: известна ли стратегия f. Пустой формат означает default.
func (f SubjectFormat) Valid() bool {
	if f == "" {
		return true
	}
	_, ok := strategies[f]
	return ok
}

func (f *SubjectFormat) UnmarshalText(b []byte) error {
	v := SubjectFormat(strings.TrimSpace(string(b)))
	if !v.Valid() {
		return fmt.Errorf("%w %q", ErrUnknownFormat, v)
	}
	*f = v
	return nil
}

// Formats: список известных форматов.
func Formats() []SubjectFormat {
	return []SubjectFormat{
		FormatDefault, FormatSIM, FormatSIMDashboard, FormatSIMAchievement, FormatSEDCUST,
		FormatAssembly, FormatAssemblyRollover, FormatDPT, FormatTimeoutExtension, FormatHelpArticle, FormatFeatureRequest,
	}
}

// Parts возвращает непустые фрагменты темы по порядку.
func (f SubjectFormat) Parts(v FieldValues) []string {
	s, ok := strategies[f]
	if !ok {
		s = defaultParts
	}
	var out []string
	for _, p := range s(v) {
		if strings.TrimSpace(p) != "" {
			out = append(out, p)
		}
	}
	return out
}

// Format собирает тему: фрагменты через " | ".
func (f SubjectFormat) Format(v FieldValues) string {
	return JoinParts(f.Parts(v), PartSeparator)
}

func isVIP(v FieldValues) bool {
	return strings.TrimSpace(v.Text("isVIP")) == yes
}

// checked понимает и Yes/No, и одиночный чекбокс.
func checked(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes", "true", "on":
		return true
	}
	return false
}

func xcodeOf(v FieldValues) string {
	x := strings.TrimSpace(v.Text("xcode"))
	if x == "" && checked(v.Text("xcodeUnknown")) {
		return xcodeUnknown
	}
	return x
}

func orDefault(s, def string) string {
	if s = strings.TrimSpace(s); s != "" {
		return s
	}
	return def
}

// VIP * District • ST | Program • Version State | Resource • Issue for Roles
func simParts(v FieldValues) []string {
	return simLayout(v, v.Text("resource"))
}

// Как sim, но ресурс "Placeholder" в тему не попадает.
func simDashboardParts(v FieldValues) []string {
	resource := v.Text("resource")
	if strings.TrimSpace(resource) == placeholderResource {
		resource = ""
	}
	return simLayout(v, resource)
}

func simLayout(v FieldValues, resource string) []string {
	return []string{
		DistrictInfo(v.Text("districtName"), v.Text("districtState"), isVIP(v), VIPStyleStar),
		ProgramInfo(v.Text("application"), v.Text("version"), v.Text("versionState")),
		ResourceIssue(resource, v.Text("specificIssue"), v.List("userRole")),
	}
}

// [VIP* ]District • ST | Custom Achievement Levels
func simAchievementParts(v FieldValues) []string {
	if strings.TrimSpace(v.Text("districtName")) == "" {
		return []string{achievementSubject}
	}
	district := DistrictInfo(v.Text("districtName"), v.Text("districtState"), false, "")
	if isVIP(v) {
		district = "VIP* " + district
	}
	return []string{district, achievementSubject}
}

// featureValues: запрос на доработку в раскладке SIM, resourceName и
// shortDescription подставляются вместо resource и specificIssue.
type featureValues struct{ FieldValues }

func (f featureValues) Text(name string) string {
	alias := map[string]string{"resource": "resourceName", "specificIssue": "shortDescription"}[name]
	if v := f.FieldValues.Text(name); v != "" || alias == "" {
		return v
	}
	return f.FieldValues.Text(alias)
}

func featureRequestParts(v FieldValues) []string {
	return simParts(featureValues{v})
}

// Xcode | VIP | Program • Version State | Resource: Path - Issue
func sedcustParts(v FieldValues) []string {
	return []string{
		xcodeOf(v),
		VIPPrefix(isVIP(v), VIPStylePrefix),
		ProgramInfo(v.Text("application"), v.Text("version"), v.Text("versionState")),
		PathBasedResource(v.Text("resource"), v.Text("path"), v.Text("specificIssue")),
	}
}

// Xcode (Multiple Xcodes) | VIP|Standard | Program • Version State | Issue: Grades
func assemblyParts(v FieldValues) []string {
	xcode := xcodeOf(v)
	if xcode != "" && strings.TrimSpace(v.Text("hasMultipleXcodes")) == yes {
		xcode += " (Multiple Xcodes)"
	}
	tier := "Standard"
	if isVIP(v) {
		tier = VIPPrefix(true, VIPStyleWord)
	}
	return []string{
		xcode,
		tier,
		ProgramInfo(v.Text("application"), v.Text("version"), v.Text("versionState")),
		joinNonEmpty(": ", v.Text("specificIssue"), v.Text("gradesImpacted")),
	}
}

// VIP | District • ST | Assembly Rollover
func assemblyRolloverParts(v FieldValues) []string {
	return []string{
		VIPPrefix(isVIP(v), VIPStylePrefix),
		DistrictInfo(v.Text("districtName"), v.Text("districtState"), false, ""),
		orDefault(v.Text("issue"), rolloverIssue),
	}
}

// Без названия округа тема состоит только из фиксированной строки DPT.
func dptParts(v FieldValues) []string {
	if strings.TrimSpace(v.Text("districtName")) == "" {
		return []string{dptSubject}
	}
	return []string{
		DistrictInfo(v.Text("districtName"), v.Text("districtState"), isVIP(v), VIPStyleStar),
		dptSubject,
	}
}

func timeoutExtensionParts(v FieldValues) []string {
	district := ""
	if strings.TrimSpace(v.Text("districtName")) != "" {
		prefix := "Standard "
		if isVIP(v) {
			prefix = "VIP * "
		}
		district = prefix + DistrictInfo(v.Text("districtName"), v.Text("districtState"), false, "")
	}
	return []string{district, orDefault(v.Text("issue"), timeoutIssue)}
}

func helpArticleParts(v FieldValues) []string {
	return []string{helpArticleSubject, strings.TrimSpace(v.Text("helpArticleName"))}
}

func defaultParts(v FieldValues) []string {
	for _, name := range []string{"xcode", "districtName", "application", "specificIssue", "issue"} {
		if s := strings.TrimSpace(v.Text(name)); s != "" {
			return []string{s}
		}
	}
	return nil
}

// MapValues: обычная карта значений (JSON запроса, флаги CLI) как FieldValues.
// Список может быть []string, []interface{} или строкой через запятую.
type MapValues map[string]interface{}

func (m MapValues) Text(name string) string {
	switch v := m[name].(type) {
	case string:
		return v
	case bool:
		if v {
			return yes
		}
		return "No"
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

func (m MapValues) List(name string) []string {
	switch v := m[name].(type) {
	case []string:
		return v
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, item := range v {
			out = append(out, fmt.Sprint(item))
		}
		return out
	case string:
		var out []string
		for _, s := range strings.Split(v, ",") {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}
