package tracker

import (
	"fmt"
	"strings"
)

const (
	PartSeparator   = " | "
	InPartSeparator = " • "
)

// Стили префикса VIP.
const (
	VIPStyleStar   = "star"
	VIPStylePrefix = "prefix"
	VIPStyleWord   = "word"
)

// VIPPrefix: "VIP *" для SIM, "VIP" для остальных стилей, "" когда не VIP.
func VIPPrefix(isVIP bool, style string) string {
	if !isVIP {
		return ""
	}
	if style == VIPStyleStar {
		return "VIP *"
	}
	return "VIP"
}

// joinNonEmpty обрезает пробелы и соединяет непустые значения через sep.
func joinNonEmpty(sep string, values ...string) string {
	kept := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			kept = append(kept, v)
		}
	}
	return strings.Join(kept, sep)
}

// DistrictInfo: "name • state", стиль star добавляет "VIP * ".
func DistrictInfo(name, state string, isVIP bool, style string) string {
	info := joinNonEmpty(InPartSeparator, name, state)
	if info == "" {
		return ""
	}
	if isVIP && style == VIPStyleStar {
		return VIPPrefix(true, VIPStyleStar) + " " + info
	}
	return info
}

// ProgramInfo: "application • version versionState". Без application
// фрагмент пустой.
func ProgramInfo(application, version, versionState string) string {
	application = strings.TrimSpace(application)
	if application == "" {
		return ""
	}
	if v := joinNonEmpty(" ", version, versionState); v != "" {
		return application + InPartSeparator + v
	}
	return application
}

// ResourceIssue: "resource • issue for role & role".
func ResourceIssue(resource, specificIssue string, roles []string) string {
	out := joinNonEmpty(InPartSeparator, resource, specificIssue)
	if out == "" {
		return ""
	}
	if r := joinNonEmpty(" & ", roles...); r != "" {
		out += " for " + r
	}
	return out
}

// PathBasedResource: "resource: path - issue".
func PathBasedResource(resource, path, specificIssue string) string {
	head := joinNonEmpty(": ", resource, path)
	return joinNonEmpty(" - ", head, specificIssue)
}

// JoinParts отбрасывает пустые части и соединяет остальные через sep ("" значит " | ").
func JoinParts(parts []string, sep string) string {
	if sep == "" {
		sep = PartSeparator
	}
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}

// Requirements: ограничения темы. Нулевое значение отключает проверку.
type Requirements struct {
	MinLength     int      `yaml:"minLength" json:"minLength,omitempty"`
	MaxLength     int      `yaml:"maxLength" json:"maxLength,omitempty"`
	RequiredParts []string `yaml:"requiredParts" json:"requiredParts,omitempty"`
	Separator     string   `yaml:"separator" json:"separator,omitempty"`
}

type ValidationResult struct {
	IsValid bool     `json:"isValid"`
	Errors  []string `json:"errors"`
}

// Validate проверяет тему по req. Длина считается в символах, не в байтах.
func Validate(subject string, req Requirements) ValidationResult {
	errs := []string{}
	n := len([]rune(subject))
	if req.MinLength > 0 && n < req.MinLength {
		errs = append(errs, fmt.Sprintf("Subject line must be at least %d characters", req.MinLength))
	}
	if req.MaxLength > 0 && n > req.MaxLength {
		errs = append(errs, fmt.Sprintf("Subject line must not exceed %d characters", req.MaxLength))
	}
	for _, part := range req.RequiredParts {
		if !strings.Contains(subject, part) {
			errs = append(errs, fmt.Sprintf("Subject line must contain %q", part))
		}
	}
	if req.Separator != "" && !strings.Contains(subject, req.Separator) {
		errs = append(errs, fmt.Sprintf("Subject line must use %q as separator", req.Separator))
	}
	return ValidationResult{IsValid: len(errs) == 0, Errors: errs}
}

var templateRules = map[string]Requirements{
	"sim-assignment":    {MaxLength: 200, Separator: PartSeparator},
	"sedcust":           {MaxLength: 200, Separator: PartSeparator, RequiredParts: []string{"Xcode"}},
	"assembly":          {MaxLength: 200, Separator: PartSeparator, RequiredParts: []string{"Xcode"}},
	"assembly-rollover": {MaxLength: 150, Separator: PartSeparator},
}

// TemplateRules: правила шаблона (нулевое значение, если правил нет).
func TemplateRules(templateName string) Requirements {
	return templateRules[templateName]
}

// ApplyTemplateRules проверяет тему по таблице правил шаблона.
// Шаблон без правил проверку проходит всегда.
func ApplyTemplateRules(subject, templateName string) ValidationResult {
	return Validate(subject, TemplateRules(templateName))
}
