package tracker

import (
	"fmt"
	"html"
	"strings"

	"github.com/flosch/pongo2/v6"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
)

// emptyEditor: содержимое редактора, в котором ничего не набрано.
const emptyEditor = "<p><br></p>"

var (
	richTextPolicy = newRichTextPolicy()
	markdown       = goldmark.New()
)

func newRichTextPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("style").OnElements("span", "p", "div")
	p.AllowAttrs("class").Matching(bluemonday.SpaceSeparatedTokens).OnElements("p", "span", "li", "ol", "ul")
	return p
}

func init() {
	pongo2.RegisterFilter("formatdate", filterFormatDate)
	pongo2.RegisterFilter("richtext", filterRichText)
	pongo2.RegisterFilter("markdown", filterMarkdown)
	pongo2.RegisterFilter("roles", filterRoles)
	pongo2.RegisterFilter("link", filterLink)
}

func filterFormatDate(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	return pongo2.AsValue(FormatDate(in.String())), nil
}

// SanitizeRichText чистит HTML редактора; пустой редактор даёт "".
func SanitizeRichText(s string) string {
	s = strings.TrimSpace(s)
	if s == "" || s == emptyEditor {
		return ""
	}
	return richTextPolicy.Sanitize(s)
}

func filterRichText(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	return pongo2.AsSafeValue(SanitizeRichText(in.String())), nil
}

// filterMarkdown: простой текст из textarea (коды, списки) в HTML.
func filterMarkdown(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	src := strings.TrimSpace(in.String())
	if src == "" {
		return pongo2.AsSafeValue(""), nil
	}
	var b strings.Builder
	if err := markdown.Convert([]byte(src), &b); err != nil {
		return pongo2.AsValue(src), nil
	}
	return pongo2.AsSafeValue(richTextPolicy.Sanitize(b.String())), nil
}

// filterRoles соединяет подписи чекбоксов через ", ".
func filterRoles(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	if labels, ok := in.Interface().([]string); ok {
		return pongo2.AsValue(strings.Join(labels, ", ")), nil
	}
	return pongo2.AsValue(in.String()), nil
}

// Link: ссылка, открывающаяся в новой вкладке. Адрес без схемы получает https://.
func Link(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	href := raw
	if lower := strings.ToLower(raw); !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
		href = "https://" + raw
	}
	return fmt.Sprintf(`<a href="%s" target="_blank">%s</a>`, html.EscapeString(href), html.EscapeString(raw))
}

func filterLink(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	return pongo2.AsSafeValue(Link(in.String())), nil
}

// descriptionGenerator рендерит HTML-описание тикета для шаблона.
type descriptionGenerator struct {
	tpl *pongo2.Template
}

func compileDescription(src string) (*descriptionGenerator, error) {
	tpl, err := pongo2.FromString(src)
	if err != nil {
		return nil, fmt.Errorf("description template: %w", err)
	}
	return &descriptionGenerator{tpl: tpl}, nil
}

// GenerateDescription рендерит описание по значениям формы.
func (t *TemplateConfig) GenerateDescription(values map[string]interface{}) (string, error) {
	g := t.description
	if g == nil {
		var err error
		if g, err = compileDescription(t.DescriptionTemplate); err != nil {
			return "", err
		}
	}
	ctx := pongo2.Context{"template": t.Title}
	for k, v := range values {
		ctx[k] = v
	}
	out, err := g.tpl.Execute(ctx)
	if err != nil {
		return "", fmt.Errorf("render %s description: %w", t.Name, err)
	}
	return strings.TrimSpace(out), nil
}
