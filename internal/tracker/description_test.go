package tracker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssemblyRolloverDescription(t *testing.T) {
	reg, err := LoadRegistry()
	require.NoError(t, err)
	tmpl, err := reg.Get("assembly-rollover")
	require.NoError(t, err)

	out, err := tmpl.GenerateDescription(map[string]interface{}{
		"summaryContent":   "<p><br></p>",
		"districtName":     "Maple USD",
		"districtBURCLink": "https://example.test/1/dashboard",
		"effectiveDate":    "2024-08-01",
		"assemblyCodes":    "- X1\n- X2",
	})
	require.NoError(t, err)
	assert.Contains(t, out, "District Name: Maple USD<br>")
	assert.Contains(t, out, "Effective Return Date: 08/01/2024<br>")
	assert.Contains(t, out, "Order Concerns is unable to remove the old subs / assemblies.")
	assert.Contains(t, out, "<li>X1</li>")
}

func TestSimDescriptionOmitsEmptyScreenshots(t *testing.T) {
	tr := mountTemplate(t, "sim-dashboard")
	fixedDemo().Fill(tr.Form)
	tr.Form.Write("screenshotsDescription", "<p><br></p>")

	out, err := tr.Template.GenerateDescription(tr.Values())
	require.NoError(t, err)
	assert.NotContains(t, out, "SCREENSHOTS")
	assert.Contains(t, out, "User Roles: Teachers<br>")
	assert.Contains(t, out, "Date Reported: 03/09/2026<br>")
}

func TestSanitizeRichText(t *testing.T) {
	assert.Equal(t, "", SanitizeRichText("  <p><br></p> "))
	assert.Equal(t, "<p>hi</p>", SanitizeRichText(`<p>hi</p><script>alert(1)</script>`))
	styled := SanitizeRichText(`<span style="color: red" onclick="x()">x</span>`)
	assert.Contains(t, styled, `style="color: red"`)
	assert.NotContains(t, styled, "onclick")
}

func TestGenerateDescriptionWithoutRegistry(t *testing.T) {
	tmpl := &TemplateConfig{Name: "adhoc", Title: "Ad Hoc", DescriptionTemplate: "{{ template }}: {{ roles|roles }}"}
	out, err := tmpl.GenerateDescription(map[string]interface{}{"roles": []string{"Students", "Admin"}})
	require.NoError(t, err)
	assert.Equal(t, "Ad Hoc: Students, Admin", out)
}

func TestLink(t *testing.T) {
	assert.Equal(t, "", Link("  "))
	assert.Equal(t,
		`<a href="https://example.test/85066/dashboard" target="_blank">example.test/85066/dashboard</a>`,
		Link(" example.test/85066/dashboard "))
	assert.Equal(t,
		`<a href="http://a.test/?x=1&amp;y=2" target="_blank">http://a.test/?x=1&amp;y=2</a>`,
		Link("http://a.test/?x=1&y=2"))
	assert.NotContains(t, Link(`"><script>`), "<script>")
}

func TestAchievementLevelsDescription(t *testing.T) {
	tr := mountTemplate(t, "sim-achievement-levels")
	tr.Form.Write("isVIP", "Yes")
	tr.Form.Write("districtName", "Fairfax County")
	tr.Form.Write("districtState", "VA")
	tr.Form.Write("summaryContent", "<p>Custom cut scores for grade 3.</p>")
	tr.Form.Write("realm", "fairfax.benchmarkuniverse.com")
	tr.Form.Write("dateRequested", "2026-03-09")
	tr.Base.UpdateSubjectLine()

	assert.Equal(t, "VIP* Fairfax County • VA | Custom Achievement Levels", tr.Form.Value(FieldFormattedSubject))

	out, err := tr.Template.GenerateDescription(tr.Values())
	require.NoError(t, err)
	assert.Contains(t, out, "<p>Custom cut scores for grade 3.</p>")
	assert.Contains(t, out, `Realm (BURC Link): <a href="https://fairfax.benchmarkuniverse.com" target="_blank">fairfax.benchmarkuniverse.com</a><br>`)
	assert.Contains(t, out, "Date Requested By Customer: 03/09/2026<br>")
	assert.Contains(t, out, "See smartsheet for specifications of achievement levels.")
	assert.NotContains(t, out, "SCREENSHOTS")
}

func TestSimTemplatesDescribeHARReason(t *testing.T) {
	for _, name := range []string{"sim-assessment-reports", "sim-fsa", "sim-orr", "sim-plan-teach", "sim-reading-log"} {
		t.Run(name, func(t *testing.T) {
			tr := mountTemplate(t, name)
			fixedDemo().Fill(tr.Form)
			tr.Form.Write("harFileAttached", "No")
			tr.Form.Write("harFileReason", "User declined")

			out, err := tr.Template.GenerateDescription(tr.Values())
			require.NoError(t, err)
			assert.Contains(t, out, "HAR File Attached: No (User declined)<br>")
			assert.Contains(t, out, "Date Reported: 03/09/2026<br>")
			assert.Contains(t, out, `target="_blank"`)
		})
	}
}

func TestPlanTeachExpectedResultsFallback(t *testing.T) {
	tr := mountTemplate(t, "sim-plan-teach")
	tr.Form.Write("expectedResults", "<p><br></p>")
	out, err := tr.Template.GenerateDescription(tr.Values())
	require.NoError(t, err)
	assert.Contains(t, out, "<div>No expected results provided.</div>")
}
