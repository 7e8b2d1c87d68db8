package tracker

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mountTemplate(t *testing.T, name string) *Tracker {
	t.Helper()
	reg, err := LoadRegistry()
	require.NoError(t, err)
	tmpl, err := reg.Get(name)
	require.NoError(t, err)
	tr := Mount(tmpl)
	t.Cleanup(tr.Close)
	return tr
}

func TestAssemblyRolloverSubject(t *testing.T) {
	tr := mountTemplate(t, "assembly-rollover")

	tr.Form.Set("districtName", "Maple School District")
	tr.Form.Set("districtState", "CA")
	tr.Form.Set("isVIP", "No")
	assert.Equal(t, "Maple School District • CA | Assembly Rollover", tr.Form.Value(FieldFormattedSubject))

	tr.Form.Set("isVIP", "Yes")
	tr.Form.Set("districtName", "Fairfax County")
	tr.Form.Set("districtState", "VA")
	assert.Equal(t, "VIP | Fairfax County • VA | Assembly Rollover", tr.Form.Value(FieldFormattedSubject))
}

func TestAssemblyRolloverValidateFields(t *testing.T) {
	tr := mountTemplate(t, "assembly-rollover")

	res := tr.Base.ValidateFields()
	assert.False(t, res.IsValid)
	assert.Equal(t, []FieldError{
		{Field: "districtName", Message: "districtName is required"},
		{Field: "districtState", Message: "districtState is required"},
	}, res.Errors)

	tr.Form.Set("districtName", "   ")
	assert.Len(t, tr.Base.ValidateFields().Errors, 2)

	tr.Form.Set("districtName", "Benchmark Education Company")
	res = tr.Base.ValidateFields()
	assert.True(t, res.IsValid)
	assert.Empty(t, res.Errors)
}

func TestValidateFieldsCheckboxGroup(t *testing.T) {
	tmpl := testTemplate()
	tmpl.Subject.RequiredFields = []string{"userRole", "notes"}
	b := NewTemplateBase(tmpl, NewForm(tmpl))
	b.Initialize()
	defer b.Cleanup()

	res := b.ValidateFields()
	assert.Equal(t, []FieldError{{Field: "userRole", Message: "userRole is required"}}, res.Errors)
}

func TestTemplateBaseFieldValues(t *testing.T) {
	tmpl := testTemplate()
	tmpl.Subject.CheckboxGroups = []string{"userRole"}
	form := NewForm(tmpl)
	b := NewTemplateBase(tmpl, form)
	b.Initialize()
	defer b.Cleanup()

	form.SetChecked("userRole", []string{"teachers", "allUsers"})
	assert.Equal(t, []string{"Teachers", "All Users"}, b.FieldValue("userRole"))
	assert.Equal(t, "", b.FieldValue("version"))

	b.SetFieldValue("districtName", "Maple")
	assert.Equal(t, "Maple", b.Text("districtName"))

	// Only collected fields are writable through the controller.
	b.SetFieldValue("notes", "changed")
	assert.Equal(t, "n/a", form.Value("notes"))

	b.SetFieldValue("userRole", "students")
	assert.Equal(t, []string{"Students"}, b.List("userRole"))
}

func TestTemplateBaseUpdatesOnReady(t *testing.T) {
	tr := mountTemplate(t, "timeout-extension")
	assert.Equal(t, "Timeout Extension", tr.Form.Value(FieldFormattedSubject))

	// A populator writing silently is picked up when the form turns ready.
	tr.Form.Write("districtName", "Maple")
	tr.Form.MarkReady()
	assert.Eventually(t, func() bool {
		return tr.Form.Value(FieldFormattedSubject) == "Standard Maple | Timeout Extension"
	}, time.Second, 5*time.Millisecond)
}

func TestTemplateBaseCleanupDetachesListeners(t *testing.T) {
	tr := mountTemplate(t, "assembly-rollover")
	before := tr.Form.ListenerCount()
	require.NotZero(t, before)

	tr.Base.Cleanup()
	tr.Form.Set("districtName", "Maple")
	assert.Equal(t, "Assembly Rollover", tr.Form.Value(FieldFormattedSubject))
	tr.Base.Cleanup()
}

func TestCustomVersionFlowsIntoSubject(t *testing.T) {
	tr := mountTemplate(t, "assembly")
	tr.Form.Set("xcode", "X1")
	tr.Form.Set("application", "Advance")
	tr.Form.Set("version", OtherValue)
	assert.Equal(t, "X1 | Standard | Advance • Other", tr.Form.Value(FieldFormattedSubject))

	require.NoError(t, tr.Form.Input(CustomInputID("version"), "4.1 Beta"))
	assert.Equal(t, "X1 | Standard | Advance • 4.1 Beta", tr.Form.Value(FieldFormattedSubject))
	assert.Equal(t, "4.1 Beta", tr.Values()["version"])
}
