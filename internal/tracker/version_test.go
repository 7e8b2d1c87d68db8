package tracker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func versionForm() *Form {
	return NewForm(&TemplateConfig{Sections: []SectionDescriptor{{Fields: []FieldDescriptor{
		{ID: "version", Type: FieldSelect, Options: []Option{{ID: "2.75", Label: "2.75"}, {ID: OtherValue, Label: OtherValue}}},
		{ID: "versionState", Type: FieldSelect},
		{ID: "notes", Type: FieldText},
	}}}})
}

func TestVersionHandlerRoundTrip(t *testing.T) {
	form := versionForm()
	h := AttachVersionHandler(form, "version")
	require.NotNil(t, h)
	input := CustomInputID("version")

	form.Set("version", OtherValue)
	assert.Equal(t, VersionCustom, h.State())
	assert.Equal(t, []string{"version", input, "versionState", "notes"}, form.IDs())
	assert.Equal(t, OtherValue, VersionValue(form, "version"))

	require.NoError(t, form.Input(input, "3.1 Custom"))
	stored, ok := form.Attr("version", AttrCustomValue)
	assert.True(t, ok)
	assert.Equal(t, "3.1 Custom", stored)
	assert.Equal(t, "3.1 Custom", VersionValue(form, "version"))

	form.Set("version", "2.75")
	assert.Equal(t, VersionNormal, h.State())
	assert.False(t, form.Has(input))
	assert.Equal(t, "2.75", VersionValue(form, "version"))

	form.Set("version", OtherValue)
	assert.True(t, form.Has(input))
	assert.Equal(t, "3.1 Custom", form.Value(input))
	assert.Equal(t, "3.1 Custom", VersionValue(form, "version"))
}

func TestVersionStateMirrorDispatchesInputAndChange(t *testing.T) {
	form := versionForm()
	AttachVersionHandler(form, "versionState")
	var events []EventType
	form.Listen("versionState", EventChange, func(e Event) { events = append(events, e.Type) })
	form.Listen("versionState", EventInput, func(e Event) { events = append(events, e.Type) })

	form.Set("versionState", OtherValue)
	events = nil
	require.NoError(t, form.Input(CustomInputID("versionState"), "Ohio"))
	assert.Equal(t, []EventType{EventChange, EventInput}, events)
	assert.Equal(t, "Ohio", VersionValue(form, "versionState"))
}

func TestVersionHandlerDetach(t *testing.T) {
	form := versionForm()
	handlers := AttachVersionHandlers(form)
	require.Len(t, handlers, 2)

	form.Set("version", OtherValue)
	for _, h := range handlers {
		h.Detach()
	}
	assert.False(t, form.Has(CustomInputID("version")))
	assert.Equal(t, 0, form.ListenerCount())

	assert.Nil(t, AttachVersionHandler(form, "notes"))
}
