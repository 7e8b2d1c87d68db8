package tracker

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/psds-microservice/tracker-service/internal/errs"
)

func TestLoadRegistry(t *testing.T) {
	reg, err := LoadRegistry()
	require.NoError(t, err)
	assert.Equal(t, []string{
		"assembly", "assembly-rollover", "dpt", "feature-request", "help-article",
		"sedcust", "sim-achievement-levels", "sim-assessment-reports", "sim-assignment",
		"sim-dashboard", "sim-fsa", "sim-orr", "sim-plan-teach", "sim-reading-log",
		"timeout-extension",
	}, reg.Names())

	for _, tmpl := range reg.List() {
		assert.True(t, tmpl.Subject.Format.Valid(), tmpl.Name)
		assert.NotEmpty(t, tmpl.Title, tmpl.Name)
		_, ok := tmpl.Field(FieldFormattedSubject)
		assert.True(t, ok, "%s has no formatted subject", tmpl.Name)
		_, ok = tmpl.Field("email")
		assert.True(t, ok, "%s has no ticket section", tmpl.Name)
	}

	sedcust, err := reg.Get("sedcust")
	require.NoError(t, err)
	assert.True(t, sedcust.JiraFields)

	_, err = reg.Get("nope")
	assert.ErrorIs(t, err, errs.ErrTemplateNotFound)
}

func TestNewRegistryErrors(t *testing.T) {
	tests := map[string]string{
		"unknown format": "name: x\nsubject:\n  format: bogus\n",
		"no name":        "title: x\n",
		"blank field id": "name: x\nsections:\n  - id: s\n    fields:\n      - type: text\n",
		"bad template":   "name: x\ndescriptionTemplate: \"{% if %}\"\n",
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			fsys := fstest.MapFS{"t/x.yaml": {Data: []byte(body)}}
			_, err := NewRegistry(fsys, "t/*.yaml")
			assert.Error(t, err)
		})
	}

	fsys := fstest.MapFS{
		"t/a.yaml": {Data: []byte("name: same\n")},
		"t/b.yaml": {Data: []byte("name: same\n")},
	}
	_, err := NewRegistry(fsys, "t/*.yaml")
	assert.ErrorContains(t, err, "duplicate")
}

func TestParseTemplateDefaults(t *testing.T) {
	tmpl, err := ParseTemplate([]byte("name: plain\ntitle: Plain\n"))
	require.NoError(t, err)
	assert.Equal(t, FormatDefault, tmpl.Subject.Format)
	assert.Equal(t, "ticket", tmpl.Sections[len(tmpl.Sections)-1].ID)
}
