package cmd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		subjectTemplate, subjectFormat, subjectValues = "", "", nil
	})
	err := rootCmd.Execute()
	return out.String(), errOut.String(), err
}

func TestTemplatesCommand(t *testing.T) {
	out, _, err := run(t, "templates")
	require.NoError(t, err)
	assert.Contains(t, out, "sedcust")
	assert.Contains(t, out, "Help Article Tracker")

	out, _, err = run(t, "templates", "help-article")
	require.NoError(t, err)
	assert.Contains(t, out, "helpArticleName")
	assert.Contains(t, out, "[ticket] TICKET")
}

func TestSubjectCommand(t *testing.T) {
	out, errOut, err := run(t, "subject", "--template", "help-article", "--set", "helpArticleName=Reading Groups")
	require.NoError(t, err)
	assert.Equal(t, "BU Help Article Update | Reading Groups\n", out)
	assert.Empty(t, errOut)

	_, errOut, err = run(t, "subject", "-f", "sedcust", "--set", "application=Advance")
	require.NoError(t, err)
	assert.Contains(t, errOut, "warning:")

	_, _, err = run(t, "subject", "--set", "novalue")
	assert.Error(t, err)
}
