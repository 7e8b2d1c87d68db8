package tracker

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReportName(t *testing.T) {
	tests := map[string]string{
		"ORR: Reading History":          "Reading History",
		"Reports: Standards Performance": "Standards Performance",
		"Reports:":                       "",
		"Reports: ":                      "",
		"FSA: Overview":                  "",
		"Dashboard":                      "",
	}
	for in, want := range tests {
		assert.Equal(t, want, ReportName(in), in)
	}
}

func TestReportNameSync(t *testing.T) {
	tr := mountTemplate(t, "sim-assessment-reports")
	a := assert.New(t)
	a.NotNil(tr.Reports)

	a.NoError(tr.Form.Input("resource", "Reports: Test Scores"))
	a.Equal("Test Scores", tr.Form.Value("reportName"))

	a.NoError(tr.Form.Input("reportName", "Custom Name"))
	a.NoError(tr.Form.Input("resource", "Dashboard"))
	a.Equal("Custom Name", tr.Form.Value("reportName"))

	before := tr.Form.ListenerCount()
	tr.Reports.Detach()
	a.Equal(before-1, tr.Form.ListenerCount())
	a.NoError(tr.Form.Input("resource", "ORR: Error Analysis"))
	a.Equal("Custom Name", tr.Form.Value("reportName"))
}

func TestReportNameSyncNeedsBothFields(t *testing.T) {
	tr := mountTemplate(t, "sim-orr")
	assert.Nil(t, tr.Reports)
}
