package tracker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVIPPrefix(t *testing.T) {
	assert.Equal(t, "", VIPPrefix(false, VIPStyleStar))
	assert.Equal(t, "VIP *", VIPPrefix(true, VIPStyleStar))
	assert.Equal(t, "VIP", VIPPrefix(true, VIPStylePrefix))
	assert.Equal(t, "VIP", VIPPrefix(true, VIPStyleWord))
	assert.Equal(t, "VIP", VIPPrefix(true, "standard"))
}

func TestFragmentBuilders(t *testing.T) {
	assert.Equal(t, "Maple • CA", DistrictInfo("Maple", "CA", false, VIPStyleStar))
	assert.Equal(t, "VIP * CA", DistrictInfo("", "CA", true, VIPStyleStar))
	assert.Equal(t, "Maple", DistrictInfo("Maple", "", true, VIPStylePrefix))
	assert.Equal(t, "", DistrictInfo(" ", "", true, VIPStyleStar))

	assert.Equal(t, "Advance • 2.75", ProgramInfo(" Advance ", " 2.75", ""))
	assert.Equal(t, "Advance • 2.75 Texas", ProgramInfo("Advance", "2.75", "Texas"))
	assert.Equal(t, "", ProgramInfo("", "2.75", "Texas"))

	assert.Equal(t, "Reports • Blank page for Teachers & Admin", ResourceIssue("Reports", "Blank page", []string{"Teachers", "Admin"}))
	assert.Equal(t, "", ResourceIssue("", "", []string{"Teachers"}))

	tests := []struct {
		resource, path, issue, want string
	}{
		{"Book", "G3", "Typo", "Book: G3 - Typo"},
		{"Book", "G3", "", "Book: G3"},
		{"Book", "", "Typo", "Book - Typo"},
		{"", "G3", "Typo", "G3 - Typo"},
		{"Book", "", "", "Book"},
		{"", "G3", "", "G3"},
		{"", "", "Typo", "Typo"},
		{"", "", "", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, PathBasedResource(tt.resource, tt.path, tt.issue))
	}

	assert.Equal(t, "a | b", JoinParts([]string{"a", " ", "", "b"}, ""))
	assert.Equal(t, "a - b", JoinParts([]string{"a", "b"}, " - "))
}

func TestValidate(t *testing.T) {
	res := Validate("short", Requirements{MinLength: 10, RequiredParts: []string{"Xcode"}, Separator: " | "})
	assert.False(t, res.IsValid)
	assert.Equal(t, []string{
		"Subject line must be at least 10 characters",
		`Subject line must contain "Xcode"`,
		`Subject line must use " | " as separator`,
	}, res.Errors)

	res = Validate(strings.Repeat("x", 151), Requirements{MaxLength: 150})
	assert.Equal(t, []string{"Subject line must not exceed 150 characters"}, res.Errors)

	// Lengths count characters, so bullets do not inflate the count.
	assert.True(t, Validate("a • b", Requirements{MaxLength: 5}).IsValid)
	assert.True(t, Validate("", Requirements{}).IsValid)
}

func TestApplyTemplateRules(t *testing.T) {
	res := ApplyTemplateRules("X1 | VIP | Advance", "sedcust")
	assert.False(t, res.IsValid)
	assert.Equal(t, []string{`Subject line must contain "Xcode"`}, res.Errors)

	assert.True(t, ApplyTemplateRules("Maple • CA | Assembly Rollover", "assembly-rollover").IsValid)
	assert.False(t, ApplyTemplateRules("Assembly Rollover", "assembly-rollover").IsValid)
	assert.True(t, ApplyTemplateRules("anything", "help-article").IsValid)
	assert.Equal(t, 200, TemplateRules("sim-assignment").MaxLength)
}
