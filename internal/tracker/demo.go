package tracker

import (
	"log"
	"time"
)

const loadingOption = "-- Loading from settings --"

var demoValues = map[string]string{
	"districtName":      "Fairfax County Public Schools",
	"districtState":     "VA",
	"application":       "Advance -c2022",
	"username":          "jsmith123",
	"userEmail":         "jane.smith@fairfaxschools.org",
	"email":             "jane.smith@fairfaxschools.org",
	"name":              "Jane Smith",
	"role":              "Teacher",
	"realm":             "msemail",
	"schoolName":        "Thomas Jefferson Elementary",
	"xcode":             "X98765",
	"resource":          "ORR: Reading History",
	"resourceName":      "Bookshelves",
	"specificIssue":     "Student's Status Not Updating",
	"shortDescription":  "Option to Select Whole Class to Share Bookshelves",
	"path":              "G3>U5>W1>L15",
	"pathField":         "Advance -c2022 > TRS: G3>U5>W1>L15",
	"gradesImpacted":    "Grade 3",
	"device":            "Chromebook",
	"studentInternalId": "12345678",
	"BURCLink":          "https://onboarding-production.benchmarkuniverse.com/85066/dashboard",
	"assignmentId":      "https://msemail.benchmarkuniverse.com/?#assignments/11569615",
	"harFileReason":     "Not applicable for this test scenario",
	"isVIP":             "No",
	"version":           "2.75",
	"versionState":      "Virginia",
	"harFileAttached":   "Yes",
	"hasMultipleXcodes": "No",
	"impactScope":       "Both Teacher and Student",
	"impactType":        "Digital Only",
	"userType":          "Digital Only",
	"programImpacted":   "Reading",
	"helpArticleName":   "How to Use Oral Reading Records",
	"issue":             "Session Timeout Extension Request",
	"timeoutLength":     "8 Hours",
	"resourceXcode":     "X14569",
	"resourceTitle":     "Unit 5 Assessment (Gr. 2)",
	"assemblyCode":      "X12345, X56789",

	"issueDetails":      "<p>A student's status will not update even though they have submitted the ORR. The reading history shows incomplete status despite the student completing the oral reading exercise.</p>",
	"stepsToReproduce":  "<p>1. Teacher dashboard<br>2. ORR<br>3. Click on student Jane Doe<br>4. Select Passage<br>5. Submit ORR<br>6. Status remains incomplete</p>",
	"expectedResults":   "<p>After submitting the ORR, the student's status should update from incomplete to complete in the reading history.</p>",
	"actualResults":     "<p>The assessment page shows a loading spinner indefinitely and never displays the actual assessment content.</p>",
	"additionalDetails": "<p>This would save significant time when setting up classroom resources.</p>",
	"summary":           "<p>Students cannot access Grade 3 Unit 5 assessment in TRS.</p>",
	"summaryContent":    "<p>Please see the BL Xcode removal request below.</p>",
	"issueSummary":      "<p>In Advance -c2022 TRS: G3 > U5 > W1 > Assessment, the assessment fails to load properly for students.</p>",
	"subscriptionCodes": "<p>BEC Benchmark Advance 2022 (National Edition) Gr. 3 Classroom Digital</p>",
}

// demoText: текстовые поля без готового значения сценария.
var demoText = map[string]string{
	"browser":          "Chrome",
	"teacherName":      "Demo Teacher",
	"className":        "Demo Class",
	"districtBURCLink": "https://onboarding-production.benchmarkuniverse.com/3138327/dashboard",
	"assemblyCodes":    "X12345\nX56789",
}

const (
	demoDefaultText     = "Demo Text Value"
	demoDefaultEmail    = "demo.user@testschool.edu"
	demoDefaultRichText = "<p>This is sample content for testing purposes. Please replace with actual issue details.</p>"
	demoRole            = "teachers"
)

// DemoDataHelper заполняет форму готовыми значениями для ручной проверки.
type DemoDataHelper struct {
	now func() time.Time
}

func NewDemoDataHelper() *DemoDataHelper {
	return &DemoDataHelper{now: time.Now}
}

func (h *DemoDataHelper) today() string {
	return h.now().Format("2006-01-02")
}

// DemoValue: готовое значение для поля.
func (h *DemoDataHelper) DemoValue(d FieldDescriptor) string {
	if v, ok := demoValues[d.ID]; ok {
		if d.Type != FieldSelect || hasOption(d.Options, v) {
			return v
		}
	}
	switch d.Type {
	case FieldText, FieldTextarea:
		if v, ok := demoText[d.ID]; ok {
			return v
		}
		return demoDefaultText
	case FieldEmail:
		return demoDefaultEmail
	case FieldDate:
		return h.today()
	case FieldSelect:
		for _, o := range d.Options {
			if o.ID != "" && o.ID != loadingOption {
				return o.ID
			}
		}
	case FieldRichText:
		return demoDefaultRichText
	}
	return ""
}

func hasOption(opts []Option, v string) bool {
	for _, o := range opts {
		if o.ID == v {
			return true
		}
	}
	return false
}

// Fill пишет демо-значения в видимые редактируемые поля формы и посылает
// соответствующие события. Возвращает число заполненных полей.
func (h *DemoDataHelper) Fill(form *Form) int {
	n := 0
	for _, id := range form.IDs() {
		d, ok := form.Descriptor(id)
		if !ok || d.Type == FieldHidden || d.ReadOnly {
			continue
		}
		if d.Type == FieldCheckboxes {
			if h.fillGroup(form, d) {
				n++
			}
			continue
		}
		if d.Type == FieldCheckbox {
			continue
		}
		v := h.DemoValue(d)
		if v == "" {
			continue
		}
		form.Set(id, v)
		n++
	}
	for _, id := range []string{"districtName", "districtState", "application", "version", "versionState"} {
		if form.Has(id) {
			form.Dispatch(id, EventInput)
			form.Dispatch(id, EventChange)
		}
	}
	log.Printf("tracker: demo data filled %d fields", n)
	return n
}

func (h *DemoDataHelper) fillGroup(form *Form, d FieldDescriptor) bool {
	if len(d.Options) == 0 {
		return false
	}
	pick := d.Options[0].ID
	if d.ID == "userRole" {
		if !hasOption(d.Options, demoRole) {
			log.Printf("tracker: demo data: %s checkbox not found for userRole", demoRole)
			return false
		}
		pick = demoRole
	}
	return form.SetChecked(d.ID, []string{pick})
}
