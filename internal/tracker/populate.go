package tracker

import (
	"context"
	"log"
	"regexp"
	"strings"

	"github.com/psds-microservice/tracker-service/internal/model"
)

const (
	brandPrefix        = "Benchmark "
	notProductSpecific = "Not Product Specific"
	supplemental       = "Supplemental"
)

// Имена заполнителей, как они записаны в шаблонах.
const (
	PopulateApplication = "applicationName"
	PopulateState       = "districtState"
	PopulateDistrict    = "districtName"
	PopulateVIP         = "vipStatus"
)

var (
	copyrightOnly    = regexp.MustCompile(`^-?\s*c\d{4}$`)
	copyrightPattern = regexp.MustCompile(`(?i)c\d{4}|-\s*c\d{4}`)
	pilotPattern     = regexp.MustCompile(`(?i)Pilots?`)
	stateCodeSuffix  = regexp.MustCompile(`\b([A-Z]{2})$`)
	stateName        = regexp.MustCompile(`(?i)\b(Alabama|Alaska|Arizona|Arkansas|California|Colorado|Connecticut|Delaware|Florida|Georgia|Hawaii|Idaho|Illinois|Indiana|Iowa|Kansas|Kentucky|Louisiana|Maine|Maryland|Massachusetts|Michigan|Minnesota|Mississippi|Missouri|Montana|Nebraska|Nevada|New Hampshire|New Jersey|New Mexico|New York|North Carolina|North Dakota|Ohio|Oklahoma|Oregon|Pennsylvania|Rhode Island|South Carolina|South Dakota|Tennessee|Texas|Utah|Vermont|Virginia|Washington|West Virginia|Wisconsin|Wyoming)\b`)
)

// fixedNames: типы продуктов, у которых название программы не зависит от продукта.
var fixedNames = map[string]string{
	"Assess 360":         "Assess 360",
	"Benchmark Workshop": "Workshop",
	"Benchmark Taller":   "Taller",
	"Ready To Advance":   "Ready To Advance",
	"Plan & Teach":       "Plan & Teach",
}

// CompanyLookup загружает данные компании (getCompanyDetails).
type CompanyLookup interface {
	Company(ctx context.Context, id int64) (*model.Company, error)
}

func blank(s string) bool {
	s = strings.TrimSpace(s)
	return s == "" || s == "null"
}

// ApplicationName выводит название программы из полей продукта исходного тикета.
func ApplicationName(productType, product, subsection string) string {
	if blank(product) || product == notProductSpecific {
		if blank(product) && blank(subsection) && !blank(productType) &&
			productType != supplemental && productType != notProductSpecific {
			return strings.TrimPrefix(productType, brandPrefix)
		}
		return ""
	}
	p := strings.TrimPrefix(product, brandPrefix)
	if copyrightOnly.MatchString(p) {
		return strings.TrimPrefix(productType+" "+p, brandPrefix)
	}
	if productType == supplemental {
		if !blank(subsection) {
			return subsection
		}
		return p
	}
	if name, ok := fixedNames[productType]; ok {
		return name
	}
	return p
}

// PopulateApplicationName заполняет пустое поле application и посылает input.
func PopulateApplicationName(form *Form, tc *model.TicketContext) {
	if tc == nil {
		log.Printf("tracker: application name: no ticket context")
		return
	}
	if !form.Has("application") {
		log.Printf("tracker: application name: field not found")
		return
	}
	if form.Value("application") != "" {
		return
	}
	name := ApplicationName(tc.ProductType, tc.Product, tc.ProductSubsection)
	if name == "" {
		return
	}
	form.Write("application", name)
	form.Dispatch("application", EventInput)
}

// StateFromDistrictName достаёт двухбуквенный код в конце или полное название штата.
func StateFromDistrictName(name string) string {
	name = strings.TrimSpace(name)
	if m := stateCodeSuffix.FindStringSubmatch(name); m != nil {
		return m[1]
	}
	if m := stateName.FindStringSubmatch(name); m != nil {
		return m[1]
	}
	return ""
}

func writeIfEmpty(form *Form, id, value string) bool {
	if value == "" || !form.Has(id) || form.Value(id) != "" {
		return false
	}
	form.Write(id, value)
	form.Dispatch(id, EventInput)
	return true
}

// PopulateDistrictState заполняет пустой districtState по компании исходного
// тикета, затем по названию округа, затем из контекста тикета.
// Загруженная компания возвращается для заполнения districtName.
func PopulateDistrictState(ctx context.Context, form *Form, tc *model.TicketContext, companies CompanyLookup) *model.Company {
	if tc == nil {
		log.Printf("tracker: district state: no ticket context")
		return nil
	}
	if !form.Has("districtState") {
		log.Printf("tracker: district state: field not found")
		return nil
	}
	if form.Value("districtState") != "" {
		return nil
	}
	if tc.CompanyID == 0 || companies == nil {
		writeIfEmpty(form, "districtState", tc.DistrictState)
		return nil
	}
	company, err := companies.Company(ctx, tc.CompanyID)
	if err != nil {
		log.Printf("tracker: district state: fetch company %d: %v", tc.CompanyID, err)
		return nil
	}
	if writeIfEmpty(form, "districtState", company.State()) {
		return company
	}
	district := form.Value("districtName")
	if strings.TrimSpace(district) == "" {
		district = company.Name
	}
	writeIfEmpty(form, "districtState", StateFromDistrictName(district))
	return company
}

// PopulateDistrictName пишет название компании в пустой districtName.
func PopulateDistrictName(form *Form, tc *model.TicketContext, company *model.Company) {
	name := ""
	if company != nil {
		name = company.Name
	} else if tc != nil {
		name = tc.CompanyName
	}
	writeIfEmpty(form, "districtName", strings.TrimSpace(name))
}

// PopulateVIPStatus всегда переписывает isVIP из контекста тикета и посылает change.
func PopulateVIPStatus(form *Form, tc *model.TicketContext) {
	if tc == nil {
		log.Printf("tracker: vip status: no ticket context")
		return
	}
	if !form.Has("isVIP") {
		log.Printf("tracker: vip status: field not found")
		return
	}
	v := "No"
	if tc.IsVIP {
		v = yes
	}
	form.Write("isVIP", v)
	form.Dispatch("isVIP", EventChange)
}

// RunPopulators запускает заполнители шаблона по порядку и отмечает форму готовой.
func RunPopulators(ctx context.Context, t *TemplateConfig, form *Form, tc *model.TicketContext, companies CompanyLookup) {
	defer form.MarkReady()
	var company *model.Company
	for _, name := range t.Populators {
		if ctx.Err() != nil {
			return
		}
		switch name {
		case PopulateApplication:
			PopulateApplicationName(form, tc)
		case PopulateState:
			company = PopulateDistrictState(ctx, form, tc, companies)
		case PopulateDistrict:
			PopulateDistrictName(form, tc, company)
		case PopulateVIP:
			PopulateVIPStatus(form, tc)
		default:
			log.Printf("tracker: %s: unknown populator %q", t.Name, name)
		}
	}
}

// JiraFields выводит cf_jira_copyright и cf_jira_product_name из исходного тикета.
func JiraFields(src *model.Ticket) map[string]string {
	out := map[string]string{"cf_jira_copyright": "", "cf_jira_product_name": ""}
	if src == nil || src.CustomFields == nil {
		log.Printf("tracker: jira fields: source ticket not available")
		return out
	}
	productType := src.CustomString("cf_product_type")
	product := src.CustomString("cf_product")
	subsection := src.CustomString("cf_product_subsection")

	switch {
	case productType != "" && productType != supplemental && product != "":
		if m := copyrightPattern.FindString(product); m != "" {
			out["cf_jira_copyright"] = m
			out["cf_jira_product_name"] = productType
		} else if pilotPattern.MatchString(product) {
			out["cf_jira_product_name"] = productType
		} else {
			out["cf_jira_product_name"] = product
		}
	case productType == supplemental:
		if !blank(subsection) {
			out["cf_jira_product_name"] = subsection
		} else {
			out["cf_jira_product_name"] = product
		}
	}
	return out
}

// SedcustFields: значения формы SEDCUST в их Jira custom fields.
func SedcustFields(v FieldValues) map[string]string {
	out := make(map[string]string)
	if s := strings.TrimSpace(v.Text("districtState")); s != "" {
		out["cf_jira_locale"] = s
	}
	if s := v.Text("impactType"); s == "Digital" || s == "Print" {
		out["cf_jira_print_digital"] = s
	}
	if s := strings.TrimSpace(v.Text("version")); s != "" && s != OtherValue && strings.ContainsAny(s, "0123456789") {
		out["cf_jira_version"] = s
	}
	if s := strings.TrimSpace(v.Text("resource")); s != "" {
		out["cf_sedcust_jira_resource"] = s
	}
	if s := strings.TrimSpace(v.Text("versionState")); s != "" && s != OtherValue {
		out["cf_jira_state_district_variation"] = s
	}
	return out
}
