package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/psds-microservice/tracker-service/internal/tracker"
)

var (
	subjectTemplate string
	subjectFormat   string
	subjectValues   []string
)

var subjectCmd = &cobra.Command{
	Use:   "subject",
	Short: "Format a subject line from field values",
	Example: `  tracker-service subject --template sedcust --set xcode=X12345 --set application=Advance \
    --set resource="Student Book" --set path=G3>U5 --set specificIssue=Typo`,
	RunE: runSubject,
}

func init() {
	subjectCmd.Flags().StringVarP(&subjectTemplate, "template", "t", "", "template name")
	subjectCmd.Flags().StringVarP(&subjectFormat, "format", "f", "", "subject format when no template is given")
	subjectCmd.Flags().StringArrayVar(&subjectValues, "set", nil, "field value as id=value (lists comma-separated)")
}

func runSubject(cmd *cobra.Command, args []string) error {
	format := tracker.SubjectFormat(subjectFormat)
	rules := subjectFormat
	if subjectTemplate != "" {
		reg, err := tracker.LoadRegistry()
		if err != nil {
			return err
		}
		t, err := reg.Get(subjectTemplate)
		if err != nil {
			return err
		}
		format, rules = t.Subject.Format, t.Name
	}
	if !format.Valid() {
		return fmt.Errorf("%w %q", tracker.ErrUnknownFormat, format)
	}
	if format == "" {
		format = tracker.FormatDefault
	}

	values := tracker.MapValues{}
	for _, kv := range subjectValues {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || strings.TrimSpace(k) == "" {
			return fmt.Errorf("--set %q: expected id=value", kv)
		}
		values[strings.TrimSpace(k)] = v
	}

	subject := format.Format(values)
	fmt.Fprintln(cmd.OutOrStdout(), subject)
	res := tracker.ApplyTemplateRules(subject, rules)
	for _, e := range res.Errors {
		fmt.Fprintln(cmd.ErrOrStderr(), "warning:", e)
	}
	return nil
}
