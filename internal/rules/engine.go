package rules

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"veridoc/internal/domain"
	"veridoc/internal/mrz"
	"veridoc/pkg/requestcontext"
)

// DateWindow bounds the plausibility checks of the date rule.
type DateWindow struct {
	// MaxExpiryYears is how far in the future an expiry date may lie.
	MaxExpiryYears int
	// MaxAgeYears is the oldest believable holder age.
	MaxAgeYears int
}

// Engine evaluates the fixed, ordered set of TD3 passport rules. It holds
// no mutable state, so one Engine serves concurrent analyses.
type Engine struct {
	window DateWindow
}

func NewEngine(window DateWindow) *Engine {
	return &Engine{window: window}
}

// evalInput is the shared, read-only view each rule evaluates against.
type evalInput struct {
	fields    []domain.ExtractedField
	parsed    *mrz.ParsedMRZ
	formatErr error
	now       time.Time
	window    DateWindow
}

// ruleSpec pairs a rule's identity with its evaluator. The evaluator
// returns skipped=true when the rule cannot apply at all (optional field
// absent); skipped rules reduce rules_total instead of failing.
type ruleSpec struct {
	id   string
	name string
	eval func(in *evalInput) (result RuleResult, skipped bool)
}

// ruleSet returns the ten rules in their fixed evaluation order. The order
// is significant for reproducible reports, not for correctness: no rule
// depends on another's outcome.
func ruleSet() []ruleSpec {
	return []ruleSpec{
		{"MRZ_FORMAT", "MRZ Format Validation", ruleMRZFormat},
		{"DOC_NUM_CHECK", "Document Number Check Digit", checkDigitRule(domain.SeverityCritical, (*mrz.ParsedMRZ).VerifyDocumentNumber)},
		{"DOB_CHECK", "Date of Birth Check Digit", checkDigitRule(domain.SeverityCritical, (*mrz.ParsedMRZ).VerifyDateOfBirth)},
		{"DOE_CHECK", "Date of Expiry Check Digit", checkDigitRule(domain.SeverityCritical, (*mrz.ParsedMRZ).VerifyDateOfExpiry)},
		{"PN_CHECK", "Personal Number Check Digit", rulePersonalNumber},
		{"COMPOSITE_CHECK", "Composite Check Digit", checkDigitRule(domain.SeverityCritical, (*mrz.ParsedMRZ).VerifyComposite)},
		{"COUNTRY_CODE", "Country Code Validation", ruleCountryCode},
		{"DATE_PLAUSIBILITY", "Date Plausibility", ruleDatePlausibility},
		{"REQUIRED_FIELDS", "Required Field Presence", ruleRequiredFields},
		{"CROSS_CHECK", "VIZ/MRZ Cross-Check", ruleCrossCheck},
	}
}

// Apply runs every rule against the extracted fields and assembles the
// report. Rules are independent and evaluated in parallel; the report is
// only built after all of them complete, so a partial report is never
// observable. The analysis clock is requestcontext.Now(ctx).
func (e *Engine) Apply(ctx context.Context, fields []domain.ExtractedField) *Report {
	in := &evalInput{
		fields: fields,
		now:    requestcontext.Now(ctx),
		window: e.window,
	}

	line1, line2 := mrzLine(fields, domain.FieldMRZLine1), mrzLine(fields, domain.FieldMRZLine2)
	switch {
	case line1 == "":
		in.formatErr = &mrz.FormatError{Line: 1, Reason: "line not found"}
	case line2 == "":
		in.formatErr = &mrz.FormatError{Line: 2, Reason: "line not found"}
	default:
		in.parsed, in.formatErr = mrz.ParseTD3(line1, line2)
	}

	specs := ruleSet()
	type outcome struct {
		result  RuleResult
		skipped bool
	}
	outcomes := make([]outcome, len(specs))

	g, _ := errgroup.WithContext(ctx)
	for i, spec := range specs {
		g.Go(func() error {
			res, skipped := spec.eval(in)
			res.RuleID = spec.id
			res.RuleName = spec.name
			outcomes[i] = outcome{result: res, skipped: skipped}
			return nil
		})
	}
	// Evaluators never return errors; Wait is the join barrier.
	_ = g.Wait()

	results := make([]RuleResult, 0, len(outcomes))
	for _, o := range outcomes {
		if !o.skipped {
			results = append(results, o.result)
		}
	}
	return buildReport(results)
}

// ---------------------------------------------------------------------------
// Rule evaluators
// ---------------------------------------------------------------------------

func ruleMRZFormat(in *evalInput) (RuleResult, bool) {
	if in.formatErr != nil {
		return fail(domain.SeverityCritical, in.formatErr.Error()), false
	}
	return pass(domain.SeverityCritical, "two 44-character TD3 lines"), false
}

// checkDigitRule builds an evaluator for one embedded check digit. An
// unparsable MRZ is itself strong fraud evidence, so these rules fail with
// a cannot-validate detail instead of being skipped.
func checkDigitRule(sev domain.Severity, verify func(*mrz.ParsedMRZ) mrz.CheckResult) func(*evalInput) (RuleResult, bool) {
	return func(in *evalInput) (RuleResult, bool) {
		if in.parsed == nil {
			return fail(sev, cannotValidate(in)), false
		}
		res := verify(in.parsed)
		if !res.OK() {
			return fail(sev, fmt.Sprintf("expected %d, got %s", res.Expected, claimedDigit(res.Claimed))), false
		}
		return pass(sev, fmt.Sprintf("check digit %d", res.Expected)), false
	}
}

func rulePersonalNumber(in *evalInput) (RuleResult, bool) {
	if in.parsed == nil || in.parsed.PersonalNumberEmpty() {
		// Optional field: absent means the rule does not apply, and an
		// unparsable MRZ leaves its presence unknowable.
		return RuleResult{}, true
	}
	res := in.parsed.VerifyPersonalNumber()
	if !res.OK() {
		return fail(domain.SeverityHigh, fmt.Sprintf("expected %d, got %s", res.Expected, claimedDigit(res.Claimed))), false
	}
	return pass(domain.SeverityHigh, fmt.Sprintf("check digit %d", res.Expected)), false
}

func ruleCountryCode(in *evalInput) (RuleResult, bool) {
	if in.parsed == nil {
		return RuleResult{}, true
	}
	var bad []string
	if c := in.parsed.IssuingState; c != "" && !mrz.ValidCountryCode(c) {
		bad = append(bad, fmt.Sprintf("issuing state %q", c))
	}
	if c := in.parsed.Nationality; c != "" && !mrz.ValidCountryCode(c) {
		bad = append(bad, fmt.Sprintf("nationality %q", c))
	}
	if len(bad) > 0 {
		return fail(domain.SeverityHigh, "unknown country code: "+strings.Join(bad, ", ")), false
	}
	return pass(domain.SeverityHigh, ""), false
}

func ruleDatePlausibility(in *evalInput) (RuleResult, bool) {
	if in.parsed == nil {
		return RuleResult{}, true
	}

	sev := domain.SeverityLow
	var problems []string
	flag := func(s domain.Severity, msg string) {
		sev = domain.MaxSeverity(sev, s)
		problems = append(problems, msg)
	}

	dob, dobOK := mrz.ParseDate(in.parsed.DateOfBirth)
	if !dobOK {
		flag(domain.SeverityCritical, "date of birth is not a valid date")
	} else {
		if !dob.Before(in.now) {
			flag(domain.SeverityCritical, fmt.Sprintf("date of birth %s is not in the past", dob.Format("2006-01-02")))
		} else if dob.Before(in.now.AddDate(-in.window.MaxAgeYears, 0, 0)) {
			flag(domain.SeverityHigh, fmt.Sprintf("holder would be over %d years old", in.window.MaxAgeYears))
		}
	}

	doe, doeOK := mrz.ParseDate(in.parsed.DateOfExpiry)
	if !doeOK {
		flag(domain.SeverityHigh, "date of expiry is not a valid date")
	} else {
		if !doe.After(in.now) {
			flag(domain.SeverityHigh, fmt.Sprintf("document expired %s", doe.Format("2006-01-02")))
		} else if doe.After(in.now.AddDate(in.window.MaxExpiryYears, 0, 0)) {
			flag(domain.SeverityHigh, fmt.Sprintf("expiry %s is more than %d years out", doe.Format("2006-01-02"), in.window.MaxExpiryYears))
		}
	}

	if dobOK && doeOK && !dob.Before(doe) {
		flag(domain.SeverityCritical, "date of birth is not before date of expiry")
	}

	if len(problems) > 0 {
		return fail(sev, strings.Join(problems, "; ")), false
	}
	return pass(domain.SeverityCritical, ""), false
}

func ruleRequiredFields(in *evalInput) (RuleResult, bool) {
	var missing []string

	if in.parsed != nil {
		if in.parsed.DocumentNumber == "" {
			missing = append(missing, domain.FieldDocumentNumber)
		}
		if in.parsed.Nationality == "" {
			missing = append(missing, domain.FieldNationality)
		}
		if strings.Trim(in.parsed.DateOfBirth, "<") == "" {
			missing = append(missing, domain.FieldDateOfBirth)
		}
		if strings.Trim(in.parsed.DateOfExpiry, "<") == "" {
			missing = append(missing, domain.FieldDateOfExpiry)
		}
	} else {
		// No parsed MRZ to inspect; fall back to the extracted fields.
		for _, name := range []string{
			domain.FieldMRZLine1, domain.FieldMRZLine2,
			domain.FieldDocumentNumber, domain.FieldDateOfBirth,
		} {
			if _, ok := anyValue(in.fields, name); !ok {
				missing = append(missing, name)
			}
		}
	}

	if len(missing) > 0 {
		return fail(domain.SeverityHigh, "required field missing: "+strings.Join(missing, ", ")), false
	}
	return pass(domain.SeverityHigh, ""), false
}

func ruleCrossCheck(in *evalInput) (RuleResult, bool) {
	if in.parsed == nil {
		return fail(domain.SeverityCritical, cannotValidate(in)), false
	}
	mismatches := crossCheck(in.fields, in.parsed)
	if len(mismatches) > 0 {
		details := make([]string, len(mismatches))
		for i, m := range mismatches {
			details[i] = m.String()
		}
		return fail(domain.SeverityCritical, strings.Join(details, "; ")), false
	}
	return pass(domain.SeverityCritical, ""), false
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func pass(sev domain.Severity, detail string) RuleResult {
	return RuleResult{Passed: true, Severity: sev, Detail: detail}
}

func fail(sev domain.Severity, detail string) RuleResult {
	return RuleResult{Passed: false, Severity: sev, Detail: detail}
}

func cannotValidate(in *evalInput) string {
	return "cannot validate: " + in.formatErr.Error()
}

func claimedDigit(claimed int) string {
	if claimed < 0 {
		return "filler"
	}
	return fmt.Sprintf("%d", claimed)
}

// mrzLine finds an MRZ line field, preferring the MRZ source zone but
// accepting any zone so extraction engines that do not tag zones still
// work.
func mrzLine(fields []domain.ExtractedField, name string) string {
	fallback := ""
	for _, f := range fields {
		if f.Name != name || strings.TrimSpace(f.Value) == "" {
			continue
		}
		if f.SourceZone == domain.ZoneMRZ {
			return f.Value
		}
		if fallback == "" {
			fallback = f.Value
		}
	}
	return fallback
}

func anyValue(fields []domain.ExtractedField, name string) (string, bool) {
	for _, f := range fields {
		if f.Name == name && strings.TrimSpace(f.Value) != "" {
			return f.Value, true
		}
	}
	return "", false
}
