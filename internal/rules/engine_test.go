package rules

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"veridoc/internal/domain"
	"veridoc/internal/mrz"
	"veridoc/pkg/requestcontext"
)

// Analysis clock pinned for every engine test.
var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func testCtx() context.Context {
	return requestcontext.WithTime(context.Background(), testNow)
}

func testEngine() *Engine {
	return NewEngine(DateWindow{MaxExpiryYears: 15, MaxAgeYears: 150})
}

// buildLine2 assembles a TD3 line 2 with internally consistent check
// digits. Check digit correctness itself is covered against the ICAO
// specimen in the mrz package.
func buildLine2(docNum, nat, dob, sex, doe, personal string) string {
	pad := func(s string, w int) string { return s + strings.Repeat("<", w-len(s)) }
	dn := pad(docNum, 9)
	pn := pad(personal, 14)
	line := fmt.Sprintf("%s%d%s%s%d%s%s%d%s%d",
		dn, mrz.CheckDigit(dn),
		pad(nat, 3),
		dob, mrz.CheckDigit(dob),
		sex,
		doe, mrz.CheckDigit(doe),
		pn, mrz.CheckDigit(pn),
	)
	return line + strconv.Itoa(mrz.CheckDigit(line[0:10]+line[13:20]+line[21:43]))
}

const validLine1 = "P<UTOERIKSSON<<ANNA<MARIA<<<<<<<<<<<<<<<<<<<"

func validLine2() string {
	return buildLine2("L898902C3", "UTO", "740812", "F", "310521", "ZE184226B")
}

func mrzFields(l1, l2 string) []domain.ExtractedField {
	return []domain.ExtractedField{
		{Name: domain.FieldMRZLine1, Value: l1, Confidence: 0.98, SourceZone: domain.ZoneMRZ},
		{Name: domain.FieldMRZLine2, Value: l2, Confidence: 0.97, SourceZone: domain.ZoneMRZ},
	}
}

func viz(name, value string) domain.ExtractedField {
	return domain.ExtractedField{Name: name, Value: value, Confidence: 0.95, SourceZone: domain.ZoneVisual}
}

func findResult(t *testing.T, report *Report, ruleID string) RuleResult {
	t.Helper()
	for _, res := range report.Results {
		if res.RuleID == ruleID {
			return res
		}
	}
	t.Fatalf("rule %s not in report", ruleID)
	return RuleResult{}
}

func TestApply_AuthenticDocumentPassesAllRules(t *testing.T) {
	fields := append(mrzFields(validLine1, validLine2()),
		viz(domain.FieldDocumentNumber, "L898902C3"),
		viz(domain.FieldPrimaryIdentifier, "Eriksson"),
		viz(domain.FieldDateOfBirth, "12.08.1974"),
		viz(domain.FieldSex, "F"),
	)

	report := testEngine().Apply(testCtx(), fields)

	assert.Equal(t, 10, report.RulesTotal)
	assert.Equal(t, 10, report.RulesPassed)
	assert.Empty(t, report.Violations)
	assert.Equal(t, domain.SeverityLow, report.RiskLevel)
	assert.Equal(t, Version, report.Version)
}

func TestApply_TamperedCheckDigit(t *testing.T) {
	l2 := validLine2()
	// Flip the document number check digit.
	orig := l2[9]
	flipped := byte('0')
	if orig == '0' {
		flipped = '1'
	}
	l2 = l2[:9] + string(flipped) + l2[10:]

	report := testEngine().Apply(testCtx(), mrzFields(validLine1, l2))

	docNum := findResult(t, report, "DOC_NUM_CHECK")
	assert.False(t, docNum.Passed)
	assert.Equal(t, domain.SeverityCritical, docNum.Severity)
	assert.Contains(t, docNum.Detail, "expected")

	// The flipped digit feeds the composite computation too.
	composite := findResult(t, report, "COMPOSITE_CHECK")
	assert.False(t, composite.Passed)

	assert.Equal(t, domain.SeverityCritical, report.RiskLevel)
}

func TestApply_MalformedMRZ(t *testing.T) {
	short := validLine2()[:40]
	fields := append(mrzFields(validLine1, short),
		viz(domain.FieldDocumentNumber, "L898902C3"),
		viz(domain.FieldDateOfBirth, "12.08.1974"),
	)

	report := testEngine().Apply(testCtx(), fields)

	// Check digit rules and the cross-check fail with a cannot-validate
	// detail; the optional personal number rule and the rules that need a
	// parsed MRZ to mean anything are skipped.
	for _, id := range []string{"MRZ_FORMAT", "DOC_NUM_CHECK", "DOB_CHECK", "DOE_CHECK", "COMPOSITE_CHECK", "CROSS_CHECK"} {
		res := findResult(t, report, id)
		assert.False(t, res.Passed, id)
		assert.Equal(t, domain.SeverityCritical, res.Severity, id)
	}
	assert.Equal(t, 7, report.RulesTotal) // PN_CHECK, COUNTRY_CODE, DATE_PLAUSIBILITY skipped
	assert.Equal(t, 1, report.RulesPassed)
	assert.Len(t, report.Violations, 6)
	assert.Equal(t, domain.SeverityCritical, report.RiskLevel)

	docNum := findResult(t, report, "DOC_NUM_CHECK")
	assert.Contains(t, docNum.Detail, "cannot validate")
}

func TestApply_MissingMRZLines(t *testing.T) {
	report := testEngine().Apply(testCtx(), []domain.ExtractedField{
		viz(domain.FieldDocumentNumber, "L898902C3"),
	})

	format := findResult(t, report, "MRZ_FORMAT")
	assert.False(t, format.Passed)
	assert.Contains(t, format.Detail, "not found")

	required := findResult(t, report, "REQUIRED_FIELDS")
	assert.False(t, required.Passed)
	assert.Contains(t, required.Detail, domain.FieldMRZLine1)
}

func TestApply_EmptyPersonalNumberSkipsRule(t *testing.T) {
	l2 := buildLine2("L898902C3", "UTO", "740812", "F", "310521", "")

	report := testEngine().Apply(testCtx(), mrzFields(validLine1, l2))

	assert.Equal(t, 9, report.RulesTotal)
	assert.Equal(t, 9, report.RulesPassed)
	for _, res := range report.Results {
		assert.NotEqual(t, "PN_CHECK", res.RuleID)
	}
}

func TestApply_UnknownCountryCode(t *testing.T) {
	l2 := buildLine2("L898902C3", "XQZ", "740812", "F", "310521", "ZE184226B")

	report := testEngine().Apply(testCtx(), mrzFields(validLine1, l2))

	country := findResult(t, report, "COUNTRY_CODE")
	assert.False(t, country.Passed)
	assert.Equal(t, domain.SeverityHigh, country.Severity)
	assert.Contains(t, country.Detail, "XQZ")
	assert.Equal(t, domain.SeverityHigh, report.RiskLevel)
}

func TestApply_DatePlausibility(t *testing.T) {
	t.Run("expired document", func(t *testing.T) {
		l2 := buildLine2("L898902C3", "UTO", "740812", "F", "200101", "ZE184226B")
		report := testEngine().Apply(testCtx(), mrzFields(validLine1, l2))

		dates := findResult(t, report, "DATE_PLAUSIBILITY")
		assert.False(t, dates.Passed)
		assert.Equal(t, domain.SeverityHigh, dates.Severity)
		assert.Contains(t, dates.Detail, "expired")
	})

	t.Run("birth date in the future", func(t *testing.T) {
		// YY 27 resolves to 2027, after the pinned 2026 clock.
		l2 := buildLine2("L898902C3", "UTO", "270812", "F", "310521", "ZE184226B")
		report := testEngine().Apply(testCtx(), mrzFields(validLine1, l2))

		dates := findResult(t, report, "DATE_PLAUSIBILITY")
		assert.False(t, dates.Passed)
		assert.Equal(t, domain.SeverityCritical, dates.Severity)
	})

	t.Run("expiry beyond the window", func(t *testing.T) {
		// YY values 00-29 cap representable expiries at 2029, so shrink
		// the window instead of growing the date.
		engine := NewEngine(DateWindow{MaxExpiryYears: 1, MaxAgeYears: 150})
		l2 := buildLine2("L898902C3", "UTO", "740812", "F", "290101", "ZE184226B")
		report := engine.Apply(testCtx(), mrzFields(validLine1, l2))

		dates := findResult(t, report, "DATE_PLAUSIBILITY")
		assert.False(t, dates.Passed)
		assert.Equal(t, domain.SeverityHigh, dates.Severity)
	})
}

func TestApply_CrossCheckTampering(t *testing.T) {
	line1 := "P<UTOSNITH<<JOHN<<<<<<<<<<<<<<<<<<<<<<<<<<<<"
	require.Len(t, line1, 44)
	fields := append(mrzFields(line1, validLine2()),
		viz(domain.FieldPrimaryIdentifier, "SMITH"),
	)

	report := testEngine().Apply(testCtx(), fields)

	cross := findResult(t, report, "CROSS_CHECK")
	assert.False(t, cross.Passed)
	assert.Equal(t, domain.SeverityCritical, cross.Severity)
	assert.Contains(t, cross.Detail, "SMITH")
	assert.Contains(t, cross.Detail, "SNITH")
	assert.Equal(t, domain.SeverityCritical, report.RiskLevel)
}

func TestApply_RiskLevelIsMaxSeverity(t *testing.T) {
	// Unknown nationality (HIGH) plus tampered VIZ name (CRITICAL).
	l2 := buildLine2("L898902C3", "XQZ", "740812", "F", "310521", "ZE184226B")
	fields := append(mrzFields(validLine1, l2),
		viz(domain.FieldPrimaryIdentifier, "SMITH"),
	)

	report := testEngine().Apply(testCtx(), fields)

	assert.True(t, len(report.Violations) >= 2)
	assert.Equal(t, domain.SeverityCritical, report.RiskLevel)
}

func TestApply_ResultsKeepRuleOrder(t *testing.T) {
	report := testEngine().Apply(testCtx(), mrzFields(validLine1, validLine2()))

	var ids []string
	for _, res := range report.Results {
		ids = append(ids, res.RuleID)
	}
	assert.Equal(t, []string{
		"MRZ_FORMAT", "DOC_NUM_CHECK", "DOB_CHECK", "DOE_CHECK", "PN_CHECK",
		"COMPOSITE_CHECK", "COUNTRY_CODE", "DATE_PLAUSIBILITY", "REQUIRED_FIELDS", "CROSS_CHECK",
	}, ids)
}
