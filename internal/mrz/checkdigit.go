// Package mrz parses ICAO 9303 machine-readable zones and verifies their
// check digits. Everything here is pure computation: no state, no I/O, safe
// for concurrent use.
package mrz

// weights is the repeating multiplier cycle of the ICAO 9303 check digit
// algorithm (Doc 9303 part 3, §4.9).
var weights = [3]int{7, 3, 1}

// charValue maps an MRZ character to its numeric value: digits to
// themselves, A-Z to 10-35, the filler '<' to 0. Characters outside the MRZ
// alphabet also map to 0 so the function is total; the parser rejects them
// before any check digit is computed.
func charValue(c byte) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'A' && c <= 'Z':
		return int(c-'A') + 10
	}
	return 0
}

// CheckDigit computes the ICAO 9303 check digit over data: each character's
// value is multiplied by the weight cycle [7,3,1] and the sum is taken
// modulo 10. Defined for input of any length.
func CheckDigit(data string) int {
	total := 0
	for i := 0; i < len(data); i++ {
		total += charValue(data[i]) * weights[i%3]
	}
	return total % 10
}

// CheckResult is the outcome of verifying one embedded check digit.
// Claimed is -1 when the document carried a non-digit in the check
// position.
type CheckResult struct {
	Field    string
	Expected int
	Claimed  int
}

// OK reports whether the claimed digit matches the computed one.
func (r CheckResult) OK() bool {
	return r.Claimed == r.Expected
}

// TD3 line 2 layout, zero-indexed slice bounds.
const (
	docNumStart  = 0
	docNumEnd    = 9
	dobStart     = 13
	dobEnd       = 19
	doeStart     = 21
	doeEnd       = 27
	pnStart      = 28
	pnEnd        = 42
	docNumCheck  = 9
	dobCheck     = 19
	doeCheck     = 27
	pnCheck      = 42
	compositePos = 43
)

// VerifyDocumentNumber recomputes the document number check digit.
func (p *ParsedMRZ) VerifyDocumentNumber() CheckResult {
	return CheckResult{
		Field:    "document_number",
		Expected: CheckDigit(p.Line2[docNumStart:docNumEnd]),
		Claimed:  p.DocumentNumberCheck,
	}
}

// VerifyDateOfBirth recomputes the date of birth check digit.
func (p *ParsedMRZ) VerifyDateOfBirth() CheckResult {
	return CheckResult{
		Field:    "date_of_birth",
		Expected: CheckDigit(p.Line2[dobStart:dobEnd]),
		Claimed:  p.DateOfBirthCheck,
	}
}

// VerifyDateOfExpiry recomputes the date of expiry check digit.
func (p *ParsedMRZ) VerifyDateOfExpiry() CheckResult {
	return CheckResult{
		Field:    "date_of_expiry",
		Expected: CheckDigit(p.Line2[doeStart:doeEnd]),
		Claimed:  p.DateOfExpiryCheck,
	}
}

// VerifyPersonalNumber recomputes the personal number check digit. The
// caller decides whether an all-filler personal number makes this check
// moot; see PersonalNumberEmpty.
func (p *ParsedMRZ) VerifyPersonalNumber() CheckResult {
	return CheckResult{
		Field:    "personal_number",
		Expected: CheckDigit(p.Line2[pnStart:pnEnd]),
		Claimed:  p.PersonalNumberCheck,
	}
}

// VerifyComposite recomputes the final composite check digit over the
// concatenation of document number, date of birth and date of expiry (each
// with its own check digit) and the personal number with its check digit.
func (p *ParsedMRZ) VerifyComposite() CheckResult {
	data := p.Line2[0:10] + p.Line2[13:20] + p.Line2[21:43]
	return CheckResult{
		Field:    "composite",
		Expected: CheckDigit(data),
		Claimed:  p.CompositeCheck,
	}
}
