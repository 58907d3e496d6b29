package mrz

import (
	"fmt"
	"strings"
)

// LineLength is the fixed width of a TD3 MRZ line.
const LineLength = 44

// FormatError reports an MRZ that cannot be parsed at all: wrong length,
// characters outside the MRZ alphabet, or a structurally empty mandatory
// field. The parser never guesses or substitutes defaults.
type FormatError struct {
	Line   int // 1 or 2; 0 when the problem spans the zone
	Reason string
}

func (e *FormatError) Error() string {
	if e.Line == 0 {
		return "mrz: " + e.Reason
	}
	return fmt.Sprintf("mrz line %d: %s", e.Line, e.Reason)
}

// ParsedMRZ is the typed view of a TD3 machine-readable zone. It is built
// once per analysis and never mutated afterwards. Check digit fields hold
// -1 when the corresponding position carried a non-digit character.
type ParsedMRZ struct {
	DocumentCode        string
	IssuingState        string
	PrimaryIdentifier   string
	SecondaryIdentifier string

	DocumentNumber      string
	DocumentNumberCheck int
	Nationality         string
	DateOfBirth         string // raw YYMMDD
	DateOfBirthCheck    int
	Sex                 string
	DateOfExpiry        string // raw YYMMDD
	DateOfExpiryCheck   int
	PersonalNumber      string // raw 14 characters including filler
	PersonalNumberCheck int
	CompositeCheck      int

	// Raw normalized lines, kept for check digit recomputation.
	Line1 string
	Line2 string
}

// ParseTD3 splits the two lines of a TD3 machine-readable zone into typed
// fields. Each line must be exactly 44 characters from the [A-Z0-9<]
// alphabet after trimming surrounding whitespace; anything else is a
// FormatError. OCR look-alike normalization is the extraction
// collaborator's job and has happened before this point.
func ParseTD3(line1, line2 string) (*ParsedMRZ, error) {
	l1 := strings.ToUpper(strings.TrimSpace(line1))
	l2 := strings.ToUpper(strings.TrimSpace(line2))

	if err := validateLine(1, l1); err != nil {
		return nil, err
	}
	if err := validateLine(2, l2); err != nil {
		return nil, err
	}

	p := &ParsedMRZ{Line1: l1, Line2: l2}

	p.DocumentCode = strings.TrimRight(l1[0:2], "<")
	p.IssuingState = strings.TrimRight(l1[2:5], "<")
	p.PrimaryIdentifier, p.SecondaryIdentifier = splitName(l1[5:])

	p.DocumentNumber = strings.TrimRight(l2[docNumStart:docNumEnd], "<")
	p.DocumentNumberCheck = digitAt(l2, docNumCheck)
	p.Nationality = strings.TrimRight(l2[10:13], "<")
	p.DateOfBirth = l2[dobStart:dobEnd]
	p.DateOfBirthCheck = digitAt(l2, dobCheck)
	p.Sex = l2[20:21]
	p.DateOfExpiry = l2[doeStart:doeEnd]
	p.DateOfExpiryCheck = digitAt(l2, doeCheck)
	p.PersonalNumber = l2[pnStart:pnEnd]
	p.PersonalNumberCheck = digitAt(l2, pnCheck)
	p.CompositeCheck = digitAt(l2, compositePos)

	if p.DocumentNumber == "" {
		return nil, &FormatError{Line: 2, Reason: "document number is empty"}
	}

	return p, nil
}

// PersonalNumberEmpty reports whether the optional personal number field is
// entirely filler.
func (p *ParsedMRZ) PersonalNumberEmpty() bool {
	return strings.Trim(p.PersonalNumber, "<") == ""
}

func validateLine(n int, line string) error {
	if len(line) != LineLength {
		return &FormatError{Line: n, Reason: fmt.Sprintf("length %d, want %d", len(line), LineLength)}
	}
	for i := 0; i < len(line); i++ {
		c := line[i]
		if c == '<' || (c >= '0' && c <= '9') || (c >= 'A' && c <= 'Z') {
			continue
		}
		return &FormatError{Line: n, Reason: fmt.Sprintf("illegal character %q at position %d", c, i+1)}
	}
	return nil
}

// splitName separates the primary identifier (surname) from the secondary
// identifier (given names) at the first '<<' run. Single '<' inside either
// part reads as a space.
func splitName(section string) (primary, secondary string) {
	primary = section
	if idx := strings.Index(section, "<<"); idx >= 0 {
		primary = section[:idx]
		secondary = section[idx+2:]
	}
	clean := func(s string) string {
		return strings.TrimSpace(strings.ReplaceAll(strings.Trim(s, "<"), "<", " "))
	}
	return clean(primary), clean(secondary)
}

// digitAt returns the numeric value of the check digit at pos, or -1 when
// the position holds anything but a decimal digit (typically filler on an
// unused optional field).
func digitAt(line string, pos int) int {
	c := line[pos]
	if c >= '0' && c <= '9' {
		return int(c - '0')
	}
	return -1
}
