package rules

import (
	"fmt"
	"strings"
	"time"

	"veridoc/internal/domain"
	"veridoc/internal/mrz"
)

// fieldMismatch is one VIZ value that disagrees with its MRZ counterpart.
type fieldMismatch struct {
	Field string
	VIZ   string
	MRZ   string
}

func (m fieldMismatch) String() string {
	return fmt.Sprintf("%s: VIZ=%q MRZ=%q", m.Field, m.VIZ, m.MRZ)
}

// crossCheck compares every visual-zone field that has an MRZ counterpart
// against the parsed MRZ. The VIZ and MRZ are printed independently, so any
// disagreement on an authentic document is tampering evidence. Comparison
// is exact after normalizing case, filler and whitespace; fuzzy tolerance
// belongs to OCR confidence, not here. Unreadable or empty VIZ values are
// skipped, as are dates the comparator cannot interpret.
func crossCheck(fields []domain.ExtractedField, p *mrz.ParsedMRZ) []fieldMismatch {
	var mismatches []fieldMismatch

	text := func(name, mrzValue string) {
		viz, ok := visualValue(fields, name)
		if !ok || mrzValue == "" {
			return
		}
		if normalizeValue(viz) != normalizeValue(mrzValue) {
			mismatches = append(mismatches, fieldMismatch{Field: name, VIZ: viz, MRZ: mrzValue})
		}
	}

	text(domain.FieldDocumentNumber, p.DocumentNumber)
	text(domain.FieldPrimaryIdentifier, p.PrimaryIdentifier)
	text(domain.FieldSecondaryIdentifier, p.SecondaryIdentifier)
	text(domain.FieldNationality, p.Nationality)

	if viz, ok := visualValue(fields, domain.FieldSex); ok && p.Sex != "" && p.Sex != "<" {
		if nv := normalizeValue(viz); nv != "" && nv[:1] != p.Sex {
			mismatches = append(mismatches, fieldMismatch{Field: domain.FieldSex, VIZ: viz, MRZ: p.Sex})
		}
	}

	date := func(name, mrzRaw string) {
		viz, ok := visualValue(fields, name)
		if !ok {
			return
		}
		mrzDate, ok := mrz.ParseDate(mrzRaw)
		if !ok {
			return // date plausibility rule reports this separately
		}
		equal, comparable := vizDateEquals(viz, mrzDate)
		if comparable && !equal {
			mismatches = append(mismatches, fieldMismatch{Field: name, VIZ: viz, MRZ: mrzRaw})
		}
	}

	date(domain.FieldDateOfBirth, p.DateOfBirth)
	date(domain.FieldDateOfExpiry, p.DateOfExpiry)

	return mismatches
}

// visualValue finds a non-empty VISUAL-zone field by name.
func visualValue(fields []domain.ExtractedField, name string) (string, bool) {
	for _, f := range fields {
		if f.SourceZone == domain.ZoneVisual && f.Name == name && strings.TrimSpace(f.Value) != "" {
			return f.Value, true
		}
	}
	return "", false
}

// normalizeValue uppercases, maps filler to spaces and collapses runs of
// whitespace so "van<der<Berg" compares equal to "VAN DER BERG".
func normalizeValue(s string) string {
	s = strings.ToUpper(strings.ReplaceAll(s, "<", " "))
	return strings.Join(strings.Fields(s), " ")
}

// vizDateEquals interprets a printed date by its digit groups (handles
// "12.08.1974", "12/08/74" and "1974-08-12" orderings) and compares it to
// the MRZ date. The second return value is false when the VIZ value cannot
// be read as a date at all, in which case no verdict is possible.
func vizDateEquals(viz string, mrzDate time.Time) (equal, comparable bool) {
	groups := digitGroups(viz)
	if len(groups) < 3 {
		return false, false
	}

	first, second, third := groups[0], groups[1], groups[2]

	var day, month, year int
	if first.len4() { // YYYY-MM-DD
		year, month, day = first.n, second.n, third.n
	} else { // DD.MM.YYYY or DD.MM.YY
		day, month, year = first.n, second.n, third.n
	}
	if year < 100 {
		if year < 30 {
			year += 2000
		} else {
			year += 1900
		}
	}
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return false, false
	}
	vizDate := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if vizDate.Day() != day || vizDate.Month() != time.Month(month) {
		return false, false
	}
	return vizDate.Equal(mrzDate), true
}

type digitGroup struct {
	n int
	s string
}

func (g digitGroup) len4() bool { return len(g.s) == 4 }

// digitGroups extracts consecutive digit runs from s, preserving order.
func digitGroups(s string) []digitGroup {
	var groups []digitGroup
	start := -1
	flush := func(end int) {
		if start < 0 {
			return
		}
		run := s[start:end]
		n := 0
		for i := 0; i < len(run); i++ {
			n = n*10 + int(run[i]-'0')
		}
		groups = append(groups, digitGroup{n: n, s: run})
		start = -1
	}
	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			if start < 0 {
				start = i
			}
			continue
		}
		flush(i)
	}
	flush(len(s))
	return groups
}
