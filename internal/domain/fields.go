package domain

// SourceZone identifies which zone of the document a field was read from.
// MRZ and VIZ are printed independently, which is what makes cross-checking
// them a tampering signal.
type SourceZone string

const (
	ZoneMRZ    SourceZone = "MRZ"
	ZoneVisual SourceZone = "VISUAL"
)

// ExtractedField is one OCR-extracted value. Produced by the extraction
// collaborator; never mutated after construction. A confidence of 0 means
// the field was detected but unreadable, not that it is absent.
type ExtractedField struct {
	Name       string
	Value      string
	Confidence float64
	SourceZone SourceZone
}

// Well-known field names shared between the extraction collaborator and the
// rules engine.
const (
	FieldMRZLine1            = "mrz_line1"
	FieldMRZLine2            = "mrz_line2"
	FieldDocumentNumber      = "document_number"
	FieldPrimaryIdentifier   = "primary_identifier"
	FieldSecondaryIdentifier = "secondary_identifier"
	FieldNationality         = "nationality"
	FieldSex                 = "sex"
	FieldDateOfBirth         = "date_of_birth"
	FieldDateOfExpiry        = "date_of_expiry"
	FieldPersonalNumber      = "personal_number"
)
