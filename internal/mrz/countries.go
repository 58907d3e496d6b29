package mrz

// validCountryCodes is the ISO 3166-1 alpha-3 set accepted in the issuing
// state and nationality fields, plus UTO, the ICAO specimen nationality.
var validCountryCodes = map[string]struct{}{}

func init() {
	codes := []string{
		"AFG", "ALB", "DZA", "AND", "AGO", "ARG", "ARM", "AUS", "AUT",
		"AZE", "BHS", "BHR", "BGD", "BRB", "BLR", "BEL", "BLZ", "BEN",
		"BTN", "BOL", "BIH", "BWA", "BRA", "BRN", "BGR", "BFA", "BDI",
		"KHM", "CMR", "CAN", "CPV", "CAF", "TCD", "CHL", "CHN", "COL",
		"COG", "CRI", "HRV", "CUB", "CYP", "CZE", "DNK", "DJI", "DOM",
		"ECU", "EGY", "SLV", "GNQ", "ERI", "EST", "ETH", "FIN", "FRA",
		"GAB", "GMB", "GEO", "DEU", "GHA", "GRC", "GTM", "GIN", "GUY",
		"HTI", "HND", "HUN", "ISL", "IND", "IDN", "IRN", "IRQ", "IRL",
		"ISR", "ITA", "JAM", "JPN", "JOR", "KAZ", "KEN", "KWT", "KGZ",
		"LAO", "LVA", "LBN", "LSO", "LBR", "LBY", "LIE", "LTU", "LUX",
		"MDG", "MWI", "MYS", "MDV", "MLI", "MLT", "MRT", "MUS", "MEX",
		"MDA", "MCO", "MNG", "MNE", "MAR", "MOZ", "MMR", "NAM", "NPL",
		"NLD", "NZL", "NIC", "NER", "NGA", "NOR", "OMN", "PAK", "PAN",
		"PRY", "PER", "PHL", "POL", "PRT", "QAT", "ROU", "RUS", "RWA",
		"SAU", "SEN", "SRB", "SGP", "SVK", "SVN", "SOM", "ZAF", "KOR",
		"ESP", "LKA", "SDN", "SUR", "SWZ", "SWE", "CHE", "SYR", "TWN",
		"TJK", "TZA", "THA", "TGO", "TTO", "TUN", "TUR", "TKM", "UGA",
		"UKR", "ARE", "GBR", "USA", "URY", "UZB", "VEN", "VNM", "YEM",
		"ZMB", "ZWE", "UTO",
	}
	for _, c := range codes {
		validCountryCodes[c] = struct{}{}
	}
}

// ValidCountryCode reports whether code is a known ISO 3166-1 alpha-3
// country code (or the ICAO test state UTO).
func ValidCountryCode(code string) bool {
	_, ok := validCountryCodes[code]
	return ok
}
