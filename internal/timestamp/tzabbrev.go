package timestamp

// zoneOffsets maps common timezone abbreviations to fixed UTC offsets.
// Abbreviations are ambiguous across regions; these are the assignments the
// Takeout corpus actually produces. Daylight variants are listed separately
// because the abbreviation itself encodes the shift.
var zoneOffsets = map[string]string{
	"UTC": "+00:00",
	"GMT": "+00:00",
	"WET": "+00:00",

	"EST": "-05:00",
	"EDT": "-04:00",
	"CST": "-06:00",
	"CDT": "-05:00",
	"MST": "-07:00",
	"MDT": "-06:00",
	"PST": "-08:00",
	"PDT": "-07:00",

	"AKST": "-09:00",
	"AKDT": "-08:00",
	"HST":  "-10:00",

	"CET":  "+01:00",
	"CEST": "+02:00",
	"EET":  "+02:00",
	"EEST": "+03:00",
	"WEST": "+01:00",
	"BST":  "+01:00",

	"IST": "+05:30",
	"JST": "+09:00",
	"KST": "+09:00",

	"AEST": "+10:00",
	"AEDT": "+11:00",
	"ACST": "+09:30",
	"NZST": "+12:00",
	"NZDT": "+13:00",
}
