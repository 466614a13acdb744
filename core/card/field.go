package card

import "strings"

// Character budgets for the fixed card regions. Values longer than their
// budget are truncated before drawing so no field can overflow its box.
const (
	maxSchoolNameChars = 50
	maxMottoChars      = 40
	maxNameChars       = 17
	maxRegNoChars      = 20
	maxCourseChars     = 22
	maxClassChars      = 20
	maxBottomIDChars   = 15
	maxEmergencyChars  = 20
	maxAllergiesChars  = 18
)

// CardField is the complete renderable record for one card: identity and
// medical fields, emergency contact, institution branding and resolved asset
// paths. Every field may be empty; the renderer substitutes placeholders and
// never fails on missing optional data. Asset paths must be absolute paths of
// existing files, or empty.
type CardField struct {
	FullName   string
	RegNo      string
	IDNumber   string
	Course     string
	ClassLevel string
	ValidUntil string // pre-formatted display string, e.g. "Dec 2025"

	BloodType      string
	Allergies      string
	EmergencyName  string
	EmergencyPhone string

	SchoolName  string
	SchoolMotto string
	ColorHex    string // institution primary color, e.g. "#0b5394"

	PhotoPath string
	QRPath    string
	LogoPath  string
}

// Renderable reports whether the record carries enough core data to be worth
// a card at all. Non-renderable records are skipped by the assembler.
func (f CardField) Renderable() bool {
	return strings.TrimSpace(f.FullName) != "" || strings.TrimSpace(f.RegNo) != ""
}

// normalized returns a copy with whitespace trimmed and branding defaults
// applied, so the renderers never deal with partially-resolved values.
func (f CardField) normalized() CardField {
	f.FullName = strings.TrimSpace(f.FullName)
	f.RegNo = strings.TrimSpace(f.RegNo)
	f.IDNumber = strings.TrimSpace(f.IDNumber)
	f.Course = strings.TrimSpace(f.Course)
	f.ClassLevel = strings.TrimSpace(f.ClassLevel)
	f.ValidUntil = strings.TrimSpace(f.ValidUntil)
	f.BloodType = strings.TrimSpace(f.BloodType)
	f.Allergies = strings.TrimSpace(f.Allergies)
	f.EmergencyName = strings.TrimSpace(f.EmergencyName)
	f.EmergencyPhone = strings.TrimSpace(f.EmergencyPhone)
	f.SchoolMotto = strings.TrimSpace(f.SchoolMotto)

	if f.SchoolName = strings.TrimSpace(f.SchoolName); f.SchoolName == "" {
		f.SchoolName = "SCHOOL NAME"
	}
	if f.ColorHex = strings.TrimSpace(f.ColorHex); f.ColorHex == "" {
		f.ColorHex = "#0b5394"
	}
	if f.IDNumber == "" {
		f.IDNumber = f.RegNo
	}
	return f
}

// orNA substitutes the default label for absent optional values.
func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

// truncate returns a prefix of at most max runes.
func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}

// truncateEllipsis truncates to at most max runes, ending in "..." when cut.
func truncateEllipsis(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max <= 3 {
		return string(r[:max])
	}
	return string(r[:max-3]) + "..."
}
