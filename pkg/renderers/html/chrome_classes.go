package html

// ChromeClass is a typed identifier for semantic chrome CSS classes.
type ChromeClass string

const (
	ClassDocument ChromeClass = "formdoc-document"
	ClassHeader   ChromeClass = "formdoc-header"
	ClassBadge    ChromeClass = "formdoc-badge"
	ClassSection  ChromeClass = "formdoc-section"
	ClassField    ChromeClass = "formdoc-field"
	ClassChecks   ChromeClass = "formdoc-checks"
	ClassCriteria ChromeClass = "formdoc-criteria"
	ClassErrors   ChromeClass = "formdoc-errors"
	ClassControl  ChromeClass = "formdoc-control"
)

// Chrome overrides the class applied to each chrome element. Empty values
// fall back to the Class* defaults.
type Chrome struct {
	Document string
	Header   string
	Badge    string
	Section  string
	Field    string
	Checks   string
	Criteria string
	Errors   string
	Control  string
}

func (c Chrome) classes() map[string]string {
	pick := func(override string, fallback ChromeClass) string {
		if cleaned := sanitizeClassList(override); cleaned != "" {
			return string(fallback) + " " + cleaned
		}
		return string(fallback)
	}
	return map[string]string{
		"document": pick(c.Document, ClassDocument),
		"header":   pick(c.Header, ClassHeader),
		"badge":    pick(c.Badge, ClassBadge),
		"section":  pick(c.Section, ClassSection),
		"field":    pick(c.Field, ClassField),
		"checks":   pick(c.Checks, ClassChecks),
		"criteria": pick(c.Criteria, ClassCriteria),
		"errors":   pick(c.Errors, ClassErrors),
		"control":  pick(c.Control, ClassControl),
	}
}
