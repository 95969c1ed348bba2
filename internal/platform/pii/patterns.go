package pii

import "regexp"

// Category labels one class of personally identifiable information.
type Category string

const (
	CategorySSN   Category = "ssn"
	CategoryPhone Category = "phone"
	CategoryEmail Category = "email"
	CategoryDOB   Category = "dob"
	CategoryName  Category = "name"
)

// Detector patterns. Word-boundary anchoring is load-bearing: digit runs
// embedded in longer tokens (instrument serials, scientific-notation units)
// must not fire a detector.
var (
	// SSN in dashed form, with a bare nine-digit run as fallback. The bare
	// form will occasionally collide with large numeric identifiers; that
	// recall-over-precision tradeoff is deliberate.
	ssnDashed = regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b`)
	ssnBare   = regexp.MustCompile(`\b\d{9}\b`)

	// Phone numbers: 555-123-4567 / 555.123.4567 / 555 123 4567, with a
	// parenthesized area-code form as fallback.
	phoneSeparated = regexp.MustCompile(`\b\d{3}[-.\s]\d{3}[-.\s]\d{4}\b`)
	phoneParen     = regexp.MustCompile(`\(\d{3}\)\s*\d{3}[-.\s]\d{4}\b`)

	// Conventional local-part@domain.tld shape; TLD is two or more letters.
	emailPattern = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)

	// Dates of birth. Permissive by design: matches both M/D/Y and D/M/Y
	// orderings without disambiguating, and will also flag some D/D pairs
	// followed by a year-like number. Known limitation.
	dobPattern = regexp.MustCompile(`\b\d{1,2}[/-]\d{1,2}[/-]\d{2,4}\b`)
)

// Name-field value patterns: a key-like prefix (case-insensitive), an = or :
// separator with optional quoting, then a capitalized word. The bare "name"
// form requires two consecutive capitalized words so that ordinary lab
// assignments like "name: Hemoglobin" stay clean.
var nameValuePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i:patient_?name)\s*[=:]\s*["']?[A-Z][a-z]+`),
	regexp.MustCompile(`(?i:full_?name)\s*[=:]\s*["']?[A-Z][a-z]+`),
	regexp.MustCompile(`(?i:name)\s*[=:]\s*["']?[A-Z][a-z]+\s+[A-Z][a-z]+`),
	regexp.MustCompile(`(?i:first_?name)\s*[=:]\s*["']?[A-Z][a-z]+`),
	regexp.MustCompile(`(?i:last_?name)\s*[=:]\s*["']?[A-Z][a-z]+`),
	regexp.MustCompile(`(?i:surname)\s*[=:]\s*["']?[A-Z][a-z]+`),
}

// Name-field key patterns, anchored to the start of a mapping key. A key
// named patient_name is sufficient evidence on its own; the associated value
// is never consulted. Bare "name" is deliberately absent from this list:
// every lab value carries a legitimate "name" key.
var nameKeyPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^(?i:patient_?name)`),
	regexp.MustCompile(`^(?i:full_?name)`),
	regexp.MustCompile(`^(?i:first_?name)`),
	regexp.MustCompile(`^(?i:last_?name)`),
	regexp.MustCompile(`^(?i:surname)`),
}
