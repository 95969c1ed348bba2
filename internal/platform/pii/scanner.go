// Package pii screens request data for personally identifiable information
// before it can reach any third-party service. It is a best-effort regex
// gate, not a redaction system: detection of any category rejects the whole
// payload upstream.
package pii

import "sort"

// Scan evaluates every detector against text and returns the categories that
// fired, in detector order. A category appears at most once regardless of how
// many substrings matched. Clean text returns a nil slice.
func Scan(text string) []Category {
	var found []Category

	// Dashed SSN takes precedence; the bare nine-digit fallback is only
	// consulted when the dashed form is absent so the category is recorded
	// once either way.
	if ssnDashed.MatchString(text) {
		found = append(found, CategorySSN)
	} else if ssnBare.MatchString(text) {
		found = append(found, CategorySSN)
	}

	if phoneSeparated.MatchString(text) {
		found = append(found, CategoryPhone)
	} else if phoneParen.MatchString(text) {
		found = append(found, CategoryPhone)
	}

	if emailPattern.MatchString(text) {
		found = append(found, CategoryEmail)
	}

	if dobPattern.MatchString(text) {
		found = append(found, CategoryDOB)
	}

	if containsNameField(text) {
		found = append(found, CategoryName)
	}

	return found
}

// ScanStructure walks a JSON-like value (maps, slices, strings; numeric,
// boolean and null leaves contribute nothing) and returns the unique
// categories detected anywhere in it, preserving first-occurrence order.
// When scanKeys is true, mapping keys are additionally tested against the
// name-field key patterns; a matching key is recorded even when its value is
// null or numeric. Map keys are visited in sorted order so the traversal,
// and with it the reported category order, is deterministic.
func ScanStructure(value any, scanKeys bool) []Category {
	all := extractRecursive(value, scanKeys)

	var unique []Category
	seen := make(map[Category]bool, len(all))
	for _, cat := range all {
		if !seen[cat] {
			unique = append(unique, cat)
			seen[cat] = true
		}
	}
	return unique
}

func extractRecursive(value any, scanKeys bool) []Category {
	var found []Category

	switch v := value.(type) {
	case map[string]any:
		keys := make([]string, 0, len(v))
		for key := range v {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			if scanKeys && isNameFieldKey(key) {
				found = append(found, CategoryName)
			}
			found = append(found, extractRecursive(v[key], scanKeys)...)
		}
	case []any:
		for _, item := range v {
			found = append(found, extractRecursive(item, scanKeys)...)
		}
	case string:
		found = append(found, Scan(v)...)
	}

	return found
}

func containsNameField(text string) bool {
	for _, p := range nameValuePatterns {
		if p.MatchString(text) {
			return true
		}
	}
	return false
}

// isNameFieldKey reports whether a mapping key names a person rather than a
// test. Prefix-anchored: "patient_name_suffix" still counts.
func isNameFieldKey(key string) bool {
	for _, p := range nameKeyPatterns {
		if p.MatchString(key) {
			return true
		}
	}
	return false
}
