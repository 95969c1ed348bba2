// Package citations maps lab test names to authoritative patient-education
// references.
package citations

import (
	"fmt"
	"strings"
)

// Source is a reference publisher whose URLTemplate carries one %s slot
// for the normalized test name.
type Source struct {
	Name        string
	URLTemplate string
}

// URL returns the reference URL for a normalized test name.
func (s *Source) URL(key string) string {
	return fmt.Sprintf(s.URLTemplate, key)
}

// Citation returns the "{source}: {url}" line for a normalized test name.
func (s *Source) Citation(key string) string {
	return s.Name + ": " + s.URL(key)
}

var (
	MayoClinic = &Source{
		Name:        "Mayo Clinic",
		URLTemplate: "https://www.mayoclinic.org/tests-procedures/%s/about/pac-20384692",
	}
	MedlinePlus = &Source{
		Name:        "MedlinePlus (NIH)",
		URLTemplate: "https://medlineplus.gov/lab-tests/%s/",
	}
	// GenericReference has no substitution slot; its URL is used verbatim
	// for tests outside the curated table.
	GenericReference = &Source{
		Name:        "Medical Reference",
		URLTemplate: "https://www.nlm.nih.gov/medlineplus/",
	}
)

// genericCitation is the single fallback line for unmapped tests.
var genericCitation = GenericReference.Name + ": " + GenericReference.URLTemplate

// standardPair is the source list shared by every curated test: Mayo
// Clinic preferred, MedlinePlus second. Entries hold independent slices
// in principle, so a future test can carry its own ordering.
var standardPair = []*Source{MayoClinic, MedlinePlus}

// labTests maps normalized test names to their sources in preference
// order. Keys are lowercase with internal whitespace intact; both full
// names and common abbreviations appear as separate entries.
var labTests = map[string][]*Source{
	// Complete blood count
	"hemoglobin":              standardPair,
	"hematocrit":              standardPair,
	"red blood cell count":    standardPair,
	"rbc":                     standardPair,
	"white blood cell count":  standardPair,
	"wbc":                     standardPair,
	"platelet count":          standardPair,
	"platelets":               standardPair,
	"mean corpuscular volume": standardPair,
	"mcv":                     standardPair,

	// Metabolic panel
	"glucose":             standardPair,
	"blood glucose":       standardPair,
	"fasting glucose":     standardPair,
	"sodium":              standardPair,
	"potassium":           standardPair,
	"chloride":            standardPair,
	"co2":                 standardPair,
	"carbon dioxide":      standardPair,
	"bicarbonate":         standardPair,
	"bun":                 standardPair,
	"blood urea nitrogen": standardPair,
	"creatinine":          standardPair,
	"calcium":             standardPair,
	"albumin":             standardPair,
	"total protein":       standardPair,

	// Lipid panel
	"cholesterol":              standardPair,
	"total cholesterol":        standardPair,
	"ldl":                      standardPair,
	"low-density lipoprotein":  standardPair,
	"hdl":                      standardPair,
	"high-density lipoprotein": standardPair,
	"triglycerides":            standardPair,

	// Liver function
	"ast":                        standardPair,
	"aspartate aminotransferase": standardPair,
	"alt":                        standardPair,
	"alanine aminotransferase":   standardPair,
	"alkaline phosphatase":       standardPair,
	"alp":                        standardPair,
	"bilirubin":                  standardPair,
	"total bilirubin":            standardPair,

	// Kidney function
	"bun/creatinine ratio":       standardPair,
	"gfr":                        standardPair,
	"glomerular filtration rate": standardPair,
	"uric acid":                  standardPair,

	// Thyroid function
	"tsh":                         standardPair,
	"thyroid stimulating hormone": standardPair,
	"t3":                          standardPair,
	"t4":                          standardPair,
	"thyroxine":                   standardPair,

	// Vitamin levels
	"vitamin b12":         standardPair,
	"b12":                 standardPair,
	"cobalamin":           standardPair,
	"folate":              standardPair,
	"folic acid":          standardPair,
	"vitamin d":           standardPair,
	"d25":                 standardPair,
	"25-hydroxyvitamin d": standardPair,

	// Cardiac markers
	"troponin":                   standardPair,
	"high-sensitivity troponin":  standardPair,
	"creatine kinase":            standardPair,
	"ck":                         standardPair,
	"ck-mb":                      standardPair,
	"myoglobin":                  standardPair,
	"bnp":                        standardPair,
	"b-type natriuretic peptide": standardPair,

	// Hormones
	"cortisol":                  standardPair,
	"testosterone":              standardPair,
	"estrogen":                  standardPair,
	"progesterone":              standardPair,
	"psa":                       standardPair,
	"prostate specific antigen": standardPair,

	// Inflammatory markers
	"crp":                            standardPair,
	"c-reactive protein":             standardPair,
	"esr":                            standardPair,
	"erythrocyte sedimentation rate": standardPair,

	// Coagulation
	"pt":                                    standardPair,
	"prothrombin time":                      standardPair,
	"inr":                                   standardPair,
	"international normalized ratio":        standardPair,
	"ptt":                                   standardPair,
	"partial thromboplastin time":           standardPair,
	"aptt":                                  standardPair,
	"activated partial thromboplastin time": standardPair,
}

// Resolve returns the preferred citation line for a lab test. Unknown
// tests resolve to the generic National Library of Medicine reference.
func Resolve(testName string) string {
	key := normalize(testName)
	if sources, ok := labTests[key]; ok {
		return sources[0].Citation(key)
	}
	return genericCitation
}

// ResolveAll returns one citation line per source associated with the
// test, in preference order. Resolve(x) is always ResolveAll(x)[0].
func ResolveAll(testName string) []string {
	key := normalize(testName)
	sources, ok := labTests[key]
	if !ok {
		return []string{genericCitation}
	}
	out := make([]string, 0, len(sources))
	for _, s := range sources {
		out = append(out, s.Citation(key))
	}
	return out
}

// Known reports whether a test has a curated source list.
func Known(testName string) bool {
	_, ok := labTests[normalize(testName)]
	return ok
}

// normalize lowercases and trims a test name; internal whitespace is
// part of the lookup key.
func normalize(testName string) string {
	return strings.ToLower(strings.TrimSpace(testName))
}
