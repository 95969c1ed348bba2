package interpretation

import (
	"encoding/json"
	"fmt"
	"strings"
)

// promptMarker is replaced with the serialized lab values. The template holds
// literal percent signs, so marker substitution is used instead of Sprintf.
const promptMarker = "{lab_values_json}"

const promptTemplate = `You are a medical lab results interpreter assisting patients with
understanding their results.

For each lab value provided, analyze it and provide:
1. A plain-language explanation of what the test measures
2. Whether the value is normal, borderline, abnormal, or critical based on the reference range
3. What this might indicate for their health (without diagnosing)
4. A citation to an authoritative source (Mayo Clinic, NIH, MedlinePlus, etc.)

Use the reference range (if provided) to determine severity:
- NORMAL: Value within reference range or no reference provided but value seems normal
- BORDERLINE: Slightly outside reference range (1-10% deviation)
- ABNORMAL: Significantly outside reference range (>10% deviation)
- CRITICAL: Values that require immediate medical attention (extreme deviations)

Lab values to interpret:
{lab_values_json}

Respond ONLY with valid JSON matching this exact structure (no markdown, no extra text):
{
  "results": [
    {
      "name": "Test Name",
      "value": 14.5,
      "unit": "unit",
      "severity": "normal|borderline|abnormal|critical",
      "explanation": "Plain language explanation",
      "citation": "Source description with URL"
    }
  ],
  "disclaimer": "Always consult with a healthcare provider for medical advice.",
  "summary": "Optional brief summary of overall results"
}

Important:
- Return ONLY valid JSON with no additional text or markdown
- Severity must be one of: normal, borderline, abnormal, critical
- Explanation should be 2-3 sentences in plain language
- Citation should include source name and be authoritative
- If you cannot determine severity, mark as 'normal' with explanation of uncertainty
`

// buildPrompt renders the interpretation prompt with the lab values embedded
// as an indented JSON array.
func buildPrompt(values []LabValue) (string, error) {
	encoded, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode lab values: %w", err)
	}
	return strings.Replace(promptTemplate, promptMarker, string(encoded), 1), nil
}
