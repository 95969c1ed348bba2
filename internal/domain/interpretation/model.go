package interpretation

import (
	"encoding/json"
	"fmt"
	"unicode/utf8"
)

// Request bounds.
const (
	MaxLabValues  = 50
	MaxNameLength = 100
	MaxUnitLength = 50
)

// LabValue is a single lab result submitted for interpretation. Reference
// bounds are serialized without omitempty so absent bounds reach the provider
// as explicit nulls.
type LabValue struct {
	Name         string   `json:"name"`
	Value        *float64 `json:"value"`
	Unit         string   `json:"unit"`
	ReferenceMin *float64 `json:"reference_min"`
	ReferenceMax *float64 `json:"reference_max"`
}

// Validate checks required fields and length bounds on LabValue.
func (lv *LabValue) Validate() error {
	if lv.Name == "" {
		return fmt.Errorf("name is required")
	}
	if utf8.RuneCountInString(lv.Name) > MaxNameLength {
		return fmt.Errorf("name must be at most %d characters", MaxNameLength)
	}
	if lv.Value == nil {
		return fmt.Errorf("value is required")
	}
	if lv.Unit == "" {
		return fmt.Errorf("unit is required")
	}
	if utf8.RuneCountInString(lv.Unit) > MaxUnitLength {
		return fmt.Errorf("unit must be at most %d characters", MaxUnitLength)
	}
	return nil
}

// Request is the interpretation request body.
type Request struct {
	LabValues []LabValue `json:"lab_values"`
}

// Validate checks the list bounds and every lab value.
func (r *Request) Validate() error {
	if r.LabValues == nil {
		return fmt.Errorf("lab_values is required")
	}
	if len(r.LabValues) == 0 {
		return fmt.Errorf("lab_values must contain at least 1 item")
	}
	if len(r.LabValues) > MaxLabValues {
		return fmt.Errorf("lab_values must contain at most %d items", MaxLabValues)
	}
	for i := range r.LabValues {
		if err := r.LabValues[i].Validate(); err != nil {
			return fmt.Errorf("lab_values[%d]: %w", i, err)
		}
	}
	return nil
}

// Severity is the provider-assigned severity for one result. The service
// never computes severity locally.
type Severity string

const (
	SeverityNormal     Severity = "normal"
	SeverityBorderline Severity = "borderline"
	SeverityAbnormal   Severity = "abnormal"
	SeverityCritical   Severity = "critical"
)

var validSeverities = map[Severity]bool{
	SeverityNormal: true, SeverityBorderline: true, SeverityAbnormal: true, SeverityCritical: true,
}

// Result is one interpreted lab value.
type Result struct {
	Name        string   `json:"name"`
	Value       float64  `json:"value"`
	Unit        string   `json:"unit"`
	Severity    Severity `json:"severity"`
	Explanation string   `json:"explanation"`
	Citation    string   `json:"citation,omitempty"`
}

// Response is the full interpretation returned to the caller.
type Response struct {
	Results    []Result `json:"results"`
	Summary    string   `json:"summary,omitempty"`
	Disclaimer string   `json:"disclaimer"`
}

// parseProviderResponse decodes and validates the provider's JSON reply.
// The results and disclaimer keys are required; an empty results array is
// tolerated, a missing key is not.
func parseProviderResponse(raw string) (*Response, error) {
	var resp Response
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		return nil, fmt.Errorf("failed to decode provider response: %w", err)
	}
	if resp.Results == nil {
		return nil, fmt.Errorf("provider response missing results")
	}
	if resp.Disclaimer == "" {
		return nil, fmt.Errorf("provider response missing disclaimer")
	}
	for i := range resp.Results {
		res := &resp.Results[i]
		if res.Name == "" {
			return nil, fmt.Errorf("provider result %d missing name", i)
		}
		if res.Explanation == "" {
			return nil, fmt.Errorf("provider result %d missing explanation", i)
		}
		if !validSeverities[res.Severity] {
			return nil, fmt.Errorf("provider result %d has invalid severity: %s", i, res.Severity)
		}
	}
	return &resp, nil
}
