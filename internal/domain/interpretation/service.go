// Package interpretation orchestrates the lab result interpretation pipeline:
// PII screening, prompt construction, the provider call, response validation,
// and citation backfill.
package interpretation

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/labwise/labwise/internal/domain/citations"
	"github.com/labwise/labwise/internal/platform/metrics"
	"github.com/labwise/labwise/internal/platform/pii"
)

// Provider produces a completion for a single prompt. The Anthropic client
// in internal/platform/llm satisfies this.
type Provider interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// PIIError reports the categories that blocked an interpretation request.
// It carries category names only, never the matched text.
type PIIError struct {
	Types []string
}

func (e *PIIError) Error() string {
	return fmt.Sprintf("PII detected: %s", strings.Join(e.Types, ", "))
}

type Service struct {
	provider Provider
	logger   zerolog.Logger
	metrics  *metrics.Metrics
}

func NewService(provider Provider, logger zerolog.Logger) *Service {
	return &Service{provider: provider, logger: logger}
}

// SetMetrics attaches optional Prometheus instrumentation to the service.
func (s *Service) SetMetrics(m *metrics.Metrics) {
	s.metrics = m
}

// Interpret screens the request for PII, sends the lab values to the
// provider, validates the reply, and backfills citations for results the
// provider left without one. The provider is never called when the gate
// trips.
func (s *Service) Interpret(ctx context.Context, req *Request) (*Response, error) {
	detected, err := scanRequest(req)
	if err != nil {
		return nil, err
	}
	if len(detected) > 0 {
		s.logger.Warn().Strs("categories", detected).Msg("request rejected by PII gate")
		if s.metrics != nil {
			s.metrics.RecordPIIRejection(detected)
		}
		return nil, &PIIError{Types: detected}
	}

	prompt, err := buildPrompt(req.LabValues)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Int("lab_values", len(req.LabValues)).Msg("interpreting lab values")

	start := time.Now()
	raw, err := s.provider.Complete(ctx, prompt)
	if err != nil {
		s.logger.Error().Err(err).Msg("provider error")
		s.recordProviderCall(metrics.OutcomeError, time.Since(start))
		return nil, fmt.Errorf("failed to interpret lab values: %w", err)
	}

	resp, err := parseProviderResponse(raw)
	if err != nil {
		s.logger.Error().Err(err).Msg("malformed provider response")
		s.recordProviderCall(metrics.OutcomeMalformed, time.Since(start))
		return nil, fmt.Errorf("failed to interpret lab values: %w", err)
	}
	s.recordProviderCall(metrics.OutcomeSuccess, time.Since(start))

	for i := range resp.Results {
		if resp.Results[i].Citation == "" {
			resp.Results[i].Citation = citations.Resolve(resp.Results[i].Name)
		}
	}

	return resp, nil
}

func (s *Service) recordProviderCall(outcome string, d time.Duration) {
	if s.metrics != nil {
		s.metrics.RecordProviderCall(outcome, d)
	}
}

// scanRequest round-trips the request through JSON and screens every field,
// keys included, before anything leaves the service.
func scanRequest(req *Request) ([]string, error) {
	encoded, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}
	var payload map[string]interface{}
	if err := json.Unmarshal(encoded, &payload); err != nil {
		return nil, fmt.Errorf("failed to decode request: %w", err)
	}

	categories := pii.ScanStructure(payload, true)
	if len(categories) == 0 {
		return nil, nil
	}
	types := make([]string, len(categories))
	for i, cat := range categories {
		types[i] = string(cat)
	}
	return types, nil
}
