package interpretation

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
)

func newTestHandler(p Provider) (*Handler, *echo.Echo) {
	h := NewHandler(newTestService(p))
	e := echo.New()
	return h, e
}

func postInterpret(e *echo.Echo, body string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodPost, "/interpret", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

const validBody = `{"lab_values":[{"name":"Hemoglobin","value":14.5,"unit":"g/dL","reference_min":13.5,"reference_max":17.5}]}`

func TestHandler_Interpret_Success(t *testing.T) {
	h, e := newTestHandler(&mockProvider{reply: providerReply})
	c, rec := postInterpret(e, validBody)

	if err := h.Interpret(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("response is not JSON: %v", err)
	}
	results, ok := resp["results"].([]interface{})
	if !ok || len(results) != 1 {
		t.Fatalf("results = %v, want one item", resp["results"])
	}
	first, ok := results[0].(map[string]interface{})
	if !ok {
		t.Fatalf("result item has unexpected shape: %v", results[0])
	}
	if first["severity"] != "normal" {
		t.Errorf("severity = %v, want normal", first["severity"])
	}
	if first["citation"] != "MedlinePlus - Hemoglobin Test" {
		t.Errorf("citation = %v, want provider citation preserved", first["citation"])
	}
	if resp["disclaimer"] != "Always consult with a healthcare provider for medical advice." {
		t.Errorf("disclaimer = %v, want provider disclaimer preserved", resp["disclaimer"])
	}
}

func TestHandler_Interpret_PIIRejected(t *testing.T) {
	h, e := newTestHandler(&mockProvider{reply: providerReply})
	body := `{"lab_values":[{"name":"Hemoglobin SSN: 123-45-6789","value":14.5,"unit":"g/dL"}]}`
	c, rec := postInterpret(e, body)

	if err := h.Interpret(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}

	var resp map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("response is not JSON: %v", err)
	}
	if resp["error"] != "PII detected" {
		t.Errorf("error = %v, want 'PII detected'", resp["error"])
	}
	types, ok := resp["types"].([]interface{})
	if !ok {
		t.Fatalf("types = %v, want a list", resp["types"])
	}
	var hasSSN bool
	for _, tp := range types {
		if tp == "ssn" {
			hasSSN = true
		}
	}
	if !hasSSN {
		t.Errorf("types = %v, want ssn", types)
	}
	if strings.Contains(rec.Body.String(), "123-45-6789") {
		t.Error("response echoes the matched value")
	}
}

func TestHandler_Interpret_EmptyLabValues(t *testing.T) {
	h, e := newTestHandler(&mockProvider{})
	c, _ := postInterpret(e, `{"lab_values":[]}`)

	err := h.Interpret(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) {
		t.Fatalf("expected HTTP error, got %v", err)
	}
	if he.Code != http.StatusUnprocessableEntity {
		t.Errorf("code = %d, want 422", he.Code)
	}
	if he.Message != "lab_values must contain at least 1 item" {
		t.Errorf("message = %v", he.Message)
	}
}

func TestHandler_Interpret_MissingLabValuesKey(t *testing.T) {
	h, e := newTestHandler(&mockProvider{})
	c, _ := postInterpret(e, `{}`)

	err := h.Interpret(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) {
		t.Fatalf("expected HTTP error, got %v", err)
	}
	if he.Code != http.StatusUnprocessableEntity {
		t.Errorf("code = %d, want 422", he.Code)
	}
	if he.Message != "lab_values is required" {
		t.Errorf("message = %v", he.Message)
	}
}

func TestHandler_Interpret_TooManyItems(t *testing.T) {
	values := make([]LabValue, MaxLabValues+1)
	for i := range values {
		values[i] = validLabValue()
	}
	body, err := json.Marshal(Request{LabValues: values})
	if err != nil {
		t.Fatal(err)
	}

	h, e := newTestHandler(&mockProvider{})
	c, _ := postInterpret(e, string(body))

	var he *echo.HTTPError
	if !errors.As(h.Interpret(c), &he) {
		t.Fatal("expected HTTP error")
	}
	if he.Code != http.StatusUnprocessableEntity {
		t.Errorf("code = %d, want 422", he.Code)
	}
}

func TestHandler_Interpret_ItemMissingValue(t *testing.T) {
	h, e := newTestHandler(&mockProvider{})
	c, _ := postInterpret(e, `{"lab_values":[{"name":"Hemoglobin","unit":"g/dL"}]}`)

	err := h.Interpret(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) {
		t.Fatalf("expected HTTP error, got %v", err)
	}
	if he.Code != http.StatusUnprocessableEntity {
		t.Errorf("code = %d, want 422", he.Code)
	}
	if he.Message != "lab_values[0]: value is required" {
		t.Errorf("message = %v", he.Message)
	}
}

func TestHandler_Interpret_NameTooLong(t *testing.T) {
	lv := validLabValue()
	lv.Name = strings.Repeat("a", MaxNameLength+1)
	body, err := json.Marshal(Request{LabValues: []LabValue{lv}})
	if err != nil {
		t.Fatal(err)
	}

	h, e := newTestHandler(&mockProvider{})
	c, _ := postInterpret(e, string(body))

	var he *echo.HTTPError
	if !errors.As(h.Interpret(c), &he) {
		t.Fatal("expected HTTP error")
	}
	if he.Code != http.StatusUnprocessableEntity {
		t.Errorf("code = %d, want 422", he.Code)
	}
}

func TestHandler_Interpret_MalformedBody(t *testing.T) {
	h, e := newTestHandler(&mockProvider{})
	c, _ := postInterpret(e, `{not json`)

	err := h.Interpret(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) {
		t.Fatalf("expected HTTP error, got %v", err)
	}
	if he.Code != http.StatusUnprocessableEntity {
		t.Errorf("code = %d, want 422", he.Code)
	}
	if he.Message != "invalid request body" {
		t.Errorf("message = %v", he.Message)
	}
}

func TestHandler_Interpret_WrongValueType(t *testing.T) {
	h, e := newTestHandler(&mockProvider{})
	c, _ := postInterpret(e, `{"lab_values":[{"name":"Hemoglobin","value":"high","unit":"g/dL"}]}`)

	err := h.Interpret(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) {
		t.Fatalf("expected HTTP error, got %v", err)
	}
	if he.Code != http.StatusUnprocessableEntity {
		t.Errorf("code = %d, want 422", he.Code)
	}
}

func TestHandler_Interpret_ProviderFailure(t *testing.T) {
	h, e := newTestHandler(&mockProvider{err: fmt.Errorf("connection refused")})
	c, _ := postInterpret(e, validBody)

	err := h.Interpret(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) {
		t.Fatalf("expected HTTP error, got %v", err)
	}
	if he.Code != http.StatusServiceUnavailable {
		t.Errorf("code = %d, want 503", he.Code)
	}
	if he.Message != "interpretation service unavailable" {
		t.Errorf("message = %v", he.Message)
	}
}

func TestHandler_Interpret_MalformedProviderReply(t *testing.T) {
	h, e := newTestHandler(&mockProvider{reply: "not json"})
	c, _ := postInterpret(e, validBody)

	err := h.Interpret(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) {
		t.Fatalf("expected HTTP error, got %v", err)
	}
	if he.Code != http.StatusServiceUnavailable {
		t.Errorf("code = %d, want 503", he.Code)
	}
	// Same client-facing message as a transport failure.
	if he.Message != "interpretation service unavailable" {
		t.Errorf("message = %v", he.Message)
	}
}

func TestHandler_RegisterRoutes(t *testing.T) {
	h, e := newTestHandler(&mockProvider{})
	h.RegisterRoutes(e)

	var found bool
	for _, r := range e.Routes() {
		if r.Method == http.MethodPost && r.Path == "/interpret" {
			found = true
		}
	}
	if !found {
		t.Error("POST /interpret not registered")
	}
}
