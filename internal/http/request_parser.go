package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"expensetracker/internal/core"
)

// maxBodyBytes caps request bodies; every form the API accepts is tiny.
const maxBodyBytes = 64 << 10

// RequestBodyParser reads a JSON or form-encoded body once and serves field
// lookups from whichever encoding was sent.
type RequestBodyParser struct {
	body        []byte
	contentType string
	jsonData    map[string]any
	formData    url.Values
	parsed      bool
	err         error
}

// NewRequestBodyParser creates a parser for the given request.
func NewRequestBodyParser(w http.ResponseWriter, r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{contentType: r.Header.Get("Content-Type")}
	if r.Body != nil {
		p.body, p.err = io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	}
	return p
}

// Parse decodes the body. An empty body parses as an empty form.
func (p *RequestBodyParser) Parse() error {
	if p.parsed {
		return p.err
	}
	p.parsed = true

	if p.err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(p.err, &tooLarge) {
			p.err = fmt.Errorf("%w: request body too large", core.ErrValidation)
		}
		return p.err
	}

	trimmed := bytes.TrimSpace(p.body)
	if len(trimmed) == 0 {
		p.formData = url.Values{}
		return nil
	}

	if trimmed[0] == '{' || strings.HasPrefix(p.contentType, "application/json") {
		dec := json.NewDecoder(bytes.NewReader(trimmed))
		dec.UseNumber()
		p.jsonData = make(map[string]any)
		if err := dec.Decode(&p.jsonData); err != nil {
			p.err = fmt.Errorf("%w: malformed JSON body", core.ErrValidation)
			return p.err
		}
		return nil
	}

	p.formData, p.err = url.ParseQuery(string(trimmed))
	if p.err != nil {
		p.err = fmt.Errorf("%w: malformed form body", core.ErrValidation)
	}
	return p.err
}

// Get returns a sanitised string value, or "" when absent.
func (p *RequestBodyParser) Get(key string) string {
	if p.jsonData != nil {
		if val, ok := p.jsonData[key]; ok {
			return sanitizeInput(stringValue(val))
		}
		return ""
	}
	if p.formData != nil {
		return sanitizeInput(p.formData.Get(key))
	}
	return ""
}

// Secret returns a value verbatim. Passwords are never trimmed.
func (p *RequestBodyParser) Secret(key string) string {
	if p.jsonData != nil {
		if val, ok := p.jsonData[key].(string); ok {
			return val
		}
		return ""
	}
	if p.formData != nil {
		return p.formData.Get(key)
	}
	return ""
}

// Has reports whether key was sent with a non-null, non-blank value.
func (p *RequestBodyParser) Has(key string) bool {
	if p.jsonData != nil {
		val, ok := p.jsonData[key]
		return ok && val != nil && strings.TrimSpace(stringValue(val)) != ""
	}
	return p.formData != nil && strings.TrimSpace(p.formData.Get(key)) != ""
}

// Bool interprets checkbox-style values ("on", "true", "1", "yes").
func (p *RequestBodyParser) Bool(key string) bool {
	switch strings.ToLower(p.Get(key)) {
	case "1", "true", "on", "yes":
		return true
	}
	return false
}

// Money parses a non-negative amount, treating a missing field as zero.
func (p *RequestBodyParser) Money(key string) (core.Money, error) {
	cents, err := core.ParseNonNegativeCents(p.Get(key))
	if err != nil {
		return core.Money{}, fmt.Errorf("%s: %w", key, err)
	}
	return core.Money{Cents: cents}, nil
}

// IsJSON returns true if the parsed content was JSON.
func (p *RequestBodyParser) IsJSON() bool {
	return p.jsonData != nil
}

func stringValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case json.Number:
		return val.String()
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}
