package schema

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/PratikDhanave/event-collector/internal/models"
)

//go:embed postEventsRequest.json
var postEventsRequest []byte

var (
	// ErrInvalidJSON means the body could not be parsed.
	ErrInvalidJSON = errors.New("body is not a valid JSON document")
	// ErrSchemaViolation means the body parsed but is not an event or a list of events.
	ErrSchemaViolation = errors.New("JSON document does not conform to the given schema")
)

// Validator checks request bodies against the events envelope schema.
type Validator struct {
	schema *gojsonschema.Schema
}

// NewValidator compiles the embedded schema.
func NewValidator() (*Validator, error) {
	s, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(postEventsRequest))
	if err != nil {
		return nil, fmt.Errorf("compile events schema: %w", err)
	}
	return &Validator{schema: s}, nil
}

// Validate parses body and returns its events in submission order.
// A single object becomes a one-element list.
func (v *Validator) Validate(body []byte) ([]models.Event, error) {
	var doc json.RawMessage
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}

	result, err := v.schema.Validate(gojsonschema.NewBytesLoader(doc))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			msgs = append(msgs, fmt.Sprintf("%s: %s", desc.Field(), desc.Description()))
		}
		return nil, fmt.Errorf("%w: %s", ErrSchemaViolation, strings.Join(msgs, "; "))
	}

	trimmed := bytes.TrimSpace(doc)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var events []models.Event
		if err := json.Unmarshal(trimmed, &events); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
		}
		return events, nil
	}
	return []models.Event{models.Event(trimmed)}, nil
}
