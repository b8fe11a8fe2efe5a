// Package exchange serializes layout documents to and from the JSON
// exchange format consumed by the external renderer. A failed parse is the
// one place a malformed input is a hard error rather than a validation
// issue, because no document exists yet to validate.
package exchange

import (
	"encoding/json"
	"fmt"

	"github.com/gauge-designer/backend/internal/models"
)

// ParseError is the typed error returned when an imported byte stream is
// not a well-formed layout document. The caller's current document must be
// left untouched when this is returned.
type ParseError struct {
	Reason string
	Cause  error
}

func (e *ParseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("layout parse error: %s: %v", e.Reason, e.Cause)
	}
	return fmt.Sprintf("layout parse error: %s", e.Reason)
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}

// Serialize encodes a document to the exchange format. Element order is
// preserved; it is the renderer's z-order.
func Serialize(doc *models.LayoutDocument) ([]byte, error) {
	if doc == nil {
		return nil, &ParseError{Reason: "no document to serialize"}
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("serializing layout: %w", err)
	}
	return data, nil
}

// Deserialize decodes a document from the exchange format. It enforces
// well-formedness only; structural and semantic checks belong to the
// validation engine after the document is stored.
func Deserialize(data []byte) (*models.LayoutDocument, error) {
	if len(data) == 0 {
		return nil, &ParseError{Reason: "input is empty"}
	}

	var doc models.LayoutDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, &ParseError{Reason: "input is not valid JSON", Cause: err}
	}
	return &doc, nil
}
