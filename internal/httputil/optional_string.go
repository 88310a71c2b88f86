package httputil

import (
	"bytes"
	"encoding/json"

	"blockwriter/internal/domain/services"
)

var jsonNull = []byte("null")

// OptionalString is a nullable JSON string that remembers whether the key was sent.
// PATCH/PUT bodies use it for folderId, documentType, category, university and major:
// an absent key keeps the stored value, null clears it.
type OptionalString struct {
	Present bool
	Value   *string
}

// UnmarshalJSON only runs for keys present in the body
func (o *OptionalString) UnmarshalJSON(data []byte) error {
	o.Present = true
	o.Value = nil
	if bytes.Equal(bytes.TrimSpace(data), jsonNull) {
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	o.Value = &s
	return nil
}

// Field converts to the service-layer tri-state
func (o OptionalString) Field() services.OptionalField {
	return services.OptionalField{Present: o.Present, Value: o.Value}
}
