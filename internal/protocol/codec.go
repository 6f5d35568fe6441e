package protocol

import (
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/dkeye/commcall/internal/core"
)

var validate = validator.New()

// Envelope carries only the discriminating type field; handlers parse
// the full payload once the type is known.
type Envelope struct {
	Type string `json:"type"`
}

func Sniff(data []byte) (string, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return "", fmt.Errorf("bad envelope: %w", err)
	}
	return env.Type, nil
}

// Parse unmarshals an inbound payload and checks its required fields.
func Parse[T any](data []byte) (*T, error) {
	var p T
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("bad payload: %w", err)
	}
	if err := validate.Struct(&p); err != nil {
		return nil, fmt.Errorf("invalid payload: %w", err)
	}
	return &p, nil
}

// Encode renders one outbound event as a frame.
func Encode(v any) (core.Frame, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode event: %w", err)
	}
	return core.Frame(b), nil
}
