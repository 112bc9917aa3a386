package unit

import "encoding/json"

// Payload represents the body of an AosUnit protocol message.
// Every top-level message type implements this interface to expose its
// discriminator, validation, and canonical wire serialization.
//
// Payloads are immutable once decoded: Decode constructs them atomically
// from wire bytes, re-validating every constraint, and never exposes a
// partially valid record. A changed message is a newly decoded record.
type Payload interface {
	// MessageType returns the wire discriminator for this message kind,
	// the literal value of the "messageType" field.
	MessageType() string

	// Validate checks every field constraint of the payload and its
	// nested fragments. It returns nil or a *errors.ValidationErrors
	// carrying the complete violation set; validation is pure and never
	// stops at the first failure.
	Validate() error

	// JSON serialization using standard Go interfaces. MarshalJSON
	// produces the canonical wire form (aliased field names, base64
	// binary fields, secrets revealed). Diagnostic rendering with
	// secrets redacted goes through Encode with EncodeRedacted.
	json.Marshaler
	json.Unmarshaler
}

// modeMarshaler is implemented by payloads and fragments that carry secret
// material and therefore need an explicit encode mode.
type modeMarshaler interface {
	marshalMode(mode EncodeMode) ([]byte, error)
}
