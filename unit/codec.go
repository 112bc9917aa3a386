package unit

import (
	"encoding/json"
	stderrors "errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/aoscloud/aos-protocols/errors"
)

// EncodeMode selects how sensitive fields render during Encode.
type EncodeMode int

const (
	// EncodeWire produces the canonical wire form: secrets as base64.
	EncodeWire EncodeMode = iota
	// EncodeRedacted produces a diagnostic form with every sensitive
	// value replaced by the Redacted placeholder. The output parses back
	// but cannot be wire-encoded again.
	EncodeRedacted
)

// envelopeWire is the outer message form: the header is parsed and gated
// first, the body stays raw until the discriminator selects a schema.
type envelopeWire struct {
	Header *MessageHeader  `json:"header"`
	Data   json.RawMessage `json:"data"`
}

// discriminatorProbe extracts only the messageType tag from a raw body.
type discriminatorProbe struct {
	MessageType string `json:"messageType"`
}

// Decode parses, gates, dispatches and validates one incoming message using
// the default registry. See DecodeWith.
func Decode(data []byte) (*ReceivedMessage, error) {
	return DecodeWith(defaultRegistry, data)
}

// DecodeWith turns raw envelope bytes into a validated ReceivedMessage.
//
// The pipeline is: envelope parse, header version gate, discriminator
// lookup, body decode, constraint validation. It is all-or-nothing: any
// failure at any stage returns a nil message, and constraint violations are
// collected across the whole body before being surfaced together. A version
// mismatch short-circuits before the body is ever inspected.
func DecodeWith(registry *Registry, data []byte) (*ReceivedMessage, error) {
	var envelope envelopeWire
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, errors.Malformed(err, "codec", "Decode", "envelope parse")
	}
	if envelope.Header == nil {
		return nil, errors.MissingField("header")
	}

	if envelope.Header.Version != ProtocolVersion {
		return nil, errors.UnsupportedVersion(envelope.Header.Version, ProtocolVersion)
	}
	if err := envelope.Header.Validate(); err != nil {
		var ve errors.ValidationErrors
		ve.Collect("header", err)
		return nil, &ve
	}

	payload, err := decodeBody(registry, envelope.Data)
	if err != nil {
		return nil, err
	}

	return &ReceivedMessage{
		receiptID: uuid.New().String(),
		header:    *envelope.Header,
		payload:   payload,
	}, nil
}

// DecodeBody decodes and validates a bare message body (no envelope) using
// the default registry.
func DecodeBody(data []byte) (Payload, error) {
	return decodeBody(defaultRegistry, data)
}

func decodeBody(registry *Registry, data []byte) (Payload, error) {
	if len(data) == 0 {
		return nil, errors.MissingField("data")
	}

	var probe discriminatorProbe
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, errors.Malformed(err, "codec", "Decode", "body parse")
	}
	if probe.MessageType == "" {
		return nil, errors.MissingField("messageType")
	}

	payload := registry.Create(probe.MessageType)
	if payload == nil {
		return nil, errors.UnknownMessageType(probe.MessageType)
	}

	if err := json.Unmarshal(data, payload); err != nil {
		if errors.IsValidation(err) || errors.IsMalformed(err) {
			return nil, err
		}
		// A JSON value of the wrong type for a known field is a constraint
		// violation on that field, not malformed input.
		var typeErr *json.UnmarshalTypeError
		if stderrors.As(err, &typeErr) && typeErr.Field != "" {
			var ve errors.ValidationErrors
			ve.Add(typeErr.Field, fmt.Sprintf("cannot be decoded from JSON %s", typeErr.Value))
			return nil, &ve
		}
		return nil, errors.Malformed(err, "codec", "Decode", "body decode")
	}

	if err := payload.Validate(); err != nil {
		return nil, err
	}
	return payload, nil
}

// Encode renders an outgoing message in the requested mode.
//
// In EncodeWire mode the output is the canonical wire form and encoding a
// structurally valid message never fails — except when a sensitive field
// holds only a redacted placeholder, which fails loudly rather than leaking
// the placeholder into the wire. In EncodeRedacted mode secrets render as
// the placeholder; the output is for diagnostics and logs only.
func Encode(message *Message, mode EncodeMode) ([]byte, error) {
	if message == nil || message.Data == nil {
		return nil, errors.MissingField("data")
	}
	if err := message.Header.Validate(); err != nil {
		var ve errors.ValidationErrors
		ve.Collect("header", err)
		return nil, &ve
	}
	if err := message.Data.Validate(); err != nil {
		return nil, err
	}

	body, err := encodePayload(message.Data, mode)
	if err != nil {
		return nil, err
	}

	return json.Marshal(struct {
		Header MessageHeader   `json:"header"`
		Data   json.RawMessage `json:"data"`
	}{Header: message.Header, Data: body})
}

// EncodePayload renders a bare message body in the requested mode, without
// the envelope.
func EncodePayload(payload Payload, mode EncodeMode) ([]byte, error) {
	if payload == nil {
		return nil, errors.MissingField("data")
	}
	if err := payload.Validate(); err != nil {
		return nil, err
	}
	return encodePayload(payload, mode)
}

func encodePayload(payload Payload, mode EncodeMode) ([]byte, error) {
	if mm, ok := payload.(modeMarshaler); ok {
		return mm.marshalMode(mode)
	}
	// Payloads without secret material render identically in both modes.
	return payload.MarshalJSON()
}
