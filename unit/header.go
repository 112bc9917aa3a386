package unit

import (
	"github.com/aoscloud/aos-protocols/errors"
)

// ProtocolVersion is the single Unit-Cloud protocol version this build
// speaks. The header gate rejects any other value before the message body
// is interpreted.
const ProtocolVersion uint64 = 6

// MessageHeader is the envelope header identifying protocol version and
// system identity. It is consumed before any payload parsing.
type MessageHeader struct {
	Version  uint64 `json:"version"`
	SystemID string `json:"systemId"`
}

// Validate checks the version literal and system identity.
func (h MessageHeader) Validate() error {
	if h.Version != ProtocolVersion {
		return errors.UnsupportedVersion(h.Version, ProtocolVersion)
	}
	var ve errors.ValidationErrors
	ve.Collect("systemId", ID(h.SystemID).Validate())
	return ve.ErrOrNil()
}

// Message is an outgoing envelope: header plus a typed payload, ready for
// Encode.
type Message struct {
	Header MessageHeader
	Data   Payload
}

// NewMessage wraps a payload into a versioned envelope for the given
// system.
func NewMessage(systemID string, payload Payload) *Message {
	return &Message{
		Header: MessageHeader{Version: ProtocolVersion, SystemID: systemID},
		Data:   payload,
	}
}

// ReceivedMessage is a decoded incoming envelope. It is immutable after
// Decode: the header, the typed payload, and a locally generated receipt id
// are set once and only read afterwards.
//
// The receipt id never appears on the wire; it exists so callers can
// correlate log lines and reconciliation outcomes with one received
// message.
type ReceivedMessage struct {
	receiptID string
	header    MessageHeader
	payload   Payload
}

// ReceiptID returns the locally generated identifier of this reception.
func (m *ReceivedMessage) ReceiptID() string {
	return m.receiptID
}

// Header returns the envelope header.
func (m *ReceivedMessage) Header() MessageHeader {
	return m.header
}

// Payload returns the decoded, validated payload. Callers switch on the
// concrete type or on Payload.MessageType.
func (m *ReceivedMessage) Payload() Payload {
	return m.payload
}
