package unit

import (
	"encoding/base64"
	"encoding/json"
	"log/slog"

	"github.com/aoscloud/aos-protocols/errors"
)

// Redacted is the placeholder emitted wherever a sensitive value is rendered
// for diagnostics instead of the wire.
const Redacted = "**********"

// SensitiveBytes holds secret material (symmetric keys, initialization
// vectors) whose value must never leak through logs or error messages.
//
// The default textual renderings (String, slog.LogValuer, %v formatting)
// always produce the Redacted placeholder. Reveal is the only path to the
// raw bytes. On the wire the value is base64 text.
//
// A SensitiveBytes parsed from redacted diagnostic output carries no value:
// it round-trips through diagnostic encoding but refuses wire encoding with
// errors.ErrSecretUnavailable rather than emitting the placeholder where a
// correct value is contractually required. Wire text that is not valid
// base64 also yields a value-less secret, marked invalid; the enclosing
// fragment reports it as a field violation during validation so a bad
// secret batches with every other constraint failure in the same decode.
type SensitiveBytes struct {
	value    []byte
	redacted bool
	invalid  bool
}

// NewSensitiveBytes wraps raw secret bytes. The slice is copied.
func NewSensitiveBytes(raw []byte) SensitiveBytes {
	value := make([]byte, len(raw))
	copy(value, raw)
	return SensitiveBytes{value: value}
}

// Reveal returns a copy of the raw secret bytes. This is the only accessor
// that discloses the value.
func (s SensitiveBytes) Reveal() []byte {
	out := make([]byte, len(s.value))
	copy(out, s.value)
	return out
}

// Len returns the secret length in bytes without revealing the value.
func (s SensitiveBytes) Len() int {
	return len(s.value)
}

// IsRedacted reports whether this value is a placeholder parsed from
// diagnostic output and therefore cannot be wire-encoded.
func (s SensitiveBytes) IsRedacted() bool {
	return s.redacted
}

// Equal reports value equality. Used by go-cmp in tests.
func (s SensitiveBytes) Equal(other SensitiveBytes) bool {
	if s.redacted != other.redacted || s.invalid != other.invalid || len(s.value) != len(other.value) {
		return false
	}
	for i := range s.value {
		if s.value[i] != other.value[i] {
			return false
		}
	}
	return true
}

// String implements fmt.Stringer and never reveals the value.
func (s SensitiveBytes) String() string {
	return Redacted
}

// LogValue implements slog.LogValuer so structured logging of any record
// holding a secret can never leak it.
func (s SensitiveBytes) LogValue() slog.Value {
	return slog.StringValue(Redacted)
}

// encode renders the secret for the given mode: base64 of the raw bytes for
// the wire, the Redacted placeholder for diagnostics. Wire encoding of a
// value-less secret, whether redacted or invalid, fails loudly.
func (s SensitiveBytes) encode(mode EncodeMode) (string, error) {
	if mode == EncodeRedacted {
		return Redacted, nil
	}
	if s.redacted || s.invalid {
		return "", errors.ErrSecretUnavailable
	}
	return base64.StdEncoding.EncodeToString(s.value), nil
}

// MarshalJSON implements json.Marshaler in wire mode. Diagnostic rendering
// goes through EncodeRedacted on the enclosing message instead.
func (s SensitiveBytes) MarshalJSON() ([]byte, error) {
	text, err := s.encode(EncodeWire)
	if err != nil {
		return nil, err
	}
	return json.Marshal(text)
}

// UnmarshalJSON implements json.Unmarshaler. The wire form is base64 text;
// the Redacted placeholder is accepted and produces a value-less secret so
// diagnostic output stays parseable. Malformed base64 does not abort the
// decode: it yields an invalid value that the enclosing fragment reports
// during validation, keeping the violation batched with its field path.
func (s *SensitiveBytes) UnmarshalJSON(data []byte) error {
	var text string
	if err := json.Unmarshal(data, &text); err != nil {
		return err
	}
	if text == Redacted {
		*s = SensitiveBytes{redacted: true}
		return nil
	}
	value, err := base64.StdEncoding.DecodeString(text)
	if err != nil {
		*s = SensitiveBytes{invalid: true}
		return nil
	}
	*s = SensitiveBytes{value: value}
	return nil
}
