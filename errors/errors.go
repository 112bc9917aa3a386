// Package errors provides standardized error handling patterns for the
// aos-protocols codec. It includes the decode error taxonomy, standard error
// variables, batch field-violation reporting, and helper functions for
// consistent error wrapping across the module.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Standard error variables for the decode/encode pipeline. Every error
// returned by the codec wraps exactly one of these, so callers can branch
// with errors.Is without string matching.
var (
	// ErrMalformedInput indicates the input was not valid JSON or not a
	// JSON object where one was required.
	ErrMalformedInput = errors.New("malformed input")

	// ErrUnsupportedVersion indicates the envelope header carried a
	// protocol version this build does not speak.
	ErrUnsupportedVersion = errors.New("unsupported protocol version")

	// ErrUnknownMessageType indicates the messageType discriminator value
	// is not in the registered set.
	ErrUnknownMessageType = errors.New("unknown message type")

	// ErrMissingField indicates a required field was absent.
	ErrMissingField = errors.New("missing required field")

	// ErrValidation indicates one or more field constraints were violated.
	// The concrete error is a *ValidationErrors carrying every violation.
	ErrValidation = errors.New("field validation failed")

	// ErrSecretUnavailable indicates a sensitive value was asked to
	// serialize for the wire but only a redacted placeholder is held.
	ErrSecretUnavailable = errors.New("secret value unavailable")

	// ErrAlreadyRegistered indicates a duplicate message type registration.
	ErrAlreadyRegistered = errors.New("message type already registered")
)

// IsMalformed reports whether err stems from unparseable input.
func IsMalformed(err error) bool {
	return errors.Is(err, ErrMalformedInput)
}

// IsUnsupportedVersion reports whether err stems from a version gate reject.
func IsUnsupportedVersion(err error) bool {
	return errors.Is(err, ErrUnsupportedVersion)
}

// IsUnknownMessageType reports whether err stems from an unrecognized
// discriminator value.
func IsUnknownMessageType(err error) bool {
	return errors.Is(err, ErrUnknownMessageType)
}

// IsValidation reports whether err stems from field constraint violations.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// Violation describes a single field constraint failure.
type Violation struct {
	// Field is the dotted wire-name path from the message root,
	// e.g. "components[1].decryptionInfo.blockAlg". Empty for violations
	// raised on the value itself before it is bound to a field.
	Field string

	// Constraint describes the violated rule, including the offending
	// value where it is safe to disclose. Sensitive values must never
	// appear here.
	Constraint string
}

// Error implements the error interface.
func (v Violation) Error() string {
	if v.Field == "" {
		return v.Constraint
	}
	return fmt.Sprintf("%s: %s", v.Field, v.Constraint)
}

// ValidationErrors collects every field violation found in a single decode
// or validation pass. Decode is all-or-nothing: callers receive either a
// fully valid record or the complete violation set, never a partial record.
type ValidationErrors struct {
	Violations []Violation
}

// Error implements the error interface, joining all violations.
func (e *ValidationErrors) Error() string {
	if len(e.Violations) == 0 {
		return ErrValidation.Error()
	}
	parts := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		parts[i] = v.Error()
	}
	return fmt.Sprintf("%s: %s", ErrValidation.Error(), strings.Join(parts, "; "))
}

// Unwrap makes errors.Is(err, ErrValidation) hold for every ValidationErrors.
func (e *ValidationErrors) Unwrap() error {
	return ErrValidation
}

// Add appends a violation for the given field.
func (e *ValidationErrors) Add(field, constraint string) {
	e.Violations = append(e.Violations, Violation{Field: field, Constraint: constraint})
}

// Collect merges err into the set under the given field path. A nested
// *ValidationErrors has each of its violations re-rooted below field; any
// other error becomes a single violation with err.Error() as the constraint.
// A nil err is a no-op, so callers can collect unconditionally.
func (e *ValidationErrors) Collect(field string, err error) {
	if err == nil {
		return
	}

	var nested *ValidationErrors
	if errors.As(err, &nested) {
		for _, v := range nested.Violations {
			e.Violations = append(e.Violations, Violation{
				Field:      joinField(field, v.Field),
				Constraint: v.Constraint,
			})
		}
		return
	}

	e.Add(field, err.Error())
}

// ErrOrNil returns the collected set as an error, or nil when no violation
// was recorded. This is the standard tail of every Validate method.
func (e *ValidationErrors) ErrOrNil() error {
	if len(e.Violations) == 0 {
		return nil
	}
	return e
}

// joinField joins a parent field path with a nested one.
func joinField(parent, child string) string {
	switch {
	case parent == "":
		return child
	case child == "":
		return parent
	case strings.HasPrefix(child, "["):
		return parent + child
	default:
		return parent + "." + child
	}
}

// Wrap creates a standardized error with context following the pattern:
// "component.method: action failed: %w"
func Wrap(err error, component, method, action string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s.%s: %s failed: %w", component, method, action, err)
}

// Malformed wraps err as a malformed-input error with context.
func Malformed(err error, component, method, action string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s.%s: %s failed: %w: %w", component, method, action, ErrMalformedInput, err)
}

// MissingField returns a missing-required-field error naming the field.
func MissingField(field string) error {
	return fmt.Errorf("%w: %s", ErrMissingField, field)
}

// UnsupportedVersion returns a version gate error naming both versions.
func UnsupportedVersion(got, want uint64) error {
	return fmt.Errorf("%w: got %d, supported %d", ErrUnsupportedVersion, got, want)
}

// UnknownMessageType returns a discriminator lookup error naming the value.
func UnknownMessageType(messageType string) error {
	return fmt.Errorf("%w: %q", ErrUnknownMessageType, messageType)
}
