// Package unit implements the wire-level message schema of the AosUnit
// device-to-cloud management protocol: typed, versioned JSON messages
// describing desired device configuration, software and firmware
// components, scheduling windows, certificates, and device state
// synchronization.
//
// # Overview
//
// The package is a pure codec. Decoding turns raw envelope bytes into an
// immutable, fully validated ReceivedMessage; encoding is the mirror.
// There is no I/O, no shared mutable state, and no locking beyond the
// read-mostly message type registry, so any number of goroutines may decode
// and encode concurrently without coordination.
//
// The decode pipeline is strictly staged:
//
//	raw bytes
//	  -> envelope parse            (errors.ErrMalformedInput)
//	  -> header version gate       (errors.ErrUnsupportedVersion)
//	  -> discriminator lookup      (errors.ErrUnknownMessageType)
//	  -> body decode + validation  (errors.ErrValidation, batched)
//
// A version mismatch short-circuits before the body is ever inspected.
// Validation is all-or-nothing: every field violation found anywhere in the
// body is collected into one *errors.ValidationErrors, and no partially
// valid record is ever returned.
//
// # Message types
//
// Five top-level messages exist, discriminated by the literal messageType
// field inside the envelope's data object:
//
//   - desiredStatus: cloud-issued desired-configuration snapshot
//   - newState: unit reports a service instance state change
//   - updateState: cloud pushes a new service instance state
//   - stateAcceptance: cloud accepts or rejects a reported state
//   - stateRequest: unit requests the current or default state
//
// newState and updateState share the StateData fragment by composition;
// only their discriminators differ, and each rejects the other's tag.
//
// # Absent, null, and empty
//
// For every desiredStatus list field the protocol distinguishes "no change
// to this category" (field absent or explicitly null, decoded as a nil
// slice) from "clear this category" (empty JSON list, decoded as an empty
// non-nil slice). Both decode and encode preserve the distinction exactly.
//
// # Sensitive values
//
// Symmetric keys and initialization vectors travel as base64 text on the
// wire but are held as SensitiveBytes in memory: their String and slog
// renderings always produce a redaction placeholder, and Reveal is the only
// accessor for the raw bytes. Encode takes an explicit mode:
//
//	wire, err := unit.Encode(msg, unit.EncodeWire)     // secrets as base64
//	diag, err := unit.Encode(msg, unit.EncodeRedacted) // secrets redacted
//
// Wire-encoding a record whose secret holds only a redacted placeholder
// fails with errors.ErrSecretUnavailable rather than emitting the
// placeholder where a correct value is contractually required.
//
// # Usage
//
//	received, err := unit.Decode(raw)
//	if err != nil {
//	    // errors.IsUnsupportedVersion, errors.IsUnknownMessageType,
//	    // errors.IsValidation distinguish the failure stages
//	}
//	switch payload := received.Payload().(type) {
//	case *unit.DesiredStatus:
//	    // reconcile desired configuration
//	case *unit.StateAcceptance:
//	    // resolve pending state report
//	}
//
// Consumer-side invariants deliberately not enforced here: IV/key length
// consistency with the declared block algorithm, and certificate chain
// fingerprint references (see DesiredStatus.UnknownChainFingerprints).
package unit
