// Package errors provides standardized error handling patterns for the
// aos-protocols codec.
//
// # Overview
//
// The package defines the error taxonomy of the AosUnit decode pipeline:
// malformed input, unsupported protocol version, unknown message type,
// missing required fields, and field constraint violations. Every error the
// codec returns wraps exactly one of the standard error variables, so callers
// can branch with errors.Is rather than string matching.
//
// # Batch violation reporting
//
// Field constraint failures are collected, not fail-fast. A single decode
// attempt surfaces every violation it found in one *ValidationErrors, each
// violation naming the dotted wire-name path of the offending field:
//
//	var ve errors.ValidationErrors
//	ve.Collect("serviceId", s.ServiceID.Validate())
//	ve.Collect("stateChecksum", validateChecksum(s.Checksum))
//	return ve.ErrOrNil()
//
// Collect re-roots nested violation sets below the caller's field name, so
// composite records simply delegate to their fragments and the full path
// (for example "components[1].decryptionInfo.blockAlg") assembles itself.
//
// # Error kind checks
//
// Callers distinguish decode outcomes with the Is* helpers:
//
//	if errors.IsUnsupportedVersion(err) {
//	    // header gate reject, body was never parsed
//	}
//	if errors.IsUnknownMessageType(err) {
//	    // discriminator not registered; distinct from an invalid body
//	}
//	if errors.IsValidation(err) {
//	    var ve *errors.ValidationErrors
//	    stderrors.As(err, &ve) // inspect ve.Violations
//	}
//
// # Wrapping convention
//
// Context wrapping follows the "component.method: action failed: %w" pattern
// throughout the module:
//
//	return errors.Wrap(err, "Registry", "Register", "factory validation")
package errors
