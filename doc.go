// Package aosprotocols is the root of the aos-protocols module, the typed
// message schema and validation engine for the AosUnit device-to-cloud
// management protocol.
//
// The module is organized as:
//
//   - unit: the AosUnit protocol itself — primitive constrained types, leaf
//     fragments, composite entities, the five top-level messages, the
//     header/version gate, and the decode/encode engine
//   - errors: the codec error taxonomy and batch violation reporting
//   - cmd/schema-exporter: JSON Schema export for the registered message
//     types
//
// Transport, persistence, and desired-state reconciliation are external
// collaborators; this module starts and ends at the wire bytes.
package aosprotocols
