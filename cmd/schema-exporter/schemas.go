package main

import (
	"fmt"
	"sort"

	"github.com/aoscloud/aos-protocols/unit"
)

// Document pairs one message type's JSON Schema with the example payload
// from the registry.
type Document struct {
	Name    string
	Schema  map[string]any
	Example map[string]any
}

// buildDocuments derives one schema document per registered message type,
// plus one for the envelope. A registered type without a schema here is an
// error: the exported set must never silently lag the registry.
func buildDocuments(registry *unit.Registry) ([]Document, error) {
	builders := map[string]func() map[string]any{
		unit.MessageTypeDesiredStatus:   desiredStatusSchema,
		unit.MessageTypeNewState:        func() map[string]any { return stateDataSchema(unit.MessageTypeNewState, "stateChecksum") },
		unit.MessageTypeUpdateState:     func() map[string]any { return stateDataSchema(unit.MessageTypeUpdateState, "stateChecksum") },
		unit.MessageTypeStateAcceptance: stateAcceptanceSchema,
		unit.MessageTypeStateRequest:    stateRequestSchema,
	}

	registrations := registry.List()
	names := make([]string, 0, len(registrations))
	for name := range registrations {
		names = append(names, name)
	}
	sort.Strings(names)

	documents := make([]Document, 0, len(names)+1)
	for _, name := range names {
		build, ok := builders[name]
		if !ok {
			return nil, fmt.Errorf("no schema defined for registered message type %q", name)
		}

		schema := build()
		schema["$schema"] = "http://json-schema.org/draft-07/schema#"
		schema["$id"] = fmt.Sprintf("%s.v%d.json", name, unit.ProtocolVersion)
		schema["description"] = registrations[name].Description

		documents = append(documents, Document{
			Name:    name,
			Schema:  schema,
			Example: registrations[name].Example,
		})
	}

	envelope := envelopeSchema()
	envelope["$schema"] = "http://json-schema.org/draft-07/schema#"
	envelope["$id"] = fmt.Sprintf("envelope.v%d.json", unit.ProtocolVersion)

	documents = append(documents, Document{
		Name:   "envelope",
		Schema: envelope,
		Example: map[string]any{
			"header": map[string]any{"version": unit.ProtocolVersion, "systemId": "system-0001"},
			"data":   registrations[unit.MessageTypeStateRequest].Example,
		},
	})

	return documents, nil
}

func envelopeSchema() map[string]any {
	return object(map[string]any{
		"header": object(map[string]any{
			"version":  map[string]any{"type": "integer", "const": unit.ProtocolVersion},
			"systemId": idSchema(),
		}, "version", "systemId"),
		"data": map[string]any{"type": "object"},
	}, "header", "data")
}

func desiredStatusSchema() map[string]any {
	return object(map[string]any{
		"messageType": constString(unit.MessageTypeDesiredStatus),
		"nodes": nullableArray(object(map[string]any{
			"nodeId": idSchema(),
			"state":  enum("provisioned", "paused", "active"),
		}, "nodeId", "state")),
		"unitConfig": map[string]any{"type": []string{"object", "null"}},
		"components": nullableArray(object(map[string]any{
			"id":             idSchema(),
			"type":           map[string]any{"type": "string"},
			"version":        versionSchema(),
			"annotations":    map[string]any{"type": "object"},
			"urls":           urlListSchema(),
			"sha256":         sha256Schema(),
			"size":           fileSizeSchema(),
			"decryptionInfo": decryptionInfoSchema(),
		}, "id", "version", "urls", "sha256", "size", "decryptionInfo")),
		"layers": nullableArray(object(map[string]any{
			"id":             idSchema(),
			"version":        versionSchema(),
			"digest":         map[string]any{"type": "string", "pattern": "^sha256:[0-9a-fA-F]{64}$"},
			"urls":           urlListSchema(),
			"sha256":         sha256Schema(),
			"size":           fileSizeSchema(),
			"decryptionInfo": decryptionInfoSchema(),
		}, "id", "version", "digest", "urls", "sha256", "size", "decryptionInfo")),
		"services": nullableArray(object(map[string]any{
			"serviceId":      idSchema(),
			"providerId":     idSchema(),
			"version":        versionSchema(),
			"urls":           urlListSchema(),
			"sha256":         sha256Schema(),
			"size":           fileSizeSchema(),
			"decryptionInfo": decryptionInfoSchema(),
		}, "serviceId", "providerId", "version", "urls", "sha256", "size", "decryptionInfo")),
		"instances": nullableArray(object(map[string]any{
			"serviceId": idSchema(),
			"subjectId": idSchema(),
			"priority": map[string]any{
				"type":             "integer",
				"minimum":          0,
				"exclusiveMaximum": unit.MaxInstancePriority,
			},
			"numInstances": map[string]any{"type": "integer", "minimum": 1, "default": 1},
			"labels":       map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
		}, "serviceId", "subjectId", "priority")),
		"fotaSchedule": scheduleRuleSchema(),
		"sotaSchedule": scheduleRuleSchema(),
		"certificates": nullableArray(object(map[string]any{
			"certificate": base64Schema(),
			"fingerprint": map[string]any{"type": "string", "minLength": 1},
		}, "certificate", "fingerprint")),
		"certificateChains": nullableArray(object(map[string]any{
			"name": map[string]any{"type": "string", "minLength": 1},
			"fingerprints": map[string]any{
				"type":     "array",
				"minItems": 1,
				"items":    map[string]any{"type": "string", "minLength": 1},
			},
		}, "name", "fingerprints")),
	}, "messageType")
}

func stateDataSchema(messageType, checksumField string) map[string]any {
	return object(map[string]any{
		"messageType": constString(messageType),
		"serviceId":   idSchema(),
		"subjectId":   idSchema(),
		"instance":    map[string]any{"type": "integer", "minimum": 0},
		checksumField: checksumSchema(),
		"state":       map[string]any{"type": "string"},
	}, "messageType", "serviceId", "subjectId", "instance", checksumField, "state")
}

func stateAcceptanceSchema() map[string]any {
	return object(map[string]any{
		"messageType": constString(unit.MessageTypeStateAcceptance),
		"serviceId":   idSchema(),
		"subjectId":   idSchema(),
		"instance":    map[string]any{"type": "integer", "minimum": 0},
		"checksum":    checksumSchema(),
		"result":      enum("accepted", "rejected"),
		"reason":      map[string]any{"type": "string"},
	}, "messageType", "serviceId", "subjectId", "instance", "checksum", "result")
}

func stateRequestSchema() map[string]any {
	return object(map[string]any{
		"messageType": constString(unit.MessageTypeStateRequest),
		"serviceId":   idSchema(),
		"subjectId":   idSchema(),
		"instance":    map[string]any{"type": "integer", "minimum": 0},
		"default":     map[string]any{"type": "boolean"},
	}, "messageType", "serviceId", "subjectId", "instance", "default")
}

func decryptionInfoSchema() map[string]any {
	return object(map[string]any{
		"blockAlg": enum("AES256/CBC/pkcs7"),
		"blockIv":  base64Schema(),
		"blockKey": base64Schema(),
		"asymAlg":  enum("RSA/PKCS1v1_5", "RSA/PSS"),
		"receiverInfo": object(map[string]any{
			"serial": map[string]any{"type": "string", "minLength": 1},
			"issuer": base64Schema(),
		}, "serial", "issuer"),
	}, "blockIv", "blockKey", "receiverInfo")
}

func scheduleRuleSchema() map[string]any {
	timeSchema := map[string]any{"type": "string", "pattern": "^[0-9]{2}:[0-9]{2}(:[0-9]{2})?$"}
	schema := object(map[string]any{
		"ttl":  map[string]any{"type": "integer", "minimum": 0},
		"type": enum("force", "trigger", "timetable"),
		"timetable": map[string]any{
			"type":     "array",
			"minItems": 1,
			"items": object(map[string]any{
				"dayOfWeek": map[string]any{"type": "integer", "minimum": 1, "maximum": 7},
				"timeSlots": map[string]any{
					"type":     "array",
					"minItems": 1,
					"items": object(map[string]any{
						"start": timeSchema,
						"end":   timeSchema,
					}, "start", "end"),
				},
			}, "dayOfWeek", "timeSlots"),
		},
	}, "type")
	// An explicit null schedule means "no schedule", same as absence.
	schema["type"] = []string{"object", "null"}
	return schema
}

func idSchema() map[string]any {
	return map[string]any{
		"type":      "string",
		"minLength": 1,
		"maxLength": unit.MaxIDLength,
		"pattern":   "^[A-Za-z0-9_.:-]+$",
	}
}

func versionSchema() map[string]any {
	return map[string]any{"type": "string", "minLength": 1}
}

func sha256Schema() map[string]any {
	return map[string]any{"type": "string", "pattern": "^[0-9a-fA-F]{64}$"}
}

func checksumSchema() map[string]any {
	return map[string]any{"type": "string", "minLength": 1, "maxLength": unit.MaxChecksumLength}
}

func fileSizeSchema() map[string]any {
	return map[string]any{"type": "integer", "minimum": 0, "maximum": unit.MaxFileSize}
}

func urlListSchema() map[string]any {
	return map[string]any{
		"type":     "array",
		"minItems": 1,
		"items":    map[string]any{"type": "string", "format": "uri"},
	}
}

func base64Schema() map[string]any {
	return map[string]any{"type": "string", "contentEncoding": "base64"}
}

func constString(value string) map[string]any {
	return map[string]any{"type": "string", "const": value}
}

func enum(members ...string) map[string]any {
	return map[string]any{"type": "string", "enum": members}
}

func object(properties map[string]any, required ...string) map[string]any {
	if required == nil {
		required = []string{}
	}
	return map[string]any{
		"type":       "object",
		"properties": properties,
		"required":   required,
	}
}

// nullableArray wraps an item schema into an array that also accepts JSON
// null, matching the protocol's "null means no change" convention for
// desiredStatus list fields.
func nullableArray(items map[string]any) map[string]any {
	return map[string]any{
		"type":  []string{"array", "null"},
		"items": items,
	}
}
