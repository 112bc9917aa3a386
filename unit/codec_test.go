package unit

import (
	"encoding/base64"
	"encoding/json"
	"testing"

	"github.com/aoscloud/aos-protocols/errors"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSystemID = "system-0001"

func TestDecode_RoundTripEveryMessageType(t *testing.T) {
	payloads := []Payload{
		&DesiredStatus{
			Services:  []DesiredServiceInfo{testService()},
			Instances: []DesiredInstanceInfo{{ServiceID: "service1", SubjectID: "subject1", Priority: 1, NumInstances: 1}},
		},
		&NewState{StateData: testStateData()},
		&UpdateState{StateData: testStateData()},
		&StateAcceptance{ServiceID: "service1", SubjectID: "subject1", Checksum: "4d", Result: ResultAccepted},
		&StateRequest{ServiceID: "service1", SubjectID: "subject1", Default: true},
	}

	for _, payload := range payloads {
		t.Run(payload.MessageType(), func(t *testing.T) {
			wire, err := Encode(NewMessage(testSystemID, payload), EncodeWire)
			require.NoError(t, err)

			received, err := Decode(wire)
			require.NoError(t, err)

			assert.Equal(t, ProtocolVersion, received.Header().Version)
			assert.Equal(t, testSystemID, received.Header().SystemID)
			assert.NotEmpty(t, received.ReceiptID())
			assert.Equal(t, payload.MessageType(), received.Payload().MessageType())

			if diff := cmp.Diff(payload, received.Payload()); diff != "" {
				t.Errorf("round trip mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDecode_VersionGateShortCircuits(t *testing.T) {
	// The body is malformed in a way that would also fail, but the
	// version gate must reject first without ever parsing it.
	raw := `{
		"header": {"version": 5, "systemId": "system-0001"},
		"data": {"messageType": "bogus", "priority": "not even a number"}
	}`

	_, err := Decode([]byte(raw))
	require.Error(t, err)
	assert.True(t, errors.IsUnsupportedVersion(err))
	assert.False(t, errors.IsUnknownMessageType(err))
	assert.False(t, errors.IsValidation(err))
	assert.Contains(t, err.Error(), "5")
}

func TestDecode_MalformedInput(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"not json", "this is not json"},
		{"truncated", `{"header": {"version": 6`},
		{"not an object", `[1, 2, 3]`},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := Decode([]byte(test.raw))
			require.Error(t, err)
			assert.True(t, errors.IsMalformed(err))
		})
	}
}

func TestDecode_MissingHeader(t *testing.T) {
	_, err := Decode([]byte(`{"data": {"messageType": "stateRequest"}}`))
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrMissingField)
	assert.Contains(t, err.Error(), "header")
}

func TestDecode_InvalidSystemID(t *testing.T) {
	raw := `{
		"header": {"version": 6, "systemId": ""},
		"data": {"messageType": "stateRequest", "serviceId": "s", "subjectId": "s", "instance": 0, "default": false}
	}`

	_, err := Decode([]byte(raw))
	require.Error(t, err)
	assert.Contains(t, violationFieldsOf(t, err), "header.systemId")
}

func TestDecode_UnknownMessageType(t *testing.T) {
	raw := `{
		"header": {"version": 6, "systemId": "system-0001"},
		"data": {"messageType": "rebootNow"}
	}`

	_, err := Decode([]byte(raw))
	require.Error(t, err)
	assert.True(t, errors.IsUnknownMessageType(err))
	assert.False(t, errors.IsValidation(err), "unknown type must be distinct from invalid body")
	assert.Contains(t, err.Error(), "rebootNow")
}

func TestDecode_MissingMessageType(t *testing.T) {
	raw := `{
		"header": {"version": 6, "systemId": "system-0001"},
		"data": {"serviceId": "service1"}
	}`

	_, err := Decode([]byte(raw))
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrMissingField)
	assert.Contains(t, err.Error(), "messageType")
}

func TestDecode_MissingData(t *testing.T) {
	_, err := Decode([]byte(`{"header": {"version": 6, "systemId": "system-0001"}}`))
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrMissingField)
}

func TestDecode_BatchesViolationsAcrossBody(t *testing.T) {
	body := map[string]any{
		"messageType": "desiredStatus",
		"instances": []any{
			map[string]any{"serviceId": "service1", "subjectId": "subject1", "priority": 1000000},
			map[string]any{"serviceId": "", "subjectId": "subject1", "priority": 0, "numInstances": 0},
		},
		"nodes": []any{
			map[string]any{"nodeId": "node0", "state": "sleeping"},
		},
	}
	raw, err := json.Marshal(map[string]any{
		"header": map[string]any{"version": 6, "systemId": testSystemID},
		"data":   body,
	})
	require.NoError(t, err)

	_, err = Decode(raw)
	require.Error(t, err)
	require.True(t, errors.IsValidation(err))

	fields := violationFieldsOf(t, err)
	assert.Contains(t, fields, "instances[0].priority")
	assert.Contains(t, fields, "instances[1].serviceId")
	assert.Contains(t, fields, "instances[1].numInstances")
	assert.Contains(t, fields, "nodes[0].state")
}

func TestDecode_TypeMismatchNamesField(t *testing.T) {
	raw := `{
		"header": {"version": 6, "systemId": "system-0001"},
		"data": {"messageType": "stateRequest", "serviceId": "s", "subjectId": "s", "instance": -1, "default": false}
	}`

	_, err := Decode([]byte(raw))
	require.Error(t, err)
	assert.True(t, errors.IsValidation(err), "wrong JSON type for a known field is a field violation")
	assert.False(t, errors.IsMalformed(err))
	assert.Contains(t, violationFieldsOf(t, err), "instance")
}

func TestDecode_AllOrNothing(t *testing.T) {
	raw := `{
		"header": {"version": 6, "systemId": "system-0001"},
		"data": {"messageType": "stateAcceptance", "serviceId": "service1", "subjectId": "subject1",
		         "instance": 0, "checksum": "", "result": "accepted", "reason": ""}
	}`

	received, err := Decode([]byte(raw))
	assert.Error(t, err)
	assert.Nil(t, received, "no partially valid record may escape a failed decode")
}

func TestDecode_ReceiptIDsAreUnique(t *testing.T) {
	wire, err := Encode(NewMessage(testSystemID, &StateRequest{ServiceID: "s", SubjectID: "s"}), EncodeWire)
	require.NoError(t, err)

	first, err := Decode(wire)
	require.NoError(t, err)
	second, err := Decode(wire)
	require.NoError(t, err)

	assert.NotEqual(t, first.ReceiptID(), second.ReceiptID())
}

func TestEncode_RedactedModeHidesSecrets(t *testing.T) {
	status := &DesiredStatus{Services: []DesiredServiceInfo{testService()}}
	message := NewMessage(testSystemID, status)

	wire, err := Encode(message, EncodeWire)
	require.NoError(t, err)
	diag, err := Encode(message, EncodeRedacted)
	require.NoError(t, err)

	keyB64 := base64.StdEncoding.EncodeToString([]byte("secret-block-key"))
	assert.Contains(t, string(wire), keyB64)
	assert.NotContains(t, string(diag), keyB64)
	assert.Contains(t, string(diag), Redacted)

	// Everything except the secrets is identical between the modes.
	assert.Contains(t, string(diag), `"serviceId":"service1"`)
}

func TestEncode_WireRefusesRedactedPlaceholder(t *testing.T) {
	status := &DesiredStatus{Services: []DesiredServiceInfo{testService()}}

	diag, err := Encode(NewMessage(testSystemID, status), EncodeRedacted)
	require.NoError(t, err)

	// Diagnostic output parses back, but its secrets are placeholders.
	received, err := Decode(diag)
	require.NoError(t, err)

	_, err = Encode(NewMessage(testSystemID, received.Payload()), EncodeWire)
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrSecretUnavailable)
}

func TestEncode_InvalidPayloadRejected(t *testing.T) {
	_, err := Encode(NewMessage(testSystemID, &NewState{}), EncodeWire)
	require.Error(t, err)
	assert.True(t, errors.IsValidation(err))
}

func TestEncode_NilPayloadRejected(t *testing.T) {
	_, err := Encode(NewMessage(testSystemID, nil), EncodeWire)
	assert.Error(t, err)

	_, err = Encode(nil, EncodeWire)
	assert.Error(t, err)
}

func TestEncodePayload_BodyOnly(t *testing.T) {
	body, err := EncodePayload(&StateRequest{ServiceID: "s", SubjectID: "s", Instance: 2}, EncodeWire)
	require.NoError(t, err)

	payload, err := DecodeBody(body)
	require.NoError(t, err)

	request, ok := payload.(*StateRequest)
	require.True(t, ok)
	assert.Equal(t, uint64(2), request.Instance)
}
