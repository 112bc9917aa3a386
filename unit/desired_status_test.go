package unit

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSha256() Sha256 {
	return Sha256(strings.Repeat("ab", 32))
}

func testComponent() DesiredComponentInfo {
	return DesiredComponentInfo{
		ID:             "rootfs",
		Type:           "full",
		Version:        "1.2.3",
		URLs:           URLList{"https://cdn.example.com/rootfs.img"},
		Sha256:         testSha256(),
		Size:           1024,
		DecryptionInfo: testDecryptionInfo(),
	}
}

func testService() DesiredServiceInfo {
	return DesiredServiceInfo{
		ServiceID:      "service1",
		ProviderID:     "provider1",
		Version:        "2.0.0",
		URLs:           URLList{"https://cdn.example.com/service1"},
		Sha256:         testSha256(),
		Size:           2048,
		DecryptionInfo: testDecryptionInfo(),
	}
}

func TestDesiredStatus_AbsentNullEmptyLists(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		expected []DesiredServiceInfo
	}{
		{
			name:     "absent means no change",
			body:     `{"messageType": "desiredStatus"}`,
			expected: nil,
		},
		{
			name:     "explicit null means no change",
			body:     `{"messageType": "desiredStatus", "services": null}`,
			expected: nil,
		},
		{
			name:     "empty list means clear category",
			body:     `{"messageType": "desiredStatus", "services": []}`,
			expected: []DesiredServiceInfo{},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			var status DesiredStatus
			require.NoError(t, json.Unmarshal([]byte(test.body), &status))
			require.NoError(t, status.Validate())

			if test.expected == nil {
				assert.Nil(t, status.Services)
			} else {
				require.NotNil(t, status.Services)
				assert.Empty(t, status.Services)
			}
		})
	}
}

func TestDesiredStatus_EncodePreservesNilVsEmpty(t *testing.T) {
	status := &DesiredStatus{
		Services: []DesiredServiceInfo{},
		// Layers stays nil: no change.
	}

	data, err := json.Marshal(status)
	require.NoError(t, err)

	var generic map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &generic))

	raw, present := generic["services"]
	require.True(t, present, "empty services list must be emitted")
	assert.JSONEq(t, `[]`, string(raw))

	_, present = generic["layers"]
	assert.False(t, present, "nil layers must be omitted, not emitted as null")
}

func TestDesiredStatus_RoundTrip(t *testing.T) {
	fota := &ScheduleRule{TTL: 3600, Type: ScheduleTypeForce}
	original := &DesiredStatus{
		Nodes: []NodeDesiredState{{NodeID: "node0", State: NodeStatusActive}},
		Components: []DesiredComponentInfo{testComponent()},
		Layers: []DesiredLayerInfo{{
			ID:             "layer1",
			Version:        "0.1.0",
			Digest:         LayerDigest(LayerDigestPrefix + strings.Repeat("cd", 32)),
			URLs:           URLList{"https://cdn.example.com/layer1"},
			Sha256:         testSha256(),
			Size:           512,
			DecryptionInfo: testDecryptionInfo(),
		}},
		Services: []DesiredServiceInfo{testService()},
		Instances: []DesiredInstanceInfo{{
			ServiceID:    "service1",
			SubjectID:    "subject1",
			Priority:     100,
			NumInstances: 2,
			Labels:       []string{"production"},
		}},
		FOTASchedule: fota,
		Certificates: []CertificateInfo{{
			Certificate: []byte("der-bytes"),
			Fingerprint: "FP1",
		}},
		CertificateChains: []CertificateChainInfo{{
			Name:         "chain1",
			Fingerprints: []string{"FP1"},
		}},
	}
	require.NoError(t, original.Validate())

	data, err := json.Marshal(original)
	require.NoError(t, err)

	var decoded DesiredStatus
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.NoError(t, decoded.Validate())

	if diff := cmp.Diff(original, &decoded); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestDesiredStatus_UnitConfigTriState(t *testing.T) {
	var status DesiredStatus
	require.NoError(t, json.Unmarshal([]byte(`{"messageType": "desiredStatus", "unitConfig": null}`), &status))
	assert.Nil(t, status.UnitConfig)

	require.NoError(t, json.Unmarshal([]byte(`{"messageType": "desiredStatus", "unitConfig": {"vendorVersion": "1.0"}}`), &status))
	require.NotNil(t, status.UnitConfig)
	assert.NoError(t, status.Validate())

	require.NoError(t, json.Unmarshal([]byte(`{"messageType": "desiredStatus", "unitConfig": [1, 2]}`), &status))
	err := status.Validate()
	require.Error(t, err)
	assert.Contains(t, violationFieldsOf(t, err), "unitConfig")
}

func TestDesiredStatus_WrongDiscriminatorRejected(t *testing.T) {
	var status DesiredStatus
	err := json.Unmarshal([]byte(`{"messageType": "newState"}`), &status)
	require.Error(t, err)
	assert.Contains(t, violationFieldsOf(t, err), "messageType")
}

func TestDesiredInstanceInfo_PriorityBounds(t *testing.T) {
	tests := []struct {
		name     string
		priority int64
		wantErr  bool
	}{
		{"zero", 0, false},
		{"max valid", 999999, false},
		{"at exclusive bound", 1000000, true},
		{"negative", -1, true},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			info := DesiredInstanceInfo{
				ServiceID:    "service1",
				SubjectID:    "subject1",
				Priority:     test.priority,
				NumInstances: 1,
			}
			err := info.Validate()
			if test.wantErr {
				require.Error(t, err)
				assert.Contains(t, violationFieldsOf(t, err), "priority")
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDesiredInstanceInfo_NumInstancesDefault(t *testing.T) {
	var info DesiredInstanceInfo
	require.NoError(t, json.Unmarshal([]byte(`{"serviceId": "service1", "subjectId": "subject1", "priority": 0}`), &info))
	assert.Equal(t, int64(1), info.NumInstances)
	assert.NoError(t, info.Validate())

	require.NoError(t, json.Unmarshal([]byte(`{"serviceId": "service1", "subjectId": "subject1", "priority": 0, "numInstances": 0}`), &info))
	err := info.Validate()
	require.Error(t, err)
	assert.Contains(t, violationFieldsOf(t, err), "numInstances")
}

func TestDesiredInstanceInfo_PriorityMustBePresent(t *testing.T) {
	// Priority zero is valid, so an absent field must be detected rather
	// than read back as zero.
	var info DesiredInstanceInfo
	require.NoError(t, json.Unmarshal([]byte(`{"serviceId": "service1", "subjectId": "subject1", "numInstances": 1}`), &info))

	err := info.Validate()
	require.Error(t, err)
	assert.Contains(t, violationFieldsOf(t, err), "priority")

	// A Go-constructed value carries no wire absence to report.
	assert.NoError(t, DesiredInstanceInfo{ServiceID: "service1", SubjectID: "subject1", NumInstances: 1}.Validate())
}

func TestDesiredStatus_ParseAndBoundViolationsBatch(t *testing.T) {
	// A secret that fails base64 decoding must surface alongside every
	// sibling constraint violation, each under its full field path.
	component := map[string]any{
		"id":      "rootfs",
		"version": "1.2.3",
		"urls":    []string{"https://cdn.example.com/rootfs.img"},
		"sha256":  string(testSha256()),
		"size":    1024,
		"decryptionInfo": map[string]any{
			"blockIv":      "!!! not base64 !!!",
			"blockKey":     "c2VjcmV0",
			"receiverInfo": map[string]any{"serial": "1f:2e:3d", "issuer": "Q049Y2E="},
		},
	}
	body, err := json.Marshal(map[string]any{
		"messageType": "desiredStatus",
		"components":  []any{component},
		"instances": []any{
			map[string]any{"serviceId": "service1", "subjectId": "subject1", "priority": 1000000, "numInstances": 1},
		},
	})
	require.NoError(t, err)

	_, err = DecodeBody(body)
	require.Error(t, err)

	fields := violationFieldsOf(t, err)
	assert.Contains(t, fields, "components[0].decryptionInfo.blockIv")
	assert.Contains(t, fields, "instances[0].priority")
}

func TestDesiredStatus_NestedViolationPaths(t *testing.T) {
	component := testComponent()
	component.Version = "not-a-version"
	component.DecryptionInfo.BlockAlg = "DES/ECB/none"

	status := &DesiredStatus{
		Components: []DesiredComponentInfo{testComponent(), component},
		Instances:  []DesiredInstanceInfo{{ServiceID: "service1", SubjectID: "subject1", Priority: 2000000, NumInstances: 1}},
	}

	err := status.Validate()
	require.Error(t, err)

	fields := violationFieldsOf(t, err)
	assert.Contains(t, fields, "components[1].version")
	assert.Contains(t, fields, "components[1].decryptionInfo.blockAlg")
	assert.Contains(t, fields, "instances[0].priority")
	assert.Len(t, fields, 3, "valid entries must not contribute violations")
}

func TestDesiredStatus_UnknownChainFingerprints(t *testing.T) {
	status := &DesiredStatus{
		Certificates: []CertificateInfo{
			{Certificate: []byte("a"), Fingerprint: "FP1"},
		},
		CertificateChains: []CertificateChainInfo{
			{Name: "chain1", Fingerprints: []string{"FP1", "FP2", "FP3"}},
		},
	}

	// Decode does not enforce referential integrity.
	require.NoError(t, status.Validate())
	assert.Equal(t, []string{"FP2", "FP3"}, status.UnknownChainFingerprints())

	status.Certificates = append(status.Certificates,
		CertificateInfo{Certificate: []byte("b"), Fingerprint: "FP2"},
		CertificateInfo{Certificate: []byte("c"), Fingerprint: "FP3"})
	assert.Nil(t, status.UnknownChainFingerprints())
}

func TestNodeDesiredState_UnknownStatusRejected(t *testing.T) {
	node := NodeDesiredState{NodeID: "node0", State: "sleeping"}
	err := node.Validate()
	require.Error(t, err)
	assert.Contains(t, violationFieldsOf(t, err), "state")
}
