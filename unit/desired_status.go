package unit

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"

	"github.com/aoscloud/aos-protocols/errors"
)

// MessageTypeDesiredStatus is the desiredStatus discriminator literal.
const MessageTypeDesiredStatus = "desiredStatus"

// DesiredComponentInfo describes one firmware component the unit should
// converge to: identity, version, download location, integrity digest, and
// decryption parameters.
type DesiredComponentInfo struct {
	ID             ID              `json:"id"`
	Type           string          `json:"type,omitempty"`
	Version        Version         `json:"version"`
	Annotations    json.RawMessage `json:"annotations,omitempty"`
	URLs           URLList         `json:"urls"`
	Sha256         Sha256          `json:"sha256"`
	Size           FileSize        `json:"size"`
	DecryptionInfo DecryptionInfo  `json:"decryptionInfo"`
}

// Validate checks every component field constraint.
func (c DesiredComponentInfo) Validate() error {
	var ve errors.ValidationErrors
	ve.Collect("id", c.ID.Validate())
	ve.Collect("version", c.Version.Validate())
	if c.Annotations != nil {
		ve.Collect("annotations", validateRawObject(c.Annotations))
	}
	ve.Collect("urls", c.URLs.Validate())
	ve.Collect("sha256", c.Sha256.Validate())
	ve.Collect("size", c.Size.Validate())
	ve.Collect("decryptionInfo", c.DecryptionInfo.Validate())
	return ve.ErrOrNil()
}

// marshalMode renders the component with mode-aware decryption info.
func (c DesiredComponentInfo) marshalMode(mode EncodeMode) ([]byte, error) {
	di, err := c.DecryptionInfo.marshalMode(mode)
	if err != nil {
		return nil, err
	}
	type Alias DesiredComponentInfo
	return json.Marshal(struct {
		Alias
		DecryptionInfo json.RawMessage `json:"decryptionInfo"`
	}{Alias: Alias(c), DecryptionInfo: di})
}

// DesiredLayerInfo describes one service layer the unit should download.
type DesiredLayerInfo struct {
	ID             ID             `json:"id"`
	Version        Version        `json:"version"`
	Digest         LayerDigest    `json:"digest"`
	URLs           URLList        `json:"urls"`
	Sha256         Sha256         `json:"sha256"`
	Size           FileSize       `json:"size"`
	DecryptionInfo DecryptionInfo `json:"decryptionInfo"`
}

// Validate checks every layer field constraint.
func (l DesiredLayerInfo) Validate() error {
	var ve errors.ValidationErrors
	ve.Collect("id", l.ID.Validate())
	ve.Collect("version", l.Version.Validate())
	ve.Collect("digest", l.Digest.Validate())
	ve.Collect("urls", l.URLs.Validate())
	ve.Collect("sha256", l.Sha256.Validate())
	ve.Collect("size", l.Size.Validate())
	ve.Collect("decryptionInfo", l.DecryptionInfo.Validate())
	return ve.ErrOrNil()
}

func (l DesiredLayerInfo) marshalMode(mode EncodeMode) ([]byte, error) {
	di, err := l.DecryptionInfo.marshalMode(mode)
	if err != nil {
		return nil, err
	}
	type Alias DesiredLayerInfo
	return json.Marshal(struct {
		Alias
		DecryptionInfo json.RawMessage `json:"decryptionInfo"`
	}{Alias: Alias(l), DecryptionInfo: di})
}

// DesiredServiceInfo describes one service the unit should install.
type DesiredServiceInfo struct {
	ServiceID      ID             `json:"serviceId"`
	ProviderID     ID             `json:"providerId"`
	Version        Version        `json:"version"`
	URLs           URLList        `json:"urls"`
	Sha256         Sha256         `json:"sha256"`
	Size           FileSize       `json:"size"`
	DecryptionInfo DecryptionInfo `json:"decryptionInfo"`
}

// Validate checks every service field constraint.
func (s DesiredServiceInfo) Validate() error {
	var ve errors.ValidationErrors
	ve.Collect("serviceId", s.ServiceID.Validate())
	ve.Collect("providerId", s.ProviderID.Validate())
	ve.Collect("version", s.Version.Validate())
	ve.Collect("urls", s.URLs.Validate())
	ve.Collect("sha256", s.Sha256.Validate())
	ve.Collect("size", s.Size.Validate())
	ve.Collect("decryptionInfo", s.DecryptionInfo.Validate())
	return ve.ErrOrNil()
}

func (s DesiredServiceInfo) marshalMode(mode EncodeMode) ([]byte, error) {
	di, err := s.DecryptionInfo.marshalMode(mode)
	if err != nil {
		return nil, err
	}
	type Alias DesiredServiceInfo
	return json.Marshal(struct {
		Alias
		DecryptionInfo json.RawMessage `json:"decryptionInfo"`
	}{Alias: Alias(s), DecryptionInfo: di})
}

// DesiredInstanceInfo describes how many instances of a service should run
// for a subject, and at what priority.
type DesiredInstanceInfo struct {
	ServiceID    ID       `json:"serviceId"`
	SubjectID    ID       `json:"subjectId"`
	Priority     int64    `json:"priority"`
	NumInstances int64    `json:"numInstances"`
	Labels       []string `json:"labels,omitempty"`

	// missing records an absent priority field during decode. Priority zero
	// is valid, so absence cannot be inferred from the value.
	missing []string
}

// Validate checks field presence, identity and numeric bounds.
func (i DesiredInstanceInfo) Validate() error {
	var ve errors.ValidationErrors
	for _, field := range i.missing {
		ve.Add(field, "is required")
	}
	ve.Collect("serviceId", i.ServiceID.Validate())
	ve.Collect("subjectId", i.SubjectID.Validate())
	if i.Priority < 0 || i.Priority >= MaxInstancePriority {
		ve.Add("priority", fmt.Sprintf("must be between 0 and %d exclusive, got %d", MaxInstancePriority, i.Priority))
	}
	if i.NumInstances <= 0 {
		ve.Add("numInstances", fmt.Sprintf("must be greater than zero, got %d", i.NumInstances))
	}
	return ve.ErrOrNil()
}

// Equal reports equality of the wire-visible fields. Used by go-cmp in
// tests.
func (i DesiredInstanceInfo) Equal(other DesiredInstanceInfo) bool {
	return i.ServiceID == other.ServiceID &&
		i.SubjectID == other.SubjectID &&
		i.Priority == other.Priority &&
		i.NumInstances == other.NumInstances &&
		slices.Equal(i.Labels, other.Labels) &&
		slices.Equal(i.missing, other.missing)
}

// MarshalJSON implements json.Marshaler.
func (i DesiredInstanceInfo) MarshalJSON() ([]byte, error) {
	type Alias DesiredInstanceInfo
	return json.Marshal(Alias(i))
}

// UnmarshalJSON implements json.Unmarshaler, applying the numInstances
// default of 1 when the field is absent. Priority has no default: an absent
// priority is recorded and reported by Validate.
func (i *DesiredInstanceInfo) UnmarshalJSON(data []byte) error {
	type Alias DesiredInstanceInfo
	var wire struct {
		Priority     *int64 `json:"priority"`
		NumInstances *int64 `json:"numInstances"`
		Alias
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	*i = DesiredInstanceInfo(wire.Alias)
	if wire.Priority == nil {
		i.missing = []string{"priority"}
	} else {
		i.Priority = *wire.Priority
	}
	if wire.NumInstances == nil {
		i.NumInstances = 1
	} else {
		i.NumInstances = *wire.NumInstances
	}
	return nil
}

// NodeDesiredState pairs a node with its desired lifecycle status.
type NodeDesiredState struct {
	NodeID ID         `json:"nodeId"`
	State  NodeStatus `json:"state"`
}

// Validate checks node identity and status membership.
func (n NodeDesiredState) Validate() error {
	var ve errors.ValidationErrors
	ve.Collect("nodeId", n.NodeID.Validate())
	ve.Collect("state", n.State.Validate())
	return ve.ErrOrNil()
}

// DesiredStatus is the cloud-issued desired-configuration snapshot: the
// target set of nodes, components, layers, services, instances, schedules
// and certificates the unit should converge to.
//
// For every list field, absence (or explicit null) means "no change to this
// category" and decodes to a nil slice, while an empty JSON list means
// "clear this category" and decodes to an empty non-nil slice. Encoding
// mirrors the distinction exactly: nil slices are omitted, empty slices are
// emitted as [].
type DesiredStatus struct {
	Nodes             []NodeDesiredState
	UnitConfig        json.RawMessage
	Components        []DesiredComponentInfo
	Layers            []DesiredLayerInfo
	Services          []DesiredServiceInfo
	Instances         []DesiredInstanceInfo
	FOTASchedule      *ScheduleRule
	SOTASchedule      *ScheduleRule
	Certificates      []CertificateInfo
	CertificateChains []CertificateChainInfo
}

// MessageType implements Payload.
func (*DesiredStatus) MessageType() string {
	return MessageTypeDesiredStatus
}

// Validate implements Payload, collecting violations from every category.
func (d *DesiredStatus) Validate() error {
	var ve errors.ValidationErrors
	for i, node := range d.Nodes {
		ve.Collect(indexField("nodes", i), node.Validate())
	}
	if d.UnitConfig != nil {
		ve.Collect("unitConfig", validateRawObject(d.UnitConfig))
	}
	for i, c := range d.Components {
		ve.Collect(indexField("components", i), c.Validate())
	}
	for i, l := range d.Layers {
		ve.Collect(indexField("layers", i), l.Validate())
	}
	for i, s := range d.Services {
		ve.Collect(indexField("services", i), s.Validate())
	}
	for i, inst := range d.Instances {
		ve.Collect(indexField("instances", i), inst.Validate())
	}
	if d.FOTASchedule != nil {
		ve.Collect("fotaSchedule", d.FOTASchedule.Validate())
	}
	if d.SOTASchedule != nil {
		ve.Collect("sotaSchedule", d.SOTASchedule.Validate())
	}
	for i, cert := range d.Certificates {
		ve.Collect(indexField("certificates", i), cert.Validate())
	}
	for i, chain := range d.CertificateChains {
		ve.Collect(indexField("certificateChains", i), chain.Validate())
	}
	return ve.ErrOrNil()
}

// UnknownChainFingerprints returns every fingerprint referenced by a
// certificate chain that is not present in the message's certificate list.
// The schema layer does not enforce this referential integrity during
// decode; callers that need it invoke this helper explicitly.
func (d *DesiredStatus) UnknownChainFingerprints() []string {
	known := make(map[string]struct{}, len(d.Certificates))
	for _, cert := range d.Certificates {
		known[cert.Fingerprint] = struct{}{}
	}

	var unknown []string
	for _, chain := range d.CertificateChains {
		for _, fp := range chain.Fingerprints {
			if _, ok := known[fp]; !ok {
				unknown = append(unknown, fp)
			}
		}
	}
	return unknown
}

// desiredStatusWire is the aliased wire form. Pointer-to-slice fields keep
// the absent-vs-empty distinction through encoding/json: a nil pointer is
// omitted, a pointer to an empty slice is emitted as [].
type desiredStatusWire struct {
	MessageType       string                  `json:"messageType"`
	Nodes             *[]NodeDesiredState     `json:"nodes,omitempty"`
	UnitConfig        json.RawMessage         `json:"unitConfig,omitempty"`
	Components        *[]DesiredComponentInfo `json:"components,omitempty"`
	Layers            *[]DesiredLayerInfo     `json:"layers,omitempty"`
	Services          *[]DesiredServiceInfo   `json:"services,omitempty"`
	Instances         *[]DesiredInstanceInfo  `json:"instances,omitempty"`
	FOTASchedule      *ScheduleRule           `json:"fotaSchedule,omitempty"`
	SOTASchedule      *ScheduleRule           `json:"sotaSchedule,omitempty"`
	Certificates      *[]CertificateInfo      `json:"certificates,omitempty"`
	CertificateChains *[]CertificateChainInfo `json:"certificateChains,omitempty"`
}

// desiredStatusRedactedWire mirrors desiredStatusWire with the secret
// bearing lists pre-rendered, so diagnostic encoding can redact them.
type desiredStatusRedactedWire struct {
	MessageType       string                  `json:"messageType"`
	Nodes             *[]NodeDesiredState     `json:"nodes,omitempty"`
	UnitConfig        json.RawMessage         `json:"unitConfig,omitempty"`
	Components        *[]json.RawMessage      `json:"components,omitempty"`
	Layers            *[]json.RawMessage      `json:"layers,omitempty"`
	Services          *[]json.RawMessage      `json:"services,omitempty"`
	Instances         *[]DesiredInstanceInfo  `json:"instances,omitempty"`
	FOTASchedule      *ScheduleRule           `json:"fotaSchedule,omitempty"`
	SOTASchedule      *ScheduleRule           `json:"sotaSchedule,omitempty"`
	Certificates      *[]CertificateInfo      `json:"certificates,omitempty"`
	CertificateChains *[]CertificateChainInfo `json:"certificateChains,omitempty"`
}

// MarshalJSON implements json.Marshaler in wire mode.
func (d *DesiredStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(desiredStatusWire{
		MessageType:       MessageTypeDesiredStatus,
		Nodes:             sliceRef(d.Nodes),
		UnitConfig:        d.UnitConfig,
		Components:        sliceRef(d.Components),
		Layers:            sliceRef(d.Layers),
		Services:          sliceRef(d.Services),
		Instances:         sliceRef(d.Instances),
		FOTASchedule:      d.FOTASchedule,
		SOTASchedule:      d.SOTASchedule,
		Certificates:      sliceRef(d.Certificates),
		CertificateChains: sliceRef(d.CertificateChains),
	})
}

// marshalMode renders the message for the given encode mode.
func (d *DesiredStatus) marshalMode(mode EncodeMode) ([]byte, error) {
	if mode == EncodeWire {
		return d.MarshalJSON()
	}

	components, err := marshalModeSlice(d.Components, mode)
	if err != nil {
		return nil, err
	}
	layers, err := marshalModeSlice(d.Layers, mode)
	if err != nil {
		return nil, err
	}
	services, err := marshalModeSlice(d.Services, mode)
	if err != nil {
		return nil, err
	}

	return json.Marshal(desiredStatusRedactedWire{
		MessageType:       MessageTypeDesiredStatus,
		Nodes:             sliceRef(d.Nodes),
		UnitConfig:        d.UnitConfig,
		Components:        components,
		Layers:            layers,
		Services:          services,
		Instances:         sliceRef(d.Instances),
		FOTASchedule:      d.FOTASchedule,
		SOTASchedule:      d.SOTASchedule,
		Certificates:      sliceRef(d.Certificates),
		CertificateChains: sliceRef(d.CertificateChains),
	})
}

// UnmarshalJSON implements json.Unmarshaler. Explicit null list fields
// decode to nil slices, identical to absent fields.
func (d *DesiredStatus) UnmarshalJSON(data []byte) error {
	var wire desiredStatusWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	if err := checkMessageType(wire.MessageType, MessageTypeDesiredStatus); err != nil {
		return err
	}

	*d = DesiredStatus{
		Nodes:             sliceVal(wire.Nodes),
		UnitConfig:        normalizeRaw(wire.UnitConfig),
		Components:        sliceVal(wire.Components),
		Layers:            sliceVal(wire.Layers),
		Services:          sliceVal(wire.Services),
		Instances:         sliceVal(wire.Instances),
		FOTASchedule:      wire.FOTASchedule,
		SOTASchedule:      wire.SOTASchedule,
		Certificates:      sliceVal(wire.Certificates),
		CertificateChains: sliceVal(wire.CertificateChains),
	}
	return nil
}

// sliceRef converts the internal nil/empty slice convention to the wire
// pointer convention.
func sliceRef[T any](s []T) *[]T {
	if s == nil {
		return nil
	}
	return &s
}

// sliceVal converts the wire pointer convention back: nil pointer (absent
// or null) becomes a nil slice, an empty list becomes an empty slice.
func sliceVal[T any](p *[]T) []T {
	if p == nil {
		return nil
	}
	return *p
}

// marshalModeSlice renders every element with the given mode, preserving
// the nil/empty distinction.
func marshalModeSlice[T modeMarshaler](items []T, mode EncodeMode) (*[]json.RawMessage, error) {
	if items == nil {
		return nil, nil
	}
	out := make([]json.RawMessage, 0, len(items))
	for _, item := range items {
		data, err := item.marshalMode(mode)
		if err != nil {
			return nil, err
		}
		out = append(out, data)
	}
	return &out, nil
}

// normalizeRaw collapses an explicit JSON null to absence.
func normalizeRaw(raw json.RawMessage) json.RawMessage {
	if len(raw) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil
	}
	return raw
}

// validateRawObject checks that a raw field holds a JSON object.
func validateRawObject(raw json.RawMessage) error {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' || !json.Valid(trimmed) {
		return fmt.Errorf("must be a JSON object")
	}
	return nil
}

// checkMessageType verifies the decoded discriminator literal.
func checkMessageType(got, want string) error {
	if got == "" {
		return errors.MissingField("messageType")
	}
	if got != want {
		var ve errors.ValidationErrors
		ve.Add("messageType", fmt.Sprintf("must be %q, got %q", want, got))
		return &ve
	}
	return nil
}
