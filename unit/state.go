package unit

import (
	"encoding/json"
	"slices"

	"github.com/aoscloud/aos-protocols/errors"
)

// State message discriminator literals.
const (
	MessageTypeNewState        = "newState"
	MessageTypeUpdateState     = "updateState"
	MessageTypeStateAcceptance = "stateAcceptance"
	MessageTypeStateRequest    = "stateRequest"
)

// AcceptanceResult is the cloud's verdict on a reported state change.
type AcceptanceResult string

// Acceptance results.
const (
	ResultAccepted AcceptanceResult = "accepted"
	ResultRejected AcceptanceResult = "rejected"
)

// Validate checks membership in the closed result set.
func (r AcceptanceResult) Validate() error {
	return validateEnum(string(r), string(ResultAccepted), string(ResultRejected))
}

// StateData is the payload shape shared by the newState and updateState
// messages: which instance changed, the new state content, and its
// checksum. The two messages differ only in direction and discriminator,
// so they compose this fragment instead of inheriting from each other.
type StateData struct {
	ServiceID ID     `json:"serviceId"`
	SubjectID ID     `json:"subjectId"`
	Instance  uint64 `json:"instance"`
	Checksum  string `json:"stateChecksum"`
	State     string `json:"state"`

	// missing lists required wire fields absent during decode. The zero
	// values of instance and state are valid, so absence cannot be
	// inferred from the value itself; Validate reports every entry.
	missing []string
}

// Validate checks field presence, identity and checksum constraints. The
// state content itself is unconstrained (it may be empty, but not absent).
func (s StateData) Validate() error {
	var ve errors.ValidationErrors
	for _, field := range s.missing {
		ve.Add(field, "is required")
	}
	ve.Collect("serviceId", s.ServiceID.Validate())
	ve.Collect("subjectId", s.SubjectID.Validate())
	ve.Collect("stateChecksum", validateBoundedString(s.Checksum, 1, MaxChecksumLength))
	return ve.ErrOrNil()
}

// Equal reports equality of the wire-visible fields. Used by go-cmp in
// tests.
func (s StateData) Equal(other StateData) bool {
	return s.ServiceID == other.ServiceID &&
		s.SubjectID == other.SubjectID &&
		s.Instance == other.Instance &&
		s.Checksum == other.Checksum &&
		s.State == other.State &&
		slices.Equal(s.missing, other.missing)
}

// stateDataWire injects the discriminator next to the inlined fragment.
type stateDataWire struct {
	MessageType string `json:"messageType"`
	StateData
}

// stateDataDecodeWire mirrors stateDataWire with pointer fields wherever
// the zero value is valid, so absence stays distinguishable from an
// explicit zero.
type stateDataDecodeWire struct {
	MessageType string  `json:"messageType"`
	ServiceID   ID      `json:"serviceId"`
	SubjectID   ID      `json:"subjectId"`
	Instance    *uint64 `json:"instance"`
	Checksum    string  `json:"stateChecksum"`
	State       *string `json:"state"`
}

// toStateData converts the decode form, recording absent required fields.
func (w stateDataDecodeWire) toStateData() StateData {
	data := StateData{ServiceID: w.ServiceID, SubjectID: w.SubjectID, Checksum: w.Checksum}
	if w.Instance == nil {
		data.missing = append(data.missing, "instance")
	} else {
		data.Instance = *w.Instance
	}
	if w.State == nil {
		data.missing = append(data.missing, "state")
	} else {
		data.State = *w.State
	}
	return data
}

// NewState is the unit-to-cloud report of a service instance state change.
// The cloud may answer with a stateAcceptance message.
type NewState struct {
	StateData
}

// MessageType implements Payload.
func (*NewState) MessageType() string {
	return MessageTypeNewState
}

// Validate implements Payload.
func (s *NewState) Validate() error {
	return s.StateData.Validate()
}

// MarshalJSON implements json.Marshaler.
func (s *NewState) MarshalJSON() ([]byte, error) {
	return json.Marshal(stateDataWire{MessageType: MessageTypeNewState, StateData: s.StateData})
}

// UnmarshalJSON implements json.Unmarshaler, rejecting any other
// discriminator even though updateState carries the same field set.
func (s *NewState) UnmarshalJSON(data []byte) error {
	var wire stateDataDecodeWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	if err := checkMessageType(wire.MessageType, MessageTypeNewState); err != nil {
		return err
	}
	s.StateData = wire.toStateData()
	return nil
}

// UpdateState is the cloud-to-unit push of a new service instance state.
// It requires no structural reply.
type UpdateState struct {
	StateData
}

// MessageType implements Payload.
func (*UpdateState) MessageType() string {
	return MessageTypeUpdateState
}

// Validate implements Payload.
func (s *UpdateState) Validate() error {
	return s.StateData.Validate()
}

// MarshalJSON implements json.Marshaler.
func (s *UpdateState) MarshalJSON() ([]byte, error) {
	return json.Marshal(stateDataWire{MessageType: MessageTypeUpdateState, StateData: s.StateData})
}

// UnmarshalJSON implements json.Unmarshaler.
func (s *UpdateState) UnmarshalJSON(data []byte) error {
	var wire stateDataDecodeWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	if err := checkMessageType(wire.MessageType, MessageTypeUpdateState); err != nil {
		return err
	}
	s.StateData = wire.toStateData()
	return nil
}

// StateAcceptance is the cloud's verdict on a previously reported state
// change, identified by its checksum.
type StateAcceptance struct {
	ServiceID ID               `json:"serviceId"`
	SubjectID ID               `json:"subjectId"`
	Instance  uint64           `json:"instance"`
	Checksum  string           `json:"checksum"`
	Result    AcceptanceResult `json:"result"`
	Reason    string           `json:"reason"`

	missing []string
}

// MessageType implements Payload.
func (*StateAcceptance) MessageType() string {
	return MessageTypeStateAcceptance
}

// Validate implements Payload.
func (s *StateAcceptance) Validate() error {
	var ve errors.ValidationErrors
	for _, field := range s.missing {
		ve.Add(field, "is required")
	}
	ve.Collect("serviceId", s.ServiceID.Validate())
	ve.Collect("subjectId", s.SubjectID.Validate())
	ve.Collect("checksum", validateBoundedString(s.Checksum, 1, MaxChecksumLength))
	ve.Collect("result", s.Result.Validate())
	return ve.ErrOrNil()
}

// Equal reports equality of the wire-visible fields. Used by go-cmp in
// tests.
func (s StateAcceptance) Equal(other StateAcceptance) bool {
	return s.ServiceID == other.ServiceID &&
		s.SubjectID == other.SubjectID &&
		s.Instance == other.Instance &&
		s.Checksum == other.Checksum &&
		s.Result == other.Result &&
		s.Reason == other.Reason &&
		slices.Equal(s.missing, other.missing)
}

// MarshalJSON implements json.Marshaler.
func (s *StateAcceptance) MarshalJSON() ([]byte, error) {
	type Alias StateAcceptance
	return json.Marshal(struct {
		MessageType string `json:"messageType"`
		Alias
	}{MessageType: MessageTypeStateAcceptance, Alias: Alias(*s)})
}

// UnmarshalJSON implements json.Unmarshaler. The shadowing pointer field
// keeps an absent instance distinguishable from instance zero.
func (s *StateAcceptance) UnmarshalJSON(data []byte) error {
	type Alias StateAcceptance
	var wire struct {
		MessageType string  `json:"messageType"`
		Instance    *uint64 `json:"instance"`
		Alias
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	if err := checkMessageType(wire.MessageType, MessageTypeStateAcceptance); err != nil {
		return err
	}
	*s = StateAcceptance(wire.Alias)
	if wire.Instance == nil {
		s.missing = []string{"instance"}
	} else {
		s.Instance = *wire.Instance
	}
	return nil
}

// StateRequest is the unit-to-cloud request for a service instance state.
// With Default true the cloud returns the initial (default) state,
// otherwise the latest one. The cloud answers with a newState message.
type StateRequest struct {
	ServiceID ID     `json:"serviceId"`
	SubjectID ID     `json:"subjectId"`
	Instance  uint64 `json:"instance"`
	Default   bool   `json:"default"`

	missing []string
}

// MessageType implements Payload.
func (*StateRequest) MessageType() string {
	return MessageTypeStateRequest
}

// Validate implements Payload.
func (s *StateRequest) Validate() error {
	var ve errors.ValidationErrors
	for _, field := range s.missing {
		ve.Add(field, "is required")
	}
	ve.Collect("serviceId", s.ServiceID.Validate())
	ve.Collect("subjectId", s.SubjectID.Validate())
	return ve.ErrOrNil()
}

// Equal reports equality of the wire-visible fields. Used by go-cmp in
// tests.
func (s StateRequest) Equal(other StateRequest) bool {
	return s.ServiceID == other.ServiceID &&
		s.SubjectID == other.SubjectID &&
		s.Instance == other.Instance &&
		s.Default == other.Default &&
		slices.Equal(s.missing, other.missing)
}

// MarshalJSON implements json.Marshaler.
func (s *StateRequest) MarshalJSON() ([]byte, error) {
	type Alias StateRequest
	return json.Marshal(struct {
		MessageType string `json:"messageType"`
		Alias
	}{MessageType: MessageTypeStateRequest, Alias: Alias(*s)})
}

// UnmarshalJSON implements json.Unmarshaler. Instance and default are
// required even though their zero values are valid, so both decode through
// shadowing pointer fields and absence is recorded for Validate.
func (s *StateRequest) UnmarshalJSON(data []byte) error {
	type Alias StateRequest
	var wire struct {
		MessageType string  `json:"messageType"`
		Instance    *uint64 `json:"instance"`
		Default     *bool   `json:"default"`
		Alias
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	if err := checkMessageType(wire.MessageType, MessageTypeStateRequest); err != nil {
		return err
	}
	*s = StateRequest(wire.Alias)
	if wire.Instance == nil {
		s.missing = append(s.missing, "instance")
	} else {
		s.Instance = *wire.Instance
	}
	if wire.Default == nil {
		s.missing = append(s.missing, "default")
	} else {
		s.Default = *wire.Default
	}
	return nil
}
