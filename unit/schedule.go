package unit

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/aoscloud/aos-protocols/errors"
)

// ScheduleType selects how an update window is applied.
type ScheduleType string

// Schedule rule types.
const (
	// ScheduleTypeForce applies the update immediately.
	ScheduleTypeForce ScheduleType = "force"
	// ScheduleTypeTrigger applies the update on an external trigger.
	ScheduleTypeTrigger ScheduleType = "trigger"
	// ScheduleTypeTimetable applies the update inside timetable windows.
	ScheduleTypeTimetable ScheduleType = "timetable"
)

// Validate checks membership in the closed schedule type set.
func (t ScheduleType) Validate() error {
	return validateEnum(string(t), string(ScheduleTypeForce), string(ScheduleTypeTrigger), string(ScheduleTypeTimetable))
}

// TimeOfDay is a wall-clock time of day. The wire form is "HH:MM" or
// "HH:MM:SS"; the canonical encoding is always "HH:MM:SS".
type TimeOfDay struct {
	Hour   int
	Minute int
	Second int

	// invalid marks a value decoded from unparseable wire text; raw keeps
	// that text for the validation message. Deferring the failure to
	// Validate keeps it batched under its full field path instead of
	// aborting the enclosing decode.
	invalid bool
	raw     string
}

// ParseTimeOfDay parses the wire form of a time of day.
func ParseTimeOfDay(raw string) (TimeOfDay, error) {
	parts := strings.Split(raw, ":")
	if len(parts) != 2 && len(parts) != 3 {
		return TimeOfDay{}, fmt.Errorf("must be a time of day in form HH:MM[:SS], got %q", raw)
	}

	values := make([]int, 3)
	for i, part := range parts {
		if len(part) != 2 {
			return TimeOfDay{}, fmt.Errorf("must be a time of day in form HH:MM[:SS], got %q", raw)
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			return TimeOfDay{}, fmt.Errorf("must be a time of day in form HH:MM[:SS], got %q", raw)
		}
		values[i] = n
	}

	t := TimeOfDay{Hour: values[0], Minute: values[1], Second: values[2]}
	if err := t.Validate(); err != nil {
		return TimeOfDay{}, err
	}
	return t, nil
}

// Validate checks the component ranges and rejects values decoded from
// unparseable wire text.
func (t TimeOfDay) Validate() error {
	if t.invalid {
		return fmt.Errorf("must be a time of day in form HH:MM[:SS], got %q", t.raw)
	}
	if t.Hour < 0 || t.Hour > 23 || t.Minute < 0 || t.Minute > 59 || t.Second < 0 || t.Second > 59 {
		return fmt.Errorf("must be a valid time of day, got %s", t.String())
	}
	return nil
}

// Equal reports equality. Used by go-cmp in tests.
func (t TimeOfDay) Equal(other TimeOfDay) bool {
	return t == other
}

// String renders the canonical "HH:MM:SS" form.
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", t.Hour, t.Minute, t.Second)
}

// MarshalJSON implements json.Marshaler with the canonical form.
func (t TimeOfDay) MarshalJSON() ([]byte, error) {
	if t.invalid {
		return nil, fmt.Errorf("cannot encode invalid time of day %q", t.raw)
	}
	return json.Marshal(t.String())
}

// UnmarshalJSON implements json.Unmarshaler accepting both wire forms.
// Unparseable text does not abort the decode: it yields an invalid value
// that Validate reports, so a bad time inside a timetable surfaces together
// with every sibling violation.
func (t *TimeOfDay) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseTimeOfDay(raw)
	if err != nil {
		*t = TimeOfDay{invalid: true, raw: raw}
		return nil
	}
	*t = parsed
	return nil
}

// TimeSlot is one start/end window inside a timetable day. No ordering is
// imposed between start and end: a slot may wrap past midnight.
type TimeSlot struct {
	Start TimeOfDay `json:"start"`
	End   TimeOfDay `json:"end"`
}

// Validate checks both times of day.
func (s TimeSlot) Validate() error {
	var ve errors.ValidationErrors
	ve.Collect("start", s.Start.Validate())
	ve.Collect("end", s.End.Validate())
	return ve.ErrOrNil()
}

// TimetableItem is one timetable entry: a day of week (Monday 1 ... Sunday
// 7) with at least one time slot.
type TimetableItem struct {
	DayOfWeek int        `json:"dayOfWeek"`
	TimeSlots []TimeSlot `json:"timeSlots"`
}

// Validate checks the day range and slot presence.
func (i TimetableItem) Validate() error {
	var ve errors.ValidationErrors
	if i.DayOfWeek < 1 || i.DayOfWeek > 7 {
		ve.Add("dayOfWeek", fmt.Sprintf("must be between 1 and 7, got %d", i.DayOfWeek))
	}
	if len(i.TimeSlots) == 0 {
		ve.Add("timeSlots", "must contain at least one time slot")
	}
	for n, slot := range i.TimeSlots {
		ve.Collect(indexField("timeSlots", n), slot.Validate())
	}
	return ve.ErrOrNil()
}

// ScheduleRule gates when an update category (FOTA or SOTA) may be applied.
//
// The timetable is required, and must be non-empty, exactly when Type is
// ScheduleTypeTimetable; for any other type a timetable is rejected.
type ScheduleRule struct {
	TTL       int64           `json:"ttl"`
	Type      ScheduleType    `json:"type"`
	Timetable []TimetableItem `json:"timetable,omitempty"`
}

// Validate checks the type enum and the conditional timetable presence.
func (r ScheduleRule) Validate() error {
	var ve errors.ValidationErrors
	ve.Collect("type", r.Type.Validate())

	switch {
	case r.Type == ScheduleTypeTimetable && len(r.Timetable) == 0:
		ve.Add("timetable", `must contain at least one item when type is "timetable"`)
	case r.Type != ScheduleTypeTimetable && r.Timetable != nil:
		ve.Add("timetable", fmt.Sprintf("must not be present when type is %q", string(r.Type)))
	}

	for n, item := range r.Timetable {
		ve.Collect(indexField("timetable", n), item.Validate())
	}
	return ve.ErrOrNil()
}
