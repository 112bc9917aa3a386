package unit

import (
	"encoding/json"
	"testing"

	"github.com/aoscloud/aos-protocols/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimeOfDay(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    TimeOfDay
		wantErr bool
	}{
		{"hours minutes", "08:30", TimeOfDay{Hour: 8, Minute: 30}, false},
		{"with seconds", "23:59:59", TimeOfDay{Hour: 23, Minute: 59, Second: 59}, false},
		{"midnight", "00:00", TimeOfDay{}, false},
		{"hour out of range", "24:00", TimeOfDay{}, true},
		{"minute out of range", "12:60", TimeOfDay{}, true},
		{"second out of range", "12:00:60", TimeOfDay{}, true},
		{"single digit", "8:30", TimeOfDay{}, true},
		{"not a time", "noon", TimeOfDay{}, true},
		{"empty", "", TimeOfDay{}, true},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got, err := ParseTimeOfDay(test.raw)
			if test.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, test.want, got)
		})
	}
}

func TestTimeOfDay_CanonicalJSON(t *testing.T) {
	var slot TimeSlot
	require.NoError(t, json.Unmarshal([]byte(`{"start": "08:30", "end": "17:00:30"}`), &slot))

	data, err := json.Marshal(slot)
	require.NoError(t, err)
	assert.JSONEq(t, `{"start": "08:30:00", "end": "17:00:30"}`, string(data))
}

func TestTimetableItem_Validate(t *testing.T) {
	slot := TimeSlot{Start: TimeOfDay{Hour: 8}, End: TimeOfDay{Hour: 17}}

	tests := []struct {
		name    string
		item    TimetableItem
		wantErr string
	}{
		{"valid monday", TimetableItem{DayOfWeek: 1, TimeSlots: []TimeSlot{slot}}, ""},
		{"valid sunday", TimetableItem{DayOfWeek: 7, TimeSlots: []TimeSlot{slot}}, ""},
		{"day zero", TimetableItem{DayOfWeek: 0, TimeSlots: []TimeSlot{slot}}, "dayOfWeek"},
		{"day eight", TimetableItem{DayOfWeek: 8, TimeSlots: []TimeSlot{slot}}, "dayOfWeek"},
		{"no slots", TimetableItem{DayOfWeek: 3}, "timeSlots"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			err := test.item.Validate()
			if test.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), test.wantErr)
		})
	}
}

func TestScheduleRule_ConditionalTimetable(t *testing.T) {
	item := TimetableItem{
		DayOfWeek: 1,
		TimeSlots: []TimeSlot{{Start: TimeOfDay{Hour: 1}, End: TimeOfDay{Hour: 2}}},
	}

	tests := []struct {
		name    string
		rule    ScheduleRule
		wantErr bool
	}{
		{"timetable type with items", ScheduleRule{TTL: 60, Type: ScheduleTypeTimetable, Timetable: []TimetableItem{item}}, false},
		{"timetable type empty list", ScheduleRule{TTL: 60, Type: ScheduleTypeTimetable, Timetable: []TimetableItem{}}, true},
		{"timetable type missing", ScheduleRule{TTL: 60, Type: ScheduleTypeTimetable}, true},
		{"force without timetable", ScheduleRule{TTL: 60, Type: ScheduleTypeForce}, false},
		{"force with timetable", ScheduleRule{TTL: 60, Type: ScheduleTypeForce, Timetable: []TimetableItem{item}}, true},
		{"trigger without timetable", ScheduleRule{Type: ScheduleTypeTrigger}, false},
		{"unknown type", ScheduleRule{Type: "whenever"}, true},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			err := test.rule.Validate()
			if test.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestTimeSlot_BadTimeDefersToValidation(t *testing.T) {
	// Unparseable time text never aborts the decode; Validate names the
	// offending field.
	var slot TimeSlot
	require.NoError(t, json.Unmarshal([]byte(`{"start": "noon", "end": "17:00"}`), &slot))

	err := slot.Validate()
	require.Error(t, err)

	fields := violationFieldsOf(t, err)
	assert.Contains(t, fields, "start")
	assert.NotContains(t, fields, "end")
	assert.Contains(t, err.Error(), "noon")
}

func TestScheduleRule_BadTimeBatchesWithSiblings(t *testing.T) {
	raw := `{
		"ttl": 60,
		"type": "timetable",
		"timetable": [
			{"dayOfWeek": 9, "timeSlots": [{"start": "08:00", "end": "25:00"}]}
		]
	}`

	var rule ScheduleRule
	require.NoError(t, json.Unmarshal([]byte(raw), &rule))

	err := rule.Validate()
	require.Error(t, err)

	fields := violationFieldsOf(t, err)
	assert.Contains(t, fields, "timetable[0].dayOfWeek")
	assert.Contains(t, fields, "timetable[0].timeSlots[0].end")
}

func TestScheduleRule_NestedViolationPaths(t *testing.T) {
	rule := ScheduleRule{
		Type: ScheduleTypeTimetable,
		Timetable: []TimetableItem{
			{DayOfWeek: 1, TimeSlots: []TimeSlot{{Start: TimeOfDay{Hour: 1}, End: TimeOfDay{Hour: 2}}}},
			{DayOfWeek: 9},
		},
	}

	err := rule.Validate()
	require.Error(t, err)

	var ve *errors.ValidationErrors
	require.ErrorAs(t, err, &ve)

	fields := make([]string, len(ve.Violations))
	for i, v := range ve.Violations {
		fields[i] = v.Field
	}
	assert.Contains(t, fields, "timetable[1].dayOfWeek")
	assert.Contains(t, fields, "timetable[1].timeSlots")
}
