package census

import (
	"database/sql/driver"
	"encoding/json"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/teambition/rrule-go"
)

// Shift is one weekly shift. Day is the ISO weekday, Monday=1 through
// Sunday=7. Start and End are optional HH:MM times.
type Shift struct {
	Day   int    `json:"day"`
	Start string `json:"start,omitempty"`
	End   string `json:"end,omitempty"`
}

// Schedule is a staff member's weekly shift list.
//
// It decodes from a JSON array or from a JSON string holding one. Anything
// else, including text that does not parse, decodes to an empty schedule
// without error.
type Schedule []Shift

func (s *Schedule) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		*s = Schedule{}
		return nil
	}
	*s = ParseSchedule(raw)
	return nil
}

// MarshalJSON encodes a nil schedule as an empty array.
func (s Schedule) MarshalJSON() ([]byte, error) {
	if s == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]Shift(s))
}

// Value stores the schedule as JSON text; a nil schedule is "[]", never NULL.
func (s Schedule) Value() (driver.Value, error) {
	b, err := s.MarshalJSON()
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Clone returns a copy that shares no backing array with s.
func (s Schedule) Clone() Schedule {
	if s == nil {
		return nil
	}
	return append(Schedule(nil), s...)
}

// ParseSchedule normalizes any supported schedule encoding: a Schedule, a
// []Shift, a decoded JSON array, or JSON text (string or bytes). Entries
// whose day is not an integer are dropped. Unsupported input yields an empty
// schedule.
func ParseSchedule(raw any) Schedule {
	switch v := raw.(type) {
	case nil:
		return Schedule{}
	case Schedule:
		return v
	case []Shift:
		return Schedule(v)
	case string:
		return parseScheduleText([]byte(v))
	case []byte:
		return parseScheduleText(v)
	case json.RawMessage:
		return parseScheduleText(v)
	case []map[string]any:
		out := make(Schedule, 0, len(v))
		for _, m := range v {
			if sh, ok := shiftFromMap(m); ok {
				out = append(out, sh)
			}
		}
		return out
	case []any:
		out := make(Schedule, 0, len(v))
		for _, e := range v {
			m, ok := e.(map[string]any)
			if !ok {
				continue
			}
			if sh, ok := shiftFromMap(m); ok {
				out = append(out, sh)
			}
		}
		return out
	}
	return Schedule{}
}

func parseScheduleText(b []byte) Schedule {
	if len(strings.TrimSpace(string(b))) == 0 {
		return Schedule{}
	}
	var raw any
	if err := json.Unmarshal(b, &raw); err != nil {
		return Schedule{}
	}
	if _, isText := raw.(string); isText {
		return Schedule{}
	}
	return ParseSchedule(raw)
}

func shiftFromMap(m map[string]any) (Shift, bool) {
	day, ok := toInt(m["day"])
	if !ok {
		return Shift{}, false
	}
	sh := Shift{Day: day}
	sh.Start, _ = m["start"].(string)
	sh.End, _ = m["end"].(string)
	return sh, true
}

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		if n != float64(int(n)) {
			return 0, false
		}
		return int(n), true
	case json.Number:
		i, err := n.Int64()
		return int(i), err == nil
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(n))
		return i, err == nil
	}
	return 0, false
}

// ISOWeekday returns t's weekday numbered Monday=1 through Sunday=7.
func ISOWeekday(t time.Time) int {
	wd := int(t.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}

// IsOnDuty reports whether any shift falls on ref's ISO weekday.
func IsOnDuty(s Schedule, ref time.Time) bool {
	today := ISOWeekday(ref)
	for _, sh := range s {
		if sh.Day == today {
			return true
		}
	}
	return false
}

// IsOnDutyRaw is IsOnDuty over an unparsed schedule; malformed input is
// never on duty.
func IsOnDutyRaw(raw any, ref time.Time) bool {
	return IsOnDuty(ParseSchedule(raw), ref)
}

// DutyVariant is the badge variant for a staff member's duty status:
// "default" with no schedule, "success" on duty, "warning" off duty.
func DutyVariant(s Schedule, ref time.Time) string {
	if len(s) == 0 {
		return "default"
	}
	if IsOnDuty(s, ref) {
		return "success"
	}
	return "warning"
}

// WeekGrid marks which weekdays have at least one shift. Index 0 is Monday.
// Days outside 1..7 are ignored.
func WeekGrid(s Schedule) [7]bool {
	var grid [7]bool
	for _, sh := range s {
		if sh.Day >= 1 && sh.Day <= 7 {
			grid[sh.Day-1] = true
		}
	}
	return grid
}

var isoToRRule = [8]rrule.Weekday{
	1: rrule.MO, 2: rrule.TU, 3: rrule.WE, 4: rrule.TH,
	5: rrule.FR, 6: rrule.SA, 7: rrule.SU,
}

// NextShift returns the start of the earliest shift at or after from, each
// shift recurring weekly. A shift without a parseable start time begins at
// midnight. The boolean is false when the schedule has no valid day.
func NextShift(s Schedule, from time.Time) (time.Time, bool) {
	var next []time.Time
	for _, sh := range s {
		if sh.Day < 1 || sh.Day > 7 {
			continue
		}
		hour, minute := clock(sh.Start)
		start := time.Date(from.Year(), from.Month(), from.Day(), hour, minute, 0, 0, from.Location())
		r, err := rrule.NewRRule(rrule.ROption{
			Freq:      rrule.WEEKLY,
			Byweekday: []rrule.Weekday{isoToRRule[sh.Day]},
			Byhour:    []int{hour},
			Byminute:  []int{minute},
			Bysecond:  []int{0},
			Dtstart:   start.AddDate(0, 0, -7),
		})
		if err != nil {
			continue
		}
		if t := r.After(from, true); !t.IsZero() {
			next = append(next, t)
		}
	}
	if len(next) == 0 {
		return time.Time{}, false
	}
	sort.Slice(next, func(i, j int) bool { return next[i].Before(next[j]) })
	return next[0], true
}

func clock(hhmm string) (int, int) {
	t, err := time.Parse("15:04", strings.TrimSpace(hhmm))
	if err != nil {
		return 0, 0
	}
	return t.Hour(), t.Minute()
}
