package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/multierr"
)

// DayHours is one weekday of a restaurant's opening schedule. Open and Close
// are civil times formatted as HH:MM; Close <= Open spans midnight.
type DayHours struct {
	Open   string `json:"open"`
	Close  string `json:"close"`
	Closed bool   `json:"closed"`
}

// WeeklySchedule holds one DayHours entry per weekday.
type WeeklySchedule struct {
	Monday    DayHours `json:"monday"`
	Tuesday   DayHours `json:"tuesday"`
	Wednesday DayHours `json:"wednesday"`
	Thursday  DayHours `json:"thursday"`
	Friday    DayHours `json:"friday"`
	Saturday  DayHours `json:"saturday"`
	Sunday    DayHours `json:"sunday"`
}

// Day returns the hours configured for the given weekday.
func (s WeeklySchedule) Day(day time.Weekday) DayHours {
	switch day {
	case time.Monday:
		return s.Monday
	case time.Tuesday:
		return s.Tuesday
	case time.Wednesday:
		return s.Wednesday
	case time.Thursday:
		return s.Thursday
	case time.Friday:
		return s.Friday
	case time.Saturday:
		return s.Saturday
	default:
		return s.Sunday
	}
}

// Validate checks every non-closed day for well-formed HH:MM boundaries.
func (s WeeklySchedule) Validate() error {
	var err error
	for day := time.Sunday; day <= time.Saturday; day++ {
		hours := s.Day(day)
		if hours.Closed {
			continue
		}
		if _, perr := ParseClock(hours.Open); perr != nil {
			err = multierr.Append(err, fmt.Errorf("%s open: %w", strings.ToLower(day.String()), perr))
		}
		if _, perr := ParseClock(hours.Close); perr != nil {
			err = multierr.Append(err, fmt.Errorf("%s close: %w", strings.ToLower(day.String()), perr))
		}
	}
	return err
}

// UnmarshalJSON requires all seven weekdays to be present.
func (s *WeeklySchedule) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	var missing []string
	for day := time.Sunday; day <= time.Saturday; day++ {
		name := strings.ToLower(day.String())
		if _, ok := raw[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("schedule missing days: %s", strings.Join(missing, ", "))
	}

	type plain WeeklySchedule
	var decoded plain
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}
	*s = WeeklySchedule(decoded)
	return nil
}

// NullSchedule is a nullable JSONB schedule column.
type NullSchedule struct {
	Schedule WeeklySchedule
	Valid    bool
}

// NewNullSchedule wraps s, treating nil as NULL.
func NewNullSchedule(s *WeeklySchedule) NullSchedule {
	if s == nil {
		return NullSchedule{}
	}
	return NullSchedule{Schedule: *s, Valid: true}
}

// Ptr returns the schedule or nil when NULL.
func (n NullSchedule) Ptr() *WeeklySchedule {
	if !n.Valid {
		return nil
	}
	s := n.Schedule
	return &s
}

// Value marshals the schedule into JSON for Postgres.
func (n NullSchedule) Value() (driver.Value, error) {
	if !n.Valid {
		return nil, nil
	}
	buf, err := json.Marshal(n.Schedule)
	if err != nil {
		return nil, err
	}
	return string(buf), nil
}

// Scan decodes JSONB into the schedule.
func (n *NullSchedule) Scan(value interface{}) error {
	if value == nil {
		*n = NullSchedule{}
		return nil
	}
	var raw []byte
	switch v := value.(type) {
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("schedule: unsupported scan type %T", value)
	}
	var s WeeklySchedule
	if err := json.Unmarshal(raw, &s); err != nil {
		return err
	}
	*n = NullSchedule{Schedule: s, Valid: true}
	return nil
}

// MarshalJSON renders NULL as null.
func (n NullSchedule) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(n.Schedule)
}

// ParseClock converts HH:MM into minutes since midnight.
func ParseClock(value string) (int, error) {
	parts := strings.Split(strings.TrimSpace(value), ":")
	if len(parts) != 2 || len(parts[0]) == 0 || len(parts[1]) != 2 {
		return 0, fmt.Errorf("invalid clock %q", value)
	}
	hours, err := strconv.Atoi(parts[0])
	if err != nil || hours < 0 || hours > 23 {
		return 0, fmt.Errorf("invalid clock %q", value)
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil || minutes < 0 || minutes > 59 {
		return 0, fmt.Errorf("invalid clock %q", value)
	}
	return hours*60 + minutes, nil
}
