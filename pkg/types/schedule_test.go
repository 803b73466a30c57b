package types

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func weekOf(h DayHours) WeeklySchedule {
	return WeeklySchedule{Monday: h, Tuesday: h, Wednesday: h, Thursday: h, Friday: h, Saturday: h, Sunday: h}
}

func TestParseClock(t *testing.T) {
	cases := map[string]int{"00:00": 0, "09:30": 570, "23:59": 1439, "7:05": 425}
	for in, want := range cases {
		got, err := ParseClock(in)
		if err != nil {
			t.Fatalf("ParseClock(%q) unexpected error: %v", in, err)
		}
		if got != want {
			t.Fatalf("ParseClock(%q) = %d, want %d", in, got, want)
		}
	}
	for _, bad := range []string{"", "24:00", "12:60", "noon", "12:5", "12-30", "-1:00"} {
		if _, err := ParseClock(bad); err == nil {
			t.Fatalf("ParseClock(%q) expected error", bad)
		}
	}
}

func TestWeeklyScheduleDay(t *testing.T) {
	s := weekOf(DayHours{Open: "09:00", Close: "17:00"})
	s.Wednesday = DayHours{Closed: true}
	if !s.Day(time.Wednesday).Closed {
		t.Fatalf("expected wednesday closed")
	}
	if s.Day(time.Sunday).Open != "09:00" {
		t.Fatalf("expected sunday hours")
	}
}

func TestWeeklyScheduleValidateAggregates(t *testing.T) {
	s := weekOf(DayHours{Open: "09:00", Close: "17:00"})
	s.Monday = DayHours{Open: "9am", Close: "17:00"}
	s.Friday = DayHours{Open: "09:00", Close: "25:00"}
	s.Sunday = DayHours{Open: "garbage", Closed: true}

	err := s.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	msg := err.Error()
	if !strings.Contains(msg, "monday open") || !strings.Contains(msg, "friday close") {
		t.Fatalf("expected both failures reported, got %q", msg)
	}
	if strings.Contains(msg, "sunday") {
		t.Fatalf("closed days should be skipped, got %q", msg)
	}
}

func TestWeeklyScheduleRequiresAllDays(t *testing.T) {
	var s WeeklySchedule
	err := json.Unmarshal([]byte(`{"monday":{"open":"09:00","close":"17:00"}}`), &s)
	if err == nil || !strings.Contains(err.Error(), "tuesday") {
		t.Fatalf("expected missing days error, got %v", err)
	}
}

func TestNullScheduleScanValue(t *testing.T) {
	s := weekOf(DayHours{Open: "22:00", Close: "02:00"})
	in := NewNullSchedule(&s)
	v, err := in.Value()
	if err != nil {
		t.Fatalf("value failed: %v", err)
	}
	var out NullSchedule
	if err := out.Scan([]byte(v.(string))); err != nil {
		t.Fatalf("scan failed: %v", err)
	}
	if !out.Valid || out.Schedule != s {
		t.Fatalf("expected %+v got %+v", s, out)
	}
	if err := out.Scan(42); err == nil {
		t.Fatalf("expected error for unsupported scan type")
	}

	if err := out.Scan(nil); err != nil {
		t.Fatalf("scan nil failed: %v", err)
	}
	if out.Valid || out.Ptr() != nil {
		t.Fatalf("expected NULL schedule after scanning nil")
	}
	v, err = out.Value()
	if err != nil || v != nil {
		t.Fatalf("expected nil driver value, got %v err=%v", v, err)
	}
	buf, _ := json.Marshal(out)
	if string(buf) != "null" {
		t.Fatalf("expected null json, got %s", buf)
	}
}
