// Package status decides whether a restaurant is open right now and when it
// opens next, evaluated in the restaurant's own time zone.
package status

import (
	"fmt"
	"strings"
	"time"

	"github.com/forkline/storefront/pkg/enums"
	"github.com/forkline/storefront/pkg/types"
)

const (
	minutesPerDay      = 24 * 60
	closedIndefinitely = "Closed indefinitely"
)

// Input carries everything the evaluator needs about one restaurant.
type Input struct {
	ManualOpen        bool
	TemporarilyClosed bool
	Schedule          *types.WeeklySchedule
	TimeZone          string
}

// Result is the verdict for one restaurant at one instant.
type Result struct {
	Verdict         enums.StatusVerdict `json:"verdict"`
	Reason          enums.ClosedReason  `json:"reason,omitempty"`
	NextOpeningHint string              `json:"next_opening_hint,omitempty"`
}

// IsOpen reports whether the verdict is open.
func (r Result) IsOpen() bool {
	return r.Verdict == enums.StatusVerdictOpen
}

func openResult() Result {
	return Result{Verdict: enums.StatusVerdictOpen}
}

func closedResult(reason enums.ClosedReason, hint string) Result {
	return Result{Verdict: enums.StatusVerdictClosed, Reason: reason, NextOpeningHint: hint}
}

// Evaluate maps the flags and schedule in in onto a verdict at now. Checks run
// in priority order and the first match wins. Malformed zone or clock data
// yields closed/outside_hours without a hint.
func Evaluate(in Input, now time.Time) Result {
	if in.TemporarilyClosed {
		return closedResult(enums.ClosedReasonTemporarilyClosed, "")
	}
	if !in.ManualOpen {
		return closedResult(enums.ClosedReasonManuallyClosed, "")
	}
	if in.Schedule == nil {
		return closedResult(enums.ClosedReasonNoHours, "")
	}

	loc, err := loadZone(in.TimeZone)
	if err != nil {
		return closedResult(enums.ClosedReasonOutsideHours, "")
	}
	local := now.In(loc)
	weekday := local.Weekday()
	minute := local.Hour()*60 + local.Minute()
	today := in.Schedule.Day(weekday)

	if today.Closed {
		hint, ok := scanForward(*in.Schedule, weekday)
		if !ok {
			return closedResult(enums.ClosedReasonOutsideHours, "")
		}
		return closedResult(enums.ClosedReasonOutsideHours, hint)
	}

	open, err := types.ParseClock(today.Open)
	if err != nil {
		return closedResult(enums.ClosedReasonOutsideHours, "")
	}
	closing, err := types.ParseClock(today.Close)
	if err != nil {
		return closedResult(enums.ClosedReasonOutsideHours, "")
	}

	if withinHours(minute, open, closing) {
		return openResult()
	}

	if minute < open {
		return closedResult(enums.ClosedReasonOutsideHours, "Today at "+formatClock(open))
	}
	hint, ok := scanForward(*in.Schedule, weekday)
	if !ok {
		return closedResult(enums.ClosedReasonOutsideHours, "")
	}
	return closedResult(enums.ClosedReasonOutsideHours, hint)
}

// withinHours reports whether minute falls in [open, close). A close at or
// before open spans midnight and is pushed into the next day.
func withinHours(minute, open, closing int) bool {
	end := closing
	if end <= open {
		end += minutesPerDay
	}
	if minute < open {
		minute += minutesPerDay
	}
	return minute >= open && minute < end
}

// scanForward finds the next non-closed day within a week of today. The bool
// is false when that day's opening time cannot be parsed.
func scanForward(schedule types.WeeklySchedule, today time.Weekday) (string, bool) {
	for offset := 1; offset <= 7; offset++ {
		day := time.Weekday((int(today) + offset) % 7)
		hours := schedule.Day(day)
		if hours.Closed {
			continue
		}
		open, err := types.ParseClock(hours.Open)
		if err != nil {
			return "", false
		}
		if offset == 1 {
			return "Tomorrow at " + formatClock(open), true
		}
		return fmt.Sprintf("%s at %s", day.String(), formatClock(open)), true
	}
	return closedIndefinitely, true
}

func loadZone(name string) (*time.Location, error) {
	name = strings.TrimSpace(name)
	if strings.EqualFold(name, "local") {
		return nil, fmt.Errorf("time zone must be explicit")
	}
	return time.LoadLocation(name)
}

func formatClock(minute int) string {
	return fmt.Sprintf("%02d:%02d", minute/60, minute%60)
}
