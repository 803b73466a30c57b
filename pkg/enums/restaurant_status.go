package enums

import "fmt"

// StatusVerdict is the open/closed outcome of a status evaluation.
type StatusVerdict string

const (
	StatusVerdictOpen   StatusVerdict = "open"
	StatusVerdictClosed StatusVerdict = "closed"
)

// String returns the literal string for the verdict.
func (v StatusVerdict) String() string {
	return string(v)
}

// ClosedReason explains why a restaurant is closed.
type ClosedReason string

const (
	ClosedReasonNone              ClosedReason = ""
	ClosedReasonManuallyClosed    ClosedReason = "manually_closed"
	ClosedReasonTemporarilyClosed ClosedReason = "temporarily_closed"
	ClosedReasonNoHours           ClosedReason = "no_hours"
	ClosedReasonOutsideHours      ClosedReason = "outside_hours"
)

var validClosedReasons = []ClosedReason{
	ClosedReasonManuallyClosed,
	ClosedReasonTemporarilyClosed,
	ClosedReasonNoHours,
	ClosedReasonOutsideHours,
}

// String returns the literal string for the reason.
func (r ClosedReason) String() string {
	return string(r)
}

// IsValid reports whether the reason is known.
func (r ClosedReason) IsValid() bool {
	for _, candidate := range validClosedReasons {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseClosedReason converts raw input into a ClosedReason.
func ParseClosedReason(value string) (ClosedReason, error) {
	for _, candidate := range validClosedReasons {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid closed reason %q", value)
}
