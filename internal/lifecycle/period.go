package lifecycle

import "time"

// TimePeriod bounds one phase of activity. Either bound may be nil,
// meaning "not yet scheduled" or "no such boundary".
type TimePeriod struct {
	Start *time.Time `json:"start"`
	End   *time.Time `json:"end"`
}

// Timeline is the set of periods that drive a hackathon's lifecycle.
// A nil Voting means the hackathon has no voting phase.
type Timeline struct {
	Registration TimePeriod  `json:"registration"`
	Building     TimePeriod  `json:"building"`
	Voting       *TimePeriod `json:"voting,omitempty"`
}

// PeriodFrom builds a TimePeriod from raw boundary values, normalizing each
// through ParseInstant.
func PeriodFrom(start, end any) TimePeriod {
	return TimePeriod{Start: ParseInstant(start), End: ParseInstant(end)}
}

// IsZero reports whether neither bound is set
func (p TimePeriod) IsZero() bool {
	return p.Start == nil && p.End == nil
}

// Contains reports whether now falls inside [Start, End). Both bounds must be set.
func (p TimePeriod) Contains(now time.Time) bool {
	if p.Start == nil || p.End == nil {
		return false
	}
	return !now.Before(*p.Start) && now.Before(*p.End)
}

func before(now time.Time, bound *time.Time) bool {
	return bound != nil && now.Before(*bound)
}
