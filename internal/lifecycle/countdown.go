package lifecycle

import "time"

const (
	msPerSecond = int64(time.Second / time.Millisecond)
	msPerMinute = 60 * msPerSecond
	msPerHour   = 60 * msPerMinute
	msPerDay    = 24 * msPerHour
)

// Countdown is a remaining duration split into display units.
type Countdown struct {
	Days    int `json:"days"`
	Hours   int `json:"hours"`
	Minutes int `json:"minutes"`
	Seconds int `json:"seconds"`
}

// IsZero reports whether no time remains
func (c Countdown) IsZero() bool {
	return c == Countdown{}
}

// CountdownDelta splits max(0, target-now) into days, hours, minutes and
// seconds. Units are truncated, never rounded. The difference is taken in
// whole seconds first, so spans beyond time.Duration's ~292 years are exact.
func CountdownDelta(now, target time.Time) Countdown {
	sec := target.Unix() - now.Unix()
	nsec := int64(target.Nanosecond() - now.Nanosecond())
	if nsec < 0 {
		sec--
		nsec += int64(time.Second)
	}
	ms := sec*msPerSecond + nsec/int64(time.Millisecond)
	if ms <= 0 {
		return Countdown{}
	}
	return Countdown{
		Days:    int(ms / msPerDay),
		Hours:   int(ms % msPerDay / msPerHour),
		Minutes: int(ms % msPerHour / msPerMinute),
		Seconds: int(ms % msPerMinute / msPerSecond),
	}
}
