// Package lifecycle derives a hackathon's lifecycle phase and countdown
// from its configured periods.
//
// Everything here is pure: the evaluation instant is always passed in and
// no function reads the system clock. Malformed or missing boundaries never
// produce an error; the ordered checks in ResolvePhase always yield a phase.
package lifecycle

import "time"

// Countdown labels shown next to the remaining time.
const (
	LabelRegistrationEnds = "Registration ends in"
	LabelSubmissionStarts = "Submission starts in"
	LabelSubmissionEnds   = "Submission ends in"
	LabelVotingEnds       = "Voting ends in"
)

// CountdownTarget is the next boundary a countdown display should count to.
type CountdownTarget struct {
	Label  string    `json:"label"`
	Target time.Time `json:"target"`
}

// Status bundles everything the presentation layer renders for one tick.
type Status struct {
	Phase     Phase            `json:"phase"`
	Label     string           `json:"label"`
	Countdown *CountdownTarget `json:"countdown"`
	Remaining *Countdown       `json:"remaining"`
}

// ResolvePhase returns the phase of timeline t at instant now.
//
// Checks run in a fixed order and the first match wins: an open
// registration window is reported before an overlapping building window.
// Intervals are half-open: a start boundary belongs to its phase, an end
// boundary belongs to the next one.
func ResolvePhase(now time.Time, t Timeline) Phase {
	reg, build := t.Registration, t.Building

	if before(now, reg.End) {
		return RegistrationOpen
	}
	if build.Contains(now) {
		return Live
	}
	if before(now, build.End) {
		if before(now, build.Start) {
			return RegistrationClosed
		}
		return Live
	}
	if t.Voting != nil && before(now, t.Voting.End) {
		return Voting
	}
	return Ended
}

// ResolveCountdownTarget picks the boundary to count down to for phase.
// It returns nil for Ended and whenever the relevant boundary is unset.
func ResolveCountdownTarget(now time.Time, t Timeline, phase Phase) *CountdownTarget {
	var (
		label string
		bound *time.Time
	)
	switch phase {
	case RegistrationOpen:
		label, bound = LabelRegistrationEnds, t.Registration.End
	case RegistrationClosed:
		label, bound = LabelSubmissionStarts, t.Building.Start
	case Live:
		label, bound = LabelSubmissionEnds, t.Building.End
	case Voting:
		if t.Voting != nil {
			label, bound = LabelVotingEnds, t.Voting.End
		}
	}
	if bound == nil {
		return nil
	}
	return &CountdownTarget{Label: label, Target: *bound}
}

// Resolve computes the phase, its countdown target and the remaining time
// at instant now.
func Resolve(now time.Time, t Timeline) Status {
	phase := ResolvePhase(now, t)
	status := Status{
		Phase:     phase,
		Label:     phase.Label(),
		Countdown: ResolveCountdownTarget(now, t, phase),
	}
	if status.Countdown != nil {
		remaining := CountdownDelta(now, status.Countdown.Target)
		status.Remaining = &remaining
	}
	return status
}
