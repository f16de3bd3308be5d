package lifecycle

import "fmt"

// Phase is the lifecycle stage of a hackathon at a given instant.
// Values are ordered by intended progression.
type Phase int

const (
	RegistrationOpen Phase = iota
	RegistrationClosed
	Live
	Voting
	Ended
)

var phaseNames = [...]string{
	RegistrationOpen:   "registration_open",
	RegistrationClosed: "registration_closed",
	Live:               "live",
	Voting:             "voting",
	Ended:              "ended",
}

var phaseLabels = [...]string{
	RegistrationOpen:   "Registration Open",
	RegistrationClosed: "Registration Closed",
	Live:               "Live",
	Voting:             "Voting",
	Ended:              "Ended",
}

// Phases lists every phase in progression order.
func Phases() []Phase {
	return []Phase{RegistrationOpen, RegistrationClosed, Live, Voting, Ended}
}

// Valid reports whether p is one of the defined phases
func (p Phase) Valid() bool {
	return p >= RegistrationOpen && p <= Ended
}

// String returns the wire name of the phase
func (p Phase) String() string {
	if !p.Valid() {
		return fmt.Sprintf("phase(%d)", int(p))
	}
	return phaseNames[p]
}

// Label returns the display text for the phase
func (p Phase) Label() string {
	if !p.Valid() {
		return ""
	}
	return phaseLabels[p]
}

// MarshalText implements encoding.TextMarshaler
func (p Phase) MarshalText() ([]byte, error) {
	if !p.Valid() {
		return nil, fmt.Errorf("lifecycle: invalid phase %d", int(p))
	}
	return []byte(phaseNames[p]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (p *Phase) UnmarshalText(text []byte) error {
	parsed, err := ParsePhase(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// ParsePhase parses a wire name such as "live" into a Phase
func ParsePhase(s string) (Phase, error) {
	for i, name := range phaseNames {
		if name == s {
			return Phase(i), nil
		}
	}
	return Ended, fmt.Errorf("lifecycle: unknown phase %q", s)
}
