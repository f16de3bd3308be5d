package lifecycle

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(t *testing.T, s string) time.Time {
	t.Helper()
	ts := ParseInstant(s)
	require.NotNil(t, ts, "unparseable instant %q", s)
	return *ts
}

func ptr(t *testing.T, s string) *time.Time {
	t.Helper()
	ts := at(t, s)
	return &ts
}

func scenarioTimeline(t *testing.T) Timeline {
	return Timeline{
		Registration: TimePeriod{End: ptr(t, "2025-01-10T00:00:00Z")},
		Building: TimePeriod{
			Start: ptr(t, "2025-01-10T00:00:00Z"),
			End:   ptr(t, "2025-01-20T00:00:00Z"),
		},
	}
}

func TestResolve_Scenarios(t *testing.T) {
	tl := scenarioTimeline(t)

	t.Run("A registration open", func(t *testing.T) {
		now := at(t, "2025-01-05T00:00:00Z")
		assert.Equal(t, RegistrationOpen, ResolvePhase(now, tl))

		target := ResolveCountdownTarget(now, tl, RegistrationOpen)
		require.NotNil(t, target)
		assert.Equal(t, LabelRegistrationEnds, target.Label)
		assert.True(t, target.Target.Equal(*tl.Registration.End))
	})

	t.Run("B live", func(t *testing.T) {
		now := at(t, "2025-01-15T00:00:00Z")
		assert.Equal(t, Live, ResolvePhase(now, tl))

		target := ResolveCountdownTarget(now, tl, Live)
		require.NotNil(t, target)
		assert.Equal(t, LabelSubmissionEnds, target.Label)
		assert.True(t, target.Target.Equal(*tl.Building.End))
	})

	t.Run("C ended without voting", func(t *testing.T) {
		now := at(t, "2025-01-25T00:00:00Z")
		assert.Equal(t, Ended, ResolvePhase(now, tl))
		assert.Nil(t, ResolveCountdownTarget(now, tl, Ended))
	})

	t.Run("D gap between registration and building", func(t *testing.T) {
		gap := Timeline{
			Registration: TimePeriod{End: ptr(t, "2025-01-10")},
			Building:     TimePeriod{Start: ptr(t, "2025-01-12"), End: ptr(t, "2025-01-20")},
		}
		now := at(t, "2025-01-11")
		assert.Equal(t, RegistrationClosed, ResolvePhase(now, gap))

		target := ResolveCountdownTarget(now, gap, RegistrationClosed)
		require.NotNil(t, target)
		assert.Equal(t, LabelSubmissionStarts, target.Label)
		assert.True(t, target.Target.Equal(*gap.Building.Start))
	})
}

func TestResolvePhase_HalfOpenBoundaries(t *testing.T) {
	regEnd := ptr(t, "2025-03-01T00:00:00Z")
	buildStart := ptr(t, "2025-03-02T00:00:00Z")
	buildEnd := ptr(t, "2025-03-05T00:00:00Z")
	voteStart := ptr(t, "2025-03-05T00:00:00Z")
	voteEnd := ptr(t, "2025-03-07T00:00:00Z")
	tl := Timeline{
		Registration: TimePeriod{End: regEnd},
		Building:     TimePeriod{Start: buildStart, End: buildEnd},
		Voting:       &TimePeriod{Start: voteStart, End: voteEnd},
	}

	tests := []struct {
		name string
		now  time.Time
		want Phase
	}{
		{"just before registration end", regEnd.Add(-time.Nanosecond), RegistrationOpen},
		{"at registration end", *regEnd, RegistrationClosed},
		{"just before building start", buildStart.Add(-time.Nanosecond), RegistrationClosed},
		{"at building start", *buildStart, Live},
		{"just before building end", buildEnd.Add(-time.Nanosecond), Live},
		{"at building end", *buildEnd, Voting},
		{"just before voting end", voteEnd.Add(-time.Nanosecond), Voting},
		{"at voting end", *voteEnd, Ended},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ResolvePhase(tc.now, tl))
		})
	}
}

func TestResolvePhase_MonotonicProgression(t *testing.T) {
	base := at(t, "2025-06-01T00:00:00Z")
	day := 24 * time.Hour
	mk := func(d int) *time.Time {
		ts := base.Add(time.Duration(d) * day)
		return &ts
	}
	timelines := map[string]Timeline{
		"full": {
			Registration: TimePeriod{Start: mk(0), End: mk(5)},
			Building:     TimePeriod{Start: mk(7), End: mk(10)},
			Voting:       &TimePeriod{Start: mk(10), End: mk(12)},
		},
		"contiguous": {
			Registration: TimePeriod{End: mk(3)},
			Building:     TimePeriod{Start: mk(3), End: mk(6)},
			Voting:       &TimePeriod{Start: mk(8), End: mk(9)},
		},
		"no voting": {
			Registration: TimePeriod{End: mk(2)},
			Building:     TimePeriod{Start: mk(4), End: mk(6)},
		},
	}

	for name, tl := range timelines {
		t.Run(name, func(t *testing.T) {
			prev := RegistrationOpen
			for h := -24; h < 15*24; h++ {
				now := base.Add(time.Duration(h) * time.Hour)
				got := ResolvePhase(now, tl)
				require.GreaterOrEqual(t, int(got), int(prev), "phase went backwards at %s", now)
				prev = got
			}
			assert.Equal(t, Ended, prev)
		})
	}
}

func TestResolvePhase_Totality(t *testing.T) {
	now := at(t, "2025-01-15T00:00:00Z")
	early := ptr(t, "2025-01-01T00:00:00Z")
	late := ptr(t, "2025-02-01T00:00:00Z")
	bounds := []*time.Time{nil, early, late}

	for _, rs := range bounds {
		for _, re := range bounds {
			for _, bs := range bounds {
				for _, be := range bounds {
					for _, ve := range bounds {
						for _, withVoting := range []bool{false, true} {
							tl := Timeline{
								Registration: TimePeriod{Start: rs, End: re},
								Building:     TimePeriod{Start: bs, End: be},
							}
							if withVoting {
								tl.Voting = &TimePeriod{End: ve}
							}
							var phase Phase
							require.NotPanics(t, func() { phase = ResolvePhase(now, tl) })
							assert.True(t, phase.Valid())
							require.NotPanics(t, func() { Resolve(now, tl) })
						}
					}
				}
			}
		}
	}
}

func TestResolvePhase_EdgePolicies(t *testing.T) {
	now := at(t, "2025-01-15T00:00:00Z")

	t.Run("all absent is ended", func(t *testing.T) {
		assert.Equal(t, Ended, ResolvePhase(now, Timeline{}))
		assert.Equal(t, Ended, ResolvePhase(now, Timeline{Voting: &TimePeriod{}}))
		status := Resolve(now, Timeline{})
		assert.Nil(t, status.Countdown)
		assert.Nil(t, status.Remaining)
	})

	t.Run("no voting after building end is ended", func(t *testing.T) {
		tl := Timeline{Building: TimePeriod{Start: ptr(t, "2025-01-01"), End: ptr(t, "2025-01-10")}}
		assert.Equal(t, Ended, ResolvePhase(now, tl))
	})

	t.Run("overlapping registration resolves by check order", func(t *testing.T) {
		tl := Timeline{
			Registration: TimePeriod{End: ptr(t, "2025-01-20")},
			Building:     TimePeriod{Start: ptr(t, "2025-01-10"), End: ptr(t, "2025-01-25")},
		}
		// registration.end is checked first, so registration still reads as open
		assert.Equal(t, RegistrationOpen, ResolvePhase(now, tl))
		assert.Equal(t, Live, ResolvePhase(at(t, "2025-01-21"), tl))
	})

	t.Run("building end without start is live", func(t *testing.T) {
		tl := Timeline{Building: TimePeriod{End: ptr(t, "2025-01-20")}}
		assert.Equal(t, Live, ResolvePhase(now, tl))
	})

	t.Run("registration without end falls through", func(t *testing.T) {
		tl := Timeline{
			Registration: TimePeriod{Start: ptr(t, "2025-01-01")},
			Building:     TimePeriod{Start: ptr(t, "2025-01-18"), End: ptr(t, "2025-01-20")},
		}
		assert.Equal(t, RegistrationClosed, ResolvePhase(now, tl))
	})

	t.Run("inverted building period", func(t *testing.T) {
		tl := Timeline{Building: TimePeriod{Start: ptr(t, "2025-01-20"), End: ptr(t, "2025-01-18")}}
		assert.Equal(t, RegistrationClosed, ResolvePhase(now, tl))
	})

	t.Run("voting without end is ended", func(t *testing.T) {
		tl := Timeline{Voting: &TimePeriod{Start: ptr(t, "2025-01-01")}}
		assert.Equal(t, Ended, ResolvePhase(now, tl))
	})
}

func TestResolveCountdownTarget_MissingBoundaries(t *testing.T) {
	now := at(t, "2025-01-15T00:00:00Z")
	empty := Timeline{}

	for _, phase := range Phases() {
		assert.Nil(t, ResolveCountdownTarget(now, empty, phase), phase.String())
	}

	voting := Timeline{Voting: &TimePeriod{End: ptr(t, "2025-01-20")}}
	target := ResolveCountdownTarget(now, voting, Voting)
	require.NotNil(t, target)
	assert.Equal(t, LabelVotingEnds, target.Label)
}

func TestResolve_RemainingMatchesTarget(t *testing.T) {
	tl := scenarioTimeline(t)
	now := at(t, "2025-01-05T06:30:15Z")

	status := Resolve(now, tl)
	assert.Equal(t, RegistrationOpen, status.Phase)
	assert.Equal(t, "Registration Open", status.Label)
	require.NotNil(t, status.Remaining)
	assert.Equal(t, Countdown{Days: 4, Hours: 17, Minutes: 29, Seconds: 45}, *status.Remaining)
}
