package service

import (
	"encoding/json"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hackx/backend/internal/domain"
)

func TestNormalizeTimeline(t *testing.T) {
	v := newTimelineValidator()

	t.Run("all blank", func(t *testing.T) {
		timeline, err := normalizeTimeline(v, domain.TimelineRequest{RegistrationEnd: "  "})
		require.NoError(t, err)
		assert.True(t, timeline.Registration.IsZero())
		assert.True(t, timeline.Building.IsZero())
		assert.Nil(t, timeline.Voting)
	})

	t.Run("mixed formats", func(t *testing.T) {
		timeline, err := normalizeTimeline(v, domain.TimelineRequest{
			RegistrationStart: json.Number("1735689600"),
			RegistrationEnd:   "2025-01-11T00:00:00Z",
			VotingEnd:         "2025-01-26",
		})
		require.NoError(t, err)
		assert.Equal(t, epoch, *timeline.Registration.Start)
		assert.Equal(t, *day(10), *timeline.Registration.End)
		require.NotNil(t, timeline.Voting)
		assert.Nil(t, timeline.Voting.Start)
		assert.Equal(t, *day(25), *timeline.Voting.End)
	})

	t.Run("touching boundaries are allowed", func(t *testing.T) {
		_, err := normalizeTimeline(v, domain.TimelineRequest{
			RegistrationEnd: "2025-01-11",
			BuildingStart:   "2025-01-11",
			BuildingEnd:     "2025-01-21",
			VotingStart:     "2025-01-21",
			VotingEnd:       "2025-01-21",
		})
		assert.NoError(t, err)
	})

	t.Run("unparseable value", func(t *testing.T) {
		_, err := normalizeTimeline(v, domain.TimelineRequest{BuildingEnd: "next tuesday"})
		require.ErrorIs(t, err, domain.ErrInvalidTimeline)
		assert.Contains(t, err.Error(), "building_end")
	})

	t.Run("every inverted pair is reported", func(t *testing.T) {
		_, err := normalizeTimeline(v, domain.TimelineRequest{
			RegistrationStart: "2025-01-05",
			RegistrationEnd:   "2025-01-03",
			BuildingStart:     "2025-01-02",
			BuildingEnd:       "2025-01-10",
			VotingStart:       "2025-01-09",
		})
		require.ErrorIs(t, err, domain.ErrInvalidTimeline)
		assert.Equal(t,
			"registration_start must not be after registration_end; "+
				"registration_end must not be after building_start; "+
				"building_end must not be after voting_start",
			err.Error())
	})
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"HackX Winter 2025", "hackx-winter-2025"},
		{"  Zürich   Open Data!! ", "zurich-open-data"},
		{"Crème brûlée / Hack", "creme-brulee-hack"},
		{"---", "hackathon"},
		{"東京", "hackathon"},
		{strings.Repeat("ab ", 40), strings.TrimSuffix(strings.Repeat("ab-", 20), "-")},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			got := slugify(tt.name)
			assert.Equal(t, tt.want, got)
			assert.LessOrEqual(t, len(got), 60)
		})
	}
}

func TestSlugifyConcurrent(t *testing.T) {
	names := map[string]string{
		"Café Crème Hackathon": "cafe-creme-hackathon",
		"Žluťoučký kůň Jam":    "zlutoucky-kun-jam",
		"Noël à Montréal":      "noel-a-montreal",
	}

	var wg sync.WaitGroup
	errs := make(chan string, 64)
	for g := 0; g < 16; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				for name, want := range names {
					if got := slugify(name); got != want {
						errs <- name + " -> " + got
						return
					}
				}
			}
		}()
	}
	wg.Wait()
	close(errs)

	for e := range errs {
		t.Error(e)
	}
}
