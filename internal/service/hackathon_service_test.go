package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hackx/backend/internal/cache"
	"github.com/hackx/backend/internal/domain"
	"github.com/hackx/backend/internal/lifecycle"
)

func newHackathonService(t *testing.T, store *memStore, timelines *cache.TimelineCache, clk *clock) *HackathonService {
	t.Helper()
	telemetry, metrics := testMetrics(t)
	return NewHackathonService(
		memHackathonRepo{store},
		memUserRepo{store},
		timelines,
		metrics,
		telemetry.Tracer,
		zap.NewNop(),
	).WithClock(clk.Now)
}

func TestCreateHackathon(t *testing.T) {
	store := newMemStore()
	svc := newHackathonService(t, store, nil, &clock{t: *day(0)})
	ctx := context.Background()
	organizer := uuid.New()

	req := &domain.CreateHackathonRequest{
		Name: "Café Hacks 2025",
		Tags: []string{"ai"},
		TimelineRequest: domain.TimelineRequest{
			RegistrationEnd: "2025-01-11T00:00:00Z",
			BuildingStart:   float64(day(12).Unix()),
			BuildingEnd:     "2025-01-21",
			VotingEnd:       "",
		},
	}

	h, err := svc.CreateHackathon(ctx, organizer, req)
	require.NoError(t, err)
	assert.Equal(t, "cafe-hacks-2025", h.Slug)
	assert.Equal(t, organizer, h.OrganizerID)
	assert.Equal(t, *day(10), *h.RegistrationEnd)
	assert.Equal(t, *day(12), *h.BuildingStart)
	assert.Equal(t, *day(20), *h.BuildingEnd)
	assert.Nil(t, h.RegistrationStart)
	assert.Nil(t, h.VotingStart)
	assert.Nil(t, h.VotingEnd)

	again, err := svc.CreateHackathon(ctx, organizer, req)
	require.NoError(t, err)
	assert.NotEqual(t, h.Slug, again.Slug)
	assert.Regexp(t, `^cafe-hacks-2025-[0-9a-f]{8}$`, again.Slug)
}

func TestCreateHackathonRejectsBadTimeline(t *testing.T) {
	svc := newHackathonService(t, newMemStore(), nil, &clock{t: *day(0)})

	_, err := svc.CreateHackathon(context.Background(), uuid.New(), &domain.CreateHackathonRequest{
		Name:            "Inverted",
		TimelineRequest: domain.TimelineRequest{BuildingStart: "2025-02-01", BuildingEnd: "2025-01-01"},
	})
	require.ErrorIs(t, err, domain.ErrInvalidTimeline)
	assert.Contains(t, err.Error(), "building_start must not be after building_end")
}

func TestUpdateTimelineRequiresOrganizer(t *testing.T) {
	store := newMemStore()
	clk := &clock{t: *day(5)}
	svc := newHackathonService(t, store, nil, clk)
	ctx := context.Background()
	organizer := uuid.New()
	h := seedHackathon(store, organizer)

	_, err := svc.UpdateTimeline(ctx, uuid.New(), h.ID, &domain.TimelineRequest{})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = svc.UpdateTimeline(ctx, organizer, uuid.New(), &domain.TimelineRequest{})
	assert.ErrorIs(t, err, domain.ErrHackathonNotFound)

	updated, err := svc.UpdateTimeline(ctx, organizer, h.ID, &domain.TimelineRequest{
		RegistrationEnd: "2025-01-04T00:00:00Z",
		BuildingStart:   "2025-01-04T00:00:00Z",
		BuildingEnd:     "2025-01-08T00:00:00Z",
	})
	require.NoError(t, err)
	assert.Equal(t, lifecycle.Live, updated.Phase(clk.Now()))
	assert.Nil(t, updated.VotingEnd, "omitted voting bounds are cleared")
}

func TestGetStatus(t *testing.T) {
	store := newMemStore()
	clk := &clock{}
	svc := newHackathonService(t, store, nil, clk)
	ctx := context.Background()
	h := seedHackathon(store, uuid.New())

	tests := []struct {
		at        *time.Time
		phase     lifecycle.Phase
		countdown string
	}{
		{day(5), lifecycle.RegistrationOpen, lifecycle.LabelRegistrationEnds},
		{day(11), lifecycle.RegistrationClosed, lifecycle.LabelSubmissionStarts},
		{day(12), lifecycle.Live, lifecycle.LabelSubmissionEnds},
		{day(20), lifecycle.Voting, lifecycle.LabelVotingEnds},
		{day(25), lifecycle.Ended, ""},
	}
	for _, tt := range tests {
		t.Run(tt.phase.String(), func(t *testing.T) {
			clk.Set(tt.at)
			status, err := svc.GetStatus(ctx, h.ID)
			require.NoError(t, err)
			assert.Equal(t, tt.phase, status.Phase)
			assert.Equal(t, tt.phase.Label(), status.Label)
			if tt.countdown == "" {
				assert.Nil(t, status.Countdown)
				assert.Nil(t, status.Remaining)
				return
			}
			require.NotNil(t, status.Countdown)
			assert.Equal(t, tt.countdown, status.Countdown.Label)
			require.NotNil(t, status.Remaining)
		})
	}

	_, err := svc.GetStatus(ctx, uuid.New())
	assert.ErrorIs(t, err, domain.ErrHackathonNotFound)
}

func TestGetStatusReadsThroughCache(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store := newMemStore()
	clk := &clock{t: *day(15)}
	svc := newHackathonService(t, store, cache.NewTimelineCache(client, time.Minute), clk)
	ctx := context.Background()
	organizer := uuid.New()
	h := seedHackathon(store, organizer)

	for i := 0; i < 3; i++ {
		status, err := svc.GetStatus(ctx, h.ID)
		require.NoError(t, err)
		assert.Equal(t, lifecycle.Live, status.Phase)
	}
	assert.Equal(t, 1, store.findByIDCalls)
	assert.True(t, mr.Exists(cache.Key(h.ID)))

	// Moving the clock needs no invalidation: only the timeline is cached.
	clk.Set(day(21))
	status, err := svc.GetStatus(ctx, h.ID)
	require.NoError(t, err)
	assert.Equal(t, lifecycle.Voting, status.Phase)

	_, err = svc.UpdateTimeline(ctx, organizer, h.ID, &domain.TimelineRequest{})
	require.NoError(t, err)
	assert.False(t, mr.Exists(cache.Key(h.ID)))

	status, err = svc.GetStatus(ctx, h.ID)
	require.NoError(t, err)
	assert.Equal(t, lifecycle.Ended, status.Phase, "an empty timeline has ended")
}

func TestGetStatusPropagatesStoreErrors(t *testing.T) {
	store := newMemStore()
	store.findErr = errors.New("connection refused")
	svc := newHackathonService(t, store, nil, &clock{t: *day(1)})

	_, err := svc.GetStatus(context.Background(), uuid.New())
	assert.EqualError(t, err, "connection refused")
}

func TestListHackathonsByPhase(t *testing.T) {
	store := newMemStore()
	clk := &clock{t: *day(15)}
	svc := newHackathonService(t, store, nil, clk)
	ctx := context.Background()
	organizer := uuid.New()

	live := seedHackathon(store, organizer)
	upcoming := seedHackathon(store, uuid.New())
	upcoming.RegistrationEnd = day(30)

	all, err := svc.ListHackathons(ctx, domain.HackathonFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	phase := lifecycle.Live
	filtered, err := svc.ListHackathons(ctx, domain.HackathonFilter{Phase: &phase})
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, live.ID, filtered[0].ID)

	phase = lifecycle.RegistrationOpen
	filtered, err = svc.ListHackathons(ctx, domain.HackathonFilter{Phase: &phase, OrganizerID: &organizer})
	require.NoError(t, err)
	assert.Empty(t, filtered)

	// an explicit instant wins over the service clock
	filtered, err = svc.ListHackathons(ctx, domain.HackathonFilter{Phase: &phase, OrganizerID: &organizer, At: *day(5)})
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, live.ID, filtered[0].ID)
}

func TestAddJudgeAndDelete(t *testing.T) {
	store := newMemStore()
	svc := newHackathonService(t, store, nil, &clock{t: *day(1)})
	ctx := context.Background()
	organizer := uuid.New()
	h := seedHackathon(store, organizer)

	judge := &domain.User{Email: "judge@hackx.dev", Username: "judge"}
	require.NoError(t, memUserRepo{store}.Create(ctx, judge))

	_, err := svc.AddJudge(ctx, uuid.New(), h.ID, judge.Email)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = svc.AddJudge(ctx, organizer, h.ID, "nobody@hackx.dev")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)

	added, err := svc.AddJudge(ctx, organizer, h.ID, judge.Email)
	require.NoError(t, err)
	assert.Equal(t, judge.ID, added.ID)
	assert.True(t, store.judges[[2]uuid.UUID{h.ID, judge.ID}])

	_, err = svc.AddJudge(ctx, organizer, h.ID, judge.Email)
	assert.ErrorIs(t, err, domain.ErrJudgeExists)

	assert.ErrorIs(t, svc.DeleteHackathon(ctx, judge.ID, h.ID), domain.ErrForbidden)
	require.NoError(t, svc.DeleteHackathon(ctx, organizer, h.ID))

	_, err = svc.GetHackathon(ctx, h.ID)
	assert.ErrorIs(t, err, domain.ErrHackathonNotFound)
}
