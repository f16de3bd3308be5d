package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hackx/backend/internal/domain"
	"github.com/hackx/backend/internal/infrastructure"
)

// ============================================================================
// IN-MEMORY REPOSITORIES
// ============================================================================

type memStore struct {
	mu            sync.Mutex
	users         map[uuid.UUID]*domain.User
	hackathons    map[uuid.UUID]*domain.Hackathon
	judges        map[[2]uuid.UUID]bool
	registrations map[[2]uuid.UUID]*domain.Registration
	projects      map[uuid.UUID]*domain.Project
	scores        map[[2]uuid.UUID]*domain.Score

	findByIDCalls int
	findErr       error
}

func newMemStore() *memStore {
	return &memStore{
		users:         make(map[uuid.UUID]*domain.User),
		hackathons:    make(map[uuid.UUID]*domain.Hackathon),
		judges:        make(map[[2]uuid.UUID]bool),
		registrations: make(map[[2]uuid.UUID]*domain.Registration),
		projects:      make(map[uuid.UUID]*domain.Project),
		scores:        make(map[[2]uuid.UUID]*domain.Score),
	}
}

type memUserRepo struct{ s *memStore }

func (r memUserRepo) Create(_ context.Context, user *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Email == user.Email {
			return domain.ErrUserAlreadyExists
		}
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	cp := *user
	r.s.users[user.ID] = &cp
	return nil
}

func (r memUserRepo) FindByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (r memUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

type memHackathonRepo struct{ s *memStore }

func (r memHackathonRepo) Create(_ context.Context, h *domain.Hackathon) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	cp := *h
	r.s.hackathons[h.ID] = &cp
	return nil
}

func (r memHackathonRepo) FindByID(_ context.Context, id uuid.UUID) (*domain.Hackathon, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.findByIDCalls++
	if r.s.findErr != nil {
		return nil, r.s.findErr
	}
	h, ok := r.s.hackathons[id]
	if !ok {
		return nil, domain.ErrHackathonNotFound
	}
	cp := *h
	return &cp, nil
}

func (r memHackathonRepo) FindBySlug(_ context.Context, slug string) (*domain.Hackathon, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, h := range r.s.hackathons {
		if h.Slug == slug {
			cp := *h
			return &cp, nil
		}
	}
	return nil, domain.ErrHackathonNotFound
}

func (r memHackathonRepo) FindAll(_ context.Context, filter domain.HackathonFilter) ([]domain.Hackathon, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.Hackathon
	for _, h := range r.s.hackathons {
		if filter.OrganizerID != nil && h.OrganizerID != *filter.OrganizerID {
			continue
		}
		out = append(out, *h)
	}
	return out, nil
}

func (r memHackathonRepo) Update(_ context.Context, h *domain.Hackathon) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *h
	r.s.hackathons[h.ID] = &cp
	return nil
}

func (r memHackathonRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.hackathons[id]; !ok {
		return domain.ErrHackathonNotFound
	}
	delete(r.s.hackathons, id)
	for key, p := range r.s.projects {
		if p.HackathonID == id {
			delete(r.s.projects, key)
		}
	}
	for key := range r.s.registrations {
		if key[0] == id {
			delete(r.s.registrations, key)
		}
	}
	return nil
}

func (r memHackathonRepo) AddJudge(_ context.Context, j *domain.HackathonJudge) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	key := [2]uuid.UUID{j.HackathonID, j.UserID}
	if r.s.judges[key] {
		return domain.ErrJudgeExists
	}
	r.s.judges[key] = true
	return nil
}

func (r memHackathonRepo) IsJudge(_ context.Context, hackathonID, userID uuid.UUID) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.judges[[2]uuid.UUID{hackathonID, userID}], nil
}

func (r memHackathonRepo) Count(context.Context) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return int64(len(r.s.hackathons)), nil
}

type memRegistrationRepo struct{ s *memStore }

func (r memRegistrationRepo) Create(_ context.Context, reg *domain.Registration) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	key := [2]uuid.UUID{reg.HackathonID, reg.UserID}
	if _, ok := r.s.registrations[key]; ok {
		return domain.ErrAlreadyRegistered
	}
	reg.ID = uuid.New()
	cp := *reg
	r.s.registrations[key] = &cp
	return nil
}

func (r memRegistrationRepo) Find(_ context.Context, hackathonID, userID uuid.UUID) (*domain.Registration, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	reg, ok := r.s.registrations[[2]uuid.UUID{hackathonID, userID}]
	if !ok {
		return nil, domain.ErrNotRegistered
	}
	cp := *reg
	return &cp, nil
}

func (r memRegistrationRepo) FindByUserID(_ context.Context, userID uuid.UUID) ([]domain.Registration, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.Registration
	for key, reg := range r.s.registrations {
		if key[1] != userID {
			continue
		}
		cp := *reg
		if h, ok := r.s.hackathons[key[0]]; ok {
			hc := *h
			cp.Hackathon = &hc
		}
		out = append(out, cp)
	}
	return out, nil
}

func (r memRegistrationRepo) CountByHackathon(_ context.Context, hackathonID uuid.UUID) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for key := range r.s.registrations {
		if key[0] == hackathonID {
			n++
		}
	}
	return n, nil
}

func (r memRegistrationRepo) Delete(_ context.Context, hackathonID, userID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	key := [2]uuid.UUID{hackathonID, userID}
	if _, ok := r.s.registrations[key]; !ok {
		return domain.ErrNotRegistered
	}
	delete(r.s.registrations, key)
	return nil
}

type memProjectRepo struct{ s *memStore }

func (r memProjectRepo) Save(_ context.Context, p *domain.Project) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	cp := *p
	r.s.projects[p.ID] = &cp
	return nil
}

func (r memProjectRepo) FindByID(_ context.Context, id uuid.UUID) (*domain.Project, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.projects[id]
	if !ok {
		return nil, domain.ErrProjectNotFound
	}
	cp := *p
	return &cp, nil
}

func (r memProjectRepo) FindByHackathonAndUser(_ context.Context, hackathonID, userID uuid.UUID) (*domain.Project, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.projects {
		if p.HackathonID == hackathonID && p.UserID == userID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, domain.ErrProjectNotFound
}

func (r memProjectRepo) FindByHackathon(_ context.Context, hackathonID uuid.UUID) ([]domain.Project, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.Project
	for _, p := range r.s.projects {
		if p.HackathonID == hackathonID {
			out = append(out, *p)
		}
	}
	return out, nil
}

type memScoreRepo struct{ s *memStore }

func (r memScoreRepo) Upsert(_ context.Context, score *domain.Score) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	key := [2]uuid.UUID{score.ProjectID, score.JudgeID}
	if existing, ok := r.s.scores[key]; ok {
		score.ID = existing.ID
	} else {
		score.ID = uuid.New()
	}
	cp := *score
	r.s.scores[key] = &cp
	return nil
}

func (r memScoreRepo) Summaries(_ context.Context, hackathonID uuid.UUID) ([]domain.ScoreSummary, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	totals := make(map[uuid.UUID]*domain.ScoreSummary)
	sums := make(map[uuid.UUID]int)
	for key, sc := range r.s.scores {
		p, ok := r.s.projects[key[0]]
		if !ok || p.HackathonID != hackathonID {
			continue
		}
		if totals[key[0]] == nil {
			totals[key[0]] = &domain.ScoreSummary{ProjectID: key[0]}
		}
		totals[key[0]].ScoreCount++
		sums[key[0]] += sc.Value
	}
	out := make([]domain.ScoreSummary, 0, len(totals))
	for id, sum := range totals {
		sum.AverageScore = float64(sums[id]) / float64(sum.ScoreCount)
		out = append(out, *sum)
	}
	return out, nil
}

// ============================================================================
// FIXTURES
// ============================================================================

var epoch = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

func day(n int) *time.Time {
	t := epoch.Add(time.Duration(n) * 24 * time.Hour)
	return &t
}

type clock struct{ t time.Time }

func (c *clock) Now() time.Time { return c.t }

func (c *clock) Set(t *time.Time) { c.t = *t }

func testMetrics(t *testing.T) (*infrastructure.Telemetry, *infrastructure.TelemetryMetrics) {
	t.Helper()
	telemetry, err := infrastructure.NewTelemetry(context.Background(), &infrastructure.TelemetryConfig{ServiceName: "hackx-test"}, zap.NewNop())
	require.NoError(t, err)
	metrics, err := telemetry.CreateMetrics()
	require.NoError(t, err)
	return telemetry, metrics
}

// seedHackathon stores a hackathon with registration closing on day 10,
// building on days 12-20 and voting on days 20-25.
func seedHackathon(s *memStore, organizerID uuid.UUID) *domain.Hackathon {
	h := &domain.Hackathon{
		ID:              uuid.New(),
		OrganizerID:     organizerID,
		Name:            "HackX Winter",
		Slug:            "hackx-winter",
		RegistrationEnd: day(10),
		BuildingStart:   day(12),
		BuildingEnd:     day(20),
		VotingStart:     day(20),
		VotingEnd:       day(25),
	}
	s.hackathons[h.ID] = h
	return h
}
