package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/hackx/backend/internal/domain"
	"github.com/hackx/backend/internal/infrastructure"
	"github.com/hackx/backend/internal/lifecycle"
)

// ParticipationService handles registrations, project submissions and
// judging. Every write is gated on the hackathon's current phase.
type ParticipationService struct {
	hackathonRepo domain.HackathonRepository
	regRepo       domain.RegistrationRepository
	projectRepo   domain.ProjectRepository
	scoreRepo     domain.ScoreRepository
	metrics       *infrastructure.TelemetryMetrics
	tracer        trace.Tracer
	logger        *zap.Logger
	now           func() time.Time
}

// NewParticipationService creates a new participation service
func NewParticipationService(
	hackathonRepo domain.HackathonRepository,
	regRepo domain.RegistrationRepository,
	projectRepo domain.ProjectRepository,
	scoreRepo domain.ScoreRepository,
	metrics *infrastructure.TelemetryMetrics,
	tracer trace.Tracer,
	logger *zap.Logger,
) *ParticipationService {
	return &ParticipationService{
		hackathonRepo: hackathonRepo,
		regRepo:       regRepo,
		projectRepo:   projectRepo,
		scoreRepo:     scoreRepo,
		metrics:       metrics,
		tracer:        tracer,
		logger:        logger,
		now:           time.Now,
	}
}

// WithClock replaces the service's time source
func (s *ParticipationService) WithClock(now func() time.Time) *ParticipationService {
	s.now = now
	return s
}

// Now returns the service's current instant
func (s *ParticipationService) Now() time.Time {
	return s.now()
}

// hackathonIn loads a hackathon and checks it is in the wanted phase
func (s *ParticipationService) hackathonIn(ctx context.Context, hackathonID uuid.UUID, want lifecycle.Phase, closed error) (*domain.Hackathon, error) {
	hackathon, err := s.hackathonRepo.FindByID(ctx, hackathonID)
	if err != nil {
		return nil, err
	}
	if phase := hackathon.Phase(s.now()); phase != want {
		return nil, domain.WrapError(closed, closed.Error()+" (hackathon is "+phase.Label()+")")
	}
	return hackathon, nil
}

// Register signs a user up for a hackathon while registration is open
func (s *ParticipationService) Register(ctx context.Context, userID, hackathonID uuid.UUID, req *domain.RegisterRequest) (*domain.Registration, error) {
	ctx, span := s.tracer.Start(ctx, "ParticipationService.Register")
	defer span.End()

	span.SetAttributes(
		attribute.String("user.id", userID.String()),
		attribute.String("hackathon.id", hackathonID.String()),
	)

	hackathon, err := s.hackathonIn(ctx, hackathonID, lifecycle.RegistrationOpen, domain.ErrRegistrationNotOpen)
	if err != nil {
		return nil, err
	}
	if hackathon.OrganizerID == userID {
		return nil, domain.ErrOrganizerEntry
	}

	registration := &domain.Registration{
		HackathonID: hackathonID,
		UserID:      userID,
		TeamName:    req.TeamName,
		CreatedAt:   s.now(),
	}
	if err := s.regRepo.Create(ctx, registration); err != nil {
		return nil, err
	}
	s.metrics.Registrations.Add(ctx, 1)

	s.logger.Info("Participant registered",
		zap.String("hackathon_id", hackathonID.String()),
		zap.String("user_id", userID.String()),
	)
	return registration, nil
}

// Unregister withdraws a registration while registration is still open
func (s *ParticipationService) Unregister(ctx context.Context, userID, hackathonID uuid.UUID) error {
	ctx, span := s.tracer.Start(ctx, "ParticipationService.Unregister")
	defer span.End()

	span.SetAttributes(
		attribute.String("user.id", userID.String()),
		attribute.String("hackathon.id", hackathonID.String()),
	)

	if _, err := s.hackathonIn(ctx, hackathonID, lifecycle.RegistrationOpen, domain.ErrRegistrationNotOpen); err != nil {
		return err
	}
	if err := s.regRepo.Delete(ctx, hackathonID, userID); err != nil {
		return err
	}
	s.metrics.Registrations.Add(ctx, -1)

	s.logger.Info("Participant unregistered",
		zap.String("hackathon_id", hackathonID.String()),
		zap.String("user_id", userID.String()),
	)
	return nil
}

// MyRegistrations lists a user's registrations with their hackathons
func (s *ParticipationService) MyRegistrations(ctx context.Context, userID uuid.UUID) ([]domain.Registration, error) {
	ctx, span := s.tracer.Start(ctx, "ParticipationService.MyRegistrations")
	defer span.End()

	span.SetAttributes(attribute.String("user.id", userID.String()))
	return s.regRepo.FindByUserID(ctx, userID)
}

// ParticipantCount returns how many users are registered for a hackathon
func (s *ParticipationService) ParticipantCount(ctx context.Context, hackathonID uuid.UUID) (int64, error) {
	ctx, span := s.tracer.Start(ctx, "ParticipationService.ParticipantCount")
	defer span.End()

	span.SetAttributes(attribute.String("hackathon.id", hackathonID.String()))

	if _, err := s.hackathonRepo.FindByID(ctx, hackathonID); err != nil {
		return 0, err
	}
	return s.regRepo.CountByHackathon(ctx, hackathonID)
}

// SubmitProject stores a registered participant's project while the
// hackathon is live. A second submission replaces the first.
func (s *ParticipationService) SubmitProject(ctx context.Context, userID, hackathonID uuid.UUID, req *domain.SubmitProjectRequest) (*domain.Project, error) {
	ctx, span := s.tracer.Start(ctx, "ParticipationService.SubmitProject")
	defer span.End()

	span.SetAttributes(
		attribute.String("user.id", userID.String()),
		attribute.String("hackathon.id", hackathonID.String()),
	)

	if _, err := s.hackathonIn(ctx, hackathonID, lifecycle.Live, domain.ErrSubmissionNotOpen); err != nil {
		return nil, err
	}
	if _, err := s.regRepo.Find(ctx, hackathonID, userID); err != nil {
		return nil, err
	}

	project, err := s.saveProject(ctx, hackathonID, userID, req)
	if errors.Is(err, domain.ErrProjectExists) {
		// a concurrent first submission won the insert; replace it instead
		project, err = s.saveProject(ctx, hackathonID, userID, req)
	}
	if err != nil {
		s.logger.Error("Failed to save project", zap.Error(err))
		return nil, err
	}
	s.metrics.ProjectsSubmitted.Add(ctx, 1)

	s.logger.Info("Project submitted",
		zap.String("hackathon_id", hackathonID.String()),
		zap.String("project_id", project.ID.String()),
		zap.String("user_id", userID.String()),
	)
	return project, nil
}

// saveProject applies req to the participant's project, creating it when missing
func (s *ParticipationService) saveProject(ctx context.Context, hackathonID, userID uuid.UUID, req *domain.SubmitProjectRequest) (*domain.Project, error) {
	project, err := s.projectRepo.FindByHackathonAndUser(ctx, hackathonID, userID)
	switch {
	case errors.Is(err, domain.ErrProjectNotFound):
		project = &domain.Project{HackathonID: hackathonID, UserID: userID}
	case err != nil:
		return nil, err
	}

	project.Title = req.Title
	project.Description = req.Description
	project.RepoURL = req.RepoURL
	project.DemoURL = req.DemoURL
	project.TechStack = req.TechStack
	project.SubmittedAt = s.now()

	if err := s.projectRepo.Save(ctx, project); err != nil {
		return nil, err
	}
	return project, nil
}

// ListProjects lists the projects submitted to a hackathon
func (s *ParticipationService) ListProjects(ctx context.Context, hackathonID uuid.UUID) ([]domain.Project, error) {
	ctx, span := s.tracer.Start(ctx, "ParticipationService.ListProjects")
	defer span.End()

	span.SetAttributes(attribute.String("hackathon.id", hackathonID.String()))

	if _, err := s.hackathonRepo.FindByID(ctx, hackathonID); err != nil {
		return nil, err
	}
	return s.projectRepo.FindByHackathon(ctx, hackathonID)
}

// ScoreProject records a judge's score while voting is open
func (s *ParticipationService) ScoreProject(ctx context.Context, judgeID, hackathonID, projectID uuid.UUID, req *domain.ScoreProjectRequest) (*domain.Score, error) {
	ctx, span := s.tracer.Start(ctx, "ParticipationService.ScoreProject")
	defer span.End()

	span.SetAttributes(
		attribute.String("user.id", judgeID.String()),
		attribute.String("hackathon.id", hackathonID.String()),
		attribute.String("project.id", projectID.String()),
	)

	if req.Value == nil || *req.Value < domain.MinScore || *req.Value > domain.MaxScore {
		return nil, domain.ErrInvalidScore
	}
	if _, err := s.hackathonIn(ctx, hackathonID, lifecycle.Voting, domain.ErrVotingNotOpen); err != nil {
		return nil, err
	}

	isJudge, err := s.hackathonRepo.IsJudge(ctx, hackathonID, judgeID)
	if err != nil {
		return nil, err
	}
	if !isJudge {
		return nil, domain.ErrNotJudge
	}

	project, err := s.projectRepo.FindByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if project.HackathonID != hackathonID {
		return nil, domain.ErrProjectNotFound
	}
	if project.UserID == judgeID {
		return nil, domain.ErrSelfScore
	}

	now := s.now()
	score := &domain.Score{
		ProjectID: projectID,
		JudgeID:   judgeID,
		Value:     *req.Value,
		Comment:   req.Comment,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.scoreRepo.Upsert(ctx, score); err != nil {
		s.logger.Error("Failed to record score", zap.Error(err))
		return nil, err
	}
	s.metrics.ScoresRecorded.Add(ctx, 1,
		metric.WithAttributes(attribute.String("hackathon.id", hackathonID.String())),
	)

	s.logger.Info("Project scored",
		zap.String("project_id", projectID.String()),
		zap.String("judge_id", judgeID.String()),
		zap.Int("value", score.Value),
	)
	return score, nil
}

// Leaderboard ranks a hackathon's projects by average score. Projects with
// equal average and score count share a rank; unscored projects rank last.
func (s *ParticipationService) Leaderboard(ctx context.Context, hackathonID uuid.UUID) ([]domain.LeaderboardEntry, error) {
	ctx, span := s.tracer.Start(ctx, "ParticipationService.Leaderboard")
	defer span.End()

	span.SetAttributes(attribute.String("hackathon.id", hackathonID.String()))

	projects, err := s.ListProjects(ctx, hackathonID)
	if err != nil {
		return nil, err
	}
	summaries, err := s.scoreRepo.Summaries(ctx, hackathonID)
	if err != nil {
		return nil, err
	}
	return rankProjects(projects, summaries), nil
}

func rankProjects(projects []domain.Project, summaries []domain.ScoreSummary) []domain.LeaderboardEntry {
	byProject := make(map[uuid.UUID]domain.ScoreSummary, len(summaries))
	for _, sum := range summaries {
		byProject[sum.ProjectID] = sum
	}

	entries := make([]domain.LeaderboardEntry, len(projects))
	for i, p := range projects {
		sum := byProject[p.ID]
		entries[i] = domain.LeaderboardEntry{
			ProjectID:    p.ID,
			UserID:       p.UserID,
			Title:        p.Title,
			AverageScore: sum.AverageScore,
			ScoreCount:   sum.ScoreCount,
		}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.AverageScore != b.AverageScore {
			return a.AverageScore > b.AverageScore
		}
		if a.ScoreCount != b.ScoreCount {
			return a.ScoreCount > b.ScoreCount
		}
		return a.Title < b.Title
	})

	for i := range entries {
		if i > 0 && entries[i].AverageScore == entries[i-1].AverageScore && entries[i].ScoreCount == entries[i-1].ScoreCount {
			entries[i].Rank = entries[i-1].Rank
			continue
		}
		entries[i].Rank = i + 1
	}
	return entries
}
