package service

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/hackx/backend/internal/cache"
	"github.com/hackx/backend/internal/domain"
	"github.com/hackx/backend/internal/infrastructure"
	"github.com/hackx/backend/internal/lifecycle"
)

// HackathonService handles hackathon management and lifecycle status
type HackathonService struct {
	hackathonRepo domain.HackathonRepository
	userRepo      domain.UserRepository
	timelines     *cache.TimelineCache
	validate      *validator.Validate
	metrics       *infrastructure.TelemetryMetrics
	tracer        trace.Tracer
	logger        *zap.Logger
	now           func() time.Time
}

// NewHackathonService creates a new hackathon service
func NewHackathonService(
	hackathonRepo domain.HackathonRepository,
	userRepo domain.UserRepository,
	timelines *cache.TimelineCache,
	metrics *infrastructure.TelemetryMetrics,
	tracer trace.Tracer,
	logger *zap.Logger,
) *HackathonService {
	return &HackathonService{
		hackathonRepo: hackathonRepo,
		userRepo:      userRepo,
		timelines:     timelines,
		validate:      newTimelineValidator(),
		metrics:       metrics,
		tracer:        tracer,
		logger:        logger,
		now:           time.Now,
	}
}

// WithClock replaces the service's time source
func (s *HackathonService) WithClock(now func() time.Time) *HackathonService {
	s.now = now
	return s
}

// Now returns the service's current instant
func (s *HackathonService) Now() time.Time {
	return s.now()
}

// CreateHackathon creates a new hackathon organized by organizerID
func (s *HackathonService) CreateHackathon(ctx context.Context, organizerID uuid.UUID, req *domain.CreateHackathonRequest) (*domain.Hackathon, error) {
	ctx, span := s.tracer.Start(ctx, "HackathonService.CreateHackathon")
	defer span.End()

	span.SetAttributes(
		attribute.String("user.id", organizerID.String()),
		attribute.String("hackathon.name", req.Name),
	)

	timeline, err := normalizeTimeline(s.validate, req.TimelineRequest)
	if err != nil {
		return nil, err
	}

	slug, err := s.uniqueSlug(ctx, req.Name)
	if err != nil {
		return nil, err
	}

	hackathon := &domain.Hackathon{
		OrganizerID: organizerID,
		Name:        req.Name,
		Slug:        slug,
		Description: req.Description,
		Tags:        req.Tags,
	}
	hackathon.SetTimeline(timeline)

	if err := s.hackathonRepo.Create(ctx, hackathon); err != nil {
		s.logger.Error("Failed to create hackathon", zap.Error(err))
		return nil, err
	}

	s.logger.Info("Hackathon created",
		zap.String("hackathon_id", hackathon.ID.String()),
		zap.String("organizer_id", organizerID.String()),
		zap.String("slug", slug),
	)

	span.SetAttributes(attribute.String("hackathon.id", hackathon.ID.String()))
	return hackathon, nil
}

func (s *HackathonService) uniqueSlug(ctx context.Context, name string) (string, error) {
	slug := slugify(name)
	_, err := s.hackathonRepo.FindBySlug(ctx, slug)
	switch {
	case errors.Is(err, domain.ErrHackathonNotFound):
		return slug, nil
	case err != nil:
		return "", err
	default:
		return slugWithSuffix(slug), nil
	}
}

// UpdateTimeline replaces the periods of a hackathon. Only its organizer may do so.
func (s *HackathonService) UpdateTimeline(ctx context.Context, userID, hackathonID uuid.UUID, req *domain.TimelineRequest) (*domain.Hackathon, error) {
	ctx, span := s.tracer.Start(ctx, "HackathonService.UpdateTimeline")
	defer span.End()

	span.SetAttributes(
		attribute.String("user.id", userID.String()),
		attribute.String("hackathon.id", hackathonID.String()),
	)

	hackathon, err := s.ownedHackathon(ctx, userID, hackathonID)
	if err != nil {
		return nil, err
	}

	timeline, err := normalizeTimeline(s.validate, *req)
	if err != nil {
		return nil, err
	}
	hackathon.SetTimeline(timeline)

	if err := s.hackathonRepo.Update(ctx, hackathon); err != nil {
		s.logger.Error("Failed to update hackathon timeline", zap.Error(err))
		return nil, err
	}
	s.invalidate(ctx, hackathonID)

	s.logger.Info("Hackathon timeline updated",
		zap.String("hackathon_id", hackathonID.String()),
		zap.String("phase", hackathon.Phase(s.now()).String()),
	)
	return hackathon, nil
}

// DeleteHackathon removes a hackathon and everything attached to it
func (s *HackathonService) DeleteHackathon(ctx context.Context, userID, hackathonID uuid.UUID) error {
	ctx, span := s.tracer.Start(ctx, "HackathonService.DeleteHackathon")
	defer span.End()

	span.SetAttributes(
		attribute.String("user.id", userID.String()),
		attribute.String("hackathon.id", hackathonID.String()),
	)

	if _, err := s.ownedHackathon(ctx, userID, hackathonID); err != nil {
		return err
	}
	if err := s.hackathonRepo.Delete(ctx, hackathonID); err != nil {
		return err
	}
	s.invalidate(ctx, hackathonID)

	s.logger.Info("Hackathon deleted", zap.String("hackathon_id", hackathonID.String()))
	return nil
}

// GetHackathon retrieves a hackathon by ID
func (s *HackathonService) GetHackathon(ctx context.Context, hackathonID uuid.UUID) (*domain.Hackathon, error) {
	ctx, span := s.tracer.Start(ctx, "HackathonService.GetHackathon")
	defer span.End()

	span.SetAttributes(attribute.String("hackathon.id", hackathonID.String()))
	return s.hackathonRepo.FindByID(ctx, hackathonID)
}

// ListHackathons lists hackathons, optionally narrowed by organizer and by
// the phase they are in right now
func (s *HackathonService) ListHackathons(ctx context.Context, filter domain.HackathonFilter) ([]domain.Hackathon, error) {
	ctx, span := s.tracer.Start(ctx, "HackathonService.ListHackathons")
	defer span.End()

	hackathons, err := s.hackathonRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	if filter.Phase == nil {
		return hackathons, nil
	}

	span.SetAttributes(attribute.String("hackathon.phase", filter.Phase.String()))
	now := filter.At
	if now.IsZero() {
		now = s.now()
	}
	filtered := make([]domain.Hackathon, 0, len(hackathons))
	for _, h := range hackathons {
		if h.Phase(now) == *filter.Phase {
			filtered = append(filtered, h)
		}
	}
	return filtered, nil
}

// GetStatus resolves the lifecycle status of a hackathon at the current instant.
// Timelines are read through the cache since this is polled by every viewer.
func (s *HackathonService) GetStatus(ctx context.Context, hackathonID uuid.UUID) (*lifecycle.Status, error) {
	ctx, span := s.tracer.Start(ctx, "HackathonService.GetStatus")
	defer span.End()

	span.SetAttributes(attribute.String("hackathon.id", hackathonID.String()))

	timeline, err := s.timelines.Fetch(ctx, hackathonID, s.loadTimeline)
	if err != nil {
		return nil, err
	}

	status := lifecycle.Resolve(s.now(), timeline)
	s.metrics.PhaseResolutions.Add(ctx, 1,
		metric.WithAttributes(attribute.String("phase", status.Phase.String())),
	)
	span.SetAttributes(attribute.String("hackathon.phase", status.Phase.String()))
	return &status, nil
}

func (s *HackathonService) loadTimeline(ctx context.Context, hackathonID uuid.UUID) (lifecycle.Timeline, error) {
	hackathon, err := s.hackathonRepo.FindByID(ctx, hackathonID)
	if err != nil {
		return lifecycle.Timeline{}, err
	}
	return hackathon.Timeline(), nil
}

// AddJudge lets the organizer grant judging rights to a registered user
func (s *HackathonService) AddJudge(ctx context.Context, organizerID, hackathonID uuid.UUID, email string) (*domain.User, error) {
	ctx, span := s.tracer.Start(ctx, "HackathonService.AddJudge")
	defer span.End()

	span.SetAttributes(
		attribute.String("user.id", organizerID.String()),
		attribute.String("hackathon.id", hackathonID.String()),
	)

	if _, err := s.ownedHackathon(ctx, organizerID, hackathonID); err != nil {
		return nil, err
	}

	judge, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	if err := s.hackathonRepo.AddJudge(ctx, &domain.HackathonJudge{
		HackathonID: hackathonID,
		UserID:      judge.ID,
		CreatedAt:   s.now(),
	}); err != nil {
		return nil, err
	}

	s.logger.Info("Judge added",
		zap.String("hackathon_id", hackathonID.String()),
		zap.String("judge_id", judge.ID.String()),
	)
	return judge, nil
}

func (s *HackathonService) ownedHackathon(ctx context.Context, userID, hackathonID uuid.UUID) (*domain.Hackathon, error) {
	hackathon, err := s.hackathonRepo.FindByID(ctx, hackathonID)
	if err != nil {
		return nil, err
	}
	if hackathon.OrganizerID != userID {
		return nil, domain.ErrForbidden
	}
	return hackathon, nil
}

func (s *HackathonService) invalidate(ctx context.Context, hackathonID uuid.UUID) {
	if err := s.timelines.Invalidate(ctx, hackathonID); err != nil {
		s.logger.Warn("Failed to invalidate cached timeline",
			zap.String("hackathon_id", hackathonID.String()),
			zap.Error(err),
		)
	}
}
