package data

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"

	"github.com/hackx/backend/internal/domain"
	"github.com/hackx/backend/internal/infrastructure"
	"github.com/hackx/backend/internal/lifecycle"
)

//go:embed hackathons.yaml
var demoData []byte

type hoursWindow struct {
	Start *float64 `yaml:"start"`
	End   *float64 `yaml:"end"`
}

func (w *hoursWindow) period(now time.Time) lifecycle.TimePeriod {
	if w == nil {
		return lifecycle.TimePeriod{}
	}
	return lifecycle.TimePeriod{Start: offset(now, w.Start), End: offset(now, w.End)}
}

func offset(now time.Time, hours *float64) *time.Time {
	if hours == nil {
		return nil
	}
	t := now.Add(time.Duration(*hours * float64(time.Hour))).UTC()
	return &t
}

type hackathonFixture struct {
	Name         string          `yaml:"name"`
	Slug         string          `yaml:"slug"`
	Description  string          `yaml:"description"`
	Tags         []string        `yaml:"tags"`
	Phase        lifecycle.Phase `yaml:"phase"`
	Registration *hoursWindow    `yaml:"registration"`
	Building     *hoursWindow    `yaml:"building"`
	Voting       *hoursWindow    `yaml:"voting"`
}

// Timeline places the fixture's windows relative to now
func (f hackathonFixture) Timeline(now time.Time) lifecycle.Timeline {
	t := lifecycle.Timeline{
		Registration: f.Registration.period(now),
		Building:     f.Building.period(now),
	}
	if f.Voting != nil {
		voting := f.Voting.period(now)
		t.Voting = &voting
	}
	return t
}

type demoFixtures struct {
	Organizer struct {
		Username string `yaml:"username"`
	} `yaml:"organizer"`
	Hackathons []hackathonFixture `yaml:"hackathons"`
}

func loadFixtures() (*demoFixtures, error) {
	var fixtures demoFixtures
	if err := yaml.Unmarshal(demoData, &fixtures); err != nil {
		return nil, fmt.Errorf("parse demo hackathons: %w", err)
	}
	return &fixtures, nil
}

// HackathonStore is the part of the hackathon repository the seeder writes to
type HackathonStore interface {
	Count(ctx context.Context) (int64, error)
	Create(ctx context.Context, hackathon *domain.Hackathon) error
}

// UserStore is the part of the user repository the seeder writes to
type UserStore interface {
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) error
}

// Seeder handles database seeding operations
type Seeder struct {
	hackathons HackathonStore
	users      UserStore
	logger     *zap.Logger
	now        func() time.Time
}

// NewSeeder creates a new database seeder
func NewSeeder(hackathons HackathonStore, users UserStore, logger *zap.Logger) *Seeder {
	return &Seeder{
		hackathons: hackathons,
		users:      users,
		logger:     logger,
		now:        time.Now,
	}
}

// SeedDemoHackathons inserts one demo hackathon per lifecycle phase, owned
// by the configured organizer. It does nothing once any hackathon exists.
func (s *Seeder) SeedDemoHackathons(ctx context.Context, cfg *infrastructure.SeedConfig) error {
	s.logger.Info("Starting to seed demo hackathons...")

	count, err := s.hackathons.Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		s.logger.Info("Hackathons already present, skipping",
			zap.Int64("count", count),
		)
		return nil
	}

	fixtures, err := loadFixtures()
	if err != nil {
		return err
	}

	organizer, err := s.organizer(ctx, cfg, fixtures.Organizer.Username)
	if err != nil {
		return err
	}

	now := s.now()
	for _, f := range fixtures.Hackathons {
		hackathon := &domain.Hackathon{
			OrganizerID: organizer.ID,
			Name:        f.Name,
			Slug:        f.Slug,
			Description: f.Description,
			Tags:        f.Tags,
		}
		hackathon.SetTimeline(f.Timeline(now))

		if got := hackathon.Phase(now); got != f.Phase {
			s.logger.Warn("Demo hackathon resolves to an unexpected phase",
				zap.String("slug", f.Slug),
				zap.Stringer("want", f.Phase),
				zap.Stringer("got", got),
			)
		}

		if err := s.hackathons.Create(ctx, hackathon); err != nil {
			return fmt.Errorf("seed %s: %w", f.Slug, err)
		}
	}

	s.logger.Info("Successfully seeded demo hackathons",
		zap.Int("count", len(fixtures.Hackathons)),
		zap.String("organizer", organizer.Email),
	)
	return nil
}

// organizer returns the demo organizer account, creating it when missing
func (s *Seeder) organizer(ctx context.Context, cfg *infrastructure.SeedConfig, username string) (*domain.User, error) {
	user, err := s.users.FindByEmail(ctx, cfg.OrganizerEmail)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.OrganizerPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	user = &domain.User{
		Email:        cfg.OrganizerEmail,
		Username:     username,
		PasswordHash: string(hash),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	s.logger.Info("Created demo organizer", zap.String("email", user.Email))
	return user, nil
}
