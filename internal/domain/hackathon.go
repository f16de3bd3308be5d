package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/hackx/backend/internal/lifecycle"
)

// Hackathon is an event with registration, building and voting windows.
// Any boundary may be unset; the lifecycle phase is derived, never stored.
type Hackathon struct {
	ID                uuid.UUID      `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	OrganizerID       uuid.UUID      `json:"organizer_id" gorm:"type:uuid;not null;index"`
	Name              string         `json:"name" gorm:"not null"`
	Slug              string         `json:"slug" gorm:"uniqueIndex;not null"`
	Description       string         `json:"description" gorm:"type:text"`
	Tags              pq.StringArray `json:"tags" gorm:"type:text[]"`
	RegistrationStart *time.Time     `json:"registration_start"`
	RegistrationEnd   *time.Time     `json:"registration_end"`
	BuildingStart     *time.Time     `json:"building_start"`
	BuildingEnd       *time.Time     `json:"building_end"`
	VotingStart       *time.Time     `json:"voting_start"`
	VotingEnd         *time.Time     `json:"voting_end"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`

	// Relationships
	Organizer     User             `json:"-" gorm:"foreignKey:OrganizerID"`
	Judges        []HackathonJudge `json:"-" gorm:"foreignKey:HackathonID"`
	Registrations []Registration   `json:"-" gorm:"foreignKey:HackathonID"`
	Projects      []Project        `json:"-" gorm:"foreignKey:HackathonID"`
}

// TableName specifies the table name for GORM
func (Hackathon) TableName() string {
	return "hackathons"
}

// Timeline converts the stored boundaries into a lifecycle timeline.
// Voting is omitted entirely when neither voting boundary is set.
func (h *Hackathon) Timeline() lifecycle.Timeline {
	t := lifecycle.Timeline{
		Registration: lifecycle.TimePeriod{Start: h.RegistrationStart, End: h.RegistrationEnd},
		Building:     lifecycle.TimePeriod{Start: h.BuildingStart, End: h.BuildingEnd},
	}
	if h.VotingStart != nil || h.VotingEnd != nil {
		t.Voting = &lifecycle.TimePeriod{Start: h.VotingStart, End: h.VotingEnd}
	}
	return t
}

// SetTimeline copies a lifecycle timeline onto the stored boundaries
func (h *Hackathon) SetTimeline(t lifecycle.Timeline) {
	h.RegistrationStart, h.RegistrationEnd = t.Registration.Start, t.Registration.End
	h.BuildingStart, h.BuildingEnd = t.Building.Start, t.Building.End
	h.VotingStart, h.VotingEnd = nil, nil
	if t.Voting != nil {
		h.VotingStart, h.VotingEnd = t.Voting.Start, t.Voting.End
	}
}

// Phase resolves the lifecycle phase at now
func (h *Hackathon) Phase(now time.Time) lifecycle.Phase {
	return lifecycle.ResolvePhase(now, h.Timeline())
}

// HackathonRepository defines the interface for hackathon data access
type HackathonRepository interface {
	Create(ctx context.Context, hackathon *Hackathon) error
	FindByID(ctx context.Context, id uuid.UUID) (*Hackathon, error)
	FindBySlug(ctx context.Context, slug string) (*Hackathon, error)
	FindAll(ctx context.Context, filter HackathonFilter) ([]Hackathon, error)
	Update(ctx context.Context, hackathon *Hackathon) error
	Delete(ctx context.Context, id uuid.UUID) error
	AddJudge(ctx context.Context, judge *HackathonJudge) error
	IsJudge(ctx context.Context, hackathonID, userID uuid.UUID) (bool, error)
	Count(ctx context.Context) (int64, error)
}

// HackathonFilter narrows hackathon listings. Phase is applied after loading
// because it depends on the evaluation instant At; a zero At means now.
type HackathonFilter struct {
	OrganizerID *uuid.UUID
	Phase       *lifecycle.Phase
	At          time.Time
}

// HackathonJudge grants a user the right to score a hackathon's projects
type HackathonJudge struct {
	HackathonID uuid.UUID `json:"hackathon_id" gorm:"type:uuid;primaryKey"`
	UserID      uuid.UUID `json:"user_id" gorm:"type:uuid;primaryKey"`
	CreatedAt   time.Time `json:"created_at"`

	User User `json:"-" gorm:"foreignKey:UserID"`
}

// TableName specifies the table name for GORM
func (HackathonJudge) TableName() string {
	return "hackathon_judges"
}

// TimelineRequest carries raw period boundaries. Each value may be an
// ISO-8601 string, epoch seconds or null.
type TimelineRequest struct {
	RegistrationStart any `json:"registration_start"`
	RegistrationEnd   any `json:"registration_end"`
	BuildingStart     any `json:"building_start"`
	BuildingEnd       any `json:"building_end"`
	VotingStart       any `json:"voting_start"`
	VotingEnd         any `json:"voting_end"`
}

// CreateHackathonRequest represents the data needed to create a hackathon
type CreateHackathonRequest struct {
	Name        string   `json:"name" binding:"required,min=3,max=120"`
	Description string   `json:"description" binding:"max=5000"`
	Tags        []string `json:"tags" binding:"max=10,dive,min=1,max=32"`
	TimelineRequest
}

// AddJudgeRequest names the user to add as a judge
type AddJudgeRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// HackathonResponse represents a hackathon in API responses
type HackathonResponse struct {
	ID          uuid.UUID          `json:"id"`
	OrganizerID uuid.UUID          `json:"organizer_id"`
	Name        string             `json:"name"`
	Slug        string             `json:"slug"`
	Description string             `json:"description"`
	Tags        []string           `json:"tags"`
	Timeline    lifecycle.Timeline `json:"timeline"`
	Status      lifecycle.Status   `json:"status"`
	CreatedAt   time.Time          `json:"created_at"`
}

// ToResponse converts a Hackathon to a HackathonResponse, resolving its
// status at now
func (h *Hackathon) ToResponse(now time.Time) HackathonResponse {
	tags := []string(h.Tags)
	if tags == nil {
		tags = []string{}
	}
	timeline := h.Timeline()
	return HackathonResponse{
		ID:          h.ID,
		OrganizerID: h.OrganizerID,
		Name:        h.Name,
		Slug:        h.Slug,
		Description: h.Description,
		Tags:        tags,
		Timeline:    timeline,
		Status:      lifecycle.Resolve(now, timeline),
		CreatedAt:   h.CreatedAt,
	}
}
