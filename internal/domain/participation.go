package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Registration records a participant's sign-up for a hackathon
type Registration struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	HackathonID uuid.UUID `json:"hackathon_id" gorm:"type:uuid;not null;uniqueIndex:idx_registration_hackathon_user"`
	UserID      uuid.UUID `json:"user_id" gorm:"type:uuid;not null;uniqueIndex:idx_registration_hackathon_user"`
	TeamName    string    `json:"team_name"`
	CreatedAt   time.Time `json:"created_at"`

	Hackathon *Hackathon `json:"hackathon,omitempty" gorm:"foreignKey:HackathonID"`
	User      User       `json:"-" gorm:"foreignKey:UserID"`
}

// TableName specifies the table name for GORM
func (Registration) TableName() string {
	return "registrations"
}

// RegistrationRepository defines the interface for registration data access
type RegistrationRepository interface {
	Create(ctx context.Context, registration *Registration) error
	Find(ctx context.Context, hackathonID, userID uuid.UUID) (*Registration, error)
	FindByUserID(ctx context.Context, userID uuid.UUID) ([]Registration, error)
	CountByHackathon(ctx context.Context, hackathonID uuid.UUID) (int64, error)
	Delete(ctx context.Context, hackathonID, userID uuid.UUID) error
}

// RegisterRequest represents an optional team name for a registration
type RegisterRequest struct {
	TeamName string `json:"team_name" binding:"max=80"`
}

// Project is a participant's submission to a hackathon.
// One project per participant per hackathon; resubmitting updates it.
type Project struct {
	ID          uuid.UUID      `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	HackathonID uuid.UUID      `json:"hackathon_id" gorm:"type:uuid;not null;uniqueIndex:idx_project_hackathon_user"`
	UserID      uuid.UUID      `json:"user_id" gorm:"type:uuid;not null;uniqueIndex:idx_project_hackathon_user"`
	Title       string         `json:"title" gorm:"not null"`
	Description string         `json:"description" gorm:"type:text"`
	RepoURL     string         `json:"repo_url"`
	DemoURL     string         `json:"demo_url"`
	TechStack   pq.StringArray `json:"tech_stack" gorm:"type:text[]"`
	SubmittedAt time.Time      `json:"submitted_at" gorm:"not null"`
	UpdatedAt   time.Time      `json:"updated_at"`

	Scores []Score `json:"-" gorm:"foreignKey:ProjectID"`
}

// TableName specifies the table name for GORM
func (Project) TableName() string {
	return "projects"
}

// ProjectRepository defines the interface for project data access
type ProjectRepository interface {
	Save(ctx context.Context, project *Project) error
	FindByID(ctx context.Context, id uuid.UUID) (*Project, error)
	FindByHackathonAndUser(ctx context.Context, hackathonID, userID uuid.UUID) (*Project, error)
	FindByHackathon(ctx context.Context, hackathonID uuid.UUID) ([]Project, error)
}

// SubmitProjectRequest represents the data needed to submit a project
type SubmitProjectRequest struct {
	Title       string   `json:"title" binding:"required,min=3,max=120"`
	Description string   `json:"description" binding:"max=10000"`
	RepoURL     string   `json:"repo_url" binding:"omitempty,url"`
	DemoURL     string   `json:"demo_url" binding:"omitempty,url"`
	TechStack   []string `json:"tech_stack" binding:"max=20,dive,min=1,max=32"`
}

// ProjectResponse represents a project in API responses
type ProjectResponse struct {
	ID          uuid.UUID `json:"id"`
	HackathonID uuid.UUID `json:"hackathon_id"`
	UserID      uuid.UUID `json:"user_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	RepoURL     string    `json:"repo_url"`
	DemoURL     string    `json:"demo_url"`
	TechStack   []string  `json:"tech_stack"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// ToResponse converts a Project to a ProjectResponse
func (p *Project) ToResponse() ProjectResponse {
	stack := []string(p.TechStack)
	if stack == nil {
		stack = []string{}
	}
	return ProjectResponse{
		ID:          p.ID,
		HackathonID: p.HackathonID,
		UserID:      p.UserID,
		Title:       p.Title,
		Description: p.Description,
		RepoURL:     p.RepoURL,
		DemoURL:     p.DemoURL,
		TechStack:   stack,
		SubmittedAt: p.SubmittedAt,
	}
}

// Score is one judge's mark for one project
type Score struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	ProjectID uuid.UUID `json:"project_id" gorm:"type:uuid;not null;uniqueIndex:idx_score_project_judge"`
	JudgeID   uuid.UUID `json:"judge_id" gorm:"type:uuid;not null;uniqueIndex:idx_score_project_judge"`
	Value     int       `json:"value" gorm:"not null"`
	Comment   string    `json:"comment" gorm:"type:text"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for GORM
func (Score) TableName() string {
	return "scores"
}

// Score bounds
const (
	MinScore = 0
	MaxScore = 100
)

// ScoreRepository defines the interface for score data access
type ScoreRepository interface {
	Upsert(ctx context.Context, score *Score) error
	Summaries(ctx context.Context, hackathonID uuid.UUID) ([]ScoreSummary, error)
}

// ScoreSummary aggregates the scores of one project
type ScoreSummary struct {
	ProjectID    uuid.UUID
	AverageScore float64
	ScoreCount   int64
}

// ScoreProjectRequest represents a judge's score submission
type ScoreProjectRequest struct {
	Value   *int   `json:"value" binding:"required"`
	Comment string `json:"comment" binding:"max=2000"`
}

// LeaderboardEntry represents one ranked project
type LeaderboardEntry struct {
	Rank         int       `json:"rank"`
	ProjectID    uuid.UUID `json:"project_id"`
	UserID       uuid.UUID `json:"user_id"`
	Title        string    `json:"title"`
	AverageScore float64   `json:"average_score"`
	ScoreCount   int64     `json:"score_count"`
}
