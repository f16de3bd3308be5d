package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/hackx/backend/internal/domain"
)

// registrationRepository implements domain.RegistrationRepository using GORM
type registrationRepository struct {
	db *gorm.DB
}

// NewRegistrationRepository creates a new registration repository
func NewRegistrationRepository(db *gorm.DB) domain.RegistrationRepository {
	return &registrationRepository{db: db}
}

func (r *registrationRepository) Create(ctx context.Context, registration *domain.Registration) error {
	result := r.db.WithContext(ctx).Create(registration)
	if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
		return domain.ErrAlreadyRegistered
	}
	return result.Error
}

func (r *registrationRepository) Find(ctx context.Context, hackathonID, userID uuid.UUID) (*domain.Registration, error) {
	var registration domain.Registration
	result := r.db.WithContext(ctx).
		Where("hackathon_id = ? AND user_id = ?", hackathonID, userID).
		First(&registration)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotRegistered
		}
		return nil, result.Error
	}
	return &registration, nil
}

// FindByUserID returns a user's registrations with their hackathons loaded
func (r *registrationRepository) FindByUserID(ctx context.Context, userID uuid.UUID) ([]domain.Registration, error) {
	var registrations []domain.Registration
	result := r.db.WithContext(ctx).
		Preload("Hackathon").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&registrations)
	return registrations, result.Error
}

func (r *registrationRepository) CountByHackathon(ctx context.Context, hackathonID uuid.UUID) (int64, error) {
	var count int64
	result := r.db.WithContext(ctx).
		Model(&domain.Registration{}).
		Where("hackathon_id = ?", hackathonID).
		Count(&count)
	return count, result.Error
}

func (r *registrationRepository) Delete(ctx context.Context, hackathonID, userID uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Delete(&domain.Registration{}, "hackathon_id = ? AND user_id = ?", hackathonID, userID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotRegistered
	}
	return nil
}

// projectRepository implements domain.ProjectRepository using GORM
type projectRepository struct {
	db *gorm.DB
}

// NewProjectRepository creates a new project repository
func NewProjectRepository(db *gorm.DB) domain.ProjectRepository {
	return &projectRepository{db: db}
}

// Save inserts the project or updates it when it already has an ID.
// Inserting a second project for the same participant returns
// domain.ErrProjectExists.
func (r *projectRepository) Save(ctx context.Context, project *domain.Project) error {
	if project.ID == uuid.Nil {
		result := r.db.WithContext(ctx).Create(project)
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return domain.ErrProjectExists
		}
		return result.Error
	}
	return r.db.WithContext(ctx).Save(project).Error
}

func (r *projectRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Project, error) {
	return findProject(r.db.WithContext(ctx).Where("id = ?", id))
}

func (r *projectRepository) FindByHackathonAndUser(ctx context.Context, hackathonID, userID uuid.UUID) (*domain.Project, error) {
	return findProject(r.db.WithContext(ctx).Where("hackathon_id = ? AND user_id = ?", hackathonID, userID))
}

func findProject(query *gorm.DB) (*domain.Project, error) {
	var project domain.Project
	if err := query.First(&project).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrProjectNotFound
		}
		return nil, err
	}
	return &project, nil
}

func (r *projectRepository) FindByHackathon(ctx context.Context, hackathonID uuid.UUID) ([]domain.Project, error) {
	var projects []domain.Project
	result := r.db.WithContext(ctx).
		Where("hackathon_id = ?", hackathonID).
		Order("submitted_at ASC").
		Find(&projects)
	return projects, result.Error
}

// scoreRepository implements domain.ScoreRepository using GORM
type scoreRepository struct {
	db *gorm.DB
}

// NewScoreRepository creates a new score repository
func NewScoreRepository(db *gorm.DB) domain.ScoreRepository {
	return &scoreRepository{db: db}
}

// Upsert records a judge's score, replacing any earlier score for the same project
func (r *scoreRepository) Upsert(ctx context.Context, score *domain.Score) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "project_id"}, {Name: "judge_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "comment", "updated_at"}),
	}).Create(score).Error
}

// Summaries aggregates scores per project of a hackathon
func (r *scoreRepository) Summaries(ctx context.Context, hackathonID uuid.UUID) ([]domain.ScoreSummary, error) {
	var summaries []domain.ScoreSummary
	result := r.db.WithContext(ctx).
		Model(&domain.Score{}).
		Select("scores.project_id AS project_id, AVG(scores.value) AS average_score, COUNT(*) AS score_count").
		Joins("JOIN projects ON projects.id = scores.project_id").
		Where("projects.hackathon_id = ?", hackathonID).
		Group("scores.project_id").
		Scan(&summaries)
	return summaries, result.Error
}
