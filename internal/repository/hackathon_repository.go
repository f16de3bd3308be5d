package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hackx/backend/internal/domain"
)

// hackathonRepository implements domain.HackathonRepository using GORM
type hackathonRepository struct {
	db *gorm.DB
}

// NewHackathonRepository creates a new hackathon repository
func NewHackathonRepository(db *gorm.DB) domain.HackathonRepository {
	return &hackathonRepository{db: db}
}

// Create creates a new hackathon in the database
func (r *hackathonRepository) Create(ctx context.Context, hackathon *domain.Hackathon) error {
	return r.db.WithContext(ctx).Create(hackathon).Error
}

// FindByID finds a hackathon by its ID
func (r *hackathonRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Hackathon, error) {
	return r.findOne(ctx, "id = ?", id)
}

// FindBySlug finds a hackathon by its slug
func (r *hackathonRepository) FindBySlug(ctx context.Context, slug string) (*domain.Hackathon, error) {
	return r.findOne(ctx, "slug = ?", slug)
}

func (r *hackathonRepository) findOne(ctx context.Context, query string, arg any) (*domain.Hackathon, error) {
	var hackathon domain.Hackathon
	result := r.db.WithContext(ctx).Where(query, arg).First(&hackathon)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, domain.ErrHackathonNotFound
		}
		return nil, result.Error
	}
	return &hackathon, nil
}

// FindAll returns hackathons ordered by building start, soonest first.
// The phase filter is not applied here.
func (r *hackathonRepository) FindAll(ctx context.Context, filter domain.HackathonFilter) ([]domain.Hackathon, error) {
	var hackathons []domain.Hackathon
	query := r.db.WithContext(ctx)
	if filter.OrganizerID != nil {
		query = query.Where("organizer_id = ?", *filter.OrganizerID)
	}
	result := query.
		Order("building_start ASC NULLS LAST").
		Order("created_at DESC").
		Find(&hackathons)
	return hackathons, result.Error
}

// Update saves all fields of an existing hackathon
func (r *hackathonRepository) Update(ctx context.Context, hackathon *domain.Hackathon) error {
	return r.db.WithContext(ctx).Save(hackathon).Error
}

// Delete removes a hackathon together with its judges, registrations,
// projects and scores
func (r *hackathonRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		projectIDs := tx.Model(&domain.Project{}).Select("id").Where("hackathon_id = ?", id)
		if err := tx.Where("project_id IN (?)", projectIDs).Delete(&domain.Score{}).Error; err != nil {
			return err
		}
		if err := tx.Delete(&domain.Project{}, "hackathon_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Delete(&domain.Registration{}, "hackathon_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Delete(&domain.HackathonJudge{}, "hackathon_id = ?", id).Error; err != nil {
			return err
		}
		result := tx.Delete(&domain.Hackathon{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return domain.ErrHackathonNotFound
		}
		return nil
	})
}

// AddJudge grants judging rights on a hackathon
func (r *hackathonRepository) AddJudge(ctx context.Context, judge *domain.HackathonJudge) error {
	result := r.db.WithContext(ctx).Create(judge)
	if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
		return domain.ErrJudgeExists
	}
	return result.Error
}

// IsJudge reports whether the user judges the hackathon
func (r *hackathonRepository) IsJudge(ctx context.Context, hackathonID, userID uuid.UUID) (bool, error) {
	var count int64
	result := r.db.WithContext(ctx).
		Model(&domain.HackathonJudge{}).
		Where("hackathon_id = ? AND user_id = ?", hackathonID, userID).
		Count(&count)
	return count > 0, result.Error
}

// Count returns the number of hackathons
func (r *hackathonRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	result := r.db.WithContext(ctx).Model(&domain.Hackathon{}).Count(&count)
	return count, result.Error
}
