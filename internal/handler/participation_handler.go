package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/hackx/backend/internal/domain"
	"github.com/hackx/backend/internal/middleware"
)

// ParticipationService is what ParticipationHandler needs from the service layer
type ParticipationService interface {
	Register(ctx context.Context, userID, hackathonID uuid.UUID, req *domain.RegisterRequest) (*domain.Registration, error)
	Unregister(ctx context.Context, userID, hackathonID uuid.UUID) error
	MyRegistrations(ctx context.Context, userID uuid.UUID) ([]domain.Registration, error)
	ParticipantCount(ctx context.Context, hackathonID uuid.UUID) (int64, error)
	SubmitProject(ctx context.Context, userID, hackathonID uuid.UUID, req *domain.SubmitProjectRequest) (*domain.Project, error)
	ListProjects(ctx context.Context, hackathonID uuid.UUID) ([]domain.Project, error)
	ScoreProject(ctx context.Context, judgeID, hackathonID, projectID uuid.UUID, req *domain.ScoreProjectRequest) (*domain.Score, error)
	Leaderboard(ctx context.Context, hackathonID uuid.UUID) ([]domain.LeaderboardEntry, error)
	Now() time.Time
}

// ParticipationHandler handles registration, submission and judging requests
type ParticipationHandler struct {
	participationService ParticipationService
}

// NewParticipationHandler creates a new participation handler
func NewParticipationHandler(participationService ParticipationService) *ParticipationHandler {
	return &ParticipationHandler{
		participationService: participationService,
	}
}

// Register signs the authenticated user up for a hackathon
// POST /api/hackathons/:id/registration
func (h *ParticipationHandler) Register(c *gin.Context) {
	userID, ok := middleware.RequireUser(c)
	if !ok {
		return
	}
	hackathonID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	// The body is optional; an empty one registers without a team name
	var req domain.RegisterRequest
	if c.Request.ContentLength != 0 && !bindJSON(c, &req) {
		return
	}

	registration, err := h.participationService.Register(c.Request.Context(), userID, hackathonID, &req)
	if err != nil {
		respondError(c, err, "Failed to register")
		return
	}

	c.JSON(http.StatusCreated, domain.RegistrationResponse{
		ID:        registration.ID,
		TeamName:  registration.TeamName,
		CreatedAt: registration.CreatedAt,
	})
}

// Unregister withdraws the authenticated user's registration
// DELETE /api/hackathons/:id/registration
func (h *ParticipationHandler) Unregister(c *gin.Context) {
	userID, ok := middleware.RequireUser(c)
	if !ok {
		return
	}
	hackathonID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	if err := h.participationService.Unregister(c.Request.Context(), userID, hackathonID); err != nil {
		respondError(c, err, "Failed to unregister")
		return
	}

	c.Status(http.StatusNoContent)
}

// ParticipantCount returns the number of registered participants
// GET /api/hackathons/:id/participants
func (h *ParticipationHandler) ParticipantCount(c *gin.Context) {
	hackathonID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	count, err := h.participationService.ParticipantCount(c.Request.Context(), hackathonID)
	if err != nil {
		respondError(c, err, "Failed to count participants")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"hackathon_id": hackathonID,
		"participants": count,
	})
}

// SubmitProject creates or replaces the authenticated user's project
// POST /api/hackathons/:id/projects
func (h *ParticipationHandler) SubmitProject(c *gin.Context) {
	userID, ok := middleware.RequireUser(c)
	if !ok {
		return
	}
	hackathonID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var req domain.SubmitProjectRequest
	if !bindJSON(c, &req) {
		return
	}

	project, err := h.participationService.SubmitProject(c.Request.Context(), userID, hackathonID, &req)
	if err != nil {
		respondError(c, err, "Failed to submit project")
		return
	}

	c.JSON(http.StatusOK, project.ToResponse())
}

// ListProjects returns the projects submitted to a hackathon
// GET /api/hackathons/:id/projects
func (h *ParticipationHandler) ListProjects(c *gin.Context) {
	hackathonID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	projects, err := h.participationService.ListProjects(c.Request.Context(), hackathonID)
	if err != nil {
		respondError(c, err, "Failed to retrieve projects")
		return
	}

	responses := make([]domain.ProjectResponse, len(projects))
	for i := range projects {
		responses[i] = projects[i].ToResponse()
	}

	c.JSON(http.StatusOK, gin.H{
		"projects": responses,
		"total":    len(responses),
	})
}

// ScoreProject records the authenticated judge's score for a project
// POST /api/hackathons/:id/projects/:projectId/score
func (h *ParticipationHandler) ScoreProject(c *gin.Context) {
	userID, ok := middleware.RequireUser(c)
	if !ok {
		return
	}
	hackathonID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	projectID, ok := uuidParam(c, "projectId")
	if !ok {
		return
	}

	var req domain.ScoreProjectRequest
	if !bindJSON(c, &req) {
		return
	}

	score, err := h.participationService.ScoreProject(c.Request.Context(), userID, hackathonID, projectID, &req)
	if err != nil {
		respondError(c, err, "Failed to record score")
		return
	}

	c.JSON(http.StatusOK, score)
}

// Leaderboard returns the hackathon's projects ranked by average score
// GET /api/hackathons/:id/leaderboard
func (h *ParticipationHandler) Leaderboard(c *gin.Context) {
	hackathonID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	entries, err := h.participationService.Leaderboard(c.Request.Context(), hackathonID)
	if err != nil {
		respondError(c, err, "Failed to build leaderboard")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"entries": entries,
		"total":   len(entries),
	})
}
