package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/hackx/backend/internal/domain"
	"github.com/hackx/backend/internal/lifecycle"
	"github.com/hackx/backend/internal/middleware"
)

// HackathonService is what HackathonHandler needs from the service layer
type HackathonService interface {
	CreateHackathon(ctx context.Context, organizerID uuid.UUID, req *domain.CreateHackathonRequest) (*domain.Hackathon, error)
	UpdateTimeline(ctx context.Context, userID, hackathonID uuid.UUID, req *domain.TimelineRequest) (*domain.Hackathon, error)
	DeleteHackathon(ctx context.Context, userID, hackathonID uuid.UUID) error
	GetHackathon(ctx context.Context, hackathonID uuid.UUID) (*domain.Hackathon, error)
	ListHackathons(ctx context.Context, filter domain.HackathonFilter) ([]domain.Hackathon, error)
	GetStatus(ctx context.Context, hackathonID uuid.UUID) (*lifecycle.Status, error)
	AddJudge(ctx context.Context, organizerID, hackathonID uuid.UUID, email string) (*domain.User, error)
	Now() time.Time
}

// HackathonHandler handles hackathon management and status requests
type HackathonHandler struct {
	hackathonService HackathonService
}

// NewHackathonHandler creates a new hackathon handler
func NewHackathonHandler(hackathonService HackathonService) *HackathonHandler {
	return &HackathonHandler{
		hackathonService: hackathonService,
	}
}

// StatusResponse is the payload polled by countdown displays
type StatusResponse struct {
	HackathonID uuid.UUID `json:"hackathon_id"`
	lifecycle.Status
}

// ListHackathons returns hackathons, optionally filtered by phase and organizer
// GET /api/hackathons?phase=live&organizer=<uuid>
func (h *HackathonHandler) ListHackathons(c *gin.Context) {
	// one instant for both the phase filter and the statuses returned
	filter := domain.HackathonFilter{At: h.hackathonService.Now()}

	if raw := c.Query("phase"); raw != "" {
		phase, err := lifecycle.ParsePhase(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid phase",
			})
			return
		}
		filter.Phase = &phase
	}
	if raw := c.Query("organizer"); raw != "" {
		organizerID, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid organizer",
			})
			return
		}
		filter.OrganizerID = &organizerID
	}

	hackathons, err := h.hackathonService.ListHackathons(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err, "Failed to retrieve hackathons")
		return
	}

	responses := make([]domain.HackathonResponse, len(hackathons))
	for i := range hackathons {
		responses[i] = hackathons[i].ToResponse(filter.At)
	}

	c.JSON(http.StatusOK, gin.H{
		"hackathons": responses,
		"total":      len(responses),
	})
}

// GetHackathon returns a single hackathon with its current status
// GET /api/hackathons/:id
func (h *HackathonHandler) GetHackathon(c *gin.Context) {
	hackathonID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	hackathon, err := h.hackathonService.GetHackathon(c.Request.Context(), hackathonID)
	if err != nil {
		respondError(c, err, "Failed to retrieve hackathon")
		return
	}

	c.JSON(http.StatusOK, hackathon.ToResponse(h.hackathonService.Now()))
}

// GetStatus returns the phase, countdown target and remaining time
// GET /api/hackathons/:id/status
func (h *HackathonHandler) GetStatus(c *gin.Context) {
	hackathonID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	status, err := h.hackathonService.GetStatus(c.Request.Context(), hackathonID)
	if err != nil {
		respondError(c, err, "Failed to resolve status")
		return
	}

	c.Header("Cache-Control", "no-store")
	c.JSON(http.StatusOK, StatusResponse{
		HackathonID: hackathonID,
		Status:      *status,
	})
}

// CreateHackathon creates a hackathon organized by the authenticated user
// POST /api/hackathons
func (h *HackathonHandler) CreateHackathon(c *gin.Context) {
	userID, ok := middleware.RequireUser(c)
	if !ok {
		return
	}

	var req domain.CreateHackathonRequest
	if !bindJSON(c, &req) {
		return
	}

	hackathon, err := h.hackathonService.CreateHackathon(c.Request.Context(), userID, &req)
	if err != nil {
		respondError(c, err, "Failed to create hackathon")
		return
	}

	c.JSON(http.StatusCreated, hackathon.ToResponse(h.hackathonService.Now()))
}

// UpdateTimeline replaces a hackathon's periods
// PUT /api/hackathons/:id/timeline
func (h *HackathonHandler) UpdateTimeline(c *gin.Context) {
	userID, ok := middleware.RequireUser(c)
	if !ok {
		return
	}
	hackathonID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var req domain.TimelineRequest
	if !bindJSON(c, &req) {
		return
	}

	hackathon, err := h.hackathonService.UpdateTimeline(c.Request.Context(), userID, hackathonID, &req)
	if err != nil {
		respondError(c, err, "Failed to update timeline")
		return
	}

	c.JSON(http.StatusOK, hackathon.ToResponse(h.hackathonService.Now()))
}

// DeleteHackathon deletes a hackathon and its registrations, projects and scores
// DELETE /api/hackathons/:id
func (h *HackathonHandler) DeleteHackathon(c *gin.Context) {
	userID, ok := middleware.RequireUser(c)
	if !ok {
		return
	}
	hackathonID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	if err := h.hackathonService.DeleteHackathon(c.Request.Context(), userID, hackathonID); err != nil {
		respondError(c, err, "Failed to delete hackathon")
		return
	}

	c.Status(http.StatusNoContent)
}

// AddJudge grants judging rights to the user with the given email
// POST /api/hackathons/:id/judges
func (h *HackathonHandler) AddJudge(c *gin.Context) {
	userID, ok := middleware.RequireUser(c)
	if !ok {
		return
	}
	hackathonID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var req domain.AddJudgeRequest
	if !bindJSON(c, &req) {
		return
	}

	judge, err := h.hackathonService.AddJudge(c.Request.Context(), userID, hackathonID, req.Email)
	if err != nil {
		respondError(c, err, "Failed to add judge")
		return
	}

	c.JSON(http.StatusCreated, judge.ToResponse())
}
