package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/hackx/backend/internal/domain"
	"github.com/hackx/backend/internal/middleware"
	"github.com/hackx/backend/internal/service"
)

// UserHandler handles user-related HTTP requests
type UserHandler struct {
	userService          *service.UserService
	participationService ParticipationService
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService *service.UserService, participationService ParticipationService) *UserHandler {
	return &UserHandler{
		userService:          userService,
		participationService: participationService,
	}
}

// GetCurrentUser returns the currently authenticated user
// GET /api/users/me
func (h *UserHandler) GetCurrentUser(c *gin.Context) {
	userID, ok := middleware.RequireUser(c)
	if !ok {
		return
	}

	user, err := h.userService.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err, "Failed to retrieve user")
		return
	}

	c.JSON(http.StatusOK, user.ToResponse())
}

// GetMyRegistrations returns the hackathons the user registered for,
// each with its status at request time
// GET /api/users/me/registrations
func (h *UserHandler) GetMyRegistrations(c *gin.Context) {
	userID, ok := middleware.RequireUser(c)
	if !ok {
		return
	}

	registrations, err := h.participationService.MyRegistrations(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err, "Failed to retrieve registrations")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"registrations": registrationResponses(registrations, h.participationService),
	})
}

func registrationResponses(registrations []domain.Registration, clock interface{ Now() time.Time }) []domain.RegistrationResponse {
	now := clock.Now()
	responses := make([]domain.RegistrationResponse, len(registrations))
	for i, reg := range registrations {
		responses[i] = domain.RegistrationResponse{
			ID:        reg.ID,
			TeamName:  reg.TeamName,
			CreatedAt: reg.CreatedAt,
		}
		if reg.Hackathon != nil {
			hackathon := reg.Hackathon.ToResponse(now)
			responses[i].Hackathon = &hackathon
		}
	}
	return responses
}
