package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/hackx/backend/internal/domain"
)

// errorStatus maps a domain error to the HTTP status it is reported with
func errorStatus(err error) int {
	switch {
	case errors.Is(err, domain.ErrHackathonNotFound),
		errors.Is(err, domain.ErrProjectNotFound),
		errors.Is(err, domain.ErrUserNotFound),
		errors.Is(err, domain.ErrNotRegistered):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidTimeline),
		errors.Is(err, domain.ErrInvalidScore),
		errors.Is(err, domain.ErrBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrForbidden),
		errors.Is(err, domain.ErrNotJudge),
		errors.Is(err, domain.ErrOrganizerEntry),
		errors.Is(err, domain.ErrSelfScore):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrRegistrationNotOpen),
		errors.Is(err, domain.ErrSubmissionNotOpen),
		errors.Is(err, domain.ErrVotingNotOpen),
		errors.Is(err, domain.ErrAlreadyRegistered),
		errors.Is(err, domain.ErrJudgeExists),
		errors.Is(err, domain.ErrProjectExists),
		errors.Is(err, domain.ErrUserAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, domain.ErrUnauthorized),
		errors.Is(err, domain.ErrInvalidToken),
		errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized
	}
	return http.StatusInternalServerError
}

// respondError writes err as {"error": ...}. Unmapped errors are attached
// to the context for the logging middleware and answered with fallback.
func respondError(c *gin.Context, err error, fallback string) {
	status := errorStatus(err)
	if status == http.StatusInternalServerError {
		_ = c.Error(err)
		c.JSON(status, gin.H{"error": fallback})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// bindJSON binds the request body and answers 400 on failure
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return false
	}
	return true
}

// uuidParam parses a UUID path parameter and answers 400 when it is malformed
func uuidParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid " + name,
		})
		return uuid.Nil, false
	}
	return id, true
}
