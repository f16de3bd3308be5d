package domain

import "errors"

// Domain errors - these are business logic errors that should be translated
// to appropriate HTTP status codes by the handler layer

var (
	// User errors
	ErrUserNotFound       = errors.New("user not found")
	ErrUserAlreadyExists  = errors.New("user with this email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid or expired token")

	// Hackathon errors
	ErrHackathonNotFound = errors.New("hackathon not found")
	ErrInvalidTimeline   = errors.New("invalid hackathon timeline")
	ErrJudgeExists       = errors.New("user is already a judge of this hackathon")

	// Phase gating errors
	ErrRegistrationNotOpen = errors.New("registration is not open")
	ErrSubmissionNotOpen   = errors.New("project submission is not open")
	ErrVotingNotOpen       = errors.New("voting is not open")

	// Participation errors
	ErrAlreadyRegistered = errors.New("user is already registered for this hackathon")
	ErrNotRegistered     = errors.New("user is not registered for this hackathon")
	ErrOrganizerEntry    = errors.New("organizers cannot take part in their own hackathon")
	ErrProjectNotFound   = errors.New("project not found")
	ErrProjectExists     = errors.New("project already submitted")
	ErrNotJudge          = errors.New("user is not a judge of this hackathon")
	ErrInvalidScore      = errors.New("score must be between 0 and 100")
	ErrSelfScore         = errors.New("judges cannot score their own project")

	// General errors
	ErrInternalServer = errors.New("internal server error")
	ErrBadRequest     = errors.New("bad request")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
)

// DomainError wraps an error with additional context
type DomainError struct {
	Err     error
	Message string
}

func (e *DomainError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Err.Error()
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// WrapError wraps an error with additional context
func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return &DomainError{
		Err:     err,
		Message: message,
	}
}
