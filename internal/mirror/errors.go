package mirror

import (
	"errors"

	"github.com/ahmedmemon-design/ProjectManagementAdminPanel/internal/platform/remote"
	userdomain "github.com/ahmedmemon-design/ProjectManagementAdminPanel/internal/user/domain"
)

var (
	// ErrDuplicateMembership is returned by AddMembership when the pair is already mirrored or being added.
	ErrDuplicateMembership = errors.New("user is already in this workspace")
	// ErrInvalidRole is the domain's invalid role error.
	ErrInvalidRole = userdomain.ErrInvalidRole
	// ErrInvalidInput is returned when a required identifier is missing.
	ErrInvalidInput = errors.New("invalid input")
	// ErrCascadeFailed aborts a parent delete in strict cascade mode.
	ErrCascadeFailed = errors.New("membership cascade failed")
)

// Outcome classifies the result of a mirror operation.
type Outcome string

const (
	OutcomeSuccess   Outcome = "success"
	OutcomeDuplicate Outcome = "duplicate"
	OutcomeInvalid   Outcome = "invalid"
	OutcomeRejected  Outcome = "rejected"
	OutcomeFailed    Outcome = "failed"
)

// Classify maps an operation error to its Outcome. Anything unrecognized is a network or unexpected failure.
func Classify(err error) Outcome {
	switch {
	case err == nil:
		return OutcomeSuccess
	case errors.Is(err, ErrDuplicateMembership):
		return OutcomeDuplicate
	case errors.Is(err, ErrInvalidRole), errors.Is(err, ErrInvalidInput):
		return OutcomeInvalid
	case errors.Is(err, remote.ErrRejected):
		return OutcomeRejected
	default:
		return OutcomeFailed
	}
}
