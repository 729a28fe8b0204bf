// Package httpapi holds the JSON response shapes and error mapping shared by the HTTP handlers.
package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ahmedmemon-design/ProjectManagementAdminPanel/internal/mirror"
)

// Notice types rendered by the dashboard as toasts.
const (
	NoticeSuccess = "success"
	NoticeError   = "error"
	NoticeInfo    = "info"
)

// Notice is a short user-facing message attached to a response.
type Notice struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error  string  `json:"error"`
	Notice *Notice `json:"notice,omitempty"`
}

// Success returns a success notice.
func Success(msg string) *Notice { return &Notice{Type: NoticeSuccess, Message: msg} }

// Info returns an info notice.
func Info(msg string) *Notice { return &Notice{Type: NoticeInfo, Message: msg} }

// StatusFor maps an operation error to an HTTP status code.
func StatusFor(err error) int {
	switch mirror.Classify(err) {
	case mirror.OutcomeSuccess:
		return http.StatusOK
	case mirror.OutcomeDuplicate:
		return http.StatusConflict
	case mirror.OutcomeInvalid:
		return http.StatusBadRequest
	case mirror.OutcomeRejected:
		return http.StatusBadGateway
	default:
		return http.StatusServiceUnavailable
	}
}

// Fail aborts the request with the status for err. failure is the notice shown for rejected and
// failed outcomes; a duplicate membership gets an info notice instead.
func Fail(c *gin.Context, err error, failure string) {
	status := StatusFor(err)
	notice := &Notice{Type: NoticeError, Message: failure}
	if errors.Is(err, mirror.ErrDuplicateMembership) {
		notice = Info("User is already in this workspace")
	}
	c.AbortWithStatusJSON(status, ErrorResponse{Error: err.Error(), Notice: notice})
}

// Pick returns rejected when err is a store refusal and failed otherwise.
func Pick(err error, rejected, failed string) string {
	if mirror.Classify(err) == mirror.OutcomeRejected {
		return rejected
	}
	return failed
}

// BadRequest aborts with 400 and msg as both the error and the notice.
func BadRequest(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{Error: msg, Notice: &Notice{Type: NoticeError, Message: msg}})
}

// Unauthorized aborts with 401.
func Unauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: msg, Notice: &Notice{Type: NoticeError, Message: msg}})
}

// NotFound aborts with 404.
func NotFound(c *gin.Context, what string) {
	c.AbortWithStatusJSON(http.StatusNotFound, ErrorResponse{Error: what + " not found"})
}
