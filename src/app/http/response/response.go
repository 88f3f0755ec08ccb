// Package response defines consistent HTTP response structures.
// Error bodies carry a human-readable message and, where safe, a
// machine-readable error string. Internal causes are never written here.
package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"profileapi/src/core/domain"
)

// Client-facing messages.
const (
	MsgInternalError = "Internal Server Error"
	MsgUnavailable   = "Database service temporarily unavailable"
	MsgFallback      = "Something went wrong!"
	MsgNotFound      = "Not Found"
	MsgNotAllowed    = "Method Not Allowed"
)

// Message is the body of every non-success response.
type Message struct {
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

// OK sends a 200 response with data as the body.
func OK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, data)
}

// BadRequest sends a 400 response.
func BadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, Message{Message: message})
}

// NotFound sends a 404 response.
func NotFound(c *gin.Context, message string) {
	c.JSON(http.StatusNotFound, Message{Message: message})
}

// MethodNotAllowed sends a 405 response.
func MethodNotAllowed(c *gin.Context) {
	c.JSON(http.StatusMethodNotAllowed, Message{Message: MsgNotAllowed})
}

// InternalError sends a 500 response without any detail.
func InternalError(c *gin.Context) {
	c.JSON(http.StatusInternalServerError, Message{Message: MsgInternalError})
}

// Unavailable aborts with a 503 carrying a machine-readable reason.
func Unavailable(c *gin.Context, reason string) {
	c.AbortWithStatusJSON(http.StatusServiceUnavailable, Message{
		Message: MsgUnavailable,
		Error:   reason,
	})
}

// Fallback aborts with the generic 500 used for failures nothing else handled.
func Fallback(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusInternalServerError, Message{Message: MsgFallback})
}

// FromDomainError converts a domain error to an appropriate HTTP response.
// This centralizes error handling and ensures consistent error responses.
func FromDomainError(c *gin.Context, err error) {
	var de *domain.DomainError
	switch {
	case domain.IsNotFound(err):
		msg := MsgNotFound
		if errors.As(err, &de) && de.Message != "" {
			msg = de.Message + " not found"
		}
		NotFound(c, msg)
	case domain.IsValidationError(err):
		msg := err.Error()
		if errors.As(err, &de) {
			msg = de.Message
		}
		BadRequest(c, msg)
	case domain.IsUnavailable(err):
		Unavailable(c, domain.UnavailableReason(err))
	default:
		InternalError(c)
	}
}
