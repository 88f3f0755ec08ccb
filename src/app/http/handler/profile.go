package handler

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	"profileapi/src/app/http/response"
	"profileapi/src/app/middleware"
	"profileapi/src/core/domain"
	"profileapi/src/core/usecase"
	"profileapi/src/infra/logger"
)

// ProfileHandler handles profile lookups.
type ProfileHandler struct {
	profileService *usecase.ProfileService
	timeout        time.Duration
	log            *slog.Logger
}

func NewProfileHandler(profileService *usecase.ProfileService, timeout time.Duration, log *slog.Logger) *ProfileHandler {
	return &ProfileHandler{
		profileService: profileService,
		timeout:        timeout,
		log:            log,
	}
}

// Get returns the stored row for an email.
// GET /api/profile/:email
func (h *ProfileHandler) Get(c *gin.Context) {
	ctx, cancel := requestContext(c, h.timeout)
	defer cancel()

	profile, err := h.profileService.Lookup(ctx, c.Param("email"))
	if err != nil {
		log := logger.WithRequestID(h.log, middleware.GetRequestID(c))
		switch {
		case domain.IsNotFound(err), domain.IsValidationError(err):
		case domain.IsUnavailable(err):
			log.Warn("profile lookup could not borrow a connection", "error", err)
		default:
			log.Error("profile lookup failed", "error", err)
		}
		response.FromDomainError(c, err)
		return
	}
	response.OK(c, profile)
}
