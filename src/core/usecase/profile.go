package usecase

import (
	"context"
	"log/slog"
	"strings"

	"profileapi/src/core/domain"
	"profileapi/src/core/ports"
)

// ProfileService handles profile lookups.
type ProfileService struct {
	repo ports.ProfileRepository
	log  *slog.Logger
}

func NewProfileService(repo ports.ProfileRepository, log *slog.Logger) *ProfileService {
	return &ProfileService{repo: repo, log: log}
}

// Lookup returns the profile stored under email. The key is matched exactly
// as received; blank keys are rejected before a connection is borrowed.
func (s *ProfileService) Lookup(ctx context.Context, email string) (domain.Profile, error) {
	if strings.TrimSpace(email) == "" {
		s.log.Debug("rejected blank profile key")
		return nil, domain.NewValidationError("email", "email is required")
	}
	return s.repo.LookupByKey(ctx, email)
}
