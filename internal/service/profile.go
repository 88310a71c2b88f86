package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"blockwriter/internal/domain"
	"blockwriter/internal/domain/models"
	"blockwriter/internal/domain/repositories"
	"blockwriter/internal/domain/services"
)

// profileService merges token identity with the stored academic fields
type profileService struct {
	profileRepo repositories.ProfileRepository
	logger      *slog.Logger
}

// NewProfileService creates a new profile service
func NewProfileService(
	profileRepo repositories.ProfileRepository,
	logger *slog.Logger,
) services.ProfileService {
	return &profileService{
		profileRepo: profileRepo,
		logger:      logger,
	}
}

// GetProfile returns the caller's profile. A missing row is not an error.
func (s *profileService) GetProfile(ctx context.Context, identity models.Identity) (*models.UserProfile, error) {
	stored, err := s.profileRepo.Get(ctx, identity.UserID)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("get profile: %w", err)
		}
		stored = &models.UserProfile{ID: identity.UserID}
	}
	return withIdentity(stored, identity), nil
}

// UpdateProfile stores trimmed university and major values
func (s *profileService) UpdateProfile(ctx context.Context, identity models.Identity, req *services.UpdateProfileRequest) (*models.UserProfile, error) {
	current, err := s.GetProfile(ctx, identity)
	if err != nil {
		return nil, err
	}

	if req.University.Present {
		current.University = normalizeText(req.University.Value)
	}
	if req.Major.Present {
		current.Major = normalizeText(req.Major.Value)
	}

	now := time.Now()
	if current.CreatedAt.IsZero() {
		current.CreatedAt = now
	}
	current.UpdatedAt = now

	if err := s.profileRepo.Upsert(ctx, current); err != nil {
		return nil, fmt.Errorf("save profile: %w", err)
	}

	s.logger.Info("profile updated",
		"user_id", identity.UserID,
		"has_university", current.University != nil,
		"has_major", current.Major != nil,
	)

	return current, nil
}

func withIdentity(p *models.UserProfile, identity models.Identity) *models.UserProfile {
	out := *p
	out.ID = identity.UserID
	out.Email = identity.Email
	out.Name = identity.Name
	return &out
}
