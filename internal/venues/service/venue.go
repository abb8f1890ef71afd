package service

import (
	"context"
	"errors"
	venueserrors "venuebook/internal/venues/errors"
	"venuebook/internal/venues/repository"
	"venuebook/internal/venues/validator"
	"venuebook/pkg/config"
	apperrors "venuebook/pkg/errors"
	"venuebook/pkg/model"
	"venuebook/pkg/sanitizer"

	"golang.org/x/sync/errgroup"
)

type VenueService interface {
	Create(ctx context.Context, venue *model.Venue) error
	GetByID(ctx context.Context, id string) (*model.Venue, error)
	GetAll(ctx context.Context, limit int, offset int64) ([]*model.Venue, int64, error)
	ListActive(ctx context.Context) ([]*model.Venue, error)
	SearchByName(ctx context.Context, name string) ([]*model.Venue, error)
	Update(ctx context.Context, id string, updates *model.VenueUpdate) (*model.Venue, error)
	Deactivate(ctx context.Context, id string) error
}

// maxListed caps unpaginated listings such as the chat venue directory.
const maxListed = 100

type venueService struct {
	repo      repository.VenueRepository
	validator *validator.VenueValidator
	cfg       *config.Config
}

func NewVenueService(repo repository.VenueRepository, validator *validator.VenueValidator, cfg *config.Config) VenueService {
	return &venueService{
		repo:      repo,
		validator: validator,
		cfg:       cfg,
	}
}

func (s *venueService) Create(ctx context.Context, venue *model.Venue) error {
	venue.ID = ""
	venue.Active = true
	sanitize(venue)

	if err := s.validator.Validate(venue); err != nil {
		s.cfg.Log.Warn("Venue validation failed", "name", venue.Name, "error", err)
		return validationError(err)
	}

	if err := s.repo.Create(ctx, venue); err != nil {
		return s.mapRepoError(err, "Failed to create venue", "")
	}

	s.cfg.Log.Info("Venue created successfully",
		"id", venue.ID,
		"name", venue.Name,
		"capacity", venue.Capacity,
	)
	return nil
}

func (s *venueService) GetByID(ctx context.Context, id string) (*model.Venue, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Venue ID cannot be empty")
	}

	venue, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapRepoError(err, "Failed to retrieve venue", id)
	}
	return venue, nil
}

func (s *venueService) GetAll(ctx context.Context, limit int, offset int64) ([]*model.Venue, int64, error) {
	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	var (
		venues []*model.Venue
		count  int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		count, err = s.repo.Count(gctx, repository.VenueFilter{})
		return err
	})
	g.Go(func() error {
		var err error
		venues, err = s.repo.FindAll(gctx, repository.VenueFilter{}, limit, offset)
		return err
	})
	if err := g.Wait(); err != nil {
		s.cfg.Log.Error("Failed to list venues", "limit", limit, "offset", offset, "error", err)
		return nil, 0, apperrors.Internal("Failed to retrieve venues", err)
	}

	return venues, count, nil
}

func (s *venueService) ListActive(ctx context.Context) ([]*model.Venue, error) {
	venues, err := s.repo.FindAll(ctx, repository.VenueFilter{ActiveOnly: true}, maxListed, 0)
	if err != nil {
		s.cfg.Log.Error("Failed to list active venues", "error", err)
		return nil, apperrors.Internal("Failed to retrieve venues", err)
	}
	return venues, nil
}

func (s *venueService) SearchByName(ctx context.Context, name string) ([]*model.Venue, error) {
	key := sanitizer.SearchKey(name)
	if key == "" {
		return nil, apperrors.InvalidInput("Search name cannot be empty")
	}

	venues, err := s.repo.FindAll(ctx, repository.VenueFilter{ActiveOnly: true, NameKey: key}, maxListed, 0)
	if err != nil {
		s.cfg.Log.Error("Failed to search venues", "name", name, "error", err)
		return nil, apperrors.Internal("Failed to search venues", err)
	}

	s.cfg.Log.Debug("Venue search completed", "key", key, "results_count", len(venues))
	return venues, nil
}

func (s *venueService) Update(ctx context.Context, id string, updates *model.VenueUpdate) (*model.Venue, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Venue ID cannot be empty")
	}
	if err := s.validator.ValidateUpdate(updates); err != nil {
		return nil, validationError(err)
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapRepoError(err, "Failed to check venue existence", id)
	}

	merged := merge(existing, updates)
	sanitize(merged)
	if err := s.validator.Validate(merged); err != nil {
		s.cfg.Log.Warn("Venue validation failed", "id", id, "error", err)
		return nil, validationError(err)
	}

	if err := s.repo.Update(ctx, id, merged); err != nil {
		return nil, s.mapRepoError(err, "Failed to update venue", id)
	}

	s.cfg.Log.Info("Venue updated successfully", "id", id, "name", merged.Name, "active", merged.Active)
	return merged, nil
}

// Deactivate hides a venue from new bookings. Existing reservations keep
// their reference, so venues are never deleted.
func (s *venueService) Deactivate(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.InvalidInput("Venue ID cannot be empty")
	}
	if err := s.repo.SetActive(ctx, id, false); err != nil {
		return s.mapRepoError(err, "Failed to deactivate venue", id)
	}
	s.cfg.Log.Info("Venue deactivated", "id", id)
	return nil
}

func (s *venueService) mapRepoError(err error, message, id string) error {
	switch {
	case errors.Is(err, venueserrors.ErrNotFound):
		return apperrors.NotFoundWithID("Venue", id)
	case errors.Is(err, venueserrors.ErrInvalidID):
		return apperrors.InvalidInput("Invalid venue ID format")
	case errors.Is(err, venueserrors.ErrDuplicateName):
		return apperrors.Conflict("A venue with this name already exists")
	}
	s.cfg.Log.Error(message, "id", id, "error", err)
	return apperrors.Internal(message, err)
}

func validationError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return apperrors.Validation("Venue validation failed", verrs.Details())
	}
	return apperrors.Validation("Venue validation failed", map[string]any{"error": err.Error()})
}

func sanitize(venue *model.Venue) {
	venue.Name = sanitizer.TrimAndNormalize(venue.Name)
	venue.NameKey = sanitizer.SearchKey(venue.Name)
	venue.Description = sanitizer.TrimAndNormalize(venue.Description)
	venue.Location = sanitizer.TrimAndNormalize(venue.Location)
	venue.Amenities = sanitizer.NormalizeAmenities(venue.Amenities)
}

func merge(existing *model.Venue, updates *model.VenueUpdate) *model.Venue {
	merged := *existing

	if updates.Name != "" {
		merged.Name = updates.Name
	}
	if updates.Description != nil {
		merged.Description = *updates.Description
	}
	if updates.Location != nil {
		merged.Location = *updates.Location
	}
	if updates.Capacity != nil {
		merged.Capacity = *updates.Capacity
	}
	if updates.Amenities != nil {
		merged.Amenities = *updates.Amenities
	}
	if updates.Active != nil {
		merged.Active = *updates.Active
	}

	return &merged
}
