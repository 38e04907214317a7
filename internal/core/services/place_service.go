package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/bedic/places-backend/internal/core/domain"
	apperrors "github.com/bedic/places-backend/internal/core/errors"
	"github.com/bedic/places-backend/internal/core/ports"
)

// PlaceService implements business logic for the place catalog
type PlaceService struct {
	placeRepo   ports.PlaceRepository
	broadcaster ports.EventBroadcaster
}

var _ ports.PlaceService = (*PlaceService)(nil)

// NewPlaceService creates a new place service
func NewPlaceService(placeRepo ports.PlaceRepository, broadcaster ports.EventBroadcaster) ports.PlaceService {
	return &PlaceService{
		placeRepo:   placeRepo,
		broadcaster: broadcaster,
	}
}

// CreatePlace registers a new place owned by the acting user.
func (s *PlaceService) CreatePlace(ctx context.Context, params ports.CreatePlaceParams) (*domain.Place, error) {
	placeParams := params.Place
	placeParams.OwnerID = &params.ActorID

	place, err := domain.NewPlace(placeParams)
	if err != nil {
		return nil, err
	}

	created, err := s.placeRepo.Create(ctx, place)
	if err != nil {
		return nil, err
	}

	// Broadcast is best-effort; the place is already persisted.
	_ = s.broadcaster.Publish(domain.EventPlaceCreated, domain.PlaceCreatedPayload{
		ID:       created.ID.String(),
		Name:     created.Name,
		Category: string(created.Category),
	})

	return created, nil
}

// GetPlace retrieves a single place.
func (s *PlaceService) GetPlace(ctx context.Context, placeID uuid.UUID) (*domain.Place, error) {
	return s.placeRepo.GetByID(ctx, placeID)
}

// ListPlaces lists places matching the filter.
func (s *PlaceService) ListPlaces(ctx context.Context, filter ports.ListPlacesFilter) ([]*domain.Place, error) {
	if filter.Limit <= 0 || filter.Limit > 100 {
		filter.Limit = 20
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	return s.placeRepo.List(ctx, filter)
}

// UpdatePlace edits a place. Only the owner, support agents, and admins may
// edit.
func (s *PlaceService) UpdatePlace(ctx context.Context, params ports.UpdatePlaceParams) (*domain.Place, error) {
	place, err := s.placeRepo.GetByID(ctx, params.PlaceID)
	if err != nil {
		return nil, err
	}

	if !place.IsOwnedBy(params.ActorID) && !params.Role.CanManagePlaces() {
		return nil, apperrors.ErrForbidden
	}

	if err := place.Update(params.Place); err != nil {
		return nil, err
	}

	updated, err := s.placeRepo.Update(ctx, place)
	if err != nil {
		return nil, err
	}

	_ = s.broadcaster.Publish(domain.EventPlaceUpdated, domain.PlaceUpdatedPayload{
		ID:      updated.ID.String(),
		OwnerID: ownerString(updated),
		Name:    updated.Name,
	})

	return updated, nil
}

// VerifyPlace marks a place as reviewed and approved. Support agents and
// admins only.
func (s *PlaceService) VerifyPlace(ctx context.Context, placeID, actorID uuid.UUID, role domain.Role) (*domain.Place, error) {
	if !role.CanManagePlaces() {
		return nil, apperrors.ErrForbidden
	}

	place, err := s.placeRepo.GetByID(ctx, placeID)
	if err != nil {
		return nil, err
	}

	if err := place.Verify(); err != nil {
		return nil, err
	}

	updated, err := s.placeRepo.Update(ctx, place)
	if err != nil {
		return nil, err
	}

	_ = s.broadcaster.Publish(domain.EventPlaceVerified, domain.PlaceVerifiedPayload{
		PlaceID: updated.ID.String(),
		OwnerID: ownerString(updated),
		Name:    updated.Name,
	})

	return updated, nil
}

// DeletePlace removes a place. Only the owner, support agents, and admins
// may delete.
func (s *PlaceService) DeletePlace(ctx context.Context, placeID, actorID uuid.UUID, role domain.Role) error {
	place, err := s.placeRepo.GetByID(ctx, placeID)
	if err != nil {
		return err
	}

	if !place.IsOwnedBy(actorID) && !role.CanManagePlaces() {
		return apperrors.ErrForbidden
	}

	if err := s.placeRepo.Delete(ctx, placeID); err != nil {
		return err
	}

	_ = s.broadcaster.Publish(domain.EventPlaceDeleted, domain.PlaceDeletedPayload{
		PlaceID: place.ID.String(),
		OwnerID: ownerString(place),
	})

	return nil
}

// ownerString renders the owner id for event payloads, empty when unowned.
func ownerString(place *domain.Place) string {
	if place.OwnerID == nil {
		return ""
	}
	return place.OwnerID.String()
}
