package services

import (
	"context"

	"github.com/bedic/places-backend/internal/core/domain"
	apperrors "github.com/bedic/places-backend/internal/core/errors"
	"github.com/bedic/places-backend/internal/core/ports"
)

// MaintenanceService implements batch cleanup jobs over the catalog.
type MaintenanceService struct {
	placeRepo ports.PlaceRepository
}

var _ ports.MaintenanceService = (*MaintenanceService)(nil)

// NewMaintenanceService creates a new maintenance service
func NewMaintenanceService(placeRepo ports.PlaceRepository) ports.MaintenanceService {
	return &MaintenanceService{placeRepo: placeRepo}
}

// DeduplicatePlaces collapses places sharing name and city, keeping the
// oldest row. Admins only.
func (s *MaintenanceService) DeduplicatePlaces(ctx context.Context, role domain.Role) (int64, error) {
	if role != domain.RoleAdmin {
		return 0, apperrors.ErrForbidden
	}
	return s.placeRepo.DeleteDuplicates(ctx)
}
