package domain

import (
	"time"

	"github.com/google/uuid"

	apperrors "github.com/bedic/places-backend/internal/core/errors"
)

const (
	MaxPlaceNameLength        = 255
	MaxPlaceDescriptionLength = 2000
)

// PlaceCategory classifies a place in the discovery catalog.
type PlaceCategory string

const (
	CategoryRestaurant PlaceCategory = "restaurant"
	CategoryCafe       PlaceCategory = "cafe"
	CategoryHotel      PlaceCategory = "hotel"
	CategoryMuseum     PlaceCategory = "museum"
	CategoryPark       PlaceCategory = "park"
	CategoryNightlife  PlaceCategory = "nightlife"
	CategoryShopping   PlaceCategory = "shopping"
	CategoryOther      PlaceCategory = "other"
)

// ValidCategory reports whether c is a known place category.
func ValidCategory(c PlaceCategory) bool {
	switch c {
	case CategoryRestaurant, CategoryCafe, CategoryHotel, CategoryMuseum,
		CategoryPark, CategoryNightlife, CategoryShopping, CategoryOther:
		return true
	}
	return false
}

// Place is a catalog entry. OwnerID is nil for places registered by the
// platform itself (seed data, imports) rather than by a business owner.
type Place struct {
	ID          uuid.UUID
	Name        string
	Category    PlaceCategory
	Description string
	Department  string
	City        string
	Latitude    float64
	Longitude   float64
	OwnerID     *uuid.UUID
	Verified    bool
	CreatedAt   time.Time
	UpdatedAt   *time.Time
}

// PlaceParams holds the caller-supplied fields for creating a place.
type PlaceParams struct {
	Name        string
	Category    PlaceCategory
	Description string
	Department  string
	City        string
	Latitude    float64
	Longitude   float64
	OwnerID     *uuid.UUID
}

// Validate checks place creation parameters.
func (p *PlaceParams) Validate() error {
	errs := apperrors.NewValidationErrors()

	if p.Name == "" {
		errs.Add("name", "Name is required")
	} else if len(p.Name) > MaxPlaceNameLength {
		errs.Add("name", "Name must be 255 characters or less")
	}

	if !ValidCategory(p.Category) {
		errs.Add("category", "Unknown category")
	}

	if len(p.Description) > MaxPlaceDescriptionLength {
		errs.Add("description", "Description must be 2000 characters or less")
	}

	if p.City == "" {
		errs.Add("city", "City is required")
	}

	if p.Latitude < -90 || p.Latitude > 90 {
		errs.Add("latitude", "Latitude must be between -90 and 90")
	}
	if p.Longitude < -180 || p.Longitude > 180 {
		errs.Add("longitude", "Longitude must be between -180 and 180")
	}

	if errs.HasErrors() {
		return errs
	}
	return nil
}

// NewPlace builds an unverified place from validated parameters.
func NewPlace(params PlaceParams) (*Place, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	return &Place{
		ID:          uuid.New(),
		Name:        params.Name,
		Category:    params.Category,
		Description: params.Description,
		Department:  params.Department,
		City:        params.City,
		Latitude:    params.Latitude,
		Longitude:   params.Longitude,
		OwnerID:     params.OwnerID,
		CreatedAt:   time.Now().UTC(),
	}, nil
}

// IsOwnedBy reports whether the place belongs to the given user.
func (p *Place) IsOwnedBy(userID uuid.UUID) bool {
	return p.OwnerID != nil && *p.OwnerID == userID
}

// Verify marks the place as reviewed and approved.
func (p *Place) Verify() error {
	if p.Verified {
		return apperrors.ErrPlaceAlreadyVerified
	}
	p.Verified = true
	now := time.Now().UTC()
	p.UpdatedAt = &now
	return nil
}

// Update applies new details to the place. Verified status is preserved;
// re-verification after edits is a moderation decision, not automatic.
func (p *Place) Update(params PlaceParams) error {
	if err := params.Validate(); err != nil {
		return err
	}

	p.Name = params.Name
	p.Category = params.Category
	p.Description = params.Description
	p.Department = params.Department
	p.City = params.City
	p.Latitude = params.Latitude
	p.Longitude = params.Longitude
	now := time.Now().UTC()
	p.UpdatedAt = &now
	return nil
}
