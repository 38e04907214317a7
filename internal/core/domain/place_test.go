package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/bedic/places-backend/internal/core/errors"
)

func TestNewPlace(t *testing.T) {
	ownerID := uuid.New()
	place, err := NewPlace(PlaceParams{
		Name:      "Museo del Oro",
		Category:  CategoryMuseum,
		City:      "Bogotá",
		Latitude:  4.6018,
		Longitude: -74.0722,
		OwnerID:   &ownerID,
	})

	require.NoError(t, err)
	assert.False(t, place.Verified)
	assert.True(t, place.IsOwnedBy(ownerID))
	assert.False(t, place.IsOwnedBy(uuid.New()))
}

func TestNewPlace_Validation(t *testing.T) {
	tests := []struct {
		name   string
		params PlaceParams
		field  string
	}{
		{
			name:   "missing name",
			params: PlaceParams{Category: CategoryCafe, City: "Cali"},
			field:  "name",
		},
		{
			name:   "unknown category",
			params: PlaceParams{Name: "X", Category: PlaceCategory("volcano"), City: "Cali"},
			field:  "category",
		},
		{
			name:   "missing city",
			params: PlaceParams{Name: "X", Category: CategoryCafe},
			field:  "city",
		},
		{
			name:   "latitude out of range",
			params: PlaceParams{Name: "X", Category: CategoryCafe, City: "Cali", Latitude: 91},
			field:  "latitude",
		},
		{
			name:   "longitude out of range",
			params: PlaceParams{Name: "X", Category: CategoryCafe, City: "Cali", Longitude: -181},
			field:  "longitude",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewPlace(tt.params)
			require.Error(t, err)

			var verrs *apperrors.ValidationErrors
			require.ErrorAs(t, err, &verrs)
			assert.Contains(t, verrs.Errors, tt.field)
		})
	}
}

func TestPlace_Verify(t *testing.T) {
	place, err := NewPlace(PlaceParams{
		Name:     "Parque Arví",
		Category: CategoryPark,
		City:     "Medellín",
	})
	require.NoError(t, err)

	require.NoError(t, place.Verify())
	assert.True(t, place.Verified)

	err = place.Verify()
	assert.ErrorIs(t, err, apperrors.ErrPlaceAlreadyVerified)
}

func TestPlace_UpdateKeepsVerifiedStatus(t *testing.T) {
	place, err := NewPlace(PlaceParams{
		Name:     "Café Central",
		Category: CategoryCafe,
		City:     "Bogotá",
	})
	require.NoError(t, err)
	require.NoError(t, place.Verify())

	err = place.Update(PlaceParams{
		Name:     "Café Central Renovado",
		Category: CategoryRestaurant,
		City:     "Bogotá",
	})
	require.NoError(t, err)

	assert.Equal(t, "Café Central Renovado", place.Name)
	assert.Equal(t, CategoryRestaurant, place.Category)
	assert.True(t, place.Verified, "edits do not reset verification")
	require.NotNil(t, place.UpdatedAt)
}
