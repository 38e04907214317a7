package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/samber/lo"

	mw "github.com/bedic/places-backend/internal/adapters/primary/http/middleware"
	"github.com/bedic/places-backend/internal/adapters/primary/validation"
	"github.com/bedic/places-backend/internal/auth"
	"github.com/bedic/places-backend/internal/core/domain"
	"github.com/bedic/places-backend/internal/core/ports"
)

const maxPlacesPerPage = 100

var placeCategories = []string{"restaurant", "cafe", "hotel", "museum", "park", "nightlife", "shopping", "other"}

// PlaceHandler handles HTTP requests for the place catalog.
type PlaceHandler struct {
	placeService ports.PlaceService
	errorHandler *ErrorHandler
	logger       *slog.Logger
}

// NewPlaceHandler creates a new place handler
func NewPlaceHandler(placeService ports.PlaceService, errorHandler *ErrorHandler, logger *slog.Logger) *PlaceHandler {
	return &PlaceHandler{
		placeService: placeService,
		errorHandler: errorHandler,
		logger:       logger.With("handler", "place"),
	}
}

// --- Request/Response DTOs ---

// PlaceRequest defines the expected JSON body for creating or updating a place
type PlaceRequest struct {
	Name        string  `json:"name"`
	Category    string  `json:"category"`
	Description string  `json:"description"`
	Department  string  `json:"department"`
	City        string  `json:"city"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
}

// Validate validates the place request
func (r *PlaceRequest) Validate() error {
	v := validation.NewValidator()

	v.Required("name", r.Name).
		MaxLength("name", r.Name, domain.MaxPlaceNameLength)

	v.Required("category", r.Category).
		OneOf("category", r.Category, placeCategories)

	v.MaxLength("description", r.Description, domain.MaxPlaceDescriptionLength)

	v.Required("city", r.City)

	v.Custom("latitude", r.Latitude >= -90 && r.Latitude <= 90, "Must be between -90 and 90")
	v.Custom("longitude", r.Longitude >= -180 && r.Longitude <= 180, "Must be between -180 and 180")

	if v.HasErrors() {
		return v.Errors()
	}
	return nil
}

func (r *PlaceRequest) toParams() domain.PlaceParams {
	return domain.PlaceParams{
		Name:        r.Name,
		Category:    domain.PlaceCategory(r.Category),
		Description: r.Description,
		Department:  r.Department,
		City:        r.City,
		Latitude:    r.Latitude,
		Longitude:   r.Longitude,
	}
}

// PlaceDTO defines the JSON response for places.
type PlaceDTO struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Category    string  `json:"category"`
	Description string  `json:"description"`
	Department  string  `json:"department"`
	City        string  `json:"city"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	OwnerID     *string `json:"ownerId"`
	Verified    bool    `json:"verified"`
	CreatedAt   string  `json:"createdAt"`
	UpdatedAt   *string `json:"updatedAt"`
}

func toPlaceDTO(place *domain.Place) PlaceDTO {
	var ownerID *string
	if place.OwnerID != nil {
		value := place.OwnerID.String()
		ownerID = &value
	}

	var updatedAt *string
	if place.UpdatedAt != nil {
		value := place.UpdatedAt.Format(time.RFC3339)
		updatedAt = &value
	}

	return PlaceDTO{
		ID:          place.ID.String(),
		Name:        place.Name,
		Category:    string(place.Category),
		Description: place.Description,
		Department:  place.Department,
		City:        place.City,
		Latitude:    place.Latitude,
		Longitude:   place.Longitude,
		OwnerID:     ownerID,
		Verified:    place.Verified,
		CreatedAt:   place.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   updatedAt,
	}
}

// --- Handlers ---

// HandleListPlaces handles GET /places
func (h *PlaceHandler) HandleListPlaces(w http.ResponseWriter, r *http.Request) {
	pagination := validation.ParsePagination(r, maxPlacesPerPage)

	v := validation.NewValidator()

	var category *domain.PlaceCategory
	if categoryStr := validation.ParseStringQueryParam(r, "category"); categoryStr != nil {
		parsed := domain.PlaceCategory(*categoryStr)
		if !domain.ValidCategory(parsed) {
			v.Custom("category", false, "Unknown category")
		} else {
			category = &parsed
		}
	}

	city := validation.ParseStringQueryParam(r, "city")

	var verified *bool
	if r.URL.Query().Get("verified") != "" {
		value := validation.ParseBoolQueryParam(r, "verified", false)
		verified = &value
	}

	var ownerID *uuid.UUID
	if ownerIDStr := r.URL.Query().Get("ownerId"); ownerIDStr != "" {
		parsed, err := uuid.Parse(ownerIDStr)
		if err != nil {
			v.Custom("ownerId", false, "Must be a valid UUID")
		} else {
			ownerID = &parsed
		}
	}

	if v.HasErrors() {
		h.errorHandler.Handle(w, r, v.Errors())
		return
	}

	filter := ports.ListPlacesFilter{
		Category: category,
		City:     city,
		Verified: verified,
		OwnerID:  ownerID,
		Limit:    pagination.Limit + 1,
		Offset:   pagination.Offset,
	}

	places, err := h.placeService.ListPlaces(r.Context(), filter)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	WritePaginatedSimple(w, lo.Map(places, func(place *domain.Place, _ int) PlaceDTO {
		return toPlaceDTO(place)
	}), pagination.Limit, pagination.Offset)
}

// HandleCreatePlace handles POST /places
func (h *PlaceHandler) HandleCreatePlace(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.getClaims(w, r)
	if !ok {
		return
	}

	req, err := validation.DecodeAndValidate[PlaceRequest](r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	if err := req.Validate(); err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	place, err := h.placeService.CreatePlace(r.Context(), ports.CreatePlaceParams{
		Place:   req.toParams(),
		ActorID: claims.UserID,
	})
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	h.logger.Info("place created",
		"place_id", place.ID,
		"user_id", claims.UserID,
	)

	WriteCreated(w, toPlaceDTO(place))
}

// HandleGetPlace handles GET /places/{placeID}
func (h *PlaceHandler) HandleGetPlace(w http.ResponseWriter, r *http.Request) {
	placeID, err := h.parsePlaceID(r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	place, err := h.placeService.GetPlace(r.Context(), placeID)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	WriteJSON(w, http.StatusOK, toPlaceDTO(place))
}

// HandleUpdatePlace handles PUT /places/{placeID}
func (h *PlaceHandler) HandleUpdatePlace(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.getClaims(w, r)
	if !ok {
		return
	}

	placeID, err := h.parsePlaceID(r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	req, err := validation.DecodeAndValidate[PlaceRequest](r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	if err := req.Validate(); err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	place, err := h.placeService.UpdatePlace(r.Context(), ports.UpdatePlaceParams{
		PlaceID: placeID,
		Place:   req.toParams(),
		ActorID: claims.UserID,
		Role:    claims.Role,
	})
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	h.logger.Info("place updated",
		"place_id", placeID,
		"user_id", claims.UserID,
	)

	WriteJSON(w, http.StatusOK, toPlaceDTO(place))
}

// HandleVerifyPlace handles PATCH /places/{placeID}/verify
func (h *PlaceHandler) HandleVerifyPlace(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.getClaims(w, r)
	if !ok {
		return
	}

	placeID, err := h.parsePlaceID(r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	place, err := h.placeService.VerifyPlace(r.Context(), placeID, claims.UserID, claims.Role)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	h.logger.Info("place verified",
		"place_id", placeID,
		"user_id", claims.UserID,
	)

	WriteJSON(w, http.StatusOK, toPlaceDTO(place))
}

// HandleDeletePlace handles DELETE /places/{placeID}
func (h *PlaceHandler) HandleDeletePlace(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.getClaims(w, r)
	if !ok {
		return
	}

	placeID, err := h.parsePlaceID(r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	if err := h.placeService.DeletePlace(r.Context(), placeID, claims.UserID, claims.Role); err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	h.logger.Info("place deleted",
		"place_id", placeID,
		"user_id", claims.UserID,
	)

	WriteNoContent(w)
}

// --- Helper methods ---

// getClaims extracts and validates user claims from the request context
func (h *PlaceHandler) getClaims(w http.ResponseWriter, r *http.Request) (*auth.Claims, bool) {
	claims, ok := mw.GetClaims(r.Context())
	if !ok {
		WriteJSON(w, http.StatusUnauthorized, ErrorResponse{
			Error: "Not authorized",
			Code:  "UNAUTHORIZED",
		})
		return nil, false
	}
	return claims, true
}

// parsePlaceID extracts and validates the place ID from the URL
func (h *PlaceHandler) parsePlaceID(r *http.Request) (uuid.UUID, error) {
	idParam := chi.URLParam(r, "placeID")
	placeID, err := uuid.Parse(idParam)
	if err != nil {
		v := validation.NewValidator()
		v.Custom("placeID", false, "Invalid place ID")
		return uuid.Nil, v.Errors()
	}
	return placeID, nil
}
