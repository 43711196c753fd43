package httpapi

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/kelvins/geocoder"

	"github.com/akoval/frostwatch/internal/forecast"
	"github.com/akoval/frostwatch/internal/geo"
	"github.com/akoval/frostwatch/internal/store"
	"github.com/akoval/frostwatch/internal/watch"
)

var validate = validator.New()

// RegisterRoutes wires the HTTP handlers into the Fiber app. geocoderKey
// may be empty; address-based registration then returns 400.
func RegisterRoutes(app *fiber.App, st *store.Store, svc *watch.Service, geocoderKey string) {
	h := &handlers{store: st, service: svc, geocoderKey: geocoderKey}

	v1 := app.Group("/api/v1")
	v1.Get("/locations", h.listLocations)
	v1.Post("/locations", h.createLocation)
	v1.Delete("/locations/:id", h.deleteLocation)
	v1.Get("/locations/:id/analysis", h.analyzeLocation)
	v1.Get("/notifications", h.listNotifications)
}

type handlers struct {
	store       *store.Store
	service     *watch.Service
	geocoderKey string
}

// addressRequest mirrors the geocoder's address fields for street-based
// registration.
type addressRequest struct {
	Street  string `json:"street"`
	Number  int    `json:"number"`
	City    string `json:"city" validate:"required"`
	State   string `json:"state"`
	Country string `json:"country" validate:"required"`
}

type createLocationRequest struct {
	OwnerID   string          `json:"owner_id" validate:"required"`
	Name      string          `json:"name" validate:"required"`
	Latitude  *float64        `json:"latitude" validate:"omitempty,gte=-90,lte=90"`
	Longitude *float64        `json:"longitude" validate:"omitempty,gte=-180,lte=180"`
	Address   *addressRequest `json:"address"`
}

func (h *handlers) createLocation(c *fiber.Ctx) error {
	var req createLocationRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	var coord geo.Coordinate
	switch {
	case req.Latitude != nil && req.Longitude != nil:
		coord = geo.Coordinate{Latitude: *req.Latitude, Longitude: *req.Longitude}
	case req.Address != nil:
		if err := validate.Struct(req.Address); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		resolved, err := h.geocode(*req.Address)
		if err != nil {
			return err
		}
		coord = resolved
	default:
		return fiber.NewError(fiber.StatusBadRequest, "either latitude/longitude or address is required")
	}

	if !coord.Valid() {
		return fiber.NewError(fiber.StatusBadRequest, "coordinate out of range")
	}

	loc, err := h.store.CreateLocation(req.OwnerID, req.Name, coord)
	if err != nil {
		if errors.Is(err, store.ErrDuplicateName) {
			return fiber.NewError(fiber.StatusConflict, "location name already in use")
		}
		return fiber.NewError(fiber.StatusInternalServerError, "failed to create location")
	}
	return c.Status(fiber.StatusCreated).JSON(loc)
}

func (h *handlers) geocode(addr addressRequest) (geo.Coordinate, error) {
	if h.geocoderKey == "" {
		return geo.Coordinate{}, fiber.NewError(fiber.StatusBadRequest,
			"address registration requires a configured geocoder API key")
	}
	geocoder.ApiKey = h.geocoderKey

	loc, err := geocoder.Geocoding(geocoder.Address{
		Street:  addr.Street,
		Number:  addr.Number,
		City:    addr.City,
		State:   addr.State,
		Country: addr.Country,
	})
	if err != nil {
		return geo.Coordinate{}, fiber.NewError(fiber.StatusBadGateway, "failed to resolve address")
	}
	return geo.Coordinate{Latitude: loc.Latitude, Longitude: loc.Longitude}, nil
}

func (h *handlers) listLocations(c *fiber.Ctx) error {
	ownerID := c.Query("owner_id")

	var (
		locs []store.Location
		err  error
	)
	if ownerID != "" {
		locs, err = h.store.LocationsByOwner(ownerID)
	} else {
		locs, err = h.store.AllLocations()
	}
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to list locations")
	}
	if locs == nil {
		locs = []store.Location{}
	}
	return c.JSON(locs)
}

func (h *handlers) deleteLocation(c *fiber.Ctx) error {
	if err := h.store.DeleteLocation(c.Params("id")); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "location not found")
		}
		return fiber.NewError(fiber.StatusInternalServerError, "failed to delete location")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *handlers) analyzeLocation(c *fiber.Ctx) error {
	analysis, err := h.service.AnalyzeLocation(c.Context(), c.Params("id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "location not found")
		}
		var pe *forecast.ProviderError
		if errors.As(err, &pe) {
			return fiber.NewError(fiber.StatusBadGateway, pe.Error())
		}
		return fiber.NewError(fiber.StatusInternalServerError, "failed to analyze location")
	}
	return c.JSON(analysis)
}

type notificationsQuery struct {
	OwnerID string `validate:"required"`
	Limit   int    `validate:"gte=0,lte=500"`
}

func (h *handlers) listNotifications(c *fiber.Ctx) error {
	q := notificationsQuery{
		OwnerID: c.Query("owner_id"),
		Limit:   c.QueryInt("limit"),
	}
	if err := validate.Struct(q); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	items, err := h.store.NotificationsByOwner(q.OwnerID, q.Limit)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to list notifications")
	}
	if items == nil {
		items = []store.Notification{}
	}
	return c.JSON(items)
}
