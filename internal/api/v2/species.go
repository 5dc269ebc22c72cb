// internal/api/v2/species.go
package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/wildtag/wildtag-go/internal/datastore"
	"github.com/wildtag/wildtag-go/internal/errors"
)

// CreateSpeciesRequest is the payload for species creation.
type CreateSpeciesRequest struct {
	Name string `json:"name"`
}

// initSpeciesRoutes registers all species-related API endpoints
func (c *Controller) initSpeciesRoutes() {
	c.Group.POST("/species", c.CreateSpecies)
	c.Group.GET("/species", c.ListSpecies)
	c.Group.GET("/species/:id", c.GetSpecies)
	c.Group.DELETE("/species/:id", c.DeleteSpecies)
}

// CreateSpecies creates a new species, rejecting duplicate names.
func (c *Controller) CreateSpecies(ctx echo.Context) error {
	var req CreateSpeciesRequest
	if err := ctx.Bind(&req); err != nil {
		return c.HandleError(ctx, err, "Invalid request payload", http.StatusUnprocessableEntity)
	}
	if req.Name == "" {
		return c.HandleError(ctx, errors.ValidationError("name is required"),
			"Missing required fields", http.StatusUnprocessableEntity)
	}

	existing, err := c.DS.GetSpeciesByName(req.Name)
	if err != nil {
		return c.HandleError(ctx, err, "Failed to check species name", http.StatusInternalServerError)
	}
	if existing != nil {
		return c.HandleError(ctx, errors.Newf("species with this name already exists").
			Category(errors.CategoryConflict).
			Component("api").
			Build(), "Species already exists", http.StatusBadRequest)
	}

	species := datastore.Species{Name: req.Name}
	if err := c.DS.CreateSpecies(&species); err != nil {
		return c.HandleError(ctx, err, "Failed to create species", http.StatusInternalServerError)
	}

	return ctx.JSON(http.StatusOK, species)
}

// ListSpecies lists species with pagination.
func (c *Controller) ListSpecies(ctx echo.Context) error {
	offset, limit := pagination(ctx)
	species, err := c.DS.ListSpecies(offset, limit)
	if err != nil {
		return c.HandleError(ctx, err, "Failed to get species", http.StatusInternalServerError)
	}
	return ctx.JSON(http.StatusOK, species)
}

// GetSpecies returns a single species by ID.
func (c *Controller) GetSpecies(ctx echo.Context) error {
	id, err := pathID(ctx, "id")
	if err != nil {
		return c.HandleDomainError(ctx, err, "Invalid species ID")
	}

	species, err := c.DS.GetSpecies(id)
	if err != nil {
		return c.HandleDomainError(ctx, err, "Species not found")
	}
	return ctx.JSON(http.StatusOK, species)
}

// DeleteSpecies is a stub: species are referenced by images and are never
// deleted through this surface.
func (c *Controller) DeleteSpecies(ctx echo.Context) error {
	return c.HandleError(ctx, errors.Newf("species deletion is not implemented").
		Category(errors.CategoryState).
		Component("api").
		Build(), "Species deletion is not implemented", http.StatusNotImplemented)
}
