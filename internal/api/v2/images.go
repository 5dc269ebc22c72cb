// internal/api/v2/images.go
package api

import (
	"net/http"
	"path/filepath"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/wildtag/wildtag-go/internal/datastore"
	"github.com/wildtag/wildtag-go/internal/errors"
)

// initImageRoutes registers all image-related API endpoints
func (c *Controller) initImageRoutes() {
	c.Group.POST("/images", c.UploadImage)
	c.Group.GET("/images", c.GetImages)
	c.Group.GET("/images/:id", c.GetImage)
	c.Group.GET("/images/:id/download", c.DownloadImage)
}

// UploadImage accepts a multipart upload with species_id and
// uploaded_user_id form fields, stores the file below the storage root and
// persists the image row with the relative path.
func (c *Controller) UploadImage(ctx echo.Context) error {
	speciesID, err := formUint(ctx, "species_id")
	if err != nil {
		return c.HandleDomainError(ctx, err, "Invalid species_id")
	}
	userID, err := formUint(ctx, "uploaded_user_id")
	if err != nil {
		return c.HandleDomainError(ctx, err, "Invalid uploaded_user_id")
	}

	species, err := c.DS.GetSpecies(speciesID)
	if err != nil {
		return c.HandleDomainError(ctx, err, "Species not found")
	}
	if _, err := c.DS.GetUser(userID); err != nil {
		return c.HandleDomainError(ctx, err, "User not found")
	}

	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		return c.HandleError(ctx, err, "Missing file upload", http.StatusUnprocessableEntity)
	}
	src, err := fileHeader.Open()
	if err != nil {
		return c.HandleError(ctx, err, "Failed to open uploaded file", http.StatusInternalServerError)
	}
	defer src.Close()

	relPath, err := c.Images.Save(species.Name, fileHeader.Filename, src)
	if err != nil {
		return c.HandleDomainError(ctx, err, "Failed to store image")
	}

	image := datastore.Image{
		Path:           relPath,
		SpeciesID:      species.ID,
		UploadedUserID: userID,
		UploadedAt:     time.Now().UTC(),
	}
	if err := c.DS.CreateImage(&image); err != nil {
		return c.HandleError(ctx, err, "Failed to create image record", http.StatusInternalServerError)
	}

	if c.metrics != nil {
		c.metrics.ImageUploads.Inc()
	}

	return ctx.JSON(http.StatusOK, image)
}

// GetImages lists images with pagination, optionally filtered by species_id.
func (c *Controller) GetImages(ctx echo.Context) error {
	offset, limit := pagination(ctx)

	var speciesID uint
	if raw := ctx.QueryParam("species_id"); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			return c.HandleError(ctx, err, "Invalid species_id", http.StatusUnprocessableEntity)
		}
		speciesID = uint(parsed)
	}

	images, err := c.DS.GetImages(offset, limit, speciesID)
	if err != nil {
		return c.HandleError(ctx, err, "Failed to get images", http.StatusInternalServerError)
	}
	return ctx.JSON(http.StatusOK, images)
}

// GetImage returns a single image record by ID.
func (c *Controller) GetImage(ctx echo.Context) error {
	id, err := pathID(ctx, "id")
	if err != nil {
		return c.HandleDomainError(ctx, err, "Invalid image ID")
	}

	image, err := c.DS.GetImage(id)
	if err != nil {
		return c.HandleDomainError(ctx, err, "Image not found")
	}
	return ctx.JSON(http.StatusOK, image)
}

// DownloadImage streams the stored file for an image record.
func (c *Controller) DownloadImage(ctx echo.Context) error {
	id, err := pathID(ctx, "id")
	if err != nil {
		return c.HandleDomainError(ctx, err, "Invalid image ID")
	}

	image, err := c.DS.GetImage(id)
	if err != nil {
		return c.HandleDomainError(ctx, err, "Image not found")
	}

	fullPath, err := c.Images.Resolve(image.Path)
	if err != nil {
		return c.HandleError(ctx, err, "Invalid file request", http.StatusBadRequest)
	}

	ctx.Response().Header().Set("filename", filepath.Base(image.Path))
	return ctx.File(fullPath)
}

// formUint parses a required unsigned integer form field.
func formUint(ctx echo.Context, name string) (uint, error) {
	raw := ctx.FormValue(name)
	if raw == "" {
		return 0, errors.Newf("%s form field is required", name).
			Category(errors.CategoryValidation).
			Component("api").
			Build()
	}
	parsed, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, errors.Newf("invalid %s: %q", name, raw).
			Category(errors.CategoryValidation).
			Component("api").
			Build()
	}
	return uint(parsed), nil
}
