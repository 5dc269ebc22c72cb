// images.go: image persistence operations
package datastore

import (
	"fmt"

	"github.com/wildtag/wildtag-go/internal/errors"
)

// CreateImage inserts a new image row. Path must be relative to the storage root.
func (ds *DataStore) CreateImage(image *Image) error {
	if err := ds.DB.Create(image).Error; err != nil {
		return errors.Wrap(err).
			Category(errors.CategoryDatabase).
			Component("datastore").
			Context("operation", "create_image").
			Build()
	}
	return nil
}

// GetImage retrieves an image by its ID.
func (ds *DataStore) GetImage(id uint) (Image, error) {
	var image Image
	if err := ds.DB.First(&image, id).Error; err != nil {
		return Image{}, convertError(err, "Image", id)
	}
	return image, nil
}

// GetImages retrieves images with pagination, optionally filtered by species.
// A speciesID of zero disables the filter.
func (ds *DataStore) GetImages(offset, limit int, speciesID uint) ([]Image, error) {
	query := ds.DB.Order("id ASC").Offset(offset).Limit(limit)
	if speciesID != 0 {
		query = query.Where("species_id = ?", speciesID)
	}

	var images []Image
	if err := query.Find(&images).Error; err != nil {
		return nil, fmt.Errorf("error getting images: %w", err)
	}
	return images, nil
}
