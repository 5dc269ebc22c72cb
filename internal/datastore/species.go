// species.go: species persistence operations
package datastore

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/wildtag/wildtag-go/internal/errors"
)

// CreateSpecies inserts a new species row.
func (ds *DataStore) CreateSpecies(species *Species) error {
	if err := ds.DB.Create(species).Error; err != nil {
		return errors.Wrap(err).
			Category(errors.CategoryDatabase).
			Component("datastore").
			Context("operation", "create_species").
			Build()
	}
	return nil
}

// GetSpecies retrieves a species by its ID.
func (ds *DataStore) GetSpecies(id uint) (Species, error) {
	var species Species
	if err := ds.DB.First(&species, id).Error; err != nil {
		return Species{}, convertError(err, "Species", id)
	}
	return species, nil
}

// GetSpeciesByName retrieves a species by name. Returns nil without error
// when absent, so callers can use it for duplicate checks.
func (ds *DataStore) GetSpeciesByName(name string) (*Species, error) {
	var species Species
	err := ds.DB.Where("name = ?", name).First(&species).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting species by name: %w", err)
	}
	return &species, nil
}

// ListSpecies retrieves species with pagination.
func (ds *DataStore) ListSpecies(offset, limit int) ([]Species, error) {
	var species []Species
	if err := ds.DB.Order("id ASC").Offset(offset).Limit(limit).Find(&species).Error; err != nil {
		return nil, fmt.Errorf("error getting species: %w", err)
	}
	return species, nil
}
