package datastore

import (
	"gorm.io/gorm"

	"github.com/wildtag/wildtag-go/internal/errors"
)

// notFound builds the canonical not-found error for an entity/id pair.
func notFound(entity string, id uint) error {
	return errors.Newf("%s with this ID does not exist", entity).
		Category(errors.CategoryNotFound).
		Component("datastore").
		Context("entity", entity).
		Context("id", id).
		Build()
}

// convertError maps a GORM error to the application error taxonomy.
// Record-not-found becomes CategoryNotFound, everything else CategoryDatabase.
func convertError(err error, entity string, id uint) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound(entity, id)
	}
	return errors.Wrap(err).
		Category(errors.CategoryDatabase).
		Component("datastore").
		Context("entity", entity).
		Build()
}
