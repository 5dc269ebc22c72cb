// annotations.go: bbox and polygon annotation persistence operations
package datastore

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/wildtag/wildtag-go/internal/errors"
)

// CreateBbox inserts a single bbox annotation row.
func (ds *DataStore) CreateBbox(bbox *BboxAnnotation) error {
	if err := ds.DB.Create(bbox).Error; err != nil {
		return errors.Wrap(err).
			Category(errors.CategoryDatabase).
			Component("datastore").
			Context("operation", "create_bbox").
			Build()
	}
	return nil
}

// CreateBboxes inserts a batch of bbox annotations in a single transaction.
// Either every row is written or none is.
func (ds *DataStore) CreateBboxes(bboxes []BboxAnnotation) ([]BboxAnnotation, error) {
	err := ds.DB.Transaction(func(tx *gorm.DB) error {
		for i := range bboxes {
			if err := tx.Create(&bboxes[i]).Error; err != nil {
				return fmt.Errorf("saving bbox for task %d: %w", bboxes[i].TaskID, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err).
			Category(errors.CategoryDatabase).
			Component("datastore").
			Context("operation", "create_bboxes").
			Build()
	}
	return bboxes, nil
}

// GetBbox retrieves a bbox annotation by its ID.
func (ds *DataStore) GetBbox(id uint) (BboxAnnotation, error) {
	var bbox BboxAnnotation
	if err := ds.DB.First(&bbox, id).Error; err != nil {
		return BboxAnnotation{}, convertError(err, "Bbox", id)
	}
	return bbox, nil
}

// GetBboxes retrieves bbox annotations with pagination, optionally filtered
// by task. A taskID of zero disables the filter; a non-positive limit
// disables the window.
func (ds *DataStore) GetBboxes(offset, limit int, taskID uint) ([]BboxAnnotation, error) {
	query := ds.DB.Order("id ASC").Offset(offset)
	if limit > 0 {
		query = query.Limit(limit)
	}
	if taskID != 0 {
		query = query.Where("task_id = ?", taskID)
	}

	var bboxes []BboxAnnotation
	if err := query.Find(&bboxes).Error; err != nil {
		return nil, fmt.Errorf("error getting bboxes: %w", err)
	}
	return bboxes, nil
}

// UpdateBbox replaces the coordinate payload of a bbox annotation and
// returns the refreshed row.
func (ds *DataStore) UpdateBbox(id uint, bbox string) (BboxAnnotation, error) {
	if err := ds.DB.Model(&BboxAnnotation{}).Where("id = ?", id).Update("bbox", bbox).Error; err != nil {
		return BboxAnnotation{}, fmt.Errorf("updating bbox %d: %w", id, err)
	}
	return ds.GetBbox(id)
}

// DeleteBbox removes a bbox annotation by its ID.
func (ds *DataStore) DeleteBbox(id uint) error {
	if err := ds.DB.Delete(&BboxAnnotation{}, id).Error; err != nil {
		return fmt.Errorf("deleting bbox %d: %w", id, err)
	}
	return nil
}

// CreatePolygon inserts a single polygon annotation row.
func (ds *DataStore) CreatePolygon(polygon *PolyAnnotation) error {
	if err := ds.DB.Create(polygon).Error; err != nil {
		return errors.Wrap(err).
			Category(errors.CategoryDatabase).
			Component("datastore").
			Context("operation", "create_polygon").
			Build()
	}
	return nil
}

// CreatePolygons inserts a batch of polygon annotations in a single
// transaction. Either every row is written or none is.
func (ds *DataStore) CreatePolygons(polygons []PolyAnnotation) ([]PolyAnnotation, error) {
	err := ds.DB.Transaction(func(tx *gorm.DB) error {
		for i := range polygons {
			if err := tx.Create(&polygons[i]).Error; err != nil {
				return fmt.Errorf("saving polygon for task %d: %w", polygons[i].TaskID, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err).
			Category(errors.CategoryDatabase).
			Component("datastore").
			Context("operation", "create_polygons").
			Build()
	}
	return polygons, nil
}

// GetPolygon retrieves a polygon annotation by its ID.
func (ds *DataStore) GetPolygon(id uint) (PolyAnnotation, error) {
	var polygon PolyAnnotation
	if err := ds.DB.First(&polygon, id).Error; err != nil {
		return PolyAnnotation{}, convertError(err, "Polygon", id)
	}
	return polygon, nil
}

// GetPolygons retrieves polygon annotations with pagination, optionally
// filtered by task. A taskID of zero disables the filter; a non-positive
// limit disables the window.
func (ds *DataStore) GetPolygons(offset, limit int, taskID uint) ([]PolyAnnotation, error) {
	query := ds.DB.Order("id ASC").Offset(offset)
	if limit > 0 {
		query = query.Limit(limit)
	}
	if taskID != 0 {
		query = query.Where("task_id = ?", taskID)
	}

	var polygons []PolyAnnotation
	if err := query.Find(&polygons).Error; err != nil {
		return nil, fmt.Errorf("error getting polygons: %w", err)
	}
	return polygons, nil
}

// UpdatePolygon replaces the coordinate payload of a polygon annotation and
// returns the refreshed row.
func (ds *DataStore) UpdatePolygon(id uint, polygon string) (PolyAnnotation, error) {
	if err := ds.DB.Model(&PolyAnnotation{}).Where("id = ?", id).Update("polygon", polygon).Error; err != nil {
		return PolyAnnotation{}, fmt.Errorf("updating polygon %d: %w", id, err)
	}
	return ds.GetPolygon(id)
}

// DeletePolygon removes a polygon annotation by its ID.
func (ds *DataStore) DeletePolygon(id uint) error {
	if err := ds.DB.Delete(&PolyAnnotation{}, id).Error; err != nil {
		return fmt.Errorf("deleting polygon %d: %w", id, err)
	}
	return nil
}
