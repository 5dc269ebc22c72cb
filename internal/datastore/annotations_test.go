// annotations_test.go: Tests for bbox and polygon annotation persistence,
// including the all-or-nothing batch insert behavior.
//
// These tests use real SQLite databases (not mocks) to exercise actual GORM
// behavior.
package datastore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wildtag/wildtag-go/internal/errors"
)

func TestCreateBbox_RoundTrip(t *testing.T) {
	t.Parallel()

	settings := createTestSettings(t)
	ds := createDatabase(t, settings)

	_, _, task := seedTask(t, ds, TypeBboxAnnotation)

	original := BboxAnnotation{
		Bbox:   "(12.3, 34.3), (23, 56.3)",
		TaskID: task.ID,
	}
	require.NoError(t, ds.CreateBbox(&original))
	require.NotZero(t, original.ID, "Create must backfill the ID")

	loaded, err := ds.GetBbox(original.ID)
	require.NoError(t, err)
	assert.Equal(t, original.Bbox, loaded.Bbox, "Coordinate string must survive unmodified")
	assert.Equal(t, task.ID, loaded.TaskID)
}

func TestGetBbox_NotFound(t *testing.T) {
	t.Parallel()

	settings := createTestSettings(t)
	ds := createDatabase(t, settings)

	_, err := ds.GetBbox(404)
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
}

func TestCreateBboxes_BatchInsertsAll(t *testing.T) {
	t.Parallel()

	settings := createTestSettings(t)
	ds := createDatabase(t, settings)

	_, _, task := seedTask(t, ds, TypeBboxAnnotation)

	batch := []BboxAnnotation{
		{Bbox: "(1, 1), (2, 2)", TaskID: task.ID},
		{Bbox: "(3, 3), (4, 4)", TaskID: task.ID},
		{Bbox: "(5, 5), (6, 6)", TaskID: task.ID},
	}
	created, err := ds.CreateBboxes(batch)
	require.NoError(t, err)
	require.Len(t, created, 3)
	for _, bbox := range created {
		assert.NotZero(t, bbox.ID, "Every batch row must get an ID")
	}

	stored, err := ds.GetBboxes(0, 100, task.ID)
	require.NoError(t, err)
	assert.Len(t, stored, 3)
}

func TestCreateBboxes_FailureRollsBackWholeBatch(t *testing.T) {
	t.Parallel()

	settings := createTestSettings(t)
	ds := createDatabase(t, settings)

	_, _, task := seedTask(t, ds, TypeBboxAnnotation)

	existing := BboxAnnotation{Bbox: "(0, 0), (1, 1)", TaskID: task.ID}
	require.NoError(t, ds.CreateBbox(&existing))

	// The second row collides with the existing primary key, so the batch
	// must fail and leave no trace of the first row.
	batch := []BboxAnnotation{
		{Bbox: "(1, 1), (2, 2)", TaskID: task.ID},
		{ID: existing.ID, Bbox: "(3, 3), (4, 4)", TaskID: task.ID},
	}
	_, err := ds.CreateBboxes(batch)
	require.Error(t, err, "Batch with a conflicting row must fail")

	stored, err := ds.GetBboxes(0, 100, task.ID)
	require.NoError(t, err)
	require.Len(t, stored, 1, "Failed batch must not leave partial rows")
	assert.Equal(t, existing.ID, stored[0].ID)
	assert.Equal(t, existing.Bbox, stored[0].Bbox, "Existing row must be untouched")
}

func TestGetBboxes_TaskFilterAndPagination(t *testing.T) {
	t.Parallel()

	settings := createTestSettings(t)
	ds := createDatabase(t, settings)

	user, image, first := seedTask(t, ds, TypeBboxAnnotation)

	second := Task{
		TaskType:      TypeBboxVerification,
		ImageID:       image.ID,
		CreatedUserID: user.ID,
	}
	require.NoError(t, ds.CreateTask(&second))

	for i := 0; i < 3; i++ {
		require.NoError(t, ds.CreateBbox(&BboxAnnotation{Bbox: "(1, 1), (2, 2)", TaskID: first.ID}))
	}
	require.NoError(t, ds.CreateBbox(&BboxAnnotation{Bbox: "(9, 9), (10, 10)", TaskID: second.ID}))

	all, err := ds.GetBboxes(0, 100, 0)
	require.NoError(t, err)
	assert.Len(t, all, 4, "Zero taskID must disable the filter")

	filtered, err := ds.GetBboxes(0, 100, first.ID)
	require.NoError(t, err)
	assert.Len(t, filtered, 3)

	page, err := ds.GetBboxes(1, 2, first.ID)
	require.NoError(t, err)
	assert.Len(t, page, 2, "Offset and limit must window the result")

	unbounded, err := ds.GetBboxes(0, 0, first.ID)
	require.NoError(t, err)
	assert.Len(t, unbounded, 3, "Non-positive limit must disable the window")
}

func TestUpdateBbox_ReplacesCoordinates(t *testing.T) {
	t.Parallel()

	settings := createTestSettings(t)
	ds := createDatabase(t, settings)

	_, _, task := seedTask(t, ds, TypeBboxAnnotation)

	bbox := BboxAnnotation{Bbox: "(1, 1), (2, 2)", TaskID: task.ID}
	require.NoError(t, ds.CreateBbox(&bbox))

	updated, err := ds.UpdateBbox(bbox.ID, "(7, 7), (8, 8)")
	require.NoError(t, err)
	assert.Equal(t, "(7, 7), (8, 8)", updated.Bbox)
	assert.Equal(t, task.ID, updated.TaskID, "Task binding must not change on update")
}

func TestDeleteBbox_RemovesRow(t *testing.T) {
	t.Parallel()

	settings := createTestSettings(t)
	ds := createDatabase(t, settings)

	_, _, task := seedTask(t, ds, TypeBboxAnnotation)

	bbox := BboxAnnotation{Bbox: "(1, 1), (2, 2)", TaskID: task.ID}
	require.NoError(t, ds.CreateBbox(&bbox))

	require.NoError(t, ds.DeleteBbox(bbox.ID))

	_, err := ds.GetBbox(bbox.ID)
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
}

func TestCreatePolygons_BatchRoundTrip(t *testing.T) {
	t.Parallel()

	settings := createTestSettings(t)
	ds := createDatabase(t, settings)

	_, _, task := seedTask(t, ds, TypePolyAnnotation)

	batch := []PolyAnnotation{
		{Polygon: "(1, 1), (2, 2), (3, 1)", TaskID: task.ID},
		{Polygon: "(4, 4), (5, 5), (6, 4)", TaskID: task.ID},
	}
	created, err := ds.CreatePolygons(batch)
	require.NoError(t, err)
	require.Len(t, created, 2)

	stored, err := ds.GetPolygons(0, 100, task.ID)
	require.NoError(t, err)
	require.Len(t, stored, 2)
	assert.Equal(t, batch[0].Polygon, stored[0].Polygon)

	unbounded, err := ds.GetPolygons(0, 0, task.ID)
	require.NoError(t, err)
	assert.Len(t, unbounded, 2, "Non-positive limit must disable the window")
}

func TestUpdateAndDeletePolygon(t *testing.T) {
	t.Parallel()

	settings := createTestSettings(t)
	ds := createDatabase(t, settings)

	_, _, task := seedTask(t, ds, TypePolyAnnotation)

	polygon := PolyAnnotation{Polygon: "(1, 1), (2, 2), (3, 1)", TaskID: task.ID}
	require.NoError(t, ds.CreatePolygon(&polygon))

	updated, err := ds.UpdatePolygon(polygon.ID, "(9, 9), (10, 10), (11, 9)")
	require.NoError(t, err)
	assert.Equal(t, "(9, 9), (10, 10), (11, 9)", updated.Polygon)

	require.NoError(t, ds.DeletePolygon(polygon.ID))
	_, err = ds.GetPolygon(polygon.ID)
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
}
