// workflow_test.go: Tests for the task lifecycle guard conditions.
//
// These tests use real SQLite databases (not mocks) so the guards run against
// actual persisted task state.
package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wildtag/wildtag-go/internal/conf"
	"github.com/wildtag/wildtag-go/internal/datastore"
	"github.com/wildtag/wildtag-go/internal/errors"
)

// createDatabase initializes a temporary SQLite database for testing purposes.
func createDatabase(t *testing.T) datastore.Interface {
	t.Helper()
	settings := &conf.Settings{}
	settings.Output.SQLite.Enabled = true
	settings.Output.SQLite.Path = t.TempDir() + "/test.db"

	ds := datastore.New(settings)
	require.NotNil(t, ds)
	require.NoError(t, ds.Open(), "Failed to open database")
	t.Cleanup(func() {
		assert.NoError(t, ds.Close(), "Failed to close datastore")
	})
	return ds
}

// seedUser creates a user row for tests that need one.
func seedUser(t *testing.T, ds datastore.Interface, username, email string) datastore.User {
	t.Helper()
	user := datastore.User{
		Username:       username,
		Email:          email,
		HashedPassword: "hashed-secret",
	}
	require.NoError(t, ds.CreateUser(&user))
	return user
}

// seedTask creates a pending task with its species/user/image chain.
func seedTask(t *testing.T, ds datastore.Interface, taskType datastore.TaskType) (datastore.User, datastore.Task) {
	t.Helper()

	species := datastore.Species{Name: "Brown Bear"}
	require.NoError(t, ds.CreateSpecies(&species))

	creator := seedUser(t, ds, "creator", "creator@example.com")

	image := datastore.Image{
		Path:           "Brown_Bear/abc.jpg",
		SpeciesID:      species.ID,
		UploadedUserID: creator.ID,
	}
	require.NoError(t, ds.CreateImage(&image))

	task := datastore.Task{
		TaskType:      taskType,
		ImageID:       image.ID,
		CreatedUserID: creator.ID,
	}
	require.NoError(t, ds.CreateTask(&task))
	return creator, task
}

func TestCheckUser(t *testing.T) {
	t.Parallel()

	ds := createDatabase(t)
	v := New(ds)

	user := seedUser(t, ds, "alice", "alice@example.com")

	got, err := v.CheckUser(user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	_, err = v.CheckUser(999)
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
}

func TestAcceptTask_Lifecycle(t *testing.T) {
	t.Parallel()

	ds := createDatabase(t)
	v := New(ds)

	_, task := seedTask(t, ds, datastore.TypeBboxAnnotation)
	annotator := seedUser(t, ds, "annotator", "annotator@example.com")

	accepted, err := v.AcceptTask(task.ID, annotator.ID)
	require.NoError(t, err)
	assert.Equal(t, datastore.TaskAccepted, accepted.Status)
	require.NotNil(t, accepted.AcceptedUserID)
	assert.Equal(t, annotator.ID, *accepted.AcceptedUserID)
	require.NotNil(t, accepted.AcceptedAt)
}

func TestAcceptTask_UnknownUser(t *testing.T) {
	t.Parallel()

	ds := createDatabase(t)
	v := New(ds)

	_, task := seedTask(t, ds, datastore.TypeBboxAnnotation)

	_, err := v.AcceptTask(task.ID, 999)
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
}

func TestAcceptTask_UnknownTask(t *testing.T) {
	t.Parallel()

	ds := createDatabase(t)
	v := New(ds)

	user := seedUser(t, ds, "alice", "alice@example.com")

	_, err := v.AcceptTask(999, user.ID)
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
}

func TestAcceptTask_AlreadyAccepted(t *testing.T) {
	t.Parallel()

	ds := createDatabase(t)
	v := New(ds)

	_, task := seedTask(t, ds, datastore.TypeBboxAnnotation)
	first := seedUser(t, ds, "first", "first@example.com")
	second := seedUser(t, ds, "second", "second@example.com")

	_, err := v.AcceptTask(task.ID, first.ID)
	require.NoError(t, err)

	// Neither another user nor the accepting user may accept again.
	_, err = v.AcceptTask(task.ID, second.ID)
	require.Error(t, err)
	assert.True(t, errors.IsConflict(err))

	_, err = v.AcceptTask(task.ID, first.ID)
	require.Error(t, err)
	assert.True(t, errors.IsConflict(err))
}

func TestAcceptTask_AlreadyFinished(t *testing.T) {
	t.Parallel()

	ds := createDatabase(t)
	v := New(ds)

	_, task := seedTask(t, ds, datastore.TypeBboxAnnotation)
	annotator := seedUser(t, ds, "annotator", "annotator@example.com")

	_, err := v.AcceptTask(task.ID, annotator.ID)
	require.NoError(t, err)
	_, err = v.FinishTask(task.ID, annotator.ID)
	require.NoError(t, err)

	_, err = v.AcceptTask(task.ID, annotator.ID)
	require.Error(t, err)
	assert.True(t, errors.IsConflict(err))
}

func TestFinishTask_Lifecycle(t *testing.T) {
	t.Parallel()

	ds := createDatabase(t)
	v := New(ds)

	_, task := seedTask(t, ds, datastore.TypePolyAnnotation)
	annotator := seedUser(t, ds, "annotator", "annotator@example.com")

	_, err := v.AcceptTask(task.ID, annotator.ID)
	require.NoError(t, err)

	finished, err := v.FinishTask(task.ID, annotator.ID)
	require.NoError(t, err)
	assert.Equal(t, datastore.TaskFinished, finished.Status)
	require.NotNil(t, finished.FinishedAt)
}

func TestFinishTask_Pending(t *testing.T) {
	t.Parallel()

	ds := createDatabase(t)
	v := New(ds)

	_, task := seedTask(t, ds, datastore.TypeBboxAnnotation)
	annotator := seedUser(t, ds, "annotator", "annotator@example.com")

	_, err := v.FinishTask(task.ID, annotator.ID)
	require.Error(t, err)
	assert.True(t, errors.IsConflict(err))
}

func TestFinishTask_WrongUser(t *testing.T) {
	t.Parallel()

	ds := createDatabase(t)
	v := New(ds)

	_, task := seedTask(t, ds, datastore.TypeBboxAnnotation)
	owner := seedUser(t, ds, "owner", "owner@example.com")
	intruder := seedUser(t, ds, "intruder", "intruder@example.com")

	_, err := v.AcceptTask(task.ID, owner.ID)
	require.NoError(t, err)

	_, err = v.FinishTask(task.ID, intruder.ID)
	require.Error(t, err)
	assert.True(t, errors.IsUnauthorized(err), "Finishing another user's task is an authorization failure")
}

func TestFinishTask_AlreadyFinished(t *testing.T) {
	t.Parallel()

	ds := createDatabase(t)
	v := New(ds)

	_, task := seedTask(t, ds, datastore.TypeBboxAnnotation)
	annotator := seedUser(t, ds, "annotator", "annotator@example.com")

	_, err := v.AcceptTask(task.ID, annotator.ID)
	require.NoError(t, err)
	_, err = v.FinishTask(task.ID, annotator.ID)
	require.NoError(t, err)

	_, err = v.FinishTask(task.ID, annotator.ID)
	require.Error(t, err)
	assert.True(t, errors.IsConflict(err))
}

func TestCheckTask_GuardOrder(t *testing.T) {
	t.Parallel()

	ds := createDatabase(t)
	v := New(ds)

	annotator := seedUser(t, ds, "annotator", "annotator@example.com")

	// Existence is checked first.
	_, err := v.CheckTask(999, annotator.ID, datastore.KindBbox)
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))

	// A pending task rejects annotations even when everything else matches.
	_, pending := seedTask(t, ds, datastore.TypeBboxAnnotation)
	_, err = v.CheckTask(pending.ID, annotator.ID, datastore.KindBbox)
	require.Error(t, err)
	assert.True(t, errors.IsConflict(err))
	assert.Contains(t, err.Error(), "not been accepted")

	// Kind mismatch is reported before wrong-user: a bbox task accepted by
	// someone else, probed with a poly annotation, reports the mismatch.
	other := seedUser(t, ds, "other", "other@example.com")
	_, err = v.AcceptTask(pending.ID, other.ID)
	require.NoError(t, err)

	_, err = v.CheckTask(pending.ID, annotator.ID, datastore.KindPoly)
	require.Error(t, err)
	assert.True(t, errors.IsConflict(err))
	assert.Contains(t, err.Error(), "task of type")

	// With the kind matching, the wrong-user guard fires.
	_, err = v.CheckTask(pending.ID, annotator.ID, datastore.KindBbox)
	require.Error(t, err)
	assert.True(t, errors.IsConflict(err))
	assert.Contains(t, err.Error(), "another user")

	// The accepting user with the right kind passes.
	task, err := v.CheckTask(pending.ID, other.ID, datastore.KindBbox)
	require.NoError(t, err)
	assert.Equal(t, pending.ID, task.ID)
}

func TestCheckTask_Finished(t *testing.T) {
	t.Parallel()

	ds := createDatabase(t)
	v := New(ds)

	_, task := seedTask(t, ds, datastore.TypeBboxAnnotation)
	annotator := seedUser(t, ds, "annotator", "annotator@example.com")

	_, err := v.AcceptTask(task.ID, annotator.ID)
	require.NoError(t, err)
	_, err = v.FinishTask(task.ID, annotator.ID)
	require.NoError(t, err)

	_, err = v.CheckTask(task.ID, annotator.ID, datastore.KindBbox)
	require.Error(t, err)
	assert.True(t, errors.IsConflict(err))
	assert.Contains(t, err.Error(), "already been finished")
}

func TestCheckTasksForAnnotations(t *testing.T) {
	t.Parallel()

	ds := createDatabase(t)
	v := New(ds)

	creator, first := seedTask(t, ds, datastore.TypeBboxAnnotation)
	annotator := seedUser(t, ds, "annotator", "annotator@example.com")

	second := datastore.Task{
		TaskType:      datastore.TypeBboxVerification,
		ImageID:       first.ImageID,
		CreatedUserID: creator.ID,
	}
	require.NoError(t, ds.CreateTask(&second))

	_, err := v.AcceptTask(first.ID, annotator.ID)
	require.NoError(t, err)
	_, err = v.AcceptTask(second.ID, annotator.ID)
	require.NoError(t, err)

	// Duplicated task ids are deduplicated; both tasks pass the guard.
	err = v.CheckTasksForAnnotations(annotator.ID, []uint{first.ID, second.ID, first.ID}, datastore.KindBbox)
	require.NoError(t, err)

	// One bad task fails the whole batch.
	err = v.CheckTasksForAnnotations(annotator.ID, []uint{first.ID, 999}, datastore.KindBbox)
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
}
