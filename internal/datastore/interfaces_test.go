package datastore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wildtag/wildtag-go/internal/conf"
)

// createTestSettings creates minimal settings for database tests.
func createTestSettings(t *testing.T) *conf.Settings {
	t.Helper()
	return &conf.Settings{}
}

// createDatabase initializes a temporary SQLite database for testing purposes.
// It ensures the database connection is opened and handles potential errors.
func createDatabase(t *testing.T, settings *conf.Settings) Interface {
	t.Helper()
	tempDir := t.TempDir()
	settings.Output.SQLite.Enabled = true
	settings.Output.SQLite.Path = tempDir + "/test.db"

	dataStore := New(settings)
	require.NotNil(t, dataStore, "Expected a datastore for SQLite settings")

	// Attempt to open a database connection.
	require.NoError(t, dataStore.Open(), "Failed to open database")

	// Ensure the database is closed after the test completes.
	t.Cleanup(func() {
		assert.NoError(t, dataStore.Close(), "Failed to close datastore")
	})

	return dataStore
}

// seedUser creates a user row for tests that need one.
func seedUser(t *testing.T, ds Interface, username, email string) User {
	t.Helper()
	user := User{
		Username:       username,
		Email:          email,
		HashedPassword: "hashed-secret",
	}
	require.NoError(t, ds.CreateUser(&user), "Failed to create user")
	return user
}

// seedImage creates a species, user and image chain for tests that need one.
func seedImage(t *testing.T, ds Interface) (Species, User, Image) {
	t.Helper()

	species := Species{Name: "Eurasian Lynx"}
	require.NoError(t, ds.CreateSpecies(&species), "Failed to create species")

	user := seedUser(t, ds, "uploader", "uploader@example.com")

	image := Image{
		Path:           "Eurasian_Lynx/abc.jpg",
		SpeciesID:      species.ID,
		UploadedUserID: user.ID,
		UploadedAt:     time.Now().UTC(),
	}
	require.NoError(t, ds.CreateImage(&image), "Failed to create image")

	return species, user, image
}

// seedTask creates a pending task bound to a fresh species/user/image chain.
func seedTask(t *testing.T, ds Interface, taskType TaskType) (User, Image, Task) {
	t.Helper()

	_, user, image := seedImage(t, ds)

	task := Task{
		TaskType:      taskType,
		ImageID:       image.ID,
		CreatedUserID: user.ID,
	}
	require.NoError(t, ds.CreateTask(&task), "Failed to create task")
	return user, image, task
}

func TestNew_NoBackendEnabled(t *testing.T) {
	t.Parallel()

	settings := &conf.Settings{}
	assert.Nil(t, New(settings), "Expected nil datastore when no backend is enabled")
}
