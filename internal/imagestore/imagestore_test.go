package imagestore

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wildtag/wildtag-go/internal/conf"
)

// createStore initializes a Store rooted in a temporary directory.
func createStore(t *testing.T) *Store {
	t.Helper()
	settings := &conf.Settings{}
	settings.Storage.Path = t.TempDir()
	settings.Storage.ChunkSize = 1024

	store, err := New(settings)
	require.NoError(t, err, "Failed to create image store")
	return store
}

func TestNew_EmptyPathFails(t *testing.T) {
	t.Parallel()

	settings := &conf.Settings{}
	_, err := New(settings)
	require.Error(t, err, "Empty storage path must be rejected")
}

func TestNew_CreatesMissingRoot(t *testing.T) {
	t.Parallel()

	settings := &conf.Settings{}
	settings.Storage.Path = filepath.Join(t.TempDir(), "nested", "storage")

	store, err := New(settings)
	require.NoError(t, err)

	info, err := os.Stat(store.Root())
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestSave_StoresUnderSpeciesDir(t *testing.T) {
	t.Parallel()

	store := createStore(t)

	content := strings.NewReader("fake image bytes")
	relPath, err := store.Save("Eurasian Lynx", "photo.jpg", content)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(relPath, "Eurasian_Lynx/"),
		"Stored path must live under the sanitized species directory, got %q", relPath)
	assert.True(t, strings.HasSuffix(relPath, ".jpg"),
		"Original extension must be preserved, got %q", relPath)

	full := filepath.Join(store.Root(), filepath.FromSlash(relPath))
	data, err := os.ReadFile(full)
	require.NoError(t, err)
	assert.Equal(t, "fake image bytes", string(data))
}

func TestSave_UniqueNamesForSameInput(t *testing.T) {
	t.Parallel()

	store := createStore(t)

	first, err := store.Save("Red Fox", "photo.jpg", strings.NewReader("one"))
	require.NoError(t, err)
	second, err := store.Save("Red Fox", "photo.jpg", strings.NewReader("two"))
	require.NoError(t, err)

	assert.NotEqual(t, first, second, "Identical uploads must get distinct names")
}

func TestSave_NoExtension(t *testing.T) {
	t.Parallel()

	store := createStore(t)

	relPath, err := store.Save("Gray Wolf", "photo", strings.NewReader("data"))
	require.NoError(t, err)
	assert.NotContains(t, filepath.Base(relPath), ".", "No extension in, no extension out")
}

func TestSave_UnsafeSpeciesName(t *testing.T) {
	t.Parallel()

	store := createStore(t)

	relPath, err := store.Save("..//weird/../name", "photo.jpg", strings.NewReader("data"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(relPath, "weirdname/"),
		"Unsafe characters must be stripped from the directory, got %q", relPath)

	// A name reduced to nothing is rejected.
	_, err = store.Save("///", "photo.jpg", strings.NewReader("data"))
	require.Error(t, err)
}

func TestResolve_RoundTrip(t *testing.T) {
	t.Parallel()

	store := createStore(t)

	relPath, err := store.Save("Brown Bear", "photo.png", strings.NewReader("data"))
	require.NoError(t, err)

	full, err := store.Resolve(relPath)
	require.NoError(t, err)

	data, err := os.ReadFile(full)
	require.NoError(t, err)
	assert.Equal(t, "data", string(data))
}

func TestResolve_RejectsTraversal(t *testing.T) {
	t.Parallel()

	store := createStore(t)

	for _, relPath := range []string{
		"../outside.jpg",
		"../../etc/passwd",
		"species/../../outside.jpg",
	} {
		_, err := store.Resolve(relPath)
		assert.Error(t, err, "Expected traversal rejection for %q", relPath)
	}
}

func TestSanitizeDirName(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"Eurasian Lynx":  "Eurasian_Lynx",
		"  Red Fox  ":    "Red_Fox",
		"snow-leopard_2": "snow-leopard_2",
		"a/b\\c":         "abc",
		"..":             "",
	}
	for in, want := range cases {
		assert.Equal(t, want, sanitizeDirName(in), "sanitizeDirName(%q)", in)
	}
}
