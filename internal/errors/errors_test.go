package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorBuilder(t *testing.T) {
	t.Parallel()

	err := Newf("task %d is gone", 42).
		Category(CategoryNotFound).
		Component("datastore").
		Context("task_id", 42).
		Build()

	assert.Equal(t, "task 42 is gone", err.Error())
	assert.Equal(t, CategoryNotFound, err.Category)
	assert.Equal(t, "datastore", err.Component)
	assert.Equal(t, 42, err.GetContext()["task_id"])
	assert.False(t, err.Timestamp.IsZero())
}

func TestBuild_Defaults(t *testing.T) {
	t.Parallel()

	err := Newf("plain failure").Build()
	assert.Equal(t, CategoryGeneric, err.Category)
	assert.Equal(t, ComponentUnknown, err.Component)
}

func TestCategoryHelpers(t *testing.T) {
	t.Parallel()

	notFound := Newf("missing").Category(CategoryNotFound).Build()
	conflict := Newf("clash").Category(CategoryConflict).Build()
	unauthorized := Newf("nope").Category(CategoryUnauthorized).Build()

	assert.True(t, IsNotFound(notFound))
	assert.False(t, IsNotFound(conflict))
	assert.True(t, IsConflict(conflict))
	assert.True(t, IsUnauthorized(unauthorized))
	assert.True(t, IsCategory(conflict, CategoryConflict))

	// Plain errors carry no category.
	assert.False(t, IsNotFound(NewStd("plain")))
	assert.False(t, IsConflict(nil))
}

func TestCategoryHelpers_Wrapped(t *testing.T) {
	t.Parallel()

	inner := Newf("missing row").Category(CategoryNotFound).Build()
	wrapped := fmt.Errorf("loading task: %w", inner)

	assert.True(t, IsNotFound(wrapped), "Category must survive fmt.Errorf wrapping")
}

func TestUnwrap(t *testing.T) {
	t.Parallel()

	cause := NewStd("root cause")
	err := Wrap(cause).Category(CategoryDatabase).Build()

	require.ErrorIs(t, err, cause)
	assert.Equal(t, cause, err.Unwrap())
}

func TestGetContext_ReturnsCopy(t *testing.T) {
	t.Parallel()

	err := Newf("x").Context("k", "v").Build()
	ctx := err.GetContext()
	ctx["k"] = "mutated"

	assert.Equal(t, "v", err.GetContext()["k"], "Context copies must not alias")
}
