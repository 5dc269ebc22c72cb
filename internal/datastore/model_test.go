package datastore

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTaskType_Valid(t *testing.T) {
	t.Parallel()

	valid := []TaskType{
		TypeBboxAnnotation, TypePolyAnnotation,
		TypeNNBboxAnnotation, TypeNNPolyAnnotation,
		TypeBboxVerification, TypePolyVerification,
	}
	for _, tt := range valid {
		assert.True(t, tt.Valid(), "expected %q to be valid", tt)
	}

	assert.False(t, TaskType("").Valid())
	assert.False(t, TaskType("segmentation").Valid())
}

func TestTaskType_Kind(t *testing.T) {
	t.Parallel()

	assert.Equal(t, KindBbox, TypeBboxAnnotation.Kind())
	assert.Equal(t, KindBbox, TypeNNBboxAnnotation.Kind())
	assert.Equal(t, KindBbox, TypeBboxVerification.Kind())
	assert.Equal(t, KindPoly, TypePolyAnnotation.Kind())
	assert.Equal(t, KindPoly, TypeNNPolyAnnotation.Kind())
	assert.Equal(t, KindPoly, TypePolyVerification.Kind())
	assert.Equal(t, AnnotationKind(""), TaskType("bogus").Kind())
}

func TestTaskStatus_Valid(t *testing.T) {
	t.Parallel()

	assert.True(t, TaskPending.Valid())
	assert.True(t, TaskAccepted.Valid())
	assert.True(t, TaskFinished.Valid())
	assert.False(t, TaskStatus("cancelled").Valid())
	assert.False(t, TaskStatus("").Valid())
}
