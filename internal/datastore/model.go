// model.go this code defines the data model for the application
package datastore

import "time"

// TaskStatus represents the lifecycle state of an annotation task.
// Transitions are strictly forward: pending -> accepted -> finished.
type TaskStatus string

const (
	TaskPending  TaskStatus = "pending"
	TaskAccepted TaskStatus = "accepted"
	TaskFinished TaskStatus = "finished"
)

// Valid reports whether the status is one of the known lifecycle states.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskPending, TaskAccepted, TaskFinished:
		return true
	default:
		return false
	}
}

// AnnotationKind identifies the annotation family a task accepts.
type AnnotationKind string

const (
	KindBbox AnnotationKind = "bbox"
	KindPoly AnnotationKind = "poly"
)

// TaskType identifies the kind of work a task asks for. Fixed at creation.
type TaskType string

const (
	TypeBboxAnnotation   TaskType = "bbox_annotation"
	TypePolyAnnotation   TaskType = "poly_annotation"
	TypeNNBboxAnnotation TaskType = "nn_bbox_annotation"
	TypeNNPolyAnnotation TaskType = "nn_poly_annotation"
	TypeBboxVerification TaskType = "bbox_verification"
	TypePolyVerification TaskType = "poly_verification"
)

// Valid reports whether the task type is one of the known types.
func (t TaskType) Valid() bool {
	switch t {
	case TypeBboxAnnotation, TypePolyAnnotation,
		TypeNNBboxAnnotation, TypeNNPolyAnnotation,
		TypeBboxVerification, TypePolyVerification:
		return true
	default:
		return false
	}
}

// Kind maps a task type to the annotation family it accepts.
func (t TaskType) Kind() AnnotationKind {
	switch t {
	case TypeBboxAnnotation, TypeNNBboxAnnotation, TypeBboxVerification:
		return KindBbox
	case TypePolyAnnotation, TypeNNPolyAnnotation, TypePolyVerification:
		return KindPoly
	default:
		return ""
	}
}

// Species is a classification tag attached to uploaded images. The species
// name doubles as the storage sub-directory key for uploads.
type Species struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"uniqueIndex;not null" json:"name"`
}

// User owns uploaded images, created tasks and accepted tasks.
type User struct {
	ID             uint   `gorm:"primaryKey" json:"id"`
	Username       string `gorm:"index;not null" json:"username"`
	Email          string `gorm:"uniqueIndex;not null" json:"email"`
	HashedPassword string `gorm:"not null" json:"-"`
}

// Image is an uploaded picture. Path is relative to the storage root.
type Image struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	Path           string    `gorm:"uniqueIndex;not null" json:"path"`
	SpeciesID      uint      `gorm:"index;not null" json:"species_id"`
	UploadedUserID uint      `gorm:"index;not null" json:"uploaded_user_id"`
	UploadedAt     time.Time `gorm:"not null" json:"uploaded_at"`
}

// Task is a unit of annotation work bound to one image and one annotation type.
// AcceptedUserID is set iff status is accepted or finished; FinishedAt is set
// iff status is finished.
type Task struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	TaskType       TaskType   `gorm:"type:varchar(32);index;not null" json:"task_type"`
	ImageID        uint       `gorm:"index;not null" json:"image_id"`
	Status         TaskStatus `gorm:"type:varchar(16);index;not null;default:pending" json:"status"`
	CreatedUserID  uint       `gorm:"index;not null" json:"created_user_id"`
	CreatedAt      time.Time  `gorm:"not null" json:"created_at"`
	AcceptedUserID *uint      `gorm:"index" json:"accepted_user_id,omitempty"`
	AcceptedAt     *time.Time `json:"accepted_at,omitempty"`
	FinishedAt     *time.Time `json:"finished_at,omitempty"`
}

// BboxAnnotation is a bounding box attached to a task, coordinates kept as
// the string the client submitted, e.g. "(12.3, 34.3), (23, 56.3)".
type BboxAnnotation struct {
	ID     uint   `gorm:"primaryKey" json:"id"`
	Bbox   string `gorm:"not null" json:"bbox"`
	TaskID uint   `gorm:"index;not null" json:"task_id"`
}

// PolyAnnotation is a polygon attached to a task, coordinates kept as the
// string the client submitted.
type PolyAnnotation struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	Polygon string `gorm:"not null" json:"polygon"`
	TaskID  uint   `gorm:"index;not null" json:"task_id"`
}
