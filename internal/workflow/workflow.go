// Package workflow enforces the task acceptance and annotation rules on top
// of the datastore. Tasks move strictly forward through
// pending -> accepted -> finished; once accepted, only the accepting user may
// attach annotations or finish the task.
package workflow

import (
	"log/slog"
	"time"

	"github.com/wildtag/wildtag-go/internal/datastore"
	"github.com/wildtag/wildtag-go/internal/errors"
	"github.com/wildtag/wildtag-go/internal/logging"
)

// Validator wraps a datastore and applies the guard conditions before any
// task transition or annotation write.
type Validator struct {
	ds     datastore.Interface
	logger *slog.Logger
}

// New creates a Validator bound to the given datastore.
func New(ds datastore.Interface) *Validator {
	logger := logging.ForService("workflow")
	if logger == nil {
		logger = slog.Default().With("service", "workflow")
	}
	return &Validator{
		ds:     ds,
		logger: logger,
	}
}

// CheckUser loads a user by id, failing with a not-found error if absent.
// Used before any mutating or ownership-sensitive operation.
func (v *Validator) CheckUser(id uint) (datastore.User, error) {
	user, err := v.ds.GetUser(id)
	if err != nil {
		return datastore.User{}, err
	}
	return user, nil
}

// CheckTask returns the task when an annotation of the given kind may be
// attached to it by the given user. The check order is significant: existence,
// then pending, then finished, then kind/type mismatch, then accepting user.
func (v *Validator) CheckTask(taskID, userID uint, kind datastore.AnnotationKind) (datastore.Task, error) {
	task, err := v.ds.GetTask(taskID)
	if err != nil {
		return datastore.Task{}, err
	}

	if task.Status == datastore.TaskPending {
		return datastore.Task{}, errors.Newf("cannot add an annotation to a task that has not been accepted").
			Category(errors.CategoryConflict).
			Component("workflow").
			Context("task_id", taskID).
			Build()
	}

	if task.Status == datastore.TaskFinished {
		return datastore.Task{}, errors.Newf("cannot add an annotation to a task that has already been finished").
			Category(errors.CategoryConflict).
			Component("workflow").
			Context("task_id", taskID).
			Build()
	}

	if task.TaskType.Kind() != kind {
		return datastore.Task{}, errors.Newf("cannot add a %s annotation to a task of type %s", kind, task.TaskType).
			Category(errors.CategoryConflict).
			Component("workflow").
			Context("task_id", taskID).
			Context("task_type", string(task.TaskType)).
			Context("kind", string(kind)).
			Build()
	}

	if task.AcceptedUserID == nil || *task.AcceptedUserID != userID {
		return datastore.Task{}, errors.Newf("cannot add an annotation to a task accepted by another user").
			Category(errors.CategoryConflict).
			Component("workflow").
			Context("task_id", taskID).
			Context("user_id", userID).
			Build()
	}

	return task, nil
}

// AcceptTask performs the pending -> accepted transition. Any existing user
// may accept a pending task; re-accepting or accepting a finished task fails.
//
// Concurrent accepts on the same task are not serialized: the check and the
// write run in separate statements, so two simultaneous accepts race and the
// last committed write wins.
func (v *Validator) AcceptTask(taskID, userID uint) (datastore.Task, error) {
	if _, err := v.CheckUser(userID); err != nil {
		return datastore.Task{}, err
	}

	task, err := v.ds.GetTask(taskID)
	if err != nil {
		return datastore.Task{}, err
	}

	switch task.Status {
	case datastore.TaskAccepted:
		return datastore.Task{}, errors.Newf("task with this ID has already been accepted").
			Category(errors.CategoryConflict).
			Component("workflow").
			Context("task_id", taskID).
			Build()
	case datastore.TaskFinished:
		return datastore.Task{}, errors.Newf("task with this ID has already been finished").
			Category(errors.CategoryConflict).
			Component("workflow").
			Context("task_id", taskID).
			Build()
	}

	accepted, err := v.ds.AcceptTask(taskID, userID, time.Now().UTC())
	if err != nil {
		return datastore.Task{}, err
	}

	v.logger.Info("task accepted", "task_id", taskID, "user_id", userID)
	return accepted, nil
}

// FinishTask performs the accepted -> finished transition. Only the user who
// accepted the task may finish it; finished is terminal.
func (v *Validator) FinishTask(taskID, userID uint) (datastore.Task, error) {
	user, err := v.CheckUser(userID)
	if err != nil {
		return datastore.Task{}, err
	}

	task, err := v.ds.GetTask(taskID)
	if err != nil {
		return datastore.Task{}, err
	}

	switch task.Status {
	case datastore.TaskPending:
		return datastore.Task{}, errors.Newf("cannot finish a task that has not been accepted").
			Category(errors.CategoryConflict).
			Component("workflow").
			Context("task_id", taskID).
			Build()
	case datastore.TaskFinished:
		return datastore.Task{}, errors.Newf("cannot finish a task that has already been finished").
			Category(errors.CategoryConflict).
			Component("workflow").
			Context("task_id", taskID).
			Build()
	}

	if task.AcceptedUserID == nil || *task.AcceptedUserID != user.ID {
		return datastore.Task{}, errors.Newf("cannot finish a task that has been accepted by another user").
			Category(errors.CategoryUnauthorized).
			Component("workflow").
			Context("task_id", taskID).
			Context("user_id", userID).
			Build()
	}

	finished, err := v.ds.FinishTask(taskID, time.Now().UTC())
	if err != nil {
		return datastore.Task{}, err
	}

	v.logger.Info("task finished", "task_id", taskID, "user_id", userID)
	return finished, nil
}

// CheckTasksForAnnotations runs the full task guard for every distinct task
// referenced by a batch of annotations. A batch touching N distinct tasks
// performs N guard checks; the first failure aborts the whole batch before
// anything is written.
func (v *Validator) CheckTasksForAnnotations(userID uint, taskIDs []uint, kind datastore.AnnotationKind) error {
	seen := make(map[uint]struct{}, len(taskIDs))
	for _, taskID := range taskIDs {
		if _, ok := seen[taskID]; ok {
			continue
		}
		seen[taskID] = struct{}{}
		if _, err := v.CheckTask(taskID, userID, kind); err != nil {
			return err
		}
	}
	return nil
}
