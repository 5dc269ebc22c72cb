// tasks.go: task persistence operations
package datastore

import (
	"fmt"
	"time"

	"github.com/wildtag/wildtag-go/internal/errors"
)

// CreateTask inserts a new task row. Status defaults to pending and
// CreatedAt is stamped here if the caller left it zero.
func (ds *DataStore) CreateTask(task *Task) error {
	if task.Status == "" {
		task.Status = TaskPending
	}
	if task.CreatedAt.IsZero() {
		task.CreatedAt = time.Now().UTC()
	}
	if err := ds.DB.Create(task).Error; err != nil {
		return errors.Wrap(err).
			Category(errors.CategoryDatabase).
			Component("datastore").
			Context("operation", "create_task").
			Build()
	}
	return nil
}

// GetTask retrieves a task by its ID.
func (ds *DataStore) GetTask(id uint) (Task, error) {
	var task Task
	if err := ds.DB.First(&task, id).Error; err != nil {
		return Task{}, convertError(err, "Task", id)
	}
	return task, nil
}

// GetTasks retrieves tasks with pagination, optionally filtered by type
// and status. Empty values disable the corresponding filter.
func (ds *DataStore) GetTasks(offset, limit int, taskType TaskType, status TaskStatus) ([]Task, error) {
	query := ds.DB.Order("id ASC").Offset(offset).Limit(limit)
	if taskType != "" {
		query = query.Where("task_type = ?", taskType)
	}
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var tasks []Task
	if err := query.Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("error getting tasks: %w", err)
	}
	return tasks, nil
}

// GetTasksByImage retrieves all tasks bound to an image.
func (ds *DataStore) GetTasksByImage(imageID uint) ([]Task, error) {
	var tasks []Task
	if err := ds.DB.Where("image_id = ?", imageID).Order("id ASC").Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("error getting tasks for image %d: %w", imageID, err)
	}
	return tasks, nil
}

// AcceptTask records the accept transition: accepting user, timestamp and
// status in one update, then returns the refreshed row. Guard conditions are
// the caller's responsibility; concurrent accepts are not serialized here.
func (ds *DataStore) AcceptTask(id, userID uint, acceptedAt time.Time) (Task, error) {
	updates := map[string]any{
		"accepted_user_id": userID,
		"accepted_at":      acceptedAt,
		"status":           TaskAccepted,
	}
	if err := ds.DB.Model(&Task{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		return Task{}, fmt.Errorf("accepting task %d: %w", id, err)
	}
	return ds.GetTask(id)
}

// FinishTask records the finish transition and returns the refreshed row.
// Guard conditions are the caller's responsibility.
func (ds *DataStore) FinishTask(id uint, finishedAt time.Time) (Task, error) {
	updates := map[string]any{
		"finished_at": finishedAt,
		"status":      TaskFinished,
	}
	if err := ds.DB.Model(&Task{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		return Task{}, fmt.Errorf("finishing task %d: %w", id, err)
	}
	return ds.GetTask(id)
}
