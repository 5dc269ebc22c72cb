// internal/api/v2/tasks.go
package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/wildtag/wildtag-go/internal/datastore"
	"github.com/wildtag/wildtag-go/internal/errors"
)

// CreateTaskRequest is the payload for task creation.
type CreateTaskRequest struct {
	CreatedUserID uint               `json:"created_user_id"`
	TaskType      datastore.TaskType `json:"task_type"`
	ImageID       uint               `json:"image_id"`
}

// TaskDetail is a task together with its annotation collections, fetched by
// explicit queries rather than ORM traversal.
type TaskDetail struct {
	datastore.Task
	Bboxes   []datastore.BboxAnnotation `json:"bboxes"`
	Polygons []datastore.PolyAnnotation `json:"polygons"`
}

// initTaskRoutes registers all task-related API endpoints
func (c *Controller) initTaskRoutes() {
	c.Group.POST("/tasks", c.CreateTask)
	c.Group.GET("/tasks", c.GetTasks)
	c.Group.GET("/tasks/:id", c.GetTask)
	c.Group.PUT("/tasks/:id/accept", c.AcceptTask)
	c.Group.PUT("/tasks/:id/finish", c.FinishTask)
}

// CreateTask creates a pending task bound to an existing image and creator.
func (c *Controller) CreateTask(ctx echo.Context) error {
	var req CreateTaskRequest
	if err := ctx.Bind(&req); err != nil {
		return c.HandleError(ctx, err, "Invalid request payload", http.StatusUnprocessableEntity)
	}
	if !req.TaskType.Valid() {
		return c.HandleError(ctx, errors.Newf("unknown task type: %q", req.TaskType).
			Category(errors.CategoryValidation).
			Component("api").
			Build(), "Unknown task type", http.StatusUnprocessableEntity)
	}

	if _, err := c.DS.GetUser(req.CreatedUserID); err != nil {
		return c.HandleDomainError(ctx, err, "User not found")
	}
	if _, err := c.DS.GetImage(req.ImageID); err != nil {
		return c.HandleDomainError(ctx, err, "Image not found")
	}

	task := datastore.Task{
		TaskType:      req.TaskType,
		ImageID:       req.ImageID,
		CreatedUserID: req.CreatedUserID,
		Status:        datastore.TaskPending,
	}
	if err := c.DS.CreateTask(&task); err != nil {
		return c.HandleError(ctx, err, "Failed to create task", http.StatusInternalServerError)
	}

	if c.metrics != nil {
		c.metrics.TaskTransitions.WithLabelValues("created").Inc()
	}

	return ctx.JSON(http.StatusOK, task)
}

// GetTasks lists tasks with pagination, optionally filtered by task_type
// and task_status.
func (c *Controller) GetTasks(ctx echo.Context) error {
	offset, limit := pagination(ctx)

	taskType := datastore.TaskType(ctx.QueryParam("task_type"))
	if taskType != "" && !taskType.Valid() {
		return c.HandleError(ctx, errors.Newf("unknown task type: %q", taskType).
			Category(errors.CategoryValidation).
			Component("api").
			Build(), "Unknown task type", http.StatusUnprocessableEntity)
	}
	status := datastore.TaskStatus(ctx.QueryParam("task_status"))
	if status != "" && !status.Valid() {
		return c.HandleError(ctx, errors.Newf("unknown task status: %q", status).
			Category(errors.CategoryValidation).
			Component("api").
			Build(), "Unknown task status", http.StatusUnprocessableEntity)
	}

	tasks, err := c.DS.GetTasks(offset, limit, taskType, status)
	if err != nil {
		return c.HandleError(ctx, err, "Failed to get tasks", http.StatusInternalServerError)
	}
	return ctx.JSON(http.StatusOK, tasks)
}

// GetTask returns a task together with its bbox and polygon annotations.
func (c *Controller) GetTask(ctx echo.Context) error {
	id, err := pathID(ctx, "id")
	if err != nil {
		return c.HandleDomainError(ctx, err, "Invalid task ID")
	}

	task, err := c.DS.GetTask(id)
	if err != nil {
		return c.HandleDomainError(ctx, err, "Task not found")
	}

	// Task detail carries the complete annotation set, not a page.
	bboxes, err := c.DS.GetBboxes(0, 0, id)
	if err != nil {
		return c.HandleError(ctx, err, "Failed to get bboxes", http.StatusInternalServerError)
	}
	polygons, err := c.DS.GetPolygons(0, 0, id)
	if err != nil {
		return c.HandleError(ctx, err, "Failed to get polygons", http.StatusInternalServerError)
	}

	detail := TaskDetail{
		Task:     task,
		Bboxes:   bboxes,
		Polygons: polygons,
	}
	return ctx.JSON(http.StatusOK, detail)
}

// AcceptTask performs the pending -> accepted transition for the user given
// in the user_id query parameter.
func (c *Controller) AcceptTask(ctx echo.Context) error {
	id, err := pathID(ctx, "id")
	if err != nil {
		return c.HandleDomainError(ctx, err, "Invalid task ID")
	}
	userID, err := queryUserID(ctx)
	if err != nil {
		return c.HandleDomainError(ctx, err, "Invalid user_id")
	}

	task, err := c.Workflow.AcceptTask(id, userID)
	if err != nil {
		return c.HandleDomainError(ctx, err, "Failed to accept task")
	}

	if c.metrics != nil {
		c.metrics.TaskTransitions.WithLabelValues("accepted").Inc()
	}

	return ctx.JSON(http.StatusOK, task)
}

// FinishTask performs the accepted -> finished transition for the user given
// in the user_id query parameter.
func (c *Controller) FinishTask(ctx echo.Context) error {
	id, err := pathID(ctx, "id")
	if err != nil {
		return c.HandleDomainError(ctx, err, "Invalid task ID")
	}
	userID, err := queryUserID(ctx)
	if err != nil {
		return c.HandleDomainError(ctx, err, "Invalid user_id")
	}

	task, err := c.Workflow.FinishTask(id, userID)
	if err != nil {
		return c.HandleDomainError(ctx, err, "Failed to finish task")
	}

	if c.metrics != nil {
		c.metrics.TaskTransitions.WithLabelValues("finished").Inc()
	}

	return ctx.JSON(http.StatusOK, task)
}
