// internal/api/v2/bboxes.go
package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/wildtag/wildtag-go/internal/datastore"
)

// CreateBboxRequest is the payload for a single bounding box annotation.
type CreateBboxRequest struct {
	Bbox   string `json:"bbox"`
	TaskID uint   `json:"task_id"`
}

// UpdateBboxRequest carries the replacement geometry for an annotation.
type UpdateBboxRequest struct {
	Bbox string `json:"bbox"`
}

// initBboxRoutes registers all bounding box annotation endpoints
func (c *Controller) initBboxRoutes() {
	c.Group.POST("/bboxes", c.CreateBbox)
	c.Group.POST("/bboxes/batch", c.CreateBboxes)
	c.Group.GET("/bboxes", c.GetBboxes)
	c.Group.GET("/bboxes/:id", c.GetBbox)
	c.Group.PUT("/bboxes/:id", c.UpdateBbox)
	c.Group.DELETE("/bboxes/:id", c.DeleteBbox)
}

// CreateBbox stores one bounding box after the task guards pass for the
// annotating user.
func (c *Controller) CreateBbox(ctx echo.Context) error {
	userID, err := queryUserID(ctx)
	if err != nil {
		return c.HandleDomainError(ctx, err, "Invalid user_id")
	}

	var req CreateBboxRequest
	if err := ctx.Bind(&req); err != nil {
		return c.HandleError(ctx, err, "Invalid request payload", http.StatusUnprocessableEntity)
	}

	if _, err := c.Workflow.CheckUser(userID); err != nil {
		return c.HandleDomainError(ctx, err, "User not found")
	}
	if _, err := c.Workflow.CheckTask(req.TaskID, userID, datastore.KindBbox); err != nil {
		return c.HandleDomainError(ctx, err, "Task check failed")
	}

	bbox := datastore.BboxAnnotation{
		Bbox:   req.Bbox,
		TaskID: req.TaskID,
	}
	if err := c.DS.CreateBbox(&bbox); err != nil {
		return c.HandleError(ctx, err, "Failed to create bbox", http.StatusInternalServerError)
	}

	if c.metrics != nil {
		c.metrics.AnnotationsCreated.WithLabelValues("bbox").Inc()
	}

	return ctx.JSON(http.StatusOK, bbox)
}

// CreateBboxes stores a batch of bounding boxes in one transaction. Every
// distinct task referenced by the batch is guarded before any row is written.
func (c *Controller) CreateBboxes(ctx echo.Context) error {
	userID, err := queryUserID(ctx)
	if err != nil {
		return c.HandleDomainError(ctx, err, "Invalid user_id")
	}

	var reqs []CreateBboxRequest
	if err := ctx.Bind(&reqs); err != nil {
		return c.HandleError(ctx, err, "Invalid request payload", http.StatusUnprocessableEntity)
	}

	if _, err := c.Workflow.CheckUser(userID); err != nil {
		return c.HandleDomainError(ctx, err, "User not found")
	}
	taskIDs := make([]uint, 0, len(reqs))
	for _, req := range reqs {
		taskIDs = append(taskIDs, req.TaskID)
	}
	if err := c.Workflow.CheckTasksForAnnotations(userID, taskIDs, datastore.KindBbox); err != nil {
		return c.HandleDomainError(ctx, err, "Task check failed")
	}

	bboxes := make([]datastore.BboxAnnotation, 0, len(reqs))
	for _, req := range reqs {
		bboxes = append(bboxes, datastore.BboxAnnotation{
			Bbox:   req.Bbox,
			TaskID: req.TaskID,
		})
	}
	created, err := c.DS.CreateBboxes(bboxes)
	if err != nil {
		return c.HandleError(ctx, err, "Failed to create bboxes", http.StatusInternalServerError)
	}

	if c.metrics != nil {
		c.metrics.AnnotationsCreated.WithLabelValues("bbox").Add(float64(len(created)))
	}

	return ctx.JSON(http.StatusOK, created)
}

// GetBboxes lists bounding boxes with pagination, optionally filtered by
// task_id.
func (c *Controller) GetBboxes(ctx echo.Context) error {
	offset, limit := pagination(ctx)

	taskID, err := queryUint(ctx, "task_id")
	if err != nil {
		return c.HandleDomainError(ctx, err, "Invalid task_id")
	}

	bboxes, err := c.DS.GetBboxes(offset, limit, taskID)
	if err != nil {
		return c.HandleError(ctx, err, "Failed to get bboxes", http.StatusInternalServerError)
	}
	return ctx.JSON(http.StatusOK, bboxes)
}

// GetBbox returns a single bounding box by ID.
func (c *Controller) GetBbox(ctx echo.Context) error {
	id, err := pathID(ctx, "id")
	if err != nil {
		return c.HandleDomainError(ctx, err, "Invalid bbox ID")
	}

	bbox, err := c.DS.GetBbox(id)
	if err != nil {
		return c.HandleDomainError(ctx, err, "Bbox not found")
	}
	return ctx.JSON(http.StatusOK, bbox)
}

// UpdateBbox replaces the geometry of an existing annotation. The owning
// task's state is not re-checked here.
func (c *Controller) UpdateBbox(ctx echo.Context) error {
	id, err := pathID(ctx, "id")
	if err != nil {
		return c.HandleDomainError(ctx, err, "Invalid bbox ID")
	}
	userID, err := queryUserID(ctx)
	if err != nil {
		return c.HandleDomainError(ctx, err, "Invalid user_id")
	}

	var req UpdateBboxRequest
	if err := ctx.Bind(&req); err != nil {
		return c.HandleError(ctx, err, "Invalid request payload", http.StatusUnprocessableEntity)
	}

	if _, err := c.Workflow.CheckUser(userID); err != nil {
		return c.HandleDomainError(ctx, err, "User not found")
	}
	if _, err := c.DS.GetBbox(id); err != nil {
		return c.HandleDomainError(ctx, err, "Bbox not found")
	}

	bbox, err := c.DS.UpdateBbox(id, req.Bbox)
	if err != nil {
		return c.HandleError(ctx, err, "Failed to update bbox", http.StatusInternalServerError)
	}
	return ctx.JSON(http.StatusOK, bbox)
}

// DeleteBbox removes an annotation by ID. The acting user must exist; the
// owning task's state is not re-checked here.
func (c *Controller) DeleteBbox(ctx echo.Context) error {
	id, err := pathID(ctx, "id")
	if err != nil {
		return c.HandleDomainError(ctx, err, "Invalid bbox ID")
	}

	if _, err := c.DS.GetBbox(id); err != nil {
		return c.HandleDomainError(ctx, err, "Bbox not found")
	}

	userID, err := queryUserID(ctx)
	if err != nil {
		return c.HandleDomainError(ctx, err, "Invalid user_id")
	}
	if _, err := c.Workflow.CheckUser(userID); err != nil {
		return c.HandleDomainError(ctx, err, "User not found")
	}

	if err := c.DS.DeleteBbox(id); err != nil {
		return c.HandleError(ctx, err, "Failed to delete bbox", http.StatusInternalServerError)
	}
	return ctx.NoContent(http.StatusNoContent)
}
