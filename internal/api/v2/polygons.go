// internal/api/v2/polygons.go
package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/wildtag/wildtag-go/internal/datastore"
)

// CreatePolygonRequest is the payload for a single polygon annotation.
type CreatePolygonRequest struct {
	Polygon string `json:"polygon"`
	TaskID  uint   `json:"task_id"`
}

// UpdatePolygonRequest carries the replacement geometry for an annotation.
type UpdatePolygonRequest struct {
	Polygon string `json:"polygon"`
}

// initPolygonRoutes registers all polygon annotation endpoints
func (c *Controller) initPolygonRoutes() {
	c.Group.POST("/polygons", c.CreatePolygon)
	c.Group.POST("/polygons/batch", c.CreatePolygons)
	c.Group.GET("/polygons", c.GetPolygons)
	c.Group.GET("/polygons/:id", c.GetPolygon)
	c.Group.PUT("/polygons/:id", c.UpdatePolygon)
	c.Group.DELETE("/polygons/:id", c.DeletePolygon)
}

// CreatePolygon stores one polygon after the task guards pass for the
// annotating user.
func (c *Controller) CreatePolygon(ctx echo.Context) error {
	userID, err := queryUserID(ctx)
	if err != nil {
		return c.HandleDomainError(ctx, err, "Invalid user_id")
	}

	var req CreatePolygonRequest
	if err := ctx.Bind(&req); err != nil {
		return c.HandleError(ctx, err, "Invalid request payload", http.StatusUnprocessableEntity)
	}

	if _, err := c.Workflow.CheckUser(userID); err != nil {
		return c.HandleDomainError(ctx, err, "User not found")
	}
	if _, err := c.Workflow.CheckTask(req.TaskID, userID, datastore.KindPoly); err != nil {
		return c.HandleDomainError(ctx, err, "Task check failed")
	}

	polygon := datastore.PolyAnnotation{
		Polygon: req.Polygon,
		TaskID:  req.TaskID,
	}
	if err := c.DS.CreatePolygon(&polygon); err != nil {
		return c.HandleError(ctx, err, "Failed to create polygon", http.StatusInternalServerError)
	}

	if c.metrics != nil {
		c.metrics.AnnotationsCreated.WithLabelValues("poly").Inc()
	}

	return ctx.JSON(http.StatusOK, polygon)
}

// CreatePolygons stores a batch of polygons in one transaction. Every
// distinct task referenced by the batch is guarded before any row is written.
func (c *Controller) CreatePolygons(ctx echo.Context) error {
	userID, err := queryUserID(ctx)
	if err != nil {
		return c.HandleDomainError(ctx, err, "Invalid user_id")
	}

	var reqs []CreatePolygonRequest
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
	if err := c.Workflow.CheckTasksForAnnotations(userID, taskIDs, datastore.KindPoly); err != nil {
		return c.HandleDomainError(ctx, err, "Task check failed")
	}

	polygons := make([]datastore.PolyAnnotation, 0, len(reqs))
	for _, req := range reqs {
		polygons = append(polygons, datastore.PolyAnnotation{
			Polygon: req.Polygon,
			TaskID:  req.TaskID,
		})
	}
	created, err := c.DS.CreatePolygons(polygons)
	if err != nil {
		return c.HandleError(ctx, err, "Failed to create polygons", http.StatusInternalServerError)
	}

	if c.metrics != nil {
		c.metrics.AnnotationsCreated.WithLabelValues("poly").Add(float64(len(created)))
	}

	return ctx.JSON(http.StatusOK, created)
}

// GetPolygons lists polygons with pagination, optionally filtered by task_id.
func (c *Controller) GetPolygons(ctx echo.Context) error {
	offset, limit := pagination(ctx)

	taskID, err := queryUint(ctx, "task_id")
	if err != nil {
		return c.HandleDomainError(ctx, err, "Invalid task_id")
	}

	polygons, err := c.DS.GetPolygons(offset, limit, taskID)
	if err != nil {
		return c.HandleError(ctx, err, "Failed to get polygons", http.StatusInternalServerError)
	}
	return ctx.JSON(http.StatusOK, polygons)
}

// GetPolygon returns a single polygon by ID.
func (c *Controller) GetPolygon(ctx echo.Context) error {
	id, err := pathID(ctx, "id")
	if err != nil {
		return c.HandleDomainError(ctx, err, "Invalid polygon ID")
	}

	polygon, err := c.DS.GetPolygon(id)
	if err != nil {
		return c.HandleDomainError(ctx, err, "Polygon not found")
	}
	return ctx.JSON(http.StatusOK, polygon)
}

// UpdatePolygon replaces the geometry of an existing annotation. The owning
// task's state is not re-checked here.
func (c *Controller) UpdatePolygon(ctx echo.Context) error {
	id, err := pathID(ctx, "id")
	if err != nil {
		return c.HandleDomainError(ctx, err, "Invalid polygon ID")
	}
	userID, err := queryUserID(ctx)
	if err != nil {
		return c.HandleDomainError(ctx, err, "Invalid user_id")
	}

	var req UpdatePolygonRequest
	if err := ctx.Bind(&req); err != nil {
		return c.HandleError(ctx, err, "Invalid request payload", http.StatusUnprocessableEntity)
	}

	if _, err := c.Workflow.CheckUser(userID); err != nil {
		return c.HandleDomainError(ctx, err, "User not found")
	}
	if _, err := c.DS.GetPolygon(id); err != nil {
		return c.HandleDomainError(ctx, err, "Polygon not found")
	}

	polygon, err := c.DS.UpdatePolygon(id, req.Polygon)
	if err != nil {
		return c.HandleError(ctx, err, "Failed to update polygon", http.StatusInternalServerError)
	}
	return ctx.JSON(http.StatusOK, polygon)
}

// DeletePolygon removes an annotation by ID. The acting user must exist; the
// owning task's state is not re-checked here.
func (c *Controller) DeletePolygon(ctx echo.Context) error {
	id, err := pathID(ctx, "id")
	if err != nil {
		return c.HandleDomainError(ctx, err, "Invalid polygon ID")
	}

	if _, err := c.DS.GetPolygon(id); err != nil {
		return c.HandleDomainError(ctx, err, "Polygon not found")
	}

	userID, err := queryUserID(ctx)
	if err != nil {
		return c.HandleDomainError(ctx, err, "Invalid user_id")
	}
	if _, err := c.Workflow.CheckUser(userID); err != nil {
		return c.HandleDomainError(ctx, err, "User not found")
	}

	if err := c.DS.DeletePolygon(id); err != nil {
		return c.HandleError(ctx, err, "Failed to delete polygon", http.StatusInternalServerError)
	}
	return ctx.NoContent(http.StatusNoContent)
}
