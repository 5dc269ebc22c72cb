// internal/api/v2/users.go
package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/wildtag/wildtag-go/internal/datastore"
	"github.com/wildtag/wildtag-go/internal/errors"
)

// CreateUserRequest is the payload for user creation. Passwords arrive
// pre-hashed; this service does not hash them.
type CreateUserRequest struct {
	Username       string `json:"username"`
	Email          string `json:"email"`
	HashedPassword string `json:"hashed_password"`
}

// UserDetail is a user together with its related collections, fetched by
// explicit queries rather than ORM traversal.
type UserDetail struct {
	datastore.User
	UploadedImages []datastore.Image `json:"uploaded_images"`
	CreatedTasks   []datastore.Task  `json:"created_tasks"`
	AcceptedTasks  []datastore.Task  `json:"accepted_tasks"`
}

// initUserRoutes registers all user-related API endpoints
func (c *Controller) initUserRoutes() {
	c.Group.POST("/users", c.CreateUser)
	c.Group.GET("/users", c.GetUsers)
	c.Group.GET("/users/:id", c.GetUser)
}

// CreateUser creates a new user, rejecting duplicate usernames and emails.
func (c *Controller) CreateUser(ctx echo.Context) error {
	var req CreateUserRequest
	if err := ctx.Bind(&req); err != nil {
		return c.HandleError(ctx, err, "Invalid request payload", http.StatusUnprocessableEntity)
	}
	if req.Username == "" || req.Email == "" || req.HashedPassword == "" {
		return c.HandleError(ctx, errors.ValidationError("username, email and hashed_password are required"),
			"Missing required fields", http.StatusUnprocessableEntity)
	}

	byEmail, err := c.DS.GetUserByEmail(req.Email)
	if err != nil {
		return c.HandleError(ctx, err, "Failed to check email", http.StatusInternalServerError)
	}
	byUsername, err := c.DS.GetUserByUsername(req.Username)
	if err != nil {
		return c.HandleError(ctx, err, "Failed to check username", http.StatusInternalServerError)
	}
	if byEmail != nil || byUsername != nil {
		return c.HandleError(ctx, errors.Newf("user with this username or email already exists").
			Category(errors.CategoryConflict).
			Component("api").
			Build(), "User already exists", http.StatusBadRequest)
	}

	user := datastore.User{
		Username:       req.Username,
		Email:          req.Email,
		HashedPassword: req.HashedPassword,
	}
	if err := c.DS.CreateUser(&user); err != nil {
		return c.HandleError(ctx, err, "Failed to create user", http.StatusInternalServerError)
	}

	return ctx.JSON(http.StatusOK, user)
}

// GetUsers lists users with pagination.
func (c *Controller) GetUsers(ctx echo.Context) error {
	offset, limit := pagination(ctx)
	users, err := c.DS.GetUsers(offset, limit)
	if err != nil {
		return c.HandleError(ctx, err, "Failed to get users", http.StatusInternalServerError)
	}
	return ctx.JSON(http.StatusOK, users)
}

// GetUser returns a user together with its uploaded images, created tasks
// and accepted tasks.
func (c *Controller) GetUser(ctx echo.Context) error {
	id, err := pathID(ctx, "id")
	if err != nil {
		return c.HandleDomainError(ctx, err, "Invalid user ID")
	}

	user, err := c.DS.GetUser(id)
	if err != nil {
		return c.HandleDomainError(ctx, err, "User not found")
	}

	images, err := c.DS.GetUserImages(id)
	if err != nil {
		return c.HandleError(ctx, err, "Failed to get user images", http.StatusInternalServerError)
	}
	created, err := c.DS.GetUserCreatedTasks(id)
	if err != nil {
		return c.HandleError(ctx, err, "Failed to get created tasks", http.StatusInternalServerError)
	}
	accepted, err := c.DS.GetUserAcceptedTasks(id)
	if err != nil {
		return c.HandleError(ctx, err, "Failed to get accepted tasks", http.StatusInternalServerError)
	}

	detail := UserDetail{
		User:           user,
		UploadedImages: images,
		CreatedTasks:   created,
		AcceptedTasks:  accepted,
	}
	return ctx.JSON(http.StatusOK, detail)
}
