// users.go: user persistence operations
package datastore

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/wildtag/wildtag-go/internal/errors"
)

// CreateUser inserts a new user row.
func (ds *DataStore) CreateUser(user *User) error {
	if err := ds.DB.Create(user).Error; err != nil {
		return errors.Wrap(err).
			Category(errors.CategoryDatabase).
			Component("datastore").
			Context("operation", "create_user").
			Build()
	}
	return nil
}

// GetUser retrieves a user by its ID.
func (ds *DataStore) GetUser(id uint) (User, error) {
	var user User
	if err := ds.DB.First(&user, id).Error; err != nil {
		return User{}, convertError(err, "User", id)
	}
	return user, nil
}

// GetUserByEmail retrieves a user by email. Returns nil without error when
// no user carries the email, so callers can use it for duplicate checks.
func (ds *DataStore) GetUserByEmail(email string) (*User, error) {
	var user User
	err := ds.DB.Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting user by email: %w", err)
	}
	return &user, nil
}

// GetUserByUsername retrieves a user by username. Returns nil without error
// when absent.
func (ds *DataStore) GetUserByUsername(username string) (*User, error) {
	var user User
	err := ds.DB.Where("username = ?", username).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting user by username: %w", err)
	}
	return &user, nil
}

// GetUsers retrieves users with pagination.
func (ds *DataStore) GetUsers(offset, limit int) ([]User, error) {
	var users []User
	if err := ds.DB.Order("id ASC").Offset(offset).Limit(limit).Find(&users).Error; err != nil {
		return nil, fmt.Errorf("error getting users: %w", err)
	}
	return users, nil
}

// GetUserImages retrieves all images uploaded by a user.
func (ds *DataStore) GetUserImages(userID uint) ([]Image, error) {
	var images []Image
	if err := ds.DB.Where("uploaded_user_id = ?", userID).Order("id ASC").Find(&images).Error; err != nil {
		return nil, fmt.Errorf("error getting images for user %d: %w", userID, err)
	}
	return images, nil
}

// GetUserCreatedTasks retrieves all tasks created by a user.
func (ds *DataStore) GetUserCreatedTasks(userID uint) ([]Task, error) {
	var tasks []Task
	if err := ds.DB.Where("created_user_id = ?", userID).Order("id ASC").Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("error getting created tasks for user %d: %w", userID, err)
	}
	return tasks, nil
}

// GetUserAcceptedTasks retrieves all tasks accepted by a user.
func (ds *DataStore) GetUserAcceptedTasks(userID uint) ([]Task, error) {
	var tasks []Task
	if err := ds.DB.Where("accepted_user_id = ?", userID).Order("id ASC").Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("error getting accepted tasks for user %d: %w", userID, err)
	}
	return tasks, nil
}
