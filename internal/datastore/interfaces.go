// interfaces.go: this code defines the interface for the database operations
package datastore

import (
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/wildtag/wildtag-go/internal/conf"
	"github.com/wildtag/wildtag-go/internal/errors"
)

// Interface abstracts the underlying database implementation and defines the
// operations the application performs against it.
type Interface interface {
	Open() error
	Close() error

	// users
	CreateUser(user *User) error
	GetUser(id uint) (User, error)
	GetUserByEmail(email string) (*User, error)
	GetUserByUsername(username string) (*User, error)
	GetUsers(offset, limit int) ([]User, error)
	GetUserImages(userID uint) ([]Image, error)
	GetUserCreatedTasks(userID uint) ([]Task, error)
	GetUserAcceptedTasks(userID uint) ([]Task, error)

	// species
	CreateSpecies(species *Species) error
	GetSpecies(id uint) (Species, error)
	GetSpeciesByName(name string) (*Species, error)
	ListSpecies(offset, limit int) ([]Species, error)

	// images
	CreateImage(image *Image) error
	GetImage(id uint) (Image, error)
	GetImages(offset, limit int, speciesID uint) ([]Image, error)

	// tasks
	CreateTask(task *Task) error
	GetTask(id uint) (Task, error)
	GetTasks(offset, limit int, taskType TaskType, status TaskStatus) ([]Task, error)
	GetTasksByImage(imageID uint) ([]Task, error)
	AcceptTask(id, userID uint, acceptedAt time.Time) (Task, error)
	FinishTask(id uint, finishedAt time.Time) (Task, error)

	// bbox annotations
	CreateBbox(bbox *BboxAnnotation) error
	CreateBboxes(bboxes []BboxAnnotation) ([]BboxAnnotation, error)
	GetBbox(id uint) (BboxAnnotation, error)
	GetBboxes(offset, limit int, taskID uint) ([]BboxAnnotation, error)
	UpdateBbox(id uint, bbox string) (BboxAnnotation, error)
	DeleteBbox(id uint) error

	// polygon annotations
	CreatePolygon(polygon *PolyAnnotation) error
	CreatePolygons(polygons []PolyAnnotation) ([]PolyAnnotation, error)
	GetPolygon(id uint) (PolyAnnotation, error)
	GetPolygons(offset, limit int, taskID uint) ([]PolyAnnotation, error)
	UpdatePolygon(id uint, polygon string) (PolyAnnotation, error)
	DeletePolygon(id uint) error
}

// DataStore implements Interface using a GORM database.
type DataStore struct {
	DB *gorm.DB // GORM database instance
}

// New creates a new datastore instance based on the provided configuration.
func New(settings *conf.Settings) Interface {
	switch {
	case settings.Output.SQLite.Enabled:
		return &SQLiteStore{
			Settings: settings,
		}
	case settings.Output.MySQL.Enabled:
		return &MySQLStore{
			Settings: settings,
		}
	default:
		return nil
	}
}

// performAutoMigration automates database migrations with error handling.
func performAutoMigration(db *gorm.DB, debug bool, dbType, connectionInfo string) error {
	if err := db.AutoMigrate(&Species{}, &User{}, &Image{}, &Task{}, &BboxAnnotation{}, &PolyAnnotation{}); err != nil {
		return errors.New(fmt.Errorf("failed to auto-migrate %s database: %w", dbType, err)).
			Category(errors.CategoryDatabase).
			Component("datastore").
			Build()
	}

	if debug {
		log.Printf("%s database connection initialized: %s", dbType, connectionInfo)
	}

	return nil
}

// createGormLogger configures and returns a new GORM logger instance.
func createGormLogger() logger.Interface {
	return logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold: 200 * time.Millisecond,
			LogLevel:      logger.Warn,
			Colorful:      true,
		},
	)
}
