// config.go: This file contains the configuration for the WildTag application. It defines the settings struct and functions to load the settings.
package conf

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/spf13/viper"

	"github.com/wildtag/wildtag-go/internal/errors"
)

// LogConfig contains settings for the application log file.
type LogConfig struct {
	Enabled bool   // true to enable file logging
	Path    string // path to log file
	MaxSize int64  // max log file size in bytes before rotation
}

// MainSettings contains general application settings.
type MainSettings struct {
	Name string    // name of the node/instance
	Log  LogConfig // main log settings
}

// WebServerSettings contains settings for the HTTP API server.
type WebServerSettings struct {
	Enabled bool   // true to enable the web server
	Port    string // port to listen on
	Debug   bool   // true to enable debug logging of API requests
}

// SQLiteSettings contains SQLite output settings.
type SQLiteSettings struct {
	Enabled bool   // true to use SQLite
	Path    string // path to the SQLite database file
}

// MySQLSettings contains MySQL output settings.
type MySQLSettings struct {
	Enabled  bool   // true to use MySQL
	Username string // MySQL username
	Password string // MySQL password
	Database string // MySQL database name
	Host     string // MySQL server host
	Port     string // MySQL server port
}

// OutputSettings groups the supported database backends.
type OutputSettings struct {
	SQLite SQLiteSettings
	MySQL  MySQLSettings
}

// StorageSettings contains settings for uploaded image storage.
type StorageSettings struct {
	Path      string // root directory for uploaded images
	ChunkSize int    // chunk size in bytes used when streaming uploads to disk
}

// Settings contains all application settings.
type Settings struct {
	Debug bool // true to enable debug behavior

	Main      MainSettings
	WebServer WebServerSettings
	Output    OutputSettings
	Storage   StorageSettings

	Version   string // runtime value, not configurable
	BuildDate string // runtime value, not configurable
}

var (
	settingsInstance *Settings
	once             sync.Once
	settingsMutex    sync.RWMutex
)

// Load reads the configuration into the global Settings instance.
func Load() (*Settings, error) {
	settingsMutex.Lock()
	defer settingsMutex.Unlock()

	settings := &Settings{}

	if err := initViper(); err != nil {
		return nil, fmt.Errorf("error initializing viper: %w", err)
	}

	if err := viper.Unmarshal(settings); err != nil {
		return nil, errors.New(fmt.Errorf("error unmarshaling config into struct: %w", err)).
			Category(errors.CategoryConfiguration).
			Component("conf").
			Build()
	}

	settingsInstance = settings
	return settingsInstance, nil
}

// initViper sets up the viper instance: config paths, defaults, and reads the config file.
func initViper() error {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	configPaths, err := GetDefaultConfigPaths()
	if err != nil {
		return fmt.Errorf("error getting default config paths: %w", err)
	}
	for _, path := range configPaths {
		viper.AddConfigPath(path)
	}

	setDefaultConfig()

	if err := viper.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return fmt.Errorf("fatal error reading config file: %w", err)
		}
		// No config file found, defaults apply. Write one for the user.
		if err := createDefaultConfig(configPaths[0]); err != nil {
			log.Printf("warning: unable to write default config file: %v", err)
		}
	}

	return nil
}

// createDefaultConfig writes the current (default) configuration to disk.
func createDefaultConfig(configDir string) error {
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}
	configPath := filepath.Join(configDir, "config.yaml")
	if _, err := os.Stat(configPath); err == nil {
		return nil // already present
	}
	return viper.SafeWriteConfigAs(configPath)
}

// Setting returns the global Settings instance, loading it on first use.
func Setting() *Settings {
	once.Do(func() {
		if settingsInstance == nil {
			if _, err := Load(); err != nil {
				log.Fatalf("Error loading settings: %v", err)
			}
		}
	})

	settingsMutex.RLock()
	defer settingsMutex.RUnlock()
	return settingsInstance
}

// GetDefaultConfigPaths returns the list of directories searched for config.yaml.
func GetDefaultConfigPaths() ([]string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("error fetching user home directory: %w", err)
	}

	return []string{
		filepath.Join(homeDir, ".config", "wildtag"),
		".",
	}, nil
}

// GetBasePath resolves a possibly relative directory against the working
// directory and ensures it exists.
func GetBasePath(path string) string {
	if !filepath.IsAbs(path) {
		workDir, err := os.Getwd()
		if err == nil {
			path = filepath.Join(workDir, path)
		}
	}
	if err := os.MkdirAll(path, 0o755); err != nil {
		log.Printf("warning: failed to create directory %s: %v", path, err)
	}
	return path
}
