// Package serve implements the command that runs the WildTag HTTP API server.
package serve

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	api "github.com/wildtag/wildtag-go/internal/api/v2"
	"github.com/wildtag/wildtag-go/internal/conf"
	"github.com/wildtag/wildtag-go/internal/datastore"
	"github.com/wildtag/wildtag-go/internal/imagestore"
	"github.com/wildtag/wildtag-go/internal/observability"
)

const shutdownTimeout = 10 * time.Second

// Command creates the serve sub-command.
func Command(settings *conf.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the annotation API server",
		Long:  "Start the HTTP API server, opening the configured database and image storage.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(settings)
		},
	}

	if err := setupFlags(cmd, settings); err != nil {
		fmt.Printf("error setting up flags: %v\n", err)
		os.Exit(1)
	}

	return cmd
}

// setupFlags configures flags specific to the serve command.
func setupFlags(cmd *cobra.Command, settings *conf.Settings) error {
	cmd.Flags().StringVar(&settings.WebServer.Port, "port", viper.GetString("webserver.port"), "Port to listen on")
	cmd.Flags().StringVar(&settings.Storage.Path, "storagepath", viper.GetString("storage.path"), "Root directory for uploaded images")

	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return fmt.Errorf("error binding flags: %v", err)
	}

	return nil
}

// runServer wires the datastore, image storage, metrics and API controller
// together and serves until interrupted.
func runServer(settings *conf.Settings) error {
	ds := datastore.New(settings)
	if ds == nil {
		return fmt.Errorf("no database backend enabled in configuration")
	}
	if err := ds.Open(); err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if err := ds.Close(); err != nil {
			log.Printf("Failed to close database: %v", err)
		}
	}()

	images, err := imagestore.New(settings)
	if err != nil {
		return fmt.Errorf("failed to initialize image storage: %w", err)
	}

	metrics, err := observability.NewMetrics()
	if err != nil {
		return fmt.Errorf("failed to initialize metrics: %w", err)
	}

	e := echo.New()
	e.HideBanner = true

	controller, err := api.New(e, ds, settings, images, log.Default(), metrics)
	if err != nil {
		return fmt.Errorf("failed to initialize API: %w", err)
	}

	errChan := make(chan error, 1)
	go func() {
		addr := ":" + settings.WebServer.Port
		log.Printf("Starting HTTP server on %s", addr)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	case sig := <-quit:
		log.Printf("Received signal %v, shutting down", sig)
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	controller.Shutdown()
	if err := e.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	return nil
}
