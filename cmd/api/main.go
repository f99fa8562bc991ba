package main

import (
	"os"

	"github.com/eduhealth/schoolhealth/internal/pkg/logger"
	"github.com/eduhealth/schoolhealth/internal/server"
)

// @title School Health API
// @version 1.0
// @description API for the school health office: students, health records, medicine deliveries, examination and vaccination campaigns, parent notifications and feedback.

// @contact.name API Support
// @contact.email support@school.edu

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api/v1
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT token for authorization, as "Bearer <token>"

func main() {
	srv, err := server.NewServer()
	if err != nil {
		logger.Error().Err(err).Msg("Failed to initialize server")
		os.Exit(1)
	}

	// Blocks until a shutdown signal
	if err := srv.Run(); err != nil {
		logger.Error().Err(err).Msg("Server execution failed or shutdown encountered errors")
		os.Exit(1)
	}

	logger.Info().Msg("Application finished gracefully.")
}
