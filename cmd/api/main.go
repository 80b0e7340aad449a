package main

import (
	"flag"
	"os"

	"github.com/yigit/studentrecords/internal/bootstrap"
	"github.com/yigit/studentrecords/internal/pkg/logger"
	"github.com/yigit/studentrecords/internal/server"
)

// @title Student Records API
// @version 1.0
// @description Student intake form, duplicate checks, search and record management

// @contact.name API Support

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:5000
// @BasePath /
// @schemes http https

func main() {
	configPath := flag.String("config", "", "path to the yaml config file (overrides "+bootstrap.ConfigPathEnv+")")
	flag.Parse()

	if *configPath != "" {
		if err := os.Setenv(bootstrap.ConfigPathEnv, *configPath); err != nil {
			logger.Error().Err(err).Msg("Failed to apply -config")
			os.Exit(1)
		}
	}

	srv, err := server.NewServer()
	if err != nil {
		logger.Error().Err(err).Msg("Failed to initialize server")
		os.Exit(1)
	}

	// Blocks until SIGINT or SIGTERM
	if err := srv.Run(); err != nil {
		logger.Error().Err(err).Msg("Server stopped with errors")
		os.Exit(1)
	}

	logger.Info().Msg("Server stopped")
}
