package main

import (
	"os"

	"github.com/yigit/placementhub/internal/pkg/logger"
	"github.com/yigit/placementhub/internal/server"
)

// @title PlacementHub API
// @version 1.0
// @description Training and placement portal: students, companies, job postings, applications, interviews and verifiable certificates.

// @host localhost:8080
// @BasePath /api/v1
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Access token as "Bearer <token>"

func main() {
	if err := run(); err != nil {
		logger.Error().Err(err).Msg("PlacementHub API stopped with an error")
		os.Exit(1)
	}
	logger.Info().Msg("PlacementHub API exited cleanly")
}

func run() error {
	srv, err := server.NewServer()
	if err != nil {
		return err
	}
	return srv.Run()
}
