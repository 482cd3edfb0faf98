package main

import (
	"context"
	"fmt"

	"github.com/MKhiriev/go-wish-keeper/internal/config"
	"github.com/MKhiriev/go-wish-keeper/internal/handler"
	"github.com/MKhiriev/go-wish-keeper/internal/logger"
	"github.com/MKhiriev/go-wish-keeper/internal/server"
	"github.com/MKhiriev/go-wish-keeper/internal/service"
	"github.com/MKhiriev/go-wish-keeper/internal/store"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	printBuildInfo()

	log := logger.NewLogger("go-wish-server")
	cfg, err := config.GetStructuredConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("error getting configs")
	}

	log.Debug().Any("config", cfg).Msg("received configs")

	storages, err := store.NewStorages(context.Background(), cfg.Storage, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating storages")
	}
	defer func() {
		if closeErr := storages.Close(); closeErr != nil {
			log.Error().Err(closeErr).Msg("error closing storages")
		}
	}()

	services := service.NewServices(storages, *cfg, log)
	handlers := handler.NewHandler(services, log)

	srv, err := server.NewServer(handlers, cfg.Server, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating server")
	}

	srv.RunServer()
}

func printBuildInfo() {
	if buildVersion == "" {
		buildVersion = "N/A"
	}
	if buildDate == "" {
		buildDate = "N/A"
	}
	if buildCommit == "" {
		buildCommit = "N/A"
	}

	fmt.Printf("Build version: %s\n", buildVersion)
	fmt.Printf("Build date: %s\n", buildDate)
	fmt.Printf("Build commit: %s\n", buildCommit)
}
