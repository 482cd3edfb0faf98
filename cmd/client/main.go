package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/MKhiriev/go-wish-keeper/internal/adapter"
	"github.com/MKhiriev/go-wish-keeper/internal/client"
	"github.com/MKhiriev/go-wish-keeper/internal/config"
	"github.com/MKhiriev/go-wish-keeper/internal/logger"
	"github.com/MKhiriev/go-wish-keeper/models"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	printBuildInfo()

	log := logger.NewFileLogger("go-wish-client", "go-wish-client.log")
	cfg, err := config.GetClientConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("error getting configs")
	}

	log.Debug().Any("config", cfg).Msg("received configs")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)
	defer stop()

	app, err := client.NewApp(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating client app")
	}
	defer func() {
		if closeErr := app.Close(); closeErr != nil {
			log.Error().Err(closeErr).Msg("error closing client app")
		}
	}()

	user := models.User{
		Principal: os.Getenv("WISH_PRINCIPAL"),
		Password:  os.Getenv("WISH_PASSWORD"),
	}
	if err = app.Login(ctx, user); err != nil {
		if !errors.Is(err, adapter.ErrUnauthorized) {
			log.Fatal().Err(err).Msg("error logging in")
		}
		if err = app.Register(ctx, user); err != nil {
			log.Fatal().Err(err).Msg("error registering")
		}
	}

	log.Info().Str("principal", user.Principal).Msg("client running, waiting for shutdown signal")
	<-ctx.Done()
	log.Info().Msg("shutdown signal received")
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
