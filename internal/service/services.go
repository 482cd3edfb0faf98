package service

import (
	"github.com/MKhiriev/go-wish-keeper/internal/config"
	"github.com/MKhiriev/go-wish-keeper/internal/logger"
	"github.com/MKhiriev/go-wish-keeper/internal/store"
)

// Services aggregates the server-side service layer consumed by the HTTP
// handlers.
type Services struct {
	AuthService          AuthService
	SyncAuthorityService SyncAuthorityService
}

func NewServices(storages *store.Storages, cfg config.StructuredConfig, logger *logger.Logger) *Services {
	return &Services{
		AuthService:          NewAuthService(storages.UserRepository, cfg.App, logger),
		SyncAuthorityService: NewSyncAuthorityService(storages.ServerDocumentRepository, logger),
	}
}
