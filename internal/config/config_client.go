package config

import (
	"fmt"
	"time"
)

// ClientAdapter holds network settings used by the client transport layer.
type ClientAdapter struct {
	// BaseURL is the root URL of the sync server.
	BaseURL string
	// RequestTimeout bounds every single outbound request attempt.
	RequestTimeout time.Duration
}

// ClientStorage groups client storage backend settings.
type ClientStorage struct {
	// Path is the SQLite document store file path.
	Path string
}

// ClientSync contains sync-engine timing settings for the client.
type ClientSync struct {
	// Interval defines how often the background sync worker triggers a cycle.
	Interval time.Duration
	// DebounceWindow is the coalescing window for trigger calls.
	DebounceWindow time.Duration
}

// ClientConfig is the top-level client configuration assembled from
// [StructuredConfig].
type ClientConfig struct {
	// Adapter contains client transport address and timeout.
	Adapter ClientAdapter
	// Storage contains local document store settings.
	Storage ClientStorage
	// Sync contains sync-engine timing settings.
	Sync ClientSync
}

// GetClientConfig builds and validates a client-specific config view from the
// merged structured configuration.
//
// It loads the base config via [GetStructuredConfig], maps only the fields
// relevant to the client runtime, and validates the resulting [ClientConfig].
func GetClientConfig() (*ClientConfig, error) {
	cfg, err := GetStructuredConfig()
	if err != nil {
		return nil, fmt.Errorf("error get structured config: %w", err)
	}

	clientCfg := &ClientConfig{
		Adapter: ClientAdapter{
			BaseURL:        cfg.Adapter.BaseURL,
			RequestTimeout: cfg.Adapter.RequestTimeout,
		},
		Storage: ClientStorage{
			Path: cfg.Storage.Local.Path,
		},
		Sync: ClientSync{
			Interval:       cfg.Sync.Interval,
			DebounceWindow: cfg.Sync.DebounceWindow,
		},
	}

	return clientCfg, clientCfg.validate()
}
