package di

import (
	"fmt"

	"github.com/aristath/trendly/internal/config"
	"github.com/aristath/trendly/internal/database"
	"github.com/rs/zerolog"
)

// InitializeDatabases opens the client data cache and applies its schema
func InitializeDatabases(cfg *config.Config, log zerolog.Logger) (*Container, error) {
	container := &Container{}

	// client_data.db - short-lived upstream cache (exchange rates)
	clientDataDB, err := database.New(database.Config{
		Path:    cfg.ClientDataPath(),
		Profile: database.ProfileCache,
		Name:    "client_data",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize client data database: %w", err)
	}

	if err := clientDataDB.Migrate(); err != nil {
		clientDataDB.Close()
		return nil, fmt.Errorf("failed to migrate client data database: %w", err)
	}
	container.ClientDataDB = clientDataDB

	log.Info().Str("path", clientDataDB.Path()).Msg("Database initialized")

	return container, nil
}
