package commands

import (
	"fmt"
	"os"

	"github.com/zenithflow/zenithflow/internal/config"
	"github.com/zenithflow/zenithflow/internal/database"
)

// openDatabase loads the environment config and connects to Postgres. The
// returned closer logs instead of failing, since these are one-shot commands.
func openDatabase() (*database.DB, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	db, err := database.New(cfg.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	closer := func() {
		if err := db.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to close database: %v\n", err)
		}
	}
	return db, closer, nil
}
