package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zenithflow/zenithflow/internal/database"
)

// NewListCmd creates the list command
func NewListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List runtime configuration stored in the database",
		Long:  "Show the CORS and rate limit configuration the server hot-reloads.",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, closeDB, err := openDatabase()
			if err != nil {
				return err
			}
			defer closeDB()

			ctx := context.Background()

			corsCfg, err := database.NewCorsConfigRepository(db).Get(ctx)
			if err != nil {
				return fmt.Errorf("failed to get cors config: %w", err)
			}
			if corsCfg == nil {
				fmt.Println("CORS: not configured (server falls back to FRONTEND_URL)")
			} else {
				fmt.Println("CORS:")
				fmt.Printf("  Allowed origins: %s\n", corsCfg.AllowedOrigins)
				fmt.Printf("  Allow credentials: %v\n", corsCfg.AllowCredentials)
				fmt.Printf("  Max-Age: %d\n", corsCfg.MaxAge)
			}

			rlCfg, err := database.NewRatelimitConfigRepository(db).Get(ctx)
			if err != nil {
				return fmt.Errorf("failed to get ratelimit config: %w", err)
			}
			if rlCfg == nil {
				fmt.Println("Rate limit: not configured (server uses its default)")
			} else {
				fmt.Printf("Rate limit: %s\n", rlCfg.Rate)
			}

			return nil
		},
	}

	return cmd
}
