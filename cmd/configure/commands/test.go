package commands

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/zenithflow/zenithflow/internal/config"
	"github.com/zenithflow/zenithflow/internal/database"
	"github.com/zenithflow/zenithflow/internal/queue"
	"github.com/zenithflow/zenithflow/internal/services/oidc"
	"github.com/zenithflow/zenithflow/internal/session"
)

// NewTestCmd creates the test command
func NewTestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "test",
		Short: "Test backing service connectivity",
		Long:  "Verify Postgres, Redis, RabbitMQ, and Google's JWKS endpoint are reachable with the current configuration.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			db, err := database.New(cfg.DatabaseURL)
			if err != nil {
				return fmt.Errorf("postgres connection failed: %w", err)
			}
			defer func() {
				if err := db.Close(); err != nil {
					fmt.Fprintf(os.Stderr, "Warning: failed to close database: %v\n", err)
				}
			}()
			fmt.Println("✓ Postgres is reachable")

			sessions, err := session.NewManager(cfg.RedisURL, cfg.SessionTTL, nil)
			if err != nil {
				return fmt.Errorf("redis connection failed: %w", err)
			}
			defer func() {
				_ = sessions.Close()
			}()
			if err := sessions.Ping(ctx); err != nil {
				return fmt.Errorf("redis ping failed: %w", err)
			}
			fmt.Println("✓ Redis is reachable")

			jobQueue, err := queue.NewRabbitMQQueue(cfg.RabbitMQURL)
			if err != nil {
				return fmt.Errorf("rabbitmq connection failed: %w", err)
			}
			defer func() {
				_ = jobQueue.Close()
			}()
			if err := jobQueue.HealthCheck(ctx); err != nil {
				return fmt.Errorf("rabbitmq health check failed: %w", err)
			}
			fmt.Println("✓ RabbitMQ is reachable")

			fmt.Printf("Testing Google JWKS endpoint: %s\n", oidc.GoogleJWKSURL)
			client := &http.Client{Timeout: 10 * time.Second}
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, oidc.GoogleJWKSURL, nil)
			if err != nil {
				return fmt.Errorf("failed to build JWKS request: %w", err)
			}
			resp, err := client.Do(req)
			if err != nil {
				return fmt.Errorf("failed to reach JWKS endpoint: %w", err)
			}
			defer func() {
				if err := resp.Body.Close(); err != nil {
					fmt.Fprintf(os.Stderr, "Warning: failed to close response body: %v\n", err)
				}
			}()
			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("JWKS endpoint returned status: %d", resp.StatusCode)
			}
			fmt.Println("✓ Google JWKS endpoint is accessible")

			fmt.Println("\n✓ Connectivity test passed")
			return nil
		},
	}

	return cmd
}
