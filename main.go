package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"freshfetch/config"
	_ "freshfetch/docs"
	"freshfetch/models"
	"freshfetch/repositories"
	"freshfetch/server"
	"freshfetch/services"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/mongo"
)

// @title FreshFetch API
// @version 1.0
// @description Grocery storefront API: catalog, cart pricing, orders, users and dashboards.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	root := &cobra.Command{
		Use:           "freshfetch",
		Short:         "FreshFetch grocery storefront API",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cfg := config.LoadConfig()
			config.SetupLogger(cfg.LogLevel)
		},
	}
	root.AddCommand(serveCmd(), migrateCmd(), createAdminCmd())

	if err := root.Execute(); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.AppConfig
			if cfg.IsProduction() {
				gin.SetMode(gin.ReleaseMode)
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			shutdownTracer, err := config.InitTracer(ctx, cfg)
			if err != nil {
				return err
			}
			defer shutdownTracer(context.Background())

			app, err := server.New(ctx, cfg)
			if err != nil {
				return err
			}
			defer app.Close()

			srv := &http.Server{
				Addr:              ":" + cfg.Port,
				Handler:           app.Router,
				ReadHeaderTimeout: 10 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				slog.Info("server starting", "port", cfg.Port, "swagger", fmt.Sprintf("http://localhost:%s/swagger/index.html", cfg.Port))
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			slog.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the Postgres schema or create the MongoDB indexes",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.AppConfig
			switch cfg.DBDriver {
			case config.DriverPostgres:
				return config.RunMigrations(cfg.PostgresDSN())
			case config.DriverMongo:
				client, err := config.ConnectMongo(cmd.Context(), cfg)
				if err != nil {
					return err
				}
				defer config.DisconnectMongo(client)
				return ensureIndexes(cmd.Context(), client.Database(cfg.MongoDatabase))
			default:
				slog.Info("nothing to migrate", "db_driver", cfg.DBDriver)
				return nil
			}
		},
	}
}

func ensureIndexes(ctx context.Context, db *mongo.Database) error {
	if err := repositories.EnsureMongoIndexes(ctx, db); err != nil {
		return err
	}
	slog.Info("mongodb indexes ensured", "database", db.Name())
	return nil
}

func createAdminCmd() *cobra.Command {
	var req models.CreateUserRequest

	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an admin account",
		RunE: func(cmd *cobra.Command, args []string) error {
			if req.Email == "" || len(req.Password) < 6 {
				return errors.New("--email and a --password of at least 6 characters are required")
			}
			if req.Name == "" {
				req.Name = "Admin"
			}
			req.Role = models.RoleAdmin

			store, err := server.OpenStore(cmd.Context(), config.AppConfig)
			if err != nil {
				return err
			}
			defer store.Close()

			user, err := services.NewUserService(store.Users).Create(cmd.Context(), req)
			if err != nil {
				return err
			}
			slog.Info("admin created", "id", user.ID.Hex(), "email", user.Email)
			return nil
		},
	}

	cmd.Flags().StringVar(&req.Email, "email", "", "admin email")
	cmd.Flags().StringVar(&req.Password, "password", "", "admin password")
	cmd.Flags().StringVar(&req.Name, "name", "Admin", "display name")
	return cmd
}
