package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/gin-gonic/gin"

	"github.com/shankarium/plm/internal/api"
	"github.com/shankarium/plm/internal/auth"
	"github.com/shankarium/plm/internal/config"
	"github.com/shankarium/plm/internal/db"
	"github.com/shankarium/plm/internal/logging"
	"github.com/shankarium/plm/internal/models"
	"github.com/shankarium/plm/internal/services"
	"github.com/shankarium/plm/internal/storage"
)

func main() {
	if err := run(); err != nil {
		logging.Logger().Fatal().Err(err).Msg("PLM service stopped")
	}
}

func run() error {
	ctx := context.Background()

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}
	logging.Init(os.Stdout, cfg.LogLevel)
	logger := logging.Logger()
	logger.Info().Str("git_sha", os.Getenv("GIT_SHA")).Str("build_time", os.Getenv("BUILD_TIME")).Msg("PLM service starting")
	if cfg.EnvFile == "" {
		logger.Info().Msg("No .env file found, using environment variables")
	}
	if cfg.InsecureSecret {
		logger.Warn().Msg("SECRET_KEY not set, signing sessions with the development key")
	}

	database, err := db.NewDatabase(cfg.Database)
	if err != nil {
		return err
	}
	defer database.Close()

	if err := database.Migrate(ctx); err != nil {
		return err
	}
	if err := seedUsers(ctx, database, cfg); err != nil {
		return err
	}

	var awsCfg *aws.Config
	if needsAWS(cfg) {
		loaded, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
		if err != nil {
			return err
		}
		awsCfg = &loaded
	}

	uploads, err := newUploader(ctx, cfg)
	if err != nil {
		return err
	}

	workflow := services.NewWorkflow(database, newPublisher(cfg, awsCfg))
	handler := api.NewHandler(database, workflow, uploads, auth.NewIssuer(cfg.SecretKey))

	// Set Gin mode based on environment
	if cfg.GinMode == "" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(cfg.GinMode)
	}
	opts := api.RouterOptions{
		UploadURLPrefix: cfg.UploadURLPrefix,
		SecureCookies:   cfg.SecureCookies,
		AllowedOrigins:  cfg.AllowedOrigins,
	}
	if cfg.UploadBackend == config.UploadBackendLocal {
		opts.UploadDir = cfg.UploadDir
	}
	router := api.SetupRouter(handler, opts)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("port", cfg.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		logger.Info().Str("signal", sig.String()).Msg("Shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// seedUsers creates the initial accounts when the users table is empty
func seedUsers(ctx context.Context, database *db.Database, cfg *config.Config) error {
	n, err := database.CountUsers(ctx)
	if err != nil || n > 0 {
		return err
	}

	seeds := cfg.SeedUsers()
	users := make([]models.User, 0, len(seeds))
	for _, s := range seeds {
		hash, err := auth.HashPassword(s.Password)
		if err != nil {
			return err
		}
		users = append(users, models.User{Username: s.Username, PasswordHash: hash, Role: s.Role})
	}
	created, err := database.SeedUsers(ctx, users)
	if err != nil {
		return err
	}
	if created > 0 {
		logging.LogKV("info", "seeded users", map[string]interface{}{"count": created, "from_file": len(cfg.Users.Users) > 0})
	}
	return nil
}

func needsAWS(cfg *config.Config) bool {
	return cfg.UploadBackend == config.UploadBackendS3 ||
		cfg.SESFromEmail != "" ||
		cfg.NotifyTopicARN != "" ||
		cfg.MetricNamespace != ""
}

func newUploader(ctx context.Context, cfg *config.Config) (storage.Uploader, error) {
	if cfg.UploadBackend == config.UploadBackendS3 {
		return storage.NewS3Store(ctx, cfg.AWSRegion, cfg.UploadsBucket, cfg.AssetsCDNBaseURL)
	}
	return storage.NewLocalStore(cfg.UploadDir, cfg.UploadURLPrefix)
}

// newPublisher wires every configured event sink
func newPublisher(cfg *config.Config, awsCfg *aws.Config) *services.Fanout {
	if awsCfg == nil {
		return services.NewFanout()
	}
	var sinks []services.Publisher
	if cfg.SESFromEmail != "" && len(cfg.Users.Notify) > 0 {
		sinks = append(sinks, services.NewEmailService(*awsCfg, cfg.SESFromEmail, cfg.Users.Notify))
	}
	if cfg.NotifyTopicARN != "" {
		sinks = append(sinks, services.NewTopicService(*awsCfg, cfg.NotifyTopicARN))
	}
	if cfg.MetricNamespace != "" {
		sinks = append(sinks, services.NewMetricsService(*awsCfg, cfg.MetricNamespace))
	}
	fanout := services.NewFanout(sinks...)
	logging.LogKV("info", "event sinks configured", map[string]interface{}{"count": fanout.Len()})
	return fanout
}
