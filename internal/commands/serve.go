package commands

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/artur/tubegrab/internal/config"
	"github.com/artur/tubegrab/internal/database"
	"github.com/artur/tubegrab/internal/database/repository"
	"github.com/artur/tubegrab/internal/downloader"
	"github.com/artur/tubegrab/internal/handler"
	"github.com/artur/tubegrab/internal/notify"
	"github.com/artur/tubegrab/internal/server"
)

// NewServeCommand creates the 'serve' subcommand that runs the HTTP API
// Usage: tubegrab serve [--config tubegrab.toml] [--addr :8080]
func NewServeCommand() *cobra.Command {
	var configPath string
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the video info and download API",
		Long: `Start the HTTP API.

Endpoints:
  POST /get_video_info   metadata and downloadable formats for a YouTube URL
  POST /download_video   download one format and stream it back
  GET  /health           liveness probe

Every info lookup and download attempt is recorded in the audit database.

Example:
  tubegrab serve --config tubegrab.toml --addr :9000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServeCommand(cmd.Context(), configPath, addr)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", DefaultConfigFile, configFlagDescription)
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides config)")

	return cmd
}

func runServeCommand(ctx context.Context, configPath, addr string) error {
	cfg, logger, err := loadRuntime(configPath)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if addr != "" {
		cfg.Server.Addr = addr
	}

	db, err := openDatabase(cfg, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	notifier := newNotifier(cfg, logger)

	srv, err := buildServer(cfg, db, notifier, logger)
	if err != nil {
		return err
	}

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	notifier.Startup(cfg.Server.Addr)
	return srv.Run(ctx)
}

// newNotifier returns the Telegram notifier when configured, else a no-op.
// A bad token is logged and does not stop the service.
func newNotifier(cfg *config.Config, logger *zap.Logger) notify.Notifier {
	if !cfg.Telegram.Enabled() {
		return notify.Nop{}
	}

	tg, err := notify.NewTelegram(cfg.Telegram.Token, cfg.Telegram.AdminChatID, logger.Named("notify"))
	if err != nil {
		logger.Warn("telegram notifications disabled", zap.Error(err))
		return notify.Nop{}
	}
	return tg
}

// buildServer wires the extractor, audit repositories and handlers into a server.
func buildServer(cfg *config.Config, db *database.DB, notifier notify.Notifier, logger *zap.Logger) (*server.Server, error) {
	extractor, err := downloader.New(cfg.Extractor.Backend, cfg.Extractor.YtdlpPath, logger.Named("extractor"))
	if err != nil {
		return nil, err
	}

	infoRepo := repository.NewInfoRequestRepository(db.DB)
	downloadRepo := repository.NewDownloadLogRepository(db.DB)
	handlerLogger := logger.Named("handler")

	srv := server.New(server.Options{
		Addr:              cfg.Server.Addr,
		ReadHeaderTimeout: time.Duration(cfg.Server.ReadHeaderTimeoutSec) * time.Second,
		ShutdownTimeout:   time.Duration(cfg.Server.ShutdownTimeoutSec) * time.Second,
		BasePath:          cfg.Server.BasePath,
		AllowedOrigins:    cfg.Server.AllowedOrigins,
	}, logger.Named("server"))

	srv.RegisterHandler(handler.HealthHandler{})
	srv.RegisterHandler(handler.NewInfoHandler(extractor, infoRepo, notifier, handlerLogger))
	srv.RegisterHandler(handler.NewDownloadHandler(extractor, downloadRepo, notifier, handlerLogger, handler.DownloadOptions{
		TempDir:       cfg.Extractor.TempDir,
		AuditRejected: cfg.Audit.LogRejectedDownloads,
	}))

	return srv, nil
}
