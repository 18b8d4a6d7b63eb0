package cli

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"
	"github.com/vietddude/artbid/internal/control"
	"github.com/vietddude/artbid/internal/core/config"
	"github.com/vietddude/artbid/internal/infra/registry"
	"github.com/vietddude/artbid/internal/infra/wallet"
	"github.com/vietddude/stylelog"
)

var (
	cfgPath string
	isDebug bool
)

var rootCmd = &cobra.Command{
	Use:   "artbid",
	Short: "Art auction bidding client",
	Long:  `artbid connects a wallet provider to the ArtAuction contract, mirrors its active auctions and places bids.`,
	Run:   runApp,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "config.yaml", "config file (default is config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&isDebug, "debug", false, "enable debug logging")
}

// loadConfig loads .env and the config file and installs the logger.
func loadConfig() *config.AppConfig {
	_ = godotenv.Load()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		stylelog.InitDefault()
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	slogLevel := slog.LevelInfo
	if isDebug || cfg.Logging.Level == "debug" {
		slogLevel = slog.LevelDebug
	}

	stylelog.InitDefault(&tint.Options{
		Level:      slogLevel,
		TimeFormat: time.RFC3339,
	})
	return cfg
}

// newApp builds the application from config. Commands other than the root
// one run without the status server.
func newApp(cfg *config.AppConfig, port int, autoConnect bool) *control.App {
	reg, err := registry.Load(cfg.Registry.Artifact)
	if err != nil {
		slog.Error("Failed to load deployment registry", "artifact", cfg.Registry.Artifact, "error", err)
		os.Exit(1)
	}
	slog.Debug("Loaded deployment registry",
		"contract", reg.ContractName(),
		"networks", reg.Networks(),
	)

	// A nil interface, not a nil *HTTPProvider, signals a missing wallet.
	var provider wallet.Provider
	if cfg.Wallet.URL != "" {
		provider = wallet.NewHTTPProvider(cfg.Wallet.Name, cfg.Wallet.URL, cfg.Wallet.Timeout)
	}

	return control.NewApp(control.Config{
		Provider:    provider,
		Registry:    reg,
		NotifyURL:   cfg.Wallet.NotifyURL,
		Port:        port,
		AutoConnect: autoConnect,
		Logger:      slog.Default(),
	})
}

func runApp(cmd *cobra.Command, args []string) {
	cfg := loadConfig()
	app := newApp(cfg, cfg.Server.Port, cfg.AutoConnect)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	if err := app.Start(ctx); err != nil {
		slog.Error("Failed to start app", "error", err)
		os.Exit(1)
	}

	slog.Info("artbid started", "config", cfgPath, "wallet", cfg.Wallet.URL)

	sig := <-sigChan
	slog.Info("Received signal, shutting down...", "signal", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := app.Stop(shutdownCtx); err != nil {
		slog.Error("Error during shutdown", "error", err)
		os.Exit(1)
	}
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}
