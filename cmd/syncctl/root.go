package main

import (
	"context"
	"fmt"
	"os"
	"time"

	appintegration "github.com/commercesync/backend/internal/application/integration"
	"github.com/commercesync/backend/internal/infrastructure/auth"
	"github.com/commercesync/backend/internal/infrastructure/config"
	"github.com/commercesync/backend/internal/infrastructure/ecommerce"
	"github.com/commercesync/backend/internal/infrastructure/logger"
	"github.com/commercesync/backend/internal/infrastructure/persistence"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// app holds what every command shares once the root pre-run has completed
type app struct {
	cfg     *config.Config
	log     *zap.Logger
	db      *persistence.Database
	tenants *persistence.GormTenantRepository
	logs    *persistence.GormSyncLogRepository
	sync    *appintegration.SyncService
	tokens  *auth.JWTService
}

var (
	logLevel string
	noColor  bool
	timeout  time.Duration

	current *app
)

var rootCmd = &cobra.Command{
	Use:   "syncctl",
	Short: "Genuka to WooCommerce sync operations",
	Long: `syncctl runs batch synchronizations and inspects tenants and sync logs.

Configuration is read the same way as the server: config.toml, a .env file
and SYNC_* environment variables.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if noColor {
			color.NoColor = true
		}
		a, err := openApp()
		if err != nil {
			return err
		}
		current = a
		return nil
	},
	PersistentPostRun: func(*cobra.Command, []string) {
		if current == nil {
			return
		}
		_ = current.db.Close()
		_ = logger.Sync(current.log)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 30*time.Minute, "Abort the command after this duration")

	rootCmd.AddCommand(syncCmd, syncAllCmd, logsCmd, tenantsCmd, tokenCmd)
}

// Execute runs the root command and prints the error, if any, on stderr.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("Error:"), err)
	}
	return err
}

func openApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}

	log, err := logger.New(logger.CLIConfig(logLevel))
	if err != nil {
		return nil, fmt.Errorf("initialize logger: %w", err)
	}

	db, err := persistence.NewDatabase(&cfg.Database,
		persistence.WithLogger(logger.NewGormLogger(log, logger.MapGormLogLevel(logLevel), cfg.Telemetry.DBSlowQueryThresh)),
	)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	cipher, err := persistence.NewSecretCipher(cfg.Security.EncryptionKey)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("invalid encryption key: %w", err)
	}
	tenants := persistence.NewGormTenantRepository(db.DB, cipher)
	logs := persistence.NewGormSyncLogRepository(db.DB)

	genuka := ecommerce.NewGenukaConfig(cfg.Source.ClientID, cfg.Source.ClientSecret, cfg.Source.RedirectURI)
	genuka.APIBaseURL = cfg.Source.APIBaseURL
	genuka.APIVersion = cfg.Source.APIVersion
	genuka.HTTP = clientConfig(cfg.Source.Client)

	connector, err := ecommerce.NewConnector(genuka, clientConfig(cfg.Target.Client), log)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create platform connector: %w", err)
	}

	tokens, err := auth.NewJWTService(cfg.Auth)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create token service: %w", err)
	}

	return &app{
		cfg:     cfg,
		log:     log,
		db:      db,
		tenants: tenants,
		logs:    logs,
		sync: appintegration.NewSyncService(appintegration.SyncServiceConfig{
			Tenants:         tenants,
			Logs:            logs,
			SourceConnector: connector,
			TargetConnector: connector,
			Logger:          log,
			MaxPages:        cfg.Sync.MaxPages,
		}),
		tokens: tokens,
	}, nil
}

func clientConfig(c config.ClientConfig) ecommerce.HTTPConfig {
	return ecommerce.HTTPConfig{
		Timeout:      c.Timeout,
		MaxRetries:   c.MaxRetries,
		RetryBackoff: c.RetryBackoff,
		RateLimit:    c.RateLimit,
		Burst:        c.Burst,
	}
}

// commandContext bounds a command by the --timeout flag
func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), timeout)
}
