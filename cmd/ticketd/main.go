package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/ethereum/go-ethereum/common"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/smartdevs17/event-ticketing/internal/chain"
	"github.com/smartdevs17/event-ticketing/internal/config"
	"github.com/smartdevs17/event-ticketing/internal/metrics"
	"github.com/smartdevs17/event-ticketing/internal/notification"
	"github.com/smartdevs17/event-ticketing/internal/payments"
	"github.com/smartdevs17/event-ticketing/internal/server"
	"github.com/smartdevs17/event-ticketing/internal/storage"
	"github.com/smartdevs17/event-ticketing/internal/ticketing"
	"github.com/smartdevs17/event-ticketing/pkg/utils"
)

// AppVersion contains the application version
const AppVersion = "1.0.0"

// Application represents the main application
type Application struct {
	config         *config.Config
	logger         *logrus.Logger
	store          storage.Store
	bank           payments.Bank
	nodeSource     *chain.NodeSource
	manualSource   *chain.ManualSource
	notifications  *notification.Manager
	metricsManager *metrics.Manager
	engine         *ticketing.Engine
	server         *server.HTTPServer
	ctx            context.Context
	cancel         context.CancelFunc
}

// NewApplication creates a new application instance
func NewApplication(cfg *config.Config) (*Application, error) {
	ctx, cancel := context.WithCancel(context.Background())

	app := &Application{
		config: cfg,
		ctx:    ctx,
		cancel: cancel,
	}

	if err := app.initializeLogger(); err != nil {
		cancel()
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	if err := app.initializeComponents(); err != nil {
		cancel()
		return nil, fmt.Errorf("failed to initialize components: %w", err)
	}

	return app, nil
}

// initializeLogger initializes the application logger
func (app *Application) initializeLogger() error {
	logCfg := app.config.Logging

	if err := utils.InitLogger(logCfg.Level, logCfg.Format, logCfg.Output, logCfg.File); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	app.logger = utils.GetLogger()
	app.logger.WithFields(logrus.Fields{
		"level":  logCfg.Level,
		"format": logCfg.Format,
		"output": logCfg.Output,
	}).Info("Logger initialized")

	return nil
}

// initializeComponents initializes all application components
func (app *Application) initializeComponents() error {
	app.logger.Info("Initializing application components")

	if err := app.initializeStorage(); err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}

	if err := app.initializeBank(); err != nil {
		return fmt.Errorf("failed to initialize bank: %w", err)
	}

	if err := app.initializeHeightSource(); err != nil {
		return fmt.Errorf("failed to initialize height source: %w", err)
	}

	app.notifications = notification.NewManager(&notification.ManagerConfig{
		Enabled:       app.config.Notifications.Enabled,
		Timeout:       app.config.Notifications.Timeout,
		RetryAttempts: app.config.Notifications.RetryAttempts,
		RetryDelay:    app.config.Notifications.RetryDelay,
		WebhookURL:    app.config.Notifications.WebhookURL,
	})

	app.metricsManager = metrics.NewManager()
	app.store.SetMetricsManager(app.metricsManager)

	if err := app.initializeEngine(); err != nil {
		return fmt.Errorf("failed to initialize engine: %w", err)
	}

	if err := app.initializeServer(); err != nil {
		return fmt.Errorf("failed to initialize server: %w", err)
	}

	return nil
}

// initializeStorage initializes the persistence store
func (app *Application) initializeStorage() error {
	store, err := storage.NewStore(&storage.StoreConfig{
		Type:             app.config.Storage.Type,
		ConnectionString: app.config.Storage.ConnectionString,
		MaxConnections:   app.config.Storage.MaxConnections,
		MaxIdleTime:      app.config.Storage.MaxIdleTime,
	})
	if err != nil {
		return err
	}

	if err := store.Connect(); err != nil {
		return err
	}

	if err := store.Migrate(); err != nil {
		return err
	}

	app.store = store
	app.logger.Info("Storage initialized successfully")
	return nil
}

// initializeBank initializes the currency-transfer collaborator
func (app *Application) initializeBank() error {
	bank, err := payments.NewBank(&payments.Config{
		Provider:       payments.Provider(app.config.Bank.Provider),
		InitialBalance: app.config.Bank.InitialBalance,
		AutoFund:       app.config.Bank.AutoFund,
	})
	if err != nil {
		return err
	}

	app.bank = bank
	app.logger.WithField("provider", bank.GetProvider()).Info("Bank initialized successfully")
	return nil
}

// initializeHeightSource initializes the ledger height oracle
func (app *Application) initializeHeightSource() error {
	if !app.config.Chain.Enabled {
		app.manualSource = chain.NewManualSource(app.config.Chain.StartHeight)
		app.logger.WithField("start_height", app.config.Chain.StartHeight).
			Info("Manual height source initialized")
		return nil
	}

	nodeSource := chain.NewNodeSource(&chain.NodeConfig{
		NodeURL:        app.config.Chain.NodeURL,
		PollInterval:   app.config.Chain.PollInterval,
		RequestTimeout: app.config.Chain.RequestTimeout,
		StartHeight:    app.config.Chain.StartHeight,
	})

	if err := nodeSource.Connect(app.ctx); err != nil {
		return err
	}
	if err := nodeSource.Start(app.ctx); err != nil {
		return err
	}

	app.nodeSource = nodeSource
	app.logger.WithField("node_url", app.config.Chain.NodeURL).
		Info("Node height source initialized")
	return nil
}

// initializeEngine initializes the ticketing engine
func (app *Application) initializeEngine() error {
	owner := app.config.Ticketing.ContractOwner
	if !common.IsHexAddress(owner) {
		return utils.NewAppError(utils.ErrCodeConfiguration,
			"ticketing.contract_owner must be a valid hex address", owner)
	}

	var heights ticketing.HeightSource
	if app.nodeSource != nil {
		heights = app.nodeSource
	} else {
		heights = app.manualSource
	}

	engine := ticketing.NewEngine(&ticketing.EngineConfig{
		ContractOwner:      common.HexToAddress(owner),
		MinTicketPrice:     app.config.Ticketing.MinTicketPrice,
		PlatformFeePercent: app.config.Ticketing.PlatformFeePercent,
		MaxTicketsPerOwner: app.config.Ticketing.MaxTicketsPerOwner,
	}, heights, app.bank)

	engine.SetStore(app.store)
	engine.SetNotifier(app.notifications)
	engine.SetMetricsManager(app.metricsManager)

	if err := engine.Bootstrap(app.ctx); err != nil {
		return err
	}

	app.engine = engine
	app.logger.Info("Ticketing engine initialized successfully")
	return nil
}

// initializeServer initializes the HTTP server
func (app *Application) initializeServer() error {
	srv, err := server.NewHTTPServer(&server.ServerConfig{
		Port:          app.config.Server.Port,
		Host:          app.config.Server.Host,
		ReadTimeout:   app.config.Server.ReadTimeout,
		WriteTimeout:  app.config.Server.WriteTimeout,
		EnableMetrics: app.config.Server.EnableMetrics,
		EnableHealth:  app.config.Server.EnableHealth,
	}, app.engine, app.store, app.bank, app.manualSource, app.metricsManager)
	if err != nil {
		return err
	}

	app.server = srv
	app.logger.Info("HTTP server initialized successfully")
	return nil
}

// Start starts the application
func (app *Application) Start() error {
	app.logger.WithFields(logrus.Fields{
		"version":     AppVersion,
		"environment": app.config.App.Environment,
	}).Info("Starting event ticketing daemon")

	if err := app.server.Start(); err != nil {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}

	app.logger.WithFields(logrus.Fields{
		"server_address": fmt.Sprintf("%s:%d", app.config.Server.Host, app.config.Server.Port),
		"storage_type":   app.config.Storage.Type,
		"chain_enabled":  app.config.Chain.Enabled,
	}).Info("Event ticketing daemon started successfully")

	return nil
}

// Stop stops the application gracefully
func (app *Application) Stop() error {
	app.logger.Info("Stopping event ticketing daemon")

	app.cancel()

	// Stop components in reverse order
	if app.server != nil {
		if err := app.server.Stop(); err != nil {
			app.logger.WithError(err).Error("Failed to stop HTTP server")
		}
	}

	if app.nodeSource != nil {
		if err := app.nodeSource.Stop(); err != nil {
			app.logger.WithError(err).Error("Failed to stop height source")
		}
	}

	if app.notifications != nil {
		if err := app.notifications.Stop(); err != nil {
			app.logger.WithError(err).Error("Failed to stop notification manager")
		}
	}

	if app.bank != nil {
		if err := app.bank.Close(); err != nil {
			app.logger.WithError(err).Error("Failed to close bank")
		}
	}

	if app.store != nil {
		if err := app.store.Close(); err != nil {
			app.logger.WithError(err).Error("Failed to close storage")
		}
	}

	app.logger.Info("Event ticketing daemon stopped successfully")
	return nil
}

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "ticketd",
		Short: "Ledger-resident event ticketing daemon",
		Long: "ticketd keeps the event/ticket state machine of the ticketing " +
			"contract: it issues events, sells and tracks tickets, and enforces " +
			"lifecycle rules keyed to the ledger height.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}

			app, err := NewApplication(cfg)
			if err != nil {
				return fmt.Errorf("failed to create application: %w", err)
			}

			if err := app.Start(); err != nil {
				return fmt.Errorf("failed to start application: %w", err)
			}

			// Wait for shutdown signal
			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
			<-sigChan

			return app.Stop()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to configuration file")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("ticketd %s\n", AppVersion)
		},
	}
	rootCmd.AddCommand(versionCmd)

	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
