package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nerrad567/devmodel/internal/api"
	"github.com/nerrad567/devmodel/internal/control"
	"github.com/nerrad567/devmodel/internal/infrastructure/database"
	"github.com/nerrad567/devmodel/internal/infrastructure/influxdb"
	"github.com/nerrad567/devmodel/internal/infrastructure/logging"
	"github.com/nerrad567/devmodel/internal/infrastructure/mqtt"
	"github.com/nerrad567/devmodel/internal/journal"
	"github.com/nerrad567/devmodel/internal/notify"
	"github.com/nerrad567/devmodel/migrations"
)

func runCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Boot the machine and serve control requests until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), *configPath)
		},
	}
}

// run is the service: everything it opens is closed in reverse order when
// ctx is cancelled.
//
// Parameters:
//   - ctx: Context for cancellation and shutdown signals
//   - configPath: Value of --config, may be empty
//
// Returns:
//   - error: nil on clean shutdown, or error describing failure
func run(ctx context.Context, configPath string) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting devmodel",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	cfg, path, err := loadConfig(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if path == "" {
		log.Info("no config file found, using defaults")
	} else {
		log.Info("configuration loaded", "path", path)
	}

	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	db, err := database.Open(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()
	log.Info("database connected", "path", db.Path())

	if migrateErr := db.Migrate(ctx, migrations.FS); migrateErr != nil {
		return fmt.Errorf("running migrations: %w", migrateErr)
	}
	log.Info("database migrations complete")

	model := newModel(cfg.Machine, log)

	repo := journal.NewSQLiteRepository(db.DB)
	recorder := journal.NewRecorder(repo)
	recorder.SetLogger(log.Component("journal"))
	model.AddObserver(recorder)

	notifier := notify.New(model, cfg.Machine.Name)
	notifier.SetLogger(log.Component("notify"))
	model.AddObserver(notifier)

	var mqttClient *mqtt.Client
	if cfg.MQTT.Enabled {
		mqttClient, err = mqtt.Connect(cfg.MQTT, cfg.Machine.Name)
		if err != nil {
			return fmt.Errorf("connecting to MQTT: %w", err)
		}
		defer func() {
			log.Info("disconnecting from MQTT")
			if closeErr := mqttClient.Close(); closeErr != nil {
				log.Error("error closing MQTT", "error", closeErr)
			}
		}()
		log.Info("MQTT connected",
			"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
			"client_id", cfg.MQTT.Broker.ClientID,
		)

		mqttClient.SetLogger(log.Component("mqtt"))
		mqttClient.SetOnConnect(func() {
			log.Info("MQTT reconnected")
		})
		mqttClient.SetOnDisconnect(func(err error) {
			log.Warn("MQTT disconnected", "error", err)
		})
		notifier.SetPublisher(mqttClient)
	} else {
		log.Info("MQTT disabled")
	}

	var influxClient *influxdb.Client
	if cfg.InfluxDB.Enabled {
		influxClient, err = influxdb.Connect(ctx, cfg.InfluxDB)
		if err != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", err)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)

		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
		notifier.SetMetrics(influxClient)
	} else {
		log.Info("InfluxDB disabled")
	}

	// Attached before boot so cold-plug events are broadcast too.
	var hub *api.Hub
	if cfg.API.Enabled {
		hub = api.NewHub(log.Component("websocket"))
		model.AddObserver(hub)
		go hub.Run(ctx)
	}

	if err := bootMachine(model, cfg.Machine, log); err != nil {
		return fmt.Errorf("booting machine: %w", err)
	}
	notifier.Sync()

	if err := healthCheck(ctx, db, mqttClient, influxClient); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("all health checks passed")

	loop := control.NewLoop(model, control.Options{
		QueueSize:      cfg.Control.QueueSize,
		RequestTimeout: cfg.GetRequestTimeout(),
	})
	loop.SetLogger(log.Component("control"))
	loop.SetAfter(notifier.Sync)

	var server *control.Server
	if cfg.Control.Enabled {
		server = control.NewServer(loop, mqttClient, mqttClient.Topics(), byte(cfg.MQTT.QoS))
		server.SetLogger(log.Component("control"))
		if err := server.Start(ctx); err != nil {
			return err
		}
	} else {
		log.Info("remote control disabled")
	}

	var apiServer *api.Server
	if cfg.API.Enabled {
		apiServer, err = api.New(api.Deps{
			Config:   cfg.API,
			WS:       cfg.WebSocket,
			Security: cfg.Security,
			Logger:   log.Component("api"),
			Loop:     loop,
			Journal:  repo,
			Hub:      hub,
			Version:  version,
		})
		if err != nil {
			return fmt.Errorf("creating API server: %w", err)
		}
		if err := apiServer.Start(ctx); err != nil {
			return err
		}
		defer func() {
			if closeErr := apiServer.Close(); closeErr != nil {
				log.Error("error closing API server", "error", closeErr)
			}
		}()
		if err := apiServer.HealthCheck(ctx); err != nil {
			return fmt.Errorf("health check failed: api: %w", err)
		}
	} else {
		log.Info("HTTP API disabled")
	}

	log.Info("initialisation complete, waiting for shutdown signal")

	// The loop owns the model from here on and returns when ctx is done.
	loop.Run(ctx)

	log.Info("shutdown signal received, cleaning up")
	if server != nil {
		server.Stop()
	}

	log.Info("devmodel stopped")
	return nil
}

// healthCheck verifies the connections opened by run. Disabled clients are
// nil and skipped.
func healthCheck(ctx context.Context, db *database.DB, mqttClient *mqtt.Client, influxClient *influxdb.Client) error {
	if err := db.HealthCheck(ctx); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if mqttClient != nil {
		if err := mqttClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("mqtt: %w", err)
		}
	}
	if influxClient != nil {
		if err := influxClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("influxdb: %w", err)
		}
	}
	return nil
}
