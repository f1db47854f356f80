package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "smart_kettle/docs"
	"smart_kettle/internal/config"
	"smart_kettle/internal/handlers"
	"smart_kettle/internal/heater"
	"smart_kettle/internal/logger"
	"smart_kettle/internal/mqtt"
	"smart_kettle/internal/repository"
	"smart_kettle/internal/repository/db"
	"smart_kettle/internal/sensor"
	"smart_kettle/internal/server"
	"smart_kettle/internal/service"
	"smart_kettle/internal/status"
	"smart_kettle/internal/thermal"

	"github.com/spf13/pflag"
)

const shutdownTimeout = 10 * time.Second

// @title           Smart Kettle API
// @version         1.0
// @description     Thermal controller for an electric kettle with a dry-boil cutoff.
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in              header
// @name            Authorization
func main() {
	fs := pflag.NewFlagSet("smart-kettle", pflag.ExitOnError)
	config.Flags(fs)
	_ = fs.Parse(os.Args[1:])

	cfg, err := config.Load(fs)
	if err != nil {
		logger.Get(logger.InfoLevel).Fatalw("error reading config", "err", err)
	}
	log := logger.Get(cfg.Log.Level)

	// open DB
	conn, err := openDB(cfg.DB.Path, log)
	if err != nil {
		log.Fatalw("failed to init sqlite", "err", err)
	}
	defer func() {
		if cerr := conn.Close(); cerr != nil {
			log.Errorw("failed to close sqlite", "err", cerr)
		}
	}()

	source, out, err := openHardware(cfg, log)
	if err != nil {
		log.Fatalw("failed to open hardware", "err", err)
	}
	defer func() {
		if cerr := out.Close(); cerr != nil {
			log.Errorw("failed to release heater", "err", cerr)
		}
	}()

	// wire dependencies
	broker := status.NewBroker(cfg.Status.Buffer)
	repos := repository.NewRepository(conn)
	services := service.NewService(repos, service.Deps{
		Source:       source,
		Heater:       out,
		Broker:       broker,
		StallTimeout: cfg.Control.StallTimeout,
		MinTarget:    cfg.Kettle.MinTarget,
		MaxTarget:    cfg.Kettle.MaxTarget,
		Locale:       thermal.Locale(cfg.UI.Locale),
		SigningKey:   cfg.Auth.SigningKey,
		TokenTTL:     cfg.Auth.TokenTTL,
		Log:          log,
	})
	apiHandler := handlers.NewHandler(services, log.Named("http"), handlers.Options{
		AuthEnabled: cfg.Auth.Enabled,
		Locale:      thermal.Locale(cfg.UI.Locale),
	})

	// context for background goroutines
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	loopDone := make(chan struct{})
	go func() {
		defer close(loopDone)
		services.Loop.Run(ctx, cfg.Control.Tick)
	}()
	go broker.Run(ctx, cfg.Status.KeepAlive)
	go services.Journal.Run(ctx)
	startMQTT(ctx, cfg.MQTT, broker, log)

	// start HTTP server
	srv := &server.Server{}
	runHTTPServer(srv, cfg.HTTP.Port, apiHandler, log)
	log.Infow("kettle ready",
		"port", cfg.HTTP.Port,
		"sensor", cfg.Sensor.Driver,
		"heater", cfg.Heater.Driver,
		"auth", cfg.Auth.Enabled,
	)

	// graceful shutdown
	waitForShutdown(cancel, srv, log)
	<-loopDone
}

// openDB initializes the SQLite journal.
func openDB(path string, log *logger.Logger) (*sql.DB, error) {
	if path == "" {
		log.Infow("db.path not set in config; using default file", "default", "kettle.db")
		path = "kettle.db"
	}
	return db.InitDB(path)
}

// openHardware picks the temperature source and heater output drivers.
func openHardware(cfg *config.Config, log *logger.Logger) (sensor.Source, heater.Output, error) {
	var (
		source sensor.Source
		sim    *sensor.SimulatedKettle
	)
	switch cfg.Sensor.Driver {
	case config.SensorSim:
		sim = sensor.NewSimulatedKettle(sensor.SimConfig{
			AmbientC:    cfg.Sim.AmbientC,
			HeatCPerSec: cfg.Sim.HeatCPerSec,
			CoolCPerSec: cfg.Sim.CoolCPerSec,
			Liquid:      cfg.Sim.Liquid,
		})
		source = sim
		log.Infow("using simulated kettle", "liquid", cfg.Sim.Liquid)
	case config.SensorDS18B20:
		probe, err := sensor.NewDS18B20(cfg.Sensor.BaseDir, cfg.Sensor.Device)
		if err != nil {
			return nil, nil, fmt.Errorf("ds18b20: %w", err)
		}
		source = probe
		log.Infow("using ds18b20 probe", "path", probe.Path())
	default:
		return nil, nil, fmt.Errorf("unknown sensor driver %q", cfg.Sensor.Driver)
	}

	switch cfg.Heater.Driver {
	case config.HeaterSim:
		if sim == nil {
			return nil, nil, errors.New("heater.driver=sim needs sensor.driver=sim")
		}
		return source, sim, nil
	case config.HeaterNone:
		log.Warnw("heater output disabled; commands only change reported state")
		return source, heater.Nop{}, nil
	case config.HeaterGPIO:
		out, err := heater.NewGPIO(cfg.Heater.Chip, cfg.Heater.Line, cfg.Heater.ActiveLow)
		if err != nil {
			return nil, nil, fmt.Errorf("gpio heater: %w", err)
		}
		log.Infow("using gpio heater", "chip", cfg.Heater.Chip, "line", cfg.Heater.Line)
		return source, out, nil
	default:
		return nil, nil, fmt.Errorf("unknown heater driver %q", cfg.Heater.Driver)
	}
}

// startMQTT attaches the optional broker bridge. Connection problems are
// not fatal; the kettle keeps working without it.
func startMQTT(ctx context.Context, cfg config.MQTTConfig, broker *status.Broker, log *logger.Logger) {
	if cfg.Broker == "" {
		return
	}
	pub, err := mqtt.NewRealPublisher(cfg.Broker, cfg.ClientID, cfg.Topic)
	if err != nil {
		log.Errorw("mqtt disabled", "broker", cfg.Broker, "err", err)
		return
	}
	bridge := mqtt.NewBridge(pub, log.Named("mqtt"))
	sub := broker.Subscribe()
	go func() {
		bridge.Run(ctx, sub)
		if err := pub.Close(); err != nil {
			log.Errorw("mqtt close failed", "err", err)
		}
	}()
	log.Infow("mqtt bridge started", "broker", cfg.Broker, "topic", cfg.Topic)
}

// runHTTPServer runs the HTTP server in a separate goroutine.
func runHTTPServer(srv *server.Server, port string, handler *handlers.Handler, log *logger.Logger) {
	go func() {
		if port == "" {
			port = "8080"
		}
		if err := srv.Run(port, handler.InitRoutes()); err != nil {
			log.Fatalw("error starting server", "err", err)
		}
	}()
}

// waitForShutdown listens for termination signals and performs graceful shutdown.
func waitForShutdown(cancel context.CancelFunc, srv *server.Server, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down server...")

	// stop background goroutines; the control loop switches the heater off
	cancel()

	ctx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Errorw("server forced to shutdown", "err", err)
	}
}
