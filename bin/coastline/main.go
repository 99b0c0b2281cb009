package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/UnownHash/Coastline/app_config"
	"github.com/UnownHash/Coastline/db_store"
	"github.com/UnownHash/Coastline/httpserver"
	"github.com/UnownHash/Coastline/nominatim"
	"github.com/UnownHash/Coastline/overlay"
	"github.com/UnownHash/Coastline/pyroscope"
	"github.com/UnownHash/Coastline/sessions"
	"github.com/UnownHash/Coastline/stats_collector"
	"github.com/UnownHash/Coastline/version"
)

const (
	DEFAULT_CONFIG_FILENAME = "configs/coastline.toml"

	HISTORY_RETENTION      = 30 * 24 * time.Hour
	HISTORY_PURGE_INTERVAL = time.Hour
)

func usage(flagSet *flag.FlagSet, output io.Writer) {
	fmt.Fprintf(output, "** Coastline viewer. Version %s **\n", version.APP_VERSION)
	fmt.Fprintf(output, "Usage: %s [-debug] [-help] [-f <config-filename>]\n", os.Args[0])
	fmt.Fprint(output, "\n")
	fmt.Fprint(output, "Options:\n")
	flagSet.SetOutput(output)
	flagSet.PrintDefaults()
	fmt.Fprint(output, "\n")
}

func main() {
	flagSet := flag.NewFlagSet(os.Args[0], flag.ExitOnError)

	helpFlag := flagSet.Bool("help", false, "help!")
	debugFlag := flagSet.Bool("debug", false, "override config and turn on debug logging")
	flagSet.BoolVar(helpFlag, "h", false, "help!")
	configFileFlag := flagSet.String("f", DEFAULT_CONFIG_FILENAME, "config file to use (empty for defaults only)")

	err := flagSet.Parse(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s", err)
		usage(flagSet, os.Stderr)
		os.Exit(2)
	}

	if *helpFlag {
		usage(flagSet, os.Stdout)
		os.Exit(0)
	}

	if len(flagSet.Args()) != 0 {
		usage(flagSet, os.Stderr)
		os.Exit(1)
	}

	defaultConfig := app_config.GetDefaultConfig()
	configFilename := *configFileFlag
	cfg, err := app_config.LoadConfig(configFilename, defaultConfig)
	if err != nil {
		log.Fatal(err)
	}

	if *debugFlag {
		cfg.Logging.Debug = true
	}

	logger := cfg.CreateLogger(true)
	logger.Infof("STARTUP: Version %s. Config loaded.", version.APP_VERSION)

	statsCollector := stats_collector.GetStatsCollector(cfg)
	logger.Infof("STARTUP: using %s stats collector", statsCollector.Name())

	if cfg.Pyroscope.Enabled() {
		stopFn, err := pyroscope.Run(cfg.Pyroscope, logger)
		if err != nil {
			logger.Errorf("STARTUP: Failed to Initialized pyroscope: %v", err)
		} else {
			defer stopFn()
			logger.Info("STARTUP: Initialized pyroscope")
		}
	}

	var wg sync.WaitGroup
	defer wg.Wait()

	ctx, cancelFn := context.WithCancel(context.Background())
	defer cancelFn()

	wg.Add(1)
	go func() {
		defer wg.Done()
		defer cancelFn()

		sig_ch := make(chan os.Signal, 1)
		signal.Notify(sig_ch, syscall.SIGINT, syscall.SIGTERM)
		select {
		case <-ctx.Done():
			// something else told us to exit
		case sig := <-sig_ch:
			logger.Infof("received signal '%s'", sig.String())
		}
	}()

	logger.Debugf("STARTUP: signal handler installed.")

	var (
		recorder overlay.SearchRecorder
		history  httpserver.HistoryReader
	)

	if cfg.HistoryDb == nil {
		noopStore := db_store.NewNoopHistoryStore()
		recorder, history = noopStore, noopStore
		logger.Infof("STARTUP: no history_db configured: search history is off")
	} else {
		historyStore, err := db_store.NewHistoryDBStore(*cfg.HistoryDb, logger)
		if err != nil {
			logger.Fatalf("failed to create history dbStore: %v", err)
		}
		defer historyStore.Close()
		recorder, history = historyStore, historyStore

		wg.Add(1)
		go func() {
			defer wg.Done()
			purgeHistory(ctx, logger, historyStore)
		}()

		logger.Infof("STARTUP: history store inited.")
	}

	nominatimClient, err := nominatim.NewClient(logger, cfg.Nominatim)
	if err != nil {
		logger.Fatalf("failed to create nominatim client: %v", err)
	}

	logger.Debugf("STARTUP: nominatim client for %s inited.", cfg.Nominatim.Url)

	sessionManager, err := sessions.NewManager(sessions.ManagerConfig{
		Logger:         logger,
		Config:         cfg.Sessions,
		OverlayConfig:  cfg.Overlay,
		Lookup:         nominatimClient,
		Recorder:       recorder,
		StatsCollector: statsCollector,
	})
	if err != nil {
		logger.Fatalf("failed to create session manager: %v", err)
	}

	reloadFn := func() error {
		cfg, err := app_config.LoadConfig(configFilename, defaultConfig)
		if err != nil {
			return fmt.Errorf("failed to reload config file: %w", err)
		}
		if err := sessionManager.SetConfig(cfg.Sessions); err != nil {
			return fmt.Errorf("failed to reload sessions config: %w", err)
		}
		if err := sessionManager.SetOverlayConfig(cfg.Overlay); err != nil {
			return fmt.Errorf("failed to reload overlay config: %w", err)
		}
		return nil
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		defer cancelFn()

		sig_ch := make(chan os.Signal, 1)
		signal.Notify(sig_ch, syscall.SIGHUP)
		for {
			select {
			case <-ctx.Done():
				// something else told us to exit
				return
			case sig := <-sig_ch:
				logger.Infof("received signal '%s' -- Reloading config.", sig.String())
				err := reloadFn()
				if err == nil {
					logger.Infof("config reloaded")
				} else {
					logger.Error(err)
				}
			}
		}
	}()
	logger.Debugf("STARTUP: installed reload (SIGHUP) handler")

	wg.Add(1)
	go func() {
		defer wg.Done()
		// shut down everything else if this bails early
		defer cancelFn()

		sessionManager.Run(ctx)
	}()

	logger.Debugf("STARTUP: session sweeper started.")

	httpServer, err := httpserver.NewHTTPServer(logger, sessionManager, history, statsCollector, reloadFn)
	if err != nil {
		logger.Fatalf("failed to create http server: %v", err)
	}

	logger.Infof("STARTUP: starting http server on %s (final step)", cfg.HTTP.Addr)
	err = httpServer.Run(ctx, cfg.HTTP.Addr, cfg.HTTP.ShutdownWait())
	if err != nil {
		logger.Fatalf("failed to run http server: %v", err)
	}

	// http server could have shut down early or not started. The defers
	// above will cancel and wait for things to shutdown cleanly.
}
