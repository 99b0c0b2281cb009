package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/paulmach/orb"

	"github.com/UnownHash/Coastline/app_config"
	"github.com/UnownHash/Coastline/nominatim"
	"github.com/UnownHash/Coastline/overlay"
	"github.com/UnownHash/Coastline/scene"
	"github.com/UnownHash/Coastline/version"
)

func usage(flagSet *flag.FlagSet, output io.Writer) {
	fmt.Fprintf(output, "** Coastline lookup. Version %s **\n", version.APP_VERSION)
	fmt.Fprintf(output, "Usage: %s [-debug] [-help] [-f <config-filename>] [-lat <lat>] [-lon <lon>] [-markers] <name>\n", os.Args[0])
	fmt.Fprint(output, "\n")
	fmt.Fprint(output, "Looks up a country or island and prints its coastline, moved to the\n")
	fmt.Fprint(output, "given center, as a GeoJSON FeatureCollection.\n")
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
	configFileFlag := flagSet.String("f", "", "config file to use (empty for defaults only)")
	latFlag := flagSet.Float64("lat", scene.INITIAL_LAT, "latitude to center the coastline on")
	lonFlag := flagSet.Float64("lon", scene.INITIAL_LON, "longitude to center the coastline on")
	markersFlag := flagSet.Bool("markers", false, "include the center marker in the output")

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

	if len(flagSet.Args()) == 0 {
		usage(flagSet, os.Stderr)
		os.Exit(1)
	}

	name := strings.Join(flagSet.Args(), " ")

	cfg, err := app_config.LoadConfig(*configFileFlag, app_config.GetDefaultConfig())
	if err != nil {
		log.Fatal(err)
	}

	// stdout is for the geojson
	cfg.Logging.Filename = ""
	cfg.Logging.Debug = *debugFlag
	logger := cfg.Logging.CreateLogger(false, true)
	logger.SetOutput(os.Stderr)

	ctx, cancelFn := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancelFn()

	nominatimClient, err := nominatim.NewClient(logger, cfg.Nominatim)
	if err != nil {
		logger.Fatalf("failed to create nominatim client: %v", err)
	}

	sc := scene.NewScene()
	sc.SetView(orb.Point{*lonFlag, *latFlag}, scene.INITIAL_ZOOM)

	ctl, err := overlay.NewController(overlay.ControllerConfig{
		Logger:   logger,
		Renderer: sc,
		Lookup:   nominatimClient,
		Config:   cfg.Overlay,
	})
	if err != nil {
		logger.Fatalf("failed to create controller: %v", err)
	}

	result, err := ctl.Search(ctx, name)
	fmt.Fprintln(os.Stderr, ctl.Status().Message)
	if err != nil {
		os.Exit(1)
	}

	fc := sc.FeatureCollection()
	if !*markersFlag {
		features := fc.Features[:0]
		for _, feature := range fc.Features {
			if feature.ID == uint64(result.Overlay.LayerID) {
				features = append(features, feature)
			}
		}
		fc.Features = features
	}

	for _, feature := range fc.Features {
		if feature.ID == uint64(result.Overlay.LayerID) {
			feature.Properties["place_name"] = result.Overlay.PlaceName
			feature.Properties["osm_ref"] = result.Overlay.OSMRef
			feature.Properties["area_m2"] = result.Overlay.AreaM2
			feature.Properties["mainland_only"] = result.MainlandOnly
		}
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(fc); err != nil {
		logger.Fatalf("failed to write geojson: %v", err)
	}
}
