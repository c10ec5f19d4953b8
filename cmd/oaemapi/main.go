// Package main provides the oaemapi server computing obstruction adaptive
// elevation masks from building models.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"runtime"

	"github.com/gereon-t/oaemapi/internal/app"
	"github.com/gereon-t/oaemapi/internal/constants"
	"github.com/gereon-t/oaemapi/internal/log"
	"github.com/gereon-t/oaemapi/pkg/config"
)

func main() {
	cfgFile := flag.String("config", "", "Path to YAML configuration file")
	debug := flag.Bool("debug", false, "Turn on debugging output")
	showVersion := flag.Bool("version", false, "Show version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("oaemapi %s (%s/%s)\n", constants.Version, runtime.GOOS, runtime.GOARCH)
		os.Exit(0)
	}

	// Set up logging
	if err := log.Init(*debug); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	cfg, err := config.Load(*cfgFile)
	if err != nil {
		log.Errorf("Failed to load configuration: %v", err)
		os.Exit(1)
	}

	application := app.New(cfg, log.GetSugaredLogger(), constants.Version)
	if err := application.Run(context.Background()); err != nil {
		log.Errorf("Application error: %v", err)
		os.Exit(1)
	}
}
