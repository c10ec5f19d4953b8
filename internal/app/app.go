// Package app wires the oaemapi components together and owns the process
// lifecycle.
package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/gereon-t/oaemapi/internal/area"
	"github.com/gereon-t/oaemapi/internal/edges"
	"github.com/gereon-t/oaemapi/internal/log"
	"github.com/gereon-t/oaemapi/internal/server"
	"github.com/gereon-t/oaemapi/internal/service"
	"github.com/gereon-t/oaemapi/pkg/config"
	"github.com/gereon-t/oaemapi/pkg/geoid"
)

// App represents the main application
type App struct {
	cfg     *config.Config
	logger  *zap.SugaredLogger
	version string
}

// New creates a new application instance
func New(cfg *config.Config, logger *zap.SugaredLogger, version string) *App {
	return &App{cfg: cfg, logger: logger, version: version}
}

// Run constructs the shared collaborators, starts the HTTP server and blocks
// until shutdown.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	interpolation, err := geoid.ParseInterpolation(a.cfg.Geoid.Interpolation)
	if err != nil {
		return err
	}
	g, err := geoid.New(a.cfg.Geoid.File, a.cfg.Geoid.EPSG, a.cfg.WorkEPSG, interpolation)
	if err != nil {
		return fmt.Errorf("initializing geoid: %w", err)
	}
	if a.cfg.Geoid.File == "" {
		log.Warn("no geoid file configured, no undulation will be applied")
	} else {
		log.Infof("initialized geoid from %s with %d grid points", a.cfg.Geoid.File, g.NumPoints())
	}

	provider, err := a.buildProvider()
	if err != nil {
		return fmt.Errorf("initializing edge provider: %w", err)
	}

	areaOfOperation, err := area.Load(a.cfg.Area.File)
	if err != nil {
		return fmt.Errorf("initializing area of operation: %w", err)
	}

	svc, err := service.New(service.Config{
		Geoid:    g,
		Provider: provider,
		Area:     areaOfOperation,
		WorkEPSG: a.cfg.WorkEPSG,
		OaemRes:  a.cfg.OaemRes,
		GeoidRes: a.cfg.Geoid.Res,
		NRes:     a.cfg.Edges.NRes,
	})
	if err != nil {
		return err
	}

	srv := server.New(server.Config{
		ListenAddr: a.cfg.ListenAddr(),
		WorkEPSG:   a.cfg.WorkEPSG,
		Version:    a.version,
	}, svc, a.logger)

	// Set up signal handling
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case <-sigs:
			log.Info("shutdown signal received, initiating graceful shutdown...")
			cancel()
		case <-ctx.Done():
		}
	}()

	log.Info("application started successfully")
	err = srv.Run(ctx)
	log.Info("shutdown complete")
	return err
}

func (a *App) buildProvider() (edges.Provider, error) {
	switch a.cfg.Edges.Source {
	case config.SourceFile:
		log.Infof("using local edge provider with LoD%d data from %s", a.cfg.Edges.LOD, a.cfg.Edges.DataPath)
		return edges.NewLocal(edges.LocalConfig{
			DataPath: a.cfg.Edges.DataPath,
			EPSG:     a.cfg.WorkEPSG,
			LOD:      a.cfg.Edges.LOD,
			UTMZone:  a.cfg.Edges.UTMZone,
			NRange:   a.cfg.Edges.NRange,
		})
	case config.SourceWFS:
		log.Infof("using WFS edge provider at %s", a.cfg.WFS.URL)
		return edges.NewWFS(edges.WFSConfig{
			URL:    a.cfg.WFS.URL,
			EPSG:   a.cfg.WFS.EPSG,
			NRange: a.cfg.Edges.NRange,
		})
	default:
		return nil, fmt.Errorf("unknown edge source %q", a.cfg.Edges.Source)
	}
}
