// wallshadow computes the shadow a wall casts on sloped ground.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/Faultbox/wallshadow/internal/calculator"
	"github.com/Faultbox/wallshadow/internal/config"
	"github.com/Faultbox/wallshadow/internal/geocode"
	"github.com/Faultbox/wallshadow/internal/logger"
	"github.com/Faultbox/wallshadow/internal/observability"
	"github.com/Faultbox/wallshadow/internal/server"
	"github.com/Faultbox/wallshadow/internal/solar"
	"github.com/Faultbox/wallshadow/internal/timezone"
	"github.com/Faultbox/wallshadow/pkg/shadow"
)

// Command output goes through these so tests can capture it.
var (
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

func main() {
	config.ParseFlags()
	args := config.Args()
	if len(args) < 1 {
		printUsage()
		os.Exit(1)
	}

	command := args[0]
	args = args[1:]

	switch command {
	case "help", "-h", "--help":
		printUsage()
		return
	case "init-config":
		os.Exit(cmdInitConfig(args))
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()
	logger.Sugar.Debugf("Config: %+v", cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := observability.InitTracing(ctx, cfg.Tracing, nil, logger.Named("tracing"))
	if err != nil {
		logger.Error("tracing setup failed", zap.Error(err))
		os.Exit(1)
	}
	defer observability.ShutdownWithTimeout(context.Background(), shutdownTracing, logger.Log)

	var code int
	switch command {
	case "angles":
		code = cmdAngles(ctx, cfg, args)
	case "place":
		code = cmdPlace(ctx, cfg, args)
	case "serve":
		code = cmdServe(ctx, cfg, args)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		code = 1
	}

	if code != 0 {
		logger.Sync()
		observability.ShutdownWithTimeout(context.Background(), shutdownTracing, logger.Log)
		os.Exit(code)
	}
}

func printUsage() {
	fmt.Println(`wallshadow - shadow of a wall on sloped terrain

Usage:
  wallshadow [global options] <command> [options]

Commands:
  angles -elevation E -azimuth A [-slope S -aspect P -height H]
                                      Project the shadow for known sun angles
  place [-place NAME -time "YYYY-MM-DD HH:MM" -slope S -aspect P -height H]
                                      Resolve the sun for a place and local time
  serve                               Run the HTTP API and metrics endpoint
  init-config [path]                  Write the default configuration

Global options:
  -config PATH   -debug   -addr ADDR   -log-file PATH   -json-logs   -tracing

Examples:
  wallshadow angles -elevation 30 -azimuth 90 -height 3
  wallshadow place -place "Cuiabá" -time "2025-04-08 09:00" -height 2.5 -slope 5 -aspect 180
  wallshadow -addr :9000 serve`)
}

func newCalculator(cfg *config.Config, metrics *observability.Collector) (*calculator.Calculator, error) {
	zones, err := timezone.NewResolver()
	if err != nil {
		return nil, err
	}
	geo := geocode.NewClient(cfg.Geocoder.BaseURL, cfg.Geocoder.UserAgent, cfg.Geocoder.Timeout, logger.Named("geocode"))
	return calculator.New(geo, zones, solar.Calculator{}, cfg.Site.DateTimeLayout, metrics, logger.Named("calculator")), nil
}

func cmdAngles(ctx context.Context, cfg *config.Config, args []string) int {
	fs := flag.NewFlagSet("angles", flag.ContinueOnError)
	fs.SetOutput(stderr)
	elevation := fs.Float64("elevation", 0, "Sun elevation in degrees above the horizon (required)")
	azimuth := fs.Float64("azimuth", 0, "Sun azimuth, compass bearing in degrees (required)")
	slope := fs.Float64("slope", cfg.Terrain.SlopeDeg, "Terrain slope in degrees")
	aspect := fs.Float64("aspect", cfg.Terrain.AspectDeg, "Compass bearing the terrain inclines toward")
	height := fs.Float64("height", cfg.Wall.HeightM, "Wall height in metres")
	if err := fs.Parse(args); err != nil {
		return 1
	}

	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	for _, name := range []string{"elevation", "azimuth"} {
		if !set[name] {
			fmt.Fprintf(stderr, "angles: -%s is required\n", name)
			return 1
		}
	}

	calc := calculator.New(nil, nil, nil, cfg.Site.DateTimeLayout, nil, logger.Named("calculator"))
	res, err := calc.Project(ctx, shadow.Input{
		ElevationDeg: *elevation,
		AzimuthDeg:   *azimuth,
		SlopeDeg:     *slope,
		AspectDeg:    *aspect,
		WallHeightM:  *height,
	})
	return report(angleSummary(res, err), err)
}

// angleSummary appends the warning for results that are not a real shadow.
func angleSummary(res shadow.Result, err error) string {
	summary := res.Summary()
	if kind := shadow.KindOf(err); kind.IsWarning() {
		summary += "\nWarning: " + kind.Message()
	}
	return summary
}

func cmdPlace(ctx context.Context, cfg *config.Config, args []string) int {
	fs := flag.NewFlagSet("place", flag.ExitOnError)
	place := fs.String("place", cfg.Site.Place, "Place name to geocode")
	when := fs.String("time", cfg.Site.DateTime, "Local date and time ("+cfg.Site.DateTimeLayout+")")
	slope := fs.Float64("slope", cfg.Terrain.SlopeDeg, "Terrain slope in degrees")
	aspect := fs.Float64("aspect", cfg.Terrain.AspectDeg, "Compass bearing the terrain inclines toward")
	height := fs.Float64("height", cfg.Wall.HeightM, "Wall height in metres")
	fs.Parse(args)

	calc, err := newCalculator(cfg, nil)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	rep, err := calc.Compute(ctx, calculator.Request{
		Place:       *place,
		LocalTime:   *when,
		WallHeightM: *height,
		SlopeDeg:    *slope,
		AspectDeg:   *aspect,
	})
	if kind := shadow.KindOf(err); kind != 0 && !kind.IsWarning() {
		fmt.Fprintf(stdout, "Sun at %.2f° elevation and %.2f° azimuth\n", rep.Sun.ElevationDeg, rep.Sun.AzimuthDeg)
	}
	return report(rep.Summary(), err)
}

// report prints the summary or the failure and returns the exit code.
func report(summary string, err error) int {
	kind := shadow.KindOf(err)
	switch {
	case err == nil, kind.IsWarning():
		fmt.Fprintln(stdout, summary)
		return 0
	case kind != 0:
		fmt.Fprintln(stderr, kind.Message())
		fmt.Fprintf(stderr, "(%v)\n", err)
		return 2
	case errors.Is(err, geocode.ErrNotFound):
		fmt.Fprintf(stderr, "Place not found: %v\n", err)
		return 1
	default:
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
}

func cmdServe(ctx context.Context, cfg *config.Config, args []string) int {
	if len(args) > 0 {
		fmt.Fprintln(os.Stderr, "Usage: wallshadow serve")
		return 1
	}

	metrics, err := observability.NewCollector(nil)
	if err != nil {
		logger.Error("metrics setup failed", zap.Error(err))
		return 1
	}
	calc, err := newCalculator(cfg, metrics)
	if err != nil {
		logger.Error("calculator setup failed", zap.Error(err))
		return 1
	}

	srv := server.New(cfg, calc, metrics, logger.Named("server"))
	if err := srv.Run(ctx); err != nil {
		logger.Error("server error", zap.Error(err))
		return 1
	}
	logger.Info("server stopped")
	return 0
}

func cmdInitConfig(args []string) int {
	cfg := config.Default()
	var err error
	path := "config directory"
	if len(args) > 0 {
		path = args[0]
		err = cfg.SaveTo(path)
	} else {
		err = cfg.Save()
	}
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	fmt.Fprintf(stdout, "Wrote default configuration to %s\n", path)
	return 0
}
