package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/pflag"
	"libdb.so/bytepulse"
	"libdb.so/bytepulse/uart"
)

var (
	config    = "bytepulse.toml"
	device    = ""
	patternID = ""
	diag      = false
	listPorts = false
	verbose   = false
)

func init() {
	pflag.StringVarP(&config, "config", "c", config, "configuration file")
	pflag.StringVarP(&device, "device", "d", device, "serial device, overrides the configuration file")
	pflag.StringVarP(&patternID, "pattern", "p", patternID, "pattern table (beacon or sweep), overrides the configuration file")
	pflag.BoolVar(&diag, "diag", diag, "print every transmitted byte to stdout")
	pflag.BoolVarP(&listPorts, "list", "l", listPorts, "list serial ports and exit")
	pflag.BoolVarP(&verbose, "verbose", "v", verbose, "verbose output")
}

func main() {
	pflag.Parse()

	logLevel := slog.LevelWarn
	if verbose {
		logLevel = slog.LevelDebug
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	if listPorts {
		return printPorts()
	}

	cfg, err := readConfig(afero.NewOsFs())
	if err != nil {
		return err
	}

	if device != "" {
		cfg.Device = device
	}
	if patternID != "" {
		cfg.Pattern = patternID
		cfg.Bytes = nil
	}
	if diag {
		cfg.Diagnostics.Enabled = true
		cfg.Diagnostics.Device = bytepulse.Stdout
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	e, err := bytepulse.NewEmitter(cfg, slog.Default())
	if err != nil {
		return fmt.Errorf("failed to create emitter: %w", err)
	}

	slog.Info(
		"emitting",
		"device", cfg.Device,
		"table", e.Table(),
		"interval", time.Duration(cfg.Interval))

	if err := e.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("emitter failed: %w", err)
	}

	return nil
}

// readConfig reads the configuration file. A missing file is only an error
// if it was asked for explicitly.
func readConfig(fsys afero.Fs) (*bytepulse.Config, error) {
	cfg, err := bytepulse.LoadConfig(fsys, config)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && !pflag.CommandLine.Changed("config") {
			return bytepulse.DefaultConfig(), nil
		}
		return nil, err
	}
	return cfg, nil
}

func printPorts() error {
	ports, err := uart.ListPorts()
	if err != nil {
		return err
	}
	if len(ports) == 0 {
		fmt.Println("no serial ports found")
		return nil
	}
	for _, port := range ports {
		fmt.Println(port)
	}
	return nil
}
