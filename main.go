// aqimon monitors particulate air quality with an SDS011 sensor.
//
// The default mode opens the terminal dashboard, which polls a running
// aqimon server for readings and device status. -serve runs that
// server: it schedules sensor reads, stores them in sqlite, and exposes
// the HTTP API the dashboard consumes.
//
// Usage:
//
//	aqimon [flags]
//
// Flags:
//
//	-serve             Run the API server and read scheduler
//	-probe             Take one sample, print it as JSON, and exit
//	-config string     Path to a configuration file (.toml or .yaml)
//	-server string     Dashboard: base URL of the aqimon server
//	-listen string     Server: listen address
//	-db string         Server: sqlite database path
//	-sensor string     Server: sample source (sds011|sim)
//	-device string     Server: serial device of the SDS011
//	-log-level string  Log level (debug|info|warn|error)
//	-version           Print version and exit
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/term"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"

	"github.com/inactivist/aqimon/pkg/client"
	"github.com/inactivist/aqimon/pkg/config"
	"github.com/inactivist/aqimon/pkg/dashboard"
	"github.com/inactivist/aqimon/pkg/epa"
	"github.com/inactivist/aqimon/pkg/logging"
	"github.com/inactivist/aqimon/pkg/reader"
	"github.com/inactivist/aqimon/pkg/sds011"
	"github.com/inactivist/aqimon/pkg/server"
	"github.com/inactivist/aqimon/pkg/store"
)

var (
	version = "0.1.0"
	commit  = "dev"
	date    = "unknown"
)

func main() {
	var (
		configPath  = flag.String("config", "", "Path to a configuration file (.toml or .yaml)")
		serverURL   = flag.String("server", "", "Dashboard: base URL of the aqimon server")
		listen      = flag.String("listen", "", "Server: listen address, e.g. :8787")
		dbPath      = flag.String("db", "", "Server: sqlite database path")
		sensorMode  = flag.String("sensor", "", "Server: sample source, sds011 or sim")
		device      = flag.String("device", "", "Server: serial device of the SDS011")
		runServe    = flag.Bool("serve", false, "Run the API server and read scheduler")
		runProbe    = flag.Bool("probe", false, "Take one sample, print it as JSON, and exit")
		logLevel    = flag.String("log-level", "", "Log level: debug, info, warn, or error")
		showVersion = flag.Bool("version", false, "Print version and exit")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("aqimon %s (%s) built %s\n", version, commit, date)
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	applyFlagOverrides(cfg, *serverURL, *listen, *dbPath, *sensorMode, *device, *logLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch {
	case *runProbe:
		err = probeOnce(ctx, cfg)
	case *runServe:
		err = serve(ctx, cfg)
	default:
		err = runDashboard(ctx, cfg)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "aqimon: %v\n", err)
		os.Exit(1)
	}
}

func applyFlagOverrides(cfg *config.Config, serverURL, listen, db, sensor, device, logLevel string) {
	if serverURL != "" {
		cfg.Dashboard.ServerURL = serverURL
	}
	if listen != "" {
		cfg.Server.Listen = listen
	}
	if db != "" {
		cfg.Store.Path = db
	}
	if sensor != "" {
		cfg.Reader.Mode = sensor
	}
	if device != "" {
		cfg.Reader.Device = device
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
}

// serve runs the read scheduler and the HTTP API until the context is
// canceled.
func serve(ctx context.Context, cfg *config.Config) error {
	log, closeLog, err := logging.New(cfg.Log.Level, cfg.Log.File)
	if err != nil {
		return err
	}
	defer closeLog()

	st, err := store.Open(cfg.Store.Path)
	if err != nil {
		return err
	}
	defer st.Close()

	sampler, closeSampler, err := buildSampler(cfg.Reader)
	if err != nil {
		return err
	}
	defer closeSampler()

	rd := reader.New(sampler, st, cfg.Reader.PollInterval.Duration, log)
	rd.Retention = cfg.Store.Retention.Duration
	go rd.Run(ctx)

	httpSrv := &http.Server{
		Addr:         cfg.Server.Listen,
		Handler:      server.New(st, rd, log).Routes(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpSrv.Shutdown(shutdownCtx)
	}()

	log.Infow("server listening",
		"addr", cfg.Server.Listen,
		"db", cfg.Store.Path,
		"sensor", cfg.Reader.Mode,
	)
	if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// buildSampler picks the sample source from config. The returned func
// releases the serial port for the sds011 mode.
func buildSampler(cfg config.ReaderConfig) (reader.Sampler, func(), error) {
	switch cfg.Mode {
	case "sds011":
		sensor, err := sds011.Open(cfg.Device)
		if err != nil {
			return nil, nil, fmt.Errorf("open sensor %s: %w", cfg.Device, err)
		}
		s := &reader.SensorSampler{
			Sensor:  sensor,
			Warmup:  cfg.Warmup.Duration,
			Samples: cfg.Samples,
			Gap:     cfg.SampleGap.Duration,
		}
		return s, func() { _ = sensor.Close() }, nil
	case "sim", "":
		return reader.NewSimulated(time.Now().UnixNano()), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown sensor mode %q (want sds011 or sim)", cfg.Mode)
	}
}

// probeOnce takes a single sample and prints it, for checking a sensor
// without starting the server.
func probeOnce(ctx context.Context, cfg *config.Config) error {
	sampler, closeSampler, err := buildSampler(cfg.Reader)
	if err != nil {
		return err
	}
	defer closeSampler()

	sample, err := sampler.Sample(ctx)
	if err != nil {
		return err
	}

	out := struct {
		PM25 float64 `json:"pm25"`
		PM10 float64 `json:"pm10"`
		EPA  float64 `json:"epa"`
	}{sample.PM25, sample.PM10, epa.AQI(sample.PM25, sample.PM10)}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func runDashboard(ctx context.Context, cfg *config.Config) error {
	if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		return errors.New("the dashboard needs a terminal; use -serve for headless mode")
	}
	if _, _, err := term.GetSize(os.Stdout.Fd()); err != nil {
		return fmt.Errorf("query terminal size: %w", err)
	}
	lipgloss.SetColorProfile(termenv.ColorProfile())

	// Dashboard logs go to a file so they don't tear the alt screen.
	logFile := cfg.Log.File
	if logFile == "" {
		logFile = filepath.Join(os.TempDir(), "aqimon.log")
	}
	log, closeLog, err := logging.New(cfg.Log.Level, logFile)
	if err != nil {
		return err
	}
	defer closeLog()

	c := client.New(cfg.Dashboard.ServerURL)
	m := dashboard.New(c, cfg.Dashboard.PollInterval.Duration)

	log.Infow("dashboard starting",
		"server", cfg.Dashboard.ServerURL,
		"poll", cfg.Dashboard.PollInterval.Duration,
	)
	p := tea.NewProgram(m,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	)
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	return nil
}
