package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/unkn0wn-root/restpad/internal/app"
	"github.com/unkn0wn-root/restpad/internal/config"
	"github.com/unkn0wn-root/restpad/internal/errdef"
	"github.com/unkn0wn-root/restpad/internal/httpclient"
	"github.com/unkn0wn-root/restpad/internal/store"
	"github.com/unkn0wn-root/restpad/internal/telemetry"
	"github.com/unkn0wn-root/restpad/internal/theme"
)

const telemetryShutdownTimeout = 5 * time.Second

type options struct {
	logLevel  string
	backend   string
	storePath string
	theme     string
	timeout   time.Duration
	insecure  bool
	noFollow  bool
	proxy     string
	http2     bool
	ephemeral bool
}

func bindFlags(fs *pflag.FlagSet, o *options) {
	fs.StringVar(&o.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	fs.StringVar(&o.backend, "backend", "", "State backend (sqlite, file, memory)")
	fs.StringVar(&o.storePath, "store", "", "Path of the state database or file")
	fs.StringVar(&o.theme, "theme", "", "Colour theme (light or dark)")
	fs.DurationVar(&o.timeout, "timeout", 0, "Request timeout")
	fs.BoolVar(&o.insecure, "insecure", false, "Skip TLS certificate verification")
	fs.BoolVar(&o.noFollow, "no-follow", false, "Do not follow redirects")
	fs.StringVar(&o.proxy, "proxy", "", "HTTP proxy URL")
	fs.BoolVar(&o.http2, "http2", false, "Negotiate HTTP/2 over TLS")
	fs.BoolVar(&o.ephemeral, "ephemeral", false, "Keep state in memory only")
}

// runtime holds what every command shares: settings, logger, state and client.
type runtime struct {
	settings  config.Settings
	log       *slog.Logger
	kv        store.KV
	client    *httpclient.Client
	telemetry telemetry.Instrumenter
	theme     theme.Mode
}

func openRuntime(cmd *cobra.Command, opts *options, logOut io.Writer) (*runtime, error) {
	settings, _, err := config.LoadSettings()
	if err != nil {
		return nil, err
	}
	applyFlags(cmd.Flags(), opts, &settings)

	logger := newLogger(logOut, settings.LogLevel)

	backend := store.Backend(settings.Storage.Backend)
	if opts.ephemeral {
		backend = store.BackendMemory
	}
	kvs, err := store.Open(backend, settings.Storage.StoragePath())
	if err != nil {
		return nil, err
	}

	httpOpts := httpclient.DefaultOptions()
	httpOpts.Timeout = settings.HTTP.TimeoutDuration()
	httpOpts.FollowRedirects = settings.HTTP.Follow()
	httpOpts.InsecureSkipVerify = settings.HTTP.Insecure
	httpOpts.ProxyURL = settings.HTTP.Proxy
	httpOpts.HTTP2 = settings.HTTP.HTTP2
	client := httpclient.NewClient(httpOpts)

	telemetryCfg := telemetryConfig(settings)
	instr, err := telemetry.New(telemetryCfg)
	if err != nil {
		logger.Warn("telemetry init error", "err", err)
		instr = telemetry.Noop()
	}
	client.SetTelemetry(instr)

	mode := theme.Load(kvs, settings.DefaultTheme, theme.Detect)
	if forced, ok := theme.ParseMode(opts.theme); ok {
		mode = forced
	}

	logger.Debug(
		"runtime ready",
		"backend", backend,
		"store", settings.Storage.StoragePath(),
		"timeout", httpOpts.Timeout,
		"telemetry", telemetryCfg.Enabled(),
	)
	return &runtime{
		settings:  settings,
		log:       logger,
		kv:        kvs,
		client:    client,
		telemetry: instr,
		theme:     mode,
	}, nil
}

// controller builds and loads the request controller over the runtime state.
func (rt *runtime) controller(ctx context.Context) (*app.Controller, error) {
	ctrl := app.New(ctx, app.Config{
		KV:        rt.kv,
		Transport: rt.client,
		Logger:    rt.log,
		Theme:     rt.theme,
	})
	if err := ctrl.Load(); err != nil {
		return nil, err
	}
	return ctrl, nil
}

func (rt *runtime) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), telemetryShutdownTimeout)
	defer cancel()
	if err := rt.telemetry.Shutdown(ctx); err != nil {
		rt.log.Warn("telemetry shutdown", "err", err)
	}
	if err := store.Close(rt.kv); err != nil {
		rt.log.Warn("close store", "err", err)
	}
}

// applyFlags lets explicitly set flags override the loaded settings.
func applyFlags(fs *pflag.FlagSet, o *options, s *config.Settings) {
	if fs.Changed("log-level") {
		s.LogLevel = o.logLevel
	}
	if fs.Changed("backend") {
		s.Storage.Backend = o.backend
	}
	if fs.Changed("store") {
		s.Storage.Path = o.storePath
	}
	if fs.Changed("timeout") {
		s.HTTP.Timeout = o.timeout.String()
	}
	if fs.Changed("insecure") {
		s.HTTP.Insecure = o.insecure
	}
	if fs.Changed("no-follow") {
		follow := !o.noFollow
		s.HTTP.FollowRedirects = &follow
	}
	if fs.Changed("proxy") {
		s.HTTP.Proxy = o.proxy
	}
	if fs.Changed("http2") {
		s.HTTP.HTTP2 = o.http2
	}
}

// telemetryConfig starts from the settings file and lets OTEL_* variables win.
func telemetryConfig(s config.Settings) telemetry.Config {
	cfg := telemetry.ConfigFromEnv(os.Getenv)
	if cfg.Endpoint == "" {
		cfg.Endpoint = strings.TrimSpace(s.Telemetry.Endpoint)
		cfg.Insecure = s.Telemetry.Insecure
	}
	if os.Getenv("OTEL_SERVICE_NAME") == "" && strings.TrimSpace(s.Telemetry.ServiceName) != "" {
		cfg.ServiceName = strings.TrimSpace(s.Telemetry.ServiceName)
	}
	cfg.Version = version
	return cfg
}

func newLogger(w io.Writer, level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(level))); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl}))
}

func openLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, errdef.Wrap(errdef.CodeFilesystem, err, "create log dir")
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, errdef.Wrap(errdef.CodeFilesystem, err, "open log file %q", path)
	}
	return f, nil
}
