package config

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/atomicstack/navstate/internal/app"
)

// Config captures runtime configuration for the application.
type Config struct {
	App      app.Config
	Logging  Logging
	Features Features
	Flags    map[string]string
	Args     []string
}

type Logging struct {
	FilePath string
	Trace    bool
}

type Features struct {
	Verbose bool
}

const (
	envGraph       = "NAVSTATE_GRAPH"
	envStart       = "NAVSTATE_START"
	envLink        = "NAVSTATE_LINK"
	envLinkMode    = "NAVSTATE_LINK_MODE"
	envStateDir    = "NAVSTATE_STATE_DIR"
	envSession     = "NAVSTATE_SESSION"
	envExpanded    = "NAVSTATE_EXPANDED"
	envLocale      = "NAVSTATE_LOCALE"
	envWidth       = "NAVSTATE_WIDTH"
	envHeight      = "NAVSTATE_HEIGHT"
	envShowFooter  = "NAVSTATE_FOOTER"
	envVerbose     = "NAVSTATE_VERBOSE"
	envTrace       = "NAVSTATE_TRACE"
	envLogFile     = "NAVSTATE_LOG_FILE"
	envMetricsAddr = "NAVSTATE_METRICS_ADDR"
	envWatch       = "NAVSTATE_WATCH"
	envWatchEvery  = "NAVSTATE_WATCH_INTERVAL"
)

// Load parses configuration from CLI arguments and environment variables.
func Load() (Config, error) {
	return LoadArgs(os.Args[1:], os.Environ())
}

// LoadArgs allows tests to supply specific args/environment.
func LoadArgs(args []string, environ []string) (Config, error) {
	env := parseEnv(environ)

	fs := flag.NewFlagSet("navstate", flag.ContinueOnError)
	fs.SetOutput(new(strings.Builder))

	graph := fs.String("graph", envOrDefault(env, envGraph, ""), "path to the navigation graph (.yaml, .yml or .toml)")
	start := fs.String("start", envOrDefault(env, envStart, ""), "start destination route (defaults to the graph's start)")
	link := fs.String("link", envOrDefault(env, envLink, ""), "deep link to open on startup")
	linkMode := fs.String("link-mode", envOrDefault(env, envLinkMode, "replace"), "how --link is applied: replace or graft")
	stateDir := fs.String("state-dir", envOrDefault(env, envStateDir, ""), "directory for saved navigation snapshots (empty disables persistence)")
	session := fs.String("session", envOrDefault(env, envSession, "default"), "snapshot name to restore and save")
	expanded := fs.Bool("expanded", envOrBool(env, envExpanded, false), "start in expanded window mode")
	locale := fs.String("locale", envOrDefault(env, envLocale, ""), "label locale, e.g. de or en-GB")
	width := fs.Int("width", envOrInt(env, envWidth, 0), "desired viewport width in cells (0 uses terminal width)")
	height := fs.Int("height", envOrInt(env, envHeight, 0), "desired viewport height in rows (0 uses terminal height)")
	footer := fs.Bool("footer", envOrBool(env, envShowFooter, false), "enable footer hint row (disabled by default)")
	trace := fs.Bool("trace", envOrBool(env, envTrace, false), "enable verbose JSON trace logging")
	verbose := fs.Bool("verbose", envOrBool(env, envVerbose, false), "print success messages for navigation")
	logFile := fs.String("log-file", envOrDefault(env, envLogFile, ""), "path to the log file")
	metricsAddr := fs.String("metrics-addr", envOrDefault(env, envMetricsAddr, ""), "serve Prometheus metrics on host:port")
	watch := fs.Bool("watch", envOrBool(env, envWatch, true), "reload the graph file when it changes")
	watchEvery := fs.Duration("watch-interval", envOrDuration(env, envWatchEvery, 250*time.Millisecond), "minimum time between graph reloads")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if *width < 0 {
		return Config{}, fmt.Errorf("width must be >= 0 (got %d)", *width)
	}
	if *height < 0 {
		return Config{}, fmt.Errorf("height must be >= 0 (got %d)", *height)
	}
	if *watchEvery < 0 {
		return Config{}, fmt.Errorf("watch-interval must be >= 0 (got %s)", *watchEvery)
	}
	if *graph == "" && fs.NArg() > 0 {
		*graph = fs.Arg(0)
	}

	cfg := Config{
		App: app.Config{
			GraphPath:   *graph,
			Start:       *start,
			Link:        *link,
			LinkMode:    *linkMode,
			StateDir:    *stateDir,
			Session:     *session,
			Expanded:    *expanded,
			Locale:      *locale,
			Width:       *width,
			Height:      *height,
			ShowFooter:  *footer,
			Verbose:     *verbose,
			MetricsAddr: *metricsAddr,
			Watch:       *watch,
			WatchEvery:  *watchEvery,
		},
		Logging: Logging{
			FilePath: *logFile,
			Trace:    *trace,
		},
		Features: Features{
			Verbose: *verbose,
		},
		Flags: map[string]string{
			"graph":       *graph,
			"start":       *start,
			"link":        *link,
			"linkMode":    *linkMode,
			"stateDir":    *stateDir,
			"session":     *session,
			"expanded":    strconv.FormatBool(*expanded),
			"locale":      *locale,
			"width":       strconv.Itoa(*width),
			"height":      strconv.Itoa(*height),
			"footer":      strconv.FormatBool(*footer),
			"trace":       strconv.FormatBool(*trace),
			"verbose":     strconv.FormatBool(*verbose),
			"logFile":     *logFile,
			"metricsAddr": *metricsAddr,
			"watch":       strconv.FormatBool(*watch),
			"watchEvery":  watchEvery.String(),
		},
		Args: append([]string(nil), args...),
	}

	return cfg, nil
}

func parseEnv(environ []string) map[string]string {
	values := make(map[string]string, len(environ))
	for _, entry := range environ {
		if entry == "" {
			continue
		}
		parts := strings.SplitN(entry, "=", 2)
		if len(parts) != 2 {
			continue
		}
		values[parts[0]] = parts[1]
	}
	return values
}

func envOrDefault(env map[string]string, key, fallback string) string {
	if v, ok := env[key]; ok {
		return v
	}
	return fallback
}

func envOrInt(env map[string]string, key string, fallback int) int {
	v, ok := env[key]
	if !ok || strings.TrimSpace(v) == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return parsed
}

func envOrDuration(env map[string]string, key string, fallback time.Duration) time.Duration {
	v, ok := env[key]
	if !ok || strings.TrimSpace(v) == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return parsed
}

func envOrBool(env map[string]string, key string, fallback bool) bool {
	v, ok := env[key]
	if !ok || strings.TrimSpace(v) == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return parsed
}

// MustLoad returns configuration or exits.
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(2)
	}
	return cfg
}

var validate = validator.New()

// Validate checks the application options against their struct tags.
func Validate(cfg Config) error {
	if err := validate.Struct(cfg.App); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}
