package logging

import (
	"os"
	"runtime"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// StartupLogger collects the command identity, backend endpoint and
// effective configuration, then emits a single structured zerolog event
// summarising how the run was configured.
type StartupLogger struct {
	command      string
	version      string
	endpoint     string
	initDuration time.Duration

	features map[string]bool
	config   map[string]string
}

// NewStartupLogger creates a StartupLogger for the given subcommand
// (e.g. "analyze", "run").
func NewStartupLogger(command string) *StartupLogger {
	return &StartupLogger{
		command:  command,
		features: make(map[string]bool),
		config:   make(map[string]string),
	}
}

// Version sets the build version.
func (s *StartupLogger) Version(v string) *StartupLogger {
	s.version = v
	return s
}

// Endpoint sets the backend base URL.
func (s *StartupLogger) Endpoint(u string) *StartupLogger {
	s.endpoint = u
	return s
}

// Feature registers a boolean feature flag (e.g. "metrics", "bundle").
func (s *StartupLogger) Feature(name string, enabled bool) *StartupLogger {
	s.features[name] = enabled
	return s
}

// Config registers a non-sensitive configuration key-value pair.
func (s *StartupLogger) Config(key, value string) *StartupLogger {
	s.config[key] = value
	return s
}

// InitDuration records how long setup took.
func (s *StartupLogger) InitDuration(d time.Duration) *StartupLogger {
	s.initDuration = d
	return s
}

// Log emits a single structured DEBUG log event with all collected information.
func (s *StartupLogger) Log() {
	evt := log.Debug()

	cmd := zerolog.Dict().
		Str("name", s.command).
		Str("goVersion", runtime.Version()).
		Str("arch", runtime.GOARCH).
		Str("logLevel", os.Getenv(LevelEnv))
	if s.version != "" {
		cmd = cmd.Str("version", s.version)
	}
	evt = evt.Dict("command", cmd)

	if s.endpoint != "" {
		evt = evt.Str("endpoint", s.endpoint)
	}

	if len(s.features) > 0 {
		d := zerolog.Dict()
		for k, v := range s.features {
			d = d.Bool(k, v)
		}
		evt = evt.Dict("features", d)
	}

	if len(s.config) > 0 {
		evt = evt.Dict("config", dictFromMap(s.config))
	}

	if s.initDuration > 0 {
		evt = evt.Dur("initDuration", s.initDuration)
	}

	evt.Msg("Studio configured")
}

// dictFromMap converts a map[string]string into a zerolog.Event (Dict).
func dictFromMap(m map[string]string) *zerolog.Event {
	d := zerolog.Dict()
	for k, v := range m {
		d = d.Str(k, v)
	}
	return d
}
