package workflow

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/aravindh-murugesan/gce-disk-snapshot-go/internal/cloud"
	"github.com/aravindh-murugesan/gce-disk-snapshot-go/internal/cloud/gcloud"
	"github.com/aravindh-murugesan/gce-disk-snapshot-go/internal/cloud/openstack"
	"github.com/lmittmann/tint"
	slogmulti "github.com/samber/slog-multi"
)

// SyslogTag identifies this program's messages in the system log.
const SyslogTag = "gce-disk-snapshot"

// parseLevel maps the --log-level values onto slog levels, defaulting to info.
func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// SetupLogger configures the application-wide logger.
//
// Records go to stdout through "tint" (colorized unless NO_COLOR is set) and, when
// useSyslog is true, to the system log. Failures of either sink are reported on
// stdout and never interrupt the caller.
func SetupLogger(level string, useSyslog bool) *slog.Logger {
	return newLogger(os.Stdout, parseLevel(level), useSyslog, dialSyslog)
}

func newLogger(out io.Writer, level slog.Level, useSyslog bool, dial func(tag string) (syslogWriter, error)) *slog.Logger {
	report := func(err error) {
		fmt.Fprintf(out, "Logging exception: %v\n", err)
	}
	recovery := slogmulti.RecoverHandlerError(func(_ context.Context, _ slog.Record, err error) {
		report(err)
	})

	handlers := []slog.Handler{
		tint.NewHandler(out, &tint.Options{
			Level:      level,
			TimeFormat: time.DateTime,
			NoColor:    os.Getenv("NO_COLOR") != "",
		}),
	}

	if useSyslog {
		w, err := dial(SyslogTag)
		if err != nil {
			report(err)
		} else {
			handlers = append(handlers, newSyslogHandler(w, level))
		}
	}

	// Sink failures are reported on stdout.
	for i, h := range handlers {
		handlers[i] = slogmulti.Pipe(recovery).Handler(h)
	}

	logger := slog.New(slogmulti.Fanout(handlers...))
	slog.SetDefault(logger)
	return logger
}

// newProvider builds the configured cloud backend.
// For gcloud this locates the binary, so a missing installation fails here.
func newProvider(ctx context.Context, cfg Config) (cloud.Provider, error) {
	switch cfg.Provider {
	case "", ProviderGcloud:
		client, err := gcloud.NewClient()
		if err != nil {
			return nil, err
		}
		return client, nil
	case ProviderOpenstack:
		client := &openstack.Client{ProfileName: cfg.CloudProfile}
		if err := client.NewClient(ctx); err != nil {
			return nil, err
		}
		return client, nil
	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Provider)
	}
}
