package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
)

// syslogWriter is the subset of *syslog.Writer used for logging.
type syslogWriter interface {
	Debug(m string) error
	Info(m string) error
	Warning(m string) error
	Err(m string) error
}

// syslogHandler renders records as "message key=value ..." lines
// and writes them with the syslog severity matching their level.
type syslogHandler struct {
	w      syslogWriter
	level  slog.Leveler
	prefix string // group prefix for attributes added later
	attrs  string // preformatted attributes from WithAttrs
}

func newSyslogHandler(w syslogWriter, level slog.Leveler) *syslogHandler {
	return &syslogHandler{w: w, level: level}
}

func (h *syslogHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *syslogHandler) Handle(_ context.Context, r slog.Record) error {
	var b strings.Builder
	b.WriteString(r.Message)
	b.WriteString(h.attrs)
	r.Attrs(func(a slog.Attr) bool {
		appendAttr(&b, h.prefix, a)
		return true
	})

	msg := b.String()
	var err error
	switch {
	case r.Level >= slog.LevelError:
		err = h.w.Err(msg)
	case r.Level >= slog.LevelWarn:
		err = h.w.Warning(msg)
	case r.Level >= slog.LevelInfo:
		err = h.w.Info(msg)
	default:
		err = h.w.Debug(msg)
	}
	if err != nil {
		return fmt.Errorf("syslog: %w", err)
	}
	return nil
}

func (h *syslogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	var b strings.Builder
	b.WriteString(h.attrs)
	for _, a := range attrs {
		appendAttr(&b, h.prefix, a)
	}
	next := *h
	next.attrs = b.String()
	return &next
}

func (h *syslogHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := *h
	next.prefix = h.prefix + name + "."
	return &next
}

func appendAttr(b *strings.Builder, prefix string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}

	if a.Value.Kind() == slog.KindGroup {
		groupPrefix := prefix
		if a.Key != "" {
			groupPrefix = prefix + a.Key + "."
		}
		for _, sub := range a.Value.Group() {
			appendAttr(b, groupPrefix, sub)
		}
		return
	}

	value := a.Value.String()
	if value == "" || strings.ContainsAny(value, " \t\n\"=") {
		value = strconv.Quote(value)
	}
	b.WriteString(" ")
	b.WriteString(prefix)
	b.WriteString(a.Key)
	b.WriteString("=")
	b.WriteString(value)
}

var errSyslogUnsupported = errors.New("syslog is not supported on this platform")
