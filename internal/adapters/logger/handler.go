package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/muesli/termenv"
	"go.trai.ch/pour/internal/ui/output"
	"go.trai.ch/pour/internal/ui/style"
)

// PrettyHandler is a slog.Handler that writes one colored line per record.
// Attributes are appended as key=value pairs, keys prefixed by the open groups.
type PrettyHandler struct {
	out    *termenv.Output
	level  slog.Leveler
	attrs  []string
	prefix string
}

// NewPrettyHandler creates a new PrettyHandler writing to the provided writer.
func NewPrettyHandler(w io.Writer, opts *slog.HandlerOptions) *PrettyHandler {
	if w == nil {
		w = os.Stderr
	}

	var level slog.Leveler = slog.LevelInfo
	if opts != nil && opts.Level != nil {
		level = opts.Level
	}

	return &PrettyHandler{
		out:   output.New(w, output.Terminal),
		level: level,
	}
}

// Enabled reports whether the handler handles records at the given level.
func (h *PrettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

// Handle formats and outputs the log record.
//
//nolint:gocritic // slog.Handler interface requires slog.Record by value
func (h *PrettyHandler) Handle(_ context.Context, r slog.Record) error {
	msg, color := decorate(r.Level, r.Message)

	parts := append([]string{msg}, h.attrs...)
	r.Attrs(func(attr slog.Attr) bool {
		parts = append(parts, h.prefix+attr.Key+"="+attr.Value.String())
		return true
	})

	styled := h.out.String(strings.Join(parts, " ")).Foreground(color)
	_, err := h.out.WriteString(styled.String() + "\n")
	return err
}

// decorate picks the icon and color of a line. Notifications keep their bell
// and stand out from ordinary progress lines.
func decorate(level slog.Level, msg string) (string, termenv.Color) {
	switch {
	case level >= slog.LevelError:
		return style.Cross + " " + msg, termenv.RGBColor(string(style.Red))
	case level >= slog.LevelWarn:
		return style.Warning + " " + msg, termenv.RGBColor(string(style.Yellow))
	case strings.HasPrefix(msg, style.Bell):
		return msg, termenv.RGBColor(string(style.Amber))
	default:
		return msg, termenv.RGBColor(string(style.Slate))
	}
}

// WithAttrs returns a new Handler with the given attributes appended.
func (h *PrettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := h.clone()
	for _, attr := range attrs {
		next.attrs = append(next.attrs, h.prefix+attr.Key+"="+attr.Value.String())
	}
	return next
}

// WithGroup returns a new Handler that nests further keys under name.
func (h *PrettyHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := h.clone()
	next.prefix += name + "."
	return next
}

func (h *PrettyHandler) clone() *PrettyHandler {
	return &PrettyHandler{
		out:    h.out,
		level:  h.level,
		attrs:  append([]string(nil), h.attrs...),
		prefix: h.prefix,
	}
}
