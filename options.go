package xlsxchart

import (
	"io"
	"log/slog"
	"time"
)

// Options holds configuration for the Generator.
type Options struct {
	logger        *slog.Logger
	vars          map[string]any
	notationBegin string
	notationEnd   string
	modified      time.Time
	encoding      Encoding
	oneSheet      *bool
}

func defaultOptions() *Options {
	return &Options{
		logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
		notationBegin: "${",
		notationEnd:   "}",
	}
}

// Option configures the Generator.
type Option func(*Options)

// WithLogger sets the structured logger (default: discard).
func WithLogger(l *slog.Logger) Option {
	return func(o *Options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithVars adds variables available to ${...} title templates. Variables
// given in the input document's "vars" record take precedence.
func WithVars(vars map[string]any) Option {
	return func(o *Options) {
		if o.vars == nil {
			o.vars = make(map[string]any, len(vars))
		}
		for k, v := range vars {
			o.vars[k] = v
		}
	}
}

// WithNotation sets the template delimiters (default: "${", "}").
func WithNotation(begin, end string) Option {
	return func(o *Options) {
		o.notationBegin = begin
		o.notationEnd = end
	}
}

// WithModified stamps archive entries with t instead of the fixed default.
func WithModified(t time.Time) Option {
	return func(o *Options) { o.modified = t }
}

// WithOutputEncoding overrides the outputEncoding given in the input.
func WithOutputEncoding(enc Encoding) Option {
	return func(o *Options) { o.encoding = enc }
}

// WithOneSheetPerChart overrides the input's oneSheetPerChart setting.
func WithOneSheetPerChart(v bool) Option {
	return func(o *Options) { o.oneSheet = &v }
}
