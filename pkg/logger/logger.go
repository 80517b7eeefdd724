package logger

import (
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

const (
	FormatJSON = "json"
	FormatText = "text"
)

var Logger *logrus.Logger

// Options selects level, format and destination of a logger. An empty
// Level means debug in development and info elsewhere; an empty Format
// means text in development and json elsewhere.
type Options struct {
	Level       string
	Format      string
	Development bool
	Output      io.Writer
}

// New builds a logger from opts without touching the global instance
func New(opts Options) *logrus.Logger {
	log := logrus.New()

	level := strings.ToLower(opts.Level)
	if level == "" {
		level = "info"
		if opts.Development {
			level = "debug"
		}
	}
	if parsed, err := logrus.ParseLevel(level); err == nil {
		log.SetLevel(parsed)
	} else {
		log.SetLevel(logrus.InfoLevel)
		log.WithField("invalid_level", opts.Level).Warn("Invalid LOG_LEVEL, using INFO")
	}

	format := strings.ToLower(opts.Format)
	if format == "" {
		format = FormatJSON
		if opts.Development {
			format = FormatText
		}
	}
	if format == FormatJSON {
		log.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
		})
	} else {
		log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05",
			ForceColors:     opts.Output == nil,
		})
	}

	if opts.Output != nil {
		log.SetOutput(opts.Output)
	} else {
		log.SetOutput(os.Stdout)
	}

	return log
}

// InitLogger builds a logger and installs it as the global instance
func InitLogger(opts Options) *logrus.Logger {
	Logger = New(opts)
	return Logger
}

// GetLogger returns the global logger instance
func GetLogger() *logrus.Logger {
	if Logger == nil {
		return InitLogger(Options{})
	}
	return Logger
}

// WithRunContext scopes base to a single simulation run
func WithRunContext(base logrus.FieldLogger, runID string, numSimulations, numTeams int) *logrus.Entry {
	return base.WithFields(logrus.Fields{
		"run_id":          runID,
		"num_simulations": numSimulations,
		"num_teams":       numTeams,
	})
}

// WithHTTPContext scopes base to an incoming request
func WithHTTPContext(base logrus.FieldLogger, r *http.Request) *logrus.Entry {
	return base.WithFields(logrus.Fields{
		"http_method":     r.Method,
		"http_path":       r.URL.Path,
		"http_user_agent": r.UserAgent(),
	})
}
