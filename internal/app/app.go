// Package app implements the rolecall command-line verbs on top of the posting manager and the
// listing tracker.
package app

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"

	"github.com/KhushiMandaliya2/RoleCall/internal/api"
	"github.com/KhushiMandaliya2/RoleCall/internal/config"
	"github.com/KhushiMandaliya2/RoleCall/internal/listings"
	"github.com/KhushiMandaliya2/RoleCall/internal/logging"
	"github.com/KhushiMandaliya2/RoleCall/internal/metrics"
	"github.com/KhushiMandaliya2/RoleCall/internal/postings"
	"github.com/KhushiMandaliya2/RoleCall/internal/render"
)

// App holds everything a command needs. Out and In default to stdout and stdin.
type App struct {
	Config *config.Config
	Out    io.Writer
	In     io.Reader
	Logger *slog.Logger

	registry *prometheus.Registry
	printer  *render.Printer
	postings *postings.Manager
	tracker  *listings.Tracker
}

// New wires an App from cfg.
func New(cfg *config.Config, out io.Writer, in io.Reader, logger *slog.Logger) (*App, error) {
	if out == nil {
		out = os.Stdout
	}
	if in == nil {
		in = os.Stdin
	}
	if logger == nil {
		logger = logging.Discard()
	}

	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	client, err := api.New(cfg.BaseURL, cfg.APIOptions(logger, collector))
	if err != nil {
		return nil, fmt.Errorf("failed to create API client: %w", err)
	}

	return &App{
		Config:   cfg,
		Out:      out,
		In:       in,
		Logger:   logger,
		registry: registry,
		printer:  render.NewPrinter(out).WithColor(!cfg.NoColor),
		postings: postings.New(client,
			postings.WithLogger(logger.With(slog.String("component", "postings"))),
			postings.WithMetrics(collector),
		),
		tracker: listings.New(client,
			listings.WithLogger(logger.With(slog.String("component", "listings"))),
			listings.WithMetrics(collector),
		),
	}, nil
}

// WriteMetrics writes the metrics collected so far in the Prometheus text format.
func (a *App) WriteMetrics(w io.Writer) error {
	families, err := a.registry.Gather()
	if err != nil {
		return fmt.Errorf("failed to gather metrics: %w", err)
	}
	enc := expfmt.NewEncoder(w, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			return fmt.Errorf("failed to encode metrics: %w", err)
		}
	}
	return nil
}

// confirm asks question on Out and reads a yes/no answer from In. Anything but y or yes is no.
//
//nolint:errcheck // writing to the terminal; errors are not recoverable
func (a *App) confirm(question string) bool {
	fmt.Fprintf(a.Out, "%s [y/N]: ", question)
	answer, err := bufio.NewReader(a.In).ReadString('\n')
	if err != nil && answer == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}
