package cli

import (
	"context"
	"log/slog"

	"github.com/nats-io/nats.go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/roach88/quadstore/internal/config"
	"github.com/roach88/quadstore/internal/notify"
	"github.com/roach88/quadstore/internal/quadstore"
)

// session is one command's configured store plus its observers.
type session struct {
	cfg      *config.Config
	store    *quadstore.Store
	registry *prometheus.Registry
	nc       *nats.Conn
	logger   *slog.Logger
}

// loadConfig reads the config selected by --config and the environment.
func loadConfig(opts *RootOptions) (*config.Config, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load config", err)
	}
	return cfg, nil
}

// openSession builds the store for cfg with the metrics and log observers,
// and the NATS publisher when a NATS URL is configured. No backend
// connection is made until the first store operation.
func openSession(opts *RootOptions) (*session, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}
	logger := opts.logger()

	registry := prometheus.NewRegistry()
	metrics, err := notify.NewMetrics(cfg.Metrics.Namespace, registry)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to register metrics", err)
	}

	storeOpts := []quadstore.Option{
		quadstore.WithLogger(logger),
		quadstore.WithObserver(metrics),
		quadstore.WithObserver(notify.LogObserver{Logger: logger}),
	}

	var nc *nats.Conn
	if cfg.NATS.URL != "" {
		nc, err = notify.ConnectNATS(cfg.NATS.URL)
		if err != nil {
			return nil, WrapExitError(ExitFailure, "failed to connect to NATS", err)
		}
		storeOpts = append(storeOpts,
			quadstore.WithObserver(notify.NewNATSPublisher(nc, cfg.NATS.SubjectPrefix, logger)))
		logger.Debug("publishing events", "nats", cfg.NATS.URL, "prefix", cfg.NATS.SubjectPrefix)
	}

	st, err := quadstore.Open(cfg, storeOpts...)
	if err != nil {
		if nc != nil {
			nc.Close()
		}
		return nil, WrapExitError(ExitCommandError, "failed to open store", err)
	}

	logger.Debug("store configured", "backend", cfg.Backend, "collection", cfg.Collection)
	return &session{
		cfg:      cfg,
		store:    st,
		registry: registry,
		nc:       nc,
		logger:   logger,
	}, nil
}

// Close releases the store, flushes pending NATS publishes and writes the
// metrics textfile. Failures are logged; the command's result stands.
func (s *session) Close(ctx context.Context) {
	if err := s.store.Close(ctx); err != nil {
		s.logger.Error("error closing store", "error", err)
	}
	if s.nc != nil {
		if err := s.nc.Flush(); err != nil {
			s.logger.Error("error flushing NATS connection", "error", err)
		}
		s.nc.Close()
	}
	if path := s.cfg.Metrics.Textfile; path != "" {
		if err := notify.WriteTextfile(path, s.registry); err != nil {
			s.logger.Error("error writing metrics", "path", path, "error", err)
		}
	}
}

// commandContext returns the command's context, or Background.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// formatter builds the output formatter for cmd.
func formatter(opts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
}
