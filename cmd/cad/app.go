package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/amonks/cadence/events"
	"github.com/amonks/cadence/internal/config"
	"github.com/amonks/cadence/internal/logging"
	"github.com/amonks/cadence/internal/paths"
	"github.com/amonks/cadence/internal/snapshot"
	"github.com/amonks/cadence/review"
	"github.com/amonks/cadence/task"
	"github.com/spf13/cobra"
)

// app holds the stores for one command invocation.
type app struct {
	cfg       *config.Config
	logger    *slog.Logger
	writer    *snapshot.Writer
	publisher events.Publisher
	tasks     *task.Store
	reviews   *review.Scheduler
	now       func() time.Time
}

func openApp() (*app, error) {
	cwd, err := paths.WorkingDir()
	if err != nil {
		return nil, err
	}
	cfg, err := config.LoadWithOverrides(cwd, config.Overrides{
		StateDir: rootStateDir,
		Backend:  rootBackend,
		LogLevel: rootLogLevel,
	})
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(logging.Options{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Writer: os.Stderr,
	})
	if err != nil {
		return nil, err
	}

	backend, err := snapshot.Open(cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("open %s storage: %w", cfg.Storage.Backend, err)
	}
	writer := snapshot.NewWriter(backend, logger)

	var publisher events.Publisher = events.Discard{}
	if cfg.Events.KafkaBrokers != "" {
		kafkaPublisher, err := events.NewKafkaPublisher(cfg.Events.KafkaBrokers, cfg.Events.KafkaTopic, logger)
		if err != nil {
			writer.Close()
			return nil, err
		}
		publisher = kafkaPublisher
		logger.Debug("publishing events", "brokers", cfg.Events.KafkaBrokers, "topic", cfg.Events.KafkaTopic)
	}

	a := &app{
		cfg:       cfg,
		logger:    logger,
		writer:    writer,
		publisher: publisher,
		now:       time.Now,
	}

	a.tasks, err = task.Open(task.Options{Persister: writer, Logger: logger, Events: publisher, Now: a.now})
	if err != nil {
		a.Close()
		return nil, err
	}
	a.reviews, err = review.Open(review.Options{Persister: writer, Logger: logger, Events: publisher, Now: a.now})
	if err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

// Close drains pending snapshot writes and event publishes.
func (a *app) Close() error {
	return errors.Join(a.writer.Close(), a.publisher.Close())
}

// withApp wraps a command body so the stores are opened before it runs and
// flushed after, whatever it returns.
func withApp(run func(a *app, cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) (err error) {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer func() {
			if closeErr := a.Close(); closeErr != nil && err == nil {
				err = closeErr
			}
		}()
		return run(a, cmd, args)
	}
}
