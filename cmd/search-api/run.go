package main

import (
	"context"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/contentgrid/content-search/internal/acl"
	apiserver "github.com/contentgrid/content-search/internal/api_server"
	"github.com/contentgrid/content-search/internal/config"
	"github.com/contentgrid/content-search/internal/events"
	"github.com/contentgrid/content-search/internal/index"
	"github.com/contentgrid/content-search/internal/ingest"
	"github.com/contentgrid/content-search/internal/repo"
	"github.com/contentgrid/content-search/internal/store"
	"github.com/contentgrid/content-search/pkg/log"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the search api",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.New()
		if err != nil {
			return err
		}

		logLvl, err := zap.ParseAtomicLevel(cfg.Service.LogLevel)
		if err != nil {
			logLvl = zap.NewAtomicLevelAt(zap.InfoLevel)
		}

		logger := log.InitLog(logLvl)
		defer func() { _ = logger.Sync() }()
		undo := zap.ReplaceGlobals(logger)
		defer undo()

		zap.S().Info("Starting API service")
		defer zap.S().Info("API service stopped")

		zap.S().Info("Initializing data store")
		db, err := store.InitDB(cfg)
		if err != nil {
			zap.S().Fatalw("initializing data store", "error", err)
		}

		s := store.NewStore(db)
		defer s.Close()

		if err := s.InitialMigration(); err != nil {
			zap.S().Fatalw("running initial migration", "error", err)
		}

		directory := repo.NewInMemoryDirectory()
		if cfg.Service.DirectoryFile != "" {
			directory, err = repo.LoadDirectory(cfg.Service.DirectoryFile)
			if err != nil {
				zap.S().Fatalw("loading directory seed", "error", err, "path", cfg.Service.DirectoryFile)
			}
		} else {
			zap.S().Warn("no directory seed configured (CONTENT_SEARCH_DIRECTORY_FILE); site lookups run against an empty directory and site-bearing events will exhaust their retries")
		}
		resolver := acl.NewResolver(directory, cfg.Service.Ingest.LookupTimeout)
		tracker := index.NewTracker()

		writerOpts := []index.WriterOption{}
		producer := newEventProducer(cfg)
		if producer != nil {
			defer func() { _ = producer.Close() }()
			writerOpts = append(writerOpts, index.WithEventProducer(producer))
		}
		writer := index.NewWriter(s, resolver, tracker, writerOpts...)

		dispatcher := ingest.NewDispatcher(writer,
			ingest.WithWorkers(cfg.Service.Ingest.Workers),
			ingest.WithMaxRetries(cfg.Service.Ingest.MaxRetries),
			ingest.WithRetryBackoff(cfg.Service.Ingest.RetryBackoff),
		)

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGHUP, syscall.SIGTERM, syscall.SIGQUIT)
		defer cancel()

		dispatcher.Start(ctx)
		defer dispatcher.Stop()

		if len(cfg.Service.Kafka.Brokers) > 0 {
			source := ingest.NewKafkaSource(cfg.Service.Kafka.Brokers, cfg.Service.Kafka.Topic, cfg.Service.Kafka.GroupID)
			defer source.Close()
			go func() {
				defer cancel()
				if err := source.Run(ctx, dispatcher); err != nil {
					zap.S().Errorw("kafka source stopped", "error", err)
				}
			}()
		} else {
			zap.S().Warn("no kafka brokers configured, ingestion source disabled")
		}

		go func() {
			defer cancel()
			listener, err := newListener(cfg.Service.Address)
			if err != nil {
				zap.S().Fatalw("creating listener", "error", err)
			}

			server := apiserver.New(cfg, s, tracker, listener)
			if err := server.Run(ctx); err != nil {
				zap.S().Fatalw("running api server", "error", err)
			}
		}()

		go func() {
			defer cancel()
			listener, err := newListener(cfg.Service.MetricsAddress)
			if err != nil {
				zap.S().Fatalw("creating metrics listener", "error", err)
			}

			metricsServer := apiserver.NewMetricServer(cfg.Service.MetricsAddress, listener)
			if err := metricsServer.Run(ctx); err != nil {
				zap.S().Fatalw("running metrics server", "error", err)
			}
		}()

		<-ctx.Done()

		if unapplied := dispatcher.Unapplied(); len(unapplied) > 0 {
			zap.S().Warnw("shutting down with unapplied change events", "count", len(unapplied))
		}
		return nil
	},
}

func newEventProducer(cfg *config.Config) *events.EventProducer {
	opts := []events.ProducerOptions{}
	if cfg.Service.Kafka.EventsTopic != "" {
		opts = append(opts, events.WithOutputTopic(cfg.Service.Kafka.EventsTopic))
	}

	if len(cfg.Service.Kafka.Brokers) > 0 {
		return events.NewEventProducer(events.NewKafkaWriter(cfg.Service.Kafka.Brokers), opts...)
	}
	return events.NewEventProducer(&events.StdoutWriter{}, opts...)
}

func newListener(address string) (net.Listener, error) {
	if address == "" {
		address = "localhost:0"
	}
	return net.Listen("tcp", address)
}
