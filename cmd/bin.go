package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/flakewatch/flakewatch/config"
	"github.com/flakewatch/flakewatch/pkg/analysisqueue"
	"github.com/flakewatch/flakewatch/pkg/analyzer"
	"github.com/flakewatch/flakewatch/pkg/api"
	"github.com/flakewatch/flakewatch/pkg/constants"
	"github.com/flakewatch/flakewatch/pkg/core"
	"github.com/flakewatch/flakewatch/pkg/db"
	errs "github.com/flakewatch/flakewatch/pkg/errors"
	"github.com/flakewatch/flakewatch/pkg/flakymonitor"
	"github.com/flakewatch/flakewatch/pkg/lumber"
	"github.com/flakewatch/flakewatch/pkg/normalizer"
	"github.com/flakewatch/flakewatch/pkg/opentelemetry"
	"github.com/flakewatch/flakewatch/pkg/reconciler"
	"github.com/flakewatch/flakewatch/pkg/redis"
	"github.com/flakewatch/flakewatch/pkg/server"
	"github.com/flakewatch/flakewatch/pkg/store/flakytests"
	"github.com/flakewatch/flakewatch/pkg/store/outcomes"
	"github.com/flakewatch/flakewatch/pkg/store/projects"
	"github.com/flakewatch/flakewatch/pkg/store/submissions"
	"github.com/spf13/cobra"
)

// RootCommand will setup and return the root command
func RootCommand() *cobra.Command {
	rootCmd := cobra.Command{
		Use:     "flakewatch",
		Long:    `flakewatch ingests CI test execution reports and maintains a queryable classification of flaky tests per project.`,
		Version: constants.BinaryVersion,
		RunE:    run,
	}

	// define flags used for this command
	AttachCLIFlags(&rootCmd)

	return &rootCmd
}

func run(cmd *cobra.Command, args []string) error {
	// a WaitGroup for the goroutines to tell us they've stopped
	wg := sync.WaitGroup{}

	cfg, err := config.Load(cmd)
	if err != nil {
		fmt.Printf("Failed to load config: %v", err)
		return err
	}

	// patch logconfig file location with root level log file location
	if cfg.LogFile != "" {
		cfg.LogConfig.FileLocation = filepath.Join(cfg.LogFile, "fw.log")
	}

	// You can also use logrus implementation
	// by using lumber.InstanceLogrusLogger
	logger, err := lumber.NewLogger(&cfg.LogConfig, cfg.Verbose, lumber.InstanceZapLogger)
	if err != nil {
		log.Printf("could not instantiate logger %s", err.Error())
		return err
	}
	database, err := db.Connect(cfg, logger)
	if err != nil {
		logger.Errorf("failed to create database connection %v", err)
		return err
	}
	// create a context that we can cancel
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// initialize tracer
	if cfg.Tracing.OtelEndpoint != "" {
		tracerCleanup := opentelemetry.InitTracer(ctx, cfg, logger)
		defer func() {
			if tracerErr := tracerCleanup(context.Background()); tracerErr != nil {
				logger.Errorf("Failed to cleanup the tracer %v", tracerErr)
			}
		}()
	}

	redisDB, err := redis.New(ctx, cfg, logger)
	if err != nil {
		logger.Errorf("failed to create redis database connection %v", err)
		return err
	}

	outcomeStore := outcomes.New(database, logger)
	dbStores := &core.DBStores{
		ProjectStore:    projects.New(database, redisDB, logger),
		SubmissionStore: submissions.New(database, outcomeStore, logger),
		OutcomeStore:    outcomeStore,
		FlakyTestStore:  flakytests.New(database, logger),
	}

	reportNormalizer := normalizer.New(logger)
	flakinessAnalyzer := analyzer.New(dbStores.OutcomeStore, logger)
	flakyReconciler := reconciler.New(logger)
	flakyMonitor := flakymonitor.New(cfg, flakinessAnalyzer, flakyReconciler, dbStores.FlakyTestStore, logger)

	// initialize queue producer and consumer
	analysisQueueProducer := analysisqueue.NewProducer(cfg, logger)
	analysisQueueConsumer := analysisqueue.NewConsumer(cfg, flakyMonitor, logger)

	// create child context so as to close the kafka consumer on SIGTERM/SIGINT
	// and fail health API.
	childCtx, childCancel := context.WithCancel(ctx)
	defer childCancel()
	routers := api.New(
		childCtx,
		cfg,
		dbStores,
		reportNormalizer,
		analysisQueueProducer,
		logger)
	wg.Add(1)
	// setup http server
	go func() {
		defer wg.Done()
		if err := server.ListenAndServe(ctx, &routers, cfg, logger); err != nil {
			logger.Errorf("error while running http server %v", err)
		}
	}()

	wg.Add(1)
	// start analysis queue consumer
	go func() {
		defer wg.Done()
		analysisQueueConsumer.Run(childCtx)
	}()

	// listen for C-c
	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)

	// create channel to mark status of waitgroup
	// this is required to brutally kill application in case of
	// timeout
	done := make(chan struct{})

	// asynchronously wait for all the go routines
	go func() {
		// and wait for all go routines
		wg.Wait()
		logger.Debugf("main: all goroutines have finished.")
		close(done)
	}()
	// wait for signal channel
	<-c
	logger.Debugf("main: received close signal - attempting graceful shutdown ....")
	childCancel()
	// add some delay so as to allow in-flight analysis runs to finish
	time.Sleep(cfg.ShutDownDelay)
	if err := analysisQueueProducer.Close(); err != nil {
		logger.Errorf("failed to close analysis queue producer, error: %v", err)
	}
	// tell the goroutines to stop
	logger.Debugf("main: telling all goroutines to stop")
	cancel()
	select {
	case <-done:
		logger.Debugf("Go routines exited within timeout")
	case <-time.After(cfg.GracefulTimeout):
		logger.Errorf("Graceful timeout exceeded. Brutally killing the application")
		return errs.ErrTimeoutExceeded
	}
	return nil
}
