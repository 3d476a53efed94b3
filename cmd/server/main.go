package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"taxdesk/internal/aggregate"
	openaiclassifier "taxdesk/internal/classifier/openai"
	"taxdesk/internal/config"
	"taxdesk/internal/extract"
	"taxdesk/internal/handler"
	"taxdesk/internal/repository/postgres"
	"taxdesk/internal/router"
	"taxdesk/internal/service"
	s3storage "taxdesk/internal/storage/s3"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := postgres.NewDB(ctx, &cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	// Initialize repositories
	fileRepo := postgres.NewFileMetaRepo(db)
	batchRepo := postgres.NewBatchRepo(db)
	txRepo := postgres.NewTransactionRepo(db)
	aggRepo := postgres.NewAggregateRepo(db)
	ctxRepo := postgres.NewContextRepo(db)

	// Initialize storage
	s3Client, err := s3storage.NewS3Client(&cfg.S3)
	if err != nil {
		return fmt.Errorf("failed to initialize S3 client: %w", err)
	}

	// Initialize pipeline components
	classifier := openaiclassifier.NewClassifier(&cfg.Classifier)
	extractor := extract.NewExtractor(classifier, cfg.OCR)
	computer := aggregate.NewComputer(txRepo, aggRepo)
	ctxBuilder := aggregate.NewContextBuilder(aggRepo, fileRepo, ctxRepo)

	// Initialize services
	fileSvc := service.NewFileService(fileRepo, s3Client, &cfg.S3)
	batchSvc := service.NewBatchService(batchRepo, fileRepo)
	statementSvc := service.NewStatementService(s3Client, extractor, fileRepo, txRepo, batchSvc, computer, ctxBuilder)
	txSvc := service.NewTransactionService(txRepo)
	taxSvc := service.NewTaxService(aggRepo, ctxRepo, computer, ctxBuilder)

	// Initialize handlers
	healthH := handler.NewHealthHandler(db)
	fileH := handler.NewFileHandler(fileSvc)
	batchH := handler.NewBatchHandler(batchSvc)
	txH := handler.NewTransactionHandler(txSvc)
	taxH := handler.NewTaxHandler(taxSvc)

	r := router.Setup(cfg, healthH, fileH, batchH, txH, taxH)

	// Run the parse queue worker until shutdown; the worker drains its
	// in-flight files before returning.
	worker := service.NewParseQueueWorker(fileRepo, statementSvc, service.ParseQueueConfig{
		PollInterval: time.Duration(cfg.Queue.PollIntervalSecs) * time.Second,
		MaxRetries:   cfg.Queue.MaxRetries,
		Concurrency:  cfg.Queue.Concurrency,
	})
	workerDone := make(chan struct{})
	go func() {
		defer close(workerDone)
		worker.Start(ctx)
	}()

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Server starting on %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		stop()
		<-workerDone
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	log.Printf("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("server shutdown: %v", err)
	}
	<-workerDone
	return nil
}
