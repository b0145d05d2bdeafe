package main

import (
	"context"
	"errors"
	"log"
	"os/signal"
	"syscall"

	"example/aoe4-reviewer/app"
	"example/aoe4-reviewer/app/config"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	app.ConfigureLogging(cfg.Logs)
	if cfg.QueueURL == "" {
		log.Fatal("QUEUE_URL must be set")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	archiver, err := app.NewArchiverFromEnv(ctx, cfg.Archive.Bucket, cfg.Archive.Prefix)
	if err != nil {
		log.Fatalf("failed to initialize archiver: %v", err)
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		log.Fatalf("failed to load AWS config for SQS: %v", err)
	}

	worker := app.NewArchiveWorker(sqs.NewFromConfig(awsCfg), cfg.QueueURL, archiver)
	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("archive worker stopped: %v", err)
	}
	log.Print("archive worker stopped")
}
