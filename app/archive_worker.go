package app

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"example/aoe4-reviewer/app/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqstypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"
)

type sqsConsumer interface {
	ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
}

// ArchiveWorker drains saved-match events from SQS into the Archiver.
type ArchiveWorker struct {
	sqs      sqsConsumer
	queueURL string
	archiver *Archiver
	idle     time.Duration
}

func NewArchiveWorker(client sqsConsumer, queueURL string, archiver *Archiver) *ArchiveWorker {
	return &ArchiveWorker{sqs: client, queueURL: queueURL, archiver: archiver, idle: 2 * time.Second}
}

// Run long-polls until ctx is cancelled.
func (w *ArchiveWorker) Run(ctx context.Context) error {
	log.Printf("Archive worker started, listening on SQS queue: %s", w.queueURL)
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		n, err := w.PollOnce(ctx)
		if err != nil {
			log.Printf("ReceiveMessage error: %v", err)
			sleepCtx(ctx, 5*time.Second)
			continue
		}
		if n == 0 {
			sleepCtx(ctx, w.idle)
		}
	}
}

// PollOnce receives one batch and handles it, returning how many messages came back.
func (w *ArchiveWorker) PollOnce(ctx context.Context) (int, error) {
	recvCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	resp, err := w.sqs.ReceiveMessage(recvCtx, &sqs.ReceiveMessageInput{
		QueueUrl:            aws.String(w.queueURL),
		MaxNumberOfMessages: 10,
		WaitTimeSeconds:     20,
		VisibilityTimeout:   60,
	})
	cancel()
	if err != nil {
		return 0, err
	}

	for _, m := range resp.Messages {
		w.handle(ctx, m)
	}
	return len(resp.Messages), nil
}

func (w *ArchiveWorker) handle(ctx context.Context, m sqstypes.Message) {
	if m.Body == nil {
		log.Printf("received message with empty body, deleting: id=%s", aws.ToString(m.MessageId))
		w.delete(ctx, m)
		return
	}

	var event models.SavedMatchEvent
	if err := json.Unmarshal([]byte(*m.Body), &event); err != nil {
		// poison pill, retrying will not help
		log.Printf("failed to unmarshal saved match event: %v", err)
		w.delete(ctx, m)
		return
	}

	jobCtx, cancel := context.WithTimeout(ctx, time.Minute)
	key, err := w.archiver.Archive(jobCtx, event)
	cancel()
	if errors.Is(err, ErrInvalidMatchName) || errors.Is(err, errEmptyRecord) {
		log.Printf("dropping unarchivable event match=%q: %v", event.MatchName, err)
		w.delete(ctx, m)
		return
	}
	if err != nil {
		// left on the queue; it becomes visible again after VisibilityTimeout
		log.Printf("error archiving match=%s game_id=%d: %v", event.MatchName, event.GameID, err)
		return
	}

	log.Printf("archived match=%s key=%s", event.MatchName, key)
	w.delete(ctx, m)
}

func (w *ArchiveWorker) delete(ctx context.Context, m sqstypes.Message) {
	if m.ReceiptHandle == nil {
		return
	}
	_, err := w.sqs.DeleteMessage(ctx, &sqs.DeleteMessageInput{
		QueueUrl:      aws.String(w.queueURL),
		ReceiptHandle: m.ReceiptHandle,
	})
	if err != nil {
		log.Printf("failed to delete SQS message: %v", err)
	}
}

func sleepCtx(ctx context.Context, d time.Duration) {
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}
