package app

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"example/aoe4-reviewer/app/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
)

// SaveNotifier announces a match that was just written to disk.
type SaveNotifier interface {
	Publish(ctx context.Context, event models.SavedMatchEvent) error
}

type sqsSender interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

// SQSNotifier publishes SavedMatchEvents to one queue.
type SQSNotifier struct {
	client   sqsSender
	queueURL string
}

func NewSQSNotifier(client sqsSender, queueURL string) *SQSNotifier {
	return &SQSNotifier{client: client, queueURL: queueURL}
}

// NewSQSNotifierFromEnv uses the default AWS credential chain.
func NewSQSNotifierFromEnv(ctx context.Context, queueURL string) (*SQSNotifier, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config for SQS: %w", err)
	}
	return NewSQSNotifier(sqs.NewFromConfig(awsCfg), queueURL), nil
}

func (n *SQSNotifier) Publish(ctx context.Context, event models.SavedMatchEvent) error {
	body, err := encodeEvent(event)
	if err != nil {
		return fmt.Errorf("marshal saved match event: %w", err)
	}
	_, err = n.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(n.queueURL),
		MessageBody: aws.String(body),
	})
	if err != nil {
		return fmt.Errorf("send SQS message for %s: %w", event.MatchName, err)
	}
	return nil
}

// encodeEvent keeps <, > and & literal inside the record.
func encodeEvent(event models.SavedMatchEvent) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(event); err != nil {
		return "", err
	}
	return strings.TrimRight(buf.String(), "\n"), nil
}
