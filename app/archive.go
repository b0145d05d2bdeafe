package app

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"

	"example/aoe4-reviewer/app/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

var errEmptyRecord = errors.New("saved match event has no record")

type objectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Archiver copies saved match records into an S3 bucket.
type Archiver struct {
	client objectPutter
	bucket string
	prefix string
}

func NewArchiver(client objectPutter, bucket, prefix string) *Archiver {
	return &Archiver{client: client, bucket: bucket, prefix: prefix}
}

func NewArchiverFromEnv(ctx context.Context, bucket, prefix string) (*Archiver, error) {
	if bucket == "" {
		return nil, errors.New("ARCHIVE_BUCKET must be set")
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config for S3: %w", err)
	}
	return NewArchiver(s3.NewFromConfig(awsCfg), bucket, prefix), nil
}

// Key is where a match lands in the bucket: {prefix}{match name}.json.
func (a *Archiver) Key(matchName string) string {
	return path.Join(a.prefix, matchName+".json")
}

// Archive writes the event's record. Re-archiving the same name replaces it.
func (a *Archiver) Archive(ctx context.Context, event models.SavedMatchEvent) (string, error) {
	if err := checkName(event.MatchName); err != nil {
		return "", err
	}
	if len(event.Record) == 0 || string(event.Record) == "null" {
		return "", fmt.Errorf("%w: %s", errEmptyRecord, event.MatchName)
	}
	// the queue carries the record compacted; restore the on-disk layout
	var body bytes.Buffer
	if err := json.Indent(&body, event.Record, "", "    "); err != nil {
		return "", fmt.Errorf("indent record %s: %w", event.MatchName, err)
	}
	key := a.Key(event.MatchName)
	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body.Bytes()),
		ContentType: aws.String("application/json; charset=utf-8"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s to S3: %w", key, err)
	}
	return key, nil
}
