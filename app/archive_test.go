package app

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"example/aoe4-reviewer/app/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqstypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"
)

type fakeSQS struct {
	mu      sync.Mutex
	sent    []*sqs.SendMessageInput
	batches [][]sqstypes.Message
	deleted []string
	sendErr error
}

func (f *fakeSQS) SendMessage(_ context.Context, in *sqs.SendMessageInput, _ ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return nil, f.sendErr
	}
	f.sent = append(f.sent, in)
	return &sqs.SendMessageOutput{MessageId: aws.String("m-1")}, nil
}

func (f *fakeSQS) ReceiveMessage(_ context.Context, _ *sqs.ReceiveMessageInput, _ ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.batches) == 0 {
		return &sqs.ReceiveMessageOutput{}, nil
	}
	batch := f.batches[0]
	f.batches = f.batches[1:]
	return &sqs.ReceiveMessageOutput{Messages: batch}, nil
}

func (f *fakeSQS) DeleteMessage(_ context.Context, in *sqs.DeleteMessageInput, _ ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, aws.ToString(in.ReceiptHandle))
	return &sqs.DeleteMessageOutput{}, nil
}

type fakeS3 struct {
	mu      sync.Mutex
	objects map[string][]byte
	err     error
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	body, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.objects == nil {
		f.objects = map[string][]byte{}
	}
	f.objects[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)] = body
	return &s3.PutObjectOutput{}, nil
}

func sampleEvent() models.SavedMatchEvent {
	return models.SavedMatchEvent{
		MatchName: "2024-06-01_12_00_00,Dry Arabia,rm_1v1",
		GameID:    1,
		ViewerID:  "100",
		SavedAt:   time.Date(2024, 6, 1, 13, 0, 0, 0, time.UTC),
		Record:    json.RawMessage(`{"game_id":1}`),
	}
}

func TestSQSNotifierPublish(t *testing.T) {
	fake := &fakeSQS{}
	n := NewSQSNotifier(fake, "https://sqs.test/queue")
	if err := n.Publish(context.Background(), sampleEvent()); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if len(fake.sent) != 1 || aws.ToString(fake.sent[0].QueueUrl) != "https://sqs.test/queue" {
		t.Fatalf("sent = %+v", fake.sent)
	}
	var got models.SavedMatchEvent
	if err := json.Unmarshal([]byte(aws.ToString(fake.sent[0].MessageBody)), &got); err != nil {
		t.Fatalf("body: %v", err)
	}
	if got.MatchName != sampleEvent().MatchName || string(got.Record) != `{"game_id":1}` {
		t.Fatalf("event = %+v", got)
	}

	fake.sendErr = errors.New("throttled")
	if err := n.Publish(context.Background(), sampleEvent()); err == nil {
		t.Fatalf("expected send error")
	}
}

func TestArchiverArchive(t *testing.T) {
	store := &fakeS3{}
	a := NewArchiver(store, "reviews", "matches/")
	key, err := a.Archive(context.Background(), sampleEvent())
	if err != nil {
		t.Fatalf("Archive: %v", err)
	}
	if key != "matches/2024-06-01_12_00_00,Dry Arabia,rm_1v1.json" {
		t.Fatalf("key = %s", key)
	}
	if string(store.objects["reviews/"+key]) != "{\n    \"game_id\": 1\n}" {
		t.Fatalf("objects = %v", store.objects)
	}

	bad := sampleEvent()
	bad.MatchName = "../escape"
	if _, err := a.Archive(context.Background(), bad); !errors.Is(err, ErrInvalidMatchName) {
		t.Fatalf("expected ErrInvalidMatchName, got %v", err)
	}
}

func TestArchiveWorkerPollOnce(t *testing.T) {
	good, _ := json.Marshal(sampleEvent())
	empty := sampleEvent()
	empty.Record = nil
	emptyBody, _ := json.Marshal(empty)

	queue := &fakeSQS{batches: [][]sqstypes.Message{{
		{Body: aws.String(string(good)), ReceiptHandle: aws.String("good")},
		{Body: aws.String("{nope"), ReceiptHandle: aws.String("poison")},
		{Body: aws.String(string(emptyBody)), ReceiptHandle: aws.String("empty")},
		{ReceiptHandle: aws.String("nobody")},
	}}}
	bucket := &fakeS3{}
	w := NewArchiveWorker(queue, "q", NewArchiver(bucket, "b", ""))

	n, err := w.PollOnce(context.Background())
	if err != nil || n != 4 {
		t.Fatalf("PollOnce = (%d, %v)", n, err)
	}
	if len(bucket.objects) != 1 {
		t.Fatalf("objects = %v", bucket.objects)
	}
	want := map[string]bool{"good": true, "poison": true, "empty": true, "nobody": true}
	if len(queue.deleted) != len(want) {
		t.Fatalf("deleted = %v", queue.deleted)
	}
	for _, h := range queue.deleted {
		if !want[h] {
			t.Fatalf("unexpected delete %s", h)
		}
	}
}

func TestArchiveWorkerKeepsMessageOnUploadFailure(t *testing.T) {
	good, _ := json.Marshal(sampleEvent())
	queue := &fakeSQS{batches: [][]sqstypes.Message{{
		{Body: aws.String(string(good)), ReceiptHandle: aws.String("retry-me")},
	}}}
	w := NewArchiveWorker(queue, "q", NewArchiver(&fakeS3{err: errors.New("s3 down")}, "b", ""))

	if _, err := w.PollOnce(context.Background()); err != nil {
		t.Fatalf("PollOnce: %v", err)
	}
	if len(queue.deleted) != 0 {
		t.Fatalf("message should stay queued, deleted=%v", queue.deleted)
	}
}

func TestArchiveWorkerRunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	w := NewArchiveWorker(&fakeSQS{}, "q", NewArchiver(&fakeS3{}, "b", ""))
	w.idle = time.Millisecond

	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("Run returned %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("Run did not stop")
	}
}
