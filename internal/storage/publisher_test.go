package storage_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	go_json "github.com/goccy/go-json"

	"github.com/garrettladley/whoopsync/internal/repository"
	"github.com/garrettladley/whoopsync/internal/storage"
)

type recordingPublisher struct {
	events []storage.RecordEvent
	err    error
	closed bool
}

func (p *recordingPublisher) Publish(_ context.Context, event storage.RecordEvent) error {
	p.events = append(p.events, event)
	return p.err
}

func (p *recordingPublisher) Close() error {
	p.closed = true
	return nil
}

func TestMultiPublisher(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	ok := &recordingPublisher{}
	failing := &recordingPublisher{err: boom}
	multi := storage.MultiPublisher{failing, ok}

	ts := time.Date(2025, 3, 10, 7, 0, 0, 0, time.UTC)
	event := storage.NewRecordEvent(&repository.Record{UserID: "42", Timestamp: ts}, ts)

	err := multi.Publish(context.Background(), event)
	if !errors.Is(err, boom) {
		t.Fatalf("Publish() error = %v, want %v", err, boom)
	}
	if len(ok.events) != 1 {
		t.Errorf("healthy sink received %d events, want 1", len(ok.events))
	}

	if err := multi.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if !ok.closed || !failing.closed {
		t.Error("Close() did not close every sink")
	}
}

func TestRecordMessage(t *testing.T) {
	t.Parallel()

	score := 70.0
	ts := time.Date(2025, 3, 10, 7, 0, 0, 0, time.UTC)
	event := storage.NewRecordEvent(&repository.Record{UserID: "42", RecoveryScore: &score, Timestamp: ts}, ts)

	msg, err := storage.RecordMessage(event)
	if err != nil {
		t.Fatalf("RecordMessage() error = %v", err)
	}
	if string(msg.Key) != "42" {
		t.Errorf("Key = %q, want 42", msg.Key)
	}
	if len(msg.Headers) != 1 || string(msg.Headers[0].Value) != storage.EventRecordIngested {
		t.Errorf("Headers = %+v, want event_type header", msg.Headers)
	}

	var decoded storage.RecordEvent
	if err := go_json.Unmarshal(msg.Value, &decoded); err != nil {
		t.Fatalf("unmarshal value: %v", err)
	}
	if diff := cmp.Diff(event, decoded); diff != "" {
		t.Errorf("decoded event mismatch (-want +got):\n%s", diff)
	}
}

func TestRecordsChannel(t *testing.T) {
	t.Parallel()

	if got := storage.RecordsChannel("42"); got != "whoopsync:records:42" {
		t.Errorf("RecordsChannel() = %q", got)
	}
}

func TestKafkaRecordPublisherUnreachableBroker(t *testing.T) {
	t.Parallel()

	p := storage.NewKafkaRecordPublisher([]string{"127.0.0.1:1"}, "whoop.records")
	t.Cleanup(func() { _ = p.Close() })

	ts := time.Date(2025, 3, 10, 7, 0, 0, 0, time.UTC)
	event := storage.NewRecordEvent(&repository.Record{UserID: "42", Timestamp: ts}, ts)

	start := time.Now()
	if err := p.Publish(context.Background(), event); err == nil {
		t.Fatal("Publish() error = nil, want broker error")
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Errorf("Publish() took %v, want it bounded by the publish timeout", elapsed)
	}
}

func TestKafkaRecordPublisherCloseWithoutPublish(t *testing.T) {
	t.Parallel()

	p := storage.NewKafkaRecordPublisher([]string{"127.0.0.1:1"}, "whoop.records")
	if err := p.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}
