package kafka

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/thep200/sach-crawler/cfg"
	"github.com/thep200/sach-crawler/pkg/log"
)

func TestSnapshotEvent(t *testing.T) {
	ev := NewSnapshotEvent(KeyChapter, "/data/book_content/a/chapter_1.json", "https://gacsach.top/a/1")
	if ev.ID == "" || ev.CreatedAt.IsZero() {
		t.Fatalf("event = %+v", ev)
	}

	c := &Consumer{Logger: log.NopLogger{}}
	var got SnapshotEvent
	c.RegisterHandler(KeyChapter, func(ctx context.Context, value []byte) error {
		var err error
		got, err = DecodeSnapshotEvent(value)
		return err
	})

	value := []byte(`{"id":"x","kind":"chapter","path":"/p.json","url":"u","book_dir":"a","file_name":"chapter_1.json"}`)
	if err := c.Dispatch(context.Background(), kafka.Message{Key: []byte(KeyChapter), Value: value}); err != nil {
		t.Fatal(err)
	}
	if got.Path != "/p.json" || got.BookDir != "a" || got.FileName != "chapter_1.json" {
		t.Errorf("decoded = %+v", got)
	}
}

func TestDispatchErrors(t *testing.T) {
	c := &Consumer{Logger: log.NopLogger{}}
	boom := errors.New("boom")
	c.RegisterHandler(KeyBook, func(ctx context.Context, value []byte) error { return boom })

	if err := c.Dispatch(context.Background(), kafka.Message{Key: []byte("khac")}); !errors.Is(err, ErrNoHandler) {
		t.Errorf("err = %v, want ErrNoHandler", err)
	}
	if err := c.Dispatch(context.Background(), kafka.Message{Key: []byte(KeyBook)}); !errors.Is(err, boom) {
		t.Errorf("err = %v, want boom", err)
	}
}

func TestDecodeSnapshotEventInvalid(t *testing.T) {
	for _, raw := range []string{`{`, `{"kind":"book"}`, `{"path":"/x"}`} {
		if _, err := DecodeSnapshotEvent([]byte(raw)); err == nil {
			t.Errorf("DecodeSnapshotEvent(%s) succeeded", raw)
		}
	}
}

func TestNoBrokers(t *testing.T) {
	config, _ := (&cfg.MockLoader{DataDir: t.TempDir()}).Load()
	config.Kafka.Brokers = nil

	if _, err := NewProducer(config, log.NopLogger{}); !errors.Is(err, ErrNoBrokers) {
		t.Errorf("producer err = %v", err)
	}
	if _, err := NewConsumer(config, log.NopLogger{}); !errors.Is(err, ErrNoBrokers) {
		t.Errorf("consumer err = %v", err)
	}
}

// scriptedReader trả lần lượt các kết quả đã định sẵn, hết kết quả thì trả io.EOF
type scriptedReader struct {
	results []readResult
	reads   int
}

type readResult struct {
	msg kafka.Message
	err error
}

func (r *scriptedReader) ReadMessage(ctx context.Context) (kafka.Message, error) {
	r.reads++
	if len(r.results) == 0 {
		return kafka.Message{}, io.EOF
	}
	next := r.results[0]
	r.results = r.results[1:]
	return next.msg, next.err
}

func (r *scriptedReader) Close() error { return nil }

func TestStartRetriesThenStopsOnClosedReader(t *testing.T) {
	reader := &scriptedReader{results: []readResult{
		{err: errors.New("broker not available")},
		{msg: kafka.Message{Key: []byte(KeyBooks), Value: []byte(`{"kind":"books","path":"/b.json"}`)}},
		{err: errors.New("leader changed")},
		{msg: kafka.Message{Key: []byte("khac")}},
	}}
	c := NewConsumerWith(nil, log.NopLogger{}, "sach-snapshots", reader)
	c.RetryDelay = time.Millisecond

	handled := 0
	c.RegisterHandler(KeyBooks, func(ctx context.Context, value []byte) error {
		handled++
		return nil
	})

	done := make(chan error, 1)
	go func() { done <- c.Start(context.Background()) }()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Start() = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Start() did not return after the reader was closed")
	}

	if handled != 1 || reader.reads != 5 {
		t.Errorf("handled = %d reads = %d", handled, reader.reads)
	}
}

func TestStartStopsWhenCanceledDuringBackoff(t *testing.T) {
	reader := &scriptedReader{results: []readResult{{err: errors.New("broker not available")}}}
	c := NewConsumerWith(nil, log.NopLogger{}, "sach-snapshots", reader)
	c.RetryDelay = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Start(ctx) }()
	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Start() = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Start() kept waiting after cancel")
	}
	if reader.reads != 1 {
		t.Errorf("reads = %d", reader.reads)
	}
}
