package stream

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-kafka/v3/pkg/kafka"
	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/drblury/busflow/internal/runtime/config"
)

func testConfig() config.Config {
	return config.Config{
		KafkaBrokers:          []string{"localhost:9092"},
		KafkaConsumerGroup:    "ledger",
		KafkaClientID:         "busflow-test",
		KafkaTopics:           []string{"payments"},
		KafkaPublishTopic:     "payments",
		KafkaSecurityProtocol: config.ProtocolPlaintext,
		KafkaMaxRetries:       3,
		KafkaPublishTimeout:   5 * time.Second,
		KafkaPublisherSource:  "ledger-service",
	}
}

type fakeSubscriber struct {
	mu       sync.Mutex
	channels map[string]chan *message.Message
	closed   bool
}

func newFakeSubscriber(topics ...string) *fakeSubscriber {
	f := &fakeSubscriber{channels: make(map[string]chan *message.Message, len(topics))}
	for _, topic := range topics {
		f.channels[topic] = make(chan *message.Message, 16)
	}
	return f
}

func (f *fakeSubscriber) Subscribe(_ context.Context, topic string) (<-chan *message.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch, ok := f.channels[topic]
	if !ok {
		return nil, fmt.Errorf("unknown topic %s", topic)
	}
	return ch, nil
}

func (f *fakeSubscriber) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeSubscriber) send(topic string, msg *message.Message) {
	f.channels[topic] <- msg
}

// swapSubscriberFactory installs sub and captures the config it was built with.
func swapSubscriberFactory(t *testing.T, sub message.Subscriber) *kafka.SubscriberConfig {
	t.Helper()
	original := SubscriberFactory
	t.Cleanup(func() { SubscriberFactory = original })

	captured := &kafka.SubscriberConfig{}
	SubscriberFactory = func(cfg kafka.SubscriberConfig, _ watermill.LoggerAdapter) (message.Subscriber, error) {
		*captured = cfg
		return sub, nil
	}
	return captured
}

type publishedMessage struct {
	topic string
	msg   *message.Message
}

type fakePublisher struct {
	mu        sync.Mutex
	published []publishedMessage
	err       error
	closed    bool
}

func (f *fakePublisher) Publish(topic string, messages ...*message.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	for _, msg := range messages {
		f.published = append(f.published, publishedMessage{topic: topic, msg: msg})
	}
	return nil
}

func (f *fakePublisher) Close() error {
	f.closed = true
	return nil
}

func swapPublisherFactory(t *testing.T, pub message.Publisher) *kafka.PublisherConfig {
	t.Helper()
	original := PublisherFactory
	t.Cleanup(func() { PublisherFactory = original })

	captured := &kafka.PublisherConfig{}
	PublisherFactory = func(cfg kafka.PublisherConfig, _ watermill.LoggerAdapter) (message.Publisher, error) {
		*captured = cfg
		return pub, nil
	}
	return captured
}

type sleepRecorder struct {
	mu     sync.Mutex
	sleeps []time.Duration
}

func (r *sleepRecorder) sleep(ctx context.Context, d time.Duration) error {
	r.mu.Lock()
	r.sleeps = append(r.sleeps, d)
	r.mu.Unlock()
	return ctx.Err()
}

func (r *sleepRecorder) recorded() []time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]time.Duration(nil), r.sleeps...)
}

const waitTimeout = 2 * time.Second

func waitAcked(t *testing.T, msg *message.Message) {
	t.Helper()
	select {
	case <-msg.Acked():
	case <-msg.Nacked():
		t.Fatal("expected ack, got nack")
	case <-time.After(waitTimeout):
		t.Fatal("timed out waiting for ack")
	}
}

func waitNacked(t *testing.T, msg *message.Message) {
	t.Helper()
	select {
	case <-msg.Nacked():
	case <-msg.Acked():
		t.Fatal("expected nack, got ack")
	case <-time.After(waitTimeout):
		t.Fatal("timed out waiting for nack")
	}
}
