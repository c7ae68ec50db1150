// Package events publishes anonymous client events, such as finder
// searches, for offline analysis.
package events

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hamba/avro/v2"
	"github.com/sirupsen/logrus"
	"github.com/twmb/franz-go/pkg/kgo"
)

const SearchEvent = "finder.search"

// Event is one client action. Timestamps are milliseconds since epoch.
type Event struct {
	Name         string   `avro:"name"`
	SessionID    string   `avro:"session_id"`
	Lang         string   `avro:"lang"`
	Age          int      `avro:"age"`
	Budget       float64  `avro:"budget"`
	Interests    []string `avro:"interests"`
	Gender       string   `avro:"gender"`
	Relationship string   `avro:"relationship"`
	Results      int      `avro:"results"`
	OccurredAt   int64    `avro:"occurred_at"`
}

func NewSearch(sid, lang string, at time.Time) Event {
	return Event{Name: SearchEvent, SessionID: sid, Lang: lang, OccurredAt: at.UnixMilli()}
}

const schemaV1 = `{
  "type": "record",
  "name": "ClientEventV1",
  "namespace": "giftfinder.events",
  "fields": [
    {"name": "name", "type": "string"},
    {"name": "session_id", "type": "string"},
    {"name": "lang", "type": "string"},
    {"name": "age", "type": "int"},
    {"name": "budget", "type": "double"},
    {"name": "interests", "type": {"type": "array", "items": "string"}},
    {"name": "gender", "type": "string"},
    {"name": "relationship", "type": "string"},
    {"name": "results", "type": "int"},
    {"name": "occurred_at", "type": "long"}
  ]
}`

var Schema = avro.MustParse(schemaV1)

func Encode(e Event) ([]byte, error) {
	if e.Interests == nil {
		e.Interests = []string{}
	}
	return avro.Marshal(Schema, e)
}

func Decode(b []byte) (Event, error) {
	var e Event
	err := avro.Unmarshal(Schema, b, &e)
	return e, err
}

// Publisher never blocks the caller on delivery.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close()
}

// ProducerClient is the part of [kgo.Client] the publisher needs.
type ProducerClient interface {
	Produce(ctx context.Context, r *kgo.Record, promise func(*kgo.Record, error))
	Flush(ctx context.Context) error
	Close()
}

// flushTimeout bounds how long Close waits for buffered records.
const flushTimeout = 5 * time.Second

type KafkaPublisher struct {
	cl     ProducerClient
	topic  string
	logger *logrus.Logger
}

var ErrNoBrokers = errors.New("events: no seed brokers")

// NewKafkaClient connects a franz-go client producing to topic.
func NewKafkaClient(ctx context.Context, seedBrokers []string, topic string) (*kgo.Client, error) {
	const op = "events.NewKafkaClient"
	if len(seedBrokers) == 0 {
		return nil, fmt.Errorf("%s: %w", op, ErrNoBrokers)
	}
	cl, err := kgo.NewClient(
		kgo.SeedBrokers(seedBrokers...),
		kgo.DefaultProduceTopic(topic),
		kgo.AllowAutoTopicCreation(),
		kgo.ProducerLinger(50*time.Millisecond),
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := cl.Ping(ctx); err != nil {
		cl.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return cl, nil
}

func NewKafkaPublisher(cl ProducerClient, topic string, logger *logrus.Logger) *KafkaPublisher {
	return &KafkaPublisher{cl: cl, topic: topic, logger: logger}
}

// Publish encodes e and hands it to the producer. Delivery errors are
// logged from the promise.
func (p *KafkaPublisher) Publish(ctx context.Context, e Event) error {
	const op = "KafkaPublisher.Publish"
	b, err := Encode(e)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	r := &kgo.Record{Topic: p.topic, Key: []byte(e.SessionID), Value: b}
	p.cl.Produce(context.WithoutCancel(ctx), r, func(r *kgo.Record, err error) {
		if err != nil {
			p.logger.WithError(err).WithField("op", op).Warn("client event not delivered")
		}
	})
	return nil
}

// Close delivers buffered records, waiting at most flushTimeout, then
// closes the client.
func (p *KafkaPublisher) Close() {
	p.logger.Info("closing event producer")
	ctx, cancel := context.WithTimeout(context.Background(), flushTimeout)
	defer cancel()
	if err := p.cl.Flush(ctx); err != nil {
		p.logger.WithError(err).Warn("client events dropped at shutdown")
	}
	p.cl.Close()
}

// LogPublisher writes events to the log when no brokers are configured.
type LogPublisher struct {
	logger *logrus.Logger
}

func NewLogPublisher(logger *logrus.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Publish(_ context.Context, e Event) error {
	p.logger.WithFields(logrus.Fields{
		"event":        e.Name,
		"lang":         e.Lang,
		"age":          e.Age,
		"budget":       e.Budget,
		"interests":    strings.Join(e.Interests, ","),
		"gender":       e.Gender,
		"relationship": e.Relationship,
		"results":      e.Results,
	}).Info("client.event")
	return nil
}

func (p *LogPublisher) Close() {}
