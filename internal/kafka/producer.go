package kafka

import (
	"context"
	"time"

	"github.com/pratofeito/marmita-orders/internal/metrics"
	"github.com/segmentio/kafka-go"
	log "github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer buffers messages in an inbox and writes them from a single
// goroutine. Writes go through a circuit breaker so a broker outage drops
// events quickly instead of stalling the inbox.
type Producer struct {
	topic   string
	w       messageWriter
	cb      *gobreaker.CircuitBreaker
	inbox   chan kafka.Message
	closeCh chan struct{}
}

func NewProducer(brokers []string, topic string, buf int) *Producer {
	return newProducer(&kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		BatchTimeout: 50 * time.Millisecond,
	}, topic, buf)
}

func newProducer(w messageWriter, topic string, buf int) *Producer {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "kafka-" + topic,
		MaxRequests: 1,
		Timeout:     10 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.WithFields(log.Fields{"breaker": name, "from": from.String(), "to": to.String()}).Warn("producer breaker state changed")
			metrics.BreakerState.WithLabelValues(topic).Set(float64(to))
		},
	})
	return &Producer{
		topic:   topic,
		w:       w,
		cb:      cb,
		inbox:   make(chan kafka.Message, buf),
		closeCh: make(chan struct{}),
	}
}

func (p *Producer) Start() {
	go func() {
		defer close(p.closeCh)
		for m := range p.inbox {
			p.write(m)
		}
		if err := p.w.Close(); err != nil {
			log.WithError(err).WithField("topic", p.topic).Warn("close kafka writer")
		}
	}()
}

func (p *Producer) write(m kafka.Message) {
	_, err := p.cb.Execute(func() (interface{}, error) {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return nil, p.w.WriteMessages(ctx, m)
	})
	if err != nil {
		metrics.PublishFailures.WithLabelValues(p.topic).Inc()
		log.WithError(err).WithFields(log.Fields{"topic": p.topic, "key": string(m.Key)}).Error("publish event")
	}
}

func (p *Producer) Publish(key, value []byte, headers ...kafka.Header) {
	p.inbox <- kafka.Message{
		Key:     key,
		Value:   value,
		Time:    time.Now(),
		Headers: headers,
	}
}

// Close stops accepting messages; the writer goroutine flushes what is left.
func (p *Producer) Close() { close(p.inbox) }

// WaitClosed blocks until the inbox is drained and the writer closed.
func (p *Producer) WaitClosed() { <-p.closeCh }
