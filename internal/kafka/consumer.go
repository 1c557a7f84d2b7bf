package kafka

import (
	"context"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
	log "github.com/sirupsen/logrus"
)

// Handler must return nil only when the message was processed and its offset may be committed.
type Handler func(ctx context.Context, m kafka.Message) error

type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type Consumer struct {
	r       messageReader
	topic   string
	workers int
}

func NewConsumer(brokers []string, group, topic string, workers int) *Consumer {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		GroupID:  group,
		Topic:    topic,
		MinBytes: 1,
		MaxBytes: 10e6,
	})
	return newConsumer(r, topic, workers)
}

func newConsumer(r messageReader, topic string, workers int) *Consumer {
	if workers <= 0 {
		workers = 1
	}
	return &Consumer{r: r, topic: topic, workers: workers}
}

// Start fetches messages and fans them out to the worker pool until ctx is
// cancelled. Offsets are committed by the worker after h succeeds.
func (c *Consumer) Start(ctx context.Context, h Handler) error {
	defer c.r.Close()

	jobs := make(chan kafka.Message, 1024)
	errs := make(chan error, c.workers)

	var wg sync.WaitGroup
	for i := 0; i < c.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for m := range jobs {
				if err := h(ctx, m); err != nil {
					c.report(errs, err)
					continue
				}
				if err := c.r.CommitMessages(ctx, m); err != nil {
					c.report(errs, err)
				}
			}
		}()
	}
	stop := func() {
		close(jobs)
		wg.Wait()
	}

	for {
		m, err := c.r.FetchMessage(ctx)
		if err != nil {
			stop()
			select {
			case <-ctx.Done():
				return nil
			default:
				return err
			}
		}
		select {
		case jobs <- m:
		case <-ctx.Done():
			stop()
			return nil
		}

		// drain without blocking so a failing worker cannot deadlock the loop
		select {
		case e := <-errs:
			log.WithError(e).WithField("topic", c.topic).Error("worker error")
			time.Sleep(200 * time.Millisecond)
		default:
		}
	}
}

func (c *Consumer) report(errs chan<- error, err error) {
	select {
	case errs <- err:
	default:
		log.WithError(err).WithField("topic", c.topic).Error("worker error")
	}
}
