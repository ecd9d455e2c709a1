package a2a

import (
	"context"
	"fmt"
	"time"

	"trpc.group/trpc-go/trpc-rag-go/graph"
	"trpc.group/trpc-go/trpc-rag-go/log"
)

const defaultBatchSize = 5
const defaultFlushInterval = 200 * time.Millisecond

// eventTunnel moves pipeline events from the executor channel to a
// consumer in batches, flushing on size or on the interval timer so slow
// stages cannot hold updates back indefinitely.
type eventTunnel struct {
	batchSize     int
	flushInterval time.Duration

	batch   []*graph.Event
	events  <-chan *graph.Event
	consume func([]*graph.Event) (bool, error)
}

// newEventTunnel creates a tunnel over the event channel. The consume
// callback receives each flushed batch and returns false to stop the
// tunnel without error.
func newEventTunnel(
	batchSize int,
	flushInterval time.Duration,
	events <-chan *graph.Event,
	consume func([]*graph.Event) (bool, error),
) *eventTunnel {
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	if flushInterval <= 0 {
		flushInterval = defaultFlushInterval
	}
	return &eventTunnel{
		batchSize:     batchSize,
		flushInterval: flushInterval,
		batch:         make([]*graph.Event, 0, batchSize),
		events:        events,
		consume:       consume,
	}
}

// Run pumps events until the channel closes, the consumer stops the
// tunnel or the context is cancelled. The pending batch is flushed before
// returning.
func (t *eventTunnel) Run(ctx context.Context) error {
	ticker := time.NewTicker(t.flushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			// Best effort: hand over what is buffered before bailing out.
			if len(t.batch) > 0 {
				t.flushBatch()
			}
			return ctx.Err()

		case event, ok := <-t.events:
			if !ok {
				if _, err := t.flushBatch(); err != nil {
					return fmt.Errorf("final flush: %w", err)
				}
				return nil
			}
			if event == nil {
				continue
			}
			t.batch = append(t.batch, event)
			if len(t.batch) >= t.batchSize {
				keep, err := t.flushBatch()
				if err != nil {
					return fmt.Errorf("batch flush: %w", err)
				}
				if !keep {
					return nil
				}
			}

		case <-ticker.C:
			if len(t.batch) == 0 {
				continue
			}
			keep, err := t.flushBatch()
			if err != nil {
				return fmt.Errorf("interval flush: %w", err)
			}
			if !keep {
				return nil
			}
		}
	}
}

func (t *eventTunnel) flushBatch() (bool, error) {
	if len(t.batch) == 0 {
		return true, nil
	}

	batch := make([]*graph.Event, len(t.batch))
	copy(batch, t.batch)
	t.batch = t.batch[:0]

	keep, err := t.consume(batch)
	if err != nil {
		log.Errorf("a2aserver: consume event batch: %v", err)
		return false, err
	}
	return keep, nil
}
