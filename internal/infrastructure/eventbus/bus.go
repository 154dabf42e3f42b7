package eventbus

import (
	"context"
	"encoding/json"
	"errors"
	"expvar"
	"fmt"
	"sync"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/sirupsen/logrus"
)

var (
	ErrClosed = errors.New("eventbus: closed")

	handlerFailures = expvar.NewInt("event_handler_failures_total")
)

// HandlerFunc processes one delivered payload.
type HandlerFunc func(ctx context.Context, payload []byte) error

// Handle adapts a typed handler, decoding the JSON payload into T.
func Handle[T any](fn func(ctx context.Context, evt T) error) HandlerFunc {
	return func(ctx context.Context, payload []byte) error {
		var evt T
		if err := json.Unmarshal(payload, &evt); err != nil {
			return fmt.Errorf("decode payload: %w", err)
		}
		return fn(ctx, evt)
	}
}

// Bus is an in-process publish/subscribe bus backed by a watermill GoChannel.
//
// Publish never waits for subscribers. Each subscription is drained by its own
// goroutine; handler errors are logged and the message is acked regardless, so
// there is exactly one delivery attempt per subscriber.
type Bus struct {
	pubsub *gochannel.GoChannel
	logger *logrus.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

func New(logger *logrus.Logger, buffer int64) *Bus {
	ctx, cancel := context.WithCancel(context.Background())
	return &Bus{
		pubsub: gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: buffer}, NewLogrusAdapter(logger)),
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Publish JSON-encodes payload and hands it to every subscriber of topic.
func (b *Bus) Publish(ctx context.Context, topic string, payload any) error {
	b.mu.Lock()
	closed := b.closed
	b.mu.Unlock()
	if closed {
		return ErrClosed
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s payload: %w", topic, err)
	}
	msg := message.NewMessage(watermill.NewUUID(), body)
	if rid, ok := ctx.Value(requestIDKey{}).(string); ok && rid != "" {
		msg.Metadata.Set("request_id", rid)
	}
	return b.pubsub.Publish(topic, msg)
}

// Subscribe registers h for topic. name identifies the subscriber in logs.
// Handlers run with a context bound to the bus lifetime, not to the publisher.
func (b *Bus) Subscribe(topic, name string, h HandlerFunc) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return ErrClosed
	}

	messages, err := b.pubsub.Subscribe(b.ctx, topic)
	if err != nil {
		return fmt.Errorf("subscribe %s to %s: %w", name, topic, err)
	}

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		for msg := range messages {
			b.dispatch(topic, name, h, msg)
		}
	}()
	return nil
}

func (b *Bus) dispatch(topic, name string, h HandlerFunc, msg *message.Message) {
	defer msg.Ack()

	log := b.logger.WithFields(logrus.Fields{
		"topic":      topic,
		"subscriber": name,
		"message_id": msg.UUID,
	})
	if rid := msg.Metadata.Get("request_id"); rid != "" {
		log = log.WithField("request_id", rid)
	}

	defer func() {
		if r := recover(); r != nil {
			handlerFailures.Add(1)
			log.WithField("panic", r).Error("event handler panicked")
		}
	}()

	if err := h(b.ctx, msg.Payload); err != nil {
		handlerFailures.Add(1)
		log.WithError(err).Error("event handler failed")
		return
	}
	log.Debug("event handled")
}

// Close stops delivery and waits for in-flight handlers to return.
func (b *Bus) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	b.mu.Unlock()

	b.cancel()
	err := b.pubsub.Close()
	b.wg.Wait()
	return err
}

type requestIDKey struct{}

// WithRequestID tags ctx so published messages carry the originating request id.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}
