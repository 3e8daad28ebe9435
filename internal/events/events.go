package events

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gofrs/uuid"
	"go.uber.org/zap"
)

// Activity event types. Every one of these can make a user eligible for
// a badge, so the badge engine subscribes to all of them.
const (
	EventFailCreated    = "fail.created"
	EventReactionGiven  = "reaction.given"
	EventCommentCreated = "comment.created"
	EventUserLoggedIn   = "user.loggedin"
	EventBadgeUnlocked  = "badge.unlocked"
)

// Event represents a domain event.
type Event interface {
	GetEventID() string
	GetEventType() string
	GetTimestamp() time.Time
	GetUserID() int64
	GetMetadata() map[string]any
}

// BaseEvent provides common event functionality.
type BaseEvent struct {
	EventID   string         `json:"event_id"`
	EventType string         `json:"event_type"`
	Timestamp time.Time      `json:"timestamp"`
	UserID    int64          `json:"user_id"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// NewEvent creates an event of the given type for the acting user.
func NewEvent(eventType string, userID int64, metadata map[string]any) *BaseEvent {
	id, err := uuid.NewV4()
	eventID := ""
	if err == nil {
		eventID = id.String()
	}
	return &BaseEvent{
		EventID:   eventID,
		EventType: eventType,
		Timestamp: time.Now().UTC(),
		UserID:    userID,
		Metadata:  metadata,
	}
}

func (e *BaseEvent) GetEventID() string          { return e.EventID }
func (e *BaseEvent) GetEventType() string        { return e.EventType }
func (e *BaseEvent) GetTimestamp() time.Time     { return e.Timestamp }
func (e *BaseEvent) GetUserID() int64            { return e.UserID }
func (e *BaseEvent) GetMetadata() map[string]any { return e.Metadata }

// ===============================
// EVENT BUS
// ===============================

// Handler processes a single event. Errors are logged by the bus, never
// propagated to the publisher.
type Handler interface {
	Handle(ctx context.Context, event Event) error
	HandlerID() string
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc struct {
	ID   string
	Func func(ctx context.Context, event Event) error
}

func (f HandlerFunc) Handle(ctx context.Context, event Event) error { return f.Func(ctx, event) }
func (f HandlerFunc) HandlerID() string                             { return f.ID }

// Bus is an in-process publish/subscribe dispatcher backed by a worker
// pool. Publishing is non-blocking from the caller's view; handler
// failures never reach the publisher.
type Bus struct {
	mu       sync.RWMutex
	handlers map[string][]Handler

	queue   chan message
	logger  *zap.Logger
	timeout time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

type message struct {
	event Event
}

// BusConfig holds configuration for the event bus.
type BusConfig struct {
	BufferSize     int
	WorkerCount    int
	HandlerTimeout time.Duration
}

// DefaultBusConfig returns default configuration.
func DefaultBusConfig() *BusConfig {
	return &BusConfig{
		BufferSize:     1000,
		WorkerCount:    4,
		HandlerTimeout: 30 * time.Second,
	}
}

// NewBus creates and starts an event bus.
func NewBus(cfg *BusConfig, logger *zap.Logger) *Bus {
	if cfg == nil {
		cfg = DefaultBusConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	ctx, cancel := context.WithCancel(context.Background())
	bus := &Bus{
		handlers: make(map[string][]Handler),
		queue:    make(chan message, cfg.BufferSize),
		logger:   logger,
		timeout:  cfg.HandlerTimeout,
		ctx:      ctx,
		cancel:   cancel,
	}

	for i := 0; i < cfg.WorkerCount; i++ {
		bus.wg.Add(1)
		go bus.worker()
	}

	return bus
}

// Subscribe registers a handler for an event type.
func (b *Bus) Subscribe(eventType string, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[eventType] = append(b.handlers[eventType], handler)
}

// Publish enqueues an event for asynchronous delivery. A full queue
// drops the event with a warning rather than blocking the request path.
func (b *Bus) Publish(ctx context.Context, event Event) error {
	select {
	case b.queue <- message{event: event}:
		return nil
	default:
		b.logger.Warn("Event queue full, dropping event",
			zap.String("event_type", event.GetEventType()),
			zap.Int64("user_id", event.GetUserID()),
		)
		return fmt.Errorf("event queue full")
	}
}

func (b *Bus) worker() {
	defer b.wg.Done()

	for {
		select {
		case <-b.ctx.Done():
			return
		case msg := <-b.queue:
			b.dispatch(msg.event)
		}
	}
}

func (b *Bus) dispatch(event Event) {
	b.mu.RLock()
	handlers := b.handlers[event.GetEventType()]
	b.mu.RUnlock()

	for _, handler := range handlers {
		ctx, cancel := context.WithTimeout(b.ctx, b.timeout)
		if err := handler.Handle(ctx, event); err != nil {
			b.logger.Error("Event handler failed",
				zap.String("event_type", event.GetEventType()),
				zap.String("handler_id", handler.HandlerID()),
				zap.Int64("user_id", event.GetUserID()),
				zap.Error(err),
			)
		}
		cancel()
	}
}

// Stop drains workers and shuts down the bus.
func (b *Bus) Stop(ctx context.Context) error {
	b.cancel()

	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("event bus shutdown timed out: %w", ctx.Err())
	}
}
