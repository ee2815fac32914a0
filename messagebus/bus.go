package messagebus

import (
	"context"
	"fmt"
	"iter"

	"github.com/google/uuid"

	"github.com/TomasJani/bookshelf/domain"
	"github.com/TomasJani/bookshelf/services"
)

// EventCollector is implemented by services that gather events while a handler runs, like a unit of work.
type EventCollector interface {
	CollectNewEvents() iter.Seq[domain.Event]
}

// MessageBus routes messages to handlers and dispatches the events they cause.
// It holds no per-call state, so concurrent Handle calls are independent.
type MessageBus struct {
	registry         Registry
	services         *services.Registry
	logger           Logger
	contextualLogger ContextualLogger
	metricsCollector MetricsCollector
	tracingCollector TracingCollector
}

// NewMessageBus creates a MessageBus with optional configuration.
func NewMessageBus(registry Registry, serviceRegistry *services.Registry, options ...Option) (*MessageBus, error) {
	if serviceRegistry == nil {
		return nil, ErrNilServices
	}

	b := &MessageBus{
		registry: registry,
		services: serviceRegistry,
	}

	for _, option := range options {
		if err := option(b); err != nil {
			return nil, err
		}
	}

	return b, nil
}

// Handle dispatches message and every event that follows from it, in FIFO order, before it returns.
// A command's handler error is returned unchanged. Event handler errors are never returned.
func (b *MessageBus) Handle(ctx context.Context, message domain.Message) error {
	if _, ok := CorrelationID(ctx); !ok {
		ctx = withCorrelationID(ctx, uuid.NewString())
	}

	queue := []domain.Message{message}

	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]

		var (
			events []domain.Event
			err    error
		)

		switch m := next.(type) {
		case domain.Command:
			events, err = b.handleCommand(ctx, m)
		case domain.Event:
			events = b.handleEvent(ctx, m)
		default:
			err = fmt.Errorf("%w: %T", ErrUnsupportedMessage, next)
		}

		if err != nil {
			return err
		}

		for _, event := range events {
			queue = append(queue, event)
		}

		b.recordValue(ctx, metricQueueDepth, float64(len(queue)), nil)
	}

	return nil
}

func (b *MessageBus) handleCommand(ctx context.Context, command domain.Command) ([]domain.Event, error) {
	handler, ok := b.registry.CommandHandler(command.CommandType())
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoCommandHandler, command.CommandType())
	}

	observer, ctx := b.startObserving(ctx, kindCommand, command)

	events, err := b.invoke(ctx, func(ctx context.Context, container *services.Container) error {
		return handler(ctx, command, container)
	})

	observer.finish(err, len(events))

	if err != nil {
		return nil, err
	}

	return events, nil
}

func (b *MessageBus) handleEvent(ctx context.Context, event domain.Event) []domain.Event {
	var collected []domain.Event

	for _, handler := range b.registry.EventHandlers(event.EventType()) {
		observer, handlerCtx := b.startObserving(ctx, kindEvent, event)

		events, err := b.invoke(handlerCtx, func(ctx context.Context, container *services.Container) error {
			return runEventHandler(ctx, handler, event, container)
		})

		observer.finish(err, len(events))

		if err != nil {
			b.recordEventHandlerFailure(handlerCtx, event, err)
		}

		// A unit of work the handler committed before failing still publishes its events.
		collected = append(collected, events...)
	}

	return collected
}

// invoke runs call with a fresh container and drains every event collector the call resolved.
// Collectors only yield events of committed scopes, so a failed call returns whatever was committed before it failed.
func (b *MessageBus) invoke(
	ctx context.Context,
	call func(ctx context.Context, container *services.Container) error,
) (events []domain.Event, err error) {
	container := b.services.NewContainer()

	defer func() {
		if closeErr := container.Close(context.WithoutCancel(ctx)); closeErr != nil {
			b.logWarn(ctx, logMsgContainerCloseFailed, logAttrError, closeErr.Error())
		}
	}()

	err = call(ctx, container)

	for _, instance := range container.Instances() {
		collector, ok := instance.(EventCollector)
		if !ok {
			continue
		}

		for event := range collector.CollectNewEvents() {
			events = append(events, event)
		}
	}

	return events, err
}

func runEventHandler(
	ctx context.Context,
	handler EventHandler,
	event domain.Event,
	container *services.Container,
) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrEventHandlerPanicked, r)
		}
	}()

	return handler(ctx, event, container)
}
