package messagebus

import (
	"context"
	"fmt"
	"maps"
	"slices"

	"github.com/TomasJani/bookshelf/domain"
	"github.com/TomasJani/bookshelf/services"
)

// CommandHandler handles one command with the services of a fresh container.
type CommandHandler func(ctx context.Context, command domain.Command, container *services.Container) error

// EventHandler reacts to one event with the services of a fresh container.
type EventHandler func(ctx context.Context, event domain.Event, container *services.Container) error

// CommandHandlers maps each command type to its single handler.
type CommandHandlers map[domain.CommandType]CommandHandler

// EventHandlers maps each event type to its handlers, in the order they run.
type EventHandlers map[domain.EventType][]EventHandler

// Registry is the read-only routing table of the bus. Build it once with NewRegistry.
type Registry struct {
	commands CommandHandlers
	events   EventHandlers
}

// NewRegistry copies the given maps into a Registry. A nil handler anywhere is rejected.
func NewRegistry(commands CommandHandlers, events EventHandlers) (Registry, error) {
	for commandType, handler := range commands {
		if handler == nil {
			return Registry{}, fmt.Errorf("%w: command %s", ErrNilHandler, commandType)
		}
	}

	copied := make(EventHandlers, len(events))

	for eventType, handlers := range events {
		for _, handler := range handlers {
			if handler == nil {
				return Registry{}, fmt.Errorf("%w: event %s", ErrNilHandler, eventType)
			}
		}

		copied[eventType] = slices.Clone(handlers)
	}

	return Registry{
		commands: maps.Clone(commands),
		events:   copied,
	}, nil
}

// CommandHandler returns the handler for the command type.
func (r Registry) CommandHandler(commandType domain.CommandType) (CommandHandler, bool) {
	handler, ok := r.commands[commandType]
	return handler, ok
}

// EventHandlers returns the handlers for the event type. Zero handlers is valid.
func (r Registry) EventHandlers(eventType domain.EventType) []EventHandler {
	return slices.Clone(r.events[eventType])
}

// HandleCommand adapts a handler for one concrete command type.
func HandleCommand[C domain.Command](fn func(ctx context.Context, command C, container *services.Container) error) CommandHandler {
	return func(ctx context.Context, command domain.Command, container *services.Container) error {
		typed, ok := command.(C)
		if !ok {
			return fmt.Errorf("%w: want %T, got %T", ErrUnexpectedMessage, *new(C), command)
		}

		return fn(ctx, typed, container)
	}
}

// HandleEvent adapts a handler for one concrete event type.
func HandleEvent[E domain.Event](fn func(ctx context.Context, event E, container *services.Container) error) EventHandler {
	return func(ctx context.Context, event domain.Event, container *services.Container) error {
		typed, ok := event.(E)
		if !ok {
			return fmt.Errorf("%w: want %T, got %T", ErrUnexpectedMessage, *new(E), event)
		}

		return fn(ctx, typed, container)
	}
}
