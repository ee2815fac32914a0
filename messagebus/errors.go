package messagebus

import "errors"

// ErrNoCommandHandler is returned when a command type has no registered handler. It is a configuration error.
var ErrNoCommandHandler = errors.New("no handler registered for command")

// ErrUnsupportedMessage is returned for messages that are neither a domain.Command nor a domain.Event.
var ErrUnsupportedMessage = errors.New("message is neither a command nor an event")

// ErrNilHandler is returned by NewRegistry when a handler is nil.
var ErrNilHandler = errors.New("handler must not be nil")

// ErrUnexpectedMessage is returned by a typed handler adapter that receives a message of another type.
var ErrUnexpectedMessage = errors.New("handler received an unexpected message type")

// ErrEventHandlerPanicked wraps the value of a panic recovered from an event handler.
var ErrEventHandlerPanicked = errors.New("event handler panicked")

// ErrNilServices is returned by NewMessageBus without a services registry.
var ErrNilServices = errors.New("services registry must not be nil")
