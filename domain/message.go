package domain

// CommandType is the closed tag identifying a command variant.
type CommandType string

// EventType is the closed tag identifying an event variant.
type EventType string

const (
	// CreateAuthorCommandType tags CreateAuthor.
	CreateAuthorCommandType CommandType = "CreateAuthor"

	// CreateBookCommandType tags CreateBook.
	CreateBookCommandType CommandType = "CreateBook"

	// CreateUserCommandType tags CreateUser.
	CreateUserCommandType CommandType = "CreateUser"

	// NotifyNewAccountEventType tags NotifyNewAccount.
	NotifyNewAccountEventType EventType = "NotifyNewAccount"
)

// Message is anything the message bus accepts: a Command or an Event.
type Message interface {
	MessageName() string
}

// Command represents an intent to change state. Exactly one handler is responsible for each CommandType.
type Command interface {
	Message
	CommandType() CommandType
}

// Event represents a fact that already happened. Any number of handlers may react to an EventType.
type Event interface {
	Message
	EventType() EventType
}

// Events is a slice of Event values.
type Events = []Event
