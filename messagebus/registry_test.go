package messagebus_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TomasJani/bookshelf/domain"
	"github.com/TomasJani/bookshelf/messagebus"
	"github.com/TomasJani/bookshelf/services"
)

func Test_NewRegistry_RejectsNilHandlers(t *testing.T) {
	_, errCommand := messagebus.NewRegistry(messagebus.CommandHandlers{domain.CreateAuthorCommandType: nil}, nil)
	_, errEvent := messagebus.NewRegistry(nil, messagebus.EventHandlers{domain.NotifyNewAccountEventType: {nil}})

	assert.ErrorIs(t, errCommand, messagebus.ErrNilHandler)
	assert.ErrorIs(t, errEvent, messagebus.ErrNilHandler)
}

func Test_NewRegistry_IsIsolatedFromLaterMapChanges(t *testing.T) {
	// arrange
	commands := messagebus.CommandHandlers{domain.CreateAuthorCommandType: noopCommandHandler}
	events := messagebus.EventHandlers{domain.NotifyNewAccountEventType: {noopEventHandler}}

	registry, err := messagebus.NewRegistry(commands, events)
	require.NoError(t, err)

	// act
	delete(commands, domain.CreateAuthorCommandType)
	events[domain.NotifyNewAccountEventType] = append(events[domain.NotifyNewAccountEventType], noopEventHandler)

	// assert
	_, ok := registry.CommandHandler(domain.CreateAuthorCommandType)
	assert.True(t, ok)
	assert.Len(t, registry.EventHandlers(domain.NotifyNewAccountEventType), 1)
	assert.Empty(t, registry.EventHandlers("Unknown"))
}

func Test_HandleCommand_RejectsOtherCommandTypes(t *testing.T) {
	// arrange
	handler := messagebus.HandleCommand(func(context.Context, domain.CreateAuthor, *services.Container) error {
		return nil
	})

	// act
	err := handler(context.Background(), domain.CreateBook{Name: "Dune"}, nil)

	// assert
	assert.ErrorIs(t, err, messagebus.ErrUnexpectedMessage)
}

func Test_HandleEvent_PassesTypedEvent(t *testing.T) {
	// arrange
	var got domain.NotifyNewAccount
	handler := messagebus.HandleEvent(func(_ context.Context, event domain.NotifyNewAccount, _ *services.Container) error {
		got = event
		return nil
	})

	// act
	err := handler(context.Background(), domain.NotifyNewAccount{Email: "reader@example.com"}, nil)

	// assert
	require.NoError(t, err)
	assert.Equal(t, "reader@example.com", got.Email)
}

func noopCommandHandler(context.Context, domain.Command, *services.Container) error { return nil }

func noopEventHandler(context.Context, domain.Event, *services.Container) error { return nil }
