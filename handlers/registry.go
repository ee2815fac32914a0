package handlers

import (
	"context"

	"github.com/TomasJani/bookshelf/domain"
	"github.com/TomasJani/bookshelf/messagebus"
	"github.com/TomasJani/bookshelf/notification"
	"github.com/TomasJani/bookshelf/security"
	"github.com/TomasJani/bookshelf/services"
	"github.com/TomasJani/bookshelf/unitofwork"
)

// NewRegistry returns the routing table of all bookshelf commands and events.
func NewRegistry() (messagebus.Registry, error) {
	return messagebus.NewRegistry(
		messagebus.CommandHandlers{
			domain.CreateAuthorCommandType: messagebus.HandleCommand(AddAuthor),
			domain.CreateBookCommandType:   messagebus.HandleCommand(AddBook),
			domain.CreateUserCommandType:   messagebus.HandleCommand(AddUser),
		},
		messagebus.EventHandlers{
			domain.NotifyNewAccountEventType: {
				messagebus.HandleEvent(SendNewAccountEmail),
			},
		},
	)
}

// Dependencies are the collaborators the handlers resolve from their container.
type Dependencies struct {
	// NewUnitOfWork is called once per handler invocation.
	NewUnitOfWork  func() unitofwork.UnitOfWork
	PasswordHasher security.PasswordHasher
	Sender         notification.Sender
	Settings       notification.Settings
}

// RegisterServices registers deps in registry so the handlers can resolve them.
func RegisterServices(registry *services.Registry, deps Dependencies) {
	services.RegisterFactory(registry, func(context.Context) (unitofwork.UnitOfWork, error) {
		return deps.NewUnitOfWork(), nil
	})
	services.RegisterValue(registry, deps.PasswordHasher)
	services.RegisterValue(registry, deps.Sender)
	services.RegisterValue(registry, deps.Settings)
}
