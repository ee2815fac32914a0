package handlers

import (
	"context"
	"fmt"

	"github.com/TomasJani/bookshelf/domain"
	"github.com/TomasJani/bookshelf/notification"
	"github.com/TomasJani/bookshelf/security"
	"github.com/TomasJani/bookshelf/services"
	"github.com/TomasJani/bookshelf/unitofwork"
)

// AddAuthor stores a new author without books.
func AddAuthor(ctx context.Context, command domain.CreateAuthor, container *services.Container) error {
	uow, err := services.Get[unitofwork.UnitOfWork](ctx, container)
	if err != nil {
		return err
	}

	return unitofwork.Run(ctx, uow, func(ctx context.Context, uow unitofwork.UnitOfWork) error {
		uow.Authors().Add(domain.NewAuthor(command.Name))

		return uow.Commit(ctx)
	})
}

// AddBook appends a book named after the command to the edition with the same name,
// creating the edition when there is none yet.
func AddBook(ctx context.Context, command domain.CreateBook, container *services.Container) error {
	uow, err := services.Get[unitofwork.UnitOfWork](ctx, container)
	if err != nil {
		return err
	}

	return unitofwork.Run(ctx, uow, func(ctx context.Context, uow unitofwork.UnitOfWork) error {
		edition, found, err := uow.Editions().Get(ctx, command.Name)
		if err != nil {
			return err
		}

		if !found {
			edition = domain.NewEdition(command.Name)
			uow.Editions().Add(edition)
		}

		edition.AddBook(command.Name)

		return uow.Commit(ctx)
	})
}

// AddUser registers a new account. The email must not be taken yet.
// NotifyNewAccount is raised on the new user and dispatched once the scope committed.
func AddUser(ctx context.Context, command domain.CreateUser, container *services.Container) error {
	if err := command.Validate(); err != nil {
		return err
	}

	hasher, err := services.Get[security.PasswordHasher](ctx, container)
	if err != nil {
		return err
	}

	uow, err := services.Get[unitofwork.UnitOfWork](ctx, container)
	if err != nil {
		return err
	}

	return unitofwork.Run(ctx, uow, func(ctx context.Context, uow unitofwork.UnitOfWork) error {
		_, found, err := uow.Users().Get(ctx, command.Email)
		if err != nil {
			return err
		}

		if found {
			return fmt.Errorf("%w: user with email %s", domain.ErrAlreadyExists, command.Email)
		}

		hashedPassword, err := hasher.Hash(command.Password.Reveal())
		if err != nil {
			return err
		}

		uow.Users().Add(domain.RegisterUser(command.Email, command.FullName, hashedPassword))

		return uow.Commit(ctx)
	})
}

// SendNewAccountEmail welcomes a new account holder. It does nothing while emails are disabled.
func SendNewAccountEmail(ctx context.Context, event domain.NotifyNewAccount, container *services.Container) error {
	settings, err := services.Get[notification.Settings](ctx, container)
	if err != nil {
		return err
	}

	if !settings.EmailsEnabled {
		return nil
	}

	sender, err := services.Get[notification.Sender](ctx, container)
	if err != nil {
		return err
	}

	message, err := notification.RenderNewAccountEmail(settings, event.Email, event.Email)
	if err != nil {
		return err
	}

	return sender.Send(ctx, message)
}
