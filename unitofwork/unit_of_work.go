package unitofwork

import (
	"context"
	"errors"
	"iter"

	"github.com/TomasJani/bookshelf/domain"
	"github.com/TomasJani/bookshelf/repository"
)

// UnitOfWork is the transactional boundary of one handler invocation.
// Implementations are not safe for concurrent use.
type UnitOfWork interface {
	// Begin opens a new storage session and binds fresh repositories with empty seen sets to it.
	Begin(ctx context.Context) error

	Editions() repository.EditionRepository
	Users() repository.UserRepository
	Authors() repository.AuthorRepository

	// Commit flushes staged and changed aggregates and commits the session.
	Commit(ctx context.Context) error

	// Rollback discards the session's changes.
	Rollback(ctx context.Context) error

	// End rolls back unless the scope committed, then closes the session. Ending a closed unit of work is a no-op.
	End(ctx context.Context) error

	// CollectNewEvents returns a one-shot sequence of the events raised by aggregates seen in the last scope.
	// It yields nothing unless that scope committed.
	CollectNewEvents() iter.Seq[domain.Event]
}

// Run begins a scope on uow, calls fn and always ends the scope, also when fn fails or panics.
// The error of fn is returned as is; a failure to end the scope is joined onto it.
func Run(ctx context.Context, uow UnitOfWork, fn func(ctx context.Context, uow UnitOfWork) error) (err error) {
	if err = uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		if endErr := uow.End(context.WithoutCancel(ctx)); endErr != nil {
			err = errors.Join(err, endErr)
		}
	}()

	return fn(ctx, uow)
}

type notOpenStorage[T comparable] struct{}

func (notOpenStorage[T]) FindByKey(context.Context, string) (T, bool, error) {
	var zero T
	return zero, false, ErrNotOpen
}

func (notOpenStorage[T]) Stage(T) {}

// Detached returns a repository that is bound to no session. Get fails with ErrNotOpen and Add is dropped.
// Engines hand it out before the first Begin.
func Detached[T comparable]() *repository.TrackingRepository[T] {
	return repository.NewTrackingRepository[T](notOpenStorage[T]{})
}
