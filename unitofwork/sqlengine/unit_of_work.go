package sqlengine

import (
	"context"
	"errors"
	"iter"

	"github.com/TomasJani/bookshelf/domain"
	"github.com/TomasJani/bookshelf/repository"
	"github.com/TomasJani/bookshelf/unitofwork"
)

// UnitOfWork runs one scope at a time in its own database transaction.
// It is not safe for concurrent use; create one per handler invocation with Store.UnitOfWork.
type UnitOfWork struct {
	store     *Store
	lifecycle unitofwork.Lifecycle
	session   *session

	editions *repository.TrackingRepository[*domain.Edition]
	users    *repository.TrackingRepository[*domain.User]
	authors  *repository.TrackingRepository[*domain.Author]
}

var _ unitofwork.UnitOfWork = (*UnitOfWork)(nil)

func newUnitOfWork(store *Store) *UnitOfWork {
	return &UnitOfWork{
		store:    store,
		editions: unitofwork.Detached[*domain.Edition](),
		users:    unitofwork.Detached[*domain.User](),
		authors:  unitofwork.Detached[*domain.Author](),
	}
}

// State returns the lifecycle state.
func (u *UnitOfWork) State() unitofwork.State {
	return u.lifecycle.State()
}

// Begin starts a transaction and binds fresh repositories to it.
func (u *UnitOfWork) Begin(ctx context.Context) error {
	if err := u.lifecycle.Allowed(unitofwork.Open); err != nil {
		return err
	}

	tx, err := u.store.db.BeginTx(ctx)
	if err != nil {
		u.store.logError(ctx, logMsgBeginFailed, err)
		return errors.Join(ErrBeginFailed, err)
	}

	u.session = newSession(u.store, tx)
	u.editions = repository.NewTrackingRepository[*domain.Edition](editionStorage{s: u.session})
	u.users = repository.NewTrackingRepository[*domain.User](userStorage{s: u.session})
	u.authors = repository.NewTrackingRepository[*domain.Author](authorStorage{s: u.session})
	u.lifecycle.Set(unitofwork.Open)

	return nil
}

func (u *UnitOfWork) Editions() repository.EditionRepository {
	return u.editions
}

func (u *UnitOfWork) Users() repository.UserRepository {
	return u.users
}

func (u *UnitOfWork) Authors() repository.AuthorRepository {
	return u.authors
}

// Commit flushes new and changed aggregates and commits the transaction.
// On failure the scope stays open, so End still rolls it back.
func (u *UnitOfWork) Commit(ctx context.Context) error {
	if err := u.lifecycle.Allowed(unitofwork.Committed); err != nil {
		return err
	}

	editions, users, authors := u.editions.Seen(), u.users.Seen(), u.authors.Seen()

	if err := u.session.flush(ctx, editions, users, authors); err != nil {
		u.session.resetAssignedIDs()
		return err
	}

	if err := u.session.tx.Commit(ctx); err != nil {
		u.session.resetAssignedIDs()
		u.store.logError(ctx, logMsgCommitFailed, err)
		return errors.Join(ErrCommitFailed, err)
	}

	u.session.assigned = nil

	u.lifecycle.Set(unitofwork.Committed)
	u.store.logOperation(
		ctx,
		logActionCommit,
		logAttrEditionsSeen, len(editions),
		logAttrUsersSeen, len(users),
		logAttrAuthorsSeen, len(authors),
	)

	return nil
}

// Rollback discards the transaction's changes.
func (u *UnitOfWork) Rollback(ctx context.Context) error {
	if err := u.lifecycle.Allowed(unitofwork.RolledBack); err != nil {
		return err
	}

	if err := u.session.tx.Rollback(ctx); err != nil {
		u.store.logError(ctx, logMsgRollbackFailed, err)
		return errors.Join(ErrRollbackFailed, err)
	}

	u.lifecycle.Set(unitofwork.RolledBack)
	u.store.logOperation(ctx, logActionRollback)

	return nil
}

// End rolls back an uncommitted scope and closes the session. The repositories keep their seen aggregates
// until the next Begin, so the events of a committed scope can still be collected.
func (u *UnitOfWork) End(ctx context.Context) error {
	if !u.lifecycle.HasSession() {
		return nil
	}

	var err error

	if u.lifecycle.IsOpen() {
		err = u.Rollback(ctx)
	}

	u.session.closed = true
	u.lifecycle.Set(unitofwork.Closed)

	return err
}

// Close ends the scope. It lets a services.Container clean up a unit of work a handler forgot to end.
func (u *UnitOfWork) Close(ctx context.Context) error {
	return u.End(ctx)
}

// CollectNewEvents yields the events of every aggregate seen in the last scope, if that scope committed.
func (u *UnitOfWork) CollectNewEvents() iter.Seq[domain.Event] {
	return unitofwork.EventSequence(&u.lifecycle, u.Editions, u.Users, u.Authors)
}
