package memoryengine

import (
	"context"
	"iter"

	"github.com/TomasJani/bookshelf/domain"
	"github.com/TomasJani/bookshelf/repository"
	"github.com/TomasJani/bookshelf/unitofwork"
)

type session struct {
	db     *Database
	closed bool

	editions map[string]*domain.Edition
	users    map[string]*domain.User
	authors  map[string]*domain.Author
	books    map[int64]*domain.Book
}

func (s *session) check(ctx context.Context) error {
	if s.closed {
		return unitofwork.ErrNotOpen
	}

	return ctx.Err()
}

type editionStorage struct{ s *session }

func (st editionStorage) Stage(edition *domain.Edition) { st.s.editions[edition.Name] = edition }

func (st editionStorage) FindByKey(ctx context.Context, name string) (*domain.Edition, bool, error) {
	if err := st.s.check(ctx); err != nil {
		return nil, false, err
	}

	if edition, ok := st.s.editions[name]; ok {
		return edition, true, nil
	}

	edition, ok := st.s.db.loadEdition(name, st.s.books)
	if ok {
		st.s.editions[name] = edition
	}

	return edition, ok, nil
}

type userStorage struct{ s *session }

func (st userStorage) Stage(user *domain.User) { st.s.users[user.Email] = user }

func (st userStorage) FindByKey(ctx context.Context, email string) (*domain.User, bool, error) {
	if err := st.s.check(ctx); err != nil {
		return nil, false, err
	}

	if user, ok := st.s.users[email]; ok {
		return user, true, nil
	}

	user, ok := st.s.db.loadUser(email)
	if ok {
		st.s.users[email] = user
	}

	return user, ok, nil
}

type authorStorage struct{ s *session }

func (st authorStorage) Stage(author *domain.Author) { st.s.authors[author.Name] = author }

func (st authorStorage) FindByKey(ctx context.Context, name string) (*domain.Author, bool, error) {
	if err := st.s.check(ctx); err != nil {
		return nil, false, err
	}

	if author, ok := st.s.authors[name]; ok {
		return author, true, nil
	}

	author, ok := st.s.db.loadAuthor(name, st.s.books)
	if ok {
		st.s.authors[name] = author
	}

	return author, ok, nil
}

// UnitOfWork is the in-memory unit of work. It is not safe for concurrent use.
type UnitOfWork struct {
	db        *Database
	lifecycle unitofwork.Lifecycle
	session   *session

	editions *repository.TrackingRepository[*domain.Edition]
	users    *repository.TrackingRepository[*domain.User]
	authors  *repository.TrackingRepository[*domain.Author]
}

var _ unitofwork.UnitOfWork = (*UnitOfWork)(nil)

func newUnitOfWork(db *Database) *UnitOfWork {
	return &UnitOfWork{
		db:       db,
		editions: unitofwork.Detached[*domain.Edition](),
		users:    unitofwork.Detached[*domain.User](),
		authors:  unitofwork.Detached[*domain.Author](),
	}
}

// State returns the lifecycle state.
func (u *UnitOfWork) State() unitofwork.State {
	return u.lifecycle.State()
}

func (u *UnitOfWork) Begin(ctx context.Context) error {
	if err := u.lifecycle.Allowed(unitofwork.Open); err != nil {
		return err
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	u.session = &session{
		db:       u.db,
		editions: make(map[string]*domain.Edition),
		users:    make(map[string]*domain.User),
		authors:  make(map[string]*domain.Author),
		books:    make(map[int64]*domain.Book),
	}
	u.editions = repository.NewTrackingRepository[*domain.Edition](editionStorage{s: u.session})
	u.users = repository.NewTrackingRepository[*domain.User](userStorage{s: u.session})
	u.authors = repository.NewTrackingRepository[*domain.Author](authorStorage{s: u.session})
	u.lifecycle.Set(unitofwork.Open)

	return nil
}

func (u *UnitOfWork) Editions() repository.EditionRepository { return u.editions }

func (u *UnitOfWork) Users() repository.UserRepository { return u.users }

func (u *UnitOfWork) Authors() repository.AuthorRepository { return u.authors }

func (u *UnitOfWork) Commit(ctx context.Context) error {
	if err := u.lifecycle.Allowed(unitofwork.Committed); err != nil {
		return err
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	if err := u.db.apply(u.editions.Seen(), u.users.Seen(), u.authors.Seen()); err != nil {
		return err
	}

	u.lifecycle.Set(unitofwork.Committed)

	return nil
}

func (u *UnitOfWork) Rollback(context.Context) error {
	if err := u.lifecycle.Allowed(unitofwork.RolledBack); err != nil {
		return err
	}

	u.lifecycle.Set(unitofwork.RolledBack)

	return nil
}

func (u *UnitOfWork) End(ctx context.Context) error {
	if !u.lifecycle.HasSession() {
		return nil
	}

	if u.lifecycle.IsOpen() {
		_ = u.Rollback(ctx)
	}

	u.session.closed = true
	u.lifecycle.Set(unitofwork.Closed)

	return nil
}

// Close ends the scope.
func (u *UnitOfWork) Close(ctx context.Context) error {
	return u.End(ctx)
}

func (u *UnitOfWork) CollectNewEvents() iter.Seq[domain.Event] {
	return unitofwork.EventSequence(&u.lifecycle, u.Editions, u.Users, u.Authors)
}
