package sqlengine

import (
	"context"
	"errors"
	"time"

	"github.com/doug-martin/goqu/v9"

	"github.com/TomasJani/bookshelf/domain"
	"github.com/TomasJani/bookshelf/unitofwork"
	"github.com/TomasJani/bookshelf/unitofwork/sqlengine/internal/adapters"
)

const (
	tableAuthors         = "authors"
	tableEditions        = "editions"
	tableUsers           = "users"
	tableBooks           = "books"
	tableMapBookToAuthor = "map_book_to_author"
	colID                = "id"
	colName              = "name"
	colEmail             = "email"
	colHashedPassword    = "hashed_password"
	colIsActive          = "is_active"
	colEditionID         = "edition_id"
	colAuthorID          = "author_id"
	colBookID            = "book_id"
)

type (
	editionRow struct {
		name string
	}

	userRow struct {
		fullName       string
		hashedPassword string
		isActive       bool
	}

	authorRow struct {
		name    string
		bookIDs map[int64]struct{}
	}
)

// session is the state of one transaction: the identity map per kind and a snapshot of every loaded row,
// which flush compares against to find changes.
type session struct {
	store  *Store
	tx     adapters.DBTx
	closed bool

	editions map[string]*domain.Edition
	users    map[string]*domain.User
	authors  map[string]*domain.Author
	books    map[int64]*domain.Book

	loadedEditions map[*domain.Edition]editionRow
	loadedUsers    map[*domain.User]userRow
	loadedAuthors  map[*domain.Author]authorRow

	// assigned holds the ids written onto aggregates by the current flush.
	assigned []*int64
}

func newSession(store *Store, tx adapters.DBTx) *session {
	return &session{
		store:          store,
		tx:             tx,
		editions:       make(map[string]*domain.Edition),
		users:          make(map[string]*domain.User),
		authors:        make(map[string]*domain.Author),
		books:          make(map[int64]*domain.Book),
		loadedEditions: make(map[*domain.Edition]editionRow),
		loadedUsers:    make(map[*domain.User]userRow),
		loadedAuthors:  make(map[*domain.Author]authorRow),
	}
}

func (s *session) requireOpen() error {
	if s.closed {
		return unitofwork.ErrNotOpen
	}

	return nil
}

// query runs a select and calls scan for every row. The rows are closed before query returns.
func (s *session) query(ctx context.Context, ds *goqu.SelectDataset, scan func(adapters.DBRows) error) error {
	sqlQuery, _, err := ds.ToSQL()
	if err != nil {
		return errors.Join(ErrBuildQueryFailed, err)
	}

	start := time.Now()

	rows, err := s.tx.Query(ctx, sqlQuery)
	if err != nil {
		s.store.logError(ctx, logMsgQueryFailed, err, logAttrQuery, sqlQuery)
		return errors.Join(ErrQueryFailed, err)
	}

	for rows.Next() {
		if err = scan(rows); err != nil {
			_ = rows.Close()
			s.store.logError(ctx, logMsgQueryFailed, err, logAttrQuery, sqlQuery)

			return errors.Join(ErrQueryFailed, err)
		}
	}

	if err = rows.Err(); err != nil {
		_ = rows.Close()
		s.store.logError(ctx, logMsgQueryFailed, err, logAttrQuery, sqlQuery)

		return errors.Join(ErrQueryFailed, err)
	}

	if err = rows.Close(); err != nil {
		return errors.Join(ErrQueryFailed, err)
	}

	s.store.logQueryWithDuration(ctx, sqlQuery, logActionLoad, time.Since(start))

	return nil
}

// insert writes one row and returns its generated id.
func (s *session) insert(ctx context.Context, table string, record goqu.Record) (int64, error) {
	ds := s.store.builder.Insert(table).Rows(record)
	if s.store.dialect == DialectPostgres {
		ds = ds.Returning(colID)
	}

	sqlQuery, _, err := ds.ToSQL()
	if err != nil {
		return 0, errors.Join(ErrBuildQueryFailed, err)
	}

	start := time.Now()

	id, err := s.insertAndReturnID(ctx, sqlQuery)
	if err != nil {
		s.store.logError(ctx, logMsgFlushFailed, err, logAttrTable, table, logAttrQuery, sqlQuery)
		return 0, errors.Join(ErrFlushFailed, err)
	}

	s.store.logQueryWithDuration(ctx, sqlQuery, logActionInsert, time.Since(start))

	return id, nil
}

func (s *session) insertAndReturnID(ctx context.Context, sqlQuery string) (int64, error) {
	if s.store.dialect != DialectPostgres {
		result, err := s.tx.Exec(ctx, sqlQuery)
		if err != nil {
			return 0, err
		}

		return result.LastInsertId()
	}

	rows, err := s.tx.Query(ctx, sqlQuery)
	if err != nil {
		return 0, err
	}

	var id int64

	if rows.Next() {
		err = rows.Scan(&id)
	} else {
		err = rows.Err()
	}

	return id, errors.Join(err, rows.Close())
}

// update writes changed columns of the row with the given id.
func (s *session) update(ctx context.Context, table string, id int64, record goqu.Record) error {
	sqlQuery, _, err := s.store.builder.Update(table).Set(record).Where(goqu.C(colID).Eq(id)).ToSQL()
	if err != nil {
		return errors.Join(ErrBuildQueryFailed, err)
	}

	start := time.Now()

	if _, err = s.tx.Exec(ctx, sqlQuery); err != nil {
		s.store.logError(ctx, logMsgFlushFailed, err, logAttrTable, table, logAttrQuery, sqlQuery)
		return errors.Join(ErrFlushFailed, err)
	}

	s.store.logQueryWithDuration(ctx, sqlQuery, logActionUpdate, time.Since(start))

	return nil
}

// cachedBook returns the book from the identity map or registers the given one.
func (s *session) cachedBook(id int64, name string) *domain.Book {
	if book, ok := s.books[id]; ok {
		return book
	}

	book := domain.NewBook(name)
	book.ID = id
	s.books[id] = book

	return book
}

// insertBook writes a new book, linked to an edition when editionID is not nil.
func (s *session) insertBook(ctx context.Context, book *domain.Book, editionID any) error {
	id, err := s.insert(ctx, tableBooks, goqu.Record{colName: book.Name, colEditionID: editionID})
	if err != nil {
		return err
	}

	s.assignID(&book.ID, id)
	s.books[id] = book

	return nil
}

func (s *session) assignID(target *int64, id int64) {
	*target = id
	s.assigned = append(s.assigned, target)
}

// resetAssignedIDs returns aggregates inserted by a failed commit to their unsaved state.
func (s *session) resetAssignedIDs() {
	for _, target := range s.assigned {
		*target = 0
	}

	s.assigned = nil
}

// flush writes every new aggregate and every change to a loaded one.
func (s *session) flush(
	ctx context.Context,
	editions []*domain.Edition,
	users []*domain.User,
	authors []*domain.Author,
) error {
	for _, edition := range editions {
		if err := s.flushEdition(ctx, edition); err != nil {
			return err
		}
	}

	for _, author := range authors {
		if err := s.flushAuthor(ctx, author); err != nil {
			return err
		}
	}

	for _, user := range users {
		if err := s.flushUser(ctx, user); err != nil {
			return err
		}
	}

	return nil
}
