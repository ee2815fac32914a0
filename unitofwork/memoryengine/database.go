package memoryengine

import (
	"slices"
	"sync"

	"github.com/TomasJani/bookshelf/domain"
)

type (
	editionRecord struct {
		name string
	}

	bookRecord struct {
		name      string
		editionID int64
	}

	authorRecord struct {
		name string
	}

	userRecord struct {
		email          string
		fullName       string
		hashedPassword string
		isActive       bool
	}

	link struct {
		authorID int64
		bookID   int64
	}
)

// Database holds the committed state. It is safe for concurrent use by many units of work.
type Database struct {
	mu        sync.RWMutex
	lastID    int64
	editions  map[int64]editionRecord
	books     map[int64]bookRecord
	authors   map[int64]authorRecord
	users     map[int64]userRecord
	links     []link
	commitErr error
}

// NewDatabase returns an empty Database.
func NewDatabase() *Database {
	return &Database{
		editions: make(map[int64]editionRecord),
		books:    make(map[int64]bookRecord),
		authors:  make(map[int64]authorRecord),
		users:    make(map[int64]userRecord),
	}
}

// UnitOfWork returns a new, unopened unit of work on this Database.
func (d *Database) UnitOfWork() *UnitOfWork {
	return newUnitOfWork(d)
}

// FailCommits makes every following commit fail with err until it is called with nil.
func (d *Database) FailCommits(err error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.commitErr = err
}

// Counts reports the number of committed rows per table, keyed by the SQL table names.
func (d *Database) Counts() map[string]int {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return map[string]int{
		"editions":           len(d.editions),
		"books":              len(d.books),
		"authors":            len(d.authors),
		"users":              len(d.users),
		"map_book_to_author": len(d.links),
	}
}

func (d *Database) nextID() int64 {
	d.lastID++
	return d.lastID
}

// firstID returns the lowest id whose row matches, mirroring an ORDER BY id LIMIT 1 lookup.
func firstID[R any](rows map[int64]R, match func(R) bool) (int64, bool) {
	ids := make([]int64, 0, len(rows))
	for id, row := range rows {
		if match(row) {
			ids = append(ids, id)
		}
	}

	if len(ids) == 0 {
		return 0, false
	}

	return slices.Min(ids), true
}

func (d *Database) loadEdition(name string, books map[int64]*domain.Book) (*domain.Edition, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	id, ok := firstID(d.editions, func(r editionRecord) bool { return r.name == name })
	if !ok {
		return nil, false
	}

	edition := domain.NewEdition(d.editions[id].name)
	edition.ID = id

	bookIDs := make([]int64, 0)
	for bookID, book := range d.books {
		if book.editionID == id {
			bookIDs = append(bookIDs, bookID)
		}
	}

	slices.Sort(bookIDs)

	for _, bookID := range bookIDs {
		edition.Books = append(edition.Books, cachedBook(books, bookID, d.books[bookID].name))
	}

	return edition, true
}

func (d *Database) loadAuthor(name string, books map[int64]*domain.Book) (*domain.Author, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	id, ok := firstID(d.authors, func(r authorRecord) bool { return r.name == name })
	if !ok {
		return nil, false
	}

	author := domain.NewAuthor(d.authors[id].name)
	author.ID = id

	for _, l := range d.links {
		if l.authorID == id {
			author.AddBook(cachedBook(books, l.bookID, d.books[l.bookID].name))
		}
	}

	return author, true
}

func (d *Database) loadUser(email string) (*domain.User, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	id, ok := firstID(d.users, func(r userRecord) bool { return r.email == email })
	if !ok {
		return nil, false
	}

	row := d.users[id]

	return &domain.User{
		ID:             id,
		Email:          row.email,
		FullName:       row.fullName,
		HashedPassword: row.hashedPassword,
		IsActive:       row.isActive,
	}, true
}

// apply writes the seen aggregates in one critical section. Ids are assigned to new aggregates and books.
func (d *Database) apply(editions []*domain.Edition, users []*domain.User, authors []*domain.Author) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.commitErr != nil {
		return d.commitErr
	}

	for _, edition := range editions {
		if edition.ID == 0 {
			edition.ID = d.nextID()
		}

		d.editions[edition.ID] = editionRecord{name: edition.Name}

		for _, book := range edition.Books {
			if book.ID == 0 {
				book.ID = d.nextID()
			}

			d.books[book.ID] = bookRecord{name: book.Name, editionID: edition.ID}
		}
	}

	for _, author := range authors {
		if author.ID == 0 {
			author.ID = d.nextID()
		}

		d.authors[author.ID] = authorRecord{name: author.Name}

		for _, book := range author.Books {
			if book.ID == 0 {
				book.ID = d.nextID()
				d.books[book.ID] = bookRecord{name: book.Name}
			}

			l := link{authorID: author.ID, bookID: book.ID}
			if !slices.Contains(d.links, l) {
				d.links = append(d.links, l)
			}
		}
	}

	for _, user := range users {
		if user.ID == 0 {
			user.ID = d.nextID()
		}

		d.users[user.ID] = userRecord{
			email:          user.Email,
			fullName:       user.FullName,
			hashedPassword: user.HashedPassword,
			isActive:       user.IsActive,
		}
	}

	return nil
}

func cachedBook(books map[int64]*domain.Book, id int64, name string) *domain.Book {
	if book, ok := books[id]; ok {
		return book
	}

	book := domain.NewBook(name)
	book.ID = id
	books[id] = book

	return book
}
