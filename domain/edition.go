package domain

// Edition groups books. The natural key is Name.
type Edition struct {
	PendingEvents

	ID    int64
	Name  string
	Books []*Book
}

// NewEdition creates an Edition that has not been persisted yet.
func NewEdition(name string) *Edition {
	return &Edition{Name: name, Books: []*Book{}}
}

// AddBook creates a new book with the given name inside the edition and returns it.
func (e *Edition) AddBook(name string) *Book {
	book := NewBook(name)
	e.Books = append(e.Books, book)

	return book
}
