package domain

// Author wrote one or many books. The natural key is Name.
type Author struct {
	PendingEvents

	ID    int64
	Name  string
	Books []*Book
}

// NewAuthor creates an Author that has not been persisted yet.
func NewAuthor(name string) *Author {
	return &Author{Name: name, Books: []*Book{}}
}

// AddBook links the book to the author on both sides.
func (a *Author) AddBook(book *Book) {
	for _, b := range a.Books {
		if b == book {
			return
		}
	}

	a.Books = append(a.Books, book)
	book.Authors = append(book.Authors, a)
}
