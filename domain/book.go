package domain

// Book belongs to at most one Edition and may have many Authors.
type Book struct {
	ID      int64
	Name    string
	Authors []*Author
}

// NewBook creates a Book that has not been persisted yet.
func NewBook(name string) *Book {
	return &Book{Name: name, Authors: []*Author{}}
}
