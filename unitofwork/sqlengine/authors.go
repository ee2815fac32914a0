package sqlengine

import (
	"context"

	"github.com/doug-martin/goqu/v9"

	"github.com/TomasJani/bookshelf/domain"
	"github.com/TomasJani/bookshelf/unitofwork/sqlengine/internal/adapters"
)

type authorStorage struct {
	s *session
}

func (st authorStorage) Stage(author *domain.Author) {
	st.s.authors[author.Name] = author
}

func (st authorStorage) FindByKey(ctx context.Context, name string) (*domain.Author, bool, error) {
	if err := st.s.requireOpen(); err != nil {
		return nil, false, err
	}

	if author, ok := st.s.authors[name]; ok {
		return author, true, nil
	}

	var author *domain.Author

	ds := st.s.store.builder.
		From(tableAuthors).
		Select(colID, colName).
		Where(goqu.C(colName).Eq(name)).
		Order(goqu.C(colID).Asc()).
		Limit(1)

	err := st.s.query(ctx, ds, func(rows adapters.DBRows) error {
		author = domain.NewAuthor(name)
		return rows.Scan(&author.ID, &author.Name)
	})
	if err != nil || author == nil {
		return nil, false, err
	}

	books := st.s.store.builder.
		From(goqu.T(tableBooks).As("b")).
		Join(goqu.T(tableMapBookToAuthor).As("m"), goqu.On(goqu.I("m."+colBookID).Eq(goqu.I("b."+colID)))).
		Select(goqu.I("b."+colID), goqu.I("b."+colName)).
		Where(goqu.I("m."+colAuthorID).Eq(author.ID)).
		Order(goqu.I("m."+colID).Asc())

	bookIDs := make(map[int64]struct{})

	err = st.s.query(ctx, books, func(rows adapters.DBRows) error {
		var (
			id       int64
			bookName string
		)

		if scanErr := rows.Scan(&id, &bookName); scanErr != nil {
			return scanErr
		}

		author.AddBook(st.s.cachedBook(id, bookName))
		bookIDs[id] = struct{}{}

		return nil
	})
	if err != nil {
		return nil, false, err
	}

	st.s.authors[name] = author
	st.s.loadedAuthors[author] = authorRow{name: author.Name, bookIDs: bookIDs}

	return author, true, nil
}

func (s *session) flushAuthor(ctx context.Context, author *domain.Author) error {
	loaded, wasLoaded := s.loadedAuthors[author]

	if author.ID == 0 {
		id, err := s.insert(ctx, tableAuthors, goqu.Record{colName: author.Name})
		if err != nil {
			return err
		}

		s.assignID(&author.ID, id)
	} else if wasLoaded && loaded.name != author.Name {
		if err := s.update(ctx, tableAuthors, author.ID, goqu.Record{colName: author.Name}); err != nil {
			return err
		}
	}

	for _, book := range author.Books {
		if book.ID == 0 {
			if err := s.insertBook(ctx, book, nil); err != nil {
				return err
			}
		}

		if _, linked := loaded.bookIDs[book.ID]; linked {
			continue
		}

		if _, err := s.insert(ctx, tableMapBookToAuthor, goqu.Record{colAuthorID: author.ID, colBookID: book.ID}); err != nil {
			return err
		}
	}

	return nil
}
