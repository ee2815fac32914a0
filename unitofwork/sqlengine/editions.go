package sqlengine

import (
	"context"

	"github.com/doug-martin/goqu/v9"

	"github.com/TomasJani/bookshelf/domain"
	"github.com/TomasJani/bookshelf/unitofwork/sqlengine/internal/adapters"
)

type editionStorage struct {
	s *session
}

func (st editionStorage) Stage(edition *domain.Edition) {
	st.s.editions[edition.Name] = edition
}

func (st editionStorage) FindByKey(ctx context.Context, name string) (*domain.Edition, bool, error) {
	if err := st.s.requireOpen(); err != nil {
		return nil, false, err
	}

	if edition, ok := st.s.editions[name]; ok {
		return edition, true, nil
	}

	var edition *domain.Edition

	ds := st.s.store.builder.
		From(tableEditions).
		Select(colID, colName).
		Where(goqu.C(colName).Eq(name)).
		Order(goqu.C(colID).Asc()).
		Limit(1)

	err := st.s.query(ctx, ds, func(rows adapters.DBRows) error {
		edition = domain.NewEdition(name)
		return rows.Scan(&edition.ID, &edition.Name)
	})
	if err != nil || edition == nil {
		return nil, false, err
	}

	books := st.s.store.builder.
		From(tableBooks).
		Select(colID, colName).
		Where(goqu.C(colEditionID).Eq(edition.ID)).
		Order(goqu.C(colID).Asc())

	err = st.s.query(ctx, books, func(rows adapters.DBRows) error {
		var (
			id       int64
			bookName string
		)

		if scanErr := rows.Scan(&id, &bookName); scanErr != nil {
			return scanErr
		}

		edition.Books = append(edition.Books, st.s.cachedBook(id, bookName))

		return nil
	})
	if err != nil {
		return nil, false, err
	}

	st.s.editions[name] = edition
	st.s.loadedEditions[edition] = editionRow{name: edition.Name}

	return edition, true, nil
}

func (s *session) flushEdition(ctx context.Context, edition *domain.Edition) error {
	if edition.ID == 0 {
		id, err := s.insert(ctx, tableEditions, goqu.Record{colName: edition.Name})
		if err != nil {
			return err
		}

		s.assignID(&edition.ID, id)
	} else if loaded, ok := s.loadedEditions[edition]; ok && loaded.name != edition.Name {
		if err := s.update(ctx, tableEditions, edition.ID, goqu.Record{colName: edition.Name}); err != nil {
			return err
		}
	}

	for _, book := range edition.Books {
		if book.ID != 0 {
			continue
		}

		if err := s.insertBook(ctx, book, edition.ID); err != nil {
			return err
		}
	}

	return nil
}
