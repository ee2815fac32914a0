package sqlengine

import (
	"context"

	"github.com/doug-martin/goqu/v9"

	"github.com/TomasJani/bookshelf/domain"
	"github.com/TomasJani/bookshelf/unitofwork/sqlengine/internal/adapters"
)

type userStorage struct {
	s *session
}

func (st userStorage) Stage(user *domain.User) {
	st.s.users[user.Email] = user
}

func (st userStorage) FindByKey(ctx context.Context, email string) (*domain.User, bool, error) {
	if err := st.s.requireOpen(); err != nil {
		return nil, false, err
	}

	if user, ok := st.s.users[email]; ok {
		return user, true, nil
	}

	var user *domain.User

	ds := st.s.store.builder.
		From(tableUsers).
		Select(
			colID,
			colEmail,
			goqu.COALESCE(goqu.C(colName), "").As(colName),
			goqu.COALESCE(goqu.C(colHashedPassword), "").As(colHashedPassword),
			goqu.COALESCE(goqu.C(colIsActive), false).As(colIsActive),
		).
		Where(goqu.C(colEmail).Eq(email)).
		Order(goqu.C(colID).Asc()).
		Limit(1)

	err := st.s.query(ctx, ds, func(rows adapters.DBRows) error {
		user = &domain.User{}
		return rows.Scan(&user.ID, &user.Email, &user.FullName, &user.HashedPassword, &user.IsActive)
	})
	if err != nil || user == nil {
		return nil, false, err
	}

	st.s.users[email] = user
	st.s.loadedUsers[user] = userRow{
		fullName:       user.FullName,
		hashedPassword: user.HashedPassword,
		isActive:       user.IsActive,
	}

	return user, true, nil
}

func (s *session) flushUser(ctx context.Context, user *domain.User) error {
	if user.ID == 0 {
		id, err := s.insert(ctx, tableUsers, goqu.Record{
			colEmail:          user.Email,
			colName:           user.FullName,
			colHashedPassword: user.HashedPassword,
			colIsActive:       user.IsActive,
		})
		if err != nil {
			return err
		}

		s.assignID(&user.ID, id)

		return nil
	}

	loaded, ok := s.loadedUsers[user]
	if !ok {
		return nil
	}

	changed := goqu.Record{}
	if loaded.fullName != user.FullName {
		changed[colName] = user.FullName
	}

	if loaded.hashedPassword != user.HashedPassword {
		changed[colHashedPassword] = user.HashedPassword
	}

	if loaded.isActive != user.IsActive {
		changed[colIsActive] = user.IsActive
	}

	if len(changed) == 0 {
		return nil
	}

	return s.update(ctx, tableUsers, user.ID, changed)
}
