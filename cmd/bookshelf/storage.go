package main

import (
	"context"
	"io"

	"github.com/TomasJani/bookshelf/config"
	"github.com/TomasJani/bookshelf/unitofwork"
	"github.com/TomasJani/bookshelf/unitofwork/memoryengine"
	"github.com/TomasJani/bookshelf/unitofwork/sqlengine"
)

type storage struct {
	newUnitOfWork func() unitofwork.UnitOfWork
	ensureSchema  func(ctx context.Context) error
	close         func()
}

func openStorage(ctx context.Context, cfg config.Config, options ...sqlengine.Option) (storage, error) {
	var (
		store  *sqlengine.Store
		closer io.Closer
		err    error
	)

	switch cfg.DBDriver {
	case config.DriverMemory:
		db := memoryengine.NewDatabase()

		return storage{
			newUnitOfWork: func() unitofwork.UnitOfWork { return db.UnitOfWork() },
			ensureSchema:  func(context.Context) error { return nil },
			close:         func() {},
		}, nil

	case config.DriverPGX:
		pool, poolErr := config.PostgresPGXPool(ctx, cfg.DatabaseDSN)
		if poolErr != nil {
			return storage{}, poolErr
		}

		store, err = sqlengine.NewStoreFromPGXPool(pool, options...)
		closer = closeFunc(func() error { pool.Close(); return nil })

	case config.DriverPostgres:
		db, dbErr := config.PostgresSQLDB(ctx, cfg.DatabaseDSN)
		if dbErr != nil {
			return storage{}, dbErr
		}

		store, err = sqlengine.NewStoreFromSQLDB(db, options...)
		closer = db

	case config.DriverSQLX:
		db, dbErr := config.PostgresSQLX(ctx, cfg.DatabaseDSN)
		if dbErr != nil {
			return storage{}, dbErr
		}

		store, err = sqlengine.NewStoreFromSQLX(db, options...)
		closer = db

	default:
		db, dbErr := config.SQLiteDB(ctx, cfg.DatabaseDSN)
		if dbErr != nil {
			return storage{}, dbErr
		}

		options = append(options, sqlengine.WithDialect(sqlengine.DialectSQLite))
		store, err = sqlengine.NewStoreFromSQLDB(db, options...)
		closer = db
	}

	if err != nil {
		_ = closer.Close()
		return storage{}, err
	}

	return storage{
		newUnitOfWork: func() unitofwork.UnitOfWork { return store.UnitOfWork() },
		ensureSchema:  store.EnsureSchema,
		close:         func() { _ = closer.Close() },
	}, nil
}

type closeFunc func() error

func (f closeFunc) Close() error { return f() }
