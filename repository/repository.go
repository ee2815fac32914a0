package repository

import (
	"context"

	"github.com/TomasJani/bookshelf/domain"
)

// Repository stages and loads aggregates of one kind and tracks every aggregate it touched.
type Repository[T comparable] interface {
	// Add stages a new aggregate for insertion at the next commit and marks it as seen.
	Add(entity T)

	// Get loads an aggregate by its natural key. A missing aggregate is reported with found == false and is
	// not tracked.
	Get(ctx context.Context, key string) (entity T, found bool, err error)

	// Seen returns every aggregate added or loaded through this repository.
	Seen() []T
}

type (
	// EditionRepository loads editions by name.
	EditionRepository = Repository[*domain.Edition]

	// UserRepository loads users by email.
	UserRepository = Repository[*domain.User]

	// AuthorRepository loads authors by name.
	AuthorRepository = Repository[*domain.Author]
)

// Finder loads one aggregate by natural key from the storage session.
type Finder[T comparable] interface {
	FindByKey(ctx context.Context, key string) (T, bool, error)
}

// Stager hands a new aggregate to the storage session. Nothing is written before the session flushes.
type Stager[T comparable] interface {
	Stage(entity T)
}

// Storage is the per-kind storage collaborator a TrackingRepository delegates to.
type Storage[T comparable] interface {
	Finder[T]
	Stager[T]
}

// TrackingRepository is the Repository implementation shared by all storage engines.
type TrackingRepository[T comparable] struct {
	storage Storage[T]
	seen    Tracker[T]
}

// Option configures a TrackingRepository.
type Option[T comparable] func(*TrackingRepository[T])

// WithTracker replaces the default SeenSet.
func WithTracker[T comparable](tracker Tracker[T]) Option[T] {
	return func(r *TrackingRepository[T]) {
		r.seen = tracker
	}
}

// NewTrackingRepository binds a repository with an empty seen set to the given storage.
func NewTrackingRepository[T comparable](storage Storage[T], options ...Option[T]) *TrackingRepository[T] {
	r := &TrackingRepository[T]{
		storage: storage,
		seen:    NewSeenSet[T](),
	}

	for _, option := range options {
		option(r)
	}

	return r
}

// Add implements Repository.
func (r *TrackingRepository[T]) Add(entity T) {
	r.storage.Stage(entity)
	r.seen.Add(entity)
}

// Get implements Repository. Storage errors are returned unchanged.
func (r *TrackingRepository[T]) Get(ctx context.Context, key string) (T, bool, error) {
	entity, found, err := r.storage.FindByKey(ctx, key)
	if err != nil {
		var zero T
		return zero, false, err
	}

	if !found {
		var zero T
		return zero, false, nil
	}

	r.seen.Add(entity)

	return entity, true, nil
}

// Seen implements Repository.
func (r *TrackingRepository[T]) Seen() []T {
	return r.seen.All()
}
