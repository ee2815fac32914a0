package repository_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TomasJani/bookshelf/domain"
	"github.com/TomasJani/bookshelf/repository"
)

type storageFake struct {
	byName map[string]*domain.Author
	staged []*domain.Author
	err    error
}

func (s *storageFake) FindByKey(_ context.Context, key string) (*domain.Author, bool, error) {
	if s.err != nil {
		return nil, false, s.err
	}

	author, ok := s.byName[key]

	return author, ok, nil
}

func (s *storageFake) Stage(author *domain.Author) {
	s.staged = append(s.staged, author)
}

func Test_TrackingRepository_Add_StagesAndTracks(t *testing.T) {
	// arrange
	storage := &storageFake{}
	repo := repository.NewTrackingRepository[*domain.Author](storage)
	author := domain.NewAuthor("N. K. Jemisin")

	// act
	repo.Add(author)

	// assert
	assert.Equal(t, []*domain.Author{author}, storage.staged)
	assert.Equal(t, []*domain.Author{author}, repo.Seen())
}

func Test_TrackingRepository_Get_TracksFoundAggregate(t *testing.T) {
	// arrange
	author := domain.NewAuthor("Iain M. Banks")
	storage := &storageFake{byName: map[string]*domain.Author{author.Name: author}}
	repo := repository.NewTrackingRepository[*domain.Author](storage)

	// act
	got, found, err := repo.Get(context.Background(), author.Name)

	// assert
	require.NoError(t, err)
	assert.True(t, found)
	assert.Same(t, author, got)
	assert.Equal(t, []*domain.Author{author}, repo.Seen())
	assert.Empty(t, storage.staged, "loading must not stage anything")
}

func Test_TrackingRepository_Get_NotFoundIsNotTracked(t *testing.T) {
	// arrange
	repo := repository.NewTrackingRepository[*domain.Author](&storageFake{})

	// act
	got, found, err := repo.Get(context.Background(), "nobody")

	// assert
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, got)
	assert.Empty(t, repo.Seen())
}

func Test_TrackingRepository_Get_PropagatesStorageError(t *testing.T) {
	// arrange
	storageErr := errors.New("connection reset")
	repo := repository.NewTrackingRepository[*domain.Author](&storageFake{err: storageErr})

	// act
	_, found, err := repo.Get(context.Background(), "anyone")

	// assert
	assert.ErrorIs(t, err, storageErr)
	assert.False(t, found)
	assert.Empty(t, repo.Seen())
}

func Test_TrackingRepository_WithTracker_UsesGivenTracker(t *testing.T) {
	// arrange
	tracker := repository.NewSeenSet[*domain.Author]()
	repo := repository.NewTrackingRepository[*domain.Author](&storageFake{}, repository.WithTracker[*domain.Author](tracker))

	// act
	repo.Add(domain.NewAuthor("Ted Chiang"))

	// assert
	assert.Equal(t, 1, tracker.Len())
}
