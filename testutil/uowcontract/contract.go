package uowcontract

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TomasJani/bookshelf/domain"
	"github.com/TomasJani/bookshelf/unitofwork"
)

// Factory returns a new unopened unit of work. All units of work of one Factory share the same storage.
type Factory func() unitofwork.UnitOfWork

// ReviewWritten is an event the contract raises on authors to watch it travel through CollectNewEvents.
type ReviewWritten struct {
	Author string
	Seq    int
}

func (e ReviewWritten) EventType() domain.EventType { return "ReviewWritten" }
func (e ReviewWritten) MessageName() string          { return "ReviewWritten" }

// Run runs every contract case as a subtest. Each case starts from empty storage provided by newFactory.
func Run(t *testing.T, newFactory func(t *testing.T) Factory) {
	cases := []struct {
		name string
		fn   func(t *testing.T, factory Factory)
	}{
		{"Commit_PersistsAddedAggregates", commitPersistsAddedAggregates},
		{"End_WithoutCommit_DiscardsChangesAndEvents", endWithoutCommitDiscardsChangesAndEvents},
		{"Run_WithError_RollsBack", runWithErrorRollsBack},
		{"CollectNewEvents_YieldsEventsOfSeenAggregatesOnly", collectYieldsEventsOfSeenAggregatesOnly},
		{"CollectNewEvents_SecondCallIsEmpty", collectSecondCallIsEmpty},
		{"Begin_WhileOpen_Fails", beginWhileOpenFails},
		{"Begin_AfterEnd_StartsFreshScope", beginAfterEndStartsFreshScope},
		{"Get_Missing_IsNotFoundAndNotTracked", getMissingIsNotFoundAndNotTracked},
		{"Get_Twice_ReturnsSameInstance", getTwiceReturnsSameInstance},
		{"Edition_BooksRoundTrip", editionBooksRoundTrip},
		{"Author_BookLinksShareBookInstances", authorBookLinksShareBookInstances},
		{"Commit_WritesChangedFields", commitWritesChangedFields},
		{"Get_AfterEnd_FailsWithErrNotOpen", getAfterEndFailsWithErrNotOpen},
		{"Commit_WithoutBegin_FailsWithErrNotOpen", commitWithoutBeginFails},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			c.fn(t, newFactory(t))
		})
	}
}

func givenCommitted(t *testing.T, factory Factory, fn func(ctx context.Context, uow unitofwork.UnitOfWork)) {
	t.Helper()

	err := unitofwork.Run(context.Background(), factory(), func(ctx context.Context, uow unitofwork.UnitOfWork) error {
		fn(ctx, uow)
		return uow.Commit(ctx)
	})
	require.NoError(t, err, "error in arranging test data")
}

func findUser(t *testing.T, factory Factory, email string) (*domain.User, bool) {
	t.Helper()

	var (
		user  *domain.User
		found bool
	)

	err := unitofwork.Run(context.Background(), factory(), func(ctx context.Context, uow unitofwork.UnitOfWork) error {
		var err error
		user, found, err = uow.Users().Get(ctx, email)

		return err
	})
	require.NoError(t, err)

	return user, found
}

func commitPersistsAddedAggregates(t *testing.T, factory Factory) {
	// arrange
	uow := factory()

	// act
	err := unitofwork.Run(context.Background(), uow, func(ctx context.Context, uow unitofwork.UnitOfWork) error {
		uow.Users().Add(domain.RegisterUser("reader@example.com", "Avid Reader", "hash"))
		uow.Authors().Add(domain.NewAuthor("Ursula K. Le Guin"))

		return uow.Commit(ctx)
	})

	// assert
	require.NoError(t, err)

	user, found := findUser(t, factory, "reader@example.com")
	require.True(t, found)
	assert.NotZero(t, user.ID)
	assert.Equal(t, "Avid Reader", user.FullName)
	assert.Equal(t, "hash", user.HashedPassword)
	assert.True(t, user.IsActive)
	assert.False(t, user.HasPendingEvents(), "loaded aggregates start without pending events")
}

func endWithoutCommitDiscardsChangesAndEvents(t *testing.T, factory Factory) {
	// arrange
	ctx := context.Background()
	uow := factory()
	require.NoError(t, uow.Begin(ctx))
	uow.Users().Add(domain.RegisterUser("ghost@example.com", "", "hash"))

	// act
	err := uow.End(ctx)

	// assert
	require.NoError(t, err)
	assert.Empty(t, slices.Collect(uow.CollectNewEvents()))

	_, found := findUser(t, factory, "ghost@example.com")
	assert.False(t, found)
}

func runWithErrorRollsBack(t *testing.T, factory Factory) {
	// arrange
	handlerErr := errors.New("handler failed")
	uow := factory()

	// act
	err := unitofwork.Run(context.Background(), uow, func(_ context.Context, uow unitofwork.UnitOfWork) error {
		uow.Users().Add(domain.RegisterUser("ghost@example.com", "", "hash"))
		return handlerErr
	})

	// assert
	assert.ErrorIs(t, err, handlerErr)
	assert.Empty(t, slices.Collect(uow.CollectNewEvents()))

	_, found := findUser(t, factory, "ghost@example.com")
	assert.False(t, found)
}

func collectYieldsEventsOfSeenAggregatesOnly(t *testing.T, factory Factory) {
	// arrange
	givenCommitted(t, factory, func(_ context.Context, uow unitofwork.UnitOfWork) {
		uow.Authors().Add(domain.NewAuthor("Gene Wolfe"))
	})

	uow := factory()

	// act
	err := unitofwork.Run(context.Background(), uow, func(ctx context.Context, uow unitofwork.UnitOfWork) error {
		author, found, err := uow.Authors().Get(ctx, "Gene Wolfe")
		require.NoError(t, err)
		require.True(t, found)

		author.Raise(ReviewWritten{Author: author.Name, Seq: 1})
		author.Raise(ReviewWritten{Author: author.Name, Seq: 2})

		uow.Users().Add(domain.RegisterUser("reader@example.com", "", "hash"))

		unseen := domain.NewAuthor("Nobody Tracked")
		unseen.Raise(ReviewWritten{Author: unseen.Name, Seq: 3})

		return uow.Commit(ctx)
	})
	require.NoError(t, err)

	events := slices.Collect(uow.CollectNewEvents())

	// assert
	assert.Equal(t, []domain.Event{
		domain.NotifyNewAccount{Email: "reader@example.com"},
		ReviewWritten{Author: "Gene Wolfe", Seq: 1},
		ReviewWritten{Author: "Gene Wolfe", Seq: 2},
	}, events)
}

func collectSecondCallIsEmpty(t *testing.T, factory Factory) {
	// arrange
	uow := factory()
	givenUoW := func(ctx context.Context, uow unitofwork.UnitOfWork) error {
		uow.Users().Add(domain.RegisterUser("reader@example.com", "", "hash"))
		return uow.Commit(ctx)
	}
	require.NoError(t, unitofwork.Run(context.Background(), uow, givenUoW))

	// act
	first := slices.Collect(uow.CollectNewEvents())
	second := slices.Collect(uow.CollectNewEvents())

	// assert
	assert.Len(t, first, 1)
	assert.Empty(t, second)
}

func beginWhileOpenFails(t *testing.T, factory Factory) {
	// arrange
	ctx := context.Background()
	uow := factory()
	require.NoError(t, uow.Begin(ctx))
	defer func() { _ = uow.End(ctx) }()

	// act
	err := uow.Begin(ctx)

	// assert
	assert.ErrorIs(t, err, unitofwork.ErrAlreadyOpen)
}

func beginAfterEndStartsFreshScope(t *testing.T, factory Factory) {
	// arrange
	ctx := context.Background()
	uow := factory()
	require.NoError(t, unitofwork.Run(ctx, uow, func(ctx context.Context, uow unitofwork.UnitOfWork) error {
		uow.Users().Add(domain.RegisterUser("first@example.com", "", "hash"))
		return uow.Commit(ctx)
	}))

	// act
	require.NoError(t, uow.Begin(ctx))
	defer func() { _ = uow.End(ctx) }()

	// assert
	assert.Empty(t, uow.Users().Seen())
	assert.Empty(t, uow.Editions().Seen())
	assert.Empty(t, uow.Authors().Seen())
	assert.Empty(t, slices.Collect(uow.CollectNewEvents()), "the new scope has not committed")

	user, found, err := uow.Users().Get(ctx, "first@example.com")
	require.NoError(t, err)
	assert.True(t, found, "data of the first attempt is committed")
	assert.False(t, user.HasPendingEvents())
}

func getMissingIsNotFoundAndNotTracked(t *testing.T, factory Factory) {
	// arrange
	ctx := context.Background()
	uow := factory()
	require.NoError(t, uow.Begin(ctx))
	defer func() { _ = uow.End(ctx) }()

	// act
	user, found, err := uow.Users().Get(ctx, "nobody@example.com")

	// assert
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, user)
	assert.Empty(t, uow.Users().Seen())
}

func getTwiceReturnsSameInstance(t *testing.T, factory Factory) {
	// arrange
	givenCommitted(t, factory, func(_ context.Context, uow unitofwork.UnitOfWork) {
		uow.Editions().Add(domain.NewEdition("Hardcover"))
	})

	ctx := context.Background()
	uow := factory()
	require.NoError(t, uow.Begin(ctx))
	defer func() { _ = uow.End(ctx) }()

	// act
	first, _, errFirst := uow.Editions().Get(ctx, "Hardcover")
	second, _, errSecond := uow.Editions().Get(ctx, "Hardcover")

	// assert
	require.NoError(t, errors.Join(errFirst, errSecond))
	assert.Same(t, first, second)
	assert.Len(t, uow.Editions().Seen(), 1)
}

func editionBooksRoundTrip(t *testing.T, factory Factory) {
	// arrange
	givenCommitted(t, factory, func(_ context.Context, uow unitofwork.UnitOfWork) {
		edition := domain.NewEdition("Paperback")
		edition.AddBook("Dune")
		edition.AddBook("Dune Messiah")
		uow.Editions().Add(edition)
	})

	// act
	givenCommitted(t, factory, func(ctx context.Context, uow unitofwork.UnitOfWork) {
		edition, found, err := uow.Editions().Get(ctx, "Paperback")
		require.NoError(t, err)
		require.True(t, found)
		edition.AddBook("Children of Dune")
	})

	// assert
	ctx := context.Background()
	uow := factory()
	require.NoError(t, uow.Begin(ctx))
	defer func() { _ = uow.End(ctx) }()

	edition, found, err := uow.Editions().Get(ctx, "Paperback")
	require.NoError(t, err)
	require.True(t, found)

	var names []string
	for _, book := range edition.Books {
		assert.NotZero(t, book.ID)
		names = append(names, book.Name)
	}

	assert.Equal(t, []string{"Dune", "Dune Messiah", "Children of Dune"}, names)
}

func authorBookLinksShareBookInstances(t *testing.T, factory Factory) {
	// arrange
	givenCommitted(t, factory, func(_ context.Context, uow unitofwork.UnitOfWork) {
		edition := domain.NewEdition("Paperback")
		book := edition.AddBook("Dune")
		author := domain.NewAuthor("Frank Herbert")
		author.AddBook(book)
		author.AddBook(domain.NewBook("The Dosadi Experiment"))

		uow.Editions().Add(edition)
		uow.Authors().Add(author)
	})

	ctx := context.Background()
	uow := factory()
	require.NoError(t, uow.Begin(ctx))
	defer func() { _ = uow.End(ctx) }()

	// act
	edition, _, errEdition := uow.Editions().Get(ctx, "Paperback")
	author, found, errAuthor := uow.Authors().Get(ctx, "Frank Herbert")

	// assert
	require.NoError(t, errors.Join(errEdition, errAuthor))
	require.True(t, found)
	require.Len(t, author.Books, 2)
	assert.Same(t, edition.Books[0], author.Books[0], "one row, one instance per scope")
	assert.Equal(t, "The Dosadi Experiment", author.Books[1].Name)
}

func commitWritesChangedFields(t *testing.T, factory Factory) {
	// arrange
	givenCommitted(t, factory, func(_ context.Context, uow unitofwork.UnitOfWork) {
		uow.Users().Add(domain.RegisterUser("reader@example.com", "Old Name", "hash"))
	})

	// act
	givenCommitted(t, factory, func(ctx context.Context, uow unitofwork.UnitOfWork) {
		user, found, err := uow.Users().Get(ctx, "reader@example.com")
		require.NoError(t, err)
		require.True(t, found)

		user.FullName = "New Name"
		user.IsActive = false
	})

	// assert
	user, found := findUser(t, factory, "reader@example.com")
	require.True(t, found)
	assert.Equal(t, "New Name", user.FullName)
	assert.False(t, user.IsActive)
}

func getAfterEndFailsWithErrNotOpen(t *testing.T, factory Factory) {
	// arrange
	ctx := context.Background()
	uow := factory()
	require.NoError(t, uow.Begin(ctx))
	users := uow.Users()
	require.NoError(t, uow.End(ctx))

	// act
	_, _, err := users.Get(ctx, "reader@example.com")

	// assert
	assert.ErrorIs(t, err, unitofwork.ErrNotOpen)
	assert.NoError(t, uow.End(ctx), "ending twice is a no-op")
}

func commitWithoutBeginFails(t *testing.T, factory Factory) {
	// act
	err := factory().Commit(context.Background())

	// assert
	assert.ErrorIs(t, err, unitofwork.ErrNotOpen)
}
