package unitofwork_test

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/TomasJani/bookshelf/domain"
	"github.com/TomasJani/bookshelf/repository"
	"github.com/TomasJani/bookshelf/unitofwork"
)

type somethingHappened struct{ ID int }

func (e somethingHappened) EventType() domain.EventType { return "SomethingHappened" }
func (e somethingHappened) MessageName() string          { return "SomethingHappened" }

func Test_Drain_TakesEventsRaisedDuringIteration(t *testing.T) {
	// arrange
	author := domain.NewAuthor("Gene Wolfe")
	author.Raise(somethingHappened{ID: 1})

	var got []domain.Event

	// act
	completed := unitofwork.Drain([]*domain.Author{author}, func(event domain.Event) bool {
		got = append(got, event)
		if event == (somethingHappened{ID: 1}) {
			author.Raise(somethingHappened{ID: 2})
		}

		return true
	})

	// assert
	assert.True(t, completed)
	assert.Equal(t, []domain.Event{somethingHappened{ID: 1}, somethingHappened{ID: 2}}, got)
	assert.False(t, author.HasPendingEvents())
}

func Test_Drain_EarlyStopKeepsUnconsumedEvents(t *testing.T) {
	// arrange
	author := domain.NewAuthor("Gene Wolfe")
	author.Raise(somethingHappened{ID: 1})
	author.Raise(somethingHappened{ID: 2})

	// act
	completed := unitofwork.Drain([]*domain.Author{author}, func(domain.Event) bool { return false })

	// assert
	assert.False(t, completed)
	assert.Equal(t, domain.Events{somethingHappened{ID: 2}}, author.TakePendingEvents())
}

func Test_EventSequence_OrderAndOneShot(t *testing.T) {
	// arrange
	editions := repository.NewTrackingRepository[*domain.Edition](&nopStorage[*domain.Edition]{})
	users := repository.NewTrackingRepository[*domain.User](&nopStorage[*domain.User]{})
	authors := repository.NewTrackingRepository[*domain.Author](&nopStorage[*domain.Author]{})

	edition := domain.NewEdition("Hardcover")
	edition.Raise(somethingHappened{ID: 1})
	editions.Add(edition)

	users.Add(domain.RegisterUser("reader@example.com", "", "hash"))

	author := domain.NewAuthor("Gene Wolfe")
	author.Raise(somethingHappened{ID: 3})
	authors.Add(author)

	var lifecycle unitofwork.Lifecycle
	lifecycle.Set(unitofwork.Open)
	lifecycle.Set(unitofwork.Committed)

	sequence := unitofwork.EventSequence(
		&lifecycle,
		func() repository.EditionRepository { return editions },
		func() repository.UserRepository { return users },
		func() repository.AuthorRepository { return authors },
	)

	// act
	first := slices.Collect(sequence)
	second := slices.Collect(sequence)

	// assert
	assert.Equal(t, []domain.Event{
		somethingHappened{ID: 1},
		domain.NotifyNewAccount{Email: "reader@example.com"},
		somethingHappened{ID: 3},
	}, first)
	assert.Empty(t, second)
}

func Test_EventSequence_YieldsNothingWithoutCommit(t *testing.T) {
	// arrange
	users := repository.NewTrackingRepository[*domain.User](&nopStorage[*domain.User]{})
	user := domain.RegisterUser("reader@example.com", "", "hash")
	users.Add(user)

	var lifecycle unitofwork.Lifecycle
	lifecycle.Set(unitofwork.Open)
	lifecycle.Set(unitofwork.RolledBack)

	sequence := unitofwork.EventSequence(
		&lifecycle,
		func() repository.EditionRepository { return unitofwork.Detached[*domain.Edition]() },
		func() repository.UserRepository { return users },
		func() repository.AuthorRepository { return unitofwork.Detached[*domain.Author]() },
	)

	// act
	got := slices.Collect(sequence)

	// assert
	assert.Empty(t, got)
	assert.True(t, user.HasPendingEvents(), "events of a rolled back scope stay on the aggregate")
}
