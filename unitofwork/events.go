package unitofwork

import (
	"iter"

	"github.com/TomasJani/bookshelf/domain"
	"github.com/TomasJani/bookshelf/repository"
)

// Drain yields the pending events of every aggregate in seen, taking from each aggregate until its queue stays
// empty, so events raised while the consumer runs are drained too. It returns false if yield asked to stop.
func Drain[T domain.Aggregate](seen []T, yield func(domain.Event) bool) bool {
	for _, aggregate := range seen {
		for {
			events := aggregate.TakePendingEvents()
			if len(events) == 0 {
				break
			}

			for i, event := range events {
				if !yield(event) {
					requeue(aggregate, events[i+1:])
					return false
				}
			}
		}
	}

	return true
}

// requeue puts back events the consumer did not take, ahead of anything raised meanwhile.
func requeue(aggregate domain.Aggregate, rest domain.Events) {
	if len(rest) == 0 {
		return
	}

	raiser, ok := aggregate.(interface{ Raise(domain.Event) })
	if !ok {
		return
	}

	later := aggregate.TakePendingEvents()
	for _, event := range rest {
		raiser.Raise(event)
	}

	for _, event := range later {
		raiser.Raise(event)
	}
}

// EventSequence builds the CollectNewEvents sequence shared by the engines: editions, then users, then authors.
// The repositories are read when the sequence runs, not when it is built.
func EventSequence(
	lifecycle *Lifecycle,
	editions func() repository.EditionRepository,
	users func() repository.UserRepository,
	authors func() repository.AuthorRepository,
) iter.Seq[domain.Event] {
	return func(yield func(domain.Event) bool) {
		if !lifecycle.Committed() {
			return
		}

		if !Drain(editions().Seen(), yield) {
			return
		}

		if !Drain(users().Seen(), yield) {
			return
		}

		Drain(authors().Seen(), yield)
	}
}
