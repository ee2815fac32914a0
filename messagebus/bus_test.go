package messagebus_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TomasJani/bookshelf/domain"
	"github.com/TomasJani/bookshelf/messagebus"
	"github.com/TomasJani/bookshelf/services"
	"github.com/TomasJani/bookshelf/testutil/testdoubles"
	"github.com/TomasJani/bookshelf/unitofwork"
	"github.com/TomasJani/bookshelf/unitofwork/memoryengine"
)

type chapterRead struct {
	Seq int
}

func (e chapterRead) EventType() domain.EventType { return "ChapterRead" }
func (e chapterRead) MessageName() string          { return "ChapterRead" }

type rawMessage struct{}

func (rawMessage) MessageName() string { return "Raw" }

func givenBus(
	t *testing.T,
	commands messagebus.CommandHandlers,
	events messagebus.EventHandlers,
	options ...messagebus.Option,
) (*messagebus.MessageBus, *memoryengine.Database) {
	t.Helper()

	db := memoryengine.NewDatabase()

	serviceRegistry := services.NewRegistry()
	services.RegisterFactory(serviceRegistry, func(context.Context) (unitofwork.UnitOfWork, error) {
		return db.UnitOfWork(), nil
	})

	registry, err := messagebus.NewRegistry(commands, events)
	require.NoError(t, err, "error in arranging test data")

	bus, err := messagebus.NewMessageBus(registry, serviceRegistry, options...)
	require.NoError(t, err, "error in arranging test data")

	return bus, db
}

// raisingAuthor returns a command handler that commits a new author carrying the given events.
func raisingAuthor(name string, events ...domain.Event) messagebus.CommandHandler {
	return func(ctx context.Context, _ domain.Command, container *services.Container) error {
		uow, err := services.Get[unitofwork.UnitOfWork](ctx, container)
		if err != nil {
			return err
		}

		return unitofwork.Run(ctx, uow, func(ctx context.Context, uow unitofwork.UnitOfWork) error {
			author := domain.NewAuthor(name)
			for _, event := range events {
				author.Raise(event)
			}

			uow.Authors().Add(author)

			return uow.Commit(ctx)
		})
	}
}

func Test_MessageBus_Handle_UnregisteredCommand(t *testing.T) {
	// arrange
	bus, _ := givenBus(t, nil, nil)

	// act
	err := bus.Handle(context.Background(), domain.CreateAuthor{Name: "Gene Wolfe"})

	// assert
	assert.ErrorIs(t, err, messagebus.ErrNoCommandHandler)
}

func Test_MessageBus_Handle_EventWithoutHandlersIsNoOp(t *testing.T) {
	// arrange
	bus, _ := givenBus(t, nil, nil)

	// act
	err := bus.Handle(context.Background(), domain.NotifyNewAccount{Email: "reader@example.com"})

	// assert
	assert.NoError(t, err)
}

func Test_MessageBus_Handle_UnsupportedMessage(t *testing.T) {
	// arrange
	bus, _ := givenBus(t, nil, nil)

	// act
	errRaw := bus.Handle(context.Background(), rawMessage{})
	errNil := bus.Handle(context.Background(), nil)

	// assert
	assert.ErrorIs(t, errRaw, messagebus.ErrUnsupportedMessage)
	assert.ErrorIs(t, errNil, messagebus.ErrUnsupportedMessage)
}

func Test_MessageBus_Handle_ReturnsCommandErrorUnchanged(t *testing.T) {
	// arrange
	handlerErr := errors.New("edition is sold out")
	bus, _ := givenBus(t, messagebus.CommandHandlers{
		domain.CreateBookCommandType: func(context.Context, domain.Command, *services.Container) error {
			return handlerErr
		},
	}, nil)

	// act
	err := bus.Handle(context.Background(), domain.CreateBook{Name: "Dune"})

	// assert
	assert.Same(t, handlerErr, err)
}

func Test_MessageBus_Handle_FailingSiblingDoesNotStopOtherHandlers(t *testing.T) {
	// arrange
	logger := testdoubles.NewLoggerSpy()
	metrics := testdoubles.NewMetricsCollectorSpy()
	var ran []string

	bus, _ := givenBus(t,
		messagebus.CommandHandlers{domain.CreateAuthorCommandType: raisingAuthor("Gene Wolfe", chapterRead{Seq: 1})},
		messagebus.EventHandlers{"ChapterRead": {
			func(context.Context, domain.Event, *services.Container) error {
				ran = append(ran, "failing")
				return errors.New("mailbox full")
			},
			func(context.Context, domain.Event, *services.Container) error {
				ran = append(ran, "healthy")
				return nil
			},
		}},
		messagebus.WithContextualLogger(logger),
		messagebus.WithMetrics(metrics),
	)

	// act
	err := bus.Handle(context.Background(), domain.CreateAuthor{Name: "Gene Wolfe"})

	// assert
	require.NoError(t, err)
	assert.Equal(t, []string{"failing", "healthy"}, ran)
	assert.True(t, logger.HasLog(testdoubles.LevelError, "event handler failed"))

	failures := metrics.Counters("messagebus_event_handler_failures_total")
	require.Len(t, failures, 1)
	assert.Equal(t, "ChapterRead", failures[0].Labels["message_name"])
}

func Test_MessageBus_Handle_RecoversPanickingEventHandler(t *testing.T) {
	// arrange
	logger := testdoubles.NewLoggerSpy()
	healthyRan := false

	bus, _ := givenBus(t, nil,
		messagebus.EventHandlers{"ChapterRead": {
			func(context.Context, domain.Event, *services.Container) error { panic("nil edition") },
			func(context.Context, domain.Event, *services.Container) error {
				healthyRan = true
				return nil
			},
		}},
		messagebus.WithLogger(logger),
	)

	// act
	err := bus.Handle(context.Background(), chapterRead{Seq: 1})

	// assert
	require.NoError(t, err)
	assert.True(t, healthyRan)

	records := logger.Records(testdoubles.LevelError)
	require.Len(t, records, 1)
	logged, _ := records[0].Attr("error")
	assert.Contains(t, logged, messagebus.ErrEventHandlerPanicked.Error())
}

func Test_MessageBus_Handle_DispatchesEventsAfterCommit(t *testing.T) {
	// arrange
	var (
		seen         []domain.Event
		authorsAtRun int
		db           *memoryengine.Database
	)

	bus, db := givenBus(t,
		messagebus.CommandHandlers{domain.CreateAuthorCommandType: raisingAuthor("Gene Wolfe", chapterRead{Seq: 1})},
		messagebus.EventHandlers{"ChapterRead": {
			func(_ context.Context, event domain.Event, _ *services.Container) error {
				seen = append(seen, event)
				authorsAtRun = db.Counts()["authors"]

				return nil
			},
		}},
	)

	// act
	err := bus.Handle(context.Background(), domain.CreateAuthor{Name: "Gene Wolfe"})

	// assert
	require.NoError(t, err)
	assert.Equal(t, []domain.Event{chapterRead{Seq: 1}}, seen)
	assert.Equal(t, 1, authorsAtRun, "the event handler runs after the command committed")
}

func Test_MessageBus_Handle_DoesNotDispatchEventsOfUncommittedScope(t *testing.T) {
	// arrange
	eventHandled := false

	bus, _ := givenBus(t,
		messagebus.CommandHandlers{
			domain.CreateAuthorCommandType: func(ctx context.Context, _ domain.Command, container *services.Container) error {
				uow, err := services.Get[unitofwork.UnitOfWork](ctx, container)
				if err != nil {
					return err
				}

				return unitofwork.Run(ctx, uow, func(_ context.Context, uow unitofwork.UnitOfWork) error {
					author := domain.NewAuthor("Gene Wolfe")
					author.Raise(chapterRead{Seq: 1})
					uow.Authors().Add(author)

					return nil
				})
			},
		},
		messagebus.EventHandlers{"ChapterRead": {
			func(context.Context, domain.Event, *services.Container) error {
				eventHandled = true
				return nil
			},
		}},
	)

	// act
	err := bus.Handle(context.Background(), domain.CreateAuthor{Name: "Gene Wolfe"})

	// assert
	require.NoError(t, err)
	assert.False(t, eventHandled)
}

func Test_MessageBus_Handle_ProcessesFollowUpEventsInFIFOOrder(t *testing.T) {
	// arrange
	var order []int

	recordAndMaybeRaise := func(ctx context.Context, event domain.Event, container *services.Container) error {
		read := event.(chapterRead)
		order = append(order, read.Seq)

		if read.Seq != 1 {
			return nil
		}

		return raisingAuthor("Follow Up", chapterRead{Seq: 3})(ctx, nil, container)
	}

	bus, _ := givenBus(t,
		messagebus.CommandHandlers{
			domain.CreateAuthorCommandType: raisingAuthor("Gene Wolfe", chapterRead{Seq: 1}, chapterRead{Seq: 2}),
		},
		messagebus.EventHandlers{"ChapterRead": {recordAndMaybeRaise}},
	)

	// act
	err := bus.Handle(context.Background(), domain.CreateAuthor{Name: "Gene Wolfe"})

	// assert
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, order, "follow-up events queue behind events already pending")
}

func Test_MessageBus_Handle_DispatchesCommittedEventsOfFailingEventHandler(t *testing.T) {
	// arrange
	logger := testdoubles.NewLoggerSpy()
	var order []int

	commitThenFail := func(ctx context.Context, event domain.Event, container *services.Container) error {
		read := event.(chapterRead)
		order = append(order, read.Seq)

		if read.Seq != 1 {
			return nil
		}

		if err := raisingAuthor("Follow Up", chapterRead{Seq: 2})(ctx, nil, container); err != nil {
			return err
		}

		return errors.New("smtp unavailable")
	}

	bus, db := givenBus(t, nil,
		messagebus.EventHandlers{"ChapterRead": {commitThenFail}},
		messagebus.WithContextualLogger(logger),
	)

	// act
	err := bus.Handle(context.Background(), chapterRead{Seq: 1})

	// assert
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, order)
	assert.Equal(t, 1, db.Counts()["authors"])
	assert.True(t, logger.HasLog(testdoubles.LevelError, "event handler failed"))
}

func Test_MessageBus_Handle_GivesEachInvocationItsOwnUnitOfWork(t *testing.T) {
	// arrange
	var instances []unitofwork.UnitOfWork

	capture := func(ctx context.Context, container *services.Container) error {
		uow, err := services.Get[unitofwork.UnitOfWork](ctx, container)
		instances = append(instances, uow)

		return err
	}

	bus, _ := givenBus(t,
		messagebus.CommandHandlers{
			domain.CreateAuthorCommandType: func(ctx context.Context, cmd domain.Command, container *services.Container) error {
				if err := capture(ctx, container); err != nil {
					return err
				}

				return raisingAuthor("Gene Wolfe", chapterRead{Seq: 1})(ctx, cmd, container)
			},
		},
		messagebus.EventHandlers{"ChapterRead": {
			func(ctx context.Context, _ domain.Event, container *services.Container) error { return capture(ctx, container) },
			func(ctx context.Context, _ domain.Event, container *services.Container) error { return capture(ctx, container) },
		}},
	)

	// act
	err := bus.Handle(context.Background(), domain.CreateAuthor{Name: "Gene Wolfe"})

	// assert
	require.NoError(t, err)
	require.Len(t, instances, 3)
	assert.NotSame(t, instances[0], instances[1])
	assert.NotSame(t, instances[1], instances[2])
}

func Test_MessageBus_Handle_SharesCorrelationIDAcrossFollowUps(t *testing.T) {
	// arrange
	var ids []string

	record := func(ctx context.Context) {
		id, ok := messagebus.CorrelationID(ctx)
		require.True(t, ok)
		ids = append(ids, id)
	}

	bus, _ := givenBus(t,
		messagebus.CommandHandlers{
			domain.CreateAuthorCommandType: func(ctx context.Context, cmd domain.Command, container *services.Container) error {
				record(ctx)
				return raisingAuthor("Gene Wolfe", chapterRead{Seq: 1})(ctx, cmd, container)
			},
		},
		messagebus.EventHandlers{"ChapterRead": {
			func(ctx context.Context, _ domain.Event, _ *services.Container) error {
				record(ctx)
				return nil
			},
		}},
	)

	// act
	errFirst := bus.Handle(context.Background(), domain.CreateAuthor{Name: "Gene Wolfe"})
	errSecond := bus.Handle(context.Background(), domain.CreateAuthor{Name: "Gene Wolfe"})

	// assert
	require.NoError(t, errors.Join(errFirst, errSecond))
	require.Len(t, ids, 4)
	assert.Equal(t, ids[0], ids[1])
	assert.Equal(t, ids[2], ids[3])
	assert.NotEqual(t, ids[0], ids[2], "each top-level call gets its own id")
}

func Test_MessageBus_Handle_ReportsSpansAndMetrics(t *testing.T) {
	// arrange
	tracing := testdoubles.NewTracingCollectorSpy()
	metrics := testdoubles.NewMetricsCollectorSpy()

	bus, _ := givenBus(t,
		messagebus.CommandHandlers{domain.CreateAuthorCommandType: raisingAuthor("Gene Wolfe", chapterRead{Seq: 1})},
		messagebus.EventHandlers{"ChapterRead": {noopEventHandler}},
		messagebus.WithTracing(tracing),
		messagebus.WithMetrics(metrics),
	)

	// act
	err := bus.Handle(context.Background(), domain.CreateAuthor{Name: "Gene Wolfe"})

	// assert
	require.NoError(t, err)

	spans := tracing.Spans()
	require.Len(t, spans, 2)
	assert.Equal(t, "messagebus.command", spans[0].Name)
	assert.Equal(t, "CreateAuthor", spans[0].StartAttributes["message.name"])
	assert.Equal(t, "1", spans[0].EndAttributes["events.collected"])
	assert.Equal(t, "success", spans[0].Status)
	assert.Equal(t, "messagebus.event", spans[1].Name)
	assert.True(t, spans[1].Finished)

	assert.Len(t, metrics.Durations("messagebus_handle_duration_seconds"), 2)
	assert.Len(t, metrics.Counters("messagebus_handle_calls_total"), 2)
	assert.NotEmpty(t, metrics.Values("messagebus_queue_depth"))
}

func Test_MessageBus_Handle_RedactsSecretsInDebugPayload(t *testing.T) {
	// arrange
	logger := testdoubles.NewLoggerSpy()
	bus, _ := givenBus(t,
		messagebus.CommandHandlers{domain.CreateUserCommandType: noopCommandHandler},
		nil,
		messagebus.WithContextualLogger(logger),
	)

	// act
	err := bus.Handle(context.Background(), domain.CreateUser{Email: "reader@example.com", Password: "correct-horse"})

	// assert
	require.NoError(t, err)

	records := logger.Records(testdoubles.LevelDebug)
	require.Len(t, records, 1)
	payload, _ := records[0].Attr("payload")
	assert.Contains(t, payload, "reader@example.com")
	assert.NotContains(t, payload, "correct-horse")
}

func Test_NewMessageBus_RequiresServices(t *testing.T) {
	// act
	_, err := messagebus.NewMessageBus(messagebus.Registry{}, nil)

	// assert
	assert.ErrorIs(t, err, messagebus.ErrNilServices)
}
