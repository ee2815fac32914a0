// Command bookshelf submits one command to the bookshelf message bus.
//
//	bookshelf init-schema
//	bookshelf create-author -name "Ursula K. Le Guin"
//	bookshelf create-book -name "The Dispossessed"
//	bookshelf create-user -email ursula@example.com -full-name "Ursula K. Le Guin" -password ...
//
// Configuration is read from BOOKSHELF_* environment variables, see package config.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"go.opentelemetry.io/otel"

	"github.com/TomasJani/bookshelf/config"
	"github.com/TomasJani/bookshelf/domain"
	"github.com/TomasJani/bookshelf/handlers"
	"github.com/TomasJani/bookshelf/messagebus"
	"github.com/TomasJani/bookshelf/notification"
	"github.com/TomasJani/bookshelf/oteladapters"
	"github.com/TomasJani/bookshelf/security"
	"github.com/TomasJani/bookshelf/services"
	"github.com/TomasJani/bookshelf/unitofwork/sqlengine"
)

var errUsage = errors.New("usage: bookshelf init-schema | create-author | create-book | create-user [flags]")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errUsage
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel})
	logger := slog.New(handler)

	if cfg.ObservabilityEnabled {
		providers, err := config.NewObservabilityProviders(ctx, cfg)
		if err != nil {
			return err
		}

		defer func() {
			if err := providers.Shutdown(context.WithoutCancel(ctx)); err != nil {
				logger.WarnContext(ctx, "failed to shut down otel providers", "error", err.Error())
			}
		}()
	}

	busOptions, storeOptions := instrumentation(cfg, handler)

	backend, err := openStorage(ctx, cfg, storeOptions...)
	if err != nil {
		return err
	}
	defer backend.close()

	if args[0] == "init-schema" {
		return backend.ensureSchema(ctx)
	}

	message, err := parseCommand(args)
	if err != nil {
		return err
	}

	serviceRegistry := services.NewRegistry()
	handlers.RegisterServices(serviceRegistry, handlers.Dependencies{
		NewUnitOfWork:  backend.newUnitOfWork,
		PasswordHasher: security.NewBcryptHasher(cfg.BcryptCost),
		Sender:         notification.NewLogSender(logger),
		Settings:       cfg.NotificationSettings(),
	})

	registry, err := handlers.NewRegistry()
	if err != nil {
		return err
	}

	bus, err := messagebus.NewMessageBus(registry, serviceRegistry, busOptions...)
	if err != nil {
		return err
	}

	return bus.Handle(ctx, message)
}

// instrumentation returns the bus and store options for cfg. Every log record reaches handler;
// with observability enabled records are also bridged to OpenTelemetry and metrics and spans
// go to the global providers.
func instrumentation(cfg config.Config, handler slog.Handler) ([]messagebus.Option, []sqlengine.Option) {
	if !cfg.ObservabilityEnabled {
		logger := slog.New(handler)

		return []messagebus.Option{messagebus.WithContextualLogger(logger)},
			[]sqlengine.Option{sqlengine.WithContextualLogger(logger)}
	}

	logger := oteladapters.NewTeeLogger(cfg.ServiceName, handler)

	return []messagebus.Option{
			messagebus.WithContextualLogger(logger),
			messagebus.WithMetrics(oteladapters.NewMetricsCollector(otel.Meter(cfg.ServiceName))),
			messagebus.WithTracing(oteladapters.NewTracingCollector(otel.Tracer(cfg.ServiceName))),
		},
		[]sqlengine.Option{sqlengine.WithContextualLogger(logger)}
}

func parseCommand(args []string) (domain.Command, error) {
	flags := flag.NewFlagSet(args[0], flag.ContinueOnError)

	switch args[0] {
	case "create-author":
		name := flags.String("name", "", "author name")
		if err := flags.Parse(args[1:]); err != nil {
			return nil, err
		}

		return domain.CreateAuthor{Name: *name}, nil

	case "create-book":
		name := flags.String("name", "", "book and edition name")
		if err := flags.Parse(args[1:]); err != nil {
			return nil, err
		}

		return domain.CreateBook{Name: *name}, nil

	case "create-user":
		email := flags.String("email", "", "account email")
		fullName := flags.String("full-name", "", "full name")
		password := flags.String("password", "", "plaintext password")
		if err := flags.Parse(args[1:]); err != nil {
			return nil, err
		}

		return domain.CreateUser{Email: *email, FullName: *fullName, Password: domain.Secret(*password)}, nil

	default:
		return nil, fmt.Errorf("%w: unknown command %q", errUsage, args[0])
	}
}
