package messagebus

import (
	"context"
	"math"
	"strconv"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/TomasJani/bookshelf/domain"
)

const (
	kindCommand = "command"
	kindEvent   = "event"

	metricHandleDuration       = "messagebus_handle_duration_seconds"
	metricHandleCalls          = "messagebus_handle_calls_total"
	metricEventHandlerFailures = "messagebus_event_handler_failures_total"
	metricQueueDepth           = "messagebus_queue_depth"

	spanNamePrefix          = "messagebus."
	spanAttrMessageKind     = "message.kind"
	spanAttrMessageName     = "message.name"
	spanAttrCorrelationID   = "correlation.id"
	spanAttrEventsCollected = "events.collected"
	spanAttrErrorMessage    = "error.message"

	labelMessageKind = "message_kind"
	labelMessageName = "message_name"
	labelStatus      = "status"

	statusSuccess = "success"
	statusError   = "error"

	logMsgDispatching          = "dispatching "
	logMsgHandled              = "handled "
	logMsgCommandFailed        = "command handler returned an error"
	logMsgEventHandlerFailed   = "event handler failed"
	logMsgContainerCloseFailed = "failed to close services container"
	logAttrMessageName         = "message_name"
	logAttrCorrelationID       = "correlation_id"
	logAttrPayload             = "payload"
	logAttrDurationMS          = "duration_ms"
	logAttrEventsCollected     = "events_collected"
	logAttrError               = "error"
)

var payloadJSON = jsoniter.ConfigCompatibleWithStandardLibrary

// dispatchObserver reports one handler invocation to the configured logger, metrics and tracing collectors.
type dispatchObserver struct {
	bus           *MessageBus
	ctx           context.Context
	kind          string
	messageName   string
	correlationID string
	start         time.Time
	span          SpanContext
}

func (b *MessageBus) startObserving(ctx context.Context, kind string, message domain.Message) (*dispatchObserver, context.Context) {
	correlationID, _ := CorrelationID(ctx)

	o := &dispatchObserver{
		bus:           b,
		kind:          kind,
		messageName:   message.MessageName(),
		correlationID: correlationID,
		start:         time.Now(),
	}

	if b.tracingCollector != nil {
		ctx, o.span = b.tracingCollector.StartSpan(ctx, spanNamePrefix+kind, map[string]string{
			spanAttrMessageKind:   kind,
			spanAttrMessageName:   o.messageName,
			spanAttrCorrelationID: correlationID,
		})
	}

	o.ctx = ctx

	if b.logger != nil || b.contextualLogger != nil {
		b.logDebug(ctx, logMsgDispatching+kind,
			logAttrMessageName, o.messageName,
			logAttrCorrelationID, correlationID,
			logAttrPayload, renderPayload(message),
		)
	}

	return o, ctx
}

func (o *dispatchObserver) finish(err error, eventsCollected int) {
	duration := time.Since(o.start)

	status := statusSuccess
	if err != nil {
		status = statusError
	}

	labels := map[string]string{
		labelMessageKind: o.kind,
		labelMessageName: o.messageName,
		labelStatus:      status,
	}
	o.bus.recordDuration(o.ctx, metricHandleDuration, duration, labels)
	o.bus.incrementCounter(o.ctx, metricHandleCalls, labels)

	if o.bus.tracingCollector != nil && o.span != nil {
		attrs := map[string]string{spanAttrEventsCollected: strconv.Itoa(eventsCollected)}
		if err != nil {
			attrs[spanAttrErrorMessage] = err.Error()
		}

		o.bus.tracingCollector.FinishSpan(o.span, status, attrs)
	}

	switch {
	case err == nil:
		o.bus.logInfo(o.ctx, logMsgHandled+o.kind,
			logAttrMessageName, o.messageName,
			logAttrCorrelationID, o.correlationID,
			logAttrDurationMS, toMilliseconds(duration),
			logAttrEventsCollected, eventsCollected,
		)
	case o.kind == kindCommand:
		o.bus.logWarn(o.ctx, logMsgCommandFailed,
			logAttrMessageName, o.messageName,
			logAttrCorrelationID, o.correlationID,
			logAttrError, err.Error(),
		)
	}
}

func (b *MessageBus) recordEventHandlerFailure(ctx context.Context, event domain.Event, err error) {
	correlationID, _ := CorrelationID(ctx)

	b.logError(ctx, logMsgEventHandlerFailed,
		logAttrMessageName, event.MessageName(),
		logAttrCorrelationID, correlationID,
		logAttrError, err.Error(),
	)

	b.incrementCounter(ctx, metricEventHandlerFailures, map[string]string{labelMessageName: event.MessageName()})
}

func renderPayload(message domain.Message) string {
	payload, err := payloadJSON.MarshalToString(message)
	if err != nil {
		return "<unrenderable: " + err.Error() + ">"
	}

	return payload
}

func (b *MessageBus) recordDuration(ctx context.Context, metric string, duration time.Duration, labels map[string]string) {
	switch collector := b.metricsCollector.(type) {
	case nil:
	case ContextualMetricsCollector:
		collector.RecordDurationContext(ctx, metric, duration, labels)
	default:
		collector.RecordDuration(metric, duration, labels)
	}
}

func (b *MessageBus) incrementCounter(ctx context.Context, metric string, labels map[string]string) {
	switch collector := b.metricsCollector.(type) {
	case nil:
	case ContextualMetricsCollector:
		collector.IncrementCounterContext(ctx, metric, labels)
	default:
		collector.IncrementCounter(metric, labels)
	}
}

func (b *MessageBus) recordValue(ctx context.Context, metric string, value float64, labels map[string]string) {
	switch collector := b.metricsCollector.(type) {
	case nil:
	case ContextualMetricsCollector:
		collector.RecordValueContext(ctx, metric, value, labels)
	default:
		collector.RecordValue(metric, value, labels)
	}
}

func (b *MessageBus) logDebug(ctx context.Context, msg string, args ...any) {
	switch {
	case b.contextualLogger != nil:
		b.contextualLogger.DebugContext(ctx, msg, args...)
	case b.logger != nil:
		b.logger.Debug(msg, args...)
	}
}

func (b *MessageBus) logInfo(ctx context.Context, msg string, args ...any) {
	switch {
	case b.contextualLogger != nil:
		b.contextualLogger.InfoContext(ctx, msg, args...)
	case b.logger != nil:
		b.logger.Info(msg, args...)
	}
}

func (b *MessageBus) logWarn(ctx context.Context, msg string, args ...any) {
	switch {
	case b.contextualLogger != nil:
		b.contextualLogger.WarnContext(ctx, msg, args...)
	case b.logger != nil:
		b.logger.Warn(msg, args...)
	}
}

func (b *MessageBus) logError(ctx context.Context, msg string, args ...any) {
	switch {
	case b.contextualLogger != nil:
		b.contextualLogger.ErrorContext(ctx, msg, args...)
	case b.logger != nil:
		b.logger.Error(msg, args...)
	}
}

// toMilliseconds converts a time.Duration to float64 milliseconds with 3 decimal places.
func toMilliseconds(d time.Duration) float64 {
	return math.Round(float64(d.Nanoseconds())/1e6*1000) / 1000
}
