package testdoubles

import (
	"context"
	"maps"
	"sync"

	"github.com/TomasJani/bookshelf/messagebus"
)

// SpanRecord is one span started through TracingCollectorSpy.
type SpanRecord struct {
	Name            string
	StartAttributes map[string]string
	Status          string
	EndAttributes   map[string]string
	Finished        bool
}

type spySpan struct {
	spy   *TracingCollectorSpy
	index int
}

func (c *spySpan) SetStatus(status string) {
	c.spy.mu.Lock()
	defer c.spy.mu.Unlock()

	c.spy.spans[c.index].Status = status
}

func (c *spySpan) AddAttribute(key, value string) {
	c.spy.mu.Lock()
	defer c.spy.mu.Unlock()

	if c.spy.spans[c.index].EndAttributes == nil {
		c.spy.spans[c.index].EndAttributes = make(map[string]string)
	}

	c.spy.spans[c.index].EndAttributes[key] = value
}

// TracingCollectorSpy captures spans.
type TracingCollectorSpy struct {
	mu    sync.Mutex
	spans []SpanRecord
}

// NewTracingCollectorSpy creates an empty TracingCollectorSpy.
func NewTracingCollectorSpy() *TracingCollectorSpy {
	return &TracingCollectorSpy{}
}

func (s *TracingCollectorSpy) StartSpan(ctx context.Context, name string, attrs map[string]string) (context.Context, messagebus.SpanContext) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.spans = append(s.spans, SpanRecord{Name: name, StartAttributes: maps.Clone(attrs)})

	return ctx, &spySpan{spy: s, index: len(s.spans) - 1}
}

func (s *TracingCollectorSpy) FinishSpan(spanCtx messagebus.SpanContext, status string, attrs map[string]string) {
	span, ok := spanCtx.(*spySpan)
	if !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	record := &s.spans[span.index]
	record.Status = status
	record.Finished = true

	if record.EndAttributes == nil {
		record.EndAttributes = make(map[string]string)
	}

	maps.Copy(record.EndAttributes, attrs)
}

// Spans returns a copy of the captured spans in start order.
func (s *TracingCollectorSpy) Spans() []SpanRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]SpanRecord, len(s.spans))
	copy(out, s.spans)

	return out
}

var _ messagebus.TracingCollector = (*TracingCollectorSpy)(nil)
