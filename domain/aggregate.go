package domain

// Aggregate is a domain object with identity that queues the events it raises.
type Aggregate interface {
	TakePendingEvents() Events
}

// PendingEvents is the FIFO queue of events an aggregate raised but nobody collected yet.
// Embed it in an aggregate to make it satisfy Aggregate.
type PendingEvents struct {
	pending Events
}

// Raise appends an event to the queue.
func (p *PendingEvents) Raise(event Event) {
	p.pending = append(p.pending, event)
}

// TakePendingEvents returns the queued events in the order they were raised and empties the queue.
func (p *PendingEvents) TakePendingEvents() Events {
	events := p.pending
	p.pending = nil

	return events
}

// HasPendingEvents reports whether there is at least one queued event.
func (p *PendingEvents) HasPendingEvents() bool {
	return len(p.pending) > 0
}
