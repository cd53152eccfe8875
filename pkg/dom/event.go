package dom

// Event is dispatched to listeners registered with Element.On.
type Event struct {
	Type    string
	Target  *Element
	Current *Element

	defaultPrevented bool
	stopped          bool
}

// Listener handles a dispatched event.
type Listener func(ev *Event)

// NewEvent creates an event of the given type.
func NewEvent(typ string) *Event {
	return &Event{Type: typ}
}

// PreventDefault marks the default action of the event as cancelled.
func (e *Event) PreventDefault() { e.defaultPrevented = true }

// DefaultPrevented reports whether PreventDefault was called.
func (e *Event) DefaultPrevented() bool { return e.defaultPrevented }

// StopPropagation stops bubbling after the current element's listeners run.
func (e *Event) StopPropagation() { e.stopped = true }

// PropagationStopped reports whether StopPropagation was called.
func (e *Event) PropagationStopped() bool { return e.stopped }

type listener struct {
	id uint64
	fn Listener
}
