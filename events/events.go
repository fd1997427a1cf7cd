package events

// Event is a marker interface for all events drained by the keeper loop
type Event interface {
	isEvent()
}

// Base implementation for all events
type baseEvent struct{}

func (baseEvent) isEvent() {}

// DevicesChanged is fired when the audio device topology changes (device
// added, removed, state change, or default device change), and after any
// configuration edit that can affect the watched-device set.
type DevicesChanged struct {
	baseEvent
}

// ConfigurationChanged is fired when the persistent state was mutated and
// must be saved. Handling it re-emits DevicesChanged.
type ConfigurationChanged struct {
	baseEvent
}

// VolumeChanged is fired when a watched device reports a volume or mute
// change. A nil NewVolume means "re-check the current value" and is used
// for the synthetic event pushed on watch registration.
type VolumeChanged struct {
	baseEvent
	DeviceID  string
	NewVolume *float32
}

// MenuAction is fired when a tray menu entry is clicked. Checked carries
// the new state for checkbox entries.
type MenuAction struct {
	baseEvent
	ID      string
	Checked bool
}

// Heartbeat is fired by the low-frequency safety-net timer.
type Heartbeat struct {
	baseEvent
}

// Quit requests an orderly shutdown of the event loop.
type Quit struct {
	baseEvent
}

// Queue is the single processing queue feeding the keeper loop. Producers
// (OS callbacks, tray click watchers, tickers) only ever push; the loop is
// the only consumer and the only place shared state is touched.
type Queue struct {
	ch chan Event
}

// NewQueue creates a queue with the given buffer size.
func NewQueue(bufferSize int) *Queue {
	return &Queue{ch: make(chan Event, bufferSize)}
}

// Push enqueues an event without blocking. It reports false when the queue
// is full and the event was dropped; every event type is re-derivable from
// a later topology or volume notification, so dropping is safe.
func (q *Queue) Push(event Event) bool {
	select {
	case q.ch <- event:
		return true
	default:
		return false
	}
}

// Events returns the receive side of the queue.
func (q *Queue) Events() <-chan Event {
	return q.ch
}
