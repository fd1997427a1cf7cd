// Package notify delivers user-facing notifications with per-key
// debouncing so correction storms never turn into toast storms.
package notify

import (
	"time"

	"github.com/decred/slog"
	"github.com/gen2brain/beeep"
)

// Notifier shows a notification to the user.
type Notifier interface {
	Notify(title, body string) error
}

// Desktop sends native desktop notifications.
type Desktop struct {
	AppName string
}

// Notify implements Notifier.
func (d Desktop) Notify(title, body string) error {
	return beeep.Notify(title, body, "")
}

// DebounceWindow is the fixed suppression window per notification key.
const DebounceWindow = 5 * time.Second

// Debouncer wraps a Notifier with a per-key suppression window. It is
// called only from the keeper loop, so the last-fired map needs no lock.
type Debouncer struct {
	notifier Notifier
	window   time.Duration
	lastSent map[string]time.Time
	now      func() time.Time
	log      slog.Logger
}

// NewDebouncer creates a debouncer with the standard window.
func NewDebouncer(notifier Notifier, log slog.Logger) *Debouncer {
	return &Debouncer{
		notifier: notifier,
		window:   DebounceWindow,
		lastSent: make(map[string]time.Time),
		now:      time.Now,
		log:      log,
	}
}

// SetClock overrides the time source, for tests.
func (d *Debouncer) SetClock(now func() time.Time) {
	d.now = now
}

// Notify emits the notification unless one with the same key fired within
// the window. Delivery failures are logged; the window still advances so a
// broken notifier cannot be hammered by a correction storm.
func (d *Debouncer) Notify(key, title, body string) {
	now := d.now()
	if last, ok := d.lastSent[key]; ok && now.Sub(last) < d.window {
		return
	}
	if err := d.notifier.Notify(title, body); err != nil {
		d.log.Errorf("Failed to show notification for %s: %v", title, err)
	}
	d.lastSent[key] = now
}
