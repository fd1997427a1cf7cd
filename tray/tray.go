// Package tray renders the menu model in the system tray and converts
// clicks into keeper queue events.
package tray

import (
	"context"
	"sync"

	"fyne.io/systray"
	"github.com/decred/slog"

	"github.com/volkeeper/volkeeper/events"
	"github.com/volkeeper/volkeeper/ui"
)

// Tray implements ui.Presenter on top of the system tray. Rebuild replaces
// the whole native menu; click watcher goroutines from the previous build
// are canceled so stale entries can never fire.
type Tray struct {
	queue *events.Queue
	log   slog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
}

// New creates a tray presenter pushing onto the given queue. It must be
// used from within systray.Run's onReady callback.
func New(queue *events.Queue, log slog.Logger) *Tray {
	return &Tray{queue: queue, log: log}
}

// Rebuild implements ui.Presenter.
func (t *Tray) Rebuild(menu *ui.Menu) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.cancel != nil {
		t.cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	t.cancel = cancel

	systray.ResetMenu()
	for _, item := range menu.Items {
		t.addItem(ctx, nil, item)
	}
}

func (t *Tray) addItem(ctx context.Context, parent *systray.MenuItem, item ui.Item) {
	if item.Separator {
		if parent == nil {
			systray.AddSeparator()
		}
		return
	}

	var entry *systray.MenuItem
	switch {
	case parent == nil && item.Checkbox:
		entry = systray.AddMenuItemCheckbox(item.Label, item.Label, item.Checked)
	case parent == nil:
		entry = systray.AddMenuItem(item.Label, item.Label)
	case item.Checkbox:
		entry = parent.AddSubMenuItemCheckbox(item.Label, item.Label, item.Checked)
	default:
		entry = parent.AddSubMenuItem(item.Label, item.Label)
	}

	if !item.Enabled {
		entry.Disable()
	}

	if len(item.Children) > 0 {
		for _, child := range item.Children {
			t.addItem(ctx, entry, child)
		}
		return
	}

	if item.ID != "" && item.Enabled {
		go t.watchClicks(ctx, entry, item)
	}
}

// watchClicks forwards clicks of one entry as MenuAction events. For
// checkbox entries the reported state is the toggle of the state the menu
// was built with; the model is rebuilt before the user can click again.
func (t *Tray) watchClicks(ctx context.Context, entry *systray.MenuItem, item ui.Item) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-entry.ClickedCh:
			checked := item.Checked
			if item.Checkbox {
				checked = !checked
			}
			if !t.queue.Push(events.MenuAction{ID: item.ID, Checked: checked}) {
				t.log.Warnf("Event queue full, dropped menu action %s", item.ID)
			}
		}
	}
}

// SetIcon implements ui.Presenter, flipping between the locked and
// unlocked tray icon variants.
func (t *Tray) SetIcon(locked bool) {
	systray.SetIcon(Icon(locked))
	if locked {
		systray.SetTooltip("VolKeeper — enforcing device locks")
	} else {
		systray.SetTooltip("VolKeeper")
	}
}

// Quit implements ui.Presenter.
func (t *Tray) Quit() {
	systray.Quit()
}
