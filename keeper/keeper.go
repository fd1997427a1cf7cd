// Package keeper contains the event-processing core: a single goroutine
// that owns the persisted state, drains one queue of topology, volume,
// menu and timer events, and applies corrective actions through the audio
// backend. OS callbacks only ever enqueue; nothing else may mutate state.
package keeper

import (
	"context"
	"time"

	"github.com/decred/slog"

	"github.com/volkeeper/volkeeper/audio"
	"github.com/volkeeper/volkeeper/events"
	"github.com/volkeeper/volkeeper/notify"
	"github.com/volkeeper/volkeeper/persistence"
	"github.com/volkeeper/volkeeper/platform"
	"github.com/volkeeper/volkeeper/state"
	"github.com/volkeeper/volkeeper/ui"
)

// Keeper runs the reconciliation loop.
type Keeper struct {
	backend   audio.Backend
	store     *persistence.Store
	queue     *events.Queue
	debounce  *notify.Debouncer
	presenter ui.Presenter
	log       slog.Logger

	st   *state.PersistentState
	temp state.TemporaryPriorities

	// watched holds the devices with a live volume watcher this cycle.
	// Holding the Device keeps platform registrations alive.
	watched map[string]audio.Device

	// bindings maps menu entry ids to their device/setting, rebuilt on
	// every menu rebuild.
	bindings map[string]ui.ItemDeviceInfo

	heartbeat time.Duration

	// CheckUpdates, when set, runs an update check off the loop when the
	// corresponding menu entry is clicked.
	CheckUpdates func()
}

// Option tweaks keeper construction.
type Option func(*Keeper)

// WithHeartbeat enables the periodic safety-net re-enforcement.
func WithHeartbeat(interval time.Duration) Option {
	return func(k *Keeper) { k.heartbeat = interval }
}

// New creates a keeper. The state is loaded from the store immediately.
func New(backend audio.Backend, store *persistence.Store, queue *events.Queue, debounce *notify.Debouncer, presenter ui.Presenter, log slog.Logger, opts ...Option) *Keeper {
	k := &Keeper{
		backend:   backend,
		store:     store,
		queue:     queue,
		debounce:  debounce,
		presenter: presenter,
		log:       log,
		st:        store.Load(),
		watched:   make(map[string]audio.Device),
		bindings:  make(map[string]ui.ItemDeviceInfo),
	}
	for _, opt := range opts {
		opt(k)
	}
	return k
}

// State exposes the in-memory state for inspection. Callers must only use
// it from the loop goroutine (or before Run / after Run returns).
func (k *Keeper) State() *state.PersistentState {
	return k.st
}

// Queue returns the processing queue for producers to push onto.
func (k *Keeper) Queue() *events.Queue {
	return k.queue
}

// Run drains the event queue until the context is canceled or a Quit
// event arrives. It registers the topology callback, performs the initial
// migration and enforcement, then loops.
func (k *Keeper) Run(ctx context.Context) {
	err := k.backend.WatchDeviceChanges(func() {
		// Runs on an OS-owned thread: enqueue only.
		k.queue.Push(events.DevicesChanged{})
	})
	if err != nil {
		k.log.Errorf("Failed to register device change callback: %v", err)
	}

	k.handleDevicesChanged()

	var heartbeat <-chan time.Time
	if k.heartbeat > 0 {
		ticker := time.NewTicker(k.heartbeat)
		defer ticker.Stop()
		heartbeat = ticker.C
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-heartbeat:
			k.handleEvent(events.Heartbeat{})
		case ev := <-k.queue.Events():
			if _, quit := ev.(events.Quit); quit {
				k.presenter.Quit()
				return
			}
			k.handleEvent(ev)
		}
	}
}

// HandleEvent processes one event synchronously. Exported for tests; Run
// is the only production caller.
func (k *Keeper) HandleEvent(ev events.Event) {
	k.handleEvent(ev)
}

func (k *Keeper) handleEvent(ev events.Event) {
	switch ev := ev.(type) {
	case events.DevicesChanged:
		k.handleDevicesChanged()

	case events.ConfigurationChanged:
		k.store.Save(k.st)
		if !k.queue.Push(events.DevicesChanged{}) {
			// Queue full of pending topology events; handle inline.
			k.handleDevicesChanged()
		}

	case events.VolumeChanged:
		reconcileDevice(k.backend, k.st, ev.DeviceID, ev.NewVolume, k.debounce, k.log)

	case events.MenuAction:
		k.handleMenuAction(ev)

	case events.Heartbeat:
		EnforcePriorities(k.backend, k.st, &k.temp, k.debounce, k.log)
		for id := range k.watched {
			reconcileDevice(k.backend, k.st, id, nil, k.debounce, k.log)
		}
	}
}

// handleDevicesChanged is the topology-change path: migrate ids, enforce
// priorities, rebuild the watch set and refresh the tray.
func (k *Keeper) handleDevicesChanged() {
	if Migrate(k.backend, k.st, k.log) {
		k.store.Save(k.st)
	}

	EnforcePriorities(k.backend, k.st, &k.temp, k.debounce, k.log)
	k.rebuildWatches()
	k.presenter.SetIcon(len(k.watched) > 0)
	k.rebuildMenu()
}

// watchClearer is an optional backend capability to drop all volume
// watchers before re-registration.
type watchClearer interface {
	ClearWatchers()
}

// rebuildWatches re-registers volume watchers for every tracked device
// that currently resolves and is active, pushing a synthetic nil-volume
// event per device so reconciliation runs immediately on refresh.
func (k *Keeper) rebuildWatches() {
	if clearer, ok := k.backend.(watchClearer); ok {
		clearer.ClearWatchers()
	}
	k.watched = make(map[string]audio.Device)

	for deviceID, settings := range k.st.Devices {
		if !settings.IsVolumeLocked && !settings.IsUnmuteLocked {
			continue
		}
		device, err := k.backend.DeviceByID(deviceID)
		if err != nil {
			k.log.Debugf("Skipping watch for %s, device not resolvable: %v", settings.Name, err)
			continue
		}
		if active, err := device.Active(); err != nil || !active {
			continue
		}

		id := deviceID
		err = device.WatchVolume(func(newVolume *float32) {
			// Runs on an OS-owned thread: enqueue only.
			k.queue.Push(events.VolumeChanged{DeviceID: id, NewVolume: newVolume})
		})
		if err != nil {
			// Device vanished mid-registration; excluded this cycle.
			k.log.Warnf("Failed to watch volume of %s: %v", settings.Name, err)
			continue
		}
		k.watched[deviceID] = device

		k.queue.Push(events.VolumeChanged{DeviceID: deviceID})

		if settings.IsUnmuteLocked {
			title, suffix := unmuteNotification(settings.DeviceType)
			checkAndUnmute(device, settings.Name, settings.NotifyOnUnmuteLock, title, suffix, k.debounce, k.log)
		}
	}
}

func (k *Keeper) rebuildMenu() {
	menu, bindings := ui.BuildMenu(k.backend, k.st, &k.temp)
	k.bindings = bindings
	k.presenter.Rebuild(menu)
}

func (k *Keeper) handleMenuAction(ev events.MenuAction) {
	switch ev.ID {
	case ui.QuitItemID:
		k.queue.Push(events.Quit{})
		return
	case ui.CheckUpdatesItemID:
		if k.CheckUpdates != nil {
			go k.CheckUpdates()
		}
		return
	}

	info, ok := k.bindings[ev.ID]
	if !ok {
		k.log.Debugf("Menu action for unknown entry %s", ev.ID)
		return
	}

	result := ui.HandleAction(info, ev.Checked, k.st, &k.temp, k.backend, k.log)

	switch {
	case result.Save:
		k.handleEvent(events.ConfigurationChanged{})
	case result.DevicesChanged:
		k.handleDevicesChanged()
	case result.OpenList != nil:
		platform.OpenDevicesList(*result.OpenList, k.log)
	case result.OpenProperties != "":
		platform.OpenDeviceProperties(result.OpenProperties, k.log)
	}
}
