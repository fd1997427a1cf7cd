package audio

import (
	"fmt"
	"sort"
	"sync"
)

// FakeBackend is a deterministic in-memory Backend for tests and for
// exercising the keeper loop without a platform binding. Device order is
// stable (insertion order) so enumeration-dependent behavior, like
// first-match migration ties, is reproducible.
type FakeBackend struct {
	mu sync.Mutex

	devices  map[string]*FakeDevice
	order    []string
	defaults map[DeviceType]map[DeviceRole]string

	deviceChanged func()

	// SetDefaultCalls records every SetDefaultDevice invocation as
	// "<id>/<role>" in order.
	SetDefaultCalls []string
}

// NewFakeBackend creates an empty fake backend.
func NewFakeBackend() *FakeBackend {
	return &FakeBackend{
		devices: make(map[string]*FakeDevice),
		defaults: map[DeviceType]map[DeviceRole]string{
			Output: make(map[DeviceRole]string),
			Input:  make(map[DeviceRole]string),
		},
	}
}

// AddDevice registers a device and returns it for further tweaking.
func (b *FakeBackend) AddDevice(id, name string, deviceType DeviceType) *FakeDevice {
	b.mu.Lock()
	defer b.mu.Unlock()
	d := &FakeDevice{
		id:         id,
		name:       CleanName(name),
		deviceType: deviceType,
		active:     true,
	}
	if _, exists := b.devices[id]; !exists {
		b.order = append(b.order, id)
	}
	b.devices[id] = d
	return d
}

// RemoveDevice forgets a device entirely, as if it were unplugged and its
// id reissued.
func (b *FakeBackend) RemoveDevice(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.devices, id)
	for i, other := range b.order {
		if other == id {
			b.order = append(b.order[:i], b.order[i+1:]...)
			break
		}
	}
}

// Device returns the fake device with the given id, or nil.
func (b *FakeBackend) Device(id string) *FakeDevice {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.devices[id]
}

// SetDefault seeds the current default device for a role without
// recording a SetDefaultDevice call.
func (b *FakeBackend) SetDefault(deviceType DeviceType, role DeviceRole, id string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.defaults[deviceType][role] = id
}

// Default returns the seeded or switched default device id for a role.
func (b *FakeBackend) Default(deviceType DeviceType, role DeviceRole) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.defaults[deviceType][role]
}

// FireDeviceChange invokes the registered topology-change callback.
func (b *FakeBackend) FireDeviceChange() {
	b.mu.Lock()
	fn := b.deviceChanged
	b.mu.Unlock()
	if fn != nil {
		fn()
	}
}

func (b *FakeBackend) Devices(deviceType DeviceType) ([]Device, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []Device
	for _, id := range b.order {
		d := b.devices[id]
		if d.deviceType == deviceType && d.active {
			out = append(out, d)
		}
	}
	return out, nil
}

func (b *FakeBackend) DeviceByID(id string) (Device, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	d, ok := b.devices[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrDeviceNotFound, id)
	}
	return d, nil
}

func (b *FakeBackend) DefaultDevice(deviceType DeviceType, role DeviceRole) (Device, error) {
	b.mu.Lock()
	id := b.defaults[deviceType][role]
	d, ok := b.devices[id]
	b.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("%w: no default for %s/%s", ErrDeviceNotFound, deviceType, role)
	}
	return d, nil
}

func (b *FakeBackend) SetDefaultDevice(id string, role DeviceRole) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	d, ok := b.devices[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrDeviceNotFound, id)
	}
	b.defaults[d.deviceType][role] = id
	b.SetDefaultCalls = append(b.SetDefaultCalls, id+"/"+role.String())
	return nil
}

func (b *FakeBackend) WatchDeviceChanges(fn func()) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.deviceChanged = fn
	return nil
}

// WatchedIDs returns the ids of devices that currently have a volume
// watcher registered, sorted for stable assertions.
func (b *FakeBackend) WatchedIDs() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	var ids []string
	for id, d := range b.devices {
		if d.watcher != nil {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

// ClearWatchers drops all volume watchers, emulating the re-registration
// cycle the keeper performs on topology changes.
func (b *FakeBackend) ClearWatchers() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, d := range b.devices {
		d.watcher = nil
	}
}

// FakeDevice is the Device implementation returned by FakeBackend.
type FakeDevice struct {
	mu sync.Mutex

	id         string
	name       string
	deviceType DeviceType
	volume     float32
	muted      bool
	active     bool
	watcher    func(*float32)

	// Call counters for convergence assertions.
	SetVolumeCalls int
	SetMuteCalls   int

	// Injectable failures.
	VolumeErr    error
	SetVolumeErr error
	MuteErr      error
	SetMuteErr   error
}

func (d *FakeDevice) ID() string   { return d.id }
func (d *FakeDevice) Name() string { return d.name }

// Rename changes the reported friendly name, as after a driver update.
func (d *FakeDevice) Rename(name string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.name = CleanName(name)
}

// SetActive flips the reported device state.
func (d *FakeDevice) SetActive(active bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.active = active
}

func (d *FakeDevice) Volume() (float32, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.VolumeErr != nil {
		return 0, d.VolumeErr
	}
	return d.volume, nil
}

func (d *FakeDevice) SetVolume(volume float32) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.SetVolumeCalls++
	if d.SetVolumeErr != nil {
		return d.SetVolumeErr
	}
	d.volume = volume
	return nil
}

func (d *FakeDevice) Muted() (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.MuteErr != nil {
		return false, d.MuteErr
	}
	return d.muted, nil
}

func (d *FakeDevice) SetMute(muted bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.SetMuteCalls++
	if d.SetMuteErr != nil {
		return d.SetMuteErr
	}
	d.muted = muted
	return nil
}

func (d *FakeDevice) Active() (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.active, nil
}

func (d *FakeDevice) WatchVolume(fn func(newVolume *float32)) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.watcher = fn
	return nil
}

// ChangeVolume simulates an external volume change: the live volume moves
// and the watcher, if any, is notified with the new fraction.
func (d *FakeDevice) ChangeVolume(volume float32) {
	d.mu.Lock()
	d.volume = volume
	fn := d.watcher
	d.mu.Unlock()
	if fn != nil {
		v := volume
		fn(&v)
	}
}

// ChangeMute simulates an external mute change. The native notification
// for mute does not carry a volume, so the watcher receives nil.
func (d *FakeDevice) ChangeMute(muted bool) {
	d.mu.Lock()
	d.muted = muted
	fn := d.watcher
	d.mu.Unlock()
	if fn != nil {
		fn(nil)
	}
}
