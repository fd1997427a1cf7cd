package audio

import "fmt"

// NoopBackend reports no devices and never fires callbacks. It stands in
// for the platform binding on builds without one, so the rest of the
// program (tray, state handling, persistence) stays usable in tests/CI.
type NoopBackend struct{}

func (NoopBackend) Devices(DeviceType) ([]Device, error) { return nil, nil }

func (NoopBackend) DeviceByID(id string) (Device, error) {
	return nil, fmt.Errorf("%w: %s", ErrDeviceNotFound, id)
}

func (NoopBackend) DefaultDevice(deviceType DeviceType, role DeviceRole) (Device, error) {
	return nil, fmt.Errorf("%w: no default for %s/%s", ErrDeviceNotFound, deviceType, role)
}

func (NoopBackend) SetDefaultDevice(id string, role DeviceRole) error {
	return fmt.Errorf("%w: %s", ErrDeviceNotFound, id)
}

func (NoopBackend) WatchDeviceChanges(func()) error { return nil }

// NewSystemBackend returns the platform volume-subsystem binding. Hosts
// without a binding get the noop backend.
func NewSystemBackend() Backend {
	return NoopBackend{}
}
