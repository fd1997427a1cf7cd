// Package audio defines the backend abstraction over the OS volume
// subsystem. The enforcement and reconciliation logic is written against
// these interfaces only, so it can run against the fake in-memory backend
// in tests and against whatever platform binding is compiled in.
package audio

import (
	"errors"
	"fmt"
	"math"
)

// DeviceType classifies a device and its priority list.
type DeviceType int

const (
	Output DeviceType = iota
	Input
)

// Types lists both device types in the order they are processed.
var Types = [2]DeviceType{Output, Input}

func (t DeviceType) String() string {
	switch t {
	case Output:
		return "Output"
	case Input:
		return "Input"
	}
	return fmt.Sprintf("DeviceType(%d)", int(t))
}

// MarshalText implements encoding.TextMarshaler so the type round-trips
// through the JSON state file as "Output"/"Input".
func (t DeviceType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *DeviceType) UnmarshalText(text []byte) error {
	switch string(text) {
	case "Output":
		*t = Output
	case "Input":
		*t = Input
	default:
		return fmt.Errorf("unknown device type %q", text)
	}
	return nil
}

// DeviceRole maps to the OS's three independent default-device slots.
type DeviceRole int

const (
	RoleConsole DeviceRole = iota
	RoleMultimedia
	RoleCommunications
)

func (r DeviceRole) String() string {
	switch r {
	case RoleConsole:
		return "Console"
	case RoleMultimedia:
		return "Multimedia"
	case RoleCommunications:
		return "Communications"
	}
	return fmt.Sprintf("DeviceRole(%d)", int(r))
}

// ErrDeviceNotFound is returned when a device id or name cannot be
// resolved against the currently enumerable devices.
var ErrDeviceNotFound = errors.New("audio device not found")

// Backend is the capability set consumed from the OS volume subsystem.
type Backend interface {
	// Devices enumerates the currently active devices of the given type.
	Devices(deviceType DeviceType) ([]Device, error)
	// DeviceByID resolves a device id, active or not.
	DeviceByID(id string) (Device, error)
	// DefaultDevice returns the current default device for a role.
	DefaultDevice(deviceType DeviceType, role DeviceRole) (Device, error)
	// SetDefaultDevice switches the default device for a role.
	SetDefaultDevice(id string, role DeviceRole) error
	// WatchDeviceChanges registers a topology-change callback. The
	// callback runs on an OS-owned thread and must only enqueue work.
	WatchDeviceChanges(fn func()) error
}

// Device is a single audio endpoint.
type Device interface {
	ID() string
	// Name returns the cleaned friendly name. Implementations must pass
	// the raw OS name through CleanName; the cleaned form is the identity
	// used for migration matching, so a raw name leaking through breaks
	// relinking after a driver reinstall.
	Name() string
	// Volume returns the native volume fraction in [0.0, 1.0].
	Volume() (float32, error)
	SetVolume(volume float32) error
	Muted() (bool, error)
	SetMute(muted bool) error
	Active() (bool, error)
	// WatchVolume registers a volume/mute change callback. A nil value
	// means the native notification did not carry the new volume.
	// Registering again replaces any previous watcher for the device.
	WatchVolume(fn func(newVolume *float32)) error
}

// FloatToPercent converts a native volume fraction to the integer percent
// the state file stores. Volumes are compared as rounded percentages,
// never as raw fractions, so repeated fraction/percent conversions cannot
// introduce float-equality flakiness.
func FloatToPercent(volume float32) float32 {
	return float32(math.Round(float64(volume) * 100))
}

// PercentToFloat converts a stored percent back to the native fraction.
func PercentToFloat(percent float32) float32 {
	return percent / 100
}
