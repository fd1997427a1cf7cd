// Package state holds the persisted desired-state model: per-device lock
// settings, priority lists and global toggles. The model is owned
// exclusively by the keeper loop; nothing in here is safe for concurrent
// mutation and nothing needs to be.
package state

import "github.com/volkeeper/volkeeper/audio"

// DeviceSettings is the per-device record. An entry is retained only while
// at least one flag is set or the device appears in a priority list; see
// Prune.
type DeviceSettings struct {
	IsVolumeLocked     bool             `json:"is_volume_locked"`
	VolumePercent      float32          `json:"volume_percent"`
	NotifyOnVolumeLock bool             `json:"notify_on_volume_lock"`
	IsUnmuteLocked     bool             `json:"is_unmute_locked"`
	NotifyOnUnmuteLock bool             `json:"notify_on_unmute_lock"`
	DeviceType         audio.DeviceType `json:"device_type"`
	Name               string           `json:"name"`
}

// HasAnyFlag reports whether any lock or notify flag is set.
func (s *DeviceSettings) HasAnyFlag() bool {
	return s.IsVolumeLocked || s.IsUnmuteLocked || s.NotifyOnVolumeLock || s.NotifyOnUnmuteLock
}

// PersistentState is the root aggregate saved to the state file. Unknown
// or missing JSON fields keep their defaults, so the format is forward and
// backward compatible by field-level defaulting rather than versioning.
type PersistentState struct {
	Devices            map[string]*DeviceSettings `json:"devices"`
	OutputPriorityList []string                   `json:"output_priority_list"`
	InputPriorityList  []string                   `json:"input_priority_list"`

	NotifyOnPriorityRestoreOutput   bool `json:"notify_on_priority_restore_output"`
	NotifyOnPriorityRestoreInput    bool `json:"notify_on_priority_restore_input"`
	SwitchCommunicationDeviceOutput bool `json:"switch_communication_device_output"`
	SwitchCommunicationDeviceInput  bool `json:"switch_communication_device_input"`
	SwitchForegroundAppOutput       bool `json:"switch_foreground_app_output"`
	SwitchForegroundAppInput        bool `json:"switch_foreground_app_input"`
}

// Default returns the initial state. Switching the communication device
// along with the default is on by default; everything else is opt-in.
func Default() *PersistentState {
	return &PersistentState{
		Devices:                         make(map[string]*DeviceSettings),
		SwitchCommunicationDeviceOutput: true,
		SwitchCommunicationDeviceInput:  true,
	}
}

// PriorityList returns the priority list for a device type.
func (s *PersistentState) PriorityList(t audio.DeviceType) []string {
	if t == audio.Output {
		return s.OutputPriorityList
	}
	return s.InputPriorityList
}

func (s *PersistentState) setPriorityList(t audio.DeviceType, list []string) {
	if t == audio.Output {
		s.OutputPriorityList = list
	} else {
		s.InputPriorityList = list
	}
}

// NotifyOnPriorityRestore returns the per-type restore notification toggle.
func (s *PersistentState) NotifyOnPriorityRestore(t audio.DeviceType) bool {
	if t == audio.Output {
		return s.NotifyOnPriorityRestoreOutput
	}
	return s.NotifyOnPriorityRestoreInput
}

// SetNotifyOnPriorityRestore sets the per-type restore notification toggle.
func (s *PersistentState) SetNotifyOnPriorityRestore(t audio.DeviceType, notify bool) {
	if t == audio.Output {
		s.NotifyOnPriorityRestoreOutput = notify
	} else {
		s.NotifyOnPriorityRestoreInput = notify
	}
}

// SwitchCommunicationDevice returns the per-type communications toggle.
func (s *PersistentState) SwitchCommunicationDevice(t audio.DeviceType) bool {
	if t == audio.Output {
		return s.SwitchCommunicationDeviceOutput
	}
	return s.SwitchCommunicationDeviceInput
}

// SetSwitchCommunicationDevice sets the per-type communications toggle.
func (s *PersistentState) SetSwitchCommunicationDevice(t audio.DeviceType, switchIt bool) {
	if t == audio.Output {
		s.SwitchCommunicationDeviceOutput = switchIt
	} else {
		s.SwitchCommunicationDeviceInput = switchIt
	}
}

// SwitchForegroundApp returns the per-type foreground-app toggle.
func (s *PersistentState) SwitchForegroundApp(t audio.DeviceType) bool {
	if t == audio.Output {
		return s.SwitchForegroundAppOutput
	}
	return s.SwitchForegroundAppInput
}

// SetSwitchForegroundApp sets the per-type foreground-app toggle.
func (s *PersistentState) SetSwitchForegroundApp(t audio.DeviceType, switchIt bool) {
	if t == audio.Output {
		s.SwitchForegroundAppOutput = switchIt
	} else {
		s.SwitchForegroundAppInput = switchIt
	}
}

// EnsureDevice returns the settings entry for a device, creating a blank
// one when missing. Name and type are refreshed on every call since the OS
// may have renamed the endpoint.
func (s *PersistentState) EnsureDevice(id, name string, t audio.DeviceType) *DeviceSettings {
	if s.Devices == nil {
		s.Devices = make(map[string]*DeviceSettings)
	}
	settings, ok := s.Devices[id]
	if !ok {
		settings = &DeviceSettings{DeviceType: t, Name: name}
		s.Devices[id] = settings
		return settings
	}
	settings.Name = name
	settings.DeviceType = t
	return settings
}

// InAnyPriorityList reports whether the device id appears in either
// priority list.
func (s *PersistentState) InAnyPriorityList(id string) bool {
	for _, other := range s.OutputPriorityList {
		if other == id {
			return true
		}
	}
	for _, other := range s.InputPriorityList {
		if other == id {
			return true
		}
	}
	return false
}

// Prune drops the settings entry for a device when it carries no flags and
// is not referenced by a priority list. Every mutation path calls this so
// the invariant holds for all reachable states.
func (s *PersistentState) Prune(id string) {
	settings, ok := s.Devices[id]
	if !ok {
		return
	}
	if !settings.HasAnyFlag() && !s.InAnyPriorityList(id) {
		delete(s.Devices, id)
	}
}

// AddToPriority appends a device to its type's priority list if absent and
// makes sure a settings entry exists for it.
func (s *PersistentState) AddToPriority(id, name string, t audio.DeviceType) bool {
	list := s.PriorityList(t)
	for _, other := range list {
		if other == id {
			return false
		}
	}
	s.setPriorityList(t, append(list, id))
	s.EnsureDevice(id, name, t)
	return true
}

// RemoveFromPriority removes a device from its type's priority list and
// prunes its settings entry if nothing else retains it.
func (s *PersistentState) RemoveFromPriority(id string, t audio.DeviceType) bool {
	list := s.PriorityList(t)
	for i, other := range list {
		if other == id {
			s.setPriorityList(t, append(list[:i], list[i+1:]...))
			s.Prune(id)
			return true
		}
	}
	return false
}

// MovePriority shifts a device within its type's priority list by delta
// positions (negative is toward the front), clamped to the list bounds.
func (s *PersistentState) MovePriority(id string, t audio.DeviceType, delta int) bool {
	list := s.PriorityList(t)
	pos := -1
	for i, other := range list {
		if other == id {
			pos = i
			break
		}
	}
	if pos < 0 {
		return false
	}
	target := pos + delta
	if target < 0 {
		target = 0
	}
	if target > len(list)-1 {
		target = len(list) - 1
	}
	if target == pos {
		return false
	}
	step := 1
	if target < pos {
		step = -1
	}
	for i := pos; i != target; i += step {
		list[i], list[i+step] = list[i+step], list[i]
	}
	return true
}

// ReplaceInPriority swaps the first occurrence of oldID with newID in the
// matching priority list, preserving its position. Used by identity
// migration when the OS reissues a device id.
func (s *PersistentState) ReplaceInPriority(oldID, newID string, t audio.DeviceType) bool {
	list := s.PriorityList(t)
	for i, other := range list {
		if other == oldID {
			list[i] = newID
			return true
		}
	}
	return false
}

// TemporaryPriorities is the transient per-type override: a device id
// inserted at the front of the priority list for the current session only.
// It is never persisted.
type TemporaryPriorities struct {
	Output string
	Input  string
}

// Get returns the override for a device type, or "" when unset.
func (tp *TemporaryPriorities) Get(t audio.DeviceType) string {
	if t == audio.Output {
		return tp.Output
	}
	return tp.Input
}

// Set installs or clears ("" clears) the override for a device type.
func (tp *TemporaryPriorities) Set(t audio.DeviceType, id string) {
	if t == audio.Output {
		tp.Output = id
	} else {
		tp.Input = id
	}
}
