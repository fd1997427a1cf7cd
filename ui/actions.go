package ui

import (
	"github.com/decred/slog"

	"github.com/volkeeper/volkeeper/audio"
	"github.com/volkeeper/volkeeper/state"
)

// ActionResult tells the keeper what a menu action requires next.
type ActionResult struct {
	// Save requests a persist (which in turn re-runs enforcement).
	Save bool
	// DevicesChanged requests re-enforcement without a persist, for
	// session-only changes like the temporary priority.
	DevicesChanged bool
	// OpenList asks to open the OS device list panel for a type.
	OpenList *audio.DeviceType
	// OpenProperties asks to open the OS properties page for a device.
	OpenProperties string
}

// HandleAction applies a clicked menu entry to the state. checked carries
// the new value for checkbox entries and is ignored for plain entries.
func HandleAction(info ItemDeviceInfo, checked bool, st *state.PersistentState, temp *state.TemporaryPriorities, backend audio.Backend, log slog.Logger) ActionResult {
	var result ActionResult

	switch info.Setting {
	case VolumeLock, VolumeLockNotify, UnmuteLock, UnmuteLockNotify:
		settings := st.EnsureDevice(info.DeviceID, info.Name, info.DeviceType)

		switch info.Setting {
		case VolumeLock:
			if checked {
				// Locking captures the current live volume as the target.
				device, err := backend.DeviceByID(info.DeviceID)
				var volume float32
				if err == nil {
					volume, err = device.Volume()
				}
				if err != nil {
					log.Errorf("Failed to get volume for device %s, cannot lock: %v", info.Name, err)
					settings.IsVolumeLocked = false
				} else {
					settings.VolumePercent = audio.FloatToPercent(volume)
					settings.IsVolumeLocked = true
				}
			} else {
				settings.IsVolumeLocked = false
			}
		case VolumeLockNotify:
			settings.NotifyOnVolumeLock = checked
		case UnmuteLock:
			settings.IsUnmuteLocked = checked
		case UnmuteLockNotify:
			settings.NotifyOnUnmuteLock = checked
		}

		st.Prune(info.DeviceID)
		result.Save = true

	case AddToPriority:
		if st.AddToPriority(info.DeviceID, info.Name, info.DeviceType) {
			result.Save = true
		}

	case RemoveFromPriority:
		if st.RemoveFromPriority(info.DeviceID, info.DeviceType) {
			result.Save = true
		}

	case MovePriorityUp:
		result.Save = st.MovePriority(info.DeviceID, info.DeviceType, -1)

	case MovePriorityDown:
		result.Save = st.MovePriority(info.DeviceID, info.DeviceType, 1)

	case MovePriorityToTop:
		result.Save = st.MovePriority(info.DeviceID, info.DeviceType, -len(st.PriorityList(info.DeviceType)))

	case MovePriorityToBottom:
		result.Save = st.MovePriority(info.DeviceID, info.DeviceType, len(st.PriorityList(info.DeviceType)))

	case PriorityRestoreNotify:
		st.SetNotifyOnPriorityRestore(info.DeviceType, checked)
		result.Save = true

	case SwitchCommunicationDevice:
		st.SetSwitchCommunicationDevice(info.DeviceType, checked)
		result.Save = true

	case SwitchForegroundApp:
		st.SetSwitchForegroundApp(info.DeviceType, checked)
		result.Save = true

	case SetTemporaryPriority:
		if checked {
			temp.Set(info.DeviceType, info.DeviceID)
		} else {
			temp.Set(info.DeviceType, "")
		}
		result.DevicesChanged = true

	case OpenDevicesList:
		deviceType := info.DeviceType
		result.OpenList = &deviceType

	case OpenDeviceProperties:
		result.OpenProperties = info.DeviceID
	}

	return result
}
