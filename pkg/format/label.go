package format

import (
	"fmt"
	"strconv"
)

// Percent formats an integer volume percentage without a decimal point.
// Example: 48.0 -> "48%"
func Percent(percent float32) string {
	return strconv.Itoa(int(percent)) + "%"
}

// DeviceLabel builds the tray menu label for a device: name, a star for
// the current default, the volume percentage, a mute marker and a lock
// marker.
// Example: "Speakers (Realtek Audio) · ☆ · 48% · 🔒"
func DeviceLabel(name string, volumePercent float32, isDefault, isLocked, isMuted bool) string {
	defaultIndicator := ""
	if isDefault {
		defaultIndicator = " · ☆"
	}
	lockedIndicator := ""
	if isLocked {
		lockedIndicator = " · 🔒"
	}
	mutedIndicator := ""
	if isMuted {
		mutedIndicator = " 🚫"
	}
	return fmt.Sprintf("%s%s · %s%s%s", name, defaultIndicator, Percent(volumePercent), mutedIndicator, lockedIndicator)
}

// PriorityLabel builds the numbered label for a priority list entry.
// Example: "1. Headset Mic (USB Audio)"
func PriorityLabel(index int, name string) string {
	return fmt.Sprintf("%d. %s", index+1, name)
}
