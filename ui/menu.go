// Package ui builds the tray menu model and applies menu-driven state
// mutations. The model is plain data; rendering it is the presenter's job,
// so everything here is unit-testable with the fake backend.
package ui

import (
	"strconv"
	"strings"

	"github.com/volkeeper/volkeeper/audio"
	"github.com/volkeeper/volkeeper/pkg/format"
	"github.com/volkeeper/volkeeper/state"
)

// SettingType identifies what a menu entry does when clicked.
type SettingType int

const (
	VolumeLock SettingType = iota
	VolumeLockNotify
	UnmuteLock
	UnmuteLockNotify
	AddToPriority
	RemoveFromPriority
	MovePriorityUp
	MovePriorityDown
	MovePriorityToTop
	MovePriorityToBottom
	PriorityRestoreNotify
	SwitchCommunicationDevice
	SwitchForegroundApp
	SetTemporaryPriority
	OpenDevicesList
	OpenDeviceProperties
)

// ItemDeviceInfo binds a generated menu entry id to the device and setting
// it controls. The binding table is rebuilt on every menu rebuild and
// owned by the keeper loop; it is never persisted.
type ItemDeviceInfo struct {
	DeviceID   string
	Setting    SettingType
	Name       string
	DeviceType audio.DeviceType
}

// Item is one entry of the menu model.
type Item struct {
	ID        string
	Label     string
	Checkbox  bool
	Checked   bool
	Enabled   bool
	Separator bool
	Children  []Item
}

// Menu is the whole tray menu model.
type Menu struct {
	Items []Item
}

// Presenter renders the menu model and the tray icon. Implementations must
// deliver clicks as events on the keeper queue, never call back into the
// keeper directly.
type Presenter interface {
	Rebuild(menu *Menu)
	SetIcon(locked bool)
	Quit()
}

// NopPresenter is used when the tray is disabled.
type NopPresenter struct{}

func (NopPresenter) Rebuild(*Menu) {}
func (NopPresenter) SetIcon(bool)  {}
func (NopPresenter) Quit()         {}

// Static ids for entries that do not bind to a device.
const (
	QuitItemID         = "quit"
	CheckUpdatesItemID = "check-updates"
)

type builder struct {
	nextID   int
	bindings map[string]ItemDeviceInfo
}

func (b *builder) bind(info ItemDeviceInfo) string {
	b.nextID++
	id := "m" + strconv.Itoa(b.nextID)
	b.bindings[id] = info
	return id
}

func typeLabel(t audio.DeviceType) string {
	if t == audio.Output {
		return "Output"
	}
	return "Input"
}

// BuildMenu assembles the menu model from live device state and the
// persisted settings, returning it together with the id binding table.
func BuildMenu(backend audio.Backend, st *state.PersistentState, temp *state.TemporaryPriorities) (*Menu, map[string]ItemDeviceInfo) {
	b := &builder{bindings: make(map[string]ItemDeviceInfo)}
	menu := &Menu{}

	for _, deviceType := range audio.Types {
		b.appendDeviceList(menu, deviceType, backend, st)
	}
	for _, deviceType := range audio.Types {
		b.appendPrioritySection(menu, deviceType, backend, st, temp)
	}
	b.appendTemporarySection(menu, backend, st, temp)

	menu.Items = append(menu.Items,
		Item{Separator: true},
		Item{ID: CheckUpdatesItemID, Label: "Check for updates", Enabled: true},
		Item{Separator: true},
		Item{ID: QuitItemID, Label: "Quit", Enabled: true},
	)

	return menu, b.bindings
}

func (b *builder) appendDeviceList(menu *Menu, deviceType audio.DeviceType, backend audio.Backend, st *state.PersistentState) {
	heading := Item{
		ID:      b.bind(ItemDeviceInfo{Setting: OpenDevicesList, DeviceType: deviceType, Name: typeLabel(deviceType) + " Devices"}),
		Label:   typeLabel(deviceType) + " Devices",
		Enabled: true,
	}
	menu.Items = append(menu.Items, heading)

	devices, err := backend.Devices(deviceType)
	if err != nil {
		devices = nil
	}

	var defaultID string
	if def, err := backend.DefaultDevice(deviceType, audio.RoleConsole); err == nil {
		defaultID = def.ID()
	}

	for _, device := range devices {
		name := device.Name()
		deviceID := device.ID()
		volume, _ := device.Volume()
		volumePercent := audio.FloatToPercent(volume)
		isMuted, _ := device.Muted()
		isDefault := defaultID != "" && defaultID == deviceID

		var volumeLocked, volumeNotify, unmuteLocked, unmuteNotify bool
		if settings, ok := st.Devices[deviceID]; ok {
			volumeLocked = settings.IsVolumeLocked
			volumeNotify = settings.NotifyOnVolumeLock
			unmuteLocked = settings.IsUnmuteLocked
			unmuteNotify = settings.NotifyOnUnmuteLock
			// Keep the stored identity fresh while the device is visible.
			settings.Name = name
			settings.DeviceType = deviceType
		}

		isLocked := volumeLocked || unmuteLocked
		label := format.DeviceLabel(name, volumePercent, isDefault, isLocked, isMuted)
		info := func(setting SettingType) ItemDeviceInfo {
			return ItemDeviceInfo{DeviceID: deviceID, Setting: setting, Name: name, DeviceType: deviceType}
		}

		submenu := Item{Label: label, Enabled: true, Children: []Item{
			{ID: b.bind(info(VolumeLock)), Label: "Keep volume locked", Checkbox: true, Checked: volumeLocked, Enabled: true},
			{ID: b.bind(info(UnmuteLock)), Label: "Keep unmuted", Checkbox: true, Checked: unmuteLocked, Enabled: true},
			{Separator: true},
			{ID: b.bind(info(VolumeLockNotify)), Label: "Notify on volume restore", Checkbox: true, Checked: volumeNotify, Enabled: volumeLocked},
			{ID: b.bind(info(UnmuteLockNotify)), Label: "Notify on unmute", Checkbox: true, Checked: unmuteNotify, Enabled: unmuteLocked},
			{Separator: true},
			{ID: b.bind(info(OpenDeviceProperties)), Label: "Open sound settings", Enabled: true},
		}}
		menu.Items = append(menu.Items, submenu)
	}
	menu.Items = append(menu.Items, Item{Separator: true})
}

func (b *builder) appendPrioritySection(menu *Menu, deviceType audio.DeviceType, backend audio.Backend, st *state.PersistentState, temp *state.TemporaryPriorities) {
	priorityList := st.PriorityList(deviceType)
	menu.Items = append(menu.Items, Item{Label: "Default " + strings.ToLower(typeLabel(deviceType)) + " device priority"})

	devices, err := backend.Devices(deviceType)
	if err != nil {
		devices = nil
	}

	for index, deviceID := range priorityList {
		deviceName := deviceDisplayName(deviceID, backend, st)
		info := func(setting SettingType) ItemDeviceInfo {
			return ItemDeviceInfo{DeviceID: deviceID, Setting: setting, Name: deviceName, DeviceType: deviceType}
		}

		submenu := Item{Label: format.PriorityLabel(index, deviceName), Enabled: true, Children: []Item{
			{ID: b.bind(info(MovePriorityUp)), Label: "Move up", Enabled: index > 0},
			{ID: b.bind(info(MovePriorityDown)), Label: "Move down", Enabled: index < len(priorityList)-1},
			{ID: b.bind(info(MovePriorityToTop)), Label: "Move to top", Enabled: index > 0},
			{ID: b.bind(info(MovePriorityToBottom)), Label: "Move to bottom", Enabled: index < len(priorityList)-1},
			{Separator: true},
			{ID: b.bind(info(RemoveFromPriority)), Label: "Remove device", Enabled: true},
		}}
		menu.Items = append(menu.Items, submenu)
	}

	addSubmenu := Item{Label: "Add device", Children: nil}
	for _, device := range devices {
		id := device.ID()
		if contains(priorityList, id) {
			continue
		}
		name := device.Name()
		addSubmenu.Children = append(addSubmenu.Children, Item{
			ID:      b.bind(ItemDeviceInfo{DeviceID: id, Setting: AddToPriority, Name: name, DeviceType: deviceType}),
			Label:   name,
			Enabled: true,
		})
	}
	addSubmenu.Enabled = len(addSubmenu.Children) > 0
	menu.Items = append(menu.Items, addSubmenu)

	togglesEnabled := len(priorityList) > 0 || temp.Get(deviceType) != ""
	menu.Items = append(menu.Items,
		Item{
			ID:       b.bind(ItemDeviceInfo{Setting: PriorityRestoreNotify, Name: "Priority Restore Notify", DeviceType: deviceType}),
			Label:    "Notify on priority restore",
			Checkbox: true,
			Checked:  st.NotifyOnPriorityRestore(deviceType),
			Enabled:  togglesEnabled,
		},
		Item{
			ID:       b.bind(ItemDeviceInfo{Setting: SwitchCommunicationDevice, Name: "Switch Communication Device", DeviceType: deviceType}),
			Label:    "Also switch default communication device",
			Checkbox: true,
			Checked:  st.SwitchCommunicationDevice(deviceType),
			Enabled:  togglesEnabled,
		},
		Item{
			ID:       b.bind(ItemDeviceInfo{Setting: SwitchForegroundApp, Name: "Switch Foreground App", DeviceType: deviceType}),
			Label:    "Also switch foreground program",
			Checkbox: true,
			Checked:  st.SwitchForegroundApp(deviceType),
			Enabled:  togglesEnabled,
		},
		Item{Separator: true},
	)
}

func (b *builder) appendTemporarySection(menu *Menu, backend audio.Backend, st *state.PersistentState, temp *state.TemporaryPriorities) {
	menu.Items = append(menu.Items, Item{Label: "Temporary default device priority"})

	for _, deviceType := range audio.Types {
		labelPrefix := typeLabel(deviceType) + " device"
		tempID := temp.Get(deviceType)

		label := labelPrefix
		if tempID != "" {
			label = labelPrefix + ": " + deviceDisplayName(tempID, backend, st)
		}

		devices, err := backend.Devices(deviceType)
		if err != nil {
			devices = nil
		}

		submenu := Item{Label: label, Enabled: true}
		for _, device := range devices {
			id := device.ID()
			name := device.Name()
			submenu.Children = append(submenu.Children, Item{
				ID:       b.bind(ItemDeviceInfo{DeviceID: id, Setting: SetTemporaryPriority, Name: name, DeviceType: deviceType}),
				Label:    name,
				Checkbox: true,
				Checked:  id == tempID,
				Enabled:  true,
			})
		}
		menu.Items = append(menu.Items, submenu)
	}
}

func deviceDisplayName(deviceID string, backend audio.Backend, st *state.PersistentState) string {
	if settings, ok := st.Devices[deviceID]; ok {
		return settings.Name
	}
	if device, err := backend.DeviceByID(deviceID); err == nil {
		return device.Name()
	}
	return "Unknown Device"
}

func contains(list []string, id string) bool {
	for _, other := range list {
		if other == id {
			return true
		}
	}
	return false
}
