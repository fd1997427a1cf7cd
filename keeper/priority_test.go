package keeper

import (
	"testing"
	"time"

	"github.com/decred/slog"

	"github.com/volkeeper/volkeeper/audio"
	"github.com/volkeeper/volkeeper/notify"
	"github.com/volkeeper/volkeeper/state"
)

type recordingNotifier struct {
	calls []string
}

func (r *recordingNotifier) Notify(title, body string) error {
	r.calls = append(r.calls, title+"|"+body)
	return nil
}

func testDebouncer() (*notify.Debouncer, *recordingNotifier) {
	rec := &recordingNotifier{}
	d := notify.NewDebouncer(rec, slog.Disabled)
	now := time.Unix(1000, 0)
	d.SetClock(func() time.Time {
		now = now.Add(notify.DebounceWindow)
		return now
	})
	return d, rec
}

func TestEnforceSwitchesToHighestActive(t *testing.T) {
	backend := audio.NewFakeBackend()
	backend.AddDevice("a", "A", audio.Output).SetActive(false)
	backend.AddDevice("b", "B", audio.Output)
	backend.AddDevice("c", "C", audio.Output)
	backend.SetDefault(audio.Output, audio.RoleConsole, "c")
	backend.SetDefault(audio.Output, audio.RoleMultimedia, "c")
	backend.SetDefault(audio.Output, audio.RoleCommunications, "c")

	st := state.Default()
	st.AddToPriority("a", "A", audio.Output)
	st.AddToPriority("b", "B", audio.Output)
	st.AddToPriority("c", "C", audio.Output)
	var temp state.TemporaryPriorities
	debounce, _ := testDebouncer()

	EnforcePriorities(backend, st, &temp, debounce, slog.Disabled)

	// a is inactive, so b wins; Console and Multimedia switch together and
	// Communications follows because the toggle defaults on.
	want := []string{"b/Console", "b/Multimedia", "b/Communications"}
	if len(backend.SetDefaultCalls) != len(want) {
		t.Fatalf("calls = %v, want %v", backend.SetDefaultCalls, want)
	}
	for i := range want {
		if backend.SetDefaultCalls[i] != want[i] {
			t.Fatalf("calls = %v, want %v", backend.SetDefaultCalls, want)
		}
	}
}

func TestEnforceNoActiveCandidateIsNoOp(t *testing.T) {
	backend := audio.NewFakeBackend()
	backend.AddDevice("a", "A", audio.Output).SetActive(false)
	backend.AddDevice("other", "Other", audio.Output)
	backend.SetDefault(audio.Output, audio.RoleConsole, "other")

	st := state.Default()
	st.AddToPriority("a", "A", audio.Output)
	var temp state.TemporaryPriorities
	debounce, rec := testDebouncer()

	EnforcePriorities(backend, st, &temp, debounce, slog.Disabled)

	if len(backend.SetDefaultCalls) != 0 {
		t.Errorf("switched with no active candidate: %v", backend.SetDefaultCalls)
	}
	if len(rec.calls) != 0 {
		t.Errorf("notified with no active candidate: %v", rec.calls)
	}
}

func TestEnforceAlreadyCorrectIsNoOp(t *testing.T) {
	backend := audio.NewFakeBackend()
	backend.AddDevice("a", "A", audio.Output)
	backend.SetDefault(audio.Output, audio.RoleConsole, "a")
	backend.SetDefault(audio.Output, audio.RoleCommunications, "a")

	st := state.Default()
	st.AddToPriority("a", "A", audio.Output)
	st.SetNotifyOnPriorityRestore(audio.Output, true)
	var temp state.TemporaryPriorities
	debounce, rec := testDebouncer()

	EnforcePriorities(backend, st, &temp, debounce, slog.Disabled)

	if len(backend.SetDefaultCalls) != 0 {
		t.Errorf("switched although already correct: %v", backend.SetDefaultCalls)
	}
	if len(rec.calls) != 0 {
		t.Errorf("notified although nothing changed: %v", rec.calls)
	}
}

func TestEnforceTemporaryOverrideWins(t *testing.T) {
	backend := audio.NewFakeBackend()
	backend.AddDevice("a", "A", audio.Output)
	backend.AddDevice("d", "D", audio.Output)
	backend.SetDefault(audio.Output, audio.RoleConsole, "a")
	backend.SetDefault(audio.Output, audio.RoleMultimedia, "a")
	backend.SetDefault(audio.Output, audio.RoleCommunications, "a")

	st := state.Default()
	st.AddToPriority("a", "A", audio.Output)
	var temp state.TemporaryPriorities
	temp.Set(audio.Output, "d")
	debounce, _ := testDebouncer()

	EnforcePriorities(backend, st, &temp, debounce, slog.Disabled)

	if backend.Default(audio.Output, audio.RoleConsole) != "d" {
		t.Error("temporary override did not outrank the persisted list")
	}
}

func TestEnforceInactiveOverrideFallsThrough(t *testing.T) {
	backend := audio.NewFakeBackend()
	backend.AddDevice("a", "A", audio.Output)
	backend.AddDevice("d", "D", audio.Output).SetActive(false)
	backend.SetDefault(audio.Output, audio.RoleConsole, "a")
	backend.SetDefault(audio.Output, audio.RoleMultimedia, "a")
	backend.SetDefault(audio.Output, audio.RoleCommunications, "a")

	st := state.Default()
	st.AddToPriority("a", "A", audio.Output)
	var temp state.TemporaryPriorities
	temp.Set(audio.Output, "d")
	debounce, _ := testDebouncer()

	EnforcePriorities(backend, st, &temp, debounce, slog.Disabled)

	// The override is inactive, so the persisted list still applies; a is
	// already correct, so nothing happens.
	if len(backend.SetDefaultCalls) != 0 {
		t.Errorf("switched away from the correct fallback: %v", backend.SetDefaultCalls)
	}
}

func TestEnforceCommunicationsToggleOff(t *testing.T) {
	backend := audio.NewFakeBackend()
	backend.AddDevice("a", "A", audio.Input)
	backend.AddDevice("other", "Other", audio.Input)
	backend.SetDefault(audio.Input, audio.RoleConsole, "other")
	backend.SetDefault(audio.Input, audio.RoleCommunications, "other")

	st := state.Default()
	st.AddToPriority("a", "A", audio.Input)
	st.SetSwitchCommunicationDevice(audio.Input, false)
	var temp state.TemporaryPriorities
	debounce, _ := testDebouncer()

	EnforcePriorities(backend, st, &temp, debounce, slog.Disabled)

	if backend.Default(audio.Input, audio.RoleCommunications) != "other" {
		t.Error("communications slot switched although the toggle is off")
	}
	if backend.Default(audio.Input, audio.RoleConsole) != "a" {
		t.Error("console slot not enforced")
	}
}

func TestEnforceNotifiesOnRestore(t *testing.T) {
	backend := audio.NewFakeBackend()
	backend.AddDevice("a", "Good Headset (USB Audio)", audio.Output)
	backend.AddDevice("other", "Other", audio.Output)
	backend.SetDefault(audio.Output, audio.RoleConsole, "other")
	backend.SetDefault(audio.Output, audio.RoleCommunications, "a")

	st := state.Default()
	st.AddToPriority("a", "Good Headset (USB Audio)", audio.Output)
	st.SetNotifyOnPriorityRestore(audio.Output, true)
	var temp state.TemporaryPriorities
	debounce, rec := testDebouncer()

	EnforcePriorities(backend, st, &temp, debounce, slog.Disabled)

	if len(rec.calls) != 1 {
		t.Fatalf("notifications = %v, want exactly one", rec.calls)
	}
	want := "Default Output Device Restored|Switched to Good Headset (USB Audio) based on priority list."
	if rec.calls[0] != want {
		t.Errorf("notification = %q, want %q", rec.calls[0], want)
	}
}

func TestEnforceTypesAreIndependent(t *testing.T) {
	backend := audio.NewFakeBackend()
	backend.AddDevice("out", "Out", audio.Output)
	backend.AddDevice("in", "In", audio.Input)
	backend.SetDefault(audio.Output, audio.RoleConsole, "out")
	backend.SetDefault(audio.Output, audio.RoleCommunications, "out")

	st := state.Default()
	st.AddToPriority("out", "Out", audio.Output)
	st.AddToPriority("in", "In", audio.Input)
	var temp state.TemporaryPriorities
	debounce, _ := testDebouncer()

	EnforcePriorities(backend, st, &temp, debounce, slog.Disabled)

	// Output was already correct; only the input slots should switch.
	if backend.Default(audio.Input, audio.RoleConsole) != "in" {
		t.Error("input console slot not enforced")
	}
	for _, call := range backend.SetDefaultCalls {
		if call == "out/Console" {
			t.Error("output switched although already correct")
		}
	}
}
