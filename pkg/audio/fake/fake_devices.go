package fake

import "github.com/chriscow/callaudio-go/pkg/audio"

// FakeBluetooth is a fake bluetooth link. Connect and Disconnect flip the
// pending state immediately; tests override the fields to simulate
// asynchronous completion or failure.
type FakeBluetooth struct {
	Available          bool
	ConnectedOrPending bool
	Connected          bool

	ConnectCalls    int
	DisconnectCalls int
}

func (b *FakeBluetooth) IsAvailable() bool          { return b.Available }
func (b *FakeBluetooth) IsConnectedOrPending() bool { return b.ConnectedOrPending }
func (b *FakeBluetooth) IsConnected() bool          { return b.Connected }

func (b *FakeBluetooth) Connect() {
	b.ConnectCalls++
	b.ConnectedOrPending = true
}

func (b *FakeBluetooth) Disconnect() {
	b.DisconnectCalls++
	b.ConnectedOrPending = false
	b.Connected = false
}

// FakeHeadset is a fake wired headset sensor.
type FakeHeadset struct {
	PluggedIn bool
}

func (h *FakeHeadset) IsPluggedIn() bool { return h.PluggedIn }

// RecordingNotifier records every notification in arrival order.
type RecordingNotifier struct {
	MuteChanges    []bool
	SpeakerChanges []bool
	Transitions    []StateTransition
}

// StateTransition is one recorded OnAudioStateChanged notification.
type StateTransition struct {
	Old audio.State
	New audio.State
}

func (n *RecordingNotifier) OnMuteChanged(muted bool) {
	n.MuteChanges = append(n.MuteChanges, muted)
}

func (n *RecordingNotifier) OnSpeakerphoneChanged(on bool) {
	n.SpeakerChanges = append(n.SpeakerChanges, on)
}

func (n *RecordingNotifier) OnAudioStateChanged(oldState, newState audio.State) {
	n.Transitions = append(n.Transitions, StateTransition{Old: oldState, New: newState})
}
