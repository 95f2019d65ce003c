package audio

import "fmt"

// CallState is the lifecycle state of a call as seen by the audio engine.
type CallState int

const (
	CallStateConnecting CallState = iota
	CallStateDialing
	CallStateRinging
	CallStateActive
	CallStateOnHold
	CallStateDisconnected
)

func (s CallState) String() string {
	switch s {
	case CallStateConnecting:
		return "CONNECTING"
	case CallStateDialing:
		return "DIALING"
	case CallStateRinging:
		return "RINGING"
	case CallStateActive:
		return "ACTIVE"
	case CallStateOnHold:
		return "ON_HOLD"
	case CallStateDisconnected:
		return "DISCONNECTED"
	default:
		return fmt.Sprintf("Unknown(%d)", int(s))
	}
}

// CallTransport receives audio state updates destined for a call's in-call UI
// or remote peer.
type CallTransport interface {
	OnAudioStateChanged(state State)
}

// Call is the read-only view of a call the engine needs to make routing and
// mode decisions.
type Call interface {
	// ID uniquely identifies the call for logging and comparison.
	ID() string

	// State returns the call's current lifecycle state.
	State() CallState

	// IsAlive reports whether the call has not yet been torn down.
	IsAlive() bool

	// IsIncoming reports whether the call originated from the remote side.
	IsIncoming() bool

	// UsesVoipAudio reports whether the call carries audio over a software
	// path, which selects the in-communication mode instead of in-call.
	UsesVoipAudio() bool

	// Transport returns the sink for audio state updates. May be nil while
	// the call is still being set up.
	Transport() CallTransport
}

// CallRegistry enumerates the calls the engine arbitrates audio for.
type CallRegistry interface {
	// Calls returns all current calls.
	Calls() []Call

	// ForegroundCall returns the call currently eligible to own audio
	// attention, or nil when there is none.
	ForegroundCall() Call

	// HasEmergencyCall reports whether any current call is an emergency
	// call. Emergency calls can never be muted.
	HasEmergencyCall() bool
}

// BluetoothLink manages the connection to a bluetooth audio device.
// Connect and Disconnect are fire-and-forget; completion surfaces later as a
// bluetooth state-change event.
type BluetoothLink interface {
	IsAvailable() bool
	IsConnectedOrPending() bool
	IsConnected() bool
	Connect()
	Disconnect()
}

// WiredHeadsetSensor reports the wired headset plug state.
type WiredHeadsetSensor interface {
	IsPluggedIn() bool
}

// PlatformAudioService is the underlying platform audio surface: microphone
// mute, speakerphone, signal-processing mode and audio focus.
type PlatformAudioService interface {
	IsMicrophoneMuted() bool
	SetMicrophoneMuted(muted bool)

	IsSpeakerphoneOn() bool
	SetSpeakerphoneOn(on bool)

	Mode() Mode
	SetMode(mode Mode)

	RequestFocus(stream Stream, hint FocusHint)
	AbandonFocus()
}

// StateNotifier receives externally visible audio state changes, for example
// to drive a status-bar indicator or telemetry sink.
type StateNotifier interface {
	OnMuteChanged(muted bool)
	OnSpeakerphoneChanged(on bool)
	OnAudioStateChanged(oldState, newState State)
}

// NopNotifier is a StateNotifier that discards all notifications.
type NopNotifier struct{}

func (NopNotifier) OnMuteChanged(bool)             {}
func (NopNotifier) OnSpeakerphoneChanged(bool)     {}
func (NopNotifier) OnAudioStateChanged(_, _ State) {}

// CombineNotifiers fans every notification out to all of the given notifiers
// in order.
func CombineNotifiers(notifiers ...StateNotifier) StateNotifier {
	return multiNotifier(notifiers)
}

type multiNotifier []StateNotifier

func (m multiNotifier) OnMuteChanged(muted bool) {
	for _, n := range m {
		n.OnMuteChanged(muted)
	}
}

func (m multiNotifier) OnSpeakerphoneChanged(on bool) {
	for _, n := range m {
		n.OnSpeakerphoneChanged(on)
	}
}

func (m multiNotifier) OnAudioStateChanged(oldState, newState State) {
	for _, n := range m {
		n.OnAudioStateChanged(oldState, newState)
	}
}
