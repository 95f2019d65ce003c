// Package audio arbitrates which physical audio route and microphone mute
// state is active during calls, and coordinates that with the platform's
// shared audio focus and mode.
//
// The engine reduces overlapping stimuli — call lifecycle transitions,
// ringing, tone playback, wired headset plug events and bluetooth connection
// changes — to one consistent, idempotently applied audio configuration.
// Route and mute decisions are only meaningful while audio focus is held;
// every entry point is gated on focus possession.
//
// All methods must be invoked from a single owning goroutine. The engine
// holds one mutable unit of state (the current snapshot, the focus state and
// the speaker-restore flag) with no internal locking; internal/dispatch
// provides a single-consumer queue that makes the contract structural.
package audio

import "log/slog"

// Engine is the audio routing orchestrator. It subscribes to call-lifecycle
// and device-state events, recomputes the desired focus, mode and route on
// every relevant event, and applies the result to the platform audio service
// and the bluetooth link.
type Engine struct {
	calls     CallRegistry
	bluetooth BluetoothLink
	headset   WiredHeadsetSensor
	platform  PlatformAudioService
	notifier  StateNotifier
	logger    *slog.Logger

	store *stateStore
	focus *focusArbiter

	isRinging     bool
	isTonePlaying bool

	// wasSpeakerOn remembers an explicit speaker selection so it can be
	// restored when a wired headset is unplugged. Cleared when bluetooth
	// takes the route over or when the last call ends.
	wasSpeakerOn bool
}

// NewEngine wires the engine to its collaborators and seeds the store with a
// default-route snapshot. No focus is requested and no state-change
// notification is emitted at construction time.
func NewEngine(
	calls CallRegistry,
	bluetooth BluetoothLink,
	headset WiredHeadsetSensor,
	platform PlatformAudioService,
	notifier StateNotifier,
	logger *slog.Logger,
) *Engine {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	if logger == nil {
		logger = slog.Default()
	}

	e := &Engine{
		calls:     calls,
		bluetooth: bluetooth,
		headset:   headset,
		platform:  platform,
		notifier:  notifier,
		logger:    logger,
	}
	e.focus = newFocusArbiter(platform, logger)
	e.store = newStateStore(notifier, e.focus.held, logger)
	e.store.save(e.initialState(nil))
	return e
}

// CurrentState returns the current audio snapshot.
func (e *Engine) CurrentState() State {
	return e.store.Current()
}

// IsBluetoothAudioOn reports whether bluetooth audio is connected.
func (e *Engine) IsBluetoothAudioOn() bool {
	return e.bluetooth.IsConnected()
}

// IsBluetoothAvailable reports whether a bluetooth audio device is available.
func (e *Engine) IsBluetoothAvailable() bool {
	return e.bluetooth.IsAvailable()
}

// CallEvents bundles the engine's call-lifecycle handlers for registration
// with a call registry implementation.
type CallEvents struct {
	OnCallAdded            func(call Call)
	OnCallRemoved          func(call Call)
	OnCallStateChanged     func(call Call, oldState, newState CallState)
	OnForegroundChanged    func(oldCall, newCall Call)
	OnVoipModeChanged      func(call Call)
	OnIncomingCallAnswered func(call Call)
}

// CallEvents returns the engine's call-lifecycle handler set.
func (e *Engine) CallEvents() CallEvents {
	return CallEvents{
		OnCallAdded:            e.HandleCallAdded,
		OnCallRemoved:          e.HandleCallRemoved,
		OnCallStateChanged:     e.HandleCallStateChanged,
		OnForegroundChanged:    e.HandleForegroundCallChanged,
		OnVoipModeChanged:      e.HandleVoipModeChanged,
		OnIncomingCallAnswered: e.HandleIncomingCallAnswered,
	}
}

// HandleCallAdded recomputes focus and mode for a newly added call. A new
// outgoing foreground call is proactively unmuted: origination is an implicit
// "ready to talk" signal. The route is left alone.
func (e *Engine) HandleCallAdded(call Call) {
	e.onCallUpdated(call)

	if e.focus.held() && e.calls.ForegroundCall() == call && !call.IsIncoming() {
		cur := e.store.Current()
		e.setSystemAudioState(false, false, cur.Route, cur.SupportedRoutes)
	}
}

// HandleCallRemoved resets the audio state to a freshly derived default when
// the last call goes away, then recomputes focus and mode (which covers the
// case where calls remain).
func (e *Engine) HandleCallRemoved(call Call) {
	// If we didn't already have focus, there's nothing to do.
	if !e.focus.held() {
		return
	}

	if len(e.calls.Calls()) == 0 {
		e.logger.Debug("all calls removed, resetting system audio to default state")
		e.applyInitialState(nil, false)
		e.wasSpeakerOn = false
	}
	e.updateFocus()
}

// HandleCallStateChanged recomputes focus and mode for a call lifecycle
// transition.
func (e *Engine) HandleCallStateChanged(call Call, oldState, newState CallState) {
	e.onCallUpdated(call)
}

// HandleForegroundCallChanged recomputes focus and mode for the new
// foreground call and pushes the current snapshot to it unconditionally; the
// new call has never seen it.
func (e *Engine) HandleForegroundCallChanged(oldCall, newCall Call) {
	e.onCallUpdated(newCall)
	e.pushStateTo(e.calls.ForegroundCall())
}

// HandleVoipModeChanged recomputes focus and mode when a call switches
// between the telephony and software audio paths. The route is unaffected.
func (e *Engine) HandleVoipModeChanged(call Call) {
	e.updateFocus()
}

// HandleIncomingCallAnswered unmutes for the answered call. If it is the only
// call and a bluetooth device is available, bluetooth is proactively
// connected and takes the route.
func (e *Engine) HandleIncomingCallAnswered(call Call) {
	route := e.store.Current().Route

	isOnlyCall := len(e.calls.Calls()) == 1
	if isOnlyCall && e.bluetooth.IsAvailable() {
		e.bluetooth.Connect()
		route = RouteBluetooth
	}

	e.setSystemAudioState(false, false, route, e.store.Current().SupportedRoutes)
}

// HandleWiredHeadsetChanged updates the route when the headset plug state
// changes. Plugging in forces the wired headset route; unplugging restores
// the speaker if it was explicitly selected before and a live foreground call
// exists, and otherwise falls back to the earpiece.
func (e *Engine) HandleWiredHeadsetChanged(oldPluggedIn, newPluggedIn bool) {
	// This can happen even when there are no calls and we don't have focus.
	if !e.focus.held() {
		return
	}

	newRoute := RouteEarpiece
	if newPluggedIn {
		newRoute = RouteWiredHeadset
	} else if e.wasSpeakerOn {
		if call := e.foregroundCall(); call != nil && call.IsAlive() {
			// Restore the speaker state.
			newRoute = RouteSpeaker
		}
	}

	e.setSystemAudioState(false, e.store.Current().Muted, newRoute, e.supportedRoutes())
}

// HandleBluetoothStateChanged updates the route when the bluetooth connection
// state changes. A connected-or-connecting device takes the route; losing
// bluetooth while routed to it falls back to wired headset or earpiece, never
// the speaker.
func (e *Engine) HandleBluetoothStateChanged() {
	// This can happen even when there are no calls and we don't have focus.
	if !e.focus.held() {
		return
	}

	supported := e.supportedRoutes()
	newRoute := e.store.Current().Route
	if e.bluetooth.IsConnectedOrPending() {
		newRoute = RouteBluetooth
	} else if newRoute == RouteBluetooth {
		newRoute = e.resolveWiredOrEarpiece(RouteWiredOrEarpiece, supported)
		// Do not switch to speaker when bluetooth disconnects.
		e.wasSpeakerOn = false
	}

	e.setSystemAudioState(false, e.store.Current().Muted, newRoute, supported)
}

// ToggleMute flips the microphone mute state.
func (e *Engine) ToggleMute() {
	e.SetMuted(!e.store.Current().Muted)
}

// SetMuted sets the microphone mute state. The request is forced to unmuted
// while any emergency call is present, and is ignored without focus.
func (e *Engine) SetMuted(muted bool) {
	if !e.focus.held() {
		return
	}

	e.logger.Debug("mute requested", slog.Bool("muted", muted))

	// Never mute while there is an emergency call.
	if e.calls.HasEmergencyCall() {
		e.logger.Debug("ignoring mute for emergency call")
		muted = false
	}

	cur := e.store.Current()
	if cur.Muted != muted {
		e.setSystemAudioState(false, muted, cur.Route, cur.SupportedRoutes)
	}
}

// SetRoute switches the audio route, for example from earpiece to speaker.
// RouteWiredOrEarpiece is resolved against the supported mask. Requests for
// unsupported routes are rejected. An explicit speaker selection is
// remembered so it can be restored after a headset unplug.
func (e *Engine) SetRoute(route Route) {
	// This can happen even when there are no calls and we don't have focus.
	if !e.focus.held() {
		return
	}

	e.logger.Debug("route requested", slog.String("route", route.String()))

	cur := e.store.Current()
	newRoute := e.resolveWiredOrEarpiece(route, cur.SupportedRoutes)

	if !cur.SupportedRoutes.Has(newRoute) {
		e.logger.Error("requested audio route is unsupported",
			slog.String("route", newRoute.String()),
			slog.String("supported", cur.SupportedRoutes.String()))
		return
	}

	if cur.Route != newRoute {
		// Remember the speaker selection so it can be restored when the
		// user plugs and unplugs a headset.
		e.wasSpeakerOn = newRoute == RouteSpeaker
		e.setSystemAudioState(false, cur.Muted, newRoute, cur.SupportedRoutes)
	}
}

// SetRinging sets the ringing flag. Only an actual flip triggers a focus and
// mode recomputation.
func (e *Engine) SetRinging(ringing bool) {
	if e.isRinging != ringing {
		e.logger.Debug("ringing changed", slog.Bool("ringing", ringing))
		e.isRinging = ringing
		e.updateFocus()
	}
}

// SetTonePlaying sets the tone-playing flag. Some tones play on when no call
// remains; the flag keeps focus alive for them. Only an actual flip triggers
// a focus and mode recomputation.
func (e *Engine) SetTonePlaying(playing bool) {
	if e.isTonePlaying != playing {
		e.logger.Debug("tone playing changed", slog.Bool("playing", playing))
		e.isTonePlaying = playing
		e.updateFocus()
	}
}

// onCallUpdated recomputes focus and mode, and forces a fresh initial
// snapshot when the update transitioned us into holding voice-call focus: a
// brand-new call context has no prior user-chosen route.
func (e *Engine) onCallUpdated(call Call) {
	wasVoiceCall := e.focus.stream == StreamVoiceCall
	e.updateFocus()
	if !wasVoiceCall && e.focus.stream == StreamVoiceCall {
		e.applyInitialState(call, true)
	}
}

func (e *Engine) updateFocus() {
	e.focus.update(e.isRinging, e.isTonePlaying, e.foregroundCall(), e.hasRingingForegroundCall())
}

// setSystemAudioState is the single funnel every route/mute decision goes
// through: commit the proposed snapshot, then apply mute, route hardware and
// notifications when something actually changed.
func (e *Engine) setSystemAudioState(force, muted bool, route, supportedRoutes Route) {
	if !e.focus.held() {
		return
	}

	old, changed := e.store.commit(force, State{
		Muted:           muted,
		Route:           route,
		SupportedRoutes: supportedRoutes,
	})
	if !changed {
		return
	}
	cur := e.store.Current()
	e.logger.Info("changing audio state",
		slog.String("from", old.String()),
		slog.String("to", cur.String()))

	// Mute.
	if cur.Muted != e.platform.IsMicrophoneMuted() {
		e.logger.Info("changing microphone mute", slog.Bool("muted", cur.Muted))
		e.platform.SetMicrophoneMuted(cur.Muted)
	}

	// Route. Earpiece and wired headset both use the default output path.
	switch cur.Route {
	case RouteBluetooth:
		e.turnOnSpeaker(false)
		e.turnOnBluetooth(true)
	case RouteSpeaker:
		e.turnOnBluetooth(false)
		e.turnOnSpeaker(true)
	case RouteEarpiece, RouteWiredHeadset:
		e.turnOnBluetooth(false)
		e.turnOnSpeaker(false)
	}

	if old != cur {
		e.notifier.OnAudioStateChanged(old, cur)
		e.pushStateTo(e.foregroundCall())
	}
}

func (e *Engine) turnOnSpeaker(on bool) {
	if e.platform.IsSpeakerphoneOn() != on {
		e.logger.Info("turning speakerphone", slog.Bool("on", on))
		e.platform.SetSpeakerphoneOn(on)
	}
}

func (e *Engine) turnOnBluetooth(on bool) {
	if !e.bluetooth.IsAvailable() {
		return
	}
	if on != e.bluetooth.IsConnectedOrPending() {
		e.logger.Info("switching bluetooth audio", slog.Bool("on", on))
		if on {
			e.bluetooth.Connect()
		} else {
			e.bluetooth.Disconnect()
		}
	}
}

// initialState derives the snapshot for a brand-new call context: always
// unmuted, routed to wired headset or earpiece by default. Bluetooth takes
// the route when a device is available and the given call is in a state
// where audio is, or is about to be, flowing — including ringing, where the
// call will likely be answered on the bluetooth headset.
func (e *Engine) initialState(call Call) State {
	supported := e.supportedRoutes()
	route := e.resolveWiredOrEarpiece(RouteWiredOrEarpiece, supported)

	if call != nil && e.bluetooth.IsAvailable() {
		switch call.State() {
		case CallStateActive, CallStateOnHold, CallStateDialing, CallStateConnecting, CallStateRinging:
			route = RouteBluetooth
		}
	}

	return State{Muted: false, Route: route, SupportedRoutes: supported}
}

func (e *Engine) applyInitialState(call Call, force bool) {
	state := e.initialState(call)
	e.logger.Debug("applying initial audio state", slog.String("state", state.String()))
	e.setSystemAudioState(force, state.Muted, state.Route, state.SupportedRoutes)
}

func (e *Engine) supportedRoutes() Route {
	return SupportedRoutes(e.headset.IsPluggedIn(), e.bluetooth.IsAvailable())
}

// resolveWiredOrEarpiece wraps the pure resolver with the invariant warning:
// one of wired headset or earpiece must always be supported.
func (e *Engine) resolveWiredOrEarpiece(requested, supported Route) Route {
	route, ok := ResolveWiredOrEarpiece(requested, supported)
	if !ok {
		e.logger.Error("one of wired headset or earpiece should always be supported",
			slog.String("supported", supported.String()))
	}
	return route
}

func (e *Engine) pushStateTo(call Call) {
	if call == nil {
		return
	}
	if t := call.Transport(); t != nil {
		t.OnAudioStateChanged(e.store.Current())
	}
}

// foregroundCall returns the foreground call for mode and restore decisions.
// A ringing foreground call is ignored; ringing is handled exclusively
// through the ringing flag.
func (e *Engine) foregroundCall() Call {
	call := e.calls.ForegroundCall()
	if call != nil && call.State() == CallStateRinging {
		return nil
	}
	return call
}

func (e *Engine) hasRingingForegroundCall() bool {
	call := e.calls.ForegroundCall()
	return call != nil && call.State() == CallStateRinging
}
