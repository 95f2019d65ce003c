package audio

import (
	"fmt"
	"log/slog"
)

// Stream is the logical purpose audio focus is requested for.
type Stream int

const (
	StreamNone Stream = iota
	StreamRing
	StreamVoiceCall
)

func (s Stream) String() string {
	switch s {
	case StreamNone:
		return "NONE"
	case StreamRing:
		return "RING"
	case StreamVoiceCall:
		return "VOICE_CALL"
	default:
		return fmt.Sprintf("Unknown(%d)", int(s))
	}
}

// Mode is the platform-wide audio signal-processing profile.
type Mode int

const (
	ModeNormal Mode = iota
	ModeRingtone
	ModeInCall
	ModeInCommunication
)

func (m Mode) String() string {
	switch m {
	case ModeNormal:
		return "NORMAL"
	case ModeRingtone:
		return "RINGTONE"
	case ModeInCall:
		return "IN_CALL"
	case ModeInCommunication:
		return "IN_COMMUNICATION"
	default:
		return fmt.Sprintf("Unknown(%d)", int(m))
	}
}

// FocusHint tells the platform how long focus is expected to be needed.
type FocusHint int

// FocusGainTransient is the only hint the engine uses: focus for the expected
// short duration of a call or ring.
const FocusGainTransient FocusHint = iota

// focusArbiter owns whether audio focus is currently held and for which
// stream, and tracks the most recently set platform mode so it can be reused
// for post-call tones that have no call to derive a mode from.
type focusArbiter struct {
	platform PlatformAudioService
	logger   *slog.Logger

	stream   Stream // StreamNone while focus is not held
	lastMode Mode
}

func newFocusArbiter(platform PlatformAudioService, logger *slog.Logger) *focusArbiter {
	return &focusArbiter{
		platform: platform,
		logger:   logger,
		stream:   StreamNone,
		lastMode: ModeInCall,
	}
}

func (f *focusArbiter) held() bool {
	return f.stream != StreamNone
}

// update re-evaluates the focus decision from scratch against the latest
// ringing/tone/foreground-call signals. foreground must already exclude
// ringing calls; ringingForeground reports whether the registry's foreground
// call is in the ringing state.
func (f *focusArbiter) update(ringing, tonePlaying bool, foreground Call, ringingForeground bool) {
	f.logger.Debug("updating audio stream and mode",
		slog.Bool("ringing", ringing),
		slog.Bool("tone_playing", tonePlaying))

	switch {
	case ringing:
		f.request(StreamRing, ModeRingtone)
	case foreground != nil:
		mode := ModeInCall
		if foreground.UsesVoipAudio() {
			mode = ModeInCommunication
		}
		f.request(StreamVoiceCall, mode)
	case tonePlaying:
		// No call, but a tone is still playing, so keep focus. There is no
		// call to derive a mode from; reuse the most recently used one.
		f.request(StreamVoiceCall, f.lastMode)
	case !ringingForeground:
		f.abandon()
	default:
		// The ringing flag is down but a ringing foreground call is still
		// present. Keep focus untouched so it is not lost during the
		// RINGING -> ACTIVE/DISCONNECTED handoff; the next state change
		// lands in one of the clauses above.
	}
}

// request acquires focus for stream and applies mode. Requesting the stream
// already held is a pure mode update; a different stream re-requests focus to
// give the platform a hint about its new purpose.
func (f *focusArbiter) request(stream Stream, mode Mode) {
	if stream == StreamNone {
		f.logger.Error("focus requested for stream NONE")
		return
	}

	if f.stream != stream {
		f.logger.Debug("requesting audio focus",
			slog.String("from", f.stream.String()),
			slog.String("to", stream.String()))
		f.platform.RequestFocus(stream, FocusGainTransient)
	}
	f.stream = stream

	f.setMode(mode)
}

// abandon releases focus, resetting the platform mode to normal first.
// lastMode is preserved for later tone playback. No-op when focus is not
// held.
func (f *focusArbiter) abandon() {
	if !f.held() {
		return
	}
	f.setMode(ModeNormal)
	f.logger.Debug("abandoning audio focus")
	f.platform.AbandonFocus()
	f.stream = StreamNone
}

// setMode switches the platform mode, skipping the hardware call when the
// live mode already matches. lastMode only tracks real writes.
func (f *focusArbiter) setMode(mode Mode) {
	if !f.held() {
		f.logger.Warn("mode change requested without audio focus",
			slog.String("mode", mode.String()))
	}
	old := f.platform.Mode()
	if old != mode {
		f.logger.Debug("changing audio mode",
			slog.String("from", old.String()),
			slog.String("to", mode.String()))
		f.platform.SetMode(mode)
		f.lastMode = mode
	}
}
