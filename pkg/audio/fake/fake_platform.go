package fake

import (
	"fmt"

	"github.com/chriscow/callaudio-go/pkg/audio"
)

// FakePlatform is a fake platform audio service. It applies commands to its
// own state immediately and records them in issue order so tests can assert
// that nothing was commanded while focus was not held.
type FakePlatform struct {
	MicMuted    bool
	SpeakerOn   bool
	CurrentMode audio.Mode

	FocusStream   audio.Stream // last requested stream, StreamNone after abandon
	FocusRequests []audio.Stream
	AbandonCount  int

	// Commands is the ordered log of every mutating call.
	Commands []string
}

// NewFakePlatform creates a platform in the normal, unmuted, speaker-off
// state.
func NewFakePlatform() *FakePlatform {
	return &FakePlatform{CurrentMode: audio.ModeNormal}
}

func (p *FakePlatform) record(format string, args ...any) {
	p.Commands = append(p.Commands, fmt.Sprintf(format, args...))
}

func (p *FakePlatform) IsMicrophoneMuted() bool { return p.MicMuted }

func (p *FakePlatform) SetMicrophoneMuted(muted bool) {
	p.MicMuted = muted
	p.record("mute:%t", muted)
}

func (p *FakePlatform) IsSpeakerphoneOn() bool { return p.SpeakerOn }

func (p *FakePlatform) SetSpeakerphoneOn(on bool) {
	p.SpeakerOn = on
	p.record("speaker:%t", on)
}

func (p *FakePlatform) Mode() audio.Mode { return p.CurrentMode }

func (p *FakePlatform) SetMode(mode audio.Mode) {
	p.CurrentMode = mode
	p.record("mode:%s", mode)
}

func (p *FakePlatform) RequestFocus(stream audio.Stream, hint audio.FocusHint) {
	p.FocusStream = stream
	p.FocusRequests = append(p.FocusRequests, stream)
	p.record("focus:%s", stream)
}

func (p *FakePlatform) AbandonFocus() {
	p.FocusStream = audio.StreamNone
	p.AbandonCount++
	p.record("abandon")
}
