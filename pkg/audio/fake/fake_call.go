// Package fake provides fake implementations of the audio engine's
// collaborators for testing and simulation. The fakes record the commands
// issued to them so tests can assert on exactly what the engine did.
package fake

import (
	"github.com/google/uuid"

	"github.com/chriscow/callaudio-go/pkg/audio"
)

// FakeCall is a fake call whose attributes tests mutate directly.
type FakeCall struct {
	CallID    string
	CallState audio.CallState
	Incoming  bool
	Voip      bool
	Sink      *FakeTransport
}

// NewFakeCall creates a fake call with a generated identity and an attached
// recording transport.
func NewFakeCall(state audio.CallState, incoming bool) *FakeCall {
	return &FakeCall{
		CallID:    uuid.NewString(),
		CallState: state,
		Incoming:  incoming,
		Sink:      &FakeTransport{},
	}
}

func (c *FakeCall) ID() string             { return c.CallID }
func (c *FakeCall) State() audio.CallState { return c.CallState }
func (c *FakeCall) IsAlive() bool          { return c.CallState != audio.CallStateDisconnected }
func (c *FakeCall) IsIncoming() bool       { return c.Incoming }
func (c *FakeCall) UsesVoipAudio() bool    { return c.Voip }

func (c *FakeCall) Transport() audio.CallTransport {
	if c.Sink == nil {
		return nil
	}
	return c.Sink
}

// FakeTransport records every audio state pushed to the call.
type FakeTransport struct {
	States []audio.State
}

func (t *FakeTransport) OnAudioStateChanged(state audio.State) {
	t.States = append(t.States, state)
}

// Last returns the most recently pushed state, or the zero State when none
// was pushed.
func (t *FakeTransport) Last() audio.State {
	if len(t.States) == 0 {
		return audio.State{}
	}
	return t.States[len(t.States)-1]
}
