package fake

import "github.com/chriscow/callaudio-go/pkg/audio"

// FakeRegistry is an in-memory call registry tests drive directly.
type FakeRegistry struct {
	CallList   []*FakeCall
	Foreground *FakeCall
	Emergency  bool
}

// NewFakeRegistry creates an empty registry.
func NewFakeRegistry() *FakeRegistry {
	return &FakeRegistry{}
}

// Add appends call and makes it the foreground call.
func (r *FakeRegistry) Add(call *FakeCall) {
	r.CallList = append(r.CallList, call)
	r.Foreground = call
}

// Remove deletes call, clearing the foreground pointer if it was foreground.
func (r *FakeRegistry) Remove(call *FakeCall) {
	for i, c := range r.CallList {
		if c == call {
			r.CallList = append(r.CallList[:i], r.CallList[i+1:]...)
			break
		}
	}
	if r.Foreground == call {
		r.Foreground = nil
		if len(r.CallList) > 0 {
			r.Foreground = r.CallList[len(r.CallList)-1]
		}
	}
}

func (r *FakeRegistry) Calls() []audio.Call {
	calls := make([]audio.Call, 0, len(r.CallList))
	for _, c := range r.CallList {
		calls = append(calls, c)
	}
	return calls
}

func (r *FakeRegistry) ForegroundCall() audio.Call {
	if r.Foreground == nil {
		return nil
	}
	return r.Foreground
}

func (r *FakeRegistry) HasEmergencyCall() bool {
	return r.Emergency
}
