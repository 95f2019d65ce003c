package audio

import (
	"fmt"
	"log/slog"
)

// State is an immutable snapshot of the externally visible audio
// configuration. Snapshots are replaced wholesale on every decision cycle,
// never mutated field by field, so old/new comparisons stay correct.
type State struct {
	Muted           bool
	Route           Route
	SupportedRoutes Route
}

func (s State) String() string {
	return fmt.Sprintf("[muted: %t, route: %s, supported: %s]", s.Muted, s.Route, s.SupportedRoutes)
}

// stateStore holds the single current snapshot and performs the
// compare-and-commit step. Every save, changed or not, pushes the mute and
// speakerphone indicators so they always reflect the authoritative value.
type stateStore struct {
	notifier StateNotifier
	held     func() bool
	logger   *slog.Logger
	current  State
}

func newStateStore(notifier StateNotifier, held func() bool, logger *slog.Logger) *stateStore {
	return &stateStore{
		notifier: notifier,
		held:     held,
		logger:   logger,
	}
}

// Current returns the stored snapshot.
func (s *stateStore) Current() State {
	return s.current
}

// save overwrites the stored snapshot and refreshes the indicators. It does
// not require focus; the constructor seeds the store through it before any
// focus exists.
func (s *stateStore) save(state State) {
	s.current = state
	s.notifier.OnMuteChanged(state.Muted)
	s.notifier.OnSpeakerphoneChanged(state.Route == RouteSpeaker)
}

// commit replaces the stored snapshot with proposed and reports whether the
// externally visible state changed. changed is true when force is set or the
// proposed snapshot differs from the previous one. Audio focus must be held;
// a commit without focus is ignored and reported as unchanged.
func (s *stateStore) commit(force bool, proposed State) (old State, changed bool) {
	if !s.held() {
		s.logger.Warn("audio state commit without focus ignored",
			slog.String("proposed", proposed.String()))
		return s.current, false
	}

	old = s.current
	s.save(proposed)
	return old, force || old != proposed
}
