package audio

import "strings"

// Route identifies a physical audio path. Values are single bit flags so a
// Route also serves as a set of routes when used as a supported-route mask.
type Route int

const (
	RouteEarpiece Route = 1 << iota
	RouteBluetooth
	RouteWiredHeadset
	RouteSpeaker
)

// RouteWiredOrEarpiece is caller-facing shorthand for "whichever of wired
// headset or earpiece is currently supported". The two are mutually exclusive
// and exactly one is always available, so callers can request this pseudo-route
// without first checking the supported mask. It is never stored in a snapshot.
const RouteWiredOrEarpiece = RouteWiredHeadset | RouteEarpiece

// Has reports whether the mask r contains all bits of other.
func (r Route) Has(other Route) bool {
	return r&other == other && other != 0
}

func (r Route) String() string {
	switch r {
	case RouteEarpiece:
		return "EARPIECE"
	case RouteBluetooth:
		return "BLUETOOTH"
	case RouteWiredHeadset:
		return "WIRED_HEADSET"
	case RouteSpeaker:
		return "SPEAKER"
	case RouteWiredOrEarpiece:
		return "WIRED_OR_EARPIECE"
	case 0:
		return "NONE"
	}

	// Composite mask: list the contained routes.
	var parts []string
	for _, single := range []Route{RouteEarpiece, RouteBluetooth, RouteWiredHeadset, RouteSpeaker} {
		if r&single != 0 {
			parts = append(parts, single.String())
		}
	}
	return strings.Join(parts, "|")
}

// SupportedRoutes computes the set of physically available routes. Speaker is
// always available; a plugged-in wired headset replaces the earpiece;
// bluetooth is included while a bluetooth audio device is available.
func SupportedRoutes(headsetPluggedIn, bluetoothAvailable bool) Route {
	mask := RouteSpeaker
	if headsetPluggedIn {
		mask |= RouteWiredHeadset
	} else {
		mask |= RouteEarpiece
	}
	if bluetoothAvailable {
		mask |= RouteBluetooth
	}
	return mask
}

// ResolveWiredOrEarpiece collapses the RouteWiredOrEarpiece pseudo-route into
// a concrete route against the supported mask. Concrete routes pass through
// unchanged even when unsupported; validating against the mask is the
// caller's job. ok is false when neither wired headset nor earpiece is in
// supported, which violates the supported-route invariant; the earpiece is
// assumed in that case.
func ResolveWiredOrEarpiece(requested, supported Route) (route Route, ok bool) {
	if requested != RouteWiredOrEarpiece {
		return requested, true
	}
	route = RouteWiredOrEarpiece & supported
	if route == 0 {
		return RouteEarpiece, false
	}
	return route, true
}
