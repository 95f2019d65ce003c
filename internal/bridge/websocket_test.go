package bridge

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/matryer/is"

	"github.com/chriscow/callaudio-go/pkg/audio"
)

// newTestServer upgrades incoming connections and forwards received frames.
func newTestServer(t *testing.T) (*httptest.Server, chan Frame) {
	t.Helper()

	frames := make(chan Frame, 16)
	upgrader := websocket.Upgrader{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade failed: %v", err)
			return
		}
		defer conn.Close()
		for {
			var frame Frame
			if err := conn.ReadJSON(&frame); err != nil {
				return
			}
			frames <- frame
		}
	}))
	t.Cleanup(server.Close)
	return server, frames
}

func wsURL(server *httptest.Server) string {
	return "ws" + strings.TrimPrefix(server.URL, "http")
}

func receive(t *testing.T, frames chan Frame) Frame {
	t.Helper()
	select {
	case frame := <-frames:
		return frame
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for frame")
		return Frame{}
	}
}

func TestNotifier_PublishesFrames(t *testing.T) {
	is := is.New(t)

	server, frames := newTestServer(t)

	notifier, err := Dial(context.Background(), Config{URL: wsURL(server)}, nil)
	is.NoErr(err)
	defer notifier.Close()

	notifier.OnMuteChanged(true)
	frame := receive(t, frames)
	is.Equal(frame.Type, FrameTypeMute)
	is.Equal(frame.Data["muted"], true)

	notifier.OnSpeakerphoneChanged(false)
	frame = receive(t, frames)
	is.Equal(frame.Type, FrameTypeSpeakerphone)
	is.Equal(frame.Data["on"], false)

	old := audio.State{Route: audio.RouteEarpiece, SupportedRoutes: audio.RouteEarpiece | audio.RouteSpeaker}
	notifier.OnAudioStateChanged(old, audio.State{
		Route:           audio.RouteSpeaker,
		SupportedRoutes: audio.RouteEarpiece | audio.RouteSpeaker,
	})
	frame = receive(t, frames)
	is.Equal(frame.Type, FrameTypeAudioState)

	newData, ok := frame.Data["new"].(map[string]any)
	is.True(ok) // new state is a nested object
	is.Equal(newData["route"], "SPEAKER")
	is.Equal(newData["supported_routes"], "EARPIECE|SPEAKER")
}

func TestNotifier_SendAfterCloseIsDropped(t *testing.T) {
	is := is.New(t)

	server, _ := newTestServer(t)

	notifier, err := Dial(context.Background(), Config{URL: wsURL(server)}, nil)
	is.NoErr(err)
	is.NoErr(notifier.Close())

	// Must not panic or block.
	notifier.OnMuteChanged(true)
}

func TestDial_InvalidURL(t *testing.T) {
	is := is.New(t)

	_, err := Dial(context.Background(), Config{URL: "://nope"}, nil)
	is.True(err != nil) // invalid URL fails the dial
}
