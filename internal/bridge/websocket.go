// Package bridge publishes audio state transitions to a monitoring endpoint
// over WebSocket. It implements audio.StateNotifier so it can stand in for a
// status bar or telemetry sink. Frames are fire-and-forget: a write failure
// is logged and the frame dropped, because telemetry must never stall the
// engine.
package bridge

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/chriscow/callaudio-go/pkg/audio"
)

// Frame type constants
const (
	FrameTypeMute         = "mute"
	FrameTypeSpeakerphone = "speakerphone"
	FrameTypeAudioState   = "audio_state"
)

// Frame is one JSON message sent to the monitoring endpoint.
type Frame struct {
	Type string         `json:"type"`
	Data map[string]any `json:"data,omitempty"`
}

// Config configures a Notifier.
type Config struct {
	// URL of the monitoring endpoint, ws:// or wss://.
	URL string

	// HandshakeTimeout bounds the dial; defaults to 10s.
	HandshakeTimeout time.Duration
}

// Notifier is a WebSocket-backed audio.StateNotifier.
type Notifier struct {
	url    string
	logger *slog.Logger

	mu   sync.Mutex
	conn *websocket.Conn
}

// Dial connects to the monitoring endpoint.
func Dial(ctx context.Context, config Config, logger *slog.Logger) (*Notifier, error) {
	u, err := url.Parse(config.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}

	dialer := *websocket.DefaultDialer
	dialer.HandshakeTimeout = config.HandshakeTimeout
	if dialer.HandshakeTimeout == 0 {
		dialer.HandshakeTimeout = 10 * time.Second
	}

	conn, _, err := dialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to connect: %w", err)
	}
	logger.Info("monitoring bridge connected", slog.String("url", config.URL))

	return &Notifier{
		url:    config.URL,
		logger: logger,
		conn:   conn,
	}, nil
}

// Close closes the underlying connection.
func (n *Notifier) Close() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.conn == nil {
		return nil
	}
	err := n.conn.Close()
	n.conn = nil
	return err
}

func (n *Notifier) OnMuteChanged(muted bool) {
	n.send(Frame{
		Type: FrameTypeMute,
		Data: map[string]any{"muted": muted},
	})
}

func (n *Notifier) OnSpeakerphoneChanged(on bool) {
	n.send(Frame{
		Type: FrameTypeSpeakerphone,
		Data: map[string]any{"on": on},
	})
}

func (n *Notifier) OnAudioStateChanged(oldState, newState audio.State) {
	n.send(Frame{
		Type: FrameTypeAudioState,
		Data: map[string]any{
			"old": stateData(oldState),
			"new": stateData(newState),
		},
	})
}

func stateData(state audio.State) map[string]any {
	return map[string]any{
		"muted":            state.Muted,
		"route":            state.Route.String(),
		"supported_routes": state.SupportedRoutes.String(),
	}
}

func (n *Notifier) send(frame Frame) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.conn == nil {
		return
	}
	if err := n.conn.WriteJSON(frame); err != nil {
		n.logger.Warn("dropping monitoring frame",
			slog.String("type", frame.Type),
			slog.String("error", err.Error()))
	}
}
