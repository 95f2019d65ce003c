package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/chriscow/callaudio-go/internal/bridge"
	"github.com/chriscow/callaudio-go/internal/dispatch"
	"github.com/chriscow/callaudio-go/pkg/audio"
	"github.com/chriscow/callaudio-go/pkg/audio/fake"
	"github.com/chriscow/callaudio-go/pkg/version"
)

var rootCmd = &cobra.Command{
	Use:          "callaudio-sim",
	Short:        "callaudio-sim drives the call audio routing engine through scripted scenarios",
	SilenceUsage: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(version.GetVersionInfo())
	},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a scripted call scenario against fake devices",
	RunE: func(cmd *cobra.Command, args []string) error {
		monitorURL, _ := cmd.Flags().GetString("monitor-url")
		logLevel, _ := cmd.Flags().GetString("log-level")
		stepDelay, _ := cmd.Flags().GetDuration("step-delay")

		return runScenario(cmd.Context(), monitorURL, logLevel, stepDelay)
	},
}

func init() {
	runCmd.Flags().String("monitor-url", "", "WebSocket endpoint to publish state transitions to")
	runCmd.Flags().String("log-level", "info", "Log level (debug, info, warn, error)")
	runCmd.Flags().Duration("step-delay", 200*time.Millisecond, "Pause between scenario steps")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(runCmd)
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

// logNotifier mirrors state notifications into the log, standing in for a
// status bar.
type logNotifier struct {
	logger *slog.Logger
}

func (n logNotifier) OnMuteChanged(muted bool) {
	n.logger.Info("mute indicator", slog.Bool("muted", muted))
}

func (n logNotifier) OnSpeakerphoneChanged(on bool) {
	n.logger.Info("speakerphone indicator", slog.Bool("on", on))
}

func (n logNotifier) OnAudioStateChanged(oldState, newState audio.State) {
	n.logger.Info("audio state changed",
		slog.String("from", oldState.String()),
		slog.String("to", newState.String()))
}

func runScenario(ctx context.Context, monitorURL, logLevel string, stepDelay time.Duration) error {
	logger := newLogger(logLevel)

	notifier := audio.StateNotifier(logNotifier{logger: logger})
	if monitorURL != "" {
		wsNotifier, err := bridge.Dial(ctx, bridge.Config{URL: monitorURL}, logger)
		if err != nil {
			return fmt.Errorf("monitoring bridge: %w", err)
		}
		defer wsNotifier.Close()
		notifier = audio.CombineNotifiers(notifier, wsNotifier)
	}

	registry := fake.NewFakeRegistry()
	bluetooth := &fake.FakeBluetooth{Available: true}
	headset := &fake.FakeHeadset{}
	platform := fake.NewFakePlatform()

	engine := audio.NewEngine(registry, bluetooth, headset, platform, notifier, logger)

	queue := dispatch.New(dispatch.Config{}, logger)
	defer queue.Close()

	step := func(name string, fn func()) {
		logger.Info("step", slog.String("name", name))
		queue.Call(fn)
		time.Sleep(stepDelay)
	}

	// Incoming call, answered on bluetooth.
	incoming := fake.NewFakeCall(audio.CallStateRinging, true)
	step("incoming call rings", func() {
		registry.Add(incoming)
		engine.HandleCallAdded(incoming)
		engine.SetRinging(true)
	})
	step("call answered", func() {
		incoming.CallState = audio.CallStateActive
		engine.SetRinging(false)
		engine.HandleIncomingCallAnswered(incoming)
		engine.HandleCallStateChanged(incoming, audio.CallStateRinging, audio.CallStateActive)
	})

	// User moves to the speaker, then plugs and unplugs a wired headset.
	step("user selects speaker", func() {
		engine.SetRoute(audio.RouteSpeaker)
	})
	step("headset plugged in", func() {
		headset.PluggedIn = true
		engine.HandleWiredHeadsetChanged(false, true)
	})
	step("headset unplugged", func() {
		headset.PluggedIn = false
		engine.HandleWiredHeadsetChanged(true, false)
	})

	// Mute, then hang up with a call-ended tone.
	step("user mutes", func() {
		engine.ToggleMute()
	})
	step("call ends", func() {
		incoming.CallState = audio.CallStateDisconnected
		engine.SetTonePlaying(true)
		registry.Remove(incoming)
		engine.HandleCallRemoved(incoming)
	})
	step("tone finishes", func() {
		engine.SetTonePlaying(false)
	})

	queue.Call(func() {
		logger.Info("final state", slog.String("state", engine.CurrentState().String()))
	})
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
