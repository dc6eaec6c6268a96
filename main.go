// ABOUTME: Entry point for subwoofer
// ABOUTME: Wires the audio tap, relay, control loop, and actuator client
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"math"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Goonfreq/subwoofer/internal/capture"
	"github.com/Goonfreq/subwoofer/internal/dsp"
	"github.com/Goonfreq/subwoofer/internal/logging"
	"github.com/Goonfreq/subwoofer/internal/pipeline"
	"github.com/Goonfreq/subwoofer/internal/relay"
	"github.com/Goonfreq/subwoofer/internal/ui"
	"github.com/Goonfreq/subwoofer/internal/version"
	"github.com/Goonfreq/subwoofer/pkg/buttplug"
)

const startupTimeout = 15 * time.Second

var (
	serverURL  = flag.String("server", "ws://localhost:12345/buttplug", "Buttplug server WebSocket URL")
	clientName = flag.String("name", "subwoofer", "Client name reported to the server")
	tick       = flag.Duration("tick", pipeline.DefaultInterval, "Actuation cadence")
	cutoff     = flag.Float64("cutoff", dsp.DefaultCutoff, "Low-pass cutoff frequency in Hz")
	gain       = flag.Float64("gain", dsp.DefaultGain, "Intensity gain applied to the filtered signal")
	cmdTimeout = flag.Duration("cmd-timeout", pipeline.DefaultCommandTimeout, "Per-tick device command timeout")
	logFile    = flag.String("log-file", "", "Append structured logs to this file")
	noTUI      = flag.Bool("no-tui", false, "Disable the intensity meter TUI")
)

func main() {
	flag.Parse()
	useTUI := !*noTUI

	// With the TUI on the terminal, console logging would scribble over
	// the alternate screen; log to the file only.
	log, err := logging.New(*logFile, useTUI)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	log = log.With().Str("session", uuid.New().String()).Logger()
	log.Info().Str("version", version.Version).Msg(version.Product)

	if err := run(log, useTUI); err != nil {
		log.Fatal().Err(err).Msg("subwoofer failed")
	}
}

func run(log zerolog.Logger, useTUI bool) error {
	// Actuator side first: without devices there is nothing to drive.
	client := buttplug.NewClient(buttplug.Config{
		ServerURL:  *serverURL,
		ClientName: *clientName,
	}, log)
	if err := client.Connect(); err != nil {
		return fmt.Errorf("failed to connect to actuator server: %w", err)
	}
	defer client.Disconnect()

	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()

	if err := client.StartScanning(ctx); err != nil {
		return fmt.Errorf("failed to start scanning: %w", err)
	}
	if err := client.StopScanning(ctx); err != nil {
		return fmt.Errorf("failed to stop scanning: %w", err)
	}

	devices, err := client.Devices(ctx)
	if err != nil {
		return fmt.Errorf("failed to list devices: %w", err)
	}

	var endpoints []pipeline.Endpoint
	var deviceNames []string
	for _, dev := range devices {
		if !dev.CanVibrate() {
			log.Info().Str("device", dev.Name()).Msg("Skipping device without vibrate actuators")
			continue
		}
		endpoints = append(endpoints, deviceEndpoint{dev})
		deviceNames = append(deviceNames, dev.Name())
	}
	if len(endpoints) == 0 {
		return errors.New("no devices connected")
	}

	fmt.Println("Connected devices:")
	for _, name := range deviceNames {
		fmt.Printf(" - %s\n", name)
	}

	// Audio side: enumerate, select, and tap the chosen device.
	if err := capture.Init(); err != nil {
		return err
	}
	defer capture.Terminate()

	audioDevices, err := capture.ListDevices()
	if err != nil {
		return err
	}
	audioDevice, err := capture.Select(os.Stdin, os.Stdout, audioDevices)
	if err != nil {
		return err
	}
	log.Info().Str("device", audioDevice.Name).
		Float64("sample_rate", audioDevice.SampleRate).
		Msg("Using audio device")

	rly := relay.New(relay.SampleLimit)
	cond := &dsp.Conditioner{Cutoff: float32(*cutoff), Gain: *gain}

	// Counters updated on the audio thread, reported from the control side.
	var emptyFrames, closedEmits atomic.Uint64
	var levelBits atomic.Uint64

	transform := func(frame []float32, sampleRate float32) []float32 {
		filtered, intensity, err := cond.Condition(frame, sampleRate)
		if err != nil {
			emptyFrames.Add(1)
			return frame
		}
		if err := rly.TryEmit(intensity); err != nil {
			closedEmits.Add(1)
		}
		return filtered
	}

	tap, err := capture.OpenTap(audioDevice, transform)
	if err != nil {
		return err
	}
	// The level readout is throttled on the consumer side; the callback
	// only records the frame peak.
	tap.OnFrame = func(frame []float32) {
		var peak float32
		for _, v := range frame {
			if v < 0 {
				v = -v
			}
			if v > peak {
				peak = v
			}
		}
		levelBits.Store(math.Float64bits(float64(peak)))
	}
	if err := tap.Start(); err != nil {
		return err
	}

	var meter *ui.Meter
	if useTUI {
		meter = ui.Run()
		defer meter.Stop()
		meter.SetStatus(ui.StatusMsg{
			ServerName: client.ServerInfo().ServerName,
			AudioName:  audioDevice.Name,
			Devices:    deviceNames,
		})
	}

	driver := pipeline.NewDriver(pipeline.Config{
		Relay:          rly,
		Endpoints:      endpoints,
		Interval:       *tick,
		CommandTimeout: *cmdTimeout,
		Logger:         log,
		OnIntensity: func(v float64) {
			if meter != nil {
				meter.SetIntensity(v)
			}
		},
	})

	// The only shutdown path is closing the producer side: stop the tap so
	// no callbacks fire, then close the relay so the driver drains out.
	var stopOnce sync.Once
	stopCapture := func() {
		stopOnce.Do(func() {
			if err := tap.Close(); err != nil {
				log.Warn().Err(err).Msg("Failed to close audio tap")
			}
			rly.Close()
		})
	}
	defer stopCapture()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		if meter != nil {
			select {
			case <-sigChan:
			case <-meter.Quit:
			}
		} else {
			<-sigChan
		}
		log.Info().Msg("Shutdown signal received")
		stopCapture()
	}()

	if meter != nil {
		go statusLoop(meter, driver, &levelBits)
	}

	err = driver.Run()

	if n := emptyFrames.Load(); n > 0 {
		log.Warn().Uint64("count", n).Msg("Empty frames rejected by conditioner")
	}
	if n := closedEmits.Load(); n > 0 {
		log.Debug().Uint64("count", n).Msg("Samples emitted after relay close")
	}
	log.Info().Str("state", driver.State().String()).Msg("Pipeline stopped")
	return err
}

// statusLoop periodically publishes driver state and tap signal level to the
// meter, throttled well below the audio callback rate.
func statusLoop(meter *ui.Meter, driver *pipeline.Driver, levelBits *atomic.Uint64) {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for range ticker.C {
		meter.SetLevel(math.Float64frombits(levelBits.Load()))
		state := driver.State()
		meter.SetStatus(ui.StatusMsg{State: state.String()})
		if state == pipeline.StateStopped {
			return
		}
	}
}

// deviceEndpoint adapts a buttplug device to the pipeline's endpoint
// abstraction.
type deviceEndpoint struct {
	dev *buttplug.Device
}

func (e deviceEndpoint) Name() string { return e.dev.Name() }

func (e deviceEndpoint) SetIntensity(ctx context.Context, level float64) error {
	return e.dev.Vibrate(ctx, level)
}

func (e deviceEndpoint) Stop(ctx context.Context) error {
	return e.dev.Stop(ctx)
}
