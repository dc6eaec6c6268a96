// ABOUTME: Audio device enumeration and interactive selection
// ABOUTME: Wraps PortAudio device discovery behind a small capability type
package capture

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/gordonklaus/portaudio"
)

// ErrNoDevices is returned when no tappable audio device exists.
var ErrNoDevices = errors.New("capture: no audio devices found")

// Device describes one tappable audio device: its name and default stream
// configuration.
type Device struct {
	Name       string
	SampleRate float64
	Channels   int

	info *portaudio.DeviceInfo
}

// Init initializes the audio subsystem. Pair with Terminate.
func Init() error {
	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("capture: failed to initialize portaudio: %w", err)
	}
	return nil
}

// Terminate releases the audio subsystem.
func Terminate() {
	_ = portaudio.Terminate()
}

// ListDevices enumerates devices whose stream can be tapped (loopback and
// monitor devices included), sorted by name. Init must have been called.
func ListDevices() ([]Device, error) {
	infos, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("capture: failed to enumerate devices: %w", err)
	}

	var devices []Device
	for _, info := range infos {
		if info.MaxInputChannels < 1 {
			continue
		}
		devices = append(devices, Device{
			Name:       info.Name,
			SampleRate: info.DefaultSampleRate,
			Channels:   info.MaxInputChannels,
			info:       info,
		})
	}
	if len(devices) == 0 {
		return nil, ErrNoDevices
	}

	sort.Slice(devices, func(i, j int) bool { return devices[i].Name < devices[j].Name })
	return devices, nil
}

// Select picks a device. A single device is chosen automatically; otherwise
// the user is prompted for a numeric index on in, re-prompting on invalid
// input until a valid selection or EOF.
func Select(in io.Reader, out io.Writer, devices []Device) (Device, error) {
	if len(devices) == 0 {
		return Device{}, ErrNoDevices
	}
	if len(devices) == 1 {
		return devices[0], nil
	}

	fmt.Fprintln(out, "Type the number of the device audio is playing to, and press enter.")
	for i, d := range devices {
		fmt.Fprintf(out, "  [%d] %s (%.0f Hz, %d ch)\n", i, d.Name, d.SampleRate, d.Channels)
	}

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return Device{}, fmt.Errorf("capture: failed to read selection: %w", err)
			}
			return Device{}, errors.New("capture: no device selected")
		}

		index, err := strconv.Atoi(strings.TrimSpace(scanner.Text()))
		if err != nil || index < 0 || index >= len(devices) {
			fmt.Fprintf(out, "Enter a number between 0 and %d.\n", len(devices)-1)
			continue
		}
		return devices[index], nil
	}
}
