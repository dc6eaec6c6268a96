// ABOUTME: Per-device handle exposing scalar actuation commands
// ABOUTME: Devices are enumerated once and fixed for the connection lifetime
package buttplug

import (
	"context"
	"fmt"
)

// Device is a handle to one actuator connected to the server. Handles are
// obtained from Client.Devices and remain valid while the client is
// connected.
type Device struct {
	client  *Client
	index   uint32
	name    string
	scalars []ScalarFeature
}

// Name returns the device's human-readable name.
func (d *Device) Name() string { return d.name }

// Index returns the server-assigned device index.
func (d *Device) Index() uint32 { return d.index }

// CanVibrate reports whether the device has at least one vibrate actuator.
func (d *Device) CanVibrate() bool {
	for _, f := range d.scalars {
		if f.ActuatorType == ActuatorVibrate {
			return true
		}
	}
	return false
}

// Vibrate sets every vibrate actuator on the device to level, clamped into
// [0, 1]. Idempotent: repeating a level is harmless.
func (d *Device) Vibrate(ctx context.Context, level float64) error {
	if level < 0 {
		level = 0
	}
	if level > 1 {
		level = 1
	}

	var scalars []ScalarSubcommand
	for i, f := range d.scalars {
		if f.ActuatorType != ActuatorVibrate {
			continue
		}
		scalars = append(scalars, ScalarSubcommand{
			Index:        uint32(i),
			Scalar:       level,
			ActuatorType: ActuatorVibrate,
		})
	}
	if len(scalars) == 0 {
		return fmt.Errorf("device %q has no vibrate actuators", d.name)
	}

	id := d.client.nextID.Add(1)
	return d.client.expectOk(ctx, id, envelope{ScalarCmd: &ScalarCmd{
		ID:          id,
		DeviceIndex: d.index,
		Scalars:     scalars,
	}}, "ScalarCmd")
}

// Stop halts all actuation on the device.
func (d *Device) Stop(ctx context.Context) error {
	id := d.client.nextID.Add(1)
	return d.client.expectOk(ctx, id, envelope{StopDeviceCmd: &StopDeviceCmd{
		ID:          id,
		DeviceIndex: d.index,
	}}, "StopDeviceCmd")
}
