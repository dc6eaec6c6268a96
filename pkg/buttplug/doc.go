// ABOUTME: Package documentation for the Buttplug protocol client
// ABOUTME: Describes scope and typical usage

// Package buttplug implements a client for version 3 of the Buttplug
// intimate hardware protocol, speaking JSON over a WebSocket connection to
// a server such as Intiface Central.
//
// The client covers the handshake, device scanning, device enumeration, and
// per-device scalar actuation (vibration) plus stop commands. Server ping
// requirements are honored automatically.
//
// Typical usage:
//
//	client := buttplug.NewClient(buttplug.Config{
//		ServerURL:  "ws://localhost:12345/buttplug",
//		ClientName: "subwoofer",
//	}, logger)
//	if err := client.Connect(); err != nil {
//		// handle
//	}
//	defer client.Disconnect()
//
//	devices, err := client.Devices(ctx)
//	for _, d := range devices {
//		d.Vibrate(ctx, 0.5)
//	}
package buttplug
