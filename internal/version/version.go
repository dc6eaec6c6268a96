// ABOUTME: Version constants for the subwoofer client
// ABOUTME: Reported to the actuator server and stamped on logs
package version

const (
	// Product is the client product name.
	Product = "subwoofer"

	// Version is the client version, overridden via ldflags for releases.
	Version = "0.1.0"
)
