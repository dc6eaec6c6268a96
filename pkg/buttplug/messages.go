// ABOUTME: Buttplug v3 message definitions and wire envelope
// ABOUTME: Messages travel as JSON arrays of single-key objects
package buttplug

// CurrentMessageVersion is the Buttplug message spec version this client
// speaks.
const CurrentMessageVersion = 3

// ActuatorVibrate is the scalar actuator type driven by intensity dispatch.
const ActuatorVibrate = "Vibrate"

// Error codes reported by the server in Error messages.
const (
	ErrorUnknown = 0
	ErrorInit    = 1
	ErrorPing    = 2
	ErrorMessage = 3
	ErrorDevice  = 4
)

// envelope is one wire message: an object with exactly one key naming the
// message type. Frames carry arrays of these.
type envelope struct {
	RequestServerInfo *RequestServerInfo `json:"RequestServerInfo,omitempty"`
	ServerInfo        *ServerInfo        `json:"ServerInfo,omitempty"`
	Ok                *Ok                `json:"Ok,omitempty"`
	Error             *Error             `json:"Error,omitempty"`
	Ping              *Ping              `json:"Ping,omitempty"`
	StartScanning     *StartScanning     `json:"StartScanning,omitempty"`
	StopScanning      *StopScanning      `json:"StopScanning,omitempty"`
	ScanningFinished  *ScanningFinished  `json:"ScanningFinished,omitempty"`
	RequestDeviceList *RequestDeviceList `json:"RequestDeviceList,omitempty"`
	DeviceList        *DeviceList        `json:"DeviceList,omitempty"`
	DeviceAdded       *DeviceAdded       `json:"DeviceAdded,omitempty"`
	DeviceRemoved     *DeviceRemoved     `json:"DeviceRemoved,omitempty"`
	ScalarCmd         *ScalarCmd         `json:"ScalarCmd,omitempty"`
	StopDeviceCmd     *StopDeviceCmd     `json:"StopDeviceCmd,omitempty"`
	StopAllDevices    *StopAllDevices    `json:"StopAllDevices,omitempty"`
}

// id extracts the message ID of whichever message the envelope carries.
// Returns false for envelopes with no recognized message.
func (e *envelope) id() (uint32, bool) {
	switch {
	case e.ServerInfo != nil:
		return e.ServerInfo.ID, true
	case e.Ok != nil:
		return e.Ok.ID, true
	case e.Error != nil:
		return e.Error.ID, true
	case e.DeviceList != nil:
		return e.DeviceList.ID, true
	case e.ScanningFinished != nil:
		return e.ScanningFinished.ID, true
	case e.DeviceAdded != nil:
		return e.DeviceAdded.ID, true
	case e.DeviceRemoved != nil:
		return e.DeviceRemoved.ID, true
	}
	return 0, false
}

// RequestServerInfo opens the handshake.
type RequestServerInfo struct {
	ID             uint32 `json:"Id"`
	ClientName     string `json:"ClientName"`
	MessageVersion uint32 `json:"MessageVersion"`
}

// ServerInfo is the server's handshake reply. A non-zero MaxPingTime
// obligates the client to ping within that many milliseconds.
type ServerInfo struct {
	ID             uint32 `json:"Id"`
	ServerName     string `json:"ServerName"`
	MessageVersion uint32 `json:"MessageVersion"`
	MaxPingTime    uint32 `json:"MaxPingTime"`
}

// Ok acknowledges a request.
type Ok struct {
	ID uint32 `json:"Id"`
}

// Error reports a failed request or, with ID 0, a system-level fault.
type Error struct {
	ID           uint32 `json:"Id"`
	ErrorMessage string `json:"ErrorMessage"`
	ErrorCode    int    `json:"ErrorCode"`
}

// Ping keeps the connection alive when the server enforces MaxPingTime.
type Ping struct {
	ID uint32 `json:"Id"`
}

// StartScanning asks the server to begin device discovery.
type StartScanning struct {
	ID uint32 `json:"Id"`
}

// StopScanning asks the server to end device discovery.
type StopScanning struct {
	ID uint32 `json:"Id"`
}

// ScanningFinished is a server-initiated notice that discovery ended.
type ScanningFinished struct {
	ID uint32 `json:"Id"`
}

// RequestDeviceList asks for all connected devices.
type RequestDeviceList struct {
	ID uint32 `json:"Id"`
}

// DeviceList enumerates the server's connected devices.
type DeviceList struct {
	ID      uint32       `json:"Id"`
	Devices []DeviceInfo `json:"Devices"`
}

// DeviceInfo describes one connected device and its supported commands.
type DeviceInfo struct {
	DeviceName        string         `json:"DeviceName"`
	DeviceIndex       uint32         `json:"DeviceIndex"`
	DeviceDisplayName string         `json:"DeviceDisplayName,omitempty"`
	DeviceMessages    DeviceMessages `json:"DeviceMessages"`
}

// DeviceMessages lists the device's scalar actuator features. Other command
// families the server may advertise are ignored.
type DeviceMessages struct {
	ScalarCmd []ScalarFeature `json:"ScalarCmd,omitempty"`
}

// ScalarFeature describes one scalar actuator on a device.
type ScalarFeature struct {
	StepCount         uint32 `json:"StepCount"`
	FeatureDescriptor string `json:"FeatureDescriptor"`
	ActuatorType      string `json:"ActuatorType"`
}

// DeviceAdded announces a device connected after the initial list.
type DeviceAdded struct {
	ID uint32 `json:"Id"`
	DeviceInfo
}

// DeviceRemoved announces a device disconnection.
type DeviceRemoved struct {
	ID          uint32 `json:"Id"`
	DeviceIndex uint32 `json:"DeviceIndex"`
}

// ScalarCmd sets actuator levels on one device.
type ScalarCmd struct {
	ID          uint32             `json:"Id"`
	DeviceIndex uint32             `json:"DeviceIndex"`
	Scalars     []ScalarSubcommand `json:"Scalars"`
}

// ScalarSubcommand addresses one actuator feature by index.
type ScalarSubcommand struct {
	Index        uint32  `json:"Index"`
	Scalar       float64 `json:"Scalar"`
	ActuatorType string  `json:"ActuatorType"`
}

// StopDeviceCmd halts all actuation on one device.
type StopDeviceCmd struct {
	ID          uint32 `json:"Id"`
	DeviceIndex uint32 `json:"DeviceIndex"`
}

// StopAllDevices halts actuation on every device.
type StopAllDevices struct {
	ID uint32 `json:"Id"`
}
