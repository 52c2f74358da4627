package ble

// DefaultDeviceName is the name the device advertises out of the box.
const DefaultDeviceName = "aRdent ScanPad"

const (
	// ServiceUUID is the primary ScanPad service.
	ServiceUUID = "F0DEBC9A-7856-3412-F0DE-BC9A78560000"

	// DeviceCommandUUID accepts device-domain commands (write).
	DeviceCommandUUID = "F0DEBC9A-7856-3412-F0DE-BC9A78560010"
	// DeviceResponseUUID delivers device-domain responses (notify).
	DeviceResponseUUID = "F0DEBC9A-7856-3412-F0DE-BC9A78560011"

	// ConfigCommandUUID accepts key-configuration commands (write).
	ConfigCommandUUID = "F0DEBC9A-7856-3412-F0DE-BC9A78560020"
	// ConfigResponseUUID delivers key-configuration responses (notify).
	ConfigResponseUUID = "F0DEBC9A-7856-3412-F0DE-BC9A78560021"
)
