package protocol

// Key identifiers. The 4x4 matrix occupies 0-15, the side buttons 16-19,
// and long-press variants live at id+100.
const (
	KeyMatrixFirst byte = 0
	KeyMatrixLast  byte = 15

	KeyButtonPowerSingle byte = 16
	KeyButtonPowerDouble byte = 17
	KeyButtonScanTrigger byte = 18
	KeyButtonScanDouble  byte = 19

	LongPressOffset byte = 100
	KeyLongFirst    byte = 100
	KeyLongLast     byte = 115
)

// ValidKeyID reports whether id names a configurable key: the matrix,
// the external buttons, or a matrix long-press slot.
func ValidKeyID(id byte) bool {
	if id <= KeyButtonScanDouble {
		return true
	}
	return id >= KeyLongFirst && id <= KeyLongLast
}

// LongPressID maps a matrix key to its long-press slot.
func LongPressID(matrixID byte) (byte, error) {
	if matrixID > KeyMatrixLast {
		return 0, ErrInvalidParameter
	}
	return matrixID + LongPressOffset, nil
}

// LED identifiers.
const (
	LEDGreen1    byte = 1
	LEDRed1      byte = 2
	LEDBlue1     byte = 3
	LEDGreen2    byte = 4
	LEDRed2      byte = 5
	LEDGreen3    byte = 6
	LEDOrange3   byte = 7
	LEDGreenScan byte = 8
	LEDRedScan   byte = 9

	LEDFirst = LEDGreen1
	LEDLast  = LEDRedScan
)

// Buzzer melody identifiers, 1-9.
const (
	MelodyKey       byte = 1
	MelodyStart     byte = 2
	MelodyStop      byte = 3
	MelodyNotifUp   byte = 4
	MelodyNotifDown byte = 5
	MelodyConfirm   byte = 6
	MelodyWarning   byte = 7
	MelodyError     byte = 8
	MelodySuccess   byte = 9

	MelodyFirst = MelodyKey
	MelodyLast  = MelodySuccess
)

// Device orientations.
const (
	OrientationPortrait         byte = 0
	OrientationLandscape        byte = 1
	OrientationPortraitFlipped  byte = 2
	OrientationLandscapeFlipped byte = 3

	OrientationLast = OrientationLandscapeFlipped
)

// Keyboard layout identifiers, `0xPPLL` where PP is the platform page.
const (
	LayoutWinUSQwerty   uint16 = 0x1110
	LayoutWinFRAzerty   uint16 = 0x1120
	LayoutWinBEAzerty   uint16 = 0x1121
	LayoutWinDEQwertz   uint16 = 0x1130
	LayoutWinESQwerty   uint16 = 0x1140
	LayoutMacUSQwerty   uint16 = 0x2110
	LayoutMacFRAzerty   uint16 = 0x2120
	LayoutIOSUSQwerty   uint16 = 0x3110
	LayoutAndroidQwerty uint16 = 0x4110
)

// HID modifier bits.
const (
	ModLeftCtrl   byte = 0x01
	ModLeftShift  byte = 0x02
	ModLeftAlt    byte = 0x04
	ModLeftGUI    byte = 0x08
	ModRightCtrl  byte = 0x10
	ModRightShift byte = 0x20
	ModRightAlt   byte = 0x40
	ModRightGUI   byte = 0x80
)

// Common HID keycodes (USB HID usage page 0x07).
const (
	HIDKeyA         byte = 0x04
	HIDKeyZ         byte = 0x1D
	HIDKey1         byte = 0x1E
	HIDKey0         byte = 0x27
	HIDKeyEnter     byte = 0x28
	HIDKeyEscape    byte = 0x29
	HIDKeyBackspace byte = 0x2A
	HIDKeyTab       byte = 0x2B
	HIDKeySpace     byte = 0x2C
	HIDKeyF1        byte = 0x3A
	HIDKeyDelete    byte = 0x4C
	HIDKeyRight     byte = 0x4F
	HIDKeyLeft      byte = 0x50
	HIDKeyDown      byte = 0x51
	HIDKeyUp        byte = 0x52
)

// Common consumer control usages (USB HID usage page 0x0C).
const (
	ConsumerPlayPause  uint16 = 0x00CD
	ConsumerScanNext   uint16 = 0x00B5
	ConsumerScanPrev   uint16 = 0x00B6
	ConsumerStop       uint16 = 0x00B7
	ConsumerMute       uint16 = 0x00E2
	ConsumerVolumeUp   uint16 = 0x00E9
	ConsumerVolumeDown uint16 = 0x00EA
	ConsumerBrightUp   uint16 = 0x006F
	ConsumerBrightDown uint16 = 0x0070
	ConsumerACHome     uint16 = 0x0223
	ConsumerACBack     uint16 = 0x0224
)

// Hardware action identifiers.
const (
	HardwareScanTrigger byte = 20
)

// Response status codes.
const (
	StatusSuccess          byte = 0x00
	StatusInvalidCommand   byte = 0x01
	StatusInvalidParameter byte = 0x02
	StatusNotReady         byte = 0x03
	StatusInternalError    byte = 0x04
)
