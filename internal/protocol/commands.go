package protocol

// Config-domain command IDs.
const (
	CmdSetKeyConfig   byte = 0x10
	CmdGetKeyConfig   byte = 0x11
	CmdClearKeyConfig byte = 0x12
	CmdSetKeyEnabled  byte = 0x13
	CmdGetAllConfigs  byte = 0x20
	CmdSaveConfig     byte = 0x21
	CmdFactoryReset   byte = 0x22
	CmdSetMultiple    byte = 0x30
)

// Device-domain command IDs.
const (
	CmdLEDSetState   byte = 0x10
	CmdLEDGetState   byte = 0x11
	CmdLEDStartBlink byte = 0x12
	CmdLEDStopBlink  byte = 0x13
	CmdLEDAllOff     byte = 0x14
	CmdLEDSetPattern byte = 0x15
	CmdLEDGetConfig  byte = 0x16

	CmdBuzzerBeep      byte = 0x20
	CmdBuzzerMelody    byte = 0x21
	CmdBuzzerSetConfig byte = 0x22
	CmdBuzzerGetConfig byte = 0x23
	CmdBuzzerStop      byte = 0x24
	CmdBuzzerTest      byte = 0x25

	CmdSetOrientation byte = 0x40
	CmdGetOrientation byte = 0x41
	CmdSetLanguage    byte = 0x42
	CmdGetLanguage    byte = 0x43
	CmdSetDeviceName  byte = 0x44
	CmdGetDeviceName  byte = 0x45

	CmdSetAutoShutdown byte = 0x50
	CmdGetAutoShutdown byte = 0x51
	CmdGetBatteryLevel byte = 0x52
	CmdGetPowerStatus  byte = 0x53
	CmdSetLowPower     byte = 0x54
	CmdGetLowPower     byte = 0x55

	CmdOTACheckVersion byte = 0x60
	CmdOTAStart        byte = 0x61
	CmdOTAGetStatus    byte = 0x62
	CmdOTACancel       byte = 0x63
	CmdOTAGetProgress  byte = 0x64

	CmdLuaDeployScript  byte = 0x68
	CmdLuaGetScriptInfo byte = 0x69
	CmdLuaClearScript   byte = 0x6A

	CmdSystemRestart  byte = 0x70
	CmdSystemShutdown byte = 0x71
	CmdSystemGetInfo  byte = 0x72
	CmdSystemUptime   byte = 0x73
)
