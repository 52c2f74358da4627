package cli

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/getyourway/scanpad-go/internal/ble"
	"github.com/getyourway/scanpad-go/internal/channel"
	"github.com/getyourway/scanpad-go/internal/client"
	"github.com/getyourway/scanpad-go/internal/config"
	"github.com/getyourway/scanpad-go/internal/firmware"
	"github.com/getyourway/scanpad-go/internal/keystore"
	"github.com/getyourway/scanpad-go/internal/ota"
	"github.com/getyourway/scanpad-go/internal/protocol"
	"github.com/getyourway/scanpad-go/internal/qr"
	"github.com/getyourway/scanpad-go/internal/tui"
	"github.com/getyourway/scanpad-go/internal/util"
)

// CLI is the root command structure for scanpad.
type CLI struct {
	Verbose bool   `short:"v" help:"Enable verbose debug output"`
	Name    string `help:"Device name to connect to (default from config file)"`

	Key    KeyCmd    `cmd:"" help:"Key configuration"`
	Led    LedCmd    `cmd:"" help:"LED control"`
	Buzzer BuzzerCmd `cmd:"" help:"Buzzer control"`
	Device DeviceCmd `cmd:"" help:"Device settings and info"`
	Power  PowerCmd  `cmd:"" help:"Battery and power management"`
	Lua    LuaCmd    `cmd:"" help:"Lua script deployment"`
	Store  StoreCmd  `cmd:"" help:"Saved layout store"`
	Qr     QrCmd     `cmd:"" help:"Offline QR frame tools"`
	Ota    OtaCmd    `cmd:"" help:"Firmware updates"`
}

// connect loads the config file, connects over BLE and returns a ready
// client. The caller must Disconnect the bearer.
func connect(globals *CLI) (*client.Client, *ble.Bearer, error) {
	config.Verbose = globals.Verbose
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	name := cfg.DeviceName
	if globals.Name != "" {
		name = globals.Name
	}
	b, err := ble.Connect(name)
	if err != nil {
		return nil, nil, err
	}
	ch := channel.New(b)
	if err := b.Attach(ch); err != nil {
		b.Disconnect()
		return nil, nil, err
	}
	return client.New(ch, cfg.Timeout()), b, nil
}

// --- Key Commands ---

type KeyCmd struct {
	Set     KeySetCmd     `cmd:"" help:"Set a key's action sequence"`
	Get     KeyGetCmd     `cmd:"" help:"Show a key's configuration"`
	List    KeyListCmd    `cmd:"" help:"Show all configured keys"`
	Clear   KeyClearCmd   `cmd:"" help:"Remove a key's configuration"`
	Enable  KeyEnableCmd  `cmd:"" help:"Enable a key"`
	Disable KeyDisableCmd `cmd:"" help:"Disable a key without clearing it"`
	Save    KeySaveCmd    `cmd:"" help:"Persist the current configuration to flash"`
	Reset   KeyResetCmd   `cmd:"" name:"factory-reset" help:"Erase all key configuration"`
}

type KeySetCmd struct {
	Key     string   `arg:"" help:"Key ID (0-19, or long:<n> for a long press)"`
	Actions []string `arg:"" help:"Action specs: text:Hi, key:enter+shift, media:volume-up, scan, toggle:ctrl"`
}

func (c *KeySetCmd) Run(globals *CLI) error {
	keyID, err := ParseKeyID(c.Key)
	if err != nil {
		return err
	}
	actions, err := ParseActions(c.Actions)
	if err != nil {
		return err
	}
	cl, b, err := connect(globals)
	if err != nil {
		return err
	}
	defer b.Disconnect()
	if err := cl.SetKey(keyID, actions); err != nil {
		return err
	}
	fmt.Printf("Key %d: %d action(s) set\n", keyID, len(actions))
	return nil
}

type KeyGetCmd struct {
	Key string `arg:"" help:"Key ID"`
}

func (c *KeyGetCmd) Run(globals *CLI) error {
	keyID, err := ParseKeyID(c.Key)
	if err != nil {
		return err
	}
	cl, b, err := connect(globals)
	if err != nil {
		return err
	}
	defer b.Disconnect()
	cfg, err := cl.GetKey(keyID)
	if err != nil {
		return err
	}
	printKeyConfig(cfg)
	return nil
}

type KeyListCmd struct{}

func (c *KeyListCmd) Run(globals *CLI) error {
	cl, b, err := connect(globals)
	if err != nil {
		return err
	}
	defer b.Disconnect()
	configs, err := cl.GetAllConfigs()
	if err != nil {
		return err
	}
	if len(configs) == 0 {
		fmt.Println("No keys configured.")
		return nil
	}
	for _, cfg := range configs {
		printKeyConfig(cfg)
	}
	return nil
}

func printKeyConfig(cfg protocol.KeyConfig) {
	state := "enabled"
	if !cfg.Enabled {
		state = "disabled"
	}
	fmt.Printf("Key %d (%s):\n", cfg.KeyID, state)
	for _, a := range cfg.Actions {
		fmt.Printf("  %s\n", FormatAction(a))
	}
}

type KeyClearCmd struct {
	Key string `arg:"" help:"Key ID"`
}

func (c *KeyClearCmd) Run(globals *CLI) error {
	keyID, err := ParseKeyID(c.Key)
	if err != nil {
		return err
	}
	cl, b, err := connect(globals)
	if err != nil {
		return err
	}
	defer b.Disconnect()
	return cl.ClearKey(keyID)
}

type KeyEnableCmd struct {
	Key string `arg:"" help:"Key ID"`
}

func (c *KeyEnableCmd) Run(globals *CLI) error {
	return setKeyEnabled(globals, c.Key, true)
}

type KeyDisableCmd struct {
	Key string `arg:"" help:"Key ID"`
}

func (c *KeyDisableCmd) Run(globals *CLI) error {
	return setKeyEnabled(globals, c.Key, false)
}

func setKeyEnabled(globals *CLI, key string, enabled bool) error {
	keyID, err := ParseKeyID(key)
	if err != nil {
		return err
	}
	cl, b, err := connect(globals)
	if err != nil {
		return err
	}
	defer b.Disconnect()
	return cl.SetKeyEnabled(keyID, enabled)
}

type KeySaveCmd struct{}

func (c *KeySaveCmd) Run(globals *CLI) error {
	cl, b, err := connect(globals)
	if err != nil {
		return err
	}
	defer b.Disconnect()
	if err := cl.SaveConfig(); err != nil {
		return err
	}
	fmt.Println("Configuration saved to flash.")
	return nil
}

type KeyResetCmd struct {
	Yes bool `help:"Confirm erasing all key configuration"`
}

func (c *KeyResetCmd) Run(globals *CLI) error {
	if !c.Yes {
		return fmt.Errorf("factory reset erases all key configuration; re-run with --yes")
	}
	cl, b, err := connect(globals)
	if err != nil {
		return err
	}
	defer b.Disconnect()
	if err := cl.FactoryReset(); err != nil {
		return err
	}
	fmt.Println("Factory reset done.")
	return nil
}

// --- LED Commands ---

type LedCmd struct {
	On    LedOnCmd    `cmd:"" help:"Turn an LED on"`
	Off   LedOffCmd   `cmd:"" help:"Turn an LED off (or 'all')"`
	Blink LedBlinkCmd `cmd:"" help:"Blink an LED"`
	Stop  LedStopCmd  `cmd:"" help:"Stop an LED's blink"`
}

type LedOnCmd struct {
	Led string `arg:"" help:"LED ID (1-9) or name (green1, red-scan, ...)"`
}

func (c *LedOnCmd) Run(globals *CLI) error {
	id, err := parseLED(c.Led)
	if err != nil {
		return err
	}
	cl, b, err := connect(globals)
	if err != nil {
		return err
	}
	defer b.Disconnect()
	return cl.SetLED(id, true)
}

type LedOffCmd struct {
	Led string `arg:"" help:"LED ID, name, or 'all'"`
}

func (c *LedOffCmd) Run(globals *CLI) error {
	var id byte
	if c.Led != "all" {
		var err error
		id, err = parseLED(c.Led)
		if err != nil {
			return err
		}
	}
	cl, b, err := connect(globals)
	if err != nil {
		return err
	}
	defer b.Disconnect()
	if c.Led == "all" {
		return cl.AllLEDsOff()
	}
	return cl.SetLED(id, false)
}

type LedBlinkCmd struct {
	Led  string `arg:"" help:"LED ID or name"`
	Freq uint16 `arg:"" optional:"" default:"1" help:"Blink frequency in Hz"`
}

func (c *LedBlinkCmd) Run(globals *CLI) error {
	id, err := parseLED(c.Led)
	if err != nil {
		return err
	}
	cl, b, err := connect(globals)
	if err != nil {
		return err
	}
	defer b.Disconnect()
	return cl.BlinkLED(id, c.Freq)
}

type LedStopCmd struct {
	Led string `arg:"" help:"LED ID or name"`
}

func (c *LedStopCmd) Run(globals *CLI) error {
	id, err := parseLED(c.Led)
	if err != nil {
		return err
	}
	cl, b, err := connect(globals)
	if err != nil {
		return err
	}
	defer b.Disconnect()
	return cl.StopBlink(id)
}

// --- Buzzer Commands ---

type BuzzerCmd struct {
	Beep   BuzzerBeepCmd   `cmd:"" help:"Sound a beep"`
	Melody BuzzerMelodyCmd `cmd:"" help:"Play a built-in melody"`
	Set    BuzzerSetCmd    `cmd:"" help:"Set buzzer volume / enable state"`
	Show   BuzzerShowCmd   `cmd:"" help:"Show buzzer settings"`
	Stop   BuzzerStopCmd   `cmd:"" help:"Stop any playing sound"`
}

type BuzzerBeepCmd struct {
	Duration time.Duration `default:"200ms" help:"Beep duration"`
	Freq     uint16        `default:"1000" help:"Frequency in Hz"`
}

func (c *BuzzerBeepCmd) Run(globals *CLI) error {
	cl, b, err := connect(globals)
	if err != nil {
		return err
	}
	defer b.Disconnect()
	return cl.Beep(c.Duration, c.Freq)
}

type BuzzerMelodyCmd struct {
	Melody string `arg:"" help:"Melody ID (1-9) or name (confirm, error, ...)"`
}

func (c *BuzzerMelodyCmd) Run(globals *CLI) error {
	id, err := parseMelody(c.Melody)
	if err != nil {
		return err
	}
	cl, b, err := connect(globals)
	if err != nil {
		return err
	}
	defer b.Disconnect()
	return cl.PlayMelody(id)
}

type BuzzerSetCmd struct {
	Volume byte `arg:"" help:"Volume (0-100)"`
	Off    bool `help:"Disable the buzzer"`
}

func (c *BuzzerSetCmd) Run(globals *CLI) error {
	cl, b, err := connect(globals)
	if err != nil {
		return err
	}
	defer b.Disconnect()
	return cl.SetBuzzer(!c.Off, c.Volume)
}

type BuzzerShowCmd struct{}

func (c *BuzzerShowCmd) Run(globals *CLI) error {
	cl, b, err := connect(globals)
	if err != nil {
		return err
	}
	defer b.Disconnect()
	enabled, volume, err := cl.BuzzerConfig()
	if err != nil {
		return err
	}
	state := "enabled"
	if !enabled {
		state = "disabled"
	}
	fmt.Printf("Buzzer %s, volume %d\n", state, volume)
	return nil
}

type BuzzerStopCmd struct{}

func (c *BuzzerStopCmd) Run(globals *CLI) error {
	cl, b, err := connect(globals)
	if err != nil {
		return err
	}
	defer b.Disconnect()
	return cl.StopBuzzer()
}

// --- Device Commands ---

type DeviceCmd struct {
	Info        DeviceInfoCmd        `cmd:"" help:"Show device information"`
	Name        DeviceNameCmd        `cmd:"" help:"Show or set the advertised device name"`
	Orientation DeviceOrientationCmd `cmd:"" help:"Show or set display orientation"`
	Layout      DeviceLayoutCmd      `cmd:"" help:"Show or set the host keyboard layout"`
	Uptime      DeviceUptimeCmd      `cmd:"" help:"Show time since boot"`
	Restart     DeviceRestartCmd     `cmd:"" help:"Restart the device"`
	Shutdown    DeviceShutdownCmd    `cmd:"" help:"Power the device off"`
}

type DeviceInfoCmd struct{}

func (c *DeviceInfoCmd) Run(globals *CLI) error {
	cl, b, err := connect(globals)
	if err != nil {
		return err
	}
	defer b.Disconnect()
	info, err := cl.DeviceInfo()
	if err != nil {
		return err
	}
	fmt.Println(info)
	return nil
}

type DeviceNameCmd struct {
	New string `arg:"" optional:"" help:"New name (omit to show current)"`
}

func (c *DeviceNameCmd) Run(globals *CLI) error {
	cl, b, err := connect(globals)
	if err != nil {
		return err
	}
	defer b.Disconnect()
	if c.New == "" {
		name, err := cl.DeviceName()
		if err != nil {
			return err
		}
		fmt.Println(name)
		return nil
	}
	if err := cl.SetDeviceName(c.New); err != nil {
		return err
	}
	fmt.Printf("Name set to %q (takes effect after restart)\n", c.New)
	return nil
}

type DeviceOrientationCmd struct {
	Value string `arg:"" optional:"" help:"portrait, landscape, portrait-flipped, landscape-flipped"`
}

func (c *DeviceOrientationCmd) Run(globals *CLI) error {
	cl, b, err := connect(globals)
	if err != nil {
		return err
	}
	defer b.Disconnect()
	if c.Value == "" {
		o, err := cl.Orientation()
		if err != nil {
			return err
		}
		fmt.Println(orientationName(o))
		return nil
	}
	o, err := parseOrientation(c.Value)
	if err != nil {
		return err
	}
	return cl.SetOrientation(o)
}

type DeviceLayoutCmd struct {
	Value string `arg:"" optional:"" help:"Layout name (win-us-qwerty, ...) or numeric code"`
}

func (c *DeviceLayoutCmd) Run(globals *CLI) error {
	cl, b, err := connect(globals)
	if err != nil {
		return err
	}
	defer b.Disconnect()
	if c.Value == "" {
		code, err := cl.Layout()
		if err != nil {
			return err
		}
		fmt.Println(layoutName(code))
		return nil
	}
	code, err := parseLayout(c.Value)
	if err != nil {
		return err
	}
	return cl.SetLayout(code)
}

type DeviceUptimeCmd struct{}

func (c *DeviceUptimeCmd) Run(globals *CLI) error {
	cl, b, err := connect(globals)
	if err != nil {
		return err
	}
	defer b.Disconnect()
	up, err := cl.Uptime()
	if err != nil {
		return err
	}
	fmt.Println(up)
	return nil
}

type DeviceRestartCmd struct{}

func (c *DeviceRestartCmd) Run(globals *CLI) error {
	cl, b, err := connect(globals)
	if err != nil {
		return err
	}
	defer b.Disconnect()
	return cl.Restart()
}

type DeviceShutdownCmd struct{}

func (c *DeviceShutdownCmd) Run(globals *CLI) error {
	cl, b, err := connect(globals)
	if err != nil {
		return err
	}
	defer b.Disconnect()
	return cl.Shutdown()
}

// --- Power Commands ---

type PowerCmd struct {
	Battery      PowerBatteryCmd      `cmd:"" help:"Show battery level and charger state"`
	AutoShutdown PowerAutoShutdownCmd `cmd:"" name:"auto-shutdown" help:"Show or set the idle shutdown policy"`
}

type PowerBatteryCmd struct{}

func (c *PowerBatteryCmd) Run(globals *CLI) error {
	cl, b, err := connect(globals)
	if err != nil {
		return err
	}
	defer b.Disconnect()
	st, err := cl.GetPowerStatus()
	if err != nil {
		return err
	}
	charging := ""
	if st.Charging {
		charging = " (charging)"
	}
	fmt.Printf("Battery %d%%%s\n", st.Level, charging)
	return nil
}

type PowerAutoShutdownCmd struct {
	NoConnection time.Duration `help:"Shutdown delay with no BLE connection (0 keeps current)"`
	NoActivity   time.Duration `help:"Shutdown delay with no key activity (0 keeps current)"`
	Off          bool          `help:"Disable automatic shutdown"`
}

func (c *PowerAutoShutdownCmd) Run(globals *CLI) error {
	cl, b, err := connect(globals)
	if err != nil {
		return err
	}
	defer b.Disconnect()

	if !c.Off && c.NoConnection == 0 && c.NoActivity == 0 {
		p, err := cl.GetAutoShutdown()
		if err != nil {
			return err
		}
		if !p.Enabled {
			fmt.Println("Auto shutdown disabled")
			return nil
		}
		fmt.Printf("Auto shutdown: no connection %s, no activity %s\n", p.NoConnection, p.NoActivity)
		return nil
	}

	p, err := cl.GetAutoShutdown()
	if err != nil {
		return err
	}
	p.Enabled = !c.Off
	if c.NoConnection > 0 {
		p.NoConnection = c.NoConnection
	}
	if c.NoActivity > 0 {
		p.NoActivity = c.NoActivity
	}
	return cl.SetAutoShutdown(p)
}

// --- Lua Commands ---

type LuaCmd struct {
	Deploy LuaDeployCmd `cmd:"" help:"Deploy a Lua script over BLE"`
	Info   LuaInfoCmd   `cmd:"" help:"Show deployed script status"`
	Clear  LuaClearCmd  `cmd:"" help:"Remove the deployed script"`
	Split  LuaSplitCmd  `cmd:"" help:"Split a script into QR fragment frames (offline)"`
}

type LuaDeployCmd struct {
	File string `arg:"" help:"Lua script file"`
}

func (c *LuaDeployCmd) Run(globals *CLI) error {
	script, err := os.ReadFile(c.File)
	if err != nil {
		return err
	}
	cl, b, err := connect(globals)
	if err != nil {
		return err
	}
	defer b.Disconnect()
	if err := cl.DeployLuaScript(script); err != nil {
		return err
	}
	fmt.Printf("Deployed %d byte script\n", len(script))
	return nil
}

type LuaInfoCmd struct{}

func (c *LuaInfoCmd) Run(globals *CLI) error {
	cl, b, err := connect(globals)
	if err != nil {
		return err
	}
	defer b.Disconnect()
	info, err := cl.GetLuaScriptInfo()
	if err != nil {
		return err
	}
	if !info.Present {
		fmt.Println("No script deployed.")
		return nil
	}
	fmt.Printf("Script deployed, %d bytes\n", info.Size)
	return nil
}

type LuaClearCmd struct{}

func (c *LuaClearCmd) Run(globals *CLI) error {
	cl, b, err := connect(globals)
	if err != nil {
		return err
	}
	defer b.Disconnect()
	return cl.ClearLuaScript()
}

type LuaSplitCmd struct {
	File   string `arg:"" help:"Lua script file"`
	MaxLen int    `default:"200" help:"Maximum characters per QR frame"`
	Level  int    `default:"6" help:"Compression level (1-9)"`
}

func (c *LuaSplitCmd) Run(globals *CLI) error {
	config.Verbose = globals.Verbose
	script, err := os.ReadFile(c.File)
	if err != nil {
		return err
	}
	frags, err := qr.Split(script, c.MaxLen, c.Level)
	if err != nil {
		return err
	}
	for _, f := range frags {
		fmt.Println(f.Text())
	}
	return nil
}

// --- Store Commands ---

type StoreCmd struct {
	Save   StoreSaveCmd   `cmd:"" help:"Save the device's current key configuration under a name"`
	Apply  StoreApplyCmd  `cmd:"" help:"Push a stored layout to the device"`
	List   StoreListCmd   `cmd:"" help:"List stored layouts"`
	Show   StoreShowCmd   `cmd:"" help:"Show a stored layout"`
	Delete StoreDeleteCmd `cmd:"" help:"Delete a stored layout"`
	Export StoreExportCmd `cmd:"" help:"Render a stored layout as a $FULL: QR frame"`
	Import StoreImportCmd `cmd:"" help:"Store a layout from a $FULL: QR frame"`
}

type StoreSaveCmd struct {
	Name string `arg:"" help:"Layout name"`
}

func (c *StoreSaveCmd) Run(globals *CLI) error {
	cl, b, err := connect(globals)
	if err != nil {
		return err
	}
	defer b.Disconnect()
	configs, err := cl.GetAllConfigs()
	if err != nil {
		return err
	}
	cfg := qr.FullConfig{}
	for _, kc := range configs {
		if len(kc.Actions) > 0 {
			cfg[kc.KeyID] = kc.Actions
		}
	}
	if len(cfg) == 0 {
		return fmt.Errorf("device has no keys configured")
	}
	s, err := keystore.OpenDefault()
	if err != nil {
		return err
	}
	if err := s.Save(c.Name, cfg); err != nil {
		return err
	}
	fmt.Printf("Saved %d key(s) as %q\n", len(cfg), c.Name)
	return nil
}

type StoreApplyCmd struct {
	Name string `arg:"" help:"Layout name"`
	Save bool   `help:"Persist to device flash after applying"`
}

func (c *StoreApplyCmd) Run(globals *CLI) error {
	s, err := keystore.OpenDefault()
	if err != nil {
		return err
	}
	cfg, err := s.Load(c.Name)
	if err != nil {
		return err
	}
	cl, b, err := connect(globals)
	if err != nil {
		return err
	}
	defer b.Disconnect()

	ids := sortedKeyIDs(cfg)
	for _, id := range ids {
		if err := cl.SetKey(id, cfg[id]); err != nil {
			return fmt.Errorf("key %d: %w", id, err)
		}
	}
	if c.Save {
		if err := cl.SaveConfig(); err != nil {
			return err
		}
	}
	fmt.Printf("Applied %d key(s) from %q\n", len(ids), c.Name)
	return nil
}

func sortedKeyIDs(cfg qr.FullConfig) []byte {
	ids := make([]byte, 0, len(cfg))
	for id := range cfg {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

type StoreListCmd struct{}

func (c *StoreListCmd) Run(globals *CLI) error {
	config.Verbose = globals.Verbose
	s, err := keystore.OpenDefault()
	if err != nil {
		return err
	}
	infos, err := s.List()
	if err != nil {
		return err
	}
	if len(infos) == 0 {
		fmt.Println("No layouts stored.")
		fmt.Println("Save the device configuration with: scanpad store save <name>")
		return nil
	}
	for _, info := range infos {
		fmt.Printf("  %-24s %2d key(s)  %s\n", info.Name, info.Keys, info.SavedAt.Format("2006-01-02 15:04"))
	}
	return nil
}

type StoreShowCmd struct {
	Name string `arg:"" help:"Layout name"`
}

func (c *StoreShowCmd) Run(globals *CLI) error {
	config.Verbose = globals.Verbose
	s, err := keystore.OpenDefault()
	if err != nil {
		return err
	}
	cfg, err := s.Load(c.Name)
	if err != nil {
		return err
	}
	for _, id := range sortedKeyIDs(cfg) {
		fmt.Printf("Key %d:\n", id)
		for _, a := range cfg[id] {
			fmt.Printf("  %s\n", FormatAction(a))
		}
	}
	return nil
}

type StoreDeleteCmd struct {
	Name string `arg:"" help:"Layout name"`
}

func (c *StoreDeleteCmd) Run(globals *CLI) error {
	config.Verbose = globals.Verbose
	s, err := keystore.OpenDefault()
	if err != nil {
		return err
	}
	return s.Delete(c.Name)
}

type StoreExportCmd struct {
	Name  string `arg:"" help:"Layout name"`
	Level int    `default:"6" help:"Compression level (1-9)"`
}

func (c *StoreExportCmd) Run(globals *CLI) error {
	config.Verbose = globals.Verbose
	s, err := keystore.OpenDefault()
	if err != nil {
		return err
	}
	cfg, err := s.Load(c.Name)
	if err != nil {
		return err
	}
	text, err := qr.EncodeContainer(cfg, c.Level)
	if err != nil {
		return err
	}
	fmt.Println(text)
	return nil
}

type StoreImportCmd struct {
	Name  string `arg:"" help:"Layout name to store under"`
	Frame string `arg:"" help:"$FULL: frame text"`
}

func (c *StoreImportCmd) Run(globals *CLI) error {
	config.Verbose = globals.Verbose
	cfg, err := qr.DecodeContainer(c.Frame)
	if err != nil {
		return err
	}
	s, err := keystore.OpenDefault()
	if err != nil {
		return err
	}
	if err := s.Save(c.Name, cfg); err != nil {
		return err
	}
	fmt.Printf("Imported %d key(s) as %q\n", len(cfg), c.Name)
	return nil
}

// --- QR Commands ---

type QrCmd struct {
	Decode  QrDecodeCmd  `cmd:"" help:"Parse and display any QR frame"`
	Command QrCommandCmd `cmd:"" help:"Render a single command as a QR frame"`
	Batch   QrBatchCmd   `cmd:"" help:"Render a command batch as a QR frame"`
}

type QrDecodeCmd struct {
	Frame string `arg:"" help:"Frame text"`
}

func (c *QrDecodeCmd) Run(globals *CLI) error {
	config.Verbose = globals.Verbose
	frame, err := qr.ParseFrame(c.Frame)
	if err != nil {
		return err
	}
	switch frame.Kind {
	case qr.KindFullConfig:
		fmt.Printf("Full configuration, %d key(s):\n", len(frame.FullConfig))
		for _, id := range sortedKeyIDs(frame.FullConfig) {
			fmt.Printf("Key %d:\n", id)
			for _, a := range frame.FullConfig[id] {
				fmt.Printf("  %s\n", FormatAction(a))
			}
		}
	case qr.KindLuaFragment:
		n := "final"
		if !frame.Fragment.Final {
			n = fmt.Sprintf("#%d", frame.Fragment.Number)
		}
		fmt.Printf("Lua fragment %s, %d chars of payload\n", n, len(frame.Fragment.Payload))
	case qr.KindDeviceCommand, qr.KindKeyCommand:
		printCommand(frame.Kind, frame.Command)
	case qr.KindBatch:
		fmt.Printf("Batch of %d command(s):\n", len(frame.Batch))
		for _, cmd := range frame.Batch {
			printCommand(qr.KindKeyCommand, cmd)
		}
	}
	return nil
}

func printCommand(kind qr.FrameKind, cmd protocol.Command) {
	domain := "config"
	if kind == qr.KindDeviceCommand {
		domain = "device"
	}
	fmt.Printf("%s command 0x%02X, %d byte payload\n", domain, cmd.ID, len(cmd.Payload))
	if len(cmd.Payload) > 0 {
		if util.IsTextData(cmd.Payload) {
			fmt.Printf("  %q\n", cmd.Payload)
		} else {
			fmt.Print(util.HexDump(cmd.Payload))
		}
	}
}

type QrCommandCmd struct {
	Domain  string `arg:"" enum:"device,config" help:"Command domain (device or config)"`
	ID      string `arg:"" help:"Command ID (hex, e.g. 0x14)"`
	Payload string `arg:"" optional:"" help:"Payload as hex"`
}

func (c *QrCommandCmd) Run(globals *CLI) error {
	config.Verbose = globals.Verbose
	cmd, err := parseCommandSpec(c.ID, c.Payload)
	if err != nil {
		return err
	}
	if c.Domain == "device" {
		fmt.Println(qr.DeviceCommandText(cmd))
	} else {
		fmt.Println(qr.KeyCommandText(cmd))
	}
	return nil
}

type QrBatchCmd struct {
	Commands []string `arg:"" help:"Commands as <id-hex>[:<payload-hex>]"`
}

func (c *QrBatchCmd) Run(globals *CLI) error {
	config.Verbose = globals.Verbose
	cmds := make([]protocol.Command, 0, len(c.Commands))
	for _, spec := range c.Commands {
		id, payload, _ := strings.Cut(spec, ":")
		cmd, err := parseCommandSpec(id, payload)
		if err != nil {
			return err
		}
		cmds = append(cmds, cmd)
	}
	text, err := qr.BatchText(cmds)
	if err != nil {
		return err
	}
	fmt.Println(text)
	return nil
}

func parseCommandSpec(id, payload string) (protocol.Command, error) {
	v, err := parseHexByte(id)
	if err != nil {
		return protocol.Command{}, fmt.Errorf("command ID %q: %w", id, protocol.ErrInvalidParameter)
	}
	cmd := protocol.Command{ID: v}
	if payload != "" {
		cmd.Payload, err = parseHexBytes(payload)
		if err != nil {
			return protocol.Command{}, fmt.Errorf("payload %q: %w", payload, protocol.ErrInvalidParameter)
		}
	}
	return cmd, nil
}

// --- OTA Commands ---

type OtaCmd struct {
	Check  OtaCheckCmd  `cmd:"" help:"Compare installed and latest firmware versions"`
	Update OtaUpdateCmd `cmd:"" help:"Update the device firmware"`
	Cached OtaCachedCmd `cmd:"" help:"List locally cached firmware images"`
	Clear  OtaClearCmd  `cmd:"" name:"clear-cache" help:"Delete cached firmware images"`
}

type OtaCheckCmd struct{}

func (c *OtaCheckCmd) Run(globals *CLI) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	cl, b, err := connect(globals)
	if err != nil {
		return err
	}
	defer b.Disconnect()

	sess := ota.New(cl.Transport(), nil)
	installed, err := sess.CheckVersion()
	if err != nil {
		return err
	}
	fmt.Printf("Installed: %s\n", installed)

	gh := &firmware.GitHub{Repo: cfg.GitHub.Repo, Token: cfg.GitHub.Token}
	rel, err := gh.LatestRelease()
	if err != nil {
		return fmt.Errorf("latest release: %w", err)
	}
	fmt.Printf("Latest:    %s (%d bytes)\n", rel.Version, rel.Size)
	return nil
}

type OtaUpdateCmd struct {
	File string `arg:"" optional:"" help:"Firmware image file (omit to fetch the latest release)"`
}

func (c *OtaUpdateCmd) Run(globals *CLI) error {
	config.Verbose = globals.Verbose
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	image, version, err := resolveImage(c.File, cfg)
	if err != nil {
		return err
	}
	fmt.Printf("Updating to %s (%d bytes)\n", version, len(image))

	cl, b, err := connect(globals)
	if err != nil {
		return err
	}
	defer b.Disconnect()

	updates := make(chan ota.Progress, 8)
	result := make(chan error, 1)
	sess := ota.New(cl.Transport(), func(p ota.Progress) {
		select {
		case updates <- p:
		default:
		}
	})
	go func() {
		result <- sess.Update(image)
		close(updates)
	}()

	err = tui.RunUpdate(updates, result)
	if errors.Is(err, ota.ErrCancelled) {
		sess.Cancel()
	}
	return err
}

// resolveImage loads the firmware image: a local file when given,
// otherwise the latest release via the cache.
func resolveImage(file string, cfg config.File) ([]byte, string, error) {
	if file != "" {
		image, err := os.ReadFile(file)
		if err != nil {
			return nil, "", err
		}
		if err := firmware.ValidateImage(image); err != nil {
			return nil, "", err
		}
		return image, file, nil
	}

	gh := &firmware.GitHub{Repo: cfg.GitHub.Repo, Token: cfg.GitHub.Token}
	rel, err := gh.LatestRelease()
	if err != nil {
		return nil, "", fmt.Errorf("latest release: %w", err)
	}
	cache, err := firmware.NewCache()
	if err != nil {
		return nil, "", err
	}
	if image, err := cache.Get(rel.Version); err != nil {
		return nil, "", err
	} else if image != nil {
		config.Debugf("firmware: using cached %s", rel.Version)
		return image, rel.Version, nil
	}

	fmt.Printf("Downloading %s...\n", rel.Version)
	var buf bytes.Buffer
	err = gh.Fetch(rel, &buf, func(done, total int64) {
		config.Debugf("firmware: %d/%d bytes", done, total)
	})
	if err != nil {
		return nil, "", err
	}
	image := buf.Bytes()
	if _, err := cache.Put(rel.Version, image); err != nil {
		config.Debugf("firmware: cache write failed: %v", err)
	}
	return image, rel.Version, nil
}

type OtaCachedCmd struct{}

func (c *OtaCachedCmd) Run(globals *CLI) error {
	config.Verbose = globals.Verbose
	cache, err := firmware.NewCache()
	if err != nil {
		return err
	}
	entries, err := cache.List()
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Println("No cached images.")
		return nil
	}
	for _, e := range entries {
		fmt.Printf("  %-16s %8d bytes  %s\n", e.Version, e.Size, e.Downloaded.Format("2006-01-02 15:04"))
	}
	return nil
}

type OtaClearCmd struct{}

func (c *OtaClearCmd) Run(globals *CLI) error {
	config.Verbose = globals.Verbose
	cache, err := firmware.NewCache()
	if err != nil {
		return err
	}
	return cache.Clear()
}
