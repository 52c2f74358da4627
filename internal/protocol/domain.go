package protocol

// Domain selects which characteristic pair a command travels over. The
// device exposes two independent command/response pairs so a slow config
// operation never blocks an LED or buzzer command.
type Domain byte

const (
	// DomainConfig carries key configuration commands.
	DomainConfig Domain = 0
	// DomainDevice carries LED, buzzer, settings, power, OTA and Lua commands.
	DomainDevice Domain = 1
)

func (d Domain) String() string {
	switch d {
	case DomainConfig:
		return "config"
	case DomainDevice:
		return "device"
	}
	return "unknown"
}
